package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lmenendez/agora/models"
)

func TestCreateTopicUnmoderatedForumNoMail(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, "author", "author@example.com")
	forum := seedForum(t, db, "open", false)
	mail := &captureMail{}
	pipeline, _ := newTestPipeline(t, db, &capturePublisher{}, mail)

	topic := models.Topic{ForumID: forum.ID, UserID: author.ID, Title: "hello", Slug: "hello"}
	require.NoError(t, pipeline.CreateTopic(context.Background(), &topic, &forum, &author))

	require.True(t, topic.Moderate)
	require.NotZero(t, topic.ID)
	require.Empty(t, mail.sends)

	var saved models.Topic
	require.NoError(t, db.First(&saved, topic.ID).Error)
	require.True(t, saved.Moderate)
	require.False(t, saved.LastActivity.IsZero())
}

func TestCreateTopicHeldMailsEachModerator(t *testing.T) {
	db := newTestDB(t)
	modA := seedUser(t, db, "mod-a", "a@example.com")
	modB := seedUser(t, db, "mod-b", "b@example.com")
	author := seedUser(t, db, "author", "author@example.com")
	forum := seedForum(t, db, "strict", true, modA, modB)
	mail := &captureMail{}
	pipeline, _ := newTestPipeline(t, db, &capturePublisher{}, mail)

	topic := models.Topic{ForumID: forum.ID, UserID: author.ID, Title: "pending", Slug: "pending"}
	require.NoError(t, pipeline.CreateTopic(context.Background(), &topic, &forum, &author))

	require.False(t, topic.Moderate)
	require.Len(t, mail.sends, 2)
	require.Equal(t, "New notification Agora", mail.subjects[0])
	require.Contains(t, mail.bodies[0], "/forum/strict")
}

func TestCreateTopicModeratorAuthorSelfApproves(t *testing.T) {
	db := newTestDB(t)
	moderator := seedUser(t, db, "moderator", "mod@example.com")
	forum := seedForum(t, db, "strict", true, moderator)
	mail := &captureMail{}
	pipeline, _ := newTestPipeline(t, db, &capturePublisher{}, mail)

	topic := models.Topic{ForumID: forum.ID, UserID: moderator.ID, Title: "own", Slug: "own"}
	require.NoError(t, pipeline.CreateTopic(context.Background(), &topic, &forum, &moderator))

	require.True(t, topic.Moderate)
	require.Empty(t, mail.sends)
}

func TestCreateCommentFanOut(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner", "owner@example.com")
	alice := seedUser(t, db, "alice", "alice@example.com")
	poster := seedUser(t, db, "poster", "poster@example.com")
	forum := seedForum(t, db, "general", false)
	topic := seedTopic(t, db, forum, owner, "discussion")
	seedComment(t, db, topic, alice, "earlier comment")

	publisher := &capturePublisher{}
	mail := &captureMail{}
	pipeline, _ := newTestPipeline(t, db, publisher, mail)

	comment := models.Comment{TopicID: topic.ID, UserID: poster.ID, Description: "a fresh reply"}
	require.NoError(t, pipeline.CreateComment(context.Background(), &comment, &topic, &forum, &poster))
	require.NotZero(t, comment.ID)

	// Durable rows: alice (prior commenter) and owner (topic author), poster never.
	store := pipeline.Store()
	for _, id := range []uint{alice.ID, owner.ID} {
		count, err := store.CountPending(context.Background(), id)
		require.NoError(t, err)
		require.EqualValues(t, 1, count, "user %d", id)
	}
	count, err := store.CountPending(context.Background(), poster.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	// One realtime event on the notifications channel.
	require.Equal(t, []string{NotificationsChannel}, publisher.channels)
	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	require.Equal(t, "a fresh reply", event.Description)
	require.Equal(t, topic.Title, event.TopicTitle)
	require.Equal(t, topic.ID, event.TopicID)
	require.Equal(t, "poster", event.Username)
	require.Equal(t, "general", event.Forum)
	require.ElementsMatch(t, []uint{alice.ID, owner.ID}, event.Recipients)

	// One email to the author who has not commented.
	require.Len(t, mail.sends, 1)
	require.Equal(t, []string{"owner@example.com"}, mail.sends[0])
	require.Contains(t, mail.bodies[0], "/topic/general/"+topic.Slug+"/")

	var bumped models.Topic
	require.NoError(t, db.First(&bumped, topic.ID).Error)
	require.Equal(t, comment.CreatedAt.Unix(), bumped.LastActivity.Unix())
}

func TestCreateCommentTwoCommentersAndAbsentAuthor(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner", "owner@example.com")
	alice := seedUser(t, db, "alice", "alice@example.com")
	bob := seedUser(t, db, "bob", "bob@example.com")
	carol := seedUser(t, db, "carol", "carol@example.com")
	forum := seedForum(t, db, "general", false)
	topic := seedTopic(t, db, forum, owner, "discussion")
	seedComment(t, db, topic, alice, "first")
	seedComment(t, db, topic, bob, "second")

	publisher := &capturePublisher{}
	mail := &captureMail{}
	pipeline, _ := newTestPipeline(t, db, publisher, mail)

	comment := models.Comment{TopicID: topic.ID, UserID: carol.ID, Description: "third voice"}
	require.NoError(t, pipeline.CreateComment(context.Background(), &comment, &topic, &forum, &carol))

	// Both prior commenters and the author get a row; the author comes last
	// since they are appended, not resolved.
	require.Len(t, publisher.events, 1)
	require.Equal(t, []uint{alice.ID, bob.ID, owner.ID}, publisher.events[0].Recipients)

	store := pipeline.Store()
	for _, id := range []uint{alice.ID, bob.ID, owner.ID} {
		count, err := store.CountPending(context.Background(), id)
		require.NoError(t, err)
		require.EqualValues(t, 1, count, "user %d", id)
	}
	count, err := store.CountPending(context.Background(), carol.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	// Only the absent author is emailed.
	require.Len(t, mail.sends, 1)
	require.Equal(t, []string{"owner@example.com"}, mail.sends[0])
}

func TestCreateCommentTruncatesEventDescription(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner", "owner@example.com")
	poster := seedUser(t, db, "poster", "poster@example.com")
	forum := seedForum(t, db, "general", false)
	topic := seedTopic(t, db, forum, owner, "discussion")

	publisher := &capturePublisher{}
	pipeline, _ := newTestPipeline(t, db, publisher, &captureMail{})

	long := strings.Repeat("word ", 40)
	comment := models.Comment{TopicID: topic.ID, UserID: poster.ID, Description: long}
	require.NoError(t, pipeline.CreateComment(context.Background(), &comment, &topic, &forum, &poster))

	require.Len(t, publisher.events, 1)
	got := publisher.events[0].Description
	require.LessOrEqual(t, len([]rune(got)), 100)
	require.True(t, strings.HasSuffix(got, Ellipsis))

	// The stored comment keeps the full body.
	var saved models.Comment
	require.NoError(t, db.First(&saved, comment.ID).Error)
	require.Equal(t, long, saved.Description)
}

func TestCreateCommentAuthorIsPosterNoMailNoSelfNotify(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner", "owner@example.com")
	alice := seedUser(t, db, "alice", "alice@example.com")
	forum := seedForum(t, db, "general", false)
	topic := seedTopic(t, db, forum, owner, "discussion")
	seedComment(t, db, topic, alice, "earlier comment")

	publisher := &capturePublisher{}
	mail := &captureMail{}
	pipeline, _ := newTestPipeline(t, db, publisher, mail)

	comment := models.Comment{TopicID: topic.ID, UserID: owner.ID, Description: "author reply"}
	require.NoError(t, pipeline.CreateComment(context.Background(), &comment, &topic, &forum, &owner))

	require.Empty(t, mail.sends)

	count, err := pipeline.Store().CountPending(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	require.Len(t, publisher.events, 1)
	require.Equal(t, []uint{alice.ID}, publisher.events[0].Recipients)
}

func TestCreateCommentAuthorAlreadyCommentedNotifiedOnce(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner", "owner@example.com")
	poster := seedUser(t, db, "poster", "poster@example.com")
	forum := seedForum(t, db, "general", false)
	topic := seedTopic(t, db, forum, owner, "discussion")
	seedComment(t, db, topic, owner, "author spoke already")

	publisher := &capturePublisher{}
	mail := &captureMail{}
	pipeline, _ := newTestPipeline(t, db, publisher, mail)

	comment := models.Comment{TopicID: topic.ID, UserID: poster.ID, Description: "reply"}
	require.NoError(t, pipeline.CreateComment(context.Background(), &comment, &topic, &forum, &poster))

	// Author already appears through their comment: one row, no email.
	count, err := pipeline.Store().CountPending(context.Background(), owner.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Empty(t, mail.sends)
}

func TestCreateCommentPublishFailureStillWritesRows(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner", "owner@example.com")
	poster := seedUser(t, db, "poster", "poster@example.com")
	forum := seedForum(t, db, "general", false)
	topic := seedTopic(t, db, forum, owner, "discussion")

	publisher := &capturePublisher{Fail: true}
	mail := &captureMail{}
	pipeline, _ := newTestPipeline(t, db, publisher, mail)

	comment := models.Comment{TopicID: topic.ID, UserID: poster.ID, Description: "reply"}
	require.NoError(t, pipeline.CreateComment(context.Background(), &comment, &topic, &forum, &poster))

	count, err := pipeline.Store().CountPending(context.Background(), owner.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	// Email still goes out after the failed publish.
	require.Len(t, mail.sends, 1)
}

func TestCreateCommentMailFailureDoesNotFailRequest(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner", "owner@example.com")
	poster := seedUser(t, db, "poster", "poster@example.com")
	forum := seedForum(t, db, "general", false)
	topic := seedTopic(t, db, forum, owner, "discussion")

	mail := &captureMail{Fail: true}
	pipeline, _ := newTestPipeline(t, db, &capturePublisher{}, mail)

	comment := models.Comment{TopicID: topic.ID, UserID: poster.ID, Description: "reply"}
	require.NoError(t, pipeline.CreateComment(context.Background(), &comment, &topic, &forum, &poster))
}

func TestDeleteCommentCascadesNotifications(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner", "owner@example.com")
	poster := seedUser(t, db, "poster", "poster@example.com")
	forum := seedForum(t, db, "general", false)
	topic := seedTopic(t, db, forum, owner, "discussion")

	pipeline, _ := newTestPipeline(t, db, &capturePublisher{}, &captureMail{})

	comment := models.Comment{TopicID: topic.ID, UserID: poster.ID, Description: "reply"}
	require.NoError(t, pipeline.CreateComment(context.Background(), &comment, &topic, &forum, &poster))

	count, err := pipeline.Store().CountPending(context.Background(), owner.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	require.NoError(t, pipeline.DeleteComment(context.Background(), &comment))

	count, err = pipeline.Store().CountPending(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	var remaining int64
	require.NoError(t, db.Model(&models.Comment{}).Where("id = ?", comment.ID).Count(&remaining).Error)
	require.Zero(t, remaining)
}

func TestDeleteTopicCascadesCommentsNotificationsAttachments(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner", "owner@example.com")
	poster := seedUser(t, db, "poster", "poster@example.com")
	forum := seedForum(t, db, "general", false)
	topic := seedTopic(t, db, forum, owner, "discussion")
	topic.AttachmentID = "att-123"
	require.NoError(t, db.Model(&models.Topic{}).Where("id = ?", topic.ID).Update("attachment_id", topic.AttachmentID).Error)

	pipeline, remover := newTestPipeline(t, db, &capturePublisher{}, &captureMail{})

	comment := models.Comment{TopicID: topic.ID, UserID: poster.ID, Description: "reply"}
	require.NoError(t, pipeline.CreateComment(context.Background(), &comment, &topic, &forum, &poster))

	require.NoError(t, pipeline.DeleteTopic(context.Background(), &topic))

	var topics, comments, notifications int64
	require.NoError(t, db.Model(&models.Topic{}).Where("id = ?", topic.ID).Count(&topics).Error)
	require.NoError(t, db.Model(&models.Comment{}).Where("topic_id = ?", topic.ID).Count(&comments).Error)
	require.NoError(t, db.Model(&models.Notification{}).Count(&notifications).Error)
	require.Zero(t, topics)
	require.Zero(t, comments)
	require.Zero(t, notifications)

	require.Equal(t, []string{"att-123"}, remover.removed)
}
