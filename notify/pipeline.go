package notify

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lmenendez/agora/models"
)

// Site carries the identity values woven into mail bodies and the realtime
// payload.
type Site struct {
	Name      string
	URL       string
	StaticURL string
}

// AttachmentRemover deletes a topic's attachment storage. The explicit error
// return lets the pipeline log and continue instead of suppressing blindly.
type AttachmentRemover interface {
	RemoveTopicAttachments(attachmentID string) error
}

// Deps wires the pipeline's collaborators. Publisher and mail are injected
// so tests can capture payloads without a live broker or SMTP server.
type Deps struct {
	DB          *gorm.DB
	Store       *Store
	Resolver    *Resolver
	Gate        *Gate
	Publisher   Publisher
	Mail        *Dispatcher
	Photos      PhotoResolver
	Attachments AttachmentRemover
	Site        Site
	Log         *zap.SugaredLogger
}

// Pipeline orchestrates moderation-gated publication and notification fan-out
// for topic and comment creation. Only the persistence of the primary entity
// can fail a request; every later stage degrades independently.
type Pipeline struct {
	db          *gorm.DB
	store       *Store
	resolver    *Resolver
	gate        *Gate
	publisher   Publisher
	mail        *Dispatcher
	photos      PhotoResolver
	attachments AttachmentRemover
	site        Site
	log         *zap.SugaredLogger
}

// NewPipeline assembles the orchestrator from its dependencies.
func NewPipeline(deps Deps) *Pipeline {
	log := deps.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Pipeline{
		db:          deps.DB,
		store:       deps.Store,
		resolver:    deps.Resolver,
		gate:        deps.Gate,
		publisher:   deps.Publisher,
		mail:        deps.Mail,
		photos:      deps.Photos,
		attachments: deps.Attachments,
		site:        deps.Site,
		log:         log,
	}
}

// CreateTopic decides moderation, persists the topic, and alerts moderators
// when the topic is held. The moderation flag is written exactly once here
// and never touched again by this service.
func (p *Pipeline) CreateTopic(ctx context.Context, topic *models.Topic, forum *models.Forum, author *models.User) error {
	moderate, moderators, err := p.gate.Decide(ctx, forum, author.ID)
	if err != nil {
		return err
	}
	topic.Moderate = moderate

	if topic.CreatedAt.IsZero() {
		topic.CreatedAt = time.Now()
	}
	topic.LastActivity = topic.CreatedAt

	if err := p.db.WithContext(ctx).Create(topic).Error; err != nil {
		return err
	}

	if !moderate {
		// The topic is not visible yet, so moderators get a link to the
		// forum page rather than the unpublished topic.
		subject := "New notification " + p.site.Name
		body := "You have one new topic: " + p.forumURL(forum.Name)
		for _, moderator := range moderators {
			if moderator.Email == "" {
				continue
			}
			p.mail.Dispatch(subject, body, []string{moderator.Email})
		}
	}
	return nil
}

// CreateComment persists the comment and fans out notifications: one durable
// row per recipient, one realtime publish, one best-effort email to the topic
// author when they have not commented themselves. Everything after the
// comment insert is continue-on-error.
func (p *Pipeline) CreateComment(ctx context.Context, comment *models.Comment, topic *models.Topic, forum *models.Forum, poster *models.User) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	if err := p.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	now := comment.CreatedAt

	recipients, err := p.resolver.Recipients(ctx, topic.ID, poster.ID)
	if err != nil {
		p.log.Warnf("recipient resolve failed topic=%d err=%v", topic.ID, err)
		recipients = nil
	}

	// The topic author is notified even without a comment of their own, and
	// additionally mailed since they have no live session expectation. Their
	// own comments never notify them.
	var emails []string
	if topic.UserID != poster.ID && !containsUint(recipients, topic.UserID) {
		recipients = append(recipients, topic.UserID)
		var author models.User
		if err := p.db.WithContext(ctx).First(&author, topic.UserID).Error; err != nil {
			p.log.Warnf("topic author lookup failed user=%d err=%v", topic.UserID, err)
		} else if author.Email != "" {
			emails = append(emails, author.Email)
		}
	}

	target := models.CommentTarget(comment.ID)
	for _, recipient := range recipients {
		if err := p.store.Create(ctx, recipient, target, now); err != nil {
			p.log.Warnf("notification write failed user=%d comment=%d err=%v", recipient, comment.ID, err)
		}
	}

	event := CommentEvent{
		Description: TruncateChars(comment.Description, 100),
		TopicTitle:  topic.Title,
		TopicID:     topic.ID,
		Slug:        topic.Slug,
		StaticURL:   p.site.StaticURL,
		Username:    poster.Username,
		Forum:       forum.Name,
		Recipients:  recipients,
		Photo:       p.photos.PhotoPath(ctx, poster.ID),
	}
	if err := p.publisher.Publish(ctx, NotificationsChannel, event); err != nil {
		p.log.Warnf("realtime publish failed comment=%d err=%v", comment.ID, err)
	}

	if len(emails) > 0 {
		subject := "New notification " + p.site.Name
		body := "You have one new comment in the topic: " + p.topicURL(forum.Name, topic.Slug, topic.ID)
		p.mail.Dispatch(subject, body, emails)
	}

	if err := p.db.WithContext(ctx).Model(topic).Update("last_activity", now).Error; err != nil {
		p.log.Warnf("last activity bump failed topic=%d err=%v", topic.ID, err)
	}
	return nil
}

// DeleteComment removes the comment and cascades deletion of the
// notifications that reference it.
func (p *Pipeline) DeleteComment(ctx context.Context, comment *models.Comment) error {
	if err := p.db.WithContext(ctx).Delete(&models.Comment{}, comment.ID).Error; err != nil {
		return err
	}
	if err := p.store.DeleteByTarget(ctx, models.CommentTarget(comment.ID)); err != nil {
		p.log.Warnf("notification cascade failed comment=%d err=%v", comment.ID, err)
	}
	return nil
}

// DeleteTopic removes the topic, then best-effort cleans up its comments,
// the notifications referencing any of them, and the attachment storage.
func (p *Pipeline) DeleteTopic(ctx context.Context, topic *models.Topic) error {
	if err := p.db.WithContext(ctx).Delete(&models.Topic{}, topic.ID).Error; err != nil {
		return err
	}

	var commentIDs []uint
	if err := p.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("topic_id = ?", topic.ID).
		Pluck("id", &commentIDs).Error; err != nil {
		p.log.Warnf("comment scan failed topic=%d err=%v", topic.ID, err)
	}
	for _, id := range commentIDs {
		if err := p.store.DeleteByTarget(ctx, models.CommentTarget(id)); err != nil {
			p.log.Warnf("notification cascade failed comment=%d err=%v", id, err)
		}
	}
	if err := p.store.DeleteByTarget(ctx, models.TopicTarget(topic.ID)); err != nil {
		p.log.Warnf("notification cascade failed topic=%d err=%v", topic.ID, err)
	}
	if err := p.db.WithContext(ctx).Where("topic_id = ?", topic.ID).Delete(&models.Comment{}).Error; err != nil {
		p.log.Warnf("comment cascade failed topic=%d err=%v", topic.ID, err)
	}
	if p.attachments != nil {
		if err := p.attachments.RemoveTopicAttachments(topic.AttachmentID); err != nil {
			p.log.Warnf("attachment removal failed topic=%d err=%v", topic.ID, err)
		}
	}
	return nil
}

// Store exposes the notification store for the HTTP layer.
func (p *Pipeline) Store() *Store { return p.store }

// Gate exposes the moderation gate for visibility checks.
func (p *Pipeline) Gate() *Gate { return p.gate }

func (p *Pipeline) forumURL(forum string) string {
	return strings.TrimRight(p.site.URL, "/") + "/forum/" + forum
}

func (p *Pipeline) topicURL(forum, slug string, topicID uint) string {
	return strings.TrimRight(p.site.URL, "/") + "/topic/" + forum + "/" + slug + "/" + strconv.FormatUint(uint64(topicID), 10) + "/"
}

func containsUint(list []uint, v uint) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
