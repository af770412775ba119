package notify

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lmenendez/agora/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Forum{}, &models.Register{},
		&models.Topic{}, &models.Comment{}, &models.Notification{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, email string) models.User {
	t.Helper()
	user := models.User{Username: username, Email: email}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedForum(t *testing.T, db *gorm.DB, name string, moderate bool, moderators ...models.User) models.Forum {
	t.Helper()
	forum := models.Forum{Name: name, IsModerate: moderate, Moderators: moderators}
	require.NoError(t, db.Create(&forum).Error)
	return forum
}

func seedTopic(t *testing.T, db *gorm.DB, forum models.Forum, author models.User, title string) models.Topic {
	t.Helper()
	topic := models.Topic{
		ForumID:  forum.ID,
		UserID:   author.ID,
		Title:    title,
		Slug:     "test-topic",
		Moderate: true,
	}
	require.NoError(t, db.Create(&topic).Error)
	return topic
}

func seedComment(t *testing.T, db *gorm.DB, topic models.Topic, author models.User, body string) models.Comment {
	t.Helper()
	comment := models.Comment{TopicID: topic.ID, UserID: author.ID, Description: body}
	require.NoError(t, db.Create(&comment).Error)
	return comment
}

// capturePublisher records published payloads; Fail makes every publish error.
type capturePublisher struct {
	mu       sync.Mutex
	channels []string
	events   []CommentEvent
	Fail     bool
}

func (p *capturePublisher) Publish(ctx context.Context, channel string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail {
		return fmt.Errorf("broker unreachable")
	}
	p.channels = append(p.channels, channel)
	if event, ok := payload.(CommentEvent); ok {
		p.events = append(p.events, event)
	}
	return nil
}

// captureMail records dispatched mail; Fail makes every send error.
type captureMail struct {
	mu       sync.Mutex
	subjects []string
	bodies   []string
	sends    [][]string
	Fail     bool
}

func (m *captureMail) send(subject, body string, to []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("smtp unreachable")
	}
	m.subjects = append(m.subjects, subject)
	m.bodies = append(m.bodies, body)
	m.sends = append(m.sends, append([]string(nil), to...))
	return nil
}

type staticPhotos struct{}

func (staticPhotos) PhotoPath(ctx context.Context, userID uint) string {
	return "/static/img/default_avatar.png"
}

type noopRemover struct{ removed []string }

func (r *noopRemover) RemoveTopicAttachments(attachmentID string) error {
	r.removed = append(r.removed, attachmentID)
	return nil
}

func newTestPipeline(t *testing.T, db *gorm.DB, publisher Publisher, mail *captureMail) (*Pipeline, *noopRemover) {
	t.Helper()
	remover := &noopRemover{}
	pipeline := NewPipeline(Deps{
		DB:          db,
		Store:       NewStore(db),
		Resolver:    NewResolver(db),
		Gate:        NewGate(db),
		Publisher:   publisher,
		Mail:        NewDispatcher(mail.send, nil),
		Photos:      staticPhotos{},
		Attachments: remover,
		Site:        Site{Name: "Agora", URL: "http://example.com", StaticURL: "/static/"},
	})
	return pipeline, remover
}
