package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// NotificationsChannel is the pub/sub channel live clients subscribe to.
const NotificationsChannel = "notifications"

// CommentEvent is the wire payload published when a comment is created. The
// field names are what existing socket clients already decode; renaming any of
// them breaks the live notification dropdown.
type CommentEvent struct {
	Description string `json:"description"`
	TopicTitle  string `json:"topic"`
	TopicID     uint   `json:"idtopic"`
	Slug        string `json:"slug"`
	StaticURL   string `json:"settings_static"`
	Username    string `json:"username"`
	Forum       string `json:"forum"`
	Recipients  []uint `json:"lista_us"`
	Photo       string `json:"photo"`
}

// Publisher pushes a serialized payload to all current subscribers of a
// channel. No persistence, no delivery guarantee, no retry.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// RedisPublisher publishes JSON payloads through a redis client with a short
// bounded timeout, so a slow broker degrades instead of stalling the request.
type RedisPublisher struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisPublisher wraps the client with the default 2s publish timeout.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client, timeout: 2 * time.Second}
}

// Publish marshals the payload and fires it at the channel. Zero subscribers
// is not an error.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.client.Publish(ctx, channel, b).Err()
}
