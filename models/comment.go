package models

import "time"

// Comment is a reply attached to a topic. Deleting a comment cascades to the
// notification rows that reference it (weak reference, resolved by the
// pipeline, not the database).
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TopicID     uint      `gorm:"index;not null" json:"topic_id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	User        User      `json:"author,omitempty"`
}
