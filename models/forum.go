package models

import "time"

// Forum is a named discussion board. When IsModerate is set, new topics from
// non-moderators stay hidden until approved.
type Forum struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"size:64;index" json:"category"`
	IsModerate  bool      `gorm:"not null;default:false" json:"is_moderate"`
	Hidden      bool      `gorm:"not null;default:false" json:"hidden"`
	CreatedAt   time.Time `json:"created_at"`
	Moderators  []User    `gorm:"many2many:forum_moderators;" json:"moderators,omitempty"`
}

// Register is a forum membership: one row per (forum, user). Members get
// persisted and realtime notifications; non-members additionally get email.
type Register struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ForumID   uint      `gorm:"index:idx_register_forum_user,unique;not null" json:"forum_id"`
	UserID    uint      `gorm:"index:idx_register_forum_user,unique;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
