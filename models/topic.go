package models

import "time"

// Topic is the root post of a discussion thread. Moderate is decided exactly
// once at creation time and gates public visibility; it is never flipped by
// this service afterwards.
type Topic struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ForumID      uint      `gorm:"index;not null" json:"forum_id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Slug         string    `gorm:"size:255;index;not null" json:"slug"`
	Description  string    `gorm:"type:text" json:"description"`
	Moderate     bool      `gorm:"not null;default:false" json:"moderate"`
	IsTop        bool      `gorm:"not null;default:false" json:"is_top"`
	AttachmentID string    `gorm:"size:64" json:"attachment_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	User         User      `json:"author,omitempty"`
}
