package models

import "time"

// TargetKind says what a notification points at.
type TargetKind string

const (
	TargetTopic   TargetKind = "topic"
	TargetComment TargetKind = "comment"
)

// NotificationTarget is a tagged reference to the object a notification is
// about. The kind makes the reference unambiguous without a foreign key:
// deleting the target does not delete the notification unless a caller
// cascades it explicitly.
type NotificationTarget struct {
	Kind TargetKind
	ID   uint
}

func TopicTarget(id uint) NotificationTarget   { return NotificationTarget{Kind: TargetTopic, ID: id} }
func CommentTarget(id uint) NotificationTarget { return NotificationTarget{Kind: TargetComment, ID: id} }

// Notification is one durable per-recipient record of an event. One row per
// (recipient, target) per triggering event; repeated events produce repeated
// rows.
type Notification struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	TargetKind TargetKind `gorm:"column:target_kind;size:16;not null" json:"target_kind"`
	TargetID   uint       `gorm:"column:target_id;index;not null" json:"target_id"`
	IsView     bool       `gorm:"not null;default:false" json:"is_view"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Target returns the tagged reference stored in the row.
func (n Notification) Target() NotificationTarget {
	return NotificationTarget{Kind: n.TargetKind, ID: n.TargetID}
}
