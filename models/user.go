package models

import "time"

// User is the narrow read surface the forum needs: identity, mail address
// and avatar. Credentials live with the external auth service.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:255" json:"email"`
	AvatarURL string    `gorm:"size:512" json:"avatar_url"`
	Signature string    `gorm:"size:255" json:"signature"`
	CreatedAt time.Time `json:"created_at"`
}
