package notify

import (
	"context"

	"gorm.io/gorm"

	"github.com/lmenendez/agora/models"
)

// Gate decides at creation time whether a new topic is publicly visible or
// held for moderation.
type Gate struct {
	db *gorm.DB
}

// NewGate creates a moderation Gate backed by the given database.
func NewGate(db *gorm.DB) *Gate {
	return &Gate{db: db}
}

// Decide returns whether the topic is immediately visible. When the topic is
// held it also returns the forum's moderators so the caller can alert them.
// Rules: an unmoderated forum publishes instantly; moderators self-approve;
// everyone else is held.
func (g *Gate) Decide(ctx context.Context, forum *models.Forum, authorID uint) (bool, []models.User, error) {
	if !forum.IsModerate {
		return true, nil, nil
	}

	var moderators []models.User
	if err := g.db.WithContext(ctx).Model(forum).Association("Moderators").Find(&moderators); err != nil {
		return false, nil, err
	}

	for _, moderator := range moderators {
		if moderator.ID == authorID {
			return true, nil, nil
		}
	}
	return false, moderators, nil
}

// IsModerator reports whether the user moderates the forum.
func (g *Gate) IsModerator(ctx context.Context, forumID, userID uint) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).
		Table("forum_moderators").
		Where("forum_id = ? AND user_id = ?", forumID, userID).
		Count(&count).Error
	return count > 0, err
}
