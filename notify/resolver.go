package notify

import (
	"context"

	"gorm.io/gorm"

	"github.com/lmenendez/agora/models"
)

// Resolver computes who should be notified about a new comment on a topic.
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates a Resolver backed by the given database.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Recipients returns the identifiers of every user who has commented on the
// topic, in first-comment order, without duplicates and without the poster.
// The read is point-in-time; concurrent comments may race on the topic
// author's inclusion, which the caller accepts.
func (r *Resolver) Recipients(ctx context.Context, topicID, posterID uint) ([]uint, error) {
	var authors []uint
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("topic_id = ?", topicID).
		Order("created_at ASC, id ASC").
		Pluck("user_id", &authors).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(authors))
	recipients := make([]uint, 0, len(authors))
	for _, author := range authors {
		if author == posterID || seen[author] {
			continue
		}
		seen[author] = true
		recipients = append(recipients, author)
	}
	return recipients, nil
}
