package notify

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/lmenendez/agora/models"
)

// PhotoResolver maps a user to the photo asset shown next to their realtime
// notification.
type PhotoResolver interface {
	PhotoPath(ctx context.Context, userID uint) string
}

type dbPhotoResolver struct {
	db        *gorm.DB
	staticURL string
}

// NewPhotoResolver resolves photos from the user's avatar, falling back to
// the default asset under the static base path.
func NewPhotoResolver(db *gorm.DB, staticURL string) PhotoResolver {
	return &dbPhotoResolver{db: db, staticURL: staticURL}
}

func (r *dbPhotoResolver) PhotoPath(ctx context.Context, userID uint) string {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err == nil && user.AvatarURL != "" {
		return user.AvatarURL
	}
	return strings.TrimRight(r.staticURL, "/") + "/img/default_avatar.png"
}
