package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lmenendez/agora/middleware"
	"github.com/lmenendez/agora/models"
	"github.com/lmenendez/agora/utils"
)

// ForumController serves forum listings and membership registration.
type ForumController struct {
	db *gorm.DB
}

// NewForumController creates a new ForumController instance.
func NewForumController(db *gorm.DB) *ForumController {
	return &ForumController{db: db}
}

// ListForums returns all visible forums, optionally filtered by category.
func (f *ForumController) ListForums(ctx *gin.Context) {
	query := f.db.Where("hidden = ?", false).Order("name ASC")
	if category := strings.TrimSpace(ctx.Query("category")); category != "" {
		query = query.Where("category = ?", category)
	}

	var forums []models.Forum
	if err := query.Find(&forums).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to list forums")
		return
	}
	utils.Success(ctx, gin.H{"forums": forums})
}

// GetForum returns one visible forum. When the caller presents a valid
// bearer token the response includes whether they are registered.
func (f *ForumController) GetForum(ctx *gin.Context) {
	forum, ok := f.loadForum(ctx)
	if !ok {
		return
	}

	registered := false
	if userID, ok := bearerUserID(ctx); ok {
		var count int64
		f.db.Model(&models.Register{}).
			Where("forum_id = ? AND user_id = ?", forum.ID, userID).
			Count(&count)
		registered = count > 0
	}

	utils.Success(ctx, gin.H{"forum": forum, "registered": registered})
}

// Join registers the authenticated user as a member of the forum. Joining a
// forum twice is a no-op.
func (f *ForumController) Join(ctx *gin.Context) {
	forum, ok := f.loadForum(ctx)
	if !ok {
		return
	}
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	register := models.Register{ForumID: forum.ID, UserID: userID}
	err := f.db.Where("forum_id = ? AND user_id = ?", forum.ID, userID).
		FirstOrCreate(&register).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to register")
		return
	}
	utils.Success(ctx, gin.H{"registered": true})
}

// Leave removes the authenticated user's membership.
func (f *ForumController) Leave(ctx *gin.Context) {
	forum, ok := f.loadForum(ctx)
	if !ok {
		return
	}
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	err := f.db.Where("forum_id = ? AND user_id = ?", forum.ID, userID).
		Delete(&models.Register{}).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to unregister")
		return
	}
	utils.Success(ctx, gin.H{"registered": false})
}

// ListMembers returns registered users plus moderators, deduplicated.
func (f *ForumController) ListMembers(ctx *gin.Context) {
	forum, ok := f.loadForum(ctx)
	if !ok {
		return
	}

	var memberIDs []uint
	if err := f.db.Model(&models.Register{}).
		Where("forum_id = ?", forum.ID).
		Pluck("user_id", &memberIDs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to list members")
		return
	}

	var moderators []models.User
	if err := f.db.Model(&forum).Association("Moderators").Find(&moderators); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to list members")
		return
	}

	seen := map[uint]bool{}
	ids := make([]uint, 0, len(memberIDs)+len(moderators))
	for _, id := range memberIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, moderator := range moderators {
		if !seen[moderator.ID] {
			seen[moderator.ID] = true
			ids = append(ids, moderator.ID)
		}
	}

	var users []models.User
	if len(ids) > 0 {
		if err := f.db.Find(&users, ids).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to list members")
			return
		}
	}
	utils.Success(ctx, gin.H{"users": users})
}

func (f *ForumController) loadForum(ctx *gin.Context) (models.Forum, bool) {
	var forum models.Forum
	err := f.db.Where("name = ? AND hidden = ?", ctx.Param("name"), false).First(&forum).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "forum not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load forum")
		}
		return models.Forum{}, false
	}
	return forum, true
}

// bearerUserID parses an optional Authorization header on public routes.
func bearerUserID(ctx *gin.Context) (uint, bool) {
	header := ctx.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return 0, false
	}
	claims, err := utils.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, false
	}
	return claims.UserID, true
}
