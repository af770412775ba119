package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lmenendez/agora/middleware"
	"github.com/lmenendez/agora/models"
	"github.com/lmenendez/agora/notify"
	"github.com/lmenendez/agora/utils"
)

// TopicController manages topic CRUD. Creation and deletion run through the
// notification pipeline.
type TopicController struct {
	db       *gorm.DB
	pipeline *notify.Pipeline
}

// NewTopicController creates a new TopicController instance.
func NewTopicController(db *gorm.DB, pipeline *notify.Pipeline) *TopicController {
	return &TopicController{db: db, pipeline: pipeline}
}

// CreateTopic submits a new topic to a forum. The moderation gate decides
// visibility before the row is written; a held topic alerts the moderators.
func (t *TopicController) CreateTopic(ctx *gin.Context) {
	var req struct {
		Title         string `json:"title" binding:"required,min=1"`
		Description   string `json:"description"`
		HasAttachment bool   `json:"has_attachment"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	title := utils.SanitizePlain(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "title cannot be empty")
		return
	}

	var forum models.Forum
	err := t.db.Where("name = ? AND hidden = ?", ctx.Param("name"), false).First(&forum).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "forum not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load forum")
		}
		return
	}

	author, ok := currentUser(ctx, t.db)
	if !ok {
		return
	}

	topic := models.Topic{
		ForumID:     forum.ID,
		UserID:      author.ID,
		Title:       title,
		Slug:        utils.Slugify(title),
		Description: utils.Sanitize(req.Description),
	}
	if req.HasAttachment {
		// The id names the storage folder the external upload service will
		// populate; it travels back to the client in the response.
		topic.AttachmentID = utils.NewAttachmentID()
	}

	if err := t.pipeline.CreateTopic(ctx.Request.Context(), &topic, &forum, &author); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create topic")
		return
	}

	utils.InvalidateByPrefix(topicCachePrefix(forum.ID))
	utils.Success(ctx, gin.H{"topic": topic})
}

// ListTopics returns a forum's topics, pinned first then newest. Anonymous
// callers see only published topics (served from cache when possible);
// authenticated callers additionally see their own held topics; moderators
// see everything.
func (t *TopicController) ListTopics(ctx *gin.Context) {
	var forum models.Forum
	err := t.db.Where("name = ? AND hidden = ?", ctx.Param("name"), false).First(&forum).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "forum not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load forum")
		}
		return
	}

	userID, authed := bearerUserID(ctx)

	cacheKey := topicCachePrefix(forum.ID) + "public"
	if !authed {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(200, "application/json", b)
			return
		}
	}

	query := t.db.Preload("User").
		Where("forum_id = ?", forum.ID).
		Order("is_top DESC, created_at DESC")

	switch {
	case !authed:
		query = query.Where("moderate = ?", true)
	default:
		isModerator, err := t.pipeline.Gate().IsModerator(ctx.Request.Context(), forum.ID, userID)
		if err != nil || !isModerator {
			query = query.Where("moderate = ? OR user_id = ?", true, userID)
		}
	}

	var topics []models.Topic
	if err := query.Find(&topics).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to list topics")
		return
	}

	payload := gin.H{"topics": topics}
	if !authed {
		wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
		utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	}
	utils.Success(ctx, payload)
}

// SearchTopics filters a forum's published topics by title substring.
func (t *TopicController) SearchTopics(ctx *gin.Context) {
	var forum models.Forum
	err := t.db.Where("name = ?", ctx.Param("name")).First(&forum).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "forum not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load forum")
		}
		return
	}

	search := strings.TrimSpace(ctx.Query("q"))
	var topics []models.Topic
	if err := t.db.Preload("User").
		Where("forum_id = ? AND moderate = ? AND title LIKE ?", forum.ID, true, "%"+search+"%").
		Order("created_at DESC").
		Find(&topics).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to search topics")
		return
	}
	utils.Success(ctx, gin.H{"topics": topics})
}

// GetTopic returns one topic with its comments. A held topic is visible only
// to its author and the forum's moderators.
func (t *TopicController) GetTopic(ctx *gin.Context) {
	topic, ok := t.loadTopic(ctx)
	if !ok {
		return
	}

	if !topic.Moderate {
		userID, authed := bearerUserID(ctx)
		visible := authed && userID == topic.UserID
		if !visible && authed {
			isModerator, err := t.pipeline.Gate().IsModerator(ctx.Request.Context(), topic.ForumID, userID)
			visible = err == nil && isModerator
		}
		if !visible {
			utils.Error(ctx, http.StatusNotFound, 40411, "topic not found")
			return
		}
	}

	var comments []models.Comment
	if err := t.db.Preload("User").
		Where("topic_id = ?", topic.ID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to load comments")
		return
	}

	utils.Success(ctx, gin.H{"topic": topic, "comments": comments})
}

// UpdateTopic edits a topic's title and description. Only the author may
// edit; the slug follows the new title.
func (t *TopicController) UpdateTopic(ctx *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,min=1"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	topic, ok := t.loadTopic(ctx)
	if !ok {
		return
	}
	userID, ok := middleware.UserID(ctx)
	if !ok || userID != topic.UserID {
		utils.Error(ctx, http.StatusNotFound, 40411, "topic not found")
		return
	}

	title := utils.SanitizePlain(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "title cannot be empty")
		return
	}

	updates := map[string]interface{}{
		"title":       title,
		"slug":        utils.Slugify(title),
		"description": utils.Sanitize(req.Description),
	}
	if err := t.db.Model(&topic).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to update topic")
		return
	}

	utils.InvalidateByPrefix(topicCachePrefix(topic.ForumID))
	utils.Success(ctx, gin.H{"topic": topic})
}

// DeleteTopic removes the author's topic along with its comments, the
// notifications referencing them, and the attachment storage.
func (t *TopicController) DeleteTopic(ctx *gin.Context) {
	topic, ok := t.loadTopic(ctx)
	if !ok {
		return
	}
	userID, ok := middleware.UserID(ctx)
	if !ok || userID != topic.UserID {
		utils.Error(ctx, http.StatusNotFound, 40411, "topic not found")
		return
	}

	if err := t.pipeline.DeleteTopic(ctx.Request.Context(), &topic); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to delete topic")
		return
	}

	utils.InvalidateByPrefix(topicCachePrefix(topic.ForumID))
	utils.Success(ctx, gin.H{"deleted": true})
}

func (t *TopicController) loadTopic(ctx *gin.Context) (models.Topic, bool) {
	var topic models.Topic
	err := t.db.Preload("User").First(&topic, ctx.Param("id")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40411, "topic not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to load topic")
		}
		return models.Topic{}, false
	}
	return topic, true
}

func topicCachePrefix(forumID uint) string {
	return fmt.Sprintf("cache:topics:forum=%d:", forumID)
}

// currentUser loads the authenticated user's full record.
func currentUser(ctx *gin.Context, db *gorm.DB) (models.User, bool) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return models.User{}, false
	}
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "user not found")
		return models.User{}, false
	}
	return user, true
}
