package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lmenendez/agora/middleware"
	"github.com/lmenendez/agora/models"
	"github.com/lmenendez/agora/notify"
	"github.com/lmenendez/agora/utils"
)

// CommentController manages comments. Creation fans out notifications through
// the pipeline; deletion cascades them away.
type CommentController struct {
	db       *gorm.DB
	pipeline *notify.Pipeline
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB, pipeline *notify.Pipeline) *CommentController {
	return &CommentController{db: db, pipeline: pipeline}
}

// CreateComment adds a comment to a topic and runs the notification
// fan-out. Only the comment insert itself can fail the request; notification
// and publish failures degrade silently.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	var req struct {
		Description string `json:"description" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "description is required")
		return
	}

	description := utils.Sanitize(strings.TrimSpace(req.Description))
	if description == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "description cannot be empty")
		return
	}

	var topic models.Topic
	if err := c.db.First(&topic, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40411, "topic not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to load topic")
		}
		return
	}

	var forum models.Forum
	if err := c.db.First(&forum, topic.ForumID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load forum")
		return
	}

	poster, ok := currentUser(ctx, c.db)
	if !ok {
		return
	}

	comment := models.Comment{
		TopicID:     topic.ID,
		UserID:      poster.ID,
		Description: description,
	}
	if err := c.pipeline.CreateComment(ctx.Request.Context(), &comment, &topic, &forum, &poster); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to create comment")
		return
	}

	utils.Success(ctx, gin.H{"comment": comment})
}

// UpdateComment edits the author's own comment description.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	var req struct {
		Description string `json:"description" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "description is required")
		return
	}

	comment, ok := c.loadOwnComment(ctx)
	if !ok {
		return
	}

	description := utils.Sanitize(strings.TrimSpace(req.Description))
	if description == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "description cannot be empty")
		return
	}

	if err := c.db.Model(&comment).Update("description", description).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to update comment")
		return
	}
	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment removes the author's own comment and every notification row
// referencing it.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	comment, ok := c.loadOwnComment(ctx)
	if !ok {
		return
	}

	if err := c.pipeline.DeleteComment(ctx.Request.Context(), &comment); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to delete comment")
		return
	}
	utils.Success(ctx, gin.H{"deleted": true})
}

func (c *CommentController) loadOwnComment(ctx *gin.Context) (models.Comment, bool) {
	var comment models.Comment
	if err := c.db.First(&comment, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40412, "comment not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load comment")
		}
		return models.Comment{}, false
	}

	userID, ok := middleware.UserID(ctx)
	if !ok || userID != comment.UserID {
		utils.Error(ctx, http.StatusNotFound, 40412, "comment not found")
		return models.Comment{}, false
	}
	return comment, true
}
