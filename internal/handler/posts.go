package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"channel-metrics/internal/models"
	"channel-metrics/internal/repository"
)

type PostsHandler interface {
	RecordPost(c *gin.Context)
	SoftDeletePost(c *gin.Context)
	AppendMetric(c *gin.Context)
	ListPosts(c *gin.Context)
}

type postsHandler struct {
	postRepo     repository.PostRepository
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
}

func NewPostsHandler(postRepo repository.PostRepository, defaultLimit, maxLimit int, logger *zap.Logger) PostsHandler {
	return &postsHandler{
		postRepo:     postRepo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger,
	}
}

type recordPostRequest struct {
	ChannelID int64     `json:"channel_id" binding:"required"`
	MsgID     int64     `json:"msg_id" binding:"required"`
	Date      time.Time `json:"date" binding:"required"`
	Text      string    `json:"text"`
}

// RecordPost handles POST /api/posts
func (h *postsHandler) RecordPost(c *gin.Context) {
	var req recordPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.postRepo.RecordPost(c.Request.Context(), req.ChannelID, req.MsgID, req.Date, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidArgument):
			c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		case errors.Is(err, repository.ErrForeignKeyViolation):
			c.JSON(http.StatusConflict, gin.H{"error": "channel does not exist"})
		default:
			h.logger.Error("Failed to record post",
				zap.Int64("channel_id", req.ChannelID),
				zap.Int64("msg_id", req.MsgID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record post"})
		}
		return
	}

	c.JSON(http.StatusOK, post)
}

type softDeletePostRequest struct {
	ChannelID int64 `json:"channel_id" binding:"required"`
	MsgID     int64 `json:"msg_id" binding:"required"`
}

// SoftDeletePost handles POST /api/posts/delete. Soft delete is a state
// transition, not a resource removal, hence POST.
func (h *postsHandler) SoftDeletePost(c *gin.Context) {
	var req softDeletePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.postRepo.SoftDeletePost(c.Request.Context(), req.ChannelID, req.MsgID); err != nil {
		h.logger.Error("Failed to soft delete post",
			zap.Int64("channel_id", req.ChannelID),
			zap.Int64("msg_id", req.MsgID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type appendMetricRequest struct {
	ChannelID      int64                 `json:"channel_id" binding:"required"`
	MsgID          int64                 `json:"msg_id" binding:"required"`
	SnapshotTime   time.Time             `json:"snapshot_time" binding:"required"`
	Views          int64                 `json:"views"`
	Forwards       int64                 `json:"forwards"`
	RepliesCount   int64                 `json:"replies_count"`
	CommentsCount  int64                 `json:"comments_count"`
	Reactions      models.ReactionCounts `json:"reactions"`
	ReactionsCount int64                 `json:"reactions_count"`
}

// AppendMetric handles POST /api/metrics. A duplicate snapshot answers
// 200 with already_recorded set, so collector retries stay idempotent at
// the HTTP boundary too.
func (h *postsHandler) AppendMetric(c *gin.Context) {
	var req appendMetricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot := &models.PostMetricSnapshot{
		ChannelID:      req.ChannelID,
		MsgID:          req.MsgID,
		SnapshotTime:   req.SnapshotTime,
		Views:          req.Views,
		Forwards:       req.Forwards,
		RepliesCount:   req.RepliesCount,
		CommentsCount:  req.CommentsCount,
		Reactions:      req.Reactions,
		ReactionsCount: req.ReactionsCount,
	}

	err := h.postRepo.AppendMetricSnapshot(c.Request.Context(), snapshot)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateSnapshot):
			c.JSON(http.StatusOK, gin.H{"status": "ok", "already_recorded": true})
		case errors.Is(err, repository.ErrForeignKeyViolation):
			c.JSON(http.StatusConflict, gin.H{"error": "post does not exist"})
		case errors.Is(err, repository.ErrInvalidArgument):
			c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot_time is required"})
		default:
			h.logger.Error("Failed to append metric snapshot",
				zap.Int64("channel_id", req.ChannelID),
				zap.Int64("msg_id", req.MsgID),
				zap.Time("snapshot_time", req.SnapshotTime),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to append snapshot"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "already_recorded": false})
}

// ListPosts handles GET /api/posts?user_id=&limit=&offset=
func (h *postsHandler) ListPosts(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be an integer"})
			return
		}
	}

	items, total, err := h.postRepo.ListPostsWithLatestMetrics(c.Request.Context(), userID, limit, offset)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidArgument) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be positive and offset non-negative"})
			return
		}
		h.logger.Error("Failed to list posts",
			zap.Int64("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"total_count": total,
	})
}
