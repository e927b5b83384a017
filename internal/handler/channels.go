package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"channel-metrics/internal/repository"
)

type ChannelsHandler interface {
	RegisterChannel(c *gin.Context)
	DeleteChannel(c *gin.Context)
	ListChannels(c *gin.Context)
}

type channelsHandler struct {
	channelRepo repository.ChannelRepository
	logger      *zap.Logger
}

func NewChannelsHandler(channelRepo repository.ChannelRepository, logger *zap.Logger) ChannelsHandler {
	return &channelsHandler{channelRepo: channelRepo, logger: logger}
}

type registerChannelRequest struct {
	ID     int64  `json:"id" binding:"required"`
	UserID int64  `json:"user_id" binding:"required"`
	Title  string `json:"title"`
}

// RegisterChannel handles POST /api/channels
func (h *channelsHandler) RegisterChannel(c *gin.Context) {
	var req registerChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel, err := h.channelRepo.RegisterChannel(c.Request.Context(), req.ID, req.UserID, req.Title)
	if err != nil {
		h.logger.Error("Failed to register channel",
			zap.Int64("channel_id", req.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register channel"})
		return
	}

	c.JSON(http.StatusOK, channel)
}

// DeleteChannel handles DELETE /api/channels/:id. The cascade removes the
// channel's posts and all their metric snapshots.
func (h *channelsHandler) DeleteChannel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	if err := h.channelRepo.DeleteChannel(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to delete channel",
			zap.Int64("channel_id", id),
			zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ListChannels handles GET /api/channels?user_id=
func (h *channelsHandler) ListChannels(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	channels, err := h.channelRepo.GetChannelsByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list channels",
			zap.Int64("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list channels"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"channels": channels})
}
