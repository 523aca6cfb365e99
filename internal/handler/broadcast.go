package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tableguild/tableguild/internal/service"
)

type BroadcastHandler struct {
	broadcastService service.IBroadcastService
}

func NewBroadcastHandler(broadcastService service.IBroadcastService) *BroadcastHandler {
	return &BroadcastHandler{
		broadcastService: broadcastService,
	}
}

// SendToGame announces to a game's approved players
func (h *BroadcastHandler) SendToGame(c *gin.Context) {
	var req service.SendBroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	broadcast, err := h.broadcastService.SendToGame(c.Request.Context(),
		c.GetString("member_id"), c.GetString("role"), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotGameOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrEmptyBroadcast):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send broadcast"})
		}
		return
	}

	c.JSON(http.StatusCreated, broadcast)
}

// SendToClub announces club-wide, admin only
func (h *BroadcastHandler) SendToClub(c *gin.Context) {
	var req service.SendBroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	broadcast, err := h.broadcastService.SendToClub(c.Request.Context(),
		c.GetString("member_id"), c.GetString("role"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotClubAdmin):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrEmptyBroadcast):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send broadcast"})
		}
		return
	}

	c.JSON(http.StatusCreated, broadcast)
}

// ListByGame returns a game's announcements to its audience
func (h *BroadcastHandler) ListByGame(c *gin.Context) {
	broadcasts, err := h.broadcastService.ListByGame(c.Request.Context(),
		c.GetString("member_id"), c.GetString("role"), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrBroadcastAudience):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list broadcasts"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": broadcasts, "count": len(broadcasts)})
}

// ListClubWide returns the club-wide announcement feed
func (h *BroadcastHandler) ListClubWide(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	broadcasts, err := h.broadcastService.ListClubWide(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list broadcasts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": broadcasts, "count": len(broadcasts)})
}
