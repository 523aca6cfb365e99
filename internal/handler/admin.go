package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tableguild/tableguild/internal/service"
)

type AdminHandler struct {
	gameService   service.IGameService
	memberService service.IMemberService
	auditService  service.IAuditService
}

func NewAdminHandler(
	gameService service.IGameService,
	memberService service.IMemberService,
	auditService service.IAuditService,
) *AdminHandler {
	return &AdminHandler{
		gameService:   gameService,
		memberService: memberService,
		auditService:  auditService,
	}
}

// GetGame returns a game by id, including soft-deleted ones
func (h *AdminHandler) GetGame(c *gin.Context) {
	resp, err := h.gameService.GetAny(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load game"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ReassignGamemaster hands a game to another gamemaster
func (h *AdminHandler) ReassignGamemaster(c *gin.Context) {
	var req struct {
		GamemasterID string `json:"gamemaster_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.gameService.ReassignGamemaster(c.Request.Context(),
		c.GetString("member_id"), c.Param("id"), req.GamemasterID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrMemberNotFound),
			errors.Is(err, service.ErrNotAGamemaster):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reassign gamemaster"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "gamemaster reassigned"})
}

// ChangeRole grants or revokes a member's role
func (h *AdminHandler) ChangeRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.memberService.ChangeRole(c.Request.Context(),
		c.GetString("member_id"), c.Param("id"), req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change role"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "role updated"})
}

// ListAudit pages the audit trail
func (h *AdminHandler) ListAudit(c *gin.Context) {
	action := c.Query("action")
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	entries, count, err := h.auditService.List(c.Request.Context(), action, offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit entries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries, "count": count})
}
