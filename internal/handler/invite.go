package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tableguild/tableguild/internal/service"
)

type InviteHandler struct {
	inviteService service.IInviteService
}

func NewInviteHandler(inviteService service.IInviteService) *InviteHandler {
	return &InviteHandler{
		inviteService: inviteService,
	}
}

// Create issues an invite for a game
func (h *InviteHandler) Create(c *gin.Context) {
	var req service.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invite, err := h.inviteService.Create(c.Request.Context(),
		c.GetString("member_id"), c.GetString("role"), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotGameOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInviteeMissing),
			errors.Is(err, service.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create invite"})
		}
		return
	}

	c.JSON(http.StatusCreated, invite)
}

// ListByGame returns a game's invites with their derived states
func (h *InviteHandler) ListByGame(c *gin.Context) {
	invites, err := h.inviteService.ListByGame(c.Request.Context(),
		c.GetString("member_id"), c.GetString("role"), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotGameOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list invites"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invites, "count": len(invites)})
}

// View resolves an invite by code and marks it viewed
func (h *InviteHandler) View(c *gin.Context) {
	invite, err := h.inviteService.View(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrInviteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load invite"})
		return
	}

	c.JSON(http.StatusOK, invite)
}

// Accept redeems an invite for the authenticated member
func (h *InviteHandler) Accept(c *gin.Context) {
	registration, err := h.inviteService.Accept(c.Request.Context(),
		c.Param("code"), c.GetString("member_id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInviteExpired):
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInviteWrongOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept invite"})
		}
		return
	}

	c.JSON(http.StatusOK, registration)
}
