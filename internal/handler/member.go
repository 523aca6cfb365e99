package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tableguild/tableguild/internal/service"
)

type MemberHandler struct {
	memberService service.IMemberService
}

func NewMemberHandler(memberService service.IMemberService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
	}
}

// GetProfile returns the authenticated member's profile
func (h *MemberHandler) GetProfile(c *gin.Context) {
	memberID := c.GetString("member_id")

	member, err := h.memberService.GetProfile(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, member)
}

// UpdateProfile updates the editable profile fields
func (h *MemberHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	memberID := c.GetString("member_id")
	if err := h.memberService.UpdateProfile(c.Request.Context(), memberID, &req); err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "profile updated"})
}

// ChangePassword verifies the old password before setting the new one
func (h *MemberHandler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	memberID := c.GetString("member_id")
	err := h.memberService.ChangePassword(c.Request.Context(), memberID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordIncorrect):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrMemberNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

// RequestDeletion deactivates the account, restorable within the retention
// window
func (h *MemberHandler) RequestDeletion(c *gin.Context) {
	memberID := c.GetString("member_id")

	if err := h.memberService.RequestDeletion(c.Request.Context(), memberID); err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to request deletion"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deletion requested"})
}

// Restore reactivates a deactivated account
func (h *MemberHandler) Restore(c *gin.Context) {
	memberID := c.GetString("member_id")

	member, err := h.memberService.Restore(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, service.ErrNotDeactivated) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to restore account"})
		return
	}

	c.JSON(http.StatusOK, member)
}
