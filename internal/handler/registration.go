package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tableguild/tableguild/internal/service"
)

type RegistrationHandler struct {
	registrationService service.IRegistrationService
}

func NewRegistrationHandler(registrationService service.IRegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
	}
}

// Request asks for a seat on a game
func (h *RegistrationHandler) Request(c *gin.Context) {
	registration, err := h.registrationService.Request(c.Request.Context(),
		c.GetString("member_id"), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAlreadyRegistered):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrOwnGame):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		}
		return
	}

	c.JSON(http.StatusCreated, registration)
}

// ListByGame returns a game's registrations to its gamemaster or an admin
func (h *RegistrationHandler) ListByGame(c *gin.Context) {
	registrations, err := h.registrationService.ListByGame(c.Request.Context(),
		c.GetString("member_id"), c.GetString("role"), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotGameOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list registrations"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": registrations, "count": len(registrations)})
}

// UpdateStatus applies one approval workflow transition
func (h *RegistrationHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	registration, err := h.registrationService.UpdateStatus(c.Request.Context(),
		c.GetString("member_id"), c.GetString("role"), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationNotFound),
			errors.Is(err, service.ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotGameOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidTransition),
			errors.Is(err, service.ErrGameFull):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
		}
		return
	}

	c.JSON(http.StatusOK, registration)
}
