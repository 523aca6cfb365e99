package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tableguild/tableguild/internal/service"
)

type GameHandler struct {
	gameService     service.IGameService
	scheduleService service.IScheduleService
	resourceService service.IResourceService
}

func NewGameHandler(
	gameService service.IGameService,
	scheduleService service.IScheduleService,
	resourceService service.IResourceService,
) *GameHandler {
	return &GameHandler{
		gameService:     gameService,
		scheduleService: scheduleService,
		resourceService: resourceService,
	}
}

// Create handles game creation by a gamemaster
func (h *GameHandler) Create(c *gin.Context) {
	var req service.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.gameService.Create(c.Request.Context(), c.GetString("member_id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSeatLimitInvalid),
			errors.Is(err, service.ErrInvalidVisibility),
			errors.Is(err, service.ErrInvalidInterval),
			errors.Is(err, service.ErrInvalidDayOfWeek):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create game"})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// List returns public games plus the caller's own
func (h *GameHandler) List(c *gin.Context) {
	games, err := h.gameService.List(c.Request.Context(), c.GetString("member_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list games"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": games, "count": len(games)})
}

// Get returns one game with its schedule
func (h *GameHandler) Get(c *gin.Context) {
	resp, err := h.gameService.Get(c.Request.Context(), c.Param("id"))
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

// Update edits a game owned by the caller
func (h *GameHandler) Update(c *gin.Context) {
	var req service.UpdateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.gameService.Update(c.Request.Context(),
		c.GetString("member_id"), c.GetString("role"), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotGameOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrSeatLimitInvalid),
			errors.Is(err, service.ErrInvalidVisibility):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update game"})
		}
		return
	}

	c.JSON(http.StatusOK, game)
}

// Delete soft-deletes a game owned by the caller
func (h *GameHandler) Delete(c *gin.Context) {
	err := h.gameService.SoftDelete(c.Request.Context(),
		c.GetString("member_id"), c.GetString("role"), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotGameOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete game"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "game deleted"})
}

// UpdateSchedule edits the game's recurrence settings
func (h *GameHandler) UpdateSchedule(c *gin.Context) {
	var req service.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gameID := c.Param("id")

	// Ownership check against the game before touching the schedule.
	resp, err := h.gameService.Get(c.Request.Context(), gameID)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load game"})
		return
	}
	if !h.gameService.OwnedBy(resp.Game, c.GetString("member_id"), c.GetString("role")) {
		c.JSON(http.StatusForbidden, gin.H{"error": service.ErrNotGameOwner.Error()})
		return
	}

	schedule, err := h.scheduleService.Update(c.Request.Context(), gameID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrScheduleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidInterval),
			errors.Is(err, service.ErrInvalidDayOfWeek),
			errors.Is(err, service.ErrDateMovesBackwards),
			errors.Is(err, service.ErrInvalidScheduleState):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update schedule"})
		}
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// UploadCover stores a cover image for the game
func (h *GameHandler) UploadCover(c *gin.Context) {
	gameID := c.Param("id")
	actorID := c.GetString("member_id")
	actorRole := c.GetString("role")

	resp, err := h.gameService.Get(c.Request.Context(), gameID)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load game"})
		return
	}
	if !h.gameService.OwnedBy(resp.Game, actorID, actorRole) {
		c.JSON(http.StatusForbidden, gin.H{"error": service.ErrNotGameOwner.Error()})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer file.Close()

	resource, err := h.resourceService.Upload(c.Request.Context(), actorID,
		fmt.Sprintf("game-%s", gameID), fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrBadFileName):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store cover"})
		}
		return
	}

	if err := h.gameService.SetCoverPath(c.Request.Context(), actorID, actorRole, gameID, resource.StorePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to attach cover"})
		return
	}

	c.JSON(http.StatusCreated, resource)
}
