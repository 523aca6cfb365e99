package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tableguild/tableguild/internal/service"
)

type ResourceHandler struct {
	resourceService service.IResourceService
}

func NewResourceHandler(resourceService service.IResourceService) *ResourceHandler {
	return &ResourceHandler{
		resourceService: resourceService,
	}
}

// Upload stores a multipart file upload
func (h *ResourceHandler) Upload(c *gin.Context) {
	entity := c.DefaultPostForm("entity", "club")

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

	resource, err := h.resourceService.Upload(c.Request.Context(),
		c.GetString("member_id"), entity, fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrBadFileName):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		}
		return
	}

	c.JSON(http.StatusCreated, resource)
}

// Download streams a stored file back
func (h *ResourceHandler) Download(c *gin.Context) {
	resource, reader, err := h.resourceService.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrResourceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open resource"})
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", "attachment; filename=\""+resource.FileName+"\"")
	c.DataFromReader(http.StatusOK, resource.SizeBytes, resource.ContentType, reader, nil)
}

// ListMine returns the caller's uploads
func (h *ResourceHandler) ListMine(c *gin.Context) {
	resources, err := h.resourceService.ListByOwner(c.Request.Context(), c.GetString("member_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list resources"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resources, "count": len(resources)})
}

// Delete removes a resource, owner or admin only
func (h *ResourceHandler) Delete(c *gin.Context) {
	err := h.resourceService.Delete(c.Request.Context(),
		c.GetString("member_id"), c.GetString("role"), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResourceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotResourceOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete resource"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "resource deleted"})
}
