package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tableguild/tableguild/internal/model"
	"github.com/tableguild/tableguild/internal/repository"
	"github.com/tableguild/tableguild/internal/storage"
)

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrNotResourceOwner = errors.New("not the resource owner")
	ErrFileTooLarge     = errors.New("file exceeds the upload size limit")
	ErrBadFileName      = errors.New("file name is not storable")
)

type IResourceService interface {
	Upload(ctx context.Context, ownerID, entity, fileName, contentType string, r io.Reader) (*model.Resource, error)
	Download(ctx context.Context, id string) (*model.Resource, io.ReadCloser, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Resource, error)
	Delete(ctx context.Context, actorID, actorRole, id string) error
}

type ResourceService struct {
	resourceRepo repository.IResourceRepository
	store        *storage.ObjectStore
	maxSizeBytes int64
}

func NewResourceService(resourceRepo repository.IResourceRepository, store *storage.ObjectStore, maxSizeMB int64) IResourceService {
	return &ResourceService{
		resourceRepo: resourceRepo,
		store:        store,
		maxSizeBytes: maxSizeMB << 20,
	}
}

// Upload streams the file into the object store and records its metadata.
// The store path is derived from owner, entity, and file name; writes are
// capped at the configured size limit.
func (s *ResourceService) Upload(ctx context.Context, ownerID, entity, fileName, contentType string, r io.Reader) (*model.Resource, error) {
	storePath, err := s.store.Path(ownerID, entity, fileName)
	if err != nil {
		return nil, ErrBadFileName
	}

	// Read one byte past the cap to tell "at the limit" from "over it".
	limited := io.LimitReader(r, s.maxSizeBytes+1)
	size, err := s.store.Put(storePath, limited)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if size > s.maxSizeBytes {
		_ = s.store.Delete(storePath)
		return nil, ErrFileTooLarge
	}

	resource := &model.Resource{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Entity:      entity,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   size,
		StorePath:   storePath,
	}
	if err := s.resourceRepo.Create(ctx, resource); err != nil {
		_ = s.store.Delete(storePath)
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}
	return resource, nil
}

// Download returns the resource metadata and an open reader over its bytes.
// The caller closes the reader.
func (s *ResourceService) Download(ctx context.Context, id string) (*model.Resource, io.ReadCloser, error) {
	resource, err := s.resourceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrResourceNotFound
		}
		return nil, nil, fmt.Errorf("failed to load resource: %w", err)
	}

	reader, err := s.store.Open(resource.StorePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open resource: %w", err)
	}
	return resource, reader, nil
}

func (s *ResourceService) ListByOwner(ctx context.Context, ownerID string) ([]*model.Resource, error) {
	resources, err := s.resourceRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return resources, nil
}

// Delete removes both the metadata row and the stored object. Owner or
// admin only.
func (s *ResourceService) Delete(ctx context.Context, actorID, actorRole, id string) error {
	resource, err := s.resourceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResourceNotFound
		}
		return fmt.Errorf("failed to load resource: %w", err)
	}

	if resource.OwnerID != actorID && actorRole != model.RoleAdmin {
		return ErrNotResourceOwner
	}

	if err := s.resourceRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResourceNotFound
		}
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	return s.store.Delete(resource.StorePath)
}
