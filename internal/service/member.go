package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tableguild/tableguild/internal/model"
	"github.com/tableguild/tableguild/internal/repository"
	"github.com/tableguild/tableguild/pkg/utils"
)

var (
	ErrInvalidRole    = errors.New("invalid role")
	ErrNotDeactivated = errors.New("account is not deactivated")
)

// UpdateProfileRequest carries the editable profile fields.
type UpdateProfileRequest struct {
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
}

type IMemberService interface {
	GetProfile(ctx context.Context, memberID string) (*model.Member, error)
	UpdateProfile(ctx context.Context, memberID string, req *UpdateProfileRequest) error
	ChangePassword(ctx context.Context, memberID, oldPassword, newPassword string) error
	RequestDeletion(ctx context.Context, memberID string) error
	Restore(ctx context.Context, memberID string) (*model.Member, error)
	ChangeRole(ctx context.Context, actorID, memberID, role string) error
}

type MemberService struct {
	memberRepo   repository.IMemberRepository
	auditService IAuditService
}

func NewMemberService(memberRepo repository.IMemberRepository, auditService IAuditService) IMemberService {
	return &MemberService{
		memberRepo:   memberRepo,
		auditService: auditService,
	}
}

func (s *MemberService) GetProfile(ctx context.Context, memberID string) (*model.Member, error) {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to load member: %w", err)
	}
	return member, nil
}

func (s *MemberService) UpdateProfile(ctx context.Context, memberID string, req *UpdateProfileRequest) error {
	member, err := s.GetProfile(ctx, memberID)
	if err != nil {
		return err
	}

	member.Nickname = req.Nickname
	member.AvatarURL = req.AvatarURL

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (s *MemberService) ChangePassword(ctx context.Context, memberID, oldPassword, newPassword string) error {
	member, err := s.GetProfile(ctx, memberID)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(member.PasswordHash, oldPassword) {
		return ErrPasswordIncorrect
	}
	if !utils.ValidatePassword(newPassword) {
		return ErrWeakPassword
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	member.PasswordHash = hash

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// RequestDeletion deactivates the account. The member can restore within
// the retention window; after that the purge job removes the row for good.
func (s *MemberService) RequestDeletion(ctx context.Context, memberID string) error {
	now := time.Now()
	if err := s.memberRepo.RequestDeletion(ctx, memberID, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to request deletion: %w", err)
	}

	return s.auditService.Record(ctx, model.AuditMemberDeleted, memberID, "member", memberID, map[string]any{
		"requested_at": now,
	})
}

// Restore reactivates a deactivated account while the retention window is
// still open.
func (s *MemberService) Restore(ctx context.Context, memberID string) (*model.Member, error) {
	member, err := s.memberRepo.Restore(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotDeactivated
		}
		return nil, fmt.Errorf("failed to restore member: %w", err)
	}

	if err := s.auditService.Record(ctx, model.AuditMemberRestored, memberID, "member", memberID, nil); err != nil {
		return nil, err
	}
	return member, nil
}

// ChangeRole grants or revokes elevated roles. Admin only; the handler
// enforces that, the service validates the target role.
func (s *MemberService) ChangeRole(ctx context.Context, actorID, memberID, role string) error {
	switch role {
	case model.RoleMember, model.RoleGamemaster, model.RoleAdmin:
	default:
		return ErrInvalidRole
	}

	if err := s.memberRepo.UpdateRole(ctx, memberID, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to update role: %w", err)
	}

	return s.auditService.Record(ctx, model.AuditRoleChanged, actorID, "member", memberID, map[string]any{
		"role": role,
	})
}
