package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tableguild/tableguild/internal/model"
	"github.com/tableguild/tableguild/internal/repository"
	"github.com/tableguild/tableguild/middleware/jwt"
	"github.com/tableguild/tableguild/pkg/utils"
)

var (
	ErrMemberAlreadyExists = errors.New("member already exists")
	ErrMemberNotFound      = errors.New("member not found")
	ErrPasswordIncorrect   = errors.New("password incorrect")
	ErrInvalidUserName     = errors.New("invalid username format")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrWeakPassword        = errors.New("password must be at least 8 characters")
	ErrAccountDeactivated  = errors.New("account is deactivated")
)

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	UserName string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	UserName string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	MemberID string `json:"member_id"`
	UserName string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Token    string `json:"token,omitempty"`
}

type IAuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
}

type AuthService struct {
	memberRepo   repository.IMemberRepository
	tokenManager *jwt.TokenManager
}

func NewAuthService(memberRepo repository.IMemberRepository, tokenManager *jwt.TokenManager) IAuthService {
	return &AuthService{
		memberRepo:   memberRepo,
		tokenManager: tokenManager,
	}
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if !utils.ValidateUserName(req.UserName) {
		return nil, ErrInvalidUserName
	}
	if !utils.ValidateEmail(req.Email) {
		return nil, ErrInvalidEmail
	}
	if !utils.ValidatePassword(req.Password) {
		return nil, ErrWeakPassword
	}

	exists, err := s.memberRepo.ExistsByUserName(ctx, req.UserName)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, ErrMemberAlreadyExists
	}

	exists, err = s.memberRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrMemberAlreadyExists
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	member := &model.Member{
		ID:           uuid.NewString(),
		UserName:     req.UserName,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         model.RoleMember,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	return &AuthResponse{
		MemberID: member.ID,
		UserName: member.UserName,
		Email:    member.Email,
		Role:     member.Role,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	member, err := s.memberRepo.FindByUserName(ctx, req.UserName)
	if err != nil {
		// Soft-deleted members are invisible to the default scope, so a
		// deactivated account logs in like an unknown one.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to look up member: %w", err)
	}

	if !utils.CheckPassword(member.PasswordHash, req.Password) {
		return nil, ErrPasswordIncorrect
	}

	token, err := s.tokenManager.GenerateToken(member.ID, member.UserName, member.Email, member.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResponse{
		MemberID: member.ID,
		UserName: member.UserName,
		Email:    member.Email,
		Role:     member.Role,
		Token:    token,
	}, nil
}
