package model

import (
	"time"

	"gorm.io/gorm"
)

// Member roles. Admins can do everything a gamemaster can.
const (
	RoleMember     = "member"
	RoleGamemaster = "gamemaster"
	RoleAdmin      = "admin"
)

// Member is a club account. Gamemasters and admins are members with an
// elevated role.
type Member struct {
	ID           string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserName     string `gorm:"column:username;uniqueIndex;not null;type:varchar(255)" json:"username"`
	Email        string `gorm:"uniqueIndex;not null;type:varchar(255)" json:"email"`
	PasswordHash string `gorm:"not null;type:varchar(255)" json:"-"`
	Nickname     string `json:"nickname"`
	AvatarURL    string `json:"avatar_url"`
	Role         string `gorm:"not null;default:member;type:varchar(16)" json:"role"`

	// Set when the member asks for account deletion; the purge job removes
	// the row permanently once the retention window has passed.
	DeletionRequestedAt *time.Time `gorm:"index" json:"deletion_requested_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Member) TableName() string {
	return "members"
}
