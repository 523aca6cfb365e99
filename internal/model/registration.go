package model

import "time"

// Registration statuses.
const (
	RegistrationPending  = "pending"
	RegistrationApproved = "approved"
	RegistrationRejected = "rejected"
	RegistrationBanned   = "banned"
)

// Registration is a member's request for a seat on a game, subject to
// gamemaster or admin approval.
type Registration struct {
	ID         string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	GameID     string `gorm:"index:idx_registrations_game_member,unique;not null;type:varchar(64)" json:"game_id"`
	MemberID   string `gorm:"index:idx_registrations_game_member,unique;not null;type:varchar(64)" json:"member_id"`
	Status     string `gorm:"not null;default:pending;type:varchar(16)" json:"status"`
	StatusNote string `gorm:"type:text" json:"status_note"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Registration) TableName() string {
	return "registrations"
}
