package model

import "time"

// Invite is a solicitation to join a game, addressed either to an existing
// member or to an external email contact. Expiry is derived at read time
// from ExpiresAt; there is no background expiry job.
type Invite struct {
	ID           string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	GameID       string `gorm:"index;not null;type:varchar(64)" json:"game_id"`
	Code         string `gorm:"uniqueIndex;not null;type:varchar(32)" json:"code"`
	CreatorID    string `gorm:"not null;type:varchar(64)" json:"creator_id"`
	InviteeID    string `gorm:"index;type:varchar(64)" json:"invitee_id,omitempty"`
	InviteeEmail string `gorm:"type:varchar(255)" json:"invitee_email,omitempty"`

	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	Accepted   bool       `gorm:"not null;default:false" json:"accepted"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	ViewedAt   *time.Time `json:"viewed_at,omitempty"`
	Notified   bool       `gorm:"not null;default:false" json:"notified"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Invite) TableName() string {
	return "invites"
}

// Expired reports whether the invite has lapsed without being accepted.
// Both member and admin read paths classify through this predicate so the
// two can never disagree.
func (i *Invite) Expired(now time.Time) bool {
	return !i.Accepted && !i.ExpiresAt.After(now)
}
