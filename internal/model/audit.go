package model

import "time"

// Audit actions.
const (
	AuditRegistrationStatus = "registration.status"
	AuditGameCreated        = "game.created"
	AuditGameDeleted        = "game.deleted"
	AuditGMReassigned       = "game.gamemaster_reassigned"
	AuditRoleChanged        = "member.role_changed"
	AuditMemberDeleted      = "member.deletion_requested"
	AuditMemberRestored     = "member.restored"
	AuditMemberPurged       = "member.purged"
	AuditBroadcastSent      = "broadcast.sent"
	AuditInviteAccepted     = "invite.accepted"
)

// AuditEntry is an append-only record of an administrative mutation. Rows
// are never updated or deleted.
type AuditEntry struct {
	ID         string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Action     string `gorm:"index;not null;type:varchar(64)" json:"action"`
	ActorID    string `gorm:"index;not null;type:varchar(64)" json:"actor_id"`
	TargetType string `gorm:"index:idx_audit_target;not null;type:varchar(32)" json:"target_type"`
	TargetID   string `gorm:"index:idx_audit_target;not null;type:varchar(64)" json:"target_id"`
	Metadata   string `gorm:"type:text" json:"metadata"` // JSON snapshot

	CreatedAt time.Time `gorm:"index;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AuditEntry) TableName() string {
	return "audit_trail"
}
