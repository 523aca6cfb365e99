package model

import "time"

// Message is a direct message between two members. IDs are snowflakes,
// SeqID is the per-conversation sequence assigned through Redis.
type Message struct {
	ID             string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	SenderID       string `gorm:"index;not null;type:varchar(64)" json:"sender_id"`
	RecipientID    string `gorm:"index;not null;type:varchar(64)" json:"recipient_id"`
	ConversationID string `gorm:"index;not null;type:varchar(130)" json:"conversation_id"`
	Content        string `gorm:"type:text;not null" json:"content"`
	SeqID          int64  `gorm:"index;not null" json:"seq_id"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// Broadcast audiences.
const (
	AudienceGame = "game"
	AudienceClub = "club"
)

// Broadcast is an announcement from a gamemaster to a game's players, or
// from an admin to the whole club.
type Broadcast struct {
	ID       string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	SenderID string `gorm:"index;not null;type:varchar(64)" json:"sender_id"`
	Audience string `gorm:"not null;type:varchar(16)" json:"audience"`
	GameID   string `gorm:"index;type:varchar(64)" json:"game_id,omitempty"`
	Subject  string `gorm:"not null;type:varchar(255)" json:"subject"`
	Body     string `gorm:"type:text;not null" json:"body"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Broadcast) TableName() string {
	return "broadcasts"
}
