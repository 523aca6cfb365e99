package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Schedule intervals.
const (
	IntervalWeekly   = "weekly"
	IntervalBiweekly = "biweekly"
	IntervalMonthly  = "monthly"
)

// Schedule statuses.
const (
	ScheduleAwaitingPlayers = "awaiting-players"
	ScheduleActive          = "active"
	SchedulePaused          = "paused"
	ScheduleCompleted       = "completed"
)

// Game is a campaign run by a gamemaster.
type Game struct {
	ID            string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Title         string `gorm:"not null;type:varchar(255)" json:"title"`
	System        string `gorm:"not null;type:varchar(128)" json:"system"`
	Description   string `gorm:"type:text" json:"description"`
	MaxSeats      int    `gorm:"not null" json:"max_seats"`
	StartingSeats int    `gorm:"not null" json:"starting_seats"`
	Visibility    string `gorm:"not null;default:public;type:varchar(16)" json:"visibility"`
	GamemasterID  string `gorm:"index;not null;type:varchar(64)" json:"gamemaster_id"`
	CoverPath     string `gorm:"type:varchar(512)" json:"cover_path"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Game) TableName() string {
	return "games"
}

// GameSchedule is the one-to-one recurrence descriptor for a game.
type GameSchedule struct {
	ID            string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	GameID        string     `gorm:"uniqueIndex;not null;type:varchar(64)" json:"game_id"`
	Interval      string     `gorm:"not null;default:weekly;type:varchar(16)" json:"interval"`
	DayOfWeek     int        `gorm:"not null" json:"day_of_week"` // 0 = Sunday
	FirstGameDate time.Time  `gorm:"not null" json:"first_game_date"`
	NextGameDate  time.Time  `gorm:"index;not null" json:"next_game_date"`
	LastGameDate  *time.Time `json:"last_game_date,omitempty"`
	Status        string     `gorm:"not null;default:awaiting-players;type:varchar(32)" json:"status"`
	LocationID    string     `gorm:"type:varchar(64)" json:"location_id"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (GameSchedule) TableName() string {
	return "game_schedules"
}

// Location is a place games can be scheduled at.
type Location struct {
	ID      string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name    string `gorm:"not null;type:varchar(255)" json:"name"`
	Address string `gorm:"type:varchar(512)" json:"address"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Location) TableName() string {
	return "locations"
}
