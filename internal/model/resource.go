package model

import "time"

// Resource is the metadata row for an uploaded file. The bytes live in the
// object store under OwnerID/Entity/FileName.
type Resource struct {
	ID          string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	OwnerID     string `gorm:"index;not null;type:varchar(64)" json:"owner_id"`
	Entity      string `gorm:"not null;type:varchar(32)" json:"entity"` // e.g. games, resources
	FileName    string `gorm:"not null;type:varchar(255)" json:"file_name"`
	ContentType string `gorm:"type:varchar(128)" json:"content_type"`
	SizeBytes   int64  `gorm:"not null" json:"size_bytes"`
	StorePath   string `gorm:"uniqueIndex;not null;type:varchar(512)" json:"store_path"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Resource) TableName() string {
	return "resources"
}
