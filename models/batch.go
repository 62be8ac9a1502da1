package models

import (
	"time"
)

// Batch groups students for enrollment; tasks are assigned per batch
// Table: batches
type Batch struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:255;not null;uniqueIndex:uk_batches_name" json:"name"`
	IsActive *bool  `gorm:"default:true;index:idx_batches_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Students []Student `gorm:"foreignKey:BatchID" json:"-"`
	Tasks    []Task    `gorm:"foreignKey:BatchID" json:"-"`
}

func (Batch) TableName() string { return "batches" }

// BatchFilter represents filter criteria for batch queries
type BatchFilter struct {
	ID       *uint
	Name     *string
	IsActive *bool
}
