package models

import (
	"time"

	"github.com/google/uuid"
)

// Student represents an enrolled learner. The job engine reads batch
// membership, fee fields, and block status, and writes the block flag.
// Table: students
type Student struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UUID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_students_uuid" json:"uuid"`
	Name   string    `gorm:"size:255;not null" json:"name"`
	Email  string    `gorm:"size:255;not null;uniqueIndex:uk_students_email" json:"email"`
	Mobile *string   `gorm:"size:15" json:"mobile,omitempty"`

	BatchID *uint  `gorm:"index:idx_students_batch_id" json:"batch_id,omitempty"`
	Batch   *Batch `gorm:"foreignKey:BatchID;references:ID" json:"batch,omitempty"`

	// Fee fields: Fees is the monthly amount owed, ExpectedFeePromiseDate
	// the day-of-month the student committed to pay on (1-31)
	Fees                   float64 `gorm:"type:numeric(12,2);not null;default:0" json:"fees"`
	ExpectedFeePromiseDate *int    `gorm:"index:idx_students_promise_date" json:"expected_fee_promise_date,omitempty"`

	IsActive    *bool      `gorm:"default:true;index:idx_students_is_active" json:"is_active"`
	IsBlocked   *bool      `gorm:"default:false;index:idx_students_is_blocked" json:"is_blocked"`
	BlockReason *string    `gorm:"size:255" json:"block_reason,omitempty"`
	BlockedAt   *time.Time `json:"blocked_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_students_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Vouchers      []Voucher       `gorm:"foreignKey:StudentID" json:"-"`
	Notifications []Notification  `gorm:"foreignKey:StudentID" json:"-"`
	Submissions   []SubmittedTask `gorm:"foreignKey:StudentID" json:"-"`
}

func (Student) TableName() string { return "students" }

// IsBlockedNow reports whether the student's access is currently blocked
func (s *Student) IsBlockedNow() bool {
	return s.IsBlocked != nil && *s.IsBlocked
}

// IsActiveNow reports whether the student account is active
func (s *Student) IsActiveNow() bool {
	return s.IsActive != nil && *s.IsActive
}

// StudentFilter represents filter criteria for student queries
type StudentFilter struct {
	ID                     *uint
	UUID                   *uuid.UUID
	Email                  *string
	BatchID                *uint
	IsActive               *bool
	IsBlocked              *bool
	ExpectedFeePromiseDate *int
	CreatedAfter           *time.Time
	CreatedBefore          *time.Time
}
