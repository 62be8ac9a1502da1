package models

import (
	"time"
)

// Voucher status constants. pending -> submitted -> approved, or
// pending -> rejected (a rejected voucher awaits resubmission, it is not
// a hard terminal state).
const (
	VoucherStatusPending   = "pending"
	VoucherStatusSubmitted = "submitted"
	VoucherStatusApproved  = "approved"
	VoucherStatusRejected  = "rejected"
)

// Voucher is a monthly fee obligation issued to a student.
// At most one voucher may exist per (student_id, due_year, due_month);
// that uniqueness is the idempotency guard for the generation job.
// Table: vouchers
type Voucher struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StudentID   uint      `gorm:"not null;uniqueIndex:uk_vouchers_student_month;index:idx_vouchers_student_id" json:"student_id"`
	FeeAmount   float64   `gorm:"type:numeric(12,2);not null" json:"fee_amount"`
	DueDate     time.Time `gorm:"type:date;not null;index:idx_vouchers_due_date" json:"due_date"`
	DueYear     int       `gorm:"not null;uniqueIndex:uk_vouchers_student_month" json:"due_year"`
	DueMonth    int       `gorm:"not null;uniqueIndex:uk_vouchers_student_month" json:"due_month"`
	PromiseDate *time.Time `gorm:"type:date" json:"promise_date,omitempty"`

	Status         string     `gorm:"size:16;not null;default:'pending';index:idx_vouchers_status" json:"status"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	ApprovedBy     *uint      `json:"approved_by,omitempty"`
	SubmissionFile *string    `gorm:"size:512" json:"submission_file,omitempty"`
	Remarks        *string    `gorm:"type:text" json:"remarks,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Student *Student `gorm:"foreignKey:StudentID;references:ID" json:"student,omitempty"`
}

func (Voucher) TableName() string { return "vouchers" }

// IsPending reports whether the voucher still awaits submission
func (v *Voucher) IsPending() bool {
	return v.Status == VoucherStatusPending
}

// OverdueDays returns how many whole days past due the voucher is at the
// given instant; zero or negative means not overdue
func (v *Voucher) OverdueDays(now time.Time) int {
	return int(now.Truncate(24*time.Hour).Sub(v.DueDate.Truncate(24*time.Hour)).Hours() / 24)
}

// VoucherFilter represents filter criteria for voucher queries
type VoucherFilter struct {
	ID            *uint
	StudentID     *uint
	Status        *string
	DueYear       *int
	DueMonth      *int
	DueBefore     *time.Time
	DueAfter      *time.Time
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
