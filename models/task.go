package models

import (
	"time"
)

// Task is an assignment given to a batch with a submission deadline
// Table: tasks
type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	BatchID     uint      `gorm:"not null;index:idx_tasks_batch_id" json:"batch_id"`
	ExpiryDate  time.Time `gorm:"not null;index:idx_tasks_expiry_date" json:"expiry_date"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Batch       *Batch          `gorm:"foreignKey:BatchID;references:ID" json:"batch,omitempty"`
	Submissions []SubmittedTask `gorm:"foreignKey:TaskID" json:"-"`
}

func (Task) TableName() string { return "tasks" }

// SubmittedTask records one student's submission for a task; its existence
// excludes the student from deadline reminders
// Table: submitted_tasks
type SubmittedTask struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TaskID      uint      `gorm:"not null;uniqueIndex:uk_submitted_tasks_task_student" json:"task_id"`
	StudentID   uint      `gorm:"not null;uniqueIndex:uk_submitted_tasks_task_student;index:idx_submitted_tasks_student_id" json:"student_id"`
	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`
	File        *string   `gorm:"size:512" json:"file,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`

	// Relations
	Task    *Task    `gorm:"foreignKey:TaskID;references:ID" json:"-"`
	Student *Student `gorm:"foreignKey:StudentID;references:ID" json:"-"`
}

func (SubmittedTask) TableName() string { return "submitted_tasks" }

// TaskFilter represents filter criteria for task queries
type TaskFilter struct {
	ID           *uint
	BatchID      *uint
	ExpiryAfter  *time.Time
	ExpiryBefore *time.Time
}
