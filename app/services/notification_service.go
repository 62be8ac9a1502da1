// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/RehanRiaz5383/lms-v2-sub002/repository"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
)

// NotificationSink persists UI notifications for students. Job handlers
// treat it as fire-and-forget: a sink failure is logged by the caller and
// never becomes a job failure.
type NotificationSink interface {
	CreateNotification(ctx context.Context, studentID uint, notifType, title, message string, data map[string]any) error
}

// NotificationSinkImpl implements NotificationSink over the notifications table
type NotificationSinkImpl struct {
	repo repository.NotificationRepository
}

// NewNotificationSink creates a new notification sink
func NewNotificationSink(repo repository.NotificationRepository) NotificationSink {
	return &NotificationSinkImpl{repo: repo}
}

// CreateNotification stores one notification row for the student
func (s *NotificationSinkImpl) CreateNotification(ctx context.Context, studentID uint, notifType, title, message string, data map[string]any) error {
	if studentID == 0 {
		return fmt.Errorf("student id is required")
	}

	var raw json.RawMessage
	if len(data) > 0 {
		b, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal notification data: %w", err)
		}
		raw = b
	}

	n := &models.Notification{
		StudentID: studentID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		Data:      raw,
		CreatedAt: utils.UTCNow(),
	}
	return s.repo.Save(ctx, n)
}

// MockNotificationSink logs instead of persisting; used in tests and local runs
type MockNotificationSink struct{}

func NewMockNotificationSink() NotificationSink {
	return &MockNotificationSink{}
}

func (s *MockNotificationSink) CreateNotification(_ context.Context, studentID uint, notifType, title, message string, _ map[string]any) error {
	log.Printf("Notification for student %d [%s] %s: %s", studentID, notifType, title, message)
	return nil
}
