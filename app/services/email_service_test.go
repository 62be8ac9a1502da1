package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueuedEmailRepo struct {
	rows   []*models.QueuedEmail
	nextID uint
}

func (r *fakeQueuedEmailRepo) Save(ctx context.Context, email *models.QueuedEmail) error {
	r.nextID++
	email.ID = r.nextID
	r.rows = append(r.rows, email)
	return nil
}

func (r *fakeQueuedEmailRepo) ListQueued(ctx context.Context, limit int) ([]*models.QueuedEmail, error) {
	var queued []*models.QueuedEmail
	for _, e := range r.rows {
		if e.Status == models.EmailStatusQueued && len(queued) < limit {
			queued = append(queued, e)
		}
	}
	return queued, nil
}

func (r *fakeQueuedEmailRepo) Update(ctx context.Context, email *models.QueuedEmail) error {
	return nil
}

type stubEmailProvider struct {
	failFor map[string]error
	sent    []string
}

func (p *stubEmailProvider) SendEmail(email string, cc []string, subject, message string) error {
	if err, ok := p.failFor[email]; ok {
		return err
	}
	p.sent = append(p.sent, email)
	return nil
}

func TestEmailQueueValidatesAddress(t *testing.T) {
	queue := NewEmailQueue(&fakeQueuedEmailRepo{}, nil)

	err := queue.QueueEmail(context.Background(), "not-an-address", "subject", "body", nil)
	assert.Error(t, err)
}

func TestEmailQueueStampsConfiguredCC(t *testing.T) {
	repo := &fakeQueuedEmailRepo{}
	queue := NewEmailQueue(repo, []string{"ops@lms.example.com"})

	err := queue.QueueEmail(context.Background(), "jane@example.com", "subject", "body", map[string]any{"k": "v"})
	require.NoError(t, err)

	require.Len(t, repo.rows, 1)
	row := repo.rows[0]
	assert.Equal(t, "jane@example.com", row.ToEmail)
	assert.Equal(t, []string{"ops@lms.example.com"}, []string(row.CcEmails))
	assert.Equal(t, models.EmailStatusQueued, row.Status)
	assert.NotEqual(t, "", row.TrackingID.String())
}

// Rows must only turn "sent" when the provider actually delivered; a
// transport failure has to surface as a failed row with the error recorded.
func TestEmailWorkerMarksOutcomePerRow(t *testing.T) {
	repo := &fakeQueuedEmailRepo{}
	queue := NewEmailQueue(repo, nil)
	ctx := context.Background()

	require.NoError(t, queue.QueueEmail(ctx, "ok@example.com", "s", "b", nil))
	require.NoError(t, queue.QueueEmail(ctx, "broken@example.com", "s", "b", nil))

	provider := &stubEmailProvider{failFor: map[string]error{
		"broken@example.com": errors.New("connection refused"),
	}}
	worker := NewEmailWorker(repo, provider, log.Default(), time.Minute)
	worker.processQueue(ctx)

	assert.Equal(t, []string{"ok@example.com"}, provider.sent)

	byEmail := make(map[string]*models.QueuedEmail)
	for _, e := range repo.rows {
		byEmail[e.ToEmail] = e
	}

	delivered := byEmail["ok@example.com"]
	assert.Equal(t, models.EmailStatusSent, delivered.Status)
	assert.NotNil(t, delivered.SentAt)
	assert.Equal(t, 1, delivered.Attempts)

	failed := byEmail["broken@example.com"]
	assert.Equal(t, models.EmailStatusFailed, failed.Status)
	assert.Nil(t, failed.SentAt)
	require.NotNil(t, failed.Error)
	assert.Contains(t, *failed.Error, "connection refused")
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("noreply@lms.example.com", "jane@example.com",
		[]string{"ops@lms.example.com"}, "Fee voucher generated", "Your voucher is ready."))

	assert.Contains(t, msg, "From: noreply@lms.example.com\r\n")
	assert.Contains(t, msg, "To: jane@example.com\r\n")
	assert.Contains(t, msg, "Cc: ops@lms.example.com\r\n")
	assert.Contains(t, msg, "Subject: Fee voucher generated\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\nYour voucher is ready."))

	headersOnly := string(buildMessage("noreply@lms.example.com", "jane@example.com", nil, "s", "b"))
	assert.NotContains(t, headersOnly, "Cc:")
}
