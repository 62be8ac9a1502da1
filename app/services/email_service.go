package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/RehanRiaz5383/lms-v2-sub002/repository"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// EmailQueue enqueues outbound email durably. Enqueueing is asynchronous
// with respect to delivery: callers treat "queued successfully" as "sent"
// for ledger purposes; delivery confirmation is not tracked.
type EmailQueue interface {
	QueueEmail(ctx context.Context, to, subject, body string, templateData map[string]any) error
}

// EmailProvider delivers a single email
type EmailProvider interface {
	SendEmail(email string, cc []string, subject, message string) error
}

// EmailQueueImpl implements EmailQueue over the queued_emails table
type EmailQueueImpl struct {
	repo repository.QueuedEmailRepository
	cc   pq.StringArray
}

// NewEmailQueue creates a new durable email queue. Every queued email
// carries the configured CC addresses so operators see outbound notices.
func NewEmailQueue(repo repository.QueuedEmailRepository, ccAddresses []string) EmailQueue {
	return &EmailQueueImpl{repo: repo, cc: pq.StringArray(ccAddresses)}
}

// QueueEmail inserts one email row awaiting the worker
func (q *EmailQueueImpl) QueueEmail(ctx context.Context, to, subject, body string, templateData map[string]any) error {
	if len(to) == 0 || !strings.Contains(to, "@") {
		return fmt.Errorf("invalid email address: %s", to)
	}

	var raw json.RawMessage
	if len(templateData) > 0 {
		b, err := json.Marshal(templateData)
		if err != nil {
			return fmt.Errorf("failed to marshal template data: %w", err)
		}
		raw = b
	}

	email := &models.QueuedEmail{
		TrackingID:   uuid.New(),
		ToEmail:      to,
		CcEmails:     q.cc,
		Subject:      subject,
		Body:         body,
		TemplateData: raw,
		Status:       models.EmailStatusQueued,
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}
	return q.repo.Save(ctx, email)
}

// EmailWorker drains the durable queue in the background
type EmailWorker struct {
	repo     repository.QueuedEmailRepository
	provider EmailProvider
	logger   *log.Logger
	interval time.Duration
	batch    int
}

// NewEmailWorker creates a worker that delivers queued emails periodically
func NewEmailWorker(repo repository.QueuedEmailRepository, provider EmailProvider, logger *log.Logger, interval time.Duration) *EmailWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}
	return &EmailWorker{
		repo:     repo,
		provider: provider,
		logger:   logger,
		interval: interval,
		batch:    100,
	}
}

// Start launches the worker loop and returns a stop function
func (w *EmailWorker) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.processQueue(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.processQueue(ctx)
			}
		}
	}()

	return cancel
}

func (w *EmailWorker) processQueue(ctx context.Context) {
	emails, err := w.repo.ListQueued(ctx, w.batch)
	if err != nil {
		w.logger.Printf("email worker: list queued failed: %v", err)
		return
	}
	if len(emails) == 0 {
		return
	}

	sent := 0
	for _, e := range emails {
		e.Attempts++
		if err := w.provider.SendEmail(e.ToEmail, e.CcEmails, e.Subject, e.Body); err != nil {
			msg := err.Error()
			e.Status = models.EmailStatusFailed
			e.Error = &msg
		} else {
			e.Status = models.EmailStatusSent
			e.SentAt = utils.UTCNowPtr()
			e.Error = nil
			sent++
		}
		e.UpdatedAt = utils.UTCNow()
		if err := w.repo.Update(ctx, e); err != nil {
			w.logger.Printf("email worker: update email id=%d failed: %v", e.ID, err)
		}
	}
	w.logger.Printf("email worker: delivered %d/%d queued emails", sent, len(emails))
}

// MockEmailProvider logs instead of delivering
type MockEmailProvider struct{}

func NewMockEmailProvider() EmailProvider {
	return &MockEmailProvider{}
}

func (p *MockEmailProvider) SendEmail(email string, cc []string, subject, message string) error {
	log.Printf("Email sent to %s cc=%v [%s]: %s", email, cc, subject, message)
	return nil
}

// SMTPEmailProvider delivers via an SMTP relay
type SMTPEmailProvider struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

func NewSMTPEmailProvider(host string, port int, username, password, fromEmail string) EmailProvider {
	return &SMTPEmailProvider{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromEmail: fromEmail,
	}
}

func (p *SMTPEmailProvider) SendEmail(email string, cc []string, subject, message string) error {
	addr := fmt.Sprintf("%s:%d", p.host, p.port)
	auth := smtp.PlainAuth("", p.username, p.password, p.host)
	recipients := append([]string{email}, cc...)

	if err := smtp.SendMail(addr, auth, p.fromEmail, recipients, buildMessage(p.fromEmail, email, cc, subject, message)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", email, err)
	}
	return nil
}

// buildMessage assembles the RFC 5322 payload handed to the SMTP transport
func buildMessage(from, to string, cc []string, subject, body string) []byte {
	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	if len(cc) > 0 {
		msg.WriteString("Cc: " + strings.Join(cc, ", ") + "\r\n")
	}
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return []byte(msg.String())
}
