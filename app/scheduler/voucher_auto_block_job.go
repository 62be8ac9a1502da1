package scheduler

import (
	"context"
	"fmt"

	"github.com/RehanRiaz5383/lms-v2-sub002/app/services"
	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/RehanRiaz5383/lms-v2-sub002/repository"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
	"gorm.io/gorm"
)

// VoucherAutoBlockJob blocks student access once a pending voucher is
// blockAfterDays or more overdue. The student's block flag is the
// idempotency guard: an already-blocked student is a counted no-op. A
// run-local set extends the guard across vouchers, since a student with
// several overdue months appears once per voucher in the same dispatch.
// Blocking is one-directional here; unblocking is an administrative action.
type VoucherAutoBlockJob struct {
	voucherRepo    repository.VoucherRepository
	studentRepo    repository.StudentRepository
	notifier       services.NotificationSink
	db             *gorm.DB
	blockAfterDays int
	blockReason    string
}

// NewVoucherAutoBlockJob creates the auto-block handler
func NewVoucherAutoBlockJob(
	voucherRepo repository.VoucherRepository,
	studentRepo repository.StudentRepository,
	notifier services.NotificationSink,
	db *gorm.DB,
	blockAfterDays int,
	blockReason string,
) *VoucherAutoBlockJob {
	if blockAfterDays <= 0 {
		blockAfterDays = utils.DefaultAutoBlockAfterDays
	}
	if blockReason == "" {
		blockReason = utils.DefaultBlockReason
	}
	return &VoucherAutoBlockJob{
		voucherRepo:    voucherRepo,
		studentRepo:    studentRepo,
		notifier:       notifier,
		db:             db,
		blockAfterDays: blockAfterDays,
		blockReason:    blockReason,
	}
}

// Run blocks every student whose pending voucher is due blockAfterDays or
// more in the past
func (j *VoucherAutoBlockJob) Run(ctx context.Context, rc *RunContext) error {
	// due_date <= today - N days, expressed as a strict bound one day up
	cutoff := utils.StartOfDay(rc.Now).AddDate(0, 0, -(j.blockAfterDays - 1))

	vouchers, err := j.voucherRepo.ListPendingDueBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list blockable vouchers: %w", err)
	}

	rc.SetMeta("students_blocked", 0)
	rc.SetMeta("already_blocked", 0)
	rc.SetMeta("skipped", 0)

	handled := make(map[uint]bool, len(vouchers))
	for _, voucher := range vouchers {
		if err := j.blockStudent(ctx, rc, voucher, handled); err != nil {
			// Per-student isolation: log and keep going
			rc.Logger.Printf("jobs: auto-block failed for voucher id=%d: %v", voucher.ID, err)
		}
	}

	rc.Message = fmt.Sprintf("blocked %d students, %d already blocked",
		rc.Count("students_blocked"), rc.Count("already_blocked"))
	return nil
}

func (j *VoucherAutoBlockJob) blockStudent(ctx context.Context, rc *RunContext, voucher *models.Voucher, handled map[uint]bool) error {
	// The preloaded voucher.Student goes stale once we block through another
	// voucher in the same run; the set is the source of truth here
	if handled[voucher.StudentID] {
		rc.AddCount("already_blocked", 1)
		return nil
	}

	student := voucher.Student
	if student == nil {
		var err error
		student, err = j.studentRepo.ByID(ctx, voucher.StudentID)
		if err != nil {
			return fmt.Errorf("load student: %w", err)
		}
	}
	if student == nil {
		rc.AddCount("skipped", 1)
		return fmt.Errorf("student %d not found", voucher.StudentID)
	}

	if student.IsBlockedNow() {
		handled[student.ID] = true
		rc.AddCount("already_blocked", 1)
		return nil
	}

	return repository.WithTransaction(ctx, j.db, func(txCtx context.Context) error {
		if err := j.studentRepo.Block(txCtx, student.ID, j.blockReason, rc.Now); err != nil {
			return fmt.Errorf("block student: %w", err)
		}
		handled[student.ID] = true

		title := "Account blocked"
		message := fmt.Sprintf("Your account has been blocked: %s. Contact administration to restore access.", j.blockReason)
		if err := j.notifier.CreateNotification(txCtx, student.ID, models.NotificationTypeAccountBlocked, title, message, map[string]any{
			"voucher_id": voucher.ID,
			"due_date":   voucher.DueDate.Format("2006-01-02"),
			"reason":     j.blockReason,
		}); err != nil {
			rc.Logger.Printf("jobs: block notification failed for student id=%d: %v", student.ID, err)
		}

		rc.AddCount("students_blocked", 1)
		return nil
	})
}
