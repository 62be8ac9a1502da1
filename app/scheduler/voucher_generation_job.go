package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/app/services"
	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/RehanRiaz5383/lms-v2-sub002/repository"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
	"gorm.io/gorm"
)

// VoucherGenerationJob issues one fee voucher per eligible student per due
// month, leadDays ahead of the student's promised payment day. The unique
// (student, due_year, due_month) constraint makes re-runs report skips
// instead of duplicates.
type VoucherGenerationJob struct {
	studentRepo repository.StudentRepository
	voucherRepo repository.VoucherRepository
	notifier    services.NotificationSink
	db          *gorm.DB
	leadDays    int
}

// NewVoucherGenerationJob creates the voucher generation handler
func NewVoucherGenerationJob(
	studentRepo repository.StudentRepository,
	voucherRepo repository.VoucherRepository,
	notifier services.NotificationSink,
	db *gorm.DB,
	leadDays int,
) *VoucherGenerationJob {
	if leadDays <= 0 {
		leadDays = utils.DefaultVoucherLeadDays
	}
	return &VoucherGenerationJob{
		studentRepo: studentRepo,
		voucherRepo: voucherRepo,
		notifier:    notifier,
		db:          db,
		leadDays:    leadDays,
	}
}

// Run selects students whose promise day is leadDays out and issues their
// monthly voucher if it does not exist yet
func (j *VoucherGenerationJob) Run(ctx context.Context, rc *RunContext) error {
	targetDate := rc.Now.AddDate(0, 0, j.leadDays)
	targetDay := targetDate.Day()

	students, err := j.studentRepo.ListActiveByPromiseDay(ctx, targetDay)
	if err != nil {
		return fmt.Errorf("list students by promise day: %w", err)
	}

	rc.SetMeta("students_processed", 0)
	rc.SetMeta("vouchers_generated", 0)
	rc.SetMeta("vouchers_skipped", 0)

	for _, student := range students {
		rc.AddCount("students_processed", 1)
		if err := j.generateVoucher(ctx, rc, student, targetDate); err != nil {
			// Per-student isolation: log and keep going
			rc.Logger.Printf("jobs: voucher generation failed for student id=%d: %v", student.ID, err)
		}
	}

	rc.Message = fmt.Sprintf("processed %d students, generated %d vouchers, skipped %d",
		rc.Count("students_processed"), rc.Count("vouchers_generated"), rc.Count("vouchers_skipped"))
	return nil
}

func (j *VoucherGenerationJob) generateVoucher(ctx context.Context, rc *RunContext, student *models.Student, targetDate time.Time) error {
	if student.ExpectedFeePromiseDate == nil {
		return fmt.Errorf("student %d has no promise date", student.ID)
	}

	year, month := targetDate.Year(), targetDate.Month()
	day := utils.ClampDayToMonth(year, month, *student.ExpectedFeePromiseDate)
	dueDate := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)

	exists, err := j.voucherRepo.ExistsForMonth(ctx, student.ID, year, month)
	if err != nil {
		return fmt.Errorf("check existing voucher: %w", err)
	}
	if exists {
		rc.AddCount("vouchers_skipped", 1)
		return nil
	}

	return repository.WithTransaction(ctx, j.db, func(txCtx context.Context) error {
		voucher := &models.Voucher{
			StudentID:   student.ID,
			FeeAmount:   student.Fees,
			DueDate:     dueDate,
			DueYear:     year,
			DueMonth:    int(month),
			PromiseDate: &dueDate,
			Status:      models.VoucherStatusPending,
			CreatedAt:   rc.Now,
			UpdatedAt:   rc.Now,
		}
		if err := j.voucherRepo.Save(txCtx, voucher); err != nil {
			return fmt.Errorf("save voucher: %w", err)
		}

		title := "Fee voucher generated"
		message := fmt.Sprintf("Your fee voucher of %.2f is due on %s.",
			student.Fees, dueDate.Format("2006-01-02"))
		if err := j.notifier.CreateNotification(txCtx, student.ID, models.NotificationTypeVoucherGenerated, title, message, map[string]any{
			"voucher_id": voucher.ID,
			"due_date":   dueDate.Format("2006-01-02"),
			"fee_amount": student.Fees,
		}); err != nil {
			rc.Logger.Printf("jobs: voucher notification failed for student id=%d: %v", student.ID, err)
		}

		rc.AddCount("vouchers_generated", 1)
		return nil
	})
}
