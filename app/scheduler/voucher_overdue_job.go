package scheduler

import (
	"context"
	"fmt"

	"github.com/RehanRiaz5383/lms-v2-sub002/app/services"
	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/RehanRiaz5383/lms-v2-sub002/repository"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
)

// VoucherOverdueJob reminds students whose pending voucher's due date has
// passed. Unlike the reminder and generation jobs it keeps no ledger: the
// reminder repeats on every run until the voucher is paid or the account
// is blocked. That re-notification is intentional.
type VoucherOverdueJob struct {
	voucherRepo repository.VoucherRepository
	notifier    services.NotificationSink
}

// NewVoucherOverdueJob creates the overdue notification handler
func NewVoucherOverdueJob(voucherRepo repository.VoucherRepository, notifier services.NotificationSink) *VoucherOverdueJob {
	return &VoucherOverdueJob{
		voucherRepo: voucherRepo,
		notifier:    notifier,
	}
}

// Run notifies every student holding a pending voucher due before today
func (j *VoucherOverdueJob) Run(ctx context.Context, rc *RunContext) error {
	today := utils.StartOfDay(rc.Now)

	vouchers, err := j.voucherRepo.ListPendingDueBefore(ctx, today)
	if err != nil {
		return fmt.Errorf("list overdue vouchers: %w", err)
	}

	rc.SetMeta("vouchers_seen", 0)
	rc.SetMeta("notifications_sent", 0)

	for _, voucher := range vouchers {
		rc.AddCount("vouchers_seen", 1)

		overdueDays := voucher.OverdueDays(rc.Now)
		title := "Fee voucher overdue"
		message := fmt.Sprintf("Your fee voucher of %.2f was due on %s and is %d day(s) overdue. Please submit payment.",
			voucher.FeeAmount, voucher.DueDate.Format("2006-01-02"), overdueDays)

		if err := j.notifier.CreateNotification(ctx, voucher.StudentID, models.NotificationTypeVoucherOverdue, title, message, map[string]any{
			"voucher_id":   voucher.ID,
			"due_date":     voucher.DueDate.Format("2006-01-02"),
			"overdue_days": overdueDays,
		}); err != nil {
			rc.Logger.Printf("jobs: overdue notification failed for voucher id=%d: %v", voucher.ID, err)
			continue
		}
		rc.AddCount("notifications_sent", 1)
	}

	rc.Message = fmt.Sprintf("notified %d of %d overdue vouchers",
		rc.Count("notifications_sent"), rc.Count("vouchers_seen"))
	return nil
}
