package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"gorm.io/gorm"
)

// VoucherRepositoryImpl implements VoucherRepository
type VoucherRepositoryImpl struct {
	*BaseRepository[models.Voucher, models.VoucherFilter]
}

// NewVoucherRepository creates a new voucher repository
func NewVoucherRepository(db *gorm.DB) VoucherRepository {
	return &VoucherRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Voucher, models.VoucherFilter](db),
	}
}

// ExistsForMonth reports whether the student already has a voucher for the
// given due month; this is the generation job's idempotency guard
func (r *VoucherRepositoryImpl) ExistsForMonth(ctx context.Context, studentID uint, year int, month time.Month) (bool, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.Voucher{}).
		Where("student_id = ? AND due_year = ? AND due_month = ?", studentID, year, int(month)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check voucher for student %d %d-%02d: %w", studentID, year, int(month), err)
	}

	return count > 0, nil
}

// ListPendingDueBefore returns pending vouchers whose due_date is strictly
// before the cutoff, with the owning student preloaded
func (r *VoucherRepositoryImpl) ListPendingDueBefore(ctx context.Context, cutoff time.Time) ([]*models.Voucher, error) {
	db := r.getDB(ctx)

	var vouchers []*models.Voucher
	err := db.Where("status = ? AND due_date < ?", models.VoucherStatusPending, cutoff).
		Order("due_date ASC, id ASC").
		Preload("Student").
		Find(&vouchers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue pending vouchers: %w", err)
	}

	return vouchers, nil
}
