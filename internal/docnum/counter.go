package docnum

import (
	"fmt"

	"gradation-backend/internal/models"

	"gorm.io/gorm"
)

// Document-number counters. One row per counter name; Next must be
// called on a transaction handle so the increment and the read stay
// atomic.

const CounterWorkOrderSlip = "work_order_slip"

// Next increments the named counter and returns the new value, creating
// the row on first use.
func Next(tx *gorm.DB, name string) (int64, error) {
	var counter models.DocCounter
	if err := tx.Where(models.DocCounter{Name: name}).FirstOrCreate(&counter).Error; err != nil {
		return 0, fmt.Errorf("could not load counter %q: %w", name, err)
	}

	if err := tx.Model(&models.DocCounter{}).
		Where("id = ?", counter.ID).
		UpdateColumn("value", gorm.Expr("value + 1")).Error; err != nil {
		return 0, fmt.Errorf("could not increment counter %q: %w", name, err)
	}

	if err := tx.First(&counter, counter.ID).Error; err != nil {
		return 0, err
	}

	return counter.Value, nil
}

// FormatSlipNo renders a counter value as a printable slip number.
func FormatSlipNo(prefix string, v int64) string {
	return fmt.Sprintf("%s%06d", prefix, v)
}
