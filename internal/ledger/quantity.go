package ledger

import (
	"gradation-backend/internal/models"

	"gorm.io/gorm"
)

// Derived quantity reads. These are the only places quantity arithmetic
// against stored rows happens; every validation goes through them.

// RemainingToProcess returns requested minus the sum of stage-1 returns
// for a work order.
func RemainingToProcess(db *gorm.DB, workOrderID uint) (int, error) {
	return remainingToProcessExcluding(db, workOrderID, 0)
}

// remainingToProcessExcluding recomputes the stage-1 return sum without
// one batch, used when that batch itself is being updated.
func remainingToProcessExcluding(db *gorm.DB, workOrderID, excludeBatchID uint) (int, error) {
	var wo models.WorkOrder
	if err := db.First(&wo, "id = ?", workOrderID).Error; err != nil {
		return 0, &NotFoundError{Entity: "work order", ID: workOrderID}
	}

	q := db.Model(&models.ReturnBatch{}).
		Where("work_order_id = ? AND stage = ?", workOrderID, models.StageFirst)
	if excludeBatchID != 0 {
		q = q.Where("id <> ?", excludeBatchID)
	}

	var returned int64
	if err := q.Select("COALESCE(SUM(returned_qty), 0)").Scan(&returned).Error; err != nil {
		return 0, err
	}

	return wo.RequestQty - int(returned), nil
}

// AvailableToTransfer returns the batch's pass quantity minus transfers
// of the same destination class already drawn from it.
func AvailableToTransfer(db *gorm.DB, batchID uint, destination int) (int, error) {
	return availableToTransferExcluding(db, batchID, destination, 0)
}

func availableToTransferExcluding(db *gorm.DB, batchID uint, destination int, excludeTransferID uint) (int, error) {
	var batch models.ReturnBatch
	if err := db.First(&batch, "id = ?", batchID).Error; err != nil {
		return 0, &NotFoundError{Entity: "return batch", ID: batchID}
	}

	q := db.Model(&models.Transfer{}).
		Where("source_batch_id = ? AND destination = ?", batchID, destination)
	if excludeTransferID != 0 {
		q = q.Where("id <> ?", excludeTransferID)
	}

	var drawn int64
	if err := q.Select("COALESCE(SUM(qty), 0)").Scan(&drawn).Error; err != nil {
		return 0, err
	}

	return batch.PassQty - int(drawn), nil
}

// maxDrawnFromBatch returns the largest per-destination-class transfer
// sum drawn from a batch. A batch edit may not push the pass quantity
// below this figure.
func maxDrawnFromBatch(db *gorm.DB, batchID uint) (int, error) {
	drawn := 0
	for _, destination := range []int{models.DestInterim, models.DestFinal} {
		var sum int64
		if err := db.Model(&models.Transfer{}).
			Where("source_batch_id = ? AND destination = ?", batchID, destination).
			Select("COALESCE(SUM(qty), 0)").
			Scan(&sum).Error; err != nil {
			return 0, err
		}
		if int(sum) > drawn {
			drawn = int(sum)
		}
	}
	return drawn, nil
}

// TransferDiff returns an interim transfer's quantity minus the sum of
// stage-2 returns made against it. Display reconciliation only, never
// enforced.
func TransferDiff(db *gorm.DB, transferID uint) (int, error) {
	var tr models.Transfer
	if err := db.First(&tr, "id = ?", transferID).Error; err != nil {
		return 0, &NotFoundError{Entity: "transfer", ID: transferID}
	}

	var returned int64
	if err := db.Model(&models.ReturnBatch{}).
		Where("source_transfer_id = ? AND stage = ?", transferID, models.StageSecond).
		Select("COALESCE(SUM(returned_qty), 0)").
		Scan(&returned).Error; err != nil {
		return 0, err
	}

	return tr.Qty - int(returned), nil
}
