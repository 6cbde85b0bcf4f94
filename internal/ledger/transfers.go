package ledger

import (
	"time"

	"gradation-backend/internal/models"

	"gorm.io/gorm"
)

type TransferInput struct {
	SourceBatchID uint
	Destination   int
	ShipDate      time.Time
	OrderDate     time.Time
	Qty           int
	Flag          int
}

// CreateTransfer draws quantity out of a return batch toward the interim
// vendor or the final customer, bounded by the batch's available stock
// for that destination class.
func CreateTransfer(db *gorm.DB, in TransferInput) (*models.Transfer, error) {
	var tr models.Transfer
	err := db.Transaction(func(tx *gorm.DB) error {
		var batch models.ReturnBatch
		if err := tx.First(&batch, "id = ?", in.SourceBatchID).Error; err != nil {
			return &NotFoundError{Entity: "return batch", ID: in.SourceBatchID}
		}

		available, err := AvailableToTransfer(tx, batch.ID, in.Destination)
		if err != nil {
			return err
		}
		if in.Qty > available {
			return &OverIssueError{Available: available}
		}

		tr = models.Transfer{
			SourceBatchID: batch.ID,
			WorkOrderID:   batch.WorkOrderID,
			Destination:   in.Destination,
			ShipDate:      in.ShipDate,
			OrderDate:     in.OrderDate,
			Qty:           in.Qty,
			Flag:          in.Flag,
		}
		return tx.Create(&tr).Error
	})
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

// UpdateTransfer rewrites dates, quantity and flag. Source batch and
// destination never change; re-validation excludes the transfer itself
// from the drawn sum.
func UpdateTransfer(db *gorm.DB, id uint, in TransferInput) (*models.Transfer, error) {
	var tr models.Transfer
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tr, "id = ?", id).Error; err != nil {
			return &NotFoundError{Entity: "transfer", ID: id}
		}

		available, err := availableToTransferExcluding(tx, tr.SourceBatchID, tr.Destination, tr.ID)
		if err != nil {
			return err
		}
		if in.Qty > available {
			return &OverIssueError{Available: available}
		}

		tr.ShipDate = in.ShipDate
		tr.OrderDate = in.OrderDate
		tr.Qty = in.Qty
		tr.Flag = in.Flag
		return tx.Save(&tr).Error
	})
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

// DeleteTransfer refuses to delete an interim transfer while a stage-2
// batch still references it.
func DeleteTransfer(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var tr models.Transfer
		if err := tx.First(&tr, "id = ?", id).Error; err != nil {
			return &NotFoundError{Entity: "transfer", ID: id}
		}

		if tr.Destination == models.DestInterim {
			var dependents int64
			if err := tx.Model(&models.ReturnBatch{}).
				Where("source_transfer_id = ?", id).
				Count(&dependents).Error; err != nil {
				return err
			}
			if dependents > 0 {
				return &HasDependentsError{Entity: "transfer", Dependents: dependents}
			}
		}

		return tx.Delete(&models.Transfer{}, "id = ?", id).Error
	})
}
