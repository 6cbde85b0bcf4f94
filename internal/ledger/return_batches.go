package ledger

import (
	"time"

	"gradation-backend/internal/models"

	"gorm.io/gorm"
)

type ReturnBatchInput struct {
	WorkOrderID      uint // stage 1: parent work order
	SourceTransferID uint // stage 2: interim transfer that produced the batch
	Stage            int
	ReturnDate       time.Time
	ReturnedQty      int
	ReturnRejectQty  int
	InspectRejectQty int
	Status           int
}

// passQty recomputes the pass quantity and rejects impossible splits.
// The pass quantity is never accepted from the caller.
func passQty(returned, returnReject, inspectReject int) (int, error) {
	if returnReject+inspectReject > returned {
		return 0, &InvalidSplitError{
			Returned:      returned,
			ReturnReject:  returnReject,
			InspectReject: inspectReject,
		}
	}
	return returned - returnReject - inspectReject, nil
}

// CreateReturnBatch records a vendor's reply. Stage 1 validates the
// returned quantity against the work order's remaining-to-process sum;
// stage 2 resolves its work order through the interim transfer.
func CreateReturnBatch(db *gorm.DB, in ReturnBatchInput) (*models.ReturnBatch, error) {
	var batch models.ReturnBatch
	err := db.Transaction(func(tx *gorm.DB) error {
		pass, err := passQty(in.ReturnedQty, in.ReturnRejectQty, in.InspectRejectQty)
		if err != nil {
			return err
		}

		batch = models.ReturnBatch{
			Stage:            in.Stage,
			ReturnDate:       in.ReturnDate,
			ReturnedQty:      in.ReturnedQty,
			ReturnRejectQty:  in.ReturnRejectQty,
			InspectRejectQty: in.InspectRejectQty,
			PassQty:          pass,
			Status:           in.Status,
		}

		switch in.Stage {
		case models.StageFirst:
			remaining, err := RemainingToProcess(tx, in.WorkOrderID)
			if err != nil {
				return err
			}
			if in.ReturnedQty > remaining {
				return &OverReturnError{Remaining: remaining}
			}
			batch.WorkOrderID = in.WorkOrderID
		case models.StageSecond:
			var src models.Transfer
			if err := tx.First(&src, "id = ? AND destination = ?",
				in.SourceTransferID, models.DestInterim).Error; err != nil {
				return &NotFoundError{Entity: "interim transfer", ID: in.SourceTransferID}
			}
			srcID := src.ID
			batch.WorkOrderID = src.WorkOrderID
			batch.SourceTransferID = &srcID
		default:
			return &NotFoundError{Entity: "stage", ID: uint(in.Stage)}
		}

		return tx.Create(&batch).Error
	})
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// UpdateReturnBatch rewrites date, quantities and status. The stage and
// parent references never change. Stage-1 re-validation excludes the
// batch itself from the returned sum, and on either stage the new pass
// quantity may not drop below what transfers have already drawn.
func UpdateReturnBatch(db *gorm.DB, id uint, in ReturnBatchInput) (*models.ReturnBatch, error) {
	var batch models.ReturnBatch
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&batch, "id = ?", id).Error; err != nil {
			return &NotFoundError{Entity: "return batch", ID: id}
		}

		pass, err := passQty(in.ReturnedQty, in.ReturnRejectQty, in.InspectRejectQty)
		if err != nil {
			return err
		}

		if batch.Stage == models.StageFirst {
			remaining, err := remainingToProcessExcluding(tx, batch.WorkOrderID, batch.ID)
			if err != nil {
				return err
			}
			if in.ReturnedQty > remaining {
				return &OverReturnError{Remaining: remaining}
			}
		}

		drawn, err := maxDrawnFromBatch(tx, batch.ID)
		if err != nil {
			return err
		}
		if pass < drawn {
			return &OverIssueError{Drawn: drawn}
		}

		batch.ReturnDate = in.ReturnDate
		batch.ReturnedQty = in.ReturnedQty
		batch.ReturnRejectQty = in.ReturnRejectQty
		batch.InspectRejectQty = in.InspectRejectQty
		batch.PassQty = pass
		batch.Status = in.Status
		return tx.Save(&batch).Error
	})
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// InspectReturnBatch records the receiving inspection: sets the
// inspection-reject quantity, recomputes the pass quantity and marks the
// batch inspected.
func InspectReturnBatch(db *gorm.DB, id uint, inspectRejectQty int) (*models.ReturnBatch, error) {
	var batch models.ReturnBatch
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&batch, "id = ?", id).Error; err != nil {
			return &NotFoundError{Entity: "return batch", ID: id}
		}

		pass, err := passQty(batch.ReturnedQty, batch.ReturnRejectQty, inspectRejectQty)
		if err != nil {
			return err
		}

		drawn, err := maxDrawnFromBatch(tx, batch.ID)
		if err != nil {
			return err
		}
		if pass < drawn {
			return &OverIssueError{Drawn: drawn}
		}

		batch.InspectRejectQty = inspectRejectQty
		batch.PassQty = pass
		batch.Status = models.StatusInspected
		return tx.Save(&batch).Error
	})
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// DeleteReturnBatch refuses while any transfer still draws from the
// batch.
func DeleteReturnBatch(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var batch models.ReturnBatch
		if err := tx.First(&batch, "id = ?", id).Error; err != nil {
			return &NotFoundError{Entity: "return batch", ID: id}
		}

		var dependents int64
		if err := tx.Model(&models.Transfer{}).
			Where("source_batch_id = ?", id).
			Count(&dependents).Error; err != nil {
			return err
		}
		if dependents > 0 {
			return &HasDependentsError{Entity: "return batch", Dependents: dependents}
		}

		return tx.Delete(&models.ReturnBatch{}, "id = ?", id).Error
	})
}
