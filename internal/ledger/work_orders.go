package ledger

import (
	"time"

	"gradation-backend/internal/docnum"
	"gradation-backend/internal/models"

	"gorm.io/gorm"
)

type WorkOrderInput struct {
	SpecCode    int
	ColorCode   int
	RequestDate time.Time
	RequestQty  int
}

// CreateWorkOrder inserts a work order and issues its slip number from
// the document counter, both in one transaction.
func CreateWorkOrder(db *gorm.DB, in WorkOrderInput) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	err := db.Transaction(func(tx *gorm.DB) error {
		seq, err := docnum.Next(tx, docnum.CounterWorkOrderSlip)
		if err != nil {
			return err
		}
		wo = models.WorkOrder{
			SlipNo:      docnum.FormatSlipNo("WO", seq),
			SpecCode:    in.SpecCode,
			ColorCode:   in.ColorCode,
			Vendor:      models.VendorStage1,
			RequestDate: in.RequestDate,
			RequestQty:  in.RequestQty,
		}
		return tx.Create(&wo).Error
	})
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

// UpdateWorkOrder replaces every editable field. The requested quantity
// may not drop below what stage-1 batches already returned.
func UpdateWorkOrder(db *gorm.DB, id uint, in WorkOrderInput) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&wo, "id = ?", id).Error; err != nil {
			return &NotFoundError{Entity: "work order", ID: id}
		}

		var returned int64
		if err := tx.Model(&models.ReturnBatch{}).
			Where("work_order_id = ? AND stage = ?", id, models.StageFirst).
			Select("COALESCE(SUM(returned_qty), 0)").
			Scan(&returned).Error; err != nil {
			return err
		}
		if int64(in.RequestQty) < returned {
			return &OverReturnError{Remaining: in.RequestQty - int(returned)}
		}

		wo.SpecCode = in.SpecCode
		wo.ColorCode = in.ColorCode
		wo.RequestDate = in.RequestDate
		wo.RequestQty = in.RequestQty
		return tx.Save(&wo).Error
	})
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

// DeleteWorkOrder refuses while any return batch still references the
// work order.
func DeleteWorkOrder(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var wo models.WorkOrder
		if err := tx.First(&wo, "id = ?", id).Error; err != nil {
			return &NotFoundError{Entity: "work order", ID: id}
		}

		var dependents int64
		if err := tx.Model(&models.ReturnBatch{}).
			Where("work_order_id = ?", id).
			Count(&dependents).Error; err != nil {
			return err
		}
		if dependents > 0 {
			return &HasDependentsError{Entity: "work order", Dependents: dependents}
		}

		return tx.Delete(&models.WorkOrder{}, "id = ?", id).Error
	})
}
