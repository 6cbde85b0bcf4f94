package ledger

import (
	"time"

	"gradation-backend/internal/models"

	"gorm.io/gorm"
)

type AutoTransferRecord struct {
	BatchID    uint      `json:"batch_id"`
	ReturnDate time.Time `json:"return_date"`
	StockQty   int       `json:"stock_qty"`
	ShippedQty int       `json:"shipped_qty"`
}

type AutoTransferResult struct {
	TotalShipped int                  `json:"total_shipped"`
	Remainder    int                  `json:"remainder"`
	Shipped      []AutoTransferRecord `json:"shipped"`
}

// ExecuteAutoTransfer ships the requested quantity to the final customer
// from inspected stage-2 stock of the given (spec, color), oldest return
// date first. Each batch touched gets one final transfer for
// min(remaining request, batch stock). Partial fulfilment is not an
// error; the caller reads the remainder.
func ExecuteAutoTransfer(db *gorm.DB, spec, color, qty int, orderDate, shipDate time.Time) (*AutoTransferResult, error) {
	result := &AutoTransferResult{Remainder: qty, Shipped: []AutoTransferRecord{}}

	err := db.Transaction(func(tx *gorm.DB) error {
		var candidates []models.ReturnBatch
		if err := tx.
			Joins("JOIN work_orders ON work_orders.id = return_batches.work_order_id").
			Where("return_batches.stage = ? AND return_batches.status = ?", models.StageSecond, models.StatusInspected).
			Where("work_orders.spec_code = ? AND work_orders.color_code = ?", spec, color).
			Order("return_batches.return_date ASC, return_batches.id ASC").
			Find(&candidates).Error; err != nil {
			return err
		}

		for _, batch := range candidates {
			if result.Remainder <= 0 {
				break
			}

			stock, err := AvailableToTransfer(tx, batch.ID, models.DestFinal)
			if err != nil {
				return err
			}
			if stock <= 0 {
				continue
			}

			draw := result.Remainder
			if stock < draw {
				draw = stock
			}

			tr := models.Transfer{
				SourceBatchID: batch.ID,
				WorkOrderID:   batch.WorkOrderID,
				Destination:   models.DestFinal,
				ShipDate:      shipDate,
				OrderDate:     orderDate,
				Qty:           draw,
			}
			if err := tx.Create(&tr).Error; err != nil {
				return err
			}

			result.Shipped = append(result.Shipped, AutoTransferRecord{
				BatchID:    batch.ID,
				ReturnDate: batch.ReturnDate,
				StockQty:   stock,
				ShippedQty: draw,
			})
			result.TotalShipped += draw
			result.Remainder -= draw
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AvailableShippingQty sums the final-shippable stock of inspected
// stage-2 batches for one (spec, color), with the number of batches
// holding stock.
func AvailableShippingQty(db *gorm.DB, spec, color int) (total int, batches int, err error) {
	var candidates []models.ReturnBatch
	if err := db.
		Joins("JOIN work_orders ON work_orders.id = return_batches.work_order_id").
		Where("return_batches.stage = ? AND return_batches.status = ?", models.StageSecond, models.StatusInspected).
		Where("work_orders.spec_code = ? AND work_orders.color_code = ?", spec, color).
		Find(&candidates).Error; err != nil {
		return 0, 0, err
	}

	for _, batch := range candidates {
		stock, err := AvailableToTransfer(db, batch.ID, models.DestFinal)
		if err != nil {
			return 0, 0, err
		}
		if stock > 0 {
			total += stock
			batches++
		}
	}
	return total, batches, nil
}
