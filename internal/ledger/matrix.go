package ledger

import (
	"fmt"
	"time"

	"gradation-backend/internal/models"

	"gorm.io/gorm"
)

// Cross-tabulated reporting rollups. Everything here is a pure read
// built from grouped aggregate queries; no per-row iteration over the
// ledger tables.

type CodeChoice struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

type MatrixCell struct {
	NotReturned    int `json:"not_returned"`
	PreInspectPass int `json:"pre_inspect_pass"`
	AvailableStock int `json:"available_stock"`
}

type ProcessingMatrixResult struct {
	Specs  []CodeChoice          `json:"specs"`
	Colors []CodeChoice          `json:"colors"`
	Stage1 map[string]MatrixCell `json:"stage1"`
	Stage2 map[string]MatrixCell `json:"stage2"`
}

type pairSum struct {
	Spec  int
	Color int
	Total int64
}

func pairKey(spec, color int) string {
	return fmt.Sprintf("%d-%d", spec, color)
}

func codeChoices(db *gorm.DB, kind models.CodeKind) ([]CodeChoice, error) {
	var codes []models.CodeMaster
	if err := db.
		Where("kind = ? AND disabled = ?", kind, false).
		Order("code ASC").
		Find(&codes).Error; err != nil {
		return nil, err
	}
	choices := make([]CodeChoice, 0, len(codes))
	for _, c := range codes {
		choices = append(choices, CodeChoice{Code: c.Code, Name: c.Name})
	}
	return choices, nil
}

func scanPairSums(q *gorm.DB) (map[string]int, error) {
	var rows []pairSum
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[pairKey(r.Spec, r.Color)] = int(r.Total)
	}
	return out, nil
}

// batchSums groups a return-batch aggregate by (spec, color).
func batchSums(db *gorm.DB, column string, stage, status int) (map[string]int, error) {
	q := db.Table("return_batches").
		Select(fmt.Sprintf("work_orders.spec_code AS spec, work_orders.color_code AS color, SUM(return_batches.%s) AS total", column)).
		Joins("JOIN work_orders ON work_orders.id = return_batches.work_order_id").
		Where("return_batches.stage = ?", stage).
		Group("work_orders.spec_code, work_orders.color_code")
	if status >= 0 {
		q = q.Where("return_batches.status = ?", status)
	}
	return scanPairSums(q)
}

// transferSums groups transfer quantities by (spec, color). When stage
// is positive, only transfers drawn from inspected batches of that stage
// count, matching the stock definition.
func transferSums(db *gorm.DB, destination, stage int) (map[string]int, error) {
	q := db.Table("transfers").
		Select("work_orders.spec_code AS spec, work_orders.color_code AS color, SUM(transfers.qty) AS total").
		Joins("JOIN work_orders ON work_orders.id = transfers.work_order_id").
		Where("transfers.destination = ?", destination).
		Group("work_orders.spec_code, work_orders.color_code")
	if stage > 0 {
		q = q.Joins("JOIN return_batches ON return_batches.id = transfers.source_batch_id").
			Where("return_batches.stage = ? AND return_batches.status = ?", stage, models.StatusInspected)
	}
	return scanPairSums(q)
}

// ProcessingMatrix aggregates, per (spec, color) and per vendor path:
// not-yet-returned quantity, pre-inspection pass total, and
// post-inspection available stock.
func ProcessingMatrix(db *gorm.DB) (*ProcessingMatrixResult, error) {
	specs, err := codeChoices(db, models.CodeKindSpec)
	if err != nil {
		return nil, err
	}
	colors, err := codeChoices(db, models.CodeKindColor)
	if err != nil {
		return nil, err
	}

	requested, err := scanPairSums(db.Table("work_orders").
		Select("spec_code AS spec, color_code AS color, SUM(request_qty) AS total").
		Group("spec_code, color_code"))
	if err != nil {
		return nil, err
	}
	returned1, err := batchSums(db, "returned_qty", models.StageFirst, -1)
	if err != nil {
		return nil, err
	}
	prePass1, err := batchSums(db, "pass_qty", models.StageFirst, models.StatusPreInspection)
	if err != nil {
		return nil, err
	}
	inspPass1, err := batchSums(db, "pass_qty", models.StageFirst, models.StatusInspected)
	if err != nil {
		return nil, err
	}
	drawn1, err := transferSums(db, models.DestInterim, models.StageFirst)
	if err != nil {
		return nil, err
	}

	interimQty, err := transferSums(db, models.DestInterim, 0)
	if err != nil {
		return nil, err
	}
	returned2, err := batchSums(db, "returned_qty", models.StageSecond, -1)
	if err != nil {
		return nil, err
	}
	prePass2, err := batchSums(db, "pass_qty", models.StageSecond, models.StatusPreInspection)
	if err != nil {
		return nil, err
	}
	inspPass2, err := batchSums(db, "pass_qty", models.StageSecond, models.StatusInspected)
	if err != nil {
		return nil, err
	}
	drawn2, err := transferSums(db, models.DestFinal, models.StageSecond)
	if err != nil {
		return nil, err
	}

	result := &ProcessingMatrixResult{
		Specs:  specs,
		Colors: colors,
		Stage1: make(map[string]MatrixCell),
		Stage2: make(map[string]MatrixCell),
	}

	for key, req := range requested {
		result.Stage1[key] = MatrixCell{
			NotReturned:    req - returned1[key],
			PreInspectPass: prePass1[key],
			AvailableStock: inspPass1[key] - drawn1[key],
		}
	}
	for key, shipped := range interimQty {
		result.Stage2[key] = MatrixCell{
			NotReturned:    shipped - returned2[key],
			PreInspectPass: prePass2[key],
			AvailableStock: inspPass2[key] - drawn2[key],
		}
	}

	return result, nil
}

type FinalShipmentFilter struct {
	ShipDateFrom  *time.Time
	ShipDateTo    *time.Time
	OrderDateFrom *time.Time
	OrderDateTo   *time.Time
	Flag          *int
}

type FinalShipmentCell struct {
	TotalShipped  int `json:"total_shipped"`
	ShipmentCount int `json:"shipment_count"`
}

type FinalShipmentMatrixResult struct {
	Specs  []CodeChoice                 `json:"specs"`
	Colors []CodeChoice                 `json:"colors"`
	Cells  map[string]FinalShipmentCell `json:"cells"`
}

// FinalShipmentMatrix sums shipped quantity and shipment count per
// (spec, color) over final transfers matching the filter.
func FinalShipmentMatrix(db *gorm.DB, f FinalShipmentFilter) (*FinalShipmentMatrixResult, error) {
	specs, err := codeChoices(db, models.CodeKindSpec)
	if err != nil {
		return nil, err
	}
	colors, err := codeChoices(db, models.CodeKindColor)
	if err != nil {
		return nil, err
	}

	q := db.Table("transfers").
		Select("work_orders.spec_code AS spec, work_orders.color_code AS color, SUM(transfers.qty) AS total, COUNT(transfers.id) AS cnt").
		Joins("JOIN work_orders ON work_orders.id = transfers.work_order_id").
		Where("transfers.destination = ?", models.DestFinal).
		Group("work_orders.spec_code, work_orders.color_code")

	if f.ShipDateFrom != nil {
		q = q.Where("transfers.ship_date >= ?", *f.ShipDateFrom)
	}
	if f.ShipDateTo != nil {
		q = q.Where("transfers.ship_date <= ?", *f.ShipDateTo)
	}
	if f.OrderDateFrom != nil {
		q = q.Where("transfers.order_date >= ?", *f.OrderDateFrom)
	}
	if f.OrderDateTo != nil {
		q = q.Where("transfers.order_date <= ?", *f.OrderDateTo)
	}
	if f.Flag != nil {
		q = q.Where("transfers.flag = ?", *f.Flag)
	}

	var rows []struct {
		Spec  int
		Color int
		Total int64
		Cnt   int64
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := &FinalShipmentMatrixResult{
		Specs:  specs,
		Colors: colors,
		Cells:  make(map[string]FinalShipmentCell, len(rows)),
	}
	for _, r := range rows {
		result.Cells[pairKey(r.Spec, r.Color)] = FinalShipmentCell{
			TotalShipped:  int(r.Total),
			ShipmentCount: int(r.Cnt),
		}
	}
	return result, nil
}
