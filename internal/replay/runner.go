package replay

import (
	"time"

	"gradation-backend/internal/models"

	"gorm.io/gorm"
)

// The replay engine re-expresses every gradation chain as rows in the
// generic lot/shipment/processing-record ledger. A run is all-or-nothing:
// pass 1 walks the whole forest without writing and collects every
// mapping failure; only a clean pass 1 is followed by pass 2, which
// repeats the walk inside one transaction and applies the writes.

const (
	lotSplit1 = 99
	lotRank   = 1

	rootShipmentCategory = 1
	rootShipmentDest     = 604

	interimShipmentCategory = 1
	interimShipmentDest     = 602

	finalShipmentCategory = 0
	finalShipmentDest     = 501
	finalShipmentProcess  = 0
)

// Failure pins a skipped node and the chain above it, so the report
// alone is enough to locate the failing branch.
type Failure struct {
	NodeKind   string          `json:"node_kind"` // "work_order", "return_batch", "transfer"
	NodeID     uint            `json:"node_id"`
	ParentRefs map[string]uint `json:"parent_refs"`
	Reason     string          `json:"reason"`
}

type Result struct {
	SuccessCount int       `json:"success_count"`
	ErrorCount   int       `json:"error_count"`
	Committed    bool      `json:"committed"`
	Failures     []Failure `json:"failures"`
}

// lotNo encodes a date as a YYMMDD integer.
func lotNo(d time.Time) int {
	return (d.Year()%100)*10000 + int(d.Month())*100 + d.Day()
}

// emitter receives the generic rows the walk produces. The dry emitter
// counts them; the db emitter writes them.
type emitter interface {
	maxSplit2(tx *gorm.DB, productID string, lot int) (int, error)
	createLot(tx *gorm.DB, lot *models.Lot) error
	createShipment(tx *gorm.DB, s *models.LotShipment) error
	createRecord(tx *gorm.DB, r *models.ProcessingRecord) error
}

type dryEmitter struct {
	nextID uint
}

func (e *dryEmitter) maxSplit2(_ *gorm.DB, _ string, _ int) (int, error) { return 0, nil }

func (e *dryEmitter) createLot(_ *gorm.DB, lot *models.Lot) error {
	e.nextID++
	lot.ID = e.nextID
	return nil
}

func (e *dryEmitter) createShipment(_ *gorm.DB, s *models.LotShipment) error {
	e.nextID++
	s.ID = e.nextID
	return nil
}

func (e *dryEmitter) createRecord(_ *gorm.DB, r *models.ProcessingRecord) error {
	e.nextID++
	r.ID = e.nextID
	return nil
}

type dbEmitter struct{}

func (dbEmitter) maxSplit2(tx *gorm.DB, productID string, lot int) (int, error) {
	var max int64
	err := tx.Model(&models.Lot{}).
		Where("product_id = ? AND lot_no = ?", productID, lot).
		Select("COALESCE(MAX(split2), 0)").
		Scan(&max).Error
	return int(max), err
}

func (dbEmitter) createLot(tx *gorm.DB, lot *models.Lot) error {
	return tx.Create(lot).Error
}

func (dbEmitter) createShipment(tx *gorm.DB, s *models.LotShipment) error {
	return tx.Create(s).Error
}

func (dbEmitter) createRecord(tx *gorm.DB, r *models.ProcessingRecord) error {
	return tx.Create(r).Error
}

type walker struct {
	tx     *gorm.DB
	em     emitter
	result *Result
}

func (w *walker) fail(kind string, id uint, parents map[string]uint, err error) {
	w.result.ErrorCount++
	w.result.Failures = append(w.result.Failures, Failure{
		NodeKind:   kind,
		NodeID:     id,
		ParentRefs: parents,
		Reason:     err.Error(),
	})
}

// emitLot assigns the next Split2 within (product, lot number) and
// creates the row.
func (w *walker) emitLot(productID string, lot, qty int, recordID uint) (uint, error) {
	max, err := w.em.maxSplit2(w.tx, productID, lot)
	if err != nil {
		return 0, err
	}
	row := models.Lot{
		ProductID:          productID,
		LotNo:              lot,
		Split1:             lotSplit1,
		Split2:             max + 1,
		Rank:               lotRank,
		Qty:                qty,
		ProcessingRecordID: recordID,
	}
	if err := w.em.createLot(w.tx, &row); err != nil {
		return 0, err
	}
	return row.ID, nil
}

// walkWorkOrder replays one chain root and everything below it. Mapping
// failures are recorded and the failing subtree is skipped; siblings
// continue. Storage errors abort the whole walk.
func (w *walker) walkWorkOrder(wo *models.WorkOrder) error {
	key := specColor{Spec: wo.SpecCode, Color: wo.ColorCode}

	productID, ok := rootProduct[key]
	if !ok {
		w.fail("work_order", wo.ID, map[string]uint{}, &MappingMissingError{Spec: wo.SpecCode, Color: wo.ColorCode, Level: "root product"})
		return nil
	}
	processID, ok := rootProcess[key]
	if !ok {
		w.fail("work_order", wo.ID, map[string]uint{}, &MappingMissingError{Spec: wo.SpecCode, Color: wo.ColorCode, Level: "root process"})
		return nil
	}

	rootLotID, err := w.emitLot(productID, lotNo(wo.RequestDate), wo.RequestQty, 0)
	if err != nil {
		return err
	}
	rootShipment := models.LotShipment{
		Category:    rootShipmentCategory,
		Destination: rootShipmentDest,
		ProcessID:   processID,
		ProductID:   productID,
		ShipDate:    wo.RequestDate,
		OrderDate:   wo.RequestDate,
		LotID:       rootLotID,
		Qty:         wo.RequestQty,
	}
	if err := w.em.createShipment(w.tx, &rootShipment); err != nil {
		return err
	}
	w.result.SuccessCount++

	var stage1 []models.ReturnBatch
	if err := w.tx.
		Where("work_order_id = ? AND stage = ?", wo.ID, models.StageFirst).
		Order("id ASC").
		Find(&stage1).Error; err != nil {
		return err
	}

	for i := range stage1 {
		if err := w.walkStage1Batch(wo, &stage1[i], rootShipment.ID); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkStage1Batch(wo *models.WorkOrder, batch *models.ReturnBatch, rootShipmentID uint) error {
	key := specColor{Spec: wo.SpecCode, Color: wo.ColorCode}

	productID, ok := stage1Product[key]
	if !ok {
		w.fail("return_batch", batch.ID, map[string]uint{"work_order": wo.ID}, &MappingMissingError{Spec: wo.SpecCode, Color: wo.ColorCode, Level: "stage-1 product"})
		return nil
	}

	record := models.ProcessingRecord{
		ShipmentID:       rootShipmentID,
		Date:             batch.ReturnDate,
		Qty:              batch.ReturnedQty,
		ReturnRejectQty:  batch.ReturnRejectQty,
		InspectRejectQty: batch.InspectRejectQty,
		PassQty:          batch.PassQty,
	}
	if err := w.em.createRecord(w.tx, &record); err != nil {
		return err
	}
	lotID, err := w.emitLot(productID, lotNo(batch.ReturnDate), batch.PassQty, record.ID)
	if err != nil {
		return err
	}
	w.result.SuccessCount++

	var interim []models.Transfer
	if err := w.tx.
		Where("source_batch_id = ? AND destination = ?", batch.ID, models.DestInterim).
		Order("id ASC").
		Find(&interim).Error; err != nil {
		return err
	}

	for i := range interim {
		if err := w.walkInterimTransfer(wo, &interim[i], lotID); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkInterimTransfer(wo *models.WorkOrder, tr *models.Transfer, stage1LotID uint) error {
	key := specColor{Spec: wo.SpecCode, Color: wo.ColorCode}

	mapping, ok := interimShipment[key]
	if !ok {
		w.fail("transfer", tr.ID, map[string]uint{"work_order": wo.ID, "return_batch": tr.SourceBatchID}, &MappingMissingError{Spec: wo.SpecCode, Color: wo.ColorCode, Level: "interim shipment"})
		return nil
	}

	shipment := models.LotShipment{
		Category:    interimShipmentCategory,
		Destination: interimShipmentDest,
		ProcessID:   mapping.ProcessID,
		ProductID:   mapping.ProductID,
		ShipDate:    tr.ShipDate,
		OrderDate:   tr.OrderDate,
		LotID:       stage1LotID,
		Qty:         tr.Qty,
	}
	if err := w.em.createShipment(w.tx, &shipment); err != nil {
		return err
	}
	w.result.SuccessCount++

	var stage2 []models.ReturnBatch
	if err := w.tx.
		Where("source_transfer_id = ? AND stage = ?", tr.ID, models.StageSecond).
		Order("id ASC").
		Find(&stage2).Error; err != nil {
		return err
	}

	for i := range stage2 {
		if err := w.walkStage2Batch(wo, &stage2[i], shipment.ID); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkStage2Batch(wo *models.WorkOrder, batch *models.ReturnBatch, interimShipmentID uint) error {
	key := specColor{Spec: wo.SpecCode, Color: wo.ColorCode}

	productID, ok := stage2Product[key]
	if !ok {
		parents := map[string]uint{"work_order": wo.ID}
		if batch.SourceTransferID != nil {
			parents["transfer"] = *batch.SourceTransferID
		}
		w.fail("return_batch", batch.ID, parents, &MappingMissingError{Spec: wo.SpecCode, Color: wo.ColorCode, Level: "stage-2 product"})
		return nil
	}

	record := models.ProcessingRecord{
		ShipmentID:       interimShipmentID,
		Date:             batch.ReturnDate,
		Qty:              batch.ReturnedQty,
		ReturnRejectQty:  batch.ReturnRejectQty,
		InspectRejectQty: batch.InspectRejectQty,
		PassQty:          batch.PassQty,
	}
	if err := w.em.createRecord(w.tx, &record); err != nil {
		return err
	}
	lotID, err := w.emitLot(productID, lotNo(batch.ReturnDate), batch.PassQty, record.ID)
	if err != nil {
		return err
	}
	w.result.SuccessCount++

	var finals []models.Transfer
	if err := w.tx.
		Where("source_batch_id = ? AND destination = ?", batch.ID, models.DestFinal).
		Order("id ASC").
		Find(&finals).Error; err != nil {
		return err
	}

	for i := range finals {
		tr := &finals[i]
		finalProduct, ok := finalShipmentProduct[key]
		if !ok {
			w.fail("transfer", tr.ID, map[string]uint{"work_order": wo.ID, "return_batch": tr.SourceBatchID}, &MappingMissingError{Spec: wo.SpecCode, Color: wo.ColorCode, Level: "final shipment"})
			continue
		}
		shipment := models.LotShipment{
			Category:    finalShipmentCategory,
			Destination: finalShipmentDest,
			ProcessID:   finalShipmentProcess,
			ProductID:   finalProduct,
			ShipDate:    tr.ShipDate,
			OrderDate:   tr.OrderDate,
			LotID:       lotID,
			Qty:         tr.Qty,
		}
		if err := w.em.createShipment(w.tx, &shipment); err != nil {
			return err
		}
		w.result.SuccessCount++
	}
	return nil
}

func walk(tx *gorm.DB, em emitter) (*Result, error) {
	w := &walker{tx: tx, em: em, result: &Result{Failures: []Failure{}}}

	var orders []models.WorkOrder
	if err := tx.Order("id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	for i := range orders {
		if err := w.walkWorkOrder(&orders[i]); err != nil {
			return nil, err
		}
	}
	return w.result, nil
}

// Run replays the whole ledger. The returned result carries the complete
// failure report; Committed is true only when every node mapped and the
// write pass went through.
func Run(db *gorm.DB) (*Result, error) {
	dry, err := walk(db, &dryEmitter{})
	if err != nil {
		return nil, err
	}
	if dry.ErrorCount > 0 {
		return dry, nil
	}

	var applied *Result
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		applied, err = walk(tx, dbEmitter{})
		return err
	})
	if err != nil {
		return nil, err
	}
	applied.Committed = true
	return applied, nil
}
