package ledger

import (
	"testing"
	"time"

	"gradation-backend/internal/database"
	"gradation-backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func seedWorkOrder(t *testing.T, db *gorm.DB, spec, color, qty int) *models.WorkOrder {
	t.Helper()
	wo, err := CreateWorkOrder(db, WorkOrderInput{
		SpecCode:    spec,
		ColorCode:   color,
		RequestDate: day(2026, 5, 10),
		RequestQty:  qty,
	})
	require.NoError(t, err)
	return wo
}

func seedStage1Batch(t *testing.T, db *gorm.DB, woID uint, returned, retRej, insRej, status int) *models.ReturnBatch {
	t.Helper()
	b, err := CreateReturnBatch(db, ReturnBatchInput{
		WorkOrderID:      woID,
		Stage:            models.StageFirst,
		ReturnDate:       day(2026, 5, 20),
		ReturnedQty:      returned,
		ReturnRejectQty:  retRej,
		InspectRejectQty: insRej,
		Status:           status,
	})
	require.NoError(t, err)
	return b
}

// buildStage2Stock builds a full chain down to an inspected stage-2
// batch with the given pass quantity and return date.
func buildStage2Stock(t *testing.T, db *gorm.DB, spec, color, qty int, returnDate time.Time) *models.ReturnBatch {
	t.Helper()
	wo := seedWorkOrder(t, db, spec, color, qty)
	rb1 := seedStage1Batch(t, db, wo.ID, qty, 0, 0, models.StatusInspected)

	tr, err := CreateTransfer(db, TransferInput{
		SourceBatchID: rb1.ID,
		Destination:   models.DestInterim,
		ShipDate:      day(2026, 5, 25),
		OrderDate:     day(2026, 5, 24),
		Qty:           qty,
	})
	require.NoError(t, err)

	rb2, err := CreateReturnBatch(db, ReturnBatchInput{
		SourceTransferID: tr.ID,
		Stage:            models.StageSecond,
		ReturnDate:       returnDate,
		ReturnedQty:      qty,
		Status:           models.StatusPreInspection,
	})
	require.NoError(t, err)

	rb2, err = InspectReturnBatch(db, rb2.ID, 0)
	require.NoError(t, err)
	return rb2
}

func TestPassQuantityComputedAndValidated(t *testing.T) {
	db := openTestDB(t)
	wo := seedWorkOrder(t, db, 1, 2, 100)

	b := seedStage1Batch(t, db, wo.ID, 50, 3, 2, models.StatusPreInspection)
	require.Equal(t, 45, b.PassQty)

	_, err := CreateReturnBatch(db, ReturnBatchInput{
		WorkOrderID:      wo.ID,
		Stage:            models.StageFirst,
		ReturnDate:       day(2026, 5, 21),
		ReturnedQty:      10,
		ReturnRejectQty:  7,
		InspectRejectQty: 4,
	})
	var split *InvalidSplitError
	require.ErrorAs(t, err, &split)
	require.Equal(t, 10, split.Returned)
}

func TestCreateReturnBatchOverReturn(t *testing.T) {
	db := openTestDB(t)
	wo := seedWorkOrder(t, db, 1, 1, 100)
	seedStage1Batch(t, db, wo.ID, 60, 0, 0, models.StatusPreInspection)

	_, err := CreateReturnBatch(db, ReturnBatchInput{
		WorkOrderID: wo.ID,
		Stage:       models.StageFirst,
		ReturnDate:  day(2026, 5, 21),
		ReturnedQty: 50,
	})
	var over *OverReturnError
	require.ErrorAs(t, err, &over)
	require.Equal(t, 40, over.Remaining)

	// exactly the remaining amount passes
	_, err = CreateReturnBatch(db, ReturnBatchInput{
		WorkOrderID: wo.ID,
		Stage:       models.StageFirst,
		ReturnDate:  day(2026, 5, 21),
		ReturnedQty: 40,
	})
	require.NoError(t, err)
}

func TestUpdateReturnBatchExcludesItself(t *testing.T) {
	db := openTestDB(t)
	wo := seedWorkOrder(t, db, 1, 1, 100)
	a := seedStage1Batch(t, db, wo.ID, 60, 0, 0, models.StatusPreInspection)
	seedStage1Batch(t, db, wo.ID, 40, 0, 0, models.StatusPreInspection)

	// 60 stays valid against the sum that excludes the edited row
	_, err := UpdateReturnBatch(db, a.ID, ReturnBatchInput{
		ReturnDate:  day(2026, 5, 22),
		ReturnedQty: 60,
	})
	require.NoError(t, err)

	_, err = UpdateReturnBatch(db, a.ID, ReturnBatchInput{
		ReturnDate:  day(2026, 5, 22),
		ReturnedQty: 61,
	})
	var over *OverReturnError
	require.ErrorAs(t, err, &over)
	require.Equal(t, 60, over.Remaining)
}

func TestStageTwoBatchResolvesWorkOrderThroughTransfer(t *testing.T) {
	db := openTestDB(t)
	wo := seedWorkOrder(t, db, 2, 3, 80)
	rb1 := seedStage1Batch(t, db, wo.ID, 80, 0, 0, models.StatusInspected)

	tr, err := CreateTransfer(db, TransferInput{
		SourceBatchID: rb1.ID,
		Destination:   models.DestInterim,
		ShipDate:      day(2026, 6, 1),
		OrderDate:     day(2026, 6, 1),
		Qty:           80,
	})
	require.NoError(t, err)

	rb2, err := CreateReturnBatch(db, ReturnBatchInput{
		SourceTransferID: tr.ID,
		Stage:            models.StageSecond,
		ReturnDate:       day(2026, 6, 10),
		ReturnedQty:      75,
	})
	require.NoError(t, err)
	require.Equal(t, wo.ID, rb2.WorkOrderID)
	require.NotNil(t, rb2.SourceTransferID)
	require.Equal(t, tr.ID, *rb2.SourceTransferID)

	// a missing or non-interim transfer is rejected
	_, err = CreateReturnBatch(db, ReturnBatchInput{
		SourceTransferID: tr.ID + 100,
		Stage:            models.StageSecond,
		ReturnDate:       day(2026, 6, 10),
		ReturnedQty:      10,
	})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestTransferOverIssueBoundary(t *testing.T) {
	db := openTestDB(t)
	wo := seedWorkOrder(t, db, 1, 1, 40)
	rb1 := seedStage1Batch(t, db, wo.ID, 40, 0, 0, models.StatusInspected)

	_, err := CreateTransfer(db, TransferInput{
		SourceBatchID: rb1.ID,
		Destination:   models.DestInterim,
		ShipDate:      day(2026, 6, 1),
		OrderDate:     day(2026, 6, 1),
		Qty:           41,
	})
	var over *OverIssueError
	require.ErrorAs(t, err, &over)
	require.Equal(t, 40, over.Available)

	// exactly the available amount succeeds
	_, err = CreateTransfer(db, TransferInput{
		SourceBatchID: rb1.ID,
		Destination:   models.DestInterim,
		ShipDate:      day(2026, 6, 1),
		OrderDate:     day(2026, 6, 1),
		Qty:           40,
	})
	require.NoError(t, err)

	// nothing left
	_, err = CreateTransfer(db, TransferInput{
		SourceBatchID: rb1.ID,
		Destination:   models.DestInterim,
		ShipDate:      day(2026, 6, 2),
		OrderDate:     day(2026, 6, 2),
		Qty:           1,
	})
	require.ErrorAs(t, err, &over)
	require.Equal(t, 0, over.Available)
}

func TestUpdateTransferRevalidatesExcludingItself(t *testing.T) {
	db := openTestDB(t)
	wo := seedWorkOrder(t, db, 1, 1, 50)
	rb1 := seedStage1Batch(t, db, wo.ID, 50, 0, 0, models.StatusInspected)

	tr, err := CreateTransfer(db, TransferInput{
		SourceBatchID: rb1.ID,
		Destination:   models.DestInterim,
		ShipDate:      day(2026, 6, 1),
		OrderDate:     day(2026, 6, 1),
		Qty:           30,
	})
	require.NoError(t, err)

	// growing to the full pass quantity is fine, one past it is not
	_, err = UpdateTransfer(db, tr.ID, TransferInput{
		ShipDate:  day(2026, 6, 2),
		OrderDate: day(2026, 6, 2),
		Qty:       50,
	})
	require.NoError(t, err)

	_, err = UpdateTransfer(db, tr.ID, TransferInput{
		ShipDate:  day(2026, 6, 2),
		OrderDate: day(2026, 6, 2),
		Qty:       51,
	})
	var over *OverIssueError
	require.ErrorAs(t, err, &over)
	require.Equal(t, 50, over.Available)
}

func TestUpdateWorkOrderRefusesDropBelowReturned(t *testing.T) {
	db := openTestDB(t)
	wo := seedWorkOrder(t, db, 1, 1, 100)
	seedStage1Batch(t, db, wo.ID, 70, 0, 0, models.StatusPreInspection)

	_, err := UpdateWorkOrder(db, wo.ID, WorkOrderInput{
		SpecCode:    1,
		ColorCode:   1,
		RequestDate: wo.RequestDate,
		RequestQty:  60,
	})
	var over *OverReturnError
	require.ErrorAs(t, err, &over)

	_, err = UpdateWorkOrder(db, wo.ID, WorkOrderInput{
		SpecCode:    1,
		ColorCode:   1,
		RequestDate: wo.RequestDate,
		RequestQty:  70,
	})
	require.NoError(t, err)
}

func TestDeleteGuards(t *testing.T) {
	db := openTestDB(t)
	wo := seedWorkOrder(t, db, 1, 1, 50)
	rb1 := seedStage1Batch(t, db, wo.ID, 50, 0, 0, models.StatusInspected)

	tr, err := CreateTransfer(db, TransferInput{
		SourceBatchID: rb1.ID,
		Destination:   models.DestInterim,
		ShipDate:      day(2026, 6, 1),
		OrderDate:     day(2026, 6, 1),
		Qty:           50,
	})
	require.NoError(t, err)

	rb2, err := CreateReturnBatch(db, ReturnBatchInput{
		SourceTransferID: tr.ID,
		Stage:            models.StageSecond,
		ReturnDate:       day(2026, 6, 10),
		ReturnedQty:      50,
	})
	require.NoError(t, err)

	var deps *HasDependentsError
	require.ErrorAs(t, DeleteWorkOrder(db, wo.ID), &deps)
	require.ErrorAs(t, DeleteReturnBatch(db, rb1.ID), &deps)
	require.ErrorAs(t, DeleteTransfer(db, tr.ID), &deps)

	// bottom-up deletion works
	require.NoError(t, DeleteReturnBatch(db, rb2.ID))
	require.NoError(t, DeleteTransfer(db, tr.ID))
	require.NoError(t, DeleteReturnBatch(db, rb1.ID))
	require.NoError(t, DeleteWorkOrder(db, wo.ID))
}

func TestInspectRecomputesPass(t *testing.T) {
	db := openTestDB(t)
	wo := seedWorkOrder(t, db, 1, 1, 60)
	b := seedStage1Batch(t, db, wo.ID, 60, 5, 0, models.StatusPreInspection)
	require.Equal(t, 55, b.PassQty)

	b, err := InspectReturnBatch(db, b.ID, 10)
	require.NoError(t, err)
	require.Equal(t, 45, b.PassQty)
	require.Equal(t, models.StatusInspected, b.Status)

	_, err = InspectReturnBatch(db, b.ID, 56)
	var split *InvalidSplitError
	require.ErrorAs(t, err, &split)
}

func TestUpdateReturnBatchCannotShrinkBelowDrawn(t *testing.T) {
	db := openTestDB(t)
	rb2 := buildStage2Stock(t, db, 1, 1, 50, day(2026, 6, 1))

	_, err := CreateTransfer(db, TransferInput{
		SourceBatchID: rb2.ID,
		Destination:   models.DestFinal,
		ShipDate:      day(2026, 7, 1),
		OrderDate:     day(2026, 6, 30),
		Qty:           50,
	})
	require.NoError(t, err)

	// shrinking the batch below the drawn 50 is refused
	_, err = UpdateReturnBatch(db, rb2.ID, ReturnBatchInput{
		ReturnDate:  day(2026, 6, 1),
		ReturnedQty: 20,
	})
	var over *OverIssueError
	require.ErrorAs(t, err, &over)
	require.Equal(t, 50, over.Drawn)

	// availability never went negative
	available, err := AvailableToTransfer(db, rb2.ID, models.DestFinal)
	require.NoError(t, err)
	require.Equal(t, 0, available)

	// re-inspection that would cut the pass quantity is refused too
	_, err = InspectReturnBatch(db, rb2.ID, 5)
	require.ErrorAs(t, err, &over)
	require.Equal(t, 50, over.Drawn)

	// growing the batch is still allowed
	_, err = UpdateReturnBatch(db, rb2.ID, ReturnBatchInput{
		ReturnDate:  day(2026, 6, 1),
		ReturnedQty: 60,
		Status:      models.StatusInspected,
	})
	require.NoError(t, err)
}

func TestTransferDiff(t *testing.T) {
	db := openTestDB(t)
	wo := seedWorkOrder(t, db, 1, 1, 50)
	rb1 := seedStage1Batch(t, db, wo.ID, 50, 0, 0, models.StatusInspected)

	tr, err := CreateTransfer(db, TransferInput{
		SourceBatchID: rb1.ID,
		Destination:   models.DestInterim,
		ShipDate:      day(2026, 6, 1),
		OrderDate:     day(2026, 6, 1),
		Qty:           50,
	})
	require.NoError(t, err)

	_, err = CreateReturnBatch(db, ReturnBatchInput{
		SourceTransferID: tr.ID,
		Stage:            models.StageSecond,
		ReturnDate:       day(2026, 6, 10),
		ReturnedQty:      30,
	})
	require.NoError(t, err)

	diff, err := TransferDiff(db, tr.ID)
	require.NoError(t, err)
	require.Equal(t, 20, diff)
}

func TestAutoTransferFIFOPartialDraw(t *testing.T) {
	db := openTestDB(t)
	older := buildStage2Stock(t, db, 3, 2, 30, day(2026, 6, 1))
	newer := buildStage2Stock(t, db, 3, 2, 50, day(2026, 6, 15))

	result, err := ExecuteAutoTransfer(db, 3, 2, 40, day(2026, 7, 1), day(2026, 7, 2))
	require.NoError(t, err)
	require.Equal(t, 40, result.TotalShipped)
	require.Equal(t, 0, result.Remainder)
	require.Len(t, result.Shipped, 2)

	// oldest return date first, drained before the newer batch is touched
	require.Equal(t, older.ID, result.Shipped[0].BatchID)
	require.Equal(t, 30, result.Shipped[0].ShippedQty)
	require.Equal(t, newer.ID, result.Shipped[1].BatchID)
	require.Equal(t, 10, result.Shipped[1].ShippedQty)
}

func TestAutoTransferExhaustsStock(t *testing.T) {
	db := openTestDB(t)
	buildStage2Stock(t, db, 3, 2, 30, day(2026, 6, 1))
	buildStage2Stock(t, db, 3, 2, 50, day(2026, 6, 15))

	result, err := ExecuteAutoTransfer(db, 3, 2, 100, day(2026, 7, 1), day(2026, 7, 2))
	require.NoError(t, err)
	require.Equal(t, 80, result.TotalShipped)
	require.Equal(t, 20, result.Remainder)

	// everything gone now
	total, batches, err := AvailableShippingQty(db, 3, 2)
	require.NoError(t, err)
	require.Equal(t, 0, total)
	require.Equal(t, 0, batches)
}

func TestAutoTransferIgnoresOtherSpecColor(t *testing.T) {
	db := openTestDB(t)
	buildStage2Stock(t, db, 1, 1, 30, day(2026, 6, 1))

	result, err := ExecuteAutoTransfer(db, 2, 2, 10, day(2026, 7, 1), day(2026, 7, 2))
	require.NoError(t, err)
	require.Equal(t, 0, result.TotalShipped)
	require.Equal(t, 10, result.Remainder)
	require.Empty(t, result.Shipped)
}

func TestProcessingMatrix(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Create(&models.CodeMaster{Kind: models.CodeKindSpec, Code: 1, Name: "A"}).Error)
	require.NoError(t, db.Create(&models.CodeMaster{Kind: models.CodeKindColor, Code: 1, Name: "Blue"}).Error)

	wo := seedWorkOrder(t, db, 1, 1, 100)
	rb1 := seedStage1Batch(t, db, wo.ID, 60, 5, 0, models.StatusInspected) // pass 55
	seedStage1Batch(t, db, wo.ID, 20, 0, 0, models.StatusPreInspection)    // pass 20, pre-inspection

	tr, err := CreateTransfer(db, TransferInput{
		SourceBatchID: rb1.ID,
		Destination:   models.DestInterim,
		ShipDate:      day(2026, 6, 1),
		OrderDate:     day(2026, 6, 1),
		Qty:           30,
	})
	require.NoError(t, err)

	rb2, err := CreateReturnBatch(db, ReturnBatchInput{
		SourceTransferID: tr.ID,
		Stage:            models.StageSecond,
		ReturnDate:       day(2026, 6, 10),
		ReturnedQty:      25,
	})
	require.NoError(t, err)
	rb2, err = InspectReturnBatch(db, rb2.ID, 5) // pass 20
	require.NoError(t, err)

	_, err = CreateTransfer(db, TransferInput{
		SourceBatchID: rb2.ID,
		Destination:   models.DestFinal,
		ShipDate:      day(2026, 6, 20),
		OrderDate:     day(2026, 6, 19),
		Qty:           8,
	})
	require.NoError(t, err)

	m, err := ProcessingMatrix(db)
	require.NoError(t, err)

	s1 := m.Stage1["1-1"]
	require.Equal(t, 20, s1.NotReturned)    // 100 requested - 80 returned
	require.Equal(t, 20, s1.PreInspectPass) // the uninspected batch
	require.Equal(t, 25, s1.AvailableStock) // 55 inspected pass - 30 shipped interim

	s2 := m.Stage2["1-1"]
	require.Equal(t, 5, s2.NotReturned)     // 30 shipped - 25 returned
	require.Equal(t, 0, s2.PreInspectPass)
	require.Equal(t, 12, s2.AvailableStock) // 20 pass - 8 shipped final

	require.Len(t, m.Specs, 1)
	require.Len(t, m.Colors, 1)
}

func TestFinalShipmentMatrix(t *testing.T) {
	db := openTestDB(t)

	rb2 := buildStage2Stock(t, db, 2, 1, 50, day(2026, 6, 1))
	_, err := CreateTransfer(db, TransferInput{
		SourceBatchID: rb2.ID,
		Destination:   models.DestFinal,
		ShipDate:      day(2026, 7, 5),
		OrderDate:     day(2026, 7, 4),
		Qty:           20,
	})
	require.NoError(t, err)
	_, err = CreateTransfer(db, TransferInput{
		SourceBatchID: rb2.ID,
		Destination:   models.DestFinal,
		ShipDate:      day(2026, 8, 5),
		OrderDate:     day(2026, 8, 4),
		Qty:           15,
	})
	require.NoError(t, err)

	m, err := FinalShipmentMatrix(db, FinalShipmentFilter{})
	require.NoError(t, err)
	require.Equal(t, FinalShipmentCell{TotalShipped: 35, ShipmentCount: 2}, m.Cells["2-1"])

	// date window keeps only the July shipment
	from, to := day(2026, 7, 1), day(2026, 7, 31)
	m, err = FinalShipmentMatrix(db, FinalShipmentFilter{ShipDateFrom: &from, ShipDateTo: &to})
	require.NoError(t, err)
	require.Equal(t, FinalShipmentCell{TotalShipped: 20, ShipmentCount: 1}, m.Cells["2-1"])
}
