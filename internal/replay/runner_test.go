package replay

import (
	"testing"
	"time"

	"gradation-backend/internal/database"
	"gradation-backend/internal/ledger"
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

// buildChain creates a complete chain: work order, inspected stage-1
// batch, interim transfer, inspected stage-2 batch, final transfer.
func buildChain(t *testing.T, db *gorm.DB, spec, color, qty int) *models.WorkOrder {
	t.Helper()

	wo, err := ledger.CreateWorkOrder(db, ledger.WorkOrderInput{
		SpecCode:    spec,
		ColorCode:   color,
		RequestDate: day(2026, 5, 10),
		RequestQty:  qty,
	})
	require.NoError(t, err)

	rb1, err := ledger.CreateReturnBatch(db, ledger.ReturnBatchInput{
		WorkOrderID: wo.ID,
		Stage:       models.StageFirst,
		ReturnDate:  day(2026, 5, 20),
		ReturnedQty: qty,
		Status:      models.StatusInspected,
	})
	require.NoError(t, err)

	tr, err := ledger.CreateTransfer(db, ledger.TransferInput{
		SourceBatchID: rb1.ID,
		Destination:   models.DestInterim,
		ShipDate:      day(2026, 5, 25),
		OrderDate:     day(2026, 5, 24),
		Qty:           qty,
	})
	require.NoError(t, err)

	rb2, err := ledger.CreateReturnBatch(db, ledger.ReturnBatchInput{
		SourceTransferID: tr.ID,
		Stage:            models.StageSecond,
		ReturnDate:       day(2026, 6, 5),
		ReturnedQty:      qty,
		Status:           models.StatusInspected,
	})
	require.NoError(t, err)

	_, err = ledger.CreateTransfer(db, ledger.TransferInput{
		SourceBatchID: rb2.ID,
		Destination:   models.DestFinal,
		ShipDate:      day(2026, 6, 15),
		OrderDate:     day(2026, 6, 14),
		Qty:           qty,
	})
	require.NoError(t, err)

	return wo
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestLotNoIsYYMMDD(t *testing.T) {
	require.Equal(t, 260510, lotNo(day(2026, 5, 10)))
	require.Equal(t, 261231, lotNo(day(2026, 12, 31)))
	require.Equal(t, 300101, lotNo(day(2030, 1, 1)))
}

func TestRunReplaysFullChain(t *testing.T) {
	db := openTestDB(t)
	buildChain(t, db, 1, 2, 100)

	result, err := Run(db)
	require.NoError(t, err)
	require.True(t, result.Committed)
	require.Equal(t, 0, result.ErrorCount)
	require.Equal(t, 5, result.SuccessCount) // one per chain node
	require.Empty(t, result.Failures)

	// one lot per production level, one shipment per movement,
	// one processing record per vendor reply
	require.EqualValues(t, 3, count(t, db, &models.Lot{}))
	require.EqualValues(t, 3, count(t, db, &models.LotShipment{}))
	require.EqualValues(t, 2, count(t, db, &models.ProcessingRecord{}))

	// root level carries the mapped identifiers and the request date lot
	var rootLot models.Lot
	require.NoError(t, db.First(&rootLot, "processing_record_id = 0").Error)
	require.Equal(t, "K753", rootLot.ProductID) // spec 1 color 2
	require.Equal(t, 260510, rootLot.LotNo)
	require.Equal(t, 99, rootLot.Split1)
	require.Equal(t, 1, rootLot.Split2)
	require.Equal(t, 100, rootLot.Qty)

	var rootShipment models.LotShipment
	require.NoError(t, db.First(&rootShipment, "destination = ?", rootShipmentDest).Error)
	require.Equal(t, 1, rootShipment.Category)
	require.Equal(t, 247, rootShipment.ProcessID)
	require.Equal(t, rootLot.ID, rootShipment.LotID)

	var finalShip models.LotShipment
	require.NoError(t, db.First(&finalShip, "destination = ?", finalShipmentDest).Error)
	require.Equal(t, 0, finalShip.Category)
	require.Equal(t, 0, finalShip.ProcessID)
	require.Equal(t, "2027", finalShip.ProductID)
}

func TestRunAssignsSequentialSplit2(t *testing.T) {
	db := openTestDB(t)

	// two work orders with the same product mapping and request date
	for i := 0; i < 2; i++ {
		_, err := ledger.CreateWorkOrder(db, ledger.WorkOrderInput{
			SpecCode:    1,
			ColorCode:   1,
			RequestDate: day(2026, 5, 10),
			RequestQty:  10,
		})
		require.NoError(t, err)
	}

	result, err := Run(db)
	require.NoError(t, err)
	require.True(t, result.Committed)

	var lots []models.Lot
	require.NoError(t, db.Order("id ASC").Find(&lots).Error)
	require.Len(t, lots, 2)
	require.Equal(t, 1, lots[0].Split2)
	require.Equal(t, 2, lots[1].Split2)
}

func TestRunAllOrNothingOnMappingMiss(t *testing.T) {
	db := openTestDB(t)
	buildChain(t, db, 1, 1, 50)

	// spec 9 has no mapping anywhere
	unmapped, err := ledger.CreateWorkOrder(db, ledger.WorkOrderInput{
		SpecCode:    9,
		ColorCode:   1,
		RequestDate: day(2026, 5, 11),
		RequestQty:  20,
	})
	require.NoError(t, err)

	result, err := Run(db)
	require.NoError(t, err)
	require.False(t, result.Committed)
	require.Equal(t, 1, result.ErrorCount)
	require.Len(t, result.Failures, 1)
	require.Equal(t, "work_order", result.Failures[0].NodeKind)
	require.Equal(t, unmapped.ID, result.Failures[0].NodeID)
	require.Empty(t, result.Failures[0].ParentRefs) // roots have no ancestors
	require.Contains(t, result.Failures[0].Reason, "spec 9")

	// the valid sibling chain was walked but nothing was written
	require.Equal(t, 5, result.SuccessCount)
	require.EqualValues(t, 0, count(t, db, &models.Lot{}))
	require.EqualValues(t, 0, count(t, db, &models.LotShipment{}))
	require.EqualValues(t, 0, count(t, db, &models.ProcessingRecord{}))
}

func TestFailureCarriesParentRefs(t *testing.T) {
	db := openTestDB(t)
	wo := buildChain(t, db, 4, 5, 50)

	// take out the stage-1 translation for this pair so the failure
	// lands below the root
	key := specColor{Spec: 4, Color: 5}
	saved := stage1Product[key]
	delete(stage1Product, key)
	defer func() { stage1Product[key] = saved }()

	result, err := Run(db)
	require.NoError(t, err)
	require.False(t, result.Committed)
	require.Len(t, result.Failures, 1)

	f := result.Failures[0]
	require.Equal(t, "return_batch", f.NodeKind)
	require.Equal(t, map[string]uint{"work_order": wo.ID}, f.ParentRefs)

	// only the root level was emitted before the subtree was skipped
	require.Equal(t, 1, result.SuccessCount)
	require.EqualValues(t, 0, count(t, db, &models.Lot{}))
}

func TestRunIsRepeatable(t *testing.T) {
	db := openTestDB(t)
	buildChain(t, db, 2, 2, 30)

	first, err := Run(db)
	require.NoError(t, err)
	require.True(t, first.Committed)

	// a second run re-emits the forest; split2 keeps the copies apart
	second, err := Run(db)
	require.NoError(t, err)
	require.True(t, second.Committed)
	require.EqualValues(t, 6, count(t, db, &models.Lot{}))

	var lots []models.Lot
	require.NoError(t, db.Where("processing_record_id = 0").Order("id ASC").Find(&lots).Error)
	require.Len(t, lots, 2)
	require.Equal(t, 1, lots[0].Split2)
	require.Equal(t, 2, lots[1].Split2)
}
