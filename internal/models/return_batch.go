package models

import "time"

// ReturnBatch: a vendor's reply to a processing request. The returned
// quantity splits into return-reject, inspection-reject and pass; PassQty
// is always recomputed server-side, never taken from the client.
//
// Stage 1 batches hang off the WorkOrder directly. Stage 2 batches also
// carry the interim Transfer that produced them in SourceTransferID.
type ReturnBatch struct {
	ID               uint `gorm:"primaryKey"`
	WorkOrderID      uint `gorm:"index;not null"`
	WorkOrder        WorkOrder
	Stage            int       `gorm:"index;not null"` // StageFirst or StageSecond
	ReturnDate       time.Time `gorm:"index;not null"`
	ReturnedQty      int       `gorm:"not null"`
	ReturnRejectQty  int       `gorm:"not null;default:0"` // rejected by the vendor
	InspectRejectQty int       `gorm:"not null;default:0"` // rejected at receiving inspection
	PassQty          int       `gorm:"not null;default:0"` // returned - returnReject - inspectReject
	Status           int       `gorm:"index;not null;default:0"`
	SourceTransferID *uint     `gorm:"index"` // stage 2 only
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

const (
	StageFirst  = 1
	StageSecond = 2
)

const (
	StatusPreInspection = 0
	StatusInspected     = 1
)
