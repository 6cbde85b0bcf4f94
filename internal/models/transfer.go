package models

import "time"

// Transfer: movement of available pass-quantity out of a ReturnBatch,
// either to the interim (stage-2) vendor or to the final customer.
// WorkOrderID is denormalized from the source batch so reports can group
// by (spec, color) without an extra join hop.
type Transfer struct {
	ID            uint `gorm:"primaryKey"`
	SourceBatchID uint `gorm:"index;not null"`
	SourceBatch   ReturnBatch `gorm:"foreignKey:SourceBatchID"`
	WorkOrderID   uint        `gorm:"index;not null"`
	Destination   int         `gorm:"index;not null"` // DestInterim or DestFinal
	ShipDate      time.Time   `gorm:"index;not null"`
	OrderDate     time.Time   `gorm:"not null"`
	Qty           int         `gorm:"not null"`
	Flag          int         `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const (
	DestInterim = 2
	DestFinal   = 3
)
