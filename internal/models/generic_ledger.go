package models

import "time"

// Generic production ledger produced by the replay engine. Mirrors the
// gradation chain but is vendor-agnostic: lots and shipments carry mapped
// product/process identifiers instead of spec/color codes. The replay
// engine is the only writer.

// Lot: a quantity of product entering stock. LotNo is the source date as
// YYMMDD; Split2 is a running sequence within (ProductID, LotNo).
type Lot struct {
	ID                 uint   `gorm:"primaryKey"`
	ProductID          string `gorm:"size:5;index;not null"`
	LotNo              int    `gorm:"index;not null"`
	Split1             int    `gorm:"not null"`
	Split2             int    `gorm:"not null"`
	Rank               int    `gorm:"not null;default:1"`
	Qty                int    `gorm:"not null"`
	Flag               int    `gorm:"not null;default:0"`
	ProcessingRecordID uint   `gorm:"index;not null;default:0"` // 0 for root lots
	CreatedAt          time.Time
}

// LotShipment: a shipment drawn from a Lot toward a destination code.
type LotShipment struct {
	ID          uint   `gorm:"primaryKey"`
	Category    int    `gorm:"not null"` // 1 processing shipment, 0 sales shipment
	Destination int    `gorm:"index;not null"`
	ProcessID   int    `gorm:"not null"`
	ProductID   string `gorm:"size:5;not null"`
	ShipDate    time.Time
	OrderDate   time.Time
	LotID       uint `gorm:"index;not null"`
	Qty         int  `gorm:"not null"`
	Flag        int  `gorm:"not null;default:0"`
	CreatedAt   time.Time
}

// ProcessingRecord: a vendor's reply against a LotShipment.
type ProcessingRecord struct {
	ID               uint `gorm:"primaryKey"`
	ShipmentID       uint `gorm:"index;not null"`
	Date             time.Time
	Qty              int `gorm:"not null"`
	ReturnRejectQty  int `gorm:"not null;default:0"`
	InspectRejectQty int `gorm:"not null;default:0"`
	PassQty          int `gorm:"not null;default:0"`
	CreatedAt        time.Time
}
