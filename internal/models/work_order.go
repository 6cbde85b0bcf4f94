package models

import "time"

// WorkOrder: a request to coat a batch of (spec, color) lenses at the
// stage-1 vendor. Vendor is constant; the second vendor is only ever
// reached through a Transfer.
type WorkOrder struct {
	ID          uint      `gorm:"primaryKey"`
	SlipNo      string    `gorm:"size:20;uniqueIndex"` // issued by the doc counter
	SpecCode    int       `gorm:"index;not null"`
	ColorCode   int       `gorm:"index;not null"`
	Vendor      int       `gorm:"not null;default:1"` // always VendorStage1
	RequestDate time.Time `gorm:"index;not null"`
	RequestQty  int       `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	ReturnBatches []ReturnBatch `gorm:"foreignKey:WorkOrderID"`
}

const VendorStage1 = 1
