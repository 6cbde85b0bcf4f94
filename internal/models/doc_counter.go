package models

import "time"

// DocCounter: named document-number counter, one row per document kind.
// Incremented only inside a transaction (see internal/docnum).
type DocCounter struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:30;uniqueIndex;not null"`
	Value     int64  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
