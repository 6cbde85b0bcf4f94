package models

import "time"

// CodeMaster: shared code table for spec and color choices.
type CodeMaster struct {
	ID        uint     `gorm:"primaryKey"`
	Kind      CodeKind `gorm:"size:10;index:idx_code_kind_no,unique;not null"`
	Code      int      `gorm:"index:idx_code_kind_no,unique;not null"`
	Name      string   `gorm:"size:50;not null"`
	Disabled  bool     `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CodeKind string

const (
	CodeKindSpec  CodeKind = "GSPEC"
	CodeKindColor CodeKind = "GCOLOR"
)
