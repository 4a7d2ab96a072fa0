package models

import "time"

// ProjectPhase is one milestone phase of a project. A nil Deadline means the
// phase is excluded from the deadline chain (the skippable wayleave phase
// with zero allowed days).
type ProjectPhase struct {
	ID          uint       `gorm:"primaryKey;autoIncrement"`
	ProjectID   string     `gorm:"size:32;index;not null"`
	Name        string     `gorm:"size:16;index;not null"`
	AllowedDays int        `gorm:"default:0"`
	Deadline    *time.Time
	IsComplete  bool       `gorm:"default:false"`
	CompletedBy string     `gorm:"size:64"`
	CompletedAt *time.Time

	Project Project `gorm:"foreignKey:ProjectID"`
}
