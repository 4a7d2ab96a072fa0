package models

import "time"

// Project is a fiber-installation project tracked through the milestone chain.
type Project struct {
	ID         string    `gorm:"primaryKey;size:32"`
	Name       string    `gorm:"not null"`
	SiteCode   string    `gorm:"size:64;index"`
	AnchorDate time.Time `gorm:"not null"` // site-survey date, start of the deadline chain
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Phases []ProjectPhase `gorm:"foreignKey:ProjectID"`
}
