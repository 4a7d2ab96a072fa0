// Package notify classifies deadline urgency and posts deadline digests.
//
// Classification thresholds are a consumer choice, not an engine concern; the
// engine only reports a business-day count. One legacy call site in the old
// system used <= 2 for the warning band — this package standardizes on <= 3.
package notify

import (
	"fmt"
	"log"
	"strings"

	"github.com/opticnet/fiberplan/internal/deadline"
	"github.com/opticnet/fiberplan/internal/models"
	"github.com/opticnet/fiberplan/internal/phase"
	"gorm.io/gorm"
)

// Status labels a phase's deadline urgency.
type Status string

const (
	StatusOverdue Status = "overdue"
	StatusUrgent  Status = "urgent"
	StatusWarning Status = "warning"
	StatusOnTrack Status = "on_track"
)

// Classify maps a business-days-until-deadline count to a Status.
func Classify(days int) Status {
	switch {
	case days < 0:
		return StatusOverdue
	case days <= 1:
		return StatusUrgent
	case days <= 3:
		return StatusWarning
	default:
		return StatusOnTrack
	}
}

// Notifier delivers a deadline digest. Implementations are best-effort; the
// sweep logs failures and moves on.
type Notifier interface {
	Post(text string) error
}

// Alert is one phase needing attention.
type Alert struct {
	ProjectID   string
	ProjectName string
	Phase       phase.Name
	DaysLeft    int
	Status      Status
}

// Sweep scans all incomplete phases with deadlines, classifies their urgency,
// and posts a digest of everything at warning level or worse. Returns the
// alerts found so callers can render them elsewhere too.
func Sweep(db *gorm.DB, eng *deadline.Engine, n Notifier) ([]Alert, error) {
	type row struct {
		models.ProjectPhase
		ProjectName string
	}
	var rows []row
	err := db.Model(&models.ProjectPhase{}).
		Select("project_phases.*, projects.name AS project_name").
		Joins("JOIN projects ON projects.id = project_phases.project_id").
		Where("project_phases.is_complete = ? AND project_phases.deadline IS NOT NULL", false).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("notify: load phases: %w", err)
	}

	var alerts []Alert
	for _, r := range rows {
		days := eng.DaysUntilDeadline(*r.Deadline)
		status := Classify(days)
		if status == StatusOnTrack {
			continue
		}
		alerts = append(alerts, Alert{
			ProjectID:   r.ProjectID,
			ProjectName: r.ProjectName,
			Phase:       phase.Name(r.Name),
			DaysLeft:    days,
			Status:      status,
		})
	}

	if n != nil && len(alerts) > 0 {
		if err := n.Post(FormatDigest(alerts)); err != nil {
			log.Printf("notify: post digest failed: %v", err)
		}
	}
	return alerts, nil
}

// FormatDigest renders alerts as a plain-text digest, one line per phase.
func FormatDigest(alerts []Alert) string {
	var b strings.Builder
	b.WriteString("Deadline digest:\n")
	for _, a := range alerts {
		switch {
		case a.DaysLeft < 0:
			fmt.Fprintf(&b, "• [%s] %s / %s — overdue by %d business day(s)\n",
				a.Status, a.ProjectName, a.Phase, -a.DaysLeft)
		case a.DaysLeft == 0:
			fmt.Fprintf(&b, "• [%s] %s / %s — due today\n", a.Status, a.ProjectName, a.Phase)
		default:
			fmt.Fprintf(&b, "• [%s] %s / %s — due in %d business day(s)\n",
				a.Status, a.ProjectName, a.Phase, a.DaysLeft)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
