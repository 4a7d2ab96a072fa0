package dashboard

import (
	"time"

	"github.com/opticnet/fiberplan/internal/deadline"
	"github.com/opticnet/fiberplan/internal/models"
	"github.com/opticnet/fiberplan/internal/notify"
	"github.com/opticnet/fiberplan/internal/project"
	"gorm.io/gorm"
)

// ProjectRow holds a project's rollup for the list view.
type ProjectRow struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SiteCode   string    `json:"site_code"`
	AnchorDate time.Time `json:"anchor_date"`
	Complete   int       `json:"phases_complete"`
	Total      int       `json:"phases_total"`
	Overdue    int       `json:"phases_overdue"`
}

// PhaseRow holds one phase's status for the detail view.
type PhaseRow struct {
	Name        string        `json:"name"`
	AllowedDays int           `json:"allowed_days"`
	Deadline    *time.Time    `json:"deadline"`
	Skipped     bool          `json:"skipped"`
	IsComplete  bool          `json:"is_complete"`
	CompletedBy string        `json:"completed_by,omitempty"`
	DaysLeft    *int          `json:"days_left,omitempty"`
	Status      notify.Status `json:"status,omitempty"`
}

// ProjectDetailView is the detail endpoint payload.
type ProjectDetailView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	SiteCode   string     `json:"site_code"`
	AnchorDate time.Time  `json:"anchor_date"`
	Phases     []PhaseRow `json:"phases"`
}

// ProjectSummary returns rollup rows for all projects.
func ProjectSummary(db *gorm.DB, eng *deadline.Engine) ([]ProjectRow, error) {
	var projects []models.Project
	if err := db.Preload("Phases").Order("created_at ASC").Find(&projects).Error; err != nil {
		return nil, err
	}

	rows := make([]ProjectRow, len(projects))
	for i, p := range projects {
		row := ProjectRow{
			ID:         p.ID,
			Name:       p.Name,
			SiteCode:   p.SiteCode,
			AnchorDate: p.AnchorDate,
			Total:      len(p.Phases),
		}
		for _, ph := range p.Phases {
			if ph.IsComplete {
				row.Complete++
				continue
			}
			if ph.Deadline != nil && eng.DaysUntilDeadline(*ph.Deadline) < 0 {
				row.Overdue++
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// ProjectDetail returns a project with per-phase urgency, phases in chain
// order.
func ProjectDetail(db *gorm.DB, eng *deadline.Engine, id string) (*ProjectDetailView, error) {
	p, err := project.Get(db, id)
	if err != nil {
		return nil, err
	}

	view := &ProjectDetailView{
		ID:         p.ID,
		Name:       p.Name,
		SiteCode:   p.SiteCode,
		AnchorDate: p.AnchorDate,
	}
	for _, ph := range p.Phases {
		row := PhaseRow{
			Name:        ph.Name,
			AllowedDays: ph.AllowedDays,
			Deadline:    ph.Deadline,
			Skipped:     ph.Deadline == nil,
			IsComplete:  ph.IsComplete,
			CompletedBy: ph.CompletedBy,
		}
		if ph.Deadline != nil && !ph.IsComplete {
			days := eng.DaysUntilDeadline(*ph.Deadline)
			row.DaysLeft = &days
			row.Status = notify.Classify(days)
		}
		view.Phases = append(view.Phases, row)
	}
	return view, nil
}
