// Package project provides project lifecycle operations. Every mutation runs
// the deadline engine inside a single transaction, so concurrent updates to
// one project always compute from a consistent phase snapshot.
package project

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/opticnet/fiberplan/internal/deadline"
	"github.com/opticnet/fiberplan/internal/models"
	"github.com/opticnet/fiberplan/internal/phase"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for creating a new project.
type CreateOpts struct {
	Name       string
	SiteCode   string
	AnchorDate time.Time       // site-survey date
	Durations  phase.Durations // per-project overrides over the defaults
}

// OverrideOpts holds parameters for a targeted deadline override.
type OverrideOpts struct {
	Phase    phase.Name
	Deadline time.Time
	// NewAnchor optionally changes the anchor in the same operation. The
	// override wins for the recalculation starting point; the anchor is
	// persisted but does not displace the explicitly set deadline.
	NewAnchor *time.Time
}

// GenerateID creates a unique project ID in fib-xxxxx format (5-char hex).
func GenerateID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("project: generate ID: %w", err)
	}
	return "fib-" + hex.EncodeToString(b)[:5], nil
}

// Create creates a project and its twelve phase rows, with deadlines derived
// from the anchor date.
func Create(db *gorm.DB, eng *deadline.Engine, defaults phase.Durations, opts CreateOpts) (*models.Project, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("project: name is required")
	}
	if opts.AnchorDate.IsZero() {
		return nil, fmt.Errorf("project: anchor date is required")
	}

	durations := defaults.Merge(opts.Durations)
	deadlines, err := eng.ComputeInitial(opts.AnchorDate, durations)
	if err != nil {
		return nil, err
	}

	id, err := generateUniqueID(db)
	if err != nil {
		return nil, err
	}

	p := models.Project{
		ID:         id,
		Name:       opts.Name,
		SiteCode:   opts.SiteCode,
		AnchorDate: eng.Calendar().StartOfDay(opts.AnchorDate),
	}
	for _, name := range phase.Sequence {
		row := models.ProjectPhase{
			ProjectID:   id,
			Name:        string(name),
			AllowedDays: durations[name],
		}
		if d, ok := deadlines[name]; ok {
			dd := d
			row.Deadline = &dd
		}
		p.Phases = append(p.Phases, row)
	}

	if err := db.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("project: create: %w", err)
	}
	return &p, nil
}

// Get retrieves a project with its phases in chain order.
func Get(db *gorm.DB, id string) (*models.Project, error) {
	var p models.Project
	if err := db.Preload("Phases").First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project: not found: %s", id)
		}
		return nil, fmt.Errorf("project: get %s: %w", id, err)
	}
	sortPhases(p.Phases)
	return &p, nil
}

// List returns all projects ordered by creation time.
func List(db *gorm.DB) ([]models.Project, error) {
	var projects []models.Project
	if err := db.Order("created_at ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("project: list: %w", err)
	}
	return projects, nil
}

// SetAnchor changes the site-survey date and recalculates every deadline.
func SetAnchor(db *gorm.DB, eng *deadline.Engine, id string, newAnchor time.Time) (*models.Project, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		p, phases, err := loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		durations := durationsOf(phases)
		deadlines, err := eng.RecalculateFromAnchorChange(newAnchor, durations)
		if err != nil {
			return err
		}
		p.AnchorDate = eng.Calendar().StartOfDay(newAnchor)
		if err := tx.Model(p).Update("anchor_date", p.AnchorDate).Error; err != nil {
			return fmt.Errorf("project: update anchor for %s: %w", id, err)
		}
		return saveDeadlines(tx, phases, deadlines, nil)
	})
	if err != nil {
		return nil, err
	}
	return Get(db, id)
}

// SetDurations updates one or more phase durations and recalculates every
// deadline from the anchor forward.
func SetDurations(db *gorm.DB, eng *deadline.Engine, id string, updates phase.Durations) (*models.Project, error) {
	if err := updates.Validate(); err != nil {
		return nil, err
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		p, phases, err := loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		durations := durationsOf(phases).Merge(updates)
		deadlines, err := eng.RecalculateFromDurationChange(durations, p.AnchorDate)
		if err != nil {
			return err
		}
		return saveDeadlines(tx, phases, deadlines, durations)
	})
	if err != nil {
		return nil, err
	}
	return Get(db, id)
}

// OverrideDeadline pins one phase's deadline and recalculates the phases
// after it. Requires elevated privileges; enforcing that is the caller's
// concern.
func OverrideDeadline(db *gorm.DB, eng *deadline.Engine, id string, opts OverrideOpts) (*models.Project, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		p, phases, err := loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		durations := durationsOf(phases)
		current := make(map[phase.Name]time.Time, len(phases))
		for _, ph := range phases {
			if ph.Deadline != nil {
				current[phase.Name(ph.Name)] = *ph.Deadline
			}
		}
		deadlines, err := eng.RecalculateFromDeadlineOverride(opts.Phase, opts.Deadline, durations, current)
		if err != nil {
			return err
		}
		if opts.NewAnchor != nil {
			p.AnchorDate = eng.Calendar().StartOfDay(*opts.NewAnchor)
			if err := tx.Model(p).Update("anchor_date", p.AnchorDate).Error; err != nil {
				return fmt.Errorf("project: update anchor for %s: %w", id, err)
			}
		}
		return saveDeadlines(tx, phases, deadlines, nil)
	})
	if err != nil {
		return nil, err
	}
	return Get(db, id)
}

// Complete marks a phase complete. Completion metadata never feeds back into
// deadline arithmetic.
func Complete(db *gorm.DB, id string, name phase.Name, who string) error {
	if !phase.Known(name) {
		return fmt.Errorf("project: unknown phase %q", name)
	}
	now := time.Now()
	result := db.Model(&models.ProjectPhase{}).
		Where("project_id = ? AND name = ?", id, string(name)).
		Updates(map[string]interface{}{
			"is_complete":  true,
			"completed_by": who,
			"completed_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("project: complete %s/%s: %w", id, name, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("project: phase not found: %s/%s", id, name)
	}
	return nil
}

// loadForUpdate fetches a project and its phases inside the caller's
// transaction.
func loadForUpdate(tx *gorm.DB, id string) (*models.Project, []models.ProjectPhase, error) {
	var p models.Project
	if err := tx.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("project: not found: %s", id)
		}
		return nil, nil, fmt.Errorf("project: get %s: %w", id, err)
	}
	var phases []models.ProjectPhase
	if err := tx.Where("project_id = ?", id).Find(&phases).Error; err != nil {
		return nil, nil, fmt.Errorf("project: load phases for %s: %w", id, err)
	}
	return &p, phases, nil
}

// durationsOf rebuilds the duration table from stored phase rows.
func durationsOf(phases []models.ProjectPhase) phase.Durations {
	d := make(phase.Durations, len(phases))
	for _, ph := range phases {
		d[phase.Name(ph.Name)] = ph.AllowedDays
	}
	return d
}

// saveDeadlines writes the recalculated deadlines (and, when durations is
// non-nil, the new allowed-days values) back to the phase rows. A phase
// absent from deadlines is stored with a nil deadline.
func saveDeadlines(tx *gorm.DB, phases []models.ProjectPhase, deadlines map[phase.Name]time.Time, durations phase.Durations) error {
	for i := range phases {
		name := phase.Name(phases[i].Name)
		updates := map[string]interface{}{}
		if d, ok := deadlines[name]; ok {
			updates["deadline"] = d
		} else {
			updates["deadline"] = nil
		}
		if durations != nil {
			updates["allowed_days"] = durations[name]
		}
		if err := tx.Model(&phases[i]).Updates(updates).Error; err != nil {
			return fmt.Errorf("project: save deadline for %s: %w", name, err)
		}
	}
	return nil
}

// sortPhases orders phase rows by the global chain order.
func sortPhases(phases []models.ProjectPhase) {
	sort.Slice(phases, func(i, j int) bool {
		return phase.Index(phase.Name(phases[i].Name)) < phase.Index(phase.Name(phases[j].Name))
	})
}

// generateUniqueID retries GenerateID until the ID is unused.
func generateUniqueID(db *gorm.DB) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		id, err := GenerateID()
		if err != nil {
			return "", err
		}
		var count int64
		if err := db.Model(&models.Project{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", fmt.Errorf("project: check ID %s: %w", id, err)
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("project: could not generate a unique ID")
}
