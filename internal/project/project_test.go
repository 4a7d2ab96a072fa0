package project

import (
	"testing"
	"time"

	"github.com/opticnet/fiberplan/internal/calendar"
	"github.com/opticnet/fiberplan/internal/config"
	"github.com/opticnet/fiberplan/internal/db"
	"github.com/opticnet/fiberplan/internal/deadline"
	"github.com/opticnet/fiberplan/internal/models"
	"github.com/opticnet/fiberplan/internal/phase"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, *deadline.Engine) {
	t.Helper()
	gdb, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	loc, err := time.LoadLocation("Africa/Johannesburg")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return gdb, deadline.New(calendar.SouthAfrica(loc))
}

func anchorDate(eng *deadline.Engine) time.Time {
	return time.Date(2024, time.June, 3, 0, 0, 0, 0, eng.Calendar().Location()) // a Monday
}

func mustCreate(t *testing.T, gdb *gorm.DB, eng *deadline.Engine) *models.Project {
	t.Helper()
	p, err := Create(gdb, eng, config.DefaultDurations, CreateOpts{
		Name:       "Maple Ridge rollout",
		SiteCode:   "MR-01",
		AnchorDate: anchorDate(eng),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return p
}

func phaseByName(t *testing.T, p *models.Project, name phase.Name) *models.ProjectPhase {
	t.Helper()
	for i := range p.Phases {
		if p.Phases[i].Name == string(name) {
			return &p.Phases[i]
		}
	}
	t.Fatalf("phase %s not found on project %s", name, p.ID)
	return nil
}

func TestCreate(t *testing.T) {
	gdb, eng := setup(t)
	p := mustCreate(t, gdb, eng)

	if len(p.Phases) != 12 {
		t.Fatalf("len(Phases) = %d, want 12", len(p.Phases))
	}

	got, err := Get(gdb, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	planning := phaseByName(t, got, phase.Planning)
	if planning.Deadline == nil {
		t.Fatal("planning deadline is nil")
	}
	want := eng.Calendar().AddBusinessDays(anchorDate(eng), 10)
	if !planning.Deadline.Equal(want) {
		t.Errorf("planning deadline = %s, want %s",
			planning.Deadline.Format("2006-01-02"), want.Format("2006-01-02"))
	}

	if wl := phaseByName(t, got, phase.Wayleave); wl.Deadline != nil {
		t.Errorf("wayleave deadline = %v, want nil (skipped)", wl.Deadline)
	}

	fqa := phaseByName(t, got, phase.FQA)
	build := phaseByName(t, got, phase.Build)
	if fqa.Deadline == nil || build.Deadline == nil || !fqa.Deadline.Equal(*build.Deadline) {
		t.Errorf("fqa deadline = %v, build deadline = %v; mirrors must be equal", fqa.Deadline, build.Deadline)
	}

	// Phases come back in chain order.
	if got.Phases[0].Name != string(phase.Planning) || got.Phases[11].Name != string(phase.COM) {
		t.Errorf("phase order = %s..%s, want planning..com", got.Phases[0].Name, got.Phases[11].Name)
	}
}

func TestCreate_Validation(t *testing.T) {
	gdb, eng := setup(t)

	if _, err := Create(gdb, eng, config.DefaultDurations, CreateOpts{AnchorDate: anchorDate(eng)}); err == nil {
		t.Error("missing name must be rejected")
	}
	if _, err := Create(gdb, eng, config.DefaultDurations, CreateOpts{Name: "x"}); err == nil {
		t.Error("missing anchor date must be rejected")
	}
	if _, err := Create(gdb, eng, config.DefaultDurations, CreateOpts{
		Name:       "x",
		AnchorDate: anchorDate(eng),
		Durations:  phase.Durations{phase.Build: -1},
	}); err == nil {
		t.Error("negative duration must be rejected")
	}
}

func TestSetAnchor_RecalculatesWholeChain(t *testing.T) {
	gdb, eng := setup(t)
	p := mustCreate(t, gdb, eng)

	newAnchor := time.Date(2024, time.July, 1, 0, 0, 0, 0, eng.Calendar().Location())
	got, err := SetAnchor(gdb, eng, p.ID, newAnchor)
	if err != nil {
		t.Fatalf("SetAnchor: %v", err)
	}
	if !got.AnchorDate.Equal(newAnchor) {
		t.Errorf("AnchorDate = %s, want %s", got.AnchorDate.Format("2006-01-02"), newAnchor.Format("2006-01-02"))
	}

	planning := phaseByName(t, got, phase.Planning)
	want := eng.Calendar().AddBusinessDays(newAnchor, 10)
	if planning.Deadline == nil || !planning.Deadline.Equal(want) {
		t.Errorf("planning deadline = %v, want %s", planning.Deadline, want.Format("2006-01-02"))
	}
}

func TestSetDurations_UpdatesChainAndAllowedDays(t *testing.T) {
	gdb, eng := setup(t)
	p := mustCreate(t, gdb, eng)

	got, err := SetDurations(gdb, eng, p.ID, phase.Durations{phase.Wayleave: 5})
	if err != nil {
		t.Fatalf("SetDurations: %v", err)
	}

	wl := phaseByName(t, got, phase.Wayleave)
	if wl.AllowedDays != 5 {
		t.Errorf("wayleave AllowedDays = %d, want 5", wl.AllowedDays)
	}
	if wl.Deadline == nil {
		t.Fatal("wayleave deadline is nil after becoming non-skipped")
	}
	funding := phaseByName(t, got, phase.Funding)
	want := eng.Calendar().AddBusinessDays(*funding.Deadline, 5)
	if !wl.Deadline.Equal(want) {
		t.Errorf("wayleave deadline = %s, want %s", wl.Deadline.Format("2006-01-02"), want.Format("2006-01-02"))
	}

	// And back to skipped.
	got, err = SetDurations(gdb, eng, p.ID, phase.Durations{phase.Wayleave: 0})
	if err != nil {
		t.Fatalf("SetDurations back to zero: %v", err)
	}
	if wl := phaseByName(t, got, phase.Wayleave); wl.Deadline != nil {
		t.Errorf("wayleave deadline = %v, want nil after duration reset to 0", wl.Deadline)
	}
}

func TestOverrideDeadline(t *testing.T) {
	gdb, eng := setup(t)
	p := mustCreate(t, gdb, eng)

	before, err := Get(gdb, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	planningBefore := *phaseByName(t, before, phase.Planning).Deadline

	pinned := time.Date(2024, time.September, 2, 0, 0, 0, 0, eng.Calendar().Location())
	got, err := OverrideDeadline(gdb, eng, p.ID, OverrideOpts{Phase: phase.Build, Deadline: pinned})
	if err != nil {
		t.Fatalf("OverrideDeadline: %v", err)
	}

	build := phaseByName(t, got, phase.Build)
	if build.Deadline == nil || !build.Deadline.Equal(pinned) {
		t.Errorf("build deadline = %v, want %s", build.Deadline, pinned.Format("2006-01-02"))
	}
	fqa := phaseByName(t, got, phase.FQA)
	if fqa.Deadline == nil || !fqa.Deadline.Equal(pinned) {
		t.Errorf("fqa deadline = %v, want mirror %s", fqa.Deadline, pinned.Format("2006-01-02"))
	}
	ecc := phaseByName(t, got, phase.ECC)
	wantECC := eng.Calendar().AddBusinessDays(pinned, 1)
	if ecc.Deadline == nil || !ecc.Deadline.Equal(wantECC) {
		t.Errorf("ecc deadline = %v, want %s", ecc.Deadline, wantECC.Format("2006-01-02"))
	}
	planning := phaseByName(t, got, phase.Planning)
	if planning.Deadline == nil || !planning.Deadline.Equal(planningBefore) {
		t.Errorf("planning deadline = %v, want unchanged %s", planning.Deadline, planningBefore.Format("2006-01-02"))
	}
}

func TestOverrideDeadline_WithSimultaneousAnchorChange(t *testing.T) {
	gdb, eng := setup(t)
	p := mustCreate(t, gdb, eng)

	pinned := time.Date(2024, time.September, 2, 0, 0, 0, 0, eng.Calendar().Location())
	newAnchor := time.Date(2024, time.July, 1, 0, 0, 0, 0, eng.Calendar().Location())
	got, err := OverrideDeadline(gdb, eng, p.ID, OverrideOpts{
		Phase:     phase.Build,
		Deadline:  pinned,
		NewAnchor: &newAnchor,
	})
	if err != nil {
		t.Fatalf("OverrideDeadline: %v", err)
	}

	// The anchor is persisted but the override wins for the deadline.
	if !got.AnchorDate.Equal(newAnchor) {
		t.Errorf("AnchorDate = %s, want persisted %s", got.AnchorDate.Format("2006-01-02"), newAnchor.Format("2006-01-02"))
	}
	build := phaseByName(t, got, phase.Build)
	if build.Deadline == nil || !build.Deadline.Equal(pinned) {
		t.Errorf("build deadline = %v, want pinned %s", build.Deadline, pinned.Format("2006-01-02"))
	}
}

func TestComplete(t *testing.T) {
	gdb, eng := setup(t)
	p := mustCreate(t, gdb, eng)

	if err := Complete(gdb, p.ID, phase.Planning, "thandi"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	got, err := Get(gdb, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	planning := phaseByName(t, got, phase.Planning)
	if !planning.IsComplete {
		t.Error("planning IsComplete = false, want true")
	}
	if planning.CompletedBy != "thandi" {
		t.Errorf("CompletedBy = %q, want thandi", planning.CompletedBy)
	}
	if planning.CompletedAt == nil {
		t.Error("CompletedAt is nil")
	}

	if err := Complete(gdb, p.ID, "trenching", "thandi"); err == nil {
		t.Error("unknown phase must be rejected")
	}
	if err := Complete(gdb, "fib-nope0", phase.Planning, "thandi"); err == nil {
		t.Error("unknown project must be rejected")
	}
}

func TestList(t *testing.T) {
	gdb, eng := setup(t)
	mustCreate(t, gdb, eng)
	mustCreate(t, gdb, eng)

	projects, err := List(gdb)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(projects) != 2 {
		t.Errorf("len(projects) = %d, want 2", len(projects))
	}
}
