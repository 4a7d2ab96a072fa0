// Package deadline recomputes phase deadlines through the fixed milestone
// chain. The engine is pure: given the same anchor, duration table and
// current deadlines it always produces the same result, and it never touches
// storage. Callers apply the returned map transactionally or not at all.
package deadline

import (
	"fmt"
	"time"

	"github.com/opticnet/fiberplan/internal/calendar"
	"github.com/opticnet/fiberplan/internal/phase"
)

// Engine chains business-day arithmetic over the phase sequence.
type Engine struct {
	cal *calendar.Calendar
}

// New returns an Engine computing against cal.
func New(cal *calendar.Calendar) *Engine {
	return &Engine{cal: cal}
}

// Calendar returns the engine's calendar.
func (e *Engine) Calendar() *calendar.Calendar {
	return e.cal
}

// ComputeInitial derives every phase deadline from the anchor date at project
// creation. Skipped phases are absent from the result.
func (e *Engine) ComputeInitial(anchor time.Time, durations phase.Durations) (map[phase.Name]time.Time, error) {
	return e.fullChain(anchor, durations)
}

// RecalculateFromAnchorChange rebuilds the whole chain from a new anchor.
func (e *Engine) RecalculateFromAnchorChange(newAnchor time.Time, durations phase.Durations) (map[phase.Name]time.Time, error) {
	return e.fullChain(newAnchor, durations)
}

// RecalculateFromDurationChange rebuilds the whole chain after one or more
// durations changed. A duration change anywhere invalidates everything
// downstream, and recomputing the full chain is always correct.
func (e *Engine) RecalculateFromDurationChange(durations phase.Durations, anchor time.Time) (map[phase.Name]time.Time, error) {
	return e.fullChain(anchor, durations)
}

// RecalculateFromDeadlineOverride pins changed to newDeadline and recomputes
// every phase strictly after it in sequence, chaining from the new value.
// Phases before changed keep their current deadlines. If changed is half of a
// mirror pair, its partner is pinned to the same value.
func (e *Engine) RecalculateFromDeadlineOverride(changed phase.Name, newDeadline time.Time, durations phase.Durations, current map[phase.Name]time.Time) (map[phase.Name]time.Time, error) {
	if !phase.Known(changed) {
		return nil, fmt.Errorf("deadline: unknown phase %q", changed)
	}
	if err := durations.Validate(); err != nil {
		return nil, err
	}

	pinned := e.cal.StartOfDay(newDeadline)
	result := make(map[phase.Name]time.Time, len(phase.Sequence))
	for name, d := range current {
		if !phase.Known(name) {
			return nil, fmt.Errorf("deadline: unknown phase %q in current deadlines", name)
		}
		result[name] = e.cal.StartOfDay(d)
	}
	result[changed] = pinned
	if partner := phase.MirrorPartner(changed); partner != "" {
		result[partner] = pinned
	}

	cursor := pinned
	for _, name := range phase.Sequence[phase.Index(changed)+1:] {
		switch {
		case phase.IsMirror(name):
			src, ok := result[phase.Mirrors[name]]
			if !ok {
				return nil, fmt.Errorf("deadline: mirror source %q has no deadline for %q", phase.Mirrors[name], name)
			}
			result[name] = src
		case name == phase.Skippable && durations[name] == 0:
			delete(result, name)
		default:
			cursor = e.cal.AddBusinessDays(cursor, durations[name])
			result[name] = cursor
		}
	}
	return result, nil
}

// DaysUntilDeadline returns business days from today to deadline: positive
// means days remaining, negative means overdue, zero means due today.
func (e *Engine) DaysUntilDeadline(deadline time.Time) int {
	return e.cal.BusinessDaysUntil(deadline)
}

// fullChain walks the whole phase sequence forward from anchor. The cursor
// starts at the anchor; mirrors copy their source without advancing it, and a
// zero-duration skippable phase contributes nothing.
func (e *Engine) fullChain(anchor time.Time, durations phase.Durations) (map[phase.Name]time.Time, error) {
	if err := durations.Validate(); err != nil {
		return nil, err
	}

	result := make(map[phase.Name]time.Time, len(phase.Sequence))
	cursor := e.cal.StartOfDay(anchor)
	for _, name := range phase.Sequence {
		switch {
		case phase.IsMirror(name):
			src, ok := result[phase.Mirrors[name]]
			if !ok {
				// Mirrors always follow their source in the fixed order;
				// hitting this means the phase configuration is corrupted.
				return nil, fmt.Errorf("deadline: mirror source %q not yet computed for %q", phase.Mirrors[name], name)
			}
			result[name] = src
		case name == phase.Skippable && durations[name] == 0:
			// Excluded from the chain: no deadline, cursor unchanged.
		default:
			cursor = e.cal.AddBusinessDays(cursor, durations[name])
			result[name] = cursor
		}
	}
	return result, nil
}
