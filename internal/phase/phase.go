// Package phase defines the fixed milestone sequence for fiber projects.
package phase

import "fmt"

// Name identifies one milestone phase.
type Name string

// The twelve phases, in chain order.
const (
	Planning     Name = "planning"
	Funding      Name = "funding"
	Wayleave     Name = "wayleave"
	Materials    Name = "materials"
	Announcement Name = "announcement"
	Kickoff      Name = "kickoff"
	Build        Name = "build"
	FQA          Name = "fqa"
	ECC          Name = "ecc"
	Integration  Name = "integration"
	RFA          Name = "rfa"
	COM          Name = "com"
)

// Sequence is the global phase order. Deadlines chain through this order
// regardless of how phases are stored or presented.
var Sequence = []Name{
	Planning,
	Funding,
	Wayleave,
	Materials,
	Announcement,
	Kickoff,
	Build,
	FQA,
	ECC,
	Integration,
	RFA,
	COM,
}

// Mirrors maps a mirror phase to the phase whose deadline it always equals.
// Mirror phases carry no duration of their own.
var Mirrors = map[Name]Name{
	FQA: Build,
	COM: RFA,
}

// Skippable is the one phase that may be excluded from the chain by setting
// its duration to zero. It stays in the phase set but gets no deadline.
const Skippable = Wayleave

// index maps each phase name to its position in Sequence.
var index = func() map[Name]int {
	m := make(map[Name]int, len(Sequence))
	for i, n := range Sequence {
		m[n] = i
	}
	return m
}()

// Known reports whether name is one of the twelve phases.
func Known(name Name) bool {
	_, ok := index[name]
	return ok
}

// Index returns the position of name in Sequence, or -1 if unknown.
func Index(name Name) int {
	i, ok := index[name]
	if !ok {
		return -1
	}
	return i
}

// IsMirror reports whether name is a mirror phase.
func IsMirror(name Name) bool {
	_, ok := Mirrors[name]
	return ok
}

// MirrorPartner returns the other half of name's mirror pair: the source if
// name is a mirror, the mirror if name is a source, or "" if name is in no
// pair.
func MirrorPartner(name Name) Name {
	if src, ok := Mirrors[name]; ok {
		return src
	}
	for mirror, src := range Mirrors {
		if src == name {
			return mirror
		}
	}
	return ""
}

// Durations maps each phase to its budget in business days.
type Durations map[Name]int

// Validate checks that every key is a known phase, no value is negative, and
// mirror phases carry zero duration.
func (d Durations) Validate() error {
	for name, days := range d {
		if !Known(name) {
			return fmt.Errorf("phase: unknown phase %q", name)
		}
		if days < 0 {
			return fmt.Errorf("phase: negative duration %d for %q", days, name)
		}
		if IsMirror(name) && days != 0 {
			return fmt.Errorf("phase: mirror phase %q must have zero duration, got %d", name, days)
		}
	}
	return nil
}

// Merge returns a copy of d with the entries of overrides applied on top.
func (d Durations) Merge(overrides Durations) Durations {
	out := make(Durations, len(Sequence))
	for name, days := range d {
		out[name] = days
	}
	for name, days := range overrides {
		out[name] = days
	}
	return out
}
