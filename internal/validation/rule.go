// Package validation decides whether a scanned outbound label may ship from the
// dock door it was scanned at.
package validation

import (
	"strings"

	"wareeye/internal/model"
)

// MatchMode selects how a scan's area is recognised as a dock door.
type MatchMode string

const (
	// MatchPrefix treats any area starting with the configured prefix as a dock door.
	MatchPrefix MatchMode = "prefix"
	// MatchLookup attempts a check only when a dock door with exactly that name exists.
	MatchLookup MatchMode = "lookup"
)

// Verdict reasons reported alongside an invalid or non-transitioning verdict.
const (
	ReasonShipped         = "shipped"
	ReasonAlreadyShipped  = "already shipped"
	ReasonDockNotFound    = "dock door not found"
	ReasonDockInactive    = "dock door inactive"
	ReasonLabelNotFound   = "label not found"
	ReasonDestinationDiff = "destination mismatch"
)

// Verdict is the outcome of checking one label against one dock door.
type Verdict struct {
	Valid      bool
	Transition bool // label must move pending -> shipped
	Reason     string
}

// Rule is the dock-door validation rule.
type Rule struct {
	mode          MatchMode
	prefix        string
	requireActive bool
}

// NewRule creates a Rule. Unknown modes fall back to prefix matching.
func NewRule(mode MatchMode, prefix string, requireActive bool) *Rule {
	if mode != MatchLookup {
		mode = MatchPrefix
	}
	return &Rule{mode: mode, prefix: prefix, requireActive: requireActive}
}

// Mode returns the configured match mode.
func (r *Rule) Mode() MatchMode {
	return r.mode
}

// Applies reports whether area may name a dock door. In lookup mode the caller must
// still confirm the door exists before treating the scan as checked.
func (r *Rule) Applies(area string) bool {
	if area == "" {
		return false
	}
	if r.mode == MatchLookup {
		return true
	}
	return strings.HasPrefix(area, r.prefix)
}

// Evaluate computes the verdict for label scanned at dock. Either may be nil when
// the lookup found nothing.
func (r *Rule) Evaluate(dock *model.DockDoor, label *model.OLPNLabel) Verdict {
	switch {
	case dock == nil:
		return Verdict{Reason: ReasonDockNotFound}
	case r.requireActive && !dock.IsActive:
		return Verdict{Reason: ReasonDockInactive}
	case label == nil:
		return Verdict{Reason: ReasonLabelNotFound}
	case label.DestinationCodeID != dock.DestinationCodeID:
		return Verdict{Reason: ReasonDestinationDiff}
	case label.IsShipped():
		return Verdict{Valid: true, Reason: ReasonAlreadyShipped}
	default:
		return Verdict{Valid: true, Transition: true, Reason: ReasonShipped}
	}
}
