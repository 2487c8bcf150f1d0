// Package flightplan manages the per-solution materials list: seeding
// from catalog templates, idempotent line add/remove, measured-quantity
// back-fill, and add-on defaulting.
package flightplan

import (
	"encoding/json"
	"strings"

	"github.com/fieldkit/jobwalk/internal/catalog"
)

// Plan is the itemized materials/labor list attached to one solution for
// a job, plus free-text notes.
type Plan struct {
	Lines []catalog.LineItem `json:"lines"`
	Notes string             `json:"notes"`
}

// UnmarshalJSON accepts both the current object shape and the legacy bare
// array shape, normalizing the latter to {lines, notes:""} once at load
// time so downstream code never branches on shape.
func (p *Plan) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var lines []catalog.LineItem
		if err := json.Unmarshal(data, &lines); err != nil {
			return err
		}
		p.Lines = lines
		p.Notes = ""
		return nil
	}

	type planAlias Plan
	var a planAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = Plan(a)
	return nil
}

// Clone returns a deep copy. Template lines must never alias catalog
// memory: edits to one job's plan cannot leak into the catalog or into
// another plan.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return &Plan{}
	}
	cp := &Plan{Notes: p.Notes}
	if p.Lines != nil {
		cp.Lines = make([]catalog.LineItem, len(p.Lines))
		copy(cp.Lines, p.Lines)
	}
	return cp
}

// Total returns the plan's extended cost (sum of qty x unit cost).
func (p *Plan) Total() float64 {
	var total float64
	for _, l := range p.Lines {
		total += l.Qty * l.UnitCost
	}
	return total
}

// EnsurePlan creates the plan for a solution the first time the solution
// is suggested, deep-copying the catalog default template. Idempotent: an
// existing plan is returned untouched, so manual edits survive even when
// the solution later drops out of the suggested list.
func EnsurePlan(plans map[string]*Plan, sol *catalog.Solution) *Plan {
	if sol == nil {
		return nil
	}
	if existing, ok := plans[sol.ID]; ok && existing != nil {
		return existing
	}
	seed := &Plan{Lines: sol.Defaults.FlightPlan}
	plan := seed.Clone()
	plans[sol.ID] = plan
	return plan
}

// AddLineIfMissing appends a one-each zero-cost line unless a line with
// the same item label (case-insensitive) already exists.
func AddLineIfMissing(plan *Plan, item string) {
	if plan == nil || item == "" {
		return
	}
	for _, l := range plan.Lines {
		if strings.EqualFold(l.Item, item) {
			return
		}
	}
	plan.Lines = append(plan.Lines, catalog.LineItem{Item: item, Qty: 1, Unit: "EA"})
}

// RemoveLineByItem removes every line whose item label matches
// case-insensitively.
func RemoveLineByItem(plan *Plan, item string) {
	if plan == nil {
		return
	}
	kept := plan.Lines[:0]
	for _, l := range plan.Lines {
		if !strings.EqualFold(l.Item, item) {
			kept = append(kept, l)
		}
	}
	plan.Lines = kept
}
