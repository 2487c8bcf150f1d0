// Package session owns the per-job state object and the operations the
// serving layer exposes over it. State is always passed explicitly; no
// package-level mutable state exists.
package session

import (
	"github.com/fieldkit/jobwalk/internal/dispo"
	"github.com/fieldkit/jobwalk/internal/flightplan"
	"github.com/fieldkit/jobwalk/internal/geometry"
)

// Job holds the handoff metadata for a visit.
type Job struct {
	Address   string `json:"address"`
	Homeowner string `json:"homeowner"`
	Date      string `json:"date"`
	Notes     string `json:"notes"`
}

// Rect describes the rectangle perimeter mode: length, width, and wall
// height, all in feet.
type Rect struct {
	L float64 `json:"L"`
	W float64 `json:"W"`
	H float64 `json:"H"`
}

// Perimeter is the recorded footprint description. Points are the last
// computed polygon; the measurement outputs are always derived fresh.
type Perimeter struct {
	Mode     string             `json:"mode"` // "rect" | "walk"
	Rect     Rect               `json:"rect"`
	Segments []geometry.Segment `json:"segments"`
	Points   []geometry.Point   `json:"points"`
}

// Recalculate derives the polygon points and measurement outputs for the
// current mode, storing the points on the perimeter.
func (p *Perimeter) Recalculate() geometry.Outputs {
	var pts []geometry.Point
	var out geometry.Outputs
	if p.Mode == "walk" {
		pts, out = geometry.Walk(p.Segments)
	} else {
		pts, out = geometry.Rectangle(p.Rect.L, p.Rect.W)
	}
	p.Points = pts
	return out
}

// Measures maps the perimeter outputs to the quantity back-fill inputs.
// Wall area is perimeter x wall height when both are positive.
func (p *Perimeter) Measures() flightplan.Measures {
	out := p.Recalculate()
	m := flightplan.Measures{Perimeter: out.Perimeter, Area: out.Area}
	if out.Perimeter > 0 && p.Rect.H > 0 {
		m.WallArea = out.Perimeter * p.Rect.H
	}
	return m
}

// Disposition is the visit outcome block. Notes and Plan hold generated
// template text until the technician edits them.
type Disposition struct {
	Status         dispo.Status `json:"status"`
	FollowupDate   string       `json:"followupDate"`
	FollowupMethod string       `json:"followupMethod"`
	Notes          string       `json:"notes"`
	Plan           string       `json:"plan"`
}

// State is the complete per-job session state. Tags, suggested solution
// ids, and solution notes are engine outputs persisted for display; the
// answer set is the ground truth they derive from.
type State struct {
	Job                  Job                         `json:"job"`
	Answers              map[string]string           `json:"answers"`
	Tags                 []string                    `json:"tags"`
	SuggestedSolutionIDs []string                    `json:"suggestedSolutionIds"`
	SolutionNotes        map[string][]string         `json:"solutionNotes"`
	FlightPlans          map[string]*flightplan.Plan `json:"flightPlans"`
	PromptsDone          map[string]bool             `json:"promptsDone"`
	Perimeter            Perimeter                   `json:"perimeter"`
	Dispo                Disposition                 `json:"dispo"`
}

// NewState returns a fresh session state with field defaults: rect
// perimeter mode with a four-segment walk template, call as the contact
// method, unknown disposition.
func NewState() *State {
	return &State{
		Answers:       make(map[string]string),
		SolutionNotes: make(map[string][]string),
		FlightPlans:   make(map[string]*flightplan.Plan),
		PromptsDone:   make(map[string]bool),
		Perimeter: Perimeter{
			Mode: "rect",
			Segments: []geometry.Segment{
				{Len: 10, TurnDeg: 90},
				{Len: 10, TurnDeg: 90},
				{Len: 10, TurnDeg: 90},
				{Len: 10, TurnDeg: 90},
			},
		},
		Dispo: Disposition{
			Status:         dispo.StatusUnknown,
			FollowupMethod: "call",
		},
	}
}

// Normalize repairs sparse or legacy state after load: nil maps become
// empty, the perimeter mode and disposition fall back to defaults, and
// unknown status strings collapse to "unknown". Flight plan shape
// migration happens in flightplan.Plan's unmarshalling.
func (s *State) Normalize() {
	if s.Answers == nil {
		s.Answers = make(map[string]string)
	}
	if s.SolutionNotes == nil {
		s.SolutionNotes = make(map[string][]string)
	}
	if s.FlightPlans == nil {
		s.FlightPlans = make(map[string]*flightplan.Plan)
	}
	if s.PromptsDone == nil {
		s.PromptsDone = make(map[string]bool)
	}
	if s.Perimeter.Mode != "walk" {
		s.Perimeter.Mode = "rect"
	}
	if s.Dispo.FollowupMethod == "" {
		s.Dispo.FollowupMethod = "call"
	}
	s.Dispo.Status = dispo.ParseStatus(string(s.Dispo.Status))
}

// FieldPrompt is one item of the fixed on-site data-capture checklist.
type FieldPrompt struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// FieldPrompts is the on-site capture checklist, in walk order.
var FieldPrompts = []FieldPrompt{
	{ID: "pep", Text: "PEP complete + safe access documented"},
	{ID: "access_photo", Text: "Photo: access/entry path (wide angle)"},
	{ID: "baseline_outside", Text: "Photo: hygrometer reading outside entrance (control)"},
	{ID: "wide_angle_all", Text: "Photos: wide-angle tour (counterclockwise, whole space)"},
	{ID: "baseline_inside", Text: "Photo: hygrometer reading inside space"},
	{ID: "moisture_bottom", Text: "Moisture meter reading at base of first corner (photo)"},
	{ID: "moisture_mid", Text: "Moisture meter reading mid-wall same spot (photo)"},
	{ID: "moisture_top", Text: "Moisture meter reading top of wall same vertical plane (photo)"},
	{ID: "sketch_live", Text: "All data + obstructions recorded on field-sketch as you go"},
	{ID: "discharge_route", Text: "Discharge path planned: topography + obstructions considered"},
}
