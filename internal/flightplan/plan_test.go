package flightplan

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/fieldkit/jobwalk/internal/catalog"
)

func drainageSolution() *catalog.Solution {
	return &catalog.Solution{
		ID:   "drainage",
		Name: "Interior Drainage",
		Defaults: catalog.SolutionDefaults{
			FlightPlan: []catalog.LineItem{
				{Item: "Perimeter drain channel", Qty: 0, Unit: "LF", UnitCost: 18},
				{Item: "Drain inspection ports", Qty: 2, Unit: "EA", UnitCost: 35},
			},
		},
	}
}

func TestEnsurePlan_SeedsFromTemplate(t *testing.T) {
	plans := make(map[string]*Plan)
	sol := drainageSolution()

	plan := EnsurePlan(plans, sol)
	if plan == nil {
		t.Fatal("expected a plan")
	}
	if len(plan.Lines) != 2 {
		t.Fatalf("expected 2 seeded lines, got %d", len(plan.Lines))
	}

	// Seeded lines must be copies, not aliases of the template.
	plan.Lines[0].Qty = 99
	if sol.Defaults.FlightPlan[0].Qty != 0 {
		t.Error("editing a plan mutated the catalog template")
	}
}

func TestEnsurePlan_Idempotent(t *testing.T) {
	plans := make(map[string]*Plan)
	sol := drainageSolution()

	first := EnsurePlan(plans, sol)
	first.Lines[0].Qty = 120
	first.Notes = "custom scope note"

	second := EnsurePlan(plans, sol)
	if second != first {
		t.Fatal("EnsurePlan replaced an existing plan")
	}
	if second.Lines[0].Qty != 120 || second.Notes != "custom scope note" {
		t.Error("manual edits lost on re-ensure")
	}
}

func TestEnsurePlan_NilSolution(t *testing.T) {
	plans := make(map[string]*Plan)
	if got := EnsurePlan(plans, nil); got != nil {
		t.Errorf("expected nil plan for nil solution, got %+v", got)
	}
	if len(plans) != 0 {
		t.Errorf("expected no plan stored, got %d", len(plans))
	}
}

func TestAddLineIfMissing(t *testing.T) {
	plan := &Plan{Lines: []catalog.LineItem{{Item: "Sump Basin", Qty: 1, Unit: "EA"}}}

	AddLineIfMissing(plan, "sump basin") // case-insensitive duplicate
	if len(plan.Lines) != 1 {
		t.Fatalf("duplicate added: %d lines", len(plan.Lines))
	}

	AddLineIfMissing(plan, "Battery backup pump")
	if len(plan.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(plan.Lines))
	}
	added := plan.Lines[1]
	if added.Qty != 1 || added.Unit != "EA" || added.UnitCost != 0 {
		t.Errorf("new line defaults wrong: %+v", added)
	}
}

func TestRemoveLineByItem(t *testing.T) {
	plan := &Plan{Lines: []catalog.LineItem{
		{Item: "Sump Basin"},
		{Item: "Discharge line"},
		{Item: "SUMP BASIN"},
	}}

	RemoveLineByItem(plan, "sump basin")

	if len(plan.Lines) != 1 || plan.Lines[0].Item != "Discharge line" {
		t.Errorf("lines after removal: %+v", plan.Lines)
	}
}

func TestPlanUnmarshal_LegacyArray(t *testing.T) {
	raw := `[{"item":"Vapor barrier 20 mil","qty":3,"unit":"SF","unitCost":2}]`

	var plan Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		t.Fatalf("unmarshal legacy shape: %v", err)
	}
	if len(plan.Lines) != 1 || plan.Lines[0].Item != "Vapor barrier 20 mil" {
		t.Errorf("lines = %+v", plan.Lines)
	}
	if plan.Notes != "" {
		t.Errorf("notes = %q, want empty", plan.Notes)
	}
}

func TestPlanUnmarshal_ObjectShape(t *testing.T) {
	raw := `{"lines":[{"item":"Wall liner panel","qty":640,"unit":"SF"}],"notes":"north wall only"}`

	var plan Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if plan.Notes != "north wall only" {
		t.Errorf("notes = %q", plan.Notes)
	}
	if len(plan.Lines) != 1 || plan.Lines[0].Qty != 640 {
		t.Errorf("lines = %+v", plan.Lines)
	}
}

func TestPlanRoundTrip(t *testing.T) {
	plan := &Plan{
		Lines: []catalog.LineItem{{Item: "Helical pier assembly", Qty: 4, Unit: "EA", UnitCost: 1650, ArcSiteObject: "helical_pier"}},
		Notes: "verify torque logs",
	}
	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Plan
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(*plan, back) {
		t.Errorf("round trip changed plan: %+v vs %+v", *plan, back)
	}
}

func TestPlanTotal(t *testing.T) {
	plan := &Plan{Lines: []catalog.LineItem{
		{Item: "a", Qty: 2, UnitCost: 10},
		{Item: "b", Qty: 3, UnitCost: 1.5},
	}}
	if got := plan.Total(); got != 24.5 {
		t.Errorf("Total() = %v, want 24.5", got)
	}
}
