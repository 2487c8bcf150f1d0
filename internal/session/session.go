package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/fieldkit/jobwalk/internal/catalog"
	"github.com/fieldkit/jobwalk/internal/dispo"
	"github.com/fieldkit/jobwalk/internal/engine"
	"github.com/fieldkit/jobwalk/internal/flightplan"
)

// Recompute derives every downstream value from the current answer set:
// tags, rule notes, suggested solutions, and flight plan seeds. Notes
// accumulate across runs; empty disposition fields are filled from
// templates, edited ones are left alone.
func (s *State) Recompute(cat *catalog.Catalog, now time.Time) {
	tags := engine.DeriveTags(cat.Model.Questions, s.Answers)
	engine.ApplyRules(cat.Model.Rules, tags, s.SolutionNotes)
	s.Tags = tags
	s.SuggestedSolutionIDs = engine.FilterSolutions(cat.Model.Solutions, tags)
	for _, id := range s.SuggestedSolutionIDs {
		flightplan.EnsurePlan(s.FlightPlans, cat.Model.Solution(id))
	}
	s.RegenerateDispo(cat, now, false, false)
}

// SolutionNames resolves the suggested solution ids to display names,
// preserving catalog order.
func (s *State) SolutionNames(cat *catalog.Catalog) []string {
	names := make([]string, 0, len(s.SuggestedSolutionIDs))
	for _, id := range s.SuggestedSolutionIDs {
		names = append(names, cat.Model.SolutionName(id))
	}
	return names
}

// RegenerateDispo rebuilds the disposition notes and plan from their
// templates. Without force a field is only rebuilt when it is empty, so
// technician edits survive recomputes.
func (s *State) RegenerateDispo(cat *catalog.Catalog, now time.Time, forceNotes, forcePlan bool) {
	names := s.SolutionNames(cat)
	if forceNotes || strings.TrimSpace(s.Dispo.Notes) == "" {
		s.Dispo.Notes = dispo.BuildNotes(s.Dispo.Status, s.Job.Address, names, now)
	}
	if forcePlan || strings.TrimSpace(s.Dispo.Plan) == "" {
		s.Dispo.Plan = dispo.BuildPlan(s.Dispo.Status, s.Dispo.FollowupDate, s.Dispo.FollowupMethod, names)
	}
}

// SetAnswer records an answer after validating the question and option
// against the catalog. An empty value clears the answer.
func (s *State) SetAnswer(cat *catalog.Catalog, questionID, value string) error {
	q := cat.Model.Question(questionID)
	if q == nil {
		return fmt.Errorf("unknown question %q", questionID)
	}
	if value == "" {
		delete(s.Answers, questionID)
		return nil
	}
	if q.Option(value) == nil {
		return fmt.Errorf("question %q has no option %q", questionID, value)
	}
	s.Answers[questionID] = value
	return nil
}

// ResetAnswers clears the answer set. Accumulated rule notes are kept;
// clearing those is a separate, explicit operation.
func (s *State) ResetAnswers() {
	s.Answers = make(map[string]string)
}

// ResetNotes drops all accumulated rule notes. The next recompute
// re-fires whatever rules still match.
func (s *State) ResetNotes() {
	s.SolutionNotes = make(map[string][]string)
}

// SetPrompt toggles a field checklist item. Unknown ids are rejected.
func (s *State) SetPrompt(promptID string, done bool) error {
	for _, p := range FieldPrompts {
		if p.ID == promptID {
			s.PromptsDone[promptID] = done
			return nil
		}
	}
	return fmt.Errorf("unknown field prompt %q", promptID)
}

// AutoFill back-fills measured quantities into the suggested flight
// plans and adds the default auto add-ons the job's city and solution
// mix call for. Manual edits are never overwritten.
func (s *State) AutoFill(cat *catalog.Catalog) error {
	rules, err := flightplan.QuantityRules()
	if err != nil {
		return err
	}
	flightplan.AutoFill(s.FlightPlans, rules, s.Perimeter.Measures())
	city := flightplan.CityFromAddress(s.Job.Address)
	for _, id := range s.SuggestedSolutionIDs {
		plan, ok := s.FlightPlans[id]
		if !ok {
			continue
		}
		for _, a := range cat.Products.AddOns.Auto {
			if flightplan.AddOnDefault(a.ID, id, city) {
				flightplan.AddLineIfMissing(plan, a.Label)
			}
		}
	}
	return nil
}

// ToggleAddOn adds or removes an add-on line on one solution's flight
// plan. Both auto and manual add-ons can be toggled by id.
func (s *State) ToggleAddOn(cat *catalog.Catalog, solutionID, addOnID string, on bool) error {
	plan, ok := s.FlightPlans[solutionID]
	if !ok {
		return fmt.Errorf("no flight plan for solution %q", solutionID)
	}
	a := cat.Products.AddOn(addOnID)
	if a == nil {
		return fmt.Errorf("unknown add-on %q", addOnID)
	}
	if on {
		flightplan.AddLineIfMissing(plan, a.Label)
	} else {
		flightplan.RemoveLineByItem(plan, a.Label)
	}
	return nil
}

// SuggestedProducts returns the catalog's product shortlist for one
// suggested solution, keyed off the answered foundation type.
func (s *State) SuggestedProducts(cat *catalog.Catalog, solutionID string) []string {
	return cat.Products.Suggested(solutionID, engine.FoundationKey(s.Answers))
}
