package catalog

// Option is one selectable answer for a checklist question. Selecting it
// contributes its tags to the derived tag set.
type Option struct {
	Value string   `json:"value"`
	Label string   `json:"label"`
	Tags  []string `json:"tags,omitempty"`
}

// Question is a single checklist question with an ordered option list.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// Option returns the option with the given value, or nil. A recorded answer
// whose value matches no option is treated as stale and contributes nothing.
func (q *Question) Option(value string) *Option {
	for i := range q.Options {
		if q.Options[i].Value == value {
			return &q.Options[i]
		}
	}
	return nil
}

// RuleEffect attaches a note to a solution when the rule fires.
type RuleEffect struct {
	AddNotesToSolution string `json:"addNotesToSolution"`
	Note               string `json:"note"`
}

// Rule fires when every tag in IfAllTags is present in the derived tag set.
type Rule struct {
	IfAllTags []string   `json:"ifAllTags"`
	Then      RuleEffect `json:"then"`
}

// LineItem is one materials/labor line in a flight plan. Qty and UnitCost
// are never negative; ArcSiteObject is an optional reference into the
// drawing-object catalog.
type LineItem struct {
	Item          string  `json:"item"`
	Qty           float64 `json:"qty"`
	Unit          string  `json:"unit"`
	UnitCost      float64 `json:"unitCost"`
	ArcSiteObject string  `json:"arcsiteObject,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// SolutionDefaults holds the template seeded into a new flight plan.
type SolutionDefaults struct {
	FlightPlan []LineItem `json:"flightPlan"`
}

// Solution is a candidate remediation system. Tags are trigger tags
// (any-match qualifies); RequiredTags are the eligible foundation types,
// also any-match.
type Solution struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Title        string           `json:"title"`
	Tags         []string         `json:"tags,omitempty"`
	RequiredTags []string         `json:"requiredTags,omitempty"`
	Defaults     SolutionDefaults `json:"defaults"`
}

// Model is the decision model: questions, rules, and the solution catalog,
// in catalog order.
type Model struct {
	Version   string     `json:"version"`
	Questions []Question `json:"questions"`
	Rules     []Rule     `json:"rules"`
	Solutions []Solution `json:"solutions"`
}

// Question returns the question with the given id, or nil.
func (m *Model) Question(id string) *Question {
	for i := range m.Questions {
		if m.Questions[i].ID == id {
			return &m.Questions[i]
		}
	}
	return nil
}

// Solution returns the solution with the given id, or nil. Unknown ids
// referenced by rules or stored plans resolve to nil and render as nothing.
func (m *Model) Solution(id string) *Solution {
	for i := range m.Solutions {
		if m.Solutions[i].ID == id {
			return &m.Solutions[i]
		}
	}
	return nil
}

// SolutionName returns the display name for id, falling back to the id
// itself when the catalog has no such solution.
func (m *Model) SolutionName(id string) string {
	if s := m.Solution(id); s != nil {
		return s.Name
	}
	return id
}

// AddOn is an optional extra line item offered alongside a flight plan.
type AddOn struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// AddOns groups add-ons that may default to checked (auto) and ones that
// are always opt-in (manual).
type AddOns struct {
	Auto   []AddOn `json:"auto"`
	Manual []AddOn `json:"manual"`
}

// Products maps solution id -> foundation-type key -> product names.
type Products struct {
	SolutionProducts map[string]map[string][]string `json:"solutionProducts"`
	AddOns           AddOns                         `json:"addOns"`
}

// AddOn returns the auto or manual add-on with the given id, or nil.
func (p *Products) AddOn(id string) *AddOn {
	for i := range p.AddOns.Auto {
		if p.AddOns.Auto[i].ID == id {
			return &p.AddOns.Auto[i]
		}
	}
	for i := range p.AddOns.Manual {
		if p.AddOns.Manual[i].ID == id {
			return &p.AddOns.Manual[i]
		}
	}
	return nil
}

// ArcSite is the drawing-object catalog: object key -> display label.
type ArcSite struct {
	Objects map[string]string `json:"objects"`
}
