package flightplan

import (
	_ "embed"
	"fmt"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

//go:embed autoquant.yaml
var autoquantYAML []byte

// Measures are the geometry outputs a quantity rule can draw from.
// WallArea is perimeter x wall height, zero when either is unset.
type Measures struct {
	Perimeter float64
	Area      float64
	WallArea  float64
}

// QuantityRule targets the first line of a solution's plan whose item
// label contains Keyword (case-insensitive) and whose unit matches
// exactly, overwriting its quantity with the named source measure.
type QuantityRule struct {
	Solution string `yaml:"solution"`
	Keyword  string `yaml:"keyword"`
	Unit     string `yaml:"unit"`
	Source   string `yaml:"source"`
}

type quantityConfig struct {
	Rules []QuantityRule `yaml:"rules"`
}

// QuantityRules returns the embedded back-fill rule table.
func QuantityRules() ([]QuantityRule, error) {
	var cfg quantityConfig
	if err := yaml.Unmarshal(autoquantYAML, &cfg); err != nil {
		return nil, fmt.Errorf("parsing quantity rules: %w", err)
	}
	return cfg.Rules, nil
}

// AutoFill applies the rule table against the measured geometry. Rules
// whose measure is zero, whose plan does not exist, or whose plan has no
// matching line are skipped; no line is ever created.
func AutoFill(plans map[string]*Plan, rules []QuantityRule, m Measures) {
	for _, r := range rules {
		value := m.value(r.Source)
		if value <= 0 {
			continue
		}
		plan, ok := plans[r.Solution]
		if !ok || plan == nil {
			continue
		}
		setQty(plan, r.Keyword, r.Unit, value)
	}
}

func (m Measures) value(source string) float64 {
	switch source {
	case "perimeter":
		return m.Perimeter
	case "area":
		return m.Area
	case "wall_area":
		return m.WallArea
	}
	return 0
}

func setQty(plan *Plan, keyword, unit string, value float64) {
	kw := strings.ToLower(keyword)
	for i := range plan.Lines {
		l := &plan.Lines[i]
		if strings.Contains(strings.ToLower(l.Item), kw) && l.Unit == unit {
			l.Qty = value
			return
		}
	}
}
