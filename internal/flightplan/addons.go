package flightplan

import "strings"

// Add-on ids from the product catalog with local defaulting rules.
const (
	addOnUtilities = "utilities_protection"
	addOnPermit    = "permit_package_a"
	addOnArborist  = "arborist_survey"
)

var utilitiesSolutions = map[string]bool{
	"control_groundwater": true,
	"stabilize_perimeter": true,
	"stabilize_walls":     true,
	"stabilize_concrete":  true,
}

var permitSolutions = map[string]bool{
	"stabilize_perimeter":     true,
	"stabilize_walls":         true,
	"stabilize_floor_framing": true,
	"stabilize_concrete":      true,
}

// CityFromAddress extracts the city token from a free-text job address.
// The common field format is "street, City, ST ZIP": the first
// comma-separated token after the street is the city.
func CityFromAddress(address string) string {
	var parts []string
	for _, p := range strings.Split(address, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) >= 2 {
		return parts[1]
	}
	return ""
}

// AddOnDefault reports whether an auto add-on starts pre-checked for a
// suggested solution and job city. Matching is case-insensitive substring
// on the city, per local municipal rules:
//   - Atlanta requires permits regardless of contract size, plus an
//     arborist and land survey.
//   - Stone Mountain requires a permit for all structural work.
func AddOnDefault(addOnID, solutionID, city string) bool {
	c := strings.ToLower(city)

	switch addOnID {
	case addOnUtilities:
		return utilitiesSolutions[solutionID]
	case addOnPermit:
		if strings.Contains(c, "atlanta") {
			return true
		}
		if strings.Contains(c, "stone mountain") && strings.HasPrefix(solutionID, "stabilize") {
			return true
		}
		return permitSolutions[solutionID]
	case addOnArborist:
		return strings.Contains(c, "atlanta")
	}
	return false
}
