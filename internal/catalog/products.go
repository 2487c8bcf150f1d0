package catalog

import "sort"

// Suggested returns the product names offered for a solution given the
// job's foundation-type key ("basement", "crawlspace", "slab"). Products
// under the "any" key are always included. An empty or "multiple" key
// returns the deduplicated union across all foundation types, sorted.
func (p *Products) Suggested(solutionID, foundationKey string) []string {
	bySol := p.SolutionProducts[solutionID]
	if len(bySol) == 0 {
		return nil
	}

	if foundationKey == "" || foundationKey == "multiple" {
		set := make(map[string]struct{})
		for _, names := range bySol {
			for _, n := range names {
				set[n] = struct{}{}
			}
		}
		out := make([]string, 0, len(set))
		for n := range set {
			out = append(out, n)
		}
		sort.Strings(out)
		return out
	}

	var out []string
	out = append(out, bySol["any"]...)
	out = append(out, bySol[foundationKey]...)
	return out
}
