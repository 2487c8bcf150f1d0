// Package dispo generates disposition notes and follow-up action plans
// from per-status templates. Both builders are pure: identical inputs
// always produce identical text.
package dispo

import (
	"fmt"
	"strings"
	"time"
)

// Status is the sales/engagement outcome of a job visit.
type Status string

const (
	StatusUnknown       Status = "unknown"
	StatusSold          Status = "sold"
	StatusNotSold       Status = "not_sold"
	StatusNeedsFollowup Status = "needs_followup"
)

// ParseStatus normalizes free-form input to a known status, defaulting to
// unknown.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusSold:
		return StatusSold
	case StatusNotSold:
		return StatusNotSold
	case StatusNeedsFollowup:
		return StatusNeedsFollowup
	}
	return StatusUnknown
}

// BuildNotes renders the disposition notes block for a status. The today
// value is passed in (not read from the clock) so regeneration is
// reproducible.
func BuildNotes(status Status, address string, solutionNames []string, today time.Time) string {
	if address == "" {
		address = "(address)"
	}
	solLine := "No solutions generated yet"
	if len(solutionNames) > 0 {
		solLine = strings.Join(solutionNames, ", ")
	}
	date := today.Format("2006-01-02")

	switch status {
	case StatusSold:
		return fmt.Sprintf(`SOLD (%s)
Address: %s
Recommended: %s
Customer confirmed proceeding. Next steps: schedule install, confirm access constraints, verify discharge route, confirm electrical needs (if dehu/sump).`, date, address, solLine)
	case StatusNotSold:
		return fmt.Sprintf(`NOT SOLD (%s)
Address: %s
Recommended: %s
Customer did not move forward today. Document objections (price, timing, trust, competing bids, uncertainty). Capture what would change their mind.`, date, address, solLine)
	case StatusNeedsFollowup:
		return fmt.Sprintf(`NEEDS FOLLOW-UP (%s)
Address: %s
Recommended: %s
Pending decision. Identify missing info (financing, spouse approval, scope clarity, additional photos/measurements).`, date, address, solLine)
	}
	return fmt.Sprintf(`DISPOSITION UNKNOWN (%s)
Address: %s
Recommended: %s
Update status after discussion.`, date, address, solLine)
}

// BuildPlan renders the follow-up action plan for a status, interpolating
// the target date, contact method, and suggested solution names.
func BuildPlan(status Status, followupDate, method string, solutionNames []string) string {
	if method == "" {
		method = "call"
	}
	solLine := "(no solutions yet)"
	if len(solutionNames) > 0 {
		solLine = strings.Join(solutionNames, ", ")
	}
	dateLine := "Target date: (set a date)"
	if followupDate != "" {
		dateLine = "Target date: " + followupDate
	}
	methodUpper := strings.ToUpper(method)

	switch status {
	case StatusSold:
		return fmt.Sprintf(`FOLLOW-UP PLAN (Sold)
%s
1) %s: confirm scheduling window + installer access
2) Send scope summary + what to expect day-of
3) Confirm any pre-work: clearing, pets, electrical outlets, discharge routing
4) Internal: create job ticket + attach handoff + photos`, dateLine, methodUpper)
	case StatusNotSold:
		return fmt.Sprintf(`FOLLOW-UP PLAN (Not Sold)
%s
1) %s: ask for decision driver (price/timing/uncertainty)
2) Offer 2 options: "minimum fix" vs "full system" tied to %s
3) Provide proof: warranty, references, before/after photos, moisture readings
4) Set next touchpoint + leave a single clear next step`, dateLine, methodUpper, solLine)
	case StatusNeedsFollowup:
		return fmt.Sprintf(`FOLLOW-UP PLAN (Needs Follow-up)
%s
1) %s: answer open questions + summarize scope
2) Provide missing artifacts: drawing, measurements, itemized options, financing
3) Confirm decision-maker(s) and timeline
4) Lock in next appointment or call window`, dateLine, methodUpper)
	}
	return fmt.Sprintf(`FOLLOW-UP PLAN
%s
1) Set status (sold / not sold / needs follow-up)
2) Confirm decision-maker and timeline
3) Next touchpoint via %s`, dateLine, method)
}
