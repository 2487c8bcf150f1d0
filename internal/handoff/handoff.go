// Package handoff renders a session into the printable job handoff
// summary: a stable plain-text block format, plus an HTML rendering of
// the same content for print preview.
package handoff

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/fieldkit/jobwalk/internal/catalog"
	"github.com/fieldkit/jobwalk/internal/dispo"
	"github.com/fieldkit/jobwalk/internal/session"
)

// round formats v rounded to the given number of decimal places, with
// trailing zeros trimmed ("60", not "60.0").
func round(v float64, places int) string {
	p := math.Pow10(places)
	return strconv.FormatFloat(math.Round(v*p)/p, 'f', -1, 64)
}

// Text builds the plain-text handoff summary. The block layout is the
// interchange format technicians print and office staff read; keep it
// stable.
func Text(st *session.State, cat *catalog.Catalog) string {
	var lines []string
	push := func(s string) { lines = append(lines, s) }

	push("CFI JOB HANDOFF")
	push("==============")
	if st.Job.Address != "" {
		push("Address: " + st.Job.Address)
	}
	if st.Job.Homeowner != "" {
		push("Homeowner: " + st.Job.Homeowner)
	}
	if st.Job.Date != "" {
		push("Date: " + st.Job.Date)
	}
	if st.Job.Notes != "" {
		push("Notes: " + st.Job.Notes)
	}
	push("")

	out := st.Perimeter.Recalculate()
	push("PERIMETER / AREA")
	push("----------------")
	push("Mode: " + st.Perimeter.Mode)
	push("Perimeter: " + round(out.Perimeter, 1) + " ft")
	push("Area: " + round(out.Area, 1) + " sq ft")
	push("Closure error: " + round(out.Closure, 2) + " ft")
	if st.Perimeter.Rect.H != 0 {
		push("Wall height: " + round(st.Perimeter.Rect.H, 1) + " ft")
	}
	push("")

	push("ANSWERS")
	push("-------")
	for _, q := range cat.Model.Questions {
		v := st.Answers[q.ID]
		if v == "" {
			continue
		}
		label := v
		if opt := q.Option(v); opt != nil {
			label = opt.Label
		}
		push(fmt.Sprintf("- %s: %s", q.Text, label))
	}
	push("")

	push("SUGGESTED SOLUTIONS")
	push("-------------------")
	if len(st.SuggestedSolutionIDs) == 0 {
		push("- (none yet)")
	}
	for _, id := range st.SuggestedSolutionIDs {
		push("- " + cat.Model.SolutionName(id))
		for _, n := range st.SolutionNotes[id] {
			push("  • NOTE: " + n)
		}
	}
	push("")

	push("FLIGHT PLAN")
	push("-----------")
	for _, id := range st.SuggestedSolutionIDs {
		push(cat.Model.SolutionName(id))
		plan := st.FlightPlans[id]
		if plan == nil || len(plan.Lines) == 0 {
			push("  (no line items)")
			push("")
			continue
		}
		for _, li := range plan.Lines {
			item := li.Item
			if item == "" {
				item = "(item)"
			}
			line := fmt.Sprintf("  • %s: %s %s", item, round(li.Qty, 2), li.Unit)
			if li.ArcSiteObject != "" {
				line += fmt.Sprintf(" [ArcSite: %s]", li.ArcSiteObject)
			}
			if li.Notes != "" {
				line += " - " + li.Notes
			}
			push(line)
		}
		push("")
	}

	push("FIELD PROMPTS")
	push("-------------")
	for _, p := range session.FieldPrompts {
		mark := " "
		if st.PromptsDone[p.ID] {
			mark = "x"
		}
		push(fmt.Sprintf("- [%s] %s", mark, p.Text))
	}
	push("")

	push("DISPOSITION")
	push("-----------")
	push("Status: " + string(st.Dispo.Status))
	if st.Dispo.FollowupDate != "" {
		push(fmt.Sprintf("Next contact: %s via %s", st.Dispo.FollowupDate, st.Dispo.FollowupMethod))
	}
	push("")
	push("Disposition notes:")
	push(orNone(st.Dispo.Notes))
	push("")
	push("Follow-up plan:")
	push(orNone(st.Dispo.Plan))

	return strings.Join(lines, "\n")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// Warnings lists review flags shown on the print preview: gaps the
// office needs resolved before the handoff is actionable.
func Warnings(st *session.State) []string {
	var w []string
	if strings.TrimSpace(st.Job.Address) == "" {
		w = append(w, "Missing Address")
	}
	if strings.TrimSpace(st.Job.Date) == "" {
		w = append(w, "Missing Date")
	}
	if st.Dispo.Status == dispo.StatusUnknown {
		w = append(w, "Disposition is Unknown")
	}
	return w
}

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// HTML renders the print-preview sheet: title, job meta line, review
// warnings, and the summary text in a preformatted block.
func HTML(st *session.State, cat *catalog.Catalog) ([]byte, error) {
	var doc bytes.Buffer
	doc.WriteString("# CFI Job Handoff\n\n")

	var meta []string
	if st.Job.Address != "" {
		meta = append(meta, st.Job.Address)
	}
	if st.Job.Date != "" {
		meta = append(meta, st.Job.Date)
	}
	if len(meta) > 0 {
		doc.WriteString(strings.Join(meta, " • ") + "\n\n")
	}

	if warnings := Warnings(st); len(warnings) > 0 {
		doc.WriteString("**Review:**\n\n")
		for _, w := range warnings {
			doc.WriteString("- " + w + "\n")
		}
		doc.WriteString("\n")
	}

	doc.WriteString("```\n")
	doc.WriteString(Text(st, cat))
	doc.WriteString("\n```\n")

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>CFI Job Handoff</title></head><body>\n")
	if err := md.Convert(doc.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("render handoff html: %w", err)
	}
	out.WriteString("</body></html>\n")
	return out.Bytes(), nil
}
