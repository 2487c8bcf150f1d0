package handoff

import (
	"strings"
	"testing"
	"time"

	"github.com/fieldkit/jobwalk/internal/catalog"
	"github.com/fieldkit/jobwalk/internal/session"
)

func testState(t *testing.T) (*session.State, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	st := session.NewState()
	st.Job.Address = "45 Oak Ln, Decatur, GA 30030"
	st.Job.Homeowner = "J. Whitfield"
	st.Job.Date = "2026-04-02"
	st.Answers["foundation_type"] = "crawlspace"
	st.Answers["humidity"] = "high"
	st.Perimeter.Rect = session.Rect{L: 30, W: 20, H: 4}
	st.Recompute(cat, time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC))
	return st, cat
}

func TestTextSections(t *testing.T) {
	st, cat := testState(t)
	text := Text(st, cat)

	for _, want := range []string{
		"CFI JOB HANDOFF",
		"Address: 45 Oak Ln, Decatur, GA 30030",
		"Homeowner: J. Whitfield",
		"PERIMETER / AREA",
		"Perimeter: 100 ft",
		"Area: 600 sq ft",
		"Closure error: 0 ft",
		"Wall height: 4 ft",
		"- Foundation type?: Crawlspace",
		"- Relative humidity inside the space?: High (over 60%)",
		"SUGGESTED SOLUTIONS",
		"- Encapsulation",
		"• NOTE:",
		"FLIGHT PLAN",
		"• Vapor barrier 20 mil: 0 SF [ArcSite: vapor_barrier]",
		"FIELD PROMPTS",
		"- [ ] PEP complete + safe access documented",
		"DISPOSITION",
		"Status: unknown",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestTextSkipsUnanswered(t *testing.T) {
	st, cat := testState(t)
	text := Text(st, cat)
	if strings.Contains(text, "Standing water") {
		t.Error("unanswered question should not appear")
	}
}

func TestTextEmptySolutions(t *testing.T) {
	cat, err := catalog.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	st := session.NewState()
	text := Text(st, cat)
	if !strings.Contains(text, "- (none yet)") {
		t.Error("expected (none yet) placeholder")
	}
	if !strings.Contains(text, "Disposition notes:\n(none)") {
		t.Error("expected (none) for empty disposition notes")
	}
}

func TestTextStable(t *testing.T) {
	st, cat := testState(t)
	if Text(st, cat) != Text(st, cat) {
		t.Error("summary text not deterministic")
	}
}

func TestWarnings(t *testing.T) {
	st := session.NewState()
	got := Warnings(st)
	want := []string{"Missing Address", "Missing Date", "Disposition is Unknown"}
	if len(got) != len(want) {
		t.Fatalf("warnings = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("warning[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	st.Job.Address = "45 Oak Ln"
	st.Job.Date = "2026-04-02"
	st.Dispo.Status = "sold"
	if w := Warnings(st); len(w) != 0 {
		t.Errorf("complete session warnings = %v, want none", w)
	}
}

func TestHTML(t *testing.T) {
	st, cat := testState(t)
	out, err := HTML(st, cat)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	page := string(out)
	for _, want := range []string{
		"<!DOCTYPE html>",
		"CFI Job Handoff",
		"45 Oak Ln, Decatur, GA 30030",
		"<pre>",
		"Disposition is Unknown",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("html missing %q", want)
		}
	}
}
