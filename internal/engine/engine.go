// Package engine implements the recommendation core: tag derivation from
// checklist answers, note-attaching rule application, and solution
// filtering. All functions are pure transformations except ApplyRules,
// which mutates the caller-owned notes accumulator.
package engine

import (
	"strings"

	"github.com/fieldkit/jobwalk/internal/catalog"
)

// DeriveTags returns the deduplicated union of tags contributed by the
// selected option of every answered question, in first-seen order.
// Unanswered questions and answers whose value no longer matches any
// option contribute nothing.
func DeriveTags(questions []catalog.Question, answers map[string]string) []string {
	var tags []string
	seen := make(map[string]struct{})

	for i := range questions {
		value, ok := answers[questions[i].ID]
		if !ok || value == "" {
			continue
		}
		opt := questions[i].Option(value)
		if opt == nil {
			continue
		}
		for _, t := range opt.Tags {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}

// ApplyRules walks the rule list and, for every rule whose precondition
// tags are all present, appends the rule's note to the target solution's
// note list unless an equal note is already there. Notes accumulate across
// recomputations and are never retracted here; clearing is an explicit
// operation on the session.
func ApplyRules(rules []catalog.Rule, tags []string, notes map[string][]string) {
	set := tagSet(tags)

	for _, rule := range rules {
		if !allPresent(rule.IfAllTags, set) {
			continue
		}
		sid := rule.Then.AddNotesToSolution
		note := rule.Then.Note
		if sid == "" || note == "" {
			continue
		}
		if containsString(notes[sid], note) {
			continue
		}
		notes[sid] = append(notes[sid], note)
	}
}

// FilterSolutions returns the ids of solutions that qualify for the given
// tags, preserving catalog order. A solution qualifies when any trigger
// tag matches (or it has none) and any required tag matches (or it has
// none). Required tags are the eligible foundation types, any-match.
func FilterSolutions(solutions []catalog.Solution, tags []string) []string {
	set := tagSet(tags)

	var ids []string
	for i := range solutions {
		s := &solutions[i]
		if !anyPresent(s.Tags, set) {
			continue
		}
		if !anyPresent(s.RequiredTags, set) {
			continue
		}
		ids = append(ids, s.ID)
	}
	return ids
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

// allPresent reports whether every tag is in set. An empty list is
// vacuously true.
func allPresent(tags []string, set map[string]struct{}) bool {
	for _, t := range tags {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

// anyPresent reports whether at least one tag is in set. An empty list
// always qualifies.
func anyPresent(tags []string, set map[string]struct{}) bool {
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// FoundationKey maps the foundation_type answer to the product-catalog
// key. Missing or mixed answers fall back to "any".
func FoundationKey(answers map[string]string) string {
	switch strings.ToLower(answers["foundation_type"]) {
	case "basement":
		return "basement"
	case "crawlspace":
		return "crawlspace"
	case "slab":
		return "slab"
	}
	return "any"
}
