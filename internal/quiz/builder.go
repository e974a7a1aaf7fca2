// Package quiz selects the questions for a session and drives the
// session itself: one question at a time, answers through the scheduler,
// updated cards back to the store.
package quiz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vzwtim/swift-revise/internal/catalog"
	"github.com/vzwtim/swift-revise/internal/srs"
)

// Target selectors understood by Build, beyond literal unit ids.
const (
	SelectorReviewAll = "review-all"
	SelectorBulkStudy = "bulk-study"

	reviewPrefix = "review-"
)

// BuildRequest describes which questions a session wants.
type BuildRequest struct {
	// Selector is a unit id, "review-all", "review-<subjectId>", or
	// "bulk-study".
	Selector string

	// Levels restricts questions to cards at these mastery levels.
	// Empty means no filtering.
	Levels []srs.MasteryLevel

	// UnitIDs narrows bulk-study to these units. Ignored by other
	// selectors.
	UnitIDs []string
}

// BuildResult is the ordered question list plus display metadata.
//
// An empty Questions with NoUnitsSelected unset means the selector did
// not resolve ("quiz not found"); NoUnitsSelected marks the distinct,
// user-correctable bulk-study-without-units condition.
type BuildResult struct {
	Questions       []catalog.Question
	Title           string
	Description     string
	NoUnitsSelected bool
}

// Build resolves a target selector against the catalog and the user's
// card map.
//
// Single-unit sessions are reordered so questions still needing review
// come first, preserving catalog order within each group. Review and
// bulk-study sessions keep plain catalog order.
func Build(cat *catalog.Catalog, cards map[string]srs.Card, req BuildRequest) BuildResult {
	filter := levelFilter(cards, req.Levels)

	switch {
	case req.Selector == SelectorBulkStudy:
		if len(req.UnitIDs) == 0 {
			return BuildResult{NoUnitsSelected: true}
		}
		wanted := make(map[string]bool, len(req.UnitIDs))
		for _, id := range req.UnitIDs {
			wanted[id] = true
		}
		var qs []catalog.Question
		for _, q := range cat.AllQuestions() {
			if wanted[q.UnitID] && filter(q) {
				qs = append(qs, q)
			}
		}
		return BuildResult{
			Questions:   qs,
			Title:       "まとめて学習",
			Description: "選択した単元の問題",
		}

	case req.Selector == SelectorReviewAll:
		var qs []catalog.Question
		for _, q := range cat.AllQuestions() {
			if filter(q) {
				qs = append(qs, q)
			}
		}
		return BuildResult{
			Questions:   qs,
			Title:       "まとめて学習",
			Description: "選択した習熟度の問題",
		}

	case strings.HasPrefix(req.Selector, reviewPrefix):
		subjectID := strings.TrimPrefix(req.Selector, reviewPrefix)
		subject, ok := cat.Subject(subjectID)
		if !ok {
			return BuildResult{}
		}
		var qs []catalog.Question
		for _, q := range cat.SubjectQuestions(subjectID) {
			if filter(q) {
				qs = append(qs, q)
			}
		}
		return BuildResult{
			Questions:   qs,
			Title:       fmt.Sprintf("%s の復習", subject.Name),
			Description: "選択した習熟度の問題",
		}

	default:
		unit, ok := cat.Unit(req.Selector)
		if !ok {
			return BuildResult{}
		}
		var qs []catalog.Question
		for _, q := range unit.Questions {
			if filter(q) {
				qs = append(qs, q)
			}
		}
		sortNeedsReviewFirst(qs, cards)
		return BuildResult{
			Questions:   qs,
			Title:       unit.Name,
			Description: "クイズモード",
		}
	}
}

// levelFilter returns the inclusion predicate for the requested levels.
// A question without a card counts as New, so an unreconciled catalog
// filters sensibly instead of crashing.
func levelFilter(cards map[string]srs.Card, levels []srs.MasteryLevel) func(catalog.Question) bool {
	if len(levels) == 0 {
		return func(catalog.Question) bool { return true }
	}
	wanted := make(map[srs.MasteryLevel]bool, len(levels))
	for _, l := range levels {
		wanted[l] = true
	}
	return func(q catalog.Question) bool {
		return wanted[cardLevel(cards, q.ID)]
	}
}

func cardLevel(cards map[string]srs.Card, questionID string) srs.MasteryLevel {
	if c, ok := cards[questionID]; ok && c.Mastery.Valid() {
		return c.Mastery
	}
	return srs.LevelNew
}

// sortNeedsReviewFirst moves questions whose card still needs review
// ahead of cleared ones. Questions without a card default to needing
// review. The sort is stable: catalog order breaks ties.
func sortNeedsReviewFirst(qs []catalog.Question, cards map[string]srs.Card) {
	needsReview := func(q catalog.Question) bool {
		if c, ok := cards[q.ID]; ok {
			return c.NeedsReview
		}
		return true
	}
	sort.SliceStable(qs, func(i, j int) bool {
		return needsReview(qs[i]) && !needsReview(qs[j])
	})
}
