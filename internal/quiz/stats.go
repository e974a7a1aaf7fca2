package quiz

import (
	"time"

	"github.com/vzwtim/swift-revise/internal/catalog"
	"github.com/vzwtim/swift-revise/internal/srs"
)

// SubjectStats is the per-subject mastery breakdown for the stats view.
type SubjectStats struct {
	SubjectID string
	Name      string
	Total     int
	Due       int
	Review    int
	Levels    map[srs.MasteryLevel]int
}

// Breakdown tallies every subject's cards by mastery level along with
// due and needs-review counts. Questions without a card count as New
// and needing review.
func Breakdown(cat *catalog.Catalog, cards map[string]srs.Card, now time.Time) []SubjectStats {
	var out []SubjectStats
	for _, sub := range cat.Subjects() {
		st := SubjectStats{
			SubjectID: sub.ID,
			Name:      sub.Name,
			Levels:    make(map[srs.MasteryLevel]int),
		}
		for _, q := range cat.SubjectQuestions(sub.ID) {
			st.Total++
			c, ok := cards[q.ID]
			if !ok {
				st.Levels[srs.LevelNew]++
				st.Review++
				continue
			}
			st.Levels[cardLevel(cards, q.ID)]++
			if c.NeedsReview {
				st.Review++
			}
			if c.IsDue(now) {
				st.Due++
			}
		}
		out = append(out, st)
	}
	return out
}
