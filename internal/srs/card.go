package srs

import "time"

// MasteryLevel classifies how well a question is retained.
type MasteryLevel string

const (
	LevelMiss    MasteryLevel = "Miss"
	LevelBad     MasteryLevel = "Bad"
	LevelNew     MasteryLevel = "New"
	LevelGood    MasteryLevel = "Good"
	LevelGreat   MasteryLevel = "Great"
	LevelPerfect MasteryLevel = "Perfect"
)

// levelOrder is the transition ordering. New sits between Bad and Good:
// an unseen question is closer to "shaky" than to "known".
var levelOrder = []MasteryLevel{LevelMiss, LevelBad, LevelNew, LevelGood, LevelGreat, LevelPerfect}

// Rank returns the level's position in the transition ordering
// (Miss=0 .. Perfect=5). Unknown values rank as New.
func (l MasteryLevel) Rank() int {
	for i, lv := range levelOrder {
		if lv == l {
			return i
		}
	}
	return LevelNew.Rank()
}

// LevelFromRank is the inverse of Rank, clamped to the valid range.
func LevelFromRank(r int) MasteryLevel {
	if r < 0 {
		r = 0
	}
	if r >= len(levelOrder) {
		r = len(levelOrder) - 1
	}
	return levelOrder[r]
}

// Valid reports whether l is one of the six defined levels.
func (l MasteryLevel) Valid() bool {
	for _, lv := range levelOrder {
		if lv == l {
			return true
		}
	}
	return false
}

// Card holds the per-user scheduling state for one question.
// Cards are passed and returned by value; Schedule never mutates its input.
type Card struct {
	QuestionID         string
	Interval           int // days until the next review
	Repetitions        int // consecutive successful review cycles since last reset
	EaseFactor         float64
	DueDate            time.Time
	LastReviewed       *time.Time
	ConsecutiveCorrect int
	NeedsReview        bool
	Mastery            MasteryLevel
	CorrectCount       int
	TotalCount         int
}

// NewCard creates the scheduling state for a question the user has never
// answered. The card is immediately due.
func NewCard(questionID string, now time.Time) Card {
	return Card{
		QuestionID:  questionID,
		Interval:    1,
		Repetitions: 0,
		EaseFactor:  InitialEaseFactor,
		DueDate:     now,
		NeedsReview: true,
		Mastery:     LevelNew,
	}
}

// IsDue reports whether the card is at or past its review date.
func (c Card) IsDue(now time.Time) bool {
	return !c.DueDate.After(now)
}
