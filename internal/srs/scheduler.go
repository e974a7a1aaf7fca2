package srs

import (
	"math"
	"time"
)

// Grade is the quality of an answer: how easily the user recalled it.
type Grade int

const (
	GradeForgot Grade = 0
	GradeHard   Grade = 1
	GradeEasy   Grade = 2
)

// GradeAnswer converts an answer outcome into a grade. Incorrect answers
// always grade as forgot. Correct answers grade by speed: under the
// threshold is easy, anything slower is hard with no further tiers.
func GradeAnswer(correct bool, elapsed time.Duration, easyThreshold time.Duration) Grade {
	if !correct {
		return GradeForgot
	}
	if elapsed < easyThreshold {
		return GradeEasy
	}
	return GradeHard
}

// NextMasteryLevel computes the level transition for one answer.
//
// Correct answers climb one level, capped at Perfect. Incorrect answers
// from Good or New drop straight to Bad; a miss from a comfortable state
// is a stronger non-retention signal than the generic one-step decay,
// and pushes the question back into active review quickly. Everywhere
// else an incorrect answer drops one level, floored at Miss.
func NextMasteryLevel(correct bool, current MasteryLevel) MasteryLevel {
	if correct {
		return LevelFromRank(current.Rank() + 1)
	}
	switch current {
	case LevelGood, LevelNew:
		return LevelBad
	default:
		return LevelFromRank(current.Rank() - 1)
	}
}

// Schedule applies one graded answer to a card and returns the updated
// card. The input card is left untouched so callers can diff and persist.
//
// Interval growth follows the classic SM-2 shape: a forgotten card
// resets to a one-day interval, successful repetitions step through
// 1, 6, then interval*easeFactor. The ease factor only moves on
// successful answers and never drops below MinEaseFactor.
func Schedule(card Card, grade Grade, now time.Time) Card {
	next := card
	reviewed := now
	next.LastReviewed = &reviewed

	if grade > GradeForgot {
		next.ConsecutiveCorrect++
		if next.ConsecutiveCorrect >= ReviewClearStreak {
			next.NeedsReview = false
		}
	} else {
		next.ConsecutiveCorrect = 0
		next.NeedsReview = true
	}

	next.Mastery = NextMasteryLevel(grade > GradeForgot, card.Mastery)

	if grade == GradeForgot {
		next.Repetitions = 0
		next.Interval = 1
	} else {
		next.Repetitions++
		switch next.Repetitions {
		case 1:
			next.Interval = 1
		case 2:
			next.Interval = 6
		default:
			next.Interval = int(math.Round(float64(next.Interval) * next.EaseFactor))
		}

		q := float64(grade)
		ease := next.EaseFactor + (0.1 - (2-q)*(0.08+(2-q)*0.02))
		next.EaseFactor = math.Max(ease, MinEaseFactor)
	}

	next.DueDate = now.Add(time.Duration(next.Interval) * day)
	return next
}

// DueCards filters to cards due at or before now, preserving order.
func DueCards(cards []Card, now time.Time) []Card {
	var due []Card
	for _, c := range cards {
		if c.IsDue(now) {
			due = append(due, c)
		}
	}
	return due
}

// NextReviewDate returns the earliest due date strictly after now.
// The second return is false when no card is scheduled in the future.
func NextReviewDate(cards []Card, now time.Time) (time.Time, bool) {
	var next time.Time
	found := false
	for _, c := range cards {
		if !c.DueDate.After(now) {
			continue
		}
		if !found || c.DueDate.Before(next) {
			next = c.DueDate
			found = true
		}
	}
	return next, found
}
