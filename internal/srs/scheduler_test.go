package srs

import (
	"math"
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func TestNewCard_Defaults(t *testing.T) {
	c := NewCard("q1", testNow)

	if c.QuestionID != "q1" {
		t.Errorf("QuestionID = %q, want q1", c.QuestionID)
	}
	if c.Interval != 1 {
		t.Errorf("Interval = %d, want 1", c.Interval)
	}
	if c.Repetitions != 0 {
		t.Errorf("Repetitions = %d, want 0", c.Repetitions)
	}
	if c.EaseFactor != InitialEaseFactor {
		t.Errorf("EaseFactor = %v, want %v", c.EaseFactor, InitialEaseFactor)
	}
	if !c.DueDate.Equal(testNow) {
		t.Errorf("DueDate = %v, want %v", c.DueDate, testNow)
	}
	if !c.NeedsReview {
		t.Error("NeedsReview = false, want true")
	}
	if c.Mastery != LevelNew {
		t.Errorf("Mastery = %q, want New", c.Mastery)
	}
	if c.LastReviewed != nil {
		t.Error("LastReviewed should be nil for a new card")
	}
}

func TestGradeAnswer(t *testing.T) {
	tests := []struct {
		name    string
		correct bool
		elapsed time.Duration
		want    Grade
	}{
		{"incorrect fast", false, 500 * time.Millisecond, GradeForgot},
		{"incorrect slow", false, 2 * time.Minute, GradeForgot},
		{"correct under threshold", true, 1500 * time.Millisecond, GradeEasy},
		{"correct just under threshold", true, 2999 * time.Millisecond, GradeEasy},
		{"correct at threshold", true, 3 * time.Second, GradeHard},
		{"correct slow", true, 45 * time.Second, GradeHard},
		{"correct very slow has no extra tier", true, time.Hour, GradeHard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GradeAnswer(tt.correct, tt.elapsed, DefaultEasyThreshold)
			if got != tt.want {
				t.Errorf("GradeAnswer(%v, %v) = %d, want %d", tt.correct, tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestNextMasteryLevel_Correct(t *testing.T) {
	tests := []struct {
		current MasteryLevel
		want    MasteryLevel
	}{
		{LevelMiss, LevelBad},
		{LevelBad, LevelNew},
		{LevelNew, LevelGood},
		{LevelGood, LevelGreat},
		{LevelGreat, LevelPerfect},
		{LevelPerfect, LevelPerfect}, // capped
	}
	for _, tt := range tests {
		if got := NextMasteryLevel(true, tt.current); got != tt.want {
			t.Errorf("NextMasteryLevel(true, %s) = %s, want %s", tt.current, got, tt.want)
		}
	}
}

func TestNextMasteryLevel_Incorrect(t *testing.T) {
	tests := []struct {
		current MasteryLevel
		want    MasteryLevel
	}{
		{LevelPerfect, LevelGreat},
		{LevelGreat, LevelGood}, // generic one-step decay
		{LevelGood, LevelBad},   // two-level drop, intentional
		{LevelNew, LevelBad},
		{LevelBad, LevelMiss},
		{LevelMiss, LevelMiss}, // floored
	}
	for _, tt := range tests {
		if got := NextMasteryLevel(false, tt.current); got != tt.want {
			t.Errorf("NextMasteryLevel(false, %s) = %s, want %s", tt.current, got, tt.want)
		}
	}
}

func TestSchedule_ForgotResets(t *testing.T) {
	c := NewCard("q1", testNow)
	c.Repetitions = 4
	c.Interval = 30
	c.ConsecutiveCorrect = 5
	c.NeedsReview = false

	got := Schedule(c, GradeForgot, testNow)

	if got.Repetitions != 0 {
		t.Errorf("Repetitions = %d, want 0", got.Repetitions)
	}
	if got.Interval != 1 {
		t.Errorf("Interval = %d, want 1", got.Interval)
	}
	if got.ConsecutiveCorrect != 0 {
		t.Errorf("ConsecutiveCorrect = %d, want 0", got.ConsecutiveCorrect)
	}
	if !got.NeedsReview {
		t.Error("NeedsReview = false after a wrong answer, want true")
	}
	wantDue := testNow.Add(24 * time.Hour)
	if !got.DueDate.Equal(wantDue) {
		t.Errorf("DueDate = %v, want %v", got.DueDate, wantDue)
	}
	// Ease factor is untouched on the reset branch.
	if got.EaseFactor != c.EaseFactor {
		t.Errorf("EaseFactor = %v, want unchanged %v", got.EaseFactor, c.EaseFactor)
	}
}

func TestSchedule_DoesNotMutateInput(t *testing.T) {
	c := NewCard("q1", testNow)
	before := c

	_ = Schedule(c, GradeEasy, testNow)

	if c != before {
		t.Errorf("input card was mutated: %+v != %+v", c, before)
	}
}

func TestSchedule_RepetitionLadder(t *testing.T) {
	// Three consecutive easy answers from a fresh card: intervals 1, 6,
	// then round(6 * easeFactor) with the ease factor grown twice by 0.1.
	c := NewCard("q1", testNow)

	c = Schedule(c, GradeEasy, testNow)
	if c.Interval != 1 {
		t.Fatalf("interval after rep 1 = %d, want 1", c.Interval)
	}

	c = Schedule(c, GradeEasy, testNow)
	if c.Interval != 6 {
		t.Fatalf("interval after rep 2 = %d, want 6", c.Interval)
	}
	easeAfter2 := c.EaseFactor

	c = Schedule(c, GradeEasy, testNow)
	want := int(math.Round(6 * easeAfter2))
	if c.Interval != want {
		t.Fatalf("interval after rep 3 = %d, want %d", c.Interval, want)
	}
	if c.Repetitions != 3 {
		t.Errorf("Repetitions = %d, want 3", c.Repetitions)
	}
}

func TestSchedule_EaseFactorDeltas(t *testing.T) {
	c := NewCard("q1", testNow)

	easy := Schedule(c, GradeEasy, testNow)
	if diff := easy.EaseFactor - c.EaseFactor; math.Abs(diff-0.1) > 1e-9 {
		t.Errorf("easy delta = %v, want +0.1", diff)
	}

	hard := Schedule(c, GradeHard, testNow)
	// 0.1 - 1*(0.08 + 1*0.02) = 0; grade 1 leaves the ease factor alone.
	if diff := hard.EaseFactor - c.EaseFactor; math.Abs(diff) > 1e-9 {
		t.Errorf("hard delta = %v, want 0", diff)
	}
}

func TestSchedule_EaseFactorFloor(t *testing.T) {
	c := NewCard("q1", testNow)
	c.EaseFactor = MinEaseFactor

	// Any mix of grades must keep the ease factor at or above the floor.
	grades := []Grade{GradeHard, GradeForgot, GradeHard, GradeEasy, GradeForgot, GradeHard, GradeHard}
	for _, g := range grades {
		c = Schedule(c, g, testNow)
		if c.EaseFactor < MinEaseFactor {
			t.Fatalf("EaseFactor = %v dropped below floor %v", c.EaseFactor, MinEaseFactor)
		}
	}
}

func TestSchedule_ConsecutiveCorrectClearsNeedsReview(t *testing.T) {
	c := NewCard("q1", testNow)

	c = Schedule(c, GradeEasy, testNow)
	if !c.NeedsReview {
		t.Fatal("NeedsReview cleared after 1 correct, want it kept until streak of 3")
	}
	c = Schedule(c, GradeHard, testNow)
	if !c.NeedsReview {
		t.Fatal("NeedsReview cleared after 2 correct")
	}
	c = Schedule(c, GradeEasy, testNow)
	if c.NeedsReview {
		t.Fatal("NeedsReview still set after 3 consecutive correct")
	}

	// One miss forces the card back into review.
	c = Schedule(c, GradeForgot, testNow)
	if !c.NeedsReview {
		t.Fatal("NeedsReview not restored after a wrong answer")
	}
}

func TestSchedule_SetsLastReviewed(t *testing.T) {
	c := NewCard("q1", testNow)
	later := testNow.Add(2 * time.Hour)

	got := Schedule(c, GradeHard, later)
	if got.LastReviewed == nil || !got.LastReviewed.Equal(later) {
		t.Errorf("LastReviewed = %v, want %v", got.LastReviewed, later)
	}
}

func TestDueCards(t *testing.T) {
	cards := []Card{
		{QuestionID: "a", DueDate: testNow.Add(-time.Hour)},
		{QuestionID: "b", DueDate: testNow},
		{QuestionID: "c", DueDate: testNow.Add(time.Hour)},
	}

	due := DueCards(cards, testNow)
	if len(due) != 2 {
		t.Fatalf("len(due) = %d, want 2", len(due))
	}
	if due[0].QuestionID != "a" || due[1].QuestionID != "b" {
		t.Errorf("due order = %s, %s; want a, b", due[0].QuestionID, due[1].QuestionID)
	}
}

func TestNextReviewDate(t *testing.T) {
	cards := []Card{
		{QuestionID: "a", DueDate: testNow.Add(-time.Hour)},
		{QuestionID: "b", DueDate: testNow.Add(72 * time.Hour)},
		{QuestionID: "c", DueDate: testNow.Add(24 * time.Hour)},
	}

	next, ok := NextReviewDate(cards, testNow)
	if !ok {
		t.Fatal("expected a future review date")
	}
	if !next.Equal(testNow.Add(24 * time.Hour)) {
		t.Errorf("next = %v, want %v", next, testNow.Add(24*time.Hour))
	}
}

func TestNextReviewDate_NoneInFuture(t *testing.T) {
	cards := []Card{
		{QuestionID: "a", DueDate: testNow.Add(-time.Hour)},
		{QuestionID: "b", DueDate: testNow},
	}
	if _, ok := NextReviewDate(cards, testNow); ok {
		t.Error("expected ok=false when no card is due in the future")
	}

	if _, ok := NextReviewDate(nil, testNow); ok {
		t.Error("expected ok=false for an empty card set")
	}
}
