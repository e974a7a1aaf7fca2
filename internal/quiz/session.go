package quiz

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/vzwtim/swift-revise/internal/catalog"
	"github.com/vzwtim/swift-revise/internal/srs"
	"github.com/vzwtim/swift-revise/internal/store"
)

// Phase is where the session state machine currently sits.
type Phase int

const (
	// PhasePresenting shows the current question and waits for an answer.
	PhasePresenting Phase = iota
	// PhaseGraded shows feedback for the answered question.
	PhaseGraded
	// PhaseComplete means every question has been answered.
	PhaseComplete
)

// Answer records one graded response within a session.
type Answer struct {
	QuestionID string
	Choice     int
	TimeSpent  time.Duration
	Correct    bool
	Grade      srs.Grade
}

// Summary is the end-of-session report.
type Summary struct {
	Score         int
	Correct       int
	Answered      int
	Total         int
	NextReview    time.Time
	HasNextReview bool
}

// Deps are the collaborators a session needs. UserID may be empty, in
// which case everything still runs but nothing persists.
type Deps struct {
	Cards    store.CardRepo
	History  store.HistoryRepo
	Progress store.ProgressRepo
	UserID   string

	// EasyThreshold separates easy from hard correct answers.
	// Zero means srs.DefaultEasyThreshold.
	EasyThreshold time.Duration

	// Now overrides the clock in tests.
	Now func() time.Time
}

// ErrNotAwaitingAnswer is returned by Submit outside PhasePresenting.
// A double submit is harmless to skip: the card write is an idempotent
// upsert and the answer is already recorded.
var ErrNotAwaitingAnswer = errors.New("quiz: session is not awaiting an answer")

// Session walks a fixed question list, grades each answer, and pushes
// the rescheduled card to the store as it goes.
type Session struct {
	ID        string
	Target    string
	Title     string
	Questions []catalog.Question

	phase   Phase
	index   int
	answers []Answer

	cards   map[string]srs.Card
	touched map[string]bool

	deps Deps
}

// NewSession starts a session over the built question list. The cards
// map is the user's full card state; missing entries are created on
// first answer. Target is the selector the list was built from and
// doubles as the resume key.
func NewSession(target, title string, questions []catalog.Question, cards map[string]srs.Card, deps Deps) *Session {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.EasyThreshold <= 0 {
		deps.EasyThreshold = srs.DefaultEasyThreshold
	}
	if cards == nil {
		cards = make(map[string]srs.Card)
	}
	s := &Session{
		ID:        uuid.NewString(),
		Target:    target,
		Title:     title,
		Questions: questions,
		cards:     cards,
		touched:   make(map[string]bool),
		deps:      deps,
	}
	if len(questions) == 0 {
		s.phase = PhaseComplete
	}
	return s
}

// RestoreSnapshot reorders the session to match a previously saved
// incomplete quiz and jumps to its index. Questions the snapshot does
// not know about keep their relative order at the end. Returns false
// if the snapshot does not fit this question list, leaving the session
// untouched.
func (s *Session) RestoreSnapshot(snap *store.IncompleteQuiz) bool {
	if snap == nil || s.phase == PhaseComplete {
		return false
	}
	if snap.CurrentIndex < 0 || snap.CurrentIndex >= len(s.Questions) {
		return false
	}
	byID := make(map[string]catalog.Question, len(s.Questions))
	for _, q := range s.Questions {
		byID[q.ID] = q
	}
	ordered := make([]catalog.Question, 0, len(s.Questions))
	for _, id := range snap.QuestionIDs {
		q, ok := byID[id]
		if !ok {
			return false
		}
		ordered = append(ordered, q)
		delete(byID, id)
	}
	for _, q := range s.Questions {
		if _, left := byID[q.ID]; left {
			ordered = append(ordered, q)
		}
	}
	s.Questions = ordered
	s.index = snap.CurrentIndex
	s.answers = s.answers[:0]
	s.phase = PhasePresenting
	return true
}

func (s *Session) Phase() Phase { return s.phase }

// Index is the position of the current question.
func (s *Session) Index() int { return s.index }

func (s *Session) Answers() []Answer { return s.answers }

// Current returns the question on screen. ok is false once the session
// is complete.
func (s *Session) Current() (catalog.Question, bool) {
	if s.phase == PhaseComplete || s.index >= len(s.Questions) {
		return catalog.Question{}, false
	}
	return s.Questions[s.index], true
}

// LastAnswer returns the most recent graded answer for the feedback
// view.
func (s *Session) LastAnswer() (Answer, bool) {
	if len(s.answers) == 0 {
		return Answer{}, false
	}
	return s.answers[len(s.answers)-1], true
}

// Card exposes the working copy of a question's card.
func (s *Session) Card(questionID string) (srs.Card, bool) {
	c, ok := s.cards[questionID]
	return c, ok
}

// Submit grades the chosen option against the current question,
// reschedules its card, and moves the session to PhaseGraded.
//
// Persistence is best effort: the card upsert and the history append
// both log failures and keep going, so a flaky disk never blocks the
// quiz.
func (s *Session) Submit(ctx context.Context, choice int, elapsed time.Duration) (Answer, error) {
	if s.phase != PhasePresenting {
		return Answer{}, ErrNotAwaitingAnswer
	}
	q := s.Questions[s.index]
	now := s.deps.Now()

	correct := choice == q.Answer
	grade := srs.GradeAnswer(correct, elapsed, s.deps.EasyThreshold)

	ans := Answer{
		QuestionID: q.ID,
		Choice:     choice,
		TimeSpent:  elapsed,
		Correct:    correct,
		Grade:      grade,
	}
	s.answers = append(s.answers, ans)

	card, ok := s.cards[q.ID]
	if !ok {
		card = srs.NewCard(q.ID, now)
	}
	card = srs.Schedule(card, grade, now)
	card.TotalCount++
	if correct {
		card.CorrectCount++
	}
	s.cards[q.ID] = card
	s.touched[q.ID] = true

	s.persistAnswer(ctx, ans, card)
	s.phase = PhaseGraded
	return ans, nil
}

func (s *Session) persistAnswer(ctx context.Context, ans Answer, card srs.Card) {
	if s.deps.UserID == "" {
		return
	}
	if s.deps.Cards != nil {
		s.deps.Cards.SaveCards(ctx, s.deps.UserID, []srs.Card{card})
	}
	if s.deps.History != nil {
		rec := store.AnswerRecord{
			SessionID:   s.ID,
			UserID:      s.deps.UserID,
			QuestionID:  ans.QuestionID,
			Answer:      ans.Choice,
			TimeSpentMs: ans.TimeSpent.Milliseconds(),
			IsCorrect:   ans.Correct,
			Grade:       ans.Grade,
		}
		if err := s.deps.History.Append(ctx, rec); err != nil {
			slog.Error("append answer history", "question", ans.QuestionID, "error", err)
		}
	}
	s.saveProgress(ctx)
}

func (s *Session) saveProgress(ctx context.Context) {
	if s.deps.Progress == nil || s.deps.UserID == "" {
		return
	}
	if err := s.deps.Progress.SetLastIndex(ctx, s.deps.UserID, s.Target, s.index); err != nil {
		slog.Error("save quiz progress", "target", s.Target, "error", err)
	}
	ids := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		ids[i] = q.ID
	}
	snap := store.IncompleteQuiz{QuestionIDs: ids, CurrentIndex: s.index}
	if err := s.deps.Progress.SaveIncomplete(ctx, s.deps.UserID, s.Target, snap); err != nil {
		slog.Error("save incomplete quiz", "target", s.Target, "error", err)
	}
}

// Next leaves the feedback view: either the next question or, past the
// last one, PhaseComplete. Completing clears the resume snapshot.
func (s *Session) Next(ctx context.Context) {
	if s.phase != PhaseGraded {
		return
	}
	s.index++
	if s.index >= len(s.Questions) {
		s.phase = PhaseComplete
		s.clearProgress(ctx)
		return
	}
	s.phase = PhasePresenting
}

// Restart rewinds to the first question with a fresh answer sheet.
// Cards already persisted keep their scheduling; a rerun simply grades
// them again.
func (s *Session) Restart(ctx context.Context) {
	if len(s.Questions) == 0 {
		return
	}
	s.index = 0
	s.answers = s.answers[:0]
	s.phase = PhasePresenting
	s.clearProgress(ctx)
}

func (s *Session) clearProgress(ctx context.Context) {
	if s.deps.Progress == nil || s.deps.UserID == "" {
		return
	}
	if err := s.deps.Progress.ClearIncomplete(ctx, s.deps.UserID, s.Target); err != nil {
		slog.Error("clear incomplete quiz", "target", s.Target, "error", err)
	}
	if err := s.deps.Progress.ClearLastIndex(ctx, s.deps.UserID, s.Target); err != nil {
		slog.Error("clear quiz progress", "target", s.Target, "error", err)
	}
}

// Score is the percentage of graded answers that were correct, rounded
// to the nearest integer. No answers means zero.
func (s *Session) Score() int {
	if len(s.answers) == 0 {
		return 0
	}
	correct := 0
	for _, a := range s.answers {
		if a.Correct {
			correct++
		}
	}
	return int(math.Round(100 * float64(correct) / float64(len(s.answers))))
}

// Summarize reports the score and the soonest upcoming review among
// the cards this session touched.
func (s *Session) Summarize() Summary {
	correct := 0
	for _, a := range s.answers {
		if a.Correct {
			correct++
		}
	}
	sum := Summary{
		Score:    s.Score(),
		Correct:  correct,
		Answered: len(s.answers),
		Total:    len(s.Questions),
	}
	touched := make([]srs.Card, 0, len(s.touched))
	for id := range s.touched {
		touched = append(touched, s.cards[id])
	}
	sum.NextReview, sum.HasNextReview = srs.NextReviewDate(touched, s.deps.Now())
	return sum
}
