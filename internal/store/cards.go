package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/vzwtim/swift-revise/internal/catalog"
	"github.com/vzwtim/swift-revise/internal/srs"
)

// CardRepo persists per-user card scheduling state.
//
// An empty user id means no one is signed in; loads return an empty map
// and saves are no-ops, both without error. Save failures are logged
// and swallowed here: losing one write must not take down an in-progress
// quiz.
type CardRepo interface {
	// LoadAll fetches every card for the user, keyed by question id.
	LoadAll(ctx context.Context, userID string) (map[string]srs.Card, error)

	// SaveCards upserts cards keyed on (user, question).
	SaveCards(ctx context.Context, userID string, cards []srs.Card)

	// DeleteAll removes every card for the user.
	DeleteAll(ctx context.Context, userID string) error
}

type cardRepo struct {
	db       *sql.DB
	pageSize int
}

const cardColumns = `question_id, interval, repetitions, ease_factor, due_date,
	last_reviewed, consecutive_correct, needs_review, mastery_level,
	correct_count, total_count`

func (r *cardRepo) LoadAll(ctx context.Context, userID string) (map[string]srs.Card, error) {
	cards := make(map[string]srs.Card)
	if userID == "" {
		return cards, nil
	}

	// Page through the full result set. Stopping after one page would
	// silently truncate scheduling state once a user owns more cards
	// than the page size.
	for offset := 0; ; offset += r.pageSize {
		n, err := r.loadPage(ctx, userID, offset, cards)
		if err != nil {
			return nil, err
		}
		if n < r.pageSize {
			return cards, nil
		}
	}
}

func (r *cardRepo) loadPage(ctx context.Context, userID string, offset int, out map[string]srs.Card) (int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+cardColumns+`
		FROM cards WHERE user_id = ?
		ORDER BY question_id
		LIMIT ? OFFSET ?
	`, userID, r.pageSize, offset)
	if err != nil {
		return 0, fmt.Errorf("load cards page at %d: %w", offset, err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return 0, fmt.Errorf("scan card row: %w", err)
		}
		out[card.QuestionID] = card
		n++
	}
	return n, rows.Err()
}

func (r *cardRepo) SaveCards(ctx context.Context, userID string, cards []srs.Card) {
	if userID == "" || len(cards) == 0 {
		return
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("save cards: begin tx", "user", userID, "error", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (user_id, `+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, question_id) DO UPDATE SET
			interval            = excluded.interval,
			repetitions         = excluded.repetitions,
			ease_factor         = excluded.ease_factor,
			due_date            = excluded.due_date,
			last_reviewed       = excluded.last_reviewed,
			consecutive_correct = excluded.consecutive_correct,
			needs_review        = excluded.needs_review,
			mastery_level       = excluded.mastery_level,
			correct_count       = excluded.correct_count,
			total_count         = excluded.total_count
	`)
	if err != nil {
		slog.Error("save cards: prepare", "user", userID, "error", err)
		return
	}
	defer stmt.Close()

	for _, c := range cards {
		var lastReviewed any
		if c.LastReviewed != nil {
			lastReviewed = c.LastReviewed.UnixMilli()
		}
		_, err := stmt.ExecContext(ctx,
			userID, c.QuestionID, c.Interval, c.Repetitions, c.EaseFactor,
			c.DueDate.UnixMilli(), lastReviewed, c.ConsecutiveCorrect,
			c.NeedsReview, string(c.Mastery), c.CorrectCount, c.TotalCount,
		)
		if err != nil {
			slog.Error("save card", "user", userID, "question", c.QuestionID, "error", err)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("save cards: commit", "user", userID, "count", len(cards), "error", err)
	}
}

func (r *cardRepo) DeleteAll(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete cards: %w", err)
	}
	return nil
}

func scanCard(rows *sql.Rows) (srs.Card, error) {
	var (
		c            srs.Card
		dueMillis    int64
		lastReviewed sql.NullInt64
		mastery      string
	)
	err := rows.Scan(
		&c.QuestionID, &c.Interval, &c.Repetitions, &c.EaseFactor,
		&dueMillis, &lastReviewed, &c.ConsecutiveCorrect, &c.NeedsReview,
		&mastery, &c.CorrectCount, &c.TotalCount,
	)
	if err != nil {
		return srs.Card{}, err
	}
	c.DueDate = time.UnixMilli(dueMillis)
	if lastReviewed.Valid {
		t := time.UnixMilli(lastReviewed.Int64)
		c.LastReviewed = &t
	}
	c.Mastery = srs.MasteryLevel(mastery)
	if !c.Mastery.Valid() {
		c.Mastery = srs.LevelNew
	}
	return c, nil
}

// Reconcile synthesizes a card for every catalog question the user has
// no card for yet. It returns the completed map (existing + new) and
// the batch of newly created cards for the caller to persist. Running
// it twice over the same inputs creates nothing the second time.
func Reconcile(cards map[string]srs.Card, cat *catalog.Catalog, now time.Time) (map[string]srs.Card, []srs.Card) {
	complete := make(map[string]srs.Card, cat.QuestionCount())
	for id, c := range cards {
		complete[id] = c
	}

	var created []srs.Card
	for _, q := range cat.AllQuestions() {
		if _, ok := complete[q.ID]; ok {
			continue
		}
		card := srs.NewCard(q.ID, now)
		complete[q.ID] = card
		created = append(created, card)
	}
	return complete, created
}
