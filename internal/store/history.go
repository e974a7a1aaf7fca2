package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vzwtim/swift-revise/internal/srs"
)

// AnswerRecord is one logged answer, as stored.
type AnswerRecord struct {
	ID          int64
	SessionID   string
	UserID      string
	QuestionID  string
	Answer      int
	TimeSpentMs int64
	IsCorrect   bool
	Grade       srs.Grade
	CreatedAt   time.Time
}

// HistoryRepo appends and queries the answer log. Appends are treated
// as fire-and-forget by the quiz runner; a failed insert never blocks a
// session.
type HistoryRepo interface {
	Append(ctx context.Context, rec AnswerRecord) error

	// BySession returns a session's answers in insertion order.
	BySession(ctx context.Context, sessionID string) ([]AnswerRecord, error)

	// LatestSession returns the id of the user's most recent session,
	// or "" when no answers exist.
	LatestSession(ctx context.Context, userID string) (string, error)

	// CountSince counts a user's answers at or after the cutoff. Used
	// for the daily target display.
	CountSince(ctx context.Context, userID string, cutoff time.Time) (int, error)

	// DeleteAll removes every record for the user.
	DeleteAll(ctx context.Context, userID string) error
}

type historyRepo struct {
	db *sql.DB
}

func (r *historyRepo) Append(ctx context.Context, rec AnswerRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO answer_history
			(session_id, user_id, question_id, answer, time_spent_ms, is_correct, grade, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.SessionID, rec.UserID, rec.QuestionID, rec.Answer, rec.TimeSpentMs,
		rec.IsCorrect, int(rec.Grade), createdAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("append answer history: %w", err)
	}
	return nil
}

func (r *historyRepo) BySession(ctx context.Context, sessionID string) ([]AnswerRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, user_id, question_id, answer, time_spent_ms, is_correct, grade, created_at
		FROM answer_history
		WHERE session_id = ?
		ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query answer history: %w", err)
	}
	defer rows.Close()

	var recs []AnswerRecord
	for rows.Next() {
		var (
			rec       AnswerRecord
			grade     int
			createdAt int64
		)
		err := rows.Scan(&rec.ID, &rec.SessionID, &rec.UserID, &rec.QuestionID,
			&rec.Answer, &rec.TimeSpentMs, &rec.IsCorrect, &grade, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan answer row: %w", err)
		}
		rec.Grade = srs.Grade(grade)
		rec.CreatedAt = time.UnixMilli(createdAt)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *historyRepo) LatestSession(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", nil
	}
	var id string
	err := r.db.QueryRowContext(ctx, `
		SELECT session_id FROM answer_history
		WHERE user_id = ?
		ORDER BY id DESC LIMIT 1
	`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest session: %w", err)
	}
	return id, nil
}

func (r *historyRepo) CountSince(ctx context.Context, userID string, cutoff time.Time) (int, error) {
	if userID == "" {
		return 0, nil
	}
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM answer_history
		WHERE user_id = ? AND created_at >= ?
	`, userID, cutoff.UnixMilli()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count answers: %w", err)
	}
	return n, nil
}

func (r *historyRepo) DeleteAll(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM answer_history WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete answer history: %w", err)
	}
	return nil
}
