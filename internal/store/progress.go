package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// IncompleteQuiz is a saved mid-session snapshot: the question order
// that was being worked through and how far the user got.
type IncompleteQuiz struct {
	QuestionIDs  []string
	CurrentIndex int
}

// ProgressRepo stores advisory resume state per (user, unit target).
// Losing it costs a resume prompt, nothing more; cards stay the source
// of truth for mastery.
type ProgressRepo interface {
	LastIndex(ctx context.Context, userID, unitID string) (int, error)
	SetLastIndex(ctx context.Context, userID, unitID string, index int) error
	ClearLastIndex(ctx context.Context, userID, unitID string) error

	SaveIncomplete(ctx context.Context, userID, unitID string, snap IncompleteQuiz) error
	Incomplete(ctx context.Context, userID, unitID string) (*IncompleteQuiz, error)
	ClearIncomplete(ctx context.Context, userID, unitID string) error

	// DeleteAll removes all progress rows for the user.
	DeleteAll(ctx context.Context, userID string) error
}

type progressRepo struct {
	db *sql.DB
}

func (r *progressRepo) LastIndex(ctx context.Context, userID, unitID string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	var idx int
	err := r.db.QueryRowContext(ctx, `
		SELECT last_index FROM quiz_progress WHERE user_id = ? AND unit_id = ?
	`, userID, unitID).Scan(&idx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load quiz progress: %w", err)
	}
	return idx, nil
}

func (r *progressRepo) SetLastIndex(ctx context.Context, userID, unitID string, index int) error {
	if userID == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quiz_progress (user_id, unit_id, last_index)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, unit_id) DO UPDATE SET last_index = excluded.last_index
	`, userID, unitID, index)
	if err != nil {
		return fmt.Errorf("save quiz progress: %w", err)
	}
	return nil
}

func (r *progressRepo) ClearLastIndex(ctx context.Context, userID, unitID string) error {
	if userID == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM quiz_progress WHERE user_id = ? AND unit_id = ?
	`, userID, unitID)
	if err != nil {
		return fmt.Errorf("clear quiz progress: %w", err)
	}
	return nil
}

func (r *progressRepo) SaveIncomplete(ctx context.Context, userID, unitID string, snap IncompleteQuiz) error {
	if userID == "" {
		return nil
	}
	ids, err := json.Marshal(snap.QuestionIDs)
	if err != nil {
		return fmt.Errorf("marshal question ids: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO incomplete_quizzes (user_id, unit_id, question_ids, current_index)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, unit_id) DO UPDATE SET
			question_ids  = excluded.question_ids,
			current_index = excluded.current_index
	`, userID, unitID, string(ids), snap.CurrentIndex)
	if err != nil {
		return fmt.Errorf("save incomplete quiz: %w", err)
	}
	return nil
}

func (r *progressRepo) Incomplete(ctx context.Context, userID, unitID string) (*IncompleteQuiz, error) {
	if userID == "" {
		return nil, nil
	}
	var (
		rawIDs string
		snap   IncompleteQuiz
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT question_ids, current_index FROM incomplete_quizzes
		WHERE user_id = ? AND unit_id = ?
	`, userID, unitID).Scan(&rawIDs, &snap.CurrentIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load incomplete quiz: %w", err)
	}
	if err := json.Unmarshal([]byte(rawIDs), &snap.QuestionIDs); err != nil {
		return nil, fmt.Errorf("unmarshal question ids: %w", err)
	}
	return &snap, nil
}

func (r *progressRepo) ClearIncomplete(ctx context.Context, userID, unitID string) error {
	if userID == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM incomplete_quizzes WHERE user_id = ? AND unit_id = ?
	`, userID, unitID)
	if err != nil {
		return fmt.Errorf("clear incomplete quiz: %w", err)
	}
	return nil
}

func (r *progressRepo) DeleteAll(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM quiz_progress WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete quiz progress: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM incomplete_quizzes WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete incomplete quizzes: %w", err)
	}
	return nil
}
