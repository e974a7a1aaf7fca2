package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzwtim/swift-revise/internal/catalog"
	"github.com/vzwtim/swift-revise/internal/srs"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testCatalog(t *testing.T, ids ...string) *catalog.Catalog {
	t.Helper()
	var questions []catalog.Question
	for _, id := range ids {
		questions = append(questions, catalog.Question{
			ID: id, SubjectID: "s1", UnitID: "u1",
			Prompt: "?", Choices: []string{"a", "b"}, Answer: 0,
		})
	}
	cat, err := catalog.New([]catalog.Subject{{
		ID: "s1", Name: "S",
		Units: []catalog.Unit{{ID: "u1", Name: "U", SubjectID: "s1", Questions: questions}},
	}})
	require.NoError(t, err)
	return cat
}

func TestCardRepo_RoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	repo := st.Cards()

	now := time.Now().Truncate(time.Millisecond)
	reviewed := now.Add(-time.Hour).Truncate(time.Millisecond)
	card := srs.Card{
		QuestionID:         "q1",
		Interval:           6,
		Repetitions:        2,
		EaseFactor:         2.6,
		DueDate:            now.Add(6 * 24 * time.Hour),
		LastReviewed:       &reviewed,
		ConsecutiveCorrect: 2,
		NeedsReview:        true,
		Mastery:            srs.LevelGood,
		CorrectCount:       5,
		TotalCount:         7,
	}

	repo.SaveCards(ctx, "alice", []srs.Card{card})

	loaded, err := repo.LoadAll(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded["q1"]
	assert.Equal(t, card.Interval, got.Interval)
	assert.Equal(t, card.Repetitions, got.Repetitions)
	assert.InDelta(t, card.EaseFactor, got.EaseFactor, 1e-9)
	assert.True(t, card.DueDate.Equal(got.DueDate))
	require.NotNil(t, got.LastReviewed)
	assert.True(t, reviewed.Equal(*got.LastReviewed))
	assert.Equal(t, srs.LevelGood, got.Mastery)
	assert.Equal(t, 5, got.CorrectCount)
	assert.Equal(t, 7, got.TotalCount)
}

func TestCardRepo_UpsertDoesNotDuplicate(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	repo := st.Cards()

	card := srs.NewCard("q1", time.Now())
	repo.SaveCards(ctx, "alice", []srs.Card{card})

	card.Mastery = srs.LevelGreat
	card.TotalCount = 3
	repo.SaveCards(ctx, "alice", []srs.Card{card})

	var count int
	require.NoError(t, st.DB().QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&count))
	assert.Equal(t, 1, count, "upsert must not create a second row for the same (user, question)")

	loaded, err := repo.LoadAll(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, srs.LevelGreat, loaded["q1"].Mastery)
}

func TestCardRepo_UsersAreIsolated(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	repo := st.Cards()

	repo.SaveCards(ctx, "alice", []srs.Card{srs.NewCard("q1", time.Now())})
	repo.SaveCards(ctx, "bob", []srs.Card{srs.NewCard("q1", time.Now()), srs.NewCard("q2", time.Now())})

	aliceCards, err := repo.LoadAll(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, aliceCards, 1)

	bobCards, err := repo.LoadAll(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, bobCards, 2)
}

func TestCardRepo_EmptyUserIsNoop(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	repo := st.Cards()

	repo.SaveCards(ctx, "", []srs.Card{srs.NewCard("q1", time.Now())})

	loaded, err := repo.LoadAll(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, loaded)

	var count int
	require.NoError(t, st.DB().QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&count))
	assert.Zero(t, count)
}

func TestCardRepo_LoadAllPaginates(t *testing.T) {
	st := openTestStore(t)
	st.SetPageSize(2)
	ctx := context.Background()
	repo := st.Cards()

	now := time.Now()
	var cards []srs.Card
	for _, id := range []string{"q1", "q2", "q3", "q4", "q5"} {
		cards = append(cards, srs.NewCard(id, now))
	}
	repo.SaveCards(ctx, "alice", cards)

	loaded, err := repo.LoadAll(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, loaded, 5, "pagination must not drop rows beyond the first page")
}

func TestReconcile_CreatesMissingCards(t *testing.T) {
	cat := testCatalog(t, "q1", "q2", "q3")
	now := time.Now()

	existing := map[string]srs.Card{"q2": srs.NewCard("q2", now.Add(-time.Hour))}

	complete, created := Reconcile(existing, cat, now)
	assert.Len(t, complete, 3)
	require.Len(t, created, 2)
	for _, c := range created {
		assert.Equal(t, srs.LevelNew, c.Mastery)
		assert.True(t, c.NeedsReview)
		assert.Equal(t, 1, c.Interval)
	}

	// Second pass over the completed map creates nothing.
	again, createdAgain := Reconcile(complete, cat, now)
	assert.Len(t, again, 3)
	assert.Empty(t, createdAgain)
}

func TestHistoryRepo_AppendAndQuery(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	repo := st.History()

	base := time.Now()
	for i, correct := range []bool{true, false, true} {
		require.NoError(t, repo.Append(ctx, AnswerRecord{
			SessionID:   "sess-1",
			UserID:      "alice",
			QuestionID:  "q1",
			Answer:      i,
			TimeSpentMs: int64(1000 * (i + 1)),
			IsCorrect:   correct,
			Grade:       srs.GradeHard,
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}))
	}

	recs, err := repo.BySession(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, 0, recs[0].Answer, "records come back in insertion order")
	assert.False(t, recs[1].IsCorrect)
	assert.Equal(t, srs.GradeHard, recs[2].Grade)

	n, err := repo.CountSince(ctx, "alice", base.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.CountSince(ctx, "", base)
	require.NoError(t, err)
	assert.Zero(t, n, "unauthenticated count is zero, not an error")

	latest, err := repo.LatestSession(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", latest)

	latest, err = repo.LatestSession(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, latest)
}

func TestProgressRepo_LastIndex(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	repo := st.Progress()

	idx, err := repo.LastIndex(ctx, "alice", "u1")
	require.NoError(t, err)
	assert.Zero(t, idx)

	require.NoError(t, repo.SetLastIndex(ctx, "alice", "u1", 4))
	require.NoError(t, repo.SetLastIndex(ctx, "alice", "u1", 7))

	idx, err = repo.LastIndex(ctx, "alice", "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, idx)

	require.NoError(t, repo.ClearLastIndex(ctx, "alice", "u1"))
	idx, err = repo.LastIndex(ctx, "alice", "u1")
	require.NoError(t, err)
	assert.Zero(t, idx)
}

func TestProgressRepo_IncompleteSnapshot(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	repo := st.Progress()

	snap, err := repo.Incomplete(ctx, "alice", "u1")
	require.NoError(t, err)
	assert.Nil(t, snap)

	require.NoError(t, repo.SaveIncomplete(ctx, "alice", "u1", IncompleteQuiz{
		QuestionIDs:  []string{"q3", "q1", "q2"},
		CurrentIndex: 1,
	}))

	snap, err = repo.Incomplete(ctx, "alice", "u1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, []string{"q3", "q1", "q2"}, snap.QuestionIDs)
	assert.Equal(t, 1, snap.CurrentIndex)

	require.NoError(t, repo.ClearIncomplete(ctx, "alice", "u1"))
	snap, err = repo.Incomplete(ctx, "alice", "u1")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestDeleteAll_ClearsUserState(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	st.Cards().SaveCards(ctx, "alice", []srs.Card{srs.NewCard("q1", time.Now())})
	require.NoError(t, st.History().Append(ctx, AnswerRecord{SessionID: "s", UserID: "alice", QuestionID: "q1"}))
	require.NoError(t, st.Progress().SetLastIndex(ctx, "alice", "u1", 2))

	require.NoError(t, st.Cards().DeleteAll(ctx, "alice"))
	require.NoError(t, st.History().DeleteAll(ctx, "alice"))
	require.NoError(t, st.Progress().DeleteAll(ctx, "alice"))

	cards, err := st.Cards().LoadAll(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, cards)

	n, err := st.History().CountSince(ctx, "alice", time.Time{})
	require.NoError(t, err)
	assert.Zero(t, n)
}
