package store

const schema = `
-- Per-user scheduling state, one row per (user, question).
CREATE TABLE IF NOT EXISTS cards (
    user_id             TEXT    NOT NULL,
    question_id         TEXT    NOT NULL,
    interval            INTEGER NOT NULL,
    repetitions         INTEGER NOT NULL,
    ease_factor         REAL    NOT NULL,
    due_date            INTEGER NOT NULL, -- unix millis
    last_reviewed       INTEGER,          -- unix millis
    consecutive_correct INTEGER NOT NULL DEFAULT 0,
    needs_review        INTEGER NOT NULL DEFAULT 1,
    mastery_level       TEXT    NOT NULL DEFAULT 'New',
    correct_count       INTEGER NOT NULL DEFAULT 0,
    total_count         INTEGER NOT NULL DEFAULT 0,

    PRIMARY KEY (user_id, question_id)
);

-- Append-only log of every submitted answer.
CREATE TABLE IF NOT EXISTS answer_history (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id    TEXT    NOT NULL,
    user_id       TEXT    NOT NULL,
    question_id   TEXT    NOT NULL,
    answer        INTEGER NOT NULL,
    time_spent_ms INTEGER NOT NULL,
    is_correct    INTEGER NOT NULL,
    grade         INTEGER NOT NULL,
    created_at    INTEGER NOT NULL  -- unix millis
);

CREATE INDEX IF NOT EXISTS idx_answer_history_session ON answer_history(session_id);
CREATE INDEX IF NOT EXISTS idx_answer_history_user ON answer_history(user_id, created_at);

-- Advisory resume state. Not authoritative: cards remain the source of
-- truth for mastery.
CREATE TABLE IF NOT EXISTS quiz_progress (
    user_id    TEXT    NOT NULL,
    unit_id    TEXT    NOT NULL,
    last_index INTEGER NOT NULL,

    PRIMARY KEY (user_id, unit_id)
);

CREATE TABLE IF NOT EXISTS incomplete_quizzes (
    user_id       TEXT    NOT NULL,
    unit_id       TEXT    NOT NULL,
    question_ids  TEXT    NOT NULL, -- JSON array
    current_index INTEGER NOT NULL,

    PRIMARY KEY (user_id, unit_id)
);
`
