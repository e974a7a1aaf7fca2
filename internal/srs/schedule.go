package srs

import "time"

// InitialEaseFactor is the SM-2 ease factor assigned to new cards.
const InitialEaseFactor = 2.5

// MinEaseFactor is the floor the ease factor is clamped to after every update.
const MinEaseFactor = 1.3

// DefaultEasyThreshold is the answer time below which a correct answer
// grades as easy. Overridable per session via config.
const DefaultEasyThreshold = 3 * time.Second

// ReviewClearStreak is the consecutive-correct count at which a card
// drops out of review-filtered sessions.
const ReviewClearStreak = 3

// day mirrors the 86,400,000 ms day the due-date arithmetic is defined in.
const day = 24 * time.Hour
