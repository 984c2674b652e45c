// Package moderation implements the review moderation domain: the record
// store, the coordinator that merges heuristic and AI signals into a
// persisted verdict, the backlog sweeper, and the HTTP handler.
package moderation

import (
	"time"

	"github.com/google/uuid"
)

// Status is a moderation record's lifecycle state. Only pending records
// are touched by automated processing; the other states are terminal for
// automation (flagged records may still be resolved by a human).
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusFlagged  Status = "flagged"
)

// Terminal reports whether automated processing is finished with s.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// Statuses lists every status, for count maps and validation.
func Statuses() []Status {
	return []Status{StatusPending, StatusApproved, StatusRejected, StatusFlagged}
}

// Record is the moderation state of one content item. RawText is an
// immutable snapshot of the text at submission time; HeuristicScore is set
// once at creation; the AI fields and status are written together when an
// AI attempt resolves.
type Record struct {
	ID             uuid.UUID `json:"id"`
	ContentID      string    `json:"content_id"`
	RawText        string    `json:"raw_text"`
	HeuristicScore float64   `json:"heuristic_score"`
	AIScore        *float64  `json:"ai_score"`
	AIProcessed    bool      `json:"ai_processed"`
	AIRationale    *string   `json:"ai_rationale"`
	AIAttempts     int       `json:"ai_attempts"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SubmitCommand carries a submission from the review flow.
type SubmitCommand struct {
	ContentID string `json:"content_id"`
	Text      string `json:"text"`
}

// SweepReport summarizes one pass over the AI backlog.
type SweepReport struct {
	// Scanned is the number of backlog records examined.
	Scanned int `json:"scanned"`
	// Resolved records received a usable AI verdict.
	Resolved int `json:"resolved"`
	// Escalated records exhausted their retry budget and were flagged.
	Escalated int `json:"escalated"`
	// Deferred records failed again and remain pending for a later sweep.
	Deferred int `json:"deferred"`
}

// RetryPolicy bounds how long a record may wait for a successful AI
// attempt before being escalated to human review.
type RetryPolicy struct {
	MaxAttempts   int
	MaxPendingAge time.Duration
	SweepLimit    int
	SweepWorkers  int
}
