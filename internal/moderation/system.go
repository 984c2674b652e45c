package moderation

import (
	"context"

	"github.com/google/uuid"

	"github.com/filmpulse/arbiter/internal/classifier"
	"github.com/filmpulse/arbiter/pkg/pagination"
)

// Classifier is the AI backend seam. Satisfied by *classifier.Client.
type Classifier interface {
	Classify(ctx context.Context, text string) (*classifier.Result, error)
}

// System defines the public contract for moderation domain operations.
type System interface {
	Handler() *Handler

	// Submit runs the heuristic, creates (or returns the existing) record
	// for the content id, and attempts AI resolution inline. The bool
	// reports whether a new record was created. An AI failure never fails
	// the submission; the record stays eligible for the sweep.
	Submit(ctx context.Context, cmd SubmitCommand) (*Record, bool, error)

	Find(ctx context.Context, id uuid.UUID) (*Record, error)
	Status(ctx context.Context, contentID string) (*Record, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Record], error)

	// Backlog returns records awaiting a successful AI attempt
	// (ai_processed = false, status = pending), oldest first.
	Backlog(ctx context.Context, limit int) ([]Record, error)

	// Counts reports the number of records per status.
	Counts(ctx context.Context) (map[Status]int, error)

	// Sweep re-attempts AI classification for the backlog. Safe to run
	// concurrently with submissions and to re-run on the same records.
	Sweep(ctx context.Context) (*SweepReport, error)
}
