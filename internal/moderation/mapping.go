package moderation

import (
	"net/url"

	"github.com/filmpulse/arbiter/pkg/query"
	"github.com/filmpulse/arbiter/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "moderation_records", "m").
	Project("id", "ID").
	Project("content_id", "ContentID").
	Project("raw_text", "RawText").
	Project("heuristic_score", "HeuristicScore").
	Project("ai_score", "AIScore").
	Project("ai_processed", "AIProcessed").
	Project("ai_rationale", "AIRationale").
	Project("ai_attempts", "AIAttempts").
	Project("status", "Status").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

// Work-queue consumers take the oldest records first.
var defaultSort = query.SortField{Field: "CreatedAt"}

// Filters contains optional criteria for moderation queries.
// Nil fields are ignored.
type Filters struct {
	Status    *string `json:"status,omitempty"`
	ContentID *string `json:"content_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("ContentID", f.ContentID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if c := values.Get("content_id"); c != "" {
		f.ContentID = &c
	}

	return f
}

func scanRecord(s repository.Scanner) (Record, error) {
	var r Record
	err := s.Scan(
		&r.ID,
		&r.ContentID,
		&r.RawText,
		&r.HeuristicScore,
		&r.AIScore,
		&r.AIProcessed,
		&r.AIRationale,
		&r.AIAttempts,
		&r.Status,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}
