package moderation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/filmpulse/arbiter/internal/classifier"
	"github.com/filmpulse/arbiter/internal/heuristic"
	"github.com/filmpulse/arbiter/internal/policy"
	"github.com/filmpulse/arbiter/pkg/pagination"
	"github.com/filmpulse/arbiter/pkg/query"
	"github.com/filmpulse/arbiter/pkg/repository"
)

const recordColumns = `id, content_id, raw_text, heuristic_score, ai_score,
		ai_processed, ai_rationale, ai_attempts, status, created_at, updated_at`

type repo struct {
	db         *sql.DB
	analyzer   *heuristic.Analyzer
	engine     policy.Engine
	ai         Classifier
	retry      RetryPolicy
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a moderation repository implementing the System interface.
func New(
	db *sql.DB,
	analyzer *heuristic.Analyzer,
	engine policy.Engine,
	ai Classifier,
	retry RetryPolicy,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		analyzer:   analyzer,
		engine:     engine,
		ai:         ai,
		retry:      retry,
		logger:     logger.With("system", "moderation"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Submit(ctx context.Context, cmd SubmitCommand) (*Record, bool, error) {
	if strings.TrimSpace(cmd.ContentID) == "" {
		return nil, false, ErrBlankContentID
	}

	analysis := r.analyzer.Analyze(cmd.Text)

	insertQ := fmt.Sprintf(`
		INSERT INTO moderation_records (content_id, raw_text, heuristic_score)
		VALUES ($1, $2, $3)
		ON CONFLICT (content_id) DO NOTHING
		RETURNING %s`, recordColumns)

	rec, err := repository.QueryOne(ctx, r.db, insertQ,
		[]any{cmd.ContentID, cmd.Text, analysis.Score},
		scanRecord,
	)
	if err != nil {
		// No row returned means a concurrent submission won the insert;
		// duplicate submissions are an idempotent no-op.
		if errors.Is(err, sql.ErrNoRows) {
			existing, serr := r.Status(ctx, cmd.ContentID)
			return existing, false, serr
		}
		return nil, false, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("moderation record created",
		"id", rec.ID,
		"content_id", rec.ContentID,
		"heuristic_score", rec.HeuristicScore,
		"matched_terms", analysis.BadTermCount,
	)

	resolved, err := r.resolve(ctx, &rec)
	if err != nil {
		// Resolution failures never surface to the submitter; the record
		// keeps its provisional state and the sweep picks it up.
		r.logger.Warn("inline resolution failed",
			"id", rec.ID,
			"error", err,
		)
		return &rec, true, nil
	}

	return resolved, true, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Record, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) Status(ctx context.Context, contentID string) (*Record, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ContentID", contentID)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "ContentID", "RawText")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count moderation records: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query moderation records: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Backlog(ctx context.Context, limit int) ([]Record, error) {
	if limit < 1 {
		limit = r.retry.SweepLimit
	}

	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("AIProcessed", false).
		WhereEquals("Status", string(StatusPending)).
		BuildLimited(limit)

	items, err := repository.QueryMany(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query moderation backlog: %w", err)
	}
	return items, nil
}

func (r *repo) Counts(ctx context.Context) (map[Status]int, error) {
	counts := make(map[Status]int, len(Statuses()))
	for _, s := range Statuses() {
		counts[s] = 0
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM moderation_records GROUP BY status",
	)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *repo) Sweep(ctx context.Context) (*SweepReport, error) {
	backlog, err := r.Backlog(ctx, r.retry.SweepLimit)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{Scanned: len(backlog)}
	if len(backlog) == 0 {
		return report, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.retry.SweepWorkers)

	for i := range backlog {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			outcome := r.sweepOne(gctx, &backlog[i])

			mu.Lock()
			switch outcome {
			case sweepResolved:
				report.Resolved++
			case sweepEscalated:
				report.Escalated++
			case sweepDeferred:
				report.Deferred++
			}
			mu.Unlock()
			return nil
		})
	}

	g.Wait()

	r.logger.Info("backlog sweep complete",
		"scanned", report.Scanned,
		"resolved", report.Resolved,
		"escalated", report.Escalated,
		"deferred", report.Deferred,
	)
	return report, nil
}

type sweepOutcome int

const (
	sweepResolved sweepOutcome = iota
	sweepEscalated
	sweepDeferred
)

// sweepOne re-attempts AI classification for a single backlog record.
// Individual failures never abort the sweep.
func (r *repo) sweepOne(ctx context.Context, rec *Record) sweepOutcome {
	result, err := r.ai.Classify(ctx, rec.RawText)
	if err == nil {
		verdict := r.engine.Decide(rec.HeuristicScore, &result.Score)
		if _, err := r.applyVerdict(ctx, rec.ID, result, verdict); err != nil {
			r.logger.Error("persist sweep verdict failed", "id", rec.ID, "error", err)
			return sweepDeferred
		}
		return sweepResolved
	}

	r.logger.Warn("sweep classification failed", "id", rec.ID, "error", err)

	if shouldEscalate(rec.AIAttempts+1, rec.CreatedAt, r.retry, time.Now()) {
		if err := r.transitionPending(ctx, rec.ID, StatusFlagged); err != nil {
			r.logger.Error("escalate record failed", "id", rec.ID, "error", err)
			return sweepDeferred
		}
		r.logger.Info("record escalated to review",
			"id", rec.ID,
			"attempts", rec.AIAttempts+1,
		)
		return sweepEscalated
	}

	if verdict := r.engine.Decide(rec.HeuristicScore, nil); verdict.Outcome == policy.OutcomeFlag {
		if err := r.transitionPending(ctx, rec.ID, StatusFlagged); err != nil {
			r.logger.Error("flag record failed", "id", rec.ID, "error", err)
		}
		return sweepEscalated
	}

	if err := r.transitionPending(ctx, rec.ID, StatusPending); err != nil {
		r.logger.Error("defer record failed", "id", rec.ID, "error", err)
	}
	return sweepDeferred
}

// resolve attempts one AI classification and persists the outcome. On
// backend failure the fallback policy applies: a heuristic score at or
// above the AI-rejection threshold flags the record conservatively,
// anything below stays pending for the sweep. The AI fields remain unset
// either way, keeping the record re-attemptable.
func (r *repo) resolve(ctx context.Context, rec *Record) (*Record, error) {
	result, err := r.ai.Classify(ctx, rec.RawText)
	if err != nil {
		verdict := r.engine.Decide(rec.HeuristicScore, nil)

		status := StatusPending
		if verdict.Outcome == policy.OutcomeFlag {
			status = StatusFlagged
		}

		if terr := r.transitionPending(ctx, rec.ID, status); terr != nil {
			return nil, fmt.Errorf("record fallback state: %w", terr)
		}

		r.logger.Warn("ai classification unavailable",
			"id", rec.ID,
			"fallback_status", status,
			"error", err,
		)
		return r.Find(ctx, rec.ID)
	}

	verdict := r.engine.Decide(rec.HeuristicScore, &result.Score)
	return r.applyVerdict(ctx, rec.ID, result, verdict)
}

// applyVerdict writes the AI fields and the decided status in one atomic
// update. The pending guard makes transitions monotone and re-attempts on
// already-resolved records a no-op.
func (r *repo) applyVerdict(
	ctx context.Context,
	id uuid.UUID,
	result *classifier.Result,
	verdict policy.Verdict,
) (*Record, error) {
	status, err := statusFor(verdict.Outcome)
	if err != nil {
		return nil, err
	}

	updateQ := fmt.Sprintf(`
		UPDATE moderation_records
		SET ai_score = $1, ai_processed = TRUE, ai_rationale = $2,
			ai_attempts = ai_attempts + 1, status = $3, updated_at = NOW()
		WHERE id = $4 AND status = 'pending'
		RETURNING %s`, recordColumns)

	rec, err := repository.QueryOne(ctx, r.db, updateQ,
		[]any{result.Score, result.Rationale, status, id},
		scanRecord,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Already resolved by a concurrent attempt.
			return r.Find(ctx, id)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("moderation record resolved",
		"id", rec.ID,
		"content_id", rec.ContentID,
		"status", rec.Status,
		"effective_score", verdict.EffectiveScore,
	)
	return &rec, nil
}

// transitionPending bumps the attempt counter and moves a pending record
// to status without touching the AI fields. A no-op when the record has
// already left pending.
func (r *repo) transitionPending(ctx context.Context, id uuid.UUID, status Status) error {
	err := repository.ExecExpectOne(ctx, r.db, `
		UPDATE moderation_records
		SET status = $1, ai_attempts = ai_attempts + 1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending'`,
		status, id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}

// shouldEscalate reports whether a pending record has exhausted its retry
// budget, by attempt count or by age.
func shouldEscalate(attempts int, createdAt time.Time, retry RetryPolicy, now time.Time) bool {
	if retry.MaxAttempts > 0 && attempts >= retry.MaxAttempts {
		return true
	}
	if retry.MaxPendingAge > 0 && now.Sub(createdAt) >= retry.MaxPendingAge {
		return true
	}
	return false
}

func statusFor(outcome policy.Outcome) (Status, error) {
	switch outcome {
	case policy.OutcomeApprove:
		return StatusApproved, nil
	case policy.OutcomeFlag:
		return StatusFlagged, nil
	case policy.OutcomeReject:
		return StatusRejected, nil
	default:
		return "", fmt.Errorf("outcome %q has no stored status", outcome)
	}
}
