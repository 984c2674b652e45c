package api

import (
	"github.com/filmpulse/arbiter/internal/classifier"
	"github.com/filmpulse/arbiter/internal/heuristic"
	"github.com/filmpulse/arbiter/internal/moderation"
	"github.com/filmpulse/arbiter/internal/policy"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Moderation moderation.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	cfg := runtime.Config

	engine := policy.NewEngine(
		cfg.Moderation.ToxicityThreshold,
		cfg.Moderation.ReviewThreshold,
		cfg.Moderation.AIRejectionThreshold,
	)

	ai := classifier.New(&cfg.Classifier, runtime.Logger)

	moderationSystem := moderation.New(
		runtime.Database.Connection(),
		heuristic.New(),
		engine,
		ai,
		moderation.RetryPolicy{
			MaxAttempts:   cfg.Moderation.MaxAttempts,
			MaxPendingAge: cfg.Moderation.MaxPendingAgeDuration(),
			SweepLimit:    cfg.Moderation.SweepLimit,
			SweepWorkers:  cfg.Moderation.SweepWorkers,
		},
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Moderation: moderationSystem,
	}
}
