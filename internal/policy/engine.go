// Package policy implements the threshold rules that merge the heuristic
// and AI toxicity signals into a moderation verdict.
package policy

// Outcome is the engine's decision for a scored text.
type Outcome string

const (
	// OutcomeApprove clears the text for publication.
	OutcomeApprove Outcome = "approve"
	// OutcomeFlag routes the text to human review.
	OutcomeFlag Outcome = "flag"
	// OutcomeReject blocks the text.
	OutcomeReject Outcome = "reject"
	// OutcomeDefer keeps the text pending until an AI attempt succeeds.
	OutcomeDefer Outcome = "defer"
)

// Verdict is the engine's output: the decision plus the score it was based on.
type Verdict struct {
	Outcome        Outcome
	EffectiveScore float64
}

// Engine holds the threshold policy. All fields are scores in [0, 1].
type Engine struct {
	// ToxicityThreshold rejects at or above.
	ToxicityThreshold float64
	// ReviewThreshold flags for review at or above (below ToxicityThreshold).
	ReviewThreshold float64
	// AIRejectionThreshold flags instead of deferring when the AI backend
	// was unavailable and the heuristic alone is at or above. Submissions
	// are never auto-approved on a heuristic-only signal.
	AIRejectionThreshold float64
}

// NewEngine creates an Engine with the given thresholds.
func NewEngine(toxicity, review, aiRejection float64) Engine {
	return Engine{
		ToxicityThreshold:    toxicity,
		ReviewThreshold:      review,
		AIRejectionThreshold: aiRejection,
	}
}

// Decide merges the heuristic score with an optional AI score. A nil
// aiScore means the AI attempt failed or has not run. When both signals
// are present the effective score is their max: either source can
// escalate, neither can downgrade the other. Deterministic.
func (e Engine) Decide(heuristicScore float64, aiScore *float64) Verdict {
	if aiScore == nil {
		if heuristicScore >= e.AIRejectionThreshold {
			return Verdict{Outcome: OutcomeFlag, EffectiveScore: heuristicScore}
		}
		return Verdict{Outcome: OutcomeDefer, EffectiveScore: heuristicScore}
	}

	effective := max(heuristicScore, *aiScore)

	switch {
	case effective >= e.ToxicityThreshold:
		return Verdict{Outcome: OutcomeReject, EffectiveScore: effective}
	case effective >= e.ReviewThreshold:
		return Verdict{Outcome: OutcomeFlag, EffectiveScore: effective}
	default:
		return Verdict{Outcome: OutcomeApprove, EffectiveScore: effective}
	}
}
