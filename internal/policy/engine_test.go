package policy_test

import (
	"testing"

	"github.com/filmpulse/arbiter/internal/policy"
)

func ptr(f float64) *float64 { return &f }

func TestDecideWithAIScore(t *testing.T) {
	engine := policy.NewEngine(0.7, 0.5, 0.2)

	tests := []struct {
		name      string
		heuristic float64
		ai        float64
		want      policy.Outcome
		effective float64
	}{
		{"both low approves", 0.1, 0.1, policy.OutcomeApprove, 0.1},
		{"review band flags", 0.2, 0.55, policy.OutcomeFlag, 0.55},
		{"toxic band rejects", 0.3, 0.9, policy.OutcomeReject, 0.9},
		{"heuristic escalates over ai", 0.8, 0.1, policy.OutcomeReject, 0.8},
		{"ai escalates over heuristic", 0.1, 0.8, policy.OutcomeReject, 0.8},
		{"exact toxicity threshold rejects", 0.0, 0.7, policy.OutcomeReject, 0.7},
		{"exact review threshold flags", 0.5, 0.0, policy.OutcomeFlag, 0.5},
		{"just below review approves", 0.49, 0.4, policy.OutcomeApprove, 0.49},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			verdict := engine.Decide(tc.heuristic, ptr(tc.ai))
			if verdict.Outcome != tc.want {
				t.Errorf("Outcome = %v, want %v", verdict.Outcome, tc.want)
			}
			if verdict.EffectiveScore != tc.effective {
				t.Errorf("EffectiveScore = %v, want %v", verdict.EffectiveScore, tc.effective)
			}
		})
	}
}

func TestDecideWithoutAIScore(t *testing.T) {
	engine := policy.NewEngine(0.7, 0.5, 0.2)

	t.Run("low heuristic defers", func(t *testing.T) {
		verdict := engine.Decide(0.1, nil)
		if verdict.Outcome != policy.OutcomeDefer {
			t.Errorf("Outcome = %v, want defer", verdict.Outcome)
		}
	})

	t.Run("elevated heuristic flags instead of rejecting", func(t *testing.T) {
		verdict := engine.Decide(0.9, nil)
		if verdict.Outcome != policy.OutcomeFlag {
			t.Errorf("Outcome = %v, want flag", verdict.Outcome)
		}
	})

	t.Run("exact rejection threshold flags", func(t *testing.T) {
		verdict := engine.Decide(0.2, nil)
		if verdict.Outcome != policy.OutcomeFlag {
			t.Errorf("Outcome = %v, want flag", verdict.Outcome)
		}
	})

	t.Run("never approves on heuristic alone", func(t *testing.T) {
		for _, score := range []float64{0.0, 0.1, 0.19, 0.2, 0.5, 0.9, 1.0} {
			verdict := engine.Decide(score, nil)
			if verdict.Outcome == policy.OutcomeApprove {
				t.Errorf("Decide(%v, nil) approved; heuristic-only input must defer or flag", score)
			}
		}
	})
}

func TestDecideDeterministic(t *testing.T) {
	engine := policy.NewEngine(0.7, 0.5, 0.2)

	first := engine.Decide(0.6, ptr(0.3))
	for range 3 {
		if got := engine.Decide(0.6, ptr(0.3)); got != first {
			t.Fatalf("repeated decision diverged: %+v vs %+v", got, first)
		}
	}
}
