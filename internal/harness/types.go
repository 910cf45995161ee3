package harness

import (
	"github.com/roach88/crease/internal/scorecard"
	"github.com/roach88/crease/internal/store"
)

// StepResult records what one step did.
type StepResult struct {
	// Index is 1-based.
	Index  int    `json:"index"`
	Action string `json:"action"`

	// Error is the error code (or message, for uncoded errors) the call
	// returned. Empty on success.
	Error string `json:"error,omitempty"`

	// Score is the current innings total after the step, e.g. "17/1 (1.0)".
	Score string `json:"score,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	Scenario string `json:"scenario"`
	MatchID  string `json:"match_id"`

	// Pass is true when every step behaved as scripted and every
	// expectation held.
	Pass bool `json:"pass"`

	// Errors is empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	Steps []StepResult    `json:"steps"`
	Card  *scorecard.Card `json:"card,omitempty"`
	Audit []store.Action  `json:"audit,omitempty"`
}

// NewResult creates a passing result.
func NewResult(scenario string) *Result {
	return &Result{
		Scenario: scenario,
		Pass:     true,
		Errors:   []string{},
		Steps:    []StepResult{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
