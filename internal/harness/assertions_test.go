package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/crease/internal/delivery"
	"github.com/roach88/crease/internal/match"
	"github.com/roach88/crease/internal/scorecard"
	"github.com/roach88/crease/internal/store"
	"github.com/roach88/crease/internal/testutil"
)

func firstInnings(t *testing.T) (*match.Match, *Result) {
	u := testutil.NewUmpire(t, match.Rules{Overs: 2, MaxOversPerBowler: 1, PlayersPerSide: 11})
	u.Start("a", "b")
	u.Balls(testutil.FirstInnings...)
	r := NewResult("first")
	r.Card = scorecard.Build(u.M)
	r.Audit = []store.Action{store.ActionUndoBall}
	return u.M, r
}

func TestEvaluate_AllHold(t *testing.T) {
	m, r := firstInnings(t)
	exp := &Expectation{
		Phase:  match.PhaseInningsBreak,
		Status: match.StatusInProgress,
		Scores: []string{"27/1"},
		Overs:  []string{"2.0"},
		Target: 28,
		Audit:  []store.Action{store.ActionUndoBall},
	}
	assert.Empty(t, evaluate(exp, m, r))
}

func TestEvaluate_EmptyExpectation(t *testing.T) {
	m, r := firstInnings(t)
	assert.Empty(t, evaluate(&Expectation{}, m, r))
}

func TestEvaluate_Mismatches(t *testing.T) {
	m, r := firstInnings(t)
	exp := &Expectation{
		Phase:  match.PhaseComplete,
		Result: "A won by 1 run",
		Scores: []string{"27/2"},
		Target: 27,
		Audit:  []store.Action{store.ActionDeleteBall},
	}
	assert.Equal(t, []string{
		"expect phase: want complete, got innings_break",
		`expect result: want "A won by 1 run", got ""`,
		"expect scores: want [27/2], got [27/1]",
		"expect target: want 27, got 28",
		"expect audit: want [DELETE_BALL], got [UNDO_BALL]",
	}, evaluate(exp, m, r))
}

func TestEvaluate_NoCard(t *testing.T) {
	u := testutil.NewUmpire(t, match.DefaultRules())
	u.Start("a", "b")
	u.Ball(delivery.Run(1))

	errs := evaluate(&Expectation{Scores: []string{"1/0"}}, u.M, NewResult("x"))
	assert.Equal(t, []string{"expect scores: want [1/0], got []"}, errs)
}
