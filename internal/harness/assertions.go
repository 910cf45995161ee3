package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/crease/internal/match"
	"github.com/roach88/crease/internal/store"
)

// AssertionError is one expectation that did not hold.
type AssertionError struct {
	Field    string // expectation key, e.g. "scores"
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("expect %s: want %s, got %s", e.Field, e.Expected, e.Actual)
}

// evaluate checks exp against the final match and the run's scorecard and
// audit trail. It returns one message per failed expectation.
func evaluate(exp *Expectation, m *match.Match, r *Result) []string {
	var failed []*AssertionError
	check := func(field string, set, ok bool, want, got any) {
		if set && !ok {
			failed = append(failed, &AssertionError{
				Field:    field,
				Expected: fmt.Sprint(want),
				Actual:   fmt.Sprint(got),
			})
		}
	}

	check("phase", exp.Phase != "", exp.Phase == m.Phase, exp.Phase, m.Phase)
	check("status", exp.Status != "", exp.Status == m.Status, exp.Status, m.Status)

	result := ""
	if r.Card != nil {
		result = r.Card.Result
	}
	check("result", exp.Result != "", exp.Result == result, quote(exp.Result), quote(result))

	scores, overs := inningsTotals(r)
	check("scores", len(exp.Scores) > 0, slices.Equal(exp.Scores, scores), list(exp.Scores), list(scores))
	check("overs", len(exp.Overs) > 0, slices.Equal(exp.Overs, overs), list(exp.Overs), list(overs))
	check("target", exp.Target != 0, exp.Target == m.Target, exp.Target, m.Target)
	check("audit", len(exp.Audit) > 0, slices.Equal(exp.Audit, r.Audit), actions(exp.Audit), actions(r.Audit))

	out := make([]string, len(failed))
	for i, f := range failed {
		out[i] = f.Error()
	}
	return out
}

func inningsTotals(r *Result) (scores, overs []string) {
	if r.Card == nil {
		return nil, nil
	}
	for _, in := range r.Card.Innings {
		scores = append(scores, in.Total)
		overs = append(overs, in.Overs)
	}
	return scores, overs
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}

func list(ss []string) string {
	return "[" + strings.Join(ss, ", ") + "]"
}

func actions(as []store.Action) string {
	ss := make([]string, len(as))
	for i, a := range as {
		ss[i] = string(a)
	}
	return list(ss)
}
