package match

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/roach88/crease/internal/apperrors"
	"github.com/roach88/crease/internal/delivery"
	"github.com/roach88/crease/internal/innings"
)

// Restore rebuilds a match from its stored header, innings snapshots and
// delivery log. Aggregates come from folding the log; snapshots contribute
// only setup, lifecycle and any cursor selections made after the last ball.
func Restore(h Header, snaps []*innings.Innings, log []delivery.Delivery) (*Match, error) {
	m := &Match{Header: h, Innings: []*innings.Innings{}}
	if h.Result != nil {
		r := *h.Result
		m.Result = &r
	}

	ordered := append([]*innings.Innings(nil), snaps...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Setup.Number < ordered[j].Setup.Number })

	byInnings := make(map[int][]delivery.Delivery)
	for _, d := range log {
		if d.MatchID != h.ID {
			return nil, apperrors.Invariant(apperrors.CodeLogMismatch,
				"delivery %d belongs to match %s", d.Seq, d.MatchID).ForMatch(h.ID)
		}
		byInnings[d.Innings] = append(byInnings[d.Innings], d)
	}

	for _, snap := range ordered {
		n := snap.Setup.Number
		in, err := innings.Replay(snap.Setup, byInnings[n])
		if err != nil {
			return nil, apperrors.Invariant(apperrors.CodeReplayDiverged,
				"innings %d does not fold", n).ForMatch(h.ID).Wrap(err)
		}
		in.AdoptState(snap)
		m.Innings = append(m.Innings, in)
		delete(byInnings, n)
	}
	for n, ds := range byInnings {
		return nil, apperrors.Invariant(apperrors.CodeLogMismatch,
			"%d deliveries for innings %d which has no record", len(ds), n).ForMatch(h.ID)
	}
	return m, nil
}

// Verify re-folds the log and compares every innings aggregate with the
// stored snapshot. It returns a REPLAY_DIVERGED error listing the fields that
// differ.
func Verify(h Header, snaps []*innings.Innings, log []delivery.Delivery) error {
	m, err := Restore(h, snaps, log)
	if err != nil {
		return err
	}
	var diffs []string
	for _, stored := range snaps {
		replayed := m.InningsByNumber(stored.Setup.Number)
		for _, f := range Divergence(stored, replayed) {
			diffs = append(diffs, fmt.Sprintf("innings %d: %s", stored.Setup.Number, f))
		}
	}
	if len(diffs) == 0 {
		return nil
	}
	sort.Strings(diffs)
	e := apperrors.Invariant(apperrors.CodeReplayDiverged,
		"%d fields differ from the delivery log", len(diffs)).ForMatch(h.ID)
	for i, d := range diffs {
		e = e.With(fmt.Sprintf("diff%02d", i+1), d)
	}
	return e
}

// Divergence names the aggregate fields on which two innings disagree.
func Divergence(stored, replayed *innings.Innings) []string {
	var out []string
	check := func(name string, a, b any) {
		if !reflect.DeepEqual(a, b) {
			out = append(out, fmt.Sprintf("%s stored=%v replayed=%v", name, a, b))
		}
	}
	check("total_runs", stored.Runs, replayed.Runs)
	check("total_wickets", stored.Wickets, replayed.Wickets)
	check("extras", stored.Extras, replayed.Extras)
	check("completed_overs", stored.CompletedOvers, replayed.CompletedOvers)
	check("current_over_balls", stored.OverBalls, replayed.OverBalls)
	check("legal_balls", stored.LegalBalls, replayed.LegalBalls)
	check("last_seq", stored.LastSeq, replayed.LastSeq)
	check("fall_of_wickets", len(stored.FallOfWickets), len(replayed.FallOfWickets))
	for id, b := range stored.Batters {
		r, ok := replayed.Batters[id]
		if !ok {
			out = append(out, fmt.Sprintf("batter %s missing from replay", id))
			continue
		}
		check("batter "+id+" runs", b.Runs, r.Runs)
		check("batter "+id+" balls", b.Balls, r.Balls)
	}
	for id, b := range stored.Bowlers {
		r, ok := replayed.Bowlers[id]
		if !ok {
			out = append(out, fmt.Sprintf("bowler %s missing from replay", id))
			continue
		}
		check("bowler "+id+" balls", b.Balls, r.Balls)
		check("bowler "+id+" runs", b.Runs, r.Runs)
		check("bowler "+id+" wickets", b.Wickets, r.Wickets)
		check("bowler "+id+" maidens", b.Maidens, r.Maidens)
	}
	return out
}
