package innings

import (
	"github.com/roach88/crease/internal/apperrors"
	"github.com/roach88/crease/internal/delivery"
)

// NeedsBatter reports whether a wicket has left an end vacant.
func (in *Innings) NeedsBatter() bool {
	return in.Striker == "" || in.NonStriker == ""
}

// NeedsBowler reports whether a bowler must be chosen before the next ball.
func (in *Innings) NeedsBowler() bool {
	return in.Bowler == ""
}

// Ready reports whether the cursor is complete and the next ball can be bowled.
func (in *Innings) Ready() error {
	if in.Status != StatusInProgress {
		return apperrors.Precondition(apperrors.CodeInningsClosed, "innings %d is completed", in.Setup.Number)
	}
	if in.NeedsBatter() {
		return apperrors.Precondition(apperrors.CodeBatterRequired, "a new batter must be selected")
	}
	if in.NeedsBowler() {
		return apperrors.Precondition(apperrors.CodeBowlerRequired, "a bowler must be selected for the next over")
	}
	return nil
}

// EligibleBatters lists batting XI members who are not out and not at the
// crease. A batter whose wicket was deleted is eligible again.
func (in *Innings) EligibleBatters() []string {
	out := []string{}
	for _, id := range in.Setup.BattingXI {
		if b, ok := in.Batters[id]; ok && b.Out() {
			continue
		}
		if id == in.Striker || id == in.NonStriker {
			continue
		}
		out = append(out, id)
	}
	return out
}

// SelectBatter fills the vacant end with a new batter.
func (in *Innings) SelectBatter(id string) error {
	if in.Status != StatusInProgress {
		return apperrors.Precondition(apperrors.CodeInningsClosed, "innings %d is completed", in.Setup.Number)
	}
	if !in.NeedsBatter() {
		return apperrors.Precondition(apperrors.CodeBatterNotEligible, "both ends are occupied").With("player", id)
	}
	eligible := in.EligibleBatters()
	if len(eligible) == 0 {
		return apperrors.Invariant(apperrors.CodeNoBatterAvailable,
			"no batter left to replace wicket %d", in.Wickets)
	}
	if !contains(in.Setup.BattingXI, id) {
		return apperrors.Precondition(apperrors.CodeNotInXI, "batter %s is not in the batting XI", id).With("player", id)
	}
	if !contains(eligible, id) {
		return apperrors.Precondition(apperrors.CodeBatterNotEligible, "batter %s is out or already at the crease", id).With("player", id)
	}

	if in.Striker == "" {
		in.Striker = id
	} else {
		in.NonStriker = id
	}
	return nil
}

// SelectBowler chooses the bowler for the over about to start.
func (in *Innings) SelectBowler(id string) error {
	if in.Status != StatusInProgress {
		return apperrors.Precondition(apperrors.CodeInningsClosed, "innings %d is completed", in.Setup.Number)
	}
	if len(in.BallsThisOver) > 0 {
		return apperrors.Precondition(apperrors.CodeBowlerMidOver,
			"over is being bowled by %s", in.OverBowler).With("player", id)
	}
	if !contains(in.Setup.BowlingXI, id) {
		return apperrors.Precondition(apperrors.CodeNotInXI, "bowler %s is not in the bowling XI", id).With("player", id)
	}
	if !in.CanBowl(id) {
		return apperrors.Precondition(apperrors.CodeBowlerOverQuota,
			"bowler %s has bowled the maximum %d overs", id, in.Setup.MaxOversPerBowler).With("player", id)
	}
	in.Bowler = id
	return nil
}

// CanBowl reports whether a player has overs left in the quota.
func (in *Innings) CanBowl(id string) bool {
	b, ok := in.Bowlers[id]
	if !ok {
		return true
	}
	return b.Balls < in.Setup.MaxOversPerBowler*delivery.BallsPerOver
}

// AvailableBowlers lists bowling XI members with quota left.
func (in *Innings) AvailableBowlers() []string {
	out := []string{}
	for _, id := range in.Setup.BowlingXI {
		if in.CanBowl(id) {
			out = append(out, id)
		}
	}
	return out
}

// WicketCap is the number of wickets that ends the innings: one fewer than
// the batters available, capped at 10 (2 in a Super Over).
func (in *Innings) WicketCap() int {
	limit := MaxWickets
	if in.Setup.SuperOver {
		limit = MaxSuperOverWickets
	}
	if n := len(in.Setup.BattingXI) - 1; n < limit {
		limit = n
	}
	return limit
}

// End evaluates the end-of-innings predicates. target is 0 when the innings
// is not chasing.
func (in *Innings) End(target int) EndReason {
	switch {
	case target > 0 && in.Runs >= target:
		return EndTargetReached
	case in.Wickets >= in.WicketCap():
		return EndAllOut
	case in.CompletedOvers >= in.Setup.Overs:
		if in.Setup.SuperOver {
			return EndSuperOverComplete
		}
		return EndOversComplete
	}
	return EndNone
}
