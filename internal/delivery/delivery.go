// Package delivery holds the immutable record of one ball and the rules that
// classify it.
//
// An Outcome is what the scorer reports ("four", "wide plus two", "caught by
// p7"). A Delivery is the Outcome stamped with its position in the log and the
// players involved; once persisted it is never edited, only removed by a
// correction.
package delivery

import (
	"fmt"
	"strconv"
	"time"

	"github.com/roach88/crease/internal/apperrors"
)

// BallsPerOver is the number of legal balls in an over.
const BallsPerOver = 6

// MaxRunsPerBall bounds the runs a scorer may report for one ball.
const MaxRunsPerBall = 7

// PowerBallMultiplier applies to plain runs off the sixth legal ball when the
// power ball rule is on.
const PowerBallMultiplier = 2

// Outcome is the scorer's classification of a single ball.
//
// Runs means, by kind:
//   - Run: runs off the bat
//   - Wide: runs taken in addition to the one-run penalty
//   - NoBall: runs off the bat in addition to the one-run penalty
//   - Bye, LegBye: runs taken
//   - Wicket: runs completed before the dismissal
type Outcome struct {
	Kind      Kind          `json:"kind"`
	Runs      int           `json:"runs"`
	Dismissal DismissalKind `json:"dismissal,omitempty"`
	FielderID string        `json:"fielder_id,omitempty"`
}

// Run is a legal ball with runs off the bat.
func Run(runs int) Outcome { return Outcome{Kind: KindRun, Runs: runs} }

// Wide is a wide with extra runs taken beyond the penalty.
func Wide(extra int) Outcome { return Outcome{Kind: KindWide, Runs: extra} }

// NoBall is a no-ball with runs off the bat beyond the penalty.
func NoBall(batRuns int) Outcome { return Outcome{Kind: KindNoBall, Runs: batRuns} }

// Bye is a legal ball with byes taken.
func Bye(runs int) Outcome { return Outcome{Kind: KindBye, Runs: runs} }

// LegBye is a legal ball with leg-byes taken.
func LegBye(runs int) Outcome { return Outcome{Kind: KindLegBye, Runs: runs} }

// Wicket is a dismissal of the striker.
func Wicket(kind DismissalKind, fielderID string, runs int) Outcome {
	return Outcome{Kind: KindWicket, Runs: runs, Dismissal: kind, FielderID: fielderID}
}

// Validate rejects combinations that cannot happen on a cricket field.
func (o Outcome) Validate() error {
	if _, err := ParseKind(string(o.Kind)); err != nil {
		return apperrors.Precondition(apperrors.CodeInvalidDelivery, "%v", err)
	}
	if o.Runs < 0 || o.Runs > MaxRunsPerBall {
		return apperrors.Precondition(apperrors.CodeInvalidDelivery,
			"runs %d out of range 0..%d", o.Runs, MaxRunsPerBall)
	}

	if o.Kind != KindWicket {
		if o.Dismissal != "" || o.FielderID != "" {
			return apperrors.Precondition(apperrors.CodeInvalidDelivery,
				"%s delivery cannot carry a dismissal", o.Kind)
		}
		return nil
	}

	if o.Dismissal == "" {
		return apperrors.Precondition(apperrors.CodeDismissalRequired, "wicket needs a dismissal kind")
	}
	if !o.Dismissal.Valid() {
		return apperrors.Precondition(apperrors.CodeInvalidDelivery, "unknown dismissal kind %q", o.Dismissal)
	}
	switch o.Dismissal.FielderRule() {
	case FielderRequired:
		if o.FielderID == "" {
			return apperrors.Precondition(apperrors.CodeFielderRequired,
				"%s needs a fielder", o.Dismissal)
		}
	case FielderAbsent:
		if o.FielderID != "" {
			return apperrors.Precondition(apperrors.CodeFielderNotAllowed,
				"%s does not name a fielder", o.Dismissal)
		}
	}
	if !o.Dismissal.AllowsRuns() && o.Runs != 0 {
		return apperrors.Precondition(apperrors.CodeInvalidDelivery,
			"no runs can be scored on a %s dismissal", o.Dismissal)
	}
	return nil
}

// Stamp is the log position the engine assigns to a new delivery.
type Stamp struct {
	Seq int64
	ID  string
	At  time.Time
}

// Delivery is one ball as recorded in the log.
type Delivery struct {
	Seq          int64  `json:"seq"`
	ID           string `json:"id"`
	MatchID      string `json:"match_id"`
	Innings      int    `json:"innings"`
	Over         int    `json:"over"`
	Ball         int    `json:"ball"`
	BowlerID     string `json:"bowler_id"`
	StrikerID    string `json:"striker_id"`
	NonStrikerID string `json:"non_striker_id"`
	Outcome
	PowerBall bool      `json:"power_ball,omitempty"`
	At        time.Time `json:"at"`
}

// Validate checks the outcome plus the log fields.
func (d Delivery) Validate() error {
	if err := d.Outcome.Validate(); err != nil {
		return err
	}
	if d.BowlerID == "" || d.StrikerID == "" || d.NonStrikerID == "" {
		return apperrors.Precondition(apperrors.CodeInvalidDelivery, "delivery %d is missing a player", d.Seq)
	}
	if d.StrikerID == d.NonStrikerID {
		return apperrors.Precondition(apperrors.CodeInvalidDelivery, "striker and non-striker are both %s", d.StrikerID)
	}
	if d.PowerBall && d.Kind != KindRun {
		return apperrors.Precondition(apperrors.CodeInvalidDelivery, "power ball applies to runs only")
	}
	return nil
}

// IsLegal reports whether the ball counts toward the over.
func (d Delivery) IsLegal() bool {
	return d.Kind.IsLegal()
}

// Multiplier is 2 on an active power ball, otherwise 1.
func (d Delivery) Multiplier() int {
	if d.PowerBall && d.Kind == KindRun {
		return PowerBallMultiplier
	}
	return 1
}

// BatterRuns is what the striker is credited with.
func (d Delivery) BatterRuns() int {
	switch d.Kind {
	case KindRun:
		return d.Runs * d.Multiplier()
	case KindNoBall, KindWicket:
		return d.Runs
	}
	return 0
}

// Extras is what goes to the extras column.
func (d Delivery) Extras() int {
	switch d.Kind {
	case KindWide:
		return 1 + d.Runs
	case KindNoBall:
		return 1
	case KindBye, KindLegBye:
		return d.Runs
	}
	return 0
}

// BowlerRuns is what the bowler concedes. Byes and leg-byes are never the
// bowler's.
func (d Delivery) BowlerRuns() int {
	switch d.Kind {
	case KindRun:
		return d.Runs * d.Multiplier()
	case KindWide, KindNoBall:
		return 1 + d.Runs
	case KindWicket:
		return d.Runs
	}
	return 0
}

// TotalRuns is the delivery's contribution to the innings total.
func (d Delivery) TotalRuns() int {
	return d.BatterRuns() + d.Extras()
}

// Rotates reports whether the batters swap ends because of runs taken.
// Parity is judged on the runs actually run, before any power ball doubling.
// Wides never rotate and a wicket leaves the striker's end vacant instead.
func (d Delivery) Rotates() bool {
	switch d.Kind {
	case KindRun, KindNoBall, KindBye, KindLegBye:
		return d.Runs%2 == 1
	}
	return false
}

// Notation renders the ball the way an over summary does: "4", "1wd",
// "nb+2", "2lb", "W".
func (d Delivery) Notation() string {
	switch d.Kind {
	case KindRun:
		s := strconv.Itoa(d.Runs)
		if d.Runs == 0 {
			s = "."
		}
		if d.PowerBall {
			s += "x2"
		}
		return s
	case KindWide:
		return fmt.Sprintf("%dwd", 1+d.Runs)
	case KindNoBall:
		if d.Runs == 0 {
			return "nb"
		}
		return fmt.Sprintf("nb+%d", d.Runs)
	case KindBye:
		return fmt.Sprintf("%db", d.Runs)
	case KindLegBye:
		return fmt.Sprintf("%dlb", d.Runs)
	case KindWicket:
		if d.Runs > 0 {
			return fmt.Sprintf("W+%d", d.Runs)
		}
		return "W"
	}
	return "?"
}

// FormatOvers renders completed overs and balls as "4.3".
func FormatOvers(completed, balls int) string {
	return fmt.Sprintf("%d.%d", completed, balls)
}
