package innings

import (
	"github.com/roach88/crease/internal/apperrors"
	"github.com/roach88/crease/internal/delivery"
)

// Apply folds one delivery into the innings. All checks run before any field
// changes, so a rejected delivery leaves the innings untouched.
//
// Figures are credited to the players recorded on the delivery, not to the
// cursor; the cursor is rebuilt from the delivery afterwards. This keeps
// replay after a deletion well defined.
func (in *Innings) Apply(d delivery.Delivery) error {
	if err := in.check(d); err != nil {
		return err
	}

	striker := in.batter(d.StrikerID)
	in.batter(d.NonStrikerID)
	bowler := in.bowler(d.BowlerID, true)
	in.joinPartnership(d.StrikerID, d.NonStrikerID)

	total := d.TotalRuns()
	in.Runs += total
	in.Partnership.Runs += total

	switch d.Kind {
	case delivery.KindRun:
		striker.Runs += d.BatterRuns()
		striker.Balls++
		countShot(striker, d.Runs)
		if d.Runs == 0 {
			striker.Dots++
		}
	case delivery.KindWide:
		in.Extras.Wides += d.Extras()
		bowler.Wides += d.Extras()
	case delivery.KindNoBall:
		in.Extras.NoBalls += d.Extras()
		bowler.NoBalls++
		striker.Runs += d.BatterRuns()
		countShot(striker, d.Runs)
	case delivery.KindBye, delivery.KindLegBye:
		if d.Kind == delivery.KindBye {
			in.Extras.Byes += d.Runs
		} else {
			in.Extras.LegByes += d.Runs
		}
		striker.Balls++
		if d.Runs == 0 {
			striker.Dots++
		}
	case delivery.KindWicket:
		striker.Runs += d.BatterRuns()
		striker.Balls++
		countShot(striker, d.Runs)
		if d.Runs == 0 {
			striker.Dots++
		}
	}

	bowler.Runs += d.BowlerRuns()
	bowler.OverRuns += d.BowlerRuns()
	if d.IsLegal() {
		bowler.Balls++
		bowler.OverBalls++
		if d.BowlerRuns() == 0 {
			bowler.Dots++
		}
		in.LegalBalls++
		in.OverBalls++
		in.Partnership.Balls++
	}
	in.BallsThisOver = append(in.BallsThisOver, d.Seq)
	in.OverBowler = d.BowlerID

	onStrike, offStrike := d.StrikerID, d.NonStrikerID
	if d.Kind == delivery.KindWicket {
		in.dismiss(d, striker)
		onStrike = ""
	} else if d.Rotates() {
		onStrike, offStrike = offStrike, onStrike
	}

	nextBowler := d.BowlerID
	if in.OverBalls == delivery.BallsPerOver {
		in.completeOver(bowler)
		onStrike, offStrike = offStrike, onStrike
		nextBowler = ""
	}

	in.Striker, in.NonStriker, in.Bowler = onStrike, offStrike, nextBowler
	in.LastSeq = d.Seq
	in.log = append(in.log, d)
	return nil
}

func (in *Innings) check(d delivery.Delivery) error {
	if in.Status != StatusInProgress {
		return apperrors.Precondition(apperrors.CodeInningsClosed, "innings %d is completed", in.Setup.Number)
	}
	if err := d.Validate(); err != nil {
		return err
	}
	if d.Innings != in.Setup.Number {
		return apperrors.Invariant(apperrors.CodeLogMismatch,
			"delivery %d belongs to innings %d, not %d", d.Seq, d.Innings, in.Setup.Number)
	}
	if d.Seq <= in.LastSeq {
		return apperrors.Invariant(apperrors.CodeLogMismatch,
			"delivery %d is not after %d", d.Seq, in.LastSeq)
	}

	for _, id := range []string{d.StrikerID, d.NonStrikerID} {
		if !contains(in.Setup.BattingXI, id) {
			return apperrors.Precondition(apperrors.CodeNotInXI, "batter %s is not in the batting XI", id).With("player", id)
		}
		if b, ok := in.Batters[id]; ok && b.Out() {
			return apperrors.Precondition(apperrors.CodeBatterNotEligible, "batter %s is already out", id).With("player", id)
		}
	}
	if !contains(in.Setup.BowlingXI, d.BowlerID) {
		return apperrors.Precondition(apperrors.CodeNotInXI, "bowler %s is not in the bowling XI", d.BowlerID).With("player", d.BowlerID)
	}
	if d.FielderID != "" && !contains(in.Setup.FieldingXI, d.FielderID) {
		return apperrors.Precondition(apperrors.CodeNotInXI, "fielder %s is not in the fielding XI", d.FielderID).With("player", d.FielderID)
	}

	if len(in.BallsThisOver) > 0 {
		if d.BowlerID != in.OverBowler {
			return apperrors.Precondition(apperrors.CodeBowlerMidOver,
				"over is being bowled by %s", in.OverBowler).With("player", d.BowlerID)
		}
	} else if !in.CanBowl(d.BowlerID) {
		return apperrors.Precondition(apperrors.CodeBowlerOverQuota,
			"bowler %s has bowled the maximum %d overs", d.BowlerID, in.Setup.MaxOversPerBowler).With("player", d.BowlerID)
	}

	if d.Kind == delivery.KindWicket && in.Wickets >= in.WicketCap() {
		return apperrors.Precondition(apperrors.CodeInningsOver, "all %d wickets have fallen", in.WicketCap())
	}
	if in.CompletedOvers >= in.Setup.Overs {
		return apperrors.Precondition(apperrors.CodeInningsOver, "all %d overs have been bowled", in.Setup.Overs)
	}
	return nil
}

func (in *Innings) dismiss(d delivery.Delivery, striker *BatterFigure) {
	in.Wickets++

	dis := &Dismissal{Kind: d.Dismissal, FielderID: d.FielderID}
	if d.Dismissal.CreditsBowler() {
		dis.BowlerID = d.BowlerID
		in.Bowlers[d.BowlerID].Wickets++
	}
	striker.Dismissal = dis

	if d.FielderID != "" {
		f := in.bowler(d.FielderID, false)
		switch d.Dismissal {
		case delivery.Caught:
			f.Fielding.Catches++
		case delivery.Stumped:
			f.Fielding.Stumpings++
		case delivery.RunOut:
			f.Fielding.RunOuts++
		}
	}

	in.FallOfWickets = append(in.FallOfWickets, FallOfWicket{
		Wicket:   in.Wickets,
		Runs:     in.Runs,
		BatterID: d.StrikerID,
		Over:     in.oversAfterBall(),
	})

	in.Partnership.Wicket = in.Wickets
	in.Partnerships = append(in.Partnerships, in.Partnership)
	in.Partnership = Partnership{BatterA: d.NonStrikerID}
}

func (in *Innings) completeOver(b *BowlerFigure) {
	if b.OverRuns == 0 {
		b.Maidens++
	}
	b.OverRuns = 0
	b.OverBalls = 0

	in.CompletedOvers++
	in.OverBalls = 0
	in.BallsThisOver = []int64{}
	in.OverBowler = ""
}

// joinPartnership fills the empty slot left by a wicket with whichever of the
// pair is not the surviving batter. When a deleted wicket leaves a different
// pair at the crease, the unbroken stand is relabelled to that pair.
func (in *Innings) joinPartnership(striker, nonStriker string) {
	p := &in.Partnership
	other := func(id string) string {
		if id == striker {
			return nonStriker
		}
		return striker
	}
	switch {
	case p.BatterA == "" && p.BatterB == "":
		p.BatterA, p.BatterB = striker, nonStriker
	case p.BatterB == "":
		p.BatterB = other(p.BatterA)
	case p.has(striker) && p.has(nonStriker):
	case p.BatterA == striker || p.BatterA == nonStriker:
		p.BatterB = other(p.BatterA)
	case p.BatterB == striker || p.BatterB == nonStriker:
		p.BatterA, p.BatterB = p.BatterB, other(p.BatterB)
	default:
		p.BatterA, p.BatterB = striker, nonStriker
	}
}

// oversAfterBall renders the over count including the ball just bowled.
func (in *Innings) oversAfterBall() string {
	if in.OverBalls == delivery.BallsPerOver {
		return delivery.FormatOvers(in.CompletedOvers+1, 0)
	}
	return delivery.FormatOvers(in.CompletedOvers, in.OverBalls)
}

func countShot(b *BatterFigure, raw int) {
	switch raw {
	case 4:
		b.Fours++
	case 6:
		b.Sixes++
	}
}
