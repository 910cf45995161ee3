package match

import (
	"strconv"

	"github.com/roach88/crease/internal/apperrors"
	"github.com/roach88/crease/internal/delivery"
	"github.com/roach88/crease/internal/innings"
)

// Undo removes the most recent delivery of the open innings and re-folds the
// rest. The cursor goes back to the players recorded on the removed ball,
// which is exactly where it stood before that ball was bowled.
func (m *Match) Undo() (delivery.Delivery, error) {
	in, err := m.correctable()
	if err != nil {
		return delivery.Delivery{}, err
	}
	last, ok := in.Last()
	if !ok {
		if m.DeliveryCount() == 0 {
			return delivery.Delivery{}, apperrors.Invariant(apperrors.CodeNothingToUndo,
				"match has no deliveries").ForMatch(m.ID)
		}
		return delivery.Delivery{}, apperrors.Precondition(apperrors.CodeInningsClosed,
			"innings %d has no deliveries; reopen the previous innings first", in.Setup.Number).ForMatch(m.ID)
	}

	log := in.Log()
	next, err := m.refold(in, log[:len(log)-1])
	if err != nil {
		return delivery.Delivery{}, err
	}
	next.Striker = last.StrikerID
	next.NonStriker = last.NonStrikerID
	next.Bowler = last.BowlerID
	m.settle(next)
	return last, nil
}

// DeleteBall removes one ball from the current over buffer and re-folds.
// Balls in completed overs cannot be deleted.
func (m *Match) DeleteBall(seq int64) (delivery.Delivery, error) {
	in, err := m.correctable()
	if err != nil {
		return delivery.Delivery{}, err
	}
	if last, ok := in.Last(); ok && last.Seq == seq {
		return m.Undo()
	}

	inOver := false
	for _, s := range in.BallsThisOver {
		if s == seq {
			inOver = true
			break
		}
	}
	if !inOver {
		return delivery.Delivery{}, apperrors.Precondition(apperrors.CodeBallNotInOver,
			"delivery %d is not in the current over", seq).ForMatch(m.ID).With("seq", strconv.FormatInt(seq, 10))
	}

	var removed delivery.Delivery
	kept := make([]delivery.Delivery, 0, len(in.Log()))
	for _, d := range in.Log() {
		if d.Seq == seq {
			removed = d
			continue
		}
		kept = append(kept, d)
	}
	next, err := m.refold(in, kept)
	if err != nil {
		return delivery.Delivery{}, err
	}
	keepSelections(next, in)
	m.settle(next)
	return removed, nil
}

// keepSelections carries cursor choices made after the last ball into a
// re-folded innings whose last ball is unchanged.
func keepSelections(next, prev *innings.Innings) {
	if next.Striker == "" && prev.Striker != "" && prev.Striker != next.NonStriker {
		next.Striker = prev.Striker
	}
	if next.NonStriker == "" && prev.NonStriker != "" && prev.NonStriker != next.Striker {
		next.NonStriker = prev.NonStriker
	}
	if next.Bowler == "" && prev.Bowler != "" {
		next.Bowler = prev.Bowler
	}
}

// correctable returns the innings that Undo and DeleteBall operate on.
func (m *Match) correctable() (*innings.Innings, error) {
	if m.Closed() {
		return nil, m.closedErr()
	}
	in := m.Current()
	if in == nil {
		return nil, apperrors.Invariant(apperrors.CodeNothingToUndo, "match has no deliveries").ForMatch(m.ID)
	}
	if !in.Open() {
		return nil, apperrors.Precondition(apperrors.CodeInningsClosed,
			"innings %d is completed; reopen the match first", in.Setup.Number).ForMatch(m.ID)
	}
	return in, nil
}

// refold rebuilds the current innings from log and swaps it in.
func (m *Match) refold(in *innings.Innings, log []delivery.Delivery) (*innings.Innings, error) {
	next, err := innings.Replay(in.Setup, log)
	if err != nil {
		return nil, apperrors.Invariant(apperrors.CodeReplayDiverged,
			"innings %d no longer folds", in.Setup.Number).ForMatch(m.ID).Wrap(err)
	}
	m.Innings[len(m.Innings)-1] = next
	return next, nil
}

// Reopen puts the latest completed innings back in progress and clears
// whatever was derived from its end: the chase target, the Super Over target
// or the result. An innings started but not yet bowled at is discarded.
func (m *Match) Reopen() error {
	if m.Closed() {
		return m.closedErr()
	}
	in := m.Current()
	if in != nil && in.Open() && len(in.Log()) == 0 && len(m.Innings) > 1 {
		m.Innings = m.Innings[:len(m.Innings)-1]
		in = m.Current()
	}
	if in == nil || in.Open() {
		return apperrors.Precondition(apperrors.CodeNotCompleted,
			"no completed innings to reopen during %s", m.Phase).ForMatch(m.ID)
	}

	in.Reopen()
	switch in.Setup.Number {
	case 1:
		m.Target = 0
	case 3:
		m.SuperOverTarget = 0
	}
	m.Result = nil
	m.Phase = inningsPhase(in.Setup.Number)
	m.Status = StatusInProgress
	return nil
}

// Cancel abandons a match that has not finished. All innings are discarded.
func (m *Match) Cancel() error {
	if m.Status != StatusNotStarted && m.Status != StatusInProgress {
		return apperrors.Precondition(apperrors.CodeMatchClosed,
			"cannot cancel a %s match", m.Status).ForMatch(m.ID)
	}
	m.clear()
	m.Status = StatusCancelled
	return nil
}

// DeleteResult discards a completed match and its innings.
func (m *Match) DeleteResult() error {
	if m.Status != StatusCompleted {
		return apperrors.Precondition(apperrors.CodeNotCompleted,
			"match is %s, not completed", m.Status).ForMatch(m.ID)
	}
	m.clear()
	m.Status = StatusDeleted
	return nil
}

func (m *Match) clear() {
	m.Innings = []*innings.Innings{}
	m.Phase = PhaseTossPending
	m.Target = 0
	m.SuperOverTarget = 0
	m.Result = nil
}
