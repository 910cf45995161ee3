package match

import (
	"sort"

	"github.com/roach88/crease/internal/apperrors"
	"github.com/roach88/crease/internal/delivery"
	"github.com/roach88/crease/internal/innings"
)

// Super Over sub-XI sizes.
const (
	SuperOverMinBatters = 2
	SuperOverMaxBatters = 3
	SuperOverBowlers    = 1
	SuperOverOvers      = 1
)

// InningsSetup is the selection made at the start of an innings. For a
// normal innings both XIs are the full playing XIs; for a Super Over the
// batting XI is 2-3 players and the bowling XI is the single bowler, both
// drawn from the main-match XIs.
type InningsSetup struct {
	BattingXI  []string `json:"batting_xi" yaml:"batting_xi"`
	BowlingXI  []string `json:"bowling_xi" yaml:"bowling_xi"`
	Striker    string   `json:"striker" yaml:"striker"`
	NonStriker string   `json:"non_striker" yaml:"non_striker"`
	Bowler     string   `json:"bowler" yaml:"bowler"`
}

// StartInnings begins the next innings from a break phase.
func (m *Match) StartInnings(is InningsSetup) (*innings.Innings, error) {
	if m.Closed() || m.Status == StatusCompleted {
		return nil, m.closedErr()
	}
	n := nextInnings(m.Phase)
	if n == 0 {
		return nil, apperrors.Precondition(apperrors.CodeWrongPhase,
			"cannot start an innings during %s", m.Phase).ForMatch(m.ID)
	}

	setup := innings.Setup{
		MatchID:           m.ID,
		Number:            n,
		SuperOver:         n > 2,
		BattingTeamID:     m.BattingTeam(n),
		BowlingTeamID:     m.BowlingTeam(n),
		BattingXI:         append([]string(nil), is.BattingXI...),
		BowlingXI:         append([]string(nil), is.BowlingXI...),
		Striker:           is.Striker,
		NonStriker:        is.NonStriker,
		Bowler:            is.Bowler,
		Overs:             m.Setup.Rules.Overs,
		MaxOversPerBowler: m.Setup.Rules.MaxOversPerBowler,
		PowerBall:         m.Setup.Rules.PowerBall,
	}

	if setup.SuperOver {
		if err := m.superOverXI(&setup); err != nil {
			return nil, err
		}
	} else if err := m.playingXI(&setup); err != nil {
		return nil, err
	}

	in, err := innings.New(setup)
	if err != nil {
		return nil, withMatch(err, m.ID)
	}
	m.Innings = append(m.Innings, in)
	m.Phase = inningsPhase(n)
	m.Status = StatusInProgress
	return in, nil
}

func (m *Match) playingXI(s *innings.Setup) error {
	size := m.Setup.Rules.PlayersPerSide
	if len(s.BattingXI) != size || len(s.BowlingXI) != size {
		return apperrors.Precondition(apperrors.CodeXISize,
			"each playing XI must have %d players", size).ForMatch(m.ID)
	}
	for _, id := range s.BattingXI {
		for _, other := range s.BowlingXI {
			if id == other {
				return apperrors.Precondition(apperrors.CodeDuplicatePlayer,
					"player %s cannot play for both teams", id).ForMatch(m.ID).With("player", id)
			}
		}
	}
	s.FieldingXI = append([]string(nil), s.BowlingXI...)

	if s.Number == 2 {
		first := m.InningsByNumber(1)
		if !sameMembers(s.BattingXI, first.Setup.BowlingXI) || !sameMembers(s.BowlingXI, first.Setup.BattingXI) {
			return apperrors.Precondition(apperrors.CodeNotInXI,
				"second innings XIs must match the first innings").ForMatch(m.ID)
		}
	}
	return nil
}

func (m *Match) superOverXI(s *innings.Setup) error {
	if len(s.BattingXI) < SuperOverMinBatters || len(s.BattingXI) > SuperOverMaxBatters {
		return apperrors.Precondition(apperrors.CodeXISize,
			"super over batting XI must have %d-%d players", SuperOverMinBatters, SuperOverMaxBatters).ForMatch(m.ID)
	}
	if len(s.BowlingXI) != SuperOverBowlers {
		return apperrors.Precondition(apperrors.CodeXISize,
			"super over bowling XI must have exactly %d player", SuperOverBowlers).ForMatch(m.ID)
	}
	batting := m.mainXI(s.BattingTeamID)
	fielding := m.mainXI(s.BowlingTeamID)
	for _, id := range s.BattingXI {
		if !containsID(batting, id) {
			return apperrors.Precondition(apperrors.CodeNotInXI,
				"%s did not play for %s", id, s.BattingTeamID).ForMatch(m.ID).With("player", id)
		}
	}
	for _, id := range s.BowlingXI {
		if !containsID(fielding, id) {
			return apperrors.Precondition(apperrors.CodeNotInXI,
				"%s did not play for %s", id, s.BowlingTeamID).ForMatch(m.ID).With("player", id)
		}
	}
	s.FieldingXI = append([]string(nil), fielding...)
	s.Overs = SuperOverOvers
	s.MaxOversPerBowler = SuperOverOvers
	return nil
}

// mainXI is a team's playing XI from the normal innings.
func (m *Match) mainXI(teamID string) []string {
	for _, in := range m.Innings {
		if in.Setup.SuperOver {
			continue
		}
		if in.Setup.BattingTeamID == teamID {
			return in.Setup.BattingXI
		}
		if in.Setup.BowlingTeamID == teamID {
			return in.Setup.BowlingXI
		}
	}
	return nil
}

// Bowl records one delivery from the live cursor, then evaluates the end of
// the innings and advances the match when it fires.
func (m *Match) Bowl(st delivery.Stamp, o delivery.Outcome) (delivery.Delivery, error) {
	in, err := m.active()
	if err != nil {
		return delivery.Delivery{}, err
	}
	if err := o.Validate(); err != nil {
		return delivery.Delivery{}, withMatch(err, m.ID)
	}
	if reason := in.End(m.TargetFor(in.Setup.Number)); reason != innings.EndNone {
		return delivery.Delivery{}, apperrors.Precondition(apperrors.CodeInningsOver,
			"innings %d has already ended (%s)", in.Setup.Number, reason).ForMatch(m.ID)
	}
	if err := in.Ready(); err != nil {
		return delivery.Delivery{}, withMatch(err, m.ID)
	}

	d := delivery.Delivery{
		Seq:          st.Seq,
		ID:           st.ID,
		MatchID:      m.ID,
		Innings:      in.Setup.Number,
		Over:         in.CompletedOvers,
		Ball:         in.OverBalls + 1,
		BowlerID:     in.Bowler,
		StrikerID:    in.Striker,
		NonStrikerID: in.NonStriker,
		Outcome:      o,
		PowerBall:    powerBall(in, o),
		At:           st.At,
	}
	if err := in.Apply(d); err != nil {
		return delivery.Delivery{}, withMatch(err, m.ID)
	}
	m.settle(in)
	return d, nil
}

// powerBall is active for plain runs off the sixth legal ball when enabled.
func powerBall(in *innings.Innings, o delivery.Outcome) bool {
	return in.Setup.PowerBall &&
		o.Kind == delivery.KindRun &&
		in.OverBalls == delivery.BallsPerOver-1
}

// SelectBatter fills the end vacated by a wicket.
func (m *Match) SelectBatter(playerID string) error {
	in, err := m.active()
	if err != nil {
		return err
	}
	return withMatch(in.SelectBatter(playerID), m.ID)
}

// SelectBowler chooses the bowler for the next over.
func (m *Match) SelectBowler(playerID string) error {
	in, err := m.active()
	if err != nil {
		return err
	}
	return withMatch(in.SelectBowler(playerID), m.ID)
}

// SetupSuperOver moves a tied match to the Super Over break.
func (m *Match) SetupSuperOver() error {
	if m.Phase != PhaseTied {
		return apperrors.Precondition(apperrors.CodeWrongPhase,
			"super over needs a tied match, phase is %s", m.Phase).ForMatch(m.ID)
	}
	m.Phase = PhaseSuperOverBreak
	return nil
}

// active returns the innings currently being bowled.
func (m *Match) active() (*innings.Innings, error) {
	if m.Closed() || m.Status == StatusCompleted {
		return nil, m.closedErr()
	}
	in := m.Current()
	if in == nil || m.Phase != inningsPhase(in.Setup.Number) {
		return nil, apperrors.Precondition(apperrors.CodeNoActiveInnings,
			"no innings in progress during %s", m.Phase).ForMatch(m.ID)
	}
	if !in.Open() {
		return nil, apperrors.Precondition(apperrors.CodeInningsClosed,
			"innings %d is completed", in.Setup.Number).ForMatch(m.ID)
	}
	return in, nil
}

// settle closes the innings if an end predicate holds and advances the phase.
func (m *Match) settle(in *innings.Innings) {
	reason := in.End(m.TargetFor(in.Setup.Number))
	if reason == innings.EndNone {
		return
	}
	in.Close(reason)
	m.advance(in)
}

func (m *Match) advance(in *innings.Innings) {
	switch in.Setup.Number {
	case 1:
		m.Target = in.Runs + 1
		m.Phase = PhaseInningsBreak
	case 2:
		first := m.InningsByNumber(1)
		switch {
		case in.Runs == first.Runs:
			m.Phase = PhaseTied
		case in.Runs >= m.Target:
			// Wickets in hand: 10 less wickets lost for a full XI.
			m.finish(Result{Kind: WinByWickets, WinnerID: in.Setup.BattingTeamID, Margin: in.WicketCap() - in.Wickets})
		default:
			m.finish(Result{Kind: WinByRuns, WinnerID: first.Setup.BattingTeamID, Margin: first.Runs - in.Runs})
		}
	case 3:
		m.SuperOverTarget = in.Runs + 1
		m.Phase = PhaseSuperOver2Break
	case 4:
		first := m.InningsByNumber(3)
		switch {
		case in.Runs > first.Runs:
			m.finish(Result{Kind: SuperOverWin, WinnerID: in.Setup.BattingTeamID, Margin: in.Runs - first.Runs})
		case in.Runs < first.Runs:
			m.finish(Result{Kind: SuperOverWin, WinnerID: first.Setup.BattingTeamID, Margin: first.Runs - in.Runs})
		default:
			// No tie-break beyond one Super Over each.
			m.finish(Result{Kind: Tied})
		}
	}
}

func (m *Match) finish(r Result) {
	m.Result = &r
	m.Phase = PhaseComplete
	m.Status = StatusCompleted
}

func (m *Match) closedErr() error {
	return apperrors.Precondition(apperrors.CodeMatchClosed, "match is %s", m.Status).ForMatch(m.ID)
}

// withMatch tags apperrors with the match id, leaving other errors alone.
func withMatch(err error, id string) error {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*apperrors.Error); ok {
		return ae.ForMatch(id)
	}
	return err
}

func containsID(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
