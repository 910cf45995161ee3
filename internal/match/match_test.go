package match

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/apperrors"
	"github.com/roach88/crease/internal/delivery"
	"github.com/roach88/crease/internal/innings"
)

var kickoff = time.Date(2026, 3, 14, 14, 0, 0, 0, time.UTC)

func xi(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return out
}

// umpire drives a match from the live cursor, choosing the next batter and
// bowler in XI order whenever a selection is pending.
type umpire struct {
	t   *testing.T
	m   *Match
	seq int64
}

func newMatch(t *testing.T, rules Rules) *umpire {
	t.Helper()
	m, err := New("m1", Setup{
		Team1ID:      "A",
		Team2ID:      "B",
		TossWinnerID: "A",
		TossDecision: TossBat,
		Rules:        rules,
	})
	require.NoError(t, err)
	return &umpire{t: t, m: m}
}

func smallRules(overs int) Rules {
	return Rules{Overs: overs, MaxOversPerBowler: 1, PlayersPerSide: 11}
}

func (u *umpire) start(batting, bowling string) {
	u.t.Helper()
	_, err := u.m.StartInnings(InningsSetup{
		BattingXI:  xi(batting, u.m.Setup.Rules.PlayersPerSide),
		BowlingXI:  xi(bowling, u.m.Setup.Rules.PlayersPerSide),
		Striker:    batting + "1",
		NonStriker: batting + "2",
		Bowler:     bowling + "1",
	})
	require.NoError(u.t, err)
}

func (u *umpire) ready() {
	u.t.Helper()
	in := u.m.Current()
	if in.NeedsBatter() {
		require.NoError(u.t, u.m.SelectBatter(in.EligibleBatters()[0]))
	}
	if in.NeedsBowler() {
		require.NoError(u.t, u.m.SelectBowler(in.AvailableBowlers()[0]))
	}
}

func (u *umpire) stamp() delivery.Stamp {
	u.seq++
	return delivery.Stamp{Seq: u.seq, ID: fmt.Sprintf("d%d", u.seq), At: kickoff.Add(time.Duration(u.seq) * time.Minute)}
}

func (u *umpire) ball(o delivery.Outcome) delivery.Delivery {
	u.t.Helper()
	u.ready()
	d, err := u.m.Bowl(u.stamp(), o)
	require.NoError(u.t, err)
	return d
}

func (u *umpire) balls(os ...delivery.Outcome) {
	u.t.Helper()
	for _, o := range os {
		u.ball(o)
	}
}

func repeat(o delivery.Outcome, n int) []delivery.Outcome {
	out := make([]delivery.Outcome, n)
	for i := range out {
		out[i] = o
	}
	return out
}

func bowled() delivery.Outcome { return delivery.Wicket(delivery.Bowled, "", 0) }

func TestFirstInningsSetsTargetAndChaseWinsByWickets(t *testing.T) {
	u := newMatch(t, smallRules(5))
	assert.Equal(t, "A", u.m.BattingTeam(1))
	assert.Equal(t, "B", u.m.BattingTeam(2))
	assert.Equal(t, "B", u.m.BattingTeam(3))
	assert.Equal(t, "A", u.m.BattingTeam(4))

	u.start("a", "b")
	u.balls(repeat(delivery.Run(6), 6)...)
	u.balls(delivery.Run(6), delivery.Run(6), delivery.Run(6), delivery.Run(6), delivery.Run(1), bowled())
	u.balls(bowled(), bowled(), delivery.Run(0), delivery.Run(0), delivery.Run(0), delivery.Run(0))
	u.balls(repeat(delivery.Run(0), 12)...)

	first := u.m.InningsByNumber(1)
	assert.Equal(t, innings.Score{Runs: 61, Wickets: 3}, first.Score())
	assert.Equal(t, "5.0", first.Overs())
	assert.Equal(t, innings.EndOversComplete, first.EndReason)
	assert.Equal(t, 62, u.m.Target)
	assert.Equal(t, PhaseInningsBreak, u.m.Phase)
	assert.Equal(t, StatusInProgress, u.m.Status)

	u.start("b", "a")
	u.balls(repeat(delivery.Run(6), 6)...)
	u.balls(delivery.Run(6), delivery.Run(6), delivery.Run(6), delivery.Run(6), bowled(), bowled())
	u.balls(bowled(), bowled(), delivery.Run(2))

	second := u.m.InningsByNumber(2)
	assert.Equal(t, innings.Score{Runs: 62, Wickets: 4}, second.Score())
	assert.Equal(t, "2.3", second.Overs())
	assert.Equal(t, innings.EndTargetReached, second.EndReason)
	assert.Equal(t, PhaseComplete, u.m.Phase)
	assert.Equal(t, StatusCompleted, u.m.Status)
	require.NotNil(t, u.m.Result)
	assert.Equal(t, Result{Kind: WinByWickets, WinnerID: "B", Margin: 6}, *u.m.Result)
	assert.Equal(t, "B won by 6 wickets", u.m.Result.Summary(nil))

	_, err := u.m.Bowl(u.stamp(), delivery.Run(1))
	assert.Equal(t, apperrors.CodeMatchClosed, apperrors.CodeOf(err))
}

func TestChaseMarginCountsWicketsInHandForSmallXI(t *testing.T) {
	u := newMatch(t, Rules{Overs: 1, MaxOversPerBowler: 1, PlayersPerSide: 3})
	u.start("a", "b")
	u.balls(repeat(delivery.Run(4), 6)...)
	u.start("b", "a")
	u.balls(bowled(), delivery.Run(6), delivery.Run(6), delivery.Run(6), delivery.Run(6), delivery.Run(6))

	second := u.m.InningsByNumber(2)
	assert.Equal(t, 2, second.WicketCap())
	assert.Equal(t, innings.Score{Runs: 30, Wickets: 1}, second.Score())
	require.NotNil(t, u.m.Result)
	assert.Equal(t, Result{Kind: WinByWickets, WinnerID: "B", Margin: 1}, *u.m.Result)
	assert.Equal(t, "B won by 1 wicket", u.m.Result.Summary(nil))
}

func TestDefendingTeamWinsByRuns(t *testing.T) {
	u := newMatch(t, smallRules(1))
	u.start("a", "b")
	u.balls(repeat(delivery.Run(4), 6)...)
	u.start("b", "a")
	u.balls(repeat(delivery.Run(1), 6)...)

	require.NotNil(t, u.m.Result)
	assert.Equal(t, Result{Kind: WinByRuns, WinnerID: "A", Margin: 18}, *u.m.Result)
	assert.Equal(t, "A won by 18 runs", u.m.Result.Summary(nil))
}

func TestTossDecisionBowlSwapsBattingOrder(t *testing.T) {
	m, err := New("m1", Setup{Team1ID: "A", Team2ID: "B", TossWinnerID: "A", TossDecision: TossBowl, Rules: DefaultRules()})
	require.NoError(t, err)
	assert.Equal(t, "B", m.BattingTeam(1))
	assert.Equal(t, "A", m.BowlingTeam(1))
	assert.Equal(t, "A", m.BattingTeam(3))
}

func TestSetupValidation(t *testing.T) {
	base := Setup{Team1ID: "A", Team2ID: "B", TossWinnerID: "A", TossDecision: TossBat, Rules: DefaultRules()}
	cases := []struct {
		name string
		mut  func(*Setup)
		code apperrors.Code
	}{
		{"same team", func(s *Setup) { s.Team2ID = "A" }, apperrors.CodeDuplicateTeam},
		{"missing team", func(s *Setup) { s.Team1ID = "" }, apperrors.CodeUnknownTeam},
		{"toss winner not playing", func(s *Setup) { s.TossWinnerID = "C" }, apperrors.CodeUnknownTeam},
		{"bad decision", func(s *Setup) { s.TossDecision = "field" }, apperrors.CodeInvalidRecord},
		{"too many overs", func(s *Setup) { s.Rules.Overs = 21 }, apperrors.CodeInvalidRules},
		{"no bowler quota", func(s *Setup) { s.Rules.MaxOversPerBowler = 0 }, apperrors.CodeInvalidRules},
		{"one player side", func(s *Setup) { s.Rules.PlayersPerSide = 1 }, apperrors.CodeInvalidRules},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := base
			tc.mut(&s)
			_, err := New("m1", s)
			assert.Equal(t, tc.code, apperrors.CodeOf(err))
			assert.True(t, apperrors.IsPrecondition(err))
		})
	}
}

func TestStartInningsChecksXIs(t *testing.T) {
	u := newMatch(t, smallRules(1))

	_, err := u.m.StartInnings(InningsSetup{BattingXI: xi("a", 10), BowlingXI: xi("b", 11), Striker: "a1", NonStriker: "a2", Bowler: "b1"})
	assert.Equal(t, apperrors.CodeXISize, apperrors.CodeOf(err))

	_, err = u.m.StartInnings(InningsSetup{BattingXI: xi("a", 11), BowlingXI: append(xi("b", 10), "a1"), Striker: "a1", NonStriker: "a2", Bowler: "b1"})
	assert.Equal(t, apperrors.CodeDuplicatePlayer, apperrors.CodeOf(err))
	assert.Empty(t, u.m.Innings)

	u.start("a", "b")
	_, err = u.m.StartInnings(InningsSetup{BattingXI: xi("b", 11), BowlingXI: xi("a", 11), Striker: "b1", NonStriker: "b2", Bowler: "a1"})
	assert.Equal(t, apperrors.CodeWrongPhase, apperrors.CodeOf(err))

	u.balls(repeat(delivery.Run(0), 6)...)
	_, err = u.m.StartInnings(InningsSetup{BattingXI: xi("c", 11), BowlingXI: xi("a", 11), Striker: "c1", NonStriker: "c2", Bowler: "a1"})
	assert.Equal(t, apperrors.CodeNotInXI, apperrors.CodeOf(err))
}

func TestBowlNeedsCompleteCursor(t *testing.T) {
	u := newMatch(t, smallRules(2))
	u.start("a", "b")

	_, err := u.m.Bowl(u.stamp(), bowled())
	require.NoError(t, err)
	_, err = u.m.Bowl(u.stamp(), delivery.Run(1))
	assert.Equal(t, apperrors.CodeBatterRequired, apperrors.CodeOf(err))

	require.NoError(t, u.m.SelectBatter("a3"))
	u.balls(repeat(delivery.Run(0), 5)...)
	_, err = u.m.Bowl(u.stamp(), delivery.Run(1))
	assert.Equal(t, apperrors.CodeBowlerRequired, apperrors.CodeOf(err))

	err = u.m.SelectBowler("b1")
	assert.Equal(t, apperrors.CodeBowlerOverQuota, apperrors.CodeOf(err))
	require.NoError(t, u.m.SelectBowler("b2"))

	_, err = u.m.Bowl(u.stamp(), delivery.Outcome{Kind: delivery.KindRun, Runs: 9})
	assert.Equal(t, apperrors.CodeInvalidDelivery, apperrors.CodeOf(err))
}

func TestPowerBallFlagsSixthLegalBall(t *testing.T) {
	rules := smallRules(1)
	rules.PowerBall = true
	u := newMatch(t, rules)
	u.start("a", "b")
	u.balls(repeat(delivery.Run(0), 5)...)
	u.ball(delivery.Wide(0))
	d := u.ball(delivery.Run(4))

	assert.True(t, d.PowerBall)
	assert.Equal(t, 8, u.m.InningsByNumber(1).Batters["a1"].Runs)
	assert.Equal(t, 9, u.m.InningsByNumber(1).Runs)
	assert.Equal(t, 10, u.m.Target)
}

func TestTieLeadsToSuperOverAndDoubleTieIsTerminal(t *testing.T) {
	u := newMatch(t, smallRules(1))
	u.start("a", "b")
	u.balls(repeat(delivery.Run(1), 6)...)
	u.start("b", "a")
	u.balls(repeat(delivery.Run(1), 6)...)

	assert.Equal(t, PhaseTied, u.m.Phase)
	assert.Nil(t, u.m.Result)
	_, err := u.m.Bowl(u.stamp(), delivery.Run(1))
	assert.Equal(t, apperrors.CodeNoActiveInnings, apperrors.CodeOf(err))
	_, err = u.m.StartInnings(InningsSetup{BattingXI: []string{"b1", "b2"}, BowlingXI: []string{"a1"}, Striker: "b1", NonStriker: "b2", Bowler: "a1"})
	assert.Equal(t, apperrors.CodeWrongPhase, apperrors.CodeOf(err))

	require.NoError(t, u.m.SetupSuperOver())
	assert.Equal(t, PhaseSuperOverBreak, u.m.Phase)

	so1, err := u.m.StartInnings(InningsSetup{BattingXI: []string{"b4", "b7", "b9"}, BowlingXI: []string{"a11"}, Striker: "b4", NonStriker: "b7", Bowler: "a11"})
	require.NoError(t, err)
	assert.True(t, so1.Setup.SuperOver)
	assert.Equal(t, 1, so1.Setup.Overs)
	assert.Equal(t, 2, so1.WicketCap())
	assert.Len(t, so1.Setup.FieldingXI, 11)
	u.balls(delivery.Run(6), delivery.Run(1), delivery.Run(1), delivery.Run(1), delivery.Run(0), delivery.Run(0))

	assert.Equal(t, innings.EndSuperOverComplete, so1.EndReason)
	assert.Equal(t, 10, u.m.SuperOverTarget)
	assert.Equal(t, PhaseSuperOver2Break, u.m.Phase)

	_, err = u.m.StartInnings(InningsSetup{BattingXI: []string{"a1", "a2"}, BowlingXI: []string{"b1"}, Striker: "a1", NonStriker: "a2", Bowler: "b1"})
	require.NoError(t, err)
	u.balls(delivery.Run(6), delivery.Run(1), delivery.Run(1), delivery.Run(1), delivery.Run(0), delivery.Run(0))

	assert.Equal(t, PhaseComplete, u.m.Phase)
	assert.Equal(t, StatusCompleted, u.m.Status)
	require.NotNil(t, u.m.Result)
	assert.Equal(t, Result{Kind: Tied}, *u.m.Result)
	assert.Equal(t, "Match tied", u.m.Result.Summary(nil))
}

func tiedMatch(t *testing.T) *umpire {
	t.Helper()
	u := newMatch(t, smallRules(1))
	u.start("a", "b")
	u.balls(repeat(delivery.Run(1), 6)...)
	u.start("b", "a")
	u.balls(repeat(delivery.Run(1), 6)...)
	require.NoError(t, u.m.SetupSuperOver())
	return u
}

func TestSuperOverChaseWins(t *testing.T) {
	u := tiedMatch(t)
	_, err := u.m.StartInnings(InningsSetup{BattingXI: []string{"b1", "b2"}, BowlingXI: []string{"a1"}, Striker: "b1", NonStriker: "b2", Bowler: "a1"})
	require.NoError(t, err)
	u.balls(delivery.Run(4), bowled())

	so1 := u.m.Current()
	assert.Equal(t, innings.EndAllOut, so1.EndReason)
	assert.Equal(t, 1, so1.WicketCap())
	assert.Equal(t, 5, u.m.SuperOverTarget)

	_, err = u.m.StartInnings(InningsSetup{BattingXI: []string{"a1", "a2", "a3"}, BowlingXI: []string{"b1"}, Striker: "a1", NonStriker: "a2", Bowler: "b1"})
	require.NoError(t, err)
	u.balls(delivery.Run(6))

	require.NotNil(t, u.m.Result)
	assert.Equal(t, Result{Kind: SuperOverWin, WinnerID: "A", Margin: 2}, *u.m.Result)
	assert.Equal(t, "A won the Super Over by 2 runs", u.m.Result.Summary(nil))
	assert.Equal(t, "Team A won the Super Over by 2 runs", u.m.Result.Summary(func(id string) string { return "Team " + id }))
}

func TestSuperOverSelection(t *testing.T) {
	u := tiedMatch(t)
	cases := []struct {
		name string
		is   InningsSetup
		code apperrors.Code
	}{
		{"too many batters", InningsSetup{BattingXI: []string{"b1", "b2", "b3", "b4"}, BowlingXI: []string{"a1"}, Striker: "b1", NonStriker: "b2", Bowler: "a1"}, apperrors.CodeXISize},
		{"one batter", InningsSetup{BattingXI: []string{"b1"}, BowlingXI: []string{"a1"}, Striker: "b1", NonStriker: "b2", Bowler: "a1"}, apperrors.CodeXISize},
		{"two bowlers", InningsSetup{BattingXI: []string{"b1", "b2"}, BowlingXI: []string{"a1", "a2"}, Striker: "b1", NonStriker: "b2", Bowler: "a1"}, apperrors.CodeXISize},
		{"batter outside XI", InningsSetup{BattingXI: []string{"b1", "x9"}, BowlingXI: []string{"a1"}, Striker: "b1", NonStriker: "x9", Bowler: "a1"}, apperrors.CodeNotInXI},
		{"bowler from batting side", InningsSetup{BattingXI: []string{"b1", "b2"}, BowlingXI: []string{"b3"}, Striker: "b1", NonStriker: "b2", Bowler: "b3"}, apperrors.CodeNotInXI},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := u.m.StartInnings(tc.is)
			assert.Equal(t, tc.code, apperrors.CodeOf(err))
			assert.Equal(t, PhaseSuperOverBreak, u.m.Phase)
		})
	}
}

func TestUndoRestoresPriorInnings(t *testing.T) {
	outcomes := map[string]delivery.Outcome{
		"run":      delivery.Run(4),
		"wide":     delivery.Wide(2),
		"no ball":  delivery.NoBall(1),
		"bye":      delivery.Bye(3),
		"leg bye":  delivery.LegBye(1),
		"bowled":   bowled(),
		"caught":   delivery.Wicket(delivery.Caught, "b5", 0),
		"run out":  delivery.Wicket(delivery.RunOut, "b3", 1),
		"stumped":  delivery.Wicket(delivery.Stumped, "b11", 0),
		"dot":      delivery.Run(0),
	}
	for name, o := range outcomes {
		t.Run(name, func(t *testing.T) {
			u := newMatch(t, smallRules(3))
			u.start("a", "b")
			u.balls(delivery.Run(1), bowled(), delivery.Wide(0), delivery.Run(2), delivery.Run(3))
			u.ready()
			before := u.m.Current().Clone()

			d := u.ball(o)
			undone, err := u.m.Undo()
			require.NoError(t, err)
			assert.Equal(t, d, undone)
			assert.Equal(t, before, u.m.Current())
		})
	}
}

func TestUndoWicketReturnsBatterToStrike(t *testing.T) {
	u := newMatch(t, smallRules(2))
	u.start("a", "b")
	u.ball(delivery.Run(1))
	u.ball(bowled())
	require.NoError(t, u.m.SelectBatter("a3"))

	_, err := u.m.Undo()
	require.NoError(t, err)
	in := u.m.Current()
	assert.Equal(t, "a2", in.Striker)
	assert.Equal(t, "a1", in.NonStriker)
	assert.Equal(t, 0, in.Wickets)
	assert.Empty(t, in.FallOfWickets)
	assert.False(t, in.Batters["a2"].Out())
	assert.NotContains(t, in.Batters, "a3")
}

func TestUndoBoundaries(t *testing.T) {
	u := newMatch(t, smallRules(1))
	u.start("a", "b")

	_, err := u.m.Undo()
	assert.Equal(t, apperrors.CodeNothingToUndo, apperrors.CodeOf(err))
	assert.True(t, apperrors.IsInvariant(err))

	u.balls(repeat(delivery.Run(1), 6)...)
	_, err = u.m.Undo()
	assert.Equal(t, apperrors.CodeInningsClosed, apperrors.CodeOf(err))

	u.start("b", "a")
	_, err = u.m.Undo()
	assert.Equal(t, apperrors.CodeInningsClosed, apperrors.CodeOf(err))
	assert.True(t, apperrors.IsPrecondition(err))
}

func TestDeleteBallInCurrentOver(t *testing.T) {
	u := newMatch(t, smallRules(2))
	u.start("a", "b")
	u.balls(repeat(delivery.Run(0), 6)...)
	old := u.m.Current().Log()[2]

	u.ball(delivery.Run(1))
	four := u.ball(delivery.Run(4))
	u.ball(delivery.Run(2))

	removed, err := u.m.DeleteBall(four.Seq)
	require.NoError(t, err)
	assert.Equal(t, four, removed)

	in := u.m.Current()
	assert.Equal(t, 3, in.Runs)
	assert.Len(t, in.BallsThisOver, 2)
	assert.Equal(t, 2, in.OverBalls)
	assert.Equal(t, 0, in.Batters[four.StrikerID].Fours)
	assert.Equal(t, "1.2", in.Overs())

	_, err = u.m.DeleteBall(old.Seq)
	assert.Equal(t, apperrors.CodeBallNotInOver, apperrors.CodeOf(err))
	_, err = u.m.DeleteBall(999)
	assert.Equal(t, apperrors.CodeBallNotInOver, apperrors.CodeOf(err))
}

func TestDeleteBallRebuildsCursor(t *testing.T) {
	cases := []struct {
		name        string
		script      []delivery.Outcome
		remove      int
		striker     string
		nonStriker  string
		runs        int
		eligible    []string
		partnership innings.Partnership
	}{
		{
			name:        "mid-over wicket",
			script:      []delivery.Outcome{delivery.Run(1), bowled(), delivery.Run(2)},
			remove:      1,
			striker:     "a3",
			nonStriker:  "a1",
			runs:        3,
			eligible:    []string{"a2", "a4", "a5", "a6", "a7", "a8", "a9", "a10", "a11"},
			partnership: innings.Partnership{BatterA: "a1", BatterB: "a3", Runs: 3, Balls: 2},
		},
		{
			name:        "odd run",
			script:      []delivery.Outcome{delivery.Run(2), delivery.Run(1), delivery.Run(0)},
			remove:      1,
			striker:     "a2",
			nonStriker:  "a1",
			runs:        2,
			eligible:    xi("a", 11)[2:],
			partnership: innings.Partnership{BatterA: "a1", BatterB: "a2", Runs: 2, Balls: 2},
		},
		{
			name:        "no ball",
			script:      []delivery.Outcome{delivery.Run(1), delivery.NoBall(1), delivery.Run(0)},
			remove:      1,
			striker:     "a1",
			nonStriker:  "a2",
			runs:        1,
			eligible:    xi("a", 11)[2:],
			partnership: innings.Partnership{BatterA: "a1", BatterB: "a2", Runs: 1, Balls: 2},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := newMatch(t, smallRules(2))
			u.start("a", "b")
			var bowledBalls []delivery.Delivery
			for _, o := range tc.script {
				bowledBalls = append(bowledBalls, u.ball(o))
			}
			target := bowledBalls[tc.remove]

			removed, err := u.m.DeleteBall(target.Seq)
			require.NoError(t, err)
			assert.Equal(t, target, removed)

			in := u.m.Current()
			assert.Equal(t, tc.striker, in.Striker)
			assert.Equal(t, tc.nonStriker, in.NonStriker)
			assert.Equal(t, "b1", in.Bowler)
			assert.Equal(t, tc.runs, in.Runs)
			assert.Equal(t, 0, in.Wickets)
			assert.Empty(t, in.FallOfWickets)
			assert.Empty(t, in.Partnerships)
			assert.Equal(t, tc.eligible, in.EligibleBatters())
			assert.Equal(t, tc.partnership, in.Partnership)
			assert.Equal(t, 0, in.Extras.NoBalls)
			assert.NoError(t, in.Ready())

			u.ball(delivery.Run(0))
			assert.Equal(t, tc.runs, u.m.Current().Runs)
		})
	}
}

func TestDeletedWicketBatterCanReturn(t *testing.T) {
	u := newMatch(t, Rules{Overs: 2, MaxOversPerBowler: 1, PlayersPerSide: 3})
	u.start("a", "b")
	wicket := u.ball(bowled())
	u.ball(delivery.Run(0))
	require.Equal(t, "a3", u.m.Current().Striker)

	_, err := u.m.DeleteBall(wicket.Seq)
	require.NoError(t, err)
	in := u.m.Current()
	assert.Equal(t, 0, in.Wickets)
	assert.False(t, in.Batters["a1"].Out())
	assert.Equal(t, []string{"a1"}, in.EligibleBatters())

	u.ball(bowled())
	in = u.m.Current()
	assert.Equal(t, 1, in.Wickets)
	assert.True(t, in.Open(), "one wicket of two down")
	assert.Equal(t, []innings.FallOfWicket{{Wicket: 1, Runs: 0, BatterID: "a3", Over: "0.2"}}, in.FallOfWickets)
	require.NoError(t, u.m.SelectBatter("a1"))
	assert.Equal(t, "a1", in.Striker)

	u.ball(delivery.Run(1))
	assert.Equal(t, 1, u.m.Current().Runs)
}

func TestReopenCompletedMatch(t *testing.T) {
	u := newMatch(t, smallRules(1))
	u.start("a", "b")
	u.balls(repeat(delivery.Run(4), 6)...)
	u.start("b", "a")
	u.balls(repeat(delivery.Run(1), 6)...)
	require.Equal(t, StatusCompleted, u.m.Status)

	require.NoError(t, u.m.Reopen())
	assert.Equal(t, StatusInProgress, u.m.Status)
	assert.Equal(t, PhaseInnings2, u.m.Phase)
	assert.Nil(t, u.m.Result)
	assert.True(t, u.m.Current().Open())
	assert.Equal(t, 25, u.m.Target)

	_, err := u.m.Bowl(u.stamp(), delivery.Run(1))
	assert.Equal(t, apperrors.CodeInningsOver, apperrors.CodeOf(err))

	_, err = u.m.Undo()
	require.NoError(t, err)
	u.ball(delivery.Run(6))
	require.NotNil(t, u.m.Result)
	assert.Equal(t, Result{Kind: WinByRuns, WinnerID: "A", Margin: 13}, *u.m.Result)
}

func TestReopenDiscardsUnbowledInnings(t *testing.T) {
	u := newMatch(t, smallRules(1))
	u.start("a", "b")
	u.balls(repeat(delivery.Run(2), 6)...)
	u.start("b", "a")

	require.NoError(t, u.m.Reopen())
	assert.Len(t, u.m.Innings, 1)
	assert.Equal(t, PhaseInnings1, u.m.Phase)
	assert.Equal(t, 0, u.m.Target)

	err := u.m.Reopen()
	assert.Equal(t, apperrors.CodeNotCompleted, apperrors.CodeOf(err))
}

func TestCancelAndDeleteResult(t *testing.T) {
	u := newMatch(t, smallRules(1))
	err := u.m.DeleteResult()
	assert.Equal(t, apperrors.CodeNotCompleted, apperrors.CodeOf(err))

	u.start("a", "b")
	u.balls(delivery.Run(1), delivery.Run(2))
	require.NoError(t, u.m.Cancel())
	assert.Equal(t, StatusCancelled, u.m.Status)
	assert.Equal(t, PhaseTossPending, u.m.Phase)
	assert.Empty(t, u.m.Innings)

	_, err = u.m.Bowl(u.stamp(), delivery.Run(1))
	assert.Equal(t, apperrors.CodeMatchClosed, apperrors.CodeOf(err))
	assert.Equal(t, apperrors.CodeMatchClosed, apperrors.CodeOf(u.m.Cancel()))
	assert.Equal(t, apperrors.CodeMatchClosed, apperrors.CodeOf(u.m.Reopen()))

	done := newMatch(t, smallRules(1))
	done.start("a", "b")
	done.balls(repeat(delivery.Run(1), 6)...)
	done.start("b", "a")
	done.balls(repeat(delivery.Run(0), 6)...)
	assert.Equal(t, apperrors.CodeMatchClosed, apperrors.CodeOf(done.m.Cancel()))

	require.NoError(t, done.m.DeleteResult())
	assert.Equal(t, StatusDeleted, done.m.Status)
	assert.Nil(t, done.m.Result)
	assert.Empty(t, done.m.Innings)
}

func TestRestoreFoldsLogAndKeepsSelections(t *testing.T) {
	u := newMatch(t, smallRules(2))
	u.start("a", "b")
	u.balls(delivery.Run(1), delivery.Run(4), bowled())
	require.NoError(t, u.m.SelectBatter("a3"))

	live := u.m.Current()
	snap := live.Clone()
	m, err := Restore(u.m.Header, []*innings.Innings{snap}, live.Log())
	require.NoError(t, err)

	got := m.Current()
	assert.Equal(t, live.Score(), got.Score())
	assert.Equal(t, "a3", got.Striker)
	assert.Equal(t, live.NonStriker, got.NonStriker)
	assert.Equal(t, live.Batters, got.Batters)
	assert.NoError(t, Verify(u.m.Header, []*innings.Innings{snap}, live.Log()))
}

func TestRestoreIgnoresStaleSelections(t *testing.T) {
	u := newMatch(t, smallRules(2))
	u.start("a", "b")
	u.ball(bowled())
	require.NoError(t, u.m.SelectBatter("a3"))
	stale := u.m.Current().Clone()
	u.ball(delivery.Run(1))

	m, err := Restore(u.m.Header, []*innings.Innings{stale}, u.m.Current().Log())
	require.NoError(t, err)
	assert.Equal(t, u.m.Current().Striker, m.Current().Striker)
	assert.Equal(t, 1, m.Current().Runs)
}

func TestVerifyReportsDivergence(t *testing.T) {
	u := newMatch(t, smallRules(2))
	u.start("a", "b")
	u.balls(delivery.Run(1), delivery.Run(4))

	snap := u.m.Current().Clone()
	snap.Runs = 99
	err := Verify(u.m.Header, []*innings.Innings{snap}, u.m.Current().Log())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeReplayDiverged, apperrors.CodeOf(err))

	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.DetailString(), "total_runs stored=99 replayed=5")
}

func TestRestoreRejectsOrphanDeliveries(t *testing.T) {
	u := newMatch(t, smallRules(2))
	u.start("a", "b")
	u.balls(delivery.Run(1))
	log := u.m.Current().Log()
	log[0].Innings = 2

	_, err := Restore(u.m.Header, []*innings.Innings{u.m.Current().Clone()}, log)
	assert.Equal(t, apperrors.CodeLogMismatch, apperrors.CodeOf(err))
}
