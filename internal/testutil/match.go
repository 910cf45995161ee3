package testutil

import (
	"fmt"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/delivery"
	"github.com/roach88/crease/internal/match"
)

// XI returns n player ids "<prefix>1".."<prefix>n".
func XI(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return out
}

// Repeat returns o n times.
func Repeat(o delivery.Outcome, n int) []delivery.Outcome {
	out := make([]delivery.Outcome, n)
	for i := range out {
		out[i] = o
	}
	return out
}

// Bowled is a wicket with no fielder and no runs.
func Bowled() delivery.Outcome {
	return delivery.Wicket(delivery.Bowled, "", 0)
}

// Umpire drives an in-memory match from its cursor, picking the first
// eligible batter and bowler in XI order whenever a selection is pending.
type Umpire struct {
	t   require.TestingT
	M   *match.Match
	seq int64
}

// NewUmpire starts match "m1" between teams A and B; A wins the toss and bats.
func NewUmpire(t require.TestingT, rules match.Rules) *Umpire {
	m, err := match.New("m1", match.Setup{
		Team1ID:      "A",
		Team2ID:      "B",
		TossWinnerID: "A",
		TossDecision: match.TossBat,
		Rules:        rules,
	})
	require.NoError(t, err)
	return &Umpire{t: t, M: m}
}

// Start opens the next innings with full XIs named after the prefixes.
func (u *Umpire) Start(batting, bowling string) {
	n := u.M.Setup.Rules.PlayersPerSide
	_, err := u.M.StartInnings(match.InningsSetup{
		BattingXI:  XI(batting, n),
		BowlingXI:  XI(bowling, n),
		Striker:    batting + "1",
		NonStriker: batting + "2",
		Bowler:     bowling + "1",
	})
	require.NoError(u.t, err)
}

// Ball fills any pending selection and bowls o.
func (u *Umpire) Ball(o delivery.Outcome) delivery.Delivery {
	in := u.M.Current()
	if in.NeedsBatter() {
		require.NoError(u.t, u.M.SelectBatter(in.EligibleBatters()[0]))
	}
	if in.NeedsBowler() {
		require.NoError(u.t, u.M.SelectBowler(in.AvailableBowlers()[0]))
	}
	u.seq++
	d, err := u.M.Bowl(delivery.Stamp{
		Seq: u.seq,
		ID:  fmt.Sprintf("d%d", u.seq),
		At:  Kickoff.Add(time.Duration(u.seq) * time.Minute),
	}, o)
	require.NoError(u.t, err)
	return d
}

// Balls bowls each outcome in turn.
func (u *Umpire) Balls(os ...delivery.Outcome) {
	for _, o := range os {
		u.Ball(o)
	}
}

// FirstInnings is a two-over innings for 27/1: a catch, a wide, a no-ball,
// byes and leg-byes.
var FirstInnings = []delivery.Outcome{
	delivery.Run(4), delivery.Run(1), delivery.Wide(0), delivery.Run(0),
	delivery.Wicket(delivery.Caught, "b5", 0), delivery.Run(6), delivery.Run(2),
	delivery.LegBye(1), delivery.NoBall(4), delivery.Run(0), delivery.Run(1),
	delivery.Bye(2), delivery.Run(0), delivery.Run(4),
}

// Chase scores 28 without loss off five balls.
var Chase = []delivery.Outcome{
	delivery.Run(6), delivery.Run(6), delivery.Run(6), delivery.Run(6), delivery.Run(4),
}

// CompletedMatch plays a two-over match: A make 27/1 and B chase 28 off
// 0.5 overs, winning by 10 wickets.
func CompletedMatch(t require.TestingT) *match.Match {
	u := NewUmpire(t, match.Rules{Overs: 2, MaxOversPerBowler: 1, PlayersPerSide: 11})
	u.Start("a", "b")
	u.Balls(FirstInnings...)
	u.Start("b", "a")
	u.Balls(Chase...)
	return u.M
}
