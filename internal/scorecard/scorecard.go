// Package scorecard builds the read model shown to scorers and spectators:
// batting and bowling cards, extras, fall of wickets, partnerships and run
// rates. Everything here is derived from match state; nothing is stored.
package scorecard

import (
	"fmt"
	"strings"

	"github.com/roach88/crease/internal/delivery"
	"github.com/roach88/crease/internal/innings"
	"github.com/roach88/crease/internal/match"
)

// Card is a whole-match scorecard.
type Card struct {
	MatchID string        `json:"match_id"`
	Title   string        `json:"title"`
	Phase   match.Phase   `json:"phase"`
	Status  match.Status  `json:"status"`
	Result  string        `json:"result,omitempty"`
	Innings []InningsCard `json:"innings"`
}

// InningsCard is one innings.
type InningsCard struct {
	Number        int              `json:"number"`
	Label         string           `json:"label"`
	BattingTeam   string           `json:"batting_team"`
	BowlingTeam   string           `json:"bowling_team"`
	Total         string           `json:"total"`
	Overs         string           `json:"overs"`
	RunRate       string           `json:"run_rate"`
	Target        int              `json:"target,omitempty"`
	RequiredRate  string           `json:"required_rate,omitempty"`
	Status        innings.Status   `json:"status"`
	EndReason     string           `json:"end_reason,omitempty"`
	Batting       []BattingRow     `json:"batting"`
	Extras        ExtrasLine       `json:"extras"`
	Bowling       []BowlingRow     `json:"bowling"`
	FallOfWickets []string         `json:"fall_of_wickets"`
	Partnerships  []PartnershipRow `json:"partnerships"`
	ThisOver      []string         `json:"this_over,omitempty"`
}

// BattingRow is one batter's line.
type BattingRow struct {
	Name       string `json:"name"`
	Dismissal  string `json:"dismissal"`
	Runs       int    `json:"runs"`
	Balls      int    `json:"balls"`
	Fours      int    `json:"fours"`
	Sixes      int    `json:"sixes"`
	StrikeRate string `json:"strike_rate"`
	OnStrike   bool   `json:"on_strike,omitempty"`
}

// ExtrasLine breaks extras down by kind.
type ExtrasLine struct {
	Total   int `json:"total"`
	Wides   int `json:"wides"`
	NoBalls int `json:"no_balls"`
	Byes    int `json:"byes"`
	LegByes int `json:"leg_byes"`
}

// BowlingRow is one bowler's line.
type BowlingRow struct {
	Name    string `json:"name"`
	Overs   string `json:"overs"`
	Maidens int    `json:"maidens"`
	Runs    int    `json:"runs"`
	Wickets int    `json:"wickets"`
	Wides   int    `json:"wides"`
	NoBalls int    `json:"no_balls"`
	Economy string `json:"economy"`
}

// PartnershipRow is a stand between two batters. Wicket is 0 while unbroken.
type PartnershipRow struct {
	Wicket  int    `json:"wicket"`
	Batters string `json:"batters"`
	Runs    int    `json:"runs"`
	Balls   int    `json:"balls"`
}

// Option configures Build.
type Option func(*builder)

// WithNames displays names instead of ids. Ids missing from names are shown
// as-is.
func WithNames(names map[string]string) Option {
	return func(b *builder) {
		b.names = names
	}
}

type builder struct {
	names map[string]string
}

func (b *builder) name(id string) string {
	if n, ok := b.names[id]; ok && n != "" {
		return n
	}
	return id
}

// Build derives a scorecard from a match.
func Build(m *match.Match, opts ...Option) *Card {
	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}

	c := &Card{
		MatchID: m.ID,
		Title:   fmt.Sprintf("%s v %s", b.name(m.Setup.Team1ID), b.name(m.Setup.Team2ID)),
		Phase:   m.Phase,
		Status:  m.Status,
		Innings: []InningsCard{},
	}
	if m.Result != nil {
		c.Result = m.Result.Summary(b.name)
	}
	for _, in := range m.Innings {
		c.Innings = append(c.Innings, b.innings(in, m.TargetFor(in.Setup.Number)))
	}
	return c
}

func (b *builder) innings(in *innings.Innings, target int) InningsCard {
	ic := InningsCard{
		Number:        in.Setup.Number,
		Label:         label(in.Setup.Number),
		BattingTeam:   b.name(in.Setup.BattingTeamID),
		BowlingTeam:   b.name(in.Setup.BowlingTeamID),
		Total:         fmt.Sprintf("%d/%d", in.Runs, in.Wickets),
		Overs:         in.Overs(),
		RunRate:       fmt.Sprintf("%.2f", in.RunRate()),
		Target:        target,
		Status:        in.Status,
		EndReason:     string(in.EndReason),
		Batting:       []BattingRow{},
		Bowling:       []BowlingRow{},
		FallOfWickets: []string{},
		Partnerships:  []PartnershipRow{},
		Extras: ExtrasLine{
			Total:   in.Extras.Total(),
			Wides:   in.Extras.Wides,
			NoBalls: in.Extras.NoBalls,
			Byes:    in.Extras.Byes,
			LegByes: in.Extras.LegByes,
		},
	}

	if target > 0 && in.Open() {
		ic.RequiredRate = requiredRate(target-in.Runs, in.BallsRemaining())
	}

	for _, id := range in.BattingOrder {
		f := in.Batters[id]
		ic.Batting = append(ic.Batting, BattingRow{
			Name:       b.name(id),
			Dismissal:  b.dismissal(f.Dismissal),
			Runs:       f.Runs,
			Balls:      f.Balls,
			Fours:      f.Fours,
			Sixes:      f.Sixes,
			StrikeRate: strikeRate(f.Runs, f.Balls),
			OnStrike:   in.Open() && id == in.Striker,
		})
	}

	for _, id := range in.BowlingOrder {
		f := in.Bowlers[id]
		ic.Bowling = append(ic.Bowling, BowlingRow{
			Name:    b.name(id),
			Overs:   delivery.FormatOvers(f.Balls/delivery.BallsPerOver, f.Balls%delivery.BallsPerOver),
			Maidens: f.Maidens,
			Runs:    f.Runs,
			Wickets: f.Wickets,
			Wides:   f.Wides,
			NoBalls: f.NoBalls,
			Economy: economy(f.Runs, f.Balls),
		})
	}

	for _, w := range in.FallOfWickets {
		ic.FallOfWickets = append(ic.FallOfWickets,
			fmt.Sprintf("%d-%d (%s, %s ov)", w.Wicket, w.Runs, b.name(w.BatterID), w.Over))
	}

	for _, p := range in.Partnerships {
		ic.Partnerships = append(ic.Partnerships, b.partnership(p))
	}
	if in.Partnership.BatterB != "" {
		ic.Partnerships = append(ic.Partnerships, b.partnership(in.Partnership))
	}

	for _, d := range in.OverDeliveries() {
		ic.ThisOver = append(ic.ThisOver, d.Notation())
	}
	return ic
}

func (b *builder) partnership(p innings.Partnership) PartnershipRow {
	return PartnershipRow{
		Wicket:  p.Wicket,
		Batters: b.name(p.BatterA) + " & " + b.name(p.BatterB),
		Runs:    p.Runs,
		Balls:   p.Balls,
	}
}

// dismissal renders the scorecard form: "c Smith b Jones", "run out (Lee)".
func (b *builder) dismissal(d *innings.Dismissal) string {
	if d == nil {
		return "not out"
	}
	bowler := b.name(d.BowlerID)
	fielder := b.name(d.FielderID)
	switch d.Kind {
	case delivery.Caught:
		if d.FielderID == d.BowlerID {
			return "c & b " + bowler
		}
		return fmt.Sprintf("c %s b %s", fielder, bowler)
	case delivery.Stumped:
		return fmt.Sprintf("st %s b %s", fielder, bowler)
	case delivery.Bowled:
		return "b " + bowler
	case delivery.LBW, delivery.HitWicket, delivery.HitSix:
		return fmt.Sprintf("%s b %s", d.Kind.Label(), bowler)
	case delivery.RunOut:
		if d.FielderID == "" {
			return "run out"
		}
		return fmt.Sprintf("run out (%s)", fielder)
	}
	return d.Kind.Label()
}

func label(n int) string {
	switch n {
	case 1:
		return "1st innings"
	case 2:
		return "2nd innings"
	default:
		return fmt.Sprintf("Super Over %d", n-2)
	}
}

func strikeRate(runs, balls int) string {
	if balls == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", float64(runs)*100/float64(balls))
}

func economy(runs, balls int) string {
	if balls == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", float64(runs)*delivery.BallsPerOver/float64(balls))
}

func requiredRate(runs, balls int) string {
	if runs <= 0 {
		return "0.00"
	}
	if balls == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", float64(runs)*delivery.BallsPerOver/float64(balls))
}

// Summary is the one-line state of the latest innings: "A 27/1 (2.0)".
func (c *Card) Summary() string {
	if len(c.Innings) == 0 {
		return c.Title + ": " + string(c.Phase)
	}
	in := c.Innings[len(c.Innings)-1]
	s := fmt.Sprintf("%s %s (%s)", in.BattingTeam, in.Total, in.Overs)
	if c.Result != "" {
		s += " - " + c.Result
	} else if in.Target > 0 && in.Status == innings.StatusInProgress {
		s += fmt.Sprintf(" - target %d", in.Target)
	}
	return strings.TrimSpace(s)
}
