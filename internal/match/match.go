// Package match sequences the innings of a limited-overs match: toss, first
// and second innings, the Super Over tie-break, and the final result.
//
// A Match is a plain value. It performs no I/O and holds no locks; callers
// serialize access per match id (see the engine) and persist what changed.
package match

import (
	"fmt"

	"github.com/roach88/crease/internal/apperrors"
	"github.com/roach88/crease/internal/innings"
)

// Phase is the orchestrator's position in the match.
type Phase string

const (
	PhaseTossPending     Phase = "toss_pending"
	PhaseInnings1        Phase = "innings1"
	PhaseInningsBreak    Phase = "innings_break"
	PhaseInnings2        Phase = "innings2"
	PhaseTied            Phase = "tied"
	PhaseSuperOverBreak  Phase = "super_over_break"
	PhaseSuperOver1      Phase = "super_over1"
	PhaseSuperOver2Break Phase = "super_over2_break"
	PhaseSuperOver2      Phase = "super_over2"
	PhaseComplete        Phase = "complete"
)

// Status is the overall match state.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusDeleted    Status = "deleted"
)

// TossDecision is what the toss winner chose.
type TossDecision string

const (
	TossBat  TossDecision = "bat"
	TossBowl TossDecision = "bowl"
)

// ResultKind classifies a final result.
type ResultKind string

const (
	WinByRuns    ResultKind = "win_by_runs"
	WinByWickets ResultKind = "win_by_wickets"
	SuperOverWin ResultKind = "super_over_win"
	Tied         ResultKind = "tied"
)

// Result is the outcome of a completed match. WinnerID is empty for a tie.
type Result struct {
	Kind     ResultKind `json:"kind"`
	WinnerID string     `json:"winner_id,omitempty"`
	Margin   int        `json:"margin"`
}

// Summary renders the result, naming teams through name (nil uses ids).
func (r Result) Summary(name func(id string) string) string {
	if name == nil {
		name = func(id string) string { return id }
	}
	switch r.Kind {
	case WinByRuns:
		return fmt.Sprintf("%s won by %s", name(r.WinnerID), plural(r.Margin, "run"))
	case WinByWickets:
		return fmt.Sprintf("%s won by %s", name(r.WinnerID), plural(r.Margin, "wicket"))
	case SuperOverWin:
		return fmt.Sprintf("%s won the Super Over by %s", name(r.WinnerID), plural(r.Margin, "run"))
	case Tied:
		return "Match tied"
	}
	return ""
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Rules are the configuration inputs fixed at match start.
type Rules struct {
	Overs             int  `json:"overs" yaml:"overs"`
	MaxOversPerBowler int  `json:"max_overs_per_bowler" yaml:"max_overs_per_bowler"`
	PowerBall         bool `json:"power_ball" yaml:"power_ball"`
	PlayersPerSide    int  `json:"players_per_side" yaml:"players_per_side"`
}

// Rule bounds.
const (
	MinOvers          = 1
	MaxOvers          = 20
	MinPlayersPerSide = 2
	MaxPlayersPerSide = 11
)

// DefaultRules is a standard T20.
func DefaultRules() Rules {
	return Rules{
		Overs:             20,
		MaxOversPerBowler: 4,
		PowerBall:         false,
		PlayersPerSide:    11,
	}
}

// Validate checks rule bounds.
func (r Rules) Validate() error {
	if r.Overs < MinOvers || r.Overs > MaxOvers {
		return apperrors.Precondition(apperrors.CodeInvalidRules,
			"overs per innings must be %d-%d, got %d", MinOvers, MaxOvers, r.Overs)
	}
	if r.MaxOversPerBowler < 1 {
		return apperrors.Precondition(apperrors.CodeInvalidRules,
			"max overs per bowler must be at least 1, got %d", r.MaxOversPerBowler)
	}
	if r.PlayersPerSide < MinPlayersPerSide || r.PlayersPerSide > MaxPlayersPerSide {
		return apperrors.Precondition(apperrors.CodeInvalidRules,
			"players per side must be %d-%d, got %d", MinPlayersPerSide, MaxPlayersPerSide, r.PlayersPerSide)
	}
	return nil
}

// Setup is what is known once the toss is confirmed.
type Setup struct {
	FixtureID    string       `json:"fixture_id,omitempty"`
	Team1ID      string       `json:"team1_id"`
	Team2ID      string       `json:"team2_id"`
	TossWinnerID string       `json:"toss_winner_id"`
	TossDecision TossDecision `json:"toss_decision"`
	Rules        Rules        `json:"rules"`
}

// Validate checks teams, toss and rules.
func (s Setup) Validate() error {
	if s.Team1ID == "" || s.Team2ID == "" {
		return apperrors.Precondition(apperrors.CodeUnknownTeam, "both teams are required")
	}
	if s.Team1ID == s.Team2ID {
		return apperrors.Precondition(apperrors.CodeDuplicateTeam,
			"team %s cannot play itself", s.Team1ID).With("team", s.Team1ID)
	}
	if s.TossWinnerID != s.Team1ID && s.TossWinnerID != s.Team2ID {
		return apperrors.Precondition(apperrors.CodeUnknownTeam,
			"toss winner %q is not playing", s.TossWinnerID).With("team", s.TossWinnerID)
	}
	if s.TossDecision != TossBat && s.TossDecision != TossBowl {
		return apperrors.Precondition(apperrors.CodeInvalidRecord,
			"toss decision must be bat or bowl, got %q", s.TossDecision)
	}
	return s.Rules.Validate()
}

// Header is the lifecycle part of a match; innings aggregates are derived
// from the delivery log.
type Header struct {
	ID              string  `json:"id"`
	Setup           Setup   `json:"setup"`
	Phase           Phase   `json:"phase"`
	Status          Status  `json:"status"`
	Target          int     `json:"target"`
	SuperOverTarget int     `json:"super_over_target"`
	Result          *Result `json:"result,omitempty"`
}

// Match is a header plus its innings in order.
type Match struct {
	Header
	Innings []*innings.Innings `json:"innings"`
}

// New creates a match at the confirmed toss.
func New(id string, s Setup) (*Match, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Match{
		Header: Header{
			ID:     id,
			Setup:  s,
			Phase:  PhaseTossPending,
			Status: StatusNotStarted,
		},
		Innings: []*innings.Innings{},
	}, nil
}

// Current returns the latest innings, or nil before the first starts.
func (m *Match) Current() *innings.Innings {
	if len(m.Innings) == 0 {
		return nil
	}
	return m.Innings[len(m.Innings)-1]
}

// InningsByNumber returns innings n (1-4), or nil.
func (m *Match) InningsByNumber(n int) *innings.Innings {
	for _, in := range m.Innings {
		if in.Setup.Number == n {
			return in
		}
	}
	return nil
}

// BattingTeam returns the team that bats in innings n. The team that batted
// second in the match bats first in the Super Over.
func (m *Match) BattingTeam(n int) string {
	s := m.Setup
	first := s.TossWinnerID
	if s.TossDecision == TossBowl {
		first = m.Opponent(s.TossWinnerID)
	}
	switch n {
	case 1, 4:
		return first
	default:
		return m.Opponent(first)
	}
}

// BowlingTeam returns the team that bowls in innings n.
func (m *Match) BowlingTeam(n int) string {
	return m.Opponent(m.BattingTeam(n))
}

// Opponent returns the other team.
func (m *Match) Opponent(teamID string) string {
	if teamID == m.Setup.Team1ID {
		return m.Setup.Team2ID
	}
	return m.Setup.Team1ID
}

// TargetFor returns the chase target for innings n, or 0.
func (m *Match) TargetFor(n int) int {
	switch n {
	case 2:
		return m.Target
	case 4:
		return m.SuperOverTarget
	}
	return 0
}

// Snapshot is the before/after record written to the audit log.
type Snapshot struct {
	TotalRuns    int    `json:"total_runs"`
	TotalWickets int    `json:"total_wickets"`
	Innings      int    `json:"innings"`
	Phase        Phase  `json:"phase"`
	Status       Status `json:"status"`
}

// Snapshot captures the current innings score and match state.
func (m *Match) Snapshot() Snapshot {
	s := Snapshot{Phase: m.Phase, Status: m.Status}
	if in := m.Current(); in != nil {
		s.TotalRuns = in.Runs
		s.TotalWickets = in.Wickets
		s.Innings = in.Setup.Number
	}
	return s
}

// DeliveryCount is the number of deliveries across all innings.
func (m *Match) DeliveryCount() int {
	n := 0
	for _, in := range m.Innings {
		n += len(in.Log())
	}
	return n
}

// Clone returns a deep copy.
func (m *Match) Clone() *Match {
	c := &Match{Header: m.Header}
	if m.Result != nil {
		r := *m.Result
		c.Result = &r
	}
	c.Innings = make([]*innings.Innings, len(m.Innings))
	for i, in := range m.Innings {
		c.Innings[i] = in.Clone()
	}
	return c
}

// Closed reports whether the match accepts no further scoring.
func (m *Match) Closed() bool {
	return m.Status == StatusCancelled || m.Status == StatusDeleted
}

func inningsPhase(n int) Phase {
	switch n {
	case 1:
		return PhaseInnings1
	case 2:
		return PhaseInnings2
	case 3:
		return PhaseSuperOver1
	case 4:
		return PhaseSuperOver2
	}
	return ""
}

// nextInnings maps a break phase to the innings that starts from it.
func nextInnings(p Phase) int {
	switch p {
	case PhaseTossPending:
		return 1
	case PhaseInningsBreak:
		return 2
	case PhaseSuperOverBreak:
		return 3
	case PhaseSuperOver2Break:
		return 4
	}
	return 0
}
