// Package innings folds an ordered delivery log into an innings aggregate.
//
// The aggregate is never edited field by field from outside: every total,
// figure, partnership and fall of wicket is the result of applying the log in
// order, so removing a delivery and replaying produces exactly the state that
// would have existed had it never been bowled.
package innings

import (
	"github.com/roach88/crease/internal/apperrors"
	"github.com/roach88/crease/internal/delivery"
)

// Wicket caps before the XI size is taken into account.
const (
	MaxWickets          = 10
	MaxSuperOverWickets = 2
)

// Status is the innings lifecycle state.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// EndReason records why an innings closed.
type EndReason string

const (
	EndNone              EndReason = ""
	EndAllOut            EndReason = "all_out"
	EndOversComplete     EndReason = "overs_complete"
	EndTargetReached     EndReason = "target_reached"
	EndSuperOverComplete EndReason = "super_over_complete"
)

// Setup is fixed when the innings starts.
type Setup struct {
	MatchID           string   `json:"match_id"`
	Number            int      `json:"number"`
	SuperOver         bool     `json:"super_over"`
	BattingTeamID     string   `json:"batting_team_id"`
	BowlingTeamID     string   `json:"bowling_team_id"`
	BattingXI         []string `json:"batting_xi"`
	BowlingXI         []string `json:"bowling_xi"`
	FieldingXI        []string `json:"fielding_xi"`
	Striker           string   `json:"striker"`
	NonStriker        string   `json:"non_striker"`
	Bowler            string   `json:"bowler"`
	Overs             int      `json:"overs"`
	MaxOversPerBowler int      `json:"max_overs_per_bowler"`
	PowerBall         bool     `json:"power_ball"`
}

// Dismissal records how a batter got out.
type Dismissal struct {
	Kind      delivery.DismissalKind `json:"kind"`
	BowlerID  string                 `json:"bowler_id,omitempty"`
	FielderID string                 `json:"fielder_id,omitempty"`
}

// BatterFigure is one batter's line.
type BatterFigure struct {
	PlayerID  string     `json:"player_id"`
	Runs      int        `json:"runs"`
	Balls     int        `json:"balls"`
	Fours     int        `json:"fours"`
	Sixes     int        `json:"sixes"`
	Dots      int        `json:"dot_balls"`
	Dismissal *Dismissal `json:"dismissal,omitempty"`
}

// Out reports whether the batter has been dismissed.
func (b *BatterFigure) Out() bool {
	return b.Dismissal != nil
}

// Fielding counts dismissals a fielder took part in.
type Fielding struct {
	Catches   int `json:"catches"`
	RunOuts   int `json:"run_outs"`
	Stumpings int `json:"stumpings"`
}

// BowlerFigure is one bowler's line. Fielders who never bowl still get a
// figure so their fielding is recorded.
type BowlerFigure struct {
	PlayerID  string   `json:"player_id"`
	Balls     int      `json:"balls"`
	Runs      int      `json:"runs"`
	Wickets   int      `json:"wickets"`
	Maidens   int      `json:"maidens"`
	Wides     int      `json:"wides"`
	NoBalls   int      `json:"no_balls"`
	Dots      int      `json:"dot_balls"`
	OverRuns  int      `json:"current_over_runs"`
	OverBalls int      `json:"current_over_balls"`
	Fielding  Fielding `json:"fielding"`
}

// Overs is the number of completed overs bowled.
func (b *BowlerFigure) Overs() int {
	return b.Balls / delivery.BallsPerOver
}

// Partnership is the running stand of the current pair.
type Partnership struct {
	BatterA string `json:"batter_a"`
	BatterB string `json:"batter_b"`
	Runs    int    `json:"runs"`
	Balls   int    `json:"balls"`
	// Wicket is the wicket number that ended the stand; 0 while unbroken.
	Wicket int `json:"wicket"`
}

func (p Partnership) has(id string) bool {
	return id != "" && (p.BatterA == id || p.BatterB == id)
}

// FallOfWicket is the score when a wicket fell.
type FallOfWicket struct {
	Wicket   int    `json:"wicket"`
	Runs     int    `json:"runs"`
	BatterID string `json:"batter_id"`
	Over     string `json:"over"`
}

// Extras breaks down runs not credited to a batter.
type Extras struct {
	Wides   int `json:"wides"`
	NoBalls int `json:"no_balls"`
	Byes    int `json:"byes"`
	LegByes int `json:"leg_byes"`
}

// Total sums every extras bucket.
func (e Extras) Total() int {
	return e.Wides + e.NoBalls + e.Byes + e.LegByes
}

// Score is the headline of an innings.
type Score struct {
	Runs    int `json:"total_runs"`
	Wickets int `json:"total_wickets"`
}

// Innings is the aggregate derived from one innings' delivery log plus the
// live cursor. An empty cursor slot means a selection is pending.
type Innings struct {
	Setup     Setup     `json:"setup"`
	Status    Status    `json:"status"`
	EndReason EndReason `json:"end_reason,omitempty"`

	Striker    string `json:"striker"`
	NonStriker string `json:"non_striker"`
	Bowler     string `json:"bowler"`
	OverBowler string `json:"over_bowler,omitempty"`

	Runs           int     `json:"total_runs"`
	Wickets        int     `json:"total_wickets"`
	Extras         Extras  `json:"extras"`
	CompletedOvers int     `json:"completed_overs"`
	OverBalls      int     `json:"current_over_balls"`
	LegalBalls     int     `json:"legal_balls"`
	BallsThisOver  []int64 `json:"balls_this_over"`

	Batters      map[string]*BatterFigure `json:"batters"`
	BattingOrder []string                 `json:"batting_order"`
	Bowlers      map[string]*BowlerFigure `json:"bowlers"`
	BowlingOrder []string                 `json:"bowling_order"`

	Partnership   Partnership    `json:"partnership"`
	Partnerships  []Partnership  `json:"partnerships"`
	FallOfWickets []FallOfWicket `json:"fall_of_wickets"`

	LastSeq int64 `json:"last_seq"`

	log []delivery.Delivery
}

// New starts an innings with the opening pair and bowler in place.
func New(s Setup) (*Innings, error) {
	if len(s.FieldingXI) == 0 {
		s.FieldingXI = s.BowlingXI
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	in := &Innings{
		Setup:         s,
		Status:        StatusInProgress,
		Striker:       s.Striker,
		NonStriker:    s.NonStriker,
		Bowler:        s.Bowler,
		BallsThisOver: []int64{},
		Batters:       make(map[string]*BatterFigure),
		BattingOrder:  []string{},
		Bowlers:       make(map[string]*BowlerFigure),
		BowlingOrder:  []string{},
		Partnership:   Partnership{BatterA: s.Striker, BatterB: s.NonStriker},
		Partnerships:  []Partnership{},
		FallOfWickets: []FallOfWicket{},
	}
	in.batter(s.Striker)
	in.batter(s.NonStriker)
	return in, nil
}

// Replay folds a log into a fresh innings.
func Replay(s Setup, log []delivery.Delivery) (*Innings, error) {
	in, err := New(s)
	if err != nil {
		return nil, err
	}
	for _, d := range log {
		if err := in.Apply(d); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// Validate checks an innings setup.
func (s Setup) Validate() error {
	if s.Number < 1 || s.Number > 4 {
		return apperrors.Precondition(apperrors.CodeInvalidRecord, "innings number %d out of range", s.Number)
	}
	if s.Overs < 1 || s.MaxOversPerBowler < 1 {
		return apperrors.Precondition(apperrors.CodeInvalidRules,
			"overs %d and max overs per bowler %d must be positive", s.Overs, s.MaxOversPerBowler)
	}
	if len(s.BattingXI) < 2 {
		return apperrors.Precondition(apperrors.CodeXISize, "batting XI needs at least 2 players")
	}
	if len(s.BowlingXI) < 1 {
		return apperrors.Precondition(apperrors.CodeXISize, "bowling XI needs at least 1 player")
	}
	for _, xi := range [][]string{s.BattingXI, s.BowlingXI, s.FieldingXI} {
		if dup := firstDuplicate(xi); dup != "" {
			return apperrors.Precondition(apperrors.CodeDuplicatePlayer, "player %s listed twice", dup)
		}
	}
	for _, id := range s.BowlingXI {
		if !contains(s.FieldingXI, id) {
			return apperrors.Precondition(apperrors.CodeNotInXI, "bowler %s is not in the fielding XI", id)
		}
	}
	if s.Striker == "" || s.NonStriker == "" || s.Striker == s.NonStriker {
		return apperrors.Precondition(apperrors.CodeBatterRequired, "two distinct opening batters are required")
	}
	for _, id := range []string{s.Striker, s.NonStriker} {
		if !contains(s.BattingXI, id) {
			return apperrors.Precondition(apperrors.CodeNotInXI, "batter %s is not in the batting XI", id)
		}
	}
	if s.Bowler == "" {
		return apperrors.Precondition(apperrors.CodeBowlerRequired, "an opening bowler is required")
	}
	if !contains(s.BowlingXI, s.Bowler) {
		return apperrors.Precondition(apperrors.CodeNotInXI, "bowler %s is not in the bowling XI", s.Bowler)
	}
	return nil
}

// Log returns a copy of the deliveries folded so far.
func (in *Innings) Log() []delivery.Delivery {
	out := make([]delivery.Delivery, len(in.log))
	copy(out, in.log)
	return out
}

// Last returns the most recent delivery, if any.
func (in *Innings) Last() (delivery.Delivery, bool) {
	if len(in.log) == 0 {
		return delivery.Delivery{}, false
	}
	return in.log[len(in.log)-1], true
}

// Score returns runs and wickets.
func (in *Innings) Score() Score {
	return Score{Runs: in.Runs, Wickets: in.Wickets}
}

// Overs renders overs bowled as "O.B".
func (in *Innings) Overs() string {
	return delivery.FormatOvers(in.CompletedOvers, in.OverBalls)
}

// RunRate is runs per six legal balls.
func (in *Innings) RunRate() float64 {
	if in.LegalBalls == 0 {
		return 0
	}
	return float64(in.Runs) * delivery.BallsPerOver / float64(in.LegalBalls)
}

// BallsRemaining is the number of legal balls left in the allotment.
func (in *Innings) BallsRemaining() int {
	left := in.Setup.Overs*delivery.BallsPerOver - in.LegalBalls
	if left < 0 {
		return 0
	}
	return left
}

// OverDeliveries returns the deliveries in the current over buffer.
func (in *Innings) OverDeliveries() []delivery.Delivery {
	out := make([]delivery.Delivery, 0, len(in.BallsThisOver))
	for _, d := range in.log {
		if containsSeq(in.BallsThisOver, d.Seq) {
			out = append(out, d)
		}
	}
	return out
}

// Open reports whether the innings is still in progress.
func (in *Innings) Open() bool {
	return in.Status == StatusInProgress
}

// Close freezes the innings with a reason.
func (in *Innings) Close(reason EndReason) {
	in.Status = StatusCompleted
	in.EndReason = reason
}

// Reopen puts a completed innings back in progress for correction.
func (in *Innings) Reopen() {
	in.Status = StatusInProgress
	in.EndReason = EndNone
}

// AdoptState copies lifecycle and cursor selections from a stored snapshot
// taken at the same log position. Aggregates always come from the fold.
func (in *Innings) AdoptState(snap *Innings) {
	in.Status = snap.Status
	in.EndReason = snap.EndReason
	if snap.LastSeq != in.LastSeq {
		return
	}
	in.Striker = snap.Striker
	in.NonStriker = snap.NonStriker
	in.Bowler = snap.Bowler
}

// Clone returns a deep copy.
func (in *Innings) Clone() *Innings {
	c := *in
	c.Setup.BattingXI = append([]string(nil), in.Setup.BattingXI...)
	c.Setup.BowlingXI = append([]string(nil), in.Setup.BowlingXI...)
	c.Setup.FieldingXI = append([]string(nil), in.Setup.FieldingXI...)
	c.BallsThisOver = append([]int64{}, in.BallsThisOver...)
	c.BattingOrder = append([]string{}, in.BattingOrder...)
	c.BowlingOrder = append([]string{}, in.BowlingOrder...)
	c.Partnerships = append([]Partnership{}, in.Partnerships...)
	c.FallOfWickets = append([]FallOfWicket{}, in.FallOfWickets...)
	c.log = append([]delivery.Delivery(nil), in.log...)

	c.Batters = make(map[string]*BatterFigure, len(in.Batters))
	for id, b := range in.Batters {
		bc := *b
		if b.Dismissal != nil {
			dc := *b.Dismissal
			bc.Dismissal = &dc
		}
		c.Batters[id] = &bc
	}
	c.Bowlers = make(map[string]*BowlerFigure, len(in.Bowlers))
	for id, b := range in.Bowlers {
		bc := *b
		c.Bowlers[id] = &bc
	}
	return &c
}

func (in *Innings) batter(id string) *BatterFigure {
	if b, ok := in.Batters[id]; ok {
		return b
	}
	b := &BatterFigure{PlayerID: id}
	in.Batters[id] = b
	in.BattingOrder = append(in.BattingOrder, id)
	return b
}

// bowler returns the figure for a player, creating it on first use. Only
// players who have bowled appear in BowlingOrder.
func (in *Innings) bowler(id string, bowling bool) *BowlerFigure {
	b, ok := in.Bowlers[id]
	if !ok {
		b = &BowlerFigure{PlayerID: id}
		in.Bowlers[id] = b
	}
	if bowling && !contains(in.BowlingOrder, id) {
		in.BowlingOrder = append(in.BowlingOrder, id)
	}
	return b
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func containsSeq(list []int64, seq int64) bool {
	for _, v := range list {
		if v == seq {
			return true
		}
	}
	return false
}

func firstDuplicate(list []string) string {
	seen := make(map[string]bool, len(list))
	for _, id := range list {
		if seen[id] {
			return id
		}
		seen[id] = true
	}
	return ""
}
