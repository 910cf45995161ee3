package archive

import (
	"time"

	"github.com/roach88/crease/internal/innings"
	"github.com/roach88/crease/internal/match"
)

// SchemaVersion is the record layout written by this package.
const SchemaVersion = 1

// Record is the consumer view of a completed match.
type Record struct {
	SchemaVersion int             `json:"schema_version"`
	MatchID       string          `json:"match_id"`
	FixtureID     string          `json:"fixture_id,omitempty"`
	Team1ID       string          `json:"team1_id"`
	Team2ID       string          `json:"team2_id"`
	Result        *match.Result   `json:"result,omitempty"`
	Summary       string          `json:"summary,omitempty"`
	Innings       []InningsRecord `json:"innings"`
	ArchivedAt    time.Time       `json:"archived_at"`
}

// InningsRecord carries what the standings calculator needs for net run
// rate plus the figures the awards calculator reads.
type InningsRecord struct {
	Number           int                    `json:"number"`
	SuperOver        bool                   `json:"super_over,omitempty"`
	BattingTeamID    string                 `json:"batting_team_id"`
	BowlingTeamID    string                 `json:"bowling_team_id"`
	TotalRuns        int                    `json:"total_runs"`
	CompletedOvers   int                    `json:"completed_overs"`
	CurrentOverBalls int                    `json:"current_over_balls"`
	TotalWickets     int                    `json:"total_wickets"`
	Overs            int                    `json:"overs"`
	AllOut           bool                   `json:"all_out,omitempty"`
	Batters          []innings.BatterFigure `json:"batters"`
	Bowlers          []innings.BowlerFigure `json:"bowlers"`
	Fielders         []FieldingRecord       `json:"fielders"`
}

// FieldingRecord is one fielder's dismissals in an innings.
type FieldingRecord struct {
	PlayerID string `json:"player_id"`
	innings.Fielding
}

// FromMatch builds the record for m.
func FromMatch(m *match.Match, at time.Time) Record {
	rec := Record{
		MatchID:    m.ID,
		FixtureID:  m.Setup.FixtureID,
		Team1ID:    m.Setup.Team1ID,
		Team2ID:    m.Setup.Team2ID,
		Innings:    make([]InningsRecord, 0, len(m.Innings)),
		ArchivedAt: at.UTC(),
	}
	if m.Result != nil {
		r := *m.Result
		rec.Result = &r
		rec.Summary = r.Summary(nil)
	}
	for _, in := range m.Innings {
		rec.Innings = append(rec.Innings, inningsRecord(in))
	}
	return rec
}

func inningsRecord(in *innings.Innings) InningsRecord {
	r := InningsRecord{
		Number:           in.Setup.Number,
		SuperOver:        in.Setup.SuperOver,
		BattingTeamID:    in.Setup.BattingTeamID,
		BowlingTeamID:    in.Setup.BowlingTeamID,
		TotalRuns:        in.Runs,
		CompletedOvers:   in.CompletedOvers,
		CurrentOverBalls: in.OverBalls,
		TotalWickets:     in.Wickets,
		Overs:            in.Setup.Overs,
		AllOut:           in.EndReason == innings.EndAllOut,
		Batters:          make([]innings.BatterFigure, 0, len(in.BattingOrder)),
		Bowlers:          make([]innings.BowlerFigure, 0, len(in.BowlingOrder)),
		Fielders:         []FieldingRecord{},
	}
	for _, id := range in.BattingOrder {
		b := *in.Batters[id]
		if b.Dismissal != nil {
			d := *b.Dismissal
			b.Dismissal = &d
		}
		r.Batters = append(r.Batters, b)
	}
	for _, id := range in.BowlingOrder {
		r.Bowlers = append(r.Bowlers, *in.Bowlers[id])
	}
	for _, id := range in.Setup.FieldingXI {
		f, ok := in.Bowlers[id]
		if !ok || f.Fielding == (innings.Fielding{}) {
			continue
		}
		r.Fielders = append(r.Fielders, FieldingRecord{PlayerID: id, Fielding: f.Fielding})
	}
	return r
}
