// Package roster holds the records a match is played between: tournaments,
// teams, players and fixtures.
package roster

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/crease/internal/apperrors"
)

// Tournament groups fixtures.
type Tournament struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Team is a side entered in a tournament.
type Team struct {
	ID           string `json:"id"`
	TournamentID string `json:"tournament_id,omitempty"`
	Name         string `json:"name"`
	ShortName    string `json:"short_name,omitempty"`
}

// Player belongs to one team.
type Player struct {
	ID     string `json:"id"`
	TeamID string `json:"team_id"`
	Name   string `json:"name"`
}

// FixtureStatus follows the match played for the fixture.
type FixtureStatus string

const (
	FixturePending    FixtureStatus = "pending"
	FixtureInProgress FixtureStatus = "in_progress"
	FixtureCompleted  FixtureStatus = "completed"
)

// Fixture is a scheduled meeting of two teams.
type Fixture struct {
	ID           string        `json:"id"`
	TournamentID string        `json:"tournament_id,omitempty"`
	Team1ID      string        `json:"team1_id"`
	Team2ID      string        `json:"team2_id"`
	Status       FixtureStatus `json:"status"`
	MatchID      string        `json:"match_id,omitempty"`
}

// NormalizeName trims, collapses inner whitespace and converts to NFC so
// that names typed on different devices compare equal.
func NormalizeName(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// FoldKey is the case-insensitive comparison key for a name.
func FoldKey(s string) string {
	return cases.Fold().String(NormalizeName(s))
}

// Validate normalizes the team name and checks required fields.
func (t *Team) Validate() error {
	t.Name = NormalizeName(t.Name)
	t.ShortName = NormalizeName(t.ShortName)
	if t.ID == "" || t.Name == "" {
		return apperrors.Precondition(apperrors.CodeInvalidRecord, "team needs an id and a name")
	}
	return nil
}

// Validate normalizes the player name and checks required fields.
func (p *Player) Validate() error {
	p.Name = NormalizeName(p.Name)
	if p.ID == "" || p.Name == "" || p.TeamID == "" {
		return apperrors.Precondition(apperrors.CodeInvalidRecord, "player needs an id, a team and a name")
	}
	return nil
}

// Validate checks a fixture's teams.
func (f *Fixture) Validate() error {
	if f.ID == "" || f.Team1ID == "" || f.Team2ID == "" {
		return apperrors.Precondition(apperrors.CodeInvalidRecord, "fixture needs an id and two teams")
	}
	if f.Team1ID == f.Team2ID {
		return apperrors.Precondition(apperrors.CodeDuplicateTeam,
			"team %s cannot play itself", f.Team1ID).With("team", f.Team1ID)
	}
	if f.Status == "" {
		f.Status = FixturePending
	}
	return nil
}

// CheckSquad rejects a squad in which two players share a name once case and
// Unicode form are ignored.
func CheckSquad(players []Player) error {
	seen := make(map[string]string, len(players))
	for _, p := range players {
		key := FoldKey(p.Name)
		if other, ok := seen[key]; ok {
			return apperrors.Precondition(apperrors.CodeDuplicatePlayer,
				"players %s and %s are both named %q", other, p.ID, NormalizeName(p.Name)).With("player", p.ID)
		}
		seen[key] = p.ID
	}
	return nil
}
