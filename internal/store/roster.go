package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/crease/internal/roster"
)

// SaveTournament inserts or replaces a tournament.
func (s *Store) SaveTournament(ctx context.Context, t roster.Tournament) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tournaments (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, t.ID, roster.NormalizeName(t.Name))
	if err != nil {
		return fmt.Errorf("save tournament: %w", err)
	}
	return nil
}

// GetTournament returns sql.ErrNoRows if not found.
func (s *Store) GetTournament(ctx context.Context, id string) (roster.Tournament, error) {
	var t roster.Tournament
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM tournaments WHERE id = ?`, id).Scan(&t.ID, &t.Name)
	if err != nil {
		return roster.Tournament{}, fmt.Errorf("get tournament %s: %w", id, err)
	}
	return t, nil
}

// ListTournaments returns all tournaments ordered by id.
func (s *Store) ListTournaments(ctx context.Context) ([]roster.Tournament, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM tournaments ORDER BY id COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query tournaments: %w", err)
	}
	defer rows.Close()

	out := []roster.Tournament{}
	for rows.Next() {
		var t roster.Tournament
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tournament: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tournaments: %w", err)
	}
	return out, nil
}

// DeleteTournament removes a tournament. Teams and fixtures keep existing
// with no tournament.
func (s *Store) DeleteTournament(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "tournaments", id)
}

// SaveTeam validates and upserts a team.
func (s *Store) SaveTeam(ctx context.Context, t roster.Team) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (id, tournament_id, name, short_name) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tournament_id = excluded.tournament_id,
			name = excluded.name,
			short_name = excluded.short_name
	`, t.ID, nullString(t.TournamentID), t.Name, t.ShortName)
	if err != nil {
		return fmt.Errorf("save team: %w", err)
	}
	return nil
}

// GetTeam returns sql.ErrNoRows if not found.
func (s *Store) GetTeam(ctx context.Context, id string) (roster.Team, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(tournament_id, ''), name, short_name FROM teams WHERE id = ?
	`, id)
	var t roster.Team
	if err := row.Scan(&t.ID, &t.TournamentID, &t.Name, &t.ShortName); err != nil {
		return roster.Team{}, fmt.Errorf("get team %s: %w", id, err)
	}
	return t, nil
}

// ListTeams returns the teams of a tournament, or every team when
// tournamentID is empty.
func (s *Store) ListTeams(ctx context.Context, tournamentID string) ([]roster.Team, error) {
	query := `SELECT id, COALESCE(tournament_id, ''), name, short_name FROM teams`
	var args []any
	if tournamentID != "" {
		query += ` WHERE tournament_id = ?`
		args = append(args, tournamentID)
	}
	query += ` ORDER BY id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	out := []roster.Team{}
	for rows.Next() {
		var t roster.Team
		if err := rows.Scan(&t.ID, &t.TournamentID, &t.Name, &t.ShortName); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teams: %w", err)
	}
	return out, nil
}

// DeleteTeam removes a team and, by cascade, its players.
func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "teams", id)
}

// SavePlayer validates and upserts a player. A second player on the same
// team whose name folds to the same key is rejected.
func (s *Store) SavePlayer(ctx context.Context, p roster.Player) error {
	if err := p.Validate(); err != nil {
		return err
	}
	squad, err := s.ListPlayers(ctx, p.TeamID)
	if err != nil {
		return err
	}
	others := make([]roster.Player, 0, len(squad)+1)
	for _, q := range squad {
		if q.ID != p.ID {
			others = append(others, q)
		}
	}
	if err := roster.CheckSquad(append(others, p)); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO players (id, team_id, name, name_key) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			team_id = excluded.team_id,
			name = excluded.name,
			name_key = excluded.name_key
	`, p.ID, p.TeamID, p.Name, roster.FoldKey(p.Name))
	if err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	return nil
}

// GetPlayer returns sql.ErrNoRows if not found.
func (s *Store) GetPlayer(ctx context.Context, id string) (roster.Player, error) {
	var p roster.Player
	err := s.db.QueryRowContext(ctx, `SELECT id, team_id, name FROM players WHERE id = ?`, id).
		Scan(&p.ID, &p.TeamID, &p.Name)
	if err != nil {
		return roster.Player{}, fmt.Errorf("get player %s: %w", id, err)
	}
	return p, nil
}

// ListPlayers returns a team's players ordered by id.
func (s *Store) ListPlayers(ctx context.Context, teamID string) ([]roster.Player, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, team_id, name FROM players WHERE team_id = ? ORDER BY id COLLATE BINARY ASC
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	out := []roster.Player{}
	for rows.Next() {
		var p roster.Player
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}
	return out, nil
}

// DeletePlayer removes a player.
func (s *Store) DeletePlayer(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "players", id)
}

// SaveFixture validates and upserts a fixture.
func (s *Store) SaveFixture(ctx context.Context, f roster.Fixture) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return saveFixture(ctx, s.db, f)
}

func saveFixture(ctx context.Context, ex execer, f roster.Fixture) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO fixtures (id, tournament_id, team1_id, team2_id, status, match_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tournament_id = excluded.tournament_id,
			team1_id = excluded.team1_id,
			team2_id = excluded.team2_id,
			status = excluded.status,
			match_id = excluded.match_id
	`, f.ID, nullString(f.TournamentID), f.Team1ID, f.Team2ID, string(f.Status), f.MatchID)
	if err != nil {
		return fmt.Errorf("save fixture: %w", err)
	}
	return nil
}

// GetFixture returns sql.ErrNoRows if not found.
func (s *Store) GetFixture(ctx context.Context, id string) (roster.Fixture, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(tournament_id, ''), team1_id, team2_id, status, match_id
		FROM fixtures WHERE id = ?
	`, id)
	f, err := scanFixture(row)
	if err != nil {
		return roster.Fixture{}, fmt.Errorf("get fixture %s: %w", id, err)
	}
	return f, nil
}

// ListFixtures returns the fixtures of a tournament, or all of them when
// tournamentID is empty.
func (s *Store) ListFixtures(ctx context.Context, tournamentID string) ([]roster.Fixture, error) {
	query := `SELECT id, COALESCE(tournament_id, ''), team1_id, team2_id, status, match_id FROM fixtures`
	var args []any
	if tournamentID != "" {
		query += ` WHERE tournament_id = ?`
		args = append(args, tournamentID)
	}
	query += ` ORDER BY id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fixtures: %w", err)
	}
	defer rows.Close()

	out := []roster.Fixture{}
	for rows.Next() {
		f, err := scanFixture(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fixture: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fixtures: %w", err)
	}
	return out, nil
}

// DeleteFixture removes a fixture.
func (s *Store) DeleteFixture(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "fixtures", id)
}

// setFixtureStatus moves a fixture along with its match. Unknown fixture
// ids are ignored so matches can be scored without one.
func setFixtureStatus(ctx context.Context, ex execer, u FixtureUpdate) error {
	_, err := ex.ExecContext(ctx, `
		UPDATE fixtures SET status = ?, match_id = ? WHERE id = ?
	`, string(u.Status), u.MatchID, u.FixtureID)
	if err != nil {
		return fmt.Errorf("update fixture status: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFixture(row scanner) (roster.Fixture, error) {
	var f roster.Fixture
	var status string
	if err := row.Scan(&f.ID, &f.TournamentID, &f.Team1ID, &f.Team2ID, &status, &f.MatchID); err != nil {
		return roster.Fixture{}, err
	}
	f.Status = roster.FixtureStatus(status)
	return f, nil
}

// deleteByID deletes one row; table names are constants from this package.
func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("delete from %s %s: %w", table, id, sql.ErrNoRows)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
