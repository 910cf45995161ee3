package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/crease/internal/delivery"
	"github.com/roach88/crease/internal/innings"
	"github.com/roach88/crease/internal/match"
)

// SaveMatch upserts a match header.
func (s *Store) SaveMatch(ctx context.Context, h match.Header) error {
	return saveMatch(ctx, s.db, h)
}

func saveMatch(ctx context.Context, ex execer, h match.Header) error {
	data, err := marshalJSON("match header", h)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO matches (id, fixture_id, phase, status, header) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			fixture_id = excluded.fixture_id,
			phase = excluded.phase,
			status = excluded.status,
			header = excluded.header
	`, h.ID, h.Setup.FixtureID, string(h.Phase), string(h.Status), data)
	if err != nil {
		return fmt.Errorf("save match: %w", err)
	}
	return nil
}

// GetMatch returns a match header, or sql.ErrNoRows if not found.
func (s *Store) GetMatch(ctx context.Context, id string) (match.Header, error) {
	var data string
	if err := s.db.QueryRowContext(ctx, `SELECT header FROM matches WHERE id = ?`, id).Scan(&data); err != nil {
		return match.Header{}, fmt.Errorf("get match %s: %w", id, err)
	}
	var h match.Header
	if err := unmarshalJSON("match header", data, &h); err != nil {
		return match.Header{}, err
	}
	return h, nil
}

// ListMatches returns every match header ordered by id.
func (s *Store) ListMatches(ctx context.Context) ([]match.Header, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT header FROM matches ORDER BY id COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	out := []match.Header{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		var h match.Header
		if err := unmarshalJSON("match header", data, &h); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return out, nil
}

// ListMatchIDs returns every match id in order.
func (s *Store) ListMatchIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM matches ORDER BY id COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query match ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan match id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match ids: %w", err)
	}
	return ids, nil
}

// DeleteMatch removes a match with its innings and deliveries. Edits are kept.
func (s *Store) DeleteMatch(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "matches", id)
}

// SaveInnings upserts one innings snapshot.
func (s *Store) SaveInnings(ctx context.Context, in *innings.Innings) error {
	return saveInnings(ctx, s.db, in)
}

func saveInnings(ctx context.Context, ex execer, in *innings.Innings) error {
	data, err := marshalJSON("innings", in)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO innings (match_id, number, status, last_seq, snapshot) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(match_id, number) DO UPDATE SET
			status = excluded.status,
			last_seq = excluded.last_seq,
			snapshot = excluded.snapshot
	`, in.Setup.MatchID, in.Setup.Number, string(in.Status), in.LastSeq, data)
	if err != nil {
		return fmt.Errorf("save innings: %w", err)
	}
	return nil
}

func deleteInnings(ctx context.Context, ex execer, matchID string) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM innings WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("delete innings: %w", err)
	}
	return nil
}

// GetInningsByMatch returns the stored innings snapshots of a match in
// innings order. Returns an empty slice (not nil) if there are none.
func (s *Store) GetInningsByMatch(ctx context.Context, matchID string) ([]*innings.Innings, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT snapshot FROM innings WHERE match_id = ? ORDER BY number ASC
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query innings: %w", err)
	}
	defer rows.Close()

	out := []*innings.Innings{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan innings: %w", err)
		}
		in := &innings.Innings{}
		if err := unmarshalJSON("innings", data, in); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate innings: %w", err)
	}
	return out, nil
}

const deliveryColumns = `id, match_id, innings, seq, over_no, ball, bowler_id, striker_id, non_striker_id,
	kind, runs, dismissal, fielder_id, power_ball, at`

// SaveDelivery appends a delivery to the log. Inserting the same id twice
// is a no-op.
func (s *Store) SaveDelivery(ctx context.Context, d delivery.Delivery) error {
	return saveDelivery(ctx, s.db, d)
}

func saveDelivery(ctx context.Context, ex execer, d delivery.Delivery) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO deliveries (`+deliveryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		d.ID,
		d.MatchID,
		d.Innings,
		d.Seq,
		d.Over,
		d.Ball,
		d.BowlerID,
		d.StrikerID,
		d.NonStrikerID,
		string(d.Kind),
		d.Runs,
		string(d.Dismissal),
		d.FielderID,
		d.PowerBall,
		formatTime(d.At),
	)
	if err != nil {
		return fmt.Errorf("save delivery: %w", err)
	}
	return nil
}

// DeleteDelivery removes one delivery from the log.
func (s *Store) DeleteDelivery(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "deliveries", id)
}

func deleteDelivery(ctx context.Context, ex execer, id string) error {
	res, err := ex.ExecContext(ctx, `DELETE FROM deliveries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete delivery: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete delivery %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

func deleteDeliveries(ctx context.Context, ex execer, matchID string) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM deliveries WHERE match_id = ?`, matchID); err != nil {
		return fmt.Errorf("delete deliveries: %w", err)
	}
	return nil
}

// GetAllDeliveries returns a match's delivery log ordered by seq.
// Returns an empty slice (not nil) if the match has no deliveries.
func (s *Store) GetAllDeliveries(ctx context.Context, matchID string) ([]delivery.Delivery, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+deliveryColumns+`
		FROM deliveries
		WHERE match_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	out := []delivery.Delivery{}
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deliveries: %w", err)
	}
	return out, nil
}

// GetLastDelivery returns the most recent delivery of a match, or
// sql.ErrNoRows if it has none.
func (s *Store) GetLastDelivery(ctx context.Context, matchID string) (delivery.Delivery, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+deliveryColumns+`
		FROM deliveries
		WHERE match_id = ?
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, matchID)
	d, err := scanDelivery(row)
	if err != nil {
		return delivery.Delivery{}, fmt.Errorf("get last delivery: %w", err)
	}
	return d, nil
}

func scanDelivery(row scanner) (delivery.Delivery, error) {
	var d delivery.Delivery
	var kind, dismissal, at string
	err := row.Scan(
		&d.ID,
		&d.MatchID,
		&d.Innings,
		&d.Seq,
		&d.Over,
		&d.Ball,
		&d.BowlerID,
		&d.StrikerID,
		&d.NonStrikerID,
		&kind,
		&d.Runs,
		&dismissal,
		&d.FielderID,
		&d.PowerBall,
		&at,
	)
	if err != nil {
		return delivery.Delivery{}, fmt.Errorf("scan delivery: %w", err)
	}
	d.Kind = delivery.Kind(kind)
	d.Dismissal = delivery.DismissalKind(dismissal)
	if d.At, err = parseTime(at); err != nil {
		return delivery.Delivery{}, err
	}
	return d, nil
}
