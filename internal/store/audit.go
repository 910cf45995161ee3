package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/crease/internal/match"
)

// Action names a recorded correction or lifecycle change.
type Action string

const (
	ActionUndoBall    Action = "UNDO_BALL"
	ActionDeleteBall  Action = "DELETE_BALL"
	ActionCancelMatch Action = "CANCEL_MATCH"
	ActionReopenMatch Action = "REOPEN_MATCH"
	ActionDeleteMatch Action = "DELETE_MATCH"
)

// EditEntry is one line of a match's audit trail.
type EditEntry struct {
	ID          string         `json:"id"`
	MatchID     string         `json:"match_id"`
	Seq         int64          `json:"seq"`
	Action      Action         `json:"action"`
	Description string         `json:"description"`
	Before      match.Snapshot `json:"before"`
	After       match.Snapshot `json:"after"`
	At          time.Time      `json:"at"`
}

// LogEdit appends an entry to the audit trail.
func (s *Store) LogEdit(ctx context.Context, e EditEntry) error {
	return logEdit(ctx, s.db, e)
}

func logEdit(ctx context.Context, ex execer, e EditEntry) error {
	before, err := marshalJSON("edit before", e.Before)
	if err != nil {
		return err
	}
	after, err := marshalJSON("edit after", e.After)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO edits (id, match_id, seq, action, description, before, after, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.MatchID, e.Seq, string(e.Action), e.Description, before, after, formatTime(e.At))
	if err != nil {
		return fmt.Errorf("log edit: %w", err)
	}
	return nil
}

// ListEdits returns a match's audit trail in seq order.
// Returns an empty slice (not nil) if there are no entries.
func (s *Store) ListEdits(ctx context.Context, matchID string) ([]EditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, match_id, seq, action, description, before, after, at
		FROM edits
		WHERE match_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query edits: %w", err)
	}
	defer rows.Close()

	out := []EditEntry{}
	for rows.Next() {
		var e EditEntry
		var action, before, after, at string
		if err := rows.Scan(&e.ID, &e.MatchID, &e.Seq, &action, &e.Description, &before, &after, &at); err != nil {
			return nil, fmt.Errorf("scan edit: %w", err)
		}
		e.Action = Action(action)
		if err := unmarshalJSON("edit before", before, &e.Before); err != nil {
			return nil, err
		}
		if err := unmarshalJSON("edit after", after, &e.After); err != nil {
			return nil, err
		}
		if e.At, err = parseTime(at); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edits: %w", err)
	}
	return out, nil
}
