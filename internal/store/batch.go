package store

import (
	"context"
	"fmt"

	"github.com/roach88/crease/internal/delivery"
	"github.com/roach88/crease/internal/innings"
	"github.com/roach88/crease/internal/match"
	"github.com/roach88/crease/internal/roster"
)

// FixtureUpdate moves a fixture to a new status.
type FixtureUpdate struct {
	FixtureID string
	Status    roster.FixtureStatus
	MatchID   string
}

// Batch is everything one engine operation changed.
type Batch struct {
	// Match is the header to upsert. Required.
	Match match.Header

	// Innings, when ReplaceInnings is set, replaces every stored snapshot
	// of the match. An empty list with ReplaceInnings removes them all.
	Innings        []*innings.Innings
	ReplaceInnings bool

	Append []delivery.Delivery
	// Remove lists delivery ids to delete.
	Remove []string
	// ClearDeliveries drops the whole log of the match.
	ClearDeliveries bool

	Fixture *FixtureUpdate
	Edit    *EditEntry
}

// Commit applies a batch in one transaction.
func (s *Store) Commit(ctx context.Context, b Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("commit: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := saveMatch(ctx, tx, b.Match); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if b.ClearDeliveries {
		if err := deleteDeliveries(ctx, tx, b.Match.ID); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}
	for _, id := range b.Remove {
		if err := deleteDelivery(ctx, tx, id); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}
	for _, d := range b.Append {
		if err := saveDelivery(ctx, tx, d); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}

	if b.ReplaceInnings {
		if err := deleteInnings(ctx, tx, b.Match.ID); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		for _, in := range b.Innings {
			if err := saveInnings(ctx, tx, in); err != nil {
				return fmt.Errorf("commit: %w", err)
			}
		}
	}

	if b.Fixture != nil && b.Fixture.FixtureID != "" {
		if err := setFixtureStatus(ctx, tx, *b.Fixture); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}
	if b.Edit != nil {
		if err := logEdit(ctx, tx, *b.Edit); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
