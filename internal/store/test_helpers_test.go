package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/crease/internal/delivery"
	"github.com/roach88/crease/internal/match"
)

var testTime = time.Date(2026, 5, 2, 18, 30, 0, 0, time.UTC)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testHeader returns a match header at the toss.
func testHeader(id string) match.Header {
	return match.Header{
		ID: id,
		Setup: match.Setup{
			Team1ID:      "t1",
			Team2ID:      "t2",
			TossWinnerID: "t1",
			TossDecision: match.TossBat,
			Rules:        match.DefaultRules(),
		},
		Phase:  match.PhaseTossPending,
		Status: match.StatusNotStarted,
	}
}

func saveTestMatch(t *testing.T, s *Store, id string) match.Header {
	t.Helper()
	h := testHeader(id)
	if err := s.SaveMatch(context.Background(), h); err != nil {
		t.Fatalf("SaveMatch() failed: %v", err)
	}
	return h
}

// testDelivery creates a dot ball in innings 1 with minimal required fields.
func testDelivery(matchID, id string, seq int64) delivery.Delivery {
	return delivery.Delivery{
		Seq:          seq,
		ID:           id,
		MatchID:      matchID,
		Innings:      1,
		Over:         0,
		Ball:         int(seq),
		BowlerID:     "b1",
		StrikerID:    "a1",
		NonStrikerID: "a2",
		Outcome:      delivery.Run(0),
		At:           testTime.Add(time.Duration(seq) * time.Second),
	}
}
