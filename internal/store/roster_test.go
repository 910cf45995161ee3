package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/roach88/crease/internal/apperrors"
	"github.com/roach88/crease/internal/roster"
)

func TestTeamsAndPlayers(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.SaveTournament(ctx, roster.Tournament{ID: "cup", Name: " Summer  Cup "}); err != nil {
		t.Fatalf("SaveTournament() failed: %v", err)
	}
	tour, err := s.GetTournament(ctx, "cup")
	if err != nil {
		t.Fatalf("GetTournament() failed: %v", err)
	}
	if tour.Name != "Summer Cup" {
		t.Errorf("tournament name = %q, want normalized", tour.Name)
	}

	if err := s.SaveTeam(ctx, roster.Team{ID: "t1", TournamentID: "cup", Name: "Lions", ShortName: "LIO"}); err != nil {
		t.Fatalf("SaveTeam() failed: %v", err)
	}
	if err := s.SaveTeam(ctx, roster.Team{ID: "t2", Name: "Tigers"}); err != nil {
		t.Fatalf("SaveTeam() failed: %v", err)
	}
	teams, err := s.ListTeams(ctx, "cup")
	if err != nil {
		t.Fatalf("ListTeams() failed: %v", err)
	}
	if len(teams) != 1 || teams[0].ID != "t1" {
		t.Errorf("ListTeams(cup) = %+v, want only t1", teams)
	}
	all, _ := s.ListTeams(ctx, "")
	if len(all) != 2 {
		t.Errorf("ListTeams() = %d teams, want 2", len(all))
	}

	if err := s.SavePlayer(ctx, roster.Player{ID: "p1", TeamID: "t1", Name: "Ana Silva"}); err != nil {
		t.Fatalf("SavePlayer() failed: %v", err)
	}
	err = s.SavePlayer(ctx, roster.Player{ID: "p2", TeamID: "t1", Name: "ANA  silva"})
	if apperrors.CodeOf(err) != apperrors.CodeDuplicatePlayer {
		t.Errorf("SavePlayer() duplicate name error = %v, want DUPLICATE_PLAYER", err)
	}
	// Renaming a player to their own name is not a duplicate
	if err := s.SavePlayer(ctx, roster.Player{ID: "p1", TeamID: "t1", Name: "ana silva"}); err != nil {
		t.Errorf("SavePlayer() rename failed: %v", err)
	}

	if err := s.DeleteTeam(ctx, "t1"); err != nil {
		t.Fatalf("DeleteTeam() failed: %v", err)
	}
	if _, err := s.GetPlayer(ctx, "p1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetPlayer() after team delete error = %v, want sql.ErrNoRows", err)
	}
}

func TestFixtures(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	saveTestFixture(t, s)

	f, err := s.GetFixture(ctx, "f1")
	if err != nil {
		t.Fatalf("GetFixture() failed: %v", err)
	}
	if f.Status != roster.FixturePending {
		t.Errorf("status = %s, want pending", f.Status)
	}

	err = s.SaveFixture(ctx, roster.Fixture{ID: "f2", Team1ID: "t1", Team2ID: "t1"})
	if apperrors.CodeOf(err) != apperrors.CodeDuplicateTeam {
		t.Errorf("SaveFixture() same teams error = %v, want DUPLICATE_TEAM", err)
	}
	if err := s.SaveFixture(ctx, roster.Fixture{ID: "f3", Team1ID: "t1", Team2ID: "nobody"}); err == nil {
		t.Error("expected foreign key violation for unknown team")
	}

	list, _ := s.ListFixtures(ctx, "")
	if len(list) != 1 {
		t.Errorf("ListFixtures() = %d, want 1", len(list))
	}
	if err := s.DeleteFixture(ctx, "f1"); err != nil {
		t.Fatalf("DeleteFixture() failed: %v", err)
	}
	if err := s.DeleteFixture(ctx, "f1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("second DeleteFixture() error = %v, want sql.ErrNoRows", err)
	}
}
