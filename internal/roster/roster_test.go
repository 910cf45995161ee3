package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/apperrors"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Virat   Kohli ", "Virat Kohli"},
		{"Jos\tButtler", "Jos Buttler"},
		{"Amélie", "Amélie"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "input %q", tt.in)
	}
}

func TestFoldKeyIgnoresCaseAndForm(t *testing.T) {
	assert.Equal(t, FoldKey("AMÉLIE"), FoldKey("amélie"))
	assert.NotEqual(t, FoldKey("Root"), FoldKey("Roots"))
}

func TestCheckSquad(t *testing.T) {
	squad := []Player{
		{ID: "p1", TeamID: "t1", Name: "Joe Root"},
		{ID: "p2", TeamID: "t1", Name: "Ben Stokes"},
	}
	require.NoError(t, CheckSquad(squad))

	squad = append(squad, Player{ID: "p3", TeamID: "t1", Name: "joe  ROOT"})
	err := CheckSquad(squad)
	assert.Equal(t, apperrors.CodeDuplicatePlayer, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "p1 and p3")
}

func TestValidate(t *testing.T) {
	team := Team{ID: "t1", Name: "  Lions  "}
	require.NoError(t, team.Validate())
	assert.Equal(t, "Lions", team.Name)

	assert.Equal(t, apperrors.CodeInvalidRecord, apperrors.CodeOf((&Team{ID: "t2", Name: "   "}).Validate()))
	assert.Equal(t, apperrors.CodeInvalidRecord, apperrors.CodeOf((&Player{ID: "p1", Name: "X"}).Validate()))

	f := Fixture{ID: "f1", Team1ID: "t1", Team2ID: "t2"}
	require.NoError(t, f.Validate())
	assert.Equal(t, FixturePending, f.Status)
	assert.Equal(t, apperrors.CodeDuplicateTeam, apperrors.CodeOf((&Fixture{ID: "f2", Team1ID: "t1", Team2ID: "t1"}).Validate()))
}
