package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/innings"
	"github.com/roach88/crease/internal/match"
	"github.com/roach88/crease/internal/testutil"
)

func TestFromMatch(t *testing.T) {
	m := testutil.CompletedMatch(t)

	rec := FromMatch(m, testutil.Kickoff)
	assert.Equal(t, "m1", rec.MatchID)
	require.NotNil(t, rec.Result)
	assert.Equal(t, match.Result{Kind: match.WinByWickets, WinnerID: "B", Margin: 10}, *rec.Result)
	assert.Equal(t, "B won by 10 wickets", rec.Summary)
	require.Len(t, rec.Innings, 2)

	first := rec.Innings[0]
	assert.Equal(t, "A", first.BattingTeamID)
	assert.Equal(t, 27, first.TotalRuns)
	assert.Equal(t, 1, first.TotalWickets)
	assert.Equal(t, 2, first.CompletedOvers)
	assert.Equal(t, 0, first.CurrentOverBalls)
	assert.Equal(t, []string{"a1", "a2", "a3"}, batterIDs(first))
	require.Len(t, first.Bowlers, 2)
	assert.Equal(t, "b1", first.Bowlers[0].PlayerID)
	assert.Equal(t, 1, first.Bowlers[0].Wickets)
	assert.Equal(t, []FieldingRecord{{PlayerID: "b5", Fielding: innings.Fielding{Catches: 1}}}, first.Fielders)

	second := rec.Innings[1]
	assert.Equal(t, "B", second.BattingTeamID)
	assert.Equal(t, 28, second.TotalRuns)
	assert.Equal(t, 0, second.CompletedOvers)
	assert.Equal(t, 5, second.CurrentOverBalls)
	assert.Empty(t, second.Fielders)
}

func TestSaveLoadPurge(t *testing.T) {
	a, err := Open(t.TempDir(), "")
	require.NoError(t, err)

	rec := FromMatch(testutil.CompletedMatch(t), testutil.Kickoff)
	require.NoError(t, a.Save(rec))

	got, err := a.Load("m1")
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, got.SchemaVersion)
	assert.Equal(t, rec.Innings, got.Innings)
	assert.Equal(t, rec.Summary, got.Summary)
	assert.True(t, rec.ArchivedAt.Equal(got.ArchivedAt))

	ids, err := a.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, ids)

	require.NoError(t, a.Purge("m1"))
	_, err = a.Load("m1")
	assert.ErrorIs(t, err, os.ErrNotExist)
	require.NoError(t, a.Purge("m1"), "purging twice is not an error")
}

func TestEncryptedArchive(t *testing.T) {
	dir := t.TempDir()
	a, err := Open(dir, "correct horse")
	require.NoError(t, err)
	require.NoError(t, a.Save(FromMatch(testutil.CompletedMatch(t), testutil.Kickoff)))
	assert.FileExists(t, filepath.Join(dir, masterKeyFile))

	reopened, err := Open(dir, "correct horse")
	require.NoError(t, err)
	got, err := reopened.Load("m1")
	require.NoError(t, err)
	assert.Equal(t, 27, got.Innings[0].TotalRuns)

	_, err = Open(dir, "")
	assert.ErrorIs(t, err, ErrEncryptedWithoutKey)
}

func TestSave_RequiresMatchID(t *testing.T) {
	a, err := Open(t.TempDir(), "")
	require.NoError(t, err)
	assert.Error(t, a.Save(Record{}))
}

func batterIDs(r InningsRecord) []string {
	out := make([]string, len(r.Batters))
	for i, b := range r.Batters {
		out[i] = b.PlayerID
	}
	return out
}
