package harness

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/scorecard"
	"github.com/roach88/crease/internal/store"
)

// RunWithGolden plays a scenario in a fresh database, requires it to pass,
// and compares the rendered scorecard with testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, sc *Scenario) *Result {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "harness.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	result, err := Run(context.Background(), sc, st)
	require.NoError(t, err)
	require.True(t, result.Pass, "scenario %s failed: %v", sc.Name, result.Errors)

	AssertGolden(t, sc.Name, result)
	return result
}

// AssertGolden compares a result's rendered scorecard with a golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()
	require.NotNil(t, result.Card, "result has no scorecard")

	var buf bytes.Buffer
	require.NoError(t, scorecard.Render(&buf, result.Card))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, buf.Bytes())
}
