package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wevote/dedupe-cli/internal/config"
	"github.com/wevote/dedupe-cli/internal/dedupe"
	"github.com/wevote/dedupe-cli/internal/politician"
)

const cliFixture = `
politicians:
  - we_vote_id: wv01pol1
    attributes: {politician_name: JOHN A SMITH, state_code: CA}
  - we_vote_id: wv01pol2
    attributes: {politician_name: John Smith, state_code: CA, fec_id: H0CA01}
  - we_vote_id: wv01pol3
    attributes: {politician_name: Ana Diaz, state_code: CA, bioguide_id: D000001}
  - we_vote_id: wv01pol4
    attributes: {politician_name: Ana Diaz, state_code: CA, bioguide_id: D000002}
references:
  - {kind: position, we_vote_id: wv01pos1, politician_we_vote_id: wv01pol2}
`

// setupCLI points cfg at a fresh SQLite file loaded with cliFixture.
func setupCLI(t *testing.T) string {
	t.Helper()
	color.NoColor = true
	dir := t.TempDir()

	cfg = &config.Config{
		Store:  config.StoreConfig{Driver: config.DriverSQLite, DatabaseURL: filepath.Join(dir, "cli.db")},
		Log:    config.LogConfig{Level: "info", Format: "json"},
		Dedupe: config.DedupeConfig{SEORetries: 3},
	}

	fixture := filepath.Join(dir, "fixture.yaml")
	require.NoError(t, os.WriteFile(fixture, []byte(cliFixture), 0644))
	importFixturePath = fixture
	_, err := execute(t, importCmd, nil)
	require.NoError(t, err)
	return dir
}

func execute(t *testing.T, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetContext(context.TODO())
	})
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func openCLIStore(t *testing.T) politician.Store {
	t.Helper()
	st, err := initStore(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	return st
}

func TestMigrateCmd(t *testing.T) {
	color.NoColor = true
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: config.DriverSQLite, DatabaseURL: filepath.Join(t.TempDir(), "m.db")},
	}
	_, err := execute(t, migrateCmd, nil)
	require.NoError(t, err)

	// Running twice is harmless.
	_, err = execute(t, migrateCmd, nil)
	require.NoError(t, err)
}

func TestImportCmd_MissingFile(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: config.DriverSQLite, DatabaseURL: filepath.Join(t.TempDir(), "i.db")}}
	importFixturePath = filepath.Join(t.TempDir(), "nope.yaml")

	_, err := execute(t, importCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open fixture")
}

func TestDedupeRunCmd(t *testing.T) {
	setupCLI(t)
	runState, runDryRun, runLimit = "CA", false, 0

	out, err := execute(t, dedupeRunCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "AUTO_MERGED")
	assert.Contains(t, out, "NEEDS_REVIEW")
	assert.Contains(t, out, "1 merged")
	assert.Contains(t, out, "1 for review")

	got, err := openCLIStore(t).GetByWeVoteID(context.Background(), "wv01pol2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDedupeRunCmd_DryRun(t *testing.T) {
	setupCLI(t)
	runState, runDryRun, runLimit = "CA", true, 0
	t.Cleanup(func() { runDryRun = false })

	out, err := execute(t, dedupeRunCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "[dry run]")

	got, err := openCLIStore(t).GetByWeVoteID(context.Background(), "wv01pol2")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestDedupeRunCmd_InvalidConfig(t *testing.T) {
	setupCLI(t)
	cfg.Dedupe.RatePerSecond = -1

	_, err := execute(t, dedupeRunCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_per_second")
}

func TestDedupeCompareCmd(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, dedupeCompareCmd, []string{"wv01pol1", "wv01pol2"})
	require.NoError(t, err)
	assert.Contains(t, out, "politician_name")
	assert.Contains(t, out, "CONFLICT")
	assert.Contains(t, out, "references of wv01pol2: position=1")
	assert.Contains(t, out, "can auto-merge")

	out, err = execute(t, dedupeCompareCmd, []string{"wv01pol3", "wv01pol4"})
	require.NoError(t, err)
	assert.Contains(t, out, "needs a human decision: bioguide_id")
}

func TestDedupeMergeCmd(t *testing.T) {
	setupCLI(t)

	mergeChoices = nil
	out, err := execute(t, dedupeMergeCmd, []string{"wv01pol3", "wv01pol4"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--choose")
	assert.Contains(t, out, "unresolved bioguide_id")

	mergeChoices = []string{"bioguide_id=2"}
	t.Cleanup(func() { mergeChoices = nil })
	out, err = execute(t, dedupeMergeCmd, []string{"wv01pol3", "wv01pol4"})
	require.NoError(t, err)
	assert.Contains(t, out, "merged wv01pol4 into wv01pol3")

	got, err := openCLIStore(t).GetByWeVoteID(context.Background(), "wv01pol3")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "D000002", got.BioguideID)
}

func TestDedupeNotDuplicatesCmd(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, dedupeNotDuplicatesCmd, []string{"wv01pol3", "wv01pol4"})
	require.NoError(t, err)
	assert.Contains(t, out, "are not duplicates")

	partners, err := openCLIStore(t).NotDuplicatePartners(context.Background(), "wv01pol4")
	require.NoError(t, err)
	assert.Equal(t, []string{"wv01pol3"}, partners)
}

func TestDedupeQueueCmd(t *testing.T) {
	dir := setupCLI(t)
	runState, runDryRun, runLimit = "CA", false, 0
	_, err := execute(t, dedupeRunCmd, nil)
	require.NoError(t, err)

	queueState, queueExport = "CA", ""
	out, err := execute(t, dedupeQueueCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "wv01pol3 (Ana Diaz) ~ wv01pol4 (Ana Diaz)")
	assert.Contains(t, out, "conflicts: bioguide_id")

	queueExport = filepath.Join(dir, "queue.xlsx")
	t.Cleanup(func() { queueExport = "" })
	out, err = execute(t, dedupeQueueCmd, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 1 pairs")
	_, statErr := os.Stat(queueExport)
	assert.NoError(t, statErr)
}

func TestParseChoices(t *testing.T) {
	got, err := parseChoices([]string{"bioguide_id=2", " politician_name = 1 "})
	require.NoError(t, err)
	assert.Equal(t, map[politician.Attribute]dedupe.Side{
		politician.AttrBioguideID:     dedupe.Side2,
		politician.AttrPoliticianName: dedupe.Side1,
	}, got)

	for _, bad := range []string{"bioguide_id", "nope=1", "bioguide_id=3"} {
		_, err := parseChoices([]string{bad})
		assert.Error(t, err, bad)
	}
}
