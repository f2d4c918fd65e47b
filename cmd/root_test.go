package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"migrate", "import", "dedupe"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "wevote-dedupe", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestDedupeCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range dedupeCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"run", "compare", "merge", "not-duplicates", "queue"}
	for _, name := range expected {
		assert.True(t, names[name], "dedupe should have subcommand %q", name)
	}
}

func TestDedupeRunCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"state", "dry-run", "limit"} {
		flag := dedupeRunCmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "dedupe run should have --%s flag", flagName)
	}
}

func TestDedupeMergeCommand_Flags(t *testing.T) {
	flag := dedupeMergeCmd.Flags().Lookup("choose")
	require.NotNil(t, flag, "merge command should have --choose flag")
	assert.Equal(t, "stringArray", flag.Value.Type())
}

func TestDedupeQueueCommand_Flags(t *testing.T) {
	flag := dedupeQueueCmd.Flags().Lookup("export")
	require.NotNil(t, flag, "queue command should have --export flag")
	assert.Equal(t, "", flag.DefValue)
}

func TestImportCommand_Flags(t *testing.T) {
	flag := importCmd.Flags().Lookup("fixture")
	require.NotNil(t, flag, "import command should have --fixture flag")
}

func TestPersistentPreRun_LoadsConfig(t *testing.T) {
	chdirTemp(t)
	t.Setenv("WEVOTE_STORE_DRIVER", "sqlite")
	t.Setenv("WEVOTE_LOG_FORMAT", "console")

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	require.NotNil(t, cfg)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}

func TestPersistentPreRun_BadLogLevel(t *testing.T) {
	chdirTemp(t)
	t.Setenv("WEVOTE_LOG_LEVEL", "loud")

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init logger")
}
