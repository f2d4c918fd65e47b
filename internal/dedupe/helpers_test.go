package dedupe

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wevote/dedupe-cli/internal/politician"
)

func newTestStore(t *testing.T) *politician.SQLiteStore {
	t.Helper()
	st, err := politician.NewSQLite(filepath.Join(t.TempDir(), "dedupe.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

// loadYAML seeds st from a fixture document.
func loadYAML(t *testing.T, st politician.Store, doc string) {
	t.Helper()
	f, err := politician.ParseFixture(strings.NewReader(doc))
	require.NoError(t, err)
	_, err = politician.LoadFixture(context.Background(), st, f)
	require.NoError(t, err)
}

func mustGet(t *testing.T, st politician.Reader, id string) *politician.Record {
	t.Helper()
	r, err := st.GetByWeVoteID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, r, id)
	return r
}

func rec(id, name string) *politician.Record {
	return &politician.Record{WeVoteID: id, PoliticianName: name, StateCode: "CA"}
}
