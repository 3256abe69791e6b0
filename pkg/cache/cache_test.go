package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(EnvHome, home)

	require.NoError(t, os.MkdirAll(filepath.Join(home, "scripts"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(home, "raw_data", "portal"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(home, "scripts", "portal.json"), []byte(`{}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(home, "raw_data", "portal", "main.csv"), []byte("id\n1\n"), 0644))
	return home
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Scope
		wantError bool
	}{
		{name: "scripts", input: "scripts", want: ScopeScripts},
		{name: "data_alias", input: "data", want: ScopeData},
		{name: "raw_data", input: "raw_data", want: ScopeData},
		{name: "connections", input: "connections", want: ScopeConnections},
		{name: "all_mixed_case", input: " ALL ", want: ScopeAll},
		{name: "unknown", input: "everything", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScope(tt.input)
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHome_EnvOverride(t *testing.T) {
	t.Setenv(EnvHome, "/custom/retriever")
	home, err := Home()
	require.NoError(t, err)
	assert.Equal(t, "/custom/retriever", home)
}

func TestScan(t *testing.T) {
	t.Run("reports_existing_dirs", func(t *testing.T) {
		home := seedHome(t)

		infos, err := Scan(context.Background())
		require.NoError(t, err)
		require.Len(t, infos, 2)

		assert.Equal(t, "raw_data", infos[0].Name)
		assert.Equal(t, filepath.Join(home, "raw_data"), infos[0].Path)
		assert.Equal(t, 1, infos[0].Files)
		assert.EqualValues(t, 5, infos[0].Bytes)

		assert.Equal(t, "scripts", infos[1].Name)
		assert.Equal(t, 1, infos[1].Files)
	})

	t.Run("missing_home_is_empty", func(t *testing.T) {
		t.Setenv(EnvHome, filepath.Join(t.TempDir(), "never-created"))

		infos, err := Scan(context.Background())
		require.NoError(t, err)
		assert.Empty(t, infos)
	})
}

func TestReset(t *testing.T) {
	t.Run("single_scope", func(t *testing.T) {
		home := seedHome(t)

		removed, err := Reset(context.Background(), ScopeScripts)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(home, "scripts")}, removed)

		assert.NoDirExists(t, filepath.Join(home, "scripts"))
		assert.DirExists(t, filepath.Join(home, "raw_data"))
	})

	t.Run("all_scopes", func(t *testing.T) {
		home := seedHome(t)

		removed, err := Reset(context.Background(), ScopeAll)
		require.NoError(t, err)
		assert.Len(t, removed, 2)

		assert.NoDirExists(t, filepath.Join(home, "scripts"))
		assert.NoDirExists(t, filepath.Join(home, "raw_data"))
	})

	t.Run("absent_dirs_skipped", func(t *testing.T) {
		t.Setenv(EnvHome, t.TempDir())

		removed, err := Reset(context.Background(), ScopeAll)
		require.NoError(t, err)
		assert.Empty(t, removed)
	})
}
