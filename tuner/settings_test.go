package tuner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeSettingsFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "brain.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSettings(t *testing.T) {
	path := writeSettingsFile(t, `
brain_enabled = true
num_queries_threshold = 25
max_index_cols = 2
enumeration_threshold = 3
num_indexes = 4
wait_interval = "90s"
`)
	s, err := LoadSettings(path)
	require.NoError(t, err)
	require.True(t, s.BrainEnabled)
	require.Equal(t, 25, s.NumQueriesThreshold)
	require.Equal(t, 90*time.Second, s.WaitInterval.Duration)

	knobs := s.Knobs()
	require.Equal(t, 2, knobs.MaxIndexCols)
	require.Equal(t, 3, knobs.EnumerationThreshold)
	require.Equal(t, 4, knobs.NumIndexes)
}

func TestLoadSettingsKeepsDefaults(t *testing.T) {
	path := writeSettingsFile(t, `num_indexes = 7`)
	s, err := LoadSettings(path)
	require.NoError(t, err)

	defaults := DefaultSettings()
	require.Equal(t, 7, s.NumIndexes)
	require.Equal(t, defaults.NumQueriesThreshold, s.NumQueriesThreshold)
	require.Equal(t, defaults.WaitInterval, s.WaitInterval)
}

func TestLoadSettingsRejectsBadValues(t *testing.T) {
	_, err := LoadSettings(writeSettingsFile(t, `wait_interval = "soon"`))
	require.Error(t, err)

	_, err = LoadSettings(writeSettingsFile(t, `wait_interval = "0s"`))
	require.Error(t, err)

	_, err = LoadSettings(writeSettingsFile(t, `num_queries_threshold = -1`))
	require.Error(t, err)

	_, err = LoadSettings(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
