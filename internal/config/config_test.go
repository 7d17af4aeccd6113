package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profleet/internal/catalog"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "settings.yaml"))
	s, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "", s.Root())
	assert.Equal(t, 1, s.BatchSizeValue())
	assert.Equal(t, catalog.DefaultLayout(), s.Layout())
	assert.Equal(t, "-startintray", s.Target.HiddenFlag)
	assert.Equal(t, 3*time.Second, s.Timing().SettleDelay)
	assert.Equal(t, 3, s.Timing().TerminateAttempts)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	body := "root_path: '  /srv/farm  '\nbatch_size: \"4\"\nlaunch:\n  settle_delay: 250ms\nterminate:\n  attempts: 5\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("PROFLEET_BATCH_SIZE", "9")

	s, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/farm", s.Root())
	assert.Equal(t, 9, s.BatchSizeValue())
	assert.Equal(t, 250*time.Millisecond, s.Timing().SettleDelay)
	assert.Equal(t, time.Second, s.Timing().FollowupDelay)
	assert.Equal(t, 5, s.Timing().TerminateAttempts)
}

func TestLoadRereadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	l := NewLoader(path)
	require.NoError(t, os.WriteFile(path, []byte("root_path: /a\n"), 0o644))
	s, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "/a", s.Root())

	require.NoError(t, os.WriteFile(path, []byte("root_path: /b\n"), 0o644))
	s, err = l.Load()
	require.NoError(t, err)
	assert.Equal(t, "/b", s.Root())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root_path: [unclosed\n"), 0o644))
	_, err := NewLoader(path).Load()
	assert.Error(t, err)
}

func TestSetWritesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	l := NewLoader(path)

	require.NoError(t, l.Set("root_path", "/srv/farm"))
	require.NoError(t, l.Set("BATCH_SIZE", "3"))
	assert.Error(t, l.Set("no_such_key", "x"))

	s, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/farm", s.Root())
	assert.Equal(t, 3, s.BatchSizeValue())
}

func TestParseBatchSize(t *testing.T) {
	cases := map[string]int{
		"":     1,
		"0":    1,
		"-3":   1,
		"abc":  1,
		" 12 ": 12,
		"250":  250,
	}
	for raw, want := range cases {
		if got := ParseBatchSize(raw); got != want {
			t.Fatalf("ParseBatchSize(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestHomeFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROFLEET_HOME", dir)
	assert.Equal(t, dir, Home())
	assert.Equal(t, filepath.Join(dir, "settings.yaml"), NewLoader("").Path())
}
