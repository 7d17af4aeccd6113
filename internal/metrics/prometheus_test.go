package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profleet/internal/fleet"
)

func TestCollectorFleetObserved(t *testing.T) {
	c := NewCollector("test")
	c.FleetObserved(fleet.Summary{Total: 10, Running: 6, Disabled: 1, Unknown: 3}, 20*time.Millisecond)

	expected := `
		# HELP test_profiles Profiles by state as of the last reconcile
		# TYPE test_profiles gauge
		test_profiles{state="disabled"} 1
		test_profiles{state="running"} 6
		test_profiles{state="total"} 10
		test_profiles{state="unknown"} 3
	`
	err := testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "test_profiles")
	assert.NoError(t, err)

	count, err := testutil.GatherAndCount(c.Registry(), "test_reconcile_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCollectorCounters(t *testing.T) {
	c := NewCollector("test")
	c.SpawnAttempt("primary", nil)
	c.SpawnAttempt("primary", nil)
	c.SpawnAttempt("link", errors.New("denied"))
	c.ProcessTerminated(nil)
	c.ProcessTerminated(errors.New("gone"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.spawns.WithLabelValues("primary", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.spawns.WithLabelValues("link", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.terminations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.terminations.WithLabelValues("error")))
}

func TestCollectorHandler(t *testing.T) {
	c := NewCollector("")
	c.ProcessTerminated(nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `profleet_terminations_total{status="ok"} 1`)
}
