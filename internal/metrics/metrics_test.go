package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.AsteroidCreated()
	m.AsteroidCreated()
	m.ApproachCreated()
	m.ApodCreated()
	m.FetchFailed(EndpointFeed)
	m.FetchFailed(EndpointLookup)
	m.FetchFailed(EndpointLookup)
	m.MatchesWritten("fuzzy", 3)
	m.MatchesWritten("exact", 0)
	m.ObserveRun("window", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.asteroidsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.approachesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apodCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetchFailures.WithLabelValues(EndpointLookup)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.matchesWritten.WithLabelValues("fuzzy")))

	n, err := testutil.GatherAndCount(reg, "neosync_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetricsDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetricsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AsteroidCreated()
		m.ApproachCreated()
		m.ApodCreated()
		m.FetchFailed(EndpointApod)
		m.MatchesWritten("fuzzy", 1)
		m.ObserveRun("apod", time.Now())
	})
}
