package service

import (
	"context"
	"testing"

	"NeoSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextWindow_EmptyUsesEpoch(t *testing.T) {
	f := newFixture(t)
	cursor, err := NewCursorService(f.asteroids, defaultIngestConfig())
	require.NoError(t, err)

	w, err := cursor.NextWindow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", model.FormatDate(w.Start))
	assert.Equal(t, "2024-01-08", model.FormatDate(w.End))
}

func TestNextWindow_StrictlyAfterMaxApproach(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cursor, err := NewCursorService(f.asteroids, defaultIngestConfig())
	require.NoError(t, err)

	a := &model.Asteroid{NeoID: "1"}
	_, err = f.asteroids.CreateAsteroid(ctx, a)
	require.NoError(t, err)
	for _, d := range []string{"2024-03-30", "2024-02-28", "2024-03-31"} {
		_, err = f.asteroids.CreateApproach(ctx, &model.Approach{AsteroidID: a.ID, ApproachDate: d})
		require.NoError(t, err)
	}

	w1, err := cursor.NextWindow(ctx)
	require.NoError(t, err)
	w2, err := cursor.NextWindow(ctx)
	require.NoError(t, err)
	assert.Equal(t, w1, w2, "读取游标不推进状态")
	assert.Equal(t, "2024-04-01", model.FormatDate(w1.Start))
	assert.Equal(t, "2024-04-08", model.FormatDate(w1.End))
}

func TestNewCursorService_BadEpoch(t *testing.T) {
	f := newFixture(t)
	cfg := defaultIngestConfig()
	cfg.Epoch = "yesterday"
	_, err := NewCursorService(f.asteroids, cfg)
	assert.Error(t, err)
}
