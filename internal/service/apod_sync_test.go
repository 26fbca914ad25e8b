package service

import (
	"context"
	"testing"

	"NeoSync/internal/model"
	"NeoSync/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) apodSyncService() *ApodSyncService {
	return NewApodSyncService(f.apodFetcher, f.apods, f.summaries, f.runs, nil, testutil.NewLogger())
}

func apodRaw(date, title string) *model.ApodRaw {
	return &model.ApodRaw{Date: date, Title: title, Explanation: "explanation of " + title, MediaType: "image", URL: "https://apod.example/" + date + ".jpg"}
}

func TestApodSync_SyncDateSkipsExisting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.apodFetcher.entries["2025-01-01"] = apodRaw("2025-01-01", "Orion")
	svc := f.apodSyncService()

	created, err := svc.SyncDate(ctx, day("2025-01-01"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.SyncDate(ctx, day("2025-01-01"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, f.apodFetcher.calls, 1)

	entries, err := f.apods.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Orion", entries[0].Title)
	assert.Equal(t, "https://apod.example/2025-01-01.jpg", entries[0].ImageURL)
}

func TestApodSync_SyncDateFetchError(t *testing.T) {
	f := newFixture(t)
	_, err := f.apodSyncService().SyncDate(context.Background(), day("2025-01-01"))
	assert.ErrorIs(t, err, errUpstream)
	assert.Zero(t, f.count(t, &model.ApodEntry{}))
}

func TestApodSync_SyncRangeSkipsFailedDays(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.apodFetcher.entries["2025-01-01"] = apodRaw("2025-01-01", "a")
	f.apodFetcher.entries["2025-01-03"] = apodRaw("2025-01-03", "c")
	svc := f.apodSyncService()

	res, err := svc.SyncRange(ctx, day("2025-01-01"), day("2025-01-03"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, []string{"2025-01-02"}, res.SkippedDates)

	f.apodFetcher.entries["2025-01-02"] = apodRaw("2025-01-02", "b")
	res, err = svc.SyncRange(ctx, day("2025-01-01"), day("2025-01-03"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 2, res.Existing)
	assert.Empty(t, res.SkippedDates)

	runs, err := f.runs.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, model.RunApod, runs[0].Kind)
}

func TestApodSync_SyncRangeInverted(t *testing.T) {
	f := newFixture(t)
	_, err := f.apodSyncService().SyncRange(context.Background(), day("2025-01-03"), day("2025-01-01"))
	assert.Error(t, err)
	assert.Empty(t, f.apodFetcher.calls)
}

func TestApodSync_SyncForNeoDates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.apodSyncService()

	res, err := svc.SyncForNeoDates(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.Empty(t, f.apodFetcher.calls)

	seedItem(t, f, "2025-01-02", "1", "x")
	seedItem(t, f, "2025-01-04", "2", "y")
	for _, d := range []string{"2025-01-02", "2025-01-03", "2025-01-04"} {
		f.apodFetcher.entries[d] = apodRaw(d, d)
	}

	res, err = svc.SyncForNeoDates(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02", res.Start)
	assert.Equal(t, "2025-01-04", res.End)
	assert.Equal(t, 3, res.Created)
}
