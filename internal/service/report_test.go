package service

import (
	"context"
	"testing"

	"NeoSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReportData(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	tiny := neo("1", "Tiny", "2025-01-01", 0.01, 0.05)
	small := neo("2", "Small", "2025-01-01", 0.1, 0.3)
	small.IsPotentiallyHazardous = true
	small.AbsoluteMagnitudeH = flex(20)
	large := neo("3", "Large", "2025-02-10", 1.5, 2.0)
	large.CloseApproachData[0].RelativeVelocity.KilometersPerSecond = flex(30)
	large.CloseApproachData[0].MissDistance.Kilometers = flex(5e6)
	unknown := neo("4", "Unknown", "2025-02-10", 0, 0)
	unknown.EstimatedDiameter = model.EstimatedDiameter{}
	unknown.CloseApproachData[0].RelativeVelocity = model.RelativeVelocity{}

	f.neoFetcher.byDate["2025-01-01"] = []model.NeoObject{tiny, small}
	f.neoFetcher.byDate["2025-02-10"] = []model.NeoObject{large, unknown}
	svc := f.ingestService(t, defaultIngestConfig())
	_, err := svc.IngestRange(ctx, day("2025-01-01"), day("2025-02-10"))
	require.NoError(t, err)
}

func TestReport_SizeDistribution(t *testing.T) {
	f := newFixture(t)
	seedReportData(t, f)
	svc := NewReportService(f.reports, f.summaries, f.apods)

	buckets, err := svc.SizeDistribution(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, 5)

	byLabel := map[string]SizeBucket{}
	for _, b := range buckets {
		byLabel[b.Label] = b
	}
	assert.Equal(t, 1, byLabel["Tiny (< 0.1 km)"].Count)
	small := byLabel["Small (0.1-0.5 km)"]
	assert.Equal(t, 1, small.Count)
	assert.Equal(t, 1, small.HazardousCount)
	assert.Equal(t, 100.0, small.HazardRate)
	require.NotNil(t, small.AvgMagnitude)
	assert.Equal(t, 20.0, *small.AvgMagnitude)
	assert.Zero(t, byLabel["Medium (0.5-1.0 km)"].Count)
	assert.Nil(t, byLabel["Medium (0.5-1.0 km)"].AvgDiameter)
	assert.Equal(t, 1, byLabel["Large (> 1.0 km)"].Count)
	assert.Equal(t, 1, byLabel[sizeUnknown].Count)
}

func TestReport_VelocityVsDistance(t *testing.T) {
	f := newFixture(t)
	seedReportData(t, f)
	svc := NewReportService(f.reports, f.summaries, f.apods)

	rep, err := svc.VelocityVsDistance(context.Background(), 2)
	require.NoError(t, err)
	// 速度未知的掠过不参与
	assert.Equal(t, 3, rep.Samples)
	require.Len(t, rep.Closest, 2)
	assert.Equal(t, 1e6, rep.Closest[0].MissDistanceKm)
	assert.Equal(t, 1, rep.HazardousCount)
	assert.Equal(t, 2, rep.NonHazardousCount)
	assert.InDelta(t, 50.0/3, rep.AvgVelocityKmS, 1e-9)
	require.NotNil(t, rep.Correlation)
	assert.InDelta(t, 1.0, *rep.Correlation, 1e-9)
}

func TestReport_ApproachesByDayAndDistribution(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seedReportData(t, f)
	require.NoError(t, f.apods.Create(ctx, &model.ApodEntry{Date: "2025-03-01", Title: "Comet Tail", Explanation: "An asteroid and a comet", MediaType: "image"}))
	require.NoError(t, f.apods.Create(ctx, &model.ApodEntry{Date: "2025-03-02", Title: "Moon", Explanation: "Meteor shower", MediaType: "video"}))
	svc := NewReportService(f.reports, f.summaries, f.apods)

	rows, err := svc.ApproachesByDay(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-01-01", rows[0].Date)
	assert.EqualValues(t, 2, rows[0].Count)
	assert.EqualValues(t, 1, rows[0].HazardousCount)

	dist, err := svc.DataDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", dist.Approaches.First)
	assert.Equal(t, "2025-02-10", dist.Approaches.Last)
	assert.Equal(t, []string{"2025-01", "2025-02"}, dist.Approaches.Months)
	assert.Equal(t, 2, dist.Apod.Days)

	kw, err := svc.ApodKeywords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, kw.Total)
	assert.Equal(t, 1, kw.Asteroid)
	assert.Equal(t, 1, kw.Comet)
	assert.Equal(t, 1, kw.Meteor)
	assert.Equal(t, 1, kw.SpaceObjectTitles)
	assert.Equal(t, map[string]int{"image": 1, "video": 1}, kw.MediaTypes)

	stats, err := svc.SummaryStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalRows)
	assert.Equal(t, 2.0, stats.AvgCountPerDay)

	totals, err := svc.Totals(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, totals.Asteroids)
	assert.EqualValues(t, 4, totals.Approaches)
	assert.EqualValues(t, 2, totals.ApodEntries)
}

func TestPearson(t *testing.T) {
	assert.Nil(t, pearson([]float64{1}, []float64{2}))
	assert.Nil(t, pearson([]float64{1, 1, 1}, []float64{1, 2, 3}))
	r := pearson([]float64{1, 2, 3}, []float64{3, 2, 1})
	require.NotNil(t, r)
	assert.InDelta(t, -1.0, *r, 1e-12)
}

func TestSpanOf(t *testing.T) {
	s := spanOf(nil)
	assert.Empty(t, s.First)
	assert.Equal(t, []string{}, s.Months)
	s = spanOf([]string{"2024-12-31", "2025-01-01", "2025-01-20"})
	assert.Equal(t, 3, s.Days)
	assert.Equal(t, []string{"2024-12", "2025-01"}, s.Months)
}
