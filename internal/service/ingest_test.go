package service

import (
	"context"
	"testing"

	"NeoSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFeed() *model.NeoFeed {
	return &model.NeoFeed{NearEarthObjects: map[string][]model.NeoObject{
		"2024-01-02": {
			neo("3", "(2024 AC)", "2024-01-02", 0.05, 0.11),
		},
		"2024-01-01": {
			neo("1", "(2024 AA)", "2024-01-01", 0.1, 0.3),
			neo("2", "(2024 AB)", "2024-01-01", 0.2, 0.9),
		},
	}}
}

func TestIngest_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.ingestService(t, defaultIngestConfig())

	first, err := svc.Ingest(ctx, sampleFeed())
	require.NoError(t, err)
	assert.Equal(t, 3, first.NewAsteroids)
	assert.Equal(t, 3, first.NewApproaches)
	assert.Equal(t, 1, first.NewOrbitingBodies)
	assert.Equal(t, 2, first.SummariesCreated)
	assert.Equal(t, 3, first.ItemsStored)

	second, err := svc.Ingest(ctx, sampleFeed())
	require.NoError(t, err)
	assert.Zero(t, second.NewAsteroids)
	assert.Zero(t, second.NewApproaches)
	assert.Zero(t, second.SummariesCreated)
	assert.Zero(t, second.ItemsStored)

	assert.EqualValues(t, 3, f.count(t, &model.Asteroid{}))
	assert.EqualValues(t, 3, f.count(t, &model.Approach{}))
	assert.EqualValues(t, 2, f.count(t, &model.DailySummary{}))
	assert.EqualValues(t, 3, f.count(t, &model.NeoItem{}))
	assert.EqualValues(t, 1, f.count(t, &model.OrbitingBody{}))

	// 已存在的小行星不再请求详情
	assert.Len(t, f.neoFetcher.detailCalls, 3)
}

func TestIngest_ProcessesDatesAscending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cfg := defaultIngestConfig()
	cfg.MaxNewPerRun = 1
	svc := f.ingestService(t, cfg)

	res, err := svc.Ingest(ctx, sampleFeed())
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewAsteroids)

	a, err := f.asteroids.FindByNeoID(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, a, "最早日期的第一个条目应先占用预算")
}

func TestIngest_BudgetRespected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cfg := defaultIngestConfig()
	cfg.MaxNewPerRun = 2
	svc := f.ingestService(t, cfg)

	feed := &model.NeoFeed{NearEarthObjects: map[string][]model.NeoObject{
		"2024-01-01": {
			neo("1", "a", "2024-01-01", 0.1, 0.2),
			neo("2", "b", "2024-01-01", 0.1, 0.2),
			neo("3", "c", "2024-01-01", 0.1, 0.2),
			neo("4", "d", "2024-01-01", 0.1, 0.2),
			neo("5", "e", "2024-01-01", 0.1, 0.2),
		},
	}}
	res, err := svc.Ingest(ctx, feed)
	require.NoError(t, err)

	assert.Equal(t, 2, res.NewAsteroids)
	assert.Equal(t, 3, res.SkippedNew)
	assert.Equal(t, 2, res.NewApproaches)
	assert.EqualValues(t, 2, f.count(t, &model.Asteroid{}))

	s, err := f.summaries.FindByDate(ctx, "2024-01-01")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 5, s.Count, "汇总计数覆盖当日全部条目")
}

func TestIngest_ApproachesOfKnownAsteroidAfterBudgetExhausted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cfg := defaultIngestConfig()
	cfg.MaxNewPerRun = 0
	svc := f.ingestService(t, cfg)

	known := &model.Asteroid{NeoID: "42", Name: "known"}
	_, err := f.asteroids.CreateAsteroid(ctx, known)
	require.NoError(t, err)

	obj := neo("42", "known", "2024-02-01", 0.1, 0.2)
	obj.CloseApproachData = append(obj.CloseApproachData, approach("2031-02-01"))
	feed := &model.NeoFeed{NearEarthObjects: map[string][]model.NeoObject{
		"2024-02-01": {obj, neo("99", "new", "2024-02-01", 0.1, 0.2)},
	}}

	res, err := svc.Ingest(ctx, feed)
	require.NoError(t, err)
	assert.Zero(t, res.NewAsteroids)
	assert.Equal(t, 1, res.SkippedNew)
	assert.Equal(t, 2, res.NewApproaches)

	n, err := f.asteroids.CountApproachesByAsteroid(ctx, known.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Empty(t, f.neoFetcher.detailCalls)
}

func TestIngest_ZeroApproachItemConsumesBudget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cfg := defaultIngestConfig()
	cfg.MaxNewPerRun = 1
	svc := f.ingestService(t, cfg)

	bare := neo("1", "bare", "2024-01-01", 0.1, 0.2)
	bare.CloseApproachData = nil
	feed := &model.NeoFeed{NearEarthObjects: map[string][]model.NeoObject{
		"2024-01-01": {bare, neo("2", "second", "2024-01-01", 0.1, 0.2)},
	}}
	res, err := svc.Ingest(ctx, feed)
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewAsteroids)
	assert.Equal(t, 1, res.SkippedNew)
	assert.Zero(t, res.NewApproaches)
}

func TestIngest_OrbitalDetail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.ingestService(t, defaultIngestConfig())

	f.neoFetcher.details["1"] = &model.NeoDetail{ID: "1", OrbitalData: &model.OrbitalData{
		OrbitID:      "7",
		Eccentricity: flex(0.21),
	}}
	f.neoFetcher.detailErrs["2"] = errUpstream
	// "3" 详情不存在

	res, err := svc.Ingest(ctx, sampleFeed())
	require.NoError(t, err)
	assert.Equal(t, 3, res.NewAsteroids, "详情失败不影响小行星入库")
	assert.Equal(t, 1, res.OrbitalStored)
	assert.Equal(t, 2, res.OrbitalMissing)

	a1, err := f.asteroids.FindByNeoID(ctx, "1")
	require.NoError(t, err)
	o, err := f.asteroids.GetOrbital(ctx, a1.ID)
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, "7", o.OrbitID)
	assert.InDelta(t, 0.21, *o.Eccentricity, 1e-9)
	assert.Nil(t, o.Inclination)

	a2, err := f.asteroids.FindByNeoID(ctx, "2")
	require.NoError(t, err)
	o2, err := f.asteroids.GetOrbital(ctx, a2.ID)
	require.NoError(t, err)
	assert.Nil(t, o2)
}

func TestIngest_UnknownNumericsStoredAsNull(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.ingestService(t, defaultIngestConfig())

	obj := model.NeoObject{
		ID:   "7",
		Name: "mystery",
		CloseApproachData: []model.CloseApproach{{
			CloseApproachDate: "2024-01-01",
		}},
	}
	feed := &model.NeoFeed{NearEarthObjects: map[string][]model.NeoObject{"2024-01-01": {obj}}}
	_, err := svc.Ingest(ctx, feed)
	require.NoError(t, err)

	a, err := f.asteroids.FindByNeoID(ctx, "7")
	require.NoError(t, err)
	assert.Nil(t, a.AbsoluteMagnitude)
	assert.Nil(t, a.EstimatedDiameterMax)

	var ap model.Approach
	require.NoError(t, f.db.Where("asteroid_id = ?", a.ID).First(&ap).Error)
	assert.Nil(t, ap.RelVelKmS)
	assert.Nil(t, ap.MissDistanceKm)
	assert.Nil(t, ap.OrbitingBodyID, "无天体名称时不建立关联")

	s, err := f.summaries.FindByDate(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count)
	assert.Zero(t, s.Smallest)
	assert.Zero(t, s.Largest)
}

func TestIngest_EmptyDateIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.ingestService(t, defaultIngestConfig())

	feed := &model.NeoFeed{NearEarthObjects: map[string][]model.NeoObject{"2024-01-01": {}}}
	res, err := svc.Ingest(ctx, feed)
	require.NoError(t, err)
	assert.Zero(t, res.SummariesCreated)
	assert.EqualValues(t, 0, f.count(t, &model.DailySummary{}))
}

func TestIngest_PerDayItemLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cfg := defaultIngestConfig()
	cfg.PerDayItemLimit = 2
	svc := f.ingestService(t, cfg)

	first := &model.NeoFeed{NearEarthObjects: map[string][]model.NeoObject{"2024-01-01": {
		neo("1", "a", "2024-01-01", 0.1, 0.2),
	}}}
	_, err := svc.Ingest(ctx, first)
	require.NoError(t, err)

	second := &model.NeoFeed{NearEarthObjects: map[string][]model.NeoObject{"2024-01-01": {
		neo("1", "a", "2024-01-01", 0.1, 0.2),
		neo("2", "b", "2024-01-01", 0.1, 0.2),
		neo("3", "c", "2024-01-01", 0.1, 0.2),
	}}}
	res, err := svc.Ingest(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ItemsStored)
	assert.Zero(t, res.SummariesCreated, "已有汇总不重复创建")

	s, err := f.summaries.FindByDate(ctx, "2024-01-01")
	require.NoError(t, err)
	n, err := f.summaries.CountItems(ctx, s.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, 1, s.Count, "已有汇总保持首次统计")
}

func TestIngestRange_SkipsFailedDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.ingestService(t, defaultIngestConfig())

	for i, d := range []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-06", "2024-01-07", "2024-01-08"} {
		id := string(rune('a' + i))
		f.neoFetcher.byDate[d] = []model.NeoObject{neo(id, "neo "+id, d, 0.1, 0.2)}
	}
	f.neoFetcher.failDates["2024-01-03"] = true

	res, err := svc.IngestRange(ctx, day("2024-01-01"), day("2024-01-08"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-03"}, res.SkippedDates)
	assert.Equal(t, 7, res.NewAsteroids)
	assert.Len(t, f.neoFetcher.windowCalls, 8)
	for _, c := range f.neoFetcher.windowCalls {
		assert.Equal(t, c[0], c[1], "逐日请求")
	}

	summaries, err := f.summaries.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 7)
	for _, s := range summaries {
		assert.NotEqual(t, "2024-01-03", s.Date)
	}

	runs, err := f.runs.ListRecent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunRange, runs[0].Kind)
	assert.JSONEq(t, `["2024-01-03"]`, string(runs[0].SkippedDates))
}

func TestIngestRange_SharedBudget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cfg := defaultIngestConfig()
	cfg.MaxNewPerRun = 3
	svc := f.ingestService(t, cfg)

	f.neoFetcher.byDate["2024-01-01"] = []model.NeoObject{neo("1", "a", "2024-01-01", 0.1, 0.2), neo("2", "b", "2024-01-01", 0.1, 0.2)}
	f.neoFetcher.byDate["2024-01-02"] = []model.NeoObject{neo("3", "c", "2024-01-02", 0.1, 0.2), neo("4", "d", "2024-01-02", 0.1, 0.2)}

	res, err := svc.IngestRange(ctx, day("2024-01-01"), day("2024-01-02"))
	require.NoError(t, err)
	assert.Equal(t, 3, res.NewAsteroids)
	assert.Equal(t, 1, res.SkippedNew)
}

func TestIngestRange_RejectsInvertedRange(t *testing.T) {
	f := newFixture(t)
	svc := f.ingestService(t, defaultIngestConfig())
	_, err := svc.IngestRange(context.Background(), day("2024-01-05"), day("2024-01-01"))
	assert.Error(t, err)
}

func TestRun_AdvancesCursor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.ingestService(t, defaultIngestConfig())

	f.neoFetcher.byDate["2024-01-01"] = []model.NeoObject{neo("1", "a", "2024-01-01", 0.1, 0.2)}
	f.neoFetcher.byDate["2024-01-05"] = []model.NeoObject{neo("2", "b", "2024-01-05", 0.1, 0.2)}

	res, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", res.Start)
	assert.Equal(t, "2024-01-08", res.End)
	assert.Equal(t, 2, res.NewAsteroids)
	assert.NotEmpty(t, res.RunUUID)

	res, err = svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-06", res.Start)
	assert.Zero(t, res.NewAsteroids)
}

func TestRun_FetchFailureRecordedAsSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.ingestService(t, defaultIngestConfig())
	f.neoFetcher.failDates["2024-01-04"] = true

	res, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, res.SkippedDates, 8)
	assert.EqualValues(t, 0, f.count(t, &model.Asteroid{}))

	runs, err := f.runs.ListRecent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunWindow, runs[0].Kind)
}
