// Package metrics 同步/对账过程的 Prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 拉取端点标签
const (
	EndpointFeed   = "feed"
	EndpointLookup = "lookup"
	EndpointApod   = "apod"
)

// Metrics 所有计数器集中在一个 Collector 中注册；nil 接收者上的方法为空操作，便于测试不注入指标
type Metrics struct {
	asteroidsCreated  prometheus.Counter
	approachesCreated prometheus.Counter
	apodCreated       prometheus.Counter
	fetchFailures     *prometheus.CounterVec
	matchesWritten    *prometheus.CounterVec
	runDuration       *prometheus.HistogramVec
}

// New 创建并注册指标
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		asteroidsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "neosync_asteroids_created_total",
			Help: "新入库的小行星数量",
		}),
		approachesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "neosync_approaches_created_total",
			Help: "新入库的掠过事件数量",
		}),
		apodCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "neosync_apod_entries_created_total",
			Help: "新入库的APOD条目数量",
		}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "neosync_fetch_failures_total",
			Help: "NASA接口拉取失败次数",
		}, []string{"endpoint"}),
		matchesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "neosync_matches_written_total",
			Help: "写入的关联数量（exact/fuzzy）",
		}, []string{"type"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "neosync_run_duration_seconds",
			Help:    "单次运行耗时",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"kind"}),
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements prometheus.Collector
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.asteroidsCreated.Describe(ch)
	m.approachesCreated.Describe(ch)
	m.apodCreated.Describe(ch)
	m.fetchFailures.Describe(ch)
	m.matchesWritten.Describe(ch)
	m.runDuration.Describe(ch)
}

// Collect implements prometheus.Collector
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.asteroidsCreated.Collect(ch)
	m.approachesCreated.Collect(ch)
	m.apodCreated.Collect(ch)
	m.fetchFailures.Collect(ch)
	m.matchesWritten.Collect(ch)
	m.runDuration.Collect(ch)
}

func (m *Metrics) AsteroidCreated() {
	if m != nil {
		m.asteroidsCreated.Inc()
	}
}

func (m *Metrics) ApproachCreated() {
	if m != nil {
		m.approachesCreated.Inc()
	}
}

func (m *Metrics) ApodCreated() {
	if m != nil {
		m.apodCreated.Inc()
	}
}

func (m *Metrics) FetchFailed(endpoint string) {
	if m != nil {
		m.fetchFailures.WithLabelValues(endpoint).Inc()
	}
}

func (m *Metrics) MatchesWritten(matchType string, n int) {
	if m != nil && n > 0 {
		m.matchesWritten.WithLabelValues(matchType).Add(float64(n))
	}
}

// ObserveRun 记录一次运行耗时
func (m *Metrics) ObserveRun(kind string, started time.Time) {
	if m != nil {
		m.runDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
	}
}
