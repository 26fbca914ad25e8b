package nasa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NeoSync/internal/config"
	"NeoSync/internal/metrics"
	"NeoSync/internal/model"
	"NeoSync/internal/utils/httpclient"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	// ErrTransport 网络失败或非 2xx 响应
	ErrTransport = errors.New("NASA接口请求失败")
	// ErrParse 响应体不是预期的 JSON
	ErrParse = errors.New("NASA接口响应解析失败")
)

// StatusError 非 2xx 响应，errors.Is(err, ErrTransport) 为 true
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s 返回状态码 %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrTransport }

const (
	feedPath   = "/neo/rest/v1/feed"
	lookupPath = "/neo/rest/v1/neo/"
	apodPath   = "/planetary/apod"

	maxErrorBody = 256
)

// Client NeoWs + APOD 接口客户端（出站限速，lookup 结果缓存）
type Client struct {
	cfg         *config.NasaConfig
	httpClient  *http.Client
	limiter     *rate.Limiter
	detailCache *cache.Cache
	metrics     *metrics.Metrics
	logger      *logrus.Logger
}

// Option 可选注入项
type Option func(*Client)

// WithMetrics 注入拉取失败计数
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(cfg *config.NasaConfig, logger *logrus.Logger, opts ...Option) *Client {
	rps := cfg.RequestsPerSecond
	burst := cfg.Burst
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst < 1 {
		burst = 1
	}
	ttl := cfg.DetailCacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &Client{
		cfg:         cfg,
		httpClient:  httpclient.NewHTTPClient(cfg, logger),
		limiter:     rate.NewLimiter(limit, burst),
		detailCache: cache.New(ttl, 2*ttl),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchWindow 拉取 [start, end] 区间（含两端）的 NEO feed
func (c *Client) FetchWindow(ctx context.Context, start, end time.Time) (*model.NeoFeed, error) {
	q := url.Values{}
	q.Set("start_date", model.FormatDate(start))
	q.Set("end_date", model.FormatDate(end))

	var feed model.NeoFeed
	if _, err := c.getJSON(ctx, metrics.EndpointFeed, feedPath, q, &feed); err != nil {
		return nil, err
	}
	if feed.NearEarthObjects == nil {
		feed.NearEarthObjects = map[string][]model.NeoObject{}
	}
	c.logger.WithFields(logrus.Fields{
		"start":         model.FormatDate(start),
		"end":           model.FormatDate(end),
		"element_count": feed.ElementCount,
	}).Info("NeoWs feed 拉取成功")
	return &feed, nil
}

// FetchDetail 拉取单个 NEO 的 lookup 详情；404 视为不存在，返回 (nil, nil)
func (c *Client) FetchDetail(ctx context.Context, neoID string) (*model.NeoDetail, error) {
	neoID = strings.TrimSpace(neoID)
	if neoID == "" {
		return nil, nil
	}
	if v, ok := c.detailCache.Get(neoID); ok {
		return v.(*model.NeoDetail), nil
	}

	var detail model.NeoDetail
	found, err := c.getJSON(ctx, metrics.EndpointLookup, lookupPath+url.PathEscape(neoID), url.Values{}, &detail)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	c.detailCache.SetDefault(neoID, &detail)
	return &detail, nil
}

// FetchApod 拉取指定日期的 APOD
func (c *Client) FetchApod(ctx context.Context, date time.Time) (*model.ApodRaw, error) {
	q := url.Values{}
	q.Set("date", model.FormatDate(date))

	var raw model.ApodRaw
	found, err := c.getJSON(ctx, metrics.EndpointApod, apodPath, q, &raw)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &StatusError{Endpoint: metrics.EndpointApod, StatusCode: http.StatusNotFound}
	}
	if raw.Date == "" {
		raw.Date = model.FormatDate(date)
	}
	return &raw, nil
}

// getJSON 发起 GET 并解码；404 返回 found=false 且无错误，由调用方决定语义
func (c *Client) getJSON(ctx context.Context, endpoint, path string, q url.Values, out interface{}) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	q.Set("api_key", c.cfg.APIKey)
	reqURL := strings.TrimRight(c.cfg.BaseURL, "/") + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("构建请求失败: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.FetchFailed(endpoint)
		// url.Error 中带有 api_key，不直接透出
		return false, fmt.Errorf("%w: %s 请求失败: %s", ErrTransport, endpoint, redact(err.Error(), c.cfg.APIKey))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.WithError(err).Warn("关闭NASA响应体失败")
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.FetchFailed(endpoint)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return false, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.FetchFailed(endpoint)
		return false, fmt.Errorf("%w: %s: %w", ErrParse, endpoint, err)
	}
	return true, nil
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "***")
}
