package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"NeoSync/internal/repository"
)

// 尺寸分档（km，左闭右开）
var sizeBuckets = []struct {
	Label string
	Upper float64
}{
	{"Tiny (< 0.1 km)", 0.1},
	{"Small (0.1-0.5 km)", 0.5},
	{"Medium (0.5-1.0 km)", 1.0},
	{"Large (> 1.0 km)", math.Inf(1)},
}

const sizeUnknown = "Unknown"

// SizeBucket 单个尺寸分档
type SizeBucket struct {
	Label          string   `json:"label"`
	Count          int      `json:"count"`
	HazardousCount int      `json:"hazardous_count"`
	HazardRate     float64  `json:"hazard_rate"` // 百分比
	AvgDiameter    *float64 `json:"avg_diameter_km"`
	AvgMagnitude   *float64 `json:"avg_magnitude"`
}

// VelocityReport 速度-距离分析
type VelocityReport struct {
	Samples             int                        `json:"samples"`
	Closest             []repository.ApproachPoint `json:"closest"`
	AvgVelocityKmS      float64                    `json:"avg_velocity_km_s"`
	AvgMissDistanceKm   float64                    `json:"avg_miss_distance_km"`
	Correlation         *float64                   `json:"correlation"` // 样本不足或方差为 0 时为 nil
	HazardousCount      int                        `json:"hazardous_count"`
	NonHazardousCount   int                        `json:"non_hazardous_count"`
	AvgVelocityHazard   *float64                   `json:"avg_velocity_hazardous"`
	AvgVelocityNoHazard *float64                   `json:"avg_velocity_non_hazardous"`
}

// ApodKeywordReport APOD 关键词统计
type ApodKeywordReport struct {
	Total             int            `json:"total"`
	Asteroid          int            `json:"asteroid"`
	Meteor            int            `json:"meteor"`
	Comet             int            `json:"comet"`
	SpaceObjectTitles int            `json:"space_object_titles"`
	MediaTypes        map[string]int `json:"media_types"`
}

// DateSpan 日期分布
type DateSpan struct {
	First  string   `json:"first"`
	Last   string   `json:"last"`
	Days   int      `json:"days"`
	Months []string `json:"months"`
}

// DistributionReport 各数据集的时间覆盖
type DistributionReport struct {
	Approaches DateSpan `json:"approaches"`
	Apod       DateSpan `json:"apod"`
}

// SummaryStats 日汇总统计
type SummaryStats struct {
	TotalRows      int     `json:"total_rows"`
	AvgCountPerDay float64 `json:"avg_count_per_day"`
	MinSmallest    float64 `json:"min_smallest"`
	MaxLargest     float64 `json:"max_largest"`
}

// ReportService 只读聚合视图
type ReportService struct {
	reportRepo  repository.ReportRepository
	summaryRepo repository.SummaryRepository
	apodRepo    repository.ApodRepository
}

func NewReportService(reportRepo repository.ReportRepository, summaryRepo repository.SummaryRepository, apodRepo repository.ApodRepository) *ReportService {
	return &ReportService{reportRepo: reportRepo, summaryRepo: summaryRepo, apodRepo: apodRepo}
}

func (s *ReportService) ApproachesByDay(ctx context.Context) ([]repository.DayApproachRow, error) {
	rows, err := s.reportRepo.ApproachesByDay(ctx)
	if err != nil {
		return nil, fmt.Errorf("按日统计掠过失败: %w", err)
	}
	return rows, nil
}

// VelocityVsDistance closest 为按距离最近的返回条数
func (s *ReportService) VelocityVsDistance(ctx context.Context, closest int) (*VelocityReport, error) {
	points, err := s.reportRepo.ApproachPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询掠过速度/距离失败: %w", err)
	}
	out := &VelocityReport{Samples: len(points), Closest: []repository.ApproachPoint{}}
	if closest <= 0 {
		closest = 10
	}
	if len(points) < closest {
		closest = len(points)
	}
	out.Closest = append(out.Closest, points[:closest]...)
	if len(points) == 0 {
		return out, nil
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	var hazSum, noSum float64
	for i, p := range points {
		xs[i], ys[i] = p.VelocityKmS, p.MissDistanceKm
		if p.IsHazardous {
			out.HazardousCount++
			hazSum += p.VelocityKmS
		} else {
			out.NonHazardousCount++
			noSum += p.VelocityKmS
		}
	}
	out.AvgVelocityKmS = mean(xs)
	out.AvgMissDistanceKm = mean(ys)
	out.Correlation = pearson(xs, ys)
	if out.HazardousCount > 0 {
		v := hazSum / float64(out.HazardousCount)
		out.AvgVelocityHazard = &v
	}
	if out.NonHazardousCount > 0 {
		v := noSum / float64(out.NonHazardousCount)
		out.AvgVelocityNoHazard = &v
	}
	return out, nil
}

// SizeDistribution 按估算最大直径分档；直径未知的单独计为 Unknown
func (s *ReportService) SizeDistribution(ctx context.Context) ([]SizeBucket, error) {
	sizes, err := s.reportRepo.AsteroidSizes(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询小行星尺寸失败: %w", err)
	}
	type acc struct {
		count, hazardous    int
		diamSum, magSum     float64
		diamCount, magCount int
	}
	accs := make([]acc, len(sizeBuckets)+1)
	for _, sz := range sizes {
		idx := len(sizeBuckets)
		if sz.DiameterKm != nil {
			for i, b := range sizeBuckets {
				if *sz.DiameterKm < b.Upper {
					idx = i
					break
				}
			}
		}
		a := &accs[idx]
		a.count++
		if sz.IsHazardous {
			a.hazardous++
		}
		if sz.DiameterKm != nil {
			a.diamSum += *sz.DiameterKm
			a.diamCount++
		}
		if sz.Magnitude != nil {
			a.magSum += *sz.Magnitude
			a.magCount++
		}
	}

	out := make([]SizeBucket, 0, len(accs))
	for i, a := range accs {
		label := sizeUnknown
		if i < len(sizeBuckets) {
			label = sizeBuckets[i].Label
		}
		if label == sizeUnknown && a.count == 0 {
			continue
		}
		b := SizeBucket{Label: label, Count: a.count, HazardousCount: a.hazardous}
		if a.count > 0 {
			b.HazardRate = float64(a.hazardous) / float64(a.count) * 100
		}
		if a.diamCount > 0 {
			v := a.diamSum / float64(a.diamCount)
			b.AvgDiameter = &v
		}
		if a.magCount > 0 {
			v := a.magSum / float64(a.magCount)
			b.AvgMagnitude = &v
		}
		out = append(out, b)
	}
	return out, nil
}

// ApodKeywords 统计说明中提到 asteroid/meteor/comet 的 APOD 数量
func (s *ReportService) ApodKeywords(ctx context.Context) (*ApodKeywordReport, error) {
	entries, err := s.apodRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("拉取APOD失败: %w", err)
	}
	out := &ApodKeywordReport{Total: len(entries), MediaTypes: map[string]int{}}
	for _, e := range entries {
		expl := strings.ToLower(e.Explanation)
		title := strings.ToLower(e.Title)
		if strings.Contains(expl, "asteroid") {
			out.Asteroid++
		}
		if strings.Contains(expl, "meteor") {
			out.Meteor++
		}
		if strings.Contains(expl, "comet") {
			out.Comet++
		}
		if strings.Contains(title, "asteroid") || strings.Contains(title, "meteor") || strings.Contains(title, "comet") {
			out.SpaceObjectTitles++
		}
		mt := e.MediaType
		if mt == "" {
			mt = "unknown"
		}
		out.MediaTypes[mt]++
	}
	return out, nil
}

// DataDistribution 掠过与 APOD 数据的日期覆盖
func (s *ReportService) DataDistribution(ctx context.Context) (*DistributionReport, error) {
	approachDates, err := s.reportRepo.ApproachDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询掠过日期失败: %w", err)
	}
	apodDates, err := s.reportRepo.ApodDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询APOD日期失败: %w", err)
	}
	return &DistributionReport{Approaches: spanOf(approachDates), Apod: spanOf(apodDates)}, nil
}

// SummaryStats 日汇总总体统计
func (s *ReportService) SummaryStats(ctx context.Context) (*SummaryStats, error) {
	list, err := s.summaryRepo.ListSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("拉取日汇总失败: %w", err)
	}
	out := &SummaryStats{TotalRows: len(list)}
	if len(list) == 0 {
		return out, nil
	}
	total := 0
	out.MinSmallest, out.MaxLargest = list[0].Smallest, list[0].Largest
	for _, su := range list {
		total += su.Count
		out.MinSmallest = math.Min(out.MinSmallest, su.Smallest)
		out.MaxLargest = math.Max(out.MaxLargest, su.Largest)
	}
	out.AvgCountPerDay = float64(total) / float64(len(list))
	return out, nil
}

func (s *ReportService) Totals(ctx context.Context) (repository.Totals, error) {
	return s.reportRepo.Totals(ctx)
}

// spanOf dates 须已升序且去重
func spanOf(dates []string) DateSpan {
	span := DateSpan{Months: []string{}}
	if len(dates) == 0 {
		return span
	}
	span.First, span.Last, span.Days = dates[0], dates[len(dates)-1], len(dates)
	for _, d := range dates {
		if len(d) < 7 {
			continue
		}
		m := d[:7]
		if n := len(span.Months); n == 0 || span.Months[n-1] != m {
			span.Months = append(span.Months, m)
		}
	}
	return span
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// pearson 样本相关系数；少于 2 个样本或任一方差为 0 返回 nil
func pearson(xs, ys []float64) *float64 {
	if len(xs) < 2 || len(xs) != len(ys) {
		return nil
	}
	mx, my := mean(xs), mean(ys)
	var cov, vx, vy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return nil
	}
	r := cov / math.Sqrt(vx*vy)
	return &r
}
