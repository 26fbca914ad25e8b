package model

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// FlexFloat NeoWs 数值字段既可能是数字也可能是字符串（如 "12.345"），缺失或非数值时 Valid=false
type FlexFloat struct {
	Value float64
	Valid bool
}

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	*f = FlexFloat{}
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		s = strings.TrimSpace(str)
	}
	// 非数值一律记为未知，不让单个脏字段拖垮整批解析
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	v, _ := d.Float64()
	f.Value, f.Valid = v, true
	return nil
}

// Ptr 转为可空指针（nil 表示未知）
func (f FlexFloat) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// Int64Ptr 毫秒时间戳等整数字段
func (f FlexFloat) Int64Ptr() *int64 {
	if !f.Valid {
		return nil
	}
	v := int64(f.Value)
	return &v
}

// NeoFeed NeoWs feed 接口原始响应：日期 -> NEO 列表
type NeoFeed struct {
	ElementCount     int                    `json:"element_count"`
	NearEarthObjects map[string][]NeoObject `json:"near_earth_objects"`
}

// SortedDates 升序返回 feed 中的日期键（保证处理顺序确定）
func (f *NeoFeed) SortedDates() []string {
	if f == nil {
		return nil
	}
	dates := make([]string, 0, len(f.NearEarthObjects))
	for d := range f.NearEarthObjects {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

type DiameterRange struct {
	EstimatedDiameterMin FlexFloat `json:"estimated_diameter_min"`
	EstimatedDiameterMax FlexFloat `json:"estimated_diameter_max"`
}

type EstimatedDiameter struct {
	Kilometers DiameterRange `json:"kilometers"`
}

type RelativeVelocity struct {
	KilometersPerSecond FlexFloat `json:"kilometers_per_second"`
	KilometersPerHour   FlexFloat `json:"kilometers_per_hour"`
	MilesPerHour        FlexFloat `json:"miles_per_hour"`
}

type MissDistance struct {
	Astronomical FlexFloat `json:"astronomical"`
	Lunar        FlexFloat `json:"lunar"`
	Kilometers   FlexFloat `json:"kilometers"`
	Miles        FlexFloat `json:"miles"`
}

// CloseApproach 单次掠过事件
type CloseApproach struct {
	CloseApproachDate      string           `json:"close_approach_date"`
	CloseApproachDateFull  string           `json:"close_approach_date_full"`
	EpochDateCloseApproach FlexFloat        `json:"epoch_date_close_approach"`
	RelativeVelocity       RelativeVelocity `json:"relative_velocity"`
	MissDistance           MissDistance     `json:"miss_distance"`
	OrbitingBody           string           `json:"orbiting_body"`
}

// NeoObject feed 中的单个近地天体
type NeoObject struct {
	ID                     string            `json:"id"`
	NeoReferenceID         string            `json:"neo_reference_id"`
	Name                   string            `json:"name"`
	NasaJplURL             string            `json:"nasa_jpl_url"`
	AbsoluteMagnitudeH     FlexFloat         `json:"absolute_magnitude_h"`
	EstimatedDiameter      EstimatedDiameter `json:"estimated_diameter"`
	IsPotentiallyHazardous bool              `json:"is_potentially_hazardous_asteroid"`
	IsSentryObject         bool              `json:"is_sentry_object"`
	CloseApproachData      []CloseApproach   `json:"close_approach_data"`
}

// NaturalID 业务主键，id 缺失时回退 neo_reference_id
func (o *NeoObject) NaturalID() string {
	if o.ID != "" {
		return o.ID
	}
	return o.NeoReferenceID
}

// OrbitalData lookup 接口中的轨道数据
type OrbitalData struct {
	OrbitID                string    `json:"orbit_id"`
	OrbitDeterminationDate string    `json:"orbit_determination_date"`
	Eccentricity           FlexFloat `json:"eccentricity"`
	SemiMajorAxis          FlexFloat `json:"semi_major_axis"`
	Inclination            FlexFloat `json:"inclination"`
	AscendingNodeLongitude FlexFloat `json:"ascending_node_longitude"`
	PerihelionArgument     FlexFloat `json:"perihelion_argument"`
	PerihelionDistance     FlexFloat `json:"perihelion_distance"`
	AphelionDistance       FlexFloat `json:"aphelion_distance"`
	OrbitalPeriod          FlexFloat `json:"orbital_period"`
	MeanAnomaly            FlexFloat `json:"mean_anomaly"`
	MeanMotion             FlexFloat `json:"mean_motion"`
	EpochOsculation        FlexFloat `json:"epoch_osculation"`
}

// NeoDetail lookup 接口原始响应（只取用到的字段）
type NeoDetail struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	OrbitalData *OrbitalData `json:"orbital_data"`
}

// ApodRaw APOD 接口原始响应
type ApodRaw struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	URL         string `json:"url"`
	HDURL       string `json:"hdurl"`
	MediaType   string `json:"media_type"`
	Copyright   string `json:"copyright"`
}
