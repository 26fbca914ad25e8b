package model

import "time"

// Asteroid 小行星主表（neo_id 为 NeoWs 平台原生 ID，全局唯一；插入后不再更新）
type Asteroid struct {
	ID                     uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	NeoID                  string    `gorm:"column:neo_id;type:varchar(32);uniqueIndex;not null;comment:NeoWs原生ID" json:"neo_id"`
	Name                   string    `gorm:"column:name;type:varchar(128);comment:名称" json:"name"`
	NasaJplURL             string    `gorm:"column:nasa_jpl_url;type:varchar(256);comment:JPL详情地址" json:"nasa_jpl_url"`
	AbsoluteMagnitude      *float64  `gorm:"column:absolute_magnitude;comment:绝对星等" json:"absolute_magnitude"`
	EstimatedDiameterMin   *float64  `gorm:"column:estimated_diameter_min;comment:估算最小直径(km)" json:"estimated_diameter_min"`
	EstimatedDiameterMax   *float64  `gorm:"column:estimated_diameter_max;comment:估算最大直径(km)" json:"estimated_diameter_max"`
	IsPotentiallyHazardous bool      `gorm:"column:is_potentially_hazardous;default:false;comment:是否潜在危险" json:"is_potentially_hazardous"`
	IsSentryObject         bool      `gorm:"column:is_sentry_object;default:false;comment:是否Sentry监测对象" json:"is_sentry_object"`
	CreatedAt              time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间" json:"created_at"`
	UpdatedAt              time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间" json:"updated_at"`
}

// OrbitalElements 轨道根数（与 asteroids 一对一，二次拉取失败时缺省）
type OrbitalElements struct {
	AsteroidID             uint64   `gorm:"column:asteroid_id;primaryKey;autoIncrement:false;comment:关联小行星ID" json:"asteroid_id"`
	OrbitID                string   `gorm:"column:orbit_id;type:varchar(32);comment:轨道解ID" json:"orbit_id"`
	OrbitDeterminationDate string   `gorm:"column:orbit_determination_date;type:varchar(32);comment:定轨时间" json:"orbit_determination_date"`
	Eccentricity           *float64 `gorm:"column:eccentricity" json:"eccentricity"`
	SemiMajorAxis          *float64 `gorm:"column:semi_major_axis" json:"semi_major_axis"`
	Inclination            *float64 `gorm:"column:inclination" json:"inclination"`
	AscendingNodeLongitude *float64 `gorm:"column:ascending_node_longitude" json:"ascending_node_longitude"`
	PerihelionArgument     *float64 `gorm:"column:perihelion_argument" json:"perihelion_argument"`
	PerihelionDistance     *float64 `gorm:"column:perihelion_distance" json:"perihelion_distance"`
	AphelionDistance       *float64 `gorm:"column:aphelion_distance" json:"aphelion_distance"`
	OrbitalPeriod          *float64 `gorm:"column:orbital_period" json:"orbital_period"`
	MeanAnomaly            *float64 `gorm:"column:mean_anomaly" json:"mean_anomaly"`
	MeanMotion             *float64 `gorm:"column:mean_motion" json:"mean_motion"`
	EpochOsculation        *float64 `gorm:"column:epoch_osculation" json:"epoch_osculation"`
}

// OrbitingBody 掠过天体字典表（Earth/Mars/...），按名称懒创建
type OrbitingBody struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;type:varchar(64);uniqueIndex;not null;comment:天体名称" json:"name"`
}

// Approach 近地掠过事件（asteroid_id + approach_date 唯一，只追加）
type Approach struct {
	ID                 uint64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	AsteroidID         uint64   `gorm:"column:asteroid_id;not null;uniqueIndex:uq_asteroid_approach;comment:关联小行星ID" json:"asteroid_id"`
	ApproachDate       string   `gorm:"column:approach_date;type:varchar(10);not null;uniqueIndex:uq_asteroid_approach;index;comment:掠过日期YYYY-MM-DD" json:"approach_date"`
	ApproachDateFull   string   `gorm:"column:approach_date_full;type:varchar(32);comment:掠过完整时间" json:"approach_date_full"`
	EpochCloseApproach *int64   `gorm:"column:epoch_close_approach;comment:掠过时间戳(毫秒)" json:"epoch_close_approach"`
	RelVelKmS          *float64 `gorm:"column:rel_vel_km_s" json:"rel_vel_km_s"`
	RelVelKmH          *float64 `gorm:"column:rel_vel_km_h" json:"rel_vel_km_h"`
	RelVelMph          *float64 `gorm:"column:rel_vel_mph" json:"rel_vel_mph"`
	MissDistanceKm     *float64 `gorm:"column:miss_distance_km" json:"miss_distance_km"`
	MissDistanceLunar  *float64 `gorm:"column:miss_distance_lunar" json:"miss_distance_lunar"`
	MissDistanceAU     *float64 `gorm:"column:miss_distance_au" json:"miss_distance_au"`
	MissDistanceMiles  *float64 `gorm:"column:miss_distance_miles" json:"miss_distance_miles"`
	OrbitingBodyID     *uint64  `gorm:"column:orbiting_body_id;comment:关联天体ID（逻辑外键）" json:"orbiting_body_id"`
}

func (Asteroid) TableName() string        { return "asteroids" }
func (OrbitalElements) TableName() string { return "orbital_elements" }
func (OrbitingBody) TableName() string    { return "orbiting_bodies" }
func (Approach) TableName() string        { return "approaches" }
