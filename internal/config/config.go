package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrAPIKeyNotFound 未配置 NASA API Key（启动即失败，不触发任何网络/存储操作）
var ErrAPIKeyNotFound = errors.New("NASA API Key 未配置")

// Config 全局配置结构体（完全匹配config.yaml），显式传入各入口，不使用包级全局变量
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig `mapstructure:"database"` // 数据库配置
	Nasa     NasaConfig     `mapstructure:"nasa"`     // NASA 接口配置
	Ingest   IngestConfig   `mapstructure:"ingest"`   // 增量拉取配置
	Resolve  ResolveConfig  `mapstructure:"resolve"`  // 对账配置
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`            // sqlite / postgres
	DSN             string        `mapstructure:"dsn"`               // 连接DSN（sqlite 为文件路径）
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
	LogLevel        string        `mapstructure:"log_level"`         // GORM日志级别：silent/error/warn/info
}

// NasaConfig NASA 接口配置
type NasaConfig struct {
	BaseURL           string        `mapstructure:"base_url"`            // API基础地址
	APIKey            string        `mapstructure:"api_key"`             // 静态凭证
	APIKeyFile        string        `mapstructure:"api_key_file"`        // api_key 为空时从该文件读取
	Timeout           int           `mapstructure:"timeout"`             // 请求超时（秒）
	Proxy             string        `mapstructure:"proxy"`               // 代理地址
	RequestsPerSecond float64       `mapstructure:"requests_per_second"` // 出站限速
	Burst             int           `mapstructure:"burst"`               // 限速突发
	DetailCacheTTL    time.Duration `mapstructure:"detail_cache_ttl"`    // lookup 结果缓存时长
}

// IngestConfig 增量拉取配置
type IngestConfig struct {
	Epoch                string `mapstructure:"epoch"`                  // 库为空时的起始日期
	WindowDays           int    `mapstructure:"window_days"`            // 单次窗口宽度（NeoWs 限制 7 天）
	MaxNewPerRun         int    `mapstructure:"max_new_per_run"`        // 单次运行最多新增小行星数
	PerDayItemLimit      int    `mapstructure:"per_day_item_limit"`     // 每个日汇总最多保存条目数
	SummaryDiameterField string `mapstructure:"summary_diameter_field"` // 日汇总统计字段
}

// ResolveConfig 对账配置
type ResolveConfig struct {
	Threshold float64 `mapstructure:"threshold"` // Jaccard 阈值
	TopK      int     `mapstructure:"top_k"`     // 每个条目最多保留的模糊匹配数
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug/info/warn/error
	Format string `mapstructure:"format"` // text/json
}

const (
	DiameterFieldMax = "estimated_diameter_max"
	DiameterFieldMin = "estimated_diameter_min"
)

// EpochDate 解析起始日期
func (c IngestConfig) EpochDate() (time.Time, error) {
	return time.Parse("2006-01-02", c.Epoch)
}

// LoadConfig 加载配置文件（<dir>/config.yaml），敏感项从 .env / 环境变量覆盖（不提交 git）
func LoadConfig(dir string) (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml（文件不存在时使用默认值）
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir == "" {
		dir = "./config"
	}
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "space_data.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("nasa.base_url", "https://api.nasa.gov")
	v.SetDefault("nasa.api_key_file", "config/nasa_api_key.txt")
	v.SetDefault("nasa.timeout", 30)
	v.SetDefault("nasa.requests_per_second", 2.0)
	v.SetDefault("nasa.burst", 2)
	v.SetDefault("nasa.detail_cache_ttl", 6*time.Hour)
	v.SetDefault("ingest.epoch", "2024-01-01")
	v.SetDefault("ingest.window_days", 7)
	v.SetDefault("ingest.max_new_per_run", 25)
	v.SetDefault("ingest.per_day_item_limit", 25)
	v.SetDefault("ingest.summary_diameter_field", DiameterFieldMax)
	v.SetDefault("resolve.threshold", 0.15)
	v.SetDefault("resolve.top_k", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("NASA_API_KEY"); v != "" {
		cfg.Nasa.APIKey = v
	}
	if v := os.Getenv("NASA_PROXY"); v != "" {
		cfg.Nasa.Proxy = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
}

// ResolveAPIKey api_key 为空时从 api_key_file 读取；两者都没有返回 ErrAPIKeyNotFound
func (c *Config) ResolveAPIKey() error {
	if strings.TrimSpace(c.Nasa.APIKey) != "" {
		c.Nasa.APIKey = strings.TrimSpace(c.Nasa.APIKey)
		return nil
	}
	if c.Nasa.APIKeyFile == "" {
		return ErrAPIKeyNotFound
	}
	raw, err := os.ReadFile(c.Nasa.APIKeyFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s 不存在", ErrAPIKeyNotFound, c.Nasa.APIKeyFile)
		}
		return fmt.Errorf("读取 API Key 文件失败: %w", err)
	}
	key := strings.TrimSpace(string(raw))
	if key == "" {
		return fmt.Errorf("%w: %s 为空", ErrAPIKeyNotFound, c.Nasa.APIKeyFile)
	}
	c.Nasa.APIKey = key
	return nil
}

// Validate 校验可调参数（不含凭证，凭证见 ResolveAPIKey）
func (c *Config) Validate() error {
	if c.Resolve.Threshold < 0 || c.Resolve.Threshold >= 1 {
		return fmt.Errorf("resolve.threshold 必须在 [0,1) 内: %v", c.Resolve.Threshold)
	}
	if c.Resolve.TopK < 1 {
		return fmt.Errorf("resolve.top_k 必须 >= 1: %d", c.Resolve.TopK)
	}
	if c.Ingest.MaxNewPerRun < 0 {
		return fmt.Errorf("ingest.max_new_per_run 不能为负: %d", c.Ingest.MaxNewPerRun)
	}
	if c.Ingest.WindowDays < 1 {
		return fmt.Errorf("ingest.window_days 必须 >= 1: %d", c.Ingest.WindowDays)
	}
	if c.Ingest.PerDayItemLimit < 0 {
		return fmt.Errorf("ingest.per_day_item_limit 不能为负: %d", c.Ingest.PerDayItemLimit)
	}
	switch c.Ingest.SummaryDiameterField {
	case DiameterFieldMax, DiameterFieldMin:
	default:
		return fmt.Errorf("未支持的 ingest.summary_diameter_field: %s", c.Ingest.SummaryDiameterField)
	}
	if _, err := c.Ingest.EpochDate(); err != nil {
		return fmt.Errorf("ingest.epoch 格式错误: %w", err)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("未支持的 database.driver: %s", c.Database.Driver)
	}
	return nil
}
