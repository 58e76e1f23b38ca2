package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/lecturemarket/lecturemarket-backend/pkg/logger"
)

// Config 애플리케이션 설정
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	CORS     CORSConfig     `yaml:"cors"`
	PortOne  PortOneConfig  `yaml:"portone"`
	Batch    BatchConfig    `yaml:"batch"`
}

// ServerConfig HTTP 서버 설정
type ServerConfig struct {
	Port            int           `yaml:"port" validate:"gt=0,lt=65536"`
	Mode            string        `yaml:"mode" validate:"omitempty,oneof=debug release test"`
	Env             string        `yaml:"env"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig MySQL 설정
type DatabaseConfig struct {
	Host            string `yaml:"host" validate:"required"`
	Port            int    `yaml:"port" validate:"gt=0"`
	User            string `yaml:"user" validate:"required"`
	Password        string `yaml:"password"`
	DBName          string `yaml:"dbname" validate:"required"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
}

// RedisConfig Redis 설정 (Host가 비어 있으면 비활성)
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// JWTConfig 토큰 설정
type JWTConfig struct {
	Secret    string `yaml:"secret" validate:"required"`
	ExpiresIn int    `yaml:"expires_in"` // seconds
}

// CORSConfig CORS 설정 (콤마 구분)
type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// PortOneConfig 결제 게이트웨이(PortOne V2) 설정
type PortOneConfig struct {
	APIBaseURL       string        `yaml:"api_base_url" validate:"required,url"`
	APISecret        string        `yaml:"api_secret" validate:"required"`
	WebhookSecret    string        `yaml:"webhook_secret" validate:"required"`
	StoreID          string        `yaml:"store_id"`
	Timeout          time.Duration `yaml:"timeout" validate:"gt=0"`
	WebhookTolerance time.Duration `yaml:"webhook_tolerance"`
}

// BatchConfig 일일 결제 통계 배치 설정
type BatchConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hour     int    `yaml:"hour" validate:"gte=0,lte=23"`
	Minute   int    `yaml:"minute" validate:"gte=0,lte=59"`
	Timezone string `yaml:"timezone" validate:"required"`
}

// Default 기본 설정
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8082,
			Mode:            "release",
			Env:             "local",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "127.0.0.1",
			Port:            3306,
			User:            "root",
			DBName:          "lecturemarket",
			MaxIdleConns:    10,
			MaxOpenConns:    50,
			ConnMaxLifetime: 300,
		},
		Redis: RedisConfig{
			Port:     6379,
			PoolSize: 20,
		},
		JWT: JWTConfig{
			ExpiresIn: 3600,
		},
		PortOne: PortOneConfig{
			APIBaseURL:       "https://api.portone.io",
			Timeout:          10 * time.Second,
			WebhookTolerance: 5 * time.Minute,
		},
		Batch: BatchConfig{
			Enabled:  true,
			Hour:     0,
			Minute:   10,
			Timezone: "Asia/Seoul",
		},
	}
}

// Load YAML 설정 파일 로드 + 환경변수 오버라이드 + 검증
// 파일이 없으면 기본값에서 시작한다. 필수 시크릿이 비어 있으면 에러.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("config 파싱 실패 (%s): %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// 기본값 + 환경변수만 사용
		default:
			return nil, fmt.Errorf("config 읽기 실패 (%s): %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 필수값 검증
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %v", fields)
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := time.LoadLocation(c.Batch.Timezone); err != nil {
		return fmt.Errorf("invalid config: batch.timezone %q: %w", c.Batch.Timezone, err)
	}
	return nil
}

// Location 배치 기준 타임존
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Batch.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// IsDevelopment 개발 환경 여부
func (c *Config) IsDevelopment() bool {
	switch c.Server.Env {
	case "", "local", "dev", "development":
		return true
	}
	return false
}

// RedisEnabled Redis 사용 여부
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

// GetDSN MySQL DSN 생성
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.DBName)
}

// LogResolved 최종 설정 로그 (시크릿 제외)
func LogResolved(c *Config) {
	logger.GetLogger().Info().
		Int("port", c.Server.Port).
		Str("env", c.Server.Env).
		Str("db_host", c.Database.Host).
		Str("db_name", c.Database.DBName).
		Bool("redis", c.RedisEnabled()).
		Str("portone_base_url", c.PortOne.APIBaseURL).
		Bool("batch_enabled", c.Batch.Enabled).
		Str("batch_at", fmt.Sprintf("%02d:%02d %s", c.Batch.Hour, c.Batch.Minute, c.Batch.Timezone)).
		Msg("config resolved")
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Env, "APP_ENV")
	setInt(&cfg.Server.Port, "SERVER_PORT")

	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DBName, "DB_NAME")

	setString(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.CORS.AllowOrigins, "CORS_ALLOW_ORIGINS")

	setString(&cfg.PortOne.APIBaseURL, "PORTONE_API_BASE_URL")
	setString(&cfg.PortOne.APISecret, "PORTONE_API_SECRET")
	setString(&cfg.PortOne.WebhookSecret, "PORTONE_WEBHOOK_SECRET")
	setString(&cfg.PortOne.StoreID, "PORTONE_STORE_ID")

	setString(&cfg.Batch.Timezone, "BATCH_TIMEZONE")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
