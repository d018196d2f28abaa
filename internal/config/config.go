package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type RedisConfig struct {
	URL        string // Empty disables the history cache
	HistoryTTL time.Duration
}

type PickupsConfig struct {
	HistoricalMinLitres float64
	HistoricalMaxLitres float64
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Redis       RedisConfig
	Pickups     PickupsConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Redis: RedisConfig{
			URL:        v.GetString("REDIS_URL"),
			HistoryTTL: v.GetDuration("REDIS_HISTORY_TTL"),
		},
		Pickups: PickupsConfig{
			HistoricalMinLitres: v.GetFloat64("PICKUPS_HISTORICAL_MIN_LITRES"),
			HistoricalMaxLitres: v.GetFloat64("PICKUPS_HISTORICAL_MAX_LITRES"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Redis.HistoryTTL == 0 {
		cfg.Redis.HistoryTTL = 5 * time.Minute
	}
	if cfg.Pickups.HistoricalMinLitres == 0 {
		cfg.Pickups.HistoricalMinLitres = 1
	}
	if cfg.Pickups.HistoricalMaxLitres == 0 {
		cfg.Pickups.HistoricalMaxLitres = 1000
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Pickups.HistoricalMinLitres > cfg.Pickups.HistoricalMaxLitres {
		return fmt.Errorf("PICKUPS_HISTORICAL_MIN_LITRES must not exceed PICKUPS_HISTORICAL_MAX_LITRES")
	}
	return nil
}
