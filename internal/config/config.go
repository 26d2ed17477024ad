package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"github.com/nurpe/finishing-touch/internal/pricing"
)

type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	AdminEmail    string
	AdminPassword string
}

type AppConfig struct {
	CurrencySymbol string
	Timezone       string
	PDFFontPath    string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	App         AppConfig
	Rates       pricing.RateCard
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

	defaults := pricing.DefaultRateCard()
	v.SetDefault("PRICE_KITCHEN", defaults.Kitchen)
	v.SetDefault("PRICE_DINING_ROOM", defaults.DiningRoom)
	v.SetDefault("PRICE_LIVING_ROOM", defaults.LivingRoom)
	v.SetDefault("PRICE_BATHROOM", defaults.Bathroom)
	v.SetDefault("PRICE_MASTER_BATHROOM", defaults.MasterBathroom)
	v.SetDefault("PRICE_BEDROOM_BASE", defaults.BedroomBase)
	v.SetDefault("PRICE_BEDROOM_EXTRA_BED", defaults.BedroomExtraBed)

	_ = v.ReadInConfig()

	rates := defaults
	rates.Kitchen = v.GetInt64("PRICE_KITCHEN")
	rates.DiningRoom = v.GetInt64("PRICE_DINING_ROOM")
	rates.LivingRoom = v.GetInt64("PRICE_LIVING_ROOM")
	rates.Bathroom = v.GetInt64("PRICE_BATHROOM")
	rates.MasterBathroom = v.GetInt64("PRICE_MASTER_BATHROOM")
	rates.BedroomBase = v.GetInt64("PRICE_BEDROOM_BASE")
	rates.BedroomExtraBed = v.GetInt64("PRICE_BEDROOM_EXTRA_BED")

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret:  v.GetString("JWT_ACCESS_SECRET"),
			AccessTTL:     v.GetDuration("JWT_ACCESS_TTL"),
			AdminEmail:    strings.TrimSpace(v.GetString("ADMIN_EMAIL")),
			AdminPassword: v.GetString("ADMIN_PASSWORD"),
		},
		App: AppConfig{
			CurrencySymbol: v.GetString("APP_CURRENCY_SYMBOL"),
			Timezone:       v.GetString("APP_TIMEZONE"),
			PDFFontPath:    v.GetString("PDF_FONT_PATH"),
		},
		Rates: rates,
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 4000
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Auth.AccessTTL <= 0 {
		cfg.Auth.AccessTTL = 24 * time.Hour
	}
	if cfg.App.CurrencySymbol == "" {
		cfg.App.CurrencySymbol = "₪"
	}
	if cfg.App.Timezone == "" {
		cfg.App.Timezone = "UTC"
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if _, err := time.LoadLocation(cfg.App.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE is invalid: %w", err)
	}
	if cfg.Auth.AdminEmail != "" && len(cfg.Auth.AdminPassword) < 8 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters")
	}
	rates := []int64{
		cfg.Rates.Kitchen,
		cfg.Rates.DiningRoom,
		cfg.Rates.LivingRoom,
		cfg.Rates.Bathroom,
		cfg.Rates.MasterBathroom,
		cfg.Rates.BedroomBase,
		cfg.Rates.BedroomExtraBed,
	}
	for _, rate := range rates {
		if rate < 0 {
			return fmt.Errorf("PRICE_* values must not be negative")
		}
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
