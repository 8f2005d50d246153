package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Meli        MeliConfig     `mapstructure:"meli"`
	Analysis    AnalysisConfig `mapstructure:"analysis"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MeliConfig configures the marketplace API boundary. BaseURL points at the
// reverse proxy that fronts the MercadoLibre API; the analysis core never
// talks to the marketplace directly.
type MeliConfig struct {
	BaseURL string `mapstructure:"base_url"`
	SiteID  string `mapstructure:"site_id"`
	Timeout int    `mapstructure:"timeout"`
}

type AnalysisConfig struct {
	MaxListings      int    `mapstructure:"max_listings"`
	DetailSampleSize int    `mapstructure:"detail_sample_size"`
	PriceSegments    int    `mapstructure:"price_segments"`
	MarketSegments   int    `mapstructure:"market_segments"`
	HistoryDays      int    `mapstructure:"history_days"`
	TopSellers       int    `mapstructure:"top_sellers"`
	CacheTTL         string `mapstructure:"cache_ttl"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Normalize environment to lowercase for consistent comparison
	config.Environment = strings.ToLower(config.Environment)

	if config.Meli.BaseURL == "" {
		return nil, errors.New("meli.base_url is required")
	}
	if config.Analysis.MaxListings <= 0 || config.Analysis.MaxListings > 100 {
		return nil, fmt.Errorf("analysis.max_listings must be between 1 and 100, got %d", config.Analysis.MaxListings)
	}
	if config.Analysis.PriceSegments <= 0 {
		return nil, fmt.Errorf("analysis.price_segments must be positive, got %d", config.Analysis.PriceSegments)
	}
	if config.Analysis.MarketSegments <= 0 {
		return nil, fmt.Errorf("analysis.market_segments must be positive, got %d", config.Analysis.MarketSegments)
	}

	return &config, nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "meliscope")
	viper.SetDefault("database.sslmode", "disable")

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Marketplace API proxy
	viper.SetDefault("meli.base_url", "http://localhost:3001")
	viper.SetDefault("meli.site_id", "MLA")
	viper.SetDefault("meli.timeout", 30)

	// Analysis
	viper.SetDefault("analysis.max_listings", 100)
	viper.SetDefault("analysis.detail_sample_size", 10)
	viper.SetDefault("analysis.price_segments", 5)
	viper.SetDefault("analysis.market_segments", 3)
	viper.SetDefault("analysis.history_days", 30)
	viper.SetDefault("analysis.top_sellers", 5)
	viper.SetDefault("analysis.cache_ttl", "10m")
}
