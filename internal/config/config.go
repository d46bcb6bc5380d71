// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Forecast ForecastConfig
	Routing  RoutingConfig
	Pricing  PricingConfig
	Importer ImporterConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	AnalyticsTTLSeconds int
}

type ForecastConfig struct {
	HorizonDays       int
	HistoryWindowDays int
	Seed              int64
}

type RoutingConfig struct {
	FuelCostPerKm     float64
	DriverCostPerHour float64
	Seed              int64
}

type PricingConfig struct {
	MinProfitMarginPct    float64
	MaxPriceAdjustmentPct float64
	InventoryWeight       float64
	MarketWeight          float64
	CompetitorWeight      float64
}

type ImporterConfig struct {
	Port             string
	DriveCredentials string
	DriveFolderID    string
	DownloadDir      string
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 60)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "chainopt")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_ANALYTICS_TTL_SECONDS", 60)
		viper.SetDefault("FORECAST_HORIZON_DAYS", 30)
		viper.SetDefault("FORECAST_HISTORY_WINDOW_DAYS", 365)
		viper.SetDefault("FORECAST_SEED", 42)
		viper.SetDefault("ROUTING_FUEL_COST_PER_KM", 1.5)
		viper.SetDefault("ROUTING_DRIVER_COST_PER_HOUR", 25.0)
		viper.SetDefault("ROUTING_SEED", 0)
		viper.SetDefault("PRICING_MIN_PROFIT_MARGIN_PCT", 15.0)
		viper.SetDefault("PRICING_MAX_PRICE_ADJUSTMENT_PCT", 20.0)
		viper.SetDefault("PRICING_INVENTORY_WEIGHT", 0.3)
		viper.SetDefault("PRICING_MARKET_WEIGHT", 0.4)
		viper.SetDefault("PRICING_COMPETITOR_WEIGHT", 0.3)
		viper.SetDefault("IMPORTER_PORT", "8081")
		viper.SetDefault("IMPORTER_DOWNLOAD_DIR", "./data/imports")
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_BUCKET", "chainopt-exports")
		viper.SetDefault("STORAGE_USE_SSL", true)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:             viper.GetBool("CACHE_ENABLED"),
				RedisURL:            viper.GetString("REDIS_URL"),
				RedisHost:           viper.GetString("REDIS_HOST"),
				RedisPort:           viper.GetString("REDIS_PORT"),
				RedisPassword:       viper.GetString("REDIS_PASSWORD"),
				RedisDB:             viper.GetInt("REDIS_DB"),
				AnalyticsTTLSeconds: viper.GetInt("CACHE_ANALYTICS_TTL_SECONDS"),
			},
			Forecast: ForecastConfig{
				HorizonDays:       viper.GetInt("FORECAST_HORIZON_DAYS"),
				HistoryWindowDays: viper.GetInt("FORECAST_HISTORY_WINDOW_DAYS"),
				Seed:              viper.GetInt64("FORECAST_SEED"),
			},
			Routing: RoutingConfig{
				FuelCostPerKm:     viper.GetFloat64("ROUTING_FUEL_COST_PER_KM"),
				DriverCostPerHour: viper.GetFloat64("ROUTING_DRIVER_COST_PER_HOUR"),
				Seed:              viper.GetInt64("ROUTING_SEED"),
			},
			Pricing: PricingConfig{
				MinProfitMarginPct:    viper.GetFloat64("PRICING_MIN_PROFIT_MARGIN_PCT"),
				MaxPriceAdjustmentPct: viper.GetFloat64("PRICING_MAX_PRICE_ADJUSTMENT_PCT"),
				InventoryWeight:       viper.GetFloat64("PRICING_INVENTORY_WEIGHT"),
				MarketWeight:          viper.GetFloat64("PRICING_MARKET_WEIGHT"),
				CompetitorWeight:      viper.GetFloat64("PRICING_COMPETITOR_WEIGHT"),
			},
			Importer: ImporterConfig{
				Port:             viper.GetString("IMPORTER_PORT"),
				DriveCredentials: viper.GetString("IMPORTER_DRIVE_CREDENTIALS_JSON"),
				DriveFolderID:    viper.GetString("IMPORTER_DRIVE_FOLDER_ID"),
				DownloadDir:      viper.GetString("IMPORTER_DOWNLOAD_DIR"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
		}
	})

	return instance
}
