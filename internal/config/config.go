// internal/config/config.go
package config

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	App           AppConfig
	Cache         CacheConfig
	Replenishment ReplenishmentConfig
	Scheduler     SchedulerConfig
	Notify        NotifyConfig
	Export        ExportConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
}

// AppConfig selects the catalog store. The memory driver is filled from
// SeedDir at startup when it is set.
type AppConfig struct {
	DataDir     string
	StoreDriver string
	SeedDir     string
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	AnalyticsTTLSeconds int
}

// ReplenishmentConfig carries the defaults applied to catalog rows with
// missing planning parameters and the z-score policy for safety stock.
type ReplenishmentConfig struct {
	OrderingCost          float64
	HoldingCostRate       float64
	LeadTimeDays          float64
	DemandVariability     float64
	ServiceLevel          float64
	ServiceLevelThreshold float64
	ZScoreMode            string
	ForecastDays          int
}

type SchedulerConfig struct {
	ReorderCheckEnabled  bool
	ReorderCheckInterval time.Duration
}

type NotifyConfig struct {
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	RedisPubSubEnabled bool
	RedisPubSubChannel string
}

type ExportConfig struct {
	Enabled   bool
	Dir       string
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

// Load reads the process configuration once and returns the shared instance.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.GetViper()
		SetDefaults(v)

		// Read from environment variables
		v.AutomaticEnv()

		instance = FromViper(v)

		// Ensure export directory exists
		if instance.Export.Enabled && instance.Export.Endpoint == "" {
			ensureDir(instance.Export.Dir)
		}
	})

	return instance
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "supplyflow")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("APP_DATA_DIR", "./data/output")
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("APP_SEED_DIR", "")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_ANALYTICS_TTL_SECONDS", 60)

	v.SetDefault("REPLENISH_ORDERING_COST", 50.0)
	v.SetDefault("REPLENISH_HOLDING_COST_RATE", 0.2)
	v.SetDefault("REPLENISH_LEAD_TIME_DAYS", 7.0)
	v.SetDefault("REPLENISH_DEMAND_VARIABILITY", 0.1)
	v.SetDefault("REPLENISH_SERVICE_LEVEL", 0.95)
	v.SetDefault("REPLENISH_SERVICE_LEVEL_THRESHOLD", 0.95)
	v.SetDefault("REPLENISH_ZSCORE_MODE", "two_tier")
	v.SetDefault("REPLENISH_FORECAST_DAYS", 30)

	v.SetDefault("REORDER_CHECK_ENABLED", true)
	v.SetDefault("REORDER_CHECK_INTERVAL", "1h")

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
	v.SetDefault("KAFKA_TOPIC_PREFIX", "supplyflow")
	v.SetDefault("REDIS_PUBSUB_ENABLED", false)
	v.SetDefault("REDIS_PUBSUB_CHANNEL", "supplyflow:events")

	v.SetDefault("EXPORT_ENABLED", false)
	v.SetDefault("EXPORT_DIR", "./data/output/plans")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "supplyflow")
	v.SetDefault("S3_USE_SSL", true)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			DBName:      v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		App: AppConfig{
			DataDir:     v.GetString("APP_DATA_DIR"),
			StoreDriver: strings.ToLower(v.GetString("STORE_DRIVER")),
			SeedDir:     v.GetString("APP_SEED_DIR"),
		},
		Cache: CacheConfig{
			Enabled:             v.GetBool("CACHE_ENABLED"),
			RedisURL:            v.GetString("REDIS_URL"),
			RedisHost:           v.GetString("REDIS_HOST"),
			RedisPort:           v.GetString("REDIS_PORT"),
			RedisPassword:       v.GetString("REDIS_PASSWORD"),
			RedisDB:             v.GetInt("REDIS_DB"),
			AnalyticsTTLSeconds: v.GetInt("CACHE_ANALYTICS_TTL_SECONDS"),
		},
		Replenishment: ReplenishmentConfig{
			OrderingCost:          v.GetFloat64("REPLENISH_ORDERING_COST"),
			HoldingCostRate:       v.GetFloat64("REPLENISH_HOLDING_COST_RATE"),
			LeadTimeDays:          v.GetFloat64("REPLENISH_LEAD_TIME_DAYS"),
			DemandVariability:     v.GetFloat64("REPLENISH_DEMAND_VARIABILITY"),
			ServiceLevel:          v.GetFloat64("REPLENISH_SERVICE_LEVEL"),
			ServiceLevelThreshold: v.GetFloat64("REPLENISH_SERVICE_LEVEL_THRESHOLD"),
			ZScoreMode:            strings.ToLower(v.GetString("REPLENISH_ZSCORE_MODE")),
			ForecastDays:          v.GetInt("REPLENISH_FORECAST_DAYS"),
		},
		Scheduler: SchedulerConfig{
			ReorderCheckEnabled:  v.GetBool("REORDER_CHECK_ENABLED"),
			ReorderCheckInterval: v.GetDuration("REORDER_CHECK_INTERVAL"),
		},
		Notify: NotifyConfig{
			KafkaEnabled:       v.GetBool("KAFKA_ENABLED"),
			KafkaBrokers:       splitList(v.GetStringSlice("KAFKA_BROKERS")),
			KafkaTopicPrefix:   v.GetString("KAFKA_TOPIC_PREFIX"),
			RedisPubSubEnabled: v.GetBool("REDIS_PUBSUB_ENABLED"),
			RedisPubSubChannel: v.GetString("REDIS_PUBSUB_CHANNEL"),
		},
		Export: ExportConfig{
			Enabled:   v.GetBool("EXPORT_ENABLED"),
			Dir:       v.GetString("EXPORT_DIR"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Bucket:    v.GetString("S3_BUCKET"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
		},
	}
}

// splitList flattens comma separated env values ("a:1,b:2") into a slice.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
