package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Model     ModelConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	RateLimit RateLimitConfig
	JWT       JWTConfig
	Services  ServicesConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	Debug        bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type ModelConfig struct {
	Path         string
	MetadataPath string
}

type MongoDBConfig struct {
	URL                      string
	Database                 string
	PrediagnosticsCollection string
	DiagnosticsCollection    string
	ConnectTimeout           time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	CacheTTL time.Duration
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

type JWTConfig struct {
	Secret string
}

// ServicesConfig holds endpoints of peer services
type ServicesConfig struct {
	BusinessLogicURL string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("API_HOST", "0.0.0.0")
	viper.SetDefault("API_PORT", "8000")
	viper.SetDefault("MODEL_PATH", "models/pneumonia.onnx")
	viper.SetDefault("MODEL_METADATA_PATH", "models/pneumonia_metadata.json")
	viper.SetDefault("MONGODB_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "prediagnostic_db")
	viper.SetDefault("PREDIAGNOSTICOS_COLLECTION", "prediagnosticos")
	viper.SetDefault("DIAGNOSTICOS_COLLECTION", "diagnosticos")
	viper.SetDefault("MONGODB_CONNECTION_TIMEOUT", 10000)
	viper.SetDefault("PREDICTION_CACHE_TTL", 3600)
	viper.SetDefault("RATE_LIMIT_RPS", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	viper.SetDefault("MINIO_BUCKET", "radiographs")
	viper.SetDefault("BUSINESS_LOGIC_SERVICE_URL", "http://localhost:8001")

	cfg := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("API_HOST"),
			Port:         viper.GetString("API_PORT"),
			Debug:        viper.GetBool("DEBUG"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Model: ModelConfig{
			Path:         viper.GetString("MODEL_PATH"),
			MetadataPath: viper.GetString("MODEL_METADATA_PATH"),
		},
		MongoDB: MongoDBConfig{
			URL:                      viper.GetString("MONGODB_URL"),
			Database:                 viper.GetString("DATABASE_NAME"),
			PrediagnosticsCollection: viper.GetString("PREDIAGNOSTICOS_COLLECTION"),
			DiagnosticsCollection:    viper.GetString("DIAGNOSTICOS_COLLECTION"),
			ConnectTimeout:           time.Duration(viper.GetInt("MONGODB_CONNECTION_TIMEOUT")) * time.Millisecond,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			CacheTTL: time.Duration(viper.GetInt("PREDICTION_CACHE_TTL")) * time.Second,
		},
		MinIO: MinIOConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
		Services: ServicesConfig{
			BusinessLogicURL: viper.GetString("BUSINESS_LOGIC_SERVICE_URL"),
		},
	}

	// Basic validation
	if cfg.JWT.Secret == "" {
		log.Println("WARNING: JWT_SECRET is not set; diagnostic endpoints will reject all tokens")
	}

	return cfg, nil
}
