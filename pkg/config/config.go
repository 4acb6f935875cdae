package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Uploads   UploadsConfig
	Retention RetentionConfig
	Cache     CacheConfig
	Admin     AdminConfig
	SPA       SPAConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// UploadsConfig controls the content store for schedule and activity files.
type UploadsConfig struct {
	Dir          string
	URLPrefix    string
	MaxFileSize  int64
	DeleteRetry  int
	DeleteDelay  time.Duration
	QueueWorkers int
}

// RetentionConfig governs the background sweep jobs.
type RetentionConfig struct {
	AttendanceWindow   time.Duration
	AttendanceInterval time.Duration
	ActivityWindow     time.Duration
	ActivityInterval   time.Duration
}

// CacheConfig toggles the Redis read cache for hot list endpoints.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// AdminConfig describes the seeded administrator account.
type AdminConfig struct {
	Username string
	Password string
}

// SPAConfig points at the built client bundle served on non-API routes.
type SPAConfig struct {
	Dir string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxUpload := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUpload <= 0 {
		maxUpload = 50 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		Dir:          v.GetString("UPLOADS_DIR"),
		URLPrefix:    v.GetString("UPLOADS_URL_PREFIX"),
		MaxFileSize:  maxUpload,
		DeleteRetry:  v.GetInt("UPLOADS_DELETE_RETRIES"),
		DeleteDelay:  parseDuration(v.GetString("UPLOADS_DELETE_RETRY_DELAY"), 5*time.Second),
		QueueWorkers: v.GetInt("UPLOADS_DELETE_WORKERS"),
	}

	cfg.Retention = RetentionConfig{
		AttendanceWindow:   parseDuration(v.GetString("RETENTION_ATTENDANCE_WINDOW"), 30*24*time.Hour),
		AttendanceInterval: parseDuration(v.GetString("RETENTION_ATTENDANCE_INTERVAL"), 24*time.Hour),
		ActivityWindow:     parseDuration(v.GetString("RETENTION_ACTIVITY_WINDOW"), 7*24*time.Hour),
		ActivityInterval:   parseDuration(v.GetString("RETENTION_ACTIVITY_INTERVAL"), 24*time.Hour),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), time.Minute),
	}

	cfg.Admin = AdminConfig{
		Username: v.GetString("ADMIN_USERNAME"),
		Password: v.GetString("ADMIN_PASSWORD"),
	}

	cfg.SPA = SPAConfig{Dir: v.GetString("SPA_DIR")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 3000)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "nido")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "nido-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UPLOADS_DIR", "./uploads")
	v.SetDefault("UPLOADS_URL_PREFIX", "/uploads")
	v.SetDefault("UPLOADS_MAX_FILE_SIZE", 50*1024*1024)
	v.SetDefault("UPLOADS_DELETE_RETRIES", 3)
	v.SetDefault("UPLOADS_DELETE_RETRY_DELAY", "5s")
	v.SetDefault("UPLOADS_DELETE_WORKERS", 1)

	v.SetDefault("RETENTION_ATTENDANCE_WINDOW", "720h")
	v.SetDefault("RETENTION_ATTENDANCE_INTERVAL", "24h")
	v.SetDefault("RETENTION_ACTIVITY_WINDOW", "168h")
	v.SetDefault("RETENTION_ACTIVITY_INTERVAL", "24h")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "1m")

	v.SetDefault("ADMIN_USERNAME", "profe")
	v.SetDefault("ADMIN_PASSWORD", "profe123")

	v.SetDefault("SPA_DIR", "../client/dist")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
