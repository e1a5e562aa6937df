// Package config loads the full application configuration from the
// environment. Every section has working development defaults; production
// deployments are expected to override them (see the checkup command).
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the root configuration shared through the container.
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Email    EmailConfig
	Jobs     JobsConfig
}

type AppConfig struct {
	Name    string
	Env     string // development | staging | production
	Version string
	Debug   bool
}

type ServerConfig struct {
	Port         string
	CORSOrigins  string
	BodyLimit    int // bytes
	IdleTimeout  time.Duration
	ShutdownWait time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the keyword/value connection string for sqlx.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// URL returns the postgres:// connection URL used by golang-migrate and
// pg_dump.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User), url.QueryEscape(d.Password), d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Address returns host:port for the Redis client.
func (r RedisConfig) Address() string {
	return addr(r.Host, r.Port)
}

type AuthConfig struct {
	JWTSecret       string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int
}

type StorageConfig struct {
	Mode          string // local | s3
	LocalDir      string
	S3Bucket      string
	S3Region      string
	MaxResumeSize int64 // bytes
}

type EmailConfig struct {
	Provider    string // console | ses
	FromAddress string
	FromName    string
	AWSRegion   string
}

type JobsConfig struct {
	Concurrency     int
	Queues          []string
	PollInterval    time.Duration
	DequeueTimeout  time.Duration
	RetryDelay      time.Duration
	ShutdownTimeout time.Duration
}

// Load reads every section from the environment.
func Load() *Config {
	return &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "openhire-api"),
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "1.0.0"),
			Debug:   getEnvBool("DEBUG", false),
		},
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			CORSOrigins:  getEnv("CORS_ORIGINS", "*"),
			BodyLimit:    getEnvInt("BODY_LIMIT", 10*1024*1024),
			IdleTimeout:  getEnvDuration("IDLE_TIMEOUT", 120*time.Second),
			ShutdownWait: getEnvDuration("SHUTDOWN_WAIT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "openhire"),
			Password:        getEnv("DB_PASSWORD", "openhire"),
			Name:            getEnv("DB_NAME", "openhire"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),
			Issuer:          getEnv("JWT_ISSUER", "openhire"),
			AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
			BcryptCost:      getEnvInt("BCRYPT_COST", 12),
		},
		Storage: StorageConfig{
			Mode:          getEnv("STORAGE_MODE", "local"),
			LocalDir:      getEnv("UPLOAD_DIR", "./uploads"),
			S3Bucket:      getEnv("AWS_BUCKET", "openhire-resumes"),
			S3Region:      getEnv("AWS_REGION", "us-east-1"),
			MaxResumeSize: getEnvInt64("MAX_RESUME_SIZE", 5*1024*1024),
		},
		Email: EmailConfig{
			Provider:    getEnv("EMAIL_PROVIDER", "console"),
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@openhire.dev"),
			FromName:    getEnv("EMAIL_FROM_NAME", "OpenHire"),
			AWSRegion:   getEnv("EMAIL_AWS_REGION", getEnv("AWS_REGION", "us-east-1")),
		},
		Jobs: JobsConfig{
			Concurrency:     getEnvInt("JOBS_CONCURRENCY", 4),
			Queues:          getEnvStringSlice("JOBS_QUEUES", []string{"notifications", "default"}),
			PollInterval:    getEnvDuration("JOBS_POLL_INTERVAL", time.Second),
			DequeueTimeout:  getEnvDuration("JOBS_DEQUEUE_TIMEOUT", 5*time.Second),
			RetryDelay:      getEnvDuration("JOBS_RETRY_DELAY", 30*time.Second),
			ShutdownTimeout: getEnvDuration("JOBS_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
	}
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool { return c.App.Env == "production" }
