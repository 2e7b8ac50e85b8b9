package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envAWSRegion             = "AWS_REGION"
	envAWSAccessKeyID        = "AWS_ACCESS_KEY_ID"
	envAWSSecretAccessKey    = "AWS_SECRET_ACCESS_KEY"
	envAWSBucket             = "AWS_BUCKET"
	envJWTSecret             = "TOKEN_SECRET"
	envJWTExpiry             = "TOKEN_EXPIRY"
	envMaxUploadSize         = "MAX_UPLOAD_SIZE"
	envMaxAttachments        = "MAX_ATTACHMENTS"
)

const (
	defaultServerPort         = "8080"
	defaultServerReadTimeout  = 30 * time.Second
	defaultServerWriteTimeout = 30 * time.Second
	defaultServerShutdown     = 10 * time.Second
	defaultDBHost             = "localhost"
	defaultDBPort             = 5432
	defaultDBName             = "patientservice"
	defaultDBUser             = "patientservice_app"
	defaultDBSSLMode          = "disable"
	defaultDBMaxConns         = 25
	defaultDBMinConns         = 5
	defaultJWTExpiry          = 1 * time.Hour
	defaultMaxUploadSize      = int64(50 * 1024 * 1024)
	defaultMaxAttachments     = 10
	minJWTSecretLength        = 32

	errPortRequiredFmt         = "PORT must be set"
	errDBPasswordRequiredFmt   = "DB_PASSWORD must be set"
	errRegionRequiredFmt       = "AWS_REGION must be set"
	errBucketRequiredFmt       = "AWS_BUCKET must be set"
	errJWTSecretRequiredFmt    = "TOKEN_SECRET must be set"
	errJWTSecretMinLengthFmt   = "TOKEN_SECRET must be at least %d characters"
	errInvalidConfigurationFmt = "invalid configuration: %w"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	AWS      AWSConfig
	JWT      JWTConfig
	App      AppConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

type JWTConfig struct {
	Secret         string
	ExpiryDuration time.Duration
}

type AppConfig struct {
	MaxUploadSize  int64
	MaxAttachments int
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv(envPort, defaultServerPort),
			ReadTimeout:     getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:    getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout: getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),
		},
		Database: DatabaseConfig{
			Host:     getEnv(envDBHost, defaultDBHost),
			Port:     getIntEnv(envDBPort, defaultDBPort),
			Database: getEnv(envDBName, defaultDBName),
			User:     getEnv(envDBUser, defaultDBUser),
			Password: os.Getenv(envDBPassword),
			SSLMode:  getEnv(envDBSSLMode, defaultDBSSLMode),
			MaxConns: getIntEnv(envDBMaxConns, defaultDBMaxConns),
			MinConns: getIntEnv(envDBMinConns, defaultDBMinConns),
		},
		AWS: AWSConfig{
			Region:          os.Getenv(envAWSRegion),
			AccessKeyID:     os.Getenv(envAWSAccessKeyID),
			SecretAccessKey: os.Getenv(envAWSSecretAccessKey),
			Bucket:          os.Getenv(envAWSBucket),
		},
		JWT: JWTConfig{
			Secret:         os.Getenv(envJWTSecret),
			ExpiryDuration: getDurationEnv(envJWTExpiry, defaultJWTExpiry),
		},
		App: AppConfig{
			MaxUploadSize:  getInt64Env(envMaxUploadSize, defaultMaxUploadSize),
			MaxAttachments: getIntEnv(envMaxAttachments, defaultMaxAttachments),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf(errPortRequiredFmt)
	}

	if c.Database.Password == "" {
		return fmt.Errorf(errDBPasswordRequiredFmt)
	}

	if c.AWS.Region == "" {
		return fmt.Errorf(errRegionRequiredFmt)
	}

	if c.AWS.Bucket == "" {
		return fmt.Errorf(errBucketRequiredFmt)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf(errJWTSecretRequiredFmt)
	}

	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf(errJWTSecretMinLengthFmt, minJWTSecretLength)
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// URL returns the connection string in URL form, as expected by the
// migration tooling.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password),
		c.Host, c.Port, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
