package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Chrome    ChromeConfig
	Recorder  RecorderConfig
	Retention RetentionConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Charset  string
}

type JWTConfig struct {
	Secret     string
	ExpireTime int
}

type ChromeConfig struct {
	Path         string
	HeadlessMode bool
}

type RecorderConfig struct {
	Language     string
	Debounce     time.Duration
	FlushOnStop  bool
	PollInterval time.Duration
}

type RetentionConfig struct {
	Days      int
	Schedule  string
	SweepSpec string
}

type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig reads the configuration from the environment. Variables found
// in the given .env files (default ".env") are applied first without
// overriding ones already set. Missing files are ignored.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Mode:         getEnv("SERVER_MODE", "debug"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 30),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 30),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "127.0.0.1"),
			Port:     getEnv("DB_PORT", "3306"),
			Username: getEnv("DB_USERNAME", "root"),
			Password: getEnv("DB_PASSWORD", "root"),
			Database: getEnv("DB_NAME", "uirecorder"),
			Charset:  getEnv("DB_CHARSET", "utf8mb4"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "uirecorder-secret-key"),
			ExpireTime: getEnvAsInt("JWT_EXPIRE_TIME", 24*3600),
		},
		Chrome: ChromeConfig{
			Path:         getEnv("CHROME_PATH", ""),
			HeadlessMode: getEnvAsBool("CHROME_HEADLESS", false),
		},
		Recorder: RecorderConfig{
			Language:     getEnv("RECORDER_LANGUAGE", "tr"),
			Debounce:     getEnvAsDuration("RECORDER_DEBOUNCE", 500*time.Millisecond),
			FlushOnStop:  getEnvAsBool("RECORDER_FLUSH_ON_STOP", true),
			PollInterval: getEnvAsDuration("RECORDER_POLL_INTERVAL", 100*time.Millisecond),
		},
		Retention: RetentionConfig{
			Days:      getEnvAsInt("RETENTION_DAYS", 30),
			Schedule:  getEnv("RETENTION_SCHEDULE", "0 0 3 * * *"),
			SweepSpec: getEnv("SWEEP_SCHEDULE", "0 * * * * *"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if config.Recorder.Debounce <= 0 {
		return nil, fmt.Errorf("RECORDER_DEBOUNCE must be positive, got %s", config.Recorder.Debounce)
	}
	if config.Recorder.PollInterval <= 0 {
		return nil, fmt.Errorf("RECORDER_POLL_INTERVAL must be positive, got %s", config.Recorder.PollInterval)
	}

	return config, nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		c.Database.Username,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.Charset,
	)
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("750ms") or plain milliseconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
