package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string

	PresetBackend string // "mongo", "redis" or "memory"
	RedisAddr     string

	DataStore DataStoreConfig
	SMTP      SMTPConfig

	ExportDir    string // Directory where scheduled and CLI exports are written
	ScheduleFile string // YAML file with scheduled export jobs
}

// DataStoreConfig points at the league database the reports read from.
type DataStoreConfig struct {
	Type     string // "postgresql", "mysql" or "sqlite"
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	DSN      string // Overrides the individual parts when set
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:        getEnv("DB_NAME", "go-league"),
		SkipAuth:      getEnv("SKIP_AUTH", "false") == "true",
		Environment:   getEnv("ENVIRONMENT", "development"),
		AppId:         getEnv("APP_ID", "go-league"),
		PresetBackend: getEnv("PRESET_BACKEND", "mongo"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		DataStore: DataStoreConfig{
			Type:     getEnv("DATASTORE_TYPE", "postgresql"),
			Host:     getEnv("DATASTORE_HOST", "localhost"),
			Port:     getEnvInt("DATASTORE_PORT", 0),
			Name:     getEnv("DATASTORE_NAME", "league"),
			User:     getEnv("DATASTORE_USER", "league"),
			Password: getEnv("DATASTORE_PASSWORD", ""),
			DSN:      getEnv("DATASTORE_DSN", ""),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		ExportDir:    getEnv("EXPORT_DIR", "./exports"),
		ScheduleFile: getEnv("SCHEDULE_FILE", ""),
	}, nil
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}
