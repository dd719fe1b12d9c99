package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Bot      BotConfig
	App      AppConfig
	Game     GameConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver   string // "sqlite" or "postgres"
	Path     string // sqlite file path
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds admin HTTP server settings
type ServerConfig struct {
	Port string
}

// BotConfig holds chat transport settings
type BotConfig struct {
	WSURL       string
	AccessToken string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret  string
	AdminToken string
}

// GameConfig holds gameplay tuning knobs
type GameConfig struct {
	ProposalTTLSeconds  int
	BabyMinDurationSecs int
	BabyMaxDurationSecs int
	NightStartHour      int
	NightEndHour        int
	NightBypassChance   float64
	BabiesPageSize      int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Path:     getEnv("DB_PATH", "marriage.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "marriage_bot"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Bot: BotConfig{
			WSURL:       getEnv("BOT_WS_URL", "ws://localhost:6700"),
			AccessToken: getEnv("BOT_ACCESS_TOKEN", ""),
		},
		App: AppConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			AdminToken: getEnv("ADMIN_TOKEN", ""),
		},
		Game: GameConfig{
			ProposalTTLSeconds:  getEnvInt("PROPOSAL_TTL_SECONDS", 120),
			BabyMinDurationSecs: getEnvInt("BABY_MIN_DURATION_SECONDS", 900),
			BabyMaxDurationSecs: getEnvInt("BABY_MAX_DURATION_SECONDS", 3600),
			NightStartHour:      getEnvInt("NIGHT_START_HOUR", 21),
			NightEndHour:        getEnvInt("NIGHT_END_HOUR", 5),
			NightBypassChance:   getEnvFloat("NIGHT_BYPASS_CHANCE", 0.1),
			BabiesPageSize:      getEnvInt("BABIES_PAGE_SIZE", 5),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if config.App.AdminToken == "" {
		return nil, fmt.Errorf("ADMIN_TOKEN is required")
	}

	if config.Game.BabyMinDurationSecs > config.Game.BabyMaxDurationSecs {
		return nil, fmt.Errorf("BABY_MIN_DURATION_SECONDS must not exceed BABY_MAX_DURATION_SECONDS")
	}

	return config, nil
}

// GetDSN returns the connection string for the configured driver
func (c *Config) GetDSN() string {
	if c.Database.Driver == "postgres" {
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			c.Database.Host,
			c.Database.Port,
			c.Database.User,
			c.Database.Password,
			c.Database.DBName,
		)
	}
	return c.Database.Path
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}
