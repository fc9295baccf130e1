package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	RedisAddr     string
	RedisPort     string
	RedisPassword string
	JWTSecret     string
	LedgerSecret  string

	// Referral engine tuning
	ActivationThreshold float64
	BonusSchedule       []float64
	ReferralMaxDepth    int
	ReferralCodePrefix  string
	ReferralCodeLength  int
	ReferralCodeRetries int

	// Log configuration
	LogLevel      string
	LogFilename   string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool
}

// DefaultBonusSchedule is the per-level payout table. Level 1 pays 100,
// levels 2-3 pay 10, levels 4-10 pay 100 again. The asymmetry is the
// documented incentive design, not a typo.
var DefaultBonusSchedule = []float64{100, 10, 10, 100, 100, 100, 100, 100, 100, 100}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func (c *Config) RedisFullAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisAddr, c.RedisPort)
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		// Ignore error if .env file is not found
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	schedule, err := parseBonusSchedule(os.Getenv("BONUS_SCHEDULE"))
	if err != nil {
		return nil, err
	}

	return &Config{
		DBHost:        os.Getenv("DB_HOST"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBPort:        os.Getenv("DB_PORT"),
		RedisAddr:     os.Getenv("REDIS_HOST"),
		RedisPort:     os.Getenv("REDIS_PORT"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		LedgerSecret:  getEnv("LEDGER_SECRET", os.Getenv("JWT_SECRET")),

		ActivationThreshold: getEnvAsFloat("ACTIVATION_THRESHOLD", 1000),
		BonusSchedule:       schedule,
		ReferralMaxDepth:    getEnvAsInt("REFERRAL_MAX_DEPTH", 10),
		ReferralCodePrefix:  getEnv("REFERRAL_CODE_PREFIX", "CT"),
		ReferralCodeLength:  getEnvAsInt("REFERRAL_CODE_LENGTH", 6),
		ReferralCodeRetries: getEnvAsInt("REFERRAL_CODE_ATTEMPTS", 10),

		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		LogFilename:   getEnv("LOG_FILENAME", "logs/app.log"),
		LogMaxSize:    getEnvAsInt("LOG_MAX_SIZE", 100),
		LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvAsInt("LOG_MAX_AGE", 28),
		LogCompress:   getEnvAsBool("LOG_COMPRESS", true),
	}, nil
}

// parseBonusSchedule reads a comma-separated payout table, one amount per
// referral level. An empty value falls back to DefaultBonusSchedule.
func parseBonusSchedule(raw string) ([]float64, error) {
	if strings.TrimSpace(raw) == "" {
		schedule := make([]float64, len(DefaultBonusSchedule))
		copy(schedule, DefaultBonusSchedule)
		return schedule, nil
	}

	parts := strings.Split(raw, ",")
	schedule := make([]float64, 0, len(parts))
	for i, p := range parts {
		amount, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid BONUS_SCHEDULE entry %d: %q", i+1, p)
		}
		if amount < 0 {
			return nil, fmt.Errorf("BONUS_SCHEDULE entry %d is negative: %q", i+1, p)
		}
		schedule = append(schedule, amount)
	}
	return schedule, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
