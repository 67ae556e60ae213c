package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port           string
	DBHost         string
	DBUser         string
	DBPass         string
	DBName         string
	JWTSecret      string
	RedisAddr      string
	RedisPassword  string
	SMTPHost       string
	SMTPPort       int
	SMTPSSL        bool
	EmailAddr      string
	EmailPass      string
	AlertRecipient string
}

func Load() *Config {
	return &Config{
		Port:           getenv("PORT", "3001"),
		DBHost:         getenv("DB_HOST", "localhost"),
		DBUser:         getenv("DB_USER", ""),
		DBPass:         getenv("DB_PASS", ""),
		DBName:         getenv("DB_NAME", "library"),
		JWTSecret:      getenv("JWT_SECRET", ""),
		RedisAddr:      getenv("REDIS_ADDR", ""),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		SMTPHost:       getenv("SMTP_HOST", "smtp.163.com"),
		SMTPPort:       getenvInt("SMTP_PORT", 465),
		SMTPSSL:        getenv("SMTP_SSL", "true") == "true",
		EmailAddr:      getenv("EMAIL_ADDR", ""),
		EmailPass:      getenv("EMAIL_PASS", ""),
		AlertRecipient: getenv("ALERT_RECIPIENT", ""),
	}
}

// PostgresDSN composes a pgx connection string from the individual DB_* parts.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s", c.DBUser, c.DBPass, c.DBHost, c.DBName)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
