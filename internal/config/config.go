package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port         string
	DBUrl        string
	JWTSecret    string
	AppEnv       string
	LogLevel     string
	RedisURL     string
	RedisChannel string
	SMTP         SMTPConfig
	DefaultUsers []DefaultUser
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Insecure bool
}

// DefaultUser is created or refreshed at startup when both email and password are set.
type DefaultUser struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// LoadConfig reads .env, then the optional YAML file named by CONFIG_FILE. Environment
// variables win over file values.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found")
	}

	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	src := source{file: file.values()}

	jwtSecret := src.get("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	smtpPort, err := strconv.Atoi(src.get("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("SMTP_PORT must be a number: %w", err)
	}

	cfg := &Config{
		Port:         src.get("PORT", "8080"),
		DBUrl:        src.get("DB_URL", ""),
		JWTSecret:    jwtSecret,
		AppEnv:       normalizeEnv(src.get("APP_ENV", "production")),
		LogLevel:     strings.ToLower(src.get("LOG_LEVEL", "info")),
		RedisURL:     src.get("REDIS_URL", ""),
		RedisChannel: src.get("REDIS_CHAT_CHANNEL", ""),
		SMTP: SMTPConfig{
			Host:     src.get("SMTP_HOST", ""),
			Port:     smtpPort,
			Username: src.get("SMTP_USER", ""),
			Password: src.get("SMTP_PASS", ""),
			From:     src.get("SMTP_FROM", ""),
			Insecure: src.getBool("SMTP_INSECURE", false),
		},
	}

	for _, role := range []string{"admin", "manager", "client"} {
		prefix := "DEFAULT_" + strings.ToUpper(role) + "_"
		user := DefaultUser{
			Email:    strings.ToLower(strings.TrimSpace(src.get(prefix+"EMAIL", ""))),
			Password: src.get(prefix+"PASSWORD", ""),
			Name:     src.get(prefix+"NAME", defaultUserName(role)),
			Role:     role,
		}
		if user.Email != "" && user.Password != "" {
			cfg.DefaultUsers = append(cfg.DefaultUsers, user)
		}
	}

	return cfg, nil
}

func (c *Config) MailEnabled() bool {
	return c != nil && c.SMTP.Host != "" && c.SMTP.From != ""
}

func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}

type source struct {
	file map[string]string
}

func (s source) get(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if value, exists := s.file[key]; exists && value != "" {
		return value
	}
	return fallback
}

func (s source) getBool(key string, fallback bool) bool {
	return parseBool(s.get(key, ""), fallback)
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func defaultUserName(role string) string {
	switch role {
	case "admin":
		return "Administrator"
	case "manager":
		return "Manager"
	default:
		return "Client"
	}
}
