package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	Server struct {
		Port     string `yaml:"port"`
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	JWT struct {
		Secret string `yaml:"secret"`
	} `yaml:"jwt"`
	Redis struct {
		URL     string `yaml:"url"`
		Channel string `yaml:"channel"`
	} `yaml:"redis"`
	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		Insecure *bool  `yaml:"insecure"`
	} `yaml:"smtp"`
}

func loadFile(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// values flattens the file into the environment variable names it stands in for.
func (f *fileConfig) values() map[string]string {
	values := map[string]string{
		"PORT":               f.Server.Port,
		"APP_ENV":            f.Server.Env,
		"LOG_LEVEL":          f.Server.LogLevel,
		"DB_URL":             f.Database.URL,
		"JWT_SECRET":         f.JWT.Secret,
		"REDIS_URL":          f.Redis.URL,
		"REDIS_CHAT_CHANNEL": f.Redis.Channel,
		"SMTP_HOST":          f.SMTP.Host,
		"SMTP_USER":          f.SMTP.User,
		"SMTP_PASS":          f.SMTP.Password,
		"SMTP_FROM":          f.SMTP.From,
	}
	if f.SMTP.Port > 0 {
		values["SMTP_PORT"] = strconv.Itoa(f.SMTP.Port)
	}
	if f.SMTP.Insecure != nil {
		values["SMTP_INSECURE"] = strconv.FormatBool(*f.SMTP.Insecure)
	}
	return values
}
