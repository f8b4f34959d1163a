package main

import (
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Ten years, well inside the range of time.Duration.
const maxRetentionDays = 3650

type smtpConfig struct {
	Host string
	Port string
	User string
	Pass string
	To   string
}

type config struct {
	Port          string
	DatabasePath  string
	ContentFile   string
	AdminUsername string
	AdminPassword string
	Retention     time.Duration
	SMTP          smtpConfig
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadConfig reads the environment (and .env, through godotenv). Development
// defaults are filled in where the site can still run without them.
func loadConfig() (*config, error) {
	cfg := &config{
		Port:          getenv("PORT", "8080"),
		DatabasePath:  getenv("DATABASE_PATH", "portfolio.db"),
		ContentFile:   os.Getenv("CONTENT_FILE"),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SMTP: smtpConfig{
			Host: getenv("SMTP_HOST", "smtp.gmail.com"),
			Port: getenv("SMTP_PORT", "587"),
			User: os.Getenv("SMTP_USER"),
			Pass: os.Getenv("SMTP_PASS"),
			To:   os.Getenv("TO_EMAIL"),
		},
	}

	days, err := strconv.Atoi(getenv("VISITOR_RETENTION_DAYS", "365"))
	if err != nil || days <= 0 || days > maxRetentionDays {
		return nil, errors.Errorf("VISITOR_RETENTION_DAYS must be an integer between 1 and %d, got %q",
			maxRetentionDays, os.Getenv("VISITOR_RETENTION_DAYS"))
	}
	cfg.Retention = time.Duration(days) * 24 * time.Hour

	if gin.Mode() == gin.ReleaseMode && (cfg.AdminUsername == "" || cfg.AdminPassword == "") {
		return nil, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set in release mode")
	}
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = "admin123"
	}
	return cfg, nil
}
