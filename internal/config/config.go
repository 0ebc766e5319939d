// config.go
//
// Content service and admin tooling of a church website
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of chapel-cms.
// chapel-cms is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// chapel-cms is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with chapel-cms.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Auth provider names accepted by AUTH_PROVIDER
const (
	AuthProviderLocal      = "local"
	AuthProviderAuthorizer = "authorizer"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port          string
	PublicBaseURL string
	MaxUploadMB   int

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlite3, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Authentication configuration
	AuthProvider  string
	AuthzURL      string
	AuthzClientID string
	SetupSecret   string
	AdminEmail    string
	AdminPassword string
	SessionTTL    time.Duration

	// Media configuration
	MediaURL               string
	ShortVideoMinSeconds   int
	ShortVideoMaxSeconds   int
	ShortVideoMaxInclusive bool

	// Public site configuration
	SlideInterval time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                   getEnv("PORT", "3000"),
		PublicBaseURL:          strings.TrimSuffix(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		MaxUploadMB:            getEnvAsInt("MAX_UPLOAD_MB", 100),
		DBType:                 getEnv("DB_TYPE", "sqlite"),
		DBHost:                 getEnv("DB_HOST", "localhost"),
		DBPort:                 getEnv("DB_PORT", "5432"),
		DBDatabase:             getEnv("DB_DATABASE", "chapel.db"),
		DBUser:                 getEnv("DB_USER", ""),
		DBPassword:             getEnv("DB_PASSWORD", ""),
		DBConnectionLimit:      getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		AuthProvider:           strings.ToLower(getEnv("AUTH_PROVIDER", AuthProviderLocal)),
		AuthzURL:               getEnv("AUTHZ_URL", ""),
		AuthzClientID:          getEnv("AUTHZ_CLIENT_ID", ""),
		SetupSecret:            getEnv("SETUP_SECRET", ""),
		AdminEmail:             getEnv("ADMIN_EMAIL", ""),
		AdminPassword:          getEnv("ADMIN_PASSWORD", ""),
		SessionTTL:             getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		MediaURL:               getEnv("MEDIA_URL", "file:///var/lib/chapel-cms/media?create_dir=true"),
		ShortVideoMinSeconds:   getEnvAsInt("SHORT_VIDEO_MIN_SECONDS", 30),
		ShortVideoMaxSeconds:   getEnvAsInt("SHORT_VIDEO_MAX_SECONDS", 40),
		ShortVideoMaxInclusive: getEnvAsBool("SHORT_VIDEO_MAX_INCLUSIVE", false),
		SlideInterval:          getEnvAsDuration("SLIDE_INTERVAL", 5*time.Second),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required and mutually dependent settings
func (cfg *Config) Validate() error {
	if cfg.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	switch cfg.DBType {
	case "sqlite", "sqlite3":
	default:
		if cfg.DBUser == "" {
			return fmt.Errorf("DB_USER is required for DB_TYPE %s", cfg.DBType)
		}
	}

	switch cfg.AuthProvider {
	case AuthProviderLocal:
	case AuthProviderAuthorizer:
		if cfg.AuthzURL == "" {
			return fmt.Errorf("AUTHZ_URL is required")
		}
		if cfg.AuthzClientID == "" {
			return fmt.Errorf("AUTHZ_CLIENT_ID is required")
		}
	default:
		return fmt.Errorf("unsupported AUTH_PROVIDER: %s", cfg.AuthProvider)
	}

	if cfg.MediaURL == "" {
		return fmt.Errorf("MEDIA_URL is required")
	}
	// an exclusive upper bound needs max above min or no clip fits
	emptyWindow := cfg.ShortVideoMaxSeconds < cfg.ShortVideoMinSeconds ||
		(cfg.ShortVideoMaxSeconds == cfg.ShortVideoMinSeconds && !cfg.ShortVideoMaxInclusive)
	if cfg.ShortVideoMinSeconds <= 0 || emptyWindow {
		return fmt.Errorf("invalid short video window %d-%d", cfg.ShortVideoMinSeconds, cfg.ShortVideoMaxSeconds)
	}
	if cfg.SlideInterval <= 0 {
		return fmt.Errorf("SLIDE_INTERVAL must be positive")
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings ("5s") or a bare number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
