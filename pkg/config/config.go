package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Encryption EncryptionConfig
	RateLimit  RateLimitConfig
	Sheets     SheetsConfig
	Google     GoogleConfig
	Sync       SyncConfig
	CORS       CORSConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type EncryptionConfig struct {
	Key string
}

type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

// Read strategies
const (
	ReadPublic = "public"
	ReadAPI    = "api"
)

// Write strategies
const (
	WriteAutomation = "automation"
	WriteCells      = "cells"
	WriteNone       = "none"
)

type SheetsConfig struct {
	SpreadsheetID string
	SheetName     string
	ExportURL     string
	APIEndpoint   string
	ReadStrategy  string
	WriteStrategy string
	BatchWrites   bool
	WebhookURL    string
}

// GoogleConfig carries the service-identity bundle. ServiceAccountJSON takes
// precedence, then the age-encrypted bundle, then the discrete fields.
type GoogleConfig struct {
	ServiceAccountJSON string
	ServiceAccountAge  string
	ClientEmail        string
	PrivateKey         string
	PrivateKeyID       string
	TokenURI           string
	AuthURI            string
	CacheTokens        bool
}

type SyncConfig struct {
	RepairEnabled bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (j *JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

// CSVExportURL returns the public export URL for the configured spreadsheet.
func (s *SheetsConfig) CSVExportURL() string {
	if s.ExportURL != "" {
		return s.ExportURL
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv", s.SpreadsheetID)
}

// NeedsServiceAccount reports whether either strategy talks to the authenticated API.
func (s *SheetsConfig) NeedsServiceAccount() bool {
	return s.ReadStrategy == ReadAPI || s.WriteStrategy == WriteCells
}

// HasServiceAccount reports whether any form of the credential bundle is set.
func (g *GoogleConfig) HasServiceAccount() bool {
	return g.ServiceAccountJSON != "" || g.ServiceAccountAge != "" ||
		(g.ClientEmail != "" && g.PrivateKey != "")
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "members")
	v.SetDefault("DATABASE_PASSWORD", "members_secret")
	v.SetDefault("DATABASE_NAME", "members")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("SHEET_NAME", "Sheet1")
	v.SetDefault("SHEETS_READ_STRATEGY", ReadPublic)
	v.SetDefault("SHEETS_WRITE_STRATEGY", WriteAutomation)
	v.SetDefault("SHEETS_BATCH_WRITES", false)
	v.SetDefault("GOOGLE_TOKEN_URI", "https://oauth2.googleapis.com/token")
	v.SetDefault("GOOGLE_AUTH_URI", "https://accounts.google.com/o/oauth2/auth")
	v.SetDefault("GOOGLE_TOKEN_CACHE", false)
	v.SetDefault("SYNC_REPAIR_ENABLED", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	// Load from .env file if present
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
			Env:  v.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DATABASE_HOST"),
			Port:     v.GetInt("DATABASE_PORT"),
			User:     v.GetString("DATABASE_USER"),
			Password: v.GetString("DATABASE_PASSWORD"),
			Name:     v.GetString("DATABASE_NAME"),
			SSLMode:  v.GetString("DATABASE_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Encryption: EncryptionConfig{
			Key: v.GetString("ENCRYPTION_KEY"),
		},
		RateLimit: RateLimitConfig{
			Requests:      v.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Sheets: SheetsConfig{
			SpreadsheetID: v.GetString("SPREADSHEET_ID"),
			SheetName:     v.GetString("SHEET_NAME"),
			ExportURL:     v.GetString("SHEETS_EXPORT_URL"),
			APIEndpoint:   v.GetString("SHEETS_API_ENDPOINT"),
			ReadStrategy:  strings.ToLower(v.GetString("SHEETS_READ_STRATEGY")),
			WriteStrategy: strings.ToLower(v.GetString("SHEETS_WRITE_STRATEGY")),
			BatchWrites:   v.GetBool("SHEETS_BATCH_WRITES"),
			WebhookURL:    v.GetString("AUTOMATION_WEBHOOK_URL"),
		},
		Google: GoogleConfig{
			ServiceAccountJSON: v.GetString("GOOGLE_SERVICE_ACCOUNT_JSON"),
			ServiceAccountAge:  v.GetString("GOOGLE_SERVICE_ACCOUNT_AGE"),
			ClientEmail:        v.GetString("GOOGLE_CLIENT_EMAIL"),
			PrivateKey:         v.GetString("GOOGLE_PRIVATE_KEY"),
			PrivateKeyID:       v.GetString("GOOGLE_PRIVATE_KEY_ID"),
			TokenURI:           v.GetString("GOOGLE_TOKEN_URI"),
			AuthURI:            v.GetString("GOOGLE_AUTH_URI"),
			CacheTokens:        v.GetBool("GOOGLE_TOKEN_CACHE"),
		},
		Sync: SyncConfig{
			RepairEnabled: v.GetBool("SYNC_REPAIR_ENABLED"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}

	if err := cfg.Sheets.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (s *SheetsConfig) validate() error {
	switch s.ReadStrategy {
	case ReadPublic, ReadAPI:
	default:
		return fmt.Errorf("unknown SHEETS_READ_STRATEGY %q", s.ReadStrategy)
	}
	switch s.WriteStrategy {
	case WriteAutomation, WriteCells, WriteNone:
	default:
		return fmt.Errorf("unknown SHEETS_WRITE_STRATEGY %q", s.WriteStrategy)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
