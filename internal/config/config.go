// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the gateway.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`

	// Browser origins allowed to talk to the gateway, comma-separated.
	CORSAllowedOrigins []string `mapstructure:"-"`

	// Upstream marketplace API. This is the single source of truth for the
	// backend base URL; no component may hardcode its own.
	UpstreamBaseURL        string        `mapstructure:"UPSTREAM_BASE_URL"`
	UpstreamRequestTimeout time.Duration `mapstructure:"UPSTREAM_REQUEST_TIMEOUT_SECONDS"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Firebase Configuration
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseWebAPIKey             string `mapstructure:"FIREBASE_WEB_API_KEY"`
	// Overridable so tests can point the identity clients at a fake.
	IdentityToolkitBaseURL string `mapstructure:"IDENTITY_TOOLKIT_BASE_URL"`
	SecureTokenBaseURL     string `mapstructure:"SECURE_TOKEN_BASE_URL"`

	// Session Configuration
	SessionCookieName    string        `mapstructure:"SESSION_COOKIE_NAME"`
	SessionCookieSecure  bool          `mapstructure:"SESSION_COOKIE_SECURE"`
	SessionTTL           time.Duration `mapstructure:"SESSION_TTL_HOURS"`
	SessionSweepSchedule string        `mapstructure:"SESSION_SWEEP_SCHEDULE"`

	// Google federated sign-in
	GoogleOAuthClientID     string `mapstructure:"GOOGLE_OAUTH_CLIENT_ID"`
	GoogleOAuthClientSecret string `mapstructure:"GOOGLE_OAUTH_CLIENT_SECRET"`
	GoogleOAuthRedirectURL  string `mapstructure:"GOOGLE_OAUTH_REDIRECT_URL"`
	OAuthStateCookieName    string `mapstructure:"OAUTH_STATE_COOKIE_NAME"`
	OAuthCookieMaxAgeMin    int    `mapstructure:"OAUTH_COOKIE_MAX_AGE_MINUTES"`
	// Role granted to first-time federated sign-ins. The product has no role
	// picker on the Google path yet, so this is configuration rather than a
	// constant baked into the flow.
	FederatedDefaultRole string `mapstructure:"FEDERATED_DEFAULT_ROLE"`

	// Image hosting
	ImageHostUploadURL string `mapstructure:"IMAGE_HOST_UPLOAD_URL"`
	ImageHostAPIKey    string `mapstructure:"IMAGE_HOST_API_KEY"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	// Set default values
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:5000")
	v.SetDefault("UPSTREAM_REQUEST_TIMEOUT_SECONDS", 15)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	// Firebase
	v.SetDefault("FIREBASE_PROJECT_ID", "") // Optional
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")
	v.SetDefault("FIREBASE_WEB_API_KEY", "")
	v.SetDefault("IDENTITY_TOOLKIT_BASE_URL", "https://identitytoolkit.googleapis.com")
	v.SetDefault("SECURE_TOKEN_BASE_URL", "https://securetoken.googleapis.com")

	// Sessions
	v.SetDefault("SESSION_COOKIE_NAME", "mtg_session")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("SESSION_TTL_HOURS", 24)
	v.SetDefault("SESSION_SWEEP_SCHEDULE", "@hourly")

	// Google sign-in
	v.SetDefault("GOOGLE_OAUTH_CLIENT_ID", "")
	v.SetDefault("GOOGLE_OAUTH_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_OAUTH_REDIRECT_URL", "")
	v.SetDefault("OAUTH_STATE_COOKIE_NAME", "oauth_state")
	v.SetDefault("OAUTH_COOKIE_MAX_AGE_MINUTES", 10)
	v.SetDefault("FEDERATED_DEFAULT_ROLE", "buyer")

	// Image hosting
	v.SetDefault("IMAGE_HOST_UPLOAD_URL", "https://api.imgbb.com/1/upload")
	v.SetDefault("IMAGE_HOST_API_KEY", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.UpstreamRequestTimeout = time.Duration(v.GetInt("UPSTREAM_REQUEST_TIMEOUT_SECONDS")) * time.Second
	cfg.SessionTTL = time.Duration(v.GetInt("SESSION_TTL_HOURS")) * time.Hour
	cfg.CORSAllowedOrigins = strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",")

	// Basic validation for critical configs
	if strings.TrimSpace(cfg.FirebaseWebAPIKey) == "" {
		return nil, fmt.Errorf("FATAL: FIREBASE_WEB_API_KEY is not set. It is required for identity toolkit sign-in")
	}
	if strings.TrimSpace(cfg.FirebaseServiceAccountKeyPath) == "" {
		return nil, fmt.Errorf("FATAL: FIREBASE_SERVICE_ACCOUNT_KEY_PATH is not set. This is required for Firebase Admin SDK initialization")
	}
	if _, err := os.Stat(cfg.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("FATAL: Firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", cfg.FirebaseServiceAccountKeyPath)
	}
	if strings.TrimSpace(cfg.UpstreamBaseURL) == "" {
		return nil, fmt.Errorf("FATAL: UPSTREAM_BASE_URL is not set")
	}

	return &cfg, nil
}
