// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Firebase holds the platform's web app settings. They are passed through
// untouched; nothing here validates them.
type Firebase struct {
	APIKey            string `env:"API_KEY" json:"apiKey"`
	AuthDomain        string `env:"AUTH_DOMAIN" json:"authDomain"`
	ProjectID         string `env:"PROJECT_ID" json:"projectId"`
	StorageBucket     string `env:"STORAGE_BUCKET" json:"storageBucket"`
	MessagingSenderID string `env:"MESSAGING_SENDER_ID" json:"messagingSenderId"`
	AppID             string `env:"APP_ID" json:"appId"`
	MeasurementID     string `env:"MEASUREMENT_ID" json:"measurementId"`
}

type OAuthClient struct {
	ClientID     string   `env:"CLIENT_ID"`
	ClientSecret string   `env:"CLIENT_SECRET"`
	Scopes       []string `env:"SCOPES" envSeparator:","`
}

type Providers struct {
	Google          OAuthClient `envPrefix:"GOOGLE_"`
	GitHub          OAuthClient `envPrefix:"GITHUB_"`
	Facebook        OAuthClient `envPrefix:"FACEBOOK_"`
	Twitter         OAuthClient `envPrefix:"TWITTER_"`
	Microsoft       OAuthClient `envPrefix:"MICROSOFT_"`
	Apple           OAuthClient `envPrefix:"APPLE_"`
	MicrosoftTenant string      `env:"MICROSOFT_TENANT" envDefault:"common"`

	// When set, Apple gets a minted client secret instead of OAUTH_APPLE_CLIENT_SECRET.
	AppleTeamID     string `env:"APPLE_TEAM_ID"`
	AppleKeyID      string `env:"APPLE_KEY_ID"`
	ApplePrivateKey string `env:"APPLE_PRIVATE_KEY_FILE,file"`
}

type Config struct {
	ServerPort         string        `env:"SERVER_PORT" envDefault:":8080"`
	PublicURL          string        `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
	DBUrl              string        `env:"DATABASE_URL"`
	RedisURL           string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	PopupTimeout       time.Duration `env:"POPUP_TIMEOUT" envDefault:"5m"`
	IdentityToolkitURL string        `env:"IDENTITY_TOOLKIT_URL" envDefault:"https://identitytoolkit.googleapis.com/v1"`
	Firebase           Firebase      `envPrefix:"FIREBASE_"`
	Providers          Providers     `envPrefix:"OAUTH_"`
}

// CallbackURL is the OAuth redirect target every provider is registered with.
func (c *Config) CallbackURL() string {
	return strings.TrimRight(c.PublicURL, "/") + "/auth/callback"
}

// Load reads .env files (when present) into the process environment and then
// parses the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
