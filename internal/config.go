package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/moodlog/internal/kv"
	"github.com/starford/moodlog/internal/ledger"
	"github.com/starford/moodlog/internal/models"
)

// EnvPrefix prefixes every environment override, e.g. MOODLOG_STORE_DRIVER.
const EnvPrefix = "MOODLOG_"

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app" envPrefix:"APP_"`
	Store    StoreConfig       `yaml:"store" envPrefix:"STORE_"`
	Calendar CalendarConfig    `yaml:"calendar" envPrefix:"CALENDAR_"`
	Auth     AuthConfig        `yaml:"auth" envPrefix:"AUTH_"`
	// Moods replaces the built-in mood set when non-empty.
	Moods []models.Mood `yaml:"moods"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Calendar.Validate(); err != nil {
		return err
	}
	if err := validateMoods(c.Moods); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// MoodSet returns the configured mood set, or the defaults.
func (c *Config) MoodSet() models.MoodSet {
	if len(c.Moods) == 0 {
		return models.DefaultMoods()
	}
	return models.MoodSet(c.Moods)
}

func validateMoods(moods []models.Mood) error {
	seen := make(map[string]struct{}, len(moods))
	for i := range moods {
		m := &moods[i]
		if err := validation.ValidateStruct(m,
			validation.Field(&m.Emoji, validation.Required),
			validation.Field(&m.Label, validation.Required),
		); err != nil {
			return fmt.Errorf("moods[%d]: %w", i, err)
		}
		if _, dup := seen[m.Emoji]; dup {
			return fmt.Errorf("moods[%d]: duplicate emoji %q", i, m.Emoji)
		}
		seen[m.Emoji] = struct{}{}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" env:"LOG_LEVEL"`
	HTTP     HTTPConfig `yaml:"http" envPrefix:"HTTP_"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" env:"PORT"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StoreConfig selects the key-value backend holding the ledger.
//
// Path is a directory for the file driver and a database file for bolt and
// sqlite; it is ignored by the memory driver.
type StoreConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`
	Path   string `yaml:"path" env:"PATH"`
	Key    string `yaml:"key" env:"KEY"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required,
			validation.In(kv.DriverFile, kv.DriverBolt, kv.DriverSQLite, kv.DriverMemory)),
		validation.Field(&c.Path, validation.When(c.Driver != kv.DriverMemory, validation.Required)),
		validation.Field(&c.Key, validation.Required),
	)
}

// CalendarConfig controls how days and exports are presented.
type CalendarConfig struct {
	// Timezone is an IANA name; empty means the machine's local zone.
	Timezone string `yaml:"timezone" env:"TIMEZONE"`
	Name     string `yaml:"name" env:"NAME"`
}

// Validate validates the calendar configuration.
func (c *CalendarConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timezone, validation.By(func(any) error {
			_, err := c.Location()
			return err
		})),
	)
}

// Location resolves Timezone.
func (c *CalendarConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.New("unknown timezone")
	}
	return loc, nil
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" env:"MODE"`
	Token string `yaml:"token" env:"TOKEN"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled".
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Store: StoreConfig{
			Driver: kv.DriverFile,
			Path:   "./data",
			Key:    ledger.DefaultKey,
		},
		Calendar: CalendarConfig{
			Name: "Mood calendar",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
