package internal

import (
	"strings"
	"testing"
	"time"

	"github.com/starford/moodlog/internal/kv"
	"github.com/starford/moodlog/internal/models"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Store.Key != "moodEntries" {
		t.Errorf("store key = %q", cfg.Store.Key)
	}
	if len(cfg.MoodSet()) != 8 {
		t.Errorf("default mood set len = %d", len(cfg.MoodSet()))
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStoreConfig_Drivers(t *testing.T) {
	for _, driver := range []string{kv.DriverFile, kv.DriverBolt, kv.DriverSQLite} {
		cfg := StoreConfig{Driver: driver, Path: "./x", Key: "k"}
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: %v", driver, err)
		}
	}
	if err := (&StoreConfig{Driver: kv.DriverMemory, Key: "k"}).Validate(); err != nil {
		t.Errorf("memory without path should pass: %v", err)
	}
	if err := (&StoreConfig{Driver: "redis", Path: "x", Key: "k"}).Validate(); err == nil {
		t.Error("unknown driver should fail")
	}
	if err := (&StoreConfig{Driver: kv.DriverFile, Key: "k"}).Validate(); err == nil {
		t.Error("file driver without path should fail")
	}
}

func TestCalendarConfig_Timezone(t *testing.T) {
	cfg := CalendarConfig{Timezone: "UTC"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("UTC should pass: %v", err)
	}
	loc, _ := cfg.Location()
	if loc != time.UTC {
		t.Errorf("loc = %v", loc)
	}
	if err := (&CalendarConfig{Timezone: "Mars/Olympus"}).Validate(); err == nil {
		t.Error("unknown timezone should fail")
	}
}

func TestConfig_Moods(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Moods = []models.Mood{{Emoji: "🙂", Label: "Fine"}, {Emoji: "🙂", Label: "Also fine"}}
	if err := cfg.Validate(); err == nil {
		t.Error("duplicate emoji should fail")
	}
	cfg.Moods = []models.Mood{{Emoji: "🙂"}}
	if err := cfg.Validate(); err == nil {
		t.Error("missing label should fail")
	}
	cfg.Moods = []models.Mood{{Emoji: "🙂", Label: "Fine"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("custom moods: %v", err)
	}
	if l, _ := cfg.MoodSet().Label("🙂"); l != "Fine" {
		t.Errorf("label = %q", l)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}
