package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Gallery.Dir != "face_data/known_faces" {
		t.Errorf("gallery dir = %q", cfg.Gallery.Dir)
	}
	if cfg.OSINT.Timeout != 5*time.Second {
		t.Errorf("osint timeout = %v", cfg.OSINT.Timeout)
	}
	want := []string{"gmail.com", "yahoo.com", "hotmail.com"}
	if !reflect.DeepEqual(cfg.OSINT.EmailDomains, want) {
		t.Errorf("email domains = %v, want %v", cfg.OSINT.EmailDomains, want)
	}
	if cfg.AI.Provider != "gemini" {
		t.Errorf("ai provider = %q", cfg.AI.Provider)
	}
	if cfg.AI.Timeout != 30*time.Second {
		t.Errorf("ai timeout = %v", cfg.AI.Timeout)
	}
	if cfg.AI.CacheSize != 128 {
		t.Errorf("ai cache size = %d", cfg.AI.CacheSize)
	}
	if cfg.Pipeline.Deadline != 60*time.Second {
		t.Errorf("pipeline deadline = %v", cfg.Pipeline.Deadline)
	}
}

func TestLoad_EmbeddedThresholds(t *testing.T) {
	cfg := Load()

	if cfg.Thresholds.MatchFloor != 40 {
		t.Errorf("match floor = %d, want 40", cfg.Thresholds.MatchFloor)
	}
	if cfg.Thresholds.StrongMatch != 85 {
		t.Errorf("strong match = %d, want 85", cfg.Thresholds.StrongMatch)
	}
	if cfg.Thresholds.ModerateMatch != 50 {
		t.Errorf("moderate match = %d, want 50", cfg.Thresholds.ModerateMatch)
	}
	if cfg.Thresholds.StrongOSINT != 2 {
		t.Errorf("strong osint = %d, want 2", cfg.Thresholds.StrongOSINT)
	}
	if cfg.Thresholds.OSINTWeight != 20 {
		t.Errorf("osint weight = %d, want 20", cfg.Thresholds.OSINTWeight)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GALLERY_DIR", "/data/faces")
	t.Setenv("MATCH_FLOOR", "55")
	t.Setenv("STRONG_OSINT", "3")
	t.Setenv("OSINT_EMAIL_DOMAINS", "example.com, corp.example")
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("OPENAI_TOKEN", "sk-test")
	t.Setenv("PIPELINE_DEADLINE_SECONDS", "10")

	cfg := Load()

	if cfg.Gallery.Dir != "/data/faces" {
		t.Errorf("gallery dir = %q", cfg.Gallery.Dir)
	}
	if cfg.Thresholds.MatchFloor != 55 {
		t.Errorf("match floor = %d, want 55", cfg.Thresholds.MatchFloor)
	}
	if cfg.Thresholds.StrongOSINT != 3 {
		t.Errorf("strong osint = %d, want 3", cfg.Thresholds.StrongOSINT)
	}
	want := []string{"example.com", "corp.example"}
	if !reflect.DeepEqual(cfg.OSINT.EmailDomains, want) {
		t.Errorf("email domains = %v, want %v", cfg.OSINT.EmailDomains, want)
	}
	if cfg.AI.Provider != "openai" || cfg.AI.OpenAIToken != "sk-test" {
		t.Errorf("ai config = %+v", cfg.AI)
	}
	if cfg.Pipeline.Deadline != 10*time.Second {
		t.Errorf("pipeline deadline = %v", cfg.Pipeline.Deadline)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("MATCH_FLOOR", "not-a-number")
	t.Setenv("OSINT_TIMEOUT_SECONDS", "-3")

	cfg := Load()
	if cfg.Thresholds.MatchFloor != 40 {
		t.Errorf("invalid int should keep default, got %d", cfg.Thresholds.MatchFloor)
	}
	if cfg.OSINT.Timeout != 5*time.Second {
		t.Errorf("negative timeout should keep default, got %v", cfg.OSINT.Timeout)
	}
}
