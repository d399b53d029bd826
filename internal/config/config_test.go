package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("llm:\n  model: gpt-4o-mini\nvideo:\n  aspect: landscape\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Video.Aspect != "landscape" {
		t.Errorf("aspect = %q", cfg.Video.Aspect)
	}
	if cfg.LLM.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("base_url default missing: %q", cfg.LLM.BaseURL)
	}
	if cfg.Video.Count != 1 || cfg.Video.ClipDuration != 5 {
		t.Errorf("video defaults wrong: count=%d clip=%v", cfg.Video.Count, cfg.Video.ClipDuration)
	}
	if cfg.Subtitle.Position != "bottom" || cfg.Subtitle.FontSize != 60 {
		t.Errorf("subtitle defaults wrong: %+v", cfg.Subtitle)
	}
	if cfg.Redis.Host != "localhost" || cfg.Redis.Port != 6379 {
		t.Errorf("redis defaults wrong: %+v", cfg.Redis)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTaskDirAndFontPath(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	if got := cfg.TaskDir("abc"); got != filepath.Join("storage/tasks", "abc") {
		t.Errorf("TaskDir = %q", got)
	}
	if got := cfg.FontPath(""); got != filepath.Join("resource/fonts", "Charm-Bold.ttf") {
		t.Errorf("FontPath default = %q", got)
	}
	if got := cfg.FontPath("Other.ttf"); got != filepath.Join("resource/fonts", "Other.ttf") {
		t.Errorf("FontPath = %q", got)
	}
}
