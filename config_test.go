package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"arcade-server/arcade"
)

func writeTuning(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTuningDefaults(t *testing.T) {
	cfg, err := LoadTuning("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != arcade.DefaultConfig() {
		t.Error("empty path should return the defaults")
	}
}

func TestLoadTuningOverlay(t *testing.T) {
	path := writeTuning(t, `
lives: 5
spawn_interval: 1.5
enemies_can_fire: true
formation_spacing:
  min: 60
  max: 90
`)
	cfg, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Lives != 5 {
		t.Errorf("expected lives 5, got %d", cfg.Lives)
	}
	if cfg.SpawnInterval != 1.5 {
		t.Errorf("expected spawn interval 1.5, got %v", cfg.SpawnInterval)
	}
	if !cfg.EnemiesCanFire {
		t.Error("expected enemies_can_fire true")
	}
	if cfg.FormationSpacing != (arcade.Range{Min: 60, Max: 90}) {
		t.Errorf("expected spacing 60..90, got %+v", cfg.FormationSpacing)
	}
	if cfg.WorldWidth != 900 || cfg.SpawnFloor != 0.35 {
		t.Error("keys missing from the file should keep their defaults")
	}
}

func TestLoadTuningInvalid(t *testing.T) {
	path := writeTuning(t, "lives: 0\n")
	_, err := LoadTuning(path)
	if !errors.Is(err, arcade.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadTuningMissingFile(t *testing.T) {
	_, err := LoadTuning(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestLoadTuningMalformed(t *testing.T) {
	path := writeTuning(t, "lives: [1, 2\n")
	if _, err := LoadTuning(path); err == nil {
		t.Error("expected a parse error")
	}
}
