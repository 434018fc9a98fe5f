package arcade

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero width", func(c *Config) { c.WorldWidth = 0 }},
		{"nan speed", func(c *Config) { c.PlayerSpeed = math.NaN() }},
		{"inf cooldown", func(c *Config) { c.FireCooldown = math.Inf(1) }},
		{"negative scroll", func(c *Config) { c.ScrollSpeed = -1 }},
		{"decay above one", func(c *Config) { c.SpawnDecay = 1.01 }},
		{"floor above interval", func(c *Config) { c.SpawnFloor = 2 }},
		{"inverted vy", func(c *Config) { c.EnemyMaxVY = 10 }},
		{"margin too wide", func(c *Config) { c.EnemyMarginX = 500 }},
		{"player off world", func(c *Config) { c.PlayerStartY = 1000 }},
		{"formation chance", func(c *Config) { c.FormationChance = 1.5 }},
		{"formation range", func(c *Config) { c.FormationMin = 6 }},
		{"sway range", func(c *Config) { c.SwayAmplitude = Range{Min: 5, Max: 1} }},
		{"fire delay", func(c *Config) {
			c.EnemiesCanFire = true
			c.EnemyFireDelay = Range{}
		}},
		{"no lives", func(c *Config) { c.Lives = 0 }},
		{"boss hp", func(c *Config) { c.BossHP = 0 }},
		{"boss threshold", func(c *Config) { c.BossKillThreshold = 0 }},
		{"boss threshold never rises", func(c *Config) { c.BossKillIncrement = 0 }},
		{"boss shots", func(c *Config) { c.BossShots = 0 }},
		{"negative award", func(c *Config) { c.ScoreKill = -5 }},
		{"negative capacity", func(c *Config) { c.MaxEntities = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestUnlimitedCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEntities = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero capacity means unlimited, got %v", err)
	}
	st := newStore(0)
	for i := 0; i < 1000; i++ {
		if !st.add(&Entity{Kind: KindShot}) {
			t.Fatalf("add %d refused with unlimited capacity", i)
		}
	}
}
