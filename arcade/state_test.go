package arcade

import (
	"math"
	"testing"
)

func TestDamageDuringInvulnerability(t *testing.T) {
	cfg := DefaultConfig()
	gs := newGameState(&cfg)

	if !gs.DamagePlayer(&cfg, 0) {
		t.Fatal("first hit should land")
	}
	if gs.Lives != 2 {
		t.Errorf("expected 2 lives after first hit, got %d", gs.Lives)
	}

	if gs.DamagePlayer(&cfg, 0.5) {
		t.Error("hit at 0.5s should be absorbed")
	}
	if gs.Lives != 2 {
		t.Errorf("expected lives unchanged at 2, got %d", gs.Lives)
	}

	if !gs.DamagePlayer(&cfg, 2.0) {
		t.Fatal("hit at 2.0s should land")
	}
	if gs.Lives != 1 {
		t.Errorf("expected 1 life, got %d", gs.Lives)
	}
}

func TestInvulnerabilityWindowIsClosed(t *testing.T) {
	cfg := DefaultConfig()
	gs := newGameState(&cfg)

	if gs.Invulnerable(0) {
		t.Error("a fresh run should not start invulnerable")
	}
	gs.DamagePlayer(&cfg, 0)
	if !gs.Invulnerable(cfg.InvulnerableFor) {
		t.Error("window end should still be invulnerable")
	}
	if gs.DamagePlayer(&cfg, cfg.InvulnerableFor) {
		t.Error("hit exactly at the window end should be absorbed")
	}
	if !gs.DamagePlayer(&cfg, math.Nextafter(cfg.InvulnerableFor, 2)) {
		t.Error("hit just after the window should land")
	}
}

func TestLivesNeverIncreaseWhilePlaying(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Lives = 5
	gs := newGameState(&cfg)

	prev := gs.Lives
	for now := 0.0; now < 20; now += 0.3 {
		gs.DamagePlayer(&cfg, now)
		if gs.Lives > prev {
			t.Fatalf("lives went up from %d to %d at %v", prev, gs.Lives, now)
		}
		if gs.Lives < 0 {
			t.Fatalf("lives went negative at %v", now)
		}
		prev = gs.Lives
	}
	if gs.Phase != PhaseGameOver {
		t.Error("expected the run to end")
	}
}

func TestGameOverFreezesFinals(t *testing.T) {
	cfg := DefaultConfig()
	gs := newGameState(&cfg)
	gs.Lives = 1
	gs.Score = 500
	gs.Distance = 42
	gs.Kills = 5

	if !gs.DamagePlayer(&cfg, 1) {
		t.Fatal("last hit should land")
	}
	if gs.Phase != PhaseGameOver {
		t.Fatalf("expected game_over, got %s", gs.Phase)
	}
	if gs.FinalScore != 500 || gs.FinalDistance != 42 || gs.FinalKills != 5 {
		t.Errorf("unexpected finals: %d %v %d", gs.FinalScore, gs.FinalDistance, gs.FinalKills)
	}
	if gs.DamagePlayer(&cfg, 100) {
		t.Error("no damage should apply after game over")
	}
	if gs.Lives != 0 {
		t.Errorf("expected 0 lives, got %d", gs.Lives)
	}
}

func TestAdvanceMilestones(t *testing.T) {
	cfg := DefaultConfig()
	gs := newGameState(&cfg)

	if n := gs.Advance(&cfg, 999); n != 0 {
		t.Errorf("expected no milestone at 999, got %d", n)
	}
	if n := gs.Advance(&cfg, 2); n != 1 {
		t.Errorf("expected 1 milestone crossing 1000, got %d", n)
	}
	if gs.Score != cfg.ScoreMilestone {
		t.Errorf("expected score %d, got %d", cfg.ScoreMilestone, gs.Score)
	}
	if n := gs.Advance(&cfg, 2500); n != 2 {
		t.Errorf("expected 2 milestones crossing 2000 and 3000, got %d", n)
	}
	if gs.Score != 3*cfg.ScoreMilestone {
		t.Errorf("expected score %d, got %d", 3*cfg.ScoreMilestone, gs.Score)
	}
}

func TestBossThreshold(t *testing.T) {
	cfg := DefaultConfig()
	gs := newGameState(&cfg)

	gs.Kills = cfg.BossKillThreshold - 1
	if gs.BossDue() {
		t.Error("boss should not be due one kill early")
	}
	gs.AddKill(&cfg)
	if !gs.BossDue() {
		t.Error("boss should be due at the threshold")
	}
	gs.BossDefeated(&cfg)
	if gs.BossDue() {
		t.Error("threshold should rise after a defeat")
	}
	if gs.NextBossAt != cfg.BossKillThreshold+cfg.BossKillIncrement {
		t.Errorf("expected next boss at %d, got %d", cfg.BossKillThreshold+cfg.BossKillIncrement, gs.NextBossAt)
	}
}
