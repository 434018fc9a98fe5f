package arcade

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func newTestGame(t *testing.T, cfg Config) *Game {
	t.Helper()
	g, err := NewGame(cfg, WithSeed(42))
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}
	return g
}

func TestNewGame(t *testing.T) {
	g := newTestGame(t, DefaultConfig())

	if g.Phase() != PhasePlaying {
		t.Errorf("expected playing, got %s", g.Phase())
	}
	if g.Lives() != 3 {
		t.Errorf("expected 3 lives, got %d", g.Lives())
	}
	if g.Score() != 0 || g.Kills() != 0 || g.Distance() != 0 {
		t.Error("expected zeroed counters")
	}
	snap := g.Snapshot()
	if len(snap.Entities) != 1 || snap.Entities[0].Kind != KindPlayer {
		t.Fatalf("expected only the player, got %+v", snap.Entities)
	}
	if snap.Entities[0].X != 450 || snap.Entities[0].Y != 492 {
		t.Errorf("expected player at (450,492), got (%v,%v)", snap.Entities[0].X, snap.Entities[0].Y)
	}
	if _, ok := g.BossHealth(); ok {
		t.Error("no boss at start")
	}
}

func TestNewGameRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Lives = 0
	_, err := NewGame(cfg)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLargeDeltaDoesNotTunnel(t *testing.T) {
	g := newTestGame(t, testConfig())
	shot := &Entity{Kind: KindEnemyShot, Body: Body{X: 450, Y: 300, W: 18, H: 18, VY: 280}}
	g.store.add(shot)

	g.Update(1.0, Input{})

	if g.Lives() != 2 {
		t.Errorf("expected 2 lives, got %d", g.Lives())
	}
	if len(g.store.EnemyShots) != 0 {
		t.Errorf("expected the shot removed, got %d enemy shots", len(g.store.EnemyShots))
	}
	events := g.Events()
	if len(events) == 0 || events[len(events)-1].Kind != EventPlayerHit {
		t.Errorf("expected a player_hit event, got %v", events)
	}

	g.Update(1.0, Input{})
	g.Update(1.0, Input{})
	if g.Lives() != 2 {
		t.Errorf("expected lives to stay at 2, got %d", g.Lives())
	}
}

func TestGameOverIsTerminal(t *testing.T) {
	g := newTestGame(t, testConfig())
	g.state.Lives = 1
	g.state.Score = 300
	g.store.add(&Entity{Kind: KindEnemyShot, Body: Body{X: 450, Y: 492, W: 18, H: 18}})

	g.Update(0.016, Input{})
	if g.Phase() != PhaseGameOver {
		t.Fatalf("expected game_over, got %s", g.Phase())
	}
	if g.State().FinalScore != 300 {
		t.Errorf("expected final score 300, got %d", g.State().FinalScore)
	}

	before := g.Snapshot()
	for i := 0; i < 10; i++ {
		g.Update(0.016, Input{MoveX: 1, Fire: true})
		if len(g.Events()) != 0 {
			t.Fatal("no events after game over")
		}
	}
	if after := g.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("state changed after game over:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestRestart(t *testing.T) {
	g := newTestGame(t, testConfig())
	for i := 0; i < 300; i++ {
		g.Update(1.0/60, Input{MoveX: 1, Fire: true})
	}
	g.state.Lives = 1
	g.store.add(&Entity{Kind: KindEnemyShot, Body: Body{X: g.store.Player.X, Y: g.store.Player.Y, W: 18, H: 18}})
	g.Update(1.0/60, Input{})
	if g.Phase() != PhaseGameOver {
		t.Fatalf("expected game_over, got %s", g.Phase())
	}

	g.Restart()
	if g.Phase() != PhasePlaying {
		t.Errorf("expected playing after restart, got %s", g.Phase())
	}
	if g.Lives() != 3 || g.Score() != 0 || g.Kills() != 0 || g.Distance() != 0 {
		t.Errorf("expected fresh counters, got lives %d score %d kills %d distance %v",
			g.Lives(), g.Score(), g.Kills(), g.Distance())
	}
	snap := g.Snapshot()
	if len(snap.Entities) != 1 || snap.Entities[0].Kind != KindPlayer {
		t.Errorf("expected only the player after restart, got %d entities", len(snap.Entities))
	}
	if g.director.Interval() != g.cfg.SpawnInterval {
		t.Errorf("expected spawn interval reset to %v, got %v", g.cfg.SpawnInterval, g.director.Interval())
	}

	g.Update(1.0/60, Input{Fire: true})
	if len(g.store.Shots) != 1 {
		t.Error("fire cooldown should be reset by restart")
	}
}

func TestInvalidDeltaIsNoop(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	g.Update(0.5, Input{})
	before := g.Snapshot()

	for _, dt := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		g.Update(dt, Input{MoveX: 1, Fire: true})
		if after := g.Snapshot(); !reflect.DeepEqual(before, after) {
			t.Errorf("Update(%v) changed state", dt)
		}
	}
}

func TestFireCooldown(t *testing.T) {
	g := newTestGame(t, testConfig())

	g.Update(0.05, Input{Fire: true})
	if len(g.store.Shots) != 1 {
		t.Fatalf("expected 1 shot, got %d", len(g.store.Shots))
	}
	s := g.store.Shots[0]
	if s.VY != -g.cfg.ShotSpeed || s.VX != 0 {
		t.Errorf("expected straight shot at %v, got (%v,%v)", -g.cfg.ShotSpeed, s.VX, s.VY)
	}

	g.Update(0.05, Input{Fire: true})
	if len(g.store.Shots) != 1 {
		t.Errorf("expected cooldown to block the second shot, got %d", len(g.store.Shots))
	}

	g.Update(0.2, Input{Fire: true})
	if len(g.store.Shots) != 2 {
		t.Errorf("expected 2 shots after cooldown, got %d", len(g.store.Shots))
	}
}

func TestSideShots(t *testing.T) {
	g := newTestGame(t, testConfig())
	g.state.Score = g.cfg.SideShotScore

	g.Update(0.05, Input{Fire: true})
	if len(g.store.Shots) != 3 {
		t.Fatalf("expected 3 shots, got %d", len(g.store.Shots))
	}
	var vx []float64
	for _, s := range g.store.Shots {
		vx = append(vx, s.VX)
	}
	want := []float64{0, -g.cfg.SideShotVX, g.cfg.SideShotVX}
	if !reflect.DeepEqual(vx, want) {
		t.Errorf("expected vx %v, got %v", want, vx)
	}
}

func TestFireRespectsCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.MaxEntities = 1
	g := newTestGame(t, cfg)
	g.state.Score = cfg.SideShotScore

	g.Update(0.05, Input{Fire: true})
	if len(g.store.Shots) != 1 {
		t.Errorf("expected side shots dropped at capacity, got %d shots", len(g.store.Shots))
	}
}

func TestShootingEnemyScores(t *testing.T) {
	g := newTestGame(t, testConfig())
	g.store.add(&Entity{Kind: KindEnemy, Body: Body{X: 450, Y: 380, W: 110, H: 110}})

	g.Update(0.05, Input{Fire: true})

	if g.Kills() != 1 || g.Score() != 100 {
		t.Errorf("expected 1 kill and 100 points, got %d kills and %d", g.Kills(), g.Score())
	}
	if len(g.store.Enemies) != 0 || len(g.store.Shots) != 0 {
		t.Error("expected both entities removed")
	}
}

func TestInputReadBySign(t *testing.T) {
	a := newTestGame(t, testConfig())
	b := newTestGame(t, testConfig())

	a.Update(0.1, Input{MoveX: 5, MoveY: -3})
	b.Update(0.1, Input{MoveX: 1, MoveY: -1})

	pa, pb := a.store.Player, b.store.Player
	if pa.X != pb.X || pa.Y != pb.Y {
		t.Errorf("expected identical movement, got (%v,%v) and (%v,%v)", pa.X, pa.Y, pb.X, pb.Y)
	}
}

func TestDistanceAndMilestones(t *testing.T) {
	g := newTestGame(t, testConfig())
	for i := 0; i < 10; i++ {
		g.Update(1.0, Input{})
	}
	if math.Abs(g.Distance()-1200) > 1e-9 {
		t.Errorf("expected distance 1200, got %v", g.Distance())
	}
	if g.Score() != g.cfg.ScoreMilestone {
		t.Errorf("expected one milestone bonus, got score %d", g.Score())
	}
}

func TestSeededRunsReplay(t *testing.T) {
	run := func() Snapshot {
		g := newTestGame(t, DefaultConfig())
		for i := 0; i < 900; i++ {
			g.Update(1.0/60, Input{MoveX: (i/90)%2*2 - 1, Fire: true})
		}
		return g.Snapshot()
	}
	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Error("two runs with the same seed diverged")
	}
	if len(a.Entities) < 2 {
		t.Error("expected a populated arena after 15 seconds")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	g := newTestGame(t, DefaultConfig())
	snap := g.Snapshot()
	snap.Entities[0].X = -1000
	if g.store.Player.X == -1000 {
		t.Error("mutating a snapshot must not touch the game")
	}
}
