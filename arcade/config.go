package arcade

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every tunable of the simulation. Times are seconds, speeds units/second.
type Config struct {
	WorldWidth  float64 `yaml:"world_width"`
	WorldHeight float64 `yaml:"world_height"`
	ScrollSpeed float64 `yaml:"scroll_speed"`

	// Player
	PlayerSpeed     float64 `yaml:"player_speed"`
	PlayerWidth     float64 `yaml:"player_width"`
	PlayerHeight    float64 `yaml:"player_height"`
	PlayerStartX    float64 `yaml:"player_start_x"`
	PlayerStartY    float64 `yaml:"player_start_y"`
	Lives           int     `yaml:"lives"`
	InvulnerableFor float64 `yaml:"invulnerable_for"`
	FireCooldown    float64 `yaml:"fire_cooldown"`

	// Player projectiles
	ShotSpeed     float64 `yaml:"shot_speed"`
	ShotWidth     float64 `yaml:"shot_width"`
	ShotHeight    float64 `yaml:"shot_height"`
	ShotOffsetY   float64 `yaml:"shot_offset_y"`
	SideShotScore int     `yaml:"side_shot_score"` // 0 disables side shots
	SideShotVX    float64 `yaml:"side_shot_vx"`

	// Spawning
	SpawnInterval      float64 `yaml:"spawn_interval"`
	SpawnDecay         float64 `yaml:"spawn_decay"`
	SpawnFloor         float64 `yaml:"spawn_floor"`
	EnemyWidth         float64 `yaml:"enemy_width"`
	EnemyHeight        float64 `yaml:"enemy_height"`
	EnemySpawnY        float64 `yaml:"enemy_spawn_y"`
	EnemyMarginX       float64 `yaml:"enemy_margin_x"`
	EnemyMinVY         float64 `yaml:"enemy_min_vy"`
	EnemyMaxVY         float64 `yaml:"enemy_max_vy"`
	FormationChance    float64 `yaml:"formation_chance"`
	FormationMin       int     `yaml:"formation_min"`
	FormationMax       int     `yaml:"formation_max"`
	FormationSpacing   Range   `yaml:"formation_spacing"`
	FormationStagger   float64 `yaml:"formation_stagger"`
	FormationPhaseStep float64 `yaml:"formation_phase_step"`
	SwayAmplitude      Range   `yaml:"sway_amplitude"`
	SwaySpeed          Range   `yaml:"sway_speed"`

	// Enemy fire stays inert unless enabled.
	EnemiesCanFire   bool    `yaml:"enemies_can_fire"`
	EnemyFireDelay   Range   `yaml:"enemy_fire_delay"`
	EnemyShotSpeed   float64 `yaml:"enemy_shot_speed"`
	EnemyShotSize    float64 `yaml:"enemy_shot_size"`
	EnemyShotSpread  float64 `yaml:"enemy_shot_spread"` // radians, total jitter
	EnemyShotOffsetY float64 `yaml:"enemy_shot_offset_y"`

	// Boss
	BossHP            int     `yaml:"boss_hp"`
	BossKillThreshold int     `yaml:"boss_kill_threshold"`
	BossKillIncrement int     `yaml:"boss_kill_increment"`
	BossWidth         float64 `yaml:"boss_width"`
	BossHeight        float64 `yaml:"boss_height"`
	BossSpawnY        float64 `yaml:"boss_spawn_y"`
	BossApproachSpeed float64 `yaml:"boss_approach_speed"`
	BossHoverY        float64 `yaml:"boss_hover_y"`
	BossBobAmp        float64 `yaml:"boss_bob_amp"`
	BossBobSpeed      float64 `yaml:"boss_bob_speed"`
	BossSwayAmp       float64 `yaml:"boss_sway_amp"`
	BossSwaySpeed     float64 `yaml:"boss_sway_speed"`
	BossFireInterval  float64 `yaml:"boss_fire_interval"`
	BossShots         int     `yaml:"boss_shots"`
	BossSpread        float64 `yaml:"boss_spread"` // radians between outermost shots

	// Scoring
	ScoreKill         int     `yaml:"score_kill"`
	ScoreBossHit      int     `yaml:"score_boss_hit"`
	ScoreBossBonus    int     `yaml:"score_boss_bonus"`
	ScoreMilestone    int     `yaml:"score_milestone"`
	MilestoneDistance float64 `yaml:"milestone_distance"`

	// MaxEntities caps live entities (player excluded). 0 means unlimited.
	MaxEntities int `yaml:"max_entities"`
}

// Range is a closed [Min, Max] interval sampled uniformly.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// DefaultConfig returns the classic tuning: 900x600 arena, three lives, shots at 720 px/s.
func DefaultConfig() Config {
	return Config{
		WorldWidth:  900,
		WorldHeight: 600,
		ScrollSpeed: 120,

		PlayerSpeed:     420,
		PlayerWidth:     96,
		PlayerHeight:    96,
		PlayerStartX:    450,
		PlayerStartY:    492,
		Lives:           3,
		InvulnerableFor: 1.2,
		FireCooldown:    0.16,

		ShotSpeed:     720,
		ShotWidth:     24,
		ShotHeight:    30,
		ShotOffsetY:   55,
		SideShotScore: 2500,
		SideShotVX:    180,

		SpawnInterval:      0.9,
		SpawnDecay:         0.992,
		SpawnFloor:         0.35,
		EnemyWidth:         110,
		EnemyHeight:        110,
		EnemySpawnY:        -60,
		EnemyMarginX:       80,
		EnemyMinVY:         140,
		EnemyMaxVY:         220,
		FormationChance:    0.25,
		FormationMin:       3,
		FormationMax:       5,
		FormationSpacing:   Range{Min: 80, Max: 120},
		FormationStagger:   70,
		FormationPhaseStep: 0.6,
		SwayAmplitude:      Range{Min: 20, Max: 70},
		SwaySpeed:          Range{Min: 1.5, Max: 3},

		EnemiesCanFire:   false,
		EnemyFireDelay:   Range{Min: 1.5, Max: 3.5},
		EnemyShotSpeed:   280,
		EnemyShotSize:    18,
		EnemyShotSpread:  0.35,
		EnemyShotOffsetY: 40,

		BossHP:            20,
		BossKillThreshold: 25,
		BossKillIncrement: 25,
		BossWidth:         220,
		BossHeight:        160,
		BossSpawnY:        -120,
		BossApproachSpeed: 90,
		BossHoverY:        130,
		BossBobAmp:        18,
		BossBobSpeed:      1.6,
		BossSwayAmp:       220,
		BossSwaySpeed:     0.7,
		BossFireInterval:  1.4,
		BossShots:         5,
		BossSpread:        0.9,

		ScoreKill:         100,
		ScoreBossHit:      10,
		ScoreBossBonus:    2000,
		ScoreMilestone:    250,
		MilestoneDistance: 1000,

		MaxEntities: 400,
	}
}

func (c Config) fail(field, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, field, fmt.Sprintf(format, args...))
}

func bad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// Validate reports the first nonsensical value. Nothing is clamped.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"world_width", c.WorldWidth},
		{"world_height", c.WorldHeight},
		{"player_speed", c.PlayerSpeed},
		{"player_width", c.PlayerWidth},
		{"player_height", c.PlayerHeight},
		{"fire_cooldown", c.FireCooldown},
		{"shot_speed", c.ShotSpeed},
		{"shot_width", c.ShotWidth},
		{"shot_height", c.ShotHeight},
		{"spawn_interval", c.SpawnInterval},
		{"spawn_decay", c.SpawnDecay},
		{"spawn_floor", c.SpawnFloor},
		{"enemy_width", c.EnemyWidth},
		{"enemy_height", c.EnemyHeight},
		{"enemy_shot_speed", c.EnemyShotSpeed},
		{"enemy_shot_size", c.EnemyShotSize},
		{"boss_width", c.BossWidth},
		{"boss_height", c.BossHeight},
		{"boss_approach_speed", c.BossApproachSpeed},
		{"boss_fire_interval", c.BossFireInterval},
		{"milestone_distance", c.MilestoneDistance},
	}
	for _, p := range positive {
		if bad(p.v) || p.v <= 0 {
			return c.fail(p.name, "must be > 0, got %v", p.v)
		}
	}

	nonNegative := []struct {
		name string
		v    float64
	}{
		{"scroll_speed", c.ScrollSpeed},
		{"invulnerable_for", c.InvulnerableFor},
		{"side_shot_vx", c.SideShotVX},
		{"enemy_min_vy", c.EnemyMinVY},
		{"enemy_margin_x", c.EnemyMarginX},
		{"formation_stagger", c.FormationStagger},
		{"formation_phase_step", c.FormationPhaseStep},
		{"enemy_shot_spread", c.EnemyShotSpread},
		{"boss_bob_amp", c.BossBobAmp},
		{"boss_bob_speed", c.BossBobSpeed},
		{"boss_sway_amp", c.BossSwayAmp},
		{"boss_sway_speed", c.BossSwaySpeed},
		{"boss_spread", c.BossSpread},
	}
	for _, p := range nonNegative {
		if bad(p.v) || p.v < 0 {
			return c.fail(p.name, "must be >= 0, got %v", p.v)
		}
	}

	if c.SpawnDecay > 1 {
		return c.fail("spawn_decay", "must be <= 1, got %v", c.SpawnDecay)
	}
	if c.SpawnFloor > c.SpawnInterval {
		return c.fail("spawn_floor", "must not exceed spawn_interval (%v > %v)", c.SpawnFloor, c.SpawnInterval)
	}
	if c.EnemyMaxVY < c.EnemyMinVY {
		return c.fail("enemy_max_vy", "must be >= enemy_min_vy")
	}
	if 2*c.EnemyMarginX > c.WorldWidth {
		return c.fail("enemy_margin_x", "leaves no room to spawn in a %v wide world", c.WorldWidth)
	}
	if c.PlayerStartX < 0 || c.PlayerStartX > c.WorldWidth || c.PlayerStartY < 0 || c.PlayerStartY > c.WorldHeight {
		return c.fail("player_start", "(%v,%v) outside the world", c.PlayerStartX, c.PlayerStartY)
	}
	if c.FormationChance < 0 || c.FormationChance > 1 {
		return c.fail("formation_chance", "must be within [0,1], got %v", c.FormationChance)
	}
	if c.FormationMin < 1 || c.FormationMax < c.FormationMin {
		return c.fail("formation_min/max", "need 1 <= min <= max, got %d..%d", c.FormationMin, c.FormationMax)
	}

	ranges := []struct {
		name string
		r    Range
	}{
		{"formation_spacing", c.FormationSpacing},
		{"sway_amplitude", c.SwayAmplitude},
		{"sway_speed", c.SwaySpeed},
		{"enemy_fire_delay", c.EnemyFireDelay},
	}
	for _, p := range ranges {
		if bad(p.r.Min) || bad(p.r.Max) || p.r.Min < 0 || p.r.Max < p.r.Min {
			return c.fail(p.name, "needs 0 <= min <= max, got [%v,%v]", p.r.Min, p.r.Max)
		}
	}
	if c.EnemiesCanFire && c.EnemyFireDelay.Min <= 0 {
		return c.fail("enemy_fire_delay", "min must be > 0 when enemies can fire")
	}

	if c.Lives < 1 {
		return c.fail("lives", "must be >= 1, got %d", c.Lives)
	}
	if c.BossHP < 1 {
		return c.fail("boss_hp", "must be >= 1, got %d", c.BossHP)
	}
	if c.BossKillThreshold < 1 {
		return c.fail("boss_kill_threshold", "must be >= 1, got %d", c.BossKillThreshold)
	}
	if c.BossKillIncrement < 1 {
		return c.fail("boss_kill_increment", "must be >= 1, got %d", c.BossKillIncrement)
	}
	if c.BossShots < 1 {
		return c.fail("boss_shots", "must be >= 1, got %d", c.BossShots)
	}
	if c.SideShotScore < 0 {
		return c.fail("side_shot_score", "must be >= 0, got %d", c.SideShotScore)
	}
	if c.ScoreKill < 0 || c.ScoreBossHit < 0 || c.ScoreBossBonus < 0 || c.ScoreMilestone < 0 {
		return c.fail("score", "awards must be >= 0")
	}
	if c.MaxEntities < 0 {
		return c.fail("max_entities", "must be >= 0, got %d", c.MaxEntities)
	}
	return nil
}
