package arcade

import "math"

// Phase is the game-state machine's state.
type Phase int

const (
	PhasePlaying Phase = iota
	PhaseGameOver
)

func (p Phase) String() string {
	if p == PhaseGameOver {
		return "game_over"
	}
	return "playing"
}

// GameState owns every counter of a run. Subsystems receive it explicitly.
type GameState struct {
	Phase    Phase
	Score    int
	Lives    int
	Distance float64
	Kills    int
	Bosses   int // bosses defeated
	Elapsed  float64
	Tick     uint64

	NextBossAt  int
	InvulnUntil float64
	LastShotAt  float64
	milestones  int

	// Final* are frozen at the transition to GameOver.
	FinalScore    int
	FinalDistance float64
	FinalKills    int
}

func newGameState(cfg *Config) GameState {
	return GameState{
		Phase:       PhasePlaying,
		Lives:       cfg.Lives,
		NextBossAt:  cfg.BossKillThreshold,
		InvulnUntil: math.Inf(-1),
		LastShotAt:  math.Inf(-1),
	}
}

// Invulnerable reports whether now falls inside the closed grace window.
func (s *GameState) Invulnerable(now float64) bool {
	return now <= s.InvulnUntil
}

// DamagePlayer applies one hit at time now. It returns false when the hit
// was absorbed by the invulnerability window or the run is already over.
func (s *GameState) DamagePlayer(cfg *Config, now float64) bool {
	if s.Phase != PhasePlaying || s.Invulnerable(now) {
		return false
	}
	s.Lives--
	s.InvulnUntil = now + cfg.InvulnerableFor
	if s.Lives <= 0 {
		s.Lives = 0
		s.gameOver()
	}
	return true
}

func (s *GameState) gameOver() {
	s.Phase = PhaseGameOver
	s.FinalScore = s.Score
	s.FinalDistance = s.Distance
	s.FinalKills = s.Kills
}

// AddKill scores one destroyed enemy.
func (s *GameState) AddKill(cfg *Config) {
	s.Score += cfg.ScoreKill
	s.Kills++
}

// AddBossHit scores one projectile landing on the boss.
func (s *GameState) AddBossHit(cfg *Config) {
	s.Score += cfg.ScoreBossHit
}

// BossDefeated grants the bonus and raises the next boss threshold.
func (s *GameState) BossDefeated(cfg *Config) {
	s.Score += cfg.ScoreBossBonus
	s.Bosses++
	s.NextBossAt += cfg.BossKillIncrement
}

// BossDue reports whether the kill count has reached the boss threshold.
func (s *GameState) BossDue() bool {
	return s.Kills >= s.NextBossAt
}

// Advance moves the run forward by dist units and returns how many distance
// milestones were crossed (each already scored).
func (s *GameState) Advance(cfg *Config, dist float64) int {
	s.Distance += dist
	reached := int(s.Distance / cfg.MilestoneDistance)
	crossed := reached - s.milestones
	if crossed > 0 {
		s.milestones = reached
		s.Score += crossed * cfg.ScoreMilestone
	}
	return crossed
}
