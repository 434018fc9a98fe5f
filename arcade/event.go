package arcade

// EventKind classifies what happened during a tick.
type EventKind uint8

const (
	EventEnemyKilled EventKind = iota + 1
	EventBossSpawned
	EventBossHit
	EventBossDefeated
	EventPlayerHit
	EventMilestone
	EventGameOver
)

func (k EventKind) String() string {
	switch k {
	case EventEnemyKilled:
		return "enemy_killed"
	case EventBossSpawned:
		return "boss_spawned"
	case EventBossHit:
		return "boss_hit"
	case EventBossDefeated:
		return "boss_defeated"
	case EventPlayerHit:
		return "player_hit"
	case EventMilestone:
		return "milestone"
	case EventGameOver:
		return "game_over"
	}
	return "unknown"
}

// Event is one observable outcome of a tick.
type Event struct {
	Kind   EventKind
	X, Y   float64
	Points int // score awarded, or final score for EventGameOver
	Lives  int // remaining lives for EventPlayerHit
	HP     int // remaining boss HP for EventBossHit
}
