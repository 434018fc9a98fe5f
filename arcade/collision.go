package arcade

import "math"

// Overlap reports whether two boxes intersect, comparing centre distance
// against the sum of half extents on each axis.
func Overlap(a, b Body) bool {
	return math.Abs(a.X-b.X)*2 < a.W+b.W && math.Abs(a.Y-b.Y)*2 < a.H+b.H
}

// swept widens a projectile's body to cover its travel during the last tick.
func swept(e *Entity) Body {
	b := e.Body
	dx := e.X - e.PrevX
	dy := e.Y - e.PrevY
	b.X -= dx / 2
	b.Y -= dy / 2
	b.W += math.Abs(dx)
	b.H += math.Abs(dy)
	return b
}

// resolve runs one collision pass in priority order and applies its effects
// to gs. It stops as soon as the run is over.
func resolve(cfg *Config, st *Store, gs *GameState, now float64, events *[]Event) {
	p := st.Player
	if p.Alive() {
		// enemy projectile -> player
		for _, s := range st.EnemyShots {
			if !s.Alive() || !Overlap(swept(s), p.Body) {
				continue
			}
			if hitPlayer(cfg, st, gs, s, now, events) && gs.Phase == PhaseGameOver {
				return
			}
		}
		// enemy -> player
		for _, e := range st.Enemies {
			if !e.Alive() || !Overlap(e.Body, p.Body) {
				continue
			}
			if hitPlayer(cfg, st, gs, e, now, events) && gs.Phase == PhaseGameOver {
				return
			}
		}
	}

	// player projectile -> enemy, first match only
	for _, s := range st.Shots {
		if !s.Alive() {
			continue
		}
		body := swept(s)
		for _, e := range st.Enemies {
			if !e.Alive() || !Overlap(body, e.Body) {
				continue
			}
			st.remove(s)
			st.remove(e)
			gs.AddKill(cfg)
			*events = append(*events, Event{Kind: EventEnemyKilled, X: e.X, Y: e.Y, Points: cfg.ScoreKill})
			break
		}
	}

	// player projectile -> boss, every hit counts
	for _, s := range st.Shots {
		b := st.Boss
		if !b.Alive() {
			break
		}
		if !s.Alive() || !Overlap(swept(s), b.Body) {
			continue
		}
		st.remove(s)
		b.HP--
		gs.AddBossHit(cfg)
		*events = append(*events, Event{Kind: EventBossHit, X: s.X, Y: s.Y, Points: cfg.ScoreBossHit, HP: b.HP})
		if b.HP <= 0 {
			st.remove(b)
			gs.BossDefeated(cfg)
			*events = append(*events, Event{Kind: EventBossDefeated, X: b.X, Y: b.Y, Points: cfg.ScoreBossBonus})
		}
	}
}

// hitPlayer applies one damage event from source. The source is consumed
// only if the hit landed.
func hitPlayer(cfg *Config, st *Store, gs *GameState, source *Entity, now float64, events *[]Event) bool {
	if !gs.DamagePlayer(cfg, now) {
		return false
	}
	st.remove(source)
	*events = append(*events, Event{Kind: EventPlayerHit, X: source.X, Y: source.Y, Lives: gs.Lives})
	if gs.Phase == PhaseGameOver {
		*events = append(*events, Event{Kind: EventGameOver, Points: gs.FinalScore, Lives: 0})
	}
	return true
}
