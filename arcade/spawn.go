package arcade

import "math"

// Director decides when and what enters the store.
type Director struct {
	cfg      *Config
	rng      Source
	interval float64
	timer    float64
	cycles   int
}

func newDirector(cfg *Config, rng Source) *Director {
	d := &Director{cfg: cfg, rng: rng}
	d.reset()
	return d
}

func (d *Director) reset() {
	d.interval = d.cfg.SpawnInterval
	d.timer = 0
	d.cycles = 0
}

// Interval is the current delay between spawn events, in seconds.
func (d *Director) Interval() float64 {
	return d.interval
}

// Cycles counts spawn events since the last reset.
func (d *Director) Cycles() int {
	return d.cycles
}

// decay shortens the interval geometrically, never below the floor.
func (d *Director) decay() {
	d.cycles++
	d.interval = math.Max(d.cfg.SpawnFloor, d.interval*d.cfg.SpawnDecay)
}

// update runs the spawn timers for one tick. now is game time after this tick.
func (d *Director) update(st *Store, gs *GameState, dt, now float64, events *[]Event) {
	if st.Boss == nil && gs.BossDue() {
		if d.spawnBoss(st) {
			*events = append(*events, Event{Kind: EventBossSpawned, X: st.Boss.X, Y: st.Boss.Y})
		}
	}

	d.timer += dt
	if d.timer >= d.interval {
		d.timer = 0
		if st.Boss == nil {
			if d.rng.Float64() < d.cfg.FormationChance {
				d.spawnFormation(st, now)
			} else {
				d.spawnEnemy(st, now)
			}
		}
		d.decay()
	}

	if b := st.Boss; b.Alive() && b.Hovering && now >= b.FireAt {
		d.bossVolley(st, b)
		b.FireAt = now + d.cfg.BossFireInterval
	}

	if d.cfg.EnemiesCanFire {
		for _, e := range st.Enemies {
			if e.Alive() && e.FireAt > 0 && now >= e.FireAt && e.Y > 0 {
				d.enemyShot(st, e)
				e.FireAt = now + sample(d.rng, d.cfg.EnemyFireDelay)
			}
		}
	}
}

// newEnemy builds an enemy entering at game time now. Its first shot is
// scheduled relative to now.
func (d *Director) newEnemy(x, y, vy, now float64) *Entity {
	e := &Entity{
		Kind: KindEnemy,
		Body: Body{X: x, Y: y, W: d.cfg.EnemyWidth, H: d.cfg.EnemyHeight, VY: vy},
	}
	if d.cfg.EnemiesCanFire {
		e.FireAt = now + sample(d.rng, d.cfg.EnemyFireDelay)
	}
	return e
}

// spawnEnemy drops a single enemy somewhere along the top edge.
func (d *Director) spawnEnemy(st *Store, now float64) bool {
	if st.Boss != nil {
		return false
	}
	c := d.cfg
	x := between(d.rng, c.EnemyMarginX, c.WorldWidth-c.EnemyMarginX)
	vy := between(d.rng, c.EnemyMinVY, c.EnemyMaxVY)
	return st.add(d.newEnemy(x, c.EnemySpawnY, vy, now))
}

// spawnFormation lays out a swaying V of enemies around a random base x.
// It returns how many enemies were added.
func (d *Director) spawnFormation(st *Store, now float64) int {
	if st.Boss != nil {
		return 0
	}
	c := d.cfg
	n := intBetween(d.rng, c.FormationMin, c.FormationMax)
	base := between(d.rng, c.EnemyMarginX, c.WorldWidth-c.EnemyMarginX)
	spacing := sample(d.rng, c.FormationSpacing)
	amp := sample(d.rng, c.SwayAmplitude)
	speed := sample(d.rng, c.SwaySpeed)
	vy := between(d.rng, c.EnemyMinVY, c.EnemyMaxVY)

	mid := float64(n-1) / 2
	added := 0
	for i := 0; i < n; i++ {
		off := float64(i) - mid
		x := base + off*spacing
		y := c.EnemySpawnY - math.Abs(off)*c.FormationStagger
		e := d.newEnemy(x, y, vy, now)
		e.Sway = Sway{BaseX: x, Amplitude: amp, Speed: speed, Phase: float64(i) * c.FormationPhaseStep}
		if st.add(e) {
			added++
		}
	}
	return added
}

// spawnBoss clears the normal enemies and brings in the boss.
func (d *Director) spawnBoss(st *Store) bool {
	if st.Boss != nil {
		return false
	}
	c := d.cfg
	st.clearEnemies()
	b := &Entity{
		Kind: KindBoss,
		Body: Body{X: c.WorldWidth / 2, Y: c.BossSpawnY, W: c.BossWidth, H: c.BossHeight, VY: c.BossApproachSpeed},
		HP:   c.BossHP,
		Sway: Sway{BaseX: c.WorldWidth / 2, Amplitude: c.BossSwayAmp, Speed: c.BossSwaySpeed},
	}
	return st.add(b)
}

// aimAt returns the angle from (x, y) toward the player, straight down if there is none.
func aimAt(st *Store, x, y float64) float64 {
	if p := st.Player; p.Alive() {
		return math.Atan2(p.Y-y, p.X-x)
	}
	return math.Pi / 2
}

func (d *Director) newEnemyShot(x, y, angle float64) *Entity {
	c := d.cfg
	return &Entity{
		Kind: KindEnemyShot,
		Body: Body{
			X: x, Y: y,
			W: c.EnemyShotSize, H: c.EnemyShotSize,
			VX: math.Cos(angle) * c.EnemyShotSpeed,
			VY: math.Sin(angle) * c.EnemyShotSpeed,
		},
	}
}

// bossVolley fires BossShots projectiles fanned around the player direction.
func (d *Director) bossVolley(st *Store, b *Entity) int {
	c := d.cfg
	y := b.Y + b.H/2
	center := aimAt(st, b.X, y)
	fired := 0
	for i := 0; i < c.BossShots; i++ {
		a := center
		if c.BossShots > 1 {
			a += c.BossSpread * (float64(i)/float64(c.BossShots-1) - 0.5)
		}
		if st.add(d.newEnemyShot(b.X, y, a)) {
			fired++
		}
	}
	return fired
}

// enemyShot fires one loosely aimed projectile from e.
func (d *Director) enemyShot(st *Store, e *Entity) bool {
	c := d.cfg
	y := e.Y + c.EnemyShotOffsetY
	a := aimAt(st, e.X, y) + (d.rng.Float64()-0.5)*c.EnemyShotSpread
	return st.add(d.newEnemyShot(e.X, y, a))
}
