// Package arcade is the simulation core of the shooter: a delta-driven,
// single-threaded tick that spawns, moves, collides and scores entities.
// It performs no I/O and never blocks; the host samples input, calls
// Update once per frame and reads snapshots in between.
package arcade

import (
	"fmt"
	"math"
)

// Input is the point-in-time intent sampled at the start of a tick.
// Move components are read by sign only.
type Input struct {
	MoveX int
	MoveY int
	Fire  bool
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func (in Input) normalized() Input {
	return Input{MoveX: sign(in.MoveX), MoveY: sign(in.MoveY), Fire: in.Fire}
}

// Option customises a Game at construction.
type Option func(*Game)

// WithRand substitutes the random source used for spawns and aim jitter.
func WithRand(src Source) Option {
	return func(g *Game) {
		g.rng = src
	}
}

// WithSeed seeds the default generator so runs replay identically.
func WithSeed(seed uint32) Option {
	return func(g *Game) {
		g.rng = NewMulberry32(seed)
	}
}

// Game is one run of the simulation.
type Game struct {
	cfg      Config
	rng      Source
	state    GameState
	store    *Store
	director *Director
	events   []Event
}

// NewGame validates cfg and builds a game ready to play.
func NewGame(cfg Config, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	g := &Game{cfg: cfg}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = NewMulberry32(1)
	}
	g.store = newStore(cfg.MaxEntities)
	g.director = newDirector(&g.cfg, g.rng)
	g.Restart()
	return g, nil
}

// Restart resets every counter and empties the store.
func (g *Game) Restart() {
	g.state = newGameState(&g.cfg)
	g.store.clear()
	g.director.reset()
	g.events = g.events[:0]
	g.store.add(&Entity{
		Kind: KindPlayer,
		Body: Body{X: g.cfg.PlayerStartX, Y: g.cfg.PlayerStartY, W: g.cfg.PlayerWidth, H: g.cfg.PlayerHeight},
	})
}

func validDelta(dt float64) bool {
	return dt > 0 && !math.IsNaN(dt) && !math.IsInf(dt, 0)
}

// Update advances the simulation by dt seconds. Invalid deltas and ticks
// after GameOver leave the state untouched.
func (g *Game) Update(dt float64, in Input) {
	g.events = g.events[:0]
	if !validDelta(dt) || g.state.Phase != PhasePlaying {
		return
	}
	in = in.normalized()
	gs := &g.state
	gs.Tick++
	gs.Elapsed += dt
	now := gs.Elapsed

	if p := g.store.Player; p.Alive() {
		steerPlayer(p, in, g.cfg.PlayerSpeed)
		if in.Fire {
			g.fire(p, now)
		}
	}

	g.director.update(g.store, gs, dt, now, &g.events)
	integrate(&g.cfg, g.store, dt, now)

	if n := gs.Advance(&g.cfg, g.cfg.ScrollSpeed*dt); n > 0 {
		g.events = append(g.events, Event{Kind: EventMilestone, Points: n * g.cfg.ScoreMilestone})
	}

	resolve(&g.cfg, g.store, gs, now, &g.events)
	g.store.compact()
}

// fire launches a volley if the cooldown has elapsed. Side shots join once
// the score crosses SideShotScore.
func (g *Game) fire(p *Entity, now float64) {
	c := &g.cfg
	if now-g.state.LastShotAt < c.FireCooldown {
		return
	}
	g.state.LastShotAt = now
	y := p.Y - c.ShotOffsetY
	g.store.add(g.newShot(p.X, y, 0))
	if c.SideShotScore > 0 && g.state.Score >= c.SideShotScore {
		g.store.add(g.newShot(p.X, y, -c.SideShotVX))
		g.store.add(g.newShot(p.X, y, c.SideShotVX))
	}
}

func (g *Game) newShot(x, y, vx float64) *Entity {
	return &Entity{
		Kind: KindShot,
		Body: Body{X: x, Y: y, W: g.cfg.ShotWidth, H: g.cfg.ShotHeight, VX: vx, VY: -g.cfg.ShotSpeed},
	}
}

// Config returns the tuning the game was built with.
func (g *Game) Config() Config { return g.cfg }

// Phase returns the machine state.
func (g *Game) Phase() Phase { return g.state.Phase }

// Score returns the current score.
func (g *Game) Score() int { return g.state.Score }

// Lives returns the remaining lives.
func (g *Game) Lives() int { return g.state.Lives }

// Distance returns the distance travelled.
func (g *Game) Distance() float64 { return g.state.Distance }

// Kills returns the number of enemies destroyed.
func (g *Game) Kills() int { return g.state.Kills }

// State returns a copy of every counter.
func (g *Game) State() GameState { return g.state }

// BossHealth returns the boss HP and whether a boss is alive.
func (g *Game) BossHealth() (int, bool) {
	if b := g.store.Boss; b.Alive() {
		return b.HP, true
	}
	return 0, false
}

// Events returns what happened during the last Update. The slice is reused
// by the next Update.
func (g *Game) Events() []Event { return g.events }

// EntityState is a read-only copy of one entity.
type EntityState struct {
	ID   uint64
	Kind Kind
	X, Y float64
	W, H float64
	HP   int
}

// Snapshot is a value copy of everything a renderer needs.
type Snapshot struct {
	Phase    Phase
	Tick     uint64
	Elapsed  float64
	Score    int
	Lives    int
	Distance float64
	Kills    int
	Bosses   int
	BossHP   int
	HasBoss  bool
	Entities []EntityState
}

// Snapshot copies the current state. Call it between ticks only.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Phase:    g.state.Phase,
		Tick:     g.state.Tick,
		Elapsed:  g.state.Elapsed,
		Score:    g.state.Score,
		Lives:    g.state.Lives,
		Distance: g.state.Distance,
		Kills:    g.state.Kills,
		Bosses:   g.state.Bosses,
	}
	s.BossHP, s.HasBoss = g.BossHealth()
	s.Entities = make([]EntityState, 0, g.store.Live()+1)
	g.store.each(func(e *Entity) {
		s.Entities = append(s.Entities, EntityState{
			ID: e.ID, Kind: e.Kind,
			X: e.X, Y: e.Y, W: e.W, H: e.H,
			HP: e.HP,
		})
	})
	return s
}
