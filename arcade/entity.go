package arcade

// Kind tags an entity variant.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindShot
	KindEnemy
	KindEnemyShot
	KindBoss
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindShot:
		return "shot"
	case KindEnemy:
		return "enemy"
	case KindEnemyShot:
		return "enemy_shot"
	case KindBoss:
		return "boss"
	}
	return "unknown"
}

// Body is the transform shared by every variant. X,Y is the centre.
type Body struct {
	X, Y   float64
	W, H   float64
	VX, VY float64
}

// Sway is a sinusoidal horizontal offset around BaseX. Zero Amplitude disables it.
type Sway struct {
	BaseX     float64
	Amplitude float64
	Speed     float64 // radians/second
	Phase     float64
}

// Entity is one live object of any kind.
type Entity struct {
	ID   uint64
	Kind Kind
	Body

	// position before the last integration, used for swept projectile tests
	PrevX, PrevY float64

	Sway   Sway
	HP     int
	FireAt float64 // 0 = never fires

	// boss only
	Hovering   bool
	HoverSince float64

	dead bool
}

// Alive reports whether the entity still takes part in the tick.
func (e *Entity) Alive() bool {
	return e != nil && !e.dead
}

func (e *Entity) kill() {
	e.dead = true
}

// margins beyond the visible area after which an entity is culled.
type margins struct {
	Top, Bottom, Side float64
	Cull              bool
}

// traits is indexed by Kind.
var traits = [...]margins{
	KindPlayer:    {Cull: false},
	KindShot:      {Top: 80, Bottom: 80, Side: 80, Cull: true},
	KindEnemy:     {Top: 600, Bottom: 140, Side: 260, Cull: true},
	KindEnemyShot: {Top: 40, Bottom: 40, Side: 40, Cull: true},
	KindBoss:      {Cull: false},
}

// outside reports whether e has left the world by more than its kind's margin.
func outside(e *Entity, w, h float64) bool {
	m := traits[e.Kind]
	if !m.Cull {
		return false
	}
	return e.Y < -m.Top || e.Y > h+m.Bottom || e.X < -m.Side || e.X > w+m.Side
}
