package arcade

// Store holds the live entities in insertion order. Removal only marks an
// entity dead; compact drops the dead once per tick.
type Store struct {
	Player     *Entity
	Boss       *Entity
	Shots      []*Entity
	EnemyShots []*Entity
	Enemies    []*Entity

	capacity int
	nextID   uint64
}

func newStore(capacity int) *Store {
	return &Store{capacity: capacity}
}

// Live counts non-player entities that are still alive.
func (s *Store) Live() int {
	n := 0
	for _, list := range [][]*Entity{s.Shots, s.EnemyShots, s.Enemies} {
		for _, e := range list {
			if e.Alive() {
				n++
			}
		}
	}
	if s.Boss.Alive() {
		n++
	}
	return n
}

func (s *Store) full() bool {
	return s.capacity > 0 && s.Live() >= s.capacity
}

// add appends e to its kind's set. It returns false when capacity is
// exhausted or a singleton slot is taken; the request is simply dropped.
func (s *Store) add(e *Entity) bool {
	if e.Kind != KindPlayer && s.full() {
		return false
	}
	switch e.Kind {
	case KindPlayer:
		if s.Player.Alive() {
			return false
		}
		s.Player = e
	case KindBoss:
		if s.Boss.Alive() {
			return false
		}
		s.Boss = e
	case KindShot:
		s.Shots = append(s.Shots, e)
	case KindEnemyShot:
		s.EnemyShots = append(s.EnemyShots, e)
	case KindEnemy:
		s.Enemies = append(s.Enemies, e)
	}
	s.nextID++
	e.ID = s.nextID
	e.PrevX, e.PrevY = e.X, e.Y
	return true
}

// remove marks e destroyed. A destroyed boss is unlinked at once.
func (s *Store) remove(e *Entity) {
	e.kill()
	if e == s.Boss {
		s.Boss = nil
	}
}

// each visits every live entity, player first.
func (s *Store) each(fn func(e *Entity)) {
	if s.Player.Alive() {
		fn(s.Player)
	}
	if s.Boss.Alive() {
		fn(s.Boss)
	}
	for _, list := range [][]*Entity{s.Enemies, s.Shots, s.EnemyShots} {
		for _, e := range list {
			if e.Alive() {
				fn(e)
			}
		}
	}
}

func compactList(list []*Entity) []*Entity {
	out := list[:0]
	for _, e := range list {
		if e.Alive() {
			out = append(out, e)
		}
	}
	for i := len(out); i < len(list); i++ {
		list[i] = nil
	}
	return out
}

// compact filters out everything marked dead, preserving order.
func (s *Store) compact() {
	s.Shots = compactList(s.Shots)
	s.EnemyShots = compactList(s.EnemyShots)
	s.Enemies = compactList(s.Enemies)
	if !s.Boss.Alive() {
		s.Boss = nil
	}
}

// clearEnemies removes every normal enemy without scoring.
func (s *Store) clearEnemies() {
	for _, e := range s.Enemies {
		e.kill()
	}
	s.Enemies = s.Enemies[:0]
}

func (s *Store) clear() {
	s.Player = nil
	s.Boss = nil
	s.Shots = nil
	s.EnemyShots = nil
	s.Enemies = nil
	s.nextID = 0
}
