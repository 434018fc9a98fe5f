package main

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"arcade-server/arcade"
	"arcade-server/logger"
)

const (
	TickRate       = 60 // simulation ticks per second
	BroadcastRate  = 30 // state frames per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate

	maxSessions   = 100
	maxSpectators = 32
	maxNameLen    = 16
)

// SessionIdleTimeout is how long a session survives without a pilot.
var SessionIdleTimeout = 30 * time.Second

var (
	ErrTooManySessions   = errors.New("too many active sessions")
	ErrSessionNotFound   = errors.New("session not found")
	ErrTooManySpectators = errors.New("session has too many spectators")
)

// Watcher receives frames from a session. *Client implements it.
type Watcher interface {
	SendJSON(msg interface{})
	SendRaw(data []byte)
	SendBinary(data []byte)
}

// RunResult is the frozen outcome of one run.
type RunResult struct {
	SessionID string
	PlayerID  int64 // 0 for guests
	Pilot     string
	Score     int
	Distance  float64
	Kills     int
	Bosses    int
	Duration  float64 // seconds of game time
}

// RunRecorder persists a finished run and decorates the game-over message.
type RunRecorder func(RunResult) GameOverMsg

// Session is one pilot's run plus whoever watches it
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time

	mu         sync.Mutex
	game       *arcade.Game
	input      arcade.Input
	pilot      Watcher
	owner      int64 // account of the pilot, 0 for guests
	spectators map[Watcher]bool
	recorded   bool
	idleSince  time.Time
	ticks      uint64

	record   RunRecorder
	stop     chan struct{}
	stopOnce sync.Once
	log      *logrus.Entry
}

func newSession(id, name string, game *arcade.Game, record RunRecorder) *Session {
	return &Session{
		ID:         id,
		Name:       name,
		CreatedAt:  time.Now(),
		game:       game,
		spectators: make(map[Watcher]bool),
		record:     record,
		stop:       make(chan struct{}),
		log:        logger.Log.WithFields(logrus.Fields{"sid": id, "pilot": name}),
	}
}

// Run drives the game at TickRate until Stop
func (s *Session) Run() {
	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	dt := 1.0 / float64(TickRate)
	for {
		select {
		case <-ticker.C:
			s.tick(dt)
		case <-s.stop:
			return
		}
	}
}

// Stop terminates the tick loop
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Session) tick(dt float64) {
	s.mu.Lock()
	s.game.Update(dt, s.input)
	s.ticks++

	var events []EventMsg
	for _, e := range s.game.Events() {
		events = append(events, newEventMsg(e))
	}

	var result *RunResult
	if s.game.Phase() == arcade.PhaseGameOver && !s.recorded {
		s.recorded = true
		r := s.resultLocked()
		result = &r
	}

	var frame []byte
	if s.ticks%BroadcastEvery == 0 || result != nil {
		frame = s.encodeStateLocked()
	}
	watchers := s.watchersLocked()
	s.mu.Unlock()

	for _, ev := range events {
		data := encodeJSON(Envelope{T: MsgEvent, Data: ev})
		if data == nil {
			continue
		}
		for _, w := range watchers {
			w.SendRaw(data)
		}
	}
	if frame != nil {
		for _, w := range watchers {
			w.SendBinary(frame)
		}
	}
	if result != nil {
		s.finish(*result, watchers)
	}
}

// finish records the run outside the session lock and announces it.
func (s *Session) finish(r RunResult, watchers []Watcher) {
	msg := GameOverMsg{Score: r.Score, Distance: r.Distance, Kills: r.Kills, Bosses: r.Bosses}
	if s.record != nil {
		msg = s.record(r)
	}
	s.log.WithFields(logrus.Fields{
		"score": r.Score, "distance": r.Distance, "kills": r.Kills, "bosses": r.Bosses,
	}).Info("run over")
	for _, w := range watchers {
		w.SendJSON(Envelope{T: MsgGameOver, Data: msg})
	}
}

func (s *Session) resultLocked() RunResult {
	st := s.game.State()
	return RunResult{
		SessionID: s.ID,
		PlayerID:  s.owner,
		Pilot:     s.Name,
		Score:     st.FinalScore,
		Distance:  st.FinalDistance,
		Kills:     st.FinalKills,
		Bosses:    st.Bosses,
		Duration:  st.Elapsed,
	}
}

func (s *Session) encodeStateLocked() []byte {
	data, err := msgpack.Marshal(newStateMsg(s.game.Snapshot()))
	if err != nil {
		s.log.WithError(err).Error("encode state")
		return nil
	}
	return data
}

func (s *Session) watchersLocked() []Watcher {
	out := make([]Watcher, 0, len(s.spectators)+1)
	if s.pilot != nil {
		out = append(out, s.pilot)
	}
	for w := range s.spectators {
		out = append(out, w)
	}
	return out
}

// SetInput replaces the held input; it applies from the next tick.
func (s *Session) SetInput(w Watcher, in arcade.Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w == s.pilot {
		s.input = in
	}
}

// Restart starts a fresh run. Only the pilot may restart.
func (s *Session) Restart(w Watcher) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w != s.pilot {
		return false
	}
	s.game.Restart()
	s.input = arcade.Input{}
	s.recorded = false
	return true
}

// SetOwner attributes the run to an account.
func (s *Session) SetOwner(w Watcher, playerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w == s.pilot {
		s.owner = playerID
	}
}

func (s *Session) attachPilot(w Watcher, owner int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pilot = w
	s.owner = owner
}

func (s *Session) addSpectator(w Watcher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.spectators) >= maxSpectators {
		return ErrTooManySpectators
	}
	s.spectators[w] = true
	return nil
}

// detach drops w and reports whether the session lost its pilot.
func (s *Session) detach(w Watcher) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.spectators, w)
	if w == s.pilot {
		s.pilot = nil
		s.input = arcade.Input{}
		s.idleSince = time.Now()
		return true
	}
	return false
}

// abandoned reports whether the session has had no pilot for at least timeout.
func (s *Session) abandoned(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pilot == nil && time.Since(s.idleSince) >= timeout
}

// Info summarizes the session for listings
func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionInfo{
		ID:         s.ID,
		Name:       s.Name,
		Score:      s.game.Score(),
		Phase:      s.game.Phase().String(),
		Piloted:    s.pilot != nil,
		Spectators: len(s.spectators),
	}
}

// Snapshot copies the current game state
func (s *Session) Snapshot() arcade.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

func (s *Session) welcome(role string) WelcomeMsg {
	cfg := s.game.Config()
	return WelcomeMsg{
		SID:    s.ID,
		Role:   role,
		Name:   s.Name,
		Width:  cfg.WorldWidth,
		Height: cfg.WorldHeight,
		Lives:  cfg.Lives,
	}
}

// SessionManager handles creation, lookup and reaping of sessions
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfg    arcade.Config
	seed   func() uint32
	record RunRecorder
	onEnd  func(*Session)
}

// NewSessionManager builds sessions from cfg. seed supplies each new run's
// RNG seed; nil seeds from the clock.
func NewSessionManager(cfg arcade.Config, seed func() uint32) *SessionManager {
	if seed == nil {
		seed = func() uint32 { return uint32(time.Now().UnixNano()) }
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		seed:     seed,
	}
}

// CreateSession starts a new run piloted by w
func (sm *SessionManager) CreateSession(name string, w Watcher, owner int64) (*Session, error) {
	game, err := arcade.NewGame(sm.cfg, arcade.WithSeed(sm.seed()))
	if err != nil {
		return nil, err
	}

	sm.mu.Lock()
	if len(sm.sessions) >= maxSessions {
		sm.mu.Unlock()
		return nil, ErrTooManySessions
	}
	sess := newSession(GenerateUUID(), name, game, sm.record)
	sess.attachPilot(w, owner)
	sm.sessions[sess.ID] = sess
	sm.mu.Unlock()

	go sess.Run()
	sess.log.Info("session started")
	return sess, nil
}

// GetSession returns a session by ID, nil if unknown
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Spectate attaches a read-only watcher
func (sm *SessionManager) Spectate(id string, w Watcher) (*Session, error) {
	sess := sm.GetSession(id)
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if err := sess.addSpectator(w); err != nil {
		return nil, err
	}
	return sess, nil
}

// Detach removes w from a session. A session that lost its pilot is
// reaped once it stays unpiloted for SessionIdleTimeout.
func (sm *SessionManager) Detach(id string, w Watcher) {
	sess := sm.GetSession(id)
	if sess == nil {
		return
	}
	if sess.detach(w) {
		timeout := SessionIdleTimeout
		time.AfterFunc(timeout, func() { sm.reap(id, timeout) })
	}
}

func (sm *SessionManager) reap(id string, timeout time.Duration) {
	sm.mu.Lock()
	sess, ok := sm.sessions[id]
	if !ok || !sess.abandoned(timeout) {
		sm.mu.Unlock()
		return
	}
	delete(sm.sessions, id)
	sm.mu.Unlock()

	sess.Stop()
	sess.mu.Lock()
	watchers := sess.watchersLocked()
	sess.mu.Unlock()
	for _, w := range watchers {
		w.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "session ended"}})
	}
	sess.log.Info("session reaped")
	if sm.onEnd != nil {
		sm.onEnd(sess)
	}
}

// ListSessions returns info about all active sessions, oldest first
func (sm *SessionManager) ListSessions() []SessionInfo {
	sm.mu.RLock()
	all := make([]*Session, 0, len(sm.sessions))
	for _, sess := range sm.sessions {
		all = append(all, sess)
	}
	sm.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	list := make([]SessionInfo, 0, len(all))
	for _, sess := range all {
		list = append(list, sess.Info())
	}
	return list
}

// Count returns the number of live sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// StopAll halts every session loop
func (sm *SessionManager) StopAll() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for id, sess := range sm.sessions {
		sess.Stop()
		delete(sm.sessions, id)
	}
}

func encodeJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Log.WithError(err).Error("marshal")
		return nil
	}
	return data
}
