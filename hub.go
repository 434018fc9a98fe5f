package main

import (
	"sync"

	"github.com/sirupsen/logrus"

	"arcade-server/arcade"
	"arcade-server/logger"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// Hub tracks connections and routes them to sessions
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	sessions   *SessionManager
	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
	// nil when running without a database
	db        *DB
	auth      *Auth
	analytics *Analytics
	// Online auth users: account ID -> *Client
	onlineMu    sync.RWMutex
	onlineUsers map[int64]*Client
}

// NewHub wires sessions built from cfg to the optional database.
func NewHub(db *DB, cfg arcade.Config, seed func() uint32) (*Hub, error) {
	h := &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client, 64),
		unregister:  make(chan *Client, 64),
		sessions:    NewSessionManager(cfg, seed),
		ipConns:     make(map[string]int),
		db:          db,
		analytics:   NewAnalytics(db),
		onlineUsers: make(map[int64]*Client),
	}
	if db != nil {
		auth, err := NewAuth(db)
		if err != nil {
			return nil, err
		}
		h.auth = auth
	}
	h.sessions.record = h.recordRun
	h.sessions.onEnd = func(s *Session) {
		h.analytics.Track(EvtSessionEnd, 0, s.ID, nil)
	}
	return h, nil
}

// recordRun persists a finished run: the run row always, stats and
// achievements only for signed-in pilots.
func (h *Hub) recordRun(r RunResult) GameOverMsg {
	msg := GameOverMsg{Score: r.Score, Distance: r.Distance, Kills: r.Kills, Bosses: r.Bosses}
	h.analytics.Track(EvtRunEnd, r.PlayerID, r.SessionID, map[string]interface{}{
		"score": r.Score, "distance": r.Distance, "kills": r.Kills, "bosses": r.Bosses, "duration": r.Duration,
	})
	if h.db == nil {
		return msg
	}
	log := logger.Log.WithFields(logrus.Fields{"sid": r.SessionID, "player": r.PlayerID})
	if _, err := h.db.RecordRun(r); err != nil {
		log.WithError(err).Error("record run")
		return msg
	}
	if r.PlayerID <= 0 {
		return msg
	}
	xp, level, err := h.db.UpdateStatsAfterRun(r.PlayerID, r)
	if err != nil {
		log.WithError(err).Error("update stats")
		return msg
	}
	msg.XP, msg.Level = xp, level
	for _, a := range CheckAchievements(h.db, r.PlayerID, r) {
		msg.Achievements = append(msg.Achievements, a.ID)
		h.analytics.Track(EvtAchievement, r.PlayerID, r.SessionID, map[string]string{"id": a.ID})
	}
	return msg
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	return h.ipConns[ip] < maxConnsPerIP
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			// leave the session first so its ticker stops addressing the client
			if client.sessionID != "" {
				h.sessions.Detach(client.sessionID, client)
			}
			if client.authPlayerID != 0 {
				h.SetOffline(client.authPlayerID, client)
			}
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		}
	}
}

// Shutdown stops every session and flushes analytics
func (h *Hub) Shutdown() {
	h.sessions.StopAll()
	h.analytics.Stop()
}

// SetOnline marks an authenticated user as online
func (h *Hub) SetOnline(playerID int64, client *Client) {
	h.onlineMu.Lock()
	defer h.onlineMu.Unlock()
	h.onlineUsers[playerID] = client
}

// SetOffline forgets the user unless a newer connection took over.
func (h *Hub) SetOffline(playerID int64, client *Client) {
	h.onlineMu.Lock()
	defer h.onlineMu.Unlock()
	if h.onlineUsers[playerID] == client {
		delete(h.onlineUsers, playerID)
	}
}

// OnlineCount returns the number of signed-in connections
func (h *Hub) OnlineCount() int {
	h.onlineMu.RLock()
	defer h.onlineMu.RUnlock()
	return len(h.onlineUsers)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
