package main

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"

	"arcade-server/logger"
)

const (
	qrSize          = 256
	maxLeaderboard  = 100
	statsWindowDays = 7
)

var uuidPathRe = regexp.MustCompile(`^/[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SetupRoutes configures HTTP routes
func SetupRoutes(hub *Hub, clientDir string) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, w, r)
	})
	r.HandleFunc("/qr/{sid}", func(w http.ResponseWriter, r *http.Request) {
		serveQR(hub, w, r)
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		serveLeaderboard(hub, w, r)
	}).Methods(http.MethodGet)
	api.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		serveStats(hub, w, r)
	}).Methods(http.MethodGet)

	// Serve static files with no-cache so browsers always revalidate
	fs := http.FileServer(http.Dir(clientDir))
	r.PathPrefix("/").Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		// SPA: a session URL opens the spectator view
		if r.URL.Path == "/" || uuidPathRe.MatchString(r.URL.Path) {
			http.ServeFile(w, r, filepath.Join(clientDir, "index.html"))
			return
		}
		fs.ServeHTTP(w, r)
	}))

	return r
}

func serveWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	ip := extractIP(r)
	if !hub.CanAccept(ip) {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).WithField("remote", ip).Warn("ws upgrade")
		return
	}

	hub.TrackConnect(ip)

	client := NewClient(hub, conn, ip)
	hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}

// spectateURL is the page a QR code points at for a session.
func spectateURL(r *http.Request, sid string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return (&url.URL{Scheme: scheme, Host: r.Host, Path: "/" + sid}).String()
}

func serveQR(hub *Hub, w http.ResponseWriter, r *http.Request) {
	sid := mux.Vars(r)["sid"]
	if hub.sessions.GetSession(sid) == nil {
		http.Error(w, ErrSessionNotFound.Error(), http.StatusNotFound)
		return
	}
	png, err := qrcode.Encode(spectateURL(r, sid), qrcode.Medium, qrSize)
	if err != nil {
		logger.Log.WithError(err).WithField("sid", sid).Error("qr encode")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("write json")
	}
}

func serveLeaderboard(hub *Hub, w http.ResponseWriter, r *http.Request) {
	limit := leaderboardSize
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		if n > maxLeaderboard {
			n = maxLeaderboard
		}
		limit = n
	}
	entries := []LeaderboardEntry{}
	if hub.db != nil {
		top, err := hub.db.TopRuns(r.URL.Query().Get("by"), limit)
		if err != nil {
			logger.Log.WithError(err).Error("leaderboard")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		entries = top
	}
	writeJSON(w, entries)
}

// StatsResponse is the /api/stats payload
type StatsResponse struct {
	Sessions    int            `json:"sessions"`
	Connections int            `json:"connections"`
	Online      int            `json:"online"`
	DAU         int            `json:"dau"`
	Runs        RunAnalytics   `json:"runs"`
	Events      map[string]int `json:"events"`
}

func serveStats(hub *Hub, w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Sessions:    hub.sessions.Count(),
		Connections: hub.TotalConns(),
		Online:      hub.OnlineCount(),
	}
	var err error
	if resp.DAU, err = hub.analytics.DAUCount(); err != nil {
		logger.Log.WithError(err).Warn("dau")
	}
	if resp.Runs, err = hub.analytics.RunStats(statsWindowDays); err != nil {
		logger.Log.WithError(err).Warn("run stats")
	}
	if resp.Events, err = hub.analytics.EventCounts(statsWindowDays); err != nil {
		logger.Log.WithError(err).Warn("event counts")
	}
	writeJSON(w, resp)
}
