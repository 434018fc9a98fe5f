package main

import (
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"arcade-server/logger"
)

// Event types for analytics tracking
const (
	EvtSessionStart = "session_start"
	EvtSessionEnd   = "session_end"
	EvtRunEnd       = "run_end"
	EvtRestart      = "restart"
	EvtBossDefeated = "boss_defeated"
	EvtAchievement  = "achievement"
	EvtRegister     = "register"
	EvtLogin        = "login"
)

const (
	analyticsBuffer     = 1024
	analyticsBatch      = 50
	analyticsFlushEvery = 5 * time.Second
)

// AnalyticsEvent represents a single trackable event
type AnalyticsEvent struct {
	Type      string
	PlayerID  int64
	SessionID string
	Data      string // JSON metadata (optional)
	Timestamp time.Time
}

// Analytics batches events into analytics_events from a background writer
type Analytics struct {
	db       *DB
	events   chan AnalyticsEvent
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewAnalytics creates and starts the background writer. A nil db discards events.
func NewAnalytics(db *DB) *Analytics {
	a := &Analytics{
		db:     db,
		events: make(chan AnalyticsEvent, analyticsBuffer),
		stop:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event without blocking. data is marshalled to JSON when non-nil.
func (a *Analytics) Track(evtType string, playerID int64, sessionID string, data interface{}) {
	evt := AnalyticsEvent{
		Type:      evtType,
		PlayerID:  playerID,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	}
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			evt.Data = string(b)
		}
	}
	select {
	case <-a.stop:
		return
	default:
	}
	select {
	case a.events <- evt:
	default:
		// full: drop rather than stall a session tick
	}
}

// Stop flushes what is queued and waits for the writer to exit
func (a *Analytics) Stop() {
	a.stopOnce.Do(func() { close(a.stop) })
	a.wg.Wait()
}

func (a *Analytics) writer() {
	defer a.wg.Done()

	batch := make([]AnalyticsEvent, 0, analyticsBatch)
	ticker := time.NewTicker(analyticsFlushEvery)
	defer ticker.Stop()

	for {
		select {
		case evt := <-a.events:
			batch = append(batch, evt)
			if len(batch) >= analyticsBatch {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-a.stop:
			for {
				select {
				case evt := <-a.events:
					batch = append(batch, evt)
				default:
					a.flush(batch)
					return
				}
			}
		}
	}
}

func (a *Analytics) flush(events []AnalyticsEvent) {
	if a.db == nil || len(events) == 0 {
		return
	}
	log := logger.Log.WithField("component", "analytics")
	tx, err := a.db.conn.Begin()
	if err != nil {
		log.WithError(err).Error("begin tx")
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO analytics_events (event_type, player_id, session_id, data, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		log.WithError(err).Error("prepare insert")
		return
	}
	defer stmt.Close()

	for _, evt := range events {
		pid := sql.NullInt64{Int64: evt.PlayerID, Valid: evt.PlayerID > 0}
		sid := sql.NullString{String: evt.SessionID, Valid: evt.SessionID != ""}
		data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
		if _, err := stmt.Exec(evt.Type, pid, sid, data, evt.Timestamp.Format(time.RFC3339)); err != nil {
			log.WithError(err).WithField("event", evt.Type).Warn("insert event")
		}
	}
	if err := tx.Commit(); err != nil {
		log.WithError(err).Error("commit")
	}
}

// DAUCount returns number of distinct players active today
func (a *Analytics) DAUCount() (int, error) {
	if a.db == nil {
		return 0, nil
	}
	var count int
	err := a.db.conn.QueryRow(`
		SELECT COUNT(DISTINCT player_id) FROM analytics_events
		WHERE player_id IS NOT NULL AND created_at >= date('now')
	`).Scan(&count)
	return count, err
}

// EventCounts returns counts of each event type for the last N days
func (a *Analytics) EventCounts(days int) (map[string]int, error) {
	result := make(map[string]int)
	if a.db == nil {
		return result, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM analytics_events
		WHERE created_at >= date('now', '-' || ? || ' days')
		GROUP BY event_type
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			return nil, err
		}
		result[evtType] = count
	}
	return result, rows.Err()
}

// RunStats aggregates finished runs over the last N days
func (a *Analytics) RunStats(days int) (RunAnalytics, error) {
	var ra RunAnalytics
	if a.db == nil {
		return ra, nil
	}
	var avgScore, avgDuration sql.NullFloat64
	var best sql.NullInt64
	err := a.db.conn.QueryRow(`
		SELECT COUNT(*), AVG(score), MAX(score), AVG(duration) FROM runs
		WHERE created_at >= datetime('now', '-' || ? || ' days')
	`, days).Scan(&ra.Count, &avgScore, &best, &avgDuration)
	ra.AvgScore = avgScore.Float64
	ra.BestScore = int(best.Int64)
	ra.AvgDuration = avgDuration.Float64
	return ra, err
}

// RunAnalytics holds aggregated run statistics
type RunAnalytics struct {
	Count       int     `json:"count"`
	AvgScore    float64 `json:"avg_score"`
	BestScore   int     `json:"best_score"`
	AvgDuration float64 `json:"avg_duration"`
}
