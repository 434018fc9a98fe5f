package main

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"arcade-server/logger"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// PlayerRow represents an account
type PlayerRow struct {
	ID        int64
	Username  string
	PassHash  string
	CreatedAt time.Time
}

// StatsRow holds lifetime totals for an account
type StatsRow struct {
	PlayerID   int64
	Runs       int
	Kills      int
	Bosses     int
	BestScore  int
	TotalScore int
	Distance   float64
	Playtime   float64 // seconds
	XP         int
	Level      int
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", path, err)
	}
	// pragmas below are per connection
	conn.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stats (
		player_id INTEGER PRIMARY KEY REFERENCES players(id),
		runs INTEGER NOT NULL DEFAULT 0,
		kills INTEGER NOT NULL DEFAULT 0,
		bosses INTEGER NOT NULL DEFAULT 0,
		best_score INTEGER NOT NULL DEFAULT 0,
		total_score INTEGER NOT NULL DEFAULT 0,
		distance REAL NOT NULL DEFAULT 0,
		playtime REAL NOT NULL DEFAULT 0,
		xp INTEGER NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		player_id INTEGER REFERENCES players(id),
		session_id TEXT NOT NULL,
		pilot TEXT NOT NULL DEFAULT '',
		score INTEGER NOT NULL DEFAULT 0,
		distance REAL NOT NULL DEFAULT 0,
		kills INTEGER NOT NULL DEFAULT 0,
		bosses INTEGER NOT NULL DEFAULT 0,
		duration REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS achievements (
		player_id INTEGER NOT NULL REFERENCES players(id),
		achievement_id TEXT NOT NULL,
		unlocked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (player_id, achievement_id)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS analytics_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		player_id INTEGER,
		session_id TEXT,
		data TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_score ON runs(score);
	CREATE INDEX IF NOT EXISTS idx_runs_player ON runs(player_id);
	CREATE INDEX IF NOT EXISTS idx_analytics_created ON analytics_events(created_at);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		logger.Log.WithError(err).Error("db migration failed")
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// CreatePlayer creates a new account with an empty stats row
func (db *DB) CreatePlayer(username, passHash string) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec("INSERT INTO players (username, pass_hash) VALUES (?, ?)", username, passHash)
	if err != nil {
		return 0, fmt.Errorf("insert player: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec("INSERT INTO stats (player_id) VALUES (?)", id); err != nil {
		return 0, fmt.Errorf("insert stats: %w", err)
	}
	return id, tx.Commit()
}

// UsernameExists checks if a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM players WHERE username = ?", username).Scan(&count)
	return count > 0, err
}

// GetPlayerByUsername returns nil, nil when no such account exists
func (db *DB) GetPlayerByUsername(username string) (*PlayerRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, created_at FROM players WHERE username = ?",
		username,
	)
	p := &PlayerRow{}
	err := row.Scan(&p.ID, &p.Username, &p.PassHash, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// GetStats returns lifetime stats, nil, nil for unknown players
func (db *DB) GetStats(playerID int64) (*StatsRow, error) {
	row := db.conn.QueryRow(`
		SELECT player_id, runs, kills, bosses, best_score, total_score, distance, playtime, xp, level
		FROM stats WHERE player_id = ?`,
		playerID,
	)
	s := &StatsRow{}
	err := row.Scan(&s.PlayerID, &s.Runs, &s.Kills, &s.Bosses, &s.BestScore, &s.TotalScore,
		&s.Distance, &s.Playtime, &s.XP, &s.Level)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// XPForLevel returns the total XP required to reach a given level.
// Level 1 requires 0 XP, level 2 requires 100, etc.
// Formula: sum of 100 * i^1.5 for i in 1..level-1
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	total := 0.0
	for i := 1; i < level; i++ {
		total += 100.0 * math.Pow(float64(i), 1.5)
	}
	return int(total)
}

// CalculateLevel returns the level for a given total XP amount
func CalculateLevel(totalXP int) int {
	level := 1
	for level < 100 && totalXP >= XPForLevel(level+1) {
		level++
	}
	return level
}

// RunXP is the experience a finished run is worth.
func RunXP(r RunResult) int {
	return r.Score/10 + r.Bosses*50
}

// RecordRun stores a finished run and returns its ID
func (db *DB) RecordRun(r RunResult) (int64, error) {
	pid := sql.NullInt64{Int64: r.PlayerID, Valid: r.PlayerID > 0}
	res, err := db.conn.Exec(`
		INSERT INTO runs (player_id, session_id, pilot, score, distance, kills, bosses, duration)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		pid, r.SessionID, r.Pilot, r.Score, r.Distance, r.Kills, r.Bosses, r.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// UpdateStatsAfterRun folds a run into the player's totals.
// Returns (newXP, newLevel) for client notification.
func (db *DB) UpdateStatsAfterRun(playerID int64, r RunResult) (int, int, error) {
	_, err := db.conn.Exec(`
		UPDATE stats SET
			runs = runs + 1,
			kills = kills + ?,
			bosses = bosses + ?,
			best_score = MAX(best_score, ?),
			total_score = total_score + ?,
			distance = distance + ?,
			playtime = playtime + ?,
			xp = xp + ?
		WHERE player_id = ?`,
		r.Kills, r.Bosses, r.Score, r.Score, r.Distance, r.Duration, RunXP(r), playerID,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("update stats: %w", err)
	}

	var totalXP int
	if err := db.conn.QueryRow("SELECT xp FROM stats WHERE player_id = ?", playerID).Scan(&totalXP); err != nil {
		return 0, 0, err
	}
	level := CalculateLevel(totalXP)
	_, err = db.conn.Exec("UPDATE stats SET level = ? WHERE player_id = ?", level, playerID)
	return totalXP, level, err
}

// TopRuns returns the best runs sorted by the given field
func (db *DB) TopRuns(orderBy string, limit int) ([]LeaderboardEntry, error) {
	// Whitelist valid order columns
	validCols := map[string]string{
		"score": "r.score", "kills": "r.kills", "bosses": "r.bosses", "distance": "r.distance",
	}
	col, ok := validCols[orderBy]
	if !ok {
		col = "r.score"
	}

	query := `SELECT COALESCE(p.username, r.pilot), r.score, r.distance, r.kills, r.bosses, r.created_at
		FROM runs r LEFT JOIN players p ON p.id = r.player_id
		ORDER BY ` + col + ` DESC, r.id ASC LIMIT ?`

	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		var at time.Time
		if err := rows.Scan(&e.Pilot, &e.Score, &e.Distance, &e.Kills, &e.Bosses, &at); err != nil {
			return nil, err
		}
		e.Rank = len(result) + 1
		e.When = at.UTC().Format(time.RFC3339)
		result = append(result, e)
	}
	return result, rows.Err()
}

// GetAchievements returns the IDs a player has unlocked
func (db *DB) GetAchievements(playerID int64) ([]string, error) {
	rows, err := db.conn.Query(
		"SELECT achievement_id FROM achievements WHERE player_id = ? ORDER BY unlocked_at, achievement_id",
		playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UnlockAchievement reports whether the achievement was newly unlocked
func (db *DB) UnlockAchievement(playerID int64, id string) (bool, error) {
	res, err := db.conn.Exec(
		"INSERT OR IGNORE INTO achievements (player_id, achievement_id) VALUES (?, ?)",
		playerID, id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetSetting returns "" for missing keys
func (db *DB) GetSetting(key string) string {
	var v string
	if err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v); err != nil {
		return ""
	}
	return v
}

// SetSetting upserts a key
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}
