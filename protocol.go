package main

import (
	"encoding/json"

	"arcade-server/arcade"
)

// Client -> Server message types
const (
	MsgCreate   = "create"   // start a run as its pilot
	MsgSpectate = "spectate" // watch a run
	MsgCheck    = "check"    // check if session exists
	MsgList     = "list"     // list sessions
	MsgInput    = "input"
	MsgRestart  = "restart"
	MsgLeave    = "leave"
	MsgRegister = "register"
	MsgLogin    = "login"
	MsgAuth     = "auth"
	MsgProfile  = "profile"
	MsgScores   = "scores"
)

// Server -> Client message types
const (
	MsgState       = "state" // binary msgpack frames only
	MsgCreated     = "created"
	MsgWelcome     = "welcome"
	MsgSessions    = "sessions"
	MsgChecked     = "checked"
	MsgError       = "error"
	MsgAuthOK      = "auth_ok"
	MsgProfileData = "profile_data"
	MsgEvent       = "event"
	MsgGameOver    = "game_over"
)

// Binary input frame: [binaryInput, flags]
const (
	binaryInput byte = 0x01

	flagLeft  byte = 1 << 0
	flagRight byte = 1 << 1
	flagUp    byte = 1 << 2
	flagDown  byte = 1 << 3
	flagFire  byte = 1 << 4
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// ClientInput is the held-key state, each axis in {-1,0,1}
type ClientInput struct {
	MX   int  `json:"mx"`
	MY   int  `json:"my"`
	Fire bool `json:"fire"`
}

func (in ClientInput) toArcade() arcade.Input {
	return arcade.Input{MoveX: in.MX, MoveY: in.MY, Fire: in.Fire}
}

// decodeBinaryInput unpacks the two-byte input frame. Opposing keys cancel.
func decodeBinaryInput(flags byte) ClientInput {
	var in ClientInput
	if flags&flagLeft != 0 {
		in.MX--
	}
	if flags&flagRight != 0 {
		in.MX++
	}
	if flags&flagUp != 0 {
		in.MY--
	}
	if flags&flagDown != 0 {
		in.MY++
	}
	in.Fire = flags&flagFire != 0
	return in
}

// CreateMsg is sent when a player wants to start a run
type CreateMsg struct {
	Name string `json:"name"`
}

// SpectateMsg attaches a read-only viewer to a session
type SpectateMsg struct {
	SID string `json:"sid"`
}

// CheckMsg is sent by client to check if a session exists
type CheckMsg struct {
	SID string `json:"sid"`
}

// CheckedMsg is the response to a session check
type CheckedMsg struct {
	SID    string `json:"sid"`
	Exists bool   `json:"exists"`
	Name   string `json:"name,omitempty"`
}

// WelcomeMsg describes the arena to a freshly attached client
type WelcomeMsg struct {
	SID    string  `json:"sid"`
	Role   string  `json:"role"` // "pilot" or "spectator"
	Name   string  `json:"name"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
	Lives  int     `json:"lives"`
}

// SessionInfo is used in the session list
type SessionInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	Phase      string `json:"phase"`
	Piloted    bool   `json:"piloted"`
	Spectators int    `json:"spectators"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginMsg authenticates with username and password
type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMsg re-authenticates with a stored token
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"pid"`
}

// ProfileDataMsg carries lifetime stats of the authenticated player
type ProfileDataMsg struct {
	Username     string   `json:"username"`
	Level        int      `json:"level"`
	XP           int      `json:"xp"`
	Runs         int      `json:"runs"`
	Kills        int      `json:"kills"`
	Bosses       int      `json:"bosses"`
	BestScore    int      `json:"best"`
	Distance     float64  `json:"distance"`
	Playtime     float64  `json:"playtime"`
	Achievements []string `json:"achievements"`
}

// EventMsg forwards one tick event to the watchers
type EventMsg struct {
	Kind   string  `json:"k"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Points int     `json:"pts,omitempty"`
	Lives  int     `json:"lives,omitempty"`
	HP     int     `json:"hp,omitempty"`
}

func newEventMsg(e arcade.Event) EventMsg {
	return EventMsg{Kind: e.Kind.String(), X: e.X, Y: e.Y, Points: e.Points, Lives: e.Lives, HP: e.HP}
}

// GameOverMsg reports the frozen result of a run
type GameOverMsg struct {
	Score        int      `json:"score"`
	Distance     float64  `json:"distance"`
	Kills        int      `json:"kills"`
	Bosses       int      `json:"bosses"`
	XP           int      `json:"xp,omitempty"`
	Level        int      `json:"level,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// EntityMsg is one entity in a state frame
type EntityMsg struct {
	ID   uint64  `json:"id" msgpack:"id"`
	Kind uint8   `json:"k" msgpack:"k"`
	X    float64 `json:"x" msgpack:"x"`
	Y    float64 `json:"y" msgpack:"y"`
	W    float64 `json:"w" msgpack:"w"`
	H    float64 `json:"h" msgpack:"h"`
	HP   int     `json:"hp,omitempty" msgpack:"hp,omitempty"`
}

// StateMsg is the full state broadcast, msgpack-encoded in binary frames
type StateMsg struct {
	Tick     uint64      `json:"tick" msgpack:"tick"`
	Phase    string      `json:"ph" msgpack:"ph"`
	Score    int         `json:"sc" msgpack:"sc"`
	Lives    int         `json:"l" msgpack:"l"`
	Distance float64     `json:"d" msgpack:"d"`
	Kills    int         `json:"ki" msgpack:"ki"`
	Bosses   int         `json:"b" msgpack:"b"`
	BossHP   int         `json:"bhp" msgpack:"bhp"`
	HasBoss  bool        `json:"hb" msgpack:"hb"`
	Entities []EntityMsg `json:"e" msgpack:"e"`
}

func newStateMsg(s arcade.Snapshot) StateMsg {
	msg := StateMsg{
		Tick:     s.Tick,
		Phase:    s.Phase.String(),
		Score:    s.Score,
		Lives:    s.Lives,
		Distance: s.Distance,
		Kills:    s.Kills,
		Bosses:   s.Bosses,
		BossHP:   s.BossHP,
		HasBoss:  s.HasBoss,
		Entities: make([]EntityMsg, 0, len(s.Entities)),
	}
	for _, e := range s.Entities {
		msg.Entities = append(msg.Entities, EntityMsg{
			ID: e.ID, Kind: uint8(e.Kind),
			X: e.X, Y: e.Y, W: e.W, H: e.H,
			HP: e.HP,
		})
	}
	return msg
}

// LeaderboardEntry represents one row in the leaderboard
type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	Pilot    string  `json:"pilot"`
	Score    int     `json:"score"`
	Distance float64 `json:"distance"`
	Kills    int     `json:"kills"`
	Bosses   int     `json:"bosses"`
	When     string  `json:"when"`
}
