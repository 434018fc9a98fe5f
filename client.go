package main

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"arcade-server/logger"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 80
	leaderboardSize   = 10
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	sessionID  string
	isPilot    bool
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
	log        *logrus.Entry
	// Auth state
	authPlayerID int64  // 0 = guest
	authUsername string // "" = guest
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
		log:        logger.Log.WithField("remote", remoteAddr),
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("ws read")
			}
			break
		}

		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			c.log.Warn("rate limit exceeded, disconnecting")
			break
		}

		if msgType == websocket.BinaryMessage && len(message) == 2 && message[0] == binaryInput {
			c.handleInput(decodeBinaryInput(message[1]))
		} else {
			c.handleMessage(message)
		}
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF prefix marks a binary frame queued by SendBinary
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	c.SendRaw(encodeJSON(msg))
}

// SendRaw queues pre-marshaled text; a slow client just misses it.
func (c *Client) SendRaw(data []byte) {
	if data == nil {
		return
	}
	defer func() { recover() }() // send may be closed by the hub
	select {
	case c.send <- data:
	default:
	}
}

// SendBinary queues a binary frame behind a 0xFF marker byte
func (c *Client) SendBinary(data []byte) {
	if data == nil {
		return
	}
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

// sendFailure reports known failures verbatim and hides everything else.
func (c *Client) sendFailure(err error) {
	for _, known := range []error{
		ErrBadUsername, ErrBadPassword, ErrUsernameTaken, ErrBadCredentials,
		ErrTooManyAttempts, ErrInvalidToken, ErrTooManySessions, ErrSessionNotFound, ErrTooManySpectators,
	} {
		if errors.Is(err, known) {
			c.sendError(known.Error())
			return
		}
	}
	c.log.WithError(err).Error("request failed")
	c.sendError("internal error")
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.WithError(err).Debug("bad message")
		return
	}

	switch env.T {
	case MsgList:
		c.SendJSON(Envelope{T: MsgSessions, Data: c.hub.sessions.ListSessions()})
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgSpectate:
		c.handleSpectate(env.D)
	case MsgCheck:
		c.handleCheck(env.D)
	case MsgInput:
		var in ClientInput
		if err := json.Unmarshal(env.D, &in); err == nil {
			c.handleInput(in)
		}
	case MsgRestart:
		c.handleRestart()
	case MsgLeave:
		c.leave()
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgProfile:
		c.handleProfile()
	case MsgScores:
		c.handleScores()
	}
}

func (c *Client) session() *Session {
	if c.sessionID == "" {
		return nil
	}
	return c.hub.sessions.GetSession(c.sessionID)
}

func (c *Client) leave() {
	if c.sessionID == "" {
		return
	}
	c.hub.sessions.Detach(c.sessionID, c)
	c.sessionID = ""
	c.isPilot = false
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateMsg
	if len(data) > 0 {
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
	}
	name := cleanName(msg.Name, maxNameLen)
	if name == "" {
		name = c.authUsername
	}
	if name == "" {
		name = GenerateGuestName()
	}

	c.leave()
	sess, err := c.hub.sessions.CreateSession(name, c, c.authPlayerID)
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.sessionID = sess.ID
	c.isPilot = true
	c.hub.analytics.Track(EvtSessionStart, c.authPlayerID, sess.ID, nil)

	c.SendJSON(Envelope{T: MsgCreated, Data: map[string]string{"sid": sess.ID}})
	c.SendJSON(Envelope{T: MsgWelcome, Data: sess.welcome("pilot")})
}

func (c *Client) handleSpectate(data json.RawMessage) {
	var msg SpectateMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if msg.SID == c.sessionID && c.sessionID != "" {
		return
	}
	c.leave()
	sess, err := c.hub.sessions.Spectate(msg.SID, c)
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.sessionID = sess.ID
	c.SendJSON(Envelope{T: MsgWelcome, Data: sess.welcome("spectator")})
}

func (c *Client) handleCheck(data json.RawMessage) {
	var msg CheckMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sess := c.hub.sessions.GetSession(msg.SID)
	if sess == nil {
		c.SendJSON(Envelope{T: MsgChecked, Data: CheckedMsg{SID: msg.SID}})
		return
	}
	c.SendJSON(Envelope{T: MsgChecked, Data: CheckedMsg{SID: msg.SID, Exists: true, Name: sess.Name}})
}

func (c *Client) handleInput(in ClientInput) {
	if !c.isPilot {
		return
	}
	if sess := c.session(); sess != nil {
		sess.SetInput(c, in.toArcade())
	}
}

func (c *Client) handleRestart() {
	if !c.isPilot {
		return
	}
	sess := c.session()
	if sess == nil {
		return
	}
	if sess.Restart(c) {
		c.hub.analytics.Track(EvtRestart, c.authPlayerID, sess.ID, nil)
	}
}

// signedIn records the account on the connection and on a run it pilots.
func (c *Client) signedIn(id int64, username, token string) {
	if c.authPlayerID != 0 && c.authPlayerID != id {
		c.hub.SetOffline(c.authPlayerID, c)
	}
	c.authPlayerID = id
	c.authUsername = username
	c.hub.SetOnline(id, c)
	if c.isPilot {
		if sess := c.session(); sess != nil {
			sess.SetOwner(c, id)
		}
	}
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Token: token, Username: username, PlayerID: id}})
}

func (c *Client) handleRegister(data json.RawMessage) {
	if c.hub.auth == nil {
		c.sendError("accounts disabled")
		return
	}
	var msg RegisterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.hub.analytics.Track(EvtRegister, id, "", nil)
	c.signedIn(id, cleanName(msg.Username, maxUsernameLen), token)
}

func (c *Client) handleLogin(data json.RawMessage) {
	if c.hub.auth == nil {
		c.sendError("accounts disabled")
		return
	}
	var msg LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.hub.analytics.Track(EvtLogin, id, "", nil)
	c.signedIn(id, cleanName(msg.Username, maxUsernameLen), token)
}

func (c *Client) handleAuth(data json.RawMessage) {
	if c.hub.auth == nil {
		c.sendError("accounts disabled")
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.sendFailure(ErrInvalidToken)
		return
	}
	c.signedIn(id, username, msg.Token)
}

func (c *Client) handleProfile() {
	if c.hub.db == nil || c.authPlayerID == 0 {
		c.sendError("not authenticated")
		return
	}
	stats, err := c.hub.db.GetStats(c.authPlayerID)
	if err != nil {
		c.sendFailure(err)
		return
	}
	if stats == nil {
		c.sendError("profile not found")
		return
	}
	achievements, err := c.hub.db.GetAchievements(c.authPlayerID)
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.SendJSON(Envelope{T: MsgProfileData, Data: ProfileDataMsg{
		Username:     c.authUsername,
		Level:        stats.Level,
		XP:           stats.XP,
		Runs:         stats.Runs,
		Kills:        stats.Kills,
		Bosses:       stats.Bosses,
		BestScore:    stats.BestScore,
		Distance:     stats.Distance,
		Playtime:     stats.Playtime,
		Achievements: achievements,
	}})
}

func (c *Client) handleScores() {
	entries := []LeaderboardEntry{}
	if c.hub.db != nil {
		top, err := c.hub.db.TopRuns("score", leaderboardSize)
		if err != nil {
			c.sendFailure(err)
			return
		}
		entries = top
	}
	c.SendJSON(Envelope{T: MsgScores, Data: entries})
}
