package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/addressform/pkg/addressform"
)

// Live message operations.
const (
	opInput  = "input"
	opBlur   = "blur"
	opSubmit = "submit"
	opReset  = "reset"
)

// liveMessage is one client event on the live socket.
type liveMessage struct {
	Op    string `json:"op"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

// liveSession is the state of one live connection.
type liveSession struct {
	form *addressform.Form
	req  *http.Request
	ip   string
}

// handleLive upgrades to a WebSocket. The connection owns one form; every
// message is applied to it and answered with the refreshed error map.
// Submits share the per-IP budget of POST /submit.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	var ip string
	if s.limited() {
		if ip = clientIP(r, s.limiter.trusted); ip == "" {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if s.metrics != nil {
		s.metrics.ConnectionOpened()
		defer s.metrics.ConnectionClosed()
	}

	conn.SetReadLimit(s.config.MaxMessageSize)
	sess := &liveSession{form: s.newForm(), req: r, ip: ip}

	for {
		conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout))

		var msg liveMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("live connection closed", "error", err)
			}
			return
		}

		reply := s.applyLive(sess, msg)

		conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Debug("live write failed", "error", err)
			return
		}
	}
}

// applyLive applies one message to the session's form.
func (s *Server) applyLive(sess *liveSession, msg liveMessage) result {
	f := sess.form
	switch msg.Op {
	case opInput, opBlur:
		id, err := addressform.ParseFieldID(msg.Field)
		if err != nil {
			res := resultOf(f, false)
			res.Error = err.Error()
			return res
		}
		if msg.Op == opInput {
			f.Set(id, msg.Value)
		} else {
			f.Touch(id)
		}

	case opSubmit:
		if !s.allowLive(sess) {
			res := resultOf(f, false)
			res.Error = "rate limit exceeded"
			return res
		}
		ok, err := f.Submit(sess.req.Context())
		res := resultOf(f, ok)
		if err != nil {
			res.Error = "submission failed"
		}
		return res

	case opReset:
		f.Reset()

	default:
		res := resultOf(f, false)
		res.Error = "unknown op " + msg.Op
		return res
	}
	return resultOf(f, false)
}

// allowLive takes one token from the session's bucket, reporting a refusal
// the same way the HTTP limiter does.
func (s *Server) allowLive(sess *liveSession) bool {
	if !s.limited() || s.limiter.allow(sess.ip) {
		return true
	}
	if s.limiter.onReject != nil {
		s.limiter.onReject(sess.req, sess.ip)
	}
	return false
}

// limited reports whether form posts are rate limited.
func (s *Server) limited() bool {
	return s.limiter != nil && s.limiter.rate > 0
}
