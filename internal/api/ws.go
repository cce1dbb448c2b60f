package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/DrSkyle/avtan/pkg/kv"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
	sendBufferSize = 64
)

// wsRequest is one key-value operation sent over the socket.
type wsRequest struct {
	ID    string `json:"id,omitempty"`
	Op    string `json:"op"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
	TTL   string `json:"ttl,omitempty"`
}

type wsResponse struct {
	ID    string   `json:"id,omitempty"`
	OK    bool     `json:"ok"`
	Value *string  `json:"value,omitempty"`
	Keys  []string `json:"keys,omitempty"`
	Error string   `json:"error,omitempty"`
}

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(s.origins, "*") || slices.Contains(s.origins, origin)
		},
	}
}

// kvSocket serves the key-value store over a WebSocket. Every text frame
// is a wsRequest and is answered with exactly one wsResponse.
func (s *Server) kvSocket(w http.ResponseWriter, r *http.Request) {
	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		s.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	sess := &wsSession{
		conn:   conn,
		store:  s.kv,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: s.logger.With("conn", middleware.GetReqID(r.Context())),
	}
	s.metrics.wsConnections.Inc()
	defer s.metrics.wsConnections.Dec()

	go sess.writePump()
	sess.readPump(r.Context())
}

type wsSession struct {
	conn   *websocket.Conn
	store  kv.Store
	send   chan []byte
	done   chan struct{}
	logger *slog.Logger
}

func (c *wsSession) readPump(ctx context.Context) {
	defer close(c.send)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			c.reply(wsResponse{Error: "binary frames are not supported"})
			continue
		}
		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			c.reply(wsResponse{Error: "malformed request: " + err.Error()})
			continue
		}
		c.reply(c.handle(ctx, req))
	}
}

func (c *wsSession) handle(ctx context.Context, req wsRequest) wsResponse {
	resp := wsResponse{ID: req.ID}
	var err error
	switch req.Op {
	case "add":
		var ttl time.Duration
		if req.TTL != "" {
			if ttl, err = time.ParseDuration(req.TTL); err != nil || ttl < 0 {
				resp.Error = "bad ttl: " + req.TTL
				return resp
			}
		}
		err = c.store.Add(ctx, req.Key, req.Value, ttl)
	case "get":
		var v string
		if v, err = c.store.Get(ctx, req.Key); err == nil {
			resp.Value = &v
		}
	case "update":
		err = c.store.Update(ctx, req.Key, req.Value)
	case "remove":
		err = c.store.Remove(ctx, req.Key)
	case "keys":
		resp.Keys, err = c.store.Keys(ctx)
	default:
		err = errors.New("unknown op " + req.Op)
	}
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.OK = true
	return resp
}

func (c *wsSession) reply(resp wsResponse) {
	b, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("encode websocket reply", "error", err)
		return
	}
	select {
	case c.send <- b:
	case <-c.done:
	}
}

func (c *wsSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Warn("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
