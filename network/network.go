package network

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"colony/game"
	"colony/protocol"
	"colony/room"
)

const (
	readLimit    = 1 << 16
	pongWait     = 60 * time.Second
	pingEvery    = 25 * time.Second
	writeWait    = 10 * time.Second
	helloWait    = 10 * time.Second
	inboxTimeout = 2 * time.Second
)

type Options struct {
	AllowedOrigins     []string
	PurchasesPerSecond float64
	PurchaseBurst      int
	Catalog            *game.Catalog // served at /api/catalog
	Logger             *slog.Logger
}

// Server exposes match rooms over HTTP and websockets.
type Server struct {
	manager  *room.Manager
	opts     Options
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewServer(manager *room.Manager, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.PurchasesPerSecond <= 0 {
		opts.PurchasesPerSecond = 5
	}
	if opts.PurchaseBurst <= 0 {
		opts.PurchaseBurst = 5
	}
	if opts.Catalog == nil {
		opts.Catalog = game.DefaultCatalog()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		manager: manager,
		opts:    opts,
		log:     log.With("component", "network"),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}
	return s
}

// Handler returns the CORS-wrapped HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	mux.HandleFunc("GET /api/rooms", s.handleListRooms)
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /ws", s.handleWS)

	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(mux)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.opts.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Catalog)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.ListRooms())
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	rm, err := s.manager.CreateRoom()
	if err != nil {
		s.log.Error("create room failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, protocol.Error{Code: protocol.CodeInternal, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, room.RoomInfo{
		Code:    rm.Code,
		MatchID: rm.ID,
		Status:  rm.Status().String(),
	})
}

// wsConn serializes writes; gorilla allows one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func (c *wsConn) sendError(seq int, code, msg string) {
	b, err := protocol.Encode(protocol.MsgError, protocol.Error{Seq: seq, Code: code, Message: msg})
	if err != nil {
		return
	}
	_ = c.Send(b)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	rm := s.manager.GetRoom(r.URL.Query().Get("room"))
	if rm == nil {
		http.Error(w, "unknown room", http.StatusNotFound)
		return
	}

	// Upgrade HTTP -> WebSocket
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", "error", err)
		return
	}
	wc := &wsConn{conn: conn}
	defer wc.Close()

	// Basic timeouts + pong handling (keeps connections healthy)
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(helloWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	hello, err := readHello(conn)
	if err != nil {
		wc.sendError(0, protocol.CodeBadRequest, err.Error())
		return
	}

	reply := make(chan room.JoinResult, 1)
	if !enqueue(rm, room.Join{Conn: wc, Player: hello.Player, Reply: reply}) {
		wc.sendError(0, protocol.CodeInternal, "room not responding")
		return
	}
	var res room.JoinResult
	select {
	case res = <-reply:
	case <-time.After(inboxTimeout):
		wc.sendError(0, protocol.CodeInternal, "room not responding")
		return
	}
	if res.Err != nil {
		wc.sendError(0, room.ErrorCode(res.Err), res.Err.Error())
		return
	}
	log := s.log.With("room", rm.Code, "client", res.ClientID, "player", hello.Player)
	log.Info("websocket session started")
	defer func() {
		enqueue(rm, room.Leave{ClientID: res.ClientID})
		log.Info("websocket session ended")
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := wc.ping(); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	limiter := rate.NewLimiter(rate.Limit(s.opts.PurchasesPerSecond), s.opts.PurchaseBurst)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Debug("read ended", "error", err)
			return
		}
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			wc.sendError(0, protocol.CodeBadRequest, err.Error())
			continue
		}
		switch env.T {
		case protocol.MsgPurchase:
			p, err := protocol.DecodePayload[protocol.Purchase](env)
			if err != nil {
				wc.sendError(0, protocol.CodeBadRequest, err.Error())
				continue
			}
			if !limiter.Allow() {
				wc.sendError(p.Seq, protocol.CodeRateLimited, "too many purchase requests")
				continue
			}
			enqueue(rm, room.Purchase{ClientID: res.ClientID, Seq: p.Seq, Upgrade: game.UpgradeID(p.Upgrade)})
		case protocol.MsgControl:
			c, err := protocol.DecodePayload[protocol.Control](env)
			if err != nil {
				wc.sendError(0, protocol.CodeBadRequest, err.Error())
				continue
			}
			enqueue(rm, room.Control{ClientID: res.ClientID, Action: c.Action})
		default:
			wc.sendError(0, protocol.CodeBadRequest, fmt.Sprintf("unexpected message type %q", env.T))
		}
	}
}

func readHello(conn *websocket.Conn) (protocol.Hello, error) {
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return protocol.Hello{}, err
	}
	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		return protocol.Hello{}, err
	}
	if env.T != protocol.MsgHello {
		return protocol.Hello{}, fmt.Errorf("expected %q first, got %q", protocol.MsgHello, env.T)
	}
	hello, err := protocol.DecodePayload[protocol.Hello](env)
	if err != nil {
		return protocol.Hello{}, err
	}
	if hello.V != protocol.Version {
		return protocol.Hello{}, fmt.Errorf("unsupported protocol version %d", hello.V)
	}
	return hello, nil
}

// enqueue hands cmd to the room goroutine, giving up if it stays busy.
func enqueue(rm *room.Room, cmd any) bool {
	select {
	case rm.Inbox <- cmd:
		return true
	case <-time.After(inboxTimeout):
		return false
	}
}
