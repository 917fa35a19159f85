package room

import (
	"crypto/rand"
	"log/slog"
	"math/big"
	"sync"

	"colony/game"
)

// RoomInfo is returned by the API for the match list.
type RoomInfo struct {
	Code    string `json:"code"`
	MatchID string `json:"matchId"`
	Status  string `json:"status"`
	Clients int    `json:"clients"`
}

// MatchFactory builds a fresh, validated match for a new room.
type MatchFactory func() (*game.Match, error)

// Manager holds multiple rooms by code. Rooms are created via CreateRoom
// and removed when the last client leaves.
type Manager struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	factory MatchFactory
	opts    Options
	log     *slog.Logger
}

func NewManager(factory MatchFactory, opts Options) *Manager {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		rooms:   make(map[string]*Room),
		factory: factory,
		opts:    opts,
		log:     log.With("component", "manager"),
	}
}

// GetRoom returns the room for the given code, or nil.
func (m *Manager) GetRoom(code string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[code]
}

func (m *Manager) removeRoom(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[code]; ok {
		r.Close()
		delete(m.rooms, code)
		m.log.Info("room closed", "code", code, "match_id", r.ID)
	}
}

const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CreateRoom builds a match, generates a unique 6-char code, starts the
// room goroutine and returns the room. The match itself starts Stopped.
func (m *Manager) CreateRoom() (*Room, error) {
	match, err := m.factory()
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		code := generateCode(6)
		if _, exists := m.rooms[code]; exists {
			continue
		}
		r := New(match, m.opts)
		r.Code = code
		r.OnEmpty = func(c string) {
			m.removeRoom(c)
		}
		m.rooms[code] = r
		go r.Run()
		m.log.Info("room created", "code", code, "match_id", r.ID)
		return r, nil
	}
}

// ListRooms returns all active rooms.
func (m *Manager) ListRooms() []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for code, r := range m.rooms {
		out = append(out, RoomInfo{
			Code:    code,
			MatchID: r.ID,
			Status:  r.Status().String(),
			Clients: r.NumClients(),
		})
	}
	return out
}

// CloseAll stops every room goroutine.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, r := range m.rooms {
		r.Close()
		delete(m.rooms, code)
	}
}

func generateCode(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(codeChars)))
	for i := range b {
		idx, _ := rand.Int(rand.Reader, max)
		b[i] = codeChars[idx.Int64()]
	}
	return string(b)
}
