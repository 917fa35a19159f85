package room

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"colony/game"
	"colony/protocol"
)

type Status uint8

const (
	Stopped Status = iota
	Running
	Paused
)

func (s Status) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Paused:
		return "paused"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

var (
	ErrAlreadyRunning = errors.New("match already running")
	ErrNotRunning     = errors.New("match not running")
	ErrNotPaused      = errors.New("match not paused")
	ErrSeatTaken      = errors.New("player seat already taken")
	ErrUnknownClient  = errors.New("unknown client")
	ErrSpectator      = errors.New("spectators cannot act on the match")
)

// Observer receives one snapshot per tick, on the room goroutine, after
// the tick has fully completed.
type Observer func(game.Snapshot)

type Options struct {
	TickHz      int
	BroadcastHz int
	Logger      *slog.Logger
}

type client struct {
	conn   Conn
	player int
}

type observerEntry struct {
	id int
	fn Observer
}

// Room drives one match at a fixed tick rate. Every world mutation (tick,
// purchase) happens under mu, so a purchase lands strictly between ticks.
type Room struct {
	Inbox          chan any
	ID             string // match id stamped on every state message
	tickHz         int
	dt             float64
	broadcastEvery int
	log            *slog.Logger
	quit           chan struct{}
	closeOnce      sync.Once

	mu        sync.Mutex
	match     *game.Match
	latest    game.Snapshot
	status    Status
	clients   map[string]client
	nextID    int
	observers []observerEntry
	nextObsID int

	Code    string            // room code (e.g. "ABC123")
	OnEmpty func(code string) // called when last client leaves
}

func New(match *game.Match, opts Options) *Room {
	tickHz := opts.TickHz
	if tickHz <= 0 {
		tickHz = protocol.SimTickHz
	}
	broadcastHz := opts.BroadcastHz
	if broadcastHz <= 0 {
		broadcastHz = protocol.BroadcastHz
	}
	broadcastEvery := tickHz / broadcastHz
	if broadcastEvery <= 0 {
		broadcastEvery = 1
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	id := uuid.NewString()
	return &Room{
		Inbox:          make(chan any, 256),
		ID:             id,
		tickHz:         tickHz,
		dt:             1 / float64(tickHz),
		broadcastEvery: broadcastEvery,
		log:            log.With("component", "room", "match_id", id),
		quit:           make(chan struct{}),
		match:          match,
		latest:         match.Snapshot(),
		clients:        make(map[string]client),
		nextID:         1,
	}
}

// Close ends the room goroutine. Safe to call more than once.
func (r *Room) Close() {
	r.closeOnce.Do(func() { close(r.quit) })
}

// TickHz is the fixed simulation rate.
func (r *Room) TickHz() int { return r.tickHz }

// NumClients returns the current number of connected clients.
func (r *Room) NumClients() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Run is the room goroutine: it applies inbox commands and, while the
// match is running, advances it once per ticker beat by a fixed dt.
func (r *Room) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(r.tickHz))
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		case <-ticker.C:
			_, _ = r.Advance()
		}
	}
}

func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Room) Start() error {
	return r.transition(ErrAlreadyRunning, Running, Stopped)
}

// Stop halts ticking. It never waits on the room goroutine, so it is safe
// to call from an Observer.
func (r *Room) Stop() error {
	return r.transition(ErrNotRunning, Stopped, Running, Paused)
}

func (r *Room) Pause() error {
	return r.transition(ErrNotRunning, Paused, Running)
}

// Resume continues from the preserved world. Spawn timers are measured in
// simulation time, so the paused wall-clock gap does not trigger spawns.
func (r *Room) Resume() error {
	return r.transition(ErrNotPaused, Running, Paused)
}

func (r *Room) transition(fail error, to Status, from ...Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range from {
		if r.status == f {
			r.log.Info("match status changed", "from", r.status.String(), "to", to.String(), "tick", r.latest.Tick)
			r.status = to
			return nil
		}
	}
	return fmt.Errorf("%w (status %s)", fail, r.status)
}

// Advance runs exactly one tick if the match is running, then hands the
// snapshot to observers and, on broadcast ticks, to connected clients.
func (r *Room) Advance() (game.Snapshot, error) {
	r.mu.Lock()
	if r.status != Running {
		r.mu.Unlock()
		return game.Snapshot{}, ErrNotRunning
	}
	snap := r.match.Tick(r.dt)
	r.latest = snap
	observers := append([]observerEntry(nil), r.observers...)
	var targets map[string]Conn
	if snap.Tick%r.broadcastEvery == 0 {
		targets = r.connsLocked()
	}
	r.mu.Unlock()

	for _, o := range observers {
		o.fn(cloneSnapshot(snap))
	}
	if len(targets) > 0 {
		r.broadcast(targets, snap)
	}
	return cloneSnapshot(snap), nil
}

// Subscribe registers fn for every future snapshot. The returned func
// unregisters it.
func (r *Room) Subscribe(fn Observer) (cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextObsID
	r.nextObsID++
	r.observers = append(r.observers, observerEntry{id: id, fn: fn})
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, o := range r.observers {
			if o.id == id {
				r.observers = append(r.observers[:i:i], r.observers[i+1:]...)
				return
			}
		}
	}
}

// Purchase buys the next level of id for player between ticks.
func (r *Room) Purchase(player int, id game.UpgradeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.match.Purchase(player, id); err != nil {
		r.log.Debug("purchase rejected", "player", player, "upgrade", string(id), "error", err)
		return err
	}
	// Keep the published economy in step with the world; units only move
	// on ticks so the rest of the snapshot is unchanged.
	r.latest = r.match.Snapshot()
	econ := r.latest.Economy(player)
	r.log.Info("upgrade purchased", "player", player, "upgrade", string(id), "level", econ.Levels[id], "food", econ.Food)
	return nil
}

// Latest returns the most recently published snapshot.
func (r *Room) Latest() game.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneSnapshot(r.latest)
}

// Economy reports player's food and upgrade levels as of the latest
// snapshot.
func (r *Room) Economy(player int) (game.EconomySnapshot, error) {
	if player != game.Player1 && player != game.Player2 {
		return game.EconomySnapshot{}, fmt.Errorf("%w: %d", game.ErrInvalidPlayer, player)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneEconomy(r.latest.Economy(player)), nil
}

func (r *Room) Catalog() *game.Catalog {
	return r.match.Catalog()
}

func cloneSnapshot(s game.Snapshot) game.Snapshot {
	s.Units = append([]game.UnitSnapshot(nil), s.Units...)
	for i := range s.Economies {
		s.Economies[i] = cloneEconomy(s.Economies[i])
	}
	return s
}

func cloneEconomy(e game.EconomySnapshot) game.EconomySnapshot {
	levels := make(map[game.UpgradeID]int, len(e.Levels))
	for k, v := range e.Levels {
		levels[k] = v
	}
	e.Levels = levels
	e.Capabilities = append([]string(nil), e.Capabilities...)
	return e
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Join:
		id, err := r.addClient(c.Conn, c.Player)
		if err == nil {
			r.sendWelcome(c.Conn, c.Player)
			r.sendStateTo(c.Conn)
		}
		c.Reply <- JoinResult{ClientID: id, Err: err}
	case Purchase:
		r.handlePurchase(c)
	case Control:
		r.handleControl(c)
	case Leave:
		r.handleLeave(c.ClientID)
	}
}

func (r *Room) addClient(conn Conn, player int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if player != 0 && player != game.Player1 && player != game.Player2 {
		return "", fmt.Errorf("%w: %d", game.ErrInvalidPlayer, player)
	}
	if player != 0 {
		for _, c := range r.clients {
			if c.player == player {
				return "", fmt.Errorf("%w: player %d", ErrSeatTaken, player)
			}
		}
	}
	id := fmt.Sprintf("c%d", r.nextID)
	r.nextID++
	r.clients[id] = client{conn: conn, player: player}
	r.log.Info("client joined", "client", id, "player", player)
	return id, nil
}

func (r *Room) lookupClient(id string) (client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	return c, ok
}

func (r *Room) handlePurchase(p Purchase) {
	c, ok := r.lookupClient(p.ClientID)
	if !ok {
		return
	}
	if c.player == 0 {
		r.sendError(c.conn, p.Seq, ErrSpectator)
		return
	}
	if err := r.Purchase(c.player, p.Upgrade); err != nil {
		r.sendError(c.conn, p.Seq, err)
		return
	}
	econ, _ := r.Economy(c.player)
	b, err := protocol.Encode(protocol.MsgReceipt, protocol.Receipt{
		Seq:     p.Seq,
		Upgrade: string(p.Upgrade),
		Level:   econ.Levels[p.Upgrade],
		Food:    econ.Food,
	})
	if err != nil {
		return
	}
	_ = c.conn.Send(b)
}

func (r *Room) handleControl(ctl Control) {
	c, ok := r.lookupClient(ctl.ClientID)
	if !ok {
		return
	}
	if c.player == 0 {
		r.sendError(c.conn, 0, ErrSpectator)
		return
	}
	var err error
	switch ctl.Action {
	case protocol.ActionStart:
		err = r.Start()
	case protocol.ActionStop:
		err = r.Stop()
	case protocol.ActionPause:
		err = r.Pause()
	case protocol.ActionResume:
		err = r.Resume()
	default:
		err = fmt.Errorf("unknown control action %q", ctl.Action)
	}
	if err != nil {
		r.sendError(c.conn, 0, err)
	}
}

func (r *Room) handleLeave(clientID string) {
	r.mu.Lock()
	c, ok := r.clients[clientID]
	delete(r.clients, clientID)
	empty := len(r.clients) == 0
	r.mu.Unlock()
	if ok {
		_ = c.conn.Close()
		r.log.Info("client left", "client", clientID, "player", c.player)
	}
	if ok && empty && r.OnEmpty != nil && r.Code != "" {
		r.OnEmpty(r.Code)
	}
}

func (r *Room) removeClient(clientID string) {
	r.mu.Lock()
	c, ok := r.clients[clientID]
	delete(r.clients, clientID)
	r.mu.Unlock()
	if ok {
		_ = c.conn.Close()
	}
}

func (r *Room) connsLocked() map[string]Conn {
	out := make(map[string]Conn, len(r.clients))
	for id, c := range r.clients {
		out[id] = c.conn
	}
	return out
}

func (r *Room) broadcast(targets map[string]Conn, snap game.Snapshot) {
	b, err := protocol.Encode(protocol.MsgState, buildState(r.ID, snap))
	if err != nil {
		return
	}

	var failed []string
	for id, c := range targets {
		if err := c.Send(b); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		r.log.Warn("dropping client after failed send", "client", id)
		r.removeClient(id)
	}
}

func (r *Room) sendStateTo(c Conn) {
	b, err := protocol.Encode(protocol.MsgState, buildState(r.ID, r.Latest()))
	if err != nil {
		return
	}
	_ = c.Send(b)
}

func (r *Room) sendWelcome(c Conn, player int) {
	b, err := protocol.Encode(protocol.MsgWelcome, protocol.Welcome{
		MatchID: r.ID,
		Player:  player,
		TickHz:  r.tickHz,
		Catalog: buildCatalog(r.Catalog()),
	})
	if err != nil {
		return
	}
	_ = c.Send(b)
}

func (r *Room) sendError(c Conn, seq int, err error) {
	b, encErr := protocol.Encode(protocol.MsgError, protocol.Error{
		Seq:     seq,
		Code:    ErrorCode(err),
		Message: err.Error(),
	})
	if encErr != nil {
		return
	}
	_ = c.Send(b)
}
