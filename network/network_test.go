package network

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"colony/game"
	"colony/protocol"
	"colony/room"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *room.Manager) {
	t.Helper()
	factory := func() (*game.Match, error) {
		return game.NewMatch(game.MatchSettings{
			Seed: 1,
			Selections: []game.Selection{
				{Player: game.Player1, SpeciesID: "FIRE"},
				{Player: game.Player2, SpeciesID: "LEAF"},
			},
		}, game.DefaultBalance(), game.DefaultCatalog())
	}
	m := room.NewManager(factory, room.Options{Logger: quietLogger()})
	opts.Logger = quietLogger()
	srv := httptest.NewServer(NewServer(m, opts).Handler())
	t.Cleanup(func() {
		srv.Close()
		m.CloseAll()
	})
	return srv, m
}

func createRoom(t *testing.T, srv *httptest.Server) room.RoomInfo {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/rooms", "application/json", nil)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create room status %d", resp.StatusCode)
	}
	var info room.RoomInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decode room info: %v", err)
	}
	return info
}

func dial(t *testing.T, srv *httptest.Server, code string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?room=" + code
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	b, err := protocol.Encode(typ, payload)
	if err != nil {
		t.Fatalf("encode %s: %v", typ, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func read(t *testing.T, conn *websocket.Conn) protocol.Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func expectError(t *testing.T, conn *websocket.Conn, code string) protocol.Error {
	t.Helper()
	env := read(t, conn)
	if env.T != protocol.MsgError {
		t.Fatalf("got %q, want error %q", env.T, code)
	}
	e, err := protocol.DecodePayload[protocol.Error](env)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if e.Code != code {
		t.Fatalf("error code %q, want %q (%s)", e.Code, code, e.Message)
	}
	return e
}

func joinAs(t *testing.T, conn *websocket.Conn, player int) protocol.Welcome {
	t.Helper()
	send(t, conn, protocol.MsgHello, protocol.Hello{V: protocol.Version, Player: player})
	env := read(t, conn)
	if env.T != protocol.MsgWelcome {
		t.Fatalf("first message %q, want welcome", env.T)
	}
	w, err := protocol.DecodePayload[protocol.Welcome](env)
	if err != nil {
		t.Fatalf("decode welcome: %v", err)
	}
	if env := read(t, conn); env.T != protocol.MsgState {
		t.Fatalf("second message %q, want state", env.T)
	}
	return w
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestCreateAndListRooms(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	info := createRoom(t, srv)
	if info.Code == "" || info.MatchID == "" || info.Status != "stopped" {
		t.Fatalf("room info %+v", info)
	}

	resp, err := http.Get(srv.URL + "/api/rooms")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer resp.Body.Close()
	var rooms []room.RoomInfo
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(rooms) != 1 || rooms[0].Code != info.Code {
		t.Fatalf("rooms %+v", rooms)
	}
}

func TestUnknownRoom(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?room=NOPE42"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("dial to unknown room succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("resp %+v, want 404", resp)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, Options{AllowedOrigins: []string{"http://example.com"}})
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/rooms", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("allow origin %q", got)
	}
}

func TestHelloWelcome(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	info := createRoom(t, srv)
	conn := dial(t, srv, info.Code)

	w := joinAs(t, conn, game.Player1)
	if w.MatchID != info.MatchID || w.Player != game.Player1 || w.TickHz != game.DefaultTickHz {
		t.Fatalf("welcome %+v", w)
	}
	if len(w.Catalog) != len(game.DefaultCatalog().All()) {
		t.Fatalf("welcome catalog has %d entries", len(w.Catalog))
	}
}

func TestBadHelloRejected(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	info := createRoom(t, srv)
	conn := dial(t, srv, info.Code)

	send(t, conn, protocol.MsgHello, protocol.Hello{V: protocol.Version + 1, Player: game.Player1})
	expectError(t, conn, protocol.CodeBadRequest)
}

func TestSeatTakenOverWebsocket(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	info := createRoom(t, srv)
	first := dial(t, srv, info.Code)
	joinAs(t, first, game.Player2)

	second := dial(t, srv, info.Code)
	send(t, second, protocol.MsgHello, protocol.Hello{V: protocol.Version, Player: game.Player2})
	expectError(t, second, protocol.CodeInvalidPlayer)
}

func TestPurchaseRepliesAndRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, Options{PurchasesPerSecond: 0.01, PurchaseBurst: 1})
	info := createRoom(t, srv)
	conn := dial(t, srv, info.Code)
	joinAs(t, conn, game.Player1)

	send(t, conn, protocol.MsgPurchase, protocol.Purchase{Seq: 1, Upgrade: string(game.UpgradeHatchery)})
	if e := expectError(t, conn, protocol.CodeInsufficientFunds); e.Seq != 1 {
		t.Fatalf("seq %d, want 1", e.Seq)
	}

	send(t, conn, protocol.MsgPurchase, protocol.Purchase{Seq: 2, Upgrade: string(game.UpgradeHatchery)})
	if e := expectError(t, conn, protocol.CodeRateLimited); e.Seq != 2 {
		t.Fatalf("seq %d, want 2", e.Seq)
	}
}

func TestControlStartsMatch(t *testing.T) {
	srv, m := newTestServer(t, Options{})
	info := createRoom(t, srv)
	conn := dial(t, srv, info.Code)
	joinAs(t, conn, game.Player1)

	send(t, conn, protocol.MsgControl, protocol.Control{Action: protocol.ActionStart})
	for i := 0; i < 10; i++ {
		env := read(t, conn)
		if env.T != protocol.MsgState {
			t.Fatalf("got %q, want state", env.T)
		}
		s, err := protocol.DecodePayload[protocol.State](env)
		if err != nil {
			t.Fatalf("decode state: %v", err)
		}
		if s.Tick > 0 {
			if st := m.GetRoom(info.Code).Status(); st != room.Running {
				t.Fatalf("status %v, want running", st)
			}
			return
		}
	}
	t.Fatalf("no advancing state after start")
}

func TestUnexpectedMessageType(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	info := createRoom(t, srv)
	conn := dial(t, srv, info.Code)
	joinAs(t, conn, game.Player1)

	send(t, conn, protocol.MsgWelcome, protocol.Welcome{})
	expectError(t, conn, protocol.CodeBadRequest)
}

func TestCatalogEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	resp, err := http.Get(srv.URL + "/api/catalog")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var defs []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&defs); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(defs) != len(game.DefaultCatalog().All()) {
		t.Fatalf("catalog has %d entries", len(defs))
	}
	if defs[0]["id"] != string(game.UpgradeInfirmary) {
		t.Fatalf("first entry %v", defs[0])
	}
}
