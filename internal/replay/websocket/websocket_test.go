package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridcombat/engine/internal/replay"
	"github.com/gridcombat/engine/pkg/core"
	"github.com/gridcombat/engine/pkg/streaming"
)

// Compile-time interface check.
var _ replay.Backend = (*Backend)(nil)

// testServer creates an httptest server that upgrades to WebSocket,
// records received messages, and acks start_episode/end_episode.
func testServer(t *testing.T) (*httptest.Server, *messageLog) {
	t.Helper()
	ml := &messageLog{}

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer c.Close()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			ml.add(env)

			// Ack episode boundaries.
			if env.Type == streaming.TypeStartEpisode || env.Type == streaming.TypeEndEpisode {
				ack := streaming.AckMessage{Type: "ack", For: env.Type}
				data, _ := json.Marshal(ack)
				if err := c.WriteMessage(ws.TextMessage, data); err != nil {
					return
				}
			}
		}
	}))

	return srv, ml
}

type messageLog struct {
	mu       sync.Mutex
	messages []streaming.Envelope
}

func (m *messageLog) add(env streaming.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, env)
}

func (m *messageLog) all() []streaming.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]streaming.Envelope, len(m.messages))
	copy(cp, m.messages)
	return cp
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func testMeta() *core.EpisodeMeta {
	return &core.EpisodeMeta{
		EpisodeID:  "ep-ws-1",
		Scenario:   "Duel",
		Seed:       3,
		GridWidth:  10,
		GridHeight: 10,
		StartTime:  time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestStartAndEndEpisode(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), Secret: "test"}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	roster := []core.EntityRecord{
		{EntityID: 1, Kind: "awacs", Team: "blue"},
	}
	require.NoError(t, b.StartEpisode(testMeta(), roster))

	require.NoError(t, b.EndEpisode(&core.EpisodeResult{Turns: 0, Draw: true, Reason: "stalemate"}))

	msgs := ml.all()
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, streaming.TypeStartEpisode, msgs[0].Type)
	assert.Equal(t, streaming.TypeEndEpisode, msgs[len(msgs)-1].Type)
}

func TestTurnsAreFireAndForget(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), Secret: "s"}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartEpisode(testMeta(), nil))

	for turn := 1; turn <= 3; turn++ {
		require.NoError(t, b.RecordTurn(&core.TurnRecord{
			Turn: turn,
			Entities: []core.EntityState{
				{EntityID: 1, X: turn, Y: 0, Alive: true},
			},
		}))
	}

	require.NoError(t, b.EndEpisode(&core.EpisodeResult{Turns: 3, Winner: "blue", Reason: "elimination"}))

	// Give a moment for all messages to arrive at server.
	time.Sleep(50 * time.Millisecond)

	types := make(map[string]int)
	for _, m := range ml.all() {
		types[m.Type]++
	}

	assert.Equal(t, 1, types[streaming.TypeStartEpisode])
	assert.Equal(t, 3, types[streaming.TypeTurn])
	assert.Equal(t, 1, types[streaming.TypeEndEpisode])
}

func TestStartEpisodePayloadRoundTrip(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), Secret: "s"}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	roster := []core.EntityRecord{
		{EntityID: 1, Kind: "awacs", Team: "blue", X: 0, Y: 0},
		{EntityID: 2, Kind: "sam", Team: "red", X: 9, Y: 9, Missiles: 2},
	}
	require.NoError(t, b.StartEpisode(testMeta(), roster))

	msgs := ml.all()
	require.NotEmpty(t, msgs)

	var payload streaming.StartEpisodePayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &payload))
	require.NotNil(t, payload.Meta)
	assert.Equal(t, "ep-ws-1", payload.Meta.EpisodeID)
	require.Len(t, payload.Roster, 2)
	assert.Equal(t, "sam", payload.Roster[1].Kind)
}

func TestEnvelopeSerialization(t *testing.T) {
	payload := streaming.EndEpisodePayload{
		Result: &core.EpisodeResult{Turns: 12, Winner: "red", Reason: "awacs_destroyed"},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	env := streaming.Envelope{Type: streaming.TypeEndEpisode, Payload: raw}
	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded streaming.Envelope
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, streaming.TypeEndEpisode, decoded.Type)

	var dp streaming.EndEpisodePayload
	require.NoError(t, json.Unmarshal(decoded.Payload, &dp))
	require.NotNil(t, dp.Result)
	assert.Equal(t, 12, dp.Result.Turns)
	assert.Equal(t, "red", dp.Result.Winner)
}
