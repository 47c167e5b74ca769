package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gridcombat/engine/pkg/core"
	"github.com/gridcombat/engine/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend streams episode data over WebSocket to a live viewer.
// Turn records are fire-and-forget; episode boundaries wait for a
// server ack.
type Backend struct {
	conn *connection
	cfg  Config
}

// New creates a new WebSocket replay backend.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// StartEpisode sends episode metadata and the roster, then waits for a
// server ack.
func (b *Backend) StartEpisode(meta *core.EpisodeMeta, roster []core.EntityRecord) error {
	data, err := marshalEnvelope(streaming.TypeStartEpisode, streaming.StartEpisodePayload{
		Meta:   meta,
		Roster: roster,
	})
	if err != nil {
		return err
	}

	// Cache for reconnect replay.
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = data
	b.conn.mu.Unlock()

	return b.conn.sendAndWait(data, streaming.TypeStartEpisode, ackTimeout)
}

// RecordTurn streams one resolved turn (fire-and-forget).
func (b *Backend) RecordTurn(t *core.TurnRecord) error {
	return b.sendEnvelope(streaming.TypeTurn, t)
}

// EndEpisode sends the outcome and waits for a server ack.
func (b *Backend) EndEpisode(res *core.EpisodeResult) error {
	data, err := marshalEnvelope(streaming.TypeEndEpisode, streaming.EndEpisodePayload{Result: res})
	if err != nil {
		return err
	}

	err = b.conn.sendAndWait(data, streaming.TypeEndEpisode, ackTimeout)

	// Clear cached state regardless of error.
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = nil
	b.conn.mu.Unlock()

	return err
}
