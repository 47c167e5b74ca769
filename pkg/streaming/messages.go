package streaming

import (
	"encoding/json"

	"github.com/gridcombat/engine/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartEpisode = "start_episode"
	TypeTurn         = "turn"
	TypeEndEpisode   = "end_episode"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartEpisodePayload carries episode metadata and the starting roster.
type StartEpisodePayload struct {
	Meta   *core.EpisodeMeta   `json:"meta"`
	Roster []core.EntityRecord `json:"roster"`
}

// EndEpisodePayload carries the episode outcome.
type EndEpisodePayload struct {
	Result *core.EpisodeResult `json:"result"`
}
