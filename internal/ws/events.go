package ws

import (
	"encoding/json"
	"time"
)

// Event is the structured message sent to WebSocket clients. Sequence is
// the chain sequence of the carried audit entry, so clients can resume a
// feed from exactly where they left off.
type Event struct {
	Type     string          `json:"type"`
	Sequence uint64          `json:"sequence"`
	Data     json.RawMessage `json:"data"`
	Time     time.Time       `json:"time"`
}

// SubscribeMsg is sent by the client on connect to request entry replay
// starting at FromSequence.
type SubscribeMsg struct {
	Type         string `json:"type"`
	FromSequence uint64 `json:"from_sequence"`
}

// ResetMsg tells the client to do a full refresh: the requested entries
// have aged out of the replay buffer, so it must re-query the ledger.
type ResetMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
