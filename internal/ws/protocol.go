package ws

import "sueca-referee/internal/referee"

const ProtocolVersion = "1.0"

// Inbound frame types.
const (
	TypeScan = "scan"
)

// Outbound frame types.
const (
	TypeHello      = "hello"
	TypeScanResult = "scan_result"
	TypeEvent      = "event"
)

// ScanMessage carries either a ready card identifier or a raw detection from
// the recognition app.
type ScanMessage struct {
	Type      string             `json:"type"`
	RequestID string             `json:"request_id,omitempty"`
	Card      string             `json:"card,omitempty"`
	Source    string             `json:"source,omitempty"`
	Success   bool               `json:"success,omitempty"`
	Message   string             `json:"message,omitempty"`
	Detection *referee.Detection `json:"detection,omitempty"`
}

type Hello struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	TableID         string `json:"table_id"`
}

type ScanResult struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id,omitempty"`
	Ok              bool   `json:"ok"`
	Card            string `json:"card,omitempty"`
	Message         string `json:"message,omitempty"`
	Error           string `json:"error,omitempty"`
}

type EventFrame struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	EventID         string `json:"event_id,omitempty"`
	Event           string `json:"event"`
	TableID         string `json:"table_id"`
	Round           int    `json:"round,omitempty"`
	ServerTS        int64  `json:"server_ts"`
	Data            any    `json:"data"`
}
