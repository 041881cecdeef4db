package spectatorpush

import (
	"time"

	"sueca-referee/internal/referee"
)

var _ referee.TableLifecycleObserver = (*Manager)(nil)

// Delivery modes of a target.
const (
	ModeMessage = "message"
	ModePanel   = "panel"
)

// PushTarget is one webhook. Scope is "all" or "table"; an empty allowlist
// means the verdict events only.
type PushTarget struct {
	Platform       string   `json:"platform"`
	Endpoint       string   `json:"endpoint"`
	Secret         string   `json:"secret"`
	Mode           string   `json:"mode"`
	ScopeType      string   `json:"scope_type"`
	ScopeValue     string   `json:"scope_value"`
	EventAllowlist []string `json:"event_allowlist"`
	Enabled        bool     `json:"enabled"`
}

// Config tunes the push manager. Zero values take the defaults applied by
// NewManager.
type Config struct {
	Enabled bool
	// ConfigPath is the targets file; it is polled every ConfigReload.
	ConfigPath   string
	ConfigReload time.Duration
	Targets      []PushTarget

	Workers        int
	DispatchBuffer int
	RequestTimeout time.Duration

	// A failed delivery is retried RetryMax times, backing off from RetryBase.
	RetryMax  int
	RetryBase time.Duration
	// FailureThreshold consecutive failures open a target's circuit for
	// CircuitOpenDuration.
	FailureThreshold    int
	CircuitOpenDuration time.Duration

	PanelUpdateInterval time.Duration
	PanelRecentRounds   int
}

// NormalizedEvent flattens a table event into the fields formatters use.
// Only the fields of the event's own payload are set.
type NormalizedEvent struct {
	EventID   string
	EventType string
	ServerTS  int64
	TableID   string
	Round     int

	Leader string
	Seat   string
	Card   string
	Suit   string
	Trick  int
	Plays  int
	Count  int

	// Reason is the violation of an invalidated round or offending play.
	Reason    string
	Detail    string
	Offender  string
	TrumpCard string
	// CloseReason is set on table_closed only.
	CloseReason string
}

type MessageField struct {
	Name   string
	Value  string
	Inline bool
}

type FormattedMessage struct {
	PanelKey    string
	Title       string
	Content     string
	Description string
	Color       int
	Alert       bool
	Timestamp   string
	Footer      string
	Fields      []MessageField
}

// pushJob is one delivery attempt. Panel edits carry the panel they update.
type pushJob struct {
	Target        PushTarget
	Event         NormalizedEvent
	Formatted     FormattedMessage
	Attempt       int
	PanelStateKey string
	PanelTerminal bool
}

func (j pushJob) key() string {
	return targetKey(j.Target)
}

func targetKey(t PushTarget) string {
	return t.Platform + "|" + t.Endpoint + "|" + t.ScopeType + "|" + t.ScopeValue
}
