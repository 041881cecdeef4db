package spectatorpush

import (
	"encoding/json"

	"sueca-referee/internal/referee"
	"sueca-referee/internal/referee/stream"
)

// wireFields is the union of the event payload keys formatters care about.
// It decodes payloads that did not come from this process, such as a
// replayed JSON event.
type wireFields struct {
	Leader    string `json:"leader"`
	Seat      string `json:"seat"`
	Card      string `json:"card"`
	Suit      string `json:"suit"`
	Trick     int    `json:"trick"`
	Reason    string `json:"reason"`
	Detail    string `json:"detail"`
	Offender  string `json:"offender"`
	TrumpCard string `json:"trump_card"`
	Violation string `json:"violation"`
	Plays     int    `json:"plays"`
	Count     int    `json:"count"`
	Rounds    int    `json:"rounds"`
}

func normalizeEvent(meta referee.TableMeta, ev stream.StreamEvent) NormalizedEvent {
	out := NormalizedEvent{
		EventID:   ev.EventID,
		EventType: ev.Event,
		ServerTS:  ev.ServerTS,
		TableID:   ev.TableID,
		Round:     ev.Round,
	}
	if out.TableID == "" {
		out.TableID = meta.TableID
	}

	switch d := ev.Data.(type) {
	case referee.RoundSummary:
		out.Leader, out.Reason, out.Detail = d.Leader, d.Reason, d.Detail
		out.Offender, out.Card, out.Trick = d.Offender, d.Card, d.Trick
		out.TrumpCard, out.Plays = d.TrumpCard, d.Plays
	case referee.RoundStartedData:
		out.Leader = d.Leader
	case referee.TrumpSetData:
		out.Card, out.Suit = d.Card, d.Suit
	case referee.CardPlayedData:
		out.Seat, out.Card, out.Trick, out.Reason = d.Seat, d.Card, d.Trick, d.Violation
	case referee.SuitVoidData:
		out.Seat, out.Suit = d.Seat, d.Suit
	case referee.CardsDrainedData:
		out.Count = d.Count
	case referee.TableClosedData:
		out.CloseReason = d.Reason
		if d.Rounds > 0 {
			out.Round = d.Rounds
		}
	default:
		out.fillFromWire(ev.Data)
	}
	return out
}

func (n *NormalizedEvent) fillFromWire(data any) {
	if data == nil {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	var w wireFields
	if json.Unmarshal(raw, &w) != nil {
		return
	}
	n.Leader, n.Seat, n.Card, n.Suit = w.Leader, w.Seat, w.Card, w.Suit
	n.Trick, n.Detail, n.Offender, n.TrumpCard = w.Trick, w.Detail, w.Offender, w.TrumpCard
	n.Plays, n.Count = w.Plays, w.Count
	if n.EventType == referee.EventTableClosed {
		n.CloseReason = w.Reason
		if w.Rounds > 0 {
			n.Round = w.Rounds
		}
		return
	}
	n.Reason = w.Reason
	if n.Reason == "" {
		n.Reason = w.Violation
	}
}
