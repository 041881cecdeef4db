package spectatorpush

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"sueca-referee/internal/referee"
)

const (
	colorPlay     = 0x3BA55D
	colorRound    = 0x5865F2
	colorWarn     = 0xFEE75C
	colorComplete = 0x57F287
	colorCritical = 0xED4245

	detailPreviewLimit = 160
	shortIDLimit       = 10
	defaultFooter      = "sueca referee"
)

// FormatMessage renders one event as a standalone webhook message. Events
// with no message form report false.
func FormatMessage(ev NormalizedEvent) (FormattedMessage, bool) {
	tableShort := shortID(fallback(ev.TableID, "unknown"), shortIDLimit)
	fields := make([]MessageField, 0, 8)
	base := FormattedMessage{
		Timestamp: eventTimestamp(ev.ServerTS),
		Footer:    defaultFooter,
	}

	switch ev.EventType {
	case referee.EventRoundStarted:
		base.Title = fmt.Sprintf("Round %d · T:%s", ev.Round, tableShort)
		base.Content = fmt.Sprintf("round %d led by %s", ev.Round, fallback(ev.Leader, "-"))
		base.Description = fmt.Sprintf("Round %d started, %s leads.", ev.Round, fallback(ev.Leader, "-"))
		base.Color = colorRound
		fields = append(fields, MessageField{Name: "Leader", Value: fallback(ev.Leader, "-"), Inline: true})
	case referee.EventTrumpSet:
		base.Title = fmt.Sprintf("Trump · Round %d · T:%s", ev.Round, tableShort)
		base.Content = "trump " + fallback(ev.Card, "-")
		base.Description = fmt.Sprintf("Trump is %s.", fallback(ev.Card, "-"))
		base.Color = colorRound
		fields = append(fields,
			MessageField{Name: "Card", Value: fallback(ev.Card, "-"), Inline: true},
			MessageField{Name: "Suit", Value: fallback(ev.Suit, "-"), Inline: true},
		)
	case referee.EventCardPlayed:
		base.Title = fmt.Sprintf("Play · Round %d · T:%s", ev.Round, tableShort)
		base.Content = fmt.Sprintf("%s %s", fallback(ev.Seat, "-"), fallback(ev.Card, "-"))
		base.Description = fmt.Sprintf("%s played %s in trick %d.", fallback(ev.Seat, "-"), fallback(ev.Card, "-"), ev.Trick)
		base.Color = colorPlay
		fields = append(fields,
			MessageField{Name: "Seat", Value: fallback(ev.Seat, "-"), Inline: true},
			MessageField{Name: "Card", Value: fallback(ev.Card, "-"), Inline: true},
			MessageField{Name: "Trick", Value: strconv.Itoa(ev.Trick), Inline: true},
		)
	case referee.EventSuitVoid:
		base.Title = fmt.Sprintf("Void · Round %d · T:%s", ev.Round, tableShort)
		base.Content = fmt.Sprintf("%s has no %s", fallback(ev.Seat, "-"), fallback(ev.Suit, "-"))
		base.Description = fmt.Sprintf("%s showed out of %s.", fallback(ev.Seat, "-"), fallback(ev.Suit, "-"))
		base.Color = colorWarn
		fields = append(fields,
			MessageField{Name: "Seat", Value: fallback(ev.Seat, "-"), Inline: true},
			MessageField{Name: "Suit", Value: fallback(ev.Suit, "-"), Inline: true},
		)
	case referee.EventRoundComplete:
		base.Title = fmt.Sprintf("Round %d Complete · T:%s", ev.Round, tableShort)
		base.Content = fmt.Sprintf("round %d complete", ev.Round)
		base.Description = fmt.Sprintf("Round %d finished with no renege.", ev.Round)
		base.Color = colorComplete
		fields = append(fields,
			MessageField{Name: "Leader", Value: fallback(ev.Leader, "-"), Inline: true},
			MessageField{Name: "Trump", Value: fallback(ev.TrumpCard, "-"), Inline: true},
			MessageField{Name: "Plays", Value: strconv.Itoa(ev.Plays), Inline: true},
		)
	case referee.EventRoundInvalidated:
		base.Title = fmt.Sprintf("RENUNCIA · Round %d · T:%s", ev.Round, tableShort)
		base.Content = "RENUNCIA"
		base.Description = invalidationSummary(ev)
		base.Color = colorCritical
		base.Alert = true
		fields = append(fields,
			MessageField{Name: "Reason", Value: fallback(ev.Reason, "-"), Inline: true},
			MessageField{Name: "Offender", Value: fallback(ev.Offender, "-"), Inline: true},
			MessageField{Name: "Card", Value: fallback(ev.Card, "-"), Inline: true},
			MessageField{Name: "Trick", Value: trickText(ev.Trick), Inline: true},
			MessageField{Name: "Trump", Value: fallback(ev.TrumpCard, "-"), Inline: true},
		)
		if ev.Detail != "" {
			fields = append(fields, MessageField{Name: "Detail", Value: trimText(strings.TrimSpace(ev.Detail), detailPreviewLimit), Inline: false})
		}
	case referee.EventCardsDrained:
		base.Title = fmt.Sprintf("Drained · Round %d · T:%s", ev.Round, tableShort)
		base.Content = fmt.Sprintf("%d cards drained", ev.Count)
		base.Description = fmt.Sprintf("Discarded %d cards left from round %d.", ev.Count, ev.Round)
		base.Color = colorWarn
		fields = append(fields, MessageField{Name: "Count", Value: strconv.Itoa(ev.Count), Inline: true})
	case referee.EventTableClosed:
		base.Title = fmt.Sprintf("Table Closed · T:%s", tableShort)
		base.Content = "table closed"
		base.Description = "Table closed."
		base.Color = colorCritical
		fields = append(fields, MessageField{Name: "Rounds", Value: strconv.Itoa(ev.Round), Inline: true})
		if ev.CloseReason != "" {
			fields = append(fields, MessageField{Name: "Reason", Value: ev.CloseReason, Inline: true})
		}
	default:
		return FormattedMessage{}, false
	}

	base.Fields = fields
	return base, true
}

func invalidationSummary(ev NormalizedEvent) string {
	if ev.Offender == "" {
		return fmt.Sprintf("Round %d invalidated: %s.", ev.Round, fallback(ev.Reason, "unknown"))
	}
	return fmt.Sprintf("Round %d invalidated: %s played %s in trick %d (%s).",
		ev.Round, ev.Offender, fallback(ev.Card, "-"), ev.Trick, fallback(ev.Reason, "unknown"))
}

func trickText(n int) string {
	if n <= 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func trimText(v string, max int) string {
	if max <= 0 || len(v) <= max {
		return v
	}
	if max <= 3 {
		return v[:max]
	}
	return v[:max-3] + "..."
}

func shortID(v string, max int) string {
	if max <= 0 || len(v) <= max {
		return v
	}
	return v[len(v)-max:]
}

func eventTimestamp(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func fallback(v, d string) string {
	if strings.TrimSpace(v) == "" {
		return d
	}
	return v
}
