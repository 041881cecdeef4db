package referee

import (
	"context"

	"sueca-referee/internal/game"
)

// Detection is one card as reported by the recognition app.
type Detection struct {
	Rank       string  `json:"rank"`
	Suit       string  `json:"suit"`
	Confidence float64 `json:"confidence"`
}

// ScanEvent is the payload the camera client posts for every frame it
// classifies.
type ScanEvent struct {
	Source    string     `json:"source"`
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	Detection *Detection `json:"detection,omitempty"`
}

type ScanResult struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	Card      string     `json:"card,omitempty"`
	Detection *Detection `json:"detection"`
}

// SubmitScan feeds a recognition event to the table. Events without a
// detection, or below the confidence floor, are acknowledged and dropped. A
// detection that names no card of the deck is rejected without reaching the
// table, so recognition noise cannot invalidate a round.
func (c *Coordinator) SubmitScan(ctx context.Context, tableID string, ev ScanEvent) (ScanResult, error) {
	res := ScanResult{Detection: ev.Detection}
	if _, err := c.lookup(tableID); err != nil {
		return res, err
	}
	if ev.Detection == nil {
		metricScansIgnored.Add(1)
		res.Message = "no card detected"
		return res, nil
	}
	if ev.Detection.Confidence < c.opts.ScanMinConfidence {
		metricScansIgnored.Add(1)
		res.Message = "confidence below threshold"
		return res, nil
	}
	card, err := game.CardFromDetection(ev.Detection.Rank, ev.Detection.Suit)
	if err != nil {
		metricCardsRejected.Add(1)
		return res, err
	}
	if err := c.SubmitCard(ctx, tableID, card.String()); err != nil {
		return res, err
	}
	res.Success = true
	res.Message = "card received"
	res.Card = card.String()
	return res, nil
}
