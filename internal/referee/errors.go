package referee

import (
	"errors"
	"net/http"

	"sueca-referee/internal/game"
	"sueca-referee/internal/intake"
)

var (
	ErrTableNotFound    = errors.New("table_not_found")
	ErrTableClosed      = errors.New("table_closed")
	ErrEmptyCard        = errors.New("empty_card")
	ErrInvalidTableSpec = errors.New("invalid_table_spec")
)

// MapSubmitError turns a SubmitCard or SubmitScan error into an HTTP status
// and a stable error code.
func MapSubmitError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrTableNotFound):
		return http.StatusNotFound, "table_not_found"
	case errors.Is(err, ErrTableClosed), errors.Is(err, game.ErrIntakeClosed):
		return http.StatusGone, "table_closed"
	case errors.Is(err, ErrEmptyCard):
		return http.StatusBadRequest, "empty_card"
	case errors.Is(err, game.ErrInvalidCard):
		return http.StatusBadRequest, "invalid_card"
	case errors.Is(err, intake.ErrFull):
		return http.StatusTooManyRequests, "intake_full"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
