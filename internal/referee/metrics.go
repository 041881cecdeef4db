package referee

import "expvar"

var (
	metricTablesActive  = expvar.NewInt("referee_tables_active")
	metricTablesCreated = expvar.NewInt("referee_tables_created_total")

	metricCardsSubmitted = expvar.NewInt("referee_cards_submitted_total")
	metricCardsRejected  = expvar.NewInt("referee_cards_rejected_total")
	metricCardsDrained   = expvar.NewInt("referee_cards_drained_total")
	metricScansIgnored   = expvar.NewInt("referee_scans_ignored_total")

	metricRoundsTotal       = expvar.NewInt("referee_rounds_total")
	metricRoundsInvalidated = expvar.NewInt("referee_rounds_invalidated_total")

	metricRecorderErrors = expvar.NewInt("referee_recorder_errors_total")
)
