package httptransport

import "expvar"

var (
	metricTableCreateTotal  = expvar.NewInt("table_create_total")
	metricTableCreateErrors = expvar.NewInt("table_create_errors_total")

	metricCardSubmitTotal  = expvar.NewInt("card_submit_total")
	metricCardSubmitErrors = expvar.NewInt("card_submit_errors_total")

	metricScanSubmitTotal  = expvar.NewInt("scan_submit_total")
	metricScanSubmitErrors = expvar.NewInt("scan_submit_errors_total")
)
