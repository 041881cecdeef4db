package spectatorpush

import "expvar"

var (
	metricPushQueued        = expvar.NewInt("push_jobs_queued_total")
	metricPushDropped       = expvar.NewInt("push_jobs_dropped_total")
	metricPushRetried       = expvar.NewInt("push_jobs_retried_total")
	metricPushGaveUp        = expvar.NewInt("push_jobs_gave_up_total")
	metricPushCircuitOpen   = expvar.NewInt("push_circuit_open_total")
	metricPushQueueDepth    = expvar.NewInt("push_queue_depth")
	metricPushAlerts        = expvar.NewInt("push_renuncia_alerts_total")
	metricPushTargetsReload = expvar.NewInt("push_targets_reload_total")
	metricPushReloadErrors  = expvar.NewInt("push_targets_reload_errors_total")

	// Keyed by platform name.
	metricPushSent   = expvar.NewMap("push_sent_by_platform")
	metricPushFailed = expvar.NewMap("push_failed_by_platform")
)
