package spectatorgateway

import "expvar"

var (
	metricSSEOpened     = expvar.NewInt("spectator_sse_connections_total")
	metricSSEActive     = expvar.NewInt("spectator_sse_connections_active")
	metricSSEReplayed   = expvar.NewInt("spectator_replayed_events_total")
	metricSSEDelivered  = expvar.NewInt("spectator_live_events_total")
	metricStateRequests = expvar.NewInt("spectator_state_requests_total")
	// Keyed by table id.
	metricSSEByTable = expvar.NewMap("spectator_sse_connections_by_table")
)
