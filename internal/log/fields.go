package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Signaling
	FieldConnID   = "conn_id"
	FieldClientID = "client_id"
	FieldEvent    = "event"
	FieldStreamID = "stream_id"
	FieldViewerID = "viewer_id"
	FieldTargetID = "target_id"

	// Service
	FieldService = "service"
)
