package logkey

// Keys used with slog so log fields stay consistent across packages.
const (
	TraceID = "trace_id"
	ERROR   = "error"
	UserID  = "user_id"
	OrderID = "order_id"
)
