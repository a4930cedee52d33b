package ctxmanage

import (
	"github.com/gin-gonic/gin"
)

// TraceIdKey is the gin context key under which middleware.Logger stores the
// per-request trace id.
const TraceIdKey = "trace_id"

func GetTraceIdOfRequest(c *gin.Context) string {
	traceId, ok := c.Value(TraceIdKey).(string)
	if !ok {
		return "unknown"
	}
	return traceId
}
