package ginx

import (
	"github.com/gin-gonic/gin"
)

// requestIDKey is the type-safe key for the request ID in gin.Context.
type requestIDKey struct{}

// SetRequestID stores the request ID for the current request.
func SetRequestID(ctx *gin.Context, id string) {
	ctx.Set(requestIDKey{}, id)
}

// RequestID returns the request ID, or an empty string if none was set.
func RequestID(ctx *gin.Context) string {
	v, exists := ctx.Get(requestIDKey{})
	if !exists {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return ""
}
