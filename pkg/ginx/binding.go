package ginx

import (
	"github.com/gin-gonic/gin"
)

// bindArgs binds request parameters into the args struct.
// Priority: JSON body > URI parameters > Query parameters > Form.
// URI and query parameters are merged on top of a bound body so that
// path-addressed handlers can still accept body fields.
func bindArgs(ctx *gin.Context, args interface{}) error {
	// 1. Try the JSON body first. Do not rely on ContentLength, it may
	// be inaccurate behind a gateway.
	if err := ctx.ShouldBindJSON(args); err == nil {
		_ = ctx.ShouldBindUri(args)
		_ = ctx.ShouldBindQuery(args)
		return nil
	}

	// 2. URI parameters
	if err := ctx.ShouldBindUri(args); err == nil {
		_ = ctx.ShouldBindQuery(args)
		return nil
	}

	// 3. Query parameters
	if err := ctx.ShouldBindQuery(args); err == nil {
		return nil
	}

	// 4. Form
	return ctx.ShouldBind(args)
}
