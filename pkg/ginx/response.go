package ginx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ollamacloud/oip/pkg/apierror"
)

// StatusCoder lets a response type choose its own success status code,
// e.g. 201 for resource creation.
type StatusCoder interface {
	HTTPStatus() int
}

// renderResponse renders a success response as JSON. A nil response
// renders 204 No Content.
func renderResponse(ctx *gin.Context, response any) {
	if response == nil {
		ctx.Status(http.StatusNoContent)
		return
	}

	status := http.StatusOK
	if sc, ok := response.(StatusCoder); ok {
		status = sc.HTTPStatus()
	}

	ctx.JSON(status, response)
}

// renderError renders an error response using the uniform
// {error, message?} envelope. apierror.Error values carry their own
// HTTP status; anything else falls back to the given status code.
func renderError(ctx *gin.Context, statusCode int, err error) {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatus > 0 {
			statusCode = apiErr.HTTPStatus
		}
		ctx.JSON(statusCode, apiErr.Body())
		return
	}

	ctx.JSON(statusCode, apierror.Body{Error: err.Error()})
}
