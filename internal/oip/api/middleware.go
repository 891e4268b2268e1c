package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ollamacloud/oip/internal/oip/entity"
	"github.com/ollamacloud/oip/pkg/apierror"
	"github.com/ollamacloud/oip/pkg/ginx"
	"github.com/ollamacloud/oip/pkg/idgen"
	"github.com/rs/zerolog"
)

// Identity headers populated by the API gateway after it validates
// the caller's JWT. This service trusts them; it never sees raw
// tokens on protected routes.
const (
	headerUserID    = "X-User-Id"
	headerUserEmail = "X-User-Email"
	headerUserName  = "X-User-Name"
	headerUserGroup = "X-User-Groups"
)

// identityKey is the type-safe key for the caller identity.
type identityKey struct{}

// RequestID tags every request with an ID and a request-scoped
// logger.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, err := idgen.GenerateRequestID()
		if err != nil {
			// Sonyflake can fail on clock drift; a random ID keeps the
			// request traceable.
			id = "req-" + idgen.ShortID(idgen.GenerateInstanceID())
		}
		ginx.SetRequestID(ctx, id)
		ctx.Header("X-Request-Id", id)

		logger := zerolog.Ctx(ctx.Request.Context()).With().
			Str("request_id", id).
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Logger()
		ctx.Request = ctx.Request.WithContext(logger.WithContext(ctx.Request.Context()))

		ctx.Next()
	}
}

// Identity extracts the gateway-validated caller from the identity
// headers and aborts with 401 when they are absent.
func Identity() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID := ctx.GetHeader(headerUserID)
		if userID == "" {
			err := apierror.ErrUnauthorized
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, err.Body())
			return
		}

		caller := &entity.Identity{
			UserID:   userID,
			Email:    ctx.GetHeader(headerUserEmail),
			Username: ctx.GetHeader(headerUserName),
		}
		if groups := ctx.GetHeader(headerUserGroup); groups != "" {
			for _, g := range strings.Split(groups, ",") {
				if g = strings.TrimSpace(g); g != "" {
					caller.Groups = append(caller.Groups, g)
				}
			}
		}
		ctx.Set(identityKey{}, caller)

		ctx.Next()
	}
}

// Caller returns the identity set by the Identity middleware.
func Caller(ctx *gin.Context) *entity.Identity {
	v, exists := ctx.Get(identityKey{})
	if !exists {
		return &entity.Identity{}
	}
	caller, ok := v.(*entity.Identity)
	if !ok {
		return &entity.Identity{}
	}
	return caller
}
