package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/ollamacloud/oip/internal/oip/entity"
	"github.com/ollamacloud/oip/internal/oip/service"
	"github.com/ollamacloud/oip/pkg/ginx"
	"github.com/rs/zerolog"
)

// AuthServiceInterface is the account surface the handlers depend on.
type AuthServiceInterface interface {
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error)
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.RegisterResponse, error)
	ForgotPassword(ctx context.Context, req *entity.ForgotPasswordRequest) (*entity.ForgotPasswordResponse, error)
}

type Auth struct {
	authService AuthServiceInterface
}

func NewAuth(authService *service.AuthService) *Auth {
	return &Auth{
		authService: authService,
	}
}

// RegisterRoutes registers the account routes. They are public:
// callers do not hold tokens yet.
func (a *Auth) RegisterRoutes(router *gin.RouterGroup) {
	authRouter := router.Group("/auth")
	authRouter.POST("/login", ginx.Adapt5(a.Login))
	authRouter.POST("/signup", ginx.Adapt5(a.Signup))
	authRouter.POST("/reset-password", ginx.Adapt5(a.ResetPassword))
}

func (a *Auth) Login(ctx *gin.Context, req *entity.LoginRequest) (*entity.LoginResponse, error) {
	logger := zerolog.Ctx(ctx)

	resp, err := a.authService.Login(ctx, req)
	if err != nil {
		// No email in the log line; failed logins are noisy and the
		// address may not even exist.
		logger.Warn().
			Err(err).
			Msg("Login failed")
		return nil, err
	}

	return resp, nil
}

func (a *Auth) Signup(ctx *gin.Context, req *entity.RegisterRequest) (*entity.RegisterResponse, error) {
	logger := zerolog.Ctx(ctx)

	resp, err := a.authService.Register(ctx, req)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("Signup failed")
		return nil, err
	}

	logger.Info().
		Str("email", resp.Email).
		Msg("User signed up")
	return resp, nil
}

func (a *Auth) ResetPassword(ctx *gin.Context, req *entity.ForgotPasswordRequest) (*entity.ForgotPasswordResponse, error) {
	logger := zerolog.Ctx(ctx)

	resp, err := a.authService.ForgotPassword(ctx, req)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("Password reset failed")
		return nil, err
	}

	return resp, nil
}
