package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ollamacloud/oip/internal/oip/config"
	"github.com/ollamacloud/oip/internal/oip/service"
	"github.com/ollamacloud/oip/pkg/ginx"
)

// API owns the HTTP surface: the gin engine, the listener, and the
// per-resource handlers.
type API struct {
	engine *gin.Engine
	server *http.Server

	instance *Instance
	model    *Model
	auth     *Auth
}

func New(
	cfg *config.Config,
	instanceService *service.InstanceService,
	modelService *service.ModelService,
	logService *service.LogService,
	authService *service.AuthService,
) (*API, error) {
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(), ginx.CORS())

	api := &API{
		engine:   engine,
		instance: NewInstance(instanceService, logService),
		model:    NewModel(modelService),
		auth:     NewAuth(authService),
	}

	engine.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	root := engine.Group("/api")
	api.auth.RegisterRoutes(root)

	// Everything below requires a gateway-authenticated caller.
	protected := root.Group("")
	protected.Use(Identity())
	api.instance.RegisterRoutes(protected)
	api.model.RegisterRoutes(protected)

	api.server = &http.Server{
		Addr:    cfg.Address,
		Handler: engine,
	}
	return api, nil
}

func (a *API) Run(ctx context.Context) error {
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *API) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

func (a *API) Name() string {
	return "API Server"
}
