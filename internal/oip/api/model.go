package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/ollamacloud/oip/internal/oip/entity"
	"github.com/ollamacloud/oip/internal/oip/service"
	"github.com/ollamacloud/oip/pkg/ginx"
	"github.com/rs/zerolog"
)

// ModelServiceInterface is the catalog and service-deployment surface
// the handlers depend on.
type ModelServiceInterface interface {
	List(ctx context.Context) (*entity.ListModelsResponse, error)
	Start(ctx context.Context, caller *entity.Identity, req *entity.StartModelRequest) (*entity.StartModelResponse, error)
	Stop(ctx context.Context, caller *entity.Identity, id string) (*entity.StopModelResponse, error)
}

type Model struct {
	modelService ModelServiceInterface
}

func NewModel(modelService *service.ModelService) *Model {
	return &Model{
		modelService: modelService,
	}
}

func (m *Model) RegisterRoutes(router *gin.RouterGroup) {
	modelRouter := router.Group("/models")
	modelRouter.GET("", ginx.Adapt3(m.ListModels))
	modelRouter.POST("/start", ginx.Adapt5(m.StartModel))
	modelRouter.DELETE("/:id/stop", ginx.Adapt5(m.StopModel))
}

func (m *Model) ListModels(ctx *gin.Context) (*entity.ListModelsResponse, error) {
	logger := zerolog.Ctx(ctx)

	resp, err := m.modelService.List(ctx)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("Failed to list models")
		return nil, err
	}

	return resp, nil
}

func (m *Model) StartModel(ctx *gin.Context, req *entity.StartModelRequest) (*entity.StartModelResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("model_id", req.ModelID).
		Str("instance_type", req.InstanceType).
		Msg("StartModel called")

	resp, err := m.modelService.Start(ctx, Caller(ctx), req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("model_id", req.ModelID).
			Msg("Failed to start model")
		return nil, err
	}

	logger.Info().
		Str("instance_id", resp.InstanceID).
		Str("service_name", resp.ServiceName).
		Msg("Model started successfully")
	return resp, nil
}

func (m *Model) StopModel(ctx *gin.Context, req *entity.StopModelRequest) (*entity.StopModelResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("instance_id", req.ID).
		Msg("StopModel called")

	resp, err := m.modelService.Stop(ctx, Caller(ctx), req.ID)
	if err != nil {
		logger.Error().
			Err(err).
			Str("instance_id", req.ID).
			Msg("Failed to stop model")
		return nil, err
	}

	return resp, nil
}
