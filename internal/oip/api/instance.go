package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/ollamacloud/oip/internal/oip/entity"
	"github.com/ollamacloud/oip/internal/oip/service"
	"github.com/ollamacloud/oip/pkg/ginx"
	"github.com/rs/zerolog"
)

// InstanceServiceInterface is the instance lifecycle surface the
// handlers depend on.
type InstanceServiceInterface interface {
	Create(ctx context.Context, caller *entity.Identity, req *entity.CreateInstanceRequest) (*entity.CreateInstanceResponse, error)
	Get(ctx context.Context, caller *entity.Identity, id string) (*entity.GetInstanceResponse, error)
	List(ctx context.Context, caller *entity.Identity) (*entity.ListInstancesResponse, error)
	Delete(ctx context.Context, caller *entity.Identity, id string) error
	GetStatus(ctx context.Context, caller *entity.Identity, id string) (*entity.GetInstanceStatusResponse, error)
}

// LogServiceInterface serves instance log retrieval.
type LogServiceInterface interface {
	GetInstanceLogs(ctx context.Context, caller *entity.Identity, id string) (*entity.GetInstanceLogsResponse, error)
}

type Instance struct {
	instanceService InstanceServiceInterface
	logService      LogServiceInterface
}

func NewInstance(instanceService *service.InstanceService, logService *service.LogService) *Instance {
	return &Instance{
		instanceService: instanceService,
		logService:      logService,
	}
}

func (i *Instance) RegisterRoutes(router *gin.RouterGroup) {
	instanceRouter := router.Group("/instances")
	instanceRouter.POST("", ginx.Adapt5(i.CreateInstance))
	instanceRouter.GET("", ginx.Adapt3(i.ListInstances))
	instanceRouter.GET("/:id", ginx.Adapt5(i.GetInstance))
	instanceRouter.DELETE("/:id", ginx.Adapt4(i.DeleteInstance))
	instanceRouter.GET("/:id/status", ginx.Adapt5(i.GetInstanceStatus))
	instanceRouter.GET("/:id/logs", ginx.Adapt5(i.GetInstanceLogs))
}

func (i *Instance) CreateInstance(ctx *gin.Context, req *entity.CreateInstanceRequest) (*entity.CreateInstanceResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("model_id", req.ModelID).
		Str("instance_type", req.InstanceType).
		Msg("CreateInstance called")

	resp, err := i.instanceService.Create(ctx, Caller(ctx), req)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("Failed to create instance")
		return nil, err
	}

	logger.Info().
		Str("instance_id", resp.ID).
		Msg("Instance created successfully")
	return resp, nil
}

func (i *Instance) ListInstances(ctx *gin.Context) (*entity.ListInstancesResponse, error) {
	logger := zerolog.Ctx(ctx)

	resp, err := i.instanceService.List(ctx, Caller(ctx))
	if err != nil {
		logger.Error().
			Err(err).
			Msg("Failed to list instances")
		return nil, err
	}

	return resp, nil
}

func (i *Instance) GetInstance(ctx *gin.Context, req *entity.GetInstanceRequest) (*entity.GetInstanceResponse, error) {
	logger := zerolog.Ctx(ctx)

	resp, err := i.instanceService.Get(ctx, Caller(ctx), req.ID)
	if err != nil {
		logger.Error().
			Err(err).
			Str("instance_id", req.ID).
			Msg("Failed to get instance")
		return nil, err
	}

	return resp, nil
}

func (i *Instance) DeleteInstance(ctx *gin.Context, req *entity.DeleteInstanceRequest) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("instance_id", req.ID).
		Msg("DeleteInstance called")

	if err := i.instanceService.Delete(ctx, Caller(ctx), req.ID); err != nil {
		logger.Error().
			Err(err).
			Str("instance_id", req.ID).
			Msg("Failed to delete instance")
		return err
	}

	return nil
}

func (i *Instance) GetInstanceStatus(ctx *gin.Context, req *entity.GetInstanceStatusRequest) (*entity.GetInstanceStatusResponse, error) {
	logger := zerolog.Ctx(ctx)

	resp, err := i.instanceService.GetStatus(ctx, Caller(ctx), req.ID)
	if err != nil {
		logger.Error().
			Err(err).
			Str("instance_id", req.ID).
			Msg("Failed to get instance status")
		return nil, err
	}

	return resp, nil
}

func (i *Instance) GetInstanceLogs(ctx *gin.Context, req *entity.GetInstanceLogsRequest) (*entity.GetInstanceLogsResponse, error) {
	logger := zerolog.Ctx(ctx)

	resp, err := i.logService.GetInstanceLogs(ctx, Caller(ctx), req.ID)
	if err != nil {
		logger.Error().
			Err(err).
			Str("instance_id", req.ID).
			Msg("Failed to get instance logs")
		return nil, err
	}

	return resp, nil
}
