package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/ollamacloud/oip/internal/oip/config"
	"github.com/ollamacloud/oip/internal/oip/entity"
	"github.com/ollamacloud/oip/internal/oip/repository"
	"github.com/ollamacloud/oip/internal/oip/repository/model"
	"github.com/ollamacloud/oip/pkg/apierror"
	"github.com/ollamacloud/oip/pkg/awsapi"
	"github.com/ollamacloud/oip/pkg/idgen"
	"github.com/rs/zerolog"
)

// ollamaContainerName is the container name in both task definitions.
const ollamaContainerName = "ollama"

// InstanceService manages the lifecycle of task-backed model
// instances: one ECS task per instance, tracked in the instance
// store.
type InstanceService struct {
	cfg        *config.Config
	ecsClient  awsapi.ECSAPI
	instances  repository.InstanceRepository
	models     repository.ModelRepository
	reconciler *StatusReconciler
}

// NewInstanceService creates a new Instance Service.
func NewInstanceService(
	cfg *config.Config,
	ecsClient awsapi.ECSAPI,
	instances repository.InstanceRepository,
	models repository.ModelRepository,
	reconciler *StatusReconciler,
) *InstanceService {
	return &InstanceService{
		cfg:        cfg,
		ecsClient:  ecsClient,
		instances:  instances,
		models:     models,
		reconciler: reconciler,
	}
}

// Create starts a new instance of a catalog model as a bare ECS task
// and records it. The record is written after the task starts; a
// store failure at that point leaves an orphaned task that the
// reconciler cannot see, which the returned error reports.
func (s *InstanceService) Create(ctx context.Context, caller *entity.Identity, req *entity.CreateInstanceRequest) (*entity.CreateInstanceResponse, error) {
	logger := zerolog.Ctx(ctx)

	instanceType := req.InstanceType
	if instanceType == "" {
		instanceType = DefaultInstanceType
	}

	m, err := s.models.GetByID(ctx, req.ModelID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.ErrModelNotFound
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to load model", err)
	}

	active, err := s.instances.CountActiveByUser(ctx, caller.UserID)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to count active instances", err)
	}
	if active >= s.cfg.MaxInstancesPerUser {
		return nil, apierror.ErrInstanceLimitExceeded
	}

	instanceID := idgen.GenerateInstanceID()
	profile := ProfileFor(instanceType)

	logger.Info().
		Str("instance_id", instanceID).
		Str("model_id", m.ID).
		Str("instance_type", instanceType).
		Str("launch_type", string(profile.LaunchType)).
		Msg("Creating instance")

	taskARN, err := s.runTask(ctx, instanceID, caller.UserID, m, instanceType, profile)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &model.Instance{
		ID:            instanceID,
		ModelID:       m.ID,
		ModelName:     m.Name,
		Name:          req.Name,
		UserID:        caller.UserID,
		Status:        entity.StatusStarting,
		InstanceType:  instanceType,
		EstimatedCost: EstimateCost(instanceType),
		Endpoint:      s.taskEndpoint(instanceID),
		TaskARN:       taskARN,
		StartedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.instances.Create(ctx, record); err != nil {
		logger.Error().
			Err(err).
			Str("instance_id", instanceID).
			Str("task_arn", taskARN).
			Msg("Task started but record write failed")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to persist instance", err)
	}

	logger.Info().
		Str("instance_id", instanceID).
		Str("task_arn", taskARN).
		Msg("Instance created")

	e, err := instanceModelToEntity(record)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert instance", err)
	}
	return &entity.CreateInstanceResponse{Instance: *e}, nil
}

// Get returns one instance with its live status reconciled from ECS.
func (s *InstanceService) Get(ctx context.Context, caller *entity.Identity, id string) (*entity.GetInstanceResponse, error) {
	record, err := s.loadAuthorized(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	live := s.reconciler.Reconcile(ctx, record)

	e, err := instanceModelToEntity(record)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert instance", err)
	}
	if live != entity.StatusUnknown {
		e.Status = live
	}
	e.LiveStatus = live
	return &entity.GetInstanceResponse{Instance: *e}, nil
}

// List returns the caller's instances, or every instance for
// administrators. Each row is best-effort enriched with its live ECS
// status; an unreachable ECS leaves the stored status in place.
func (s *InstanceService) List(ctx context.Context, caller *entity.Identity) (*entity.ListInstancesResponse, error) {
	var records []*model.Instance
	var err error
	if caller.IsAdmin() {
		records, err = s.instances.List(ctx)
	} else {
		records, err = s.instances.ListByUser(ctx, caller.UserID)
	}
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to list instances", err)
	}

	entities := make([]entity.Instance, 0, len(records))
	for _, record := range records {
		live := s.reconciler.Reconcile(ctx, record)
		e, err := instanceModelToEntity(record)
		if err != nil {
			return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert instance", err)
		}
		if live != entity.StatusUnknown {
			e.Status = live
		}
		e.LiveStatus = live
		entities = append(entities, *e)
	}
	return &entity.ListInstancesResponse{
		Instances: entities,
		Count:     len(entities),
	}, nil
}

// Delete stops an instance's ECS task and removes its record.
func (s *InstanceService) Delete(ctx context.Context, caller *entity.Identity, id string) error {
	logger := zerolog.Ctx(ctx)

	record, err := s.loadAuthorized(ctx, caller, id)
	if err != nil {
		return err
	}

	if record.TaskARN != "" {
		_, err := s.ecsClient.StopTask(ctx, &ecs.StopTaskInput{
			Cluster: aws.String(s.cfg.ClusterName),
			Task:    aws.String(record.TaskARN),
			Reason:  aws.String("Instance deleted by user"),
		})
		if err != nil {
			// The task may already be gone; deletion of the record
			// still proceeds.
			logger.Warn().
				Err(err).
				Str("instance_id", id).
				Str("task_arn", record.TaskARN).
				Msg("Failed to stop ECS task")
		}
	}

	if err := s.instances.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierror.ErrInstanceNotFound
		}
		return apierror.WrapError(apierror.ErrInternalError, "Failed to delete instance", err)
	}

	logger.Info().Str("instance_id", id).Msg("Instance deleted")
	return nil
}

// GetStatus reports the reconciled status of one instance together
// with the raw ECS placement counts when it is service-backed.
func (s *InstanceService) GetStatus(ctx context.Context, caller *entity.Identity, id string) (*entity.GetInstanceStatusResponse, error) {
	record, err := s.loadAuthorized(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	resp := &entity.GetInstanceStatusResponse{
		ID:       record.ID,
		Status:   s.reconciler.Reconcile(ctx, record),
		Endpoint: record.Endpoint,
	}

	if record.ServiceName != "" {
		svc, err := s.reconciler.ServiceCounts(ctx, record.ServiceName)
		if err == nil && svc != nil {
			resp.DesiredCount = svc.DesiredCount
			resp.RunningCount = svc.RunningCount
			resp.PendingCount = svc.PendingCount
		}
	}
	return resp, nil
}

// loadAuthorized fetches an instance and checks the caller may act on
// it. Only the owner and administrators may.
func (s *InstanceService) loadAuthorized(ctx context.Context, caller *entity.Identity, id string) (*model.Instance, error) {
	record, err := s.instances.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.ErrInstanceNotFound
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to load instance", err)
	}
	if record.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, apierror.ErrForbidden
	}
	return record, nil
}

// runTask starts the ECS task for a new instance.
func (s *InstanceService) runTask(ctx context.Context, instanceID, userID string, m *model.Model, instanceType string, profile DeploymentProfile) (string, error) {
	taskDef := s.cfg.CPUTaskDefARN
	if profile.UseGPUTaskDef {
		taskDef = s.cfg.GPUTaskDefARN
	}

	input := &ecs.RunTaskInput{
		Cluster:        aws.String(s.cfg.ClusterName),
		TaskDefinition: aws.String(taskDef),
		LaunchType:     profile.LaunchType,
		Overrides: &ecstypes.TaskOverride{
			ContainerOverrides: []ecstypes.ContainerOverride{
				{
					Name:        aws.String(ollamaContainerName),
					Environment: s.containerEnvironment(instanceID, userID, m),
				},
			},
		},
		Tags: []ecstypes.Tag{
			{Key: aws.String("Environment"), Value: aws.String(s.cfg.Environment)},
			{Key: aws.String("Project"), Value: aws.String("aws-ollama-platform")},
			{Key: aws.String("InstanceId"), Value: aws.String(instanceID)},
			{Key: aws.String("UserId"), Value: aws.String(userID)},
			{Key: aws.String("ModelId"), Value: aws.String(m.ID)},
		},
		PlacementConstraints: profile.PlacementConstraints(instanceType),
	}

	if profile.LaunchType == ecstypes.LaunchTypeFargate {
		input.NetworkConfiguration = &ecstypes.NetworkConfiguration{
			AwsvpcConfiguration: &ecstypes.AwsVpcConfiguration{
				Subnets:        s.cfg.PrivateSubnetIDs,
				SecurityGroups: []string{s.cfg.SecurityGroupID},
				AssignPublicIp: ecstypes.AssignPublicIpDisabled,
			},
		}
	}

	out, err := s.ecsClient.RunTask(ctx, input)
	if err != nil {
		return "", apierror.WrapError(apierror.ErrInternalError, "Failed to start ECS task", err)
	}
	if len(out.Tasks) == 0 {
		return "", apierror.WrapError(apierror.ErrInternalError, "Failed to start ECS task",
			fmt.Errorf("run task returned no tasks (%d failures)", len(out.Failures)))
	}
	return aws.ToString(out.Tasks[0].TaskArn), nil
}

func (s *InstanceService) containerEnvironment(instanceID, userID string, m *model.Model) []ecstypes.KeyValuePair {
	return []ecstypes.KeyValuePair{
		// Ollama binds loopback by default; the task is only reachable
		// through the load balancer when it listens on all interfaces.
		{Name: aws.String("OLLAMA_HOST"), Value: aws.String("0.0.0.0")},
		{Name: aws.String("OLLAMA_ORIGINS"), Value: aws.String("*")},
		{Name: aws.String("MODEL_NAME"), Value: aws.String(m.ID)},
		{Name: aws.String("INSTANCE_ID"), Value: aws.String(instanceID)},
		{Name: aws.String("USER_ID"), Value: aws.String(userID)},
		{Name: aws.String("PRELOAD_MODEL"), Value: aws.String("true")},
	}
}

// taskEndpoint synthesizes the public endpoint of a task-backed
// instance.
func (s *InstanceService) taskEndpoint(instanceID string) string {
	return fmt.Sprintf("https://%s.%s/api", instanceID, s.cfg.DomainName)
}
