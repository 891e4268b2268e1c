package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/ollamacloud/oip/internal/oip/config"
	"github.com/ollamacloud/oip/internal/oip/entity"
	"github.com/ollamacloud/oip/internal/oip/repository"
	"github.com/ollamacloud/oip/internal/oip/repository/model"
	"github.com/ollamacloud/oip/pkg/apierror"
	"github.com/ollamacloud/oip/pkg/awsapi"
	"github.com/ollamacloud/oip/pkg/idgen"
	"github.com/rs/zerolog"
)

// ollamaPort is the Ollama API port inside the container.
const ollamaPort int32 = 11434

// defaultOllamaImage runs when a catalog entry has no prebuilt image.
const defaultOllamaImage = "ollama/ollama:latest"

// serviceTTL expires abandoned service-backed instances via the store
// TTL attribute.
const serviceTTL = 24 * time.Hour

// serviceDefaultInstanceType is the deployment surface's default. It
// is not a real instance size: it selects the Fargate profile and is
// unknown to the cost table, so it bills $0.00/hour.
const serviceDefaultInstanceType = "fargate"

// ModelService serves the catalog and the service-backed deployment
// surface: each started model gets its own task definition, target
// group, and ECS service behind the load balancer.
type ModelService struct {
	cfg       *config.Config
	ecsClient awsapi.ECSAPI
	elbClient awsapi.ELBAPI
	instances repository.InstanceRepository
	models    repository.ModelRepository
}

// NewModelService creates a new Model Service.
func NewModelService(
	cfg *config.Config,
	ecsClient awsapi.ECSAPI,
	elbClient awsapi.ELBAPI,
	instances repository.InstanceRepository,
	models repository.ModelRepository,
) *ModelService {
	return &ModelService{
		cfg:       cfg,
		ecsClient: ecsClient,
		elbClient: elbClient,
		instances: instances,
		models:    models,
	}
}

// List returns the deployable catalog entries sorted by name.
func (s *ModelService) List(ctx context.Context) (*entity.ListModelsResponse, error) {
	records, err := s.models.ListAvailable(ctx)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to retrieve models", err)
	}

	models := make([]entity.Model, 0, len(records))
	for _, record := range records {
		e, err := modelModelToEntity(record)
		if err != nil {
			return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert model", err)
		}
		models = append(models, *e)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })

	return &entity.ListModelsResponse{
		Models: models,
		Count:  len(models),
	}, nil
}

// Start deploys a model as a load-balanced ECS service and records
// the instance.
func (s *ModelService) Start(ctx context.Context, caller *entity.Identity, req *entity.StartModelRequest) (*entity.StartModelResponse, error) {
	logger := zerolog.Ctx(ctx)

	instanceType := req.InstanceType
	if instanceType == "" {
		instanceType = serviceDefaultInstanceType
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
	serviceName := "ollama-" + idgen.ShortID(instanceID)
	profile := ProfileFor(instanceType)

	logger.Info().
		Str("instance_id", instanceID).
		Str("model_id", m.ID).
		Str("service_name", serviceName).
		Msg("Starting model service")

	taskDefARN, err := s.registerTaskDefinition(ctx, m, instanceID, profile)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to register task definition", err)
	}

	targetGroupARN, err := s.createTargetGroup(ctx, serviceName)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to create target group", err)
	}

	if err := s.createService(ctx, caller.UserID, m.ID, serviceName, taskDefARN, targetGroupARN, profile); err != nil {
		// Orphaned target groups are cheap to clean up here; orphaned
		// task definitions just stay registered.
		if _, derr := s.elbClient.DeleteTargetGroup(ctx, &elbv2.DeleteTargetGroupInput{
			TargetGroupArn: aws.String(targetGroupARN),
		}); derr != nil {
			logger.Warn().Err(derr).Str("target_group_arn", targetGroupARN).Msg("Failed to delete target group after service failure")
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to start model", err)
	}

	now := time.Now().UTC()
	expiresAt := now.Add(serviceTTL)
	endpoint := fmt.Sprintf("https://%s.%s", serviceName, s.cfg.DomainName)
	record := &model.Instance{
		ID:             instanceID,
		ModelID:        m.ID,
		ModelName:      m.Name,
		Name:           req.Name,
		UserID:         caller.UserID,
		Status:         entity.StatusStarting,
		InstanceType:   instanceType,
		EstimatedCost:  EstimateCost(instanceType),
		Endpoint:       endpoint,
		ServiceName:    serviceName,
		TaskDefARN:     taskDefARN,
		TargetGroupARN: targetGroupARN,
		StartedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      &expiresAt,
	}
	if err := s.instances.Create(ctx, record); err != nil {
		logger.Error().
			Err(err).
			Str("instance_id", instanceID).
			Str("service_name", serviceName).
			Msg("Service started but record write failed")
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to persist instance", err)
	}

	logger.Info().
		Str("instance_id", instanceID).
		Str("service_name", serviceName).
		Msg("Model service started")

	return &entity.StartModelResponse{
		InstanceID:    instanceID,
		ModelID:       m.ID,
		Status:        entity.StatusStarting,
		ServiceName:   serviceName,
		Endpoint:      endpoint,
		EstimatedCost: EstimateCost(instanceType),
	}, nil
}

// Stop scales a model service down, deletes it together with its
// target group, and marks the instance stopped. AWS teardown is best
// effort so a half-deleted service can be stopped again.
func (s *ModelService) Stop(ctx context.Context, caller *entity.Identity, id string) (*entity.StopModelResponse, error) {
	logger := zerolog.Ctx(ctx)

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

	if record.ServiceName != "" {
		if _, err := s.ecsClient.UpdateService(ctx, &ecs.UpdateServiceInput{
			Cluster:      aws.String(s.cfg.ClusterName),
			Service:      aws.String(record.ServiceName),
			DesiredCount: aws.Int32(0),
		}); err != nil {
			logger.Warn().Err(err).Str("service_name", record.ServiceName).Msg("Failed to scale down ECS service")
		}
		if _, err := s.ecsClient.DeleteService(ctx, &ecs.DeleteServiceInput{
			Cluster: aws.String(s.cfg.ClusterName),
			Service: aws.String(record.ServiceName),
			Force:   aws.Bool(true),
		}); err != nil {
			logger.Warn().Err(err).Str("service_name", record.ServiceName).Msg("Failed to delete ECS service")
		}
	}

	if record.TargetGroupARN != "" {
		if _, err := s.elbClient.DeleteTargetGroup(ctx, &elbv2.DeleteTargetGroupInput{
			TargetGroupArn: aws.String(record.TargetGroupARN),
		}); err != nil {
			logger.Warn().Err(err).Str("target_group_arn", record.TargetGroupARN).Msg("Failed to delete target group")
		}
	}

	if err := s.instances.MarkStopped(ctx, id, time.Now().UTC()); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to update instance status", err)
	}

	logger.Info().Str("instance_id", id).Msg("Model service stopped")

	return &entity.StopModelResponse{
		InstanceID: id,
		Status:     entity.StatusStopped,
		Message:    "Instance stopped",
	}, nil
}

func (s *ModelService) registerTaskDefinition(ctx context.Context, m *model.Model, instanceID string, profile DeploymentProfile) (string, error) {
	// Family names only allow letters, digits, hyphens and
	// underscores; model IDs carry a colon.
	family := fmt.Sprintf("%s-ollama-%s-%s",
		s.cfg.Environment,
		strings.ReplaceAll(m.ID, ":", "-"),
		idgen.ShortID(instanceID))
	image := m.ImageURI
	if image == "" {
		image = defaultOllamaImage
	}

	container := ecstypes.ContainerDefinition{
		Name:      aws.String(ollamaContainerName),
		Image:     aws.String(image),
		Essential: aws.Bool(true),
		PortMappings: []ecstypes.PortMapping{
			{
				ContainerPort: aws.Int32(ollamaPort),
				Protocol:      ecstypes.TransportProtocolTcp,
			},
		},
		Environment: []ecstypes.KeyValuePair{
			{Name: aws.String("OLLAMA_HOST"), Value: aws.String("0.0.0.0")},
			{Name: aws.String("OLLAMA_ORIGINS"), Value: aws.String("*")},
			{Name: aws.String("OLLAMA_MODEL"), Value: aws.String(m.ID)},
		},
		HealthCheck: &ecstypes.HealthCheck{
			Command:     []string{"CMD-SHELL", fmt.Sprintf("curl -f http://localhost:%d/api/tags || exit 1", ollamaPort)},
			Interval:    aws.Int32(30),
			Timeout:     aws.Int32(5),
			Retries:     aws.Int32(3),
			StartPeriod: aws.Int32(120),
		},
		LogConfiguration: &ecstypes.LogConfiguration{
			LogDriver: ecstypes.LogDriverAwslogs,
			Options: map[string]string{
				"awslogs-group":         s.logGroup(),
				"awslogs-region":        s.cfg.Region,
				"awslogs-stream-prefix": "ollama-" + idgen.ShortID(instanceID),
			},
		},
	}

	compatibilities := []ecstypes.Compatibility{ecstypes.CompatibilityFargate}
	if profile.LaunchType == ecstypes.LaunchTypeEc2 {
		compatibilities = []ecstypes.Compatibility{ecstypes.CompatibilityEc2}
	}
	var placement []ecstypes.TaskDefinitionPlacementConstraint
	if profile.UseGPUTaskDef {
		container.ResourceRequirements = []ecstypes.ResourceRequirement{
			{
				Type:  ecstypes.ResourceTypeGpu,
				Value: aws.String("1"),
			},
		}
		// Keep the task off CPU-only container instances.
		placement = []ecstypes.TaskDefinitionPlacementConstraint{
			{
				Type:       ecstypes.TaskDefinitionPlacementConstraintTypeMemberOf,
				Expression: aws.String("attribute:ecs.instance-type =~ g4dn.*"),
			},
		}
	}

	out, err := s.ecsClient.RegisterTaskDefinition(ctx, &ecs.RegisterTaskDefinitionInput{
		Family:                  aws.String(family),
		NetworkMode:             ecstypes.NetworkModeAwsvpc,
		RequiresCompatibilities: compatibilities,
		Cpu:                     aws.String("1024"),
		Memory:                  aws.String("2048"),
		ExecutionRoleArn:        aws.String(s.cfg.ExecutionRoleARN),
		TaskRoleArn:             aws.String(s.cfg.TaskRoleARN),
		ContainerDefinitions:    []ecstypes.ContainerDefinition{container},
		PlacementConstraints:    placement,
		Tags: []ecstypes.Tag{
			{Key: aws.String("Environment"), Value: aws.String(s.cfg.Environment)},
			{Key: aws.String("Project"), Value: aws.String("aws-ollama-platform")},
			{Key: aws.String("Model"), Value: aws.String(m.ID)},
		},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.TaskDefinition.TaskDefinitionArn), nil
}

func (s *ModelService) createTargetGroup(ctx context.Context, serviceName string) (string, error) {
	// Target group names are capped at 32 characters.
	name := serviceName
	if len(name) > 32 {
		name = name[:32]
	}

	out, err := s.elbClient.CreateTargetGroup(ctx, &elbv2.CreateTargetGroupInput{
		Name:                       aws.String(name),
		Protocol:                   elbtypes.ProtocolEnumHttp,
		Port:                       aws.Int32(ollamaPort),
		VpcId:                      aws.String(s.cfg.VPCID),
		TargetType:                 elbtypes.TargetTypeEnumIp,
		HealthCheckEnabled:         aws.Bool(true),
		HealthCheckIntervalSeconds: aws.Int32(30),
		HealthCheckPath:            aws.String("/api/tags"),
		HealthCheckPort:            aws.String("traffic-port"),
		HealthCheckProtocol:        elbtypes.ProtocolEnumHttp,
		HealthCheckTimeoutSeconds:  aws.Int32(5),
		HealthyThresholdCount:      aws.Int32(2),
		UnhealthyThresholdCount:    aws.Int32(2),
		Matcher:                    &elbtypes.Matcher{HttpCode: aws.String("200")},
		Tags: []elbtypes.Tag{
			{Key: aws.String("Environment"), Value: aws.String(s.cfg.Environment)},
			{Key: aws.String("Project"), Value: aws.String("aws-ollama-platform")},
			{Key: aws.String("Service"), Value: aws.String(serviceName)},
		},
	})
	if err != nil {
		return "", err
	}
	if len(out.TargetGroups) == 0 {
		return "", fmt.Errorf("create target group %s returned no target groups", name)
	}
	return aws.ToString(out.TargetGroups[0].TargetGroupArn), nil
}

func (s *ModelService) createService(ctx context.Context, userID, modelID, serviceName, taskDefARN, targetGroupARN string, profile DeploymentProfile) error {
	_, err := s.ecsClient.CreateService(ctx, &ecs.CreateServiceInput{
		Cluster:        aws.String(s.cfg.ClusterName),
		ServiceName:    aws.String(serviceName),
		TaskDefinition: aws.String(taskDefARN),
		DesiredCount:   aws.Int32(1),
		LaunchType:     profile.LaunchType,
		// awsvpc task definitions need the network configuration on
		// both launch types.
		NetworkConfiguration: &ecstypes.NetworkConfiguration{
			AwsvpcConfiguration: &ecstypes.AwsVpcConfiguration{
				Subnets:        s.cfg.PrivateSubnetIDs,
				SecurityGroups: []string{s.cfg.SecurityGroupID},
				AssignPublicIp: ecstypes.AssignPublicIpDisabled,
			},
		},
		LoadBalancers: []ecstypes.LoadBalancer{
			{
				TargetGroupArn: aws.String(targetGroupARN),
				ContainerName:  aws.String(ollamaContainerName),
				ContainerPort:  aws.Int32(ollamaPort),
			},
		},
		HealthCheckGracePeriodSeconds: aws.Int32(300),
		Tags: []ecstypes.Tag{
			{Key: aws.String("Environment"), Value: aws.String(s.cfg.Environment)},
			{Key: aws.String("Project"), Value: aws.String("aws-ollama-platform")},
			{Key: aws.String("Owner"), Value: aws.String(userID)},
			{Key: aws.String("Model"), Value: aws.String(modelID)},
		},
	})
	return err
}

// logGroup is the shared CloudWatch log group for the environment.
func (s *ModelService) logGroup() string {
	return fmt.Sprintf("/ecs/%s-ollama", s.cfg.Environment)
}
