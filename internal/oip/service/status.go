package service

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/ollamacloud/oip/internal/oip/entity"
	"github.com/ollamacloud/oip/internal/oip/repository"
	"github.com/ollamacloud/oip/internal/oip/repository/model"
	"github.com/ollamacloud/oip/pkg/awsapi"
	"github.com/rs/zerolog"
)

// StatusReconciler reads live state from ECS and folds it back into
// the store. Reads are best effort: an unreachable ECS never fails
// the caller's request, it only degrades the reported status to
// unknown.
type StatusReconciler struct {
	ecsClient awsapi.ECSAPI
	cluster   string
	instances repository.InstanceRepository
}

// NewStatusReconciler creates a reconciler for one ECS cluster.
func NewStatusReconciler(ecsClient awsapi.ECSAPI, cluster string, instances repository.InstanceRepository) *StatusReconciler {
	return &StatusReconciler{
		ecsClient: ecsClient,
		cluster:   cluster,
		instances: instances,
	}
}

// MapTaskStatus maps an ECS task lastStatus onto an instance status.
func MapTaskStatus(lastStatus string) string {
	switch strings.ToLower(lastStatus) {
	case "pending":
		return entity.StatusStarting
	case "running":
		return entity.StatusRunning
	case "stopping":
		return entity.StatusStopping
	case "stopped":
		return entity.StatusStopped
	default:
		return entity.StatusUnknown
	}
}

// MapServiceStatus maps an ECS service's state onto an instance
// status. An ACTIVE service is judged by its counts: scaled to zero
// is stopped, fully placed is running, partially placed is starting,
// and nothing running yet is pending.
func MapServiceStatus(svc *ecstypes.Service) string {
	switch aws.ToString(svc.Status) {
	case "ACTIVE":
		switch {
		case svc.DesiredCount == 0:
			return entity.StatusStopped
		case svc.RunningCount == svc.DesiredCount:
			return entity.StatusRunning
		case svc.RunningCount > 0:
			return entity.StatusStarting
		default:
			return entity.StatusPending
		}
	case "DRAINING":
		return entity.StatusStopping
	default:
		return entity.StatusUnknown
	}
}

// LiveTaskStatus reads the current status of a bare ECS task. A task
// ECS no longer knows about is reported stopped.
func (r *StatusReconciler) LiveTaskStatus(ctx context.Context, taskARN string) string {
	out, err := r.ecsClient.DescribeTasks(ctx, &ecs.DescribeTasksInput{
		Cluster: aws.String(r.cluster),
		Tasks:   []string{taskARN},
	})
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("task_arn", taskARN).Msg("Failed to describe ECS task")
		return entity.StatusUnknown
	}
	if len(out.Tasks) == 0 {
		return entity.StatusStopped
	}
	return MapTaskStatus(aws.ToString(out.Tasks[0].LastStatus))
}

// LiveServiceStatus reads the current status of an ECS service. A
// service ECS no longer knows about is reported stopped.
func (r *StatusReconciler) LiveServiceStatus(ctx context.Context, serviceName string) string {
	svc, err := r.describeService(ctx, serviceName)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("service_name", serviceName).Msg("Failed to describe ECS service")
		return entity.StatusUnknown
	}
	if svc == nil {
		return entity.StatusStopped
	}
	return MapServiceStatus(svc)
}

// Reconcile returns an instance's live status and writes it back to
// the store when it diverges from the stored one. Unknown never
// overwrites a stored status.
func (r *StatusReconciler) Reconcile(ctx context.Context, instance *model.Instance) string {
	var live string
	switch {
	case instance.ServiceName != "":
		live = r.LiveServiceStatus(ctx, instance.ServiceName)
	case instance.TaskARN != "":
		live = r.LiveTaskStatus(ctx, instance.TaskARN)
	default:
		return instance.Status
	}

	if live == entity.StatusUnknown || live == instance.Status {
		return live
	}

	if err := r.instances.UpdateStatus(ctx, instance.ID, live); err != nil {
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("instance_id", instance.ID).
			Str("status", live).
			Msg("Failed to persist reconciled status")
	}
	return live
}

// ServiceCounts reports the placement counts of a service-backed
// instance for the status endpoint. Missing services return nil.
func (r *StatusReconciler) ServiceCounts(ctx context.Context, serviceName string) (*ecstypes.Service, error) {
	return r.describeService(ctx, serviceName)
}

func (r *StatusReconciler) describeService(ctx context.Context, serviceName string) (*ecstypes.Service, error) {
	out, err := r.ecsClient.DescribeServices(ctx, &ecs.DescribeServicesInput{
		Cluster:  aws.String(r.cluster),
		Services: []string{serviceName},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Services) == 0 {
		return nil, nil
	}
	return &out.Services[0], nil
}
