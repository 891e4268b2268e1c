package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/google/uuid"
	"github.com/ollamacloud/oip/internal/oip/entity"
	"github.com/ollamacloud/oip/pkg/apierror"
	"github.com/ollamacloud/oip/pkg/awsapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newInstanceService(t *testing.T, store *testStore, ecsClient *awsapi.MockECS) *InstanceService {
	t.Helper()
	cfg := testConfig()
	reconciler := NewStatusReconciler(ecsClient, cfg.ClusterName, store.Instances)
	return NewInstanceService(cfg, ecsClient, store.Instances, store.Models, reconciler)
}

func TestCreateInstance(t *testing.T) {
	store := newTestStore(t)
	seedModel(t, store.Models, "llama2:7b")
	ctx := context.Background()

	taskARN := "arn:aws:ecs:us-east-1:123456789012:task/test-ollama/abc123"
	ecsClient := new(awsapi.MockECS)
	ecsClient.On("RunTask", mock.Anything, mock.MatchedBy(func(in *ecs.RunTaskInput) bool {
		return aws.ToString(in.Cluster) == "test-ollama" &&
			in.LaunchType == ecstypes.LaunchTypeFargate &&
			in.NetworkConfiguration != nil
	})).Return(&ecs.RunTaskOutput{
		Tasks: []ecstypes.Task{{TaskArn: aws.String(taskARN)}},
	}, nil)

	svc := newInstanceService(t, store, ecsClient)
	resp, err := svc.Create(ctx, testUser(), &entity.CreateInstanceRequest{ModelID: "llama2:7b"})
	require.NoError(t, err)

	_, err = uuid.Parse(resp.ID)
	assert.NoError(t, err)
	assert.Equal(t, entity.StatusStarting, resp.Status)
	assert.Equal(t, "ml.m5.large", resp.InstanceType)
	assert.Equal(t, "$0.12/hour", resp.EstimatedCost)
	assert.Equal(t, taskARN, resp.TaskARN)
	assert.Equal(t, fmt.Sprintf("https://%s.ollama.example.com/api", resp.ID), resp.Endpoint)

	stored, err := store.Instances.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusStarting, stored.Status)
	assert.Equal(t, "user-1", stored.UserID)
	ecsClient.AssertExpectations(t)
}

func TestCreateInstanceContainerEnvironment(t *testing.T) {
	store := newTestStore(t)
	seedModel(t, store.Models, "llama2:7b")
	ctx := context.Background()

	var captured *ecs.RunTaskInput
	ecsClient := new(awsapi.MockECS)
	ecsClient.On("RunTask", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(*ecs.RunTaskInput)
	}).Return(&ecs.RunTaskOutput{
		Tasks: []ecstypes.Task{{TaskArn: aws.String("arn:aws:ecs:us-east-1:123456789012:task/test-ollama/env")}},
	}, nil)

	svc := newInstanceService(t, store, ecsClient)
	resp, err := svc.Create(ctx, testUser(), &entity.CreateInstanceRequest{
		ModelID: "llama2:7b",
		Name:    "team llama",
	})
	require.NoError(t, err)

	require.NotNil(t, captured)
	require.NotNil(t, captured.Overrides)
	require.Len(t, captured.Overrides.ContainerOverrides, 1)
	env := map[string]string{}
	for _, kv := range captured.Overrides.ContainerOverrides[0].Environment {
		env[aws.ToString(kv.Name)] = aws.ToString(kv.Value)
	}
	assert.Equal(t, "0.0.0.0", env["OLLAMA_HOST"])
	assert.Equal(t, "*", env["OLLAMA_ORIGINS"])
	assert.Equal(t, "llama2:7b", env["MODEL_NAME"])
	assert.Equal(t, resp.ID, env["INSTANCE_ID"])
	assert.Equal(t, "user-1", env["USER_ID"])
	assert.Equal(t, "true", env["PRELOAD_MODEL"])

	stored, err := store.Instances.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "team llama", stored.Name)
}

func TestCreateInstanceGPUProfile(t *testing.T) {
	store := newTestStore(t)
	seedModel(t, store.Models, "codellama:13b")
	ctx := context.Background()

	ecsClient := new(awsapi.MockECS)
	ecsClient.On("RunTask", mock.Anything, mock.MatchedBy(func(in *ecs.RunTaskInput) bool {
		return in.LaunchType == ecstypes.LaunchTypeEc2 &&
			aws.ToString(in.TaskDefinition) == testConfig().GPUTaskDefARN &&
			len(in.PlacementConstraints) == 1 &&
			in.NetworkConfiguration == nil
	})).Return(&ecs.RunTaskOutput{
		Tasks: []ecstypes.Task{{TaskArn: aws.String("arn:aws:ecs:us-east-1:123456789012:task/test-ollama/gpu")}},
	}, nil)

	svc := newInstanceService(t, store, ecsClient)
	resp, err := svc.Create(ctx, testUser(), &entity.CreateInstanceRequest{
		ModelID:      "codellama:13b",
		InstanceType: "ml.g4dn.xlarge",
	})
	require.NoError(t, err)
	assert.Equal(t, "$0.71/hour", resp.EstimatedCost)
	ecsClient.AssertExpectations(t)
}

func TestCreateInstanceUnknownModel(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ecsClient := new(awsapi.MockECS)
	svc := newInstanceService(t, store, ecsClient)

	_, err := svc.Create(ctx, testUser(), &entity.CreateInstanceRequest{ModelID: "missing:1b"})
	assert.ErrorIs(t, err, apierror.ErrModelNotFound)

	// Nothing was started or persisted.
	ecsClient.AssertNotCalled(t, "RunTask", mock.Anything, mock.Anything)
	all, err := store.Instances.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateInstanceQuota(t *testing.T) {
	store := newTestStore(t)
	seedModel(t, store.Models, "llama2:7b")
	ctx := context.Background()

	for i := 0; i < testConfig().MaxInstancesPerUser; i++ {
		seedInstance(t, store.Instances, fmt.Sprintf("inst-%d", i), "user-1", entity.StatusRunning)
	}

	ecsClient := new(awsapi.MockECS)
	svc := newInstanceService(t, store, ecsClient)

	_, err := svc.Create(ctx, testUser(), &entity.CreateInstanceRequest{ModelID: "llama2:7b"})
	assert.ErrorIs(t, err, apierror.ErrInstanceLimitExceeded)
	ecsClient.AssertNotCalled(t, "RunTask", mock.Anything, mock.Anything)
}

func TestCreateInstanceQuotaIgnoresStopped(t *testing.T) {
	store := newTestStore(t)
	seedModel(t, store.Models, "llama2:7b")
	ctx := context.Background()

	for i := 0; i < testConfig().MaxInstancesPerUser; i++ {
		seedInstance(t, store.Instances, fmt.Sprintf("inst-%d", i), "user-1", entity.StatusStopped)
	}

	ecsClient := new(awsapi.MockECS)
	ecsClient.On("RunTask", mock.Anything, mock.Anything).Return(&ecs.RunTaskOutput{
		Tasks: []ecstypes.Task{{TaskArn: aws.String("arn:aws:ecs:us-east-1:123456789012:task/test-ollama/abc")}},
	}, nil)

	svc := newInstanceService(t, store, ecsClient)
	_, err := svc.Create(ctx, testUser(), &entity.CreateInstanceRequest{ModelID: "llama2:7b"})
	assert.NoError(t, err)
}

func TestGetInstanceReconcilesStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	record := newInstanceRecord("inst-1", "user-1", entity.StatusStarting)
	record.TaskARN = "arn:aws:ecs:us-east-1:123456789012:task/test-ollama/abc"
	require.NoError(t, store.Instances.Create(ctx, record))

	ecsClient := new(awsapi.MockECS)
	ecsClient.On("DescribeTasks", mock.Anything, mock.Anything).Return(&ecs.DescribeTasksOutput{
		Tasks: []ecstypes.Task{{LastStatus: aws.String("RUNNING")}},
	}, nil)

	svc := newInstanceService(t, store, ecsClient)
	resp, err := svc.Get(ctx, testUser(), "inst-1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRunning, resp.Status)
	assert.Equal(t, entity.StatusRunning, resp.LiveStatus)
}

func TestGetInstanceForbidden(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedInstance(t, store.Instances, "inst-1", "someone-else", entity.StatusRunning)

	svc := newInstanceService(t, store, new(awsapi.MockECS))
	_, err := svc.Get(ctx, testUser(), "inst-1")
	assert.ErrorIs(t, err, apierror.ErrForbidden)
}

func TestGetInstanceAdminBypass(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedInstance(t, store.Instances, "inst-1", "someone-else", entity.StatusRunning)

	svc := newInstanceService(t, store, new(awsapi.MockECS))
	resp, err := svc.Get(ctx, testAdmin(), "inst-1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", resp.UserID)
}

func TestListInstancesScopedToUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedInstance(t, store.Instances, "inst-1", "user-1", entity.StatusRunning)
	seedInstance(t, store.Instances, "inst-2", "someone-else", entity.StatusRunning)

	svc := newInstanceService(t, store, new(awsapi.MockECS))

	mine, err := svc.List(ctx, testUser())
	require.NoError(t, err)
	assert.Equal(t, 1, mine.Count)
	assert.Equal(t, "inst-1", mine.Instances[0].ID)

	all, err := svc.List(ctx, testAdmin())
	require.NoError(t, err)
	assert.Equal(t, 2, all.Count)
}

func TestDeleteInstance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	record := newInstanceRecord("inst-1", "user-1", entity.StatusRunning)
	record.TaskARN = "arn:aws:ecs:us-east-1:123456789012:task/test-ollama/abc"
	require.NoError(t, store.Instances.Create(ctx, record))

	ecsClient := new(awsapi.MockECS)
	ecsClient.On("StopTask", mock.Anything, mock.MatchedBy(func(in *ecs.StopTaskInput) bool {
		return aws.ToString(in.Task) == record.TaskARN
	})).Return(&ecs.StopTaskOutput{}, nil)

	svc := newInstanceService(t, store, ecsClient)
	require.NoError(t, svc.Delete(ctx, testUser(), "inst-1"))

	_, err := store.Instances.GetByID(ctx, "inst-1")
	assert.Error(t, err)
	ecsClient.AssertExpectations(t)
}

func TestDeleteInstanceNotFound(t *testing.T) {
	store := newTestStore(t)
	svc := newInstanceService(t, store, new(awsapi.MockECS))
	err := svc.Delete(context.Background(), testUser(), "missing")
	assert.ErrorIs(t, err, apierror.ErrInstanceNotFound)
}

func TestGetStatusServiceBacked(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	record := newInstanceRecord("inst-1", "user-1", entity.StatusStarting)
	record.ServiceName = "ollama-inst-1"
	require.NoError(t, store.Instances.Create(ctx, record))

	ecsClient := new(awsapi.MockECS)
	ecsClient.On("DescribeServices", mock.Anything, mock.Anything).Return(&ecs.DescribeServicesOutput{
		Services: []ecstypes.Service{
			{Status: aws.String("ACTIVE"), DesiredCount: 1, RunningCount: 1},
		},
	}, nil)

	svc := newInstanceService(t, store, ecsClient)
	resp, err := svc.GetStatus(ctx, testUser(), "inst-1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRunning, resp.Status)
	assert.Equal(t, int32(1), resp.DesiredCount)
	assert.Equal(t, int32(1), resp.RunningCount)
}
