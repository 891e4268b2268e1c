package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ollamacloud/oip/internal/oip/config"
	"github.com/ollamacloud/oip/internal/oip/entity"
	"github.com/ollamacloud/oip/internal/oip/repository"
	"github.com/ollamacloud/oip/internal/oip/repository/model"
	"github.com/stretchr/testify/require"
)

// testStore bundles sqlite-backed repositories for service tests.
type testStore struct {
	Instances repository.InstanceRepository
	Models    repository.ModelRepository
	Users     repository.UserRepository
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	repo, err := repository.New(filepath.Join(t.TempDir(), "oip.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return &testStore{
		Instances: repository.NewInstanceRepository(repo.DB()),
		Models:    repository.NewModelRepository(repo.DB()),
		Users:     repository.NewUserRepository(repo.DB()),
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Address:             "127.0.0.1:0",
		Environment:         "test",
		Region:              "us-east-1",
		DomainName:          "ollama.example.com",
		ClusterName:         "test-ollama",
		CPUTaskDefARN:       "arn:aws:ecs:us-east-1:123456789012:task-definition/test-ollama-cpu:1",
		GPUTaskDefARN:       "arn:aws:ecs:us-east-1:123456789012:task-definition/test-ollama-gpu:1",
		PrivateSubnetIDs:    []string{"subnet-1", "subnet-2"},
		SecurityGroupID:     "sg-1",
		ExecutionRoleARN:    "arn:aws:iam::123456789012:role/test-ollama-exec",
		TaskRoleARN:         "arn:aws:iam::123456789012:role/test-ollama-task",
		VPCID:               "vpc-1",
		UserPoolID:          "us-east-1_test",
		ClientID:            "client-1",
		MaxInstancesPerUser: 5,
	}
}

func testUser() *entity.Identity {
	return &entity.Identity{
		UserID:   "user-1",
		Email:    "dev@example.com",
		Username: "dev",
		Groups:   []string{"Users"},
	}
}

func testAdmin() *entity.Identity {
	return &entity.Identity{
		UserID:   "admin-1",
		Email:    "admin@example.com",
		Username: "admin",
		Groups:   []string{entity.AdminGroup},
	}
}

// seedModel puts a deployable catalog entry.
func seedModel(t *testing.T, models repository.ModelRepository, id string) *model.Model {
	t.Helper()
	m := &model.Model{
		ID:           id,
		Name:         "Test " + id,
		ImageURI:     "123456789012.dkr.ecr.us-east-1.amazonaws.com/ollama-" + id,
		InstanceType: "ml.m5.large",
		Status:       model.ModelStatusAvailable,
	}
	require.NoError(t, models.Put(context.Background(), m))
	return m
}

// newInstanceRecord builds an instance record without persisting it.
func newInstanceRecord(id, userID, status string) *model.Instance {
	now := time.Now().UTC()
	return &model.Instance{
		ID:           id,
		ModelID:      "llama2:7b",
		ModelName:    "Llama 2 7B",
		UserID:       userID,
		Status:       status,
		InstanceType: "ml.m5.large",
		StartedAt:    now,
		UpdatedAt:    now,
	}
}

// seedInstance puts an instance record owned by userID.
func seedInstance(t *testing.T, instances repository.InstanceRepository, id, userID, status string) *model.Instance {
	t.Helper()
	now := time.Now().UTC()
	record := &model.Instance{
		ID:           id,
		ModelID:      "llama2:7b",
		ModelName:    "Llama 2 7B",
		UserID:       userID,
		Status:       status,
		InstanceType: "ml.m5.large",
		StartedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, instances.Create(context.Background(), record))
	return record
}
