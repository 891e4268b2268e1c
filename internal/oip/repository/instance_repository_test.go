package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ollamacloud/oip/internal/oip/repository/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "oip.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newInstance(id, userID, status string, startedAt time.Time) *model.Instance {
	return &model.Instance{
		ID:           id,
		ModelID:      "llama2:7b",
		ModelName:    "Llama 2 7B",
		UserID:       userID,
		Status:       status,
		InstanceType: "ml.m5.large",
		StartedAt:    startedAt,
		UpdatedAt:    startedAt,
	}
}

func TestInstanceRepositoryCRUD(t *testing.T) {
	repo := newTestRepository(t)
	instances := NewInstanceRepository(repo.DB())
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, instances.Create(ctx, newInstance("inst-1", "user-1", "starting", now)))

	got, err := instances.GetByID(ctx, "inst-1")
	require.NoError(t, err)
	assert.Equal(t, "llama2:7b", got.ModelID)
	assert.Equal(t, "starting", got.Status)

	require.NoError(t, instances.UpdateStatus(ctx, "inst-1", "running"))
	got, err = instances.GetByID(ctx, "inst-1")
	require.NoError(t, err)
	assert.Equal(t, "running", got.Status)

	stoppedAt := now.Add(time.Hour)
	require.NoError(t, instances.MarkStopped(ctx, "inst-1", stoppedAt))
	got, err = instances.GetByID(ctx, "inst-1")
	require.NoError(t, err)
	assert.Equal(t, "stopped", got.Status)
	require.NotNil(t, got.StoppedAt)
	assert.Equal(t, stoppedAt.Unix(), got.StoppedAt.Unix())

	require.NoError(t, instances.Delete(ctx, "inst-1"))
	_, err = instances.GetByID(ctx, "inst-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInstanceRepositoryNotFound(t *testing.T) {
	repo := newTestRepository(t)
	instances := NewInstanceRepository(repo.DB())
	ctx := context.Background()

	_, err := instances.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, instances.UpdateStatus(ctx, "missing", "running"), ErrNotFound)
	assert.ErrorIs(t, instances.MarkStopped(ctx, "missing", time.Now()), ErrNotFound)
	assert.ErrorIs(t, instances.Delete(ctx, "missing"), ErrNotFound)
}

func TestInstanceRepositoryListOrdering(t *testing.T) {
	repo := newTestRepository(t)
	instances := NewInstanceRepository(repo.DB())
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, instances.Create(ctx, newInstance("inst-old", "user-1", "stopped", base.Add(-2*time.Hour))))
	require.NoError(t, instances.Create(ctx, newInstance("inst-new", "user-1", "running", base)))
	require.NoError(t, instances.Create(ctx, newInstance("inst-mid", "user-2", "running", base.Add(-time.Hour))))

	all, err := instances.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "inst-new", all[0].ID)
	assert.Equal(t, "inst-mid", all[1].ID)
	assert.Equal(t, "inst-old", all[2].ID)

	mine, err := instances.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "inst-new", mine[0].ID)
	assert.Equal(t, "inst-old", mine[1].ID)
}

func TestInstanceRepositoryCountActiveByUser(t *testing.T) {
	repo := newTestRepository(t)
	instances := NewInstanceRepository(repo.DB())
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, instances.Create(ctx, newInstance("inst-1", "user-1", "starting", now)))
	require.NoError(t, instances.Create(ctx, newInstance("inst-2", "user-1", "running", now)))
	require.NoError(t, instances.Create(ctx, newInstance("inst-3", "user-1", "stopped", now)))
	require.NoError(t, instances.Create(ctx, newInstance("inst-4", "user-2", "running", now)))

	count, err := instances.CountActiveByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = instances.CountActiveByUser(ctx, "user-3")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestModelRepository(t *testing.T) {
	repo := newTestRepository(t)
	models := NewModelRepository(repo.DB())
	ctx := context.Background()

	require.NoError(t, models.Put(ctx, &model.Model{
		ID:           "llama2:7b",
		Name:         "Llama 2 7B",
		InstanceType: "ml.m5.large",
		Status:       model.ModelStatusAvailable,
	}))
	require.NoError(t, models.Put(ctx, &model.Model{
		ID:           "codellama:34b",
		Name:         "Code Llama 34B",
		InstanceType: "ml.p3.2xlarge",
		Status:       model.ModelStatusDisabled,
	}))

	got, err := models.GetByID(ctx, "llama2:7b")
	require.NoError(t, err)
	assert.Equal(t, "Llama 2 7B", got.Name)

	_, err = models.GetByID(ctx, "missing:1b")
	assert.ErrorIs(t, err, ErrNotFound)

	available, err := models.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "llama2:7b", available[0].ID)

	// Put is an upsert keyed by model ID.
	require.NoError(t, models.Put(ctx, &model.Model{
		ID:           "llama2:7b",
		Name:         "Llama 2 7B Chat",
		InstanceType: "ml.m5.large",
		Status:       model.ModelStatusAvailable,
	}))
	got, err = models.GetByID(ctx, "llama2:7b")
	require.NoError(t, err)
	assert.Equal(t, "Llama 2 7B Chat", got.Name)
}

func TestUserRepository(t *testing.T) {
	repo := newTestRepository(t)
	users := NewUserRepository(repo.DB())
	ctx := context.Background()

	created := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, users.Put(ctx, &model.User{
		UserID:    "user-1",
		Email:     "dev@example.com",
		Name:      "Dev",
		CreatedAt: created,
	}))

	loginAt := created.Add(time.Minute)
	require.NoError(t, users.UpdateLastLogin(ctx, "user-1", loginAt))
	assert.ErrorIs(t, users.UpdateLastLogin(ctx, "missing", loginAt), ErrNotFound)
}
