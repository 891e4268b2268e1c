// Package repository provides the persistence layer. Two backends
// implement the same interfaces: DynamoDB for production and a gorm
// sqlite store for local development and tests. Callers never see
// backend-specific errors; lookups that miss return ErrNotFound.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ollamacloud/oip/internal/oip/repository/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // pure Go sqlite driver, no CGO
)

// ErrNotFound reports that the requested record does not exist, on
// any backend.
var ErrNotFound = errors.New("record not found")

// ActiveStatuses are the instance states that count against the
// per-user quota.
var ActiveStatuses = []string{"starting", "running"}

// InstanceRepository stores model instances.
type InstanceRepository interface {
	Create(ctx context.Context, instance *model.Instance) error
	GetByID(ctx context.Context, id string) (*model.Instance, error)
	// List returns all instances, newest first.
	List(ctx context.Context) ([]*model.Instance, error)
	// ListByUser returns one user's instances, newest first.
	ListByUser(ctx context.Context, userID string) ([]*model.Instance, error)
	// CountActiveByUser counts a user's instances in an active state.
	CountActiveByUser(ctx context.Context, userID string) (int, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	// MarkStopped sets the stopped status and records the stop time.
	MarkStopped(ctx context.Context, id string, stoppedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// ModelRepository stores the model catalog.
type ModelRepository interface {
	Put(ctx context.Context, m *model.Model) error
	GetByID(ctx context.Context, id string) (*model.Model, error)
	// ListAvailable returns catalog entries deployable right now.
	ListAvailable(ctx context.Context) ([]*model.Model, error)
}

// UserRepository stores per-account bookkeeping records.
type UserRepository interface {
	Put(ctx context.Context, u *model.User) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
}

// Repository is the sqlite-backed store.
type Repository struct {
	db *gorm.DB
}

// New opens (or creates) the sqlite database at dbPath and migrates
// the schema.
func New(dbPath string) (*Repository, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// database/sql + modernc.org/sqlite keeps the build CGO-free; the
	// gorm Dialector wraps the already-open connection.
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        dbPath,
		Conn:       sqlDB,
	}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open gorm database: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Instance{},
		&model.Model{},
		&model.User{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &Repository{db: db}, nil
}

// DB returns the gorm handle for the repository implementations.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Close closes the underlying connection.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// normalizeGormErr maps gorm's not-found error onto the
// backend-neutral sentinel.
func normalizeGormErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
