package idgen

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/sonyflake"
)

// Generator generates identifiers for the platform.
//
// Instance IDs are random UUIDs: endpoint hostnames, ECS service names
// and log stream prefixes are all derived from the first characters of
// the instance ID, so IDs must not be guessable or reused. Request IDs
// only need to be unique and sortable, so they use Sonyflake.
type Generator struct {
	sf *sonyflake.Sonyflake
}

var (
	defaultGenerator     *Generator
	defaultGeneratorOnce sync.Once
)

// DefaultGenerator returns the shared default generator.
func DefaultGenerator() *Generator {
	defaultGeneratorOnce.Do(func() {
		defaultGenerator = New()
	})
	return defaultGenerator
}

// New creates a new Generator.
func New() *Generator {
	sf := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if sf == nil {
		sf = sonyflake.NewSonyflake(sonyflake.Settings{
			StartTime: time.Now(),
		})
	}

	return &Generator{
		sf: sf,
	}
}

// GenerateInstanceID generates a new instance ID (UUID v4).
func (g *Generator) GenerateInstanceID() string {
	return uuid.New().String()
}

// GenerateRequestID generates a request ID (format: req-{increasing ID}).
func (g *Generator) GenerateRequestID() (string, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return "", fmt.Errorf("generate request ID: %w", err)
	}
	return fmt.Sprintf("req-%d", id), nil
}

// ShortID returns the first 8 characters of an instance ID, used for
// ECS service names and log stream prefixes.
func ShortID(instanceID string) string {
	if len(instanceID) <= 8 {
		return instanceID
	}
	return instanceID[:8]
}

// Package-level convenience functions using the default generator.

// GenerateInstanceID generates an instance ID with the default generator.
func GenerateInstanceID() string {
	return DefaultGenerator().GenerateInstanceID()
}

// GenerateRequestID generates a request ID with the default generator.
func GenerateRequestID() (string, error) {
	return DefaultGenerator().GenerateRequestID()
}
