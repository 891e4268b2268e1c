package entity

import (
	"net/http"
	"time"
)

// Instance lifecycle states. starting and running count against the
// per-user active-instance quota.
const (
	StatusStarting = "starting"
	StatusRunning  = "running"
	StatusStopping = "stopping"
	StatusStopped  = "stopped"
	StatusPending  = "pending"
	StatusUnknown  = "unknown"
)

// Instance is the API view of a model instance.
type Instance struct {
	ID             string     `json:"id"`
	ModelID        string     `json:"modelId"`
	ModelName      string     `json:"modelName,omitempty"`
	Name           string     `json:"name,omitempty"`
	UserID         string     `json:"userId"`
	Status         string     `json:"status"`
	InstanceType   string     `json:"instanceType"`
	EstimatedCost  string     `json:"estimatedCost"`
	Endpoint       string     `json:"endpoint,omitempty"`
	ServiceName    string     `json:"serviceName,omitempty"`
	TaskARN        string     `json:"taskArn,omitempty"`
	TargetGroupARN string     `json:"targetGroupArn,omitempty"`
	StartedAt      time.Time  `json:"startedAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	StoppedAt      *time.Time `json:"stoppedAt,omitempty"`

	// LiveStatus is the status read from ECS at request time, best
	// effort. When the read fails the Status field keeps the stored
	// value.
	LiveStatus string `json:"liveStatus,omitempty"`
}

// CreateInstanceRequest starts a new instance of a catalog model.
type CreateInstanceRequest struct {
	ModelID      string `json:"modelId" binding:"required"`
	InstanceType string `json:"instanceType"`
	Name         string `json:"name"`
}

func (r *CreateInstanceRequest) IsValid() error {
	if r.ModelID == "" {
		return ErrFieldRequired("modelId")
	}
	return nil
}

type CreateInstanceResponse struct {
	Instance
}

// HTTPStatus marks resource creation as 201.
func (r *CreateInstanceResponse) HTTPStatus() int {
	return http.StatusCreated
}

type GetInstanceRequest struct {
	ID string `uri:"id" binding:"required"`
}

type GetInstanceResponse struct {
	Instance
}

type ListInstancesResponse struct {
	Instances []Instance `json:"instances"`
	Count     int        `json:"count"`
}

type DeleteInstanceRequest struct {
	ID string `uri:"id" binding:"required"`
}

type GetInstanceStatusRequest struct {
	ID string `uri:"id" binding:"required"`
}

// GetInstanceStatusResponse reports the reconciled status of one
// instance together with the raw ECS view it was derived from.
type GetInstanceStatusResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	DesiredCount int32  `json:"desiredCount,omitempty"`
	RunningCount int32  `json:"runningCount,omitempty"`
	PendingCount int32  `json:"pendingCount,omitempty"`
	Endpoint     string `json:"endpoint,omitempty"`
}

type GetInstanceLogsRequest struct {
	ID string `uri:"id" binding:"required"`
}

// LogEvent is one CloudWatch log line.
type LogEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Stream    string    `json:"stream"`
}

type GetInstanceLogsResponse struct {
	InstanceID string     `json:"instanceId"`
	LogGroup   string     `json:"logGroup"`
	Events     []LogEvent `json:"events"`

	// Message explains an empty event list, e.g. the log group does
	// not exist yet.
	Message string `json:"message,omitempty"`
}
