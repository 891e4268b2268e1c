package entity

import "net/http"

// Model is a catalog entry describing a deployable Ollama model.
type Model struct {
	ID             string `json:"model_id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Size           string `json:"size,omitempty"`
	ImageURI       string `json:"image_uri,omitempty"`
	InstanceType   string `json:"instance_type"`
	Category       string `json:"category,omitempty"`
	Popular        bool   `json:"is_popular"`
	MinMemoryGB    int    `json:"min_memory_gb,omitempty"`
	RecommendedCPU int    `json:"recommended_cpu,omitempty"`
	SupportsGPU    bool   `json:"supports_gpu"`
	Status         string `json:"status"`
}

type ListModelsResponse struct {
	Models []Model `json:"models"`
	Count  int     `json:"count"`
}

// StartModelRequest starts a load-balanced deployment of a model on
// the service surface. The snake_case field names match that surface.
type StartModelRequest struct {
	ModelID      string `json:"model_id" binding:"required"`
	InstanceType string `json:"instance_type"`
	Name         string `json:"name"`
}

func (r *StartModelRequest) IsValid() error {
	if r.ModelID == "" {
		return ErrFieldRequired("model_id")
	}
	return nil
}

type StartModelResponse struct {
	InstanceID    string `json:"instance_id"`
	ModelID       string `json:"model_id"`
	Status        string `json:"status"`
	ServiceName   string `json:"service_name"`
	Endpoint      string `json:"endpoint"`
	EstimatedCost string `json:"estimated_cost"`
}

// HTTPStatus marks deployment creation as 201.
func (r *StartModelResponse) HTTPStatus() int {
	return http.StatusCreated
}

type StopModelRequest struct {
	ID string `uri:"id" binding:"required"`
}

type StopModelResponse struct {
	InstanceID string `json:"instance_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}
