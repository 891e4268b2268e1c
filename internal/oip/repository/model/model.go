package model

import "time"

// Model statuses in the catalog. Only available models may be
// deployed.
const (
	ModelStatusAvailable = "available"
	ModelStatusDisabled  = "disabled"
)

// Model is a catalog entry for a deployable Ollama model. The ID is
// also the Ollama model name pulled inside the container.
type Model struct {
	ID             string    `gorm:"primaryKey;type:text;column:model_id" dynamodbav:"model_id" json:"model_id" yaml:"model_id"`
	Name           string    `gorm:"type:text;not null;column:name" dynamodbav:"name" json:"name" yaml:"name"`
	Description    string    `gorm:"type:text;column:description" dynamodbav:"description,omitempty" json:"description" yaml:"description"`
	Size           string    `gorm:"type:text;column:size" dynamodbav:"size,omitempty" json:"size" yaml:"size"`
	ImageURI       string    `gorm:"type:text;column:image_uri" dynamodbav:"image_uri,omitempty" json:"image_uri" yaml:"image_uri"`
	InstanceType   string    `gorm:"type:text;not null;column:instance_type" dynamodbav:"instance_type" json:"instance_type" yaml:"instance_type"`
	Category       string    `gorm:"type:text;column:category" dynamodbav:"category,omitempty" json:"category" yaml:"category"`
	Popular        bool      `gorm:"column:popular" dynamodbav:"isPopular" json:"is_popular" yaml:"is_popular"`
	MinMemoryGB    int       `gorm:"column:min_memory_gb" dynamodbav:"min_memory_gb,omitempty" json:"min_memory_gb" yaml:"min_memory_gb"`
	RecommendedCPU int       `gorm:"column:recommended_cpu" dynamodbav:"recommended_cpu,omitempty" json:"recommended_cpu" yaml:"recommended_cpu"`
	SupportsGPU    bool      `gorm:"column:supports_gpu" dynamodbav:"supports_gpu" json:"supports_gpu" yaml:"supports_gpu"`
	Status         string    `gorm:"type:text;not null;index:idx_models_status;column:status" dynamodbav:"status" json:"status" yaml:"status"`
	CreatedAt      time.Time `gorm:"type:datetime;column:created_at" dynamodbav:"created_at,omitempty" json:"created_at" yaml:"created_at,omitempty"`
}

func (Model) TableName() string {
	return "models"
}
