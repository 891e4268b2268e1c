package model

import "time"

// Instance is the persistence shape of a model instance. It is stored
// in the instances DynamoDB table in production and in sqlite for
// local development; the dynamodbav attribute names match the table's
// item keys.
type Instance struct {
	ID             string     `gorm:"primaryKey;type:text;column:id" dynamodbav:"id" json:"id"`
	ModelID        string     `gorm:"type:text;not null;column:model_id" dynamodbav:"modelId" json:"model_id"`
	ModelName      string     `gorm:"type:text;column:model_name" dynamodbav:"modelName,omitempty" json:"model_name"`
	Name           string     `gorm:"type:text;column:name" dynamodbav:"customName,omitempty" json:"name,omitempty"`
	UserID         string     `gorm:"type:text;not null;index:idx_instances_user_id;column:user_id" dynamodbav:"userId" json:"user_id"`
	Status         string     `gorm:"type:text;not null;index:idx_instances_status;column:status" dynamodbav:"status" json:"status"`
	InstanceType   string     `gorm:"type:text;not null;column:instance_type" dynamodbav:"instanceType" json:"instance_type"`
	EstimatedCost  string     `gorm:"type:text;column:estimated_cost" dynamodbav:"estimatedCost,omitempty" json:"estimated_cost"`
	Endpoint       string     `gorm:"type:text;column:endpoint" dynamodbav:"endpoint,omitempty" json:"endpoint"`
	ServiceName    string     `gorm:"type:text;column:service_name" dynamodbav:"serviceName,omitempty" json:"service_name"`
	TaskARN        string     `gorm:"type:text;column:task_arn" dynamodbav:"taskArn,omitempty" json:"task_arn"`
	TaskDefARN     string     `gorm:"type:text;column:task_def_arn" dynamodbav:"taskDefinitionArn,omitempty" json:"task_def_arn"`
	TargetGroupARN string     `gorm:"type:text;column:target_group_arn" dynamodbav:"targetGroupArn,omitempty" json:"target_group_arn"`
	StartedAt      time.Time  `gorm:"type:datetime;not null;index:idx_instances_started_at;column:started_at" dynamodbav:"startedAt,unixtime" json:"started_at"`
	UpdatedAt      time.Time  `gorm:"type:datetime;not null;column:updated_at" dynamodbav:"updatedAt,unixtime" json:"updated_at"`
	StoppedAt      *time.Time `gorm:"type:datetime;column:stopped_at" dynamodbav:"stoppedAt,omitempty,unixtime" json:"stopped_at,omitempty"`

	// ExpiresAt feeds the DynamoDB TTL attribute on service-backed
	// instances so abandoned deployments age out.
	ExpiresAt *time.Time `gorm:"type:datetime;column:expires_at" dynamodbav:"ttl,omitempty,unixtime" json:"expires_at,omitempty"`
}

func (Instance) TableName() string {
	return "instances"
}
