package model

import "time"

// User mirrors the Cognito account for platform bookkeeping. Cognito
// remains the source of truth for credentials and group membership.
type User struct {
	UserID      string     `gorm:"primaryKey;type:text;column:user_id" dynamodbav:"userId" json:"user_id"`
	Email       string     `gorm:"type:text;not null;index:idx_users_email;column:email" dynamodbav:"email" json:"email"`
	Name        string     `gorm:"type:text;column:name" dynamodbav:"name,omitempty" json:"name"`
	CreatedAt   time.Time  `gorm:"type:datetime;not null;column:created_at" dynamodbav:"createdAt,unixtime" json:"created_at"`
	LastLoginAt *time.Time `gorm:"type:datetime;column:last_login_at" dynamodbav:"lastLoginAt,omitempty,unixtime" json:"last_login_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}
