package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ollamacloud/oip/internal/oip/repository/model"
	"github.com/ollamacloud/oip/pkg/awsapi"
)

type dynamoUserRepository struct {
	client awsapi.DynamoDBAPI
	table  string
}

// NewDynamoUserRepository creates the DynamoDB-backed user store.
func NewDynamoUserRepository(client awsapi.DynamoDBAPI, table string) UserRepository {
	return &dynamoUserRepository{client: client, table: table}
}

func (r *dynamoUserRepository) Put(ctx context.Context, u *model.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	return err
}

func (r *dynamoUserRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
		},
		UpdateExpression:    aws.String("SET lastLoginAt = :t"),
		ConditionExpression: aws.String("attribute_exists(userId)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": unixTimeAttr(at),
		},
	})
	return normalizeDynamoErr(err)
}
