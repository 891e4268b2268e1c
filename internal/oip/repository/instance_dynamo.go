package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ollamacloud/oip/internal/oip/repository/model"
	"github.com/ollamacloud/oip/pkg/awsapi"
)

// userIDIndex is the GSI keyed on userId.
const userIDIndex = "UserIdIndex"

type dynamoInstanceRepository struct {
	client awsapi.DynamoDBAPI
	table  string
}

// NewDynamoInstanceRepository creates the DynamoDB-backed instance
// store.
func NewDynamoInstanceRepository(client awsapi.DynamoDBAPI, table string) InstanceRepository {
	return &dynamoInstanceRepository{client: client, table: table}
}

func (r *dynamoInstanceRepository) Create(ctx context.Context, instance *model.Instance) error {
	item, err := attributevalue.MarshalMap(instance)
	if err != nil {
		return fmt.Errorf("marshal instance: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	return err
}

func (r *dynamoInstanceRepository) GetByID(ctx context.Context, id string) (*model.Instance, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       instanceKey(id),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var instance model.Instance
	if err := attributevalue.UnmarshalMap(out.Item, &instance); err != nil {
		return nil, fmt.Errorf("unmarshal instance: %w", err)
	}
	return &instance, nil
}

func (r *dynamoInstanceRepository) List(ctx context.Context) ([]*model.Instance, error) {
	var instances []*model.Instance
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		page, err := unmarshalInstances(out.Items)
		if err != nil {
			return nil, err
		}
		instances = append(instances, page...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	sortNewestFirst(instances)
	return instances, nil
}

func (r *dynamoInstanceRepository) ListByUser(ctx context.Context, userID string) ([]*model.Instance, error) {
	var instances []*model.Instance
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.table),
			IndexName:              aws.String(userIDIndex),
			KeyConditionExpression: aws.String("userId = :uid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uid": &types.AttributeValueMemberS{Value: userID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		page, err := unmarshalInstances(out.Items)
		if err != nil {
			return nil, err
		}
		instances = append(instances, page...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	sortNewestFirst(instances)
	return instances, nil
}

func (r *dynamoInstanceRepository) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	count := 0
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.table),
			IndexName:              aws.String(userIDIndex),
			KeyConditionExpression: aws.String("userId = :uid"),
			FilterExpression:       aws.String("#s IN (:starting, :running)"),
			ExpressionAttributeNames: map[string]string{
				"#s": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uid":      &types.AttributeValueMemberS{Value: userID},
				":starting": &types.AttributeValueMemberS{Value: "starting"},
				":running":  &types.AttributeValueMemberS{Value: "running"},
			},
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, err
		}
		count += int(out.Count)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return count, nil
}

func (r *dynamoInstanceRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 instanceKey(id),
		UpdateExpression:    aws.String("SET #s = :s, updatedAt = :u"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s": &types.AttributeValueMemberS{Value: status},
			":u": unixTimeAttr(time.Now().UTC()),
		},
	})
	return normalizeDynamoErr(err)
}

func (r *dynamoInstanceRepository) MarkStopped(ctx context.Context, id string, stoppedAt time.Time) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 instanceKey(id),
		UpdateExpression:    aws.String("SET #s = :s, stoppedAt = :t, updatedAt = :u"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s": &types.AttributeValueMemberS{Value: "stopped"},
			":t": unixTimeAttr(stoppedAt),
			":u": unixTimeAttr(time.Now().UTC()),
		},
	})
	return normalizeDynamoErr(err)
}

func (r *dynamoInstanceRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.table),
		Key:                 instanceKey(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	return normalizeDynamoErr(err)
}

func instanceKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func unmarshalInstances(items []map[string]types.AttributeValue) ([]*model.Instance, error) {
	instances := make([]*model.Instance, 0, len(items))
	for _, item := range items {
		var instance model.Instance
		if err := attributevalue.UnmarshalMap(item, &instance); err != nil {
			return nil, fmt.Errorf("unmarshal instance: %w", err)
		}
		instances = append(instances, &instance)
	}
	return instances, nil
}

func sortNewestFirst(instances []*model.Instance) {
	sort.SliceStable(instances, func(i, j int) bool {
		return instances[i].StartedAt.After(instances[j].StartedAt)
	})
}

// unixTimeAttr matches the unixtime dynamodbav encoding of the model
// structs.
func unixTimeAttr(t time.Time) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(t.Unix(), 10)}
}

// normalizeDynamoErr maps a failed attribute_exists condition onto
// the backend-neutral sentinel.
func normalizeDynamoErr(err error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return ErrNotFound
	}
	return err
}
