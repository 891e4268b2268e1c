package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ollamacloud/oip/internal/oip/repository/model"
	"github.com/ollamacloud/oip/pkg/awsapi"
)

type dynamoModelRepository struct {
	client awsapi.DynamoDBAPI
	table  string
}

// NewDynamoModelRepository creates the DynamoDB-backed catalog store.
func NewDynamoModelRepository(client awsapi.DynamoDBAPI, table string) ModelRepository {
	return &dynamoModelRepository{client: client, table: table}
}

func (r *dynamoModelRepository) Put(ctx context.Context, m *model.Model) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	return err
}

func (r *dynamoModelRepository) GetByID(ctx context.Context, id string) (*model.Model, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"model_id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var m model.Model
	if err := attributevalue.UnmarshalMap(out.Item, &m); err != nil {
		return nil, fmt.Errorf("unmarshal model: %w", err)
	}
	return &m, nil
}

func (r *dynamoModelRepository) ListAvailable(ctx context.Context) ([]*model.Model, error) {
	var models []*model.Model
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(r.table),
			FilterExpression: aws.String("#s = :available"),
			ExpressionAttributeNames: map[string]string{
				"#s": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":available": &types.AttributeValueMemberS{Value: model.ModelStatusAvailable},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		for _, item := range out.Items {
			var m model.Model
			if err := attributevalue.UnmarshalMap(item, &m); err != nil {
				return nil, fmt.Errorf("unmarshal model: %w", err)
			}
			models = append(models, &m)
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}
