package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sellpoint/api/internal/domain"
)

// ShopRepo provides typed DynamoDB operations for the shops table.
type ShopRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewShopRepo(client *dynamodb.Client, tableName string) *ShopRepo {
	return &ShopRepo{client: client, tableName: tableName}
}

func (r *ShopRepo) Put(ctx context.Context, s *domain.Shop) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal shop: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ShopRepo) Get(ctx context.Context, shopID string) (*domain.Shop, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("shop_id", shopID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("shop not found: %w", domain.ErrNotFound)
	}
	var s domain.Shop
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ShopRepo) GetByName(ctx context.Context, name string) (*domain.Shop, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("name-index"),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": "name"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: name}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("shop not found: %w", domain.ErrNotFound)
	}
	var s domain.Shop
	if err := attributevalue.UnmarshalMap(out.Items[0], &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// List scans shops, optionally filtered to a single state value.
func (r *ShopRepo) List(ctx context.Context, state string) ([]domain.Shop, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}
	if state != "" {
		input.FilterExpression = aws.String("#s = :v")
		input.ExpressionAttributeNames = map[string]string{"#s": "state"}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: state},
		}
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, err
	}
	var shops []domain.Shop
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &shops); err != nil {
		return nil, err
	}
	return shops, nil
}

func (r *ShopRepo) Update(ctx context.Context, shopID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("shop_id", shopID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}

func (r *ShopRepo) Delete(ctx context.Context, shopID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("shop_id", shopID),
	})
	return err
}

// ManagedBy returns the shop where the user occupies the seller or buyer
// slot, or ErrNotFound. The manager slots are exclusive across all shops.
// Slots are nullable, so they cannot key a sparse index; the filtered scan
// follows LastEvaluatedKey until a match or the end of the table.
func (r *ShopRepo) ManagedBy(ctx context.Context, userID string) (*domain.Shop, error) {
	input := managedByScan(r.tableName, userID)
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, err
		}
		if len(out.Items) > 0 {
			var s domain.Shop
			if err := attributevalue.UnmarshalMap(out.Items[0], &s); err != nil {
				return nil, err
			}
			return &s, nil
		}
		if out.LastEvaluatedKey == nil {
			return nil, fmt.Errorf("no managed shop: %w", domain.ErrNotFound)
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// managedByScan builds the slot-match scan. Scan applies Limit to the items
// read before the filter runs, so the input must not cap items: a capped
// scan would miss matches past the first evaluated item.
func managedByScan(table, userID string) *dynamodb.ScanInput {
	return &dynamodb.ScanInput{
		TableName:        aws.String(table),
		FilterExpression: aws.String("seller_id = :u OR buyer_id = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
	}
}
