package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sellpoint/api/internal/domain"
)

// ProductRepo provides typed DynamoDB operations for the products table.
type ProductRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewProductRepo(client *dynamodb.Client, tableName string) *ProductRepo {
	return &ProductRepo{client: client, tableName: tableName}
}

func (r *ProductRepo) Put(ctx context.Context, p *domain.Product) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ProductRepo) Get(ctx context.Context, productID string) (*domain.Product, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("product_id", productID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}
	var p domain.Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByName finds a product by exact name within a category. Partner
// imports use it to reuse catalog entries across uploads.
func (r *ProductRepo) GetByName(ctx context.Context, categoryID, name string) (*domain.Product, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("category_id-index"),
		KeyConditionExpression:    aws.String("#c = :c"),
		FilterExpression:          aws.String("#n = :n"),
		ExpressionAttributeNames:  map[string]string{"#c": "category_id", "#n": "name"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: categoryID},
			":n": &types.AttributeValueMemberS{Value: name},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}
	var p domain.Product
	if err := attributevalue.UnmarshalMap(out.Items[0], &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) ListByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("category_id-index"),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": "category_id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: categoryID}},
	})
	if err != nil {
		return nil, err
	}
	var products []domain.Product
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	if err != nil {
		return nil, err
	}
	var products []domain.Product
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ProductInfoRepo provides typed DynamoDB operations for the product_infos
// table, which holds per-shop offers of catalog products.
type ProductInfoRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewProductInfoRepo(client *dynamodb.Client, tableName string) *ProductInfoRepo {
	return &ProductInfoRepo{client: client, tableName: tableName}
}

func (r *ProductInfoRepo) Put(ctx context.Context, pi *domain.ProductInfo) error {
	item, err := attributevalue.MarshalMap(pi)
	if err != nil {
		return fmt.Errorf("marshal product info: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ProductInfoRepo) Get(ctx context.Context, productInfoID string) (*domain.ProductInfo, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("product_info_id", productInfoID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("offer not found: %w", domain.ErrNotFound)
	}
	var pi domain.ProductInfo
	if err := attributevalue.UnmarshalMap(out.Item, &pi); err != nil {
		return nil, err
	}
	return &pi, nil
}

func (r *ProductInfoRepo) ListByShop(ctx context.Context, shopID string) ([]domain.ProductInfo, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("shop_id-index"),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": "shop_id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: shopID}},
	})
	if err != nil {
		return nil, err
	}
	var infos []domain.ProductInfo
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

func (r *ProductInfoRepo) List(ctx context.Context) ([]domain.ProductInfo, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	if err != nil {
		return nil, err
	}
	var infos []domain.ProductInfo
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// DeleteByShop wipes every offer a shop has published. Partner price-list
// imports call it before loading the new list.
func (r *ProductInfoRepo) DeleteByShop(ctx context.Context, shopID string) error {
	infos, err := r.ListByShop(ctx, shopID)
	if err != nil {
		return err
	}
	for _, pi := range infos {
		_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       strKey("product_info_id", pi.ProductInfoID),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
