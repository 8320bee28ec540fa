package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sellpoint/api/internal/domain"
)

// SnapshotRepo stores pre-update field snapshots. Records carry an
// expires_at attribute that DynamoDB TTL reaps, so abandoned verification
// round-trips clean themselves up.
type SnapshotRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSnapshotRepo(client *dynamodb.Client, tableName string) *SnapshotRepo {
	return &SnapshotRepo{client: client, tableName: tableName}
}

// Put overwrites the user's snapshot. At most one snapshot per user exists
// at a time; a new update attempt replaces the previous one.
func (r *SnapshotRepo) Put(ctx context.Context, s *domain.FieldSnapshot) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *SnapshotRepo) Get(ctx context.Context, userID string) (*domain.FieldSnapshot, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("snapshot not found: %w", domain.ErrNotFound)
	}
	var s domain.FieldSnapshot
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SnapshotRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	return err
}
