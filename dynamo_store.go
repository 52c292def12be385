package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoStore implements Store using DynamoDB.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

// NewDynamoStore creates a DynamoDB client and returns a DynamoStore.
func NewDynamoStore(ctx context.Context, cfg Config) (*DynamoStore, error) {
	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.AWSRegion))

	if cfg.DynamoEndpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(cfg.DynamoEndpoint))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg)

	return &DynamoStore{
		client:    client,
		tableName: cfg.DynamoTableName,
	}, nil
}

func (s *DynamoStore) pk(userID uint64) string {
	return "USER#" + strconv.FormatUint(userID, 10)
}

func (s *DynamoStore) Put(ctx context.Context, userID uint64, reason string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item: map[string]types.AttributeValue{
			"PK":        &types.AttributeValueMemberS{Value: s.pk(userID)},
			"reason":    &types.AttributeValueMemberS{Value: reason},
			"updatedAt": &types.AttributeValueMemberS{Value: now},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: PutItem %d: %w", ErrStoreIO, userID, err)
	}

	return nil
}

func (s *DynamoStore) Get(ctx context.Context, userID uint64) (ReasonRecord, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: s.pk(userID)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return ReasonRecord{}, false, fmt.Errorf("%w: GetItem %d: %w", ErrStoreIO, userID, err)
	}

	if out.Item == nil {
		return ReasonRecord{}, false, nil
	}

	reason, err := unmarshalReason(out.Item)
	if err != nil {
		return ReasonRecord{}, false, fmt.Errorf("%w: item %d: %w", ErrStoreIO, userID, err)
	}

	return ReasonRecord{UserID: userID, Reason: reason}, true, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *DynamoStore) Close() error {
	return nil
}

// unmarshalReason extracts the reason text from a DynamoDB item.
func unmarshalReason(item map[string]types.AttributeValue) (string, error) {
	attr, ok := item["reason"]
	if !ok {
		return "", fmt.Errorf("reason attribute missing")
	}

	sv, ok := attr.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("reason attribute is not a string")
	}

	return sv.Value, nil
}
