package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/Mindburn-Labs/contacts/pkg/contact"
)

// DefaultTable is the contacts table used when none is configured.
const DefaultTable = "Contacts_SS"

// DynamoDBPutter is the slice of the DynamoDB API the store needs.
type DynamoDBPutter interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoDBStore writes each record as one item keyed by id.
type DynamoDBStore struct {
	client DynamoDBPutter
	table  string
}

// DynamoDBConfig holds configuration for DynamoDBStore.
type DynamoDBConfig struct {
	AWS   AWSConfig
	Table string
}

// NewDynamoDBStore wraps an existing client.
func NewDynamoDBStore(client DynamoDBPutter, table string) *DynamoDBStore {
	if table == "" {
		table = DefaultTable
	}
	return &DynamoDBStore{client: client, table: table}
}

// NewDynamoDBStoreFromConfig builds a client from the default AWS credential
// chain. The client is created once and reused across invocations.
func NewDynamoDBStoreFromConfig(ctx context.Context, cfg DynamoDBConfig) (*DynamoDBStore, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	})
	return NewDynamoDBStore(client, cfg.Table), nil
}

// Put issues a single PutItem.
func (s *DynamoDBStore) Put(ctx context.Context, rec contact.Record) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return &Error{Kind: KindUnknown, Backend: TypeDynamoDB, Err: fmt.Errorf("marshal item: %w", err)}
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return Classify(TypeDynamoDB, fmt.Errorf("dynamodb put %s: %w", s.table, err))
	}
	return nil
}
