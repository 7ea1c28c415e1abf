package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/pkg/errors"

	"github.com/isometry/payment-webhook/internal/models"
)

// DynamoDBAPI is the subset of the DynamoDB client used by DynamoDB.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoDB writes records to a table whose partition key is tx_ref.
// PutItem replaces the whole item, which gives last-write-wins per key.
type DynamoDB struct {
	client DynamoDBAPI
	table  string
}

func NewDynamoDB(client DynamoDBAPI, table string) *DynamoDB {
	return &DynamoDB{client: client, table: table}
}

func (s *DynamoDB) Upsert(ctx context.Context, record models.TransactionRecord) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return errors.Wrap(err, "failed to marshal transaction")
	}
	if _, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.table,
		Item:      item,
	}); err != nil {
		return errors.Wrapf(err, "failed to put transaction %s", record.TxRef)
	}
	return nil
}
