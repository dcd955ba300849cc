package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
	"github.com/vedicotp/vedicotp/internal/models"
)

// DynamoDBAPI is the subset of *dynamodb.Client the audit log uses.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// AuditRepository is an append-only log of verification outcomes. Items carry
// a TTL so the table expires them on its own.
type AuditRepository struct {
	client    DynamoDBAPI
	tableName string
	retention time.Duration
	logger    *logrus.Logger
}

func NewAuditRepository(client DynamoDBAPI, tableName string, retention time.Duration, logger *logrus.Logger) *AuditRepository {
	return &AuditRepository{
		client:    client,
		tableName: tableName,
		retention: retention,
		logger:    logger,
	}
}

// Store writes one audit event with TTL
func (r *AuditRepository) Store(ctx context.Context, event models.AuditEvent) error {
	event.TTL = event.VerifiedAt.Add(r.retention).Unix()

	item, err := attributevalue.MarshalMap(event)
	if err != nil {
		r.logger.WithError(err).Error("Failed to marshal audit event for DynamoDB")
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	item["PK"] = &types.AttributeValueMemberS{Value: event.GetPK()}
	item["SK"] = &types.AttributeValueMemberS{Value: event.GetSK()}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})

	if err != nil {
		r.logger.WithError(err).Error("Failed to store audit event in DynamoDB")
		return fmt.Errorf("failed to store audit event: %w", err)
	}

	return nil
}

// ListRecent returns up to limit events recorded on day, newest first.
func (r *AuditRepository) ListRecent(ctx context.Context, day time.Time, limit int32) ([]models.AuditEvent, error) {
	pk := (&models.AuditEvent{VerifiedAt: day}).GetPK()

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}

	events := make([]models.AuditEvent, 0, len(result.Items))
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal audit events: %w", err)
	}

	return events, nil
}
