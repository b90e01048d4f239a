package repository

import (
	"context"
	"time"

	"pagamentos_xpto/internal/workflow/engine"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultWorkflowHistoryTableName = "workflow_history"

type historyItem struct {
	WorkflowID string `dynamodbav:"workflow_id"`
	Seq        int64  `dynamodbav:"seq"`
	EventType  string `dynamodbav:"event_type"`
	Name       string `dynamodbav:"name,omitempty"`
	Payload    string `dynamodbav:"payload,omitempty"`
	Failed     bool   `dynamodbav:"failed,omitempty"`
	Error      string `dynamodbav:"error,omitempty"`
	RecordedAt string `dynamodbav:"recorded_at"`
}

// WorkflowHistoryDynamoRepository journals workflow events in DynamoDB.
//
// Table requirements:
//   - PK: workflow_id (string)
//   - SK: seq (number)

type WorkflowHistoryDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ engine.HistoryStore = (*WorkflowHistoryDynamoRepository)(nil)

func NewWorkflowHistoryDynamoRepository(ddb *dynamodb.Client) *WorkflowHistoryDynamoRepository {
	return &WorkflowHistoryDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("WORKFLOW_HISTORY_TABLE", defaultWorkflowHistoryTableName),
	}
}

func (r *WorkflowHistoryDynamoRepository) Append(ctx context.Context, workflowID string, e engine.HistoryEvent) error {
	av, err := attributevalue.MarshalMap(historyItem{
		WorkflowID: workflowID,
		Seq:        e.Seq,
		EventType:  string(e.Type),
		Name:       e.Name,
		Payload:    string(e.Payload),
		Failed:     e.Failed,
		Error:      e.Error,
		RecordedAt: e.RecordedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(workflow_id) AND attribute_not_exists(seq)"),
	})
	return err
}

func (r *WorkflowHistoryDynamoRepository) Load(ctx context.Context, workflowID string) ([]engine.HistoryEvent, error) {
	var events []engine.HistoryEvent
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("workflow_id = :wid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":wid": &types.AttributeValueMemberS{Value: workflowID},
			},
			ScanIndexForward:  aws.Bool(true),
			ExclusiveStartKey: startKey,
			ConsistentRead:    aws.Bool(true),
		})
		if err != nil {
			return nil, err
		}
		for _, raw := range out.Items {
			var it historyItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, err
			}
			events = append(events, fromHistoryItem(it))
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return events, nil
}

func (r *WorkflowHistoryDynamoRepository) ListWorkflowIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var ids []string
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
			TableName:            aws.String(r.tableName),
			ProjectionExpression: aws.String("workflow_id"),
			ExclusiveStartKey:    startKey,
		})
		if err != nil {
			return nil, err
		}
		for _, raw := range out.Items {
			var it struct {
				WorkflowID string `dynamodbav:"workflow_id"`
			}
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, err
			}
			if _, ok := seen[it.WorkflowID]; ok {
				continue
			}
			seen[it.WorkflowID] = struct{}{}
			ids = append(ids, it.WorkflowID)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return ids, nil
}

func fromHistoryItem(it historyItem) engine.HistoryEvent {
	recordedAt, _ := time.Parse(time.RFC3339Nano, it.RecordedAt)
	return engine.HistoryEvent{
		Seq:        it.Seq,
		Type:       engine.EventType(it.EventType),
		Name:       it.Name,
		Payload:    []byte(it.Payload),
		Failed:     it.Failed,
		Error:      it.Error,
		RecordedAt: recordedAt,
	}
}
