package repository

import (
	"context"
	"errors"
	"time"

	"pagamentos_xpto/internal/domain/entities"
	"pagamentos_xpto/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultPaymentsTableName = "payments"
	paymentsCPFIndex         = "cpf-index"
)

type paymentItem struct {
	ID            string  `dynamodbav:"id"`
	CPF           string  `dynamodbav:"cpf"`
	Description   string  `dynamodbav:"description"`
	Amount        float64 `dynamodbav:"amount"`
	PaymentMethod string  `dynamodbav:"payment_method"`
	Status        string  `dynamodbav:"status"`
	StatusSeq     int64   `dynamodbav:"status_seq"`
	CreatedAt     string  `dynamodbav:"created_at"`
	UpdatedAt     string  `dynamodbav:"updated_at"`
}

// PaymentDynamoRepository persists Payment entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: cpf-index (PK: cpf)

type PaymentDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IPaymentRepository = (*PaymentDynamoRepository)(nil)

func NewPaymentDynamoRepository(ddb *dynamodb.Client) *PaymentDynamoRepository {
	return &PaymentDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("PAYMENTS_TABLE", defaultPaymentsTableName),
	}
}

func (r *PaymentDynamoRepository) Save(ctx context.Context, p *entities.Payment) (*entities.Payment, error) {
	av, err := attributevalue.MarshalMap(toPaymentItem(p))
	if err != nil {
		return nil, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PaymentDynamoRepository) FindByID(ctx context.Context, id string) (*entities.Payment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	p := fromPaymentItem(it)
	return &p, nil
}

func (r *PaymentDynamoRepository) FindAll(ctx context.Context, filters interfaces.PaymentFilters) ([]entities.Payment, error) {
	var raws []map[string]types.AttributeValue

	if filters.CPF != "" {
		out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(paymentsCPFIndex),
			KeyConditionExpression: aws.String("cpf = :cpf"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":cpf": &types.AttributeValueMemberS{Value: filters.CPF},
			},
		})
		if err != nil {
			return nil, err
		}
		raws = out.Items
	} else {
		out, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
			TableName: aws.String(r.tableName),
		})
		if err != nil {
			return nil, err
		}
		raws = out.Items
	}

	items := make([]entities.Payment, 0, len(raws))
	for _, raw := range raws {
		var it paymentItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		p := fromPaymentItem(it)
		if filters.PaymentMethod != "" && p.PaymentMethod != filters.PaymentMethod {
			continue
		}
		items = append(items, p)
	}
	return paginate(items, filters.Limit, filters.Offset), nil
}

// UpdateStatus applies a status write gated by its receipt sequence. A stale
// or duplicate write fails the condition and is treated as a no-op; the
// current item is returned either way.
func (r *PaymentDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.PaymentStatus, seq int64) (*entities.Payment, error) {
	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    aws.String("SET #status = :status, status_seq = :seq, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id) AND (attribute_not_exists(status_seq) OR status_seq < :seq)"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
			":seq":    &types.AttributeValueMemberN{Value: formatInt64(seq)},
			":now":    &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			// Either the payment is missing or a newer status already landed.
			return r.FindByID(ctx, id)
		}
		return nil, err
	}

	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return nil, err
	}
	p := fromPaymentItem(it)
	return &p, nil
}

func toPaymentItem(p *entities.Payment) paymentItem {
	return paymentItem{
		ID:            p.ID,
		CPF:           p.CPF,
		Description:   p.Description,
		Amount:        p.Amount,
		PaymentMethod: string(p.PaymentMethod),
		Status:        string(p.Status),
		StatusSeq:     p.StatusSeq,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:     p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromPaymentItem(it paymentItem) entities.Payment {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return entities.Payment{
		ID:            it.ID,
		CPF:           it.CPF,
		Description:   it.Description,
		Amount:        it.Amount,
		PaymentMethod: entities.PaymentMethod(it.PaymentMethod),
		Status:        entities.PaymentStatus(it.Status),
		StatusSeq:     it.StatusSeq,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}
