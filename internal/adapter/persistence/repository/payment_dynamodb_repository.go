package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"payment_service/internal/domain/entities"
	"payment_service/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

const (
	DefaultPaymentsTableName = "payments"
	paymentsOrderIDIndex     = "order_id-index"
	paymentsUserIDIndex      = "user_id-index"
)

type paymentItem struct {
	ID       string `dynamodbav:"id"`
	OrderID  string `dynamodbav:"order_id,omitempty"`
	UserID   string `dynamodbav:"user_id,omitempty"`
	Amount   string `dynamodbav:"amount"`
	Currency string `dynamodbav:"currency"`
	Status   string `dynamodbav:"status"`

	CardBrand    *string `dynamodbav:"card_brand,omitempty"`
	CardLastFour *string `dynamodbav:"card_last_four,omitempty"`
	ExpiryMonth  *int    `dynamodbav:"expiry_month,omitempty"`
	ExpiryYear   *int    `dynamodbav:"expiry_year,omitempty"`

	ValidationResult string         `dynamodbav:"validation_result,omitempty"`
	Metadata         map[string]any `dynamodbav:"metadata"`

	Version   int64  `dynamodbav:"version"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// PaymentDynamoRepository persists Payment entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: order_id-index (PK: order_id, SK: created_at)
//   - GSI: user_id-index (PK: user_id, SK: created_at)

type PaymentDynamoRepository struct {
	ddb       dynamoAPI
	tableName string
}

var _ interfaces.IPaymentRepository = (*PaymentDynamoRepository)(nil)

func NewPaymentDynamoRepository(ddb dynamoAPI, tableName string) *PaymentDynamoRepository {
	if tableName == "" {
		tableName = DefaultPaymentsTableName
	}
	return &PaymentDynamoRepository{
		ddb:       ddb,
		tableName: tableName,
	}
}

func (r *PaymentDynamoRepository) Create(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}
	it, err := toPaymentItem(p)
	if err != nil {
		return entities.Payment{}, err
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.Payment{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.Payment{}, err
	}
	return p, nil
}

func (r *PaymentDynamoRepository) GetByID(ctx context.Context, id string) (entities.Payment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Payment{}, err
	}
	if len(out.Item) == 0 {
		return entities.Payment{}, nil
	}
	return unmarshalPayment(out.Item)
}

// ListByOrderID returns every payment of the order, newest first.
func (r *PaymentDynamoRepository) ListByOrderID(ctx context.Context, orderID string) ([]entities.Payment, error) {
	return r.queryIndex(ctx, paymentsOrderIDIndex, "order_id", orderID, 0, 0)
}

// ListByUserID returns one page of the user's payments, newest first.
func (r *PaymentDynamoRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]entities.Payment, error) {
	return r.queryIndex(ctx, paymentsUserIDIndex, "user_id", userID, limit, offset)
}

// queryIndex walks the GSI pages, skipping the first offset items and
// stopping after limit items. A non-positive limit returns everything.
func (r *PaymentDynamoRepository) queryIndex(ctx context.Context, index, attr, value string, limit, offset int) ([]entities.Payment, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: value},
		},
		ScanIndexForward: aws.Bool(false),
	}

	items := make([]entities.Payment, 0)
	skipped := 0
	p := dynamodb.NewQueryPaginator(r.ddb, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range out.Items {
			if skipped < offset {
				skipped++
				continue
			}
			payment, err := unmarshalPayment(raw)
			if err != nil {
				return nil, err
			}
			items = append(items, payment)
			if limit > 0 && len(items) >= limit {
				return items, nil
			}
		}
	}
	return items, nil
}

// UpdateStatus applies update only when the stored record still matches
// update.From and update.ExpectedVersion. Metadata keys are merged into the
// stored map one by one, so concurrent writers touching other keys are kept.
//
// Returns a zero-value Payment when the record does not exist and
// interfaces.ErrStaleWrite when it changed since it was read.
func (r *PaymentDynamoRepository) UpdateStatus(ctx context.Context, id string, update entities.StatusUpdate) (entities.Payment, error) {
	expr := "SET #status = :to, #updated_at = :updated_at, #version = #version + :one"
	names := map[string]string{
		"#status":     "status",
		"#updated_at": "updated_at",
		"#version":    "version",
	}
	values := map[string]types.AttributeValue{
		":to":         &types.AttributeValueMemberS{Value: string(update.To)},
		":from":       &types.AttributeValueMemberS{Value: string(update.From)},
		":updated_at": &types.AttributeValueMemberS{Value: formatTime(nowFunc())},
		":one":        &types.AttributeValueMemberN{Value: "1"},
		":expected":   &types.AttributeValueMemberN{Value: strconv.FormatInt(update.ExpectedVersion, 10)},
	}

	if len(update.Metadata) > 0 {
		names["#metadata"] = "metadata"
		keys := make([]string, 0, len(update.Metadata))
		for k := range update.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			av, err := attributevalue.Marshal(update.Metadata[k])
			if err != nil {
				return entities.Payment{}, fmt.Errorf("marshal metadata %q: %w", k, err)
			}
			n, v := fmt.Sprintf("#m%d", i), fmt.Sprintf(":m%d", i)
			names[n] = k
			values[v] = av
			expr += fmt.Sprintf(", #metadata.%s = %s", n, v)
		}
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:                    aws.String(expr),
		ConditionExpression:                 aws.String("attribute_exists(#id) AND #version = :expected AND #status = :from"),
		ExpressionAttributeValues:           values,
		ExpressionAttributeNames:            mergeNames(names, map[string]string{"#id": "id"}),
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		if cfe, ok := conditionalCheckFailed(err); ok {
			if len(cfe.Item) == 0 {
				return entities.Payment{}, nil
			}
			return entities.Payment{}, interfaces.ErrStaleWrite
		}
		return entities.Payment{}, err
	}
	return unmarshalPayment(out.Attributes)
}

func unmarshalPayment(raw map[string]types.AttributeValue) (entities.Payment, error) {
	var it paymentItem
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return entities.Payment{}, err
	}
	return fromPaymentItem(it)
}

func toPaymentItem(p entities.Payment) (paymentItem, error) {
	it := paymentItem{
		ID:           p.ID,
		OrderID:      p.OrderID,
		UserID:       p.UserID,
		Amount:       p.Amount.String(),
		Currency:     p.Currency,
		Status:       string(p.Status),
		CardLastFour: p.CardLastFour,
		ExpiryMonth:  p.ExpiryMonth,
		ExpiryYear:   p.ExpiryYear,
		Metadata:     p.Metadata,
		Version:      p.Version,
		CreatedAt:    formatTime(p.CreatedAt),
		UpdatedAt:    formatTime(p.UpdatedAt),
	}
	if p.CardBrand != nil {
		brand := string(*p.CardBrand)
		it.CardBrand = &brand
	}
	if p.ValidationResult != nil {
		raw, err := json.Marshal(p.ValidationResult)
		if err != nil {
			return paymentItem{}, fmt.Errorf("marshal validation result: %w", err)
		}
		it.ValidationResult = string(raw)
	}
	return it, nil
}

func fromPaymentItem(it paymentItem) (entities.Payment, error) {
	amount, err := decimal.NewFromString(it.Amount)
	if err != nil {
		return entities.Payment{}, fmt.Errorf("payment %s: invalid amount %q: %w", it.ID, it.Amount, err)
	}

	p := entities.Payment{
		ID:           it.ID,
		OrderID:      it.OrderID,
		UserID:       it.UserID,
		Amount:       amount,
		Currency:     it.Currency,
		Status:       entities.PaymentStatus(it.Status),
		CardLastFour: it.CardLastFour,
		ExpiryMonth:  it.ExpiryMonth,
		ExpiryYear:   it.ExpiryYear,
		Metadata:     it.Metadata,
		Version:      it.Version,
		CreatedAt:    parseTime(it.CreatedAt),
		UpdatedAt:    parseTime(it.UpdatedAt),
	}
	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}
	if it.CardBrand != nil {
		brand := entities.CardBrand(*it.CardBrand)
		p.CardBrand = &brand
	}
	if it.ValidationResult != "" {
		var vr entities.ValidationResult
		if err := json.Unmarshal([]byte(it.ValidationResult), &vr); err != nil {
			return entities.Payment{}, fmt.Errorf("payment %s: invalid validation result: %w", it.ID, err)
		}
		p.ValidationResult = &vr
	}
	return p, nil
}
