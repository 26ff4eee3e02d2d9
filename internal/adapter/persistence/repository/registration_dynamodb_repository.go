package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"webinar_billing/internal/domain/entities"
	"webinar_billing/internal/infrastructure/logging"
	"webinar_billing/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

const (
	defaultRegistrationsTableName = "registrations"
	orderIDIndexName              = "order_id-index"
	orderGuardPrefix              = entities.ReservedIDPrefix
)

// DynamoAPI is the subset of the DynamoDB client the repository uses.
type DynamoAPI interface {
	dynamodb.QueryAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

type registrationItem struct {
	ID                string         `dynamodbav:"id"`
	Name              string         `dynamodbav:"name"`
	Email             string         `dynamodbav:"email"`
	WhatsApp          string         `dynamodbav:"whatsapp"`
	Status            string         `dynamodbav:"status"`
	OrderID           string         `dynamodbav:"order_id,omitempty"`
	OrderPayload      string         `dynamodbav:"order_payload,omitempty"`
	GatewayResponse   string         `dynamodbav:"gateway_response,omitempty"`
	GatewayPayload    string         `dynamodbav:"gateway_payload,omitempty"`
	GatewayPayloadDoc map[string]any `dynamodbav:"gateway_payload_doc,omitempty"`
	CreatedAt         string         `dynamodbav:"created_at"`
	UpdatedAt         string         `dynamodbav:"updated_at"`
}

// RegistrationDynamoRepository persists Registration entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI order_id-index: order_id (string), projection ALL
//
// Order id uniqueness is kept with a guard item (id = "order#<order_id>")
// written in the same transaction as the registration. Guard items carry no
// order_id attribute, so they never show up in the GSI, and registration ids
// may not use the guard prefix.
type RegistrationDynamoRepository struct {
	ddb       DynamoAPI
	tableName string
	now       func() time.Time
	log       zerolog.Logger
}

var _ interfaces.IRegistrationRepository = (*RegistrationDynamoRepository)(nil)

func NewRegistrationDynamoRepository(ddb DynamoAPI, tableName string, logger zerolog.Logger) *RegistrationDynamoRepository {
	if strings.TrimSpace(tableName) == "" {
		tableName = getenvDefault("REGISTRATIONS_TABLE", defaultRegistrationsTableName)
	}
	return &RegistrationDynamoRepository{
		ddb:       ddb,
		tableName: tableName,
		now:       func() time.Time { return time.Now().UTC() },
		log:       logging.Component(logger, "registration_repository"),
	}
}

// Upsert writes the registration with merge semantics: every field is
// overwritten except created_at, which is kept when already present.
func (r *RegistrationDynamoRepository) Upsert(ctx context.Context, reg entities.Registration) (entities.Registration, error) {
	if strings.HasPrefix(reg.ID, orderGuardPrefix) {
		return entities.Registration{}, entities.ErrReservedRegistrationID
	}
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = r.now()
	}
	if reg.UpdatedAt.IsZero() {
		reg.UpdatedAt = reg.CreatedAt
	}
	it := toRegistrationItem(reg)

	names := map[string]string{
		"#name":             "name",
		"#email":            "email",
		"#whatsapp":         "whatsapp",
		"#status":           "status",
		"#order_payload":    "order_payload",
		"#gateway_response": "gateway_response",
		"#created_at":       "created_at",
		"#updated_at":       "updated_at",
	}
	values := map[string]types.AttributeValue{
		":name":             &types.AttributeValueMemberS{Value: it.Name},
		":email":            &types.AttributeValueMemberS{Value: it.Email},
		":whatsapp":         &types.AttributeValueMemberS{Value: it.WhatsApp},
		":status":           &types.AttributeValueMemberS{Value: it.Status},
		":order_payload":    &types.AttributeValueMemberS{Value: it.OrderPayload},
		":gateway_response": &types.AttributeValueMemberS{Value: it.GatewayResponse},
		":created_at":       &types.AttributeValueMemberS{Value: it.CreatedAt},
		":updated_at":       &types.AttributeValueMemberS{Value: it.UpdatedAt},
	}
	sets := []string{
		"#name = :name",
		"#email = :email",
		"#whatsapp = :whatsapp",
		"#status = :status",
		"#order_payload = :order_payload",
		"#gateway_response = :gateway_response",
		"#updated_at = :updated_at",
		"#created_at = if_not_exists(#created_at, :created_at)",
	}
	if it.OrderID != "" {
		names["#order_id"] = "order_id"
		values[":order_id"] = &types.AttributeValueMemberS{Value: it.OrderID}
		sets = append(sets, "#order_id = :order_id")
	}

	items := []types.TransactWriteItem{{
		Update: &types.Update{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"id": &types.AttributeValueMemberS{Value: it.ID},
			},
			UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
		},
	}}
	if it.OrderID != "" {
		items = append([]types.TransactWriteItem{{Put: r.orderGuard(it)}}, items...)
	}

	_, err := r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if isGuardConflict(err) {
			return entities.Registration{}, entities.ErrDuplicateOrderID
		}
		return entities.Registration{}, err
	}

	// The write succeeded; a failed read-back falls back to the written values.
	stored, err := r.GetByID(ctx, it.ID)
	if err != nil {
		r.log.Warn().Err(err).Str("registration_id", it.ID).Msg("read back after upsert failed; returning written values")
		return reg, nil
	}
	if stored.ID == "" {
		r.log.Warn().Str("registration_id", it.ID).Msg("registration missing on read back after upsert")
		return reg, nil
	}
	return stored, nil
}

// orderGuard claims the order id for this registration. Re-claiming by the
// same registration is allowed so a retried upsert stays idempotent.
func (r *RegistrationDynamoRepository) orderGuard(it registrationItem) *types.Put {
	return &types.Put{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"id":              &types.AttributeValueMemberS{Value: orderGuardPrefix + it.OrderID},
			"registration_id": &types.AttributeValueMemberS{Value: it.ID},
			"created_at":      &types.AttributeValueMemberS{Value: it.CreatedAt},
		},
		ConditionExpression: aws.String("attribute_not_exists(#id) OR #registration_id = :registration_id"),
		ExpressionAttributeNames: map[string]string{
			"#id":              "id",
			"#registration_id": "registration_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":registration_id": &types.AttributeValueMemberS{Value: it.ID},
		},
	}
}

func (r *RegistrationDynamoRepository) GetByID(ctx context.Context, id string) (entities.Registration, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Registration{}, err
	}
	if len(out.Item) == 0 {
		return entities.Registration{}, nil
	}

	var it registrationItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Registration{}, err
	}
	return fromRegistrationItem(it), nil
}

func (r *RegistrationDynamoRepository) ListByOrderID(ctx context.Context, orderID string) ([]entities.Registration, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(orderIDIndexName),
		KeyConditionExpression: aws.String("#order_id = :order_id"),
		ExpressionAttributeNames: map[string]string{
			"#order_id": "order_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})

	var out []entities.Registration
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var items []registrationItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, err
		}
		for _, it := range items {
			out = append(out, fromRegistrationItem(it))
		}
	}
	return out, nil
}

// UpdateStatus overwrites status and the latest gateway payload. The item is
// returned as it was before the write (ALL_OLD) so the previous status comes
// from the same atomic operation; the new snapshot is that item with the SET
// applied. A missing registration yields an empty StatusChange and no error.
func (r *RegistrationDynamoRepository) UpdateStatus(ctx context.Context, id string, status string, payload json.RawMessage) (entities.StatusChange, error) {
	now := r.now()
	expr := "SET #status = :status, #gateway_payload = :gateway_payload, #updated_at = :updated_at"
	names := map[string]string{
		"#status":              "status",
		"#gateway_payload":     "gateway_payload",
		"#gateway_payload_doc": "gateway_payload_doc",
		"#updated_at":          "updated_at",
	}
	values := map[string]types.AttributeValue{
		":status":          &types.AttributeValueMemberS{Value: status},
		":gateway_payload": &types.AttributeValueMemberS{Value: string(payload)},
		":updated_at":      &types.AttributeValueMemberS{Value: formatTime(now)},
	}
	if doc := payloadDocument(payload); doc != nil {
		av, err := attributevalue.Marshal(doc)
		if err != nil {
			return entities.StatusChange{}, err
		}
		expr += ", #gateway_payload_doc = :gateway_payload_doc"
		values[":gateway_payload_doc"] = av
	} else {
		expr += " REMOVE #gateway_payload_doc"
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  mergeNames(names, map[string]string{"#id": "id"}),
		ReturnValues:              types.ReturnValueAllOld,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.StatusChange{}, nil
		}
		return entities.StatusChange{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.StatusChange{}, nil
	}
	var it registrationItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.StatusChange{}, err
	}

	previous := fromRegistrationItem(it)
	current := previous
	current.Status = status
	current.GatewayPayload = payload
	current.UpdatedAt = now
	return entities.StatusChange{PreviousStatus: previous.Status, Registration: current}, nil
}

func isGuardConflict(err error) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) || len(tce.CancellationReasons) == 0 {
		return false
	}
	// The guard is always the first transact item.
	return aws.ToString(tce.CancellationReasons[0].Code) == "ConditionalCheckFailed"
}

func toRegistrationItem(reg entities.Registration) registrationItem {
	return registrationItem{
		ID:                reg.ID,
		Name:              reg.Name,
		Email:             reg.Email,
		WhatsApp:          reg.WhatsApp,
		Status:            reg.Status,
		OrderID:           reg.OrderID,
		OrderPayload:      string(reg.OrderPayload),
		GatewayResponse:   string(reg.GatewayResponse),
		GatewayPayload:    string(reg.GatewayPayload),
		GatewayPayloadDoc: payloadDocument(reg.GatewayPayload),
		CreatedAt:         formatTime(reg.CreatedAt),
		UpdatedAt:         formatTime(reg.UpdatedAt),
	}
}

func fromRegistrationItem(it registrationItem) entities.Registration {
	return entities.Registration{
		ID:              it.ID,
		Name:            it.Name,
		Email:           it.Email,
		WhatsApp:        it.WhatsApp,
		Status:          it.Status,
		OrderID:         it.OrderID,
		OrderPayload:    rawJSON(it.OrderPayload),
		GatewayResponse: rawJSON(it.GatewayResponse),
		GatewayPayload:  rawJSON(it.GatewayPayload),
		CreatedAt:       parseTime(it.CreatedAt),
		UpdatedAt:       parseTime(it.UpdatedAt),
	}
}
