package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"webinar_billing/internal/domain/entities"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	transactIn  *dynamodb.TransactWriteItemsInput
	transactErr error

	getItem    map[string]types.AttributeValue
	getItemErr error

	queryIn    []*dynamodb.QueryInput
	queryPages []*dynamodb.QueryOutput

	updateIn  *dynamodb.UpdateItemInput
	updateOut *dynamodb.UpdateItemOutput
	updateErr error
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.transactIn = in
	if f.transactErr != nil {
		return nil, f.transactErr
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.getItemErr != nil {
		return nil, f.getItemErr
	}
	return &dynamodb.GetItemOutput{Item: f.getItem}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queryIn = append(f.queryIn, in)
	if len(f.queryPages) == 0 {
		return &dynamodb.QueryOutput{}, nil
	}
	page := f.queryPages[0]
	f.queryPages = f.queryPages[1:]
	return page, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updateIn = in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateOut, nil
}

func mustItem(t *testing.T, it registrationItem) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(it)
	require.NoError(t, err)
	return av
}

func sampleRegistration() entities.Registration {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return entities.Registration{
		ID:              "reg-1",
		Name:            "A",
		Email:           "a@x.com",
		WhatsApp:        "9876543210",
		Status:          entities.StatusPaymentInitiated,
		OrderID:         "REG_1",
		OrderPayload:    json.RawMessage(`{"order_id":"REG_1"}`),
		GatewayResponse: json.RawMessage(`{"cf_order_id":7}`),
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
}

func TestRegistrationRepository_UpsertWritesGuardAndRegistration(t *testing.T) {
	reg := sampleRegistration()
	fake := &fakeDynamo{getItem: mustItem(t, toRegistrationItem(reg))}
	repo := NewRegistrationDynamoRepository(fake, "regs", zerolog.Nop())

	got, err := repo.Upsert(context.Background(), reg)
	require.NoError(t, err)
	assert.Equal(t, "reg-1", got.ID)
	assert.Equal(t, "REG_1", got.OrderID)

	require.NotNil(t, fake.transactIn)
	require.Len(t, fake.transactIn.TransactItems, 2)

	guard := fake.transactIn.TransactItems[0].Put
	require.NotNil(t, guard)
	assert.Equal(t, "regs", aws.ToString(guard.TableName))
	assert.Equal(t, "order#REG_1", guard.Item["id"].(*types.AttributeValueMemberS).Value)
	assert.NotContains(t, guard.Item, "order_id")
	assert.Contains(t, aws.ToString(guard.ConditionExpression), "attribute_not_exists(#id)")

	update := fake.transactIn.TransactItems[1].Update
	require.NotNil(t, update)
	assert.Equal(t, "reg-1", update.Key["id"].(*types.AttributeValueMemberS).Value)
	assert.Contains(t, aws.ToString(update.UpdateExpression), "if_not_exists(#created_at, :created_at)")
	assert.Equal(t, "REG_1", update.ExpressionAttributeValues[":order_id"].(*types.AttributeValueMemberS).Value)
}

func TestRegistrationRepository_UpsertWithoutOrderIDSkipsGuard(t *testing.T) {
	reg := sampleRegistration()
	reg.OrderID = ""
	fake := &fakeDynamo{}
	repo := NewRegistrationDynamoRepository(fake, "regs", zerolog.Nop())

	got, err := repo.Upsert(context.Background(), reg)
	require.NoError(t, err)
	assert.Equal(t, "reg-1", got.ID)
	require.Len(t, fake.transactIn.TransactItems, 1)
	assert.NotContains(t, aws.ToString(fake.transactIn.TransactItems[0].Update.UpdateExpression), "#order_id")
}

func TestRegistrationRepository_UpsertReadBackFailureIsLogged(t *testing.T) {
	reg := sampleRegistration()
	fake := &fakeDynamo{getItemErr: errors.New("throttled")}
	var buf bytes.Buffer
	repo := NewRegistrationDynamoRepository(fake, "regs", zerolog.New(&buf))

	got, err := repo.Upsert(context.Background(), reg)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, got.ID)
	assert.Equal(t, reg.Status, got.Status)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "registration_repository", line["component"])
	assert.Equal(t, "reg-1", line["registration_id"])
	assert.Equal(t, "throttled", line["error"])
}

func TestRegistrationRepository_UpsertRejectsGuardPrefix(t *testing.T) {
	reg := sampleRegistration()
	reg.ID = "order#REG_1"
	fake := &fakeDynamo{}
	repo := NewRegistrationDynamoRepository(fake, "regs", zerolog.Nop())

	_, err := repo.Upsert(context.Background(), reg)
	assert.ErrorIs(t, err, entities.ErrReservedRegistrationID)
	assert.Nil(t, fake.transactIn)
}

func TestRegistrationRepository_UpsertDuplicateOrderID(t *testing.T) {
	fake := &fakeDynamo{transactErr: &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("ConditionalCheckFailed")},
			{Code: aws.String("None")},
		},
	}}
	repo := NewRegistrationDynamoRepository(fake, "regs", zerolog.Nop())

	_, err := repo.Upsert(context.Background(), sampleRegistration())
	assert.ErrorIs(t, err, entities.ErrDuplicateOrderID)
}

func TestRegistrationRepository_UpsertOtherError(t *testing.T) {
	fake := &fakeDynamo{transactErr: errors.New("throttled")}
	repo := NewRegistrationDynamoRepository(fake, "regs", zerolog.Nop())

	_, err := repo.Upsert(context.Background(), sampleRegistration())
	assert.EqualError(t, err, "throttled")
}

func TestRegistrationRepository_ListByOrderIDPaginates(t *testing.T) {
	a := sampleRegistration()
	b := sampleRegistration()
	b.ID = "reg-2"

	fake := &fakeDynamo{queryPages: []*dynamodb.QueryOutput{
		{
			Items:            []map[string]types.AttributeValue{mustItem(t, toRegistrationItem(a))},
			LastEvaluatedKey: map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "reg-1"}},
		},
		{
			Items: []map[string]types.AttributeValue{mustItem(t, toRegistrationItem(b))},
		},
	}}
	repo := NewRegistrationDynamoRepository(fake, "regs", zerolog.Nop())

	got, err := repo.ListByOrderID(context.Background(), "REG_1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "reg-1", got[0].ID)
	assert.Equal(t, "reg-2", got[1].ID)
	assert.JSONEq(t, `{"cf_order_id":7}`, string(got[0].GatewayResponse))

	require.Len(t, fake.queryIn, 2)
	assert.Equal(t, orderIDIndexName, aws.ToString(fake.queryIn[0].IndexName))
	assert.NotEmpty(t, fake.queryIn[1].ExclusiveStartKey)
}

func TestRegistrationRepository_ListByOrderIDEmpty(t *testing.T) {
	repo := NewRegistrationDynamoRepository(&fakeDynamo{}, "regs", zerolog.Nop())

	got, err := repo.ListByOrderID(context.Background(), "REG_404")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRegistrationRepository_UpdateStatus(t *testing.T) {
	before := sampleRegistration()
	payload := json.RawMessage(`{"order_id":"REG_1","order_status":"PAID"}`)
	fake := &fakeDynamo{updateOut: &dynamodb.UpdateItemOutput{Attributes: mustItem(t, toRegistrationItem(before))}}
	repo := NewRegistrationDynamoRepository(fake, "regs", zerolog.Nop())
	now := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	got, err := repo.UpdateStatus(context.Background(), "reg-1", "PAID", payload)
	require.NoError(t, err)
	assert.True(t, got.Found())
	assert.Equal(t, entities.StatusPaymentInitiated, got.PreviousStatus)
	assert.Equal(t, "PAID", got.Registration.Status)
	assert.Equal(t, before.Email, got.Registration.Email)
	assert.Equal(t, before.OrderID, got.Registration.OrderID)
	assert.True(t, before.CreatedAt.Equal(got.Registration.CreatedAt))
	assert.True(t, now.Equal(got.Registration.UpdatedAt))
	assert.JSONEq(t, string(payload), string(got.Registration.GatewayPayload))
	assert.True(t, got.Transitioned())

	in := fake.updateIn
	require.NotNil(t, in)
	assert.Equal(t, types.ReturnValueAllOld, in.ReturnValues)
	assert.Equal(t, "attribute_exists(#id)", aws.ToString(in.ConditionExpression))
	assert.Contains(t, aws.ToString(in.UpdateExpression), "#gateway_payload_doc = :gateway_payload_doc")
	doc, ok := in.ExpressionAttributeValues[":gateway_payload_doc"].(*types.AttributeValueMemberM)
	require.True(t, ok)
	assert.Equal(t, "PAID", doc.Value["order_status"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "2026-03-02T08:30:00Z", in.ExpressionAttributeValues[":updated_at"].(*types.AttributeValueMemberS).Value)
}

func TestRegistrationRepository_UpdateStatusReportsStoredPreviousStatus(t *testing.T) {
	before := sampleRegistration()
	before.Status = "PAID"
	fake := &fakeDynamo{updateOut: &dynamodb.UpdateItemOutput{Attributes: mustItem(t, toRegistrationItem(before))}}
	repo := NewRegistrationDynamoRepository(fake, "regs", zerolog.Nop())

	got, err := repo.UpdateStatus(context.Background(), "reg-1", "SUCCESS", json.RawMessage(`{"order_status":"SUCCESS"}`))
	require.NoError(t, err)
	assert.Equal(t, "PAID", got.PreviousStatus)
	assert.Equal(t, "SUCCESS", got.Registration.Status)
	assert.False(t, got.Transitioned())
}

func TestRegistrationRepository_UpdateStatusNonObjectPayload(t *testing.T) {
	fake := &fakeDynamo{updateOut: &dynamodb.UpdateItemOutput{}}
	repo := NewRegistrationDynamoRepository(fake, "regs", zerolog.Nop())

	got, err := repo.UpdateStatus(context.Background(), "reg-1", "", json.RawMessage(`[1,2]`))
	require.NoError(t, err)
	assert.False(t, got.Found())
	assert.True(t, strings.HasSuffix(aws.ToString(fake.updateIn.UpdateExpression), "REMOVE #gateway_payload_doc"))
	assert.Equal(t, "[1,2]", fake.updateIn.ExpressionAttributeValues[":gateway_payload"].(*types.AttributeValueMemberS).Value)
}

func TestRegistrationRepository_UpdateStatusMissingItem(t *testing.T) {
	fake := &fakeDynamo{updateErr: &types.ConditionalCheckFailedException{}}
	repo := NewRegistrationDynamoRepository(fake, "regs", zerolog.Nop())

	got, err := repo.UpdateStatus(context.Background(), "gone", "PAID", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, entities.StatusChange{}, got)
}

func TestRegistrationItemRoundTrip(t *testing.T) {
	reg := sampleRegistration()
	got := fromRegistrationItem(toRegistrationItem(reg))
	assert.Equal(t, reg.ID, got.ID)
	assert.True(t, reg.CreatedAt.Equal(got.CreatedAt))
	assert.Nil(t, got.GatewayPayload)
}
