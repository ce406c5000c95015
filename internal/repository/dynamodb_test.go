package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"agrichain/internal/domain"
)

type fakeDynamo struct {
	getOut       *dynamodb.GetItemOutput
	getErr       error
	putErr       error
	scanPages    []*dynamodb.ScanOutput
	scanErr      error
	lastGetInput *dynamodb.GetItemInput
	lastPutInput *dynamodb.PutItemInput
	scanInputs   []*dynamodb.ScanInput
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGetInput = in
	return f.getOut, f.getErr
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scanInputs = append(f.scanInputs, in)
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	idx := len(f.scanInputs) - 1
	if idx >= len(f.scanPages) {
		return &dynamodb.ScanOutput{}, nil
	}
	return f.scanPages[idx], nil
}

func mustNewClient(t *testing.T, db *fakeDynamo) *Client {
	t.Helper()
	c, err := New(db, "test-table")
	require.NoError(t, err)
	return c
}

func TestNew_Validates(t *testing.T) {
	_, err := New(nil, "t")
	require.Error(t, err)
	_, err = New(&fakeDynamo{}, " ")
	require.Error(t, err)
}

func TestBatchItem_RoundTrip(t *testing.T) {
	for _, b := range SeedBatches() {
		got, err := itemToBatch(batchItem(b))
		require.NoError(t, err)
		require.Equal(t, b, got)
	}
}

func TestBatchItem_OmitsEmptyOptionalFields(t *testing.T) {
	item := batchItem(SeedBatches()[0])
	require.NotContains(t, item, "quality")
	require.NotContains(t, item, "agent")
	require.Equal(t, &types.AttributeValueMemberS{Value: "BATCH#BATCH-1678886400000"}, item["PK"])
	require.Equal(t, &types.AttributeValueMemberS{Value: skMeta}, item["SK"])
}

func TestProductItem_RoundTrip(t *testing.T) {
	for _, p := range SeedProducts() {
		got, err := itemToProduct(productItem(p))
		require.NoError(t, err)
		require.Equal(t, p, got)
	}
}

func TestGetBatch_HappyPath(t *testing.T) {
	want := SeedBatches()[2]
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: batchItem(want)}}
	c := mustNewClient(t, db)

	got, err := c.GetBatch(context.Background(), want.ID)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, &types.AttributeValueMemberS{Value: "BATCH#" + want.ID}, db.lastGetInput.Key["PK"])
}

func TestGetBatch_Missing(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{}}
	c := mustNewClient(t, db)
	_, err := c.GetBatch(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetBatch_GetItemError(t *testing.T) {
	db := &fakeDynamo{getErr: errors.New("boom")}
	c := mustNewClient(t, db)
	_, err := c.GetBatch(context.Background(), "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "GetBatch")
	require.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestGetBatch_MalformedItem(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: "1"},
	}}}
	c := mustNewClient(t, db)
	_, err := c.GetBatch(context.Background(), "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a string")
}

func TestPutBatch(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	require.NoError(t, c.PutBatch(context.Background(), SeedBatches()[0]))
	require.Equal(t, "test-table", *db.lastPutInput.TableName)

	require.Error(t, c.PutBatch(context.Background(), domain.Batch{}))

	db.putErr = errors.New("throttled")
	err := c.PutBatch(context.Background(), SeedBatches()[0])
	require.ErrorContains(t, err, "throttled")
}

func TestListBatches_Paginates(t *testing.T) {
	seeds := SeedBatches()
	db := &fakeDynamo{scanPages: []*dynamodb.ScanOutput{
		{
			Items:            []map[string]types.AttributeValue{batchItem(seeds[0])},
			LastEvaluatedKey: map[string]types.AttributeValue{"PK": &types.AttributeValueMemberS{Value: "BATCH#" + seeds[0].ID}},
		},
		{Items: []map[string]types.AttributeValue{batchItem(seeds[1]), batchItem(seeds[2])}},
	}}
	c := mustNewClient(t, db)

	got, err := c.ListBatches(context.Background())
	require.NoError(t, err)
	require.Equal(t, seeds, got)
	require.Len(t, db.scanInputs, 2)
	require.Nil(t, db.scanInputs[0].ExclusiveStartKey)
	require.NotNil(t, db.scanInputs[1].ExclusiveStartKey)
	require.Equal(t, &types.AttributeValueMemberS{Value: pkPrefixBatch}, db.scanInputs[0].ExpressionAttributeValues[":prefix"])
}

func TestListProducts_ScanError(t *testing.T) {
	db := &fakeDynamo{scanErr: errors.New("boom")}
	c := mustNewClient(t, db)
	_, err := c.ListProducts(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "ListProducts")
}

func TestGetProduct_HappyPathAndMissing(t *testing.T) {
	want := SeedProducts()[1]
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: productItem(want)}}
	c := mustNewClient(t, db)

	got, err := c.GetProduct(context.Background(), want.Details.ID)
	require.NoError(t, err)
	require.Equal(t, want, got)

	db.getOut = &dynamodb.GetItemOutput{}
	_, err = c.GetProduct(context.Background(), "PROD-NONE")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSeed_IntoDynamo(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	require.NoError(t, Seed(context.Background(), c))
	require.Equal(t, &types.AttributeValueMemberS{Value: "PRODUCT#PROD-CAU-003"}, db.lastPutInput.Item["PK"])
}
