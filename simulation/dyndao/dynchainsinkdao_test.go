package dyndao

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"bizsim/simulation/domain"
	"bizsim/simulation/infrastructure"
	"bizsim/utils"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOrder struct {
	domain.ContentHeader
	Amount int
}

type fakeBatchWriter struct {
	calls       []*dynamodb.BatchWriteItemInput
	unprocessed int
	err         error
}

func (f *fakeBatchWriter) BatchWriteItem(_ context.Context, params *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	output := &dynamodb.BatchWriteItemOutput{}
	if f.unprocessed > 0 {
		for table, requests := range params.RequestItems {
			output.UnprocessedItems = map[string][]types.WriteRequest{table: requests[:f.unprocessed]}
		}
		f.unprocessed = 0
	}
	return output, nil
}

func fastRetrierFactory() func() *utils.Retrier[struct{}] {
	return utils.NewExponentialRetrierFactory[struct{}](3, time.Millisecond, 0, 2*time.Millisecond)
}

func buildRecords(demandId domain.DemandId, count int) []domain.ContentRecord {
	records := make([]domain.ContentRecord, 0, count)
	for i := range count {
		content := &testOrder{ContentHeader: domain.NewContentHeader(demandId), Amount: i}
		records = append(records, domain.ContentRecord{Content: content, Type: domain.TypeOf(content), Sent: i%2 == 0, Position: i + 1})
	}
	return records
}

func TestExportChainWritesOneItemPerRecord(t *testing.T) {
	client := &fakeBatchWriter{}
	dao := NewDynChainSinkDao(client, "Chains", "run-1", fastRetrierFactory())
	demandId := domain.NewDemandId()

	require.NoError(t, dao.ExportChain(context.Background(), "buyer", demandId, buildRecords(demandId, 3)))

	require.Len(t, client.calls, 1)
	requests := client.calls[0].RequestItems["Chains"]
	require.Len(t, requests, 3)

	item := requests[1].PutRequest.Item
	assert.Equal(t, string(demandId), item["demand_id"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "buyer#0000000002", item["record_key"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "run-1", item["run_id"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "*bizsim/simulation/dyndao.testOrder", item["type"].(*types.AttributeValueMemberS).Value)
	assert.False(t, item["sent"].(*types.AttributeValueMemberBOOL).Value)

	var decoded testOrder
	require.NoError(t, json.Unmarshal([]byte(item["content"].(*types.AttributeValueMemberS).Value), &decoded))
	assert.Equal(t, 1, decoded.Amount)
	assert.Equal(t, demandId, decoded.DemandId)
}

func TestExportChainSplitsLargeChainsIntoBatches(t *testing.T) {
	client := &fakeBatchWriter{}
	dao := NewDynChainSinkDao(client, "", "run-1", fastRetrierFactory())
	demandId := domain.NewDemandId()

	require.NoError(t, dao.ExportChain(context.Background(), "supplier", demandId, buildRecords(demandId, 60)))

	require.Len(t, client.calls, 3)
	assert.Len(t, client.calls[0].RequestItems["DemandChain"], 25)
	assert.Len(t, client.calls[1].RequestItems["DemandChain"], 25)
	assert.Len(t, client.calls[2].RequestItems["DemandChain"], 10)
}

func TestExportChainResubmitsUnprocessedItems(t *testing.T) {
	client := &fakeBatchWriter{unprocessed: 2}
	dao := NewDynChainSinkDao(client, "Chains", "run-1", fastRetrierFactory())
	demandId := domain.NewDemandId()

	require.NoError(t, dao.ExportChain(context.Background(), "bank", demandId, buildRecords(demandId, 5)))

	require.Len(t, client.calls, 2)
	assert.Len(t, client.calls[1].RequestItems["Chains"], 2)
}

func TestExportChainReturnsPersistentErrors(t *testing.T) {
	errThrottled := errors.New("throttled")
	client := &fakeBatchWriter{err: errThrottled}
	dao := NewDynChainSinkDao(client, "Chains", "run-1", fastRetrierFactory())
	demandId := domain.NewDemandId()

	err := dao.ExportChain(context.Background(), "bank", demandId, buildRecords(demandId, 1))
	assert.ErrorIs(t, err, errThrottled)
	assert.Len(t, client.calls, 4)
}

type fakeItemPutter struct {
	input *dynamodb.PutItemInput
}

func (f *fakeItemPutter) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.input = params
	return &dynamodb.PutItemOutput{}, nil
}

func TestStoreSummary(t *testing.T) {
	client := &fakeItemPutter{}
	dao := NewDynSummaryDao(client)

	err := dao.StoreSummary(context.Background(), infrastructure.Summary{RunId: "run-1", Seed: 7, SimulatedTime: 2 * time.Second, Revenue: 12.5})
	require.NoError(t, err)

	assert.Equal(t, "SimulationSummary", *client.input.TableName)
	assert.Equal(t, "2000", client.input.Item["simulated_millis"].(*types.AttributeValueMemberN).Value)
	assert.Equal(t, "12.5", client.input.Item["revenue"].(*types.AttributeValueMemberN).Value)
}
