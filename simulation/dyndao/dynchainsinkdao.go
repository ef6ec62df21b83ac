package dyndao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bizsim/dynamoutils"
	"bizsim/simulation/domain"
	"bizsim/utils"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDB rejects batch writes with more than 25 requests.
const maxBatchSize = 25

type BatchWriter interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DynChainSinkDao persists closed demand chains, one item per record.
type DynChainSinkDao struct {
	client         BatchWriter
	tableName      string
	runId          string
	retrierFactory func() *utils.Retrier[struct{}]
}

func NewDynChainSinkDao(client BatchWriter, tableName string, runId string, retrierFactory func() *utils.Retrier[struct{}]) *DynChainSinkDao {
	if tableName == "" {
		tableName = dynamoutils.DemandChainTableName
	}
	if retrierFactory == nil {
		retrierFactory = utils.NewExponentialRetrierFactory[struct{}](5, 50*time.Millisecond, 0.1, 2*time.Second)
	}
	return &DynChainSinkDao{client: client, tableName: tableName, runId: runId, retrierFactory: retrierFactory}
}

func (dao *DynChainSinkDao) ExportChain(ctx context.Context, owner domain.ActorRef, demandId domain.DemandId, records []domain.ContentRecord) error {
	requests := make([]types.WriteRequest, 0, len(records))
	for _, record := range records {
		item, err := dao.buildRecordItem(owner, demandId, record)
		if err != nil {
			return err
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}

	for start := 0; start < len(requests); start += maxBatchSize {
		end := min(start+maxBatchSize, len(requests))
		if err := dao.writeBatch(ctx, requests[start:end]); err != nil {
			return fmt.Errorf("could not export chain %v of %v: %w", demandId, owner, err)
		}
	}
	return nil
}

// writeBatch resubmits unprocessed items until the table accepts all of them.
func (dao *DynChainSinkDao) writeBatch(ctx context.Context, requests []types.WriteRequest) error {
	pending := requests
	return dao.retrierFactory().Do(ctx, func() error {
		output, err := dao.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{dao.tableName: pending},
		})
		if err != nil {
			return err
		}
		unprocessed := output.UnprocessedItems[dao.tableName]
		if len(unprocessed) > 0 {
			pending = unprocessed
			return fmt.Errorf("%v unprocessed items", len(unprocessed))
		}
		return nil
	})
}

func (dao *DynChainSinkDao) buildRecordItem(owner domain.ActorRef, demandId domain.DemandId, record domain.ContentRecord) (map[string]types.AttributeValue, error) {
	contentJson, err := json.Marshal(record.Content)
	if err != nil {
		return nil, fmt.Errorf("could not serialize content %v: %w", record.Content.GetId(), err)
	}
	return map[string]types.AttributeValue{
		"demand_id":  &types.AttributeValueMemberS{Value: string(demandId)},
		"record_key": &types.AttributeValueMemberS{Value: RecordKey(owner, record.Position)},
		"owner":      &types.AttributeValueMemberS{Value: string(owner)},
		"run_id":     &types.AttributeValueMemberS{Value: dao.runId},
		"content_id": &types.AttributeValueMemberS{Value: record.Content.GetId().String()},
		"type":       &types.AttributeValueMemberS{Value: string(record.Type)},
		"sent":       &types.AttributeValueMemberBOOL{Value: record.Sent},
		"content":    &types.AttributeValueMemberS{Value: string(contentJson)},
	}, nil
}

// RecordKey zero-pads the position so that records of an owner sort by insertion.
func RecordKey(owner domain.ActorRef, position int) string {
	return fmt.Sprintf("%v#%010d", owner, position)
}

var _ domain.ChainSink = (*DynChainSinkDao)(nil)
