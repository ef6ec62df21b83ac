package dyndao

import (
	"context"
	"strconv"

	"bizsim/dynamoutils"
	"bizsim/simulation/infrastructure"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type ItemPutter interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type DynSummaryDao struct {
	client ItemPutter
}

func NewDynSummaryDao(client ItemPutter) *DynSummaryDao {
	return &DynSummaryDao{client: client}
}

func (dao *DynSummaryDao) StoreSummary(ctx context.Context, summary infrastructure.Summary) error {
	_, err := dao.client.PutItem(ctx, dao.buildSummaryPutInput(summary))
	return err
}

func (dao *DynSummaryDao) buildSummaryPutInput(summary infrastructure.Summary) *dynamodb.PutItemInput {
	return &dynamodb.PutItemInput{
		TableName: aws.String(dynamoutils.SimulationSummaryTableName),
		Item: map[string]types.AttributeValue{
			"run_id":             &types.AttributeValueMemberS{Value: summary.RunId},
			"seed":               numberAttribute(summary.Seed),
			"simulated_millis":   numberAttribute(summary.SimulatedTime.Milliseconds()),
			"events_fired":       numberAttribute(int64(summary.EventsFired)),
			"messages_sequenced": &types.AttributeValueMemberN{Value: strconv.FormatUint(summary.MessagesSequenced, 10)},
			"demands_issued":     numberAttribute(int64(summary.DemandsIssued)),
			"demands_completed":  numberAttribute(int64(summary.DemandsCompleted)),
			"orders_shipped":     numberAttribute(int64(summary.OrdersShipped)),
			"orders_deferred":    numberAttribute(int64(summary.OrdersDeferred)),
			"open_demands":       numberAttribute(int64(summary.OpenDemands)),
			"revenue":            &types.AttributeValueMemberN{Value: strconv.FormatFloat(summary.Revenue, 'f', -1, 64)},
		},
	}
}

func numberAttribute(value int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(value, 10)}
}
