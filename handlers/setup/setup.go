package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"slices"

	"bizsim/dynamoutils"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

var client *dynamodb.Client

func init() {
	var err error
	client, err = dynamoutils.CreateAwsClient(context.Background(), os.Getenv("AWS_REGION"))
	if err != nil {
		slog.Error("could not create dynamodb client", "error", err)
		os.Exit(1)
	}
}

type SetupInput struct {
	ChainTableName string
}

func handler(ctx context.Context, evt json.RawMessage) error {
	input := &SetupInput{}
	if len(evt) > 0 {
		if err := json.Unmarshal(evt, input); err != nil {
			return err
		}
	}

	existingTableNames, err := dynamoutils.GetExistingTableNames(ctx, client)
	if err != nil {
		return err
	}

	for _, definition := range []dynamoutils.TableDefinition{
		dynamoutils.DemandChainTableDefinition(input.ChainTableName),
		dynamoutils.SimulationSummaryTableDefinition(),
	} {
		if slices.Contains(existingTableNames, definition.TableName) {
			continue
		}
		if _, err = dynamoutils.CreateTable(ctx, client, definition); err != nil {
			return err
		}
		slog.Info("table created", "table", definition.TableName)
	}
	return nil
}

func main() {
	lambda.Start(handler)
}
