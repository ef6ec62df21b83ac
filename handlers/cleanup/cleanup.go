package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

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

func handler(ctx context.Context) error {
	return errors.Join(
		dynamoutils.DeleteTable(ctx, client, dynamoutils.DemandChainTableName),
		dynamoutils.DeleteTable(ctx, client, dynamoutils.SimulationSummaryTableName),
	)
}

func main() {
	lambda.Start(handler)
}
