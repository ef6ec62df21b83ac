package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"

	"bizsim/dynamoutils"
	"bizsim/simulation/domain"
	"bizsim/simulation/dyndao"
	"bizsim/simulation/infrastructure"
	"bizsim/simulation/plugins"
	"bizsim/utils"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

var client *dynamodb.Client
var logger *slog.Logger

func init() {
	logger = utils.NewLogger(os.Stderr, utils.ParseLevel(os.Getenv("LOG_LEVEL")))
	slog.SetDefault(logger)

	var err error
	client, err = dynamoutils.CreateAwsClient(context.Background(), os.Getenv("AWS_REGION"))
	if err != nil {
		logger.Error("could not create dynamodb client", "error", err)
		os.Exit(1)
	}
}

func handler(ctx context.Context, evt json.RawMessage) (infrastructure.Summary, error) {
	params := &infrastructure.SimulationParameters{}
	if err := json.Unmarshal(evt, params); err != nil {
		return infrastructure.Summary{}, err
	}
	if !infrastructure.IsSimulationParametersValid(params) {
		return infrastructure.Summary{}, errors.New("simulation parameters are not valid")
	}

	scenario, err := infrastructure.ResolveScenario(params)
	if err != nil {
		return infrastructure.Summary{}, err
	}

	var sink domain.ChainSink = plugins.NewLocalChainSink(logger)
	if params.ExportChains {
		sink = dyndao.NewDynChainSinkDao(client, params.ChainTableName, params.RunId, nil)
	}

	simulation, err := infrastructure.BuildNewSimulation(scenario, params.RunId, params.Seed, plugins.NewLocalObserver(logger), sink, logger)
	if err != nil {
		return infrastructure.Summary{}, err
	}
	summary, err := simulation.Run(ctx)
	if err != nil {
		return summary, err
	}

	return summary, dyndao.NewDynSummaryDao(client).StoreSummary(ctx, summary)
}

func main() {
	lambda.Start(handler)
}
