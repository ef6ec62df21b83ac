package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"

	"bizsim/lambdautils"
	"bizsim/simulation/infrastructure"

	"github.com/aws/aws-lambda-go/lambda"
	lambdaservice "github.com/aws/aws-sdk-go-v2/service/lambda"
)

var lambdaClient *lambdaservice.Client

func init() {
	var err error
	lambdaClient, err = lambdautils.CreateNewClient(context.Background(), os.Getenv("AWS_REGION"))
	if err != nil {
		slog.Error("could not create lambda client", "error", err)
		os.Exit(1)
	}
}

type ReplicationsInput struct {
	SimulationParams infrastructure.SimulationParameters
	RunId            string
}

func handler(ctx context.Context, evt json.RawMessage) error {
	input := &ReplicationsInput{}
	if err := json.Unmarshal(evt, input); err != nil {
		return err
	}
	if input.RunId == "" {
		return errors.New("run id is missing")
	}
	if _, err := infrastructure.ResolveScenario(&input.SimulationParams); err != nil {
		return err
	}

	paramsList, err := infrastructure.ExpandReplications(&input.SimulationParams, input.RunId)
	if err != nil {
		return err
	}
	for _, params := range paramsList {
		if err = lambdautils.InvokeSimulationAsync(ctx, lambdaClient, params); err != nil {
			return err
		}
	}
	slog.Info("replications started", "run_id", input.RunId, "count", len(paramsList))
	return nil
}

func main() {
	lambda.Start(handler)
}
