package lambdautils

import (
	"context"
	"encoding/json"
	"fmt"

	"bizsim/simulation/infrastructure"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

const SimulationFunctionName = "Simulation"

type Invoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

func CreateNewClient(ctx context.Context, region string) (*lambda.Client, error) {
	if region == "" {
		region = "eu-west-3"
	}
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithClientLogMode(aws.LogRetries),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return lambda.NewFromConfig(cfg), nil
}

// InvokeSimulationAsync fires one replication without waiting for its summary.
func InvokeSimulationAsync(ctx context.Context, client Invoker, params infrastructure.SimulationParameters) error {
	payload, err := json.Marshal(params)
	if err != nil {
		return err
	}
	_, err = client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(SimulationFunctionName),
		InvocationType: types.InvocationTypeEvent,
		Payload:        payload,
	})
	return err
}

func InvokeSimulationSync(ctx context.Context, client Invoker, params infrastructure.SimulationParameters) (infrastructure.Summary, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return infrastructure.Summary{}, err
	}
	response, err := client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(SimulationFunctionName),
		Payload:      payload,
	})
	if err != nil {
		return infrastructure.Summary{}, err
	}
	if response.FunctionError != nil {
		return infrastructure.Summary{}, fmt.Errorf("simulation %v failed: %v: %s", params.RunId, *response.FunctionError, response.Payload)
	}

	var summary infrastructure.Summary
	if err = json.Unmarshal(response.Payload, &summary); err != nil {
		return infrastructure.Summary{}, err
	}
	return summary, nil
}
