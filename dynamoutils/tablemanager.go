package dynamoutils

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	net "net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/ratelimit"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	DemandChainTableName       = "DemandChain"
	SimulationSummaryTableName = "SimulationSummary"
	DefaultRegion              = "eu-west-3"
	LocalEndpoint              = "http://localhost:8000"
)

type TableDefinition struct {
	TableName string

	PartitionKey         AttributeDefinition
	SortKey              AttributeDefinition
	AdditionalAttributes []AttributeDefinition

	SecondaryIndexes []SecondaryIndexDefinition
}

type SecondaryIndexDefinition struct {
	IndexName string

	PartitionKeyName string
	SortKeyName      string
}

type AttributeDefinition struct {
	Name       string
	ScalarType types.ScalarAttributeType
}

// CreateTable creates the table on demand billing and waits until it is active.
func CreateTable(ctx context.Context, client *dynamodb.Client, tableDefinition TableDefinition) (*types.TableDescription, error) {
	attributeDefinitions := []types.AttributeDefinition{{
		AttributeName: aws.String(tableDefinition.PartitionKey.Name),
		AttributeType: tableDefinition.PartitionKey.ScalarType,
	}}
	if tableDefinition.SortKey.Name != "" {
		attributeDefinitions = append(attributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(tableDefinition.SortKey.Name),
			AttributeType: tableDefinition.SortKey.ScalarType,
		})
	}
	for _, additionalAttribute := range tableDefinition.AdditionalAttributes {
		attributeDefinitions = append(attributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(additionalAttribute.Name),
			AttributeType: additionalAttribute.ScalarType,
		})
	}

	var globalSecondaryIndexes []types.GlobalSecondaryIndex
	for _, index := range tableDefinition.SecondaryIndexes {
		globalSecondaryIndexes = append(globalSecondaryIndexes, types.GlobalSecondaryIndex{
			IndexName:  aws.String(index.IndexName),
			KeySchema:  createKeySchema(index.PartitionKeyName, index.SortKeyName),
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}

	table, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:              aws.String(tableDefinition.TableName),
		AttributeDefinitions:   attributeDefinitions,
		KeySchema:              createKeySchema(tableDefinition.PartitionKey.Name, tableDefinition.SortKey.Name),
		BillingMode:            types.BillingModePayPerRequest,
		GlobalSecondaryIndexes: globalSecondaryIndexes,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create table %v: %w", tableDefinition.TableName, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tableDefinition.TableName)}, 5*time.Minute)
	if err != nil {
		return table.TableDescription, fmt.Errorf("table %v did not become active: %w", tableDefinition.TableName, err)
	}
	return table.TableDescription, nil
}

func createKeySchema(partitionKeyName string, sortKeyName string) []types.KeySchemaElement {
	schema := []types.KeySchemaElement{{
		AttributeName: aws.String(partitionKeyName),
		KeyType:       types.KeyTypeHash,
	}}
	if sortKeyName != "" {
		schema = append(schema, types.KeySchemaElement{
			AttributeName: aws.String(sortKeyName),
			KeyType:       types.KeyTypeRange,
		})
	}
	return schema
}

// CreateLocalClient targets a DynamoDB Local instance with static credentials.
func CreateLocalClient(ctx context.Context, endpoint string) (*dynamodb.Client, error) {
	if endpoint == "" {
		endpoint = LocalEndpoint
	}
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("localhost"),
		config.WithHTTPClient(
			http.NewBuildableClient().
				WithTransportOptions(func(tr *net.Transport) {
					tr.ExpectContinueTimeout = 0
					tr.MaxIdleConns = 100
				}),
		),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
		config.WithClientLogMode(aws.LogRetries),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	}), nil
}

func CreateAwsClient(ctx context.Context, region string) (*dynamodb.Client, error) {
	if region == "" {
		region = DefaultRegion
	}
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithClientLogMode(aws.LogRetries),
		config.WithRetryer(func() aws.Retryer {
			return retry.NewStandard(func(so *retry.StandardOptions) {
				so.RateLimiter = ratelimit.NewTokenRateLimit(100000)
				so.MaxAttempts = 5
			})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

func GetExistingTableNames(ctx context.Context, client *dynamodb.Client) ([]string, error) {
	var tableNames []string
	paginator := dynamodb.NewListTablesPaginator(client, &dynamodb.ListTablesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		tableNames = append(tableNames, page.TableNames...)
	}
	return tableNames, nil
}

func DeleteTable(ctx context.Context, client *dynamodb.Client, tableName string) error {
	_, err := client.DeleteTable(ctx, &dynamodb.DeleteTableInput{TableName: aws.String(tableName)})
	if err != nil {
		return fmt.Errorf("could not delete table %v: %w", tableName, err)
	}
	return nil
}

// DemandChainTableDefinition stores one item per exported record: the demand
// id partitions the table and "owner#position" orders an owner's records.
func DemandChainTableDefinition(tableName string) TableDefinition {
	if tableName == "" {
		tableName = DemandChainTableName
	}
	return TableDefinition{
		TableName:    tableName,
		PartitionKey: AttributeDefinition{Name: "demand_id", ScalarType: types.ScalarAttributeTypeS},
		SortKey:      AttributeDefinition{Name: "record_key", ScalarType: types.ScalarAttributeTypeS},
		AdditionalAttributes: []AttributeDefinition{
			{Name: "owner", ScalarType: types.ScalarAttributeTypeS},
		},
		SecondaryIndexes: []SecondaryIndexDefinition{
			{IndexName: "OwnerIndex", PartitionKeyName: "owner", SortKeyName: "demand_id"},
		},
	}
}

func SimulationSummaryTableDefinition() TableDefinition {
	return TableDefinition{
		TableName:    SimulationSummaryTableName,
		PartitionKey: AttributeDefinition{Name: "run_id", ScalarType: types.ScalarAttributeTypeS},
	}
}

// ResetTables drops the given tables when they exist and creates them again.
func ResetTables(ctx context.Context, client *dynamodb.Client, definitions ...TableDefinition) error {
	existing, err := GetExistingTableNames(ctx, client)
	if err != nil {
		return err
	}
	var errs []error
	for _, definition := range definitions {
		for _, name := range existing {
			if name != definition.TableName {
				continue
			}
			if err = DeleteTable(ctx, client, name); err != nil {
				errs = append(errs, err)
				continue
			}
			waiter := dynamodb.NewTableNotExistsWaiter(client)
			if err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)}, 5*time.Minute); err != nil {
				errs = append(errs, err)
			}
		}
		if _, err = CreateTable(ctx, client, definition); err != nil {
			errs = append(errs, err)
			continue
		}
		slog.Info("table ready", "table", definition.TableName)
	}
	return errors.Join(errs...)
}
