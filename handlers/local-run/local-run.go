package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"bizsim/dynamoutils"
	"bizsim/simulation/domain"
	"bizsim/simulation/dyndao"
	"bizsim/simulation/infrastructure"
	"bizsim/simulation/plugins"
	"bizsim/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	scenarioPath := flag.String("scenario", filepath.Join(utils.Root, "..", "handlers", "local-run", "scenario.yaml"), "scenario YAML file")
	runId := flag.String("run-id", "local-"+strconv.FormatInt(time.Now().Unix(), 10), "run identifier")
	seed := flag.Int64("seed", 1, "seed of the first replication")
	replications := flag.Int("replications", 1, "number of independent replications")
	parallel := flag.Int("parallel", 4, "replications executed concurrently")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	logFile := flag.String("log-file", "", "write logs to log/<name>.txt instead of stderr")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address and keep running")
	dynamoEndpoint := flag.String("dynamo-endpoint", "", "export closed demand chains to this DynamoDB Local endpoint")
	csvName := flag.String("csv", "", "export summaries to log/<name>.csv")
	flag.Parse()

	if err := run(*scenarioPath, *runId, *seed, *replications, *parallel, *logLevel, *logFile, *metricsAddr, *dynamoEndpoint, *csvName); err != nil {
		slog.Error("local run failed", "error", err)
		os.Exit(1)
	}
}

func run(scenarioPath string, runId string, seed int64, replications int, parallel int, logLevel string, logFile string, metricsAddr string, dynamoEndpoint string, csvName string) error {
	level := utils.ParseLevel(logLevel)
	if logFile != "" {
		if err := utils.SetLogger(logFile, level); err != nil {
			return err
		}
	} else {
		slog.SetDefault(utils.NewLogger(os.Stderr, level))
	}
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	scenario, err := infrastructure.LoadScenario(scenarioPath)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	prometheusObserver, err := plugins.NewPrometheusObserver(registry)
	if err != nil {
		return err
	}
	observer := plugins.MultiObserver{plugins.NewLocalObserver(logger), prometheusObserver}

	sinks := infrastructure.SharedChainSink(plugins.NewLocalChainSink(logger))
	if dynamoEndpoint != "" {
		client, clientErr := dynamoutils.CreateLocalClient(ctx, dynamoEndpoint)
		if clientErr != nil {
			return clientErr
		}
		if err = dynamoutils.ResetTables(ctx, client, dynamoutils.DemandChainTableDefinition("")); err != nil {
			return err
		}
		sinks = func(replicationRunId string) domain.ChainSink {
			return dyndao.NewDynChainSinkDao(client, dynamoutils.DemandChainTableName, replicationRunId, nil)
		}
	}

	summaries, err := infrastructure.RunReplications(ctx, scenario, runId, infrastructure.ReplicationSeeds(seed, replications), parallel, observer, sinks, logger)
	for _, summary := range summaries {
		fmt.Printf("%v seed=%v simulated=%v events=%v demands=%v/%v shipped=%v deferred=%v revenue=%.2f open=%v\n",
			summary.RunId, summary.Seed, summary.SimulatedTime, summary.EventsFired,
			summary.DemandsCompleted, summary.DemandsIssued, summary.OrdersShipped, summary.OrdersDeferred,
			summary.Revenue, summary.OpenDemands)
	}
	if err != nil {
		return err
	}

	if csvName != "" {
		if err = utils.ExportToCsv(csvName, summaryRecords(summaries)); err != nil {
			return err
		}
	}

	if metricsAddr != "" {
		return serveMetrics(ctx, metricsAddr, registry)
	}
	return nil
}

func summaryRecords(summaries []infrastructure.Summary) [][]string {
	records := [][]string{{"run_id", "seed", "simulated_ms", "events", "demands_issued", "demands_completed", "orders_shipped", "orders_deferred", "revenue", "open_demands"}}
	for _, s := range summaries {
		records = append(records, []string{
			s.RunId,
			strconv.FormatInt(s.Seed, 10),
			strconv.FormatInt(s.SimulatedTime.Milliseconds(), 10),
			strconv.Itoa(s.EventsFired),
			strconv.Itoa(s.DemandsIssued),
			strconv.Itoa(s.DemandsCompleted),
			strconv.Itoa(s.OrdersShipped),
			strconv.Itoa(s.OrdersDeferred),
			strconv.FormatFloat(s.Revenue, 'f', 2, 64),
			strconv.Itoa(s.OpenDemands),
		})
	}
	return records
}

func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("serving metrics", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
