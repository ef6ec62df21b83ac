package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"bizsim/simulation/domain"
	"bizsim/utils"
)

const summaryTag = "summary"

type summaryCollector struct {
	summaries []Summary
}

func (c *summaryCollector) Consume(result utils.Result) {
	c.summaries = append(c.summaries, result.Data().(Summary))
}

// ChainSinkFactory builds the sink closed demand chains of one run are exported to.
type ChainSinkFactory func(runId string) domain.ChainSink

// SharedChainSink hands the same sink to every run.
func SharedChainSink(sink domain.ChainSink) ChainSinkFactory {
	return func(string) domain.ChainSink { return sink }
}

// RunReplications runs one independent simulation per seed, at most maxParallel
// at a time. Every replication gets its own run context, so arrival ids never
// leak between runs. Each run exports to the sink built for its own run id.
func RunReplications(ctx context.Context, scenario *Scenario, baseRunId string, seeds []int64, maxParallel int, observer domain.DispatchObserver, sinks ChainSinkFactory, logger *slog.Logger) ([]Summary, error) {
	if maxParallel <= 0 {
		maxParallel = 1
	}
	if sinks == nil {
		sinks = SharedChainSink(nil)
	}

	collector := &summaryCollector{}
	var errs []error

	executor := utils.NewSimpleParallelJobExecutor(maxParallel)
	executor.RegisterConsumer(func(tag string) bool { return tag == summaryTag }, collector)
	executor.RegisterErrorHandler(func(err error) { errs = append(errs, err) })
	executor.Start()

	for i, seed := range seeds {
		runId := fmt.Sprintf("%v-%v", baseRunId, i)
		sink := sinks(runId)
		executor.SubmitJob(func() (utils.Result, error) {
			simulation, err := BuildNewSimulation(scenario, runId, seed, observer, sink, logger)
			if err != nil {
				return utils.Result{}, fmt.Errorf("run %v: %w", runId, err)
			}
			summary, err := simulation.Run(ctx)
			if err != nil {
				return utils.Result{}, fmt.Errorf("run %v: %w", runId, err)
			}
			return utils.NewResult(summaryTag, summary), nil
		})
	}

	executor.Stop()

	sort.Slice(collector.summaries, func(i, j int) bool {
		return collector.summaries[i].RunId < collector.summaries[j].RunId
	})
	return collector.summaries, errors.Join(errs...)
}
