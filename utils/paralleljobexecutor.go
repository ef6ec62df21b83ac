package utils

import "sync"

type ParallelJobExecutor interface {
	RegisterConsumer(matcher func(tag string) bool, consumer Consumer)
	RegisterErrorHandler(handler func(err error))
	Start()
	SubmitJob(job func() (Result, error))
	Stop()
}

type Consumer interface {
	Consume(Result)
}

type ConsumerFunc func(Result)

func (f ConsumerFunc) Consume(result Result) {
	f(result)
}

type Result struct {
	data any
	tag  string
}

func NewResult(tag string, data any) Result {
	return Result{data: data, tag: tag}
}

func (r Result) Data() any {
	return r.data
}

func (r Result) Tag() string {
	return r.tag
}

// ParallelJobExecutorImpl runs submitted jobs on a fixed pool of goroutines.
// Each consumer and the error handler are driven by a single goroutine, so
// they need no locking of their own.
type ParallelJobExecutorImpl struct {
	consumerRoutes   []Pair[func(string) bool, chan Result]
	maxParallelUnits int
	workersWg        sync.WaitGroup
	handlersWg       sync.WaitGroup
	jobQueue         chan func() (Result, error)
	errorQueue       chan error
}

func NewSimpleParallelJobExecutor(maxParallelUnits int) *ParallelJobExecutorImpl {
	return &ParallelJobExecutorImpl{
		maxParallelUnits: max(maxParallelUnits, 1),
		jobQueue:         make(chan func() (Result, error), 1000),
		errorQueue:       make(chan error, 100),
	}
}

// RegisterConsumer must be called before Start.
func (ex *ParallelJobExecutorImpl) RegisterConsumer(matcher func(tag string) bool, consumer Consumer) {
	ex.handlersWg.Add(1)
	consumerQueue := make(chan Result, 1000)
	ex.consumerRoutes = append(ex.consumerRoutes, Pair[func(string) bool, chan Result]{First: matcher, Second: consumerQueue})
	go func() {
		defer ex.handlersWg.Done()
		for res := range consumerQueue {
			consumer.Consume(res)
		}
	}()
}

func (ex *ParallelJobExecutorImpl) RegisterErrorHandler(handler func(err error)) {
	ex.handlersWg.Add(1)
	go func() {
		defer ex.handlersWg.Done()
		for err := range ex.errorQueue {
			handler(err)
		}
	}()
}

func (ex *ParallelJobExecutorImpl) Start() {
	for range ex.maxParallelUnits {
		ex.workersWg.Add(1)
		go func() {
			defer ex.workersWg.Done()
			for job := range ex.jobQueue {
				result, err := job()
				if err != nil {
					ex.errorQueue <- err
					continue
				}
				for _, route := range ex.consumerRoutes {
					if route.First(result.tag) {
						route.Second <- result
					}
				}
			}
		}()
	}
}

func (ex *ParallelJobExecutorImpl) SubmitJob(job func() (Result, error)) {
	ex.jobQueue <- job
}

// Stop waits for every submitted job and for every handler to drain.
func (ex *ParallelJobExecutorImpl) Stop() {
	close(ex.jobQueue)
	ex.workersWg.Wait()

	for _, route := range ex.consumerRoutes {
		close(route.Second)
	}
	close(ex.errorQueue)

	ex.handlersWg.Wait()
}
