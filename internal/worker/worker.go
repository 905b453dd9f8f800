package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/domain/botModel"
	"github.com/akolanti/OCRBot/internal/domain/turnModel"
	"github.com/akolanti/OCRBot/internal/metrics"
	"github.com/akolanti/OCRBot/internal/turn"
	"github.com/akolanti/OCRBot/pkg/logger_i"
)

// TurnProcessor runs one activity, the bot handler in production.
type TurnProcessor interface {
	Handle(ctx context.Context, a botModel.Activity, onStep func(turnModel.Step)) (turnModel.Outcome, error)
	OnTurnError(ctx context.Context, a botModel.Activity, err error)
}

var (
	_turnService       *turn.Service
	_processor         TurnProcessor
	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	dispatcherChannel  chan bool
	currentWorkerCount int64
	logger             *logger_i.Logger
	minWorkerCount     = config.MinWorkerCount
	idleWorkerTimeout  = config.IdleWorkerTimeout
	turnTimeout        = config.TurnTimeout
	turnBaseContext    = context.Background()
)

func InitServices(turnService *turn.Service, processor TurnProcessor) {
	_turnService = turnService
	_processor = processor
	dispatcherChannel = turnService.DispatcherChannel
}

// InitWorkerPool starts the dispatcher. Turns run under turnCtx, cancelling it makes
// running turns wind down and answer instead of being cut off at exit.
func InitWorkerPool(turnCtx context.Context, stopWorkerChan chan bool, waitGroup *sync.WaitGroup) {
	turnBaseContext = turnCtx
	stopWorkerChannel = stopWorkerChan
	workerWaitGroup = waitGroup
	logger = logger_i.NewLogger("WorkerPool")
	logger.Info("Initializing worker pool")
	go dispatcher()
}

// dispatcher adds a worker per signal until the pool is at MaxWorkerCount.
func dispatcher() {
	createWorker()
	logger.Info("Dispatcher started")
	for range dispatcherChannel {
		n := atomic.LoadInt64(&currentWorkerCount)
		if n >= config.MaxWorkerCount {
			logger.Debug("Pool at capacity, signal ignored", "workerCount", n)
			continue
		}
		logger.Info("Scaling up worker pool", "workerCount", n)
		createWorker()
	}
}

func createWorker() {
	workerWaitGroup.Add(1)
	atomic.AddInt64(&currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go worker()
}

func worker() {
	idle := time.NewTimer(idleWorkerTimeout)
	defer idle.Stop()

	for {
		select {
		case t := <-_turnService.TurnChannel:
			executeTurn(t)
			metrics.DecrementTurnsInQueue()
			idle.Reset(idleWorkerTimeout)

		case <-stopWorkerChannel:
			atomic.AddInt64(&currentWorkerCount, -1)
			removeWorker("Stop worker signal received")
			return

		case <-idle.C:
			if tryRetire() {
				removeWorker("Idle worker timeout")
				return
			}
			idle.Reset(idleWorkerTimeout)
		}
	}
}

// tryRetire gives up one worker slot unless that would drop below minWorkerCount.
func tryRetire() bool {
	for {
		n := atomic.LoadInt64(&currentWorkerCount)
		if n <= atomic.LoadInt64(&minWorkerCount) {
			return false
		}
		if atomic.CompareAndSwapInt64(&currentWorkerCount, n, n-1) {
			return true
		}
	}
}
