package worker

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/domain/turnModel"
	"github.com/akolanti/OCRBot/internal/metrics"
	"github.com/akolanti/OCRBot/pkg/logger_i"
)

func executeTurn(t turnModel.Turn) {
	start := time.Now()
	defer func() {
		metrics.CaptureTurnMetrics(string(t.Status), time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(logger_i.WithTraceID(turnBaseContext, t.TraceId), turnTimeout)
	defer cancel()
	log := logger.WithTrace(ctx)
	log.Debug("Processing turn", "turnId", t.Id, "activityType", t.Type)

	saveTurnState(ctx, &t, turnModel.TurnStatusRunning)

	onStep := func(step turnModel.Step) {
		t.CurrentStep = step
		saveTurnState(ctx, &t, turnModel.TurnStatusRunning)
	}
	outcome, err := _processor.Handle(ctx, t.Activity, onStep)
	t.Outcome = outcome

	status := turnModel.TurnStatusComplete
	if err != nil {
		_processor.OnTurnError(ctx, t.Activity, err)
		status = turnModel.TurnStatusError
		t.Outcome = turnModel.OutcomeTurnError
		t.Error = turnModel.TurnError{Code: http.StatusInternalServerError, Message: err.Error()}
		metrics.CountPipelineOutcome(string(turnModel.OutcomeTurnError))
	}

	t.CurrentStep = turnModel.StepComplete
	t.EndTime = time.Now()
	//the turn deadline may have passed, the record still has to be closed
	saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(ctx), config.ConnectorRequestTimeout)
	defer saveCancel()
	saveTurnState(saveCtx, &t, status)
	log.Info("Turn finished", "turnId", t.Id, "status", status, "outcome", t.Outcome, "elapsed", time.Since(start))
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	logger.Info("Removed worker", "reason", reason, "workerCount", atomic.LoadInt64(&currentWorkerCount))
	metrics.DecrementActiveWorkerCount()
}

func saveTurnState(ctx context.Context, t *turnModel.Turn, status turnModel.TurnStatus) {
	t.Status = status
	if err := _turnService.TurnStore.SaveTurn(ctx, *t); err != nil {
		logger.WithTrace(ctx).Error("Failed to update turn status", "err", err)
	}
}
