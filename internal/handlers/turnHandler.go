package handlers

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

var (
	handlerInstance *TurnHandler //private singleton
	once            sync.Once
	logTH           *logger_i.Logger
)

type TurnHandler struct {
	service *turn.Service
}

type newTurnData struct {
	id       string
	traceId  string
	activity botModel.Activity
}

func InitTurnHandler(turnService *turn.Service) {
	once.Do(func() {
		handlerInstance = &TurnHandler{service: turnService}

		logTH = logger_i.NewLogger("TurnHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logTH.Info("Starting turn handler")
	})
}

func CreateNewTurn(ctx context.Context, newTurn newTurnData) {
	logTH.WithTrace(ctx).Info("Queueing turn", "turnId", newTurn.id, "activityType", newTurn.activity.Type)
	handlerInstance.pushToTurnChannel(ctx, newTurn)
}

func GetTurnStatus(id string, traceId string) (result turnModel.Turn, isFound bool) {
	ctxC := logger_i.WithTraceID(context.Background(), traceId)
	if handlerInstance != nil {
		return handlerInstance.service.TurnStore.GetTurn(ctxC, id)
	}
	return result, false
}

// IsDuplicateActivity reports whether a was already delivered recently.
// Activity ids are only unique within a conversation, so both make up the key.
// Store failures let the activity through; a double reply beats a lost one.
func IsDuplicateActivity(ctx context.Context, a botModel.Activity) bool {
	if handlerInstance == nil || handlerInstance.service.ActivityStore == nil || a.Id == "" {
		return false
	}
	isNew, err := handlerInstance.service.ActivityStore.MarkSeen(ctx, dedupeKey(a))
	if err != nil {
		logTH.WithTrace(ctx).Warn("Activity de-duplication unavailable", "error", err)
		return false
	}
	return !isNew
}

func dedupeKey(a botModel.Activity) string {
	return a.Conversation.Id + ":" + a.Id
}

// private methods
func (h *TurnHandler) pushToTurnChannel(ctx context.Context, newTurn newTurnData) {
	_turn := turnModel.Turn{
		Id:          newTurn.id,
		TraceId:     newTurn.traceId,
		Activity:    newTurn.activity,
		ActivityId:  newTurn.activity.Id,
		ChannelId:   newTurn.activity.ChannelId,
		Type:        string(newTurn.activity.Type),
		Status:      turnModel.TurnStatusQueued,
		CurrentStep: turnModel.StepInit,
		CreatedTime: time.Now(),
	}
	if err := h.service.TurnStore.SaveTurn(ctx, _turn); err != nil {
		logTH.WithTrace(ctx).Error("Failed to save queued turn", "error", err)
	}

	metrics.IncrementTurnsInQueue()

	h.service.TurnChannel <- _turn //blocking send, a full buffer pushes back on the channel
	logTH.WithTrace(ctx).Debug("Turn queued", "turnId", _turn.Id)

	//a new worker every few requests, and for every attachment since those hold a worker
	//for the whole download, OCR and completion; idle workers retire on their own
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _turn.Activity.HasAttachments() {
		metrics.StartDispatcherSignalCount()
		select {
		case h.service.DispatcherChannel <- true:
		default:
			//a signal is already pending
		}
	}
}
