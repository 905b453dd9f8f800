package turn

import (
	"github.com/akolanti/OCRBot/internal/domain/turnModel"
)

// Service is shared by the http handlers (producers) and the worker pool (consumers).
type Service struct {
	TurnChannel       chan turnModel.Turn
	RequestCount      int64
	DispatcherChannel chan bool
	TurnStore         turnModel.TurnStore
	ActivityStore     turnModel.ActivityStore
}

type ServiceConfig struct {
	TurnChannel       chan turnModel.Turn
	RequestCount      int64
	DispatcherChannel chan bool
	TurnStore         turnModel.TurnStore
	ActivityStore     turnModel.ActivityStore
}

func InitTurnService(cfg ServiceConfig) *Service {
	return &Service{
		TurnChannel:       cfg.TurnChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		TurnStore:         cfg.TurnStore,
		ActivityStore:     cfg.ActivityStore,
	}
}
