package adapter

import (
	"fmt"

	"github.com/akolanti/OCRBot/internal/api"
	"github.com/akolanti/OCRBot/internal/domain/turnModel"
)

func ToInitTurnResponse(id string) api.InitTurnResponse {
	return api.InitTurnResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(t turnModel.Turn) api.TurnResponse {
	var errorPtr *api.TurnOutgoingError
	if t.Error.Message != "" || t.Error.Code != 0 {
		errorPtr = &api.TurnOutgoingError{
			Code:    t.Error.Code,
			Message: t.Error.Message,
		}
	}

	return api.TurnResponse{
		Id:         t.Id,
		ActivityId: t.ActivityId,
		StartTime:  t.CreatedTime,
		EndTime:    t.EndTime,
		Error:      errorPtr,
		Result: api.Result{
			Status:  string(t.Status),
			Step:    string(t.CurrentStep),
			Outcome: string(t.Outcome),
		},
	}
}

func BadRequest(id string, error string, code int) api.TurnResponse {
	return api.TurnResponse{
		Id:     id,
		Result: api.Result{Status: string(api.TurnStatusError)},
		Error: &api.TurnOutgoingError{
			Code:    code,
			Message: error,
		},
	}
}
