package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/akolanti/OCRBot/internal/adapter"
	"github.com/akolanti/OCRBot/internal/domain/botModel"
	"github.com/akolanti/OCRBot/internal/domain/turnModel"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// status is already written
		logRH.Error("Error encoding response", "error", err)
	}
}

func validateId(id string, traceId string) (result turnModel.Turn, isFound bool) {
	if id == "" {
		logRH.Warn("Empty Turn ID")
		return turnModel.Turn{}, false
	}
	return GetTurnStatus(id, traceId)
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.WithTrace(ctx).Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

// ValidateActivity checks the fields a reply needs; anything less cannot be answered.
func ValidateActivity(a botModel.Activity) bool {
	if a.Type == "" {
		return false
	}
	if !isRoutable(a) {
		return true
	}
	return a.ServiceUrl != "" && a.Conversation.Id != ""
}

func isRoutable(a botModel.Activity) bool {
	return a.Type == botModel.ActivityTypeMessage || a.Type == botModel.ActivityTypeConversationUpdate
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}
