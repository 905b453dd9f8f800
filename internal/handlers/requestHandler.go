package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/akolanti/OCRBot/internal/adapter"
	"github.com/akolanti/OCRBot/internal/adapter/utils"
	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/domain/botModel"
	"github.com/akolanti/OCRBot/internal/metrics"
	"github.com/akolanti/OCRBot/pkg/logger_i"
)

var (
	logRH       *logger_i.Logger
	channelAuth ChannelAuthenticator
)

// ChannelAuthenticator verifies the token the channel service sends with every activity.
type ChannelAuthenticator interface {
	Authenticate(ctx context.Context, authHeader, serviceURL, channelID string) error
}

// SetChannelAuthenticator turns on inbound token checks. Without one every activity is accepted,
// which is only meant for the emulator.
func SetChannelAuthenticator(a ChannelAuthenticator) {
	channelAuth = a
}

// GetHandler godoc
// @Summary      Liveness probe
// @Tags         Health
// @Success      200
// @Router       /healthz [get]
func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// MessagesHandler godoc
// @Summary      Bot Framework messaging endpoint
// @Description  Accepts an inbound activity, queues it as a turn and returns the turn id. Redelivered activities are acknowledged without being queued again.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        activity  body      botModel.Activity      true  "Bot Framework activity"
// @Success      202       {object}  api.InitTurnResponse  "Turn queued"
// @Success      200       {string}  string                "Activity acknowledged, nothing to do"
// @Failure      400       {object}  api.TurnResponse      "Malformed activity"
// @Failure      401       {object}  api.TurnResponse      "Missing or invalid channel token"
// @Router       /api/messages [post]
func MessagesHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request", "remote", request.RemoteAddr)
		return
	}
	ctx := request.Context()
	log := logRH.WithTrace(ctx)

	authHeader := request.Header.Get("Authorization")
	if channelAuth != nil && authHeader == "" {
		log.Warn("Activity without channel token", "remote", request.RemoteAddr)
		WriteErrorResponse(w, http.StatusUnauthorized, "", "Unauthorized")
		return
	}

	request.Body = http.MaxBytesReader(w, request.Body, config.MaxInboundActivityBytes)
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Error("Couldn't close the messages reader", "error", err)
		}
	}(request.Body)

	var activity botModel.Activity
	if err := json.NewDecoder(request.Body).Decode(&activity); err != nil || !ValidateActivity(activity) {
		log.Warn("Bad activity", "error", err, "type", activity.Type)
		WriteErrorResponse(w, http.StatusBadRequest, activity.Id, "Bad Request")
		return
	}

	if channelAuth != nil {
		if err := channelAuth.Authenticate(ctx, authHeader, activity.ServiceUrl, activity.ChannelId); err != nil {
			log.Warn("Channel token rejected", "error", err, "serviceUrl", activity.ServiceUrl)
			WriteErrorResponse(w, http.StatusUnauthorized, activity.Id, "Unauthorized")
			return
		}
	}

	if !isRoutable(activity) {
		log.Debug("Activity acknowledged", "type", activity.Type)
		w.WriteHeader(http.StatusOK)
		return
	}

	if IsDuplicateActivity(ctx, activity) {
		metrics.CountDuplicateActivity()
		log.Info("Duplicate activity skipped", "activityId", activity.Id)
		w.WriteHeader(http.StatusOK)
		return
	}

	newTurn := newTurnData{
		id:       utils.GetNewUUID(),
		traceId:  logger_i.TraceID(ctx),
		activity: activity,
	}
	CreateNewTurn(ctx, newTurn)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitTurnResponse(newTurn.id))
}

// GetStatusHandler godoc
// @Summary      Get turn status
// @Description  Retrieves the current status, step and outcome of a turn using its ID.
// @Tags         Turn Status
// @Produce      json
// @Param        id   path      string  true  "Turn ID"
// @Success      200  {object}  api.TurnResponse  "The current status of the turn"
// @Failure      404  {object}  api.TurnResponse  "Turn not found"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	result, isFound := validateId(idString, logger_i.TraceID(r.Context()))

	logRH.WithTrace(r.Context()).Debug("Get Status Request", "path", r.URL.Path)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Turn not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}
