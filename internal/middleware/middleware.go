package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/OCRBot/internal/handlers"
	"github.com/akolanti/OCRBot/internal/metrics"
	"github.com/akolanti/OCRBot/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

var (
	authToken  string
	authBypass bool
)

// Init sets the static bearer token that guards the operational routes.
// Without a token those routes are open.
func Init(token string, bypass bool) {
	authToken = token
	authBypass = bypass || token == ""
}

var GetHandler = WrapPublic(handlers.GetHandler)

// the messaging endpoint checks the channel's JWT itself instead of the static token
var MessagesHandler = WrapPublic(handlers.MessagesHandler)
var GetStatusHandler = Wrap(handlers.GetStatusHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return wrap(next, true)
}

func WrapPublic(next http.HandlerFunc) http.HandlerFunc {
	return wrap(next, false)
}

func wrap(next http.HandlerFunc, withAuth bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		re := processRequest(requestResponseStruct{req: r, writer: rec}, withAuth)

		if !re.badRequest.isBadRequest {
			next(rec, re.req)
		}
		metrics.HttpRequestsTotal.WithLabelValues(routeLabel(r), strconv.Itoa(rec.Status)).Inc()
	}
}

func processRequest(re requestResponseStruct, withAuth bool) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re = injectTrace(re)
	if !handleBadRequest(re) {
		return re
	}
	re.logger.Debug("New request received", "path", re.req.URL.Path)
	if withAuth {
		re = authenticate(re)
		if !handleBadRequest(re) {
			return re //stop if auth fails
		}
	}
	re = rateLimiter(re)
	handleBadRequest(re)
	return re
}

// routeLabel keeps path parameters out of the metric labels.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
