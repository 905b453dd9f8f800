package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/akolanti/OCRBot/internal/adapter/utils"
	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/middleware"
	"github.com/akolanti/OCRBot/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

var (
	botServer      *http.Server
	botServerMu    sync.Mutex
	turnDrainGrace = config.TurnDrainGrace
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CancelTurns      context.CancelFunc
	CloseServices    context.CancelFunc
}

func registerRoutes(r chi.Router) {
	r.Post("/api/messages", middleware.MessagesHandler)
	r.Get("/status/{id}", middleware.GetStatusHandler)
	r.Get("/healthz", middleware.GetHandler)
}

func newBotServer(listenAddr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         listenAddr,
		Handler:      h,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
}

// CreateServer blocks serving the bot endpoint until ShutDownHandler stops it.
func CreateServer(listenAddr string) {
	log := logger_i.NewLogger("Server")

	r := utils.GetRouter()
	registerRoutes(r.Router)

	srv := newBotServer(listenAddr, r.Router)
	botServerMu.Lock()
	botServer = srv
	botServerMu.Unlock()

	log.Info("Bot endpoint listening", "address", listenAddr)
	err := srv.ListenAndServe()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return
	}
	log.Error("Bot endpoint crashed", "error", err, "addr", listenAddr)
	os.Exit(1)
}

func stopAcceptingActivities(ctx context.Context, log *logger_i.Logger) {
	botServerMu.Lock()
	srv := botServer
	botServerMu.Unlock()
	if srv == nil {
		return
	}
	srv.SetKeepAlivesEnabled(false)
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Bot endpoint did not drain", "error", err)
	}
}

// ShutDownHandler waits for a signal and stops inbound traffic. Running turns get
// turnDrainGrace to finish, then are cancelled so they reply and close their records.
// External clients are closed last.
func ShutDownHandler(p ShutdownParams) {
	log := logger_i.NewLogger("Server")
	sig := <-p.GracefulShutdown
	log.Info("Shutdown requested", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		stopAcceptingActivities(ctx, log)

		//queued turns are dropped
		close(p.WorkerStop)
		if !waitTimeout(p.Group, turnDrainGrace) && p.CancelTurns != nil {
			log.Warn("Turns still running, cancelling them", "grace", turnDrainGrace)
			p.CancelTurns()
		}
		p.Group.Wait()
		p.CloseServices()
	}()

	select {
	case <-drained:
		log.Info("Graceful shutdown complete")
		close(p.StopExecution)
	case <-ctx.Done():
		log.Error("Shutdown deadline passed, exiting")
		os.Exit(1)
	}
}

func waitTimeout(wg *sync.WaitGroup, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
