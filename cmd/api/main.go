// @title           OCR Translate Bot
// @version         1.0
// @description     Bot Framework messaging endpoint that reads text from image attachments and replies with a translation and summary.

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3978
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/OCRBot/internal/bot"
	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/connector"
	"github.com/akolanti/OCRBot/internal/customHttpClient"
	"github.com/akolanti/OCRBot/internal/data/redisStore"
	"github.com/akolanti/OCRBot/internal/data/store"
	"github.com/akolanti/OCRBot/internal/document"
	"github.com/akolanti/OCRBot/internal/domain/turnModel"
	"github.com/akolanti/OCRBot/internal/fetcher"
	"github.com/akolanti/OCRBot/internal/handlers"
	"github.com/akolanti/OCRBot/internal/middleware"
	"github.com/akolanti/OCRBot/internal/pipeline"
	"github.com/akolanti/OCRBot/internal/server"
	"github.com/akolanti/OCRBot/internal/summarizer"
	"github.com/akolanti/OCRBot/internal/summarizer/gemini"
	"github.com/akolanti/OCRBot/internal/summarizer/openaiProvider"
	"github.com/akolanti/OCRBot/internal/turn"
	"github.com/akolanti/OCRBot/internal/vision"
	"github.com/akolanti/OCRBot/internal/worker"
	"github.com/akolanti/OCRBot/pkg/logger_i"
)

var (
	listenAddr        string
	envFile           string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address, overrides PORT")
	flag.StringVar(&envFile, "env-file", ".env", "optional .env file")
	flag.Parse()

	settings, settingsErr := config.Load(envFile)
	logger_i.Init(settings.IsProd)
	var logger = logger_i.NewLogger("main")
	if settingsErr != nil {
		logger.Error("Invalid configuration", "error", settingsErr)
		os.Exit(1)
	}
	if listenAddr == "" {
		listenAddr = settings.ListenAddr()
	}

	//init buffered turn channel
	turnChannel := make(chan turnModel.Turn, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()
	turnContext, cancelTurns := context.WithCancel(context.Background())
	defer cancelTurns()

	serviceConfig := turn.ServiceConfig{
		TurnChannel:       turnChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	redisOpts := redisStore.Options{Addr: settings.RedisAddr, Password: settings.RedisPassword}
	turnStore := store.GetRedisTurnStore(serviceContext, redisOpts)
	activityStore := store.GetRedisActivityStore(serviceContext, redisOpts)
	if turnStore == nil || activityStore == nil {
		logger.Error("Redis stores are offline, falling back to memory")
		serviceConfig.TurnStore = store.InitInMemoryTurnStore(config.RedisTurnStoreTTL)
		serviceConfig.ActivityStore = store.InitInMemoryActivityStore(config.ActivityDedupeTTL)
	} else {
		serviceConfig.TurnStore = turnStore
		serviceConfig.ActivityStore = activityStore
	}
	service := turn.InitTurnService(serviceConfig)

	//external services
	provider, err := newChatProvider(serviceContext, settings)
	if err != nil {
		logger.Error("Chat provider failed to initialize", "provider", settings.ChatProvider, "error", err)
		os.Exit(1)
	}
	reader, err := vision.NewClient(vision.ClientConfig{
		Endpoint:   settings.VisionEndpoint,
		Key:        settings.VisionKey,
		HTTPClient: customHttpClient.NewClient(config.VisionSubmitTimeout),
	})
	if err != nil {
		logger.Error("Vision client failed to initialize", "error", err)
		os.Exit(1)
	}
	tokens := connector.NewTokenSource(connector.Credentials{
		AppID:      settings.MicrosoftAppID,
		Password:   settings.MicrosoftAppPassword,
		AppType:    settings.MicrosoftAppType,
		TenantID:   settings.MicrosoftAppTenantID,
		HTTPClient: customHttpClient.NewClient(config.ConnectorRequestTimeout),
	})
	if settings.MicrosoftAppID == "" {
		logger.Warn("No MicrosoftAppId configured, inbound activities are not authenticated and replies carry no token (emulator mode)")
	} else {
		handlers.SetChannelAuthenticator(connector.NewChannelValidator(connector.ChannelAuthConfig{
			AppID:      settings.MicrosoftAppID,
			HTTPClient: customHttpClient.NewClient(config.ConnectorRequestTimeout),
		}))
	}

	imagePipeline := pipeline.New(pipeline.Config{
		Fetcher:    fetcher.New(fetcher.Config{Tokens: connector.AttachmentTokens{Tokens: tokens}}),
		Recognizer: vision.NewPoller(vision.PollerConfig{Reader: reader}),
		Documents:  document.NewExtractor(),
		Summarizer: summarizer.NewService(summarizer.Config{Provider: provider}),
	})
	botHandler := bot.NewHandler(connector.NewClient(connector.Config{Tokens: tokens}), imagePipeline)

	middleware.Init(settings.AuthToken, settings.AuthBypass)
	handlers.InitTurnHandler(service)

	//init worker pool
	worker.InitServices(service, botHandler)
	worker.InitWorkerPool(turnContext, stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CancelTurns:      cancelTurns,
		CloseServices:    closeExternalServices,
	}
	go server.CreateServer(listenAddr)
	go server.ShutDownHandler(shutdownParams)

	<-stopExecution
	logger.Info("Server stopped")
}

func newChatProvider(ctx context.Context, settings config.Settings) (summarizer.Provider, error) {
	httpClient := customHttpClient.NewClient(0)
	switch settings.ChatProvider {
	case config.ProviderGemini:
		return gemini.NewProvider(ctx, gemini.Config{
			APIKey:     settings.GeminiAPIKey,
			ModelName:  settings.GeminiModel,
			HTTPClient: httpClient,
		})
	case config.ProviderAzureOpenAI, config.ProviderOpenAI:
		return openaiProvider.NewProvider(openaiProvider.Config{
			Azure:          settings.ChatProvider == config.ProviderAzureOpenAI,
			Endpoint:       settings.ChatEndpoint,
			APIKey:         settings.ChatAPIKey,
			DeploymentName: settings.DeploymentName,
			APIVersion:     settings.APIVersion,
			HTTPClient:     httpClient,
		})
	default:
		return nil, fmt.Errorf("unknown chat provider %q", settings.ChatProvider)
	}
}
