package config

import (
	"log/slog"
	"time"
)

const (
	LOG_LEVEL_PROD              = slog.LevelInfo
	TRACE_ID_KEY                = "traceId"
	RATE_LIMIT_PER_SECOND       = 5
	BURST_RATE_LIMIT_PER_SECOND = 10

	RequestsPerNewWorkerCount int64 = 5
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 60 * time.Second
	//running turns get this long before they are cancelled, the rest of the
	//shutdown budget covers their final replies and record updates
	TurnDrainGrace = 15 * time.Second

	//bot framework default port
	DefaultPort = "3978"

	//turn jobs buffer limit
	BufferLimit = 100

	//a whole turn: download + ocr + completion + replies
	TurnTimeout = 3 * time.Minute

	//fetcher
	FetchTimeout      = 30 * time.Second
	MaxAttachmentSize = 20 << 20 //20mb, the Read API limit

	//vision read api
	VisionAPIPath       = "/vision/v3.2/read"
	OCRPollInterval     = 1 * time.Second
	OCRPollTimeout      = 2 * time.Minute
	OCRMaxPollAttempts  = 120
	VisionSubmitTimeout = 30 * time.Second

	//chat completion
	DefaultDeploymentName  = "gpt4"
	DefaultAzureAPIVersion = "2024-06-01"
	SummaryMaxTokens       = 256
	GeminiModelName        = "gemini-2.5-flash-lite-preview-09-2025"
	ProviderAzureOpenAI    = "azure"
	ProviderOpenAI         = "openai"
	ProviderGemini         = "gemini"

	SystemInstruction = "あなたは翻訳と要約が得意なアシスタントです。"
	TaskInstruction   = "以下の文章を翻訳した文章、その内容を要約した文章をそれぞれ出力してください:\n\n"

	//user facing replies
	OCRResultPrefix        = "OCR結果:\n"
	SummaryPrefix          = "\n"
	DownloadFailedMessage  = "画像のダウンロードに失敗しました。"
	NotRecognizedMessage   = "画像からテキストを認識できませんでした。"
	OCRProcessingError     = "画像の処理中にエラーが発生しました。"
	SummaryFallbackMessage = "翻訳または要約に失敗しました。"
	WelcomeMessage         = "Hello and welcome!"
	TurnErrorMessage       = "The bot encountered an error or bug."
	TurnErrorFixMessage    = "To continue to run this bot, please fix the bot source code."

	//bot framework connector
	BotFrameworkTokenURL  = "https://login.microsoftonline.com/botframework.com/oauth2/v2.0/token"
	BotFrameworkTenantURL = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
	BotFrameworkScope     = "https://api.botframework.com/.default"
	//inbound channel tokens
	BotFrameworkIssuer      = "https://api.botframework.com"
	BotFrameworkKeysURL     = "https://login.botframework.com/v1/.well-known/keys"
	ChannelTokenLeeway      = 5 * time.Minute
	SigningKeysRefresh      = 24 * time.Hour
	SigningKeysMissRefetch  = 1 * time.Minute
	MaxSigningKeysBytes     = 1 << 20
	ConnectorRequestTimeout = 15 * time.Second
	TraceActivityValueType  = "https://www.botframework.com/schemas/error"
	TraceActivityName       = "OnTurnError Trace"
	TraceActivityLabel      = "TurnError"
	MaxInboundActivityBytes = 1 << 20
	ActivityDedupeTTL       = 10 * time.Minute
	ActivityDedupeKeyPrefix = "activity:"
	TurnStoreKeyPrefix      = "turn:"
	SingleTenantAppType     = "SingleTenant"

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost        = "127.0.0.1"
	redisPort        = "6379"
	DefaultRedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisTurnStore     = 0
	RedisActivityStore = 1

	//redis timeouts
	RedisTurnStoreTTL = 24 * time.Hour
)
