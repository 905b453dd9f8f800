package openaiProvider

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/summarizer"
	"github.com/akolanti/OCRBot/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
)

type Config struct {
	// Azure selects deployment scoped urls and the api-key header.
	Azure          bool
	Endpoint       string
	APIKey         string
	DeploymentName string
	APIVersion     string
	MaxRetries     int
	HTTPClient     *http.Client
}

type provider struct {
	client     openai.Client
	deployment string
	logger     *logger_i.Logger
}

func NewProvider(cfg Config) (summarizer.Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("chat api key is required")
	}
	if cfg.DeploymentName == "" {
		cfg.DeploymentName = config.DefaultDeploymentName
	}

	opts := []option.RequestOption{option.WithMaxRetries(cfg.MaxRetries)}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	if cfg.Azure {
		if cfg.Endpoint == "" {
			return nil, errors.New("azure openai endpoint is required")
		}
		if cfg.APIVersion == "" {
			cfg.APIVersion = config.DefaultAzureAPIVersion
		}
		//the deployment travels as the model name and becomes the url segment
		opts = append(opts,
			azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
			azure.WithAPIKey(cfg.APIKey),
		)
	} else {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
		if cfg.Endpoint != "" {
			opts = append(opts, option.WithBaseURL(cfg.Endpoint))
		}
	}

	return &provider{
		client:     openai.NewClient(opts...),
		deployment: cfg.DeploymentName,
		logger:     logger_i.NewLogger("llm_openai"),
	}, nil
}

func (p *provider) StreamChat(ctx context.Context, messages []summarizer.Message, maxTokens int64) (summarizer.DeltaStream, error) {
	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(p.deployment),
		Messages:  toParams(messages),
		MaxTokens: openai.Int(maxTokens),
	}
	p.logger.WithTrace(ctx).Debug("Opening completion stream", "deployment", p.deployment, "maxTokens", maxTokens)
	return &chunkStream{inner: p.client.Chat.Completions.NewStreaming(ctx, params)}, nil
}

func toParams(messages []summarizer.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case summarizer.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// chunkStream maps openai chunks onto summarizer events.
type chunkStream struct {
	inner   *ssestream.Stream[openai.ChatCompletionChunk]
	current summarizer.Event
}

func (s *chunkStream) Next() bool {
	if !s.inner.Next() {
		return false
	}
	chunk := s.inner.Current()
	ev := summarizer.Event{Choices: make([]summarizer.Choice, 0, len(chunk.Choices))}
	for _, c := range chunk.Choices {
		choice := summarizer.Choice{Index: int(c.Index)}
		if c.Delta.Content != "" {
			choice.Delta = summarizer.Text(c.Delta.Content)
		}
		ev.Choices = append(ev.Choices, choice)
	}
	s.current = ev
	return true
}

func (s *chunkStream) Current() summarizer.Event { return s.current }

func (s *chunkStream) Err() error { return s.inner.Err() }

func (s *chunkStream) Close() error { return s.inner.Close() }
