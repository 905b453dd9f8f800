package gemini

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"strings"

	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/summarizer"
	"github.com/akolanti/OCRBot/pkg/logger_i"
	"google.golang.org/genai"
)

type Config struct {
	APIKey     string
	ModelName  string
	HTTPClient *http.Client
}

type llmClient struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

func NewProvider(ctx context.Context, cfg Config) (summarizer.Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if cfg.ModelName == "" {
		cfg.ModelName = config.GeminiModelName
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, err
	}
	l := logger_i.NewLogger("llm_gemini")
	l.Info("Gemini client created", "model", cfg.ModelName)
	return &llmClient{client: c, modelName: cfg.ModelName, logger: l}, nil
}

func (c *llmClient) StreamChat(ctx context.Context, messages []summarizer.Message, maxTokens int64) (summarizer.DeltaStream, error) {
	system, contents := splitMessages(messages)
	contentConfig := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}
	if system != "" {
		contentConfig.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	c.logger.WithTrace(ctx).Debug("Opening completion stream", "model", c.modelName, "maxTokens", maxTokens)

	responses := c.client.Models.GenerateContentStream(ctx, c.modelName, contents, contentConfig)
	return summarizer.NewSeqStream(toEvents(responses)), nil
}

// gemini takes the system prompt as config, everything else becomes user content
func splitMessages(messages []summarizer.Message) (string, []*genai.Content) {
	var system []string
	var contents []*genai.Content
	for _, m := range messages {
		if m.Role == summarizer.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
	}
	return strings.Join(system, "\n"), contents
}

func toEvents(responses iter.Seq2[*genai.GenerateContentResponse, error]) iter.Seq2[summarizer.Event, error] {
	return func(yield func(summarizer.Event, error) bool) {
		for resp, err := range responses {
			if err != nil {
				yield(summarizer.Event{}, err)
				return
			}
			if !yield(toEvent(resp), nil) {
				return
			}
		}
	}
}

func toEvent(resp *genai.GenerateContentResponse) summarizer.Event {
	var ev summarizer.Event
	if resp == nil {
		return ev
	}
	for i, cand := range resp.Candidates {
		choice := summarizer.Choice{Index: i}
		if cand != nil && cand.Content != nil {
			var sb strings.Builder
			present := false
			for _, part := range cand.Content.Parts {
				if part == nil || part.Thought || part.Text == "" {
					continue
				}
				sb.WriteString(part.Text)
				present = true
			}
			if present {
				choice.Delta = summarizer.Text(sb.String())
			}
		}
		ev.Choices = append(ev.Choices, choice)
	}
	return ev
}
