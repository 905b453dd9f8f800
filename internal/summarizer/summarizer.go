package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/metrics"
	"github.com/akolanti/OCRBot/pkg/logger_i"
)

type Config struct {
	Provider  Provider
	MaxTokens int64
	Fallback  string
}

type Service struct {
	provider  Provider
	maxTokens int64
	fallback  string
	logger    *logger_i.Logger
}

func NewService(cfg Config) *Service {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = config.SummaryMaxTokens
	}
	if cfg.Fallback == "" {
		cfg.Fallback = config.SummaryFallbackMessage
	}
	return &Service{
		provider:  cfg.Provider,
		maxTokens: cfg.MaxTokens,
		fallback:  cfg.Fallback,
		logger:    logger_i.NewLogger("Summarizer"),
	}
}

// BuildMessages returns the fixed system instruction and the task for text.
func BuildMessages(text string) []Message {
	return []Message{
		{Role: RoleSystem, Content: config.SystemInstruction},
		{Role: RoleUser, Content: config.TaskInstruction + text},
	}
}

// Summarize never fails: any completion error is logged and replaced by the fallback text.
func (s *Service) Summarize(ctx context.Context, text string) string {
	summary, err := s.TrySummarize(ctx, text)
	if err != nil {
		s.logger.WithTrace(ctx).Error("Translation and summary failed", "error", err)
		return s.fallback
	}
	return summary
}

// TrySummarize is Summarize without the fallback, errors wrap ErrCompletion.
func (s *Service) TrySummarize(ctx context.Context, text string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("summarize", time.Since(start)) }()

	stream, err := s.provider.StreamChat(ctx, BuildMessages(text), s.maxTokens)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletion, err)
	}
	defer stream.Close()

	summary, err := Accumulate(stream)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletion, err)
	}
	s.logger.WithTrace(ctx).Debug("Summary streamed", "chars", len(summary))
	return summary, nil
}

// Accumulate appends every present delta of every choice of every event, in order.
func Accumulate(stream DeltaStream) (string, error) {
	var sb strings.Builder
	for stream.Next() {
		for _, choice := range stream.Current().Choices {
			if choice.Delta != nil {
				sb.WriteString(*choice.Delta)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
