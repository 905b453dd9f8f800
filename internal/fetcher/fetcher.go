package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/customHttpClient"
	"github.com/akolanti/OCRBot/internal/metrics"
	"github.com/akolanti/OCRBot/pkg/logger_i"
)

var ErrTransport = errors.New("attachment download failed")

// TokenSource supplies the bearer token some channels require on attachment urls.
// An empty token means the url is fetched anonymously.
type TokenSource interface {
	TokenFor(ctx context.Context, url string) (string, error)
}

type Config struct {
	Client  *http.Client
	MaxSize int64
	Tokens  TokenSource
}

type Fetcher struct {
	client  *http.Client
	maxSize int64
	tokens  TokenSource
	logger  *logger_i.Logger
}

func New(cfg Config) *Fetcher {
	if cfg.Client == nil {
		cfg.Client = customHttpClient.NewClient(config.FetchTimeout)
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = config.MaxAttachmentSize
	}
	return &Fetcher{
		client:  cfg.Client,
		maxSize: cfg.MaxSize,
		tokens:  cfg.Tokens,
		logger:  logger_i.NewLogger("Fetcher"),
	}
}

// Fetch downloads url in one GET. It never retries; every failure wraps ErrTransport.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	log := f.logger.WithTrace(ctx)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("fetch", time.Since(start)) }()

	data, err := f.get(ctx, url)
	if err != nil {
		log.Error("Attachment download failed", "url", url, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	log.Debug("Attachment downloaded", "bytes", len(data))
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/octet-stream, image/*, */*")
	if f.tokens != nil {
		token, err := f.tokens.TokenFor(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("attachment token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxSize {
		return nil, fmt.Errorf("attachment larger than %d bytes", f.maxSize)
	}
	if len(data) == 0 {
		return nil, errors.New("empty attachment")
	}
	return data, nil
}
