package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/customHttpClient"
	"github.com/akolanti/OCRBot/internal/metrics"
)

// Reader is the asynchronous Read API: submit an image, then ask for the result.
type Reader interface {
	SubmitRead(ctx context.Context, image []byte) (string, error)
	GetReadResult(ctx context.Context, id OperationID) (ReadOperationResult, error)
}

type ClientConfig struct {
	Endpoint   string
	Key        string
	HTTPClient *http.Client
}

type client struct {
	baseURL string
	key     string
	http    *http.Client
}

// NewClient builds a Reader for Azure Computer Vision Read v3.2.
func NewClient(cfg ClientConfig) (Reader, error) {
	if cfg.Endpoint == "" || cfg.Key == "" {
		return nil, errors.New("vision endpoint and key are required")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = customHttpClient.NewClient(config.VisionSubmitTimeout)
	}
	return &client{
		baseURL: strings.TrimRight(cfg.Endpoint, "/") + config.VisionAPIPath,
		key:     cfg.Key,
		http:    cfg.HTTPClient,
	}, nil
}

func (c *client) SubmitRead(ctx context.Context, image []byte) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("ocr_submit", time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(image))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("%w: submit read: %s", ErrTransport, describe(resp))
	}
	location := resp.Header.Get("Operation-Location")
	if location == "" {
		return "", fmt.Errorf("%w: submit read: no Operation-Location header", ErrTransport)
	}
	return location, nil
}

func (c *client) GetReadResult(ctx context.Context, id OperationID) (ReadOperationResult, error) {
	var out ReadOperationResult
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/analyzeResults/"+string(id), nil)
	if err != nil {
		return out, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.http.Do(req)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("%w: get read result: %s", ErrTransport, describe(resp))
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("%w: decode read result: %v", ErrTransport, err)
	}
	return out, nil
}

// OperationIDFromLocation keeps the trailing path segment of an Operation-Location url.
func OperationIDFromLocation(location string) OperationID {
	location = strings.TrimRight(location, "/")
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	return OperationID(location[strings.LastIndex(location, "/")+1:])
}

func describe(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e apiError
	if json.Unmarshal(body, &e) == nil && e.Error.Code != "" {
		return fmt.Sprintf("status %d: %s: %s", resp.StatusCode, e.Error.Code, e.Error.Message)
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
