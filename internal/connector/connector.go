package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/customHttpClient"
	"github.com/akolanti/OCRBot/internal/domain/botModel"
	"github.com/akolanti/OCRBot/internal/metrics"
	"github.com/akolanti/OCRBot/pkg/logger_i"
	"github.com/google/uuid"
)

var ErrSend = errors.New("send activity failed")

type Tokens interface {
	Token(ctx context.Context) (string, error)
}

type Config struct {
	HTTPClient *http.Client
	Tokens     Tokens
	// TrustedServiceURL decides which serviceUrls get the bot token, IsConnectorURL by default.
	TrustedServiceURL func(serviceURL string) bool
}

// Client posts outbound activities to the channel's connector service.
type Client struct {
	http    *http.Client
	tokens  Tokens
	trusted func(string) bool
	logger  *logger_i.Logger
}

type resourceResponse struct {
	Id string `json:"id"`
}

func NewClient(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = customHttpClient.NewClient(config.ConnectorRequestTimeout)
	}
	if cfg.TrustedServiceURL == nil {
		cfg.TrustedServiceURL = IsConnectorURL
	}
	return &Client{
		http:    cfg.HTTPClient,
		tokens:  cfg.Tokens,
		trusted: cfg.TrustedServiceURL,
		logger:  logger_i.NewLogger("Connector"),
	}
}

// SendActivity posts a to its conversation, as a reply when ReplyToId is set.
// It returns the id the channel assigned to the new activity.
func (c *Client) SendActivity(ctx context.Context, a botModel.Activity) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("reply", time.Since(start)) }()
	log := c.logger.WithTrace(ctx)

	endpoint, err := activitiesURL(a)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSend, err)
	}

	body, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSend, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSend, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-ms-conversation-id", a.Conversation.Id)
	switch {
	case c.tokens == nil:
	case !c.trusted(a.ServiceUrl):
		log.Warn("serviceUrl is not a connector host, sending without token", "serviceUrl", a.ServiceUrl)
	default:
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrSend, err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error("Connector unreachable", "error", err)
		return "", fmt.Errorf("%w: %v", ErrSend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("Connector rejected activity", "status", resp.StatusCode, "body", string(msg))
		return "", fmt.Errorf("%w: status %d", ErrSend, resp.StatusCode)
	}

	var rr resourceResponse
	//some channels answer with an empty body
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("Unreadable connector response", "error", err)
	}
	log.Debug("Activity sent", "type", a.Type, "activityId", rr.Id)
	return rr.Id, nil
}

// SendText replies to inbound with a plain text message.
func (c *Client) SendText(ctx context.Context, inbound botModel.Activity, text string) error {
	_, err := c.SendActivity(ctx, inbound.Reply(text))
	return err
}

// SendTrace emits a trace activity, only the emulator renders these.
func (c *Client) SendTrace(ctx context.Context, inbound botModel.Activity, value any) error {
	trace := inbound.Reply("")
	trace.Type = botModel.ActivityTypeTrace
	trace.TextFormat = ""
	trace.Name = config.TraceActivityName
	trace.Label = config.TraceActivityLabel
	trace.ValueType = config.TraceActivityValueType
	trace.Value = value
	trace.Id = uuid.NewString()
	_, err := c.SendActivity(ctx, trace)
	return err
}

func activitiesURL(a botModel.Activity) (string, error) {
	if a.ServiceUrl == "" {
		return "", errors.New("activity has no serviceUrl")
	}
	if a.Conversation.Id == "" {
		return "", errors.New("activity has no conversation id")
	}
	base := strings.TrimRight(a.ServiceUrl, "/")
	u := base + "/v3/conversations/" + url.PathEscape(a.Conversation.Id) + "/activities"
	if a.ReplyToId != "" {
		u += "/" + url.PathEscape(a.ReplyToId)
	}
	return u, nil
}
