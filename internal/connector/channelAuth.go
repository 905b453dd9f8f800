package connector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/OCRBot/internal/config"
	"github.com/akolanti/OCRBot/internal/customHttpClient"
	"github.com/akolanti/OCRBot/pkg/logger_i"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

var ErrUnauthorized = errors.New("channel token rejected")

type ChannelAuthConfig struct {
	AppID string
	// Issuer and KeysURL default to the public cloud Bot Framework values.
	Issuer     string
	KeysURL    string
	HTTPClient *http.Client
}

// ChannelValidator checks the JWT the Bot Framework channel service signs every inbound activity with.
type ChannelValidator struct {
	appID  string
	issuer string
	keys   *signingKeys
	logger *logger_i.Logger
}

type channelClaims struct {
	ServiceURL string `json:"serviceurl"`
}

func NewChannelValidator(cfg ChannelAuthConfig) *ChannelValidator {
	if cfg.Issuer == "" {
		cfg.Issuer = config.BotFrameworkIssuer
	}
	if cfg.KeysURL == "" {
		cfg.KeysURL = config.BotFrameworkKeysURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = customHttpClient.NewClient(config.ConnectorRequestTimeout)
	}
	l := logger_i.NewLogger("Channel Auth")
	return &ChannelValidator{
		appID:  cfg.AppID,
		issuer: cfg.Issuer,
		keys:   &signingKeys{url: cfg.KeysURL, http: cfg.HTTPClient, logger: l},
		logger: l,
	}
}

// Authenticate accepts authHeader when it carries a token signed by a current channel key,
// issued to this bot, for serviceURL and, when the key is endorsed per channel, for channelID.
func (v *ChannelValidator) Authenticate(ctx context.Context, authHeader, serviceURL, channelID string) error {
	raw, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || raw == "" {
		return fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}

	tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.RS256})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if len(tok.Headers) == 0 || tok.Headers[0].KeyID == "" {
		return fmt.Errorf("%w: token has no key id", ErrUnauthorized)
	}

	key, endorsements, err := v.keys.lookup(ctx, tok.Headers[0].KeyID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if len(endorsements) > 0 && !slices.Contains(endorsements, channelID) {
		return fmt.Errorf("%w: key not endorsed for channel %q", ErrUnauthorized, channelID)
	}

	var std jwt.Claims
	var extra channelClaims
	if err := tok.Claims(key.Key, &std, &extra); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if std.Expiry == nil {
		return fmt.Errorf("%w: token has no expiry", ErrUnauthorized)
	}
	expected := jwt.Expected{
		Issuer:      v.issuer,
		AnyAudience: jwt.Audience{v.appID},
		Time:        time.Now(),
	}
	if err := std.ValidateWithLeeway(expected, config.ChannelTokenLeeway); err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !sameServiceURL(extra.ServiceURL, serviceURL) {
		return fmt.Errorf("%w: token serviceurl %q does not match activity", ErrUnauthorized, extra.ServiceURL)
	}
	return nil
}

func sameServiceURL(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(strings.TrimRight(a, "/"), strings.TrimRight(b, "/"))
}

// signingKeys caches the channel's JWKS. It refreshes once a day, and early when a token
// names a key it has not seen, at most once per SigningKeysMissRefetch.
type signingKeys struct {
	url    string
	http   *http.Client
	logger *logger_i.Logger

	mu           sync.Mutex
	set          jose.JSONWebKeySet
	endorsements map[string][]string
	fetched      time.Time
	lastAttempt  time.Time
}

// the bot framework key set carries per key channel endorsements next to the standard fields
type endorsedKeySet struct {
	Keys []struct {
		KeyID        string   `json:"kid"`
		Endorsements []string `json:"endorsements"`
	} `json:"keys"`
}

func (k *signingKeys) lookup(ctx context.Context, kid string) (jose.JSONWebKey, []string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := time.Now()
	missing := len(k.set.Key(kid)) == 0
	if len(k.set.Keys) == 0 || now.Sub(k.fetched) > config.SigningKeysRefresh ||
		(missing && now.Sub(k.lastAttempt) > config.SigningKeysMissRefetch) {
		if err := k.refresh(ctx); err != nil {
			k.logger.WithTrace(ctx).Warn("Signing keys refresh failed", "url", k.url, "error", err)
		}
	}

	keys := k.set.Key(kid)
	if len(keys) == 0 {
		return jose.JSONWebKey{}, nil, fmt.Errorf("unknown signing key %q", kid)
	}
	return keys[0], k.endorsements[kid], nil
}

func (k *signingKeys) refresh(ctx context.Context) error {
	k.lastAttempt = time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
	if err != nil {
		return err
	}
	resp, err := k.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxSigningKeysBytes))
	if err != nil {
		return err
	}

	var set jose.JSONWebKeySet
	if err := json.Unmarshal(body, &set); err != nil {
		return fmt.Errorf("bad key set: %w", err)
	}
	var endorsed endorsedKeySet
	if err := json.Unmarshal(body, &endorsed); err != nil {
		return fmt.Errorf("bad key set: %w", err)
	}

	k.set = set
	k.endorsements = make(map[string][]string, len(endorsed.Keys))
	for _, key := range endorsed.Keys {
		k.endorsements[key.KeyID] = key.Endorsements
	}
	k.fetched = k.lastAttempt
	k.logger.Info("Signing keys loaded", "count", len(set.Keys))
	return nil
}
