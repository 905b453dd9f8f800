package connector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/akolanti/OCRBot/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

type Credentials struct {
	AppID    string
	Password string
	AppType  string
	TenantID string

	// TokenURL overrides the login endpoint, tests point it at a fake.
	TokenURL   string
	HTTPClient *http.Client
}

// TokenSource hands out bot framework access tokens, cached until they expire.
// A source built without an app id returns an empty token, which is what the emulator expects.
type TokenSource struct {
	source oauth2.TokenSource
}

func NewTokenSource(creds Credentials) *TokenSource {
	if creds.AppID == "" {
		return &TokenSource{}
	}

	tokenURL := creds.TokenURL
	if tokenURL == "" {
		tokenURL = config.BotFrameworkTokenURL
		if strings.EqualFold(creds.AppType, config.SingleTenantAppType) && creds.TenantID != "" {
			tokenURL = fmt.Sprintf(config.BotFrameworkTenantURL, creds.TenantID)
		}
	}

	cc := &clientcredentials.Config{
		ClientID:     creds.AppID,
		ClientSecret: creds.Password,
		TokenURL:     tokenURL,
		Scopes:       []string{config.BotFrameworkScope},
	}

	ctx := context.Background()
	if creds.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, creds.HTTPClient)
	}
	return &TokenSource{source: cc.TokenSource(ctx)}
}

func (t *TokenSource) Token(_ context.Context) (string, error) {
	if t == nil || t.source == nil {
		return "", nil
	}
	tok, err := t.source.Token()
	if err != nil {
		return "", fmt.Errorf("bot framework token: %w", err)
	}
	return tok.AccessToken, nil
}

// the bot token is only ever sent to these hosts
var connectorHosts = map[string]bool{
	"smba.trafficmanager.net":            true,
	"smba.infra.gcc.teams.microsoft.com": true,
	"smba.infra.gov.teams.microsoft.us":  true,
	"smba.infra.dod.teams.microsoft.us":  true,
}

var connectorHostSuffixes = []string{
	".botframework.com",
	".botframework.azure.us",
}

// IsConnectorURL reports whether rawURL is an https url on a Bot Framework connector host.
func IsConnectorURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if connectorHosts[host] {
		return true
	}
	for _, suffix := range connectorHostSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// AttachmentTokens adapts a TokenSource for attachment downloads.
type AttachmentTokens struct {
	Tokens *TokenSource
}

func (a AttachmentTokens) TokenFor(ctx context.Context, rawURL string) (string, error) {
	if !IsConnectorURL(rawURL) {
		return "", nil
	}
	return a.Tokens.Token(ctx)
}
