package customHttpClient

import (
	"net/http"
	"time"

	"github.com/akolanti/OCRBot/internal/config"
)

// one pooled transport for the fetcher, the vision client and the connector,
// they all talk to a handful of hosts
var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: customTransport,
		Timeout:   timeout,
	}
}

func Transport() http.RoundTripper {
	return customTransport
}
