package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akolanti/OCRBot/pkg/logger_i"
	"golang.org/x/time/rate"
)

func TestIsValidBearerToken(t *testing.T) {
	log := logger_i.NewLogger("test")
	tests := []struct {
		name     string
		token    string
		bypass   bool
		header   string
		expected bool
	}{
		{"Valid", "secret", false, "Bearer secret", true},
		{"Wrong_Token", "secret", false, "Bearer nope", false},
		{"Missing_Header", "secret", false, "", false},
		{"Not_Bearer", "secret", false, "Basic secret", false},
		{"Bypass", "secret", true, "", true},
		{"No_Token_Configured", "", false, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Init(tt.token, tt.bypass)
			defer Init("", false)
			if got := IsValidBearerToken(tt.header, log); got != tt.expected {
				t.Errorf("IsValidBearerToken(%q) = %v; want %v", tt.header, got, tt.expected)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	Init("secret", false)
	defer Init("", false)

	var gotTrace string
	next := func(w http.ResponseWriter, r *http.Request) {
		gotTrace = logger_i.TraceID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}

	t.Run("Unauthorized", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Wrap(next)(rec, httptest.NewRequest(http.MethodGet, "/status/x", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("Authorized_Keeps_Trace", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/status/x", nil)
		req.Header.Set("Authorization", "Bearer secret")
		req.Header.Set("X-Trace-Id", "trace-abc")
		rec := httptest.NewRecorder()
		Wrap(next)(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d", rec.Code)
		}
		if gotTrace != "trace-abc" || rec.Header().Get("X-Trace-Id") != "trace-abc" {
			t.Errorf("trace not propagated: ctx %q, header %q", gotTrace, rec.Header().Get("X-Trace-Id"))
		}
	})

	t.Run("Public_Generates_Trace", func(t *testing.T) {
		gotTrace = ""
		rec := httptest.NewRecorder()
		WrapPublic(next)(rec, httptest.NewRequest(http.MethodPost, "/api/messages", nil))
		if rec.Code != http.StatusNoContent || gotTrace == "" {
			t.Errorf("status %d, trace %q", rec.Code, gotTrace)
		}
	})
}

func TestRateLimiter(t *testing.T) {
	old := limiterInstance
	limiterInstance = NewIPRateLimiter(rate.Limit(1), 2)
	defer func() { limiterInstance = old }()

	next := func(w http.ResponseWriter, r *http.Request) {}
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		WrapPublic(next)(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status codes %v", codes)
	}

	other := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
	other.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	WrapPublic(next)(rec, other)
	if rec.Code != http.StatusOK {
		t.Errorf("limits must be per ip, got %d", rec.Code)
	}
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 1)
	l.GetLimiter("10.0.0.1")
	l.ips["10.0.0.1"].lastSeen = time.Now().Add(-2 * limiterIdleTTL)
	l.lastSweep = time.Now().Add(-2 * limiterIdleTTL)

	l.GetLimiter("10.0.0.2")
	if _, ok := l.ips["10.0.0.1"]; ok {
		t.Error("idle limiter was not swept")
	}
	if _, ok := l.ips["10.0.0.2"]; !ok {
		t.Error("active limiter missing")
	}
}
