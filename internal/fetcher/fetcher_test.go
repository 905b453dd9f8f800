package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticToken string

func (s staticToken) TokenFor(ctx context.Context, url string) (string, error) { return string(s), nil }

func TestFetch(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("IMAGE"))
		case "/empty":
			w.WriteHeader(http.StatusOK)
		case "/big":
			w.Write(make([]byte, 64))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "Success", path: "/ok", want: "IMAGE"},
		{name: "Not_Found", path: "/missing", wantErr: true},
		{name: "Empty_Body", path: "/empty", wantErr: true},
		{name: "Too_Large", path: "/big", wantErr: true},
	}

	f := New(Config{Client: srv.Client(), MaxSize: 32, Tokens: staticToken("bot-token")})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := f.Fetch(context.Background(), srv.URL+tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrTransport) {
					t.Fatalf("expected ErrTransport, got %v", err)
				}
				if data != nil {
					t.Errorf("expected no bytes on failure, got %d", len(data))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("got %q, want %q", data, tt.want)
			}
			if gotAuth != "Bearer bot-token" {
				t.Errorf("authorization header got %q", gotAuth)
			}
		})
	}
}

func TestFetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := New(Config{})
	if _, err := f.Fetch(context.Background(), url+"/img.png"); !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}
