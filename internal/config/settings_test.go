package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envKeys {
		t.Setenv(env, "")
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, "VISION_KEY=vk\nVISION_ENDPOINT=https://vision.example/\nEndPoint=https://chat.example/\nApiKey=ck\nMicrosoftAppId=app\n")

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.VisionKey != "vk" || s.VisionEndpoint != "https://vision.example" {
		t.Errorf("vision settings %q %q", s.VisionKey, s.VisionEndpoint)
	}
	if s.ChatEndpoint != "https://chat.example" || s.ChatAPIKey != "ck" || s.MicrosoftAppID != "app" {
		t.Errorf("unexpected settings %+v", s)
	}
	if s.DeploymentName != DefaultDeploymentName || s.Port != DefaultPort || s.ChatProvider != ProviderAzureOpenAI {
		t.Errorf("defaults not applied: %+v", s)
	}
	if s.ListenAddr() != ":"+DefaultPort {
		t.Errorf("listen addr %s", s.ListenAddr())
	}
}

func TestLoad_EnvironmentWins(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, "VISION_KEY=from-file\nVISION_ENDPOINT=https://vision.example\nEndPoint=https://chat.example\nApiKey=ck\n")
	t.Setenv("VISION_KEY", "from-env")
	t.Setenv("PORT", "8080")
	t.Setenv("deploymentName", "gpt-4o")

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.VisionKey != "from-env" || s.Port != "8080" || s.DeploymentName != "gpt-4o" {
		t.Errorf("environment did not override the file: %+v", s)
	}
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	clearEnv(t)
	t.Setenv("VISION_KEY", "vk")
	t.Setenv("VISION_ENDPOINT", "https://vision.example")
	t.Setenv("CHAT_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "gk")

	s, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if s.ChatProvider != ProviderGemini || s.GeminiModel != GeminiModelName {
		t.Errorf("unexpected settings %+v", s)
	}
}

func TestValidate(t *testing.T) {
	base := Settings{VisionKey: "vk", VisionEndpoint: "https://v", ChatProvider: ProviderAzureOpenAI, ChatEndpoint: "https://c", ChatAPIKey: "ck"}

	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr bool
		missing bool
	}{
		{"Complete", func(s *Settings) {}, false, false},
		{"No_Vision_Key", func(s *Settings) { s.VisionKey = "" }, true, true},
		{"Azure_Without_Endpoint", func(s *Settings) { s.ChatEndpoint = "" }, true, true},
		{"OpenAI_Without_Endpoint", func(s *Settings) { s.ChatProvider = ProviderOpenAI; s.ChatEndpoint = "" }, false, false},
		{"Gemini_Without_Key", func(s *Settings) { s.ChatProvider = ProviderGemini }, true, true},
		{"Unknown_Provider", func(s *Settings) { s.ChatProvider = "bard" }, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v; wantErr %v", err, tt.wantErr)
			}
			if errors.Is(err, ErrMissingSetting) != tt.missing {
				t.Errorf("ErrMissingSetting = %v; want %v", errors.Is(err, ErrMissingSetting), tt.missing)
			}
		})
	}
}

func TestListenAddr(t *testing.T) {
	if got := (Settings{Port: "127.0.0.1:9000"}).ListenAddr(); got != "127.0.0.1:9000" {
		t.Errorf("got %s", got)
	}
}
