package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds the values that come from the environment (or a .env file).
// Constants above are tunables; these are credentials and endpoints.
type Settings struct {
	IsProd bool

	Port string

	VisionKey      string
	VisionEndpoint string

	ChatProvider   string
	ChatEndpoint   string
	ChatAPIKey     string
	DeploymentName string
	APIVersion     string

	GeminiAPIKey string
	GeminiModel  string

	MicrosoftAppID       string
	MicrosoftAppPassword string
	MicrosoftAppType     string
	MicrosoftAppTenantID string

	AuthToken  string
	AuthBypass bool

	RedisAddr     string
	RedisPassword string
}

var ErrMissingSetting = errors.New("missing required setting")

// env names are the ones the bot has always used, so existing .env files keep working
var envKeys = map[string]string{
	"port":            "PORT",
	"vision_key":      "VISION_KEY",
	"vision_endpoint": "VISION_ENDPOINT",
	"chat_provider":   "CHAT_PROVIDER",
	"chat_endpoint":   "EndPoint",
	"chat_api_key":    "ApiKey",
	"deployment_name": "deploymentName",
	"api_version":     "OPENAI_API_VERSION",
	"gemini_api_key":  "GEMINI_API_KEY",
	"gemini_model":    "GEMINI_MODEL",
	"app_id":          "MicrosoftAppId",
	"app_password":    "MicrosoftAppPassword",
	"app_type":        "MicrosoftAppType",
	"app_tenant_id":   "MicrosoftAppTenantId",
	"auth_token":      "BOT_AUTH_TOKEN",
	"is_prod":         "IS_PROD",
	"redis_addr":      "REDIS_ADDR",
	"redis_password":  "REDIS_PASSWORD",
	"auth_bypass":     "AUTH_BYPASS",
}

// Load reads the environment, overlaid on an optional .env file at envFile.
// A missing .env file is not an error.
func Load(envFile string) (Settings, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	if _, err := os.Stat(envFile); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return Settings{}, err
		}
	}
	// .env files keep the original key casing, viper lowercases them
	for key, env := range envKeys {
		if !v.IsSet(key) && v.IsSet(strings.ToLower(env)) {
			v.Set(key, v.Get(strings.ToLower(env)))
		}
	}

	v.SetDefault("port", DefaultPort)
	v.SetDefault("chat_provider", ProviderAzureOpenAI)
	v.SetDefault("deployment_name", DefaultDeploymentName)
	v.SetDefault("api_version", DefaultAzureAPIVersion)
	v.SetDefault("gemini_model", GeminiModelName)
	v.SetDefault("redis_addr", DefaultRedisAddr)

	s := Settings{
		IsProd:               v.GetBool("is_prod"),
		Port:                 v.GetString("port"),
		VisionKey:            v.GetString("vision_key"),
		VisionEndpoint:       strings.TrimRight(v.GetString("vision_endpoint"), "/"),
		ChatProvider:         strings.ToLower(v.GetString("chat_provider")),
		ChatEndpoint:         strings.TrimRight(v.GetString("chat_endpoint"), "/"),
		ChatAPIKey:           v.GetString("chat_api_key"),
		DeploymentName:       v.GetString("deployment_name"),
		APIVersion:           v.GetString("api_version"),
		GeminiAPIKey:         v.GetString("gemini_api_key"),
		GeminiModel:          v.GetString("gemini_model"),
		MicrosoftAppID:       v.GetString("app_id"),
		MicrosoftAppPassword: v.GetString("app_password"),
		MicrosoftAppType:     v.GetString("app_type"),
		MicrosoftAppTenantID: v.GetString("app_tenant_id"),
		AuthToken:            v.GetString("auth_token"),
		AuthBypass:           v.GetBool("auth_bypass"),
		RedisAddr:            v.GetString("redis_addr"),
		RedisPassword:        v.GetString("redis_password"),
	}
	return s, s.Validate()
}

// Validate only checks presence, the services themselves reject bad values.
func (s Settings) Validate() error {
	var missing []string
	if s.VisionKey == "" {
		missing = append(missing, "VISION_KEY")
	}
	if s.VisionEndpoint == "" {
		missing = append(missing, "VISION_ENDPOINT")
	}
	switch s.ChatProvider {
	case ProviderGemini:
		if s.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	case ProviderAzureOpenAI:
		if s.ChatEndpoint == "" {
			missing = append(missing, "EndPoint")
		}
		fallthrough
	case ProviderOpenAI:
		if s.ChatAPIKey == "" {
			missing = append(missing, "ApiKey")
		}
	default:
		return fmt.Errorf("unknown CHAT_PROVIDER %q", s.ChatProvider)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}
	return nil
}

// ListenAddr turns PORT into a listen address.
func (s Settings) ListenAddr() string {
	if strings.Contains(s.Port, ":") {
		return s.Port
	}
	return ":" + s.Port
}
