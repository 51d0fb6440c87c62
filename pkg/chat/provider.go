// Package chat serves the assistant turn endpoint: it streams model output
// for a transcript, letting the model call the databook tools mid-turn.
package chat

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Message is one transcript entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnRequest is one assistant turn: the transcript so far plus an optional
// model override.
type TurnRequest struct {
	Messages []Message `json:"messages"`
	Model    string    `json:"model,omitempty"`
}

// Event is one frame streamed back to the UI.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Streamed event names.
const (
	EventMessageDelta   = "message.delta"
	EventToolCallStart  = "tool_call.start"
	EventToolCallResult = "tool_call.result"
	EventTurnCompleted  = "turn.completed"
	EventError          = "error"
)

// ToolRunner executes a model-requested tool call and returns its textual
// result for the transcript.
type ToolRunner interface {
	Run(ctx context.Context, name, args string) (string, error)
}

// Provider streams one assistant turn, invoking tools through the runner as
// the model requests them.
type Provider interface {
	Name() string
	StreamTurn(ctx context.Context, req TurnRequest, emit func(Event) error) error
}

// Config selects and configures the model provider.
type Config struct {
	Provider  string `yaml:"provider"`    // "openai" (default) or "gemini"
	Model     string `yaml:"model"`       // provider-specific model id
	APIKeyEnv string `yaml:"api_key_env"` // env var holding the API key
	BaseURL   string `yaml:"base_url"`    // optional custom endpoint (OpenAI-compatible)
}

// NewProvider builds the configured provider. The API key is read from the
// configured environment variable, falling back to the provider's
// conventional one.
func NewProvider(ctx context.Context, cfg Config, runner ToolRunner) (Provider, error) {
	switch cfg.Provider {
	case "", "openai":
		key := apiKey(cfg.APIKeyEnv, "OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("openai: API key not set")
		}
		return NewOpenAIProvider(key, cfg.BaseURL, cfg.Model, runner)
	case "gemini":
		key := apiKey(cfg.APIKeyEnv, "GEMINI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("gemini: API key not set")
		}
		return NewGeminiProvider(ctx, key, cfg.Model, runner)
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
}

func apiKey(envVar, fallback string) string {
	if envVar != "" {
		return os.Getenv(envVar)
	}
	return os.Getenv(fallback)
}

const developerPrompt = `You are a helpful assistant helping users with their queries.

Your main job is to help the user find financials about a company.

If anyone asks about year over year financials, use 2023 to 2024 growth.

You have access to many financial reports in the tools. Include any referenced sources in your tool requests.`

// DeveloperPrompt returns the system instructions for an assistant turn.
func DeveloperPrompt(now time.Time) string {
	return fmt.Sprintf("%s\n\nToday is %s.", developerPrompt, now.Format("Monday, January 2, 2006"))
}
