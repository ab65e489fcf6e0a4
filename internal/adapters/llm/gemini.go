package llm

import (
	"context"
	"fmt"

	"github.com/PabloGalante/folio-agent/internal/domain"
	"google.golang.org/genai"
)

// GeminiConfig carries everything needed to open a Gemini chat.
type GeminiConfig struct {
	APIKey          string
	Model           string
	System          string
	Temperature     float32
	MaxOutputTokens int32
}

// GeminiProvider wraps a stateful genai chat session: the SDK keeps the
// turn history, so CompleteTurn only sends the new user text.
type GeminiProvider struct {
	chat *genai.Chat
}

// NewGeminiProvider creates the client and opens a chat against the
// Gemini API backend. A missing key is a configuration error and is
// reported without any network call.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, domain.ErrMissingCredential
	}

	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	temp := cfg.Temperature

	genCfg := &genai.GenerateContentConfig{
		// According to official examples, the role here is usually RoleUser
		SystemInstruction: genai.NewContentFromText(cfg.System, genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   cfg.MaxOutputTokens,
	}

	chat, err := client.Chats.Create(ctx, cfg.Model, genCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("creating gemini chat: %w", err)
	}

	return &GeminiProvider{chat: chat}, nil
}

// CompleteTurn implements domain.CompletionProvider. History and System
// are ignored: the chat carries its own context and the system
// instruction was fixed at creation time.
func (g *GeminiProvider) CompleteTurn(ctx context.Context, turn domain.Turn) (string, error) {
	res, err := g.chat.SendMessage(ctx, genai.Part{Text: turn.UserText})
	if err != nil {
		return "", fmt.Errorf("gemini send message: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}

	return text, nil
}

// GeminiFactory adapts the constructor to the lazy PrimaryFactory shape
// the chat core expects.
func GeminiFactory(cfg GeminiConfig) domain.PrimaryFactory {
	return func(ctx context.Context) (domain.CompletionProvider, error) {
		return NewGeminiProvider(ctx, cfg)
	}
}
