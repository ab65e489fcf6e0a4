package main

import (
	"context"
	"log"
	"net/http"

	httpadapter "github.com/PabloGalante/folio-agent/internal/adapters/http"
	"github.com/PabloGalante/folio-agent/internal/adapters/llm"
	memstore "github.com/PabloGalante/folio-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/folio-agent/internal/app/chat"
	"github.com/PabloGalante/folio-agent/internal/config"
	"github.com/PabloGalante/folio-agent/internal/domain"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.Load()

	// Choose between mock and real providers by ENV (useful for dev)
	var (
		primary domain.PrimaryFactory
		backup  domain.CompletionProvider
	)

	if cfg.UseMockLLM {
		log.Println("[LLM] Using MOCK providers")
		primary = func(ctx context.Context) (domain.CompletionProvider, error) {
			return llm.NewMockProvider(), nil
		}
		backup = llm.NewMockProvider()
	} else {
		log.Println("[LLM] Using Gemini primary + OpenAI-compatible backup")
		primary = llm.GeminiFactory(llm.GeminiConfig{
			APIKey:          cfg.GeminiAPIKey,
			Model:           cfg.GeminiModel,
			System:          cfg.SystemPrompt,
			Temperature:     float32(cfg.Temperature),
			MaxOutputTokens: int32(cfg.MaxOutputTokens),
		})
		backup = llm.NewOpenAIProvider(llm.OpenAIConfig{
			APIKey:      cfg.BackupAPIKey,
			BaseURL:     cfg.BackupBaseURL,
			Model:       cfg.BackupModel,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxOutputTokens,
		})
	}

	// One session per widget instance, dropped after the TTL.
	chats := memstore.NewChatStore(cfg.SessionTTL)

	newSession := func(id domain.ChatID) *chat.Session {
		return chat.NewSession(id, chat.Config{
			Primary:     primary,
			Backup:      backup,
			System:      cfg.SystemPrompt,
			CallTimeout: cfg.CallTimeout,
		})
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	handler := httpadapter.NewServer(chats, newSession, limiter)

	addr := ":" + cfg.Port
	log.Println("Folio API listening on", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
