package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/PabloGalante/folio-agent/internal/adapters/http"
	"github.com/PabloGalante/folio-agent/internal/adapters/llm"
	memstore "github.com/PabloGalante/folio-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/folio-agent/internal/app/chat"
	"github.com/PabloGalante/folio-agent/internal/domain"
	"golang.org/x/time/rate"
)

func newTestServer(t *testing.T, primary domain.PrimaryFactory, backup domain.CompletionProvider) http.Handler {
	t.Helper()

	chats := memstore.NewChatStore(0)
	newSession := func(id domain.ChatID) *chat.Session {
		return chat.NewSession(id, chat.Config{
			Primary: primary,
			Backup:  backup,
			System:  "test persona",
		})
	}

	return httpadapter.NewServer(chats, newSession, rate.NewLimiter(rate.Inf, 0))
}

func mockFactory(p domain.CompletionProvider) domain.PrimaryFactory {
	return func(ctx context.Context) (domain.CompletionProvider, error) {
		return p, nil
	}
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, mockFactory(llm.NewMockProvider()), llm.NewMockProvider())

	w := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCreateChatSendAndFeedback(t *testing.T) {
	srv := newTestServer(t, mockFactory(llm.NewMockProvider("pong")), llm.NewMockProvider())

	// Create chat
	w := doJSON(t, srv, http.MethodPost, "/chats", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", w.Code, w.Body.String())
	}

	var created struct {
		ChatID string `json:"chat_id"`
		Mode   string `json:"mode"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}
	if created.ChatID == "" {
		t.Fatal("expected a chat_id")
	}
	if created.Mode != "primary" {
		t.Fatalf("expected primary mode, got %q", created.Mode)
	}

	// Send a message
	w = doJSON(t, srv, http.MethodPost, "/chats/"+created.ChatID+"/messages", map[string]string{"text": "ping"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var sent struct {
		Reply struct {
			Index int    `json:"index"`
			Role  string `json:"role"`
			Text  string `json:"text"`
		} `json:"reply"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sent); err != nil {
		t.Fatalf("decoding send response: %v", err)
	}
	if sent.Reply.Text != "pong" || sent.Reply.Role != "assistant" {
		t.Fatalf("unexpected reply: %+v", sent.Reply)
	}

	// Thumbs up the reply
	w = doJSON(t, srv, http.MethodPost, "/chats/"+created.ChatID+"/feedback",
		map[string]any{"index": sent.Reply.Index, "value": "up"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d, body=%s", w.Code, w.Body.String())
	}

	// Transcript reflects the annotation
	w = doJSON(t, srv, http.MethodGet, "/chats/"+created.ChatID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var got struct {
		Messages []struct {
			Role     string `json:"role"`
			Text     string `json:"text"`
			Feedback string `json:"feedback"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding chat response: %v", err)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got.Messages))
	}
	if got.Messages[1].Feedback != "up" {
		t.Fatalf("expected feedback up, got %q", got.Messages[1].Feedback)
	}
}

func TestSendToUnknownChat(t *testing.T) {
	srv := newTestServer(t, mockFactory(llm.NewMockProvider()), llm.NewMockProvider())

	w := doJSON(t, srv, http.MethodPost, "/chats/nope/messages", map[string]string{"text": "hi"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSendBlankText(t *testing.T) {
	srv := newTestServer(t, mockFactory(llm.NewMockProvider()), llm.NewMockProvider())

	w := doJSON(t, srv, http.MethodPost, "/chats", nil)
	var created struct {
		ChatID string `json:"chat_id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = doJSON(t, srv, http.MethodPost, "/chats/"+created.ChatID+"/messages", map[string]string{"text": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDoubleFailureReturnsBadGateway(t *testing.T) {
	primary := llm.NewMockProvider()
	primary.Fail(errors.New("primary down"))
	backup := llm.NewMockProvider()
	backup.Fail(errors.New("backup down"))

	srv := newTestServer(t, mockFactory(primary), backup)

	w := doJSON(t, srv, http.MethodPost, "/chats", nil)
	var created struct {
		ChatID string `json:"chat_id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = doJSON(t, srv, http.MethodPost, "/chats/"+created.ChatID+"/messages", map[string]string{"text": "hello?"})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Reply struct {
			Role string `json:"role"`
			Text string `json:"text"`
		} `json:"reply"`
		Mode string `json:"mode"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Reply.Role != "assistant" || resp.Reply.Text == "" {
		t.Fatalf("expected the synthetic assistant message, got %+v", resp.Reply)
	}
	if resp.Mode != "backup" {
		t.Fatalf("expected backup mode, got %q", resp.Mode)
	}
}

func TestFeedbackValidation(t *testing.T) {
	srv := newTestServer(t, mockFactory(llm.NewMockProvider("ok")), llm.NewMockProvider())

	w := doJSON(t, srv, http.MethodPost, "/chats", nil)
	var created struct {
		ChatID string `json:"chat_id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	// Out-of-range index is a 400, not silently ignored.
	w = doJSON(t, srv, http.MethodPost, "/chats/"+created.ChatID+"/feedback",
		map[string]any{"index": 42, "value": "up"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	// Unknown value is rejected.
	w = doJSON(t, srv, http.MethodPost, "/chats/"+created.ChatID+"/feedback",
		map[string]any{"index": 0, "value": "meh"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	chats := memstore.NewChatStore(0)
	newSession := func(id domain.ChatID) *chat.Session {
		return chat.NewSession(id, chat.Config{
			Primary: mockFactory(llm.NewMockProvider()),
			Backup:  llm.NewMockProvider(),
		})
	}

	// A limiter with no budget rejects everything.
	srv := httpadapter.NewServer(chats, newSession, rate.NewLimiter(0, 0))

	w := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, mockFactory(llm.NewMockProvider()), llm.NewMockProvider())

	req := httptest.NewRequest(http.MethodOptions, "/chats", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected CORS headers on preflight")
	}
}
