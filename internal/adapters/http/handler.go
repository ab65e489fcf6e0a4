package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/PabloGalante/folio-agent/internal/app/chat"
	"github.com/PabloGalante/folio-agent/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// SessionFactory builds a fresh chat session for a new widget instance.
type SessionFactory func(id domain.ChatID) *chat.Session

type Server struct {
	chats      chat.Registry
	newSession SessionFactory
}

func NewServer(chats chat.Registry, newSession SessionFactory, limiter *rate.Limiter) http.Handler {
	s := &Server{chats: chats, newSession: newSession}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)

	// /chats → create chat (POST)
	mux.HandleFunc("/chats", s.handleChats)

	// /chats/{id}          →  GET: transcript + mode
	// /chats/{id}/messages → POST: send one user turn
	// /chats/{id}/feedback → POST: annotate an assistant message
	mux.HandleFunc("/chats/", s.handleChatWithID)

	return chainMiddlewares(mux,
		withRateLimit(limiter),
		withCORS,
		withLogging,
		withRequestID,
	)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createChatResponse struct {
	ChatID string `json:"chat_id"`
	Mode   string `json:"mode"`
}

type messageResponse struct {
	Index    int    `json:"index"`
	Role     string `json:"role"`
	Text     string `json:"text"`
	Feedback string `json:"feedback,omitempty"`
}

type getChatResponse struct {
	ChatID   string            `json:"chat_id"`
	Mode     string            `json:"mode"`
	Messages []messageResponse `json:"messages"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	Reply messageResponse `json:"reply"`
	Mode  string          `json:"mode"`
}

type feedbackRequest struct {
	Index int     `json:"index"`
	Value *string `json:"value"` // "up", "down" or null to clear
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// /chats
func (s *Server) handleChats(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateChat(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /chats/{id}, /chats/{id}/messages or /chats/{id}/feedback
func (s *Server) handleChatWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/chats/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := domain.ChatID(parts[0])
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetChat(w, r, id)
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 2 && (parts[1] == "messages" || parts[1] == "feedback") {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		if parts[1] == "messages" {
			s.handleSendMessage(w, r, id)
		} else {
			s.handleFeedback(w, r, id)
		}
		return
	}

	http.NotFound(w, r)
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	id := domain.ChatID(uuid.NewString())
	sess := s.newSession(id)
	s.chats.Put(id, sess)

	writeJSON(w, http.StatusCreated, createChatResponse{
		ChatID: string(id),
		Mode:   string(sess.Mode()),
	})
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request, id domain.ChatID) {
	sess, ok := s.chats.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, getChatResponse{
		ChatID:   string(id),
		Mode:     string(sess.Mode()),
		Messages: toMessagesResponse(sess.Transcript()),
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, id domain.ChatID) {
	sess, ok := s.chats.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	_, err := sess.Send(r.Context(), req.Text)

	switch {
	case errors.Is(err, domain.ErrSessionBusy):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "a reply is already being generated for this chat",
		})
		return
	case errors.Is(err, domain.ErrBothProvidersFailed):
		// The synthetic message is already in the transcript; hand it to
		// the widget alongside the error status.
		writeJSON(w, http.StatusBadGateway, sendMessageResponse{
			Reply: lastMessage(sess),
			Mode:  string(sess.Mode()),
		})
		return
	case err != nil:
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{
		Reply: lastMessage(sess),
		Mode:  string(sess.Mode()),
	})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request, id domain.ChatID) {
	sess, ok := s.chats.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	value := domain.FeedbackNone
	if req.Value != nil {
		switch *req.Value {
		case "up":
			value = domain.FeedbackUp
		case "down":
			value = domain.FeedbackDown
		default:
			badRequest(w, "value must be \"up\", \"down\" or null")
			return
		}
	}

	if err := sess.SetFeedback(req.Index, value); err != nil {
		switch {
		case errors.Is(err, domain.ErrIndexOutOfRange),
			errors.Is(err, domain.ErrNotAssistantMessage):
			badRequest(w, err.Error())
		default:
			internalError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ─────────────────────────────────────────────
// Chat helpers
// ─────────────────────────────────────────────

func toMessagesResponse(msgs []domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for i, m := range msgs {
		out = append(out, messageResponse{
			Index:    i,
			Role:     string(m.Role),
			Text:     m.Text,
			Feedback: string(m.Feedback),
		})
	}
	return out
}

func lastMessage(sess *chat.Session) messageResponse {
	transcript := sess.Transcript()
	if len(transcript) == 0 {
		return messageResponse{}
	}
	i := len(transcript) - 1
	m := transcript[i]
	return messageResponse{
		Index:    i,
		Role:     string(m.Role),
		Text:     m.Text,
		Feedback: string(m.Feedback),
	}
}

// ─────────────────────────────────────────────
// HTTP helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
