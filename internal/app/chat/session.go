package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PabloGalante/folio-agent/internal/domain"
	"github.com/PabloGalante/folio-agent/internal/observability"
)

// bothDownReply is the synthetic assistant message appended when primary
// and backup both fail for the same turn. The only assistant text that is
// not model output.
const bothDownReply = "Sorry, I can't reach my language model right now. " +
	"Both backends seem to be down — please try again in a minute."

// Config is the static part of a chat session: how to reach the two
// providers and the generation settings shared between them.
type Config struct {
	// Primary builds the stateful primary provider on first use.
	Primary domain.PrimaryFactory

	// Backup is stateless and receives the full transcript on every call.
	Backup domain.CompletionProvider

	// System is the opaque persona instruction.
	System string

	// CallTimeout bounds each individual provider call. Zero means
	// DefaultCallTimeout.
	CallTimeout time.Duration
}

const DefaultCallTimeout = 30 * time.Second

// Session owns one conversation: its transcript, its provider mode and the
// lazily created primary handle. Safe for concurrent use; a second Send
// while one is in flight is rejected with domain.ErrSessionBusy rather
// than interleaved into the transcript.
type Session struct {
	id  domain.ChatID
	cfg Config

	mu         sync.Mutex
	busy       bool
	transcript []domain.Message
	mode       domain.ProviderMode
	primary    domain.CompletionProvider // nil until first primary turn
}

func NewSession(id domain.ChatID, cfg Config) *Session {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	return &Session{
		id:   id,
		cfg:  cfg,
		mode: domain.ModePrimary,
	}
}

func (s *Session) ID() domain.ChatID {
	return s.id
}

// Mode reports the current provider mode.
func (s *Session) Mode() domain.ProviderMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Send runs one user turn. The user message is appended before any network
// activity, so it survives even a double provider failure. On a primary
// failure the session flips to backup mode (sticky) and retries the same
// turn there; only when the backup also fails does the user see an error,
// as a single synthetic assistant message plus a failed result.
//
// Blank text after trimming is a no-op: nothing is appended and no
// provider is called.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return "", domain.ErrSessionBusy
	}
	s.busy = true
	s.transcript = append(s.transcript, domain.Message{Role: domain.RoleUser, Text: text})

	history := make([]domain.Message, len(s.transcript))
	copy(history, s.transcript)
	mode := s.mode
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	log := observability.LoggerFromContext(ctx).With("chat_id", s.id, "mode", mode)

	turn := domain.Turn{
		UserText: text,
		History:  history,
		System:   s.cfg.System,
	}

	if mode == domain.ModePrimary {
		reply, err := s.completePrimary(ctx, turn)
		if err == nil {
			s.appendAssistant(reply)
			return reply, nil
		}

		// Primary is done for this session: flip to backup before the
		// retry and never come back.
		log.Warn("primary provider failed, switching to backup", "error", err)
		s.mu.Lock()
		s.mode = domain.ModeBackup
		s.mu.Unlock()
	}

	reply, err := s.complete(ctx, s.cfg.Backup, turn)
	if err != nil {
		log.Error("backup provider failed", "error", err)
		s.appendAssistant(bothDownReply)
		return "", fmt.Errorf("%w: %v", domain.ErrBothProvidersFailed, err)
	}

	s.appendAssistant(reply)
	return reply, nil
}

// SetFeedback toggles a thumbs up/down annotation on an assistant message.
// Selecting the value already present clears it; FeedbackNone always
// clears. Out-of-range indices are a caller bug and reported as such.
func (s *Session) SetFeedback(index int, value domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.transcript) {
		return domain.ErrIndexOutOfRange
	}

	msg := &s.transcript[index]
	if msg.Role != domain.RoleAssistant {
		return domain.ErrNotAssistantMessage
	}

	if value == domain.FeedbackNone || msg.Feedback == value {
		msg.Feedback = domain.FeedbackNone
		return nil
	}
	msg.Feedback = value
	return nil
}

func (s *Session) appendAssistant(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, domain.Message{Role: domain.RoleAssistant, Text: text})
}

// completePrimary builds the primary provider on first use. A factory
// error counts as a primary failure so the caller falls through to the
// backup path.
func (s *Session) completePrimary(ctx context.Context, turn domain.Turn) (string, error) {
	s.mu.Lock()
	p := s.primary
	s.mu.Unlock()

	if p == nil {
		built, err := s.cfg.Primary(ctx)
		if err != nil {
			return "", fmt.Errorf("primary init: %w", err)
		}
		s.mu.Lock()
		s.primary = built
		s.mu.Unlock()
		p = built
	}

	return s.complete(ctx, p, turn)
}

func (s *Session) complete(ctx context.Context, p domain.CompletionProvider, turn domain.Turn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()
	return p.CompleteTurn(ctx, turn)
}
