package chat

import "github.com/PabloGalante/folio-agent/internal/domain"

// Registry keeps the live sessions the HTTP surface hands out to widget
// instances. Memory-only; an expired or restarted registry simply loses
// the conversation.
type Registry interface {
	Put(id domain.ChatID, s *Session)
	Get(id domain.ChatID) (*Session, bool)
}
