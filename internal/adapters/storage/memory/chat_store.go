package memory

import (
	"time"

	"github.com/PabloGalante/folio-agent/internal/app/chat"
	"github.com/PabloGalante/folio-agent/internal/domain"
	gocache "github.com/patrickmn/go-cache"
)

// ChatStore keeps live chat sessions with a TTL so abandoned widget
// conversations are eventually dropped. Nothing is ever persisted: a
// restart loses all chats.
type ChatStore struct {
	cache *gocache.Cache
}

func NewChatStore(ttl time.Duration) *ChatStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ChatStore{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

func (s *ChatStore) Put(id domain.ChatID, sess *chat.Session) {
	s.cache.SetDefault(string(id), sess)
}

// Get refreshes the TTL on hit, so active chats stay alive as long as the
// widget keeps talking.
func (s *ChatStore) Get(id domain.ChatID) (*chat.Session, bool) {
	v, ok := s.cache.Get(string(id))
	if !ok {
		return nil, false
	}
	sess := v.(*chat.Session)
	s.cache.SetDefault(string(id), sess)
	return sess, true
}
