package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/PabloGalante/folio-agent/internal/domain"
)

// MockProvider is a scripted provider for dev mode and tests. With no
// script it echoes the user text; replies are consumed in order, the last
// one repeating. Fail makes every subsequent call return err.
type MockProvider struct {
	mu      sync.Mutex
	calls   int
	replies []string
	err     error
}

func NewMockProvider(replies ...string) *MockProvider {
	return &MockProvider{replies: replies}
}

// Fail makes the provider reject every call from now on. Pass nil to
// recover.
func (m *MockProvider) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times CompleteTurn was invoked.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockProvider) CompleteTurn(_ context.Context, turn domain.Turn) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return "", m.err
	}

	if len(m.replies) == 0 {
		return fmt.Sprintf("You said %q. Ask me about the projects on this page!", turn.UserText), nil
	}

	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return reply, nil
}
