package domain

type ChatID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Feedback is a user annotation on an assistant message.
type Feedback string

const (
	FeedbackNone Feedback = ""
	FeedbackUp   Feedback = "up"
	FeedbackDown Feedback = "down"
)

// ProviderMode says which backend a chat is currently talking to.
// Sticky in practice: once a chat moves to backup it stays there.
type ProviderMode string

const (
	ModePrimary ProviderMode = "primary"
	ModeBackup  ProviderMode = "backup"
)
