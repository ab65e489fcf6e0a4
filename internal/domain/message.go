package domain

// Message is one entry in a chat transcript (user or assistant).
type Message struct {
	Role Role
	Text string

	// Feedback is set by the user on assistant messages only.
	// FeedbackNone means "no annotation".
	Feedback Feedback
}
