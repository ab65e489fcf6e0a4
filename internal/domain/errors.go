package domain

import "errors"

var (
	// ErrMissingCredential means the primary API key is absent from the
	// configuration. No network call is attempted in that case.
	ErrMissingCredential = errors.New("missing api credential")

	// ErrBackupUnavailable means the backup credential is absent. Only
	// discovered when the backup is actually attempted.
	ErrBackupUnavailable = errors.New("backup provider unavailable")

	// ErrSessionBusy is returned when a send is issued while another one
	// is still in flight on the same chat.
	ErrSessionBusy = errors.New("chat already has a send in flight")

	// ErrBothProvidersFailed means primary and backup both failed for the
	// same turn. The only provider error that reaches the end user.
	ErrBothProvidersFailed = errors.New("both providers failed")

	// ErrIndexOutOfRange signals a caller bug on feedback: the index does
	// not point at a transcript entry.
	ErrIndexOutOfRange = errors.New("message index out of range")

	// ErrNotAssistantMessage signals feedback aimed at a user message.
	ErrNotAssistantMessage = errors.New("feedback only applies to assistant messages")
)
