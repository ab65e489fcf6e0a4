package llm

import "github.com/PabloGalante/folio-agent/internal/domain"

// buildBackupMessages flattens one turn into the wire shape the backup
// endpoint expects: the system instruction as the leading entry, then the
// transcript in order. Turn.History already ends with the new user
// message, so nothing extra is appended.
func buildBackupMessages(turn domain.Turn) []chatMessage {
	msgs := make([]chatMessage, 0, len(turn.History)+1)

	if turn.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: turn.System})
	}

	for _, m := range turn.History {
		role := "user"
		if m.Role == domain.RoleAssistant {
			role = "assistant"
		}
		msgs = append(msgs, chatMessage{Role: role, Content: m.Text})
	}

	return msgs
}
