// Package transcript holds the conversation exchanged with the model during a
// single validation run.
package transcript

import (
	"github.com/google/uuid"
	"github.com/microsoft/toolcheck/internal/models"
)

// Transcript is an ordered, append-only conversation. The first entry is
// always the system prompt; it's seeded by New and can't be removed.
//
// A Transcript is owned by one orchestrator and is not safe for concurrent use.
type Transcript struct {
	id       string
	messages []models.Message
}

// New creates a transcript seeded with the system prompt. The transcript is
// assigned a UUIDv7 identifier, used only to correlate log lines.
func New(systemPrompt string) *Transcript {
	return &Transcript{
		id:       uuid.Must(uuid.NewV7()).String(),
		messages: []models.Message{models.NewMessage(models.RoleSystem, systemPrompt)},
	}
}

// ID returns the transcript identifier.
func (t *Transcript) ID() string {
	return t.id
}

// AddUser appends an operator message.
func (t *Transcript) AddUser(content string) {
	t.messages = append(t.messages, models.NewMessage(models.RoleUser, content))
}

// AddAssistant appends a model response.
func (t *Transcript) AddAssistant(content string) {
	t.messages = append(t.messages, models.NewMessage(models.RoleAssistant, content))
}

// Messages returns a copy of the conversation, system prompt first.
func (t *Transcript) Messages() []models.Message {
	copied := make([]models.Message, len(t.messages))
	copy(copied, t.messages)
	return copied
}

// Len returns the number of entries, including the system prompt.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// LastAssistant returns the most recent assistant response, or false if the
// model hasn't answered yet.
func (t *Transcript) LastAssistant() (string, bool) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == models.RoleAssistant {
			return t.messages[i].Content, true
		}
	}
	return "", false
}
