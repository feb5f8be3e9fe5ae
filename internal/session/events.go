package session

import "time"

// EventType names what happened at a point in a session.
type EventType string

const (
	EventSessionStart EventType = "session_start"
	EventSessionEnd   EventType = "session_complete"
	EventTurnStart    EventType = "turn_start"
	EventTurnComplete EventType = "turn_complete"
	EventVerdict      EventType = "verdict"
	EventError        EventType = "error"
)

// Event is one line of a session log. Payloads hold sizes, counts and paths;
// prompt and response text never appear in them.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Data      Payload   `json:"data"`
}

// Payload is the union of every event's fields. Each event type fills only
// the fields it needs.
type Payload struct {
	TranscriptID string `json:"transcript_id,omitempty"`
	Provider     string `json:"provider,omitempty"`
	Model        string `json:"model,omitempty"`
	Mode         string `json:"mode,omitempty"`
	PromptLength int    `json:"prompt_length,omitempty"`

	Turn           int   `json:"turn,omitempty"`
	Turns          int   `json:"turns,omitempty"`
	Messages       int   `json:"messages,omitempty"`
	Fragments      int   `json:"fragments,omitempty"`
	ResponseLength int   `json:"response_length,omitempty"`
	DurationMs     int64 `json:"duration_ms,omitempty"`

	ToolRequest string `json:"tool_request,omitempty"`
	Verdict     string `json:"verdict,omitempty"`
	Report      string `json:"report,omitempty"`

	Message string `json:"message,omitempty"`
}

var eventClock = time.Now

func newEvent(t EventType, p Payload) Event {
	return Event{Timestamp: eventClock().UTC(), Type: t, Data: p}
}

func StartEvent(transcriptID, provider, model string, mode Mode, promptLength int) Event {
	return newEvent(EventSessionStart, Payload{
		TranscriptID: transcriptID,
		Provider:     provider,
		Model:        model,
		Mode:         mode.String(),
		PromptLength: promptLength,
	})
}

func TurnStartEvent(turn, messages int) Event {
	return newEvent(EventTurnStart, Payload{Turn: turn, Messages: messages})
}

// TurnCompleteEvent records a finished model call. responseLength is in
// bytes.
func TurnCompleteEvent(turn, fragments, responseLength int, took time.Duration) Event {
	return newEvent(EventTurnComplete, Payload{
		Turn:           turn,
		Fragments:      fragments,
		ResponseLength: responseLength,
		DurationMs:     took.Milliseconds(),
	})
}

func EndEvent(turns int, took time.Duration) Event {
	return newEvent(EventSessionEnd, Payload{Turns: turns, DurationMs: took.Milliseconds()})
}

func VerdictEvent(toolRequestPath, verdict, reportPath string) Event {
	return newEvent(EventVerdict, Payload{
		ToolRequest: toolRequestPath,
		Verdict:     verdict,
		Report:      reportPath,
	})
}

// ErrorEvent records a failure. turn is zero for failures outside a model
// call.
func ErrorEvent(err error, turn int) Event {
	return newEvent(EventError, Payload{Message: err.Error(), Turn: turn})
}
