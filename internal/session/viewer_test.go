package session

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, path string, events ...Event) {
	t.Helper()
	logger, err := NewFileLogger(path)
	require.NoError(t, err)
	for _, ev := range events {
		require.NoError(t, logger.Log(ev))
	}
	require.NoError(t, logger.Close())
}

func TestListSessions(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "20250805T090000.000Z"+LogSuffix)
	newer := filepath.Join(dir, "20250806T140309.000Z"+LogSuffix)

	writeLog(t, older,
		StartEvent("a", "mock", "m", ModeBatch, 10),
		VerdictEvent("one.json", "Valid", "validation-report.txt"),
		VerdictEvent("one.json", "Invalid", "validation-report.txt"),
	)
	writeLog(t, newer, StartEvent("b", "mock", "m", ModeInteractive, 10))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("{}\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"+LogSuffix), 0o755))

	now := time.Now()
	require.NoError(t, os.Chtimes(older, now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(newer, now, now))

	logs, err := ListSessions(dir)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	assert.Equal(t, newer, logs[0].Path)
	assert.Equal(t, 1, logs[0].Events)
	assert.Empty(t, logs[0].Verdict)

	assert.Equal(t, filepath.Base(older), logs[1].Name)
	assert.Equal(t, 3, logs[1].Events)
	assert.Equal(t, "Invalid", logs[1].Verdict)
	assert.Positive(t, logs[1].Size)
}

func TestListSessions_Errors(t *testing.T) {
	logs, err := ListSessions(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, logs)

	_, err = ListSessions(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "reading session directory")
}

func TestReadEvents_SkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x"+LogSuffix)
	content := `{"timestamp":"2025-08-06T14:03:09Z","type":"turn_start","data":{"turn":1,"messages":1}}
this is not json
{"timestamp":"2025-08-06T14:03:10Z","type":"verdict","data":{"verdict":"Valid","tool_request":"a.json"}}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	events, err := ReadEvents(path)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventTurnStart, events[0].Type)
	assert.Equal(t, 1, events[0].Data.Messages)
	assert.Equal(t, "a.json", events[1].Data.ToolRequest)

	_, err = ReadEvents(filepath.Join(t.TempDir(), "none.jsonl"))
	assert.ErrorContains(t, err, "opening session file")
}

func TestRenderTimeline(t *testing.T) {
	base := time.Date(2025, 8, 6, 14, 3, 9, 0, time.UTC)
	at := func(ms int, ev Event) Event {
		ev.Timestamp = base.Add(time.Duration(ms) * time.Millisecond)
		return ev
	}

	var buf bytes.Buffer
	RenderTimeline(&buf, []Event{
		at(0, StartEvent("t-9", "anthropic", "claude-sonnet-4", ModeBatch, 900)),
		at(100, TurnStartEvent(1, 1)),
		at(1500, TurnCompleteEvent(1, 12, 240, 1400*time.Millisecond)),
		at(1600, VerdictEvent("tool.json", "Valid", "validation-report.txt")),
		at(1700, ErrorEvent(errors.New("disk full"), 0)),
		at(1800, EndEvent(1, 1800*time.Millisecond)),
	})

	out := buf.String()
	for _, want := range []string{
		"Session t-9",
		"+  0.000s  start     anthropic/claude-sonnet-4, batch mode, 900-byte prompt",
		"+  0.100s  turn 1    sending 1 message(s)",
		"+  1.500s  turn 1    240 bytes in 12 fragment(s), 1400ms",
		"verdict   Valid for tool.json",
		"error     disk full",
		"done      1 turn(s), 1800ms",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRenderTimeline_Empty(t *testing.T) {
	var buf bytes.Buffer
	RenderTimeline(&buf, nil)
	assert.Equal(t, "No events found.\n", buf.String())
}
