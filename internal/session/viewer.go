package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// LogFile describes a session log found on disk.
type LogFile struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	Events  int

	// Verdict is taken from the last verdict event. Interactive and failed
	// sessions have none.
	Verdict string
}

// ListSessions returns the session logs in dir, newest first.
func ListSessions(dir string) ([]LogFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading session directory: %w", err)
	}

	var logs []LogFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), LogSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		lf := LogFile{
			Path:    filepath.Join(dir, e.Name()),
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		if events, err := ReadEvents(lf.Path); err == nil {
			lf.Events = len(events)
			lf.Verdict = lastVerdict(events)
		}
		logs = append(logs, lf)
	}

	slices.SortFunc(logs, func(a, b LogFile) int { return b.ModTime.Compare(a.ModTime) })
	return logs, nil
}

func lastVerdict(events []Event) string {
	for _, ev := range slices.Backward(events) {
		if ev.Type == EventVerdict {
			return ev.Data.Verdict
		}
	}
	return ""
}

// ReadEvents decodes a session log. Lines that are not valid JSON are
// ignored.
func ReadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening session file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var events []Event
	sc := bufio.NewScanner(f)
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		var ev Event
		if json.Unmarshal(sc.Bytes(), &ev) == nil {
			events = append(events, ev)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	return events, nil
}

// RenderTimeline prints events with their offset from the first one.
//
//nolint:errcheck // display-only writes
func RenderTimeline(w io.Writer, events []Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}

	rule := strings.Repeat("─", 56)
	fmt.Fprintf(w, "%s\n Session %s\n%s\n", rule, events[0].Data.TranscriptID, rule)

	start := events[0].Timestamp
	for _, ev := range events {
		fmt.Fprintf(w, "%s  %s\n", offset(ev.Timestamp.Sub(start)), describe(ev))
	}
}

func describe(ev Event) string {
	d := ev.Data
	switch ev.Type {
	case EventSessionStart:
		return fmt.Sprintf("start     %s/%s, %s mode, %d-byte prompt", d.Provider, d.Model, d.Mode, d.PromptLength)
	case EventTurnStart:
		return fmt.Sprintf("turn %d    sending %d message(s)", d.Turn, d.Messages)
	case EventTurnComplete:
		return fmt.Sprintf("turn %d    %d bytes in %d fragment(s), %dms", d.Turn, d.ResponseLength, d.Fragments, d.DurationMs)
	case EventVerdict:
		return fmt.Sprintf("verdict   %s for %s", d.Verdict, d.ToolRequest)
	case EventError:
		return "error     " + d.Message
	case EventSessionEnd:
		return fmt.Sprintf("done      %d turn(s), %dms", d.Turns, d.DurationMs)
	}
	return string(ev.Type)
}

func offset(d time.Duration) string {
	return fmt.Sprintf("+%7.3fs", d.Seconds())
}
