// Package spinner draws a progress indicator while a model call streams.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Interval is the redraw period.
var Interval = 80 * time.Millisecond

// Start displays an animated spinner with the given message and the
// elapsed time on w. Call the returned function to stop the spinner and
// clear the line; calling it more than once is fine.
func Start(w io.Writer, message string) (stop func()) {
	done := make(chan struct{})
	cleared := make(chan struct{})
	var stopOnce sync.Once

	go func() {
		ticker := time.NewTicker(Interval)
		defer ticker.Stop()

		started := time.Now()
		width := 0

		for i := 0; ; i++ {
			select {
			case <-done:
				fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", width)) //nolint:errcheck
				close(cleared)
				return
			case <-ticker.C:
				line := Frame(i, message, time.Since(started))
				width = max(width, runewidth.StringWidth(line))
				fmt.Fprintf(w, "\r%s", line) //nolint:errcheck
			}
		}
	}()

	return func() {
		stopOnce.Do(func() {
			close(done)
		})
		<-cleared
	}
}

// Frame renders the i-th spinner line.
func Frame(i int, message string, elapsed time.Duration) string {
	return fmt.Sprintf("%s %s (%ds)", frames[i%len(frames)], message, int(elapsed.Seconds()))
}
