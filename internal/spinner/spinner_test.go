package spinner

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFrame(t *testing.T) {
	assert.Equal(t, "⠋ Validating (0s)", Frame(0, "Validating", 300*time.Millisecond))
	assert.Equal(t, "⠙ Validating (2s)", Frame(11, "Validating", 2500*time.Millisecond))
}

func TestStart_DrawsAndClears(t *testing.T) {
	old := Interval
	Interval = time.Millisecond
	t.Cleanup(func() { Interval = old })

	var out syncBuffer
	stop := Start(&out, "Waiting for model")

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Waiting for model")
	}, time.Second, time.Millisecond)

	stop()
	stop()

	got := out.String()
	assert.True(t, strings.HasSuffix(got, "\r"), "line is cleared on stop")
	assert.NotContains(t, got[strings.LastIndex(got[:len(got)-1], "\r"):], "Waiting", "last write blanks the line")
}

func TestStart_StopBeforeFirstFrame(t *testing.T) {
	old := Interval
	Interval = time.Hour
	t.Cleanup(func() { Interval = old })

	var out syncBuffer
	stop := Start(&out, "never drawn")
	stop()

	assert.Equal(t, "\r\r", out.String())
}
