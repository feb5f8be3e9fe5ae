package session

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var errEOF = io.EOF

func TestScannerReader(t *testing.T) {
	r := NewScannerReader(strings.NewReader("first\n\nlast line without newline"))

	line, err := r.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "first", line)

	line, err = r.ReadLine()
	require.NoError(t, err)
	require.Empty(t, line)

	line, err = r.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "last line without newline", line)

	_, err = r.ReadLine()
	require.ErrorIs(t, err, io.EOF)
}

func TestNewLineReader_NonTerminal(t *testing.T) {
	r := NewLineReader(strings.NewReader("exit\n"), io.Discard)

	_, ok := r.(*scannerReader)
	require.True(t, ok, "non-terminal input uses the line scanner, got %T", r)
}
