package session

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// LineReader supplies operator input in interactive mode. ReadLine returns
// io.EOF when no more input is available. The orchestrator treats EOF as
// "exit" and never sends an empty follow-up turn for it.
type LineReader interface {
	ReadLine() (string, error)
}

// NewLineReader returns a huh prompt when in is a terminal and a plain line
// scanner otherwise (pipes, files, tests).
func NewLineReader(in io.Reader, out io.Writer) LineReader {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return &formReader{in: in, out: out}
	}
	return NewScannerReader(in)
}

// NewScannerReader reads newline-terminated lines from r.
func NewScannerReader(r io.Reader) LineReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &scannerReader{scanner: scanner}
}

type scannerReader struct {
	scanner *bufio.Scanner
}

func (r *scannerReader) ReadLine() (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

type formReader struct {
	in  io.Reader
	out io.Writer
}

// ReadLine shows a single-field form. Ctrl+C is treated as end of input.
func (r *formReader) ReadLine() (string, error) {
	var line string

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Prompt("> ").
				Placeholder("ask a follow-up, or exit").
				Value(&line),
		),
	).WithInput(r.in).WithOutput(r.out).WithShowHelp(false).Run()

	if errors.Is(err, huh.ErrUserAborted) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	return line, nil
}
