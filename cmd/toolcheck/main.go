package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0 // Validation completed
	ExitInvalid = 1 // Tool request judged invalid and --fail-on-invalid was set
	ExitError   = 2 // Configuration or runtime error
)

// InvalidToolRequestError indicates that validation ran to completion and
// recorded its reports, but the verdict was Invalid.
type InvalidToolRequestError struct {
	Path string
}

func (e *InvalidToolRequestError) Error() string {
	return fmt.Sprintf("tool request %s is invalid", e.Path)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var invalidErr *InvalidToolRequestError
		if errors.As(err, &invalidErr) {
			os.Exit(ExitInvalid)
		}

		os.Exit(ExitError)
	}
}
