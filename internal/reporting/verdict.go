package reporting

import (
	"strings"

	"github.com/microsoft/toolcheck/internal/models"
)

// Classify derives the verdict from a model response: Valid if the valid
// marker appears anywhere in it, Invalid otherwise. This is a containment
// check, not a last-line match, so a response that mentions both markers is
// Valid.
func Classify(response string) models.Verdict {
	if strings.Contains(response, models.ValidMarker) {
		return models.VerdictValid
	}
	return models.VerdictInvalid
}
