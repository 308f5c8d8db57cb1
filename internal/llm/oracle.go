// Package llm provides the text-generation backend that summarizes judicial
// actions and classifies their urgency.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dfrestrepo/ramatrack/internal/models"
)

// Sentinel errors for enrichment operations.
var (
	// ErrUnavailable indicates the backend could not be reached or errored.
	// Callers degrade: summaries stay absent, urgency falls back to MEDIUM.
	ErrUnavailable = errors.New("llm: enrichment unavailable")

	// ErrOutOfRange indicates the backend returned a classification outside
	// the closed {HIGH, MEDIUM, LOW} set.
	ErrOutOfRange = errors.New("llm: classification out of range")
)

// Oracle is the enrichment capability consumed by the reconciler. It is an
// injected dependency; "no LLM configured" is the Disabled implementation,
// not a nil check.
type Oracle interface {
	// Summarize returns a short natural-language summary of the action text.
	Summarize(ctx context.Context, text string) (string, error)

	// ClassifyUrgency classifies the action as HIGH, MEDIUM or LOW urgency.
	ClassifyUrgency(ctx context.Context, actionType, text string) (models.Urgency, error)
}

// Disabled is an Oracle whose backend is not configured. Both operations
// report ErrUnavailable.
type Disabled struct{}

// Summarize implements Oracle.
func (Disabled) Summarize(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

// ClassifyUrgency implements Oracle.
func (Disabled) ClassifyUrgency(context.Context, string, string) (models.Urgency, error) {
	return "", ErrUnavailable
}

// ParseUrgency maps a model response onto the urgency set. It accepts the
// Spanish labels the prompts ask for (ALTA/MEDIA/BAJA) as well as their
// English equivalents, tolerating case, punctuation and trailing prose.
func ParseUrgency(s string) (models.Urgency, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	if fields := strings.Fields(normalized); len(fields) > 0 {
		normalized = fields[0]
	}
	normalized = strings.Trim(normalized, ".,:;!¡?¿\"'*")

	switch normalized {
	case "ALTA", "HIGH":
		return models.UrgencyHigh, nil
	case "MEDIA", "MEDIUM":
		return models.UrgencyMedium, nil
	case "BAJA", "LOW":
		return models.UrgencyLow, nil
	}
	return "", fmt.Errorf("%w: %q", ErrOutOfRange, s)
}
