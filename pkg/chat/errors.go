package chat

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError is raised when a caller hands the engine input that
// violates a business rule (empty message list, missing context, bad
// bounds). It carries a structured context payload for diagnostics and
// is never retried.
type ValidationError struct {
	Rule    string         // short identifier of the violated rule
	Message string         // human-readable description
	Context map[string]any // ids, counts, and other diagnostic values
}

func (e *ValidationError) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("%s: %s", e.Rule, e.Message)
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
	}
	return fmt.Sprintf("%s: %s (%s)", e.Rule, e.Message, strings.Join(parts, ", "))
}

// NewValidationError builds a ValidationError with the given rule id,
// message, and diagnostic context.
func NewValidationError(rule, message string, context map[string]any) *ValidationError {
	return &ValidationError{Rule: rule, Message: message, Context: context}
}
