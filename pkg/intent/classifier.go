package intent

import (
	"context"
	"strings"

	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
)

// Classifier classifies one user message given short conversation
// context. Implementations may fail; callers degrade to Unknown().
type Classifier interface {
	Classify(ctx context.Context, messageText string, recent []chat.Message, cfg chat.BotConfig) (Classification, error)
}

// How many recent messages classifiers receive as context.
const classifierContextMessages = 5

// KeywordClassifier is a deterministic classifier that scores labels by
// keyword hits. It serves as the degraded-dependency fallback and as the
// test fake for the LLM-backed classifiers.
type KeywordClassifier struct{}

// NewKeywordClassifier creates a keyword-based classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify picks the label whose keyword list matches the message text
// most often. Confidence grows with match count and is capped at 0.95.
// Never returns an error.
func (k *KeywordClassifier) Classify(_ context.Context, messageText string, _ []chat.Message, _ chat.BotConfig) (Classification, error) {
	lower := strings.ToLower(messageText)

	bestLabel := "unknown"
	bestHits := 0
	for label, keywords := range intentKeywords {
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits || (hits == bestHits && hits > 0 && label < bestLabel) {
			bestLabel = label
			bestHits = hits
		}
	}

	if bestHits == 0 {
		return Unknown(), nil
	}

	confidence := 0.5 + 0.15*float64(bestHits)
	if confidence > 0.95 {
		confidence = 0.95
	}
	return Classification{Primary: bestLabel, Confidence: confidence}, nil
}
