package window

import (
	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
	"github.com/kbrapp1/test-app-1-sub014/pkg/relevance"
)

// Compression never triggers at or below this message count, so very
// short conversations are never truncated.
const compressionMessageFloor = 5

// CompressionOutcome is the message list after the compression decision.
type CompressionOutcome struct {
	Messages      []chat.Message
	WasCompressed bool
}

// applyCompressionPolicy replaces the message list with the recommended
// retained subset only when token usage exceeds the budget, the
// conversation is past the floor, and the prioritizer recommends it.
// Retained messages keep their original conversation order.
func applyCompressionPolicy(original []chat.Message, prioritized *relevance.PrioritizedMessages, analysis TokenAnalysis, availableTokens int) CompressionOutcome {
	rec := prioritized.Recommendation
	if analysis.TotalTokens <= availableTokens || len(original) <= compressionMessageFloor || !rec.ShouldCompress {
		return CompressionOutcome{Messages: original, WasCompressed: false}
	}

	retained := make(map[string]bool, len(rec.Retain))
	for _, m := range rec.Retain {
		retained[m.ID] = true
	}

	compressed := make([]chat.Message, 0, len(rec.Retain))
	for _, m := range original {
		if retained[m.ID] {
			compressed = append(compressed, m)
		}
	}
	return CompressionOutcome{Messages: compressed, WasCompressed: true}
}
