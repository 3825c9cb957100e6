// Package relevance scores conversation messages against the current
// business context and prioritizes them into retention tiers for the
// context window.
package relevance

import (
	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
	"github.com/kbrapp1/test-app-1-sub014/pkg/intent"
)

// Tier is the retention priority derived from a message's overall score.
type Tier string

const (
	TierCritical Tier = "critical"
	TierHigh     Tier = "high"
	TierMedium   Tier = "medium"
	TierLow      Tier = "low"
)

// Tier thresholds on the overall score.
const (
	tierCriticalThreshold = 0.8
	tierHighThreshold     = 0.6
	tierMediumThreshold   = 0.4
)

// Rank orders tiers for comparisons: critical > high > medium > low.
func (t Tier) Rank() int {
	switch t {
	case TierCritical:
		return 3
	case TierHigh:
		return 2
	case TierMedium:
		return 1
	default:
		return 0
	}
}

// Score is the per-turn relevance assessment of one message. All
// component scores and the overall score are within [0,1]. Scores are
// recomputed every turn and never persisted.
type Score struct {
	Recency    float64
	Entity     float64
	Intent     float64
	Business   float64
	Engagement float64
	Overall    float64
	Tier       Tier
	Reasons    []string
}

// Context is the per-turn input bundle the scorer evaluates against,
// constructed fresh each turn from session state.
type Context struct {
	CurrentIntent        intent.Classification
	Entities             chat.EntityData
	Phase                chat.ConversationPhase
	LeadScore            int
	MaxRetentionMessages int
}

// DefaultContext is the relevance context used before any intent has
// been classified for the session.
func DefaultContext(maxRetentionMessages int) *Context {
	return &Context{
		CurrentIntent:        intent.Unknown(),
		Entities:             chat.EntityData{},
		Phase:                chat.PhaseDiscovery,
		LeadScore:            0,
		MaxRetentionMessages: maxRetentionMessages,
	}
}

// ScoredMessage pairs a message with its relevance score.
type ScoredMessage struct {
	Message chat.Message
	Score   Score
}

// Recommendation says which messages to keep verbatim and which to hand
// to compression. Retain and Compress partition the scored set.
type Recommendation struct {
	ShouldCompress bool
	Retain         []chat.Message
	Compress       []chat.Message
}

// PrioritizedMessages buckets every scored message into exactly one tier
// and carries the retention recommendation.
type PrioritizedMessages struct {
	Critical       []ScoredMessage
	High           []ScoredMessage
	Medium         []ScoredMessage
	Low            []ScoredMessage
	AverageScore   float64
	Recommendation Recommendation
}

// Total returns the number of bucketed messages.
func (p *PrioritizedMessages) Total() int {
	return len(p.Critical) + len(p.High) + len(p.Medium) + len(p.Low)
}

func tierFor(overall float64) Tier {
	switch {
	case overall >= tierCriticalThreshold:
		return TierCritical
	case overall >= tierHighThreshold:
		return TierHigh
	case overall >= tierMediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}
