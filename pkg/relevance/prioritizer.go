package relevance

import (
	"sort"

	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
	"github.com/kbrapp1/test-app-1-sub014/pkg/logx"
)

// Prioritizer scores a full conversation and produces tier buckets plus
// a retention recommendation.
type Prioritizer struct {
	scorer *Scorer
	logger *logx.Logger
}

// NewPrioritizer creates a prioritizer with a fresh scorer.
func NewPrioritizer() *Prioritizer {
	return &Prioritizer{
		scorer: NewScorer(),
		logger: logx.NewLogger("relevance"),
	}
}

// Prioritize scores every message, sorts descending by overall score,
// buckets by tier, and computes the retention recommendation bounded by
// rc.MaxRetentionMessages.
func (p *Prioritizer) Prioritize(messages []chat.Message, rc *Context) (*PrioritizedMessages, error) {
	if len(messages) == 0 {
		return nil, chat.NewValidationError("empty_message_list", "cannot prioritize an empty message list", map[string]any{
			"count": 0,
		})
	}
	if rc == nil {
		return nil, chat.NewValidationError("missing_relevance_context", "relevance context is required", map[string]any{
			"count": len(messages),
		})
	}
	if rc.MaxRetentionMessages <= 0 {
		return nil, chat.NewValidationError("invalid_max_retention", "max retention messages must be positive", map[string]any{
			"max_retention": rc.MaxRetentionMessages,
			"count":         len(messages),
		})
	}

	scored := make([]ScoredMessage, 0, len(messages))
	total := 0.0
	for i, msg := range messages {
		score, err := p.scorer.ScoreMessage(msg, rc, i, len(messages))
		if err != nil {
			return nil, err
		}
		scored = append(scored, ScoredMessage{Message: msg, Score: score})
		total += score.Overall
	}

	// Descending by overall score; stable sort keeps original order on ties.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score.Overall > scored[j].Score.Overall
	})

	result := &PrioritizedMessages{
		AverageScore: total / float64(len(scored)),
	}
	for _, sm := range scored {
		switch sm.Score.Tier {
		case TierCritical:
			result.Critical = append(result.Critical, sm)
		case TierHigh:
			result.High = append(result.High, sm)
		case TierMedium:
			result.Medium = append(result.Medium, sm)
		default:
			result.Low = append(result.Low, sm)
		}
	}

	result.Recommendation = retentionRecommendation(scored, rc.MaxRetentionMessages)
	p.logger.Debug("prioritized %d messages: %d critical, %d high, %d medium, %d low (avg %.3f)",
		len(scored), len(result.Critical), len(result.High), len(result.Medium), len(result.Low), result.AverageScore)
	return result, nil
}

func retentionRecommendation(scored []ScoredMessage, maxRetention int) Recommendation {
	if len(scored) <= maxRetention {
		retain := make([]chat.Message, len(scored))
		for i, sm := range scored {
			retain[i] = sm.Message
		}
		return Recommendation{ShouldCompress: false, Retain: retain}
	}

	retain := make([]chat.Message, 0, maxRetention)
	compress := make([]chat.Message, 0, len(scored)-maxRetention)
	for i, sm := range scored {
		if i < maxRetention {
			retain = append(retain, sm.Message)
		} else {
			compress = append(compress, sm.Message)
		}
	}
	return Recommendation{ShouldCompress: true, Retain: retain, Compress: compress}
}
