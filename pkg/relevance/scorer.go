package relevance

import (
	"math"
	"strings"

	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
	"github.com/kbrapp1/test-app-1-sub014/pkg/intent"
)

// Overall score weights. Raw recency is intentionally de-emphasized in
// favor of business signal.
const (
	weightRecency    = 0.20
	weightEntity     = 0.25
	weightIntent     = 0.20
	weightBusiness   = 0.25
	weightEngagement = 0.10
)

// Recency decay: the most recent message scores 1.0 and the oldest
// message in a long conversation approaches 0.
const recencyDecayRate = 3.0

// Per-entity weights for the entity-relevance dimension.
//
//nolint:gochecknoglobals // Static scoring table
var entityWeights = map[string]float64{
	"budget":        0.30,
	"company":       0.25,
	"role":          0.20,
	"timeline":      0.15,
	"teamSize":      0.10,
	"industry":      0.10,
	"urgency":       0.10,
	"contactMethod": 0.10,
}

const (
	defaultEntityWeight   = 0.10
	multiEntityMatchBonus = 0.10
)

// Intent alignment scoring.
const (
	intentKeywordWeight      = 0.2
	highConfidenceBonus      = 0.2
	highConfidenceThreshold  = 0.8
	perQuestionEngagement    = 0.1
	maxQuestionEngagement    = 0.3
	enthusiasmEngagement     = 0.2
	infoSharingEngagement    = 0.2
	leadScoreStrongBonus     = 0.2
	leadScoreModerateBonus   = 0.1
	leadScoreStrongThreshold = 60
	leadScoreModerateLevel   = 40
	qualificationPhaseBonus  = 0.15
)

// Business language pattern weights: budget, authority, timeline,
// pain-point, solution, evaluation.
//
//nolint:gochecknoglobals // Static scoring table
var businessPatterns = []struct {
	weight   float64
	keywords []string
}{
	{0.30, []string{"budget", "afford", "price range", "spend", "$"}},
	{0.25, []string{"decision", "approve", "manager", "director", "ceo", "i decide"}},
	{0.20, []string{"timeline", "deadline", "this quarter", "next month", "asap", "by the end"}},
	{0.15, []string{"problem", "issue", "struggle", "challenge", "pain"}},
	{0.10, []string{"solution", "solve", "help us", "improve", "fix"}},
	{0.15, []string{"evaluate", "considering", "looking at", "comparing", "shortlist"}},
}

//nolint:gochecknoglobals // Static scoring table
var enthusiasmMarkers = []string{"!", "great", "awesome", "love", "perfect", "excited", "amazing"}

//nolint:gochecknoglobals // Static scoring table
var infoSharingMarkers = []string{"we ", "our ", "i need", "we need", "currently", "we use", "looking for"}

// Scorer computes relevance scores for individual messages.
type Scorer struct {
	keywordsFor func(label string) []string
}

// NewScorer creates a scorer using the shared intent keyword taxonomy.
func NewScorer() *Scorer {
	return &Scorer{keywordsFor: intent.KeywordsFor}
}

// ScoreMessage scores one message against the relevance context.
// Position is the 0-based index of the message; totalCount the number of
// messages in the conversation. Fails only on absent input.
func (s *Scorer) ScoreMessage(msg chat.Message, rc *Context, position, totalCount int) (Score, error) {
	if msg.ID == "" && msg.Content == "" {
		return Score{}, chat.NewValidationError("missing_message", "message is required for relevance scoring", map[string]any{
			"position": position,
		})
	}
	if rc == nil {
		return Score{}, chat.NewValidationError("missing_relevance_context", "relevance context is required", map[string]any{
			"message_id": msg.ID,
		})
	}

	score := Score{
		Recency:    recencyScore(position, totalCount),
		Entity:     entityScore(msg.Content, rc.Entities),
		Intent:     s.intentScore(msg.Content, rc),
		Business:   businessScore(msg.Content, rc),
		Engagement: engagementScore(msg.Content),
	}
	score.Overall = weightRecency*score.Recency +
		weightEntity*score.Entity +
		weightIntent*score.Intent +
		weightBusiness*score.Business +
		weightEngagement*score.Engagement
	score.Tier = tierFor(score.Overall)
	score.Reasons = retentionReasons(score)
	return score, nil
}

// recencyScore decays exponentially over normalized distance from the
// most recent message.
func recencyScore(position, totalCount int) float64 {
	if totalCount <= 1 {
		return 1.0
	}
	distance := float64(totalCount - 1 - position)
	normalized := distance / float64(totalCount)
	return math.Exp(-recencyDecayRate * normalized)
}

// entityScore adds a fixed weight per known business entity whose value
// appears in the message, plus a bonus when more than one matches.
func entityScore(content string, entities chat.EntityData) float64 {
	lower := strings.ToLower(content)
	score := 0.0
	matches := 0

	for name, value := range entities {
		if value == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(value)) {
			weight, ok := entityWeights[name]
			if !ok {
				weight = defaultEntityWeight
			}
			score += weight
			matches++
		}
	}

	if matches > 1 {
		score += multiEntityMatchBonus * float64(matches-1)
	}
	return clamp01(score)
}

// intentScore matches message text against the keyword list for the
// current intent, with a flat bonus for high classification confidence.
func (s *Scorer) intentScore(content string, rc *Context) float64 {
	lower := strings.ToLower(content)
	score := 0.0

	for _, kw := range s.keywordsFor(rc.CurrentIntent.Primary) {
		if strings.Contains(lower, kw) {
			score += intentKeywordWeight
		}
	}
	score = clamp01(score)

	if rc.CurrentIntent.Confidence > highConfidenceThreshold {
		score += highConfidenceBonus
	}
	return clamp01(score)
}

// businessScore sums fixed weights for business language patterns, with
// bonuses for lead score and funnel phase.
func businessScore(content string, rc *Context) float64 {
	lower := strings.ToLower(content)
	score := 0.0

	for _, pattern := range businessPatterns {
		for _, kw := range pattern.keywords {
			if strings.Contains(lower, kw) {
				score += pattern.weight
				break
			}
		}
	}

	switch {
	case rc.LeadScore > leadScoreStrongThreshold:
		score += leadScoreStrongBonus
	case rc.LeadScore > leadScoreModerateLevel:
		score += leadScoreModerateBonus
	}

	if rc.Phase == chat.PhaseQualification || rc.Phase == chat.PhaseEvaluation {
		score += qualificationPhaseBonus
	}
	return clamp01(score)
}

// engagementScore rewards longer, question-rich, enthusiastic, and
// information-sharing messages.
func engagementScore(content string) float64 {
	lower := strings.ToLower(content)
	score := 0.0

	switch {
	case len(content) > 100:
		score += 0.3
	case len(content) > 50:
		score += 0.2
	case len(content) > 20:
		score += 0.1
	}

	questions := float64(strings.Count(content, "?")) * perQuestionEngagement
	if questions > maxQuestionEngagement {
		questions = maxQuestionEngagement
	}
	score += questions

	for _, marker := range enthusiasmMarkers {
		if strings.Contains(lower, marker) {
			score += enthusiasmEngagement
			break
		}
	}

	for _, marker := range infoSharingMarkers {
		if strings.Contains(lower, marker) {
			score += infoSharingEngagement
			break
		}
	}
	return clamp01(score)
}

func retentionReasons(score Score) []string {
	var reasons []string
	if score.Recency >= 0.8 {
		reasons = append(reasons, "recent message")
	}
	if score.Entity >= 0.25 {
		reasons = append(reasons, "mentions known business entities")
	}
	if score.Intent >= 0.4 {
		reasons = append(reasons, "aligned with current intent")
	}
	if score.Business >= 0.3 {
		reasons = append(reasons, "contains business signal")
	}
	if score.Engagement >= 0.5 {
		reasons = append(reasons, "high engagement")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "low relevance")
	}
	return reasons
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
