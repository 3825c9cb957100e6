package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
	"github.com/kbrapp1/test-app-1-sub014/pkg/intent"
)

func scoringContext() *Context {
	return &Context{
		CurrentIntent: intent.Classification{Primary: "pricing_inquiry", Confidence: 0.9},
		Entities: chat.EntityData{
			"budget":  "$5000",
			"company": "Acme Corp",
			"role":    "engineering manager",
		},
		Phase:                chat.PhaseQualification,
		LeadScore:            70,
		MaxRetentionMessages: 10,
	}
}

func TestScoreMessageBoundsAndTier(t *testing.T) {
	scorer := NewScorer()
	msg := chat.NewMessage(chat.RoleUser,
		"Our budget is $5000 and I am the engineering manager at Acme Corp. What does pricing look like? We need a solution soon!")

	score, err := scorer.ScoreMessage(msg, scoringContext(), 9, 10)
	require.NoError(t, err)

	for name, v := range map[string]float64{
		"recency":    score.Recency,
		"entity":     score.Entity,
		"intent":     score.Intent,
		"business":   score.Business,
		"engagement": score.Engagement,
		"overall":    score.Overall,
	} {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 1.0, name)
	}

	// A loaded message like this lands in the top tiers.
	assert.GreaterOrEqual(t, score.Tier.Rank(), TierHigh.Rank())
	assert.NotEmpty(t, score.Reasons)
}

func TestScoreMessageValidation(t *testing.T) {
	scorer := NewScorer()

	_, err := scorer.ScoreMessage(chat.Message{}, scoringContext(), 0, 1)
	var vErr *chat.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "missing_message", vErr.Rule)

	msg := chat.NewMessage(chat.RoleUser, "hello")
	_, err = scorer.ScoreMessage(msg, nil, 0, 1)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "missing_relevance_context", vErr.Rule)
	assert.Equal(t, msg.ID, vErr.Context["message_id"])
}

func TestRecencyScore(t *testing.T) {
	// Most recent message scores exactly 1.0.
	assert.InDelta(t, 1.0, recencyScore(9, 10), 1e-9)
	// Single-message conversation scores 1.0.
	assert.InDelta(t, 1.0, recencyScore(0, 1), 1e-9)
	// Oldest message in a long conversation approaches 0.
	assert.Less(t, recencyScore(0, 100), 0.06)
	// Monotonically decreasing with distance.
	assert.Greater(t, recencyScore(8, 10), recencyScore(5, 10))
	assert.Greater(t, recencyScore(5, 10), recencyScore(0, 10))
}

func TestEntityScore(t *testing.T) {
	entities := chat.EntityData{
		"budget":  "$5000",
		"company": "Acme Corp",
	}

	// Single match uses the per-entity weight.
	assert.InDelta(t, 0.30, entityScore("our budget is $5000", entities), 1e-9)
	assert.InDelta(t, 0.25, entityScore("I work at acme corp", entities), 1e-9)

	// Two matches add the multi-match bonus: 0.30 + 0.25 + 0.10.
	assert.InDelta(t, 0.65, entityScore("at Acme Corp we have $5000 to spend", entities), 1e-9)

	// No match, empty entities.
	assert.Zero(t, entityScore("hello there", entities))
	assert.Zero(t, entityScore("hello there", chat.EntityData{}))
}

func TestIntentScore(t *testing.T) {
	scorer := NewScorer()

	rc := &Context{CurrentIntent: intent.Classification{Primary: "pricing_inquiry", Confidence: 0.9}}
	// Three keyword matches (price, cost, plan) plus confidence bonus.
	score := scorer.intentScore("what is the price and cost of the plan", rc)
	assert.InDelta(t, 0.8, score, 1e-9)

	// Low confidence drops the bonus.
	rc.CurrentIntent.Confidence = 0.5
	score = scorer.intentScore("what is the price and cost of the plan", rc)
	assert.InDelta(t, 0.6, score, 1e-9)

	// Unknown intent has no keyword list.
	rc.CurrentIntent = intent.Unknown()
	assert.Zero(t, scorer.intentScore("what is the price", rc))
}

func TestBusinessScoreCaps(t *testing.T) {
	rc := &Context{
		Phase:     chat.PhaseQualification,
		LeadScore: 80,
	}
	// Every pattern plus both bonuses still caps at 1.0.
	loaded := "our budget deadline problem needs a solution, the manager is evaluating"
	assert.LessOrEqual(t, businessScore(loaded, rc), 1.0)

	// Moderate lead score gets the smaller bonus only.
	rc = &Context{LeadScore: 50, Phase: chat.PhaseDiscovery}
	assert.InDelta(t, 0.1, businessScore("hello", rc), 1e-9)
}

func TestEngagementScore(t *testing.T) {
	// Short plain message scores zero.
	assert.Zero(t, engagementScore("ok"))

	// Length tier (>20 chars) plus two question marks.
	score := engagementScore("what about integrations? and support?")
	assert.InDelta(t, 0.1+0.2, score, 1e-9)

	// Question engagement caps at 0.3.
	many := "a? b? c? d? e?"
	assert.InDelta(t, 0.3, engagementScore(many), 1e-9)
}

func TestOverallIsConvexCombination(t *testing.T) {
	scorer := NewScorer()
	rc := scoringContext()
	msg := chat.NewMessage(chat.RoleUser, "We love the product! Our budget is $5000. When can we start?")

	score, err := scorer.ScoreMessage(msg, rc, 0, 1)
	require.NoError(t, err)

	expected := 0.20*score.Recency + 0.25*score.Entity + 0.20*score.Intent + 0.25*score.Business + 0.10*score.Engagement
	assert.InDelta(t, expected, score.Overall, 1e-9)
}

func TestTierThresholds(t *testing.T) {
	assert.Equal(t, TierCritical, tierFor(0.8))
	assert.Equal(t, TierCritical, tierFor(0.95))
	assert.Equal(t, TierHigh, tierFor(0.6))
	assert.Equal(t, TierHigh, tierFor(0.79))
	assert.Equal(t, TierMedium, tierFor(0.4))
	assert.Equal(t, TierLow, tierFor(0.39))
	assert.Equal(t, TierLow, tierFor(0))
}
