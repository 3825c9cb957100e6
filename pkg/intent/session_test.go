package intent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingIntentOnFirstTurn(t *testing.T) {
	s := NewSessionBusinessContext()

	s = UpdateIntentHistory(s, Classification{Primary: "pricing_inquiry", Confidence: 0.9}, "msg-1", 1)

	assert.True(t, s.Flags.PricingDiscussed)
	assert.True(t, s.Flags.KnowledgeBaseNeeded)
	assert.True(t, s.BusinessContextEstablished)
	assert.Equal(t, ModeBusiness, s.CurrentMode)
	assert.Equal(t, "pricing_inquiry", s.LastBusinessIntent)
	assert.Equal(t, 1, s.LastBusinessTurn)
	require.Len(t, s.History, 1)
	assert.Equal(t, "msg-1", s.History[0].MessageID)
}

func TestFlagsAreSticky(t *testing.T) {
	s := NewSessionBusinessContext()
	s = UpdateIntentHistory(s, Classification{Primary: "product_inquiry", Confidence: 0.8}, "m1", 1)
	require.True(t, s.Flags.ProductInterestEstablished)

	// A long run of casual turns never clears flags or established state.
	for turn := 2; turn <= 12; turn++ {
		s = UpdateIntentHistory(s, Classification{Primary: "small_talk", Confidence: 0.7}, fmt.Sprintf("m%d", turn), turn)
		assert.True(t, s.Flags.ProductInterestEstablished, "turn %d", turn)
		assert.True(t, s.BusinessContextEstablished, "turn %d", turn)
	}
}

func TestHistoryBounded(t *testing.T) {
	s := NewSessionBusinessContext()
	for turn := 1; turn <= 40; turn++ {
		s = UpdateIntentHistory(s, Classification{Primary: "small_talk", Confidence: 0.5}, fmt.Sprintf("m%d", turn), turn)
	}

	require.Len(t, s.History, IntentHistoryCapacity)
	// Oldest entries dropped silently: the window holds the most recent turns.
	assert.Equal(t, 40-IntentHistoryCapacity+1, s.History[0].Turn)
	assert.Equal(t, 40, s.History[len(s.History)-1].Turn)
}

func TestConversationModeTransitions(t *testing.T) {
	s := NewSessionBusinessContext()
	assert.Equal(t, ModeGreeting, s.CurrentMode)

	// Casual turn before any business contact keeps greeting mode.
	s = UpdateIntentHistory(s, Classification{Primary: "greeting", Confidence: 0.9}, "m1", 1)
	assert.Equal(t, ModeGreeting, s.CurrentMode)

	// Company inquiry establishes business context.
	s = UpdateIntentHistory(s, Classification{Primary: "company_inquiry", Confidence: 0.85}, "m2", 2)
	assert.Equal(t, ModeBusiness, s.CurrentMode)
	assert.Equal(t, 2, s.Flags.LastBusinessQuestionTurn)

	// Casual follow-up with established context but no product/pricing flags.
	s = UpdateIntentHistory(s, Classification{Primary: "small_talk", Confidence: 0.7}, "m3", 3)
	assert.Equal(t, ModeCasual, s.CurrentMode)

	// Pricing turn, then casual: qualification mode.
	s = UpdateIntentHistory(s, Classification{Primary: "pricing_inquiry", Confidence: 0.9}, "m4", 4)
	assert.Equal(t, ModeBusiness, s.CurrentMode)
	s = UpdateIntentHistory(s, Classification{Primary: "thanks", Confidence: 0.8}, "m5", 5)
	assert.Equal(t, ModeQualification, s.CurrentMode)
}

func TestShouldInjectKnowledgeBase(t *testing.T) {
	s := NewSessionBusinessContext()
	assert.False(t, s.ShouldInjectKnowledgeBase(1))

	s = UpdateIntentHistory(s, Classification{Primary: "product_inquiry", Confidence: 0.9}, "m1", 1)
	assert.True(t, s.ShouldInjectKnowledgeBase(1))

	// Within 5 turns of the last business turn.
	for turn := 2; turn <= 6; turn++ {
		s = UpdateIntentHistory(s, Classification{Primary: "small_talk", Confidence: 0.5}, fmt.Sprintf("m%d", turn), turn)
	}
	assert.True(t, s.ShouldInjectKnowledgeBase(6))

	// Mode is qualification (product interest established), so injection
	// stays on even past the recency window.
	assert.True(t, s.ShouldInjectKnowledgeBase(12))
}

func TestBusinessContextStrength(t *testing.T) {
	s := NewSessionBusinessContext()
	assert.Zero(t, s.BusinessContextStrength(1))

	s = UpdateIntentHistory(s, Classification{Primary: "pricing_inquiry", Confidence: 0.9}, "m1", 1)
	assert.InDelta(t, 1.0, s.BusinessContextStrength(1), 1e-9)
	assert.InDelta(t, 0.7, s.BusinessContextStrength(3), 1e-9)

	// Decay bottoms out at the floor.
	assert.InDelta(t, 0.3, s.BusinessContextStrength(20), 1e-9)

	// A second business intent adds the repeat boost, capped at 1.0.
	s = UpdateIntentHistory(s, Classification{Primary: "product_inquiry", Confidence: 0.9}, "m2", 2)
	assert.InDelta(t, 1.0, s.BusinessContextStrength(2), 1e-9)
	assert.InDelta(t, 0.5, s.BusinessContextStrength(22), 1e-9) // floor 0.3 + boost 0.2
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		label string
		want  Category
	}{
		{"pricing_inquiry", CategoryPricing},
		{"feature_inquiry", CategoryProduct},
		{"competitor_inquiry", CategoryComparison},
		{"business_inquiry", CategoryCompany},
		{"greeting", CategoryCasual},
		{"gibberish", CategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryOf(tt.label))
		})
	}
}
