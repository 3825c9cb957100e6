package relevance

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
	"github.com/kbrapp1/test-app-1-sub014/pkg/intent"
)

func TestPrioritizeValidation(t *testing.T) {
	p := NewPrioritizer()
	rc := DefaultContext(5)

	_, err := p.Prioritize(nil, rc)
	var vErr *chat.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "empty_message_list", vErr.Rule)

	messages := []chat.Message{chat.NewMessage(chat.RoleUser, "hi")}
	_, err = p.Prioritize(messages, nil)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "missing_relevance_context", vErr.Rule)

	_, err = p.Prioritize(messages, DefaultContext(0))
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "invalid_max_retention", vErr.Rule)
}

func TestPrioritizeBucketsPartitionInput(t *testing.T) {
	p := NewPrioritizer()
	rc := &Context{
		CurrentIntent:        intent.Classification{Primary: "pricing_inquiry", Confidence: 0.9},
		Entities:             chat.EntityData{"budget": "$2000"},
		Phase:                chat.PhaseQualification,
		LeadScore:            75,
		MaxRetentionMessages: 20,
	}

	var messages []chat.Message
	for i := 0; i < 8; i++ {
		messages = append(messages, chat.NewMessage(chat.RoleUser, fmt.Sprintf("casual note %d", i)))
	}
	messages = append(messages, chat.NewMessage(chat.RoleUser, "Our budget is $2000, what is the pricing plan? We need a solution!"))

	result, err := p.Prioritize(messages, rc)
	require.NoError(t, err)

	// Every message lands in exactly one bucket.
	assert.Equal(t, len(messages), result.Total())
	assert.Greater(t, result.AverageScore, 0.0)

	// No compression below the retention bound: everything retained.
	assert.False(t, result.Recommendation.ShouldCompress)
	assert.Len(t, result.Recommendation.Retain, len(messages))
	assert.Empty(t, result.Recommendation.Compress)
}

func TestPrioritizeCompressionRecommendation(t *testing.T) {
	p := NewPrioritizer()
	rc := &Context{
		CurrentIntent:        intent.Classification{Primary: "pricing_inquiry", Confidence: 0.9},
		Entities:             chat.EntityData{"budget": "$2000"},
		Phase:                chat.PhaseQualification,
		LeadScore:            75,
		MaxRetentionMessages: 4,
	}

	var messages []chat.Message
	for i := 0; i < 16; i++ {
		messages = append(messages, chat.NewMessage(chat.RoleBot, "ok"))
	}
	// Four strong business messages that must out-rank the filler.
	for i := 0; i < 4; i++ {
		messages = append(messages, chat.NewMessage(chat.RoleUser,
			fmt.Sprintf("Our budget is $2000 and the pricing plan matters, what does it cost? This is message %d!", i)))
	}

	result, err := p.Prioritize(messages, rc)
	require.NoError(t, err)

	rec := result.Recommendation
	require.True(t, rec.ShouldCompress)
	assert.Len(t, rec.Retain, 4)
	assert.Len(t, rec.Compress, 16)

	// Retain and compress partition the input.
	assert.Equal(t, len(messages), len(rec.Retain)+len(rec.Compress))

	// Every retained message carries the business content.
	for _, m := range rec.Retain {
		assert.Contains(t, m.Content, "budget")
	}
}

func TestPrioritizeSortsDescending(t *testing.T) {
	p := NewPrioritizer()
	rc := &Context{
		CurrentIntent:        intent.Classification{Primary: "pricing_inquiry", Confidence: 0.9},
		Entities:             chat.EntityData{},
		Phase:                chat.PhaseDiscovery,
		LeadScore:            0,
		MaxRetentionMessages: 2,
	}

	messages := []chat.Message{
		chat.NewMessage(chat.RoleUser, "hello"),
		chat.NewMessage(chat.RoleUser, "What is the price of the enterprise plan? Our team is evaluating and the budget deadline is soon!"),
		chat.NewMessage(chat.RoleBot, "ok"),
	}

	result, err := p.Prioritize(messages, rc)
	require.NoError(t, err)

	require.True(t, result.Recommendation.ShouldCompress)
	require.Len(t, result.Recommendation.Retain, 2)
	// The business-heavy message ranks first.
	assert.Contains(t, result.Recommendation.Retain[0].Content, "price")
}
