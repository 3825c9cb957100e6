package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
)

func TestKeywordClassifier(t *testing.T) {
	classifier := NewKeywordClassifier()
	cfg := chat.BotConfig{BotName: "Ava", CompanyName: "Acme"}

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"pricing", "How much does the premium plan cost?", "pricing_inquiry"},
		{"demo", "Can I get a demo or a free trial?", "demo_request"},
		{"comparison", "How do you compare versus your main alternative?", "comparison_inquiry"},
		{"no match", "zzz qqq", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := classifier.Classify(context.Background(), tt.text, nil, cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Primary)
			if tt.expected == "unknown" {
				assert.Zero(t, result.Confidence)
			} else {
				assert.Greater(t, result.Confidence, 0.5)
				assert.LessOrEqual(t, result.Confidence, 0.95)
			}
		})
	}
}

func TestParseClassifierReply(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantLabel  string
		wantConf   float64
		expectFail bool
	}{
		{"well formed", "pricing_inquiry|0.92", "pricing_inquiry", 0.92, false},
		{"missing confidence", "product_inquiry", "product_inquiry", 0.5, false},
		{"unparseable confidence", "demo_request|high", "demo_request", 0.5, false},
		{"trailing lines", "company_inquiry|0.8\nextra reasoning", "company_inquiry", 0.8, false},
		{"unknown label", "made_up_label|0.9", "", 0, true},
		{"empty", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseClassifierReply(tt.reply)
			if tt.expectFail {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, result.Primary)
			assert.InDelta(t, tt.wantConf, result.Confidence, 1e-9)
		})
	}
}

func TestClassifierInputBoundsContext(t *testing.T) {
	var recent []chat.Message
	for i := 0; i < 10; i++ {
		recent = append(recent, chat.NewMessage(chat.RoleUser, "older"))
	}
	recent = append(recent, chat.NewMessage(chat.RoleBot, "newest"))

	input := classifierInput("current", recent)
	assert.Contains(t, input, "newest")
	assert.Contains(t, input, "Classify this message: current")
}
