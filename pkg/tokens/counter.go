// Package tokens provides the token counting capability consumed by the
// context engine. Counting is injected as an interface so tests can swap
// in deterministic or failing implementations.
package tokens

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"

	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
)

// Counter counts tokens for text and messages. Implementations may fail;
// callers are expected to degrade to Estimate on error.
type Counter interface {
	CountText(text string) (int, error)
	CountMessage(message chat.Message) (int, error)
	CountMessages(messages []chat.Message) (int, error)
}

// TiktokenCounter counts tokens with a tiktoken codec. Claude and GPT
// tokenize similarly enough that GPT-4 encoding is used for all models.
type TiktokenCounter struct {
	codec tokenizer.Codec
}

// NewTiktokenCounter creates a counter for the given model name. Unknown
// models fall back to GPT-4 encoding.
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer codec for model %s: %w", model, err)
	}
	return &TiktokenCounter{codec: codec}, nil
}

// CountText returns the token count of the given text.
func (c *TiktokenCounter) CountText(text string) (int, error) {
	count, err := c.codec.Count(text)
	if err != nil {
		return 0, fmt.Errorf("token count failed: %w", err)
	}
	return count, nil
}

// CountMessage counts the tokens of a single message's content.
func (c *TiktokenCounter) CountMessage(message chat.Message) (int, error) {
	return c.CountText(message.Content)
}

// CountMessages counts the tokens of all message contents combined.
func (c *TiktokenCounter) CountMessages(messages []chat.Message) (int, error) {
	total := 0
	for _, m := range messages {
		count, err := c.CountText(m.Content)
		if err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

// Estimate approximates the token count of text as ceil(len/4). This is
// the degraded-dependency fallback and never fails.
func Estimate(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}

// EstimateMessages approximates the token count of a message list.
func EstimateMessages(messages []chat.Message) int {
	total := 0
	for _, m := range messages {
		total += Estimate(m.Content)
	}
	return total
}
