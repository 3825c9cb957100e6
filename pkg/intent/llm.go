package intent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
)

const classifierMaxReplyTokens = 32

// classifierSystemPrompt instructs the model to answer with exactly
// "<label>|<confidence>" from the fixed taxonomy.
func classifierSystemPrompt(cfg chat.BotConfig) string {
	labels := make([]string, 0, len(labelCategories))
	for label := range labelCategories {
		labels = append(labels, label)
	}
	return fmt.Sprintf(
		"You classify visitor messages for the %s chatbot of %s. "+
			"Answer with exactly one line: <label>|<confidence between 0 and 1>. "+
			"Valid labels: %s, unknown.",
		cfg.BotName, cfg.CompanyName, strings.Join(labels, ", "))
}

func classifierInput(messageText string, recent []chat.Message) string {
	var b strings.Builder
	start := len(recent) - classifierContextMessages
	if start < 0 {
		start = 0
	}
	for _, m := range recent[start:] {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	fmt.Fprintf(&b, "Classify this message: %s", messageText)
	return b.String()
}

// parseClassifierReply parses "<label>|<confidence>" model output.
func parseClassifierReply(reply string) (Classification, error) {
	line := strings.TrimSpace(strings.SplitN(strings.TrimSpace(reply), "\n", 2)[0])
	parts := strings.SplitN(line, "|", 2)
	label := strings.ToLower(strings.TrimSpace(parts[0]))
	if label == "" {
		return Classification{}, fmt.Errorf("empty classifier reply %q", reply)
	}
	if CategoryOf(label) == CategoryUnknown && label != "unknown" {
		return Classification{}, fmt.Errorf("classifier returned unknown label %q", label)
	}

	confidence := 0.5
	if len(parts) == 2 {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err == nil && parsed >= 0 && parsed <= 1 {
			confidence = parsed
		}
	}
	return Classification{Primary: label, Confidence: confidence}, nil
}

// OpenAIClassifier classifies intents with the OpenAI Responses API.
type OpenAIClassifier struct {
	client openai.Client
	model  string
}

// NewOpenAIClassifier creates a classifier backed by the given OpenAI model.
func NewOpenAIClassifier(apiKey, model string) *OpenAIClassifier {
	return &OpenAIClassifier{
		client: openai.NewClient(openaiopt.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Classify implements Classifier.
func (o *OpenAIClassifier) Classify(ctx context.Context, messageText string, recent []chat.Message, cfg chat.BotConfig) (Classification, error) {
	input := classifierSystemPrompt(cfg) + "\n\n" + classifierInput(messageText, recent)

	resp, err := o.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(classifierMaxReplyTokens),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(input)},
	})
	if err != nil {
		return Classification{}, fmt.Errorf("OpenAI intent classification failed: %w", err)
	}
	if resp == nil {
		return Classification{}, fmt.Errorf("empty response from OpenAI intent classification")
	}

	return parseClassifierReply(resp.OutputText())
}

// AnthropicClassifier classifies intents with the Anthropic Messages API.
type AnthropicClassifier struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicClassifier creates a classifier backed by the given Claude model.
func NewAnthropicClassifier(apiKey, model string) *AnthropicClassifier {
	return &AnthropicClassifier{
		client: anthropic.NewClient(anthropicopt.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}
}

// Classify implements Classifier.
func (a *AnthropicClassifier) Classify(ctx context.Context, messageText string, recent []chat.Message, cfg chat.BotConfig) (Classification, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: classifierMaxReplyTokens,
		System: []anthropic.TextBlockParam{{
			Text: classifierSystemPrompt(cfg),
			Type: "text",
		}},
		Messages: []anthropic.MessageParam{{
			Role:    anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(classifierInput(messageText, recent))},
		}},
	})
	if err != nil {
		return Classification{}, fmt.Errorf("Anthropic intent classification failed: %w", err)
	}
	if resp == nil || len(resp.Content) == 0 {
		return Classification{}, fmt.Errorf("empty response from Anthropic intent classification")
	}

	var reply string
	for i := range resp.Content {
		block := &resp.Content[i]
		if block.Type == "text" {
			reply += block.AsText().Text
		}
	}
	return parseClassifierReply(reply)
}
