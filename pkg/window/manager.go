package window

import (
	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
	"github.com/kbrapp1/test-app-1-sub014/pkg/logx"
	"github.com/kbrapp1/test-app-1-sub014/pkg/relevance"
	"github.com/kbrapp1/test-app-1-sub014/pkg/tokens"
)

// Cheap proxy for "tokens per message" when deriving the retention bound
// from the message token budget.
const retentionTokensPerMessage = 100

// Spec bounds one context window computation.
type Spec struct {
	// AvailableMessageTokens is the token budget for the message portion
	// of the prompt.
	AvailableMessageTokens int
}

// Result is the per-turn context window: the final (possibly compressed)
// messages, the extracted summary text, and the token usage breakdown.
type Result struct {
	Messages      []chat.Message
	SummaryText   string
	TokenUsage    TokenAnalysis
	WasCompressed bool
}

// Manager orchestrates relevance prioritization, token analysis, and the
// compression policy into one call per turn.
type Manager struct {
	prioritizer *relevance.Prioritizer
	analyzer    *Analyzer
	logger      *logx.Logger
}

// NewManager creates a window manager around the given token counter.
func NewManager(counter tokens.Counter) *Manager {
	return &Manager{
		prioritizer: relevance.NewPrioritizer(),
		analyzer:    NewAnalyzer(counter),
		logger:      logx.NewLogger("window"),
	}
}

// MessagesForContextWindow computes the retained message window for the
// turn. When rc is nil, a default context is used: unknown intent,
// discovery phase, lead score 0, and a retention bound derived from the
// token budget. An empty message list short-circuits to an all-zero
// result without invoking any sub-service.
func (m *Manager) MessagesForContextWindow(messages []chat.Message, spec Spec, rc *relevance.Context, existingSummary any) (Result, error) {
	if len(messages) == 0 {
		return Result{Messages: []chat.Message{}}, nil
	}

	if rc == nil {
		maxRetention := spec.AvailableMessageTokens / retentionTokensPerMessage
		if maxRetention < 1 {
			maxRetention = 1
		}
		rc = relevance.DefaultContext(maxRetention)
	}

	prioritized, err := m.prioritizer.Prioritize(messages, rc)
	if err != nil {
		return Result{}, err
	}

	analysis := m.analyzer.Analyze(messages, existingSummary)
	outcome := applyCompressionPolicy(messages, prioritized, analysis, spec.AvailableMessageTokens)

	final := analysis
	if outcome.WasCompressed {
		final = m.analyzer.Analyze(outcome.Messages, existingSummary)
		m.logger.Info("compressed context window: %d -> %d messages, %d -> %d tokens",
			len(messages), len(outcome.Messages), analysis.TotalTokens, final.TotalTokens)
	}

	return Result{
		Messages:      outcome.Messages,
		SummaryText:   final.SummaryText,
		TokenUsage:    final,
		WasCompressed: outcome.WasCompressed,
	}, nil
}

// AnalyzeContext exposes token analysis for callers that only need the
// usage breakdown.
func (m *Manager) AnalyzeContext(messages []chat.Message) TokenAnalysis {
	return m.analyzer.Analyze(messages, nil)
}
