// Package engine wires the context services into a per-turn pipeline:
// intent classification, business context tracking, window management,
// module generation, budget allocation, and knowledge retrieval.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kbrapp1/test-app-1-sub014/pkg/budget"
	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
	"github.com/kbrapp1/test-app-1-sub014/pkg/config"
	"github.com/kbrapp1/test-app-1-sub014/pkg/intent"
	"github.com/kbrapp1/test-app-1-sub014/pkg/knowledge"
	"github.com/kbrapp1/test-app-1-sub014/pkg/logx"
	"github.com/kbrapp1/test-app-1-sub014/pkg/metrics"
	"github.com/kbrapp1/test-app-1-sub014/pkg/modules"
	"github.com/kbrapp1/test-app-1-sub014/pkg/persistence"
	"github.com/kbrapp1/test-app-1-sub014/pkg/relevance"
	"github.com/kbrapp1/test-app-1-sub014/pkg/tokens"
	"github.com/kbrapp1/test-app-1-sub014/pkg/window"
)

// Degraded dependency names reported in TurnResult.Degraded.
const (
	DegradedClassifier   = "intent_classifier"
	DegradedKnowledge    = "knowledge_search"
	DegradedSessionStore = "session_store"
)

const recentUserMessageLimit = 3

// TurnInput carries the state the engine needs to process one visitor
// turn. Messages must include the current user message as the last
// visible user entry.
type TurnInput struct {
	Session       chat.Session
	Business      intent.SessionBusinessContext
	Messages      []chat.Message
	Entities      chat.EntityData
	LeadScore     int
	Qualification chat.QualificationStatus
	Phase         chat.ConversationPhase
	// ExistingSummary is the compacted-history summary from earlier
	// turns, in whatever shape the caller stored it.
	ExistingSummary any
	Turn            int
}

// TurnResult is the engine's per-turn output: the updated business
// context to persist, the assembled context window, the selected
// modules, and any dependencies that degraded to a fallback.
type TurnResult struct {
	Intent     intent.Classification
	Business   intent.SessionBusinessContext
	Window     window.Result
	Modules    []modules.Module
	Allocation budget.Allocation
	Snippets   []knowledge.Snippet
	Degraded   []string
}

// SystemPrompt assembles the selected modules, summary, and knowledge
// snippets into one prompt preamble, in allocation order.
func (r TurnResult) SystemPrompt() string {
	var sections []string
	for _, m := range r.Modules {
		sections = append(sections, m.Content())
	}
	if r.Window.SummaryText != "" {
		sections = append(sections, "Earlier conversation summary: "+r.Window.SummaryText)
	}
	if len(r.Snippets) > 0 {
		var sb strings.Builder
		sb.WriteString("Relevant knowledge:")
		for _, s := range r.Snippets {
			sb.WriteString("\n- ")
			sb.WriteString(s.Title)
			sb.WriteString(": ")
			sb.WriteString(s.Content)
		}
		sections = append(sections, sb.String())
	}
	return strings.Join(sections, "\n\n")
}

// Engine is the per-turn context pipeline. Safe for concurrent use once
// constructed.
type Engine struct {
	cfg        config.Config
	classifier intent.Classifier
	fallback   *intent.KeywordClassifier
	manager    *window.Manager
	generator  *modules.Generator
	allocator  *budget.Allocator
	searcher   knowledge.Searcher
	store      *persistence.Store
	recorder   metrics.Recorder
	logger     *logx.Logger
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithSearcher overrides the knowledge searcher, typically with a
// StaticSearcher in tests.
func WithSearcher(s knowledge.Searcher) Option {
	return func(e *Engine) { e.searcher = s }
}

// WithClassifier overrides the intent classifier.
func WithClassifier(c intent.Classifier) Option {
	return func(e *Engine) { e.classifier = c }
}

// WithRecorder overrides the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// New builds an engine from configuration. Storage paths left empty in
// the config disable the corresponding dependency.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	counter, err := tokens.NewTiktokenCounter(cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token counter: %w", err)
	}

	e := &Engine{
		cfg:       cfg,
		fallback:  intent.NewKeywordClassifier(),
		manager:   window.NewManager(counter),
		generator: modules.NewGenerator(),
		allocator: budget.NewAllocator(),
		recorder:  metrics.Nop(),
		logger:    logx.NewLogger("engine"),
	}

	switch cfg.Classifier.Provider {
	case config.ClassifierOpenAI:
		e.classifier = intent.NewOpenAIClassifier(cfg.Classifier.APIKey, cfg.Classifier.Model)
	case config.ClassifierAnthropic:
		e.classifier = intent.NewAnthropicClassifier(cfg.Classifier.APIKey, cfg.Classifier.Model)
	default:
		e.classifier = e.fallback
	}

	if cfg.Metrics {
		e.recorder = metrics.NewPrometheusRecorder()
	}

	if cfg.Storage.KnowledgeDBPath != "" {
		searcher, err := knowledge.Open(cfg.Storage.KnowledgeDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open knowledge base: %w", err)
		}
		e.searcher = searcher
	}

	if cfg.Storage.SessionDBPath != "" {
		store, err := persistence.Open(cfg.Storage.SessionDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		e.store = store
	}

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Close releases the engine's storage handles.
func (e *Engine) Close() error {
	var firstErr error
	if closer, ok := e.searcher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			firstErr = err
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ProcessTurn runs the full pipeline for one visitor turn. Degraded
// dependencies never fail the turn: classification falls back to
// keywords, knowledge search is skipped, and persistence failures are
// recorded but not propagated.
func (e *Engine) ProcessTurn(ctx context.Context, in TurnInput) (TurnResult, error) {
	start := time.Now()
	result := TurnResult{}

	messageText := chat.LastUserContent(in.Messages)
	classification, degraded := e.classify(ctx, messageText, in)
	if degraded {
		result.Degraded = append(result.Degraded, DegradedClassifier)
		e.recorder.IncDegraded(DegradedClassifier)
	}
	result.Intent = classification

	messageID := lastUserMessageID(in.Messages)
	result.Business = intent.UpdateIntentHistory(in.Business, classification, messageID, in.Turn)

	rc := e.relevanceContext(classification, in)
	win, err := e.manager.MessagesForContextWindow(in.Messages, window.Spec{
		AvailableMessageTokens: e.cfg.Budgets.AvailableMessageTokens,
	}, rc, in.ExistingSummary)
	if err != nil {
		return TurnResult{}, fmt.Errorf("failed to compute context window: %w", err)
	}
	result.Window = win

	candidates := e.generator.Generate(modules.Input{
		Session:       in.Session,
		Config:        e.cfg.Bot,
		History:       in.Messages,
		Entities:      in.Entities,
		LeadScore:     in.LeadScore,
		Qualification: in.Qualification,
		Business:      result.Business,
	}, modules.DefaultOptions())

	selected, allocation, err := e.allocator.Select(candidates, e.cfg.Budgets.ModuleTokenBudget, &budget.Criteria{
		MessageCount: len(in.Messages),
		LeadScore:    in.LeadScore,
		Entities:     in.Entities,
	})
	if err != nil {
		return TurnResult{}, fmt.Errorf("failed to allocate module budget: %w", err)
	}
	result.Modules = selected
	result.Allocation = allocation

	if e.searcher != nil && result.Business.ShouldInjectKnowledgeBase(in.Turn) {
		snippets, err := e.searcher.Search(ctx, messageText, classification,
			chat.RecentUserContents(in.Messages, recentUserMessageLimit))
		if err != nil {
			e.logger.Warn("knowledge search degraded: %v", err)
			result.Degraded = append(result.Degraded, DegradedKnowledge)
			e.recorder.IncDegraded(DegradedKnowledge)
		} else {
			result.Snippets = snippets
		}
	}

	if e.store != nil {
		if err := e.store.SaveSession(ctx, in.Session, result.Business); err != nil {
			e.logger.Warn("session persistence degraded: %v", err)
			result.Degraded = append(result.Degraded, DegradedSessionStore)
			e.recorder.IncDegraded(DegradedSessionStore)
		}
	}

	e.recorder.ObserveTurn(string(result.Business.CurrentMode), time.Since(start))
	e.recorder.ObserveContextWindow(win.TokenUsage.MessageTokens, win.TokenUsage.SummaryTokens, win.WasCompressed)
	e.recorder.ObserveAllocation(allocation.TotalUsed, allocation.TotalAvailable, len(selected))

	return result, nil
}

// classify runs the configured classifier, falling back to keyword
// classification on failure. The bool reports whether the fallback ran.
func (e *Engine) classify(ctx context.Context, messageText string, in TurnInput) (intent.Classification, bool) {
	classification, err := e.classifier.Classify(ctx, messageText, in.Messages, e.cfg.Bot)
	if err == nil {
		return classification, false
	}
	e.logger.Warn("intent classification degraded: %v", err)

	classification, fallbackErr := e.fallback.Classify(ctx, messageText, in.Messages, e.cfg.Bot)
	if fallbackErr != nil {
		return intent.Unknown(), true
	}
	return classification, true
}

func (e *Engine) relevanceContext(classification intent.Classification, in TurnInput) *relevance.Context {
	maxRetention := e.cfg.Budgets.AvailableMessageTokens / 100
	if maxRetention < 1 {
		maxRetention = 1
	}

	phase := in.Phase
	if phase == "" {
		phase = chat.PhaseDiscovery
	}

	entities := in.Entities
	if entities == nil {
		entities = chat.EntityData{}
	}

	return &relevance.Context{
		CurrentIntent:        classification,
		Entities:             entities,
		Phase:                phase,
		LeadScore:            in.LeadScore,
		MaxRetentionMessages: maxRetention,
	}
}

func lastUserMessageID(messages []chat.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == chat.RoleUser {
			return messages[i].ID
		}
	}
	return ""
}
