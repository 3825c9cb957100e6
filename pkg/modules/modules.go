// Package modules builds the candidate list of optional context modules
// that compete for the prompt's token budget: profile, lead score,
// knowledge base availability, industry, business hours, and the rest.
package modules

// Type tags the fixed enumeration of context module kinds.
type Type string

const (
	TypeUserProfile       Type = "user_profile"
	TypeCompanyContext    Type = "company_context"
	TypeConversationPhase Type = "conversation_phase"
	TypeLeadScoring       Type = "lead_scoring"
	TypeKnowledgeBase     Type = "knowledge_base"
	TypeIndustry          Type = "industry"
	TypeHistory           Type = "conversation_history"
	TypeBusinessHours     Type = "business_hours"
	TypeEngagement        Type = "engagement_optimization"
)

// Module is a candidate prompt fragment. Content is evaluated lazily,
// only if the module survives budget allocation; candidate generation
// computes cheap metadata only.
type Module struct {
	Type Type

	// Priority is the base priority weight in [0,1]. AdjustedPriority,
	// when set (> 0), takes precedence during allocation.
	Priority         float64
	AdjustedPriority float64

	// EstimatedTokens is the token cost used for budget packing.
	EstimatedTokens int

	// Relevance is a 0-100 score for diagnostics and priority tuning.
	Relevance int

	// Content produces the module's prompt text. Never call during
	// candidate generation.
	Content func() string
}

// EffectivePriority returns the adjusted priority when present, falling
// back to the base priority.
func (m Module) EffectivePriority() float64 {
	if m.AdjustedPriority > 0 {
		return m.AdjustedPriority
	}
	return m.Priority
}

// Options switches individual module types on or off. The zero value of
// each field means "include"; DefaultOptions returns all-on explicitly.
type Options struct {
	IncludeUserProfile   bool
	IncludeCompany       bool
	IncludePhase         bool
	IncludeLeadScoring   bool
	IncludeKnowledgeBase bool
	IncludeIndustry      bool
	IncludeHistory       bool
	IncludeBusinessHours bool
	IncludeEngagement    bool
}

// DefaultOptions includes every module type.
func DefaultOptions() Options {
	return Options{
		IncludeUserProfile:   true,
		IncludeCompany:       true,
		IncludePhase:         true,
		IncludeLeadScoring:   true,
		IncludeKnowledgeBase: true,
		IncludeIndustry:      true,
		IncludeHistory:       true,
		IncludeBusinessHours: true,
		IncludeEngagement:    true,
	}
}
