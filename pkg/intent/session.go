package intent

import "time"

// Capacity of the sliding intent history window. Older entries are
// dropped silently, never archived.
const IntentHistoryCapacity = 15

// Turns after the last business intent during which knowledge injection
// stays on.
const businessRecencyTurns = 5

// Business context strength decay parameters.
const (
	strengthDecayPerTurn = 0.15
	strengthFloor        = 0.3
	repeatIntentBoost    = 0.2
)

// ConversationMode labels the current character of the conversation.
type ConversationMode string

const (
	ModeGreeting      ConversationMode = "greeting"
	ModeBusiness      ConversationMode = "business"
	ModeCasual        ConversationMode = "casual"
	ModeQualification ConversationMode = "qualification"
)

// HistoryEntry records one classified turn.
type HistoryEntry struct {
	Turn       int       `json:"turn"`
	Primary    string    `json:"primary"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
	MessageID  string    `json:"messageId"`
}

// ContextFlags are sticky booleans: once an intent category is observed
// the corresponding flag turns on and never clears within a session.
type ContextFlags struct {
	ProductInterestEstablished bool `json:"productInterestEstablished"`
	PricingDiscussed           bool `json:"pricingDiscussed"`
	ComparisonMode             bool `json:"comparisonMode"`
	CompanyInquiryMade         bool `json:"companyInquiryMade"`
	KnowledgeBaseNeeded        bool `json:"knowledgeBaseNeeded"`
	LastBusinessQuestionTurn   int  `json:"lastBusinessQuestionTurn"`
}

// SessionBusinessContext is the session-level business memory. It is a
// value snapshot: every turn transforms the prior snapshot into a new
// one, and the caller persists it before the next turn.
type SessionBusinessContext struct {
	BusinessContextEstablished bool             `json:"businessContextEstablished"`
	LastBusinessIntent         string           `json:"lastBusinessIntent"`
	LastBusinessTurn           int              `json:"lastBusinessTurn"`
	CurrentMode                ConversationMode `json:"currentConversationMode"`
	History                    []HistoryEntry   `json:"intentHistory"`
	Flags                      ContextFlags     `json:"contextFlags"`
}

// NewSessionBusinessContext returns the initial state for a session.
func NewSessionBusinessContext() SessionBusinessContext {
	return SessionBusinessContext{CurrentMode: ModeGreeting}
}

// UpdateIntentHistory consumes one classified intent for the turn and
// returns the next session snapshot. The input snapshot is not mutated.
func UpdateIntentHistory(s SessionBusinessContext, c Classification, messageID string, turn int) SessionBusinessContext {
	next := s
	next.History = appendBounded(s.History, HistoryEntry{
		Turn:       turn,
		Primary:    c.Primary,
		Confidence: c.Confidence,
		Timestamp:  time.Now().UTC(),
		MessageID:  messageID,
	})

	switch CategoryOf(c.Primary) {
	case CategoryProduct:
		next.Flags.ProductInterestEstablished = true
		next.Flags.KnowledgeBaseNeeded = true
	case CategoryPricing:
		next.Flags.PricingDiscussed = true
		next.Flags.KnowledgeBaseNeeded = true
	case CategoryComparison:
		next.Flags.ComparisonMode = true
		next.Flags.KnowledgeBaseNeeded = true
	case CategoryCompany:
		next.Flags.CompanyInquiryMade = true
		next.Flags.KnowledgeBaseNeeded = true
		next.Flags.LastBusinessQuestionTurn = turn
	}

	isBusiness := c.IsBusiness()
	if isBusiness {
		next.LastBusinessIntent = c.Primary
		next.LastBusinessTurn = turn
	}

	// Sticky: once established, stays established for the session.
	if isBusiness || next.Flags.ProductInterestEstablished || next.Flags.CompanyInquiryMade {
		next.BusinessContextEstablished = true
	}

	next.CurrentMode = deriveMode(next, isBusiness)
	return next
}

func deriveMode(s SessionBusinessContext, currentIsBusiness bool) ConversationMode {
	switch {
	case currentIsBusiness:
		return ModeBusiness
	case s.BusinessContextEstablished && (s.Flags.ProductInterestEstablished || s.Flags.PricingDiscussed):
		return ModeQualification
	case s.BusinessContextEstablished:
		return ModeCasual
	default:
		return ModeGreeting
	}
}

func appendBounded(history []HistoryEntry, entry HistoryEntry) []HistoryEntry {
	next := make([]HistoryEntry, 0, len(history)+1)
	next = append(next, history...)
	next = append(next, entry)
	if len(next) > IntentHistoryCapacity {
		next = next[len(next)-IntentHistoryCapacity:]
	}
	return next
}

// ShouldInjectKnowledgeBase reports whether knowledge snippets should be
// injected into the prompt at the given turn.
func (s SessionBusinessContext) ShouldInjectKnowledgeBase(currentTurn int) bool {
	if s.BusinessContextEstablished && currentTurn-s.LastBusinessTurn <= businessRecencyTurns {
		return true
	}
	return s.CurrentMode == ModeBusiness || s.CurrentMode == ModeQualification
}

// BusinessContextStrength returns how strongly business context should
// weigh at the given turn. Decays by 0.15 per turn since the last
// business intent down to a 0.3 floor, boosted when the session has
// produced two or more business intents.
func (s SessionBusinessContext) BusinessContextStrength(currentTurn int) float64 {
	if !s.BusinessContextEstablished {
		return 0
	}

	turnsSince := currentTurn - s.LastBusinessTurn
	if turnsSince < 0 {
		turnsSince = 0
	}

	strength := 1.0 - strengthDecayPerTurn*float64(turnsSince)
	if strength < strengthFloor {
		strength = strengthFloor
	}

	if s.businessIntentCount() >= 2 {
		strength += repeatIntentBoost
	}
	if strength > 1.0 {
		strength = 1.0
	}
	return strength
}

func (s SessionBusinessContext) businessIntentCount() int {
	count := 0
	for _, e := range s.History {
		if (Classification{Primary: e.Primary}).IsBusiness() {
			count++
		}
	}
	return count
}
