package chat

import (
	"time"

	"github.com/google/uuid"
)

// ConversationPhase labels where a conversation sits in the funnel.
type ConversationPhase string

const (
	PhaseDiscovery     ConversationPhase = "discovery"
	PhaseQualification ConversationPhase = "qualification"
	PhaseEvaluation    ConversationPhase = "evaluation"
	PhaseClosing       ConversationPhase = "closing"
)

// EntityData maps business entity names (budget, company, role, timeline,
// teamSize, industry, urgency, contactMethod) to the values extracted from
// the conversation so far.
type EntityData map[string]string

// Session identifies one visitor conversation.
type Session struct {
	ID        string
	ChatbotID string
	StartedAt time.Time
}

// NewSession creates a session for the given chatbot.
func NewSession(chatbotID string) Session {
	return Session{
		ID:        uuid.NewString(),
		ChatbotID: chatbotID,
		StartedAt: time.Now().UTC(),
	}
}

// BotConfig is the chatbot configuration relevant to prompt assembly.
// Persistence of the full configuration lives outside this engine.
type BotConfig struct {
	BotName       string `yaml:"bot_name"`
	CompanyName   string `yaml:"company_name"`
	Persona       string `yaml:"persona"`
	Industry      string `yaml:"industry"`
	BusinessHours string `yaml:"business_hours"`
	FAQCount      int    `yaml:"faq_count"`
}

// QualificationStatus summarizes how far lead qualification has progressed.
type QualificationStatus struct {
	Qualified       bool
	AnsweredCount   int
	RemainingCount  int
	KnowledgeNeeded bool
}
