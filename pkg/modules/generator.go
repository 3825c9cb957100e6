package modules

import (
	"fmt"
	"strings"

	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
	"github.com/kbrapp1/test-app-1-sub014/pkg/intent"
	"github.com/kbrapp1/test-app-1-sub014/pkg/logx"
	"github.com/kbrapp1/test-app-1-sub014/pkg/tokens"
)

// The identity module always wins the allocator's greedy ordering.
const corePersonaPriority = 1.0

// History is only worth a module once the conversation has substance.
const historyMessageGate = 3

// Knowledge base token estimate grows with FAQ count up to a ceiling.
const (
	knowledgeBaseTokens    = 200
	knowledgeTokensPerFAQ  = 25
	knowledgeTokensCeiling = 600
)

// Input carries everything candidate generation reads.
type Input struct {
	Session       chat.Session
	Config        chat.BotConfig
	History       []chat.Message
	Entities      chat.EntityData
	LeadScore     int
	Qualification chat.QualificationStatus
	Business      intent.SessionBusinessContext
}

// Generator builds candidate context modules from session state.
type Generator struct {
	logger *logx.Logger
}

// NewGenerator creates a module generator.
func NewGenerator() *Generator {
	return &Generator{logger: logx.NewLogger("modules")}
}

// Generate returns the candidate modules whose gating conditions hold.
// Each candidate carries cheap metadata only; prompt text is produced
// lazily by Content after allocation selects the module.
func (g *Generator) Generate(in Input, opts Options) []Module {
	var candidates []Module

	add := func(include bool, m Module, gate bool) {
		if include && gate {
			candidates = append(candidates, m)
		}
	}

	add(opts.IncludeCompany, g.companyContext(in), in.Config.CompanyName != "" || in.Config.BotName != "")
	add(opts.IncludeUserProfile, g.userProfile(in), in.Entities["role"] != "")
	add(opts.IncludePhase, g.conversationPhase(in), true)
	add(opts.IncludeLeadScoring, g.leadScoring(in), in.LeadScore > 0)
	add(opts.IncludeKnowledgeBase, g.knowledgeBase(in), in.Config.FAQCount > 0 || in.Business.Flags.KnowledgeBaseNeeded)
	add(opts.IncludeIndustry, g.industry(in), in.Config.Industry != "")
	add(opts.IncludeHistory, g.history(in), len(in.History) > historyMessageGate)
	add(opts.IncludeBusinessHours, g.businessHours(in), in.Config.BusinessHours != "")
	add(opts.IncludeEngagement, g.engagement(in), in.LeadScore < 30 && len(in.History) > 2)

	g.logger.Debug("generated %d candidate modules for session %s", len(candidates), in.Session.ID)
	return candidates
}

// companyContext is the identity module: core persona priority ensures
// it always ranks first in greedy allocation.
func (g *Generator) companyContext(in Input) Module {
	cfg := in.Config
	return Module{
		Type:            TypeCompanyContext,
		Priority:        corePersonaPriority,
		EstimatedTokens: tokens.Estimate(cfg.Persona) + 50,
		Relevance:       90,
		Content: func() string {
			return fmt.Sprintf("You are %s, the assistant for %s. %s",
				cfg.BotName, cfg.CompanyName, cfg.Persona)
		},
	}
}

func (g *Generator) userProfile(in Input) Module {
	entities := in.Entities
	cost := 150
	for range entities {
		cost += 20
	}
	if cost > 250 {
		cost = 250
	}

	relevance := 70
	if in.LeadScore > 50 {
		relevance = 80
	}

	return Module{
		Type:            TypeUserProfile,
		Priority:        0.8,
		EstimatedTokens: cost,
		Relevance:       relevance,
		Content: func() string {
			var parts []string
			for name, value := range entities {
				parts = append(parts, fmt.Sprintf("%s: %s", name, value))
			}
			return "Visitor profile:\n" + strings.Join(parts, "\n")
		},
	}
}

// conversationPhase relevance rises to 100 for hot leads or once a
// budget entity is on the table.
func (g *Generator) conversationPhase(in Input) Module {
	relevance := 60
	if in.LeadScore >= 80 || in.Entities["budget"] != "" {
		relevance = 100
	}

	mode := in.Business.CurrentMode
	return Module{
		Type:             TypeConversationPhase,
		Priority:         0.7,
		AdjustedPriority: 0.7 + float64(relevance-60)*0.001,
		EstimatedTokens:  80,
		Relevance:        relevance,
		Content: func() string {
			return fmt.Sprintf("Conversation mode: %s. Guide the visitor toward the next qualification step.", mode)
		},
	}
}

func (g *Generator) leadScoring(in Input) Module {
	score := in.LeadScore
	qualified := in.Qualification.Qualified
	return Module{
		Type:            TypeLeadScoring,
		Priority:        0.75,
		EstimatedTokens: 100,
		Relevance:       score,
		Content: func() string {
			status := "not yet qualified"
			if qualified {
				status = "qualified"
			}
			return fmt.Sprintf("Lead score: %d/100 (%s).", score, status)
		},
	}
}

func (g *Generator) knowledgeBase(in Input) Module {
	cost := knowledgeBaseTokens + knowledgeTokensPerFAQ*in.Config.FAQCount
	if cost > knowledgeTokensCeiling {
		cost = knowledgeTokensCeiling
	}

	relevance := 65
	priority := 0.85
	if in.Business.Flags.KnowledgeBaseNeeded {
		relevance = 85
	}

	faqCount := in.Config.FAQCount
	return Module{
		Type:            TypeKnowledgeBase,
		Priority:        priority,
		EstimatedTokens: cost,
		Relevance:       relevance,
		Content: func() string {
			return fmt.Sprintf("A knowledge base with %d FAQ entries is available; prefer grounded answers.", faqCount)
		},
	}
}

func (g *Generator) industry(in Input) Module {
	industry := in.Config.Industry
	return Module{
		Type:            TypeIndustry,
		Priority:        0.5,
		EstimatedTokens: 60,
		Relevance:       55,
		Content: func() string {
			return fmt.Sprintf("The company operates in the %s industry; use fitting terminology.", industry)
		},
	}
}

func (g *Generator) history(in Input) Module {
	recent := in.History
	cost := 80 * len(recent)
	if cost > 400 {
		cost = 400
	}

	return Module{
		Type:            TypeHistory,
		Priority:        0.9,
		EstimatedTokens: cost,
		Relevance:       75,
		Content: func() string {
			return fmt.Sprintf("The conversation spans %d prior messages; stay consistent with what was already said.", len(recent))
		},
	}
}

func (g *Generator) businessHours(in Input) Module {
	hours := in.Config.BusinessHours
	return Module{
		Type:            TypeBusinessHours,
		Priority:        0.4,
		EstimatedTokens: 50,
		Relevance:       40,
		Content: func() string {
			return fmt.Sprintf("Business hours: %s.", hours)
		},
	}
}

func (g *Generator) engagement(in Input) Module {
	return Module{
		Type:            TypeEngagement,
		Priority:        0.45,
		EstimatedTokens: 90,
		Relevance:       45,
		Content: func() string {
			return "Engagement is low so far; ask one open question to draw the visitor out."
		},
	}
}
