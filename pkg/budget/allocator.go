// Package budget packs context modules into an available token budget by
// priority. Packing is qualitative: a higher-priority, token-expensive
// module may starve several cheaper ones.
package budget

import (
	"sort"

	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
	"github.com/kbrapp1/test-app-1-sub014/pkg/logx"
	"github.com/kbrapp1/test-app-1-sub014/pkg/modules"
)

// Early-conversation selection: conversations with fewer messages than
// this use the minimal strategy, which keeps at most this many modules.
const (
	earlyConversationMessageMax = 3
	earlyConversationModuleCap  = 3
)

// Criteria describes the conversation the allocator selects modules for.
type Criteria struct {
	MessageCount int
	LeadScore    int
	Entities     chat.EntityData
}

// Allocation reports the outcome of one budget pass. TotalUsed never
// exceeds TotalAvailable; an allocation violating that is a defect in
// the allocator, not a recoverable error.
type Allocation struct {
	TotalAvailable int
	TotalUsed      int
	Included       []modules.Type
	Excluded       []modules.Type
}

// Allocator selects modules within a token budget.
type Allocator struct {
	logger *logx.Logger
}

// NewAllocator creates a token budget allocator.
func NewAllocator() *Allocator {
	return &Allocator{logger: logx.NewLogger("allocator")}
}

// Select picks modules that fit availableTokens, ordered by effective
// priority. Early conversations delegate to the minimal strategy; all
// other conversations use the general greedy pass, which skips (never
// partially includes) any module that would overflow.
func (a *Allocator) Select(candidates []modules.Module, availableTokens int, criteria *Criteria) ([]modules.Module, Allocation, error) {
	if criteria == nil {
		return nil, Allocation{}, chat.NewValidationError("missing_criteria", "selection criteria are required", map[string]any{
			"candidates": len(candidates),
		})
	}
	if availableTokens < 0 {
		return nil, Allocation{}, chat.NewValidationError("negative_budget", "available tokens must not be negative", map[string]any{
			"available_tokens": availableTokens,
		})
	}

	ranked := rankByPriority(candidates)

	var selected []modules.Module
	if criteria.MessageCount < earlyConversationMessageMax {
		selected = selectEarlyConversation(ranked, availableTokens)
	} else {
		selected = selectGreedy(ranked, availableTokens)
	}

	allocation := buildAllocation(candidates, selected, availableTokens)
	a.logger.Debug("allocated %d/%d tokens across %d of %d modules",
		allocation.TotalUsed, allocation.TotalAvailable, len(selected), len(candidates))
	return selected, allocation, nil
}

// rankByPriority sorts descending by effective priority. The stable sort
// keeps candidate order on ties.
func rankByPriority(candidates []modules.Module) []modules.Module {
	ranked := make([]modules.Module, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EffectivePriority() > ranked[j].EffectivePriority()
	})
	return ranked
}

// selectGreedy is the general pass: accept modules in priority order
// while they fit, skip any that would overflow.
func selectGreedy(ranked []modules.Module, availableTokens int) []modules.Module {
	var selected []modules.Module
	used := 0
	for _, m := range ranked {
		if used+m.EstimatedTokens > availableTokens {
			continue
		}
		selected = append(selected, m)
		used += m.EstimatedTokens
	}
	return selected
}

// selectEarlyConversation is the minimal strategy for very early
// conversations: only the few highest-priority modules, still bounded by
// the budget. Kept separate from the greedy pass so its selection order
// cannot drift.
func selectEarlyConversation(ranked []modules.Module, availableTokens int) []modules.Module {
	var selected []modules.Module
	used := 0
	for _, m := range ranked {
		if len(selected) >= earlyConversationModuleCap {
			break
		}
		if used+m.EstimatedTokens > availableTokens {
			continue
		}
		selected = append(selected, m)
		used += m.EstimatedTokens
	}
	return selected
}

func buildAllocation(candidates, selected []modules.Module, availableTokens int) Allocation {
	allocation := Allocation{TotalAvailable: availableTokens}

	included := make(map[modules.Type]bool, len(selected))
	for _, m := range selected {
		included[m.Type] = true
		allocation.TotalUsed += m.EstimatedTokens
		allocation.Included = append(allocation.Included, m.Type)
	}
	for _, m := range candidates {
		if !included[m.Type] {
			allocation.Excluded = append(allocation.Excluded, m.Type)
		}
	}
	return allocation
}
