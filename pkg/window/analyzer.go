// Package window owns the token side of prompt assembly: analyzing the
// token cost of a message window, deciding whether to compress it, and
// orchestrating both into the per-turn context window result.
package window

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/kbrapp1/test-app-1-sub014/pkg/chat"
	"github.com/kbrapp1/test-app-1-sub014/pkg/logx"
	"github.com/kbrapp1/test-app-1-sub014/pkg/tokens"
)

// Token-count cache capacity. Oldest entry is evicted on overflow.
const tokenCacheCapacity = 100

// Summary field names tried, in order, when extracting text from a
// structured summary object.
const (
	summaryFieldFull     = "fullSummary"
	summaryFieldOverview = "overview"
)

// TokenAnalysis is the token cost breakdown of a message window plus an
// optional existing summary. TotalTokens = MessageTokens + SummaryTokens.
type TokenAnalysis struct {
	MessageTokens int
	SummaryTokens int
	TotalTokens   int
	SummaryText   string
}

// Analyzer computes token usage with a small bounded cache keyed by a
// digest of message ids and content lengths. The cache belongs to one
// analyzer instance; eviction is a read-check-write sequence, so shared
// instances go through the mutex.
type Analyzer struct {
	counter tokens.Counter
	logger  *logx.Logger

	mu         sync.Mutex
	cache      map[uint64]int
	cacheOrder []uint64
}

// NewAnalyzer creates an analyzer using the given token counter.
func NewAnalyzer(counter tokens.Counter) *Analyzer {
	return &Analyzer{
		counter: counter,
		logger:  logx.NewLogger("window"),
		cache:   make(map[uint64]int, tokenCacheCapacity),
	}
}

// Analyze counts tokens for the message window and the extracted summary
// text. Counter failures degrade to the character-based estimate; this
// method never fails.
func (a *Analyzer) Analyze(messages []chat.Message, existingSummary any) TokenAnalysis {
	summaryText := ExtractSummaryText(existingSummary)

	analysis := TokenAnalysis{
		MessageTokens: a.countMessages(messages),
		SummaryTokens: a.countText(summaryText),
		SummaryText:   summaryText,
	}
	analysis.TotalTokens = analysis.MessageTokens + analysis.SummaryTokens
	return analysis
}

func (a *Analyzer) countMessages(messages []chat.Message) int {
	if len(messages) == 0 {
		return 0
	}

	key := windowDigest(messages)

	a.mu.Lock()
	if cached, ok := a.cache[key]; ok {
		a.mu.Unlock()
		return cached
	}
	a.mu.Unlock()

	count, err := a.counter.CountMessages(messages)
	if err != nil {
		a.logger.Warn("token counter failed for %d messages, using character estimate: %v", len(messages), err)
		count = tokens.EstimateMessages(messages)
	}

	a.mu.Lock()
	a.store(key, count)
	a.mu.Unlock()
	return count
}

func (a *Analyzer) countText(text string) int {
	if text == "" {
		return 0
	}
	count, err := a.counter.CountText(text)
	if err != nil {
		a.logger.Warn("token counter failed for summary text, using character estimate: %v", err)
		return tokens.Estimate(text)
	}
	return count
}

// store inserts a cache entry, evicting the oldest on overflow.
// Caller holds a.mu.
func (a *Analyzer) store(key uint64, count int) {
	if _, exists := a.cache[key]; exists {
		a.cache[key] = count
		return
	}
	if len(a.cache) >= tokenCacheCapacity {
		oldest := a.cacheOrder[0]
		a.cacheOrder = a.cacheOrder[1:]
		delete(a.cache, oldest)
	}
	a.cache[key] = count
	a.cacheOrder = append(a.cacheOrder, key)
}

// windowDigest hashes message ids and content lengths; an unchanged
// window hits the cache without re-counting.
func windowDigest(messages []chat.Message) uint64 {
	h := fnv.New64a()
	for _, m := range messages {
		fmt.Fprintf(h, "%s:%d;", m.ID, len(m.Content))
	}
	return h.Sum64()
}

// ExtractSummaryText pulls summary text out of whatever shape the
// existing summary arrives in: plain text, a structured object with a
// canonical full-summary field, an overview field, any non-empty string
// field, or as a last resort its JSON serialization.
func ExtractSummaryText(summary any) string {
	switch v := summary.(type) {
	case nil:
		return ""
	case string:
		return v
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return ""
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		// Not an object (e.g. a number or array): fall back to JSON text.
		return string(raw)
	}

	if text, ok := fields[summaryFieldFull].(string); ok && text != "" {
		return text
	}
	if text, ok := fields[summaryFieldOverview].(string); ok && text != "" {
		return text
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if text, ok := fields[k].(string); ok && text != "" {
			return text
		}
	}

	return string(raw)
}
