// Package knowledge provides the knowledge snippet search the engine
// injects grounded answers from. The production implementation is an
// SQLite FTS5 index; StaticSearcher is the in-memory fake for tests and
// degraded operation.
package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // registers the sqlite driver

	"github.com/kbrapp1/test-app-1-sub014/pkg/intent"
	"github.com/kbrapp1/test-app-1-sub014/pkg/logx"
)

// DefaultMaxResults bounds a search when the caller does not.
const DefaultMaxResults = 5

// Snippet is one ranked knowledge fragment.
type Snippet struct {
	ID      int64
	Title   string
	Content string
	Score   float64
}

// Searcher ranks knowledge snippets for a query in the context of the
// current intent and the visitor's recent messages. May fail; callers
// degrade to a knowledge-free turn.
type Searcher interface {
	Search(ctx context.Context, query string, currentIntent intent.Classification, recentUserMessages []string) ([]Snippet, error)
}

// SQLiteSearcher is an FTS5-backed snippet index.
type SQLiteSearcher struct {
	db     *sql.DB
	logger *logx.Logger
}

// Open opens (creating if needed) the snippet index at path. Use
// ":memory:" for an ephemeral index.
func Open(path string) (*SQLiteSearcher, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge index: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping knowledge index: %w", err)
	}

	// SQLite supports a single writer; one pooled connection also keeps
	// in-memory indexes on a single database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS snippets_fts USING fts5(title, content)
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create snippet index: %w", err)
	}

	return &SQLiteSearcher{db: db, logger: logx.NewLogger("knowledge")}, nil
}

// Close releases the underlying database.
func (s *SQLiteSearcher) Close() error {
	return s.db.Close()
}

// Add indexes one snippet.
func (s *SQLiteSearcher) Add(ctx context.Context, title, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("snippet content is required")
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO snippets_fts (title, content) VALUES (?, ?)`, title, content)
	if err != nil {
		return fmt.Errorf("failed to index snippet: %w", err)
	}
	return nil
}

// Search runs an FTS query built from the query text, the keyword list
// of the current intent, and the visitor's recent messages. Results are
// ranked by bm25.
func (s *SQLiteSearcher) Search(ctx context.Context, query string, currentIntent intent.Classification, recentUserMessages []string) ([]Snippet, error) {
	terms := searchTerms(query, currentIntent, recentUserMessages)
	if len(terms) == 0 {
		return []Snippet{}, nil
	}

	ftsQuery := strings.Join(terms, " OR ")
	rows, err := s.db.QueryContext(ctx, `
		SELECT rowid, title, content, bm25(snippets_fts)
		FROM snippets_fts
		WHERE snippets_fts MATCH ?
		ORDER BY bm25(snippets_fts)
		LIMIT ?
	`, ftsQuery, DefaultMaxResults)
	if err != nil {
		return nil, fmt.Errorf("snippet search failed: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Close in defer is safe

	var snippets []Snippet
	for rows.Next() {
		var snip Snippet
		var rank float64
		if err := rows.Scan(&snip.ID, &snip.Title, &snip.Content, &rank); err != nil {
			return nil, fmt.Errorf("failed to scan snippet: %w", err)
		}
		// bm25 ranks lower-is-better; negate so higher score = more relevant.
		snip.Score = -rank
		snippets = append(snippets, snip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snippet row iteration error: %w", err)
	}

	s.logger.Debug("knowledge search %q matched %d snippets", ftsQuery, len(snippets))
	return snippets, nil
}

// searchTerms collects quoted search terms from the query, the intent's
// keyword taxonomy, and recent user messages, deduplicated in order.
func searchTerms(query string, currentIntent intent.Classification, recentUserMessages []string) []string {
	seen := make(map[string]bool)
	var terms []string

	add := func(raw string) {
		term := strings.ToLower(strings.Trim(raw, `.,!?"':;`))
		if len(term) < 3 || seen[term] {
			return
		}
		seen[term] = true
		terms = append(terms, fmt.Sprintf("%q", term))
	}

	for _, word := range strings.Fields(query) {
		add(word)
	}
	for _, kw := range intent.KeywordsFor(currentIntent.Primary) {
		add(kw)
	}
	for _, msg := range recentUserMessages {
		for _, word := range strings.Fields(msg) {
			add(word)
		}
	}
	return terms
}

// StaticSearcher serves snippets from memory, ranked by naive term
// overlap with the query.
type StaticSearcher struct {
	Snippets []Snippet
}

// Search implements Searcher without I/O. Never fails.
func (s *StaticSearcher) Search(_ context.Context, query string, _ intent.Classification, _ []string) ([]Snippet, error) {
	words := strings.Fields(strings.ToLower(query))

	var matched []Snippet
	for _, snip := range s.Snippets {
		content := strings.ToLower(snip.Title + " " + snip.Content)
		score := 0.0
		for _, w := range words {
			if strings.Contains(content, w) {
				score++
			}
		}
		if score > 0 {
			snip.Score = score
			matched = append(matched, snip)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Score > matched[j].Score })
	if len(matched) > DefaultMaxResults {
		matched = matched[:DefaultMaxResults]
	}
	return matched, nil
}
