// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Summary is one row of the session listing.
type Summary struct {
	ID        string `json:"id" yaml:"id"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
	UpdatedAt string `json:"updated_at" yaml:"updated_at"`
	Context   string `json:"context,omitempty" yaml:"context,omitempty"`
	Turns     int    `json:"turns" yaml:"turns"`

	// FirstUtterance is the first user turn, used as a title.
	FirstUtterance string `json:"first_utterance,omitempty" yaml:"first_utterance,omitempty"`
}

// QueryOptions holds parameters for turn searches.
type QueryOptions struct {
	// Query is the full-text search string. FTS5 syntax applies when the
	// index is available; otherwise it is matched as a substring.
	Query string

	// SessionID restricts results to one session.
	SessionID string

	// Role filters by user or assistant turns.
	Role types.Role

	// Category filters by the classified category.
	Category types.Category

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.SessionID == "" && q.Role == "" && q.Category == ""
}

// TurnResult is a matching turn with its position in the session.
type TurnResult struct {
	types.Turn `yaml:",inline"`
	SessionID  string `json:"session_id" yaml:"session_id"`
	Seq        int    `json:"seq" yaml:"seq"`
}

// Sessions lists sessions, most recently updated first.
func (s *Store) Sessions(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.created_at, s.updated_at, s.context,
			(SELECT count(*) FROM turns t WHERE t.session_id = s.id),
			COALESCE((SELECT t.content FROM turns t
				WHERE t.session_id = s.id AND t.role = 'user'
				ORDER BY t.seq LIMIT 1), '')
		FROM sessions s
		ORDER BY s.updated_at DESC, s.id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.CreatedAt, &sum.UpdatedAt, &sum.Context, &sum.Turns, &sum.FirstUtterance); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Load reads a full session. It returns ErrNotFound for unknown IDs.
func (s *Store) Load(ctx context.Context, id string) (*types.Session, error) {
	var (
		sess          types.Session
		created, lang string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, context, style, language FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &created, &sess.Context, &sess.Style, &lang)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("looking up session: %w", err)
	}
	sess.CreatedAt = parseTime(created)
	sess.Language = types.Language(lang)

	turns, err := s.Search(ctx, QueryOptions{SessionID: id, MaxResults: -1})
	if err != nil {
		return nil, err
	}
	for _, t := range turns {
		sess.Turns = append(sess.Turns, t.Turn)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT author, year, title, venue, url, source_name
		FROM session_references WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("loading references: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r types.Reference
		if err := rows.Scan(&r.Author, &r.Year, &r.Title, &r.Venue, &r.URL, &r.SourceName); err != nil {
			return nil, fmt.Errorf("scanning reference: %w", err)
		}
		sess.References = append(sess.References, r)
	}
	return &sess, rows.Err()
}

// Search returns turns matching opts. Full-text queries are ranked by
// relevance; filter-only queries come back in session order. A negative
// MaxResults means no limit.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]TurnResult, error) {
	maxResults := opts.MaxResults
	if maxResults == 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		match  = ftsQuery(opts.Query)
		useFTS = match != "" && s.fts
	)

	if useFTS {
		qb.WriteString(
			`SELECT t.session_id, t.seq, t.role, t.content, t.category, t.source, t.created_at
			FROM turns_fts
			JOIN turns t ON t.rowid = turns_fts.rowid
			WHERE turns_fts MATCH ?`)
		args = append(args, match)
	} else {
		qb.WriteString(
			`SELECT t.session_id, t.seq, t.role, t.content, t.category, t.source, t.created_at
			FROM turns t
			WHERE 1=1`)
		if opts.Query != "" {
			qb.WriteString(` AND t.content LIKE ? ESCAPE '\'`)
			args = append(args, "%"+escapeLike(opts.Query)+"%")
		}
	}

	if opts.SessionID != "" {
		qb.WriteString(` AND t.session_id = ?`)
		args = append(args, opts.SessionID)
	}
	if opts.Role != "" {
		qb.WriteString(` AND t.role = ?`)
		args = append(args, string(opts.Role))
	}
	if opts.Category != "" {
		qb.WriteString(` AND t.category = ?`)
		args = append(args, string(opts.Category))
	}

	if useFTS {
		qb.WriteString(` ORDER BY turns_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY t.session_id, t.seq`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching history: %w", err)
	}
	defer rows.Close()

	var results []TurnResult
	for rows.Next() {
		var (
			r                               TurnResult
			role, category, source, created string
		)
		if err := rows.Scan(&r.SessionID, &r.Seq, &role, &r.Content, &category, &source, &created); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.Role = types.Role(role)
		r.Category = types.Category(category)
		r.Source = types.DocumentSource(source)
		r.CreatedAt = parseTime(created)
		results = append(results, r)
	}
	return results, rows.Err()
}

// ftsQuery turns free text into an FTS5 expression that cannot fail to
// parse: each word becomes a quoted string and the words are ANDed.
// Punctuation at word edges is dropped, inner punctuation such as the
// hyphen in "auto-regulación" stays inside the quotes and makes a phrase.
func ftsQuery(q string) string {
	var terms []string
	for _, tok := range strings.Fields(q) {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if tok == "" {
			continue
		}
		terms = append(terms, `"`+strings.ReplaceAll(tok, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
