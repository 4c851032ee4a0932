// Package phrase implements the search-phrase log repository using
// PostgreSQL. Phrases are unique under case-insensitive comparison; the
// engine only ever reads prefix pages and upserts usage counters, rows
// are never deleted here.
package phrase

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/makersrow/suggest/internal/adapter/postgres"
	"github.com/makersrow/suggest/internal/domain"
)

// Repo provides phrase-log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new phrase-log repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const findByPrefixSQL = `
SELECT phrase, type, frequency, last_used
FROM search_phrases
WHERE lower(phrase) LIKE lower($1) || '%'
ORDER BY frequency DESC, last_used DESC
LIMIT $2`

// The functional unique index on lower(phrase) (see migrations) makes
// this upsert atomic under concurrent selections of the same phrase.
const upsertUsageSQL = `
INSERT INTO search_phrases (phrase, type, frequency, last_used)
VALUES ($1, 'user_search', 1, now())
ON CONFLICT (lower(phrase))
DO UPDATE SET frequency = search_phrases.frequency + 1, last_used = now()`

// FindByPrefix returns phrases starting with prefix ordered by frequency
// descending, capped at limit. The prefix is matched case-insensitively.
func (r *Repo) FindByPrefix(ctx context.Context, prefix string, limit int) ([]domain.SearchPhrase, error) {
	rows, err := r.pool.Query(ctx, findByPrefixSQL, escapeLike(prefix), limit)
	if err != nil {
		return nil, postgres.MapError(err, "search_phrase", prefix)
	}

	phrases, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SearchPhrase, error) {
		var p domain.SearchPhrase
		var typ string
		if err := row.Scan(&p.Phrase, &typ, &p.Frequency, &p.LastUsed); err != nil {
			return domain.SearchPhrase{}, err
		}
		p.Type = domain.PhraseType(typ)
		return p, nil
	})
	if err != nil {
		return nil, postgres.MapError(err, "search_phrase", prefix)
	}

	return phrases, nil
}

// UpsertUsage increments the phrase's frequency and refreshes its
// last-used timestamp, inserting the phrase as user_search when absent.
func (r *Repo) UpsertUsage(ctx context.Context, phrase string) error {
	if _, err := r.pool.Exec(ctx, upsertUsageSQL, phrase); err != nil {
		return postgres.MapError(err, "search_phrase", phrase)
	}
	return nil
}

// escapeLike neutralizes LIKE metacharacters in a user-typed prefix so
// "%" or "_" in a query match literally.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
