package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/makersrow/suggest/internal/domain"
)

// UniqueSuffix returns a short unique string for generating non-conflicting test data.
func UniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedPhrase inserts a search phrase with the given frequency and last-used
// timestamp. Returns the filled domain.SearchPhrase.
func SeedPhrase(t *testing.T, pool *pgxpool.Pool, phrase string, frequency int, lastUsed time.Time) domain.SearchPhrase {
	t.Helper()
	ctx := context.Background()

	p := domain.SearchPhrase{
		Phrase:    phrase,
		Type:      domain.PhraseTypeUserSearch,
		Frequency: frequency,
		LastUsed:  lastUsed.UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO search_phrases (phrase, type, frequency, last_used)
		 VALUES ($1, $2, $3, $4)`,
		p.Phrase, string(p.Type), p.Frequency, p.LastUsed,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedPhrase insert: %v", err)
	}

	return p
}

// ProductSpec describes the optional fields of a seeded product. The zero
// value produces an active product with a name and no sale price.
type ProductSpec struct {
	Name           *string // nil = NULL name
	Category       string
	PriceCents     int64
	SalePriceCents *int64
	ThumbnailURL   *string
	Keywords       []string
	Variations     []string
	Synonyms       []string
	Active         bool
	CreatedAt      time.Time
}

// SeedProduct inserts a product row and returns its generated ID.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, spec ProductSpec) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	id := uuid.New()
	slug := "product-" + UniqueSuffix()
	if spec.CreatedAt.IsZero() {
		spec.CreatedAt = time.Now().UTC()
	}
	if spec.Keywords == nil {
		spec.Keywords = []string{}
	}
	if spec.Variations == nil {
		spec.Variations = []string{}
	}
	if spec.Synonyms == nil {
		spec.Synonyms = []string{}
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO products (id, name, slug, category, price_cents, sale_price_cents,
		                       thumbnail_url, keywords, variations, synonyms, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, spec.Name, slug, spec.Category, spec.PriceCents, spec.SalePriceCents,
		spec.ThumbnailURL, spec.Keywords, spec.Variations, spec.Synonyms, spec.Active, spec.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedProduct insert: %v", err)
	}

	return id
}
