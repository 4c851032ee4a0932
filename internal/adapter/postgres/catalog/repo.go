// Package catalog implements the read-only product projection the
// suggestion engine scores against. Only currently sellable products are
// projected; the snapshot provider owns memoization and refresh cadence.
package catalog

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/makersrow/suggest/internal/adapter/postgres"
	"github.com/makersrow/suggest/internal/domain"
)

// Repo provides the catalog projection backed by PostgreSQL.
type Repo struct {
	pool    *pgxpool.Pool
	builder sq.StatementBuilderType
}

// New creates a new catalog projection repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool:    pool,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// LoadActiveProjection returns the searchable-field projection of every
// active product. The whole projection is loaded in one pass; partial
// loads are never exposed.
func (r *Repo) LoadActiveProjection(ctx context.Context) ([]domain.CatalogEntry, error) {
	sql, args, err := r.projectionQuery().ToSql()
	if err != nil {
		return nil, postgres.MapError(err, "product", "projection")
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "product", "projection")
	}

	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, postgres.MapError(err, "product", "projection")
	}

	return entries, nil
}

func (r *Repo) projectionQuery() sq.SelectBuilder {
	return r.builder.
		Select(
			// name is nullable: seller consoles have shipped rows
			// without titles, the engine tolerates them.
			"id", "COALESCE(name, '') AS name", "slug", "category",
			"price_cents", "sale_price_cents", "thumbnail_url",
			"keywords", "variations", "synonyms",
		).
		From("products").
		Where(sq.Eq{"active": true}).
		OrderBy("created_at ASC")
}

func scanEntry(row pgx.CollectableRow) (domain.CatalogEntry, error) {
	var e domain.CatalogEntry
	err := row.Scan(
		&e.ID, &e.Name, &e.Slug, &e.Category,
		&e.PriceCents, &e.SalePriceCents, &e.ThumbnailURL,
		&e.Keywords, &e.Variations, &e.Synonyms,
	)
	if err != nil {
		return domain.CatalogEntry{}, err
	}
	return e, nil
}
