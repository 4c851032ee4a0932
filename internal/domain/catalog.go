package domain

import "github.com/google/uuid"

// CatalogEntry is the searchable-field projection of one active product.
// It is read-only to the engine: the snapshot provider rebuilds the whole
// slice on refresh, there are no partial updates.
type CatalogEntry struct {
	ID             uuid.UUID
	Name           string
	Slug           string
	Category       string
	PriceCents     int64
	SalePriceCents *int64
	ThumbnailURL   *string
	Keywords       []string
	Variations     []string
	Synonyms       []string
}

// DisplayName returns the product name, falling back to a placeholder for
// catalog rows whose title is missing. Such rows stay matchable through
// their keywords, variations, and synonyms.
func (e CatalogEntry) DisplayName() string {
	if e.Name == "" {
		return "Unnamed Product"
	}
	return e.Name
}
