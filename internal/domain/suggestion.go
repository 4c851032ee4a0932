package domain

import "github.com/google/uuid"

// SuggestionKind discriminates the two suggestion variants.
type SuggestionKind string

const (
	SuggestionKindPhrase  SuggestionKind = "phrase_match"
	SuggestionKindProduct SuggestionKind = "product_match"
)

func (k SuggestionKind) String() string { return string(k) }

// MatchType is the similarity tier that produced a product match.
// Tiers are ordered: an earlier tier always implies a higher base score.
type MatchType string

const (
	MatchExact        MatchType = "exact"
	MatchStartsWith   MatchType = "starts_with"
	MatchWordBoundary MatchType = "word_boundary"
	MatchContains     MatchType = "contains"
	MatchWordStarts   MatchType = "word_starts"
	MatchFuzzy        MatchType = "fuzzy"
)

func (m MatchType) String() string { return string(m) }

// MatchSource names the product field the winning match came from.
type MatchSource string

const (
	SourceTitle     MatchSource = "title"
	SourceKeyword   MatchSource = "keyword"
	SourceVariation MatchSource = "variation"
	SourceSynonym   MatchSource = "synonym"
)

func (s MatchSource) String() string { return string(s) }

// Suggestion is one ranked typeahead suggestion. The two concrete variants
// are PhraseSuggestion and ProductSuggestion, discriminated by Kind.
type Suggestion interface {
	Kind() SuggestionKind
	Label() string
}

// PhraseSuggestion is a suggestion sourced from the search-phrase log.
type PhraseSuggestion struct {
	Phrase    string
	Frequency int
}

func (PhraseSuggestion) Kind() SuggestionKind { return SuggestionKindPhrase }

func (s PhraseSuggestion) Label() string { return s.Phrase }

// ProductDetails carries the display decoration for a product suggestion.
// Prices are pre-formatted in the configured locale and currency.
type ProductDetails struct {
	Slug      string
	Price     string
	SalePrice *string
	Category  string
	Thumbnail *string
}

// ProductSuggestion is a suggestion derived from fuzzy-scoring a catalog
// entry. Phrase is the display label (product name or placeholder);
// MatchedText is the actual field value the matcher hit, so the UI can
// highlight the true matched text even when the label is a fallback.
type ProductSuggestion struct {
	Phrase      string
	MatchedText string
	Match       MatchType
	Score       int
	Source      MatchSource
	ProductID   uuid.UUID
	Details     ProductDetails
}

func (ProductSuggestion) Kind() SuggestionKind { return SuggestionKindProduct }

func (s ProductSuggestion) Label() string { return s.Phrase }
