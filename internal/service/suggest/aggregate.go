package suggest

import (
	"sort"

	"github.com/makersrow/suggest/internal/domain"
)

// Field priority penalties. A keyword, variation, or synonym hit can
// never outrank an equally good title hit.
const (
	penaltyKeyword   = 5
	penaltyVariation = 10
	penaltySynonym   = 15
)

// productMatch is one catalog entry's best-scoring field against a query.
type productMatch struct {
	entry   domain.CatalogEntry
	matched string
	score   int
	match   domain.MatchType
	source  domain.MatchSource
}

// bestProductMatches scores every catalog entry against the query and
// keeps at most one match per product: the best field after penalties,
// with earlier fields winning ties. Products whose best score is not
// positive are dropped. The result is sorted by score descending; ties
// preserve catalog encounter order.
func bestProductMatches(entries []domain.CatalogEntry, query string) []productMatch {
	matches := make([]productMatch, 0, len(entries))

	for _, entry := range entries {
		if best, ok := bestFieldMatch(entry, query); ok {
			matches = append(matches, best)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	return matches
}

// bestFieldMatch evaluates name, keywords, variations, and synonyms in
// priority order and keeps the single highest penalized score. A product
// with none of the optional fields is scored on its title alone.
func bestFieldMatch(entry domain.CatalogEntry, query string) (productMatch, bool) {
	best := productMatch{entry: entry}

	consider := func(text string, penalty int, source domain.MatchSource) {
		res := Match(text, query)
		if !res.OK {
			return
		}
		score := res.Score - penalty
		if score > best.score {
			best.matched = text
			best.score = score
			best.match = res.Type
			best.source = source
		}
	}

	consider(entry.Name, 0, domain.SourceTitle)
	for _, kw := range entry.Keywords {
		consider(kw, penaltyKeyword, domain.SourceKeyword)
	}
	for _, v := range entry.Variations {
		consider(v, penaltyVariation, domain.SourceVariation)
	}
	for _, syn := range entry.Synonyms {
		consider(syn, penaltySynonym, domain.SourceSynonym)
	}

	if best.score <= 0 {
		return productMatch{}, false
	}
	return best, true
}

// decorate turns a scored match into the transport-ready suggestion,
// attaching formatted prices, category, and thumbnail.
func (s *Service) decorate(m productMatch) domain.ProductSuggestion {
	details := domain.ProductDetails{
		Slug:      m.entry.Slug,
		Price:     s.prices.Format(m.entry.PriceCents),
		Category:  m.entry.Category,
		Thumbnail: m.entry.ThumbnailURL,
	}
	if m.entry.SalePriceCents != nil {
		sale := s.prices.Format(*m.entry.SalePriceCents)
		details.SalePrice = &sale
	}

	return domain.ProductSuggestion{
		Phrase:      m.entry.DisplayName(),
		MatchedText: m.matched,
		Match:       m.match,
		Score:       m.score,
		Source:      m.source,
		ProductID:   m.entry.ID,
		Details:     details,
	}
}
