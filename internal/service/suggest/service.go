// Package suggest implements the typeahead search-suggestion engine: a
// TTL-cached, request-coalesced aggregator that blends the search-phrase
// log with fuzzy-scored catalog matches, plus the feedback loop that
// promotes previously chosen phrases.
package suggest

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/makersrow/suggest/internal/domain"
)

const (
	// maxSuggestions is the fixed page size of one suggestion response.
	maxSuggestions = 5

	// minPrefixLen is the shortest prefix (in runes, after trimming)
	// worth any backend work.
	minPrefixLen = 2
)

// phraseRepo is the read/write contract against the search-phrase log.
type phraseRepo interface {
	// FindByPrefix returns phrases starting with prefix, ordered by
	// frequency descending, case-insensitively, capped at limit.
	FindByPrefix(ctx context.Context, prefix string, limit int) ([]domain.SearchPhrase, error)
	// UpsertUsage atomically increments a phrase's frequency and
	// refreshes its last-used timestamp, inserting it when absent.
	UpsertUsage(ctx context.Context, phrase string) error
}

// snapshotProvider hands out the memoized catalog projection.
type snapshotProvider interface {
	Get(ctx context.Context) ([]domain.CatalogEntry, error)
}

// Options tunes the engine's caching, feedback, and formatting behavior.
// Zero values fall back to production defaults.
type Options struct {
	CacheTTL          time.Duration
	CacheSize         int
	FeedbackQueueSize int
	Locale            string
	Currency          string
}

func (o *Options) withDefaults() {
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 4096
	}
	if o.FeedbackQueueSize <= 0 {
		o.FeedbackQueueSize = 256
	}
	if o.Locale == "" {
		o.Locale = "en-US"
	}
	if o.Currency == "" {
		o.Currency = "USD"
	}
}

// Service is the suggestion engine. One long-lived instance owns the
// result cache, the in-flight coalescing group, and the feedback
// recorder; all state is process-local and best-effort across instances.
type Service struct {
	log      *slog.Logger
	phrases  phraseRepo
	snapshot snapshotProvider
	cache    *resultCache
	flight   singleflight.Group
	recorder *Recorder
	prices   *priceFormatter
}

// NewService wires the engine. Call Close on shutdown to drain the
// feedback queue.
func NewService(logger *slog.Logger, phrases phraseRepo, snapshot snapshotProvider, opts Options) *Service {
	opts.withDefaults()

	log := logger.With("service", "suggest")
	return &Service{
		log:      log,
		phrases:  phrases,
		snapshot: snapshot,
		cache:    newResultCache(opts.CacheSize, opts.CacheTTL),
		recorder: NewRecorder(log, phrases, opts.FeedbackQueueSize),
		prices:   newPriceFormatter(opts.Locale, opts.Currency),
	}
}

// Close stops the feedback recorder after draining pending selections.
func (s *Service) Close() {
	s.recorder.Close()
}

// GetSuggestions returns the ranked suggestion page for a partial query,
// at most five entries: phrase-log matches first, then fuzzy-scored
// product matches. Prefixes shorter than two runes after trimming yield
// an empty page without touching cache or backends. All backend failures
// are contained here: the caller only ever sees a (possibly empty) list.
func (s *Service) GetSuggestions(ctx context.Context, prefix string) []domain.Suggestion {
	norm := domain.NormalizePrefix(prefix)
	if utf8.RuneCountInString(norm) < minPrefixLen {
		return []domain.Suggestion{}
	}

	if page, ok := s.cache.Get(norm); ok {
		return page
	}

	// Coalesce concurrent work per normalized prefix: every caller in
	// the same window observes the result of exactly one aggregation
	// pass. The pass runs detached from any single caller's
	// cancellation — an abandoned keystroke must not starve the
	// remaining waiters.
	v, err, _ := s.flight.Do(norm, func() (any, error) {
		if page, ok := s.cache.Get(norm); ok {
			return page, nil
		}
		page, err := s.aggregate(context.WithoutCancel(ctx), norm)
		if err != nil {
			return nil, err
		}
		s.cache.Put(norm, page)
		return page, nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "suggestion aggregation failed",
			slog.String("prefix", norm),
			slog.String("error", err.Error()),
		)
		return []domain.Suggestion{}
	}

	return v.([]domain.Suggestion)
}

// aggregate performs one full aggregation pass for a normalized prefix.
func (s *Service) aggregate(ctx context.Context, norm string) ([]domain.Suggestion, error) {
	phrases, err := s.phrases.FindByPrefix(ctx, norm, maxSuggestions)
	if err != nil {
		return nil, err
	}

	page := make([]domain.Suggestion, 0, maxSuggestions)
	for _, p := range phrases {
		page = append(page, domain.PhraseSuggestion{
			Phrase:    p.Phrase,
			Frequency: p.Frequency,
		})
	}

	// A full page of phrase matches skips the catalog scan entirely to
	// bound latency.
	if len(page) >= maxSuggestions {
		return page[:maxSuggestions], nil
	}

	entries, err := s.snapshot.Get(ctx)
	if err != nil {
		return nil, err
	}

	remaining := maxSuggestions - len(page)
	for _, m := range bestProductMatches(entries, norm) {
		if remaining == 0 {
			break
		}
		page = append(page, s.decorate(m))
		remaining--
	}

	return page, nil
}

// LogSelection records a confirmed search selection, promoting the
// phrase in the log. Fire-and-forget: never blocks, never fails the
// caller. Selections shorter than the minimum prefix are ignored.
func (s *Service) LogSelection(phrase string) {
	norm := domain.NormalizePrefix(phrase)
	if utf8.RuneCountInString(norm) < minPrefixLen {
		return
	}
	s.recorder.Record(norm)
}
