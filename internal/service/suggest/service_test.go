package suggest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makersrow/suggest/internal/domain"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type mockPhraseRepo struct {
	FindByPrefixFunc func(ctx context.Context, prefix string, limit int) ([]domain.SearchPhrase, error)
	UpsertUsageFunc  func(ctx context.Context, phrase string) error

	findCalls   atomic.Int64
	upsertCalls atomic.Int64
}

func (m *mockPhraseRepo) FindByPrefix(ctx context.Context, prefix string, limit int) ([]domain.SearchPhrase, error) {
	m.findCalls.Add(1)
	if m.FindByPrefixFunc == nil {
		return nil, nil
	}
	return m.FindByPrefixFunc(ctx, prefix, limit)
}

func (m *mockPhraseRepo) UpsertUsage(ctx context.Context, phrase string) error {
	m.upsertCalls.Add(1)
	if m.UpsertUsageFunc == nil {
		return nil
	}
	return m.UpsertUsageFunc(ctx, phrase)
}

type mockSnapshot struct {
	GetFunc func(ctx context.Context) ([]domain.CatalogEntry, error)

	getCalls atomic.Int64
}

func (m *mockSnapshot) Get(ctx context.Context) ([]domain.CatalogEntry, error) {
	m.getCalls.Add(1)
	if m.GetFunc == nil {
		return nil, nil
	}
	return m.GetFunc(ctx)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestService(t *testing.T, phrases *mockPhraseRepo, snapshot *mockSnapshot) *Service {
	t.Helper()

	svc := NewService(slog.Default(), phrases, snapshot, Options{})
	t.Cleanup(svc.Close)
	return svc
}

func phrasesNamed(names ...string) []domain.SearchPhrase {
	out := make([]domain.SearchPhrase, len(names))
	for i, n := range names {
		out[i] = domain.SearchPhrase{
			Phrase:    n,
			Type:      domain.PhraseTypeUserSearch,
			Frequency: 100 - i,
			LastUsed:  time.Now(),
		}
	}
	return out
}

func productNamed(name string) domain.CatalogEntry {
	return domain.CatalogEntry{
		ID:         uuid.New(),
		Name:       name,
		Slug:       domain.NormalizePrefix(name),
		Category:   "accessories",
		PriceCents: 2450,
	}
}

// ---------------------------------------------------------------------------
// Input guard
// ---------------------------------------------------------------------------

func TestGetSuggestions_ShortPrefixSkipsBackends(t *testing.T) {
	t.Parallel()

	phrases := &mockPhraseRepo{}
	snapshot := &mockSnapshot{}
	svc := newTestService(t, phrases, snapshot)

	for _, q := range []string{"", " ", "a", "  a  ", "\t"} {
		got := svc.GetSuggestions(context.Background(), q)
		assert.Empty(t, got)
	}

	assert.Zero(t, phrases.findCalls.Load(), "phrase repo must not be queried")
	assert.Zero(t, snapshot.getCalls.Load(), "catalog must not be loaded")
}

// ---------------------------------------------------------------------------
// Aggregation
// ---------------------------------------------------------------------------

func TestGetSuggestions_PageNeverExceedsFive(t *testing.T) {
	t.Parallel()

	phrases := &mockPhraseRepo{
		FindByPrefixFunc: func(_ context.Context, _ string, limit int) ([]domain.SearchPhrase, error) {
			return phrasesNamed("wool scarf", "wool hat", "wool mittens"), nil
		},
	}
	snapshot := &mockSnapshot{
		GetFunc: func(context.Context) ([]domain.CatalogEntry, error) {
			return []domain.CatalogEntry{
				productNamed("Wool Blanket"),
				productNamed("Wool Coasters"),
				productNamed("Wool Wall Hanging"),
				productNamed("Wool Dryer Balls"),
			}, nil
		},
	}
	svc := newTestService(t, phrases, snapshot)

	got := svc.GetSuggestions(context.Background(), "wool")
	require.Len(t, got, 5)

	// Phrase matches come first, then products.
	for i, s := range got {
		if i < 3 {
			assert.Equal(t, domain.SuggestionKindPhrase, s.Kind())
		} else {
			assert.Equal(t, domain.SuggestionKindProduct, s.Kind())
		}
	}
}

func TestGetSuggestions_FullPhrasePageSkipsCatalog(t *testing.T) {
	t.Parallel()

	phrases := &mockPhraseRepo{
		FindByPrefixFunc: func(context.Context, string, int) ([]domain.SearchPhrase, error) {
			return phrasesNamed("wool a", "wool b", "wool c", "wool d", "wool e"), nil
		},
	}
	snapshot := &mockSnapshot{}
	svc := newTestService(t, phrases, snapshot)

	got := svc.GetSuggestions(context.Background(), "wool")
	require.Len(t, got, 5)
	assert.Zero(t, snapshot.getCalls.Load(), "catalog scan must be skipped for a full phrase page")
}

func TestGetSuggestions_PhrasesRankBeforeHigherScoringProducts(t *testing.T) {
	t.Parallel()

	phrases := &mockPhraseRepo{
		FindByPrefixFunc: func(context.Context, string, int) ([]domain.SearchPhrase, error) {
			return []domain.SearchPhrase{
				{Phrase: "baby blanket", Type: domain.PhraseTypeUserSearch, Frequency: 12},
			}, nil
		},
	}
	snapshot := &mockSnapshot{
		GetFunc: func(context.Context) ([]domain.CatalogEntry, error) {
			// An exact title match (score 100) still lists after the phrase.
			return []domain.CatalogEntry{productNamed("baby")}, nil
		},
	}
	svc := newTestService(t, phrases, snapshot)

	got := svc.GetSuggestions(context.Background(), "baby")
	require.Len(t, got, 2)
	assert.Equal(t, domain.SuggestionKindPhrase, got[0].Kind())
	assert.Equal(t, "baby blanket", got[0].Label())
	assert.Equal(t, domain.SuggestionKindProduct, got[1].Kind())
}

func TestGetSuggestions_CrochetToteScenario(t *testing.T) {
	t.Parallel()

	phrases := &mockPhraseRepo{}
	snapshot := &mockSnapshot{
		GetFunc: func(context.Context) ([]domain.CatalogEntry, error) {
			entry := productNamed("Crochet Tote")
			entry.Keywords = []string{"crochet bag"}
			return []domain.CatalogEntry{entry}, nil
		},
	}
	svc := newTestService(t, phrases, snapshot)

	got := svc.GetSuggestions(context.Background(), "cro")
	require.Len(t, got, 1)

	prod, ok := got[0].(domain.ProductSuggestion)
	require.True(t, ok)
	assert.Equal(t, domain.MatchStartsWith, prod.Match)
	assert.Equal(t, 90, prod.Score)
	assert.Equal(t, domain.SourceTitle, prod.Source)
	assert.Equal(t, "Crochet Tote", prod.Phrase)
	assert.Equal(t, "$24.50", prod.Details.Price)
}

func TestGetSuggestions_OneCandidatePerProduct(t *testing.T) {
	t.Parallel()

	entry := productNamed("Wool Scarf")
	entry.Keywords = []string{"wool wrap", "wool shawl"}
	entry.Variations = []string{"wool scarf red", "wool scarf blue"}
	entry.Synonyms = []string{"woolen scarf"}

	phrases := &mockPhraseRepo{}
	snapshot := &mockSnapshot{
		GetFunc: func(context.Context) ([]domain.CatalogEntry, error) {
			return []domain.CatalogEntry{entry}, nil
		},
	}
	svc := newTestService(t, phrases, snapshot)

	got := svc.GetSuggestions(context.Background(), "wool")
	require.Len(t, got, 1, "every matching field collapses into one candidate")

	prod := got[0].(domain.ProductSuggestion)
	assert.Equal(t, entry.ID, prod.ProductID)
	assert.Equal(t, domain.SourceTitle, prod.Source)
}

func TestGetSuggestions_FieldPenaltiesKeepTitleAhead(t *testing.T) {
	t.Parallel()

	titled := productNamed("Felt Coasters")
	keyworded := productNamed("Table Set")
	keyworded.Keywords = []string{"felt coasters deluxe"}

	phrases := &mockPhraseRepo{}
	snapshot := &mockSnapshot{
		GetFunc: func(context.Context) ([]domain.CatalogEntry, error) {
			// Keyword product first in catalog order; the title match
			// must still outrank it (90 vs 90-5).
			return []domain.CatalogEntry{keyworded, titled}, nil
		},
	}
	svc := newTestService(t, phrases, snapshot)

	got := svc.GetSuggestions(context.Background(), "felt")
	require.Len(t, got, 2)

	first := got[0].(domain.ProductSuggestion)
	second := got[1].(domain.ProductSuggestion)
	assert.Equal(t, titled.ID, first.ProductID)
	assert.Equal(t, 90, first.Score)
	assert.Equal(t, keyworded.ID, second.ProductID)
	assert.Equal(t, 85, second.Score)
	assert.Equal(t, domain.SourceKeyword, second.Source)
}

func TestGetSuggestions_UnnamedProductFallback(t *testing.T) {
	t.Parallel()

	entry := domain.CatalogEntry{
		ID:         uuid.New(),
		Slug:       "mystery-item",
		Category:   "misc",
		PriceCents: 999,
		Keywords:   []string{"macrame hanger"},
	}

	phrases := &mockPhraseRepo{}
	snapshot := &mockSnapshot{
		GetFunc: func(context.Context) ([]domain.CatalogEntry, error) {
			return []domain.CatalogEntry{entry}, nil
		},
	}
	svc := newTestService(t, phrases, snapshot)

	got := svc.GetSuggestions(context.Background(), "macrame")
	require.Len(t, got, 1)

	prod := got[0].(domain.ProductSuggestion)
	assert.Equal(t, "Unnamed Product", prod.Phrase)
	assert.Equal(t, "macrame hanger", prod.MatchedText,
		"the true matched text rides along for UI highlighting")
	assert.Equal(t, domain.SourceKeyword, prod.Source)
}

// ---------------------------------------------------------------------------
// Degradation
// ---------------------------------------------------------------------------

func TestGetSuggestions_PhraseRepoFailureYieldsEmptyPage(t *testing.T) {
	t.Parallel()

	phrases := &mockPhraseRepo{
		FindByPrefixFunc: func(context.Context, string, int) ([]domain.SearchPhrase, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := newTestService(t, phrases, &mockSnapshot{})

	got := svc.GetSuggestions(context.Background(), "wool")
	assert.Empty(t, got)
}

func TestGetSuggestions_SnapshotFailureYieldsEmptyPage(t *testing.T) {
	t.Parallel()

	phrases := &mockPhraseRepo{
		FindByPrefixFunc: func(context.Context, string, int) ([]domain.SearchPhrase, error) {
			return nil, nil
		},
	}
	snapshot := &mockSnapshot{
		GetFunc: func(context.Context) ([]domain.CatalogEntry, error) {
			return nil, errors.New("catalog store down")
		},
	}
	svc := newTestService(t, phrases, snapshot)

	got := svc.GetSuggestions(context.Background(), "wool")
	assert.Empty(t, got)
}

// ---------------------------------------------------------------------------
// Cache and coalescing
// ---------------------------------------------------------------------------

func TestGetSuggestions_SecondCallServedFromCache(t *testing.T) {
	t.Parallel()

	phrases := &mockPhraseRepo{
		FindByPrefixFunc: func(context.Context, string, int) ([]domain.SearchPhrase, error) {
			return phrasesNamed("wool scarf"), nil
		},
	}
	snapshot := &mockSnapshot{
		GetFunc: func(context.Context) ([]domain.CatalogEntry, error) {
			return []domain.CatalogEntry{productNamed("Wool Hat")}, nil
		},
	}
	svc := newTestService(t, phrases, snapshot)

	first := svc.GetSuggestions(context.Background(), "wool")
	second := svc.GetSuggestions(context.Background(), "Wool ")

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), phrases.findCalls.Load(), "one backend pass within the TTL window")
	assert.Equal(t, int64(1), snapshot.getCalls.Load())
}

func TestGetSuggestions_ConcurrentCallersCoalesce(t *testing.T) {
	t.Parallel()

	const callers = 10

	gate := make(chan struct{})
	phrases := &mockPhraseRepo{
		FindByPrefixFunc: func(context.Context, string, int) ([]domain.SearchPhrase, error) {
			<-gate
			return phrasesNamed("pottery mug", "pottery bowl", "pottery vase", "pottery set", "pottery kit"), nil
		},
	}
	svc := newTestService(t, phrases, &mockSnapshot{})

	var wg sync.WaitGroup
	results := make([][]domain.Suggestion, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.GetSuggestions(context.Background(), "pottery")
		}(i)
	}

	// Let every caller reach the coalescing gate before the single
	// aggregation pass completes.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int64(1), phrases.findCalls.Load(), "exactly one aggregation pass")
	for i := 1; i < callers; i++ {
		assert.Equal(t, results[0], results[i])
	}
}

func TestGetSuggestions_AbandonedCallerDoesNotCancelSharedPass(t *testing.T) {
	t.Parallel()

	var sawCancel atomic.Bool
	gate := make(chan struct{})
	phrases := &mockPhraseRepo{
		FindByPrefixFunc: func(ctx context.Context, _ string, _ int) ([]domain.SearchPhrase, error) {
			<-gate
			if ctx.Err() != nil {
				sawCancel.Store(true)
			}
			return phrasesNamed("knit hat"), nil
		},
	}
	snapshot := &mockSnapshot{
		GetFunc: func(context.Context) ([]domain.CatalogEntry, error) {
			return nil, nil
		},
	}
	svc := newTestService(t, phrases, snapshot)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.GetSuggestions(ctx, "knit")
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	close(gate)
	<-done

	assert.False(t, sawCancel.Load(), "the shared pass must run detached from caller cancellation")
}

// ---------------------------------------------------------------------------
// Feedback loop
// ---------------------------------------------------------------------------

func TestLogSelection_UpsertsAsynchronously(t *testing.T) {
	t.Parallel()

	recorded := make(chan string, 1)
	phrases := &mockPhraseRepo{
		UpsertUsageFunc: func(_ context.Context, phrase string) error {
			recorded <- phrase
			return nil
		},
	}
	svc := newTestService(t, phrases, &mockSnapshot{})

	svc.LogSelection("Baby Blanket")

	select {
	case got := <-recorded:
		assert.Equal(t, "baby blanket", got)
	case <-time.After(time.Second):
		t.Fatal("selection was never recorded")
	}
}

func TestLogSelection_IgnoresShortPhrases(t *testing.T) {
	t.Parallel()

	phrases := &mockPhraseRepo{}
	svc := newTestService(t, phrases, &mockSnapshot{})

	svc.LogSelection("")
	svc.LogSelection(" a ")
	svc.Close()

	assert.Zero(t, phrases.upsertCalls.Load())
}
