package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/makersrow/suggest/internal/domain"
)

const maxSelectionBody = 4 << 10

type suggestService interface {
	GetSuggestions(ctx context.Context, prefix string) []domain.Suggestion
	LogSelection(phrase string)
}

// SuggestHandler serves the typeahead REST endpoints.
type SuggestHandler struct {
	svc suggestService
	log *slog.Logger
}

// NewSuggestHandler creates a SuggestHandler.
func NewSuggestHandler(svc suggestService, logger *slog.Logger) *SuggestHandler {
	return &SuggestHandler{
		svc: svc,
		log: logger.With("handler", "suggest"),
	}
}

// suggestionDTO is the wire shape of a single suggestion. Exactly one of
// the variant payloads is populated, discriminated by Kind.
type suggestionDTO struct {
	Kind    string      `json:"kind"`
	Phrase  string      `json:"phrase"`
	Product *productDTO `json:"product,omitempty"`
}

type productDTO struct {
	ID          string  `json:"id"`
	MatchedText string  `json:"matched_text"`
	MatchType   string  `json:"match_type"`
	Score       int     `json:"score"`
	Source      string  `json:"source"`
	Slug        string  `json:"slug"`
	Price       string  `json:"price"`
	SalePrice   *string `json:"sale_price,omitempty"`
	Category    string  `json:"category,omitempty"`
	Thumbnail   *string `json:"thumbnail,omitempty"`
}

// suggestionsResponse is the JSON envelope for GET /api/v1/suggestions.
type suggestionsResponse struct {
	Query       string          `json:"query"`
	Suggestions []suggestionDTO `json:"suggestions"`
}

// Suggestions returns the ranked suggestion page for a typed prefix.
// GET /api/v1/suggestions?q=cro
func (h *SuggestHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	page := h.svc.GetSuggestions(r.Context(), query)

	dtos := make([]suggestionDTO, 0, len(page))
	for _, s := range page {
		dtos = append(dtos, toDTO(s))
	}

	writeJSON(w, http.StatusOK, suggestionsResponse{
		Query:       query,
		Suggestions: dtos,
	})
}

// selectionRequest is the body of POST /api/v1/suggestions/selection.
type selectionRequest struct {
	Phrase string `json:"phrase"`
}

// Selection records that a shopper picked a suggestion, feeding the
// phrase back into the popularity log. Always answers 202: the write
// happens asynchronously and its outcome does not concern the client.
// POST /api/v1/suggestions/selection
func (h *SuggestHandler) Selection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	body := io.LimitReader(r.Body, maxSelectionBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Phrase == "" {
		writeError(w, http.StatusBadRequest, "phrase is required")
		return
	}

	h.svc.LogSelection(req.Phrase)
	h.log.DebugContext(r.Context(), "selection recorded", slog.String("phrase", req.Phrase))

	w.WriteHeader(http.StatusAccepted)
}

func toDTO(s domain.Suggestion) suggestionDTO {
	dto := suggestionDTO{
		Kind:   s.Kind().String(),
		Phrase: s.Label(),
	}

	if p, ok := s.(domain.ProductSuggestion); ok {
		dto.Product = &productDTO{
			ID:          p.ProductID.String(),
			MatchedText: p.MatchedText,
			MatchType:   p.Match.String(),
			Score:       p.Score,
			Source:      p.Source.String(),
			Slug:        p.Details.Slug,
			Price:       p.Details.Price,
			SalePrice:   p.Details.SalePrice,
			Category:    p.Details.Category,
			Thumbnail:   p.Details.Thumbnail,
		}
	}

	return dto
}
