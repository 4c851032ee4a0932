package domain

import "time"

// PhraseType distinguishes phrases learned from user searches from
// system-seeded ones.
type PhraseType string

const (
	PhraseTypeUserSearch PhraseType = "user_search"
	PhraseTypeSystem     PhraseType = "system"
)

func (t PhraseType) String() string { return string(t) }

func (t PhraseType) IsValid() bool {
	switch t {
	case PhraseTypeUserSearch, PhraseTypeSystem:
		return true
	}
	return false
}

// SearchPhrase is one row of the search-phrase log: a previously searched
// phrase ranked by how often users confirmed it. Phrases are unique under
// case-insensitive comparison and are never deleted by the engine.
type SearchPhrase struct {
	Phrase    string
	Type      PhraseType
	Frequency int
	LastUsed  time.Time
}
