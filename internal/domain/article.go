package domain

import (
	"slices"

	"github.com/samber/lo"
)

// Article is one paper returned by the article search.
type Article struct {
	ArxivID       string   `json:"arxiv_id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Abstract      string   `json:"abstract"`
	PublishedDate string   `json:"published_date"`
	PDFURL        string   `json:"pdf_url,omitempty"`
	BrowserURL    string   `json:"browser_url,omitempty"`
	FullText      string   `json:"full_text,omitempty"`
	Score         float64  `json:"score,omitempty"`
}

// SearchResult is the article list produced by one search call.
type SearchResult struct {
	Topic      string    `json:"topic"`
	SearchDate string    `json:"search_date"`
	TotalFound int       `json:"total_found"`
	Documents  []Article `json:"documents"`
}

// Selection tracks which entries of the current result list are marked
// for the knowledge base. Indices are scoped to one result list, so a
// fresh search must call Reset.
type Selection struct {
	picked map[int]bool
	size   int
}

// NewSelection scopes a selection to a result list of the given size.
func NewSelection(size int) *Selection {
	return &Selection{picked: make(map[int]bool), size: size}
}

// Toggle flips the selection state of one index. Out-of-range indices
// are ignored.
func (s *Selection) Toggle(i int) {
	if i < 0 || i >= s.size {
		return
	}
	if s.picked[i] {
		delete(s.picked, i)
	} else {
		s.picked[i] = true
	}
}

// Reset clears the selection, keeping the new list size.
func (s *Selection) Reset(size int) {
	s.picked = make(map[int]bool)
	s.size = size
}

// Indices returns the selected indices in ascending order.
func (s *Selection) Indices() []int {
	keys := lo.Keys(s.picked)
	slices.Sort(keys)
	return keys
}

// Count returns how many entries are selected.
func (s *Selection) Count() int { return len(s.picked) }

// Pick returns the selected subset of the given articles, preserving
// list order.
func (s *Selection) Pick(articles []Article) []Article {
	return lo.Filter(articles, func(_ Article, i int) bool {
		return s.picked[i]
	})
}
