package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/buddyapp/buddy/internal/domain"
)

// ArticleLibrary ties the article-search panel to the index-based
// selection and the add-to-knowledge-base action. Selection indices are
// scoped to one result list, so every new search resets them.
type ArticleLibrary struct {
	search *Panel[domain.SearchRequest, domain.SearchResult]
	add    *Panel[domain.AddArticlesRequest, domain.AddArticlesResult]

	mu        sync.Mutex
	result    *domain.SearchResult
	selection *domain.Selection
}

// NewArticleLibrary binds the library to the two backend actions.
func NewArticleLibrary(
	searchFn func(context.Context, domain.SearchRequest) (*domain.SearchResult, error),
	addFn func(context.Context, domain.AddArticlesRequest) (*domain.AddArticlesResult, error),
) *ArticleLibrary {
	return &ArticleLibrary{
		search:    NewPanel(searchFn),
		add:       NewPanel(addFn),
		selection: domain.NewSelection(0),
	}
}

// Search runs one search to completion. Success replaces the result
// list and clears any prior selection, even when the new list is empty.
func (l *ArticleLibrary) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	if err := l.search.Submit(ctx, req); err != nil {
		return nil, err
	}
	phase, result, err := l.search.Wait(ctx)
	if phase != domain.Succeeded {
		return nil, err
	}

	l.mu.Lock()
	l.result = result
	l.selection.Reset(len(result.Documents))
	l.mu.Unlock()
	return result, nil
}

// Toggle flips one index in the current selection.
func (l *ArticleLibrary) Toggle(i int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selection.Toggle(i)
}

// Selected returns the selected indices in order.
func (l *ArticleLibrary) Selected() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selection.Indices()
}

// AddSelected forwards the selected subset of the current result list
// to the vector store.
func (l *ArticleLibrary) AddSelected(ctx context.Context) (*domain.AddArticlesResult, error) {
	l.mu.Lock()
	if l.result == nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("no search result to select from")
	}
	picked := l.selection.Pick(l.result.Documents)
	req := domain.AddArticlesRequest{
		Documents:  picked,
		Topic:      l.result.Topic,
		SearchDate: l.result.SearchDate,
		TotalFound: l.result.TotalFound,
	}
	l.mu.Unlock()

	if len(picked) == 0 {
		return nil, fmt.Errorf("no articles selected")
	}

	if err := l.add.Submit(ctx, req); err != nil {
		return nil, err
	}
	phase, result, err := l.add.Wait(ctx)
	if phase != domain.Succeeded {
		return nil, err
	}
	return result, nil
}
