// Package aggregator fetches, parses and caches feeds of registered sources
// and merges them into newest-first article lists.
package aggregator

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/umputun/newsagg/pkg/domain"
	"github.com/umputun/newsagg/pkg/feed"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher

// Registry provides the configured sources
type Registry interface {
	List() []domain.Source
	ByCategory(category string) []domain.Source
	Get(id string) (domain.Source, bool)
}

// Cache stores parsed articles per source
type Cache interface {
	Get(sourceID string) ([]domain.Article, bool)
	Put(sourceID string, articles []domain.Article)
}

// Fetcher downloads a feed document as text
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ParseFunc turns a feed document into articles
type ParseFunc func(raw string) ([]domain.Article, error)

const defaultMaxWorkers = 5

// Aggregator answers article queries by source, category or for everything,
// serving fresh cache entries and fetching the rest concurrently.
type Aggregator struct {
	registry   Registry
	cache      Cache
	fetcher    Fetcher
	parse      ParseFunc
	maxWorkers int
	flight     singleflight.Group
}

// Option customizes Aggregator
type Option func(a *Aggregator)

// WithParser replaces the default feed.Parse
func WithParser(fn ParseFunc) Option {
	return func(a *Aggregator) { a.parse = fn }
}

// WithMaxWorkers limits the number of concurrent fetches in a single fan-out
func WithMaxWorkers(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxWorkers = n
		}
	}
}

// New makes an Aggregator on top of the given registry, cache and fetcher
func New(reg Registry, c Cache, fetcher Fetcher, opts ...Option) *Aggregator {
	res := &Aggregator{registry: reg, cache: c, fetcher: fetcher, parse: feed.Parse, maxWorkers: defaultMaxWorkers}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// ArticlesBySource returns articles of a single source in document order.
// A fresh cache entry is returned as is unless forceRefresh is set.
func (a *Aggregator) ArticlesBySource(ctx context.Context, id string, forceRefresh bool) ([]domain.Article, error) {
	src, ok := a.registry.Get(id)
	if !ok {
		return nil, &SourceNotFoundError{ID: id}
	}
	return a.load(ctx, src, forceRefresh)
}

// AllArticles returns articles of every registered source, newest first.
// Any failed source fails the whole call.
func (a *Aggregator) AllArticles(ctx context.Context, forceRefresh bool) ([]domain.Article, error) {
	res, err := a.collect(ctx, a.registry.List(), forceRefresh)
	if err != nil {
		return nil, &AllArticlesError{Err: err}
	}
	return res, nil
}

// ArticlesByCategory returns articles of all sources in the category, newest first.
// Unknown category gives an empty list.
func (a *Aggregator) ArticlesByCategory(ctx context.Context, category string, forceRefresh bool) ([]domain.Article, error) {
	res, err := a.collect(ctx, a.registry.ByCategory(category), forceRefresh)
	if err != nil {
		return nil, &CategoryError{Category: category, Err: err}
	}
	return res, nil
}

// ArticleBySlug returns the newest article in the category with the given slug
func (a *Aggregator) ArticleBySlug(ctx context.Context, category, slug string, forceRefresh bool) (domain.Article, error) {
	articles, err := a.ArticlesByCategory(ctx, category, forceRefresh)
	if err != nil {
		return domain.Article{}, err
	}
	for _, art := range articles {
		if art.Slug == slug {
			return art, nil
		}
	}
	return domain.Article{}, fmt.Errorf("slug %q in category %q: %w", slug, category, ErrArticleNotFound)
}

// collect loads sources concurrently and merges them. Results are gathered by source position,
// so the merged order doesn't depend on which fetch finished first.
func (a *Aggregator) collect(ctx context.Context, sources []domain.Source, forceRefresh bool) ([]domain.Article, error) {
	if len(sources) == 0 {
		return []domain.Article{}, nil
	}

	results := make([][]domain.Article, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxWorkers)
	for i, src := range sources {
		g.Go(func() error {
			articles, err := a.load(gctx, src, forceRefresh)
			if err != nil {
				return err
			}
			results[i] = articles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	res := make([]domain.Article, 0, total)
	for _, r := range results {
		res = append(res, r...)
	}
	SortByDate(res)
	return res, nil
}

// load serves a source from cache or fetches it. Concurrent non-forced misses share one fetch,
// each caller gets its own copy of the result. The shared fetch is detached from the caller's
// cancellation, a caller whose ctx is done stops waiting without failing the others.
func (a *Aggregator) load(ctx context.Context, src domain.Source, forceRefresh bool) ([]domain.Article, error) {
	if forceRefresh {
		return a.refresh(ctx, src)
	}
	if cached, ok := a.cache.Get(src.ID); ok {
		return cached, nil
	}
	ch := a.flight.DoChan(src.ID, func() (any, error) {
		return a.refresh(context.WithoutCancel(ctx), src)
	})
	select {
	case <-ctx.Done():
		return nil, &FeedLoadError{SourceID: src.ID, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]domain.Article)), nil
	}
}

// refresh fetches and parses the source and replaces its cache entry.
// On failure the existing entry is left alone.
func (a *Aggregator) refresh(ctx context.Context, src domain.Source) ([]domain.Article, error) {
	raw, err := a.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return nil, &FeedLoadError{SourceID: src.ID, Err: err}
	}
	articles, err := a.parse(raw)
	if err != nil {
		return nil, &FeedLoadError{SourceID: src.ID, Err: err}
	}
	a.cache.Put(src.ID, articles)
	return articles, nil
}

// SortByDate orders articles newest first by effective date, in place.
// Ties keep their relative order, articles without a usable date go last.
func SortByDate(articles []domain.Article) {
	type dated struct {
		ts  time.Time
		art domain.Article
	}
	items := make([]dated, len(articles))
	for i, art := range articles {
		items[i] = dated{ts: art.EffectiveDate(), art: art}
	}
	slices.SortStableFunc(items, func(x, y dated) int { return y.ts.Compare(x.ts) })
	for i := range items {
		articles[i] = items[i].art
	}
}
