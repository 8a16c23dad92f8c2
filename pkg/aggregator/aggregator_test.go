package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newsagg/pkg/aggregator/mocks"
	"github.com/umputun/newsagg/pkg/cache"
	"github.com/umputun/newsagg/pkg/domain"
	"github.com/umputun/newsagg/pkg/feed"
	"github.com/umputun/newsagg/pkg/source"
)

const (
	gastronomyURL = "https://www.lemonde.fr/gastronomie/rss_full.xml"
	videogamesURL = "https://www.lemonde.fr/jeux-video/rss_full.xml"
)

var testSources = []domain.Source{
	{ID: "gastronomy", Name: "Gastronomy", URL: gastronomyURL, Category: "gastronomy"},
	{ID: "videogames", Name: "Video Games", URL: videogamesURL, Category: "videogames"},
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func rssItem(title, pubDate string) string {
	link := "https://www.lemonde.fr/" + feed.Slugify(title)
	return fmt.Sprintf("<item><title>%s</title><link>%s</link><pubDate>%s</pubDate></item>", title, link, pubDate)
}

func rssDoc(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>t</title>` +
		strings.Join(items, "") + `</channel></rss>`
}

var feeds = map[string]string{
	gastronomyURL: rssDoc(
		rssItem("Le retour du pot-au-feu", "Mon, 01 Jan 2024 10:00:00 +0000"),
		rssItem("Café à la carte!", "Wed, 03 Jan 2024 10:00:00 +0000"),
	),
	videogamesURL: rssDoc(
		rssItem("Un jeu de plateforme", "Tue, 02 Jan 2024 10:00:00 +0000"),
		rssItem("Les sorties de la semaine", "Thu, 04 Jan 2024 10:00:00 +0000"),
	),
}

func staticFetcher() *mocks.FetcherMock {
	return &mocks.FetcherMock{
		FetchFunc: func(_ context.Context, url string) (string, error) {
			doc, ok := feeds[url]
			if !ok {
				return "", fmt.Errorf("unexpected url %s", url)
			}
			return doc, nil
		},
	}
}

func newTestAggregator(fetcher Fetcher, opts ...cache.Option) (*Aggregator, *cache.Cache) {
	c := cache.New(30*time.Minute, opts...)
	return New(source.NewRegistry(testSources), c, fetcher), c
}

func titles(articles []domain.Article) []string {
	res := make([]string, 0, len(articles))
	for _, a := range articles {
		res = append(res, a.Title)
	}
	return res
}

func TestAggregator_AllArticles(t *testing.T) {
	fetcher := staticFetcher()
	agg, _ := newTestAggregator(fetcher)

	articles, err := agg.AllArticles(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Les sorties de la semaine", "Café à la carte!", "Un jeu de plateforme", "Le retour du pot-au-feu"},
		titles(articles))
	assert.Len(t, fetcher.FetchCalls(), 2)
	assert.Equal(t, "cafe-a-la-carte", articles[1].Slug)

	t.Run("second call served from cache", func(t *testing.T) {
		again, err := agg.AllArticles(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, articles, again)
		assert.Len(t, fetcher.FetchCalls(), 2)
	})

	t.Run("force refresh fetches everything", func(t *testing.T) {
		_, err := agg.AllArticles(context.Background(), true)
		require.NoError(t, err)
		assert.Len(t, fetcher.FetchCalls(), 4)
	})
}

func TestAggregator_AllArticlesEmptyRegistry(t *testing.T) {
	agg := New(source.NewRegistry(nil), cache.New(0), staticFetcher())
	articles, err := agg.AllArticles(context.Background(), false)
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)
}

func TestAggregator_AllArticlesFailure(t *testing.T) {
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(_ context.Context, url string) (string, error) {
			if url == videogamesURL {
				return "", &feed.NetworkError{URL: url, StatusCode: 503, Err: errors.New("unexpected status code: 503")}
			}
			return feeds[url], nil
		},
	}
	agg, _ := newTestAggregator(fetcher)

	articles, err := agg.AllArticles(context.Background(), false)
	require.Error(t, err)
	assert.Nil(t, articles)

	var allErr *AllArticlesError
	require.ErrorAs(t, err, &allErr)
	var loadErr *FeedLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "videogames", loadErr.SourceID)
	var netErr *feed.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, 503, netErr.StatusCode)
}

func TestAggregator_ArticlesBySource(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)}
	fetcher := staticFetcher()
	agg, c := newTestAggregator(fetcher, cache.WithClock(clock.Now))
	ctx := context.Background()

	articles, err := agg.ArticlesBySource(ctx, "gastronomy", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Le retour du pot-au-feu", "Café à la carte!"}, titles(articles), "document order")
	require.Len(t, fetcher.FetchCalls(), 1)
	assert.Equal(t, gastronomyURL, fetcher.FetchCalls()[0].URL)

	clock.Advance(29 * time.Minute)
	_, err = agg.ArticlesBySource(ctx, "gastronomy", false)
	require.NoError(t, err)
	assert.Len(t, fetcher.FetchCalls(), 1, "one fetch per freshness window")

	clock.Advance(time.Minute)
	_, err = agg.ArticlesBySource(ctx, "gastronomy", false)
	require.NoError(t, err)
	assert.Len(t, fetcher.FetchCalls(), 2, "stale entry refetched")

	e, ok := c.Entry("gastronomy")
	require.True(t, ok)
	assert.Equal(t, clock.Now(), e.Timestamp)
}

func TestAggregator_ArticlesBySourceForceRefresh(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)}
	fetcher := staticFetcher()
	agg, c := newTestAggregator(fetcher, cache.WithClock(clock.Now))
	ctx := context.Background()

	_, err := agg.ArticlesBySource(ctx, "videogames", false)
	require.NoError(t, err)

	clock.Advance(time.Minute)
	_, err = agg.ArticlesBySource(ctx, "videogames", true)
	require.NoError(t, err)
	assert.Len(t, fetcher.FetchCalls(), 2)

	e, ok := c.Entry("videogames")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 5, 12, 1, 0, 0, time.UTC), e.Timestamp, "timestamp updated on forced refresh")
}

func TestAggregator_ArticlesBySourceUnknown(t *testing.T) {
	fetcher := staticFetcher()
	agg, c := newTestAggregator(fetcher)

	_, err := agg.ArticlesBySource(context.Background(), "unknown", false)
	var notFound *SourceNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "unknown", notFound.ID)
	assert.Equal(t, 0, c.Len(), "cache untouched")
	assert.Empty(t, fetcher.FetchCalls())
}

func TestAggregator_ArticlesBySourceFailureKeepsStaleEntry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)}
	var failing atomic.Bool
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(_ context.Context, url string) (string, error) {
			if failing.Load() {
				return "", errors.New("connection refused")
			}
			return feeds[url], nil
		},
	}
	agg, c := newTestAggregator(fetcher, cache.WithClock(clock.Now))
	ctx := context.Background()

	_, err := agg.ArticlesBySource(ctx, "gastronomy", false)
	require.NoError(t, err)
	before, _ := c.Entry("gastronomy")

	failing.Store(true)
	clock.Advance(time.Hour)
	articles, err := agg.ArticlesBySource(ctx, "gastronomy", false)
	var loadErr *FeedLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "gastronomy", loadErr.SourceID)
	assert.Nil(t, articles, "stale entry is not returned")

	after, ok := c.Entry("gastronomy")
	require.True(t, ok)
	assert.Equal(t, before, after, "stale entry is not updated")
}

func TestAggregator_ParseFailure(t *testing.T) {
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(context.Context, string) (string, error) { return "<html><body>oops</body></html>", nil },
	}
	agg, c := newTestAggregator(fetcher)

	_, err := agg.ArticlesBySource(context.Background(), "gastronomy", false)
	var loadErr *FeedLoadError
	require.ErrorAs(t, err, &loadErr)
	var formatErr *feed.UnrecognizedFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, 0, c.Len())
}

func TestAggregator_CustomParser(t *testing.T) {
	parser := func(raw string) ([]domain.Article, error) {
		return []domain.Article{{Title: "custom", Link: "https://e.com/custom", Slug: "custom"}}, nil
	}
	c := cache.New(time.Minute)
	agg := New(source.NewRegistry(testSources), c, staticFetcher(), WithParser(parser))

	articles, err := agg.ArticlesBySource(context.Background(), "gastronomy", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"custom"}, titles(articles))
}

func TestAggregator_ArticlesByCategory(t *testing.T) {
	extra := domain.Source{ID: "recipes", Name: "Recipes", URL: "https://example.com/recipes.xml", Category: "gastronomy"}
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(_ context.Context, url string) (string, error) {
			if url == extra.URL {
				return rssDoc(rssItem("Tarte tatin", "Tue, 02 Jan 2024 12:00:00 +0000")), nil
			}
			return feeds[url], nil
		},
	}
	reg := source.NewRegistry(append(append([]domain.Source{}, testSources...), extra))
	agg := New(reg, cache.New(time.Minute), fetcher)
	ctx := context.Background()

	articles, err := agg.ArticlesByCategory(ctx, "gastronomy", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Café à la carte!", "Tarte tatin", "Le retour du pot-au-feu"}, titles(articles))
	assert.Len(t, fetcher.FetchCalls(), 2, "only sources of the category fetched")

	t.Run("unknown category", func(t *testing.T) {
		res, err := agg.ArticlesByCategory(ctx, "nonexistent", false)
		require.NoError(t, err)
		assert.NotNil(t, res)
		assert.Empty(t, res)
		assert.Len(t, fetcher.FetchCalls(), 2)
	})
}

func TestAggregator_ArticlesByCategoryFailure(t *testing.T) {
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(context.Context, string) (string, error) { return "", errors.New("dns failure") },
	}
	agg, _ := newTestAggregator(fetcher)

	_, err := agg.ArticlesByCategory(context.Background(), "videogames", false)
	var catErr *CategoryError
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, "videogames", catErr.Category)
	var loadErr *FeedLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "videogames", loadErr.SourceID)
	assert.Contains(t, err.Error(), "dns failure")
}

func TestAggregator_ArticleBySlug(t *testing.T) {
	agg, _ := newTestAggregator(staticFetcher())
	ctx := context.Background()

	art, err := agg.ArticleBySlug(ctx, "gastronomy", "cafe-a-la-carte", false)
	require.NoError(t, err)
	assert.Equal(t, "Café à la carte!", art.Title)

	_, err = agg.ArticleBySlug(ctx, "gastronomy", "un-jeu-de-plateforme", false)
	require.ErrorIs(t, err, ErrArticleNotFound, "slug from another category")

	_, err = agg.ArticleBySlug(ctx, "nonexistent", "cafe-a-la-carte", false)
	require.ErrorIs(t, err, ErrArticleNotFound)
}

func TestAggregator_ResultsAreCopies(t *testing.T) {
	agg, _ := newTestAggregator(staticFetcher())
	ctx := context.Background()

	first, err := agg.ArticlesBySource(ctx, "gastronomy", false)
	require.NoError(t, err)
	first[0].Title = "changed"

	second, err := agg.ArticlesBySource(ctx, "gastronomy", false)
	require.NoError(t, err)
	assert.Equal(t, "Le retour du pot-au-feu", second[0].Title)
}

func TestAggregator_CoalescesConcurrentMisses(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(_ context.Context, url string) (string, error) {
			calls.Add(1)
			<-release
			return feeds[url], nil
		},
	}
	agg, _ := newTestAggregator(fetcher)

	var wg sync.WaitGroup
	results := make([][]domain.Article, 10)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := agg.ArticlesBySource(context.Background(), "videogames", false)
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, res := range results {
		assert.Len(t, res, 2)
	}
	results[0][0].Title = "changed"
	assert.Equal(t, "Un jeu de plateforme", results[1][0].Title, "callers don't share slices")
}

func TestAggregator_CancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(ctx context.Context, url string) (string, error) {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return feeds[url], nil
		},
	}
	agg, c := newTestAggregator(fetcher)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := agg.ArticlesBySource(ctxA, "gastronomy", false)
		errA <- err
	}()
	<-started

	type result struct {
		articles []domain.Article
		err      error
	}
	resB := make(chan result, 1)
	go func() {
		res, err := agg.ArticlesBySource(context.Background(), "gastronomy", false)
		resB <- result{articles: res, err: err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		require.Error(t, err)
		var loadErr *FeedLoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, "gastronomy", loadErr.SourceID)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(release)
	select {
	case res := <-resB:
		require.NoError(t, res.err)
		assert.Equal(t, []string{"Café à la carte!", "Le retour du pot-au-feu"}, titles(res.articles))
	case <-time.After(time.Second):
		t.Fatal("live caller didn't get the result")
	}
	assert.Equal(t, int32(1), calls.Load())
	_, ok := c.Get("gastronomy")
	assert.True(t, ok, "shared fetch completes and fills the cache")
}

func TestAggregator_MaxWorkers(t *testing.T) {
	var active, peak atomic.Int32
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(_ context.Context, url string) (string, error) {
			n := active.Add(1)
			defer active.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			return rssDoc(rssItem("x", "Mon, 01 Jan 2024 10:00:00 +0000")), nil
		},
	}
	srcs := make([]domain.Source, 6)
	for i := range srcs {
		srcs[i] = domain.Source{ID: fmt.Sprintf("s%d", i), URL: fmt.Sprintf("https://e.com/%d.xml", i), Category: "c"}
	}
	agg := New(source.NewRegistry(srcs), cache.New(time.Minute), fetcher, WithMaxWorkers(2))

	articles, err := agg.AllArticles(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, articles, 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Len(t, fetcher.FetchCalls(), 6)
}

func TestSortByDate(t *testing.T) {
	articles := []domain.Article{
		{Title: "no date"},
		{Title: "old", PubDate: "Mon, 01 Jan 2024 10:00:00 +0000"},
		{Title: "tie-1", PubDate: "Wed, 03 Jan 2024 10:00:00 +0000"},
		{Title: "updated only", Updated: "2024-01-02T10:00:00Z"},
		{Title: "tie-2", PubDate: "Wed, 03 Jan 2024 11:00:00 +0100"},
		{Title: "garbage", PubDate: "not a date"},
		{Title: "new", PubDate: "Fri, 05 Jan 2024 10:00:00 +0000"},
	}
	SortByDate(articles)
	assert.Equal(t, []string{"new", "tie-1", "tie-2", "updated only", "old", "no date", "garbage"}, titles(articles))

	for i := 1; i < len(articles); i++ {
		assert.False(t, articles[i].EffectiveDate().After(articles[i-1].EffectiveDate()), "non-increasing at %d", i)
	}
}
