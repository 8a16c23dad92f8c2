package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newsagg/pkg/domain"
)

// fakeClock is a manually advanced time source
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

func TestCache_GetPut(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := New(30*time.Minute, WithClock(clock.Now))

	_, ok := c.Get("gastronomy")
	assert.False(t, ok, "miss on empty cache")

	articles := []domain.Article{{Title: "a", Link: "https://e.com/a"}, {Title: "b", Link: "https://e.com/b"}}
	c.Put("gastronomy", articles)

	got, ok := c.Get("gastronomy")
	require.True(t, ok)
	assert.Equal(t, articles, got)

	clock.Advance(29 * time.Minute)
	_, ok = c.Get("gastronomy")
	assert.True(t, ok, "still fresh")

	clock.Advance(time.Minute)
	_, ok = c.Get("gastronomy")
	assert.False(t, ok, "stale at exactly max age")

	e, ok := c.Entry("gastronomy")
	require.True(t, ok, "stale entry is kept")
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), e.Timestamp)
}

func TestCache_PutReplacesAndRestamps(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := New(time.Hour, WithClock(clock.Now))

	c.Put("videogames", []domain.Article{{Title: "old"}})
	clock.Advance(10 * time.Minute)
	_, ok := c.Get("videogames")
	require.True(t, ok)

	e, _ := c.Entry("videogames")
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), e.Timestamp, "reads don't touch the timestamp")

	c.Put("videogames", []domain.Article{{Title: "new"}})
	e, _ = c.Entry("videogames")
	assert.Equal(t, time.Date(2024, 1, 1, 12, 10, 0, 0, time.UTC), e.Timestamp)
	assert.Equal(t, []domain.Article{{Title: "new"}}, e.Articles)
	assert.Equal(t, 1, c.Len())
}

func TestCache_GetWithAge(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := New(time.Hour, WithClock(clock.Now))
	c.Put("src", []domain.Article{{Title: "x"}})
	clock.Advance(5 * time.Minute)

	_, ok := c.GetWithAge("src", 10*time.Minute)
	assert.True(t, ok)
	_, ok = c.GetWithAge("src", 5*time.Minute)
	assert.False(t, ok)
}

func TestCache_CopyOnReadAndWrite(t *testing.T) {
	c := New(0)

	articles := []domain.Article{{Title: "original"}}
	c.Put("src", articles)
	articles[0].Title = "mutated by producer"

	got, ok := c.Get("src")
	require.True(t, ok)
	assert.Equal(t, "original", got[0].Title)

	got[0].Title = "mutated by consumer"
	again, _ := c.Get("src")
	assert.Equal(t, "original", again[0].Title)
}

func TestCache_EmptyArticles(t *testing.T) {
	c := New(time.Minute)
	c.Put("empty", nil)
	got, ok := c.Get("empty")
	require.True(t, ok, "an empty feed is still a cached result")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCache_Concurrent(t *testing.T) {
	c := New(time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			batch := make([]domain.Article, 5)
			for j := range batch {
				batch[j] = domain.Article{Title: fmt.Sprintf("writer-%d", i)}
			}
			c.Put("shared", batch)
		}(i)
		go func() {
			defer wg.Done()
			if got, ok := c.Get("shared"); ok {
				// an entry is always replaced as a whole, never mixed
				for _, a := range got {
					assert.Equal(t, got[0].Title, a.Title)
				}
			}
		}()
	}
	wg.Wait()
	got, ok := c.Get("shared")
	require.True(t, ok)
	assert.Len(t, got, 5)
}

func TestCache_ZeroMaxAgeUsesDefault(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := New(0, WithClock(clock.Now))

	c.Put("src", []domain.Article{{Title: "a"}})
	clock.Advance(DefaultMaxAge - time.Second)
	_, ok := c.Get("src")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("src")
	assert.False(t, ok, "stale once the default window has passed")
}
