package aggregator

import (
	"errors"
	"fmt"
)

// ErrArticleNotFound is returned when no article in a category carries the requested slug
var ErrArticleNotFound = errors.New("article not found")

// SourceNotFoundError is returned for an ID the registry doesn't know
type SourceNotFoundError struct {
	ID string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source %q not found", e.ID)
}

// FeedLoadError is a fetch or parse failure for one source
type FeedLoadError struct {
	SourceID string
	Err      error
}

func (e *FeedLoadError) Error() string {
	return fmt.Sprintf("load feed %s: %v", e.SourceID, e.Err)
}

func (e *FeedLoadError) Unwrap() error { return e.Err }

// AllArticlesError is returned when any source failed while collecting all articles
type AllArticlesError struct {
	Err error
}

func (e *AllArticlesError) Error() string {
	return fmt.Sprintf("load all articles: %v", e.Err)
}

func (e *AllArticlesError) Unwrap() error { return e.Err }

// CategoryError is returned when any source of a category failed
type CategoryError struct {
	Category string
	Err      error
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("load category %s: %v", e.Category, e.Err)
}

func (e *CategoryError) Unwrap() error { return e.Err }
