package domain

import (
	"time"

	"github.com/araddon/dateparse"
)

// Article represents a single normalized feed item.
// All fields are raw strings taken from the source document and default to empty.
type Article struct {
	Title            string `json:"title"`
	PubDate          string `json:"pubDate"`
	Updated          string `json:"updated"`
	Description      string `json:"description"`
	Link             string `json:"link"`
	ImageURL         string `json:"imageUrl"`
	MediaDescription string `json:"mediaDescription"`
	MediaCredit      string `json:"mediaCredit"`
	Slug             string `json:"slug"`
}

// EffectiveDate returns the time used to order articles across sources.
// PubDate wins over Updated; a missing or unparseable value yields zero time, i.e. the earliest date.
func (a Article) EffectiveDate() time.Time {
	raw := a.PubDate
	if raw == "" {
		raw = a.Updated
	}
	if raw == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
