package feed

import (
	"encoding/xml"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/newsagg/pkg/domain"
)

// Generator creates RSS feeds from aggregated articles
type Generator struct {
	baseURL string
	policy  *bluemonday.Policy
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		policy:  bluemonday.UGCPolicy(),
	}
}

// GenerateRSS creates an RSS 2.0 feed from merged articles. Empty category means all sources.
// Article markup is sanitized here because the result is consumed by third-party readers.
func (g *Generator) GenerateRSS(articles []domain.Article, category string) (string, error) {
	title := "Newsagg - All Sources"
	selfLink := g.baseURL + "/rss"
	if category != "" {
		title = fmt.Sprintf("Newsagg - %s", category)
		selfLink = fmt.Sprintf("%s/rss/%s", g.baseURL, url.PathEscape(category))
	}

	rssItems := make([]*RSSItem, 0, len(articles))
	for _, a := range articles {
		rssItems = append(rssItems, g.convertToRSSItem(a))
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         title,
			Link:          g.baseURL + "/",
			Description:   "Articles merged from all configured feeds, newest first",
			AtomLink:      &AtomLink{Href: selfLink, Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: time.Now().Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}
	return xml.Header + string(output), nil
}

// convertToRSSItem converts an article, normalizing its date to RFC1123Z
func (g *Generator) convertToRSSItem(a domain.Article) *RSSItem {
	item := &RSSItem{
		Title:       a.Title,
		Link:        a.Link,
		Description: g.policy.Sanitize(a.Description),
	}
	if a.Link != "" {
		item.GUID = &RSSGUID{Value: a.Link, IsPermaLink: true}
	}
	if ts := a.EffectiveDate(); !ts.IsZero() {
		item.PubDate = ts.Format(time.RFC1123Z)
	}
	if a.ImageURL != "" {
		item.Enclosure = &RSSEnclosure{URL: a.ImageURL, Type: imageMimeType(a.ImageURL)}
	}
	return item
}

// imageMimeType guesses the enclosure type from the image URL extension
func imageMimeType(imageURL string) string {
	p := imageURL
	if u, err := url.Parse(imageURL); err == nil {
		p = u.Path
	}
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(p))); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/jpeg"
}
