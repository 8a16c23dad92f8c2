package feed

import (
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/umputun/newsagg/pkg/domain"
)

// Parse converts raw RSS or Atom XML into articles, preserving document order.
// Anything else, including JSON feeds, fails with *UnrecognizedFormatError.
func Parse(raw string) ([]domain.Article, error) {
	var format string
	switch gofeed.DetectFeedType(strings.NewReader(raw)) {
	case gofeed.FeedTypeRSS:
		format = "rss"
	case gofeed.FeedTypeAtom:
		format = "atom"
	default:
		return nil, &UnrecognizedFormatError{Err: gofeed.ErrFeedTypeNotDetected}
	}

	parser := gofeed.NewParser()
	parser.AtomTranslator = &atomTranslator{}
	parsed, err := parser.ParseString(raw)
	if err != nil {
		return nil, &UnrecognizedFormatError{Format: format, Err: err}
	}

	articles := make([]domain.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		articles = append(articles, toArticle(item, format))
	}
	return articles, nil
}

// atomTranslator keeps entry <published> as is, the default translator substitutes <updated> when it's missing
type atomTranslator struct {
	gofeed.DefaultAtomTranslator
}

// Translate converts an atom feed and restores published of every item from its entry
func (t *atomTranslator) Translate(feed any) (*gofeed.Feed, error) {
	res, err := t.DefaultAtomTranslator.Translate(feed)
	if err != nil {
		return nil, err
	}
	af, ok := feed.(*atom.Feed)
	if !ok || len(af.Entries) != len(res.Items) {
		return res, nil
	}
	for i, entry := range af.Entries {
		if entry == nil || res.Items[i] == nil {
			continue
		}
		res.Items[i].Published = entry.Published
		res.Items[i].PublishedParsed = entry.PublishedParsed
	}
	return res, nil
}

// toArticle maps a gofeed item to an article, filling every field with a string
func toArticle(item *gofeed.Item, format string) domain.Article {
	title := strings.TrimSpace(item.Title)

	description := strings.TrimSpace(item.Description)
	if description == "" && format == "atom" {
		// atom entries without summary keep their markup in content
		description = strings.TrimSpace(item.Content)
	}

	link := strings.TrimSpace(item.Link)
	if link == "" && len(item.Links) > 0 {
		link = strings.TrimSpace(item.Links[0])
	}

	pubDate := strings.TrimSpace(item.Published)
	updated := strings.TrimSpace(item.Updated)
	if updated == "" && format == "rss" {
		updated = firstNonEmpty(
			extensionValue(item.Extensions, "atom", "updated"),
			strings.TrimSpace(item.Custom["updated"]),
			strings.TrimSpace(item.Custom["lastBuildDate"]),
		)
	}
	if updated == "" {
		updated = pubDate
	}

	return domain.Article{
		Title:            title,
		PubDate:          pubDate,
		Updated:          updated,
		Description:      description,
		Link:             link,
		ImageURL:         imageURL(item, description),
		MediaDescription: mediaText(item.Extensions, "description"),
		MediaCredit:      mediaText(item.Extensions, "credit"),
		Slug:             Slugify(title),
	}
}

// imageURL picks the lead image: image enclosure, then media extension, then first <img> in description
func imageURL(item *gofeed.Item, description string) string {
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(enc.Type), "image") {
			return strings.TrimSpace(enc.URL)
		}
	}
	if u := mediaImage(item.Extensions); u != "" {
		return u
	}
	return FirstImageSrc(description)
}

// mediaImage looks for media:content (possibly grouped) describing an image, then media:thumbnail
func mediaImage(exts ext.Extensions) string {
	media := exts["media"]
	if media == nil {
		return ""
	}

	contents := append([]ext.Extension(nil), media["content"]...)
	thumbnails := append([]ext.Extension(nil), media["thumbnail"]...)
	for _, group := range media["group"] {
		contents = append(contents, group.Children["content"]...)
		thumbnails = append(thumbnails, group.Children["thumbnail"]...)
	}

	for _, c := range contents {
		u := strings.TrimSpace(c.Attrs["url"])
		if u == "" {
			continue
		}
		typ, medium := strings.ToLower(c.Attrs["type"]), strings.ToLower(c.Attrs["medium"])
		switch {
		case strings.HasPrefix(typ, "image"), medium == "image":
			return u
		case typ == "" && medium == "":
			// untyped media:content is how most news feeds attach their lead picture
			return u
		}
	}

	for _, th := range thumbnails {
		if u := strings.TrimSpace(th.Attrs["url"]); u != "" {
			return u
		}
	}
	return ""
}

// mediaText returns media:<name> from the item, its media:content or its media:group
func mediaText(exts ext.Extensions, name string) string {
	media := exts["media"]
	if media == nil {
		return ""
	}
	if v := firstValue(media[name]); v != "" {
		return v
	}
	for _, c := range media["content"] {
		if v := firstValue(c.Children[name]); v != "" {
			return v
		}
	}
	for _, g := range media["group"] {
		if v := firstValue(g.Children[name]); v != "" {
			return v
		}
		for _, c := range g.Children["content"] {
			if v := firstValue(c.Children[name]); v != "" {
				return v
			}
		}
	}
	return ""
}

func extensionValue(exts ext.Extensions, ns, name string) string {
	return firstValue(exts[ns][name])
}

func firstValue(list []ext.Extension) string {
	for _, e := range list {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
