package feed

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FirstImageSrc returns the src of the first <img> in an HTML fragment.
// The fragment is only tokenized, never rendered or executed. Empty if the first img has no src.
func FirstImageSrc(markup string) string {
	if !strings.Contains(markup, "<") {
		return ""
	}

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if atom.Lookup(name) != atom.Img {
				continue
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "src" {
					return strings.TrimSpace(string(val))
				}
			}
			return ""
		}
	}
}
