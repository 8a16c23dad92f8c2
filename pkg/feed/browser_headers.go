package feed

import (
	"math/rand"
	"net/http"
)

// acceptLanguages contains common browser Accept-Language values, french first as most default feeds are french
var acceptLanguages = []string{
	"fr-FR,fr;q=0.9,en;q=0.8",
	"fr-FR,fr;q=0.9",
	"en-US,en;q=0.9,fr;q=0.8",
	"en-GB,en;q=0.9,fr;q=0.7",
}

// addBrowserHeaders adds browser-like headers for feed fetching.
// Some news sites refuse requests that don't look like they come from a feed reader or a browser.
func addBrowserHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,text/xml;q=0.8,*/*;q=0.5")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept-Language", acceptLanguages[rand.Intn(len(acceptLanguages))]) //nolint:gosec // non-cryptographic randomness is fine for header variation
	req.Header.Set("Connection", "keep-alive")
}
