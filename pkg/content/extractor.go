// Package content downloads article pages and extracts their readable text
package content

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/markusmobius/go-trafilatura"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// ExtractResult is the readable part of an article page
type ExtractResult struct {
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"`
	Date        time.Time `json:"date"`
	Content     string    `json:"content"`                // plain text
	RichContent string    `json:"rich_content,omitempty"` // sanitized html
	URL         string    `json:"url"`
}

// HTTPExtractor extracts article content from URLs using trafilatura
type HTTPExtractor struct {
	timeout   time.Duration
	userAgent string
	client    *http.Client
	policy    *bluemonday.Policy
}

// Option customizes HTTPExtractor
type Option func(e *HTTPExtractor)

// WithUserAgent sets User-Agent for page requests
func WithUserAgent(ua string) Option {
	return func(e *HTTPExtractor) {
		if ua != "" {
			e.userAgent = ua
		}
	}
}

// NewHTTPExtractor creates a new content extractor
func NewHTTPExtractor(timeout time.Duration, opts ...Option) *HTTPExtractor {
	res := &HTTPExtractor{
		timeout:   timeout,
		userAgent: "Mozilla/5.0 (compatible; Newsagg/1.0)",
		client: &http.Client{
			Timeout: timeout,
		},
		policy: bluemonday.UGCPolicy(),
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Extract retrieves the page at the given URL and extracts its main content
func (e *HTTPExtractor) Extract(ctx context.Context, urlStr string) (*ExtractResult, error) {
	// validate URL
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid URL: %s", urlStr)
	}

	// create request with context
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	addBrowserHeaders(req)

	// fetch content
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for URL %s", resp.StatusCode, urlStr)
	}

	// configure trafilatura options
	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		ExcludeTables:   false,
		IncludeImages:   true,
		IncludeLinks:    true,
		Deduplicate:     true,
		OriginalURL:     parsedURL,
	}

	// extract content
	result, err := trafilatura.Extract(resp.Body, opts)
	if err != nil {
		return nil, fmt.Errorf("extract content from %s: %w", urlStr, err)
	}
	if result == nil {
		return nil, fmt.Errorf("no content extracted from %s", urlStr)
	}

	text := strings.TrimSpace(result.ContentText)
	if text == "" {
		return nil, fmt.Errorf("no text content extracted from %s", urlStr)
	}

	return &ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		Author:      strings.TrimSpace(result.Metadata.Author),
		Date:        result.Metadata.Date,
		Content:     text,
		RichContent: e.richContent(result.ContentNode),
		URL:         urlStr,
	}, nil
}

// richContent renders the extracted node and strips anything unsafe, empty on render failure
func (e *HTTPExtractor) richContent(node *html.Node) string {
	if node == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return ""
	}
	return strings.TrimSpace(e.policy.Sanitize(buf.String()))
}
