package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

const maxBodySize = 16 << 20 // 16MB is far beyond any sane feed

// FetcherOpts configures HTTPFetcher
type FetcherOpts struct {
	Timeout     time.Duration // per request, includes reading the body
	UserAgent   string
	ProxyPrefix string        // prepended to every feed URL, e.g. a CORS proxy
	Retries     int           // total attempts for network failures, 1 means no retry
	RetryDelay  time.Duration // initial backoff delay between attempts
}

// HTTPFetcher retrieves raw feed documents over HTTP
type HTTPFetcher struct {
	client *http.Client
	opts   FetcherOpts
}

// NewHTTPFetcher creates a new feed fetcher
func NewHTTPFetcher(opts FetcherOpts) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Newsagg/1.0"
	}
	if opts.Retries < 1 {
		opts.Retries = 1
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = time.Second
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts: opts,
	}
}

// RewriteURL applies the proxy prefix to a feed URL. Empty prefix leaves the URL unchanged.
func RewriteURL(prefix, feedURL string) string {
	return prefix + feedURL
}

// Fetch returns the body of the feed at feedURL decoded as UTF-8 text.
// Failures are *NetworkError or *DecodeError.
func (f *HTTPFetcher) Fetch(ctx context.Context, feedURL string) (string, error) {
	target := RewriteURL(f.opts.ProxyPrefix, feedURL)
	if f.opts.Retries <= 1 {
		return f.fetch(ctx, target)
	}

	var body string
	var lastErr error
	rpt := repeater.NewBackoff(f.opts.Retries, f.opts.RetryDelay, repeater.WithMaxDelay(10*f.opts.RetryDelay))
	err := rpt.Do(ctx, func() error {
		body, lastErr = f.fetch(ctx, target)
		var decodeErr *DecodeError
		if errors.As(lastErr, &decodeErr) {
			return nil // same bytes would come back, no point to retry
		}
		if lastErr != nil {
			lgr.Printf("[DEBUG] fetch attempt for %s failed: %v", target, lastErr)
		}
		return lastErr
	})
	if lastErr != nil {
		return "", lastErr
	}
	if err != nil {
		return "", &NetworkError{URL: target, Err: err}
	}
	return body, nil
}

// fetch performs a single GET request
func (f *HTTPFetcher) fetch(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return "", &NetworkError{URL: target, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	addBrowserHeaders(req)

	lgr.Printf("[DEBUG] fetching feed %s", target)
	resp, err := f.client.Do(req)
	if err != nil {
		return "", &NetworkError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &NetworkError{URL: target, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", &NetworkError{URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	text, err := decodeBody(data, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &DecodeError{URL: target, Err: err}
	}
	lgr.Printf("[DEBUG] fetched %d bytes from %s", len(data), target)
	return text, nil
}

var xmlEncodingDecl = regexp.MustCompile(`^(\s*<\?xml[^>]*?encoding=["'])([^"']*)(["'])`)

// decodeBody converts a response body to UTF-8 text. A charset in the Content-Type header is trusted,
// otherwise valid UTF-8 is kept as is and anything else is converted using the XML declaration or,
// failing that, sniffing. The XML declaration of the result always says UTF-8, so the parser
// doesn't decode the document a second time.
func decodeBody(data []byte, contentType string) (string, error) {
	if contentType != "" {
		mediaType, params, err := mime.ParseMediaType(contentType)
		if err == nil {
			if isBinaryMediaType(mediaType) {
				return "", fmt.Errorf("non-text content type %q", mediaType)
			}
			if label := params["charset"]; label != "" {
				return decodeWithLabel(data, label)
			}
		}
	}

	if utf8.Valid(data) {
		return utf8Declared(string(data)), nil
	}

	if m := xmlEncodingDecl.FindSubmatch(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))); m != nil {
		return decodeWithLabel(data, string(m[2]))
	}

	enc, name, _ := charset.DetermineEncoding(data, contentType)
	if name == "utf-8" {
		return "", errors.New("invalid utf-8 body")
	}
	return transcode(data, enc)
}

func decodeWithLabel(data []byte, label string) (string, error) {
	enc, name := charset.Lookup(label)
	if enc == nil {
		return "", fmt.Errorf("unsupported charset %q", label)
	}
	if name != "utf-8" {
		return transcode(data, enc)
	}
	if !utf8.Valid(data) {
		return "", errors.New("invalid utf-8 body")
	}
	return utf8Declared(string(data)), nil
}

func transcode(data []byte, enc encoding.Encoding) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("convert to utf-8: %w", err)
	}
	if !utf8.Valid(out) {
		return "", errors.New("invalid text after charset conversion")
	}
	return utf8Declared(string(out)), nil
}

func utf8Declared(text string) string {
	return xmlEncodingDecl.ReplaceAllString(text, "${1}UTF-8${3}")
}

func isBinaryMediaType(mediaType string) bool {
	for _, prefix := range []string{"image/", "audio/", "video/", "font/"} {
		if strings.HasPrefix(mediaType, prefix) {
			return true
		}
	}
	switch mediaType {
	case "application/octet-stream", "application/pdf", "application/zip", "application/gzip":
		return true
	}
	return false
}
