// Package httputil provides a hardened HTTP client, the fetcher used by the
// extractors and input validation helpers.
package httputil

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/121.0"
	defaultTimeout   = 30 * time.Second

	maxBodySize = 10 * 1024 * 1024
)

// NewClient creates a hardened HTTP client with secure defaults.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			DisableCompression:  false,
			MaxIdleConnsPerHost: 5,
		},
	}
}

// Options configures a Fetcher.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	RateLimit float64 // requests per second, 0 disables pacing
	Burst     int
}

// Request describes the optional parts of a single fetch.
type Request struct {
	Method string      // defaults to GET, or POST when JSONBody is set
	Query  url.Values  // merged into the URL's existing query
	Header http.Header // overrides the default headers
	// JSONBody is marshalled and sent with Content-Type application/json.
	// A json.RawMessage is sent verbatim.
	JSONBody any
}

// StatusError reports a non-200 response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.Status, e.URL)
}

// Fetcher performs the text, XML and JSON downloads the extractors need.
// It is safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// NewFetcher creates a Fetcher with its own hardened client.
func NewFetcher(opts Options) *Fetcher {
	return NewFetcherWithClient(NewClient(opts.Timeout), opts)
}

// NewFetcherWithClient creates a Fetcher around an existing client.
func NewFetcherWithClient(client *http.Client, opts Options) *Fetcher {
	f := &Fetcher{
		client:    client,
		userAgent: opts.UserAgent,
	}
	if f.userAgent == "" {
		f.userAgent = defaultUserAgent
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return f
}

// FetchText downloads a page and returns its body as a string.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string, r Request) (string, error) {
	body, err := f.FetchBytes(ctx, rawURL, withAccept(r, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchJSON downloads a JSON document and decodes it into v.
func (f *Fetcher) FetchJSON(ctx context.Context, rawURL string, r Request, v any) error {
	body, err := f.FetchBytes(ctx, rawURL, withAccept(r, "application/json"))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing JSON from %s: %w", rawURL, err)
	}
	return nil
}

// FetchXML downloads an XML document and decodes its first <name> element
// into v.
func (f *Fetcher) FetchXML(ctx context.Context, rawURL string, r Request, name string, v any) error {
	body, err := f.FetchBytes(ctx, rawURL, withAccept(r, "application/xml,text/xml;q=0.9,*/*;q=0.8"))
	if err != nil {
		return err
	}
	if err := DecodeElement(body, name, v); err != nil {
		return fmt.Errorf("parsing XML from %s: %w", rawURL, err)
	}
	return nil
}

// FetchBytes performs the request and returns the raw body.
func (f *Fetcher) FetchBytes(ctx context.Context, rawURL string, r Request) ([]byte, error) {
	req, err := f.newRequest(ctx, rawURL, r)
	if err != nil {
		return nil, err
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: req.URL.String(), Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

func (f *Fetcher) newRequest(ctx context.Context, rawURL string, r Request) (*http.Request, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	target := rawURL
	if len(r.Query) > 0 {
		target = AddQuery(rawURL, r.Query)
	}

	method := r.Method
	var body io.Reader
	if r.JSONBody != nil {
		data, err := marshalBody(r.JSONBody)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
		if method == "" {
			method = http.MethodPost
		}
	}
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if r.JSONBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range r.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

func marshalBody(v any) ([]byte, error) {
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(v)
}

// withAccept sets the Accept header unless the caller supplied one.
func withAccept(r Request, accept string) Request {
	if r.Header.Get("Accept") != "" {
		return r
	}
	h := r.Header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Accept", accept)
	r.Header = h
	return r
}

// AddQuery appends params to rawURL, keeping any query it already has.
// Params are encoded in key order; the existing query string is not re-encoded.
func AddQuery(rawURL string, params url.Values) string {
	if len(params) == 0 {
		return rawURL
	}
	fragment := ""
	if i := strings.Index(rawURL, "#"); i != -1 {
		rawURL, fragment = rawURL[:i], rawURL[i:]
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
		if strings.HasSuffix(rawURL, "?") || strings.HasSuffix(rawURL, "&") {
			sep = ""
		}
	}
	return rawURL + sep + params.Encode() + fragment
}
