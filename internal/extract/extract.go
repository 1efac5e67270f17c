// Package extract resolves sports-streaming page URLs into playable formats
// by negotiating an access token with the platform's streaming server.
package extract

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"sportsdl/internal/httputil"
	"sportsdl/internal/manifest"
	"sportsdl/internal/media"
)

// Extractor resolves a page URL into video metadata and formats.
type Extractor interface {
	// Name returns the extractor name, e.g. "ehftv".
	Name() string

	// Suitable reports whether the extractor handles the URL.
	Suitable(rawURL string) bool

	// Extract performs the extraction. It makes no retries.
	Extract(ctx context.Context, rawURL string) (*media.Info, error)
}

// Fetcher downloads documents. *httputil.Fetcher implements it.
type Fetcher interface {
	FetchText(ctx context.Context, rawURL string, r httputil.Request) (string, error)
	FetchXML(ctx context.Context, rawURL string, r httputil.Request, element string, v any) error
	FetchJSON(ctx context.Context, rawURL string, r httputil.Request, v any) error
}

// Options carries the collaborators shared by all extractors.
type Options struct {
	Fetcher  Fetcher
	Resolver manifest.Resolver

	// GeoHeaders are sent with token requests.
	GeoHeaders http.Header

	Laola1 Laola1Options

	// Now is used for live title decoration. Defaults to time.Now.
	Now func() time.Time
}

// Laola1Options configures the titanplayer embed extractor.
type Laola1Options struct {
	MetadataURL string
	Portal      string
	Language    string
}

const defaultLaola1MetadataURL = "http://www.laola1.tv/server/hd_video.php"

func (o Options) normalize() Options {
	if o.Resolver == nil {
		if f, ok := o.Fetcher.(manifest.Fetcher); ok {
			o.Resolver = manifest.NewAkamai(f)
		}
	}
	if o.Laola1.MetadataURL == "" {
		o.Laola1.MetadataURL = defaultLaola1MetadataURL
	}
	if o.Laola1.Portal == "" {
		o.Laola1.Portal = "de"
	}
	if o.Laola1.Language == "" {
		o.Laola1.Language = "de"
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// New returns every available extractor.
func New(opts Options) []Extractor {
	opts = opts.normalize()
	return []Extractor{
		NewLaola1(opts),
		NewEHFTV(opts),
	}
}

// ForURL returns the first extractor suitable for rawURL.
func ForURL(extractors []Extractor, rawURL string) (Extractor, error) {
	if err := httputil.ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	for _, e := range extractors {
		if e.Suitable(rawURL) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, rawURL)
}
