// Package manifest turns adaptive streaming manifests into format lists.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"sportsdl/internal/httputil"
	"sportsdl/internal/log"
	"sportsdl/internal/media"
)

// Resolver expands a manifest URL into a sorted list of formats.
type Resolver interface {
	Resolve(ctx context.Context, manifestURL, videoID string) ([]media.Format, error)
}

// Fetcher is the subset of httputil.Fetcher the resolvers need.
type Fetcher interface {
	FetchBytes(ctx context.Context, rawURL string, r httputil.Request) ([]byte, error)
}

// ErrNoFormats is returned when a manifest yields nothing playable.
var ErrNoFormats = errors.New("no formats found")

const hdcoreSign = "hdcore=3.7.0"

var (
	hlsPathRe = regexp.MustCompile(`(https?://[^/]+)/i/`)
	hdsPathRe = regexp.MustCompile(`(https?://[^/]+)/z/`)
)

// Akamai resolves Akamai HD manifests. The same stream is published as HDS
// under /z/.../manifest.f4m and as HLS under /i/.../master.m3u8, so either
// URL yields both sets of formats.
type Akamai struct {
	fetcher Fetcher
	log     zerolog.Logger
}

// NewAkamai creates an Akamai resolver.
func NewAkamai(fetcher Fetcher) *Akamai {
	return &Akamai{
		fetcher: fetcher,
		log:     log.WithComponent("manifest"),
	}
}

// Resolve fetches both renditions. A failing rendition is logged and skipped;
// only when neither produces a format is an error returned.
func (a *Akamai) Resolve(ctx context.Context, manifestURL, videoID string) ([]media.Format, error) {
	l := log.WithContext(ctx, a.log).With().Str(log.FieldVideoID, videoID).Logger()

	var (
		formats []media.Format
		errs    []error
	)

	f4mURL := HDSURL(manifestURL)
	hds, err := a.HDS(ctx, f4mURL)
	if err != nil {
		l.Debug().Err(err).Str(log.FieldURL, f4mURL).Msg("hds manifest unavailable")
		errs = append(errs, fmt.Errorf("hds: %w", err))
	}
	formats = append(formats, hds...)

	m3u8URL := HLSURL(manifestURL)
	hls, err := a.HLS(ctx, m3u8URL)
	if err != nil {
		l.Debug().Err(err).Str(log.FieldURL, m3u8URL).Msg("hls manifest unavailable")
		errs = append(errs, fmt.Errorf("hls: %w", err))
	}
	formats = append(formats, hls...)

	if len(formats) == 0 {
		errs = append([]error{ErrNoFormats}, errs...)
		return nil, fmt.Errorf("resolving %s: %w", manifestURL, errors.Join(errs...))
	}

	media.SortFormats(formats)
	l.Debug().Int("hds", len(hds)).Int("hls", len(hls)).Msg("formats resolved")
	return formats, nil
}

// HDSURL maps an Akamai manifest URL to its F4M form, signed with hdcore.
func HDSURL(manifestURL string) string {
	u := hlsPathRe.ReplaceAllString(manifestURL, "$1/z/")
	u = strings.Replace(u, "/master.m3u8", "/manifest.f4m", 1)
	if !strings.Contains(u, "hdcore=") {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + hdcoreSign
	}
	return u
}

// HLSURL maps an Akamai manifest URL to its master playlist form.
func HLSURL(manifestURL string) string {
	u := hdsPathRe.ReplaceAllString(manifestURL, "$1/i/")
	return strings.Replace(u, "/manifest.f4m", "/master.m3u8", 1)
}
