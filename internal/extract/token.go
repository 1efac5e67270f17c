package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"sportsdl/internal/httputil"
	"sportsdl/internal/log"
	"sportsdl/internal/manifest"
	"sportsdl/internal/media"
)

// Stage names an extraction step. Transitions are logged at debug level.
type Stage string

const (
	StageStart           Stage = "start"
	StagePageFetched     Stage = "page_fetched"
	StageMetadataFetched Stage = "metadata_fetched"
	StageTokenRequested  Stage = "token_requested"
	StageTokenValidated  Stage = "token_validated"
	StageFormatsResolved Stage = "formats_resolved"
	StageDone            Stage = "done"
	StageFailed          Stage = "failed"
)

// Stream kinds used by the streaming-access server.
const (
	StreamKindVideo      = 2
	StreamKindLivestream = 17
)

var blockedAuth = map[string]bool{
	"blocked":    true,
	"restricted": true,
	"error":      true,
}

// Token is the <token> element returned by the streaming-access server.
type Token struct {
	Status  string `xml:"status,attr"`
	Auth    string `xml:"auth,attr"`
	URL     string `xml:"url,attr"`
	Comment string `xml:"comment,attr"`
}

// Validate applies the access policy: a status other than "0", or an auth
// value of blocked, restricted or error, means no access was granted.
func (t Token) Validate() error {
	if t.Status != "" && t.Status != "0" {
		return &TokenError{Comment: t.Comment}
	}
	if blockedAuth[t.Auth] {
		return &TokenError{Comment: t.Comment}
	}
	return nil
}

// ManifestURL returns the token URL signed with the auth value.
func (t Token) ManifestURL() (string, error) {
	if t.URL == "" {
		return "", &MissingFieldError{Field: "url", Source: "token"}
	}
	sep := "?"
	if strings.Contains(t.URL, "?") {
		sep = "&"
	}
	// auth is already a signed hdnea value and is appended verbatim
	return t.URL + sep + "hdnea=" + t.Auth, nil
}

// tokenResolver fetches and validates access tokens, then resolves the
// signed manifest into formats.
type tokenResolver struct {
	fetcher  Fetcher
	resolver manifest.Resolver
}

func (r tokenResolver) formats(ctx context.Context, l zerolog.Logger, tokenURL, videoID string, header http.Header) ([]media.Format, error) {
	stage(l, StageTokenRequested).Str(log.FieldURL, tokenURL).Send()

	var tok Token
	if err := r.fetcher.FetchXML(ctx, tokenURL, httputil.Request{Header: header}, "token", &tok); err != nil {
		if errors.Is(err, httputil.ErrElementNotFound) {
			return nil, &MissingFieldError{Field: "token", Source: "token document"}
		}
		return nil, fmt.Errorf("downloading token: %w", err)
	}

	if err := tok.Validate(); err != nil {
		return nil, err
	}
	manifestURL, err := tok.ManifestURL()
	if err != nil {
		return nil, err
	}
	stage(l, StageTokenValidated).Send()

	if r.resolver == nil {
		return nil, errors.New("no manifest resolver configured")
	}
	formats, err := r.resolver.Resolve(ctx, manifestURL, videoID)
	if err != nil {
		return nil, fmt.Errorf("resolving formats: %w", err)
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("resolving formats: %w", manifest.ErrNoFormats)
	}
	stage(l, StageFormatsResolved).Int("formats", len(formats)).Send()
	return formats, nil
}

func stage(l zerolog.Logger, s Stage) *zerolog.Event {
	return l.Debug().Str(log.FieldStage, string(s))
}
