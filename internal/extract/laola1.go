package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"github.com/rs/zerolog"

	"sportsdl/internal/httputil"
	"sportsdl/internal/log"
	"sportsdl/internal/media"
)

const laola1Name = "cdnlaola1tv"

var (
	laola1URLRe = regexp.MustCompile(`^https?://cdn\.[^/]+/titanplayer\.php\?videoid=([0-9]+)&type=[^&]+&customer=([0-9]+)`)
	timestampRe = regexp.MustCompile(`flashvars\.timestamp\s*=\s*"([0-9]+)"`)
	authRe      = regexp.MustCompile(`var\s+auth\s*=\s*"([0-9a-z]+)"`)
)

// laola1Video is the <video> element of the metadata feed.
type laola1Video struct {
	Title        string `xml:"title"`
	URL          string `xml:"url"`
	TimeDate     string `xml:"time_date"`
	Organisation string `xml:"meta_organisation"`
	Sports       string `xml:"meta_sports"`
	IsLive       string `xml:"islive"`
}

// Laola1 extracts videos from LAOLA1 titanplayer embeds.
type Laola1 struct {
	opts  Options
	token tokenResolver
	log   zerolog.Logger
}

// NewLaola1 creates the titanplayer embed extractor.
func NewLaola1(opts Options) *Laola1 {
	opts = opts.normalize()
	return &Laola1{
		opts:  opts,
		token: tokenResolver{fetcher: opts.Fetcher, resolver: opts.Resolver},
		log:   log.WithComponent("extract").With().Str(log.FieldExtractor, laola1Name).Logger(),
	}
}

func (e *Laola1) Name() string { return laola1Name }

func (e *Laola1) Suitable(rawURL string) bool {
	return laola1URLRe.MatchString(rawURL)
}

// ParseLaola1URL returns the video and customer ids of an embed URL.
func ParseLaola1URL(rawURL string) (videoID, customer string, err error) {
	m := laola1URLRe.FindStringSubmatch(rawURL)
	if m == nil {
		return "", "", &MalformedInputError{Extractor: laola1Name, URL: rawURL}
	}
	return m[1], m[2], nil
}

func (e *Laola1) Extract(ctx context.Context, rawURL string) (*media.Info, error) {
	videoID, customer, err := ParseLaola1URL(rawURL)
	if err != nil {
		return nil, err
	}

	if log.CorrelationIDFromContext(ctx) == "" {
		ctx = log.ContextWithCorrelationID(ctx, "")
	}
	l := log.WithContext(ctx, e.log).With().Str(log.FieldVideoID, videoID).Logger()
	stage(l, StageStart).Str(log.FieldURL, rawURL).Send()

	info, err := e.extract(ctx, l, rawURL, videoID, customer)
	if err != nil {
		stage(l, StageFailed).Err(err).Send()
		return nil, err
	}
	stage(l, StageDone).Send()
	return info, nil
}

func (e *Laola1) extract(ctx context.Context, l zerolog.Logger, rawURL, videoID, customer string) (*media.Info, error) {
	raw, err := e.opts.Fetcher.FetchText(ctx, rawURL, httputil.Request{})
	if err != nil {
		return nil, fmt.Errorf("downloading webpage: %w", err)
	}
	if err := checkEnded(raw); err != nil {
		return nil, err
	}
	p, err := parsePage(raw)
	if err != nil {
		return nil, err
	}
	stage(l, StagePageFetched).Send()

	video, err := e.metadata(ctx, videoID, customer)
	if err != nil {
		return nil, err
	}
	stage(l, StageMetadataFetched).Send()

	timestamp, ok := p.searchScripts(timestampRe)
	if !ok {
		return nil, &MissingFieldError{Field: "timestamp", Source: "webpage"}
	}
	auth, ok := p.searchScripts(authRe)
	if !ok {
		return nil, &MissingFieldError{Field: "auth", Source: "webpage"}
	}

	tokenURL := httputil.AddQuery(video.URL, url.Values{
		"ident":     {""},
		"klub":      {"0"},
		"unikey":    {"0"},
		"timestamp": {timestamp},
		"auth":      {auth},
	})

	formats, err := e.token.formats(ctx, l, tokenURL, videoID, e.geoHeaders())
	if err != nil {
		return nil, err
	}

	return &media.Info{
		ID:         videoID,
		DisplayID:  "Video_" + videoID,
		Title:      cleanText(video.Title),
		UploadDate: unifiedDate(video.TimeDate),
		Uploader:   cleanText(video.Organisation),
		Categories: splitCategories(video.Sports),
		IsLive:     video.IsLive == "true",
		Extractor:  laola1Name,
		WebpageURL: rawURL,
		Formats:    formats,
	}, nil
}

func (e *Laola1) metadata(ctx context.Context, videoID, customer string) (*laola1Video, error) {
	query := url.Values{
		"play":    {videoID},
		"partner": {customer},
		"portal":  {e.opts.Laola1.Portal},
		"lang":    {e.opts.Laola1.Language},
		"v5ident": {""},
	}

	var video laola1Video
	err := e.opts.Fetcher.FetchXML(ctx, e.opts.Laola1.MetadataURL, httputil.Request{Query: query}, "video", &video)
	if errors.Is(err, httputil.ErrElementNotFound) {
		return nil, &MissingFieldError{Field: "video", Source: "metadata"}
	}
	if err != nil {
		return nil, fmt.Errorf("downloading metadata: %w", err)
	}

	if video.Title == "" {
		return nil, &MissingFieldError{Field: "title", Source: "metadata"}
	}
	if video.URL == "" {
		return nil, &MissingFieldError{Field: "url", Source: "metadata"}
	}
	return &video, nil
}

func (e *Laola1) geoHeaders() http.Header {
	return e.opts.GeoHeaders.Clone()
}
