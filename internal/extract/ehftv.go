package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sportsdl/internal/httputil"
	"sportsdl/internal/jsobject"
	"sportsdl/internal/log"
	"sportsdl/internal/media"
)

const ehftvName = "ehftv"

var (
	ehftvURLRe = regexp.MustCompile(`^https?://(?:www\.)?ehftv\.com/(?P<portal>[^/]+)/(?P<kind>[^/]+)/(?P<slug>[^/?#&]+)`)
	confRe     = regexp.MustCompile(`(?s)conf\s*=\s*(\{.+?\});`)
)

// flexString decodes a JSON string or number as a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

// ehftvConf is the inline player configuration.
type ehftvConf struct {
	VideoID   flexString `json:"videoid"`
	ConfigURL string     `json:"configUrl"`
	PartnerID flexString `json:"partnerid"`
	Language  string     `json:"language"`
	PortalID  flexString `json:"portalid"`
}

type ehftvConfig struct {
	Error json.RawMessage `json:"error"`
	Video *ehftvVideo     `json:"video"`
}

type ehftvVideo struct {
	Title           string          `json:"title"`
	IsLivestream    bool            `json:"isLivestream"`
	IsLive          bool            `json:"isLive"`
	MetaInformation json.RawMessage `json:"metaInformation"`
	Description     string          `json:"description"`
	Image           string          `json:"image"`
	StreamAccess    string          `json:"streamAccess"`
	Abo             struct {
		Required json.RawMessage `json:"required"`
	} `json:"abo"`
}

// sports reads metaInformation.sports. The backend sends [] instead of {}
// when there is no meta information.
func (v *ehftvVideo) sports() string {
	var meta struct {
		Sports string `json:"sports"`
	}
	if err := json.Unmarshal(v.MetaInformation, &meta); err != nil {
		return ""
	}
	return meta.Sports
}

type ehftvStreamAccess struct {
	Data struct {
		StreamAccess []string `json:"stream-access"`
	} `json:"data"`
}

// EHFTV extracts videos from ehftv.com pages.
type EHFTV struct {
	opts  Options
	token tokenResolver
	log   zerolog.Logger
}

// NewEHFTV creates the ehftv.com extractor.
func NewEHFTV(opts Options) *EHFTV {
	opts = opts.normalize()
	return &EHFTV{
		opts:  opts,
		token: tokenResolver{fetcher: opts.Fetcher, resolver: opts.Resolver},
		log:   log.WithComponent("extract").With().Str(log.FieldExtractor, ehftvName).Logger(),
	}
}

func (e *EHFTV) Name() string { return ehftvName }

func (e *EHFTV) Suitable(rawURL string) bool {
	return ehftvURLRe.MatchString(rawURL)
}

// ParseEHFTVURL returns the slug of an ehftv.com page URL.
func ParseEHFTVURL(rawURL string) (string, error) {
	m := ehftvURLRe.FindStringSubmatch(rawURL)
	if m == nil {
		return "", &MalformedInputError{Extractor: ehftvName, URL: rawURL}
	}
	slug := m[ehftvURLRe.SubexpIndex("slug")]
	if err := httputil.ValidateSlug(slug); err != nil {
		return "", fmt.Errorf("%w: %v", &MalformedInputError{Extractor: ehftvName, URL: rawURL}, err)
	}
	return slug, nil
}

func (e *EHFTV) Extract(ctx context.Context, rawURL string) (*media.Info, error) {
	displayID, err := ParseEHFTVURL(rawURL)
	if err != nil {
		return nil, err
	}

	if log.CorrelationIDFromContext(ctx) == "" {
		ctx = log.ContextWithCorrelationID(ctx, "")
	}
	l := log.WithContext(ctx, e.log).With().Str("display_id", displayID).Logger()
	stage(l, StageStart).Str(log.FieldURL, rawURL).Send()

	info, err := e.extract(ctx, l, rawURL, displayID)
	if err != nil {
		stage(l, StageFailed).Err(err).Send()
		return nil, err
	}
	stage(l, StageDone).Str(log.FieldVideoID, info.ID).Send()
	return info, nil
}

func (e *EHFTV) extract(ctx context.Context, l zerolog.Logger, rawURL, displayID string) (*media.Info, error) {
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

	conf, err := e.conf(p, rawURL)
	if err != nil {
		return nil, err
	}
	videoID := string(conf.VideoID)
	l = l.With().Str(log.FieldVideoID, videoID).Logger()

	video, err := e.config(ctx, conf)
	if err != nil {
		return nil, err
	}
	stage(l, StageMetadataFetched).Send()

	tokenURL, err := e.streamAccess(ctx, video)
	if err != nil {
		return nil, err
	}

	formats, err := e.token.formats(ctx, l, tokenURL, videoID, e.opts.GeoHeaders.Clone())
	if err != nil {
		return nil, err
	}

	isLive := video.IsLivestream && video.IsLive
	title := cleanText(video.Title)
	if isLive {
		title = liveTitle(title, e.opts.Now())
	}

	description := cleanText(video.Description)
	if description == "" {
		description = p.meta("og:description")
	}
	thumbnail := video.Image
	if thumbnail == "" {
		thumbnail = p.meta("og:image")
	}

	return &media.Info{
		ID:          videoID,
		DisplayID:   displayID,
		Title:       title,
		Categories:  splitCategories(video.sports()),
		IsLive:      isLive,
		Description: description,
		Thumbnail:   resolveRef(rawURL, thumbnail),
		Extractor:   ehftvName,
		WebpageURL:  rawURL,
		Formats:     formats,
	}, nil
}

func (e *EHFTV) conf(p *page, pageURL string) (*ehftvConf, error) {
	literal, ok := p.searchScripts(confRe)
	if !ok {
		return nil, &MissingFieldError{Field: "player configuration", Source: "webpage"}
	}
	repaired, err := jsobject.ToJSON(literal)
	if err != nil {
		return nil, fmt.Errorf("repairing player configuration: %w", err)
	}

	var conf ehftvConf
	if err := json.Unmarshal([]byte(repaired), &conf); err != nil {
		return nil, fmt.Errorf("decoding player configuration: %w", err)
	}
	if conf.VideoID == "" {
		return nil, &MissingFieldError{Field: "videoid", Source: "player configuration"}
	}
	if conf.ConfigURL == "" {
		return nil, &MissingFieldError{Field: "configUrl", Source: "player configuration"}
	}
	conf.ConfigURL = resolveRef(pageURL, conf.ConfigURL)
	return &conf, nil
}

func (e *EHFTV) config(ctx context.Context, conf *ehftvConf) (*ehftvVideo, error) {
	query := url.Values{
		"videoid":   {string(conf.VideoID)},
		"partnerid": {string(conf.PartnerID)},
		"language":  {conf.Language},
		"portal":    {string(conf.PortalID)},
	}

	var resp ehftvConfig
	if err := e.opts.Fetcher.FetchJSON(ctx, conf.ConfigURL, httputil.Request{Query: query}, &resp); err != nil {
		return nil, fmt.Errorf("downloading video configuration: %w", err)
	}
	if msg := errorMessage(resp.Error); msg != "" {
		return nil, &ExpectedError{Msg: fmt.Sprintf("%s said: %s", ehftvName, msg)}
	}

	video := resp.Video
	if video == nil {
		return nil, &MissingFieldError{Field: "video", Source: "video configuration"}
	}
	if video.Title == "" {
		return nil, &MissingFieldError{Field: "video.title", Source: "video configuration"}
	}
	if video.StreamAccess == "" {
		return nil, &MissingFieldError{Field: "video.streamAccess", Source: "video configuration"}
	}
	if isNullJSON(video.Abo.Required) {
		return nil, &MissingFieldError{Field: "video.abo.required", Source: "video configuration"}
	}
	return video, nil
}

// streamAccess posts the subscription payload and returns the token URL.
func (e *EHFTV) streamAccess(ctx context.Context, video *ehftvVideo) (string, error) {
	req := httputil.Request{
		Method:   http.MethodPost,
		JSONBody: video.Abo.Required,
	}

	var resp ehftvStreamAccess
	if err := e.opts.Fetcher.FetchJSON(ctx, video.StreamAccess, req, &resp); err != nil {
		return "", fmt.Errorf("downloading stream access: %w", err)
	}
	if len(resp.Data.StreamAccess) == 0 || resp.Data.StreamAccess[0] == "" {
		return "", &MissingFieldError{Field: "data.stream-access", Source: "stream access"}
	}
	return resp.Data.StreamAccess[0], nil
}

// errorMessage returns the text of a non-empty error field.
func errorMessage(raw json.RawMessage) string {
	if isEmptyJSON(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return "true"
		}
		return ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if v, _ := strconv.ParseFloat(n.String(), 64); v == 0 {
			return ""
		}
		return n.String()
	}
	return string(bytes.TrimSpace(raw))
}

func isNullJSON(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func isEmptyJSON(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return isNullJSON(raw) || bytes.Equal(raw, []byte("{}")) || bytes.Equal(raw, []byte("[]"))
}

func liveTitle(title string, now time.Time) string {
	return title + " " + now.Format("2006-01-02 15:04")
}

// resolveRef resolves a possibly relative or protocol-relative reference
// against the page URL.
func resolveRef(pageURL, ref string) string {
	if ref == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
