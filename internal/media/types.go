// Package media defines shared types for the sportsdl application.
package media

import (
	"cmp"
	"slices"
)

// Protocol identifies how a format is delivered.
type Protocol string

const (
	ProtocolHDS Protocol = "f4m"
	ProtocolHLS Protocol = "m3u8_native"
)

// preference ranks protocols; higher is better.
func (p Protocol) preference() int {
	switch p {
	case ProtocolHLS:
		return 1
	case ProtocolHDS:
		return 0
	default:
		return -1
	}
}

// Format is a single playable rendition of a video.
type Format struct {
	FormatID    string   `json:"format_id"`
	URL         string   `json:"url"`
	ManifestURL string   `json:"manifest_url,omitempty"`
	Protocol    Protocol `json:"protocol"`
	Ext         string   `json:"ext"`
	TBR         float64  `json:"tbr,omitempty"` // Total bitrate in kbit/s
	Width       int      `json:"width,omitempty"`
	Height      int      `json:"height,omitempty"`

	// Query appended to every fragment request (HDS only), e.g. "hdcore=3.7.0".
	ExtraParamToSegmentURL string `json:"extra_param_to_segment_url,omitempty"`
}

// Info is the result of a single extraction.
type Info struct {
	ID          string   `json:"id"`
	DisplayID   string   `json:"display_id"`
	Title       string   `json:"title"`
	UploadDate  string   `json:"upload_date,omitempty"` // YYYYMMDD
	Uploader    string   `json:"uploader,omitempty"`
	Categories  []string `json:"categories"`
	IsLive      bool     `json:"is_live"`
	Description string   `json:"description,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Extractor   string   `json:"extractor"`
	WebpageURL  string   `json:"webpage_url"`
	Formats     []Format `json:"formats"`
}

// Best returns the preferred format, which is the last one after SortFormats.
func (i *Info) Best() (Format, bool) {
	if len(i.Formats) == 0 {
		return Format{}, false
	}
	return i.Formats[len(i.Formats)-1], true
}

// SortFormats orders formats from worst to best: protocol preference first,
// then height, then total bitrate. Equal formats keep their relative order.
func SortFormats(formats []Format) {
	slices.SortStableFunc(formats, func(a, b Format) int {
		if c := cmp.Compare(a.Protocol.preference(), b.Protocol.preference()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Height, b.Height); c != 0 {
			return c
		}
		return cmp.Compare(a.TBR, b.TBR)
	})
}
