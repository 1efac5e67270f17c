package manifest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"sportsdl/internal/httputil"
	"sportsdl/internal/log"
	"sportsdl/internal/media"
)

type f4mManifest struct {
	BootstrapInfo []struct {
		ID string `xml:"id,attr"`
	} `xml:"bootstrapInfo"`
	Media []f4mMedia `xml:"media"`
}

type f4mMedia struct {
	URL     string `xml:"url,attr"`
	Bitrate string `xml:"bitrate,attr"`
	Width   string `xml:"width,attr"`
	Height  string `xml:"height,attr"`
}

// HDS parses an F4M manifest. The HDS downloader selects the media entry by
// bitrate, so every format points at the manifest itself.
func (a *Akamai) HDS(ctx context.Context, f4mURL string) ([]media.Format, error) {
	body, err := a.fetcher.FetchBytes(ctx, f4mURL, httputil.Request{})
	if err != nil {
		return nil, fmt.Errorf("fetching f4m manifest: %w", err)
	}

	var m f4mManifest
	if err := httputil.DecodeElement(body, "manifest", &m); err != nil {
		return nil, fmt.Errorf("parsing f4m manifest: %w", err)
	}

	ext := ""
	if len(m.BootstrapInfo) > 0 {
		ext = "flv"
	}

	l := log.WithContext(ctx, a.log)

	var formats []media.Format
	for _, entry := range m.Media {
		// nested manifests are not followed
		if strings.HasSuffix(entry.URL, ".f4m") || strings.HasSuffix(entry.URL, ".m3u8") {
			l.Debug().Str(log.FieldURL, entry.URL).Str("bitrate", entry.Bitrate).Msg("skipping nested hds manifest")
			continue
		}

		tbr, _ := strconv.ParseFloat(entry.Bitrate, 64)
		width, _ := strconv.Atoi(entry.Width)
		height, _ := strconv.Atoi(entry.Height)

		id := "hds"
		if tbr > 0 {
			id = fmt.Sprintf("hds-%d", int(tbr))
		}

		formats = append(formats, media.Format{
			FormatID:               id,
			URL:                    f4mURL,
			ManifestURL:            f4mURL,
			Protocol:               media.ProtocolHDS,
			Ext:                    ext,
			TBR:                    tbr,
			Width:                  width,
			Height:                 height,
			ExtraParamToSegmentURL: hdcoreSign,
		})
	}

	return formats, nil
}
