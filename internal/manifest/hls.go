package manifest

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"sportsdl/internal/httputil"
	"sportsdl/internal/media"
)

var attrRe = regexp.MustCompile(`([A-Z0-9-]+)=("[^"]*"|[^",]*)`)

// HLS parses a master playlist into one format per variant stream. A media
// playlist yields a single format.
func (a *Akamai) HLS(ctx context.Context, m3u8URL string) ([]media.Format, error) {
	body, err := a.fetcher.FetchBytes(ctx, m3u8URL, httputil.Request{})
	if err != nil {
		return nil, fmt.Errorf("fetching m3u8 playlist: %w", err)
	}
	return ParsePlaylist(string(body), m3u8URL)
}

// ParsePlaylist parses playlist text fetched from playlistURL.
func ParsePlaylist(playlist, playlistURL string) ([]media.Format, error) {
	base, err := url.Parse(playlistURL)
	if err != nil {
		return nil, fmt.Errorf("parsing playlist URL: %w", err)
	}

	scanner := bufio.NewScanner(strings.NewReader(playlist))
	var (
		formats   []media.Format
		pending   map[string]string
		sawHeader bool
		isMedia   bool
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !sawHeader {
			if line != "#EXTM3U" {
				return nil, fmt.Errorf("not an m3u8 playlist")
			}
			sawHeader = true
			continue
		}

		switch {
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF:"):
			pending = parseAttributes(strings.TrimPrefix(line, "#EXT-X-STREAM-INF:"))
		case strings.HasPrefix(line, "#EXTINF:"), strings.HasPrefix(line, "#EXT-X-TARGETDURATION:"):
			isMedia = true
		case strings.HasPrefix(line, "#"):
			continue
		default:
			// URI line
			if pending == nil {
				continue
			}
			ref, err := url.Parse(line)
			if err != nil {
				pending = nil
				continue
			}
			formats = append(formats, variantFormat(pending, base.ResolveReference(ref).String(), playlistURL))
			pending = nil
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !sawHeader {
		return nil, fmt.Errorf("empty playlist")
	}

	if len(formats) == 0 && isMedia {
		formats = append(formats, media.Format{
			FormatID:    "hls",
			URL:         playlistURL,
			ManifestURL: playlistURL,
			Protocol:    media.ProtocolHLS,
			Ext:         "mp4",
		})
	}

	return formats, nil
}

func variantFormat(attrs map[string]string, uri, manifestURL string) media.Format {
	f := media.Format{
		FormatID:    "hls",
		URL:         uri,
		ManifestURL: manifestURL,
		Protocol:    media.ProtocolHLS,
		Ext:         "mp4",
	}

	bw := attrs["AVERAGE-BANDWIDTH"]
	if bw == "" {
		bw = attrs["BANDWIDTH"]
	}
	if v, err := strconv.ParseFloat(bw, 64); err == nil && v > 0 {
		f.TBR = v / 1000
		f.FormatID = fmt.Sprintf("hls-%d", int(f.TBR))
	}

	if w, h, ok := strings.Cut(attrs["RESOLUTION"], "x"); ok {
		f.Width, _ = strconv.Atoi(w)
		f.Height, _ = strconv.Atoi(h)
	}

	return f
}

func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrRe.FindAllStringSubmatch(s, -1) {
		attrs[m[1]] = strings.Trim(m[2], `"`)
	}
	return attrs
}
