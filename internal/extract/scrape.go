package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"
)

// endedMarker is shown by LAOLA1-based players once a live stream is over.
const endedMarker = "Dieser Livestream ist bereits beendet."

func checkEnded(page string) error {
	if strings.Contains(page, endedMarker) {
		return &ExpectedError{Msg: "This live stream has already finished."}
	}
	return nil
}

// page wraps a fetched HTML document.
type page struct {
	raw string
	doc *goquery.Document
}

func parsePage(raw string) (*page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	return &page{raw: raw, doc: doc}, nil
}

// searchScripts returns the first capture group of re found in an inline
// script, falling back to the whole document.
func (p *page) searchScripts(re *regexp.Regexp) (string, bool) {
	var found string
	p.doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if _, ok := s.Attr("src"); ok {
			return true
		}
		if m := re.FindStringSubmatch(s.Text()); m != nil {
			found = m[1]
			return false
		}
		return true
	})
	if found != "" {
		return found, true
	}
	if m := re.FindStringSubmatch(p.raw); m != nil {
		return m[1], true
	}
	return "", false
}

// meta returns the content of <meta property=name> or <meta name=name>.
func (p *page) meta(name string) string {
	sel := p.doc.Find(fmt.Sprintf(`meta[property=%q], meta[name=%q]`, name, name)).First()
	return strings.TrimSpace(sel.AttrOr("content", ""))
}

// splitCategories splits a comma separated list. The result is never nil.
func splitCategories(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string {
		return cleanText(p)
	})
	return lo.Compact(parts)
}

// cleanText trims and NFC-normalises scraped text.
func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"2006/01/02",
	"02/01/2006",
	"January 2, 2006",
	"2 January 2006",
}

// unifiedDate normalises a date string to YYYYMMDD. Unknown formats yield "".
func unifiedDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("20060102")
		}
	}
	// trailing time or zone suffixes: try the leading date only
	if len(s) > 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t.Format("20060102")
		}
		if t, err := time.Parse("02.01.2006", s[:10]); err == nil {
			return t.Format("20060102")
		}
	}
	return ""
}
