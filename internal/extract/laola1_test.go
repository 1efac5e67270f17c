package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const laola1EmbedURL = "https://cdn.laola1.tv/titanplayer.php?videoid=694096&type=S&customer=2302&v5ident=&jsdebug=false"

func TestParseLaola1URL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantID       string
		wantCustomer string
		wantErr      bool
	}{
		{
			name:         "embed URL",
			url:          laola1EmbedURL,
			wantID:       "694096",
			wantCustomer: "2302",
		},
		{
			name:         "plain http",
			url:          "http://cdn.laola1.tv/titanplayer.php?videoid=1&type=V&customer=7",
			wantID:       "1",
			wantCustomer: "7",
		},
		{
			name:    "non-numeric video id",
			url:     "https://cdn.laola1.tv/titanplayer.php?videoid=abc&type=S&customer=2302",
			wantErr: true,
		},
		{
			name:    "missing customer",
			url:     "https://cdn.laola1.tv/titanplayer.php?videoid=694096&type=S",
			wantErr: true,
		},
		{
			name:    "not a cdn host",
			url:     "https://www.laola1.tv/titanplayer.php?videoid=694096&type=S&customer=2302",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, customer, err := ParseLaola1URL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLaola1URL() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil {
				if !errors.Is(err, ErrMalformedURL) {
					t.Errorf("error %v does not wrap ErrMalformedURL", err)
				}
				return
			}
			if id != tt.wantID {
				t.Errorf("id = %q, want %q", id, tt.wantID)
			}
			if customer != tt.wantCustomer {
				t.Errorf("customer = %q, want %q", customer, tt.wantCustomer)
			}
		})
	}
}

func laola1Routes(t *testing.T) map[string]string {
	return map[string]string{
		"cdn.laola1.tv/titanplayer.php":                       fixture(t, "laola1_embed.html"),
		"www.laola1.tv/server/hd_video.php":                   fixture(t, "laola1_video.xml"),
		"streamaccess.laola1.tv/hdflash/1/hdlaola1_694096.xml": fixture(t, "token_ok.xml"),
	}
}

func newLaola1(site *fakeSite, resolver *fakeResolver) *Laola1 {
	return NewLaola1(Options{Fetcher: site.fetcher(), Resolver: resolver})
}

func TestLaola1Extract(t *testing.T) {
	site := newFakeSite(t, laola1Routes(t))
	resolver := &fakeResolver{}

	info, err := newLaola1(site, resolver).Extract(context.Background(), laola1EmbedURL)
	require.NoError(t, err)

	assert.Equal(t, "694096", info.ID)
	assert.Equal(t, "Video_694096", info.DisplayID)
	assert.Equal(t, "Frankreich - Polen", info.Title)
	assert.Equal(t, "20161204", info.UploadDate)
	assert.Equal(t, "EHF - Europäischer Handball Verband", info.Uploader)
	assert.Equal(t, []string{"Handball", "Europameisterschaft"}, info.Categories)
	assert.False(t, info.IsLive)
	assert.Equal(t, "cdnlaola1tv", info.Extractor)
	assert.Equal(t, laola1EmbedURL, info.WebpageURL)
	require.Len(t, info.Formats, 2)

	meta, ok := site.find("www.laola1.tv", "/server/hd_video.php")
	require.True(t, ok, "metadata was not requested")
	assert.Equal(t, "694096", meta.Query.Get("play"))
	assert.Equal(t, "2302", meta.Query.Get("partner"))
	assert.Equal(t, "de", meta.Query.Get("portal"))
	assert.Equal(t, "de", meta.Query.Get("lang"))
	assert.True(t, meta.Query.Has("v5ident"))

	tok, ok := site.find("streamaccess.laola1.tv", "/hdflash/1/hdlaola1_694096.xml")
	require.True(t, ok, "token was not requested")
	assert.Equal(t, "1481035392", tok.Query.Get("timestamp"))
	assert.Equal(t, "8a3f0c2e9b", tok.Query.Get("auth"))
	assert.Equal(t, "0", tok.Query.Get("klub"))
	assert.Equal(t, "0", tok.Query.Get("unikey"))
	assert.True(t, tok.Query.Has("ident"))
	assert.False(t, tok.Query.Has("format"))

	assert.Equal(t, 1, resolver.calls)
	assert.Equal(t, "694096", resolver.videoID)
	assert.Equal(t,
		"http://laola1tv-live.akamaihd.net/z/ehf_694096_1@183745/manifest.f4m?hdnea=st=1481035392~exp=1481049792~acl=/*~hmac=3f9a",
		resolver.manifestURL)
}

func TestLaola1EndedStream(t *testing.T) {
	routes := laola1Routes(t)
	routes["cdn.laola1.tv/titanplayer.php"] = fixture(t, "laola1_ended.html")
	site := newFakeSite(t, routes)
	resolver := &fakeResolver{}

	_, err := newLaola1(site, resolver).Extract(context.Background(), laola1EmbedURL)
	require.Error(t, err)

	var expected *ExpectedError
	require.ErrorAs(t, err, &expected)
	assert.Equal(t, "This live stream has already finished.", expected.Msg)
	assert.True(t, IsExpected(err))

	// only the page itself was fetched
	assert.Len(t, site.recorded(), 1)
	assert.Zero(t, resolver.calls)
}

func TestLaola1TokenRejected(t *testing.T) {
	tests := []struct {
		name        string
		token       string
		wantComment string
	}{
		{
			name:        "blocked auth",
			token:       fixture(t, "token_blocked.xml"),
			wantComment: "Dieses Video ist in deinem Land nicht verfügbar.",
		},
		{
			name:        "non-zero status",
			token:       fixture(t, "token_status.xml"),
			wantComment: "Login required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			routes := laola1Routes(t)
			routes["streamaccess.laola1.tv/hdflash/1/hdlaola1_694096.xml"] = tt.token
			site := newFakeSite(t, routes)
			resolver := &fakeResolver{}

			_, err := newLaola1(site, resolver).Extract(context.Background(), laola1EmbedURL)
			require.Error(t, err)

			var tokenErr *TokenError
			require.ErrorAs(t, err, &tokenErr)
			assert.Equal(t, tt.wantComment, tokenErr.Comment)
			assert.Contains(t, err.Error(), tt.wantComment)
			assert.True(t, IsExpected(err))
			assert.Zero(t, resolver.calls)
		})
	}
}

func TestLaola1MissingPageValues(t *testing.T) {
	routes := laola1Routes(t)
	routes["cdn.laola1.tv/titanplayer.php"] = fixture(t, "laola1_noauth.html")
	site := newFakeSite(t, routes)

	_, err := newLaola1(site, &fakeResolver{}).Extract(context.Background(), laola1EmbedURL)
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "auth", missing.Field)
	assert.False(t, IsExpected(err))
}

func TestLaola1MetadataFields(t *testing.T) {
	tests := []struct {
		name           string
		sports         string
		islive         string
		wantCategories []string
		wantLive       bool
	}{
		{name: "live", sports: "<meta_sports>Handball</meta_sports>", islive: "true", wantCategories: []string{"Handball"}, wantLive: true},
		{name: "capitalised live flag", sports: "", islive: "True", wantCategories: []string{}, wantLive: false},
		{name: "empty sports", sports: "<meta_sports></meta_sports>", islive: "", wantCategories: []string{}, wantLive: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xml := `<?xml version="1.0" encoding="UTF-8"?><data><video>` +
				`<title>Frankreich - Polen</title>` +
				`<url>http://streamaccess.laola1.tv/hdflash/1/hdlaola1_694096.xml</url>` +
				tt.sports +
				`<islive>` + tt.islive + `</islive>` +
				`</video></data>`
			routes := laola1Routes(t)
			routes["www.laola1.tv/server/hd_video.php"] = xml
			site := newFakeSite(t, routes)

			info, err := newLaola1(site, &fakeResolver{}).Extract(context.Background(), laola1EmbedURL)
			require.NoError(t, err)
			assert.NotNil(t, info.Categories)
			assert.Equal(t, tt.wantCategories, info.Categories)
			assert.Equal(t, tt.wantLive, info.IsLive)
			assert.Empty(t, info.UploadDate)
		})
	}
}

func TestLaola1MissingTitle(t *testing.T) {
	routes := laola1Routes(t)
	routes["www.laola1.tv/server/hd_video.php"] = strings.Replace(fixture(t, "laola1_video.xml"), "<![CDATA[Frankreich - Polen]]>", "", 1)
	site := newFakeSite(t, routes)

	_, err := newLaola1(site, &fakeResolver{}).Extract(context.Background(), laola1EmbedURL)
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "title", missing.Field)
}

func TestLaola1MalformedURL(t *testing.T) {
	site := newFakeSite(t, laola1Routes(t))

	_, err := newLaola1(site, &fakeResolver{}).Extract(context.Background(), "https://cdn.laola1.tv/titanplayer.php?videoid=x")
	require.ErrorIs(t, err, ErrMalformedURL)
	assert.Empty(t, site.recorded())
}
