package extract

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"sportsdl/internal/httputil"
	"sportsdl/internal/media"
)

// recorded is one request seen by a fakeSite.
type recorded struct {
	Method string
	Host   string
	Path   string
	Query  url.Values
	Header http.Header
	Body   string
}

// fakeSite serves fixtures for every host. Requests are routed to a single
// httptest server and keyed by host and path.
type fakeSite struct {
	t      *testing.T
	srv    *httptest.Server
	routes map[string]string

	mu       sync.Mutex
	requests []recorded
}

func newFakeSite(t *testing.T, routes map[string]string) *fakeSite {
	t.Helper()
	s := &fakeSite{t: t, routes: routes}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *fakeSite) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.requests = append(s.requests, recorded{
		Method: r.Method,
		Host:   r.Host,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   string(body),
	})
	s.mu.Unlock()

	content, ok := s.routes[r.Host+r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = io.WriteString(w, content)
}

// fetcher returns a Fetcher whose requests all land on the fake site.
func (s *fakeSite) fetcher() *httputil.Fetcher {
	target, _ := url.Parse(s.srv.URL)
	client := &http.Client{Transport: rewriteTransport{target: target, base: s.srv.Client().Transport}}
	return httputil.NewFetcherWithClient(client, httputil.Options{})
}

func (s *fakeSite) recorded() []recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recorded(nil), s.requests...)
}

func (s *fakeSite) find(host, path string) (recorded, bool) {
	for _, r := range s.recorded() {
		if r.Host == host && r.Path == path {
			return r, true
		}
	}
	return recorded{}, false
}

type rewriteTransport struct {
	target *url.URL
	base   http.RoundTripper
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Host = req.URL.Host
	out.URL.Scheme = rt.target.Scheme
	out.URL.Host = rt.target.Host
	return rt.base.RoundTrip(out)
}

// fakeResolver records the manifest URL and returns fixed formats.
type fakeResolver struct {
	manifestURL string
	videoID     string
	calls       int
}

func (r *fakeResolver) Resolve(_ context.Context, manifestURL, videoID string) ([]media.Format, error) {
	r.calls++
	r.manifestURL = manifestURL
	r.videoID = videoID
	return []media.Format{
		{FormatID: "hds-500", URL: manifestURL, Protocol: media.ProtocolHDS, TBR: 500},
		{FormatID: "hls-1628", URL: "http://laola1tv-live.akamaihd.net/i/index_0_av.m3u8", Protocol: media.ProtocolHLS, TBR: 1628},
	}, nil
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}
