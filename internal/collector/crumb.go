package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"
)

const (
	yahooCookieURL = "https://fc.yahoo.com"
	yahooCrumbURL  = yahooHost + "/v1/test/getcrumb"
	yahooUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// yahooSession holds the consent cookie and crumb the v7 quote and v10
// quoteSummary endpoints require. The handshake runs once per session and
// again only after Yahoo rejects the crumb.
type yahooSession struct {
	client *http.Client // shares the cookie jar; performs the handshake

	mu    sync.Mutex
	crumb string
}

// Crumb returns the current crumb, performing the handshake if there is none.
func (s *yahooSession) Crumb(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.crumb != "" {
		return s.crumb, nil
	}

	// fc.yahoo.com answers 404 but sets the session cookie; only transport errors matter.
	resp, err := s.get(ctx, yahooCookieURL)
	if err != nil {
		return "", fmt.Errorf("yahoo cookie: %w", err)
	}
	resp.Body.Close()

	resp, err = s.get(ctx, yahooCrumbURL)
	if err != nil {
		return "", fmt.Errorf("yahoo crumb: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", fmt.Errorf("yahoo crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if resp.StatusCode != http.StatusOK || crumb == "" || strings.ContainsAny(crumb, "<{ ") {
		return "", fmt.Errorf("yahoo crumb: status %d, body: %s", resp.StatusCode, truncate(crumb, 100))
	}
	s.crumb = crumb
	return crumb, nil
}

// Invalidate drops the crumb so the next request repeats the handshake.
func (s *yahooSession) Invalidate() {
	s.mu.Lock()
	s.crumb = ""
	s.mu.Unlock()
}

func (s *yahooSession) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", yahooUserAgent)
	return s.client.Do(req)
}

// crumbTransport adds the session crumb to every request and drops it when
// Yahoo answers 401, so a stale crumb costs one failed symbol rather than the run.
type crumbTransport struct {
	session *yahooSession
	inner   http.RoundTripper
}

func (t *crumbTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	crumb, err := t.session.Crumb(req.Context())
	if err != nil {
		return nil, err
	}
	r := req.Clone(req.Context())
	q := r.URL.Query()
	q.Set("crumb", crumb)
	r.URL.RawQuery = q.Encode()
	// The client attached its cookies before the handshake could store any.
	for _, c := range t.session.client.Jar.Cookies(r.URL) {
		if _, err := r.Cookie(c.Name); err != nil {
			r.AddCookie(c)
		}
	}
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", yahooUserAgent)
	}

	resp, err := t.inner.RoundTrip(r)
	if err == nil && resp.StatusCode == http.StatusUnauthorized {
		t.session.Invalidate()
	}
	return resp, err
}

// newYahooSessionClient returns a client whose requests carry the Yahoo
// cookie and crumb. base performs the actual network I/O.
func newYahooSessionClient(base http.RoundTripper) *http.Client {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	session := &yahooSession{
		client: &http.Client{Jar: jar, Transport: base, Timeout: defaultTimeout},
	}
	return &http.Client{
		Jar:       jar,
		Transport: &crumbTransport{session: session, inner: base},
		Timeout:   defaultTimeout,
	}
}
