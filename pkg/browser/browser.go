package browser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"
)

// DefaultTimeout bounds connecting and waiting for response headers when
// none is configured.
const DefaultTimeout = 60 * time.Second

// maxDrain caps how much of an error response body is read before closing it.
const maxDrain = 64 << 10

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "avrex/1.0 (+https://github.com/usestring/avrex)"

// Page is an HTML document the browser has navigated to.
type Page struct {
	URL        *url.URL
	StatusCode int
	Document   *goquery.Document
}

// Browser is a stateful HTTP session with a cookie jar and a current page.
type Browser struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	page       *Page
}

// Option is a functional option for configuring the Browser.
type Option func(*Browser)

// WithHTTPClient sets a custom HTTP client.
// A cookie jar is attached if the client does not have one. The client is
// copied, so later changes to it have no effect.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(b *Browser) {
		b.httpClient = httpClient
	}
}

// WithTimeout bounds dialing, the TLS handshake and the wait for response
// headers. Response bodies are only bounded by the request context, so a
// slow export keeps streaming. Zero disables the limit.
//
// With WithHTTPClient the limit is applied to a copy of the client's
// *http.Transport (or the default transport when it has none), and only to
// timeouts the transport leaves unset. Other RoundTrippers are used as is.
func WithTimeout(d time.Duration) Option {
	return func(b *Browser) {
		b.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(b *Browser) {
		b.userAgent = ua
	}
}

// New creates a new Browser with an empty cookie jar and no current page.
func New(opts ...Option) (*Browser, error) {
	b := &Browser{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(b)
	}

	var hc http.Client
	if b.httpClient != nil {
		hc = *b.httpClient
	}
	if b.timeout > 0 {
		hc.Transport = limitTransport(hc.Transport, b.timeout)
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
		hc.Jar = jar
	}
	b.httpClient = &hc

	return b, nil
}

// limitTransport returns rt with connection and header timeouts of d.
func limitTransport(rt http.RoundTripper, d time.Duration) http.RoundTripper {
	var t *http.Transport
	switch base := rt.(type) {
	case nil:
		t = http.DefaultTransport.(*http.Transport).Clone()
		t.DialContext = (&net.Dialer{Timeout: d, KeepAlive: 30 * time.Second}).DialContext
		t.TLSHandshakeTimeout = d
	case *http.Transport:
		t = base.Clone()
		if t.TLSHandshakeTimeout == 0 {
			t.TLSHandshakeTimeout = d
		}
	default:
		return rt
	}
	if t.ResponseHeaderTimeout == 0 {
		t.ResponseHeaderTimeout = d
	}
	return t
}

// Page returns the current page, or nil if nothing has been opened.
func (b *Browser) Page() *Page {
	return b.page
}

// URL returns the URL of the current page, or nil if nothing has been opened.
func (b *Browser) URL() *url.URL {
	if b.page == nil {
		return nil
	}
	return b.page.URL
}

// ResolveURL resolves ref against the current page URL.
// Without a current page ref must be absolute.
func (b *Browser) ResolveURL(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parsing URL %q: %w", ref, err)
	}
	if b.page != nil {
		return b.page.URL.ResolveReference(u), nil
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("relative URL %q without a current page: %w", ref, ErrNoPage)
	}
	return u, nil
}

// Open fetches rawURL with GET and makes the result the current page.
func (b *Browser) Open(ctx context.Context, rawURL string) (*Page, error) {
	u, err := b.ResolveURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := b.do(req)
	if err != nil {
		return nil, err
	}
	return b.load(resp)
}

// SelectForm returns the first form on the current page matching selector.
func (b *Browser) SelectForm(selector string) (*Form, error) {
	if b.page == nil {
		return nil, ErrNoPage
	}
	sel := b.page.Document.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return goquery.NodeName(s) == "form"
	}).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %q on %s", ErrFormNotFound, selector, b.page.URL)
	}
	return newForm(sel), nil
}

// Submit submits form and makes the response the current page.
func (b *Browser) Submit(ctx context.Context, form *Form) (*Page, error) {
	req, err := b.formRequest(ctx, form)
	if err != nil {
		return nil, err
	}

	resp, err := b.do(req)
	if err != nil {
		return nil, err
	}
	return b.load(resp)
}

// SubmitStream submits form and returns the open response without touching the
// current page. The caller must close the response body.
func (b *Browser) SubmitStream(ctx context.Context, form *Form) (*http.Response, error) {
	req, err := b.formRequest(ctx, form)
	if err != nil {
		return nil, err
	}
	return b.do(req)
}

// formRequest builds the request a browser would send when submitting form.
func (b *Browser) formRequest(ctx context.Context, form *Form) (*http.Request, error) {
	target, err := b.ResolveURL(form.Action())
	if err != nil {
		return nil, fmt.Errorf("resolving form action: %w", err)
	}

	values := form.Values()

	var req *http.Request
	switch form.Method() {
	case http.MethodPost:
		body, contentType, err := form.encode(values)
		if err != nil {
			return nil, fmt.Errorf("encoding form: %w", err)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, target.String(), body)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
	default:
		u := *target
		u.RawQuery = values.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
	}

	if b.page != nil {
		req.Header.Set("Referer", b.page.URL.String())
	}
	return req, nil
}

// do sends req and rejects responses outside the 2xx range.
// On success the caller owns the response body.
func (b *Browser) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	req.Header.Set("User-Agent", b.userAgent)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		slog.Debug("HTTP request failed",
			slog.String("method", req.Method),
			slog.String("url", redact(req.URL)),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, fmt.Errorf("executing request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
		resp.Body.Close()
		slog.Debug("HTTP request returned error",
			slog.String("method", req.Method),
			slog.String("url", redact(resp.Request.URL)),
			slog.Int("status", resp.StatusCode),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, &HTTPError{
			Method:     req.Method,
			URL:        resp.Request.URL.String(),
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	slog.Debug("HTTP request completed",
		slog.String("method", req.Method),
		slog.String("url", redact(resp.Request.URL)),
		slog.Int("status", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return resp, nil
}

// load parses resp as HTML and makes it the current page.
func (b *Browser) load(resp *http.Response) (*Page, error) {
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Url = resp.Request.URL

	b.page = &Page{
		URL:        resp.Request.URL,
		StatusCode: resp.StatusCode,
		Document:   doc,
	}
	return b.page, nil
}

// redact drops the query string, which carries session identifiers on most portals.
func redact(u *url.URL) string {
	if u.RawQuery == "" {
		return u.String()
	}
	c := *u
	c.RawQuery = ""
	return strings.TrimSuffix(c.String(), "?") + "?..."
}
