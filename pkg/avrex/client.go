package avrex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/usestring/avrex/pkg/browser"
)

// Environment variables consulted when a credential is not passed explicitly.
const (
	EnvUsername = "AV_USERNAME"
	EnvPassword = "AV_PASSWORD"
	EnvURL      = "AV_URL"
)

// Form and field names used by the portal.
const (
	formSelector  = "#form1"
	fieldUsername = "user_name"
	fieldPassword = "password"
	fieldReport   = "report_id"
	fieldFormat   = "format_id"
	fieldStart    = "start_date"
	fieldEnd      = "end_date"
)

var (
	errorBanner = cascadia.MustCompile("div.clsError")
	metaRefresh = cascadia.MustCompile("meta[http-equiv='refresh']")
)

// Credentials identify the account and the portal login page.
// Empty fields fall back to AV_USERNAME, AV_PASSWORD and AV_URL.
type Credentials struct {
	Username string
	Password string
	LoginURL string
}

// resolve fills empty fields from the environment.
func (c Credentials) resolve() (Credentials, error) {
	if c.Username == "" {
		c.Username = os.Getenv(EnvUsername)
	}
	if c.Password == "" {
		c.Password = os.Getenv(EnvPassword)
	}
	if c.LoginURL == "" {
		c.LoginURL = os.Getenv(EnvURL)
	}

	var missing []string
	if c.Username == "" {
		missing = append(missing, EnvUsername)
	}
	if c.Password == "" {
		missing = append(missing, EnvPassword)
	}
	if c.LoginURL == "" {
		missing = append(missing, EnvURL)
	}
	if len(missing) > 0 {
		return c, &ConfigurationError{Missing: missing}
	}
	return c, nil
}

// Client is an authenticated session with the portal.
//
// A Client is not safe for concurrent use. Callers sharing one across
// goroutines must serialize calls.
type Client struct {
	browser    *browser.Browser
	reportsURL string
}

// clientConfig holds configuration built from options.
type clientConfig struct {
	browserOpts []browser.Option
}

// Option configures the Client.
type Option func(*clientConfig)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(cfg *clientConfig) {
		cfg.browserOpts = append(cfg.browserOpts, browser.WithHTTPClient(httpClient))
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) {
		cfg.browserOpts = append(cfg.browserOpts, browser.WithTimeout(d))
	}
}

// WithUserAgent sets the User-Agent header sent to the portal.
func WithUserAgent(ua string) Option {
	return func(cfg *clientConfig) {
		cfg.browserOpts = append(cfg.browserOpts, browser.WithUserAgent(ua))
	}
}

// New logs in to the portal and returns a ready Client.
func New(ctx context.Context, creds Credentials, opts ...Option) (*Client, error) {
	creds, err := creds.resolve()
	if err != nil {
		return nil, err
	}

	var cfg clientConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	b, err := browser.New(cfg.browserOpts...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reportsURL, err := login(ctx, b, creds)
	if err != nil {
		return nil, err
	}

	slog.Info("logged in",
		slog.String("user", creds.Username),
		slog.String("host", b.URL().Host),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return &Client{browser: b, reportsURL: reportsURL}, nil
}

// ReportsURL returns the session scoped reports page URL.
func (c *Client) ReportsURL() string {
	return c.reportsURL
}

// login runs the form login and returns the reports page URL.
func login(ctx context.Context, b *browser.Browser, creds Credentials) (string, error) {
	if _, err := b.Open(ctx, creds.LoginURL); err != nil {
		return "", fmt.Errorf("opening login page: %w", err)
	}

	form, err := b.SelectForm(formSelector)
	if err != nil {
		if errors.Is(err, browser.ErrFormNotFound) {
			return "", &LoginError{
				URL:     b.URL().String(),
				Message: "login form not found on " + b.URL().String(),
				Err:     err,
			}
		}
		return "", err
	}
	if err := form.Set(fieldUsername, creds.Username); err != nil {
		return "", &LoginError{URL: b.URL().String(), Message: err.Error(), Err: err}
	}
	if err := form.Set(fieldPassword, creds.Password); err != nil {
		return "", &LoginError{URL: b.URL().String(), Message: err.Error(), Err: err}
	}

	page, err := b.Submit(ctx, form)
	if err != nil {
		return "", fmt.Errorf("submitting login form: %w", err)
	}

	if banner := page.Document.FindMatcher(errorBanner).First(); banner.Length() > 0 {
		return "", &LoginError{URL: page.URL.String(), Message: strippedText(banner)}
	}

	location, err := refreshLocation(page)
	if err != nil {
		return "", err
	}

	if _, err := b.Open(ctx, location); err != nil {
		return "", fmt.Errorf("following login redirect: %w", err)
	}

	assnID, err := associationID(location)
	if err != nil {
		return "", err
	}

	reports, err := b.ResolveURL("/Reports/" + assnID)
	if err != nil {
		return "", err
	}
	return reports.String(), nil
}

// refreshLocation returns the target of the page's meta refresh tag: whatever
// follows the first literal "url=" in its content, trimmed.
func refreshLocation(page *browser.Page) (string, error) {
	meta := page.Document.FindMatcher(metaRefresh).First()
	if meta.Length() == 0 {
		return "", &LoginError{URL: page.URL.String(), Message: "no meta refresh redirect after login on " + page.URL.String()}
	}

	content := meta.AttrOr("content", "")
	i := strings.Index(content, "url=")
	if i < 0 {
		return "", &LoginError{URL: page.URL.String(), Message: fmt.Sprintf("meta refresh %q has no url", content)}
	}
	return strings.TrimSpace(content[i+len("url="):]), nil
}

// associationID extracts the assn_id query parameter from location.
func associationID(location string) (string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", &LoginError{URL: location, Message: "invalid redirect URL " + location, Err: err}
	}
	id := u.Query().Get("assn_id")
	if id == "" {
		return "", &LoginError{URL: location, Message: "redirect URL has no assn_id: " + location}
	}
	return id, nil
}

// strippedText joins the whitespace-trimmed, non-empty text nodes under s with single spaces.
func strippedText(s *goquery.Selection) string {
	var parts []string
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			if t := strings.TrimSpace(c.Text()); t != "" {
				parts = append(parts, t)
			}
			return
		}
		if t := strippedText(c); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}
