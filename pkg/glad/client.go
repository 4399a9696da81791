package glad

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Version is the glad-fetcher release.
const Version = "0.1.0"

const (
	// DefaultOrigin is the public glad generator service.
	DefaultOrigin = "https://glad.dav1d.de"

	generatePath = "generate"

	// DefaultTimeout bounds each request made by the client.
	DefaultTimeout = 60 * time.Second

	maxErrorBody = 512
)

var (
	// ErrDownloadLinkNotFound is returned when the generator's HTML no longer
	// contains a /generated/<token>/glad.zip link.
	ErrDownloadLinkNotFound = errors.New("glad: download link not found in generator response")
	// ErrUnexpectedStatus is wrapped by every *StatusError.
	ErrUnexpectedStatus = errors.New("glad: unexpected status code")
	// ErrForeignOrigin is returned when a resolved link leaves the generator origin.
	ErrForeignOrigin = errors.New("glad: download link outside generator origin")
)

// StatusError reports a non-2xx response from the generator service.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// downloadPathPattern matches the archive link the generator embeds in its result page.
var downloadPathPattern = regexp.MustCompile(`/generated/[^/\s"'<>]+/glad\.zip`)

// Client talks to a glad generator service rooted at a single origin.
type Client struct {
	origin     *url.URL
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client, e.g. to inject a test transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a client for the generator at origin. An empty origin
// selects DefaultOrigin.
func NewClient(origin string, opts ...Option) (*Client, error) {
	if origin == "" {
		origin = DefaultOrigin
	}

	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parse origin %q: %w", origin, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid origin %q: must be an absolute http(s) URL", origin)
	}
	// Trailing slash so that relative references resolve below the origin.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        2,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	c := &Client{
		origin: u,
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Origin returns the generator origin the client resolves links against.
func (c *Client) Origin() string {
	return strings.TrimSuffix(c.origin.String(), "/")
}

// ResolveDownloadURL submits the fixed generation request and returns the
// absolute URL of the generated archive.
func (c *Client) ResolveDownloadURL(ctx context.Context) (string, error) {
	return c.Generate(ctx, DefaultRequest())
}

// Generate submits req to the generator and returns the absolute archive URL
// found in the result page.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	endpoint := c.origin.ResolveReference(&url.URL{Path: generatePath}).String()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(req.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(httpReq, resp); err != nil {
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	path, err := ExtractDownloadPath(string(body))
	if err != nil {
		return "", err
	}

	return c.resolve(path)
}

// Download fetches rawURL and streams the response body into w, returning the
// number of bytes written. If wrap is non-nil the body is read through the
// reader it returns; it receives the advertised content length (-1 if unknown).
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer, wrap func(r io.Reader, size int64) io.Reader) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(req, resp); err != nil {
		return 0, err
	}

	var body io.Reader = resp.Body
	if wrap != nil {
		body = wrap(body, resp.ContentLength)
	}

	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("failed to read archive body: %w", err)
	}

	return n, nil
}

// ExtractDownloadPath returns the first /generated/<token>/glad.zip path found in html.
func ExtractDownloadPath(html string) (string, error) {
	path := downloadPathPattern.FindString(html)
	if path == "" {
		return "", ErrDownloadLinkNotFound
	}
	return path, nil
}

// resolve joins path with the origin and refuses results on another host.
func (c *Client) resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse download path %q: %w", path, err)
	}

	u := c.origin.ResolveReference(ref)
	if u.Scheme != c.origin.Scheme || u.Host != c.origin.Host {
		return "", fmt.Errorf("%w: %s", ErrForeignOrigin, u)
	}

	return u.String(), nil
}

func checkResponse(req *http.Request, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Method:     req.Method,
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
