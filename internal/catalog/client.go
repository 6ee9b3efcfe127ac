package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fetcher loads catalog fragments from the built site. It is implemented by
// *Client and can be replaced in tests.
type Fetcher interface {
	FetchCizelge(ctx context.Context) (*Cizelge, error)
	FetchPage(ctx context.Context, page int) ([]GalleryItem, error)
	FetchAsset(ctx context.Context, path string) ([]byte, error)
}

var _ Fetcher = (*Client)(nil)

// Client reads the static JSON catalog over HTTP.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultSiteURL   = "127.0.0.1:4321"
	defaultUserAgent = "galeri/0.1"
	requestTimeout   = 5 * time.Second
	maxAssetBytes    = 64 << 20
)

// NewClient builds a Client for the site at siteURL. A zero timeout uses the
// default of five seconds.
func NewClient(siteURL string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(siteURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = requestTimeout
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized site root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchCizelge retrieves the catalog summary and normalizes its pagination.
func (c *Client) FetchCizelge(ctx context.Context) (*Cizelge, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload Cizelge
	if err := c.FetchJSON(ctx, CizelgePath, &payload); err != nil {
		return nil, err
	}
	payload.PaginationInfo = payload.PaginationInfo.Normalize()
	return &payload, nil
}

// FetchPage retrieves the items of one 1-based page.
func (c *Client) FetchPage(ctx context.Context, page int) ([]GalleryItem, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if page < 1 {
		return nil, fmt.Errorf("invalid page %d", page)
	}
	var items []GalleryItem
	if err := c.FetchJSON(ctx, PagePath(page), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []GalleryItem{}
	}
	return items, nil
}

// FetchAsset retrieves a raw site file such as the search index.
func (c *Client) FetchAsset(ctx context.Context, path string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	resp, target, err := c.get(ctx, &url.URL{Path: path}, "*/*")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return nil, &NetworkError{URL: target, Err: fmt.Errorf("read body: %w", err)}
	}
	return data, nil
}

// FetchJSON decodes the JSON document at the site-relative path into dest.
func (c *Client) FetchJSON(ctx context.Context, path string, dest any) error {
	resp, target, err := c.get(ctx, &url.URL{Path: path}, "application/json")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &ParseError{URL: target, Err: err}
	}
	return nil
}

func (c *Client) get(ctx context.Context, rel *url.URL, accept string) (*http.Response, string, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	target := reqURL.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, target, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, target, &NetworkError{URL: target, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, target, &NetworkError{URL: target, StatusCode: resp.StatusCode}
	}
	return resp, target, nil
}

func parseBaseURL(siteURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(siteURL)
	if trimmed == "" {
		trimmed = defaultSiteURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse site_url %q: %w", siteURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse site_url %q: missing host", siteURL)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
