package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// LatestVersion is the sentinel selecting the most recent release of a repository.
const LatestVersion = "latest"

var (
	// ErrNoAssetMatch is returned when no release asset satisfies the selector.
	ErrNoAssetMatch = errors.New("no release asset matches selector")
	// ErrAmbiguousAsset is returned when more than one asset satisfies the selector.
	// The shell tooling this replaces silently produced multiple URLs in that
	// case; resolution must instead fail loudly.
	ErrAmbiguousAsset = errors.New("selector matches more than one release asset")
	// errBadHTTPStatus is returned on non-200 responses from the metadata endpoint.
	errBadHTTPStatus = errors.New("unexpected http status")
)

// Asset is a single downloadable file attached to a release.
type Asset struct {
	// Name is the asset file name.
	Name string `json:"name"`
	// BrowserDownloadURL is the direct download location of the asset.
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Release is the subset of GitHub release metadata the resolver needs.
type Release struct {
	// TagName is the git tag of the release.
	TagName string `json:"tag_name"`
	// Assets are the downloadable files attached to the release, in API order.
	Assets []Asset `json:"assets"`
}

// ResolvedAsset is the outcome of a successful resolution.
type ResolvedAsset struct {
	// Tag is the release tag the asset belongs to.
	Tag string
	// Name is the matched asset name.
	Name string
	// URL is the asset download location.
	URL string
}

// Client resolves release assets through the GitHub releases API.
// Calls are anonymous and unauthenticated; the public API rate-limits those,
// and a rejected call fails the whole run since there is no retry policy.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at an alternate API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the HTTP client used for metadata calls.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient returns a Client talking to the public GitHub API unless overridden.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    "https://api.github.com",
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Release fetches release metadata for the repository at the given version.
// Version is either LatestVersion or an explicit tag.
func (c *Client) Release(ctx context.Context, repo, version string) (*Release, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/releases/latest", c.baseURL, repo)
	if version != LatestVersion {
		endpoint = fmt.Sprintf("%s/repos/%s/releases/tags/%s", c.baseURL, repo, version)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build metadata request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch release metadata for %s: %w", repo, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", endpoint, response.Status, errBadHTTPStatus)
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read release metadata: %w", err)
	}

	var release Release
	if err = json.Unmarshal(data, &release); err != nil {
		return nil, fmt.Errorf("decode release metadata: %w", err)
	}

	return &release, nil
}

// ResolveAsset fetches release metadata and applies the selector to the asset list.
// Exactly one asset must match; zero or several matches fail the resolution.
func (c *Client) ResolveAsset(
	ctx context.Context,
	repo, version string,
	selector AssetSelector,
) (*ResolvedAsset, error) {
	release, err := c.Release(ctx, repo, version)
	if err != nil {
		return nil, err
	}

	var matched *Asset

	for i := range release.Assets {
		asset := &release.Assets[i]
		if !selector.Matches(release.TagName, asset.Name) {
			continue
		}

		if matched != nil {
			return nil, fmt.Errorf("%s in %s (%s and %s): %w",
				selector, repo, matched.Name, asset.Name, ErrAmbiguousAsset)
		}

		matched = asset
	}

	if matched == nil {
		return nil, fmt.Errorf("%s in %s at %s: %w", selector, repo, release.TagName, ErrNoAssetMatch)
	}

	return &ResolvedAsset{
		Tag:  release.TagName,
		Name: matched.Name,
		URL:  matched.BrowserDownloadURL,
	}, nil
}
