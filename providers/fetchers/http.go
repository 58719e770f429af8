package fetchers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTPFetcher reads files from a plain HTTP repository (e.g. a Maven repository root).
type HTTPFetcher struct {
	baseURL    url.URL
	HttpClient *http.Client
}

// NewHTTPFetcher constructs HTTPFetcher for the repository rooted at baseURL.
// If httpClient is nil http.DefaultClient is used.
func NewHTTPFetcher(httpClient *http.Client, baseURL *url.URL) (*HTTPFetcher, error) {
	if baseURL == nil {
		return nil, fmt.Errorf("repository url is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPFetcher{baseURL: *baseURL, HttpClient: httpClient}, nil
}

// FileContent downloads the file at the root-related path.
func (f HTTPFetcher) FileContent(ctx context.Context, path string) ([]byte, error) {
	route := strings.TrimSuffix(f.baseURL.String(), "/") + "/" + strings.TrimPrefix(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, route, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create a request: %w", err)
	}

	resp, err := f.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to send a request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrFileNotFound
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("repository responded with HTTP error '%d: %s'", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}
	return body, nil
}
