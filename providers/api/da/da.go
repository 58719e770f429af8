/*
Package da provides a client for a dependency analysis service.

The service keeps track of the builds published for every GAV (group,
artifact, version) and answers, for a batch of GAVs, which aligned versions
of each one already exist.

Usage:

	cl, err := da.NewClient(nil, serviceURL)
	reports, _, err := cl.Lookup(ctx, []da.GAV{{GroupID: "org.acme", ArtifactID: "core", Version: "1.0"}}, nil)
*/
package da

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/go-querystring/query"
)

// lookupRoute is the batch lookup endpoint relative to the service URL.
const lookupRoute = "reports/lookup/gavs"

// NewClient constructs a new Client.
//
// The service has no public instance, so URL is required. If httpClient is nil
// http.DefaultClient is used.
func NewClient(httpClient *http.Client, URL *url.URL) (*Client, error) {
	if URL == nil {
		return nil, fmt.Errorf("dependency analysis service url is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, baseUrl: *URL}, nil
}

// Client is used to communicate with the dependency analysis service.
type Client struct {
	httpClient *http.Client
	baseUrl    url.URL
}

// GAV identifies one artifact version.
type GAV struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
}

// Report is the answer of the service for one GAV.
type Report struct {
	GAV               GAV      `json:"gav"`
	AvailableVersions []string `json:"availableVersions"`
	BestMatch         string   `json:"bestMatchVersion"`
	Blacklisted       bool     `json:"blacklisted"`
}

// LookupOptions specifies the optional parameters to Lookup() method.
type LookupOptions struct {
	// RepositoryGroup restricts the lookup to one repository group.
	RepositoryGroup string `url:"repositoryGroup,omitempty"`
	// VersionSuffix restricts available versions to those carrying the suffix.
	VersionSuffix string `url:"versionSuffix,omitempty"`
	// Temporary includes temporary builds.
	Temporary bool `url:"temporary,omitempty"`
}

// Lookup method returns one report per requested GAV, in the order the service answers.
func (c Client) Lookup(ctx context.Context, gavs []GAV, opts *LookupOptions) ([]Report, *http.Response, error) {
	if len(gavs) == 0 {
		return nil, nil, fmt.Errorf("'gavs' parameter must contain at least one GAV")
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing the options: %w", err)
	}

	body, err := json.Marshal(gavs)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to encode the request body: %w", err)
	}

	route := fmt.Sprintf("%s/%s", &c.baseUrl, lookupRoute)
	if q := v.Encode(); q != "" {
		route += "?" + q
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, route, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create a request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to send the request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, resp, fmt.Errorf("dependency analysis service returned with %d status code", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, fmt.Errorf("unable to read the response body: %w", err)
	}

	var reports []Report
	if err = json.Unmarshal(b, &reports); err != nil {
		return nil, resp, fmt.Errorf("unable to parse the response body: %w", err)
	}

	return reports, resp, nil
}
