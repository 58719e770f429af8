/*
Package maven provides a client for the Maven Central search API.

The search API indexes every published GAV (group, artifact, version) of the
repository and is the cheapest way to list the versions an artifact already
has without downloading its repository metadata.

Usage:

	cl, err := maven.NewClient(nil, nil, maven.WithRateLimit(5))
	versions, err := cl.Versions(ctx, "org.acme", "core")
*/
package maven

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/go-querystring/query"
	"golang.org/x/time/rate"
)

// searchHostname - Maven Central search API hostname (used as default API).
var searchHostname string = "https://search.maven.org"

// defaultRows is the page size used when none is given.
const defaultRows = 200

// Client is used to send API requests to the search API.
type Client struct {
	baseURL    url.URL
	HttpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRateLimit limits the client to rps requests per second. Zero or less
// disables limiting.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates and returns a new client.
//
// If a nil URL is provided, the client is configured for Maven Central (search.maven.org).
func NewClient(httpClient *http.Client, URL *url.URL, opts ...ClientOption) (*Client, error) {
	if URL == nil {
		var err error
		if URL, err = url.Parse(searchHostname); err != nil {
			return nil, err
		}
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Client{baseURL: *URL, HttpClient: httpClient}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SearchOptions specifies the parameters to Search() method.
type SearchOptions struct {
	// Core selects the index, 'gav' lists every version, the default one only the latest.
	Core string `url:"core,omitempty"`
	// Rows is used to define the pagination step.
	Rows int `url:"rows,omitempty"`
	// Start is the offset of the first returned document.
	Start int `url:"start"`
	// Format of the response, always 'json' for this client.
	Format string `url:"wt,omitempty"`
}

// Doc is one indexed artifact version.
type Doc struct {
	ID         string `json:"id"`
	GroupID    string `json:"g"`
	ArtifactID string `json:"a"`
	Version    string `json:"v"`
	Packaging  string `json:"p"`
	Timestamp  int64  `json:"timestamp"`
}

// SearchResult represents search result with mutating(!) pagination logic.
// If you want a concurrent pagination - you should load next pages manually.
type SearchResult struct {
	Response struct {
		NumFound int   `json:"numFound"`
		Start    int   `json:"start"`
		Docs     []Doc `json:"docs"`
	} `json:"response"`
	// Original query used to fetch original data.
	q string
	// Options used to fetch original data.
	opts SearchOptions
	// Client used to fetch original data.
	client *Client
}

// Next loads next page (if exists) and mutates existing struct fields with new data.
//
// It returns true if the struct is updated and false when there are no pages left,
// the error is returned only when there is a fatal error fetching the page.
func (sr *SearchResult) Next(ctx context.Context) (bool, error) {
	next := sr.Response.Start + len(sr.Response.Docs)
	if len(sr.Response.Docs) == 0 || next >= sr.Response.NumFound {
		return false, nil
	}
	sr.opts.Start = next

	nextSr, _, err := sr.client.Search(ctx, sr.q, &sr.opts)
	if err != nil {
		return false, err
	}

	*sr = *nextSr
	return true, nil
}

// Search method is used to run a raw search query (e.g. 'g:"org.acme" AND a:"core"').
func (c *Client) Search(ctx context.Context, q string, opts *SearchOptions) (*SearchResult, *http.Response, error) {
	if q == "" {
		return nil, nil, fmt.Errorf("'q' option is required for search request")
	}
	o := SearchOptions{}
	if opts != nil {
		o = *opts
	}
	o.Format = "json"

	v, err := query.Values(o)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing the options: %w", err)
	}
	v.Add("q", q)

	route := fmt.Sprintf("%s/%s?%s", &c.baseURL, "solrsearch/select", v.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", route, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create a request: %w", err)
	}

	sr := SearchResult{client: c, q: q, opts: o}
	var r *http.Response
	if r, err = parseResponse(c, req, &sr); err != nil {
		return nil, nil, err
	}

	return &sr, r, nil
}

// Versions method lists every indexed version of an artifact, walking all the pages.
func (c *Client) Versions(ctx context.Context, groupID, artifactID string) ([]string, error) {
	if groupID == "" || artifactID == "" {
		return nil, fmt.Errorf("'groupID' and 'artifactID' are required for versions request")
	}

	q := fmt.Sprintf("g:%q AND a:%q", groupID, artifactID)
	sr, _, err := c.Search(ctx, q, &SearchOptions{Core: "gav", Rows: defaultRows})
	if err != nil {
		return nil, err
	}

	var versions []string
	for {
		for _, d := range sr.Response.Docs {
			versions = append(versions, d.Version)
		}
		ok, err := sr.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return versions, nil
		}
	}
}

// errorResponse represents search API error response
type errorResponse struct {
	Error struct {
		Msg  string `json:"msg"`
		Code int    `json:"code"`
	} `json:"error"`
}

// parseResponse is used to execute the request and unmarshall the response to dt
func parseResponse(c *Client, req *http.Request, dt interface{}) (r *http.Response, err error) {
	if c.limiter != nil {
		if err = c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	if r, err = c.HttpClient.Do(req); err != nil {
		return nil, fmt.Errorf("unable to send a request: %w", err)
	}
	defer r.Body.Close()

	if r.StatusCode >= 400 {
		return nil, fmt.Errorf("search api responded with HTTP error '%d: %s'", r.StatusCode, http.StatusText(r.StatusCode))
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}

	// Handling error responses from the search api
	var ersp errorResponse
	if perr := json.Unmarshal(body, &ersp); perr == nil && ersp.Error.Msg != "" {
		return nil, fmt.Errorf("search api responded with error '%s'", ersp.Error.Msg)
	}

	if err = json.Unmarshal(body, dt); err != nil {
		return nil, fmt.Errorf("unable to parse response: %w", err)
	}

	return r, nil
}
