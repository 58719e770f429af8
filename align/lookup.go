package align

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/dephub/dephub-align/providers/api/da"
)

// lookupAPI is the part of the dependency analysis client LookupSource needs.
type lookupAPI interface {
	Lookup(ctx context.Context, gavs []da.GAV, opts *da.LookupOptions) ([]da.Report, *http.Response, error)
}

// NewLookupSource constructs a source backed by a dependency analysis service.
//
// The service answers per GAV, so the source is told the versions the reactor
// currently declares. suffix narrows the answer to versions carrying it (empty
// for every version).
func NewLookupSource(httpClient *http.Client, serviceURL *url.URL, projects []ProjectCoordinate, suffix string) (*LookupSource, error) {
	api, err := da.NewClient(httpClient, serviceURL)
	if err != nil {
		return nil, &ConfigurationError{Option: "repository.url", Err: err}
	}
	return newLookupSource(api, projects, suffix), nil
}

func newLookupSource(api lookupAPI, projects []ProjectCoordinate, suffix string) *LookupSource {
	ls := &LookupSource{
		api:      api,
		opts:     da.LookupOptions{VersionSuffix: suffix},
		declared: make(map[GA]string, len(projects)),
		reports:  make(map[GA][]string),
	}
	for _, p := range projects {
		ls.declared[p.GA()] = p.OriginalVersion
	}
	return ls
}

// LookupSource asks a dependency analysis service for the aligned versions
// of each artifact.
type LookupSource struct {
	api      lookupAPI
	opts     da.LookupOptions
	declared map[GA]string

	mu      sync.Mutex
	reports map[GA][]string
}

// Prefetch resolves every declared project in one batch request, later
// KnownVersions calls are answered from the batch.
func (ls *LookupSource) Prefetch(ctx context.Context) error {
	if len(ls.declared) == 0 {
		return nil
	}
	gavs := make([]da.GAV, 0, len(ls.declared))
	for ga, v := range ls.declared {
		gavs = append(gavs, da.GAV{GroupID: ga.GroupID, ArtifactID: ga.ArtifactID, Version: v})
	}
	return ls.lookup(ctx, gavs)
}

// KnownVersions returns the versions the service reports for the artifact.
func (ls *LookupSource) KnownVersions(ctx context.Context, groupID, artifactID string) ([]string, error) {
	ga := GA{GroupID: groupID, ArtifactID: artifactID}
	if versions, ok := ls.cached(ga); ok {
		return versions, nil
	}

	gav := da.GAV{GroupID: groupID, ArtifactID: artifactID, Version: ls.declared[ga]}
	if err := ls.lookup(ctx, []da.GAV{gav}); err != nil {
		return nil, &CoordinateResolutionError{Coordinate: ga, Err: err}
	}
	versions, _ := ls.cached(ga)
	return versions, nil
}

func (ls *LookupSource) cached(ga GA) ([]string, bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	versions, ok := ls.reports[ga]
	return append([]string(nil), versions...), ok
}

// lookup sends one batch and records the answer of every GAV, requested GAVs
// missing from the answer are recorded as never published.
func (ls *LookupSource) lookup(ctx context.Context, gavs []da.GAV) error {
	opts := ls.opts
	reports, _, err := ls.api.Lookup(ctx, gavs, &opts)
	if err != nil {
		return fmt.Errorf("dependency analysis lookup: %w", err)
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	for _, g := range gavs {
		ga := GA{GroupID: g.GroupID, ArtifactID: g.ArtifactID}
		if _, ok := ls.reports[ga]; !ok {
			ls.reports[ga] = nil
		}
	}
	for _, r := range reports {
		ga := GA{GroupID: r.GAV.GroupID, ArtifactID: r.GAV.ArtifactID}
		versions := append(ls.reports[ga], r.AvailableVersions...)
		if r.BestMatch != "" && !contains(versions, r.BestMatch) {
			versions = append(versions, r.BestMatch)
		}
		ls.reports[ga] = versions
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
