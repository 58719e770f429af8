package align

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dephub/dephub-align/providers/api/maven"
	"github.com/dephub/dephub-align/providers/fetchers"
	"github.com/dephub/dephub-align/providers/parsers"
	"golang.org/x/sync/singleflight"
)

// MetadataVersionSource answers which versions of an artifact have already
// been published. Implementations must be safe for concurrent use.
type MetadataVersionSource interface {
	// KnownVersions returns every published version of the artifact. An artifact
	// that was never published yields no versions and no error.
	KnownVersions(ctx context.Context, groupID, artifactID string) ([]string, error)
}

// RepositoryLayout selects how a repository lists the versions of an artifact.
type RepositoryLayout string

// Available repository layouts
const (
	// LayoutMavenMetadata reads 'maven-metadata.xml' files.
	LayoutMavenMetadata = RepositoryLayout("maven-metadata")
	// LayoutVersionList reads plain 'versions.txt' files.
	LayoutVersionList = RepositoryLayout("versions-list")
)

// gitRepoRgx is used to parse repository info from GIT-compatible address string.
//
// Examples matching the regexp:
//
//	'git@github.com:vendor/reponame.git'
//	'https://github.com/vendor/reponame.git' and so on...
//
// Groups:
//
//	6: hostname (e.g. 'github.com')
//	8: full repo name (e.g. 'vendor/reponame')
var gitRepoRgx string = `^(((git@)|(git:|ssh:|(http[s]?:\/\/))))([\w\.@\\-~]+)(:|\/)([\w\.@\:\/\-~]+)(\.git)(\/-)?`

// gitRepoRgxCompiled is compiled from gitRepoRgx.
var gitRepoRgxCompiled *regexp.Regexp

func init() {
	gitRepoRgxCompiled = regexp.MustCompile(gitRepoRgx)
}

// NewMemorySource constructs a source answering from a 'groupId:artifactId' keyed map.
func NewMemorySource(versions map[string][]string) (*MemorySource, error) {
	ms := &MemorySource{versions: make(map[GA][]string, len(versions))}
	for k, v := range versions {
		ga, err := ParseGA(k)
		if err != nil {
			return nil, err
		}
		ms.versions[ga] = append([]string(nil), v...)
	}
	return ms, nil
}

// MemorySource is an in-memory MetadataVersionSource (useful for testing or
// for callers that already know the published versions).
type MemorySource struct {
	versions map[GA][]string
}

// KnownVersions returns a copy of the stored versions.
func (ms MemorySource) KnownVersions(ctx context.Context, groupID, artifactID string) ([]string, error) {
	return append([]string(nil), ms.versions[GA{GroupID: groupID, ArtifactID: artifactID}]...), nil
}

// NewRepositorySource constructs a source reading version lists from a
// repository through fetcher.
func NewRepositorySource(fetcher fetchers.FileFetcher, layout RepositoryLayout) (*RepositorySource, error) {
	parser, err := solveParser(layout, fetcher)
	if err != nil {
		return nil, err
	}
	return &RepositorySource{parser: parser}, nil
}

// NewGitSource constructs a RepositorySource over a Maven repository committed
// to a GitHub project.
//
// SHA can both refer to commit hash/branch/tag, root is the repository
// directory inside the project. You can pass a signed httpClient, for example
// with OAuth2 credentials for increased rate limits.
//
// repoAddr is the project address (e.g. 'git@github.com:vendor/reponame.git')
func NewGitSource(httpClient *http.Client, repoAddr, sha, root string, layout RepositoryLayout) (*RepositorySource, error) {
	repoData, err := parseGitAddr(repoAddr)
	if err != nil {
		return nil, err
	}
	fetcher := fetchers.NewGitHubFetcher(httpClient, repoData.vendor, repoData.repo, sha)
	fetcher.Root = strings.Trim(root, "/")
	return NewRepositorySource(fetcher, layout)
}

// RepositorySource reads published versions from repository files.
type RepositorySource struct {
	parser parsers.VersionListParser
}

// KnownVersions returns the versions listed by the repository. A missing list
// means the artifact was never published.
func (rs RepositorySource) KnownVersions(ctx context.Context, groupID, artifactID string) ([]string, error) {
	versions, err := rs.parser.Versions(ctx, groupID, artifactID)
	if err != nil {
		if errors.Is(err, parsers.ErrFileNotFound) {
			return nil, nil
		}
		return nil, &CoordinateResolutionError{Coordinate: GA{GroupID: groupID, ArtifactID: artifactID}, Err: err}
	}
	return versions, nil
}

// solveParser - helper to get the version list parser of a layout
func solveParser(layout RepositoryLayout, fetcher fetchers.FileFetcher) (parsers.VersionListParser, error) {
	switch layout {
	case LayoutMavenMetadata, "":
		return parsers.NewMavenMetadataParser(fetcher), nil
	case LayoutVersionList:
		return parsers.NewPlainListParser(fetcher, ""), nil
	}
	return nil, &ConfigurationError{Option: "repository.layout", Err: fmt.Errorf("unknown layout %q", layout)}
}

// gitRepo represents basic repository information.
type gitRepo struct {
	host, vendor, repo string
}

// supGitSrcs - supported git sources.
var supGitSrcs = []string{"github.com"}

// parseGitAddr - helper to parse information from git repository address string
func parseGitAddr(addr string) (*gitRepo, error) {
	matches := gitRepoRgxCompiled.FindStringSubmatch(addr)
	if matches == nil || matches[6] == "" || matches[8] == "" {
		return nil, &ConfigurationError{Option: "repository.git", Err: fmt.Errorf("unsupported git repository format %q", addr)}
	}
	hostName, repoName := matches[6], matches[8]

	if !gitHostSupported(hostName) {
		return nil, &ConfigurationError{Option: "repository.git", Err: fmt.Errorf("git source %q is not supported", hostName)}
	}

	repoNameParts := strings.Split(repoName, "/")
	if len(repoNameParts) != 2 || repoNameParts[0] == "" || repoNameParts[1] == "" {
		return nil, &ConfigurationError{Option: "repository.git", Err: fmt.Errorf("unable to parse vendor from name %q", repoName)}
	}

	return &gitRepo{host: hostName, vendor: repoNameParts[0], repo: repoNameParts[1]}, nil
}

// gitHostSupported - helper to check git source support status
func gitHostSupported(host string) bool {
	for _, v := range supGitSrcs {
		if v == host {
			return true
		}
	}
	return false
}

// versionLister is the part of the search client MavenSource needs.
type versionLister interface {
	Versions(ctx context.Context, groupID, artifactID string) ([]string, error)
}

// NewMavenSource constructs a source backed by the Maven search API.
func NewMavenSource(client *maven.Client) *MavenSource {
	return &MavenSource{api: client}
}

// MavenSource asks the Maven search API for published versions.
type MavenSource struct {
	api versionLister
}

// KnownVersions returns every indexed version of the artifact.
func (ms MavenSource) KnownVersions(ctx context.Context, groupID, artifactID string) ([]string, error) {
	versions, err := ms.api.Versions(ctx, groupID, artifactID)
	if err != nil {
		return nil, &CoordinateResolutionError{Coordinate: GA{GroupID: groupID, ArtifactID: artifactID}, Err: err}
	}
	return versions, nil
}

// NewCachingSource wraps source so that every coordinate is resolved at most
// once, concurrent callers of the same coordinate sharing one lookup.
// Failures are not cached.
func NewCachingSource(source MetadataVersionSource) *CachingSource {
	return &CachingSource{source: source, cache: make(map[GA][]string)}
}

// CachingSource memoizes a MetadataVersionSource.
type CachingSource struct {
	source MetadataVersionSource
	flight singleflight.Group

	mu    sync.RWMutex
	cache map[GA][]string
}

// KnownVersions returns the cached versions of the artifact, resolving them on first use.
func (cs *CachingSource) KnownVersions(ctx context.Context, groupID, artifactID string) ([]string, error) {
	ga := GA{GroupID: groupID, ArtifactID: artifactID}

	cs.mu.RLock()
	versions, ok := cs.cache[ga]
	cs.mu.RUnlock()
	if ok {
		metadataLookupsTotal.WithLabelValues(lookupHit).Inc()
		return append([]string(nil), versions...), nil
	}

	v, err, _ := cs.flight.Do(ga.String(), func() (interface{}, error) {
		// a flight for ga may have completed since the read above
		cs.mu.RLock()
		versions, ok := cs.cache[ga]
		cs.mu.RUnlock()
		if ok {
			metadataLookupsTotal.WithLabelValues(lookupHit).Inc()
			return versions, nil
		}

		start := time.Now()
		versions, err := cs.source.KnownVersions(ctx, groupID, artifactID)
		metadataLookupDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			metadataLookupsTotal.WithLabelValues(lookupError).Inc()
			return nil, err
		}
		metadataLookupsTotal.WithLabelValues(lookupMiss).Inc()

		cs.mu.Lock()
		cs.cache[ga] = versions
		cs.mu.Unlock()
		return versions, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), v.([]string)...), nil
}
