/*
Package parsers reads the list of published versions of an artifact from a
repository laid out the Maven way.

Two layouts are understood: the 'maven-metadata.xml' file Maven repositories
keep next to every artifact, and a plain 'versions.txt' list (one version per
line) used by repositories that are not managed by a Maven repository manager.

Usage:

	parser := parsers.NewMavenMetadataParser(fetchers.ByteMapFetcher{Files: files})
	versions, err := parser.Versions(ctx, "org.acme", "core")
*/
package parsers

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

// VersionListParser represents basic interface for parsers in this package.
type VersionListParser interface {
	// Versions have to return every version published for the artifact, in
	// repository order. Missing artifacts are reported with ErrFileNotFound.
	Versions(ctx context.Context, groupID, artifactID string) ([]string, error)
}

// ArtifactDir returns the repository directory of an artifact
// ('org.acme' and 'core' give 'org/acme/core').
func ArtifactDir(groupID, artifactID string) string {
	return strings.ReplaceAll(groupID, ".", "/") + "/" + artifactID
}
