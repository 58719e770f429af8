package parsers

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/dephub/dephub-align/providers/fetchers"
)

// MavenMetadataFile is the metadata file name kept next to every artifact.
const MavenMetadataFile = "maven-metadata.xml"

// NewMavenMetadataParser constructs maven-metadata.xml parser.
func NewMavenMetadataParser(fetcher fetchers.FileFetcher) VersionListParser {
	return &MavenMetadataParser{fetcher: fetcher}
}

// MavenMetadataParser represents concrete maven-metadata.xml parser implementation.
type MavenMetadataParser struct {
	fetcher fetchers.FileFetcher
}

// MavenMetadata represents artifact level repository metadata (maven-metadata.xml).
type MavenMetadata struct {
	XMLName    xml.Name `xml:"metadata"`
	GroupID    string   `xml:"groupId"`
	ArtifactID string   `xml:"artifactId"`
	Versioning struct {
		Latest      string   `xml:"latest"`
		Release     string   `xml:"release"`
		Versions    []string `xml:"versions>version"`
		LastUpdated string   `xml:"lastUpdated"`
	} `xml:"versioning"`
}

// Versions method returns the versions listed in the artifact metadata.
func (p MavenMetadataParser) Versions(ctx context.Context, groupID, artifactID string) ([]string, error) {
	path := ArtifactDir(groupID, artifactID) + "/" + MavenMetadataFile
	b, err := p.fetcher.FileContent(ctx, path)
	if err != nil {
		if errors.Is(err, fetchers.ErrFileNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("unable to fetch '%s' from the repository: %w", path, err)
	}

	var metadata MavenMetadata
	err = xml.Unmarshal(b, &metadata)
	if err != nil {
		return nil, fmt.Errorf("unable to parse metadata file content: %w", err)
	}

	res := make([]string, 0, len(metadata.Versioning.Versions))
	for _, v := range metadata.Versioning.Versions {
		if v = stripSpaces(v); v != "" {
			res = append(res, v)
		}
	}

	return res, nil
}
