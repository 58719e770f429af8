package parsers

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dephub/dephub-align/providers/fetchers"
)

// NewPlainListParser constructs plain version list parser.
// If 'filename' parameter is an empty string - 'versions.txt' will be used instead.
func NewPlainListParser(fetcher fetchers.FileFetcher, filename string) VersionListParser {
	if filename == "" {
		return &PlainListParser{fetcher: fetcher, SourceName: "versions.txt"}
	}
	return &PlainListParser{fetcher: fetcher, SourceName: filename}
}

// PlainListParser represents concrete plain list parser implementation.
type PlainListParser struct {
	fetcher fetchers.FileFetcher
	// SourceName is the list filename inside the artifact directory (e.g. 'versions.txt')
	SourceName string
}

// Versions method returns the versions listed in the artifact directory list file.
func (p PlainListParser) Versions(ctx context.Context, groupID, artifactID string) ([]string, error) {
	path := ArtifactDir(groupID, artifactID) + "/" + p.SourceName
	b, err := p.fetcher.FileContent(ctx, path)
	if err != nil {
		if errors.Is(err, fetchers.ErrFileNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("unable to fetch '%s' from the repository: %w", path, err)
	}

	return parseVersionList(b)
}

// parseVersionList reads one version per line. Blank lines and '#' comments are skipped.
func parseVersionList(fileContent []byte) ([]string, error) {
	res := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(fileContent))
	for scanner.Scan() {
		line := strings.Split(scanner.Text(), "#")[0] // remove comments
		line = stripSpaces(line)
		if line == "" {
			continue
		}
		res = append(res, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to read version list: %w", err)
	}

	return res, nil
}

// Fast way to strip all whitespaces from a string
func stripSpaces(str string) string {
	var b strings.Builder
	b.Grow(len(str))
	for _, ch := range str {
		if !unicode.IsSpace(ch) {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
