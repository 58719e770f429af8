package parsers

import (
	"context"
	"errors"
	"testing"

	"github.com/dephub/dephub-align/providers/fetchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mavenMetadataFixture = `<?xml version="1.0" encoding="UTF-8"?>
<metadata>
  <groupId>org.acme</groupId>
  <artifactId>core</artifactId>
  <versioning>
    <latest>1.2.0.redhat-00002</latest>
    <release>1.2.0.redhat-00002</release>
    <versions>
      <version>1.1.0</version>
      <version>1.2.0.redhat-00001</version>
      <version> 1.2.0.redhat-00002 </version>
    </versions>
    <lastUpdated>20200101000000</lastUpdated>
  </versioning>
</metadata>`

func TestMavenMetadataParser_Versions(t *testing.T) {
	bf := fetchers.ByteMapFetcher{Files: map[string][]byte{
		"org/acme/core/maven-metadata.xml": []byte(mavenMetadataFixture),
	}}
	parser := NewMavenMetadataParser(bf)

	versions, err := parser.Versions(context.Background(), "org.acme", "core")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.1.0", "1.2.0.redhat-00001", "1.2.0.redhat-00002"}, versions)
}

func TestMavenMetadataParser_Versions_NotFound(t *testing.T) {
	parser := NewMavenMetadataParser(fetchers.ByteMapFetcher{})

	_, err := parser.Versions(context.Background(), "org.acme", "core")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestMavenMetadataParser_Versions_Malformed(t *testing.T) {
	bf := fetchers.ByteMapFetcher{Files: map[string][]byte{
		"org/acme/core/maven-metadata.xml": []byte("<metadata><versioning>"),
	}}
	parser := NewMavenMetadataParser(bf)

	_, err := parser.Versions(context.Background(), "org.acme", "core")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrFileNotFound))
}

func TestArtifactDir(t *testing.T) {
	assert.Equal(t, "org/acme/tools/core", ArtifactDir("org.acme.tools", "core"))
}
