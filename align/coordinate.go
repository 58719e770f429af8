package align

import (
	"fmt"
	"sort"
	"strings"
)

// GA identifies an artifact regardless of its version.
type GA struct {
	GroupID    string
	ArtifactID string
}

func (ga GA) String() string {
	return ga.GroupID + ":" + ga.ArtifactID
}

// ParseGA parses the 'groupId:artifactId' notation.
func ParseGA(s string) (GA, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return GA{}, fmt.Errorf("unsupported coordinate format %q, expected 'groupId:artifactId'", s)
	}
	return GA{GroupID: parts[0], ArtifactID: parts[1]}, nil
}

// ProjectCoordinate is one reactor project: its GA and the version it currently declares.
type ProjectCoordinate struct {
	GroupID         string
	ArtifactID      string
	OriginalVersion string
}

// GA returns the versionless part of the coordinate.
func (pc ProjectCoordinate) GA() GA {
	return GA{GroupID: pc.GroupID, ArtifactID: pc.ArtifactID}
}

func (pc ProjectCoordinate) String() string {
	return pc.GA().String() + ":" + pc.OriginalVersion
}

// ReactorVersionMap maps every reactor project to its new version.
type ReactorVersionMap map[GA]string

// Keys returns the coordinates of the map in a stable order.
func (m ReactorVersionMap) Keys() []GA {
	keys := make([]GA, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}
