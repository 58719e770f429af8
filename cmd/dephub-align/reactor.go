package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dephub/dephub-align/align"
)

// reactorFile describes the projects of a build together with what the
// subcommands need to know about them.
type reactorFile struct {
	Projects []projectEntry `yaml:"projects"`
	// Published versions per 'groupId:artifactId', used when no repository is configured.
	Published map[string][]string `yaml:"published"`
	// References are property expressions pointing at reactor projects.
	References []referenceEntry `yaml:"references"`
	// Updates are explicit property rewrites.
	Updates []updateEntry `yaml:"updates"`
}

type projectEntry struct {
	GroupID    string            `yaml:"groupId"`
	ArtifactID string            `yaml:"artifactId"`
	Version    string            `yaml:"version"`
	Parent     string            `yaml:"parent"`
	Properties map[string]string `yaml:"properties"`
}

type referenceEntry struct {
	Project    string `yaml:"project"`
	Target     string `yaml:"target"`
	Expression string `yaml:"expression"`
}

type updateEntry struct {
	Property string `yaml:"property"`
	Value    string `yaml:"value"`
	Force    bool   `yaml:"force"`
}

// reactor is a loaded reactorFile.
type reactor struct {
	file        reactorFile
	coordinates []align.ProjectCoordinate
	projects    map[align.GA]*align.Project
	ordered     []*align.Project
}

func readReactor(path string) (*reactor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read reactor: %w", err)
	}
	var file reactorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unable to parse reactor %s: %w", path, err)
	}
	return newReactor(file)
}

func newReactor(file reactorFile) (*reactor, error) {
	if len(file.Projects) == 0 {
		return nil, fmt.Errorf("reactor has no projects")
	}
	r := &reactor{file: file, projects: make(map[align.GA]*align.Project, len(file.Projects))}

	for _, e := range file.Projects {
		if e.GroupID == "" || e.ArtifactID == "" || e.Version == "" {
			return nil, fmt.Errorf("project %s:%s: groupId, artifactId and version are required", e.GroupID, e.ArtifactID)
		}
		pc := align.ProjectCoordinate{GroupID: e.GroupID, ArtifactID: e.ArtifactID, OriginalVersion: e.Version}
		if _, ok := r.projects[pc.GA()]; ok {
			return nil, fmt.Errorf("project %s is declared twice", pc.GA())
		}
		p := &align.Project{Coordinate: pc, Properties: e.Properties}
		if p.Properties == nil {
			p.Properties = map[string]string{}
		}
		r.projects[pc.GA()] = p
		r.ordered = append(r.ordered, p)
		r.coordinates = append(r.coordinates, pc)
	}

	for _, e := range file.Projects {
		if e.Parent == "" {
			continue
		}
		parent, err := r.project(e.Parent)
		if err != nil {
			return nil, fmt.Errorf("parent of %s:%s: %w", e.GroupID, e.ArtifactID, err)
		}
		r.projects[align.GA{GroupID: e.GroupID, ArtifactID: e.ArtifactID}].Parent = parent
	}
	return r, nil
}

// project looks a reactor project up by its 'groupId:artifactId'.
func (r *reactor) project(ga string) (*align.Project, error) {
	key, err := align.ParseGA(ga)
	if err != nil {
		return nil, err
	}
	p, ok := r.projects[key]
	if !ok {
		return nil, fmt.Errorf("project %s is not part of the reactor", key)
	}
	return p, nil
}
