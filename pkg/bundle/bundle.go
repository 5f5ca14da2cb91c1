package bundle

import (
	"path/filepath"

	"github.com/confshare/confshare/pkg/artifacts"
	"github.com/confshare/confshare/pkg/paths"
	"github.com/confshare/confshare/pkg/types"
)

// ArtifactStatus is the per-artifact outcome of a pack or apply.
type ArtifactStatus string

const (
	// StatusWritten means the artifact was written with no collision.
	StatusWritten ArtifactStatus = "written"

	// StatusReplaced means an existing artifact was overwritten.
	StatusReplaced ArtifactStatus = "replaced"

	// StatusSkipped means the existing artifact was kept.
	StatusSkipped ArtifactStatus = "skipped"

	// StatusRenamed means the artifact was written under an alias.
	StatusRenamed ArtifactStatus = "renamed"

	// StatusPending means an ask-mode collision is awaiting a decision.
	StatusPending ArtifactStatus = "pending"

	// StatusFailed means writing the artifact failed.
	StatusFailed ArtifactStatus = "failed"
)

// ArtifactResult reports what happened to one artifact.
type ArtifactResult struct {
	Category  types.Category `json:"category"`
	Name      string         `json:"name"`
	FinalName string         `json:"final_name,omitempty"`
	Status    ArtifactStatus `json:"status"`
	Error     string         `json:"error,omitempty"`
}

// categoryDir maps a named-artifact category to its directory name.
// Hooks and the external-service bindings live in single files at the
// root, not in a category directory.
func categoryDir(category types.Category) string {
	switch category {
	case types.CategoryCommands:
		return paths.CommandsDir
	case types.CategoryAgents:
		return paths.AgentsDir
	case types.CategorySkills:
		return paths.SkillsDir
	}
	return ""
}

// fileCategories are the categories stored as named files or
// directories; hooks and mcp are handled separately.
var fileCategories = []types.Category{
	types.CategoryCommands,
	types.CategoryAgents,
	types.CategorySkills,
}

// discoverNamed lists the named artifacts under dir for the file-backed
// categories.
func discoverNamed(fsys types.FS, dir string) (map[types.Category][]artifacts.Artifact, error) {
	found := make(map[types.Category][]artifacts.Artifact)
	for _, category := range fileCategories {
		list, err := artifacts.Discover(fsys, filepath.Join(dir, categoryDir(category)), category)
		if err != nil {
			return nil, err
		}
		found[category] = list
	}
	return found, nil
}

// availableNames projects discovered artifacts into per-category name
// lists, adding the singleton hooks and mcp artifacts when their files
// exist under dir.
func availableNames(fsys types.FS, dir string, named map[types.Category][]artifacts.Artifact) map[types.Category][]string {
	available := make(map[types.Category][]string)
	for category, list := range named {
		available[category] = artifacts.Names(list)
	}
	if _, err := fsys.Stat(filepath.Join(dir, paths.HooksFile)); err == nil {
		available[types.CategoryHooks] = []string{string(types.CategoryHooks)}
	}
	if _, err := fsys.Stat(filepath.Join(dir, paths.MCPFile)); err == nil {
		available[types.CategoryMCP] = []string{string(types.CategoryMCP)}
	}
	return available
}

// artifactPath resolves where an artifact with the given name lives
// under dir: commands and agents are markdown files, skills are
// directories, and mcp is the single bindings file.
func artifactPath(dir string, category types.Category, name string) string {
	switch category {
	case types.CategoryCommands, types.CategoryAgents:
		return filepath.Join(dir, categoryDir(category), name+".md")
	case types.CategorySkills:
		return filepath.Join(dir, categoryDir(category), name)
	case types.CategoryHooks:
		if name == string(types.CategoryHooks) {
			return filepath.Join(dir, paths.HooksFile)
		}
		return filepath.Join(dir, name+".json")
	case types.CategoryMCP:
		if name == string(types.CategoryMCP) {
			return filepath.Join(dir, paths.MCPFile)
		}
		return filepath.Join(dir, name+".json")
	}
	return ""
}
