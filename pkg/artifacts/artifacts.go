// Package artifacts discovers the named artifacts (commands, agents,
// skill directories) inside an assistant configuration directory or a
// bundle, and extracts their declared names from Markdown front matter.
package artifacts

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/confshare/confshare/pkg/errors"
	"github.com/confshare/confshare/pkg/types"
	"gopkg.in/yaml.v3"
)

// Artifact is a single named command, agent or skill directory.
type Artifact struct {
	Category    types.Category
	Name        string
	Description string
	Path        string
	Dir         bool
}

// FrontMatter is the name/description pair declared at the top of a
// command or agent file.
type FrontMatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

var (
	frontMatterRe = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---`)
	separatorRe   = regexp.MustCompile(`[\s_]+`)
	dashRunRe     = regexp.MustCompile(`-+`)
)

// ExtractFrontMatter parses the leading --- block of a Markdown file.
// The second return value is false when the file has no front matter.
func ExtractFrontMatter(content []byte) (*FrontMatter, bool) {
	match := frontMatterRe.FindSubmatch(content)
	if match == nil {
		return nil, false
	}
	var fm FrontMatter
	if err := yaml.Unmarshal(match[1], &fm); err != nil {
		return nil, false
	}
	return &fm, true
}

// ExtractName returns the declared artifact name for a command or agent
// file. Agents must declare a front-matter name; commands fall back to
// the file name.
func ExtractName(content []byte, category types.Category, fallback string) (string, string, error) {
	fm, ok := ExtractFrontMatter(content)
	if !ok || fm.Name == "" {
		if category == types.CategoryAgents {
			return "", "", errors.Newf(errors.ErrMissingFrontMatter, "agent %q has no front-matter name", fallback)
		}
		return fallback, "", nil
	}
	return NormalizeName(fm.Name), fm.Description, nil
}

// NormalizeName normalizes an artifact name to kebab-case: lowercased,
// with separator runs collapsed to single dashes.
func NormalizeName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	name = separatorRe.ReplaceAllString(name, "-")
	name = dashRunRe.ReplaceAllString(name, "-")
	return strings.Trim(name, "-")
}

// Discover lists the artifacts present under dir for a category.
// Commands and agents are *.md files; skills are subdirectories.
// Dot-prefixed entries are ignored. A missing directory yields an empty
// list, not an error.
func Discover(fsys types.FS, dir string, category types.Category) ([]Artifact, error) {
	if _, err := fsys.Stat(dir); err != nil {
		return nil, nil
	}
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot list %s", dir)
	}

	var found []Artifact
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		switch category {
		case types.CategorySkills:
			if !entry.IsDir() {
				continue
			}
			found = append(found, Artifact{
				Category: category,
				Name:     name,
				Path:     filepath.Join(dir, name),
				Dir:      true,
			})
		case types.CategoryCommands, types.CategoryAgents:
			if entry.IsDir() || !strings.HasSuffix(name, ".md") {
				continue
			}
			found = append(found, Artifact{
				Category: category,
				Name:     strings.TrimSuffix(name, ".md"),
				Path:     filepath.Join(dir, name),
			})
		}
	}
	return found, nil
}

// Names projects a discovered artifact list to its names.
func Names(list []Artifact) []string {
	names := make([]string, 0, len(list))
	for _, a := range list {
		names = append(names, a.Name)
	}
	return names
}
