package bundle

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/confshare/confshare/pkg/artifacts"
	"github.com/confshare/confshare/pkg/hookmerge"
	"github.com/confshare/confshare/pkg/manifest"
	"github.com/confshare/confshare/pkg/paths"
	"github.com/confshare/confshare/pkg/sanitize"
	"github.com/confshare/confshare/pkg/types"
)

// ValidationReport is the outcome of checking a bundle on disk.
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *ValidationReport) errorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

func (r *ValidationReport) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks a bundle directory: the manifest must load and
// validate, every selected artifact must exist, agents must declare a
// front-matter name, the root JSON files must parse, and unsanitized
// placeholders must have a matching variable-template file. Findings
// are collected rather than failing on the first problem.
func Validate(fsys types.FS, bundleDir string) (*ValidationReport, error) {
	report := &ValidationReport{Valid: true}

	m, err := manifest.Load(fsys, manifestPath(bundleDir))
	if err != nil {
		report.errorf("manifest: %v", err)
		return report, nil
	}

	named, err := discoverNamed(fsys, bundleDir)
	if err != nil {
		return nil, err
	}
	available := availableNames(fsys, bundleDir, named)

	if !m.HasResolvedContent(available) {
		report.errorf("bundle selects no artifacts")
	}

	// Selected names must exist on disk. The "all" sentinel resolves
	// against what is present, so only explicit names can dangle.
	for _, category := range types.Categories() {
		availableSet := make(map[string]bool)
		for _, name := range available[category] {
			availableSet[name] = true
		}
		for _, name := range m.Content[category] {
			if name == types.AllSentinel {
				continue
			}
			if !availableSet[name] {
				report.errorf("%s/%s is selected but missing from the bundle", category, name)
			}
		}
	}

	// Agents must declare a front-matter name.
	for _, a := range named[types.CategoryAgents] {
		data, err := fsys.ReadFile(a.Path)
		if err != nil {
			report.errorf("agents/%s: %v", a.Name, err)
			continue
		}
		if _, _, err := artifacts.ExtractName(data, types.CategoryAgents, a.Name); err != nil {
			report.errorf("agents/%s declares no front-matter name", a.Name)
		}
	}

	placeholders := 0
	for _, file := range []string{paths.HooksFile, paths.MCPFile} {
		path := filepath.Join(bundleDir, file)
		data, err := fsys.ReadFile(path)
		if err != nil {
			continue
		}
		var tree interface{}
		if err := json.Unmarshal(data, &tree); err != nil {
			report.errorf("%s: malformed JSON: %v", file, err)
			continue
		}
		placeholders += sanitize.CountPlaceholders(tree)
		if file == paths.HooksFile {
			if _, err := hookmerge.Decode(data); err != nil {
				report.errorf("%s: %v", file, err)
			}
		}
	}

	if placeholders > 0 {
		if _, err := fsys.Stat(filepath.Join(bundleDir, paths.EnvExampleFile)); err != nil {
			report.warnf("%d placeholder(s) but no %s file", placeholders, paths.EnvExampleFile)
		}
	}

	if _, err := fsys.Stat(filepath.Join(bundleDir, paths.EnvFile)); err == nil {
		report.warnf("%s present in bundle: runtime secrets should never be packaged", paths.EnvFile)
	}

	return report, nil
}
