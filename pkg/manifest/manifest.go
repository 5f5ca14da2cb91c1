// Package manifest defines the bundle manifest: the persisted record
// tying a bundle's identity, version, content selection and application
// history together. Manifests are validated against an embedded JSON
// schema plus semantic rules, written atomically, and their application
// log is append-only.
package manifest

import (
	"encoding/json"
	"os"
	"time"

	"github.com/confshare/confshare/pkg/errors"
	"github.com/confshare/confshare/pkg/semver"
	"github.com/confshare/confshare/pkg/types"
	"github.com/google/uuid"
)

// Repository points at the upstream source a bundle was published to.
type Repository struct {
	Type string `json:"type,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Metadata carries bookkeeping derived at pack/update time.
type Metadata struct {
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ArtifactCount int       `json:"artifact_count"`
}

// Application records one successful apply of the bundle. Records are
// append-only: they are never mutated or dropped after creation.
type Application struct {
	ID         string                      `json:"id,omitempty"`
	TargetPath string                      `json:"target_path"`
	Content    map[types.Category][]string `json:"content,omitempty"`
	Exclude    map[types.Category][]string `json:"exclude,omitempty"`
	HooksMode  string                      `json:"hooks_mode"`
	AppliedAt  time.Time                   `json:"applied_at"`
	Version    string                      `json:"version"`
}

// Manifest is one packaged unit's persisted record.
type Manifest struct {
	Name         string                      `json:"name"`
	Version      string                      `json:"version"`
	Description  string                      `json:"description,omitempty"`
	Author       string                      `json:"author,omitempty"`
	License      string                      `json:"license,omitempty"`
	Repository   Repository                  `json:"repository,omitempty"`
	Content      map[types.Category][]string `json:"content"`
	Exclude      map[types.Category][]string `json:"exclude,omitempty"`
	Applications []Application               `json:"applications"`
	Metadata     Metadata                    `json:"metadata"`
}

// New creates a manifest for a fresh bundle.
func New(name, version string) *Manifest {
	now := time.Now().UTC()
	return &Manifest{
		Name:    name,
		Version: version,
		License: "MIT",
		Content: make(map[types.Category][]string),
		Exclude: make(map[types.Category][]string),
		Metadata: Metadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// Load reads and validates a manifest file.
func Load(fsys types.FS, path string) (*Manifest, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrNotFound, "manifest not found at %s", path)
		}
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "cannot read manifest %s", path)
	}

	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrValidation, "malformed manifest %s", path)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Save writes the manifest atomically: marshal to a temp file next to
// the target, then rename into place. An interrupted save leaves either
// the old or the new manifest, never a half-written one.
func (m *Manifest) Save(fsys types.FS, path string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode manifest")
	}
	data = append(data, '\n')

	tmp := path + ".tmp." + uuid.NewString()[:8]
	if err := fsys.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write manifest %s", path)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot replace manifest %s", path)
	}
	return nil
}

// Validate applies the semantic rules the schema cannot express.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return errors.New(errors.ErrValidation, "manifest is missing a name")
	}
	if !nameRe.MatchString(m.Name) {
		return errors.Newf(errors.ErrValidation, "bundle name %q is not kebab-case", m.Name)
	}
	if err := semver.Validate(m.Version); err != nil {
		return err
	}
	for category := range m.Content {
		if !types.ValidCategory(category) {
			return errors.Newf(errors.ErrValidation, "unknown content category %q", category)
		}
	}
	for category := range m.Exclude {
		if !types.ValidCategory(category) {
			return errors.Newf(errors.ErrValidation, "unknown exclude category %q", category)
		}
	}
	return nil
}

// ResolveContent resolves a category's inclusion list against the
// artifact names actually available: the "all" sentinel expands to
// every available name, and excluded names are removed.
func (m *Manifest) ResolveContent(category types.Category, available []string) []string {
	included := m.Content[category]
	if len(included) == 0 {
		return nil
	}

	var names []string
	if len(included) == 1 && included[0] == types.AllSentinel {
		names = append(names, available...)
	} else {
		availableSet := make(map[string]bool, len(available))
		for _, name := range available {
			availableSet[name] = true
		}
		for _, name := range included {
			if availableSet[name] {
				names = append(names, name)
			}
		}
	}

	excluded := make(map[string]bool, len(m.Exclude[category]))
	for _, name := range m.Exclude[category] {
		excluded[name] = true
	}

	resolved := names[:0]
	for _, name := range names {
		if !excluded[name] {
			resolved = append(resolved, name)
		}
	}
	return resolved
}

// HasResolvedContent checks the manifest invariant: the resolved
// inclusion set must be non-empty for at least one category.
func (m *Manifest) HasResolvedContent(available map[types.Category][]string) bool {
	for _, category := range types.Categories() {
		if len(m.ResolveContent(category, available[category])) > 0 {
			return true
		}
	}
	return false
}

// AppendApplication appends one application record and refreshes the
// update timestamp. Existing records are never touched.
func (m *Manifest) AppendApplication(app Application) {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	m.Applications = append(m.Applications, app)
	m.Metadata.UpdatedAt = time.Now().UTC()
}

// Touch refreshes the update timestamp.
func (m *Manifest) Touch() {
	m.Metadata.UpdatedAt = time.Now().UTC()
}
