package bundle

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/confshare/confshare/pkg/conflict"
	"github.com/confshare/confshare/pkg/errors"
	"github.com/confshare/confshare/pkg/hookmerge"
	"github.com/confshare/confshare/pkg/logging"
	"github.com/confshare/confshare/pkg/manifest"
	"github.com/confshare/confshare/pkg/paths"
	"github.com/confshare/confshare/pkg/sanitize"
	"github.com/confshare/confshare/pkg/types"
)

// ApplyOptions configures one apply run.
type ApplyOptions struct {
	// BundleDir is the bundle to apply.
	BundleDir string

	// TargetDir is the assistant configuration directory to apply into.
	TargetDir string

	// HooksMode selects the hook merge strategy. Empty means smart.
	HooksMode string

	// ConflictPolicy selects collision handling for named artifacts.
	// Empty means ask.
	ConflictPolicy string

	// Resolutions supplies per-artifact decisions for ask-mode
	// collisions, keyed by conflict.Key(category, name).
	Resolutions map[string]conflict.Policy

	// EnvValues are runtime values substituted for ${VAR} placeholders.
	// When nil, the target's .env file is used if present.
	EnvValues map[string]string

	// DryRun plans the apply without locking or writing anything.
	DryRun bool
}

// ApplyResult reports what an apply run did, artifact by artifact.
// Pending collisions never abort the run: resolved artifacts are
// applied and the unresolved remainder is surfaced for a follow-up run.
type ApplyResult struct {
	Bundle     string             `json:"bundle"`
	Version    string             `json:"version"`
	TargetDir  string             `json:"target_dir"`
	Artifacts  []ArtifactResult   `json:"artifacts"`
	Pending    []conflict.Pending `json:"pending,omitempty"`
	HookReport *hookmerge.Report  `json:"hook_report,omitempty"`
	Restored   int                `json:"restored,omitempty"`
	Missing    []string           `json:"missing_vars,omitempty"`
	DryRun     bool               `json:"dry_run,omitempty"`
}

// Applied reports how many artifacts were written, replaced or renamed.
func (r *ApplyResult) Applied() int {
	n := 0
	for _, a := range r.Artifacts {
		switch a.Status {
		case StatusWritten, StatusReplaced, StatusRenamed:
			n++
		}
	}
	return n
}

// Failed reports how many artifacts could not be written.
func (r *ApplyResult) Failed() int {
	n := 0
	for _, a := range r.Artifacts {
		if a.Status == StatusFailed {
			n++
		}
	}
	return n
}

// Apply applies a bundle to a target directory. The target is locked
// for the duration of the run. Name collisions are decided by the
// conflict policy; hook mappings go through the merge engine instead.
// Every artifact outcome is reported individually, and an application
// record is appended to the bundle manifest when anything was applied.
func Apply(fsys types.FS, opts ApplyOptions) (*ApplyResult, error) {
	logger := logging.GetLogger("bundle.apply")

	hooksMode, err := hookmerge.ParseMode(opts.HooksMode)
	if err != nil {
		return nil, err
	}
	policy, err := conflict.ParsePolicy(opts.ConflictPolicy)
	if err != nil {
		return nil, err
	}

	m, err := manifest.Load(fsys, manifestPath(opts.BundleDir))
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{
		Bundle:    m.Name,
		Version:   m.Version,
		TargetDir: opts.TargetDir,
		DryRun:    opts.DryRun,
	}

	named, err := discoverNamed(fsys, opts.BundleDir)
	if err != nil {
		return nil, err
	}
	available := availableNames(fsys, opts.BundleDir, named)

	if !opts.DryRun {
		if err := fsys.MkdirAll(opts.TargetDir, 0755); err != nil {
			return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create target %s", opts.TargetDir)
		}
		lock, err := AcquireLock(fsys, opts.TargetDir)
		if err != nil {
			return nil, err
		}
		defer func() { _ = lock.Release() }()
	}

	envValues := opts.EnvValues
	if envValues == nil {
		if data, err := fsys.ReadFile(filepath.Join(opts.TargetDir, paths.EnvFile)); err == nil {
			envValues = sanitize.ParseEnvFile(string(data))
		}
	}

	// Plan collisions for the named artifacts, with the bindings file as
	// a singleton named artifact. Hook mappings are merged, not planned.
	existingNamed, err := discoverNamed(fsys, opts.TargetDir)
	if err != nil {
		return nil, err
	}
	resolver := conflict.NewResolver(availableNames(fsys, opts.TargetDir, existingNamed))

	var incoming []conflict.Incoming
	conflictCategories := append([]types.Category{}, fileCategories...)
	conflictCategories = append(conflictCategories, types.CategoryMCP)
	for _, category := range conflictCategories {
		for _, name := range m.ResolveContent(category, available[category]) {
			incoming = append(incoming, conflict.Incoming{Category: category, Name: name})
		}
	}

	plan, err := resolver.Plan(incoming, policy, opts.Resolutions)
	if err != nil {
		return nil, err
	}
	result.Pending = plan.Pending
	for _, pending := range plan.Pending {
		result.Artifacts = append(result.Artifacts, ArtifactResult{
			Category: pending.Category,
			Name:     pending.Name,
			Status:   StatusPending,
		})
	}

	for _, decision := range plan.Decisions {
		result.Artifacts = append(result.Artifacts, applyDecision(fsys, opts, decision, envValues, result))
	}

	// Hook mappings
	if len(m.ResolveContent(types.CategoryHooks, available[types.CategoryHooks])) > 0 {
		hookResult, err := applyHooks(fsys, opts, hooksMode, envValues, result)
		if err != nil {
			return nil, err
		}
		result.Artifacts = append(result.Artifacts, hookResult)
	}

	if !opts.DryRun && result.Applied() > 0 {
		m.AppendApplication(manifest.Application{
			TargetPath: opts.TargetDir,
			Content:    m.Content,
			Exclude:    m.Exclude,
			HooksMode:  string(hooksMode),
			AppliedAt:  time.Now().UTC(),
			Version:    m.Version,
		})
		if err := m.Save(fsys, manifestPath(opts.BundleDir)); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("bundle", m.Name).
		Str("version", m.Version).
		Str("target", opts.TargetDir).
		Int("applied", result.Applied()).
		Int("pending", len(result.Pending)).
		Int("failed", result.Failed()).
		Bool("dry_run", opts.DryRun).
		Msg("applied bundle")
	return result, nil
}

// applyDecision executes one planned outcome and reports it. Failures
// are captured in the result instead of aborting the run.
func applyDecision(fsys types.FS, opts ApplyOptions, decision conflict.Decision, envValues map[string]string, result *ApplyResult) ArtifactResult {
	out := ArtifactResult{
		Category:  decision.Category,
		Name:      decision.Name,
		FinalName: decision.FinalName,
	}
	switch decision.Action {
	case conflict.ActionWrite:
		out.Status = StatusWritten
	case conflict.ActionReplace:
		out.Status = StatusReplaced
	case conflict.ActionRename:
		out.Status = StatusRenamed
	case conflict.ActionKeep:
		out.Status = StatusSkipped
		return out
	}
	if opts.DryRun {
		return out
	}

	src := artifactPath(opts.BundleDir, decision.Category, decision.Name)
	dst := artifactPath(opts.TargetDir, decision.Category, decision.FinalName)

	var err error
	if decision.Category == types.CategoryMCP {
		err = writeBindings(fsys, src, dst, envValues, result)
	} else {
		err = copyArtifact(fsys, src, dst, decision.Category == types.CategorySkills)
	}
	if err != nil {
		out.Status = StatusFailed
		out.Error = err.Error()
	}
	return out
}

// writeBindings writes the external-service bindings file, restoring
// ${VAR} placeholders from the runtime values first. Placeholders with
// no value are kept and reported, never guessed.
func writeBindings(fsys types.FS, src, dst string, envValues map[string]string, result *ApplyResult) error {
	data, err := fsys.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", src)
	}
	var tree interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return errors.Wrapf(err, errors.ErrValidation, "malformed bindings file %s", src)
	}

	before := sanitize.CountPlaceholders(tree)
	tree = sanitize.Restore(tree, envValues)
	after := sanitize.CountPlaceholders(tree)
	result.Restored += before - after
	if after > 0 {
		result.Missing = append(result.Missing, collectPlaceholders(tree)...)
	}

	out, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode bindings")
	}
	return writeFileAtomic(fsys, dst, append(out, '\n'), 0644)
}

// applyHooks merges the bundle's hook mapping into the target's.
func applyHooks(fsys types.FS, opts ApplyOptions, mode hookmerge.Mode, envValues map[string]string, result *ApplyResult) (ArtifactResult, error) {
	out := ArtifactResult{
		Category:  types.CategoryHooks,
		Name:      string(types.CategoryHooks),
		FinalName: string(types.CategoryHooks),
	}

	data, err := fsys.ReadFile(filepath.Join(opts.BundleDir, paths.HooksFile))
	if err != nil {
		return out, errors.Wrapf(err, errors.ErrFileAccess, "cannot read bundle hook mapping")
	}
	if len(envValues) > 0 {
		if data, err = restoreJSON(data, envValues, result); err != nil {
			return out, err
		}
	}
	incoming, err := hookmerge.Decode(data)
	if err != nil {
		return out, err
	}

	existing := hookmerge.Mapping{}
	targetPath := filepath.Join(opts.TargetDir, paths.HooksFile)
	hadExisting := false
	if existingData, err := fsys.ReadFile(targetPath); err == nil {
		hadExisting = true
		if existing, err = hookmerge.Decode(existingData); err != nil {
			return out, err
		}
	}

	merged, report, err := hookmerge.Merge(existing, incoming, mode)
	if err != nil {
		return out, err
	}
	result.HookReport = report

	if mode == hookmerge.ModeSkip {
		out.Status = StatusSkipped
		return out, nil
	}
	if hadExisting {
		out.Status = StatusReplaced
	} else {
		out.Status = StatusWritten
	}
	if opts.DryRun {
		return out, nil
	}

	encoded, err := hookmerge.Encode(merged)
	if err != nil {
		return out, err
	}
	if err := writeFileAtomic(fsys, targetPath, encoded, 0644); err != nil {
		out.Status = StatusFailed
		out.Error = err.Error()
	}
	return out, nil
}

// restoreJSON substitutes placeholders in raw JSON content.
func restoreJSON(data []byte, envValues map[string]string, result *ApplyResult) ([]byte, error) {
	var tree interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "malformed hook mapping")
	}
	before := sanitize.CountPlaceholders(tree)
	tree = sanitize.Restore(tree, envValues)
	result.Restored += before - sanitize.CountPlaceholders(tree)
	return json.Marshal(tree)
}

// collectPlaceholders lists the distinct ${VAR} names still present in
// a tree.
func collectPlaceholders(tree interface{}) []string {
	seen := make(map[string]bool)
	var names []string
	var walk func(node interface{})
	walk = func(node interface{}) {
		switch v := node.(type) {
		case map[string]interface{}:
			for _, value := range v {
				walk(value)
			}
		case []interface{}:
			for _, item := range v {
				walk(item)
			}
		case string:
			if sanitize.IsPlaceholder(v) {
				name := v[2 : len(v)-1]
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
		}
	}
	walk(tree)
	return names
}
