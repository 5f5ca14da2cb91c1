package main

import (
	"strings"

	"github.com/confshare/confshare/pkg/bundle"
	"github.com/confshare/confshare/pkg/config"
	"github.com/confshare/confshare/pkg/conflict"
	"github.com/confshare/confshare/pkg/errors"
	"github.com/confshare/confshare/pkg/logging"
	"github.com/confshare/confshare/pkg/paths"
	"github.com/confshare/confshare/pkg/sanitize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	applyTarget     string
	applyHooksMode  string
	applyOnConflict string
	applyResolve    []string
	applyEnvFile    string
)

var applyCmd = &cobra.Command{
	Use:   "apply <name>",
	Short: MsgApplyShort,
	Long: `Apply writes a bundle's artifacts into a configuration directory.
Name collisions are decided by the conflict policy; hook mappings are
merged rather than overwritten. Unresolved ask-mode conflicts leave
those artifacts untouched and are reported so they can be resolved in
a follow-up run with --resolve.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.apply")

		cfg, p, fsys, err := setup()
		if err != nil {
			return err
		}

		name := args[0]
		bundleDir, err := bundle.Find(fsys, p.ShareDir(), name)
		if err != nil {
			return err
		}

		target := applyTarget
		if target == "" {
			target = p.SourceDir()
		}

		// Flags win over the bundle author's recommendations, which win
		// over the user's own defaults.
		bundleCfg, err := config.LoadBundle(fsys, bundleDir)
		if err != nil {
			return err
		}
		hooksMode := applyHooksMode
		if !cmd.Flags().Changed("hooks-mode") {
			if hooksMode = bundleCfg.Hooks.Mode; hooksMode == "" {
				hooksMode = cfg.Hooks.Mode
			}
		}
		onConflict := applyOnConflict
		if !cmd.Flags().Changed("on-conflict") {
			if onConflict = bundleCfg.Conflicts.Policy; onConflict == "" {
				onConflict = cfg.Conflicts.Policy
			}
		}

		resolutions, err := parseResolutions(applyResolve)
		if err != nil {
			return err
		}

		var envValues map[string]string
		if applyEnvFile != "" {
			data, err := fsys.ReadFile(applyEnvFile)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "cannot read env file %s", applyEnvFile)
			}
			envValues = sanitize.ParseEnvFile(string(data))
		}

		logger.Info().Str("bundle", name).Str("target", target).Msg("Starting apply")

		result, err := bundle.Apply(fsys, bundle.ApplyOptions{
			BundleDir:      bundleDir,
			TargetDir:      target,
			HooksMode:      hooksMode,
			ConflictPolicy: onConflict,
			Resolutions:    resolutions,
			EnvValues:      envValues,
			DryRun:         dryRun,
		})
		if err != nil {
			return err
		}

		reportApply(result)
		if dryRun {
			pterm.Info.Println(MsgDryRunNotice)
			return nil
		}
		return pendingError(result)
	},
}

// pendingError turns leftover ask-mode conflicts into a command error
// so scripted callers get a non-zero exit until every collision has a
// decision.
func pendingError(result *bundle.ApplyResult) error {
	if len(result.Pending) == 0 {
		return nil
	}
	return errors.Newf(errors.ErrConflictUnresolved, "%d conflict(s) need a decision", len(result.Pending))
}

func init() {
	applyCmd.Flags().StringVar(&applyTarget, "target", "", MsgFlagTarget)
	applyCmd.Flags().StringVar(&applyHooksMode, "hooks-mode", "", MsgFlagHooksMode)
	applyCmd.Flags().StringVar(&applyOnConflict, "on-conflict", "", MsgFlagOnConflict)
	applyCmd.Flags().StringArrayVar(&applyResolve, "resolve", nil, MsgFlagResolve)
	applyCmd.Flags().StringVar(&applyEnvFile, "env-file", "", MsgFlagEnvFile)
}

// parseResolutions parses repeated "category/name=policy" flags.
func parseResolutions(specs []string) (map[string]conflict.Policy, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[string]conflict.Policy, len(specs))
	for _, spec := range specs {
		key, value, found := strings.Cut(spec, "=")
		if !found || !strings.Contains(key, "/") {
			return nil, errors.Newf(errors.ErrInvalidInput, "invalid resolution %q, expected category/name=policy", spec)
		}
		policy, err := conflict.ParsePolicy(value)
		if err != nil {
			return nil, err
		}
		if policy == conflict.PolicyAsk {
			return nil, errors.Newf(errors.ErrInvalidInput, "resolution for %s cannot be ask", key)
		}
		out[key] = policy
	}
	return out, nil
}

// reportApply renders the per-artifact outcome of an apply run.
func reportApply(result *bundle.ApplyResult) {
	for _, a := range result.Artifacts {
		label := string(a.Category) + "/" + a.Name
		switch a.Status {
		case bundle.StatusWritten, bundle.StatusReplaced:
			pterm.Success.Printfln("%s: %s", label, a.Status)
		case bundle.StatusRenamed:
			pterm.Success.Printfln("%s: renamed to %s", label, a.FinalName)
		case bundle.StatusSkipped:
			pterm.Info.Printfln("%s: skipped", label)
		case bundle.StatusPending:
			pterm.Warning.Printfln("%s: pending decision", label)
		case bundle.StatusFailed:
			pterm.Error.Printfln("%s: %s", label, a.Error)
		}
	}

	if result.HookReport != nil && result.HookReport.AddedCount() > 0 {
		pterm.Info.Printfln("hooks: added %d entries", result.HookReport.AddedCount())
	}
	if result.Restored > 0 {
		pterm.Info.Printfln("Restored %d secret(s) from runtime values", result.Restored)
	}
	if len(result.Missing) > 0 {
		pterm.Warning.Printfln(MsgMissingVars, strings.Join(result.Missing, ", "), paths.EnvFile)
	}
	if len(result.Pending) > 0 {
		keys := make([]string, 0, len(result.Pending))
		for _, pending := range result.Pending {
			keys = append(keys, conflict.Key(pending.Category, pending.Name))
		}
		pterm.Warning.Printfln(MsgPendingFormat, len(result.Pending), strings.Join(keys, ","))
	}

	pterm.Success.Printfln(MsgAppliedFormat, result.Bundle, result.Version, result.TargetDir, result.Applied())
}
