package main

import (
	"github.com/confshare/confshare/pkg/bundle"
	"github.com/confshare/confshare/pkg/logging"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	updateFrom  string
	updateCheck bool
	updateApply bool
)

var updateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: MsgUpdateShort,
	Long: `Update compares the local bundle against the one at --from and, when
the remote version is newer, replaces the local contents. The local
application history is preserved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.update")

		cfg, p, fsys, err := setup()
		if err != nil {
			return err
		}

		name := args[0]
		localDir, err := bundle.Find(fsys, p.ShareDir(), name)
		if err != nil {
			return err
		}

		if updateCheck {
			check, err := bundle.CheckUpdate(fsys, localDir, updateFrom)
			if err != nil {
				return err
			}
			if check.UpdateAvailable {
				pterm.Info.Printfln(MsgUpdateAvailable, name, check.Local, check.Remote)
			} else {
				pterm.Success.Printfln(MsgUpToDate, name, check.Local)
			}
			return nil
		}

		logger.Info().Str("bundle", name).Str("from", updateFrom).Msg("Starting update")
		result, err := bundle.Update(fsys, localDir, updateFrom, dryRun)
		if err != nil {
			return err
		}

		if !result.Check.UpdateAvailable {
			pterm.Success.Printfln(MsgUpToDate, name, result.Check.Local)
			return nil
		}
		pterm.Success.Printfln(MsgUpdatedFormat, name, result.Check.Local, result.Check.Remote)

		if updateApply {
			applyResult, err := bundle.Apply(fsys, bundle.ApplyOptions{
				BundleDir:      localDir,
				TargetDir:      p.SourceDir(),
				HooksMode:      cfg.Hooks.Mode,
				ConflictPolicy: "overwrite",
				DryRun:         dryRun,
			})
			if err != nil {
				return err
			}
			reportApply(applyResult)
		}

		if dryRun {
			pterm.Info.Println(MsgDryRunNotice)
		}
		return nil
	},
}

var bumpCmd = &cobra.Command{
	Use:   "bump <name> <major|minor|patch>",
	Short: MsgBumpShort,
	Long: `Bump increments one field of the bundle's version, resetting the
lower-order fields, and saves the manifest.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"major", "minor", "patch"},
	RunE: func(cmd *cobra.Command, args []string) error {
		_, p, fsys, err := setup()
		if err != nil {
			return err
		}

		localDir, err := bundle.Find(fsys, p.ShareDir(), args[0])
		if err != nil {
			return err
		}

		next, err := bundle.Bump(fsys, localDir, args[1])
		if err != nil {
			return err
		}
		pterm.Success.Printfln(MsgBumpedFormat, args[0], next)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateFrom, "from", "", MsgFlagFrom)
	updateCmd.Flags().BoolVar(&updateCheck, "check", false, MsgFlagCheck)
	updateCmd.Flags().BoolVar(&updateApply, "apply", false, MsgFlagApply)
	_ = updateCmd.MarkFlagRequired("from")
}
