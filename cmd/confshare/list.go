package main

import (
	"strconv"

	"github.com/confshare/confshare/pkg/bundle"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: MsgListShort,
	Long:  `List displays the bundles found in the share directory.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, p, fsys, err := setup()
		if err != nil {
			return err
		}

		infos, warnings, err := bundle.List(fsys, p.ShareDir())
		if err != nil {
			return err
		}
		for _, warning := range warnings {
			pterm.Warning.Println(warning)
		}
		if len(infos) == 0 {
			pterm.Info.Println(MsgNoBundlesFound)
			return nil
		}

		rows := pterm.TableData{{"NAME", "VERSION", "ARTIFACTS", "APPLIED", "DESCRIPTION"}}
		for _, info := range infos {
			rows = append(rows, []string{
				info.Name,
				info.Version,
				strconv.Itoa(info.ArtifactCount),
				strconv.Itoa(info.Applications),
				info.Description,
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: MsgRemoveShort,
	Long:  `Remove deletes a bundle from the share directory. Applied artifacts are left in place.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, p, fsys, err := setup()
		if err != nil {
			return err
		}

		if dryRun {
			pterm.Info.Println(MsgDryRunNotice)
			return nil
		}
		if err := bundle.Remove(fsys, p.ShareDir(), args[0]); err != nil {
			return err
		}
		pterm.Success.Printfln(MsgRemovedFormat, args[0])
		return nil
	},
}
