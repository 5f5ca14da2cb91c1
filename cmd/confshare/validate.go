package main

import (
	"github.com/confshare/confshare/pkg/bundle"
	"github.com/confshare/confshare/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <name>",
	Short: MsgValidateShort,
	Long: `Validate checks a bundle on disk: the manifest must load against the
schema, selected artifacts must exist, the hook and binding files must
parse, and secret hygiene problems are reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, p, fsys, err := setup()
		if err != nil {
			return err
		}

		name := args[0]
		bundleDir, err := bundle.Find(fsys, p.ShareDir(), name)
		if err != nil {
			return err
		}

		report, err := bundle.Validate(fsys, bundleDir)
		if err != nil {
			return err
		}

		for _, warning := range report.Warnings {
			pterm.Warning.Println(warning)
		}
		if report.Valid {
			pterm.Success.Printfln(MsgValidFormat, name)
			return nil
		}
		for _, problem := range report.Errors {
			pterm.Error.Println(problem)
		}
		return errors.Newf(errors.ErrValidation, MsgInvalidFormat, name, len(report.Errors))
	},
}
