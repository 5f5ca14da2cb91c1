package main

import (
	"path/filepath"

	"github.com/confshare/confshare/pkg/bundle"
	"github.com/confshare/confshare/pkg/logging"
	"github.com/confshare/confshare/pkg/paths"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	packVersion      string
	packDescription  string
	packAuthor       string
	packInclude      []string
	packExclude      []string
	packSkipSanitize bool
	packForce        bool
)

var packCmd = &cobra.Command{
	Use:   "pack <name>",
	Short: MsgPackShort,
	Long: `Pack copies the selected artifacts from the configuration directory
into a new bundle under the share directory, replaces secret-like
values with placeholders, and writes the bundle manifest.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.pack")

		cfg, p, fsys, err := setup()
		if err != nil {
			return err
		}

		content, err := parseCategoryLists(packInclude)
		if err != nil {
			return err
		}
		exclude, err := parseCategoryLists(packExclude)
		if err != nil {
			return err
		}

		name := args[0]
		skipSanitize := packSkipSanitize || !cfg.Sanitize.Enabled
		logger.Info().Str("bundle", name).Str("source", p.SourceDir()).Msg("Starting pack")

		result, err := bundle.Pack(fsys, bundle.PackOptions{
			Name:         name,
			Version:      packVersion,
			Description:  packDescription,
			Author:       packAuthor,
			SourceDir:    p.SourceDir(),
			BundleDir:    p.BundleDir(name),
			Content:      content,
			Exclude:      exclude,
			SkipSanitize: skipSanitize,
			Force:        packForce,
			DryRun:       dryRun,
		})
		if err != nil {
			return err
		}

		for _, warning := range result.Warnings {
			pterm.Warning.Println(warning)
		}
		pterm.Success.Printfln(MsgPackedFormat, name, result.Manifest.Version, len(result.Artifacts))
		if len(result.SanitizedVars) > 0 {
			pterm.Info.Printfln(MsgSanitizedFormat, len(result.SanitizedVars),
				filepath.Join(result.BundleDir, paths.EnvExampleFile))
		}
		if dryRun {
			pterm.Info.Println(MsgDryRunNotice)
		}
		return nil
	},
}

func init() {
	packCmd.Flags().StringVar(&packVersion, "version", "", MsgFlagVersion)
	packCmd.Flags().StringVar(&packDescription, "description", "", MsgFlagDescription)
	packCmd.Flags().StringVar(&packAuthor, "author", "", MsgFlagAuthor)
	packCmd.Flags().StringArrayVar(&packInclude, "include", nil, MsgFlagInclude)
	packCmd.Flags().StringArrayVar(&packExclude, "exclude", nil, MsgFlagExclude)
	packCmd.Flags().BoolVar(&packSkipSanitize, "skip-sanitize", false, MsgFlagSkipSanitize)
	packCmd.Flags().BoolVar(&packForce, "force", false, MsgFlagForce)
}
