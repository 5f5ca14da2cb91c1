package main

import (
	"fmt"
	"strings"

	"github.com/confshare/confshare/internal/version"
	"github.com/confshare/confshare/pkg/config"
	"github.com/confshare/confshare/pkg/errors"
	"github.com/confshare/confshare/pkg/filesystem"
	"github.com/confshare/confshare/pkg/logging"
	"github.com/confshare/confshare/pkg/paths"
	"github.com/confshare/confshare/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	verbosity int
	dryRun    bool
	sourceDir string
	shareDir  string

	rootCmd = &cobra.Command{
		Use:   "confshare",
		Short: MsgRootShort,
		Long: `confshare packages assistant tool configuration (commands, agents,
hooks, external service bindings and skills) into versioned bundles
that can be shared, applied to other machines and kept up to date.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVar(&sourceDir, "source", "", MsgFlagSource)
	rootCmd.PersistentFlags().StringVar(&shareDir, "share", "", MsgFlagShare)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(bumpCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(genConfigCmd)
}

// setup resolves the effective configuration, paths and filesystem for
// a command run. Flags override config file values.
func setup() (*config.Config, paths.Paths, types.FS, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, nil, nil, err
	}

	source := sourceDir
	if source == "" {
		source = cfg.Source.Dir
	}
	share := shareDir
	if share == "" {
		share = cfg.Share.Dir
	}
	p, err := paths.New(source, share)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, p, filesystem.NewOS(), nil
}

// parseCategoryLists parses repeated "category=name1,name2" flags.
func parseCategoryLists(specs []string) (map[types.Category][]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[types.Category][]string)
	for _, spec := range specs {
		key, list, found := strings.Cut(spec, "=")
		if !found {
			return nil, errors.Newf(errors.ErrInvalidInput, "invalid selection %q, expected category=name,...", spec)
		}
		category := types.Category(key)
		if !types.ValidCategory(category) {
			return nil, errors.Newf(errors.ErrInvalidInput, "unknown category %q", key)
		}
		for _, name := range strings.Split(list, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out[category] = append(out[category], name)
			}
		}
	}
	return out, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: MsgVersionShort,
	Long:  `Print version information for confshare`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("confshare version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(confshare completion bash)

Zsh:
  $ confshare completion zsh > "${fpath[1]}/_confshare"

Fish:
  $ confshare completion fish | source

PowerShell:
  PS> confshare completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			if err := cmd.Root().GenBashCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate bash completion")
			}
		case "zsh":
			if err := cmd.Root().GenZshCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate zsh completion")
			}
		case "fish":
			if err := cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true); err != nil {
				log.Error().Err(err).Msg("Failed to generate fish completion")
			}
		case "powershell":
			if err := cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate powershell completion")
			}
		}
	},
}
