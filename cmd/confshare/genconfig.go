package main

import (
	"fmt"

	"github.com/confshare/confshare/pkg/config"
	"github.com/spf13/cobra"
)

var genConfigCmd = &cobra.Command{
	Use:   "gen-config",
	Short: MsgGenConfigShort,
	Long: `Prints a starter configuration file with every value commented out.
Save it as .confshare.toml in a project or as confshare.toml in the
user config directory and uncomment what you want to change.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(config.GenerateConfigContent())
	},
}
