package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbovet/oxidized-skills/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print oxidized-skills version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("oxidized-skills %s\n", version.Version)
		fmt.Printf("  Commit: %s\n", version.GitCommit)
		fmt.Printf("  Built:  %s\n", version.BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
