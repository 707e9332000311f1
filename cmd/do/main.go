package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/templui/apiplate/cmd/do/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "do",
		Short:        "Development and maintenance tools for apiplate",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		cmd.DevCmd(),
		cmd.MigrateCmd(),
		cmd.CleanupCmd(),
		cmd.SecretCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
