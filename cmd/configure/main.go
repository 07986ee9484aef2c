package main

import (
	"fmt"
	"os"

	"github.com/benvon/cook-with-ai/cmd/configure/commands"
	"github.com/benvon/cook-with-ai/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	var envFile string
	var rootCmd = &cobra.Command{
		Use:   "cook-configure",
		Short: "Configuration tool for Cook with AI",
		Long:  "CLI tool for database migrations, CORS settings, preferences, dead-letter cleanup and connectivity checks",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(envFile)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(commands.NewMigrateCmd())
	rootCmd.AddCommand(commands.NewCorsCmd())
	rootCmd.AddCommand(commands.NewPreferencesCmd())
	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewCheckCmd())
	rootCmd.AddCommand(commands.NewDLQCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
