package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/autobot-dev/autobot/internal/config"
)

var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "autobot",
	Short: "OneBot v11 bridge for a desktop chat client",
	Long:  "autobot connects to a OneBot v11 controller over reverse WebSocket, forwards desktop notifications as message events and turns send actions into input commands for the chat client.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnvFile(envFile); err != nil {
			return err
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a dotenv file loaded before the environment is read")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
