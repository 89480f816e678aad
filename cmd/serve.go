package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/autobot-dev/autobot/internal/app"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"start"},
	Short:   "Connect to the OneBot controller and run the bridge",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Make serve the default command when no subcommand given.
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe()
	}
}

func runServe() error {
	if err := runPreflight(configPath); err != nil {
		return err
	}
	return app.Run(app.Options{
		ConfigPath: configPath,
		Version:    version,
		Stdin:      os.Stdin,
	})
}
