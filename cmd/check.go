package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/autobot-dev/autobot/internal/app"
	"github.com/autobot-dev/autobot/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and print the chat directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		dir, err := app.BuildDirectory(cfg)
		if err != nil {
			return fmt.Errorf("chat directory: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ws_server:       %s\n", cfg.WSServer)
		fmt.Fprintf(out, "self_id:         %d (%s)\n", cfg.SelfID, cfg.SelfName)
		fmt.Fprintf(out, "reconnect_delay: %s\n", cfg.ReconnectDelay)
		fmt.Fprintf(out, "ping:            every %s, timeout %s\n", cfg.PingInterval, cfg.PingTimeout)
		fmt.Fprintf(out, "repeat_count:    %d\n", cfg.NotificationRepeatCount)
		fmt.Fprintf(out, "injector:        %s\n", cfg.Injector.Mode)
		fmt.Fprintf(out, "chats:           %d\n\n", dir.Len())

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTYPE\tNAME")
		for _, e := range dir.Entries("") {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", e.ID, e.Type, e.Name)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
