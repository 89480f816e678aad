package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autobot-dev/autobot/internal/directory"
	"github.com/autobot-dev/autobot/internal/store"
)

var chatDBPath string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Edit the chat directory database referenced by chat_db",
}

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chats in the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withChatRepo(func(repo *store.ChatRepo) error {
			entries, err := repo.List()
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", e.ID, e.Type, e.Name)
			}
			return nil
		})
	},
}

var chatAddCmd = &cobra.Command{
	Use:   "add <id> <group|private> <name>",
	Short: "Add or update a chat",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseChatID(args[0])
		if err != nil {
			return err
		}
		typ, err := directory.ParseChatType(args[1])
		if err != nil {
			return err
		}
		name := strings.TrimSpace(strings.Join(args[2:], " "))
		if name == "" {
			return fmt.Errorf("chat name cannot be empty")
		}
		return withChatRepo(func(repo *store.ChatRepo) error {
			return repo.Upsert(directory.Entry{ID: id, Name: name, Type: typ})
		})
	},
}

var chatRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove a chat",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseChatID(args[0])
		if err != nil {
			return err
		}
		return withChatRepo(func(repo *store.ChatRepo) error {
			removed, err := repo.Delete(id)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("chat %d not found", id)
			}
			return nil
		})
	},
}

func init() {
	chatCmd.PersistentFlags().StringVar(&chatDBPath, "db", "chats.db", "Path to the chat directory database")
	chatCmd.AddCommand(chatListCmd, chatAddCmd, chatRemoveCmd)
	rootCmd.AddCommand(chatCmd)
}

func withChatRepo(fn func(*store.ChatRepo) error) error {
	db, err := store.Open(chatDBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(store.NewChatRepo(db))
}

func parseChatID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid chat id %q", s)
	}
	return id, nil
}
