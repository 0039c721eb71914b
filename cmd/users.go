package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GSKISBOT/fileconvertor/pkg/auth"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage authorized chat users",
	Long: `Manage the list of chat users allowed to use the bot.

An empty list lets everyone in. The list lives in storage.users_file (JSON) or
storage.users_db (SQLite), chosen by storage.users_backend. A running bot picks
up changes on the next message.

Examples:
  fileconvertor users list
  fileconvertor users add 123456789
  fileconvertor users remove 123456789`,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List authorized users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAuthorizer(func(a *auth.Authorizer) error {
			users, err := a.Users(cmd.Context())
			if err != nil {
				return err
			}
			if users.Len() == 0 {
				fmt.Println("👥 No authorized users: the bot is open to everyone")
				return nil
			}
			fmt.Printf("👥 Authorized users (%d):\n", users.Len())
			for _, id := range users.List() {
				fmt.Printf("  %s\n", id)
			}
			return nil
		})
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add <user-id>...",
	Short: "Authorize users",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			if err := auth.ValidateUserID(id); err != nil {
				return err
			}
		}
		return withAuthorizer(func(a *auth.Authorizer) error {
			for _, id := range args {
				added, err := a.AddUser(cmd.Context(), id)
				if err != nil {
					return err
				}
				if added {
					fmt.Printf("✅ User %s added\n", id)
				} else {
					fmt.Printf("⚠️  User %s already exists\n", id)
				}
			}
			return nil
		})
	},
}

var usersRemoveCmd = &cobra.Command{
	Use:   "remove <user-id>...",
	Short: "Revoke users",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAuthorizer(func(a *auth.Authorizer) error {
			for _, id := range args {
				removed, err := a.RemoveUser(cmd.Context(), id)
				if err != nil {
					return err
				}
				if removed {
					fmt.Printf("✅ User %s removed\n", id)
				} else {
					fmt.Printf("⚠️  User %s not found\n", id)
				}
			}
			return nil
		})
	},
}

// withAuthorizer opens the configured user repository for the duration of fn
func withAuthorizer(fn func(*auth.Authorizer) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	repo, closer, err := auth.NewRepository(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	return fn(auth.NewAuthorizer(repo, log))
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd, usersAddCmd, usersRemoveCmd)
}
