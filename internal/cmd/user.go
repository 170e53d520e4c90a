package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coffersTech/daylog/internal/auth"
	"github.com/coffersTech/daylog/internal/config"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users for the HTTP surface",
}

var userPassword string

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openAuthStore()
		if err != nil {
			return err
		}
		if userPassword == "" {
			return fmt.Errorf("--password is required")
		}
		if err := store.AddUser(args[0], userPassword); err != nil {
			return fmt.Errorf("add user: %w", err)
		}
		fmt.Printf("user %s added\n", args[0])
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openAuthStore()
		if err != nil {
			return err
		}
		for _, name := range store.Users() {
			fmt.Println(name)
		}
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openAuthStore()
		if err != nil {
			return err
		}
		return store.DeleteUser(args[0])
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API tokens for the HTTP surface",
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an API token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openAuthStore()
		if err != nil {
			return err
		}
		token, err := store.CreateToken(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", token.ID, token.Token)
		return nil
	},
}

var tokenDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an API token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openAuthStore()
		if err != nil {
			return err
		}
		return store.DeleteToken(args[0])
	},
}

func openAuthStore() (*auth.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	store := auth.NewStore(cfg.Auth.Store)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

func init() {
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "password for the new user")
	userCmd.AddCommand(userAddCmd, userListCmd, userDeleteCmd)
	tokenCmd.AddCommand(tokenCreateCmd, tokenDeleteCmd)
	rootCmd.AddCommand(userCmd, tokenCmd)
}
