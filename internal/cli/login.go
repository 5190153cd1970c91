package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <account>",
		Short: "Authenticate against the shop API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Print("password: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimSpace(line)
			}

			sess, err := app.sessions.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Printf("logged in as %s (%s)\n", sess.Account, sess.Username)
			if sess.Admin {
				fmt.Println("admin privileges active")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "account password (prompted if omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the current session and its persisted credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.sessions.Logout()
			fmt.Println("logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := app.sessions.Current()
			if !sess.Authenticated {
				fmt.Println("not logged in")
				return nil
			}
			fmt.Printf("account: %s\n", sess.Account)
			if sess.Username != "" {
				fmt.Printf("name:    %s\n", sess.Username)
			}
			fmt.Printf("admin:   %v\n", sess.Admin)
			if app.sessions.ExpiresWithin(5 * time.Minute) {
				fmt.Println("note: session expires within 5 minutes")
			}
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "register <account>",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return fmt.Errorf("--password is required")
			}
			if err := app.gw.Register(cmd.Context(), args[0], password); err != nil {
				return err
			}
			fmt.Printf("account %s created\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password for the new account")
	return cmd
}
