package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	var user, pass, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"username": user,
				"password": pass,
			}
			if email != "" {
				req["email"] = email
			}
			var result RegisterResult

			if err := client.Post("/api/register", req, &result); err != nil {
				return err
			}

			// Save session
			if err := cfg.SaveSession(result.SessionID); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newLoginCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"username": user,
				"password": pass,
			}
			var result LoginResult

			if err := client.Post("/api/login", req, &result); err != nil {
				return err
			}

			// Save session
			if err := cfg.SaveSession(result.SessionID); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newGuestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guest",
		Short: "Start a guest session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GuestResult

			if err := client.Post("/api/guest", nil, &result); err != nil {
				return err
			}

			// Save session
			if err := cfg.SaveSession(result.SessionID); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.SessionID == "" {
				return fmt.Errorf("no session: login or start a guest session first")
			}

			var result SessionResult

			if err := client.Get("/api/session?session_id="+cfg.SessionID, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
