package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Account management commands",
	}

	cmd.AddCommand(newAuthGuestCmd())
	cmd.AddCommand(newAuthRegisterCmd())
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthMeCmd())

	return cmd
}

func newAuthGuestCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "guest",
		Short: "Create a guest identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"name": name}
			var result AuthResult

			if err := client.Post("/api/v1/auth/guest", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newAuthRegisterCmd() *cobra.Command {
	var name, email, pass string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"name":     name,
				"email":    email,
				"password": pass,
			}
			var result AuthResult

			if err := client.Post("/api/v1/auth/register", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var email, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"email":    email,
				"password": pass,
			}
			var result AuthResult

			if err := client.Post("/api/v1/auth/login", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newAuthMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show current user info",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result User

			if err := client.Get("/api/v1/auth/me", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
