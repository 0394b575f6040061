package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/internal/service"
)

func newCreateUserCmd() *cobra.Command {
	var params service.CreateUserParams

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				auth := service.NewAuthService(a.db, a.cfg.JWTSecret, a.cfg.TokenTTL)
				user, err := auth.CreateUser(cmd.Context(), params)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Username, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&params.Username, "username", "", "login name")
	cmd.Flags().StringVar(&params.Email, "email", "", "email address")
	cmd.Flags().StringVar(&params.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&params.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&params.Password, "password", "", "password, at least 8 characters")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <username>",
		Short: "Print a bearer token for an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				auth := service.NewAuthService(a.db, a.cfg.JWTSecret, a.cfg.TokenTTL)
				user, err := auth.GetUserByUsername(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("user %s: %w", args[0], err)
				}
				token, err := auth.GenerateToken(user)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
}
