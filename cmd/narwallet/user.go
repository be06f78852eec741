package main

import (
	"bytes"
	"context"

	"github.com/AlexZinkM/narwallet/internal/config"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newCreateUserCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a vault user, the password is prompted",
		Run: func(cmd *cobra.Command, args []string) {
			if err := createUser(cmd.Context(), userID); err != nil {
				log.Fatal().Err(err).Msg("Failed to create user")
			}
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User email")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newChangePasswordCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Re-encrypt a user's vault under a new password",
		Run: func(cmd *cobra.Command, args []string) {
			if err := changePassword(cmd.Context(), userID); err != nil {
				log.Fatal().Err(err).Msg("Failed to change password")
			}
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User email")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func createUser(ctx context.Context, userID string) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	password, err := promptNewPassword()
	if err != nil {
		return err
	}
	defer clear(password)

	if _, err := a.vault.Create(ctx, userID, password); err != nil {
		return err
	}
	log.Info().Str("user", userID).Msg("User created")
	return nil
}

func changePassword(ctx context.Context, userID string) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	current, err := config.PromptPassword("Current password: ")
	if err != nil {
		return err
	}
	s, err := a.vault.Unlock(ctx, userID, current)
	clear(current)
	if err != nil {
		return err
	}

	password, err := promptNewPassword()
	if err != nil {
		return err
	}
	defer clear(password)

	return a.vault.ChangePassword(ctx, s, password)
}

// promptNewPassword asks twice. Caller must zero the result.
func promptNewPassword() ([]byte, error) {
	password, err := config.PromptPassword("New password: ")
	if err != nil {
		return nil, err
	}
	confirm, err := config.PromptPassword("Repeat password: ")
	if err != nil {
		clear(password)
		return nil, err
	}
	defer clear(confirm)

	if !bytes.Equal(password, confirm) {
		clear(password)
		return nil, errors.New("passwords do not match")
	}
	return password, nil
}
