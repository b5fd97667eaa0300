package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/config"
	"github.com/Veraticus/spice-insights/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}

	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This command will:
1. Print a Google login URL and wait for the redirect
2. Save the token next to your config file

You'll need to run this once before 'spice export-sheets'.`,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")
	cmd.Flags().String("callback-addr", sheets.DefaultCallbackAddr, "address the login redirect is served on")

	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	clientID := firstNonEmpty(flagString(cmd, "client-id"), viper.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID"))
	clientSecret := firstNonEmpty(flagString(cmd, "client-secret"), viper.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"))
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("OAuth2 credentials not found. Please set sheets.client_id and sheets.client_secret in config or use --client-id and --client-secret flags")
	}

	tokenFile := config.SheetsTokenFile()
	slog.Info("Starting Google Sheets authentication", "token_file", tokenFile)

	token, err := sheets.GetOrCreateToken(ctx, sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
		CallbackAddr: flagString(cmd, "callback-addr"),
	})
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	if token.RefreshToken == "" {
		slog.Warn("Google did not return a refresh token; exports will need a new login when this token expires")
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Authentication successful!"))
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Run 'spice export-sheets' to export a report."))
	return nil
}

func flagString(cmd *cobra.Command, name string) string {
	s, _ := cmd.Flags().GetString(name)
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
