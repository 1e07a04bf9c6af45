package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	gsheet "mywallet/internal/sheets/google"
)

func sheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Google Sheets journal helpers",
	}
	cmd.AddCommand(authorizeSheetsCmd())
	return cmd
}

// authorizeSheetsCmd obtains a user token for the journal export when no
// service account is available.
func authorizeSheetsCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Authorize journal access with a Google user account",
		Long: `Runs the OAuth consent flow for the OAuth client in GOOGLE_OAUTH_CLIENT_FILE
and saves the resulting token to GOOGLE_OAUTH_TOKEN_FILE. The redirect URI
http://<listen>/callback must be registered on the client.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			if cfg.GoogleOAuthClientFile == "" {
				return errors.New("GOOGLE_OAUTH_CLIENT_FILE is required")
			}
			clientJSON, err := os.ReadFile(cfg.GoogleOAuthClientFile)
			if err != nil {
				return fmt.Errorf("read oauth client file: %w", err)
			}
			oc, err := gsheet.OAuthConfig(clientJSON)
			if err != nil {
				return err
			}
			tok, err := gsheet.Authorize(cmd.Context(), oc, listen, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := gsheet.SaveToken(cfg.GoogleOAuthTokenFile, tok); err != nil {
				return err
			}
			logger.Info("Saved OAuth token", "path", cfg.GoogleOAuthTokenFile)
			fmt.Fprintf(cmd.OutOrStdout(), "Saved token to %s\n", cfg.GoogleOAuthTokenFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "localhost:8085", "address of the local redirect listener")
	return cmd
}
