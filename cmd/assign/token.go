package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/helpdesk-ops/ticket-assignment/internal/auth"
	"github.com/helpdesk-ops/ticket-assignment/internal/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed service token for the HTTP API",
	RunE:  runToken,
}

var (
	tokenSubject string
	tokenScopes  []string
	tokenTTL     time.Duration
)

func init() {
	tokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "", "Caller name recorded on assignments (required)")
	tokenCmd.Flags().StringSliceVar(&tokenScopes, "scope", []string{"assignments:write", "assignments:read"}, "Scopes to grant")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (default AUTH_SERVICE_TOKEN_TTL_MINUTES)")
	_ = tokenCmd.MarkFlagRequired("subject")

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	scopes, err := auth.ParseScopes(tokenScopes)
	if err != nil {
		return err
	}

	ttl := tokenTTL
	if ttl <= 0 {
		ttl = cfg.Auth.ServiceTokenTTL()
	}

	raw, meta, err := auth.NewTokenManager(cfg.Auth.JWTSecret, ttl).GenerateToken(tokenSubject, scopes)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), raw)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", meta.ExpiresAt.UTC().Format(time.RFC3339))
	return nil
}
