package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sebasr/device-timeseries/internal/auth"
	"github.com/sebasr/device-timeseries/internal/config"
)

var (
	tokenSubject string
	tokenScopes  []string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token",
	Example: `  device-timeseries token --subject dashboard
  device-timeseries token --subject weather-01 --scope timeseries:ingress --ttl 8760h`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "client or device the token is issued to")
	tokenCmd.Flags().StringSliceVar(&tokenScopes, "scope", []string{auth.ScopeRead}, "granted scope (repeatable)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (overrides JWT_TOKEN_TTL)")
	_ = tokenCmd.MarkFlagRequired("subject")

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ttl := cfg.Auth.TokenTTL
	if tokenTTL > 0 {
		ttl = tokenTTL
	}

	token, expiresAt, err := auth.NewJWTService(cfg.Auth.JWTSecret, ttl).GenerateToken(tokenSubject, tokenScopes)
	if err != nil {
		return err
	}

	return printJSON(cmd, map[string]any{
		"token":     token,
		"subject":   tokenSubject,
		"scopes":    tokenScopes,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
	})
}
