// Copyright (c) 2026 Keygate. All rights reserved.

// Command adminctl is the operator CLI for out-of-band administration.
//
// There is deliberately no HTTP endpoint for provisioning relying clients:
// registering an application that can receive user credentials is an
// operator decision, made where the operator already has database access.
//
// Usage:
//
//	adminctl client create --client-id acme-web --redirect-uri https://acme.example/callback
//	adminctl client list
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/keygate/keygate/internal/idp/client"
	pgstore "github.com/keygate/keygate/internal/platform/postgres"
)

type adminConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
}

var (
	flagClientID    string
	flagRedirectURI string
)

var rootCmd = &cobra.Command{
	Use:           "adminctl",
	Short:         "Keygate administration CLI",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage registered relying applications",
}

var clientCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a relying application and print its secret once",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, cleanup, err := clientService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		registration, secret, err := service.Register(cmd.Context(), flagClientID, flagRedirectURI)
		if err != nil {
			return fmt.Errorf("adminctl: register client: %w", err)
		}

		// The plaintext secret exists only in this output. Only its hash
		// is stored; there is no way to recover it later.
		fmt.Printf("client_id:     %s\n", registration.ClientID)
		fmt.Printf("redirect_uri:  %s\n", registration.RedirectURI)
		fmt.Printf("client_secret: %s\n", secret)
		return nil
	},
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered relying applications",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, cleanup, err := clientService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		clients, err := service.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("adminctl: list clients: %w", err)
		}

		for _, c := range clients {
			fmt.Printf("%s\t%s\t%s\n", c.ClientID, c.RedirectURI, c.CreatedAt.Format(time.RFC3339))
		}
		return nil
	},
}

// clientService connects to the database and builds the registry service.
func clientService(ctx context.Context) (*client.Service, func(), error) {
	_ = godotenv.Load()

	cfg := adminConfig{}
	if err := env.Parse(&cfg); err != nil {
		return nil, nil, fmt.Errorf("adminctl: parse environment: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgstore.NewPool(connectCtx, cfg.DatabaseURL, discardLogger())
	if err != nil {
		return nil, nil, fmt.Errorf("adminctl: connect to postgres: %w", err)
	}

	return client.NewService(client.NewPostgresRepository(pool)), pool.Close, nil
}

// discardLogger silences the pool's connection logging; CLI output should
// be just the command's result.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func init() {
	clientCreateCmd.Flags().StringVar(&flagClientID, "client-id", "", "public client identifier")
	clientCreateCmd.Flags().StringVar(&flagRedirectURI, "redirect-uri", "", "exact redirect URI for the login flow")
	_ = clientCreateCmd.MarkFlagRequired("client-id")
	_ = clientCreateCmd.MarkFlagRequired("redirect-uri")

	clientCmd.AddCommand(clientCreateCmd, clientListCmd)
	rootCmd.AddCommand(clientCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
