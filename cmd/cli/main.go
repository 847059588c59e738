package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/marcelsud/webhook-client/config"
	"github.com/marcelsud/webhook-client/routes"
	"github.com/marcelsud/webhook-client/secret"
	"github.com/marcelsud/webhook-client/webhook"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	errDeliveryFailed = errors.New("delivery failed")
	errNotConnected   = errors.New("webhook not reachable")
)

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "webhook-client",
		Short:        "Deliver messages to agent webhooks",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfg.RoutesFile, "routes", cfg.RoutesFile, "routes file")

	root.AddCommand(newSendCmd(cfg), newTestCmd(cfg), newEncryptAuthCmd(cfg))
	return root
}

func newSendCmd(cfg *config.Config) *cobra.Command {
	var (
		routeID   string
		messageID string
		userID    string
		content   string
		format    string
		metadata  string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one message through a route",
		RunE: func(cmd *cobra.Command, args []string) error {
			meta := map[string]any{}
			if metadata != "" {
				if err := json.Unmarshal([]byte(metadata), &meta); err != nil {
					return fmt.Errorf("parsing metadata: %w", err)
				}
			}
			if messageID == "" {
				messageID = uuid.New().String()
			}

			s, err := newService(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			msg := webhook.NewMessage(messageID, userID, content,
				webhook.WithContentFormat(format),
				webhook.WithMetadata(meta),
			)
			d, err := s.Deliver(cmd.Context(), routeID, msg)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), d.Outcome); err != nil {
				return err
			}
			if !d.Outcome.Success {
				return errDeliveryFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&routeID, "route", "", "route id")
	cmd.Flags().StringVar(&messageID, "message-id", "", "message id (generated when empty)")
	cmd.Flags().StringVar(&userID, "user", "cli", "user id")
	cmd.Flags().StringVar(&content, "content", "", "message content")
	cmd.Flags().StringVar(&format, "format", "", "content format (default markdown)")
	cmd.Flags().StringVar(&metadata, "metadata", "", "metadata as a JSON object")
	cmd.MarkFlagRequired("route")
	cmd.MarkFlagRequired("content")
	return cmd
}

func newTestCmd(cfg *config.Config) *cobra.Command {
	var routeID string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Check connectivity of a route",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newService(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := s.TestRoute(cmd.Context(), routeID)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if report.Status != webhook.Connected {
				return errNotConnected
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&routeID, "route", "", "route id")
	cmd.MarkFlagRequired("route")
	return cmd
}

func newEncryptAuthCmd(cfg *config.Config) *cobra.Command {
	var auth webhook.AuthConfig

	cmd := &cobra.Command{
		Use:   "encrypt-auth",
		Short: "Encrypt an auth config for the auth_encrypted route field",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := secret.New(cfg.EncryptionKey)
			if err != nil {
				return fmt.Errorf("ENCRYPTION_KEY: %w", err)
			}
			envelope, err := c.EncryptAuth(auth)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), envelope)
			return nil
		},
	}

	cmd.Flags().StringVar(&auth.Type, "type", "none", "auth type: none, basic, header or bearer")
	cmd.Flags().StringVar(&auth.Username, "username", "", "basic auth username")
	cmd.Flags().StringVar(&auth.Password, "password", "", "basic auth password")
	cmd.Flags().StringVar(&auth.Key, "key", "", "header name")
	cmd.Flags().StringVar(&auth.Value, "value", "", "header value")
	cmd.Flags().StringVar(&auth.Token, "token", "", "bearer token")
	return cmd
}

// newService builds a service over the routes file without a delivery store
func newService(cfg *config.Config, logOut io.Writer) (*webhook.Service, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: logOut}).Level(level).With().Timestamp().Logger()

	opts := []routes.LoaderOption{routes.WithConfig(cfg)}
	if cfg.EncryptionKey != "" {
		c, err := secret.New(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
		opts = append(opts, routes.WithCipher(c))
	}
	loader := routes.NewLoader(opts...)
	if err := loader.Load(cfg.RoutesFile); err != nil {
		return nil, err
	}

	return webhook.NewService(loader, nil, webhook.WithServiceLogger(logger)), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
