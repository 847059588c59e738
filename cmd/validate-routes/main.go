package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/marcelsud/webhook-client/config"
	"github.com/marcelsud/webhook-client/routes"
	"github.com/marcelsud/webhook-client/secret"
)

/* validate-routes - Standalone CLI tool to validate routes.yaml
 * Usage: go run cmd/validate-routes/main.go [routes.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 * ENCRYPTION_KEY must be set when routes use auth_encrypted.
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Get routes file path from args or use the configured one
	routesFile := cfg.RoutesFile
	if len(os.Args) > 1 {
		routesFile = os.Args[1]
	}

	fmt.Printf("Validating routes file: %s\n", routesFile)
	fmt.Println(strings.Repeat("-", 50))

	opts := []routes.LoaderOption{routes.WithConfig(cfg)}
	if cfg.EncryptionKey != "" {
		c, err := secret.New(cfg.EncryptionKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, routes.WithCipher(c))
	}

	loader := routes.NewLoader(opts...)
	if err := loader.Load(routesFile); err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Success - print loaded routes
	loadedRoutes := loader.List()
	fmt.Printf("✓ VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d route(s):\n", len(loadedRoutes))

	for i, route := range loadedRoutes {
		fmt.Printf("\n%d. Route: %s (%s)\n", i+1, route.RouteID, route.Name)
		fmt.Printf("   Environment:   %s\n", route.Environment)
		fmt.Printf("   Base URL:      %s\n", route.BaseURL())
		fmt.Printf("   Webhook Path:  %s\n", route.WebhookPath)
		if route.TestPath != "" {
			fmt.Printf("   Test Path:     %s\n", route.TestPath)
		}
		fmt.Printf("   Format:        %s\n", route.Format)
		fmt.Printf("   Auth:          %s\n", route.AuthKind())
		fmt.Printf("   Timeout:       %s\n", route.Timeout)
		fmt.Printf("   Max Retries:   %d\n", route.MaxRetries)
		fmt.Printf("   Retry Delay:   %s\n", route.RetryDelay)
		fmt.Printf("   Signed:        %t\n", route.SigningSecret != "")
		fmt.Printf("   Active:        %t\n", route.Active)
		fmt.Printf("   Delivered TTL: %s\n", route.GetDeliveredTTL(cfg))
		fmt.Printf("   Failed TTL:    %s\n", route.GetFailedTTL(cfg))
	}

	fmt.Printf("\n✓ All routes are valid!\n")
	os.Exit(0)
}
