package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "paypal-gateway",
	Short: "Stateless proxy for PayPal payments and subscriptions",
	Long: `paypal-gateway exposes one-time payment, capture and subscription endpoints
and forwards them to the PayPal REST API using client-credentials authentication.

Configuration is read from the environment (PAYPAL_*, GATEWAY_*) and an optional .env file.`,
	RunE:          runServe, // Default action is serve
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
