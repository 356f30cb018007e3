package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"paypal-gateway/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Check PayPal credentials by requesting an access token",
	Long: `token performs the client-credentials grant with the configured PayPal
credentials and reports whether it succeeded. The token itself is not printed.`,
	RunE: runToken,
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	tok, err := newPaypalClient(cfg).FetchToken(ctx)
	if err != nil {
		return fmt.Errorf("PayPal authentication against %s failed: %w", cfg.PayPal.APIBase, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ PayPal credentials accepted by %s\n", cfg.PayPal.APIBase)
	fmt.Fprintf(out, "  token type: %s\n", tok.TokenType)
	fmt.Fprintf(out, "  expires in: %s\n", time.Duration(tok.ExpiresIn)*time.Second)
	return nil
}
