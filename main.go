package main

import (
	"os"

	"paypal-gateway/cli"
)

var version = "dev"

// @title        PayPal Gateway API
// @version      1.0
// @description  Stateless proxy for PayPal one-time payments, captures and subscriptions.
// @BasePath     /

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
