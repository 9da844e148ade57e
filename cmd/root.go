package cmd

import (
	"fmt"
	"os"

	"address-gateway/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "address-gateway",
	Short: "USPS address validation gateway",
	Long: `Address Gateway is a caching proxy in front of the USPS Addresses API.
It rotates through several OAuth credentials, retries throttled calls and
can summarize the corrections USPS suggests for an address.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Use the application's standard logger for error reporting
		// We default to console format to match user expectations (CLI tool)
		// We use "debug" level configuration to get ISO8601 timestamps (DevConfig) instead of Epoch (ProdConfig)
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			// Log the error with structured logger (Console encoding will make it pretty)
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().String("env-dir", ".", "Directory holding the optional .env file")
}

// envDir returns the directory passed with --env-dir.
func envDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("env-dir")
	if err != nil || dir == "" {
		return "."
	}
	return dir
}
