package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"address-gateway/core/cache"
	"address-gateway/core/usps"
	"address-gateway/feature/correction"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check one address and summarize the USPS corrections",
	Long: `Runs the correction checker for a single address. With --gateway the lookup
goes through a running gateway; otherwise the gateway is built in-process from
the configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		street, _ := flags.GetString("street")
		city, _ := flags.GetString("city")
		state, _ := flags.GetString("state")
		zip, _ := flags.GetString("zip")
		country, _ := flags.GetString("country")
		gatewayURL, _ := flags.GetString("gateway")
		jsonOutput, _ := flags.GetBool("json")
		timeout, _ := flags.GetDuration("timeout")

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		var (
			lookup correction.Lookup
			logg   = zap.NewNop()
		)
		if gatewayURL != "" {
			lookup = correction.NewGatewayClient(gatewayURL, &http.Client{Timeout: timeout})
		} else {
			cfg, l, err := loadConfig(envDir(cmd))
			if err != nil {
				return err
			}
			logg = l
			gw, err := newGateway(cfg, logg)
			if err != nil {
				return err
			}
			lookup = correction.LookupFunc(func(ctx context.Context, q url.Values) (usps.Response, error) {
				res, err := gw.service.Validate(ctx, q)
				if err != nil {
					return usps.Response{}, err
				}
				return res.Response, nil
			})
		}

		store, err := cache.New[correction.Result](1)
		if err != nil {
			return err
		}
		checker := correction.NewChecker(lookup, store, logg)

		result, err := checker.Check(ctx, correction.Address{
			StreetAddress: street,
			City:          city,
			State:         state,
			ZIP:           zip,
			Country:       country,
		})
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		fmt.Fprintf(out, "Result:      %s\n", result.Code)
		fmt.Fprintf(out, "Corrections: %d\n", result.CorrectionCount)
		if result.Message != "" {
			fmt.Fprintf(out, "Message:     %s\n", result.Message)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().String("street", "", "Street address (required)")
	validateCmd.Flags().String("city", "", "City (required)")
	validateCmd.Flags().String("state", "", "Two letter state code (required)")
	validateCmd.Flags().String("zip", "", "ZIP or ZIP+4 code")
	validateCmd.Flags().String("country", "", "Country; two letter codes other than US are skipped")
	validateCmd.Flags().String("gateway", "", "Base URL of a running gateway (default: in-process)")
	validateCmd.Flags().Bool("json", false, "Output the result as JSON")
	validateCmd.Flags().Duration("timeout", 2*time.Minute, "Overall timeout")
	_ = validateCmd.MarkFlagRequired("street")
	_ = validateCmd.MarkFlagRequired("city")
	_ = validateCmd.MarkFlagRequired("state")
	RootCmd.AddCommand(validateCmd)
}
