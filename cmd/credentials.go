package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// credentialsCmd represents the credentials command
var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Generate a token for every configured credential pair",
	Long:  `Requests an access token for each USPS client id and reports which pairs work. Secrets and tokens are never printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")

		cfg, logg, err := loadConfig(envDir(cmd))
		if err != nil {
			return err
		}

		gw, err := newGateway(cfg, logg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		out := cmd.OutOrStdout()
		failed := 0
		for _, report := range gw.pool.Warm(ctx) {
			if report.Err != nil {
				failed++
				fmt.Fprintf(out, "slot %d  %-20s  FAILED  %v\n", report.Slot, mask(report.ClientID), report.Err)
				continue
			}
			fmt.Fprintf(out, "slot %d  %-20s  OK\n", report.Slot, mask(report.ClientID))
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d credential pair(s) failed", failed, gw.pool.Size())
		}
		return nil
	},
}

// mask keeps the first and last four characters of a client id.
func mask(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:4] + "..." + id[len(id)-4:]
}

func init() {
	credentialsCmd.Flags().Duration("timeout", time.Minute, "Overall timeout")
	RootCmd.AddCommand(credentialsCmd)
}
