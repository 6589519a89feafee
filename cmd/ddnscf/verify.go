package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	ddns "github.com/Travis-Britz/cfddns"
	"github.com/Travis-Britz/cfddns/internal/config"
	"github.com/Travis-Britz/cfddns/internal/logging"
)

func newVerifyCmd(g *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the configured credentials can read the zone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(stdout, stderr, g.verbose)
			settings, err := config.Load(g.configPath)
			if err != nil {
				logError(logger, err)
				return reportedError{err}
			}
			v, err := ddns.VerifyCredentials(cmd.Context(), settings, nil)
			if err != nil {
				logError(logger, err)
				return reportedError{err}
			}
			switch v.Method {
			case ddns.AuthToken:
				fmt.Fprintf(stdout, "token status: %s\n", v.TokenStatus)
			case ddns.AuthGlobal:
				fmt.Fprintf(stdout, "account: %s\n", v.Email)
			}
			fmt.Fprintf(stdout, "zone: %s (%s)\n", v.ZoneName, v.ZoneStatus)
			return nil
		},
	}
}
