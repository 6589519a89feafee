package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	ddns "github.com/Travis-Britz/cfddns"
	"github.com/Travis-Britz/cfddns/internal/config"
	"github.com/Travis-Britz/cfddns/internal/logging"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		var r reportedError
		if !errors.As(err, &r) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// reportedError marks an error that has already been logged.
type reportedError struct{ error }

func (r reportedError) Unwrap() error { return r.error }

type globalFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var (
		g      globalFlags
		dryRun bool
		ip     string
		iface  string
	)
	cmd := &cobra.Command{
		Use:   "ddnscf [domain]",
		Short: "Keep a Cloudflare A record pointed at this host's public IPv4 address",
		Long: `ddnscf discovers this host's public IPv4 address and, if it differs from the
content of an existing Cloudflare A record, updates the record.
A run that finds nothing to change makes no write and exits 0,
so it is safe to call from cron or a systemd timer.

The record is the [domain] argument, else DDNS_RECORD_NAME, else
DDNS_DEFAULT_DOMAIN. The record must already exist.

Exit status is 0 on success (including "unchanged") and 1 on any failure.

` + configHelp(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(stdout, stderr, g.verbose)
			err := runUpdate(cmd, logger, g, firstArg(args), dryRun, ip, iface)
			if err != nil {
				logError(logger, err)
				return reportedError{err}
			}
			return nil
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Path to a .env, .ini or .yaml config file (default $"+config.EnvConfigPath+" or the user config dir)")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without updating the record")
	cmd.Flags().StringVar(&ip, "ip", "", "Use this address instead of discovering it")
	cmd.Flags().StringVar(&iface, "interface", "", "Use the IPv4 address of this local interface instead of web services")
	cmd.MarkFlagsMutuallyExclusive("ip", "interface")

	cmd.AddCommand(newVerifyCmd(&g, stdout, stderr))
	cmd.AddCommand(newStatusCmd(&g, stdout, stderr))
	cmd.AddCommand(newInitCmd(&g, stdout, stderr))
	return cmd
}

func runUpdate(cmd *cobra.Command, logger *logrus.Logger, g globalFlags, domain string, dryRun bool, ip, iface string) error {
	settings, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	logger.Debugf("config is valid (auth method %s, zone %s)", settings.AuthMethod, settings.ZoneID)

	opts := []ddns.ClientOption{
		ddns.WithLogger(logger),
		ddns.DryRun(dryRun),
		ddns.UsingResolver(resolverFor(ip, iface)),
	}
	if domain != "" {
		opts = append(opts, ddns.ForDomain(domain))
	}
	client, err := ddns.New(settings, opts...)
	if err != nil {
		return err
	}
	_, err = client.RunDDNS(cmd.Context())
	return err
}

// resolverFor returns nil when the default web resolver should be used.
func resolverFor(ip, iface string) ddns.Resolver {
	switch {
	case ip != "":
		return ddns.FromString(ip)
	case iface != "":
		return ddns.InterfaceResolver(iface)
	}
	return nil
}

func logError(logger *logrus.Logger, err error) {
	entry := logrus.NewEntry(logger)
	var re *ddns.ResponseError
	if errors.As(err, &re) {
		entry = entry.WithField("response", re.Body)
	}
	entry.Error(err)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func configHelp() string {
	var b strings.Builder
	b.WriteString("Configuration (environment overrides the config file):\n")
	for _, k := range config.Keys {
		fmt.Fprintf(&b, "  %-24s [%s] %s\n", k.Env, k.Section, k.Name)
	}
	b.WriteString(`
CLOUDFLARE_AUTH_METHOD is "token" (default, uses CLOUDFLARE_AUTH_KEY as a bearer
token) or "global" (global API key, also needs CLOUDFLARE_AUTH_EMAIL).
Defaults: DDNS_TTL=3600, DDNS_PROXIED=false, DDNS_HTTP_TIMEOUT=10s.
Notifications are sent only when the record changes or the update fails.`)
	return b.String()
}
