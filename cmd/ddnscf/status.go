package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	ddns "github.com/Travis-Britz/cfddns"
	"github.com/Travis-Britz/cfddns/internal/config"
	"github.com/Travis-Britz/cfddns/internal/logging"
)

func newStatusCmd(g *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	var nameservers []string
	cmd := &cobra.Command{
		Use:   "status [domain]",
		Short: "Show the public IP, the provider's record and what public resolvers answer",
		Long: `status compares the host's public IPv4 address with the record held by
Cloudflare and with the A answers of public resolvers. It never changes anything.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(stdout, stderr, g.verbose)
			settings, err := config.Load(g.configPath)
			if err != nil {
				logError(logger, err)
				return reportedError{err}
			}
			name, err := settings.Target(firstArg(args))
			if err != nil {
				logError(logger, err)
				return reportedError{err}
			}

			in := ddns.Inspector{Settings: settings, Nameservers: nameservers}
			st, err := in.Inspect(cmd.Context(), name)
			printStatus(stdout, st)
			if err != nil {
				logError(logger, err)
				return reportedError{err}
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&nameservers, "nameserver", nil, "Resolver to query as host:port (repeatable; default 1.1.1.1:53 and 8.8.8.8:53)")
	return cmd
}

func printStatus(w io.Writer, st ddns.Status) {
	fmt.Fprintf(w, "record:    %s\n", st.Record)
	fmt.Fprintf(w, "public IP: %s\n", orDash(st.PublicIP))
	for _, r := range st.Provider {
		fmt.Fprintf(w, "provider:  %s id=%s ttl=%d proxied=%t modified=%s\n", r.Content, r.ID, r.TTL, r.Proxied, r.ModifiedOn)
	}
	servers := make([]string, 0, len(st.Resolved))
	for ns := range st.Resolved {
		servers = append(servers, ns)
	}
	sort.Strings(servers)
	for _, ns := range servers {
		fmt.Fprintf(w, "resolver:  %s -> %v\n", ns, st.Resolved[ns])
	}
	if st.InSync() {
		fmt.Fprintln(w, "in sync:   yes")
	} else {
		fmt.Fprintln(w, "in sync:   no")
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
