package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	ddns "github.com/Travis-Britz/cfddns"
	"github.com/Travis-Britz/cfddns/internal/config"
	"github.com/Travis-Britz/cfddns/internal/logging"
)

func newInitCmd(g *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	var noVerify bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively write a config file",
		Long: `init asks for the zone, record and credentials and writes them to a new
dotenv config file with permissions 0600. An existing file is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(stdout, stderr, g.verbose)
			path := g.configPath
			if path == "" {
				var err error
				if path, err = config.DefaultPath(); err != nil {
					logError(logger, err)
					return reportedError{err}
				}
			}
			values, settings, err := prompt(cmd.InOrStdin(), stdout)
			if err != nil {
				logError(logger, err)
				return reportedError{err}
			}
			if !noVerify {
				logger.Info("verifying credentials...")
				if _, err := ddns.VerifyCredentials(cmd.Context(), settings, nil); err != nil {
					logError(logger, err)
					return reportedError{err}
				}
				logger.Info("credentials verified successfully")
			}
			if err := config.WriteEnvFile(path, values); err != nil {
				logError(logger, err)
				return reportedError{err}
			}
			logger.Infof("config written to \"%s\"", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Write the file without checking the credentials first")
	return cmd
}

// prompt collects the settings init writes. The key is read without echo when in is a terminal.
func prompt(in io.Reader, out io.Writer) (map[string]string, ddns.Settings, error) {
	r := bufio.NewReader(in)
	ask := func(question string) (string, error) {
		fmt.Fprint(out, question)
		line, err := r.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("error reading from stdin: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	var s ddns.Settings
	var err error
	if s.ZoneID, err = ask("Zone ID: "); err != nil {
		return nil, s, err
	}
	if s.RecordName, err = ask("Record name: "); err != nil {
		return nil, s, err
	}
	method, err := ask("Auth method [token/global] (token): ")
	if err != nil {
		return nil, s, err
	}
	if method == "" {
		method = string(ddns.AuthToken)
	}
	s.AuthMethod = ddns.AuthMethod(strings.ToLower(method))
	if s.AuthMethod == ddns.AuthGlobal {
		if s.AuthEmail, err = ask("Account email: "); err != nil {
			return nil, s, err
		}
	}

	fmt.Fprint(out, "Cloudflare API key: ")
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytekey, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return nil, s, fmt.Errorf("error reading from stdin: %w", err)
		}
		s.AuthKey = strings.TrimSpace(string(bytekey))
	} else if s.AuthKey, err = ask(""); err != nil {
		return nil, s, err
	}

	s.TTL = ddns.DefaultTTL
	s.HTTPTimeout = ddns.DefaultHTTPTimeout
	if err := s.Validate(); err != nil {
		return nil, s, err
	}
	if _, err := s.Target(""); err != nil {
		return nil, s, err
	}

	values := map[string]string{
		config.AuthMethod.Env: string(s.AuthMethod),
		config.AuthKey.Env:    s.AuthKey,
		config.ZoneID.Env:     s.ZoneID,
		config.RecordName.Env: s.RecordName,
	}
	if s.AuthEmail != "" {
		values[config.AuthEmail.Env] = s.AuthEmail
	}
	return values, s, nil
}
