// tokengate-issue mints a bearer token signed with the configured secret
// and prints it to stdout.
//
//	TOKENGATE_SECRET=... tokengate-issue --subject medschool-cli --hours 24
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/jonwraymond/tokengate/config"
	"github.com/jonwraymond/tokengate/token"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type issued struct {
	Token  string       `json:"token"`
	Claims token.Claims `json:"claims"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		configPath string
		subject    string
		scope      string
		hours      int
		noExpiry   bool
		asJSON     bool
	)

	flagSet := pflag.NewFlagSet("tokengate-issue", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "path to YAML config (default: $"+config.EnvConfig+")")
	flagSet.StringVar(&subject, "subject", "", "token subject (default from config: medschool-cli)")
	flagSet.StringVar(&scope, "scope", "", "space-separated scopes (default from config: fhir/*.*)")
	flagSet.IntVar(&hours, "hours", 0, "lifetime in hours (default from config: 24)")
	flagSet.BoolVar(&noExpiry, "no-expiry", false, "issue a token without exp")
	flagSet.BoolVar(&asJSON, "json", false, "print the token and its claims as JSON")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flagSet.Args())
	}

	hoursSet := flagSet.Changed("hours")
	if hoursSet && noExpiry {
		return errors.New("--hours and --no-expiry are mutually exclusive")
	}
	if hoursSet && hours <= 0 {
		return fmt.Errorf("--hours must be positive, got %d", hours)
	}

	cfg, secret, err := config.LoadIssuer(ctx, configPath)
	if err != nil {
		return err
	}
	if !flagSet.Changed("subject") {
		subject = cfg.Issue.Subject
	}
	if !flagSet.Changed("scope") {
		scope = cfg.Issue.Scope
	}
	if !hoursSet {
		hours = cfg.Issue.Hours
	}

	iss, err := token.NewIssuer(secret)
	if err != nil {
		return err
	}
	var opts []token.ClaimOption
	if noExpiry {
		fmt.Fprintln(stderr, "warning: issuing a token without expiry; it stays valid until the secret is rotated")
	} else {
		opts = append(opts, token.WithTTL(time.Duration(hours)*time.Hour))
	}

	tok, err := iss.Issue(subject, scope, opts...)
	if err != nil {
		return err
	}

	if !asJSON {
		_, err = fmt.Fprintln(stdout, tok)
		return err
	}
	_, claims, err := token.ParseUnverified(tok.String())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(issued{Token: tok.String(), Claims: *claims})
}
