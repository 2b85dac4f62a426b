package main

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newSignCommand(ctx *commandContext) *cobra.Command {
	var method string
	var at string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "sign <key>",
		Short: "Print a SigV4-signed request for an object in the media bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			signer, err := newSigner(cfg)
			if err != nil {
				return err
			}

			timestamp := time.Now()
			if at != "" {
				timestamp, err = time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}
			}

			signed, err := signer.SignMethod(strings.ToUpper(method), args[0], credentials(cfg), timestamp)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", signed.Method, signed.URL)
			names := make([]string, 0, len(signed.Headers))
			for name := range signed.Headers {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "%s: %s\n", name, signed.Headers[name])
			}
			if verbose {
				fmt.Fprintf(out, "\ncanonical request:\n%s\n\nstring to sign:\n%s\n", signed.CanonicalRequest, signed.StringToSign)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&method, "method", http.MethodGet, "HTTP method to sign")
	cmd.Flags().StringVar(&at, "at", "", "Signing time (RFC3339), defaults to now")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also print the canonical request and string to sign")
	return cmd
}
