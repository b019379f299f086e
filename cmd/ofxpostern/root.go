package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for ofxpostern.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ofxpostern",
		Short: "Fingerprint and assess OFX servers",
		Long: `ofxpostern probes Open Financial Exchange (OFX) servers used by personal
finance software to download transactions from banks and brokerages.

It sends a handful of anonymous requests, identifies the server software,
reports the capabilities disclosed in the server profile, and checks for
common security problems such as weak password policies, missing TLS and
information disclosure.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewRequestCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
