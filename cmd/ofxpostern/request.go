package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/ofxpostern/internal/config"
	ofxlog "github.com/nao1215/ofxpostern/internal/log"
	"github.com/nao1215/ofxpostern/internal/model"
	"github.com/nao1215/ofxpostern/internal/ofx"
	"github.com/nao1215/ofxpostern/internal/transport"
)

// Request types accepted by --type.
const (
	requestProfile  = "profile"
	requestAcctInfo = "acctinfo"
	requestEmpty    = "empty"
)

// NewRequestCmd creates the request command.
func NewRequestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request [ofx-url]",
		Short: "Print or send a single OFX request",
		Long: `Request prints the OFX envelope ofxpostern would send, which helps when
debugging a server that rejects the scan requests.

With --send the request is posted to the server and the raw response is
printed. Requests never contain credentials.

Request types:
  profile   anonymous profile request (default, used by scan)
  acctinfo  anonymous account information request
  empty     header and an empty OFX element (used by scan)

Examples:
  # Print an OFX 1.0.2 profile request
  ofxpostern request https://ofx.example.com/ofx/process.ofx

  # Send an OFX 2.2.0 profile request naming the institution
  ofxpostern request --send --fid 1234 --org ExampleBank --ofx-version 220 https://ofx.example.com/ofx`,
		Args: cobra.ExactArgs(1),
		RunE: runRequestCmd,
	}

	cmd.Flags().String("fid", "", "Financial institution ID sent in the sign-on request")
	cmd.Flags().String("org", "", "Organization name sent in the sign-on request")
	cmd.Flags().IntP("ofx-version", "V", config.DefaultOFXVersion,
		"OFX protocol version of the request")
	cmd.Flags().String("type", requestProfile,
		"Request type: profile, acctinfo or empty")
	cmd.Flags().BoolP("send", "s", false,
		"Send the request and print the response")
	cmd.Flags().BoolP("no-tls-verify", "k", false,
		"Do not verify server certificates")
	cmd.Flags().StringP("proxy", "x", "",
		"Send the request through a proxy (http://, https:// or socks5:// URL)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultReadTimeout,
		"Time to wait for the response")

	return cmd
}

func runRequestCmd(cmd *cobra.Command, args []string) error {
	target := args[0]
	if err := config.ValidateTarget(target); err != nil {
		return err
	}

	flags := cmd.Flags()
	fid, err := flags.GetString("fid")
	if err != nil {
		return err
	}
	org, err := flags.GetString("org")
	if err != nil {
		return err
	}
	ver, err := flags.GetInt("ofx-version")
	if err != nil {
		return err
	}
	kind, err := flags.GetString("type")
	if err != nil {
		return err
	}

	builder, err := ofx.NewRequestBuilder(ver, fid, org)
	if err != nil {
		return err
	}
	body, err := buildRequest(builder, kind)
	if err != nil {
		return err
	}

	send, err := flags.GetBool("send")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !send {
		_, err := io.WriteString(out, body)
		return err
	}

	noVerify, err := flags.GetBool("no-tls-verify")
	if err != nil {
		return err
	}
	proxyURL, err := flags.GetString("proxy")
	if err != nil {
		return err
	}
	timeout, err := flags.GetDuration("timeout")
	if err != nil {
		return err
	}

	client, err := transport.NewClient(
		transport.WithTLSVerify(!noVerify),
		transport.WithProxy(proxyURL),
		transport.WithTimeouts(config.DefaultConnectTimeout, timeout),
		transport.WithLogger(ofxlog.NewSecureLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultConnectTimeout+timeout)
	defer cancel()

	start := time.Now()
	rec, err := client.Do(ctx, http.MethodPost, target, body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	writeResponse(out, rec, time.Since(start))
	return nil
}

// buildRequest returns the envelope of the requested kind.
func buildRequest(builder *ofx.RequestBuilder, kind string) (string, error) {
	switch kind {
	case requestProfile:
		return builder.ProfileRequest(), nil
	case requestAcctInfo:
		return builder.AccountInfoRequest(), nil
	case requestEmpty:
		return builder.EmptyEnvelope(), nil
	default:
		return "", fmt.Errorf("unknown request type %q (want %s, %s or %s)",
			kind, requestProfile, requestAcctInfo, requestEmpty)
	}
}

// writeResponse prints the status line, the headers sorted by name and
// the body.
func writeResponse(out io.Writer, rec model.ProbeRecord, elapsed time.Duration) {
	fmt.Fprintf(out, "HTTP %d %s (%s)\n", rec.StatusCode, http.StatusText(rec.StatusCode),
		elapsed.Round(time.Millisecond))
	for _, name := range slices.Sorted(maps.Keys(rec.Headers)) {
		fmt.Fprintf(out, "%s: %s\n", name, rec.Headers[name])
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, rec.Body)
}
