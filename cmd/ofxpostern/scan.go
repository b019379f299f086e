package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/ofxpostern/internal/config"
	"github.com/nao1215/ofxpostern/internal/database"
	ofxlog "github.com/nao1215/ofxpostern/internal/log"
	"github.com/nao1215/ofxpostern/internal/model"
	"github.com/nao1215/ofxpostern/internal/pipeline"
	"github.com/nao1215/ofxpostern/internal/report"
	"github.com/nao1215/ofxpostern/internal/transport"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [ofx-url]",
		Short: "Fingerprint and assess OFX servers",
		Long: `Scan sends five anonymous requests to each OFX server and reports:
- The financial institution and server details from the OFX profile
- The capabilities the server supports (banking, investments, taxes, ...)
- The web server, framework and OFX software vendor
- Security findings (TLS, password policy, information disclosure, ...)

No credentials are ever sent. Some servers only answer when the request
names the institution; pass --fid and --org or use a configuration file.

Examples:
  # Scan a single server
  ofxpostern scan https://ofx.example.com/ofx/process.ofx

  # Name the institution and use OFX 2.2.0
  ofxpostern scan --fid 1234 --org ExampleBank --ofx-version 220 https://ofx.example.com/ofx

  # Scan several servers, three at a time
  ofxpostern scan --batch 3 https://ofx.a.example https://ofx.b.example https://ofx.c.example

  # Replay stored responses instead of contacting the server again
  ofxpostern scan --cache https://ofx.example.com/ofx/process.ofx

  # Route requests through Tor
  ofxpostern scan --tor https://ofx.example.com/ofx/process.ofx

  # Write a Markdown report
  ofxpostern scan --markdown -o report.md https://ofx.example.com/ofx/process.ofx`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Request flags
	cmd.Flags().String("fid", "", "Financial institution ID sent in the sign-on request")
	cmd.Flags().String("org", "", "Organization name sent in the sign-on request")
	cmd.Flags().IntP("ofx-version", "V", config.DefaultOFXVersion,
		"OFX protocol version of the requests (e.g. 102, 103, 211, 220)")
	cmd.Flags().BoolP("no-tls-verify", "k", false,
		"Do not verify server certificates")

	// Connection flags
	cmd.Flags().StringP("proxy", "x", "",
		"Send requests through a proxy (http://, https:// or socks5:// URL)")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and send requests through it")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")
	cmd.Flags().DurationP("timeout", "t", config.DefaultReadTimeout,
		"Time to wait for each response")
	cmd.Flags().Duration("connect-timeout", config.DefaultConnectTimeout,
		"Time to wait for each connection to be established")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent scans")

	// Persistence flags
	cmd.Flags().Bool("cache", false,
		"Reuse stored responses of earlier scans instead of contacting the server")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the response cache and scan history")
	cmd.Flags().Bool("no-save", false,
		"Do not store responses and reports in the database")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .ofxpostern in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := ofxlog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runScan(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.FID, err = flags.GetString("fid"); err != nil {
		return nil, err
	}
	if cfg.Org, err = flags.GetString("org"); err != nil {
		return nil, err
	}
	if cfg.OFXVersion, err = flags.GetInt("ofx-version"); err != nil {
		return nil, err
	}
	noVerify, err := flags.GetBool("no-tls-verify")
	if err != nil {
		return nil, err
	}
	cfg.TLSVerify = !noVerify

	if cfg.ProxyURL, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.ConnectTimeout, err = flags.GetDuration("connect-timeout"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}

	if cfg.UseCache, err = flags.GetBool("cache"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	if noSave {
		if cfg.UseCache {
			return nil, errors.New("--cache cannot be used with --no-save")
		}
		cfg.DBDir = ""
	}

	// A missing file is only an error when --config was given.
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if err := cfg.LoadTargetConfigs(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args
	return cfg, nil
}

// runScan scans every target in cfg and writes one report per target to
// stdout or the report file. Progress goes to stderr.
func runScan(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, logger *slog.Logger) error {
	logger.Info("starting scan",
		"targets", cfg.Targets,
		"batchSize", cfg.BatchSize,
		"useCache", cfg.UseCache,
		"useTor", cfg.UseTor,
	)

	opts := []pipeline.ScannerOption{pipeline.WithScannerLogger(logger)}

	if cfg.DBDir != "" {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
		opts = append(opts, pipeline.WithStore(db))
	}

	switch {
	case cfg.UseTor:
		embedded, proxyURL, err := startEmbeddedTor(ctx, cfg, stderr, logger)
		if err != nil {
			return err
		}
		defer func() {
			logger.Info("stopping embedded Tor daemon...")
			if err := embedded.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}()
		opts = append(opts, pipeline.WithProxyURL(proxyURL))
	case cfg.ProxyURL != "":
		if err := checkProxy(ctx, cfg.ProxyURL); err != nil {
			return err
		}
	}

	scanner, err := pipeline.NewScanner(cfg, opts...)
	if err != nil {
		return err
	}

	output, closeOutput, err := openOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer closeOutput()
	writer := newReportWriter(cfg, output)

	bp := pipeline.NewBatchProcessor(
		scanner.Build,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	startTime := time.Now()
	var (
		mu     sync.Mutex
		failed int
	)
	err = bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(r *model.ScanReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Fprintf(stderr, "[%d/%d] %s: %s\n", index+1, len(cfg.Targets), r.Target, scanOutcome(r))
		if r.Error != nil && !r.TimedOut {
			failed++
		}
		if _, err := writer.Write(r); err != nil {
			logger.Error("failed to write report", "target", r.Target, "error", err)
		}
	})
	fmt.Fprintf(stderr, "Scan completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scans failed", failed, len(cfg.Targets))
	}
	return nil
}

// scanOutcome summarizes a finished scan in one line.
func scanOutcome(r *model.ScanReport) string {
	switch {
	case r.TimedOut:
		return "cancelled"
	case r.Error != nil:
		return "failed: " + r.Error.Error()
	}
	s := fmt.Sprintf("%d passed, %d failed", r.Ledger.PassCount(), r.Ledger.FailCount())
	if r.FromCache {
		s += " (cached)"
	}
	return s
}

// newReportWriter picks the report format requested in cfg.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output,
			report.WithPrettyPrint(),
			report.WithToolVersion(getVersion()),
		)
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// openOutput returns the report file, or stdout when path is empty.
// Reports name internal hosts and software versions, so the file is
// only readable by the owner.
func openOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil //nolint:errcheck // Close after writes
}

// checkProxy verifies a SOCKS proxy before any target is scanned. HTTP
// proxies are not checked.
func checkProxy(ctx context.Context, proxyURL string) error {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return fmt.Errorf("%w: %w", transport.ErrInvalidProxy, err)
	}
	if u.Scheme != "socks5" && u.Scheme != "socks5h" {
		return nil
	}
	if status := transport.CheckSOCKSProxy(ctx, u.Host); status != transport.ProxyStatusOK {
		return fmt.Errorf("proxy check failed: %w (make sure the proxy is running at %s)",
			status.Error(), u.Host)
	}
	return nil
}

// startEmbeddedTor starts a Tor daemon and returns it with the proxy URL
// requests should use.
func startEmbeddedTor(ctx context.Context, cfg *config.Config, stderr io.Writer, logger *slog.Logger) (*transport.EmbeddedTor, string, error) {
	fmt.Fprintln(stderr, "Starting embedded Tor daemon...")
	fmt.Fprint(stderr, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	embedded := transport.NewEmbeddedTor(
		transport.WithStartupTimeout(cfg.TorStartupTimeout),
	)
	if err := embedded.Start(ctx); err != nil {
		return nil, "", fmt.Errorf("failed to start embedded Tor: %w", err)
	}
	logger.Info("embedded Tor daemon started",
		"socksAddr", embedded.SocksAddr(),
		"controlAddr", embedded.ControlAddr(),
	)

	if status := transport.CheckSOCKSProxy(ctx, embedded.SocksAddr()); status != transport.ProxyStatusOK {
		_ = embedded.Stop() //nolint:errcheck // Best effort cleanup
		return nil, "", fmt.Errorf("embedded Tor proxy check failed: %w", status.Error())
	}

	proxyURL, err := embedded.ProxyURL()
	if err != nil {
		_ = embedded.Stop() //nolint:errcheck // Best effort cleanup
		return nil, "", err
	}
	fmt.Fprintf(stderr, "Embedded Tor daemon started, SOCKS proxy: %s\n\n", embedded.SocksAddr())
	return embedded, proxyURL, nil
}
