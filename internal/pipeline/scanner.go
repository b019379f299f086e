package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/ofxpostern/internal/assess"
	"github.com/nao1215/ofxpostern/internal/config"
	"github.com/nao1215/ofxpostern/internal/database"
	"github.com/nao1215/ofxpostern/internal/fingerprint"
	"github.com/nao1215/ofxpostern/internal/model"
	"github.com/nao1215/ofxpostern/internal/ofx"
	"github.com/nao1215/ofxpostern/internal/transport"
)

// Store is the persistence a Scanner can use: the probe cache and the
// scan history.
type Store interface {
	ProbeCache
	ReportStore
	LoadProbes(ctx context.Context, key database.CacheKey) (model.ProbeSet, error)
}

// Scanner builds the pipeline of each target from the configuration.
// Its Build method is a Factory.
type Scanner struct {
	cfg         *config.Config
	proxyURL    string
	store       Store
	fingerprint *fingerprint.Engine
	assess      *assess.Engine
	logger      *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithStore enables the response cache (when cfg.UseCache is set) and
// saving of finished reports.
func WithStore(store Store) ScannerOption {
	return func(s *Scanner) {
		s.store = store
	}
}

// WithProxyURL overrides cfg.ProxyURL, for example with the SOCKS
// address of an embedded Tor daemon.
func WithProxyURL(proxyURL string) ScannerOption {
	return func(s *Scanner) {
		s.proxyURL = proxyURL
	}
}

// WithScannerLogger sets the logger passed to every component.
func WithScannerLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// NewScanner creates a Scanner for cfg.
func NewScanner(cfg *config.Config, opts ...ScannerOption) (*Scanner, error) {
	s := &Scanner{
		cfg:      cfg,
		proxyURL: cfg.ProxyURL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	fp, err := fingerprint.NewEngine(fingerprint.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create fingerprint engine: %w", err)
	}
	s.fingerprint = fp
	s.assess = assess.NewEngine(assess.WithLogger(s.logger))
	return s, nil
}

// Build returns the pipeline and report for target. An unsupported OFX
// version or an unusable proxy is returned as an error together with the
// report it belongs to, before anything is sent.
func (s *Scanner) Build(ctx context.Context, target string) (*Pipeline, *model.ScanReport, error) {
	tc := s.cfg.Resolve(target)
	report := model.NewScanReport(target, tc.FID, tc.Org, tc.Version)

	builder, err := ofx.NewRequestBuilder(tc.Version, tc.FID, tc.Org)
	if err != nil {
		return nil, report, err
	}

	client, err := transport.NewClient(
		transport.WithTLSVerify(tc.VerifyTLS()),
		transport.WithProxy(s.proxyURL),
		transport.WithTimeouts(s.cfg.ConnectTimeout, s.cfg.ReadTimeout),
		transport.WithUserAgent(s.cfg.UserAgent),
		transport.WithMaxBodySize(s.cfg.MaxBodySize),
		transport.WithHeaders(tc.Headers),
		transport.WithLogger(s.logger),
	)
	if err != nil {
		return nil, report, err
	}
	session, err := client.NewSession(target, builder)
	if err != nil {
		return nil, report, err
	}

	key := database.CacheKey{Target: target, FID: tc.FID, Org: tc.Org, Version: tc.Version}
	useCache := s.cfg.UseCache && s.store != nil

	p := New(WithLogger(s.logger))

	// A fully cached target is analysed without any network traffic.
	if !useCache || !s.fullyCached(ctx, key) {
		p.AddStep(NewTLSCheckStep(client, s.logger))
	}

	probeOpts := []ProbeStepOption{WithProbeLogger(s.logger)}
	if useCache {
		probeOpts = append(probeOpts, WithProbeCache(s.store, key))
	}
	p.AddSteps(
		NewProbeStep(session, probeOpts...),
		NewDecodeProfileStep(s.logger),
		NewFingerprintStep(s.fingerprint),
		NewAssessStep(s.assess),
	)
	if s.store != nil {
		p.AddStep(NewSaveReportStep(s.store, s.logger))
	}
	return p, report, nil
}

func (s *Scanner) fullyCached(ctx context.Context, key database.CacheKey) bool {
	set, err := s.store.LoadProbes(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read response cache", "target", key.Target, "error", err)
		return false
	}
	return len(set) == len(model.ProbeNames())
}
