package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/ofxpostern/internal/assess"
	"github.com/nao1215/ofxpostern/internal/database"
	"github.com/nao1215/ofxpostern/internal/fingerprint"
	"github.com/nao1215/ofxpostern/internal/model"
)

// Step names.
const (
	StepTLSCheck      = "tls_check"
	StepProbe         = "probe"
	StepDecodeProfile = "decode_profile"
	StepFingerprint   = "fingerprint"
	StepAssess        = "assess"
	StepSaveReport    = "save_report"
)

// TLSChecker tests the TLS setup of an endpoint.
type TLSChecker interface {
	CheckTLS(ctx context.Context, target string) model.TLSState
}

// Prober sends one canonical probe.
type Prober interface {
	Probe(ctx context.Context, name model.ProbeName) model.ProbeRecord
}

// ProbeCache stores probe responses between runs.
type ProbeCache interface {
	LoadProbe(ctx context.Context, key database.CacheKey, name model.ProbeName) (model.ProbeRecord, bool, error)
	SaveProbe(ctx context.Context, key database.CacheKey, rec model.ProbeRecord) error
}

// ReportStore persists finished reports.
type ReportStore interface {
	SaveScanReport(ctx context.Context, report *model.ScanReport) (int64, error)
}

// TLSCheckStep records whether the endpoint's certificate verifies.
type TLSCheckStep struct {
	checker TLSChecker
	logger  *slog.Logger
}

// NewTLSCheckStep creates a TLSCheckStep.
func NewTLSCheckStep(checker TLSChecker, logger *slog.Logger) *TLSCheckStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &TLSCheckStep{checker: checker, logger: logger}
}

// Name returns the step name.
func (s *TLSCheckStep) Name() string {
	return StepTLSCheck
}

// Do executes the TLS check.
func (s *TLSCheckStep) Do(ctx context.Context, report *model.ScanReport) error {
	report.Identity.TLS = s.checker.CheckTLS(ctx, report.Target)
	s.logger.Debug("tls checked", "target", report.Target, "tls", report.Identity.TLS)
	return nil
}

// ProbeStep sends the five canonical probes. With a cache, stored
// responses are used instead of the network and new responses are saved.
type ProbeStep struct {
	prober Prober
	cache  ProbeCache
	key    database.CacheKey
	logger *slog.Logger
}

// ProbeStepOption configures a ProbeStep.
type ProbeStepOption func(*ProbeStep)

// WithProbeCache enables the response cache under key.
func WithProbeCache(cache ProbeCache, key database.CacheKey) ProbeStepOption {
	return func(s *ProbeStep) {
		s.cache = cache
		s.key = key
	}
}

// WithProbeLogger sets the logger of the step.
func WithProbeLogger(logger *slog.Logger) ProbeStepOption {
	return func(s *ProbeStep) {
		s.logger = logger
	}
}

// NewProbeStep creates a ProbeStep sending through prober.
func NewProbeStep(prober Prober, opts ...ProbeStepOption) *ProbeStep {
	s := &ProbeStep{
		prober: prober,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ProbeStep) Name() string {
	return StepProbe
}

// Do executes the probes. It returns ctx.Err() when cancelled between
// probes, keeping the records collected so far.
func (s *ProbeStep) Do(ctx context.Context, report *model.ScanReport) error {
	hits := 0
	names := model.ProbeNames()
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		if rec, ok := s.load(ctx, name); ok {
			hits++
			report.AddProbe(rec)
			continue
		}

		rec := s.prober.Probe(ctx, name)
		report.AddProbe(rec)
		if s.cache != nil {
			if err := s.cache.SaveProbe(ctx, s.key, rec); err != nil {
				s.logger.Warn("failed to cache response", "probe", name, "error", err)
			}
		}
	}
	report.FromCache = hits == len(names)
	return nil
}

func (s *ProbeStep) load(ctx context.Context, name model.ProbeName) (model.ProbeRecord, bool) {
	if s.cache == nil {
		return model.ProbeRecord{}, false
	}
	rec, ok, err := s.cache.LoadProbe(ctx, s.key, name)
	if err != nil {
		s.logger.Warn("failed to read cached response", "probe", name, "error", err)
		return model.ProbeRecord{}, false
	}
	if ok {
		s.logger.Debug("using cached response", "probe", name)
	}
	return rec, ok
}

// DecodeProfileStep decodes the profile response into report.Profile.
// A response that cannot be decoded is recorded in DecodeError and does
// not stop the scan.
type DecodeProfileStep struct {
	logger *slog.Logger
}

// NewDecodeProfileStep creates a DecodeProfileStep.
func NewDecodeProfileStep(logger *slog.Logger) *DecodeProfileStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &DecodeProfileStep{logger: logger}
}

// Name returns the step name.
func (s *DecodeProfileStep) Name() string {
	return StepDecodeProfile
}

// Do executes the decoding.
func (s *DecodeProfileStep) Do(_ context.Context, report *model.ScanReport) error {
	profile, err := assess.DecodeProfile(report.Probes)
	if err != nil {
		s.logger.Debug("profile not decoded", "target", report.Target, "error", err)
		report.Profile = nil
		report.DecodeError = err.Error()
		return nil
	}
	report.Profile = profile
	report.DecodeError = ""
	return nil
}

// FingerprintStep fills in the server identity.
type FingerprintStep struct {
	engine *fingerprint.Engine
}

// NewFingerprintStep creates a FingerprintStep.
func NewFingerprintStep(engine *fingerprint.Engine) *FingerprintStep {
	return &FingerprintStep{engine: engine}
}

// Name returns the step name.
func (s *FingerprintStep) Name() string {
	return StepFingerprint
}

// Do executes the fingerprinting. The TLS state found earlier is kept.
func (s *FingerprintStep) Do(_ context.Context, report *model.ScanReport) error {
	id := s.engine.Identify(report.Target, report.Probes, report.Profile)
	id.FID = report.FID
	id.Org = report.Org
	id.TLS = report.Identity.TLS
	report.Identity = id
	return nil
}

// AssessStep runs the security checks.
type AssessStep struct {
	engine *assess.Engine
}

// NewAssessStep creates an AssessStep.
func NewAssessStep(engine *assess.Engine) *AssessStep {
	return &AssessStep{engine: engine}
}

// Name returns the step name.
func (s *AssessStep) Name() string {
	return StepAssess
}

// Do executes the checks.
func (s *AssessStep) Do(_ context.Context, report *model.ScanReport) error {
	report.Ledger = s.engine.Run(report.Identity, report.Probes)
	return nil
}

// SaveReportStep stores the report for the history command. A storage
// failure is logged and does not fail the scan.
type SaveReportStep struct {
	store  ReportStore
	logger *slog.Logger
}

// NewSaveReportStep creates a SaveReportStep.
func NewSaveReportStep(store ReportStore, logger *slog.Logger) *SaveReportStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveReportStep{store: store, logger: logger}
}

// Name returns the step name.
func (s *SaveReportStep) Name() string {
	return StepSaveReport
}

// Do executes the save.
func (s *SaveReportStep) Do(ctx context.Context, report *model.ScanReport) error {
	id, err := s.store.SaveScanReport(ctx, report)
	if err != nil {
		s.logger.Warn("failed to save scan report", "target", report.Target, "error", err)
		return nil
	}
	s.logger.Debug("scan report saved", "target", report.Target, "id", id)
	return nil
}
