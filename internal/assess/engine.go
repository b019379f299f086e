package assess

import (
	"log/slog"

	"github.com/nao1215/ofxpostern/internal/model"
	"github.com/nao1215/ofxpostern/internal/ofx"
)

// ProfileUnavailableNote is added to the ledger when checks were skipped
// because the profile response could not be decoded.
const ProfileUnavailableNote = "Cannot read OFX PROFILE, some tests will not be run."

// Check is a single assessment.
type Check interface {
	// Title is the name the result is recorded under.
	Title() string

	// RequiresProfile reports whether the check needs Input.Profile.
	RequiresProfile() bool

	// Run evaluates the check. It must not modify in.
	Run(in *Input) model.TestResult
}

// Input is everything a check may look at.
type Input struct {
	Identity model.ServerIdentity
	Probes   model.ProbeSet

	// Profile is nil when the profile probe could not be decoded.
	Profile *ofx.Profile
}

// Engine runs the checks in order and collects their results.
// It holds no per-run state.
type Engine struct {
	checks []Check
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithChecks replaces the default check sequence.
func WithChecks(checks ...Check) Option {
	return func(e *Engine) {
		e.checks = checks
	}
}

// DefaultChecks returns the built-in checks in the order they run.
func DefaultChecks() []Check {
	return []Check{
		NewTLSCheck(),
		NewContentTypeCheck(),
		NewServerDisclosureCheck(),
		NewMFACheck(),
		NewPasswordPolicyCheck(),
		NewUsernameCheck(),
		NewNullValueCheck(),
		NewServerErrorCheck(),
		NewInternalIPCheck(),
	}
}

// NewEngine creates an engine with the default checks.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		checks: DefaultChecks(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run decodes the profile probe and evaluates every check.
func (e *Engine) Run(identity model.ServerIdentity, probes model.ProbeSet) model.Ledger {
	in := &Input{Identity: identity, Probes: probes}
	var decodeErr error
	decoded := false

	ledger := model.Ledger{Results: make([]model.TestResult, 0, len(e.checks))}
	for _, check := range e.checks {
		if check.RequiresProfile() {
			if !decoded {
				in.Profile, decodeErr = DecodeProfile(probes)
				decoded = true
				if decodeErr != nil {
					e.logger.Debug("profile unavailable", "error", decodeErr)
					ledger.Note(ProfileUnavailableNote)
				}
			}
			if in.Profile == nil {
				e.logger.Debug("check skipped", "check", check.Title())
				continue
			}
		}

		result := check.Run(in)
		e.logger.Debug("check completed",
			"check", result.Title,
			"status", result.Status(),
			"messages", len(result.Messages),
		)
		ledger.Add(result)
	}
	return ledger
}

// DecodeProfile decodes the response to the profile probe.
func DecodeProfile(probes model.ProbeSet) (*ofx.Profile, error) {
	rec, ok := probes.Response(model.ProbeOFXProfile)
	if !ok {
		return nil, ErrNoProfileResponse
	}
	return ofx.Decode(rec.Body)
}
