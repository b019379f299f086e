package fingerprint

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/nao1215/ofxpostern/internal/model"
	"github.com/nao1215/ofxpostern/internal/ofx"
)

// Engine resolves a ServerIdentity from probe records.
// An Engine holds no per-scan state and may be shared between goroutines.
type Engine struct {
	tables   Tables
	versions map[string]*regexp.Regexp
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTables replaces the built-in signature tables.
func WithTables(t Tables) Option {
	return func(e *Engine) {
		e.tables = t
	}
}

// NewEngine creates an engine using DefaultTables unless overridden.
// It returns an error if a version pattern does not compile.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		tables: DefaultTables(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.versions = make(map[string]*regexp.Regexp, len(e.tables.VersionPatterns))
	for company, vp := range e.tables.VersionPatterns {
		re, err := regexp.Compile(vp.Regexp)
		if err != nil {
			return nil, fmt.Errorf("version pattern for %s: %w", company, err)
		}
		e.versions[company] = re
	}
	return e, nil
}

// Identify builds the identity of the server at target. profile is the
// decoded profile response; when nil the engine decodes the profile
// probe itself and ignores decode errors. The TLS state is left unknown
// for the caller to set.
func (e *Engine) Identify(target string, probes model.ProbeSet, profile *ofx.Profile) model.ServerIdentity {
	id := model.NewServerIdentity(target, "", "")
	if profile == nil {
		profile = decodeProfile(probes)
	}

	id.HTTPServer = e.httpServer(probes)
	id.WebFramework = e.webFramework(probes)
	id.Software = e.software(target, probes)
	id.ServiceProvider = e.serviceProvider(target, profile)

	e.logger.Debug("fingerprint resolved",
		"target", target,
		"http_server", id.HTTPServer,
		"web_framework", id.WebFramework,
		"software", id.Software.Company+" "+id.Software.Product,
		"service_provider", id.ServiceProvider,
	)
	return id
}

func (e *Engine) httpServer(probes model.ProbeSet) string {
	server := ""
	for _, name := range e.tables.ServerHeaderProbes {
		if rec, ok := probes.Response(name); ok {
			server = e.tables.ServerHeader.merge(server, rec)
		}
	}

	for _, name := range e.tables.TitleProbes {
		rec, ok := probes.Response(name)
		if !ok {
			continue
		}
		title, ok := pageTitle(rec.Body)
		if !ok {
			continue
		}
		for _, rule := range e.tables.TitleRules {
			if !rule.matches(title) {
				continue
			}
			if e.titleAllowed(rule, server) {
				server = rule.value(title)
				e.logger.Debug("server from page title", "probe", string(name), "title", title, "server", server)
			}
			break
		}
	}
	return server
}

func (e *Engine) titleAllowed(rule TitleRule, current string) bool {
	if current == "" {
		return true
	}
	return rule.Gate == GateGeneric && slices.Contains(e.tables.GenericServers, current)
}

func (e *Engine) webFramework(probes model.ProbeSet) string {
	framework := ""
	if rec, ok := probes.Response(model.ProbeOFXProfile); ok {
		framework = e.tables.FrameworkHeader.merge(framework, rec)
		if framework == "ASP.NET" {
			if v, ok := rec.Header("X-AspNet-Version"); ok {
				framework += "/" + v
			}
		}
	}

	if framework == "" && e.tables.WebSphereErrorPrefix != "" {
		if rec, ok := probes.Response(model.ProbeGetRoot); ok &&
			strings.HasPrefix(rec.FirstLine(), e.tables.WebSphereErrorPrefix) {
			framework = "WebSphere"
		}
	}
	return framework
}

func (e *Engine) software(target string, probes model.ProbeSet) model.Software {
	u, err := url.Parse(target)
	if err != nil {
		return model.Software{}
	}
	sw, ok := e.tables.Paths[u.Path]
	if !ok {
		return model.Software{}
	}

	if re, ok := e.versions[sw.Company]; ok {
		if rec, ok := probes.Response(model.ProbeGetOFX); ok {
			if m := re.FindStringSubmatch(rec.Body); len(m) > 1 {
				sw.Version = fmt.Sprintf(e.tables.VersionPatterns[sw.Company].Format, m[1])
			}
		}
	}
	return sw
}

func (e *Engine) serviceProvider(target string, profile *ofx.Profile) string {
	if u, err := url.Parse(target); err == nil {
		if sp, ok := e.tables.Hosts[u.Host]; ok {
			return sp
		}
		if sp, ok := e.tables.Hosts[u.Hostname()]; ok {
			return sp
		}
	}
	if profile != nil {
		if sp, ok := profile.Field(ofx.FieldSPName); ok {
			return sp
		}
	}
	return ""
}

func decodeProfile(probes model.ProbeSet) *ofx.Profile {
	rec, ok := probes.Response(model.ProbeOFXProfile)
	if !ok {
		return nil
	}
	p, err := ofx.Decode(rec.Body)
	if err != nil {
		return nil
	}
	return p
}
