package fingerprint

import (
	"strings"

	"github.com/nao1215/ofxpostern/internal/model"
)

// errorReportSuffixLen is the length of the " - Error report" suffix that
// servlet containers append to their error page titles.
const errorReportSuffixLen = 15

// TitleGate decides whether a title rule may write the HTTP server field.
type TitleGate int

const (
	// GateUnset allows the rule only while the field is empty.
	GateUnset TitleGate = iota
	// GateGeneric also allows replacing the generic values in
	// Tables.GenericServers.
	GateGeneric
)

// TitleRule maps an HTML <title> to an HTTP server value.
type TitleRule struct {
	// Exact matches the whole title; otherwise Prefix is used.
	Exact  string
	Prefix string

	// Server is the value to record. When empty the title itself is
	// recorded with the error report suffix removed.
	Server string

	Gate TitleGate
}

func (r TitleRule) matches(title string) bool {
	if r.Exact != "" {
		return title == r.Exact
	}
	return r.Prefix != "" && strings.HasPrefix(title, r.Prefix)
}

func (r TitleRule) value(title string) string {
	if r.Server != "" {
		return r.Server
	}
	if len(title) > errorReportSuffixLen {
		return title[:len(title)-errorReportSuffixLen]
	}
	return title
}

// Tables holds the signature data the engine resolves against.
type Tables struct {
	// ServerHeader feeds the HTTP server field.
	ServerHeader HeaderRule

	// ServerHeaderProbes are read for ServerHeader, in order.
	ServerHeaderProbes []model.ProbeName

	// TitleRules are tried in order; the first matching rule decides.
	TitleRules []TitleRule

	// TitleProbes are the probes whose bodies are searched for a title.
	TitleProbes []model.ProbeName

	// GenericServers are values that GateGeneric title rules may replace.
	GenericServers []string

	// FrameworkHeader feeds the web framework field from the profile probe.
	FrameworkHeader HeaderRule

	// WebSphereErrorPrefix marks a WebSphere "file not found" page.
	WebSphereErrorPrefix string

	// Paths maps endpoint URL paths to server software.
	Paths map[string]model.Software

	// VersionPatterns extracts a software version for a company from the
	// body of the GET OFX Path probe. The first group is the version.
	VersionPatterns map[string]VersionPattern

	// Hosts maps endpoint hosts to hosting service providers.
	Hosts map[string]string
}

// VersionPattern extracts a version string from a page body.
type VersionPattern struct {
	Regexp string
	Format string
}

// DefaultTables returns the built-in signatures.
func DefaultTables() Tables {
	return Tables{
		ServerHeader: HeaderRule{
			Header:      "Server",
			Exclude:     []string{"", "not_available", "Unspecified"},
			NoOverwrite: []string{"Apache-Coyote/1.1", "Apache", "USAA-Service", "USAA-Integrity"},
		},
		ServerHeaderProbes: []model.ProbeName{model.ProbeOFXProfile, model.ProbeOFXEmpty, model.ProbePostOFX},
		TitleRules: []TitleRule{
			{Exact: "IIS Windows Server", Server: "Microsoft-IIS/8.5", Gate: GateUnset},
			{Exact: "APACHE OFX APP", Server: "Apache/2.2.23", Gate: GateUnset},
			{Exact: "IBM HTTP Server 8.5", Server: "IBM HTTP Server/8.5", Gate: GateUnset},
			{Prefix: "Apache Tomcat/", Gate: GateGeneric},
			{Prefix: "VMware vFabric tc Runtime", Gate: GateUnset},
			{Prefix: "JBoss", Gate: GateGeneric},
			{Prefix: "JBWEB", Server: "JBoss", Gate: GateGeneric},
		},
		TitleProbes:    []model.ProbeName{model.ProbePostOFX, model.ProbeGetOFX, model.ProbeGetRoot},
		GenericServers: []string{"", "Apache", "Apache-Coyote/1.1"},
		FrameworkHeader: HeaderRule{
			Header:  "X-Powered-By",
			Exclude: []string{"DI - An Intuit Company"},
		},
		WebSphereErrorPrefix: "Error 404: SRVE0190E:",
		Paths: map[string]model.Software{
			"/cmr/cmr.ofx":           {Company: "Enterprise Engineering", Product: "EnterpriseFTX"},
			"/eftxweb/access.ofx":    {Company: "Enterprise Engineering", Product: "EnterpriseFTX"},
			"/ofx/servlet/Teller":    {Company: "Finastra", Product: "Cavion"},
			"/ofx/OFXServlet":        {Company: "FIS", Product: "Metavante"},
			"/piles/ofx.pile/":       {Company: "First Data Corporation", Product: "FundsXPress"},
			"/scripts/serverext.dll": {Company: "Fiserv", Product: "Corillian"},
			"/ofx/process.ofx":       {Company: "Fiserv", Product: "Corillian"},
			"/OROFX16Listener":       {Company: "Fiserv"},
			"/scripts/isaofx.dll":    {Company: "Fiserv"},
			"/ofx/ofx.dll":           {Company: "ULTRADATA Corporation"},
			"/ofxserver/ofxsrvr.dll": {Company: "Access Softek", Product: "OFXServer"},
			"/OFXServer/ofxsrvr.dll": {Company: "Access Softek", Product: "OFXServer"},
		},
		VersionPatterns: map[string]VersionPattern{
			"Enterprise Engineering": {Regexp: `Servlet Version ([0-9.]+)`, Format: "Servlet %s"},
		},
		Hosts: map[string]string{
			"ofx.netxclient.com":             "Pershing",
			"uat-ofx.netxclient.inautix.com": "Pershing",
			"www.oasis.cfree.com":            "Fiserv - CheckFree - Oasis",
		},
	}
}
