package assess

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nao1215/ofxpostern/internal/model"
	"github.com/nao1215/ofxpostern/internal/ofx"
)

// verboseErrorPrefix starts the WebSphere error page that echoes the
// exception text.
const verboseErrorPrefix = "Error 500:"

// internalURL matches URLs pointing at loopback or 10.0.0.0/8 hosts.
var internalURL = regexp.MustCompile(
	`http[s]?://((localhost)|(127\.0\.0\.[0-9]{1,3})|(10\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3})):?[0-9]{0,5}/?[\w\-/]*`)

// NullValueCheck reports elements whose value is the literal "null".
// Responses that are not OFX are ignored.
type NullValueCheck struct{}

// NewNullValueCheck creates a NullValueCheck.
func NewNullValueCheck() *NullValueCheck {
	return &NullValueCheck{}
}

// Title returns the check title.
func (c *NullValueCheck) Title() string { return model.CheckNullValues }

// RequiresProfile returns false.
func (c *NullValueCheck) RequiresProfile() bool { return false }

// Run evaluates the check.
func (c *NullValueCheck) Run(in *Input) model.TestResult {
	result := model.NewTestResult(c.Title())
	for _, name := range ofxProbes {
		rec, ok := in.Probes.Response(name)
		if !ok {
			continue
		}
		doc, err := ofx.Decode(rec.Body)
		if err != nil {
			continue
		}
		for _, m := range doc.FindLiteralSpans("null", false) {
			result.Fail(fmt.Sprintf("%s: null value returned: %s", name, m))
		}
	}
	return result
}

// ServerErrorCheck fails on HTTP 500 responses to OFX requests.
type ServerErrorCheck struct{}

// NewServerErrorCheck creates a ServerErrorCheck.
func NewServerErrorCheck() *ServerErrorCheck {
	return &ServerErrorCheck{}
}

// Title returns the check title.
func (c *ServerErrorCheck) Title() string { return model.CheckServerErrors }

// RequiresProfile returns false.
func (c *ServerErrorCheck) RequiresProfile() bool { return false }

// Run evaluates the check. A 500 to the profile request fails the check
// without a message unless the body is a verbose error page.
func (c *ServerErrorCheck) Run(in *Input) model.TestResult {
	result := model.NewTestResult(c.Title())
	for _, name := range ofxProbes {
		rec, ok := in.Probes.Response(name)
		if !ok || rec.StatusCode != 500 {
			continue
		}
		switch {
		case strings.HasPrefix(rec.Body, verboseErrorPrefix):
			result.Fail(fmt.Sprintf("%s: Verbose error message: %s", name, rec.FirstLine()))
		case name == model.ProbePostOFX || name == model.ProbeOFXEmpty:
			result.Fail(fmt.Sprintf("%s: Unhandled exception parsing invalid input", name))
		default:
			result.Fail()
		}
	}
	return result
}

// InternalIPCheck reports URLs to internal hosts in any response body.
type InternalIPCheck struct{}

// NewInternalIPCheck creates an InternalIPCheck.
func NewInternalIPCheck() *InternalIPCheck {
	return &InternalIPCheck{}
}

// Title returns the check title.
func (c *InternalIPCheck) Title() string { return model.CheckInternalIP }

// RequiresProfile returns false.
func (c *InternalIPCheck) RequiresProfile() bool { return false }

// Run evaluates the check.
func (c *InternalIPCheck) Run(in *Input) model.TestResult {
	result := model.NewTestResult(c.Title())
	for _, name := range model.ProbeNames() {
		rec, ok := in.Probes.Response(name)
		if !ok || rec.Body == "" {
			continue
		}
		for _, m := range internalURL.FindAllString(rec.Body, -1) {
			result.Fail(fmt.Sprintf("%s: Internal IP returned: %s", name, m))
		}
	}
	return result
}
