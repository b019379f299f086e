package assess

import (
	"fmt"
	"strings"

	"github.com/nao1215/ofxpostern/internal/model"
	"github.com/nao1215/ofxpostern/internal/ofx"
)

// ofxProbes are the probes that carry an OFX request.
var ofxProbes = []model.ProbeName{model.ProbePostOFX, model.ProbeOFXEmpty, model.ProbeOFXProfile}

// TLSCheck fails when the server could not be reached over TLS.
type TLSCheck struct{}

// NewTLSCheck creates a TLSCheck.
func NewTLSCheck() *TLSCheck {
	return &TLSCheck{}
}

// Title returns the check title.
func (c *TLSCheck) Title() string { return model.CheckTLS }

// RequiresProfile returns false.
func (c *TLSCheck) RequiresProfile() bool { return false }

// Run evaluates the check.
func (c *TLSCheck) Run(in *Input) model.TestResult {
	result := model.NewTestResult(c.Title())
	if !in.Identity.TLSWorking() {
		result.Fail("Unable to securely connect to the server over TLS")
	}
	return result
}

// ContentTypeCheck verifies OFX responses are labelled application/x-ofx.
// Responses with status 400 or without a Content-Type header are ignored.
type ContentTypeCheck struct{}

// NewContentTypeCheck creates a ContentTypeCheck.
func NewContentTypeCheck() *ContentTypeCheck {
	return &ContentTypeCheck{}
}

// Title returns the check title.
func (c *ContentTypeCheck) Title() string { return model.CheckContentType }

// RequiresProfile returns false.
func (c *ContentTypeCheck) RequiresProfile() bool { return false }

// Run evaluates the check.
func (c *ContentTypeCheck) Run(in *Input) model.TestResult {
	result := model.NewTestResult(c.Title())
	for _, name := range ofxProbes {
		rec, ok := in.Probes.Response(name)
		if !ok || rec.StatusCode == 400 {
			continue
		}
		value, ok := rec.Header("Content-Type")
		if !ok {
			continue
		}
		mediaType, _, _ := strings.Cut(value, ";")
		mediaType = strings.TrimSpace(mediaType)
		if mediaType != ofx.ContentType {
			result.Fail(fmt.Sprintf("%s: Incorrect Content-Type in OFX response: %s", name, mediaType))
		}
	}
	return result
}

// ServerDisclosureCheck fails when the server or framework banner
// includes a version number.
type ServerDisclosureCheck struct{}

// NewServerDisclosureCheck creates a ServerDisclosureCheck.
func NewServerDisclosureCheck() *ServerDisclosureCheck {
	return &ServerDisclosureCheck{}
}

// Title returns the check title.
func (c *ServerDisclosureCheck) Title() string { return model.CheckServerDisclosure }

// RequiresProfile returns false.
func (c *ServerDisclosureCheck) RequiresProfile() bool { return false }

// Run evaluates the check.
func (c *ServerDisclosureCheck) Run(in *Input) model.TestResult {
	result := model.NewTestResult(c.Title())
	if s := in.Identity.HTTPServer; hasDigit(s) {
		result.Fail("Web server discloses type and version: " + s)
	}
	if f := in.Identity.WebFramework; hasDigit(f) {
		result.Fail("Web framework discloses type and version: " + f)
	}
	return result
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}
