package assess

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nao1215/ofxpostern/internal/model"
	"github.com/nao1215/ofxpostern/internal/ofx"
)

// MinPasswordLength is the shortest password policy that passes.
const MinPasswordLength = 8

// mfaVersions maps a major version to the first version with MFA support.
var mfaVersions = map[int]int{1: 103, 2: 203}

// MFACheck fails when the protocol version predates multi-factor
// authentication.
type MFACheck struct{}

// NewMFACheck creates an MFACheck.
func NewMFACheck() *MFACheck {
	return &MFACheck{}
}

// Title returns the check title.
func (c *MFACheck) Title() string { return model.CheckMFA }

// RequiresProfile returns true.
func (c *MFACheck) RequiresProfile() bool { return true }

// Run evaluates the check.
func (c *MFACheck) Run(in *Input) model.TestResult {
	result := model.NewTestResult(c.Title())
	p := in.Profile
	if required, ok := mfaVersions[p.MajorVersion()]; ok && p.Version < required {
		result.Fail(fmt.Sprintf("OFX protocol version (%s) does not support MFA", p.VersionString()))
	}
	return result
}

// PasswordPolicyCheck fails when the advertised minimum password length
// is below MinPasswordLength.
type PasswordPolicyCheck struct{}

// NewPasswordPolicyCheck creates a PasswordPolicyCheck.
func NewPasswordPolicyCheck() *PasswordPolicyCheck {
	return &PasswordPolicyCheck{}
}

// Title returns the check title.
func (c *PasswordPolicyCheck) Title() string { return model.CheckPasswordPolicy }

// RequiresProfile returns true.
func (c *PasswordPolicyCheck) RequiresProfile() bool { return true }

// Run evaluates the check.
func (c *PasswordPolicyCheck) Run(in *Input) model.TestResult {
	result := model.NewTestResult(c.Title())
	if minpass, ok := in.Profile.Capabilities.Int(ofx.CapMinPassword); ok && minpass < MinPasswordLength {
		result.Fail(fmt.Sprintf("Minimum password length (%d) is less than recommended (%d)",
			minpass, MinPasswordLength))
	}
	return result
}

// Mailbox names that are role addresses rather than user names.
var (
	roleAliasesExact = []string{"test", "members", "it", "email", "assist"}

	roleAliasesContained = []string{
		"info", "support", "service", "reply", "online", "help", "webmaster",
		"quicken", "question", "postmaster", "client", "internet", "bank",
		"commerce", "business", "deposit", "customer", "feedback", "central",
		"center", "bookkeep", "ask", "virtual", "management", "operation",
		"contact", "inbox", "staff", "investor",
	}
)

// UsernameCheck fails when the profile contact address looks like it
// was built from an online banking user name.
type UsernameCheck struct{}

// NewUsernameCheck creates a UsernameCheck.
func NewUsernameCheck() *UsernameCheck {
	return &UsernameCheck{}
}

// Title returns the check title.
func (c *UsernameCheck) Title() string { return model.CheckUsername }

// RequiresProfile returns true.
func (c *UsernameCheck) RequiresProfile() bool { return true }

// Run evaluates the check.
func (c *UsernameCheck) Run(in *Input) model.TestResult {
	result := model.NewTestResult(c.Title())
	email, _ := in.Profile.Field(ofx.FieldEmail)
	if !strings.Contains(email, "@") {
		return result
	}

	name, domain := splitAddress(strings.ToLower(email))
	switch {
	case slices.Contains(roleAliasesExact, name):
	case slices.ContainsFunc(roleAliasesContained, func(alias string) bool {
		return strings.Contains(name, alias)
	}):
	case strings.HasPrefix(name, domain):
	case strings.ContainsAny(name, "._"):
		result.Fail("Email address is likely a username: " + email)
	default:
		result.Fail("Email address may be a username: " + email)
	}
	return result
}

// splitAddress returns the mailbox name and the second level label of
// the domain, e.g. "bigbank" for "jsmith@mail.bigbank.com". A single
// label domain is returned as is.
func splitAddress(email string) (name, domain string) {
	parts := strings.Split(email, "@")
	name = parts[0]
	labels := strings.Split(parts[1], ".")
	if len(labels) < 2 {
		return name, labels[0]
	}
	return name, labels[len(labels)-2]
}
