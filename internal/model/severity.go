package model

// Severity represents the risk level of a failed check.
type Severity int

const (
	// SeverityInfo marks findings with no direct security impact.
	SeverityInfo Severity = iota
	// SeverityLow marks minor hardening issues.
	SeverityLow
	// SeverityMedium marks issues that help an attacker plan further steps.
	SeverityMedium
	// SeverityHigh marks issues that expose credentials or traffic.
	SeverityHigh
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// CheckInfo describes the impact of a failed check and how to fix it.
type CheckInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

var checkInfoMapping = map[string]CheckInfo{
	CheckTLS: {
		Severity:       SeverityHigh,
		Impact:         "Clients cannot verify the server, so credentials and account data can be intercepted.",
		Recommendation: "Serve the OFX endpoint over TLS with a certificate from a trusted authority.",
	},
	CheckContentType: {
		Severity:       SeverityInfo,
		Impact:         "Clients may reject or mis-handle responses that are not labelled application/x-ofx.",
		Recommendation: "Return Content-Type: application/x-ofx for every OFX response.",
	},
	CheckServerDisclosure: {
		Severity:       SeverityLow,
		Impact:         "Version banners let attackers match the server against known vulnerabilities.",
		Recommendation: "Remove version numbers from Server and X-Powered-By headers.",
	},
	CheckMFA: {
		Severity:       SeverityMedium,
		Impact:         "Protocol versions before 1.0.3 and 2.0.3 cannot carry multi-factor challenges.",
		Recommendation: "Upgrade the server to OFX 1.0.3 / 2.0.3 or later and enable MFA.",
	},
	CheckPasswordPolicy: {
		Severity:       SeverityMedium,
		Impact:         "Short passwords are practical to brute force against the sign-on endpoint.",
		Recommendation: "Require passwords of at least 8 characters.",
	},
	CheckUsername: {
		Severity:       SeverityLow,
		Impact:         "Contact addresses that follow the username scheme reveal valid login names.",
		Recommendation: "Publish a role address (support@, help@) in the profile instead of a personal one.",
	},
	CheckNullValues: {
		Severity:       SeverityInfo,
		Impact:         "Literal null values point at unhandled conditions in the server code.",
		Recommendation: "Omit elements without a value instead of returning null.",
	},
	CheckServerErrors: {
		Severity:       SeverityMedium,
		Impact:         "Unhandled exceptions on malformed input indicate weak input validation and may leak internals.",
		Recommendation: "Validate requests and return an OFX error status instead of HTTP 500.",
	},
	CheckInternalIP: {
		Severity:       SeverityLow,
		Impact:         "Internal addresses reveal the network layout behind the endpoint.",
		Recommendation: "Rewrite internal URLs before they reach responses.",
	},
}

// GetCheckInfo returns the metadata for a check title.
// Unknown titles get SeverityInfo with generic text.
func GetCheckInfo(title string) CheckInfo {
	if info, ok := checkInfoMapping[title]; ok {
		return info
	}
	return CheckInfo{
		Severity:       SeverityInfo,
		Impact:         "Unclassified finding.",
		Recommendation: "Review the finding manually.",
	}
}
