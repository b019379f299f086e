package model

// Assessment check titles, in the order the checks run.
const (
	CheckTLS              = "Transport Layer Security (TLS)"
	CheckContentType      = "Incorrect Content-Type"
	CheckServerDisclosure = "Web Server Disclosure"
	CheckMFA              = "Multi-Factor Authentication"
	CheckPasswordPolicy   = "Password Policy"
	CheckUsername         = "Username Disclosure"
	CheckNullValues       = "Null Values Returned"
	CheckServerErrors     = "Internal Server Errors"
	CheckInternalIP       = "Internal IP Address Disclosure"
)

// TestResult is the outcome of one assessment check.
type TestResult struct {
	Title    string   `json:"title"`
	Passed   bool     `json:"passed"`
	Messages []string `json:"messages"`
}

// NewTestResult returns a passing result with no messages.
func NewTestResult(title string) TestResult {
	return TestResult{Title: title, Passed: true, Messages: []string{}}
}

// Fail marks the result failed and appends any messages.
func (r *TestResult) Fail(messages ...string) {
	r.Passed = false
	r.Messages = append(r.Messages, messages...)
}

// Status returns PASS or FAIL.
func (r TestResult) Status() string {
	if r.Passed {
		return "PASS"
	}
	return "FAIL"
}

// Ledger is the ordered list of results of one assessment run.
type Ledger struct {
	Results []TestResult `json:"results"`

	// Notes are run level remarks, such as checks that were skipped.
	Notes []string `json:"notes,omitempty"`
}

// Add appends a result.
func (l *Ledger) Add(r TestResult) {
	l.Results = append(l.Results, r)
}

// Note appends a run level remark.
func (l *Ledger) Note(msg string) {
	l.Notes = append(l.Notes, msg)
}

// Find returns the result with the given title.
func (l Ledger) Find(title string) (TestResult, bool) {
	for _, r := range l.Results {
		if r.Title == title {
			return r, true
		}
	}
	return TestResult{}, false
}

// PassCount returns the number of passed checks.
func (l Ledger) PassCount() int {
	n := 0
	for _, r := range l.Results {
		if r.Passed {
			n++
		}
	}
	return n
}

// FailCount returns the number of failed checks.
func (l Ledger) FailCount() int {
	return len(l.Results) - l.PassCount()
}
