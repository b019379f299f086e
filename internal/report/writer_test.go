package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/ofxpostern/internal/model"
	"github.com/nao1215/ofxpostern/internal/ofx"
)

const testTarget = "https://ofx.bigbank.com/ofx/process.ofx"

const profileBody = `OFXHEADER:100
DATA:OFXSGML
VERSION:103
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<LANGUAGE>ENG
<FI>
<ORG>BigBank
<FID>1234
</FI>
</SONRS>
</SIGNONMSGSRSV1>
<PROFMSGSRSV1>
<PROFTRNRS>
<TRNUID>1
<PROFRS>
<MSGSETLIST>
<SIGNONMSGSET>
<SIGNONMSGSETV1>
<MSGSETCORE>
<VER>1
<URL>https://ofx.bigbank.com/ofx/process.ofx
<SPNAME>Acme OFX Hosting
</MSGSETCORE>
</SIGNONMSGSETV1>
</SIGNONMSGSET>
<BANKMSGSET>
<BANKMSGSETV1>
<XFERPROF>
<CANSCHED>Y
</XFERPROF>
<EMAILPROF>
<CANEMAIL>Y
<CANNOTIFY>N
</EMAILPROF>
</BANKMSGSETV1>
</BANKMSGSET>
<TAX1099MSGSET>
<TAX1099MSGSETV1>
<TAX1099DNLD>Y
<EXTD1099B>N
<TAXYEARSUPPORTED>2016
<TAXYEARSUPPORTED>2017
</TAX1099MSGSETV1>
</TAX1099MSGSET>
</MSGSETLIST>
<SIGNONINFOLIST>
<SIGNONINFO>
<SIGNONREALM>DEFAULT
<MIN>6
<CLIENTUIDREQ>Y
</SIGNONINFO>
</SIGNONINFOLIST>
<FINAME>Big Bank
<ADDR1>1 Main Street
<CITY>Springfield
<STATE>IL
<POSTALCODE>62701
<COUNTRY>USA
</PROFRS>
</PROFTRNRS>
</PROFMSGSRSV1>
</OFX>
`

func createTestReport(t *testing.T) *model.ScanReport {
	t.Helper()

	profile, err := ofx.Decode(profileBody)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	report := model.NewScanReport(testTarget, "1234", "BigBank", 103)
	report.DateScanned = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	report.Profile = profile
	report.Identity.HTTPServer = "Microsoft-IIS/8.5"
	report.Identity.WebFramework = "ASP.NET"
	report.Identity.ServiceProvider = "Acme OFX Hosting"
	report.Identity.Software = model.Software{Company: "Acme", Product: "OFX Connect", Version: "4.2"}
	report.Identity.TLS = model.TLSWorking

	report.Ledger.Add(model.NewTestResult(model.CheckTLS))
	disclosure := model.NewTestResult(model.CheckServerDisclosure)
	disclosure.Fail("Web server discloses version: Microsoft-IIS/8.5")
	report.Ledger.Add(disclosure)
	password := model.NewTestResult(model.CheckPasswordPolicy)
	password.Fail("Minimum password length is 6")
	report.Ledger.Add(password)
	return report
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes every section", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestReport(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("returned %d bytes, wrote %d", n, buf.Len())
		}

		output := buf.String()
		for _, want := range []string{
			testTarget + "\n" + strings.Repeat("#", len(testTarget)) + "\n",
			"Financial Institution\n=====================\n",
			"Name:    Big Bank\n",
			"Address: 1 Main Street\n",
			"         Springfield, IL 62701\n",
			"         USA\n",
			"OFX Server\n==========\n",
			"OFX Version: 1.0.3\n",
			"FID:         1234\n",
			"URL:         https://ofx.bigbank.com/ofx/process.ofx\n",
			"HTTP Server:   Microsoft-IIS/8.5\n",
			"OFX Software\n------------\n",
			"Service Provider: Acme OFX Hosting\n",
			"Company:          Acme\n",
			"Web Server Disclosure: FAIL\n  * Web server discloses version: Microsoft-IIS/8.5\n",
			"Transport Layer Security (TLS): PASS\n",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
		if strings.Contains(output, "Severity:") {
			t.Error("severity is only shown in verbose mode")
		}
	})

	t.Run("writes the capability tree", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := strings.Join([]string{
			"* Banking",
			"  + Intrabank Transfer",
			"  + Messaging",
			"    - Email",
			"* Taxes",
			"  + 1099",
			"  + Years",
			"    - 2016,2017",
			"* Authentication",
			"  + MFA",
			"    - Require Client ID",
		}, "\n")
		if !strings.Contains(buf.String(), want) {
			t.Errorf("capability tree missing, got:\n%s", buf.String())
		}
	})

	t.Run("verbose adds severity", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Severity: MEDIUM") {
			t.Errorf("expected severity of the password check, got:\n%s", buf.String())
		}
	})

	t.Run("report without profile", func(t *testing.T) {
		t.Parallel()

		report := model.NewScanReport(testTarget, "", "", 102)
		report.DecodeError = "no response to the profile request"
		report.Ledger.Note("Cannot read OFX PROFILE, some tests will not be run.")
		report.TimedOut = true

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{
			"Status:    Timed out (partial results)",
			"Profile:   no response to the profile request",
			"Cannot read OFX PROFILE, some tests will not be run.",
			"Capabilities\n============\n\nFingerprint",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
	})
}

func TestWriteKVList(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	writeKVList(&sb, [][2]string{
		{"Name", "Big Bank"},
		{"Address", "1 Main Street"},
		{"", "USA"},
		{"Empty", ""},
	})
	want := "Name:    Big Bank\nAddress: 1 Main Street\n         USA\nEmpty:\n"
	if sb.String() != want {
		t.Errorf("got:\n%q\nwant:\n%q", sb.String(), want)
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables and chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# OFX Server Report",
			"## Financial Institution",
			"## Capabilities",
			"- Banking",
			"  - Intrabank Transfer",
			"## Fingerprint",
			"Microsoft-IIS/8.5",
			"## Tests",
			"```mermaid",
			"pie",
			"Password Policy",
			"MEDIUM",
			testTarget,
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("all passing shows a tip", func(t *testing.T) {
		t.Parallel()

		report := model.NewScanReport(testTarget, "1234", "BigBank", 102)
		report.Ledger.Add(model.NewTestResult(model.CheckTLS))

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "All tests passed.") {
			t.Errorf("expected tip, got:\n%s", buf.String())
		}
		if !strings.Contains(buf.String(), "No profile information available.") {
			t.Error("expected placeholder for the missing profile")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes summary and report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint(), WithToolVersion("v1.2.3"))
		if _, err := w.Write(createTestReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var doc struct {
			Version string `json:"version"`
			Summary struct {
				Passed int `json:"passed"`
				Failed int `json:"failed"`
			} `json:"summary"`
			Report struct {
				Target   string `json:"target"`
				Identity struct {
					TLS string `json:"tls"`
				} `json:"identity"`
				Profile struct {
					Capabilities map[string]any `json:"capabilities"`
				} `json:"profile"`
			} `json:"report"`
		}
		if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
		}
		if doc.Version != "v1.2.3" || doc.Summary.Passed != 1 || doc.Summary.Failed != 2 {
			t.Errorf("unexpected header %+v", doc)
		}
		if doc.Report.Target != testTarget || doc.Report.Identity.TLS != "working" {
			t.Errorf("unexpected report %+v", doc.Report)
		}
		if _, ok := doc.Report.Profile.Capabilities["BANKING"]; !ok {
			t.Errorf("expected capabilities in JSON, got %v", doc.Report.Profile.Capabilities)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})

	t.Run("compact output is one line", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected a single line of JSON")
		}
	})
}

type failingWriter struct{}

func (failingWriter) Write(*model.ScanReport) (int, error) {
	return 0, errors.New("write failed")
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to every writer", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))
		n, err := mw.Write(createTestReport(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected both writers to produce output")
		}
		if n != text.Len()+js.Len() {
			t.Errorf("n = %d, want %d", n, text.Len()+js.Len())
		}
	})

	t.Run("stops at the first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := NewMultiWriter(failingWriter{}, NewSimpleWriter(&buf))
		if _, err := mw.Write(createTestReport(t)); err == nil {
			t.Error("expected an error")
		}
		if buf.Len() != 0 {
			t.Error("later writers should not run")
		}
	})
}
