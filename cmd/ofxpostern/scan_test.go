package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nao1215/ofxpostern/internal/config"
	"github.com/nao1215/ofxpostern/internal/model"
	"github.com/nao1215/ofxpostern/internal/report"
)

const profileResponse = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
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
<BANKMSGSET>
<BANKMSGSETV1>
<XFERPROF>
<CANSCHED>Y
</XFERPROF>
</BANKMSGSETV1>
</BANKMSGSET>
</MSGSETLIST>
<SIGNONINFOLIST>
<SIGNONINFO>
<SIGNONREALM>DEFAULT
<MIN>4
</SIGNONINFO>
</SIGNONINFOLIST>
<FINAME>Big Bank
<EMAIL>support@bigbank.com
</PROFRS>
</PROFTRNRS>
</PROFMSGSRSV1>
</OFX>
`

// newOFXServer starts a server that answers profile requests and rejects
// everything else the way common OFX servers do.
func newOFXServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Server", "Microsoft-IIS/8.5")
		body, _ := io.ReadAll(r.Body) //nolint:errcheck // test server

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/":
			w.Header().Set("Content-Type", "text/html")
			_, _ = io.WriteString(w, "<html><head><title>Big Bank</title></head></html>") //nolint:errcheck // test server
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case strings.Contains(string(body), "<PROFRQ>"):
			w.Header().Set("Content-Type", "application/x-ofx")
			_, _ = io.WriteString(w, profileResponse) //nolint:errcheck // test server
		default:
			w.Header().Set("Content-Type", "application/x-ofx")
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "scan [ofx-url]" {
			t.Errorf("expected use 'scan [ofx-url]', got %q", cmd.Use)
		}
	})

	flags := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "fid", defValue: ""},
		{name: "org", defValue: ""},
		{name: "ofx-version", shorthand: "V", defValue: "102"},
		{name: "no-tls-verify", shorthand: "k", defValue: "false"},
		{name: "proxy", shorthand: "x", defValue: ""},
		{name: "tor", defValue: "false"},
		{name: "tor-timeout", shorthand: "T", defValue: "3m0s"},
		{name: "timeout", shorthand: "t", defValue: "27s"},
		{name: "connect-timeout", defValue: "3.2s"},
		{name: "batch", shorthand: "b", defValue: "4"},
		{name: "cache", defValue: "false"},
		{name: "no-save", defValue: "false"},
		{name: "config", shorthand: "c", defValue: ""},
		{name: "json", shorthand: "j", defValue: "false"},
		{name: "markdown", shorthand: "m", defValue: "false"},
		{name: "output", shorthand: "o", defValue: ""},
	}
	for _, tt := range flags {
		t.Run("has "+tt.name+" flag", func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

func TestGetVerboseFlag(t *testing.T) {
	t.Parallel()

	t.Run("reads persistent flag of the root", func(t *testing.T) {
		t.Parallel()
		root := NewRootCmd()
		if err := root.PersistentFlags().Set("verbose", "true"); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}
		scan, _, err := root.Find([]string{"scan"})
		if err != nil {
			t.Fatalf("failed to find scan command: %v", err)
		}
		if !getVerboseFlag(scan) {
			t.Error("expected verbose to be true")
		}
	})

	t.Run("false without the flag", func(t *testing.T) {
		t.Parallel()
		if getVerboseFlag(NewScanCmd()) {
			t.Error("expected verbose to be false")
		}
	})
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	const target = "https://ofx.bigbank.com/ofx"

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		cfg, err := buildConfig(cmd, []string{target})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.Targets) != 1 || cfg.Targets[0] != target {
			t.Errorf("expected targets [%s], got %v", target, cfg.Targets)
		}
		if cfg.OFXVersion != config.DefaultOFXVersion {
			t.Errorf("expected version %d, got %d", config.DefaultOFXVersion, cfg.OFXVersion)
		}
		if !cfg.TLSVerify {
			t.Error("expected TLS verification by default")
		}
		if cfg.DBDir != config.XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", config.XDGDataDir(), cfg.DBDir)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	t.Run("request flags", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		for name, value := range map[string]string{
			"fid":           "1234",
			"org":           "BigBank",
			"ofx-version":   "220",
			"no-tls-verify": "true",
			"timeout":       "5s",
			"batch":         "2",
		} {
			if err := cmd.Flags().Set(name, value); err != nil {
				t.Fatalf("failed to set %s: %v", name, err)
			}
		}

		cfg, err := buildConfig(cmd, []string{target})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.FID != "1234" || cfg.Org != "BigBank" || cfg.OFXVersion != 220 {
			t.Errorf("unexpected request settings: %+v", cfg)
		}
		if cfg.TLSVerify {
			t.Error("expected TLS verification to be off")
		}
		if cfg.ReadTimeout.Seconds() != 5 || cfg.BatchSize != 2 {
			t.Errorf("unexpected timeout %s or batch %d", cfg.ReadTimeout, cfg.BatchSize)
		}
	})

	t.Run("no-save disables the database", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		_ = cmd.Flags().Set("no-save", "true") //nolint:errcheck // flag exists
		cfg, err := buildConfig(cmd, []string{target})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DBDir != "" {
			t.Errorf("expected empty DBDir, got %q", cfg.DBDir)
		}
	})

	t.Run("cache needs the database", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		_ = cmd.Flags().Set("no-save", "true") //nolint:errcheck // flag exists
		_ = cmd.Flags().Set("cache", "true")   //nolint:errcheck // flag exists
		if _, err := buildConfig(cmd, []string{target}); err == nil {
			t.Error("expected error for --cache with --no-save")
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml")) //nolint:errcheck // flag exists
		if _, err := buildConfig(cmd, []string{target}); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("loads config file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".ofxpostern")
		content := "targets:\n  " + target + ":\n    fid: \"5678\"\n    org: FileBank\n    version: 103\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		cmd := NewScanCmd()
		_ = cmd.Flags().Set("config", path) //nolint:errcheck // flag exists
		cfg, err := buildConfig(cmd, []string{target})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tc := cfg.Resolve(target)
		if tc.FID != "5678" || tc.Org != "FileBank" || tc.Version != 103 {
			t.Errorf("expected settings from the file, got %+v", tc)
		}
	})
}

func TestScanOutcome(t *testing.T) {
	t.Parallel()

	passed := model.NewScanReport("https://a.example", "", "", 102)
	passed.Ledger.Add(model.NewTestResult(model.CheckTLS))
	failing := model.NewTestResult(model.CheckContentType)
	failing.Fail("text/html")
	passed.Ledger.Add(failing)

	cached := model.NewScanReport("https://a.example", "", "", 102)
	cached.FromCache = true

	broken := model.NewScanReport("https://a.example", "", "", 301)
	broken.SetError(io.ErrUnexpectedEOF)

	cancelled := model.NewScanReport("https://a.example", "", "", 102)
	cancelled.TimedOut = true
	cancelled.SetError(context.Canceled)

	tests := []struct {
		name   string
		report *model.ScanReport
		want   string
	}{
		{name: "finished", report: passed, want: "1 passed, 1 failed"},
		{name: "from cache", report: cached, want: "0 passed, 0 failed (cached)"},
		{name: "failed", report: broken, want: "failed: unexpected EOF"},
		{name: "cancelled", report: cancelled, want: "cancelled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := scanOutcome(tt.report); got != tt.want {
				t.Errorf("scanOutcome() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewReportWriter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		json     bool
		markdown bool
		check    func(report.Writer) bool
	}{
		{name: "text", check: func(w report.Writer) bool { _, ok := w.(*report.SimpleWriter); return ok }},
		{name: "json", json: true, check: func(w report.Writer) bool { _, ok := w.(*report.JSONWriter); return ok }},
		{name: "markdown", markdown: true, check: func(w report.Writer) bool { _, ok := w.(*report.MarkdownWriter); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.NewConfig()
			cfg.JSONReport = tt.json
			cfg.MarkdownReport = tt.markdown
			if w := newReportWriter(cfg, io.Discard); !tt.check(w) {
				t.Errorf("unexpected writer %T", w)
			}
		})
	}
}

func TestOpenOutput(t *testing.T) {
	t.Parallel()

	t.Run("stdout when no path", func(t *testing.T) {
		t.Parallel()
		var stdout bytes.Buffer
		w, closeFn, err := openOutput("", &stdout)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer closeFn()
		if w != &stdout {
			t.Error("expected stdout")
		}
	})

	t.Run("creates file and directories", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "reports", "bigbank.txt")
		w, closeFn, err := openOutput(path, io.Discard)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := io.WriteString(w, "report"); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		closeFn()

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if string(content) != "report" {
			t.Errorf("unexpected content %q", content)
		}
		if runtime.GOOS != "windows" {
			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("stat failed: %v", err)
			}
			if perm := info.Mode().Perm(); perm != 0600 {
				t.Errorf("expected permissions 0600, got %o", perm)
			}
		}
	})
}

func TestCheckProxy(t *testing.T) {
	t.Parallel()

	t.Run("http proxies are not checked", func(t *testing.T) {
		t.Parallel()
		if err := checkProxy(context.Background(), "http://127.0.0.1:1"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("unreachable socks proxy", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen failed: %v", err)
		}
		addr := ln.Addr().String()
		_ = ln.Close() //nolint:errcheck // only the free port is needed

		if err := checkProxy(context.Background(), "socks5://"+addr); err == nil {
			t.Error("expected error for unreachable proxy")
		}
	})
}

func TestRunScan(t *testing.T) {
	t.Parallel()

	t.Run("writes a json report", func(t *testing.T) {
		t.Parallel()

		srv, _ := newOFXServer(t)
		cfg := config.NewConfig()
		cfg.Targets = []string{srv.URL + "/ofx/process.ofx"}
		cfg.DBDir = t.TempDir()
		cfg.JSONReport = true

		var stdout, stderr bytes.Buffer
		if err := runScan(context.Background(), cfg, &stdout, &stderr, discardLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var doc struct {
			Summary report.JSONSummary `json:"summary"`
		}
		if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout.String())
		}
		if doc.Summary.Passed+doc.Summary.Failed != 9 {
			t.Errorf("expected 9 test results, got %+v", doc.Summary)
		}
		if !strings.Contains(stdout.String(), "Microsoft-IIS/8.5") {
			t.Error("expected the server fingerprint in the report")
		}
		if !strings.Contains(stderr.String(), "[1/1] "+cfg.Targets[0]) {
			t.Errorf("expected progress line, got: %s", stderr.String())
		}
	})

	t.Run("second run uses the cache", func(t *testing.T) {
		t.Parallel()

		srv, hits := newOFXServer(t)
		cfg := config.NewConfig()
		cfg.Targets = []string{srv.URL + "/ofx/process.ofx"}
		cfg.DBDir = t.TempDir()
		cfg.UseCache = true

		if err := runScan(context.Background(), cfg, io.Discard, io.Discard, discardLogger()); err != nil {
			t.Fatalf("first scan failed: %v", err)
		}
		first := hits.Load()

		var stdout, stderr bytes.Buffer
		if err := runScan(context.Background(), cfg, &stdout, &stderr, discardLogger()); err != nil {
			t.Fatalf("second scan failed: %v", err)
		}
		if hits.Load() != first {
			t.Errorf("expected no requests on the cached run, got %d more", hits.Load()-first)
		}
		if !strings.Contains(stderr.String(), "(cached)") {
			t.Errorf("expected cached outcome, got: %s", stderr.String())
		}
		if !strings.Contains(stdout.String(), "Source:    response cache") {
			t.Errorf("expected cache source in the report, got: %s", stdout.String())
		}
	})

	t.Run("unsupported version fails the scan", func(t *testing.T) {
		t.Parallel()

		srv, hits := newOFXServer(t)
		cfg := config.NewConfig()
		cfg.Targets = []string{srv.URL + "/ofx"}
		cfg.DBDir = ""
		cfg.OFXVersion = 301

		err := runScan(context.Background(), cfg, io.Discard, io.Discard, discardLogger())
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "1 of 1 scans failed") {
			t.Errorf("unexpected error: %v", err)
		}
		if hits.Load() != 0 {
			t.Errorf("expected no requests, got %d", hits.Load())
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		srv, _ := newOFXServer(t)
		cfg := config.NewConfig()
		cfg.Targets = []string{srv.URL + "/ofx"}
		cfg.DBDir = ""

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var stderr bytes.Buffer
		if err := runScan(ctx, cfg, io.Discard, &stderr, discardLogger()); err == nil {
			t.Error("expected cancellation error")
		}
		if !strings.Contains(stderr.String(), "cancelled") {
			t.Errorf("expected cancelled outcome, got: %s", stderr.String())
		}
	})
}
