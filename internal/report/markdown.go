package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/ofxpostern/internal/model"
)

// MarkdownWriter renders reports as GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter writing to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write renders report.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeInstitution(md, report)
	w.writeCapabilities(md, report)
	w.writeFingerprint(md, report)
	w.writeTests(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("OFX Server Report")
	md.PlainText("")

	rows := [][]string{
		{"Target", "`" + report.Target + "`"},
		{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
		{"OFX Version", strconv.Itoa(report.OFXVersion)},
		{"FID", orDash(report.FID)},
		{"ORG", orDash(report.Org)},
		{"TLS", report.Identity.TLS.String()},
		{"Status", status(report)},
	}
	if report.FromCache {
		rows = append(rows, []string{"Source", "response cache"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.DecodeError != "" {
		md.Warningf("The profile response could not be decoded: %s", report.DecodeError)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeInstitution(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Financial Institution")
	md.PlainText("")
	lines := append(institutionLines(report.Profile), serverLines(report.Profile)...)
	if len(lines) == 0 {
		md.PlainText("No profile information available.")
		md.PlainText("")
		return
	}
	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows:   pairsToRows(lines),
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeCapabilities(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Capabilities")
	md.PlainText("")
	tree := capabilityTree(report.Profile)
	if len(tree) == 0 {
		md.PlainText("None disclosed.")
		md.PlainText("")
		return
	}
	var sb strings.Builder
	writeMarkdownTree(&sb, tree, 0)
	md.PlainText(strings.TrimRight(sb.String(), "\n"))
	md.PlainText("")
}

func writeMarkdownTree(sb *strings.Builder, nodes []capNode, depth int) {
	for _, n := range nodes {
		sb.WriteString(strings.Repeat("  ", depth) + "- " + n.Label + "\n")
		writeMarkdownTree(sb, n.Children, depth+1)
	}
}

func (w *MarkdownWriter) writeFingerprint(md *markdown.Markdown, report *model.ScanReport) {
	id := report.Identity
	md.H2("Fingerprint")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"HTTP Server", orDash(id.HTTPServer)},
			{"Web Framework", orDash(id.WebFramework)},
			{"Service Provider", orDash(id.ServiceProvider)},
			{"Company", orDash(id.Software.Company)},
			{"Product", orDash(id.Software.Product)},
			{"Version", orDash(id.Software.Version)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeTests(md *markdown.Markdown, report *model.ScanReport) {
	ledger := report.Ledger
	md.H2("Tests")
	md.PlainText("")

	for _, note := range ledger.Notes {
		md.Note(note)
		md.PlainText("")
	}
	if len(ledger.Results) == 0 {
		md.PlainText("No tests were run.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(ledger.Results))
	for _, r := range ledger.Results {
		severity := "-"
		if !r.Passed {
			severity = model.GetCheckInfo(r.Title).Severity.String()
		}
		rows = append(rows, []string{r.Title, r.Status(), severity, orDash(strings.Join(r.Messages, "<br>"))})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Test", "Result", "Severity", "Details"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, ledger)
	w.writeAlert(md, ledger)

	for _, r := range ledger.Results {
		if r.Passed {
			continue
		}
		info := model.GetCheckInfo(r.Title)
		md.Details(r.Title, info.Impact+" "+info.Recommendation)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, ledger model.Ledger) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Test Results"),
		piechart.WithShowData(true),
	)
	if n := ledger.PassCount(); n > 0 {
		chart.LabelAndIntValue("Pass", uint64(n))
	}
	if n := ledger.FailCount(); n > 0 {
		chart.LabelAndIntValue("Fail", uint64(n))
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert picks the alert from the most severe failed check.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, ledger model.Ledger) {
	worst := model.Severity(-1)
	for _, r := range ledger.Results {
		if !r.Passed {
			worst = max(worst, model.GetCheckInfo(r.Title).Severity)
		}
	}
	failed := ledger.FailCount()
	switch {
	case worst == model.SeverityHigh:
		md.Cautionf("%d test(s) failed, including high severity issues.", failed)
	case worst == model.SeverityMedium:
		md.Warningf("%d test(s) failed.", failed)
	case failed > 0:
		md.Note("Only low severity and informational tests failed.")
	default:
		md.Tip("All tests passed.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [ofxpostern](https://github.com/nao1215/ofxpostern)*")
}

func pairsToRows(pairs [][2]string) [][]string {
	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = []string{p[0], p[1]}
	}
	return rows
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
