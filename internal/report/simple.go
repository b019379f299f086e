package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/ofxpostern/internal/model"
)

// SimpleWriter prints the plain text report: Financial Institution,
// OFX Server, Capabilities, Fingerprint, OFX Software and Tests.
type SimpleWriter struct {
	baseWriter

	// verbose adds severity and recommendations to failed tests.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the extra detail on failed tests.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter writing to output.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write prints report.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeInstitution(&sb, report)
	w.writeServer(&sb, report)
	w.writeCapabilities(&sb, report)
	w.writeFingerprint(&sb, report)
	w.writeTests(&sb, report)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	writeHeading(sb, report.Target, 1)
	sb.WriteString("\n")
	rows := [][2]string{
		{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
		{"Status", status(report)},
	}
	if report.FromCache {
		rows = append(rows, [2]string{"Source", "response cache"})
	}
	if report.DecodeError != "" {
		rows = append(rows, [2]string{"Profile", report.DecodeError})
	}
	writeKVList(sb, rows)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeInstitution(sb *strings.Builder, report *model.ScanReport) {
	writeHeading(sb, "Financial Institution", 2)
	sb.WriteString("\n")
	if lines := institutionLines(report.Profile); len(lines) > 0 {
		writeKVList(sb, lines)
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeServer(sb *strings.Builder, report *model.ScanReport) {
	writeHeading(sb, "OFX Server", 2)
	sb.WriteString("\n")
	if lines := serverLines(report.Profile); len(lines) > 0 {
		writeKVList(sb, lines)
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeCapabilities(sb *strings.Builder, report *model.ScanReport) {
	writeHeading(sb, "Capabilities", 2)
	sb.WriteString("\n")
	if tree := capabilityTree(report.Profile); len(tree) > 0 {
		writeTree(sb, tree, 1)
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeFingerprint(sb *strings.Builder, report *model.ScanReport) {
	id := report.Identity
	writeHeading(sb, "Fingerprint", 2)
	sb.WriteString("\n")
	writeKVList(sb, [][2]string{
		{"HTTP Server", id.HTTPServer},
		{"Web Framework", id.WebFramework},
	})
	sb.WriteString("\n")

	writeHeading(sb, "OFX Software", 3)
	sb.WriteString("\n")
	var rows [][2]string
	if id.ServiceProvider != "" {
		rows = append(rows, [2]string{"Service Provider", id.ServiceProvider}, [2]string{"", ""})
	}
	rows = append(rows,
		[2]string{"Company", id.Software.Company},
		[2]string{"Product", id.Software.Product},
		[2]string{"Version", id.Software.Version},
	)
	writeKVList(sb, rows)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeTests(sb *strings.Builder, report *model.ScanReport) {
	writeHeading(sb, "Tests", 2)
	sb.WriteString("\n")

	for _, note := range report.Ledger.Notes {
		sb.WriteString(note + "\n\n")
	}
	for _, r := range report.Ledger.Results {
		writeKVList(sb, [][2]string{{r.Title, r.Status()}})
		for _, msg := range r.Messages {
			fmt.Fprintf(sb, "  * %s\n", msg)
		}
		if w.verbose && !r.Passed {
			info := model.GetCheckInfo(r.Title)
			fmt.Fprintf(sb, "  Severity: %s\n", info.Severity)
			fmt.Fprintf(sb, "  Fix:      %s\n", info.Recommendation)
		}
		sb.WriteString("\n")
	}
}

// writeHeading writes msg underlined with '#', '=' or '-' for levels 1 to 3.
func writeHeading(sb *strings.Builder, msg string, level int) {
	under := "-"
	switch level {
	case 1:
		under = "#"
	case 2:
		under = "="
	}
	sb.WriteString(msg + "\n")
	sb.WriteString(strings.Repeat(under, len(msg)) + "\n")
}

// writeKVList aligns values after the longest key. Rows with an empty
// key continue the value of the row above.
func writeKVList(sb *strings.Builder, rows [][2]string) {
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	for _, r := range rows {
		sep := ":"
		if r[0] == "" {
			sep = " "
		}
		line := fmt.Sprintf("%-*s %s", width+1, r[0]+sep, r[1])
		sb.WriteString(strings.TrimRight(line, " ") + "\n")
	}
}

var treeBullets = []string{"*", "+", "-"}

func writeTree(sb *strings.Builder, nodes []capNode, level int) {
	bullet := treeBullets[min(level, len(treeBullets))-1]
	indent := strings.Repeat(" ", 2*(level-1))
	for _, n := range nodes {
		fmt.Fprintf(sb, "%s%s %s\n", indent, bullet, n.Label)
		writeTree(sb, n.Children, level+1)
	}
}
