package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/ofxpostern/internal/model"
)

// JSONWriter writes one JSON document per report.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
	version      string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint indents with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithToolVersion records the ofxpostern version in every document.
func WithToolVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter writing to output.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport wraps a report with output metadata.
type JSONReport struct {
	Version string            `json:"version,omitempty"`
	Summary JSONSummary       `json:"summary"`
	Report  *model.ScanReport `json:"report"`
}

// JSONSummary counts the test outcomes.
type JSONSummary struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Write renders report as JSON followed by a newline.
func (w *JSONWriter) Write(report *model.ScanReport) (int, error) {
	doc := JSONReport{
		Version: w.version,
		Summary: JSONSummary{
			Passed: report.Ledger.PassCount(),
			Failed: report.Ledger.FailCount(),
		},
		Report: report,
	}

	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(doc, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return 0, err
	}
	return w.output.Write(append(data, '\n'))
}
