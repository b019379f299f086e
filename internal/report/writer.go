package report

import (
	"io"

	"github.com/nao1215/ofxpostern/internal/model"
)

// Writer renders scan reports.
type Writer interface {
	// Write renders report and returns the number of bytes written.
	Write(report *model.ScanReport) (int, error)
}

// MultiWriter writes every report to several Writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders report with every writer, stopping at the first error.
func (m *MultiWriter) Write(report *model.ScanReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// status summarizes how the scan ended.
func status(report *model.ScanReport) string {
	switch {
	case report.TimedOut:
		return "Timed out (partial results)"
	case report.ErrorMessage != "":
		return "Error - " + report.ErrorMessage
	default:
		return "Complete"
	}
}
