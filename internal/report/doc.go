// Package report renders scan reports.
//
// Writers:
//   - SimpleWriter: the plain text layout printed to the terminal
//   - MarkdownWriter: Markdown with tables and a mermaid pie chart
//   - JSONWriter: structured output for other tools
//
// Writers implement the Writer interface and can be combined with
// MultiWriter.
package report
