package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter renders lint results for output.
type Formatter interface {
	Format(w io.Writer, result *Result, contentDir string) error
}

// NewFormatter creates the formatter for the requested format string.
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return &JSONFormatter{}
	default:
		return &TextFormatter{}
	}
}

// TextFormatter renders results as human-readable text.
type TextFormatter struct{}

func (f *TextFormatter) Format(w io.Writer, result *Result, contentDir string) error {
	fmt.Fprintf(w, "Checking catalog in: %s\n", contentDir)
	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintln(w)

	for _, issue := range result.Issues {
		f.formatIssue(w, issue)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintln(w, "Results:")
	fmt.Fprintf(w, "  %d documents scanned\n", result.FilesTotal)
	if n := result.ErrorCount(); n > 0 {
		fmt.Fprintf(w, "  %d error%s (blocks build)\n", n, pluralize(n))
	}
	if n := result.WarningCount(); n > 0 {
		fmt.Fprintf(w, "  %d warning%s (should fix)\n", n, pluralize(n))
	}
	if n := result.InfoCount(); n > 0 {
		fmt.Fprintf(w, "  %d info\n", n)
	}
	fmt.Fprintln(w)

	switch {
	case result.HasErrors():
		fmt.Fprintln(w, "✗ The catalog has errors that will fail the build.")
	case result.HasWarnings():
		fmt.Fprintln(w, "⚠ The catalog has warnings. Consider fixing before publishing.")
	case len(result.Issues) > 0:
		fmt.Fprintln(w, "ℹ All findings are informational. Run: patterns fix")
	default:
		fmt.Fprintln(w, "✨ The catalog passes every check.")
	}

	return nil
}

func (f *TextFormatter) formatIssue(w io.Writer, issue Issue) {
	var icon string
	switch issue.Severity {
	case SeverityError:
		icon = "✗"
	case SeverityWarning:
		icon = "⚠"
	case SeverityInfo:
		icon = "ℹ"
	}

	location := issue.FilePath
	if issue.Line > 0 {
		location = fmt.Sprintf("%s:%d", issue.FilePath, issue.Line)
	}
	fmt.Fprintf(w, "%s %s\n", icon, location)
	fmt.Fprintf(w, "  %s [%s]: %s\n", issue.Severity, issue.Rule, issue.Message)
	if issue.Explanation != "" {
		for _, line := range strings.Split(strings.TrimSpace(issue.Explanation), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	if issue.Fix != "" {
		fmt.Fprintf(w, "  Fix: %s\n", issue.Fix)
	}
}

// JSONFormatter renders results as JSON for tooling.
type JSONFormatter struct{}

// JSONOutput is the document emitted by JSONFormatter.
type JSONOutput struct {
	ContentDir   string      `json:"content_dir"`
	FilesTotal   int         `json:"files_total"`
	ErrorCount   int         `json:"error_count"`
	WarningCount int         `json:"warning_count"`
	InfoCount    int         `json:"info_count"`
	Issues       []JSONIssue `json:"issues"`
}

// JSONIssue is one issue in JSON form.
type JSONIssue struct {
	FilePath    string `json:"file_path"`
	Severity    string `json:"severity"`
	Rule        string `json:"rule"`
	Message     string `json:"message"`
	Explanation string `json:"explanation,omitempty"`
	Fix         string `json:"fix,omitempty"`
	Line        int    `json:"line,omitempty"`
}

func (f *JSONFormatter) Format(w io.Writer, result *Result, contentDir string) error {
	output := JSONOutput{
		ContentDir:   contentDir,
		FilesTotal:   result.FilesTotal,
		ErrorCount:   result.ErrorCount(),
		WarningCount: result.WarningCount(),
		InfoCount:    result.InfoCount(),
		Issues:       []JSONIssue{},
	}
	for _, issue := range result.Issues {
		output.Issues = append(output.Issues, JSONIssue{
			FilePath:    issue.FilePath,
			Severity:    issue.Severity.String(),
			Rule:        issue.Rule,
			Message:     issue.Message,
			Explanation: issue.Explanation,
			Fix:         issue.Fix,
			Line:        issue.Line,
		})
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
