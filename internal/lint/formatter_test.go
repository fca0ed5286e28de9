package lint

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	return &Result{
		FilesTotal: 4,
		Issues: []Issue{
			{
				FilePath: "patterns.yaml",
				Severity: SeverityError,
				Rule:     "nav-target-exists",
				Message:  `nav entry "Gone" points at missing document components/gone.md`,
				Fix:      "Create the document or remove the entry from the manifest.",
			},
			{
				FilePath:    "state/stores.md",
				Severity:    SeverityWarning,
				Rule:        "orphaned-page",
				Message:     "document is not reachable from the navigation",
				Explanation: `"Shared Stores" is built but no sidebar entry links to it.`,
				Line:        0,
			},
			{
				FilePath: "forms/v-model.md",
				Severity: SeverityInfo,
				Rule:     "missing-uid",
				Message:  "document has no uid",
				Fix:      "Run: patterns fix",
			},
		},
	}
}

func TestTextFormatter_Format_ContainsIssuesAndTotals(t *testing.T) {
	var buf bytes.Buffer

	err := NewFormatter("text").Format(&buf, sampleResult(), "docs")

	require.NoError(t, err)
	out := buf.String()
	require.Contains(t, out, "Checking catalog in: docs")
	require.Contains(t, out, "✗ patterns.yaml")
	require.Contains(t, out, "ERROR [nav-target-exists]")
	require.Contains(t, out, "⚠ state/stores.md")
	require.Contains(t, out, "4 documents scanned")
	require.Contains(t, out, "1 error (blocks build)")
	require.Contains(t, out, "1 warning (should fix)")
	require.Contains(t, out, "1 info")
	require.Contains(t, out, "The catalog has errors")
}

func TestTextFormatter_Format_CleanResult_Celebrates(t *testing.T) {
	var buf bytes.Buffer

	err := NewFormatter("text").Format(&buf, &Result{FilesTotal: 12}, "docs")

	require.NoError(t, err)
	require.Contains(t, buf.String(), "passes every check")
}

func TestTextFormatter_Format_IssueWithLine_AppendsLineNumber(t *testing.T) {
	var buf bytes.Buffer
	result := &Result{FilesTotal: 1, Issues: []Issue{{
		FilePath: "a.md",
		Severity: SeverityError,
		Rule:     "unbalanced-fences",
		Message:  "code fence ```js is never closed",
		Line:     7,
	}}}

	err := (&TextFormatter{}).Format(&buf, result, "docs")

	require.NoError(t, err)
	require.Contains(t, buf.String(), "✗ a.md:7")
}

func TestJSONFormatter_Format_ProducesParsableReport(t *testing.T) {
	var buf bytes.Buffer

	err := NewFormatter("json").Format(&buf, sampleResult(), "docs")

	require.NoError(t, err)
	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Equal(t, "docs", out.ContentDir)
	require.Equal(t, 4, out.FilesTotal)
	require.Equal(t, 1, out.ErrorCount)
	require.Equal(t, 1, out.WarningCount)
	require.Equal(t, 1, out.InfoCount)
	require.Len(t, out.Issues, 3)
	require.Equal(t, "ERROR", out.Issues[0].Severity)
}

func TestJSONFormatter_Format_EmptyResult_EmitsEmptyIssueArray(t *testing.T) {
	var buf bytes.Buffer

	err := NewFormatter("json").Format(&buf, &Result{FilesTotal: 2, Issues: []Issue{}}, "docs")

	require.NoError(t, err)
	require.Contains(t, buf.String(), `"issues": []`)
	require.False(t, strings.Contains(buf.String(), "null"))
}
