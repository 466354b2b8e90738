package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/mcpbridge/internal/errors"
)

// Format specifies the output format for validation reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// Reporter formats and writes validation results.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		format: format,
	}
}

// report is the JSON shape of a validation run.
type report struct {
	Source   string  `json:"source"`
	Valid    bool    `json:"valid"`
	Servers  int     `json:"servers"`
	Errors   []issue `json:"errors"`
	Warnings []issue `json:"warnings"`
}

type issue struct {
	Server  string `json:"server,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Report writes the results of validating source, which defines servers
// servers.
func (r *Reporter) Report(source string, servers int, results []*ValidationError) error {
	if r.format == FormatJSON {
		return r.reportJSON(source, servers, results)
	}
	r.reportText(source, servers, results)
	return nil
}

func (r *Reporter) reportJSON(source string, servers int, results []*ValidationError) error {
	out := report{
		Source:   source,
		Valid:    !HasErrors(results),
		Servers:  servers,
		Errors:   toIssues(Errors(results)),
		Warnings: toIssues(Warnings(results)),
	}

	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(out), "encoding JSON report")
}

func toIssues(results []*ValidationError) []issue {
	issues := make([]issue, 0, len(results))
	for _, e := range results {
		issues = append(issues, issue{Server: e.ServerName, Field: e.Field, Message: e.Message})
	}
	return issues
}

func (r *Reporter) reportText(source string, servers int, results []*ValidationError) {
	errs := Errors(results)
	warnings := Warnings(results)

	if len(errs) == 0 && len(warnings) == 0 {
		fmt.Fprintln(r.out, color.GreenString("✓ %s is valid (%d server(s))", source, servers))
		return
	}

	var summary []string
	if len(errs) > 0 {
		summary = append(summary, color.RedString("%d error(s)", len(errs)))
	}
	if len(warnings) > 0 {
		summary = append(summary, color.YellowString("%d warning(s)", len(warnings)))
	}
	if len(errs) > 0 {
		fmt.Fprintf(r.out, "%s: validation failed: %s\n\n", source, strings.Join(summary, ", "))
	} else {
		fmt.Fprintf(r.out, "%s is valid (%d server(s)) with %s\n\n", source, servers, strings.Join(summary, ", "))
	}

	if len(errs) > 0 {
		fmt.Fprintln(r.out, "Errors:")
		for _, e := range errs {
			r.printIssue(e, color.FgRed)
		}
		fmt.Fprintln(r.out)
	}

	if len(warnings) > 0 {
		fmt.Fprintln(r.out, "Warnings:")
		for _, w := range warnings {
			r.printIssue(w, color.FgYellow)
		}
		fmt.Fprintln(r.out)
	}
}

// printIssue writes one line:  • server.field: message
func (r *Reporter) printIssue(e *ValidationError, c color.Attribute) {
	printer := color.New(c).SprintFunc()

	var sb strings.Builder
	sb.WriteString("  • ")

	location := e.ServerName
	if e.Field != "" {
		if location != "" {
			location += "."
		}
		location += e.Field
	}
	if location != "" {
		sb.WriteString(printer(location))
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)

	fmt.Fprintln(r.out, sb.String())
}
