// Package output renders admin command results as colored text, tables or JSON.
package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
)

// Format is an output format
type Format string

const (
	FormatText  Format = "text"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates a --output flag value
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatTable, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, table or json)", s)
}

// Printer writes results in one format. Status lines are suppressed in JSON
// mode so stdout stays parseable.
type Printer struct {
	w      io.Writer
	format Format
}

func New(w io.Writer, format Format) *Printer {
	if w == nil {
		w = color.Output
	}
	return &Printer{w: w, format: format}
}

func (p *Printer) Format() Format { return p.format }

func (p *Printer) Success(msg string, args ...any) { p.status(color.FgGreen, "", msg, args) }
func (p *Printer) Info(msg string, args ...any)    { p.status(color.FgCyan, "", msg, args) }
func (p *Printer) Warning(msg string, args ...any) { p.status(color.FgYellow, "Warning: ", msg, args) }
func (p *Printer) Error(msg string, args ...any)   { p.status(color.FgRed, "Error: ", msg, args) }

func (p *Printer) status(attr color.Attribute, prefix, msg string, args []any) {
	if p.format == FormatJSON {
		return
	}
	color.New(attr).Fprintf(p.w, prefix+msg+"\n", args...)
}

// Value prints a single result. Text and table modes print the title then
// indented JSON.
func (p *Printer) Value(title string, data any) error {
	if p.format != FormatJSON && title != "" {
		color.New(color.Bold).Fprintf(p.w, "%s:\n", title)
	}
	return p.encode(data)
}

// Rows prints a list. JSON mode encodes data; the other modes print rows
// under headers.
func (p *Printer) Rows(data any, headers []string, rows [][]string) error {
	if p.format == FormatJSON {
		return p.encode(data)
	}
	p.table(headers, rows)
	return nil
}

func (p *Printer) encode(data any) error {
	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(p.w, string(out))
	return err
}

func (p *Printer) table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)

	for i, h := range headers {
		bold.Fprint(w, h)
		if i < len(headers)-1 {
			fmt.Fprint(w, "\t")
		}
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprint(w, cell)
			if i < len(row)-1 {
				fmt.Fprint(w, "\t")
			}
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}
