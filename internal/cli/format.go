package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Color functions - fatih/color disables them when output is not a TTY
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	valueColor   = color.New(color.FgHiBlack)
	dimColor     = color.New(color.FgHiBlack)
)

// printer writes formatted output for one command. It implements
// engine.Reporter and is safe for concurrent use.
type printer struct {
	mu  sync.Mutex
	out io.Writer
}

func newPrinter(cmd *cobra.Command) *printer {
	return &printer{out: cmd.OutOrStdout()}
}

// Step prints a progress message.
func (p *printer) Step(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = dimColor.Fprintf(p.out, "  %s\n", msg)
}

// Warn prints a warning message with a warning symbol.
func (p *printer) Warn(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = warningColor.Fprintf(p.out, "⚠ %s\n", msg)
}

// Section prints a section header
func (p *printer) Section(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.out)
	_, _ = headerColor.Fprintf(p.out, "▸ %s\n", title)
	_, _ = fmt.Fprintln(p.out)
}

// Success prints a success message with a checkmark
func (p *printer) Success(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = successColor.Fprintf(p.out, "✓ %s\n", msg)
}

// LabelValue prints a label-value pair with proper formatting
func (p *printer) LabelValue(label, value string) {
	p.LabelValueWithColor(label, value, valueColor)
}

// LabelValueWithColor prints a label-value pair with a custom value color
func (p *printer) LabelValueWithColor(label, value string, valueClr *color.Color) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = labelColor.Fprintf(p.out, "  %s: ", label)
	_, _ = valueClr.Fprintln(p.out, value)
}

// List prints a list of items with bullet points
func (p *printer) List(items []string, indent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	indentStr := strings.Repeat("  ", indent)
	for _, item := range items {
		_, _ = infoColor.Fprintf(p.out, "%s• %s\n", indentStr, item)
	}
}

// Table prints a simple multi-column table
func (p *printer) Table(headers []string, rows [][]string) {
	if len(headers) == 0 || len(rows) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	// Calculate column widths
	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(colWidths) && len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	// Print header
	_, _ = fmt.Fprint(p.out, "  ")
	for i, header := range headers {
		if i > 0 {
			_, _ = fmt.Fprint(p.out, "  ")
		}
		_, _ = headerColor.Fprintf(p.out, "%-*s", colWidths[i], header)
	}
	_, _ = fmt.Fprintln(p.out)

	// Print separator
	_, _ = fmt.Fprint(p.out, "  ")
	for i, width := range colWidths {
		if i > 0 {
			_, _ = fmt.Fprint(p.out, "  ")
		}
		_, _ = fmt.Fprint(p.out, strings.Repeat("-", width))
	}
	_, _ = fmt.Fprintln(p.out)

	// Print rows
	for _, row := range rows {
		_, _ = fmt.Fprint(p.out, "  ")
		for i, cell := range row {
			if i >= len(colWidths) {
				break
			}
			if i > 0 {
				_, _ = fmt.Fprint(p.out, "  ")
			}
			_, _ = valueColor.Fprintf(p.out, "%-*s", colWidths[i], cell)
		}
		_, _ = fmt.Fprintln(p.out)
	}
}

// EmptyState prints a message when there's no data to show
func (p *printer) EmptyState(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = dimColor.Fprintf(p.out, "  %s\n", msg)
}

// PrintError prints an error message to stderr
func PrintError(msg string) {
	_, _ = errorColor.Fprintf(os.Stderr, "✗ %s\n", msg)
}

// formatCount formats a count with the singular or plural noun
func formatCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
