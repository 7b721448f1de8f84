// Package console renders CLI output, styled when stdout is a terminal.
package console

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Position is a place in a source file. Line 0 means unknown.
type Position struct {
	File string
	Line int
}

// Diagnostic is one finding to show the user.
type Diagnostic struct {
	Position Position
	Type     string // "error", "warning", "info"
	Message  string
	// Context is the checked text; Start and End are byte offsets of the
	// flagged span inside it.
	Context    string
	Start, End int
	Hint       string
}

var (
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))

	infoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))

	filePathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#BD93F9"))

	contextLineStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F8F8F2"))

	highlightStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#FF5555")).
			Foreground(lipgloss.Color("#282A36"))

	hintStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#50FA7B"))

	verboseStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#6272A4"))
)

// isTTY is swapped out by tests.
var isTTY = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func applyStyle(style lipgloss.Style, text string) string {
	if isTTY() {
		return style.Render(text)
	}
	return text
}

// ToRelativePath converts an absolute path to one relative to the working
// directory, returning path unchanged when that is not possible.
func ToRelativePath(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil {
		return path
	}
	return rel
}

// FormatDiagnostic renders d in the IDE-parseable "file:line: type: message"
// form followed by the context with the flagged span highlighted.
func FormatDiagnostic(d Diagnostic) string {
	var out strings.Builder

	var typeStyle lipgloss.Style
	prefix := d.Type
	switch d.Type {
	case "warning":
		typeStyle = warningStyle
	case "info":
		typeStyle = infoStyle
	default:
		typeStyle, prefix = errorStyle, "error"
	}

	if d.Position.File != "" {
		line := "?"
		if d.Position.Line > 0 {
			line = fmt.Sprint(d.Position.Line)
		}
		out.WriteString(applyStyle(filePathStyle, ToRelativePath(d.Position.File)+":"+line+":"))
		out.WriteString(" ")
	}
	out.WriteString(applyStyle(typeStyle, prefix+":"))
	out.WriteString(" ")
	out.WriteString(d.Message)
	out.WriteString("\n")

	if d.Context != "" {
		out.WriteString(renderContext(d))
	}
	if d.Hint != "" {
		out.WriteString(applyStyle(hintStyle, "  hint: "))
		out.WriteString(d.Hint)
		out.WriteString("\n")
	}
	return out.String()
}

// renderContext prints the context line holding the flagged span with a
// caret underline.
func renderContext(d Diagnostic) string {
	start, end := max(d.Start, 0), min(d.End, len(d.Context))
	if start > end {
		start = end
	}
	lineStart := strings.LastIndexByte(d.Context[:start], '\n') + 1
	lineEnd := len(d.Context)
	if i := strings.IndexByte(d.Context[end:], '\n'); i >= 0 {
		lineEnd = end + i
	}
	if end > lineEnd {
		end = lineEnd
	}

	var out strings.Builder
	out.WriteString("  | ")
	out.WriteString(applyStyle(contextLineStyle, d.Context[lineStart:start]))
	out.WriteString(applyStyle(highlightStyle, d.Context[start:end]))
	out.WriteString(applyStyle(contextLineStyle, d.Context[end:lineEnd]))
	out.WriteString("\n")
	if end > start {
		pad := strings.Repeat(" ", 4+lipgloss.Width(d.Context[lineStart:start]))
		out.WriteString(pad)
		out.WriteString(applyStyle(errorStyle, strings.Repeat("^", lipgloss.Width(d.Context[start:end]))))
		out.WriteString("\n")
	}
	return out.String()
}

func FormatSuccessMessage(message string) string {
	return applyStyle(successStyle, "✓ ") + message
}

func FormatInfoMessage(message string) string {
	return applyStyle(infoStyle, "ℹ ") + message
}

func FormatWarningMessage(message string) string {
	return applyStyle(warningStyle, "⚠ ") + message
}

// FormatErrorMessage formats a simple error message for stderr.
func FormatErrorMessage(message string) string {
	return applyStyle(errorStyle, "✗ ") + message
}

func FormatVerboseMessage(message string) string {
	return applyStyle(verboseStyle, "🔍 ") + message
}

var (
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#BD93F9")).
				Background(lipgloss.Color("#44475A"))

	tableCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8F8F2"))

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6272A4"))
)

// TableConfig describes a summary table.
type TableConfig struct {
	Headers []string
	Rows    [][]string
	Title   string
}

// RenderTable renders rows padded to the widest cell of each column.
func RenderTable(config TableConfig) string {
	if len(config.Headers) == 0 {
		return ""
	}
	var out strings.Builder
	if config.Title != "" {
		out.WriteString(applyStyle(successStyle, config.Title))
		out.WriteString("\n")
	}

	widths := make([]int, len(config.Headers))
	for i, h := range config.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range config.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	out.WriteString(renderTableRow(config.Headers, widths, tableHeaderStyle))
	out.WriteString("\n")
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	out.WriteString(renderTableRow(sep, widths, tableBorderStyle))
	out.WriteString("\n")
	for _, row := range config.Rows {
		out.WriteString(renderTableRow(row, widths, tableCellStyle))
		out.WriteString("\n")
	}
	return out.String()
}

func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	var row strings.Builder
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		row.WriteString(applyStyle(style, cell+pad))
		if i < len(cells)-1 && i < len(widths)-1 {
			row.WriteString(applyStyle(tableBorderStyle, " | "))
		}
	}
	return row.String()
}
