package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"ktp/internal/domain"
)

// Formatter formats and displays output
type Formatter struct {
	out  io.Writer
	root string
}

// NewFormatter creates a Formatter writing to stdout. Paths are shown relative to root.
func NewFormatter(root string) *Formatter {
	return &Formatter{out: os.Stdout, root: root}
}

// SetOutput redirects the formatter
func (f *Formatter) SetOutput(w io.Writer) {
	f.out = w
}

// PrintTestList prints discovered files, and their classes and methods when showTestCases.
func (f *Formatter) PrintTestList(files []*domain.TestNode, showTestCases bool) {
	if showTestCases {
		fmt.Fprintln(f.out, color.GreenString("Found %d test file(s) with test cases:\n", len(files)))
	} else {
		fmt.Fprintln(f.out, color.GreenString("Found %d test file(s):\n", len(files)))
	}

	for i, file := range files {
		last := i == len(files)-1
		fmt.Fprintln(f.out, color.CyanString("%s%s", branch(last), f.relPath(file.Location.Path)))
		if !showTestCases {
			continue
		}

		pad := "│   "
		if last {
			pad = "    "
		}
		classes := file.Children()
		if len(classes) == 0 {
			fmt.Fprintf(f.out, "%s└── %s\n", pad, color.RedString("(no test classes found)"))
		}
		for j, class := range classes {
			lastClass := j == len(classes)-1
			fmt.Fprintf(f.out, "%s%s%s\n", pad, branch(lastClass), color.YellowString(class.Label))

			inner := pad + "│   "
			if lastClass {
				inner = pad + "    "
			}
			methods := class.Children()
			for k, m := range methods {
				fmt.Fprintf(f.out, "%s%s%s\n", inner, branch(k == len(methods)-1), m.Label)
			}
		}
		if !last {
			fmt.Fprintln(f.out)
		}
	}
}

func branch(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}

func (f *Formatter) relPath(path string) string {
	if f.root == "" {
		return path
	}
	if rel, err := filepath.Rel(f.root, path); err == nil {
		return rel
	}
	return path
}

// PrintOutcome prints one finished run item as a line
func (f *Formatter) PrintOutcome(o domain.Outcome) {
	name := o.Selector.String()
	if name == "" {
		name = "run"
	}
	switch o.Status {
	case domain.StatusPassed:
		fmt.Fprintf(f.out, "%s %s\n", color.GreenString("✓"), name)
	case domain.StatusFailed:
		fmt.Fprintf(f.out, "%s %s: %s\n", color.RedString("✗"), name, o.Message)
	}
}

// PrintMetaStats displays the statistics of a stored run
func (f *Formatter) PrintMetaStats(output *domain.TestResultsOutput) {
	meta := output.Meta

	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, color.CyanString("╔═══════════════════════════════════════════════════════════════╗"))
	fmt.Fprintln(f.out, color.CyanString("║                      Test Run Statistics                      ║"))
	fmt.Fprintln(f.out, color.CyanString("╚═══════════════════════════════════════════════════════════════╝"))
	fmt.Fprintln(f.out)

	rows := []struct {
		label string
		value string
		paint func(format string, a ...interface{}) string
	}{
		{"Run Items", fmt.Sprint(meta.TotalItems), color.WhiteString},
		{"Accepted", fmt.Sprint(meta.PassedItems), color.GreenString},
		{"Failed", fmt.Sprint(meta.FailedItems), color.RedString},
		{"Cancelled", fmt.Sprint(meta.Cancelled), color.WhiteString},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), color.WhiteString},
		{"Run ID", meta.RunID, color.WhiteString},
	}

	fmt.Fprintln(f.out, "┌─────────────────────────────────┬──────────────────────────────────────┐")
	for i, r := range rows {
		fmt.Fprintf(f.out, "│ %-31s │ %s │\n", r.label, r.paint("%-36s", r.value))
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, "├─────────────────────────────────┼──────────────────────────────────────┤")
		}
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴──────────────────────────────────────┘")

	fmt.Fprintln(f.out)
	if meta.FailedItems == 0 {
		fmt.Fprintln(f.out, color.GreenString("✓ All test commands were dispatched"))
		return
	}
	fmt.Fprintln(f.out, color.RedString("✗ %d run item(s) failed", meta.FailedItems))
	for _, d := range output.Details {
		name := d.Selector
		if name == "" {
			name = "run"
		}
		fmt.Fprintf(f.out, "  %s %s\n", color.RedString("|_ %s:", name), d.Message)
	}
}
