package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"ktp/internal/domain"
)

// ProgressBar shows run progress and implements the scheduler's Reporter
type ProgressBar struct {
	bar    *progressbar.ProgressBar
	passed int
	failed int
}

// NewProgressBar creates a new progress bar for count run items
func NewProgressBar(count int) *ProgressBar {
	return newProgressBar(count, os.Stderr)
}

func newProgressBar(count int, w io.Writer) *ProgressBar {
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetDescription(describe(0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar}
}

func describe(passed, failed int) string {
	return color.CyanString("Dispatching tests: ") +
		color.GreenString("[accepted: %d", passed) +
		" | " +
		color.RedString("failed: %d]", failed)
}

// Report updates the bar for finished items
func (p *ProgressBar) Report(o domain.Outcome) {
	switch o.Status {
	case domain.StatusPassed:
		p.passed++
	case domain.StatusFailed:
		p.failed++
	default:
		return
	}
	_ = p.bar.Set(p.passed + p.failed)
	p.bar.Describe(describe(p.passed, p.failed))
}

// Counts returns how many items passed and failed so far
func (p *ProgressBar) Counts() (passed, failed int) {
	return p.passed, p.failed
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}
