package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"ktp/internal/domain"
	"ktp/internal/storage"
)

// FailureViewer displays failed run items in an interactive TUI
type FailureViewer struct {
	storage storage.Storage
}

// NewFailureViewer creates a new FailureViewer. Resolved marks are written back through st.
func NewFailureViewer(st storage.Storage) *FailureViewer {
	return &FailureViewer{storage: st}
}

// View displays failures with a list on the left and details on the right
func (fv *FailureViewer) View(results *domain.TestResultsOutput) error {
	if len(results.Details) == 0 {
		color.Green("✓ No failed run items found!")
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i := range results.Details {
		list.AddItem(failureListText(results.Details[i], i), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(tview.NewFlex().
			AddItem(detailsView, 0, 1, false).
			AddItem(tview.NewBox(), 2, 0, false), 0, 1, false)

	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(
			" Failed Items (%d total, %d unresolved) | ↑↓ navigate, [yellow]R[white] mark resolved, → details, ← back, Ctrl+C exit ",
			len(results.Details), countUnresolved(results.Details)))
	}

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(results.Details) {
			return
		}
		statsView.SetText(formatFailureStats(results.Details[index], index+1))
		detailsView.SetText(formatFailureDetails(results.Details[index]))
	}

	var saveErr error
	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() != 'r' && event.Rune() != 'R' {
				return event
			}
			index := list.GetCurrentItem()
			if index < 0 || index >= len(results.Details) {
				return nil
			}
			results.Details[index].Resolved = !results.Details[index].Resolved
			list.SetItemText(index, failureListText(results.Details[index], index), "")
			updateHeader()
			updateDetails()
			if err := fv.storage.SaveOutput(results); err != nil {
				saveErr = err
			}
			return nil
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})

	updateHeader()
	updateDetails()

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(body, 0, 1, true)

	if err := app.SetRoot(layout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if saveErr != nil {
		return fmt.Errorf("save resolved status: %w", saveErr)
	}
	return nil
}

func countUnresolved(failures []domain.TestFailure) int {
	count := 0
	for _, f := range failures {
		if !f.Resolved {
			count++
		}
	}
	return count
}

func failureName(failure domain.TestFailure, number int) string {
	if failure.Selector != "" {
		return failure.Selector
	}
	return fmt.Sprintf("Run item %d", number)
}

func failureListText(failure domain.TestFailure, index int) string {
	name := failureName(failure, index+1)
	if failure.Resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, name)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", index+1, name)
}

// formatFailureDetails renders a failure using tview color tags
func formatFailureDetails(failure domain.TestFailure) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ %s[white]\n\n", failureName(failure, 0))
	if failure.FilePath != "" {
		fmt.Fprintf(&b, "[cyan]File: %s[white]\n", failure.FilePath)
		if failure.Line > 0 {
			fmt.Fprintf(&b, "[yellow]Location: %s:%d[white]\n", failure.FilePath, failure.Line)
		}
		b.WriteString("\n")
	}
	if failure.ID != "" {
		fmt.Fprintf(&b, "[cyan]ID: %s[white]\n\n", failure.ID)
	}
	if failure.Message != "" {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n", failure.Message)
	}
	return b.String()
}

func formatFailureStats(failure domain.TestFailure, number int) string {
	path := failure.FilePath
	if path == "" {
		path = "Unknown path"
	}
	return fmt.Sprintf("[cyan]path:[white] [yellow]%s[white]::[yellow]%s[white]\n", path, failureName(failure, number))
}
