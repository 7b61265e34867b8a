package scan

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/gabssanto/modflat/internal/migrate"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	skipStyle   = lipgloss.NewStyle().Faint(true)
)

// relTo shortens p for display; p is returned unchanged if it is not under root
func relTo(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return p
	}
	return rel
}

// ShowScanSummary displays the markers found and where each one goes
func ShowScanSummary(out io.Writer, root string, planned []migrate.Move) {
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Found %d %s files:", len(planned), migrate.MarkerName)))
	fmt.Fprintln(out)

	for _, m := range planned {
		line := fmt.Sprintf("  %s -> %s", relTo(root, m.Marker), relTo(root, m.Destination))
		if m.Action == migrate.ActionSkipTestsDir {
			line = skipStyle.Render(fmt.Sprintf("  %s (kept: inside %s/)", relTo(root, m.Marker), migrate.TestsDirName))
		}
		fmt.Fprintln(out, line)
	}

	fmt.Fprintln(out)
}

// SelectMarkers presents an interactive multi-select UI for choosing which
// markers to migrate. The selection keeps the scan order.
func SelectMarkers(root string, planned []migrate.Move) ([]string, error) {
	if len(planned) == 0 {
		return nil, nil
	}

	options := make([]huh.Option[int], 0, len(planned))
	for i, m := range planned {
		if m.Action != migrate.ActionMove {
			continue
		}
		label := fmt.Sprintf("%s -> %s", relTo(root, m.Marker), relTo(root, m.Destination))
		options = append(options, huh.NewOption(label, i).Selected(true))
	}
	if len(options) == 0 {
		return nil, nil
	}

	var selectedIndices []int

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Select modules to flatten (all selected by default)").
				Description("space: toggle, enter: confirm, /: filter").
				Options(options...).
				Value(&selectedIndices),
		),
	)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	return pickMarkers(planned, selectedIndices), nil
}

// pickMarkers returns the markers at the given indices in planned order
func pickMarkers(planned []migrate.Move, indices []int) []string {
	chosen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		chosen[idx] = true
	}

	selected := make([]string, 0, len(indices))
	for i, m := range planned {
		if chosen[i] {
			selected = append(selected, m.Marker)
		}
	}
	return selected
}

// progress counts discoveries and moves on a single status line
type progress struct {
	w     io.Writer
	found int
	done  int
	total int
}

func newProgress(w io.Writer) *progress {
	if w == nil {
		w = io.Discard
	}
	return &progress{w: w}
}

func (p *progress) MarkerFound(string) {
	p.found++
	fmt.Fprintf(p.w, "\rFound %d %s files", p.found, migrate.MarkerName)
}

func (p *progress) MarkerMoved(migrate.Move) {
	p.done++
	fmt.Fprintf(p.w, "\rMoving %s files %d/%d", migrate.MarkerName, p.done, p.total)
}

// finish ends the status line
func (p *progress) finish() {
	if p.found > 0 || p.done > 0 {
		fmt.Fprintln(p.w)
	}
}
