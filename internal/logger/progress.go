package logger

import (
	"fmt"

	"github.com/fatih/color"
)

// Progress renders per-entry relocation progress as an ASCII bar with a
// counter and percentage, followed by the path being processed. It is
// purely observational; rendering never affects control flow.
type Progress struct {
	total       int
	width       int
	enableColor bool
}

// NewProgress creates a Progress renderer for a batch of total entries.
// width is the bar width in characters; values below 1 fall back to 10.
func NewProgress(total, width int, enableColor bool) *Progress {
	if width < 1 {
		width = 10
	}
	return &Progress{
		total:       total,
		width:       width,
		enableColor: enableColor,
	}
}

// Line renders the progress line for the current 1-based entry index.
// Example: [=====     ] 12/40 (30%) /target/some/long/path
func (p *Progress) Line(current int, path string) string {
	perc := p.percentage(current)

	filled := (perc * p.width) / 100
	if filled > p.width {
		filled = p.width
	}

	bar := make([]byte, 0, p.width+2)
	bar = append(bar, '[')
	for i := 0; i < p.width; i++ {
		if i < filled {
			bar = append(bar, '=')
		} else {
			bar = append(bar, ' ')
		}
	}
	bar = append(bar, ']')

	line := fmt.Sprintf("%s %d/%d (%d%%) %s", bar, current, p.total, perc, truncatePath(path, 60))

	if p.enableColor {
		if perc == 100 {
			return color.New(color.FgGreen).Sprint(line)
		}
		return color.New(color.FgCyan).Sprint(line)
	}
	return line
}

func (p *Progress) percentage(current int) int {
	if p.total == 0 {
		return 0
	}
	perc := (current * 100) / p.total
	if perc > 100 {
		return 100
	}
	if perc < 0 {
		return 0
	}
	return perc
}

// truncatePath shortens long paths for display, keeping the tail since the
// deepest components are the interesting part of a long path.
func truncatePath(path string, max int) string {
	runes := []rune(path)
	if len(runes) <= max {
		return path
	}
	return "..." + string(runes[len(runes)-max:])
}
