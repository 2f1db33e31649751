package tui

import "github.com/charmbracelet/lipgloss"

// NameWidth is the column width reserved for "Family Given" in the browser.
const NameWidth = 28

var (
	accent = lipgloss.AdaptiveColor{Light: "4", Dark: "12"}
	dim    = lipgloss.AdaptiveColor{Light: "240", Dark: "245"}
	red    = lipgloss.AdaptiveColor{Light: "1", Dark: "9"}
	green  = lipgloss.AdaptiveColor{Light: "2", Dark: "10"}
)

// TitleStyle renders the browser heading.
func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(accent)
}

// SelectedStyle renders the row under the cursor.
func SelectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(accent)
}

// DimStyle renders secondary text such as empty-list notices.
func DimStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(dim)
}

// StatusStyle renders the status line, red for failures.
func StatusStyle(failed bool) lipgloss.Style {
	if failed {
		return lipgloss.NewStyle().Foreground(red)
	}
	return lipgloss.NewStyle().Foreground(green)
}

// HeaderStyle renders table header cells.
func HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
}

// CellStyle renders table body cells.
func CellStyle() lipgloss.Style {
	return lipgloss.NewStyle().Padding(0, 1)
}

// BorderStyle renders table borders.
func BorderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(dim)
}
