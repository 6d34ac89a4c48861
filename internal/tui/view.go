package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/calvinalkan/jobsheet/internal/sheet"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4")).Padding(0, 1)
	cursorStyle    = lipgloss.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15"))
	editStyle      = lipgloss.NewStyle().Background(lipgloss.Color("3")).Foreground(lipgloss.Color("0"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

const (
	minColWidth = 4
	maxColWidth = 28
	numberWidth = 3

	// title, tabs, info, header, separator, status, prompt, help
	chromeLines = 8
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewTitle())
	b.WriteString("\n")
	b.WriteString(m.viewTabs())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.viewInfo()))
	b.WriteString("\n")
	b.WriteString(m.viewGrid())
	b.WriteString(m.viewStatus())
	b.WriteString("\n")

	if m.mode == modePrompt {
		b.WriteString(statusStyle.Render(" "+m.prompt.label()) + m.input.View())
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(helpText(m.mode)))

	return b.String()
}

func (m Model) viewTitle() string {
	title := titleStyle.Render(" Job Requests")

	user, err := m.app.User(m.ctx)
	if err != nil {
		return title + dimStyle.Render("  (not logged in)")
	}

	return title + dimStyle.Render(fmt.Sprintf("  %s <%s>", user.Name, user.Email))
}

func (m Model) viewTabs() string {
	view := m.app.View()
	parts := make([]string, 0, len(view.Tabs))

	for i, tab := range view.Tabs {
		label := tab
		if i < 9 {
			label = strconv.Itoa(i+1) + " " + tab
		}

		if tab == view.Tab {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) viewInfo() string {
	view := m.app.View()
	parts := []string{fmt.Sprintf(" %d rows", len(m.app.VisibleRows()))}

	if strings.TrimSpace(view.SearchText) != "" {
		parts = append(parts, fmt.Sprintf("search %q", view.SearchText))
	}

	if strings.TrimSpace(view.FilterText) != "" {
		parts = append(parts, fmt.Sprintf("filter %q", view.FilterText))
	}

	if view.Sort != nil {
		parts = append(parts, "sort "+view.Sort.Column.Key()+" "+string(view.Sort.Direction))
	}

	if hidden := view.HiddenColumns(); len(hidden) > 0 {
		parts = append(parts, fmt.Sprintf("%d hidden", len(hidden)))
	}

	return strings.Join(parts, "  ·  ")
}

func (m Model) viewGrid() string {
	cols := m.app.VisibleColumns()
	display := m.app.DisplayRows()
	widths := columnWidths(cols, display)
	view := m.app.View()

	var b strings.Builder

	var header strings.Builder

	header.WriteString(headerStyle.Render(fmt.Sprintf(" %*s ", numberWidth, "#")))

	for i, col := range cols {
		label := col.Label()
		if view.Sort != nil && view.Sort.Column == col {
			if view.Sort.Direction == sheet.SortAsc {
				label += " ▲"
			} else {
				label += " ▼"
			}
		}

		header.WriteString(dimStyle.Render("│"))
		header.WriteString(headerStyle.Render(" " + pad(label, widths[i]) + " "))
	}

	b.WriteString(m.clip(header.String()))
	b.WriteString("\n")

	var sep strings.Builder

	sep.WriteString(strings.Repeat("─", numberWidth+2))

	for _, w := range widths {
		sep.WriteString("┼")
		sep.WriteString(strings.Repeat("─", w+2))
	}

	b.WriteString(m.clip(dimStyle.Render(sep.String())))
	b.WriteString("\n")

	editCell, _, editing := m.app.Editor().Editing()

	start, end := m.rowWindow(len(display))

	for ri := start; ri < end; ri++ {
		line := display[ri]

		var row strings.Builder

		row.WriteString(dimStyle.Render(fmt.Sprintf(" %*d ", numberWidth, line.Number)))

		for ci, col := range cols {
			row.WriteString(dimStyle.Render("│"))

			value := ""
			if !line.Placeholder {
				value = col.Get(line.Row)
			}

			switch {
			case editing && editCell.Row == ri && editCell.Column == col:
				row.WriteString(editStyle.Render(" " + pad(m.editText(col), widths[ci]) + " "))
			case m.row == ri && m.col == ci:
				row.WriteString(cursorStyle.Render(" " + pad(value, widths[ci]) + " "))
			default:
				row.WriteString(" " + pad(value, widths[ci]) + " ")
			}
		}

		b.WriteString(m.clip(row.String()))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) editText(col sheet.Column) string {
	if isChoice(col) {
		return "◂ " + m.input.Value() + " ▸"
	}

	return m.input.Value() + "_"
}

// rowWindow returns the range of display rows that fit, keeping the cursor
// in view.
func (m Model) rowWindow(total int) (int, int) {
	height := m.height - chromeLines
	if m.height == 0 || height >= total {
		return 0, total
	}

	height = max(height, 1)
	start := max(m.row-height+1, 0)

	return start, min(start+height, total)
}

func (m Model) clip(line string) string {
	if m.width <= 0 {
		return line
	}

	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m Model) viewStatus() string {
	var parts []string

	if m.err != nil {
		parts = append(parts, errorStyle.Render(" error: "+m.err.Error()))
	} else if warning := m.app.StorageWarning(); warning != nil {
		parts = append(parts, errorStyle.Render(" unsaved: "+warning.Error()))
	}

	if m.status != "" {
		parts = append(parts, statusStyle.Render(" "+m.status))
	}

	state := m.app.Editor().State().String()

	return strings.Join(append(parts, dimStyle.Render(" ["+state+"]")), " ")
}

func helpText(mode mode) string {
	switch mode {
	case modeEdit:
		return " enter save  esc cancel  ←/→ choose status or priority"
	case modePrompt:
		return " enter apply  esc cancel"
	default:
		return " hjkl move  enter/e edit  s sort  / search  f filter  1-9 tab  + tab  H hide  U unhide  n new  q quit"
	}
}

func columnWidths(cols []sheet.Column, display []sheet.DisplayRow) []int {
	widths := make([]int, len(cols))

	for i, col := range cols {
		widths[i] = max(lipgloss.Width(col.Label())+2, minColWidth)

		for _, line := range display {
			if line.Placeholder {
				continue
			}

			widths[i] = max(widths[i], lipgloss.Width(col.Get(line.Row)))
		}

		widths[i] = min(widths[i], maxColWidth)
	}

	return widths
}

// pad truncates or right-pads s to exactly width cells.
func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		if width <= 1 {
			return string(runes[:width])
		}

		return string(runes[:width-1]) + "…"
	}

	return s + strings.Repeat(" ", width-len(runes))
}
