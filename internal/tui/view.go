package tui

import (
	"fmt"
	"strings"

	"github.com/arnavshah/shiftboard/pkg/calendar"
	"github.com/arnavshah/shiftboard/pkg/controller"
	"github.com/arnavshah/shiftboard/pkg/engine"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	headStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#AAAAAA"))
	openStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
	assignedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DDDDDD"))
	mineStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7BD88F"))
	cursorStyle = lipgloss.NewStyle().
			Reverse(true)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1)
	disabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555"))
)

const (
	labelWidth   = 10
	minCellWidth = 10
)

func (a *App) View() string {
	board := a.ctrl.Board()
	var b strings.Builder

	b.WriteString(titleStyle.Render(a.title(board)))
	b.WriteString("\n\n")

	if !board.Viewer.IsStaff() {
		b.WriteString(errorStyle.Render(engine.ErrNotStaff.Error()))
		b.WriteString("\n")
		b.WriteString(footerStyle.Render("q quit"))
		return b.String()
	}

	if board.Loading && !board.Loaded {
		b.WriteString("Loading schedule...\n")
	}
	b.WriteString(a.renderGrid(board))
	b.WriteString("\n")
	b.WriteString(a.renderDetail(board))
	if other := renderUnknown(board); other != "" {
		b.WriteString("\n")
		b.WriteString(other)
	}
	b.WriteString("\n")
	b.WriteString(a.renderFooter(board))
	return b.String()
}

func (a *App) title(board controller.Board) string {
	if len(board.Days) == 0 {
		return "Shift schedule"
	}
	first := board.Days[0].Date
	last := board.Days[len(board.Days)-1].Date
	return fmt.Sprintf("Shift schedule · %s to %s", first.Format("Jan 2"), last.Format("Jan 2, 2006"))
}

func (a *App) cellWidth() int {
	width := a.width
	if width == 0 {
		width = 120
	}
	w := (width - labelWidth - 2) / calendar.DaysPerWeek
	return max(minCellWidth, w)
}

func (a *App) renderGrid(board controller.Board) string {
	w := a.cellWidth()
	cell := lipgloss.NewStyle().Width(w).MaxWidth(w)
	label := lipgloss.NewStyle().Width(labelWidth).MaxWidth(labelWidth)

	rows := make([]string, 0, len(board.Slots)+1)
	head := []string{label.Render("")}
	for _, d := range board.Days {
		head = append(head, headStyle.Inherit(cell).Render(d.Date.Format("Mon 01/02")))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, head...))

	for si, s := range board.Slots {
		row := []string{label.Render(s.Label)}
		for di, d := range board.Days {
			view := board.Cell(d.ISO, s.Key)
			text, style := cellText(view)
			style = style.Inherit(cell)
			if di == a.day && si == a.slot {
				style = cursorStyle.Inherit(style)
			}
			row = append(row, style.Render(text))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return strings.Join(rows, "\n")
}

func cellText(view engine.CellView) (string, lipgloss.Style) {
	text := view.Summary
	style := assignedStyle
	switch view.State {
	case engine.CellOpen:
		text = "·"
		style = openStyle
	case engine.CellViewerAssigned:
		style = mineStyle
	}
	if view.Pending {
		text = "..."
	}
	if view.Error != "" {
		style = errorStyle
	}
	return text, style
}

func (a *App) renderDetail(board controller.Board) string {
	date, slot, ok := a.selected()
	if !ok {
		return ""
	}
	view := board.Cell(date, slot)
	s, _ := calendar.SlotByKey(slot)

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", date, s.Window)
	if len(view.Entries) == 0 {
		b.WriteString(openStyle.Render(view.Summary))
		b.WriteString("\n")
	}
	for i, e := range view.Entries {
		marker := "  "
		if i == a.entry {
			marker = "> "
		}
		line := marker + e.Label
		if e.Remove != nil {
			line += "  " + button("x", *e.Remove)
		}
		b.WriteString(line + "\n")
	}

	var controls []string
	if view.Claim != nil {
		controls = append(controls, button("c", *view.Claim))
	}
	if view.Assign != nil {
		field := board.Input(date, slot)
		if a.editing {
			field = a.input.View()
		} else if field == "" {
			field = "staff id"
		}
		controls = append(controls, "["+field+"] "+button("a", *view.Assign))
	}
	if view.AssignMe != nil {
		controls = append(controls, button("m", *view.AssignMe))
	}
	if len(controls) > 0 {
		b.WriteString(strings.Join(controls, "   "))
		b.WriteString("\n")
	}
	if view.Error != "" {
		b.WriteString(errorStyle.Render(view.Error))
		b.WriteString("\n")
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func button(key string, btn engine.Button) string {
	text := key + " " + btn.Label
	if btn.Disabled {
		return disabledStyle.Render(text)
	}
	return text
}

func renderUnknown(board controller.Board) string {
	if len(board.Unknown) == 0 {
		return ""
	}
	lines := []string{headStyle.Render("Other")}
	for _, a := range board.Unknown {
		lines = append(lines, fmt.Sprintf("%s %s  %s", a.ShiftDate, a.ShiftName, a.DisplayName()))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderFooter(board controller.Board) string {
	status := a.status.Last()
	if board.Error != "" {
		status = board.Error
	} else if status == "" {
		status = a.lastErr
	}
	help := "←/→/↑/↓ move · [ ] week · t today · r refresh · tab entry · x remove · q quit"
	if board.Viewer.CanManageAll() {
		help = "a assign · m assign me · " + help
	} else {
		help = "c claim · " + help
	}
	switch {
	case board.Mutating:
		help = "saving... " + help
	case a.busy > 0:
		help = "working... " + help
	}
	if status == "" {
		return footerStyle.Render(help)
	}
	return footerStyle.Render(status + "\n" + help)
}
