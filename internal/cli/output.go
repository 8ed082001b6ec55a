package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	portalAuth "github.com/MrEthical07/portalAuth"
)

// styles holds the terminal palette for command output.
type styles struct {
	Title   lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		Key:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(12),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

type printer struct {
	out io.Writer
	st  styles
}

func (p printer) ok(msg string) {
	fmt.Fprintln(p.out, p.st.Success.Render("✓ "+msg))
}

func (p printer) fail(msg string) {
	fmt.Fprintln(p.out, p.st.Error.Render("✗ "+msg))
}

func (p printer) title(msg string) {
	fmt.Fprintln(p.out, p.st.Title.Render(msg))
}

func (p printer) field(key, value string) {
	fmt.Fprintln(p.out, p.st.Key.Render(key)+p.st.Value.Render(value))
}

func (p printer) muted(msg string) {
	fmt.Fprintln(p.out, p.st.Muted.Render(msg))
}

func (p printer) state(state portalAuth.State) {
	p.field("phase", state.Phase().String())
	if state.User == nil {
		return
	}
	u := state.User
	p.field("id", u.ID)
	p.field("email", u.Email)
	if u.DisplayName != "" {
		p.field("name", u.DisplayName)
	}
	p.field("role", u.Role.String())
	if u.Plan != "" {
		p.field("plan", u.Plan)
	}
	p.field("credits", fmt.Sprint(u.Credits))
}

// table renders rows with padded columns. The first row is the header.
func (p printer) table(rows [][]string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for n, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		line := strings.TrimRight(strings.Join(cells, "  "), " ")
		if n == 0 {
			line = p.st.Title.Render(line)
		}
		fmt.Fprintln(p.out, line)
	}
}
