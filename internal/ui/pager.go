package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"
)

// Pager shows long content outside the TUI
type Pager interface {
	Show(content string) error
}

// RenderHelpContent generates the help page shown in the pager
func RenderHelpContent() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("78")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	line := func(k, desc string) string {
		return fmt.Sprintf("  %s %s\n", keyStyle.Render(fmt.Sprintf("%-12s", k)), descStyle.Render(desc))
	}

	var help strings.Builder

	help.WriteString(titleStyle.Render("Midlo Help"))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Addresses"))
	help.WriteString("\n")
	help.WriteString(line("Tab", "Next address field"))
	help.WriteString(line("Shift+Tab", "Previous address field"))
	help.WriteString(line("↑/↓", "Move through suggestions"))
	help.WriteString(line("Enter", "Pick suggestion, or search when both fields are set"))
	help.WriteString(line("Esc", "Close suggestions"))
	help.WriteString(line("F1", "Show this help"))
	help.WriteString("\n")

	help.WriteString(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).Render(
		"  Suggestions appear after 3 characters and a short pause in typing."))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Places"))
	help.WriteString("\n")
	help.WriteString(line("↑/↓", "Move through places"))
	help.WriteString(line("Enter", "Show place details"))
	help.WriteString(line("o", "Open in Google Maps"))
	help.WriteString(line("y", "Copy share link"))
	help.WriteString(line("v", "View list or details in the pager"))
	help.WriteString(line("b", "Back"))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Other"))
	help.WriteString("\n")
	help.WriteString(line("?", "Show this help"))
	help.WriteString(line("Ctrl+C", "Quit"))

	return strings.TrimRight(help.String(), "\n")
}

// PagerOps runs the ov pager, releasing the terminal from the program while
// it is open
type PagerOps struct {
	mu      sync.Mutex
	program *tea.Program
}

// NewPagerOps creates a pager; SetProgram must be called before Show
func NewPagerOps() *PagerOps {
	return &PagerOps{}
}

// SetProgram attaches the running program
func (p *PagerOps) SetProgram(program *tea.Program) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.program = program
}

// Show pages content with ov
func (p *PagerOps) Show(content string) error {
	p.mu.Lock()
	program := p.program
	p.mu.Unlock()
	if program == nil {
		return fmt.Errorf("program not set")
	}

	if err := program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		// give ov time to let go of the terminal
		time.Sleep(100 * time.Millisecond)
		_ = program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to start pager: %w", err)
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// showInPager runs the pager as a command
func showInPager(p Pager, content string) tea.Cmd {
	return func() tea.Msg {
		return pagerDoneMsg{err: p.Show(content)}
	}
}
