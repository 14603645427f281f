// Package ui implements the interactive mode: a small bubbletea flow that
// produces a run configuration. It is purely a configuration source; the
// pipeline never depends on it.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"msisweep/internal/config"
)

type step int

const (
	stepMode step = iota
	stepVendors
	stepConfirm
)

var modeChoices = []struct {
	label  string
	mode   config.DisposalMode
	dryRun bool
}{
	{"Preview only (dry run)", config.ModeDelete, true},
	{"Quarantine orphaned files", config.ModeQuarantine, false},
	{"Delete orphaned files", config.ModeDelete, false},
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")).MarginBottom(1)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	helpStyle     = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#9CA3AF"))
	warnStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
)

// Selection is what the flow produces when the user confirms.
type Selection struct {
	Mode      config.DisposalMode
	DryRun    bool
	Vendors   []string
	Confirmed bool
}

type model struct {
	base *config.File

	step      step
	cursor    int
	confirm   int // 0 = yes, 1 = start over, 2 = cancel
	vendors   textinput.Model
	selection Selection
}

func newModel(base *config.File) *model {
	ti := textinput.New()
	ti.Placeholder = "e.g. Acrobat, Office (empty keeps defaults only)"
	ti.CharLimit = 256
	ti.Width = 60

	return &model{base: base, vendors: ti}
}

// reset returns the flow to the first step with a clean slate. Vendor
// additions never leak from an abandoned iteration into the next one.
func (m *model) reset() {
	fresh := newModel(m.base)
	*m = *fresh
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if m.step != stepVendors {
			return m, tea.Quit
		}
	}

	switch m.step {
	case stepMode:
		return m.updateMode(keyMsg)
	case stepVendors:
		return m.updateVendors(keyMsg)
	case stepConfirm:
		return m.updateConfirm(keyMsg)
	}
	return m, nil
}

func (m *model) updateMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(modeChoices)-1 {
			m.cursor++
		}
	case "enter":
		choice := modeChoices[m.cursor]
		m.selection.Mode = choice.mode
		m.selection.DryRun = choice.dryRun
		m.step = stepVendors
		m.vendors.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *model) updateVendors(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.selection.Vendors = mergeVendors(m.base.VendorFilters, m.vendors.Value())
		m.vendors.Blur()
		m.step = stepConfirm
		m.confirm = 0
		if !m.selection.DryRun && m.selection.Mode == config.ModeDelete {
			m.confirm = 2 // destructive default is cancel
		}
		return m, nil
	case "esc":
		m.step = stepMode
		m.vendors.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.vendors, cmd = m.vendors.Update(msg)
	return m, cmd
}

func (m *model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		if m.confirm > 0 {
			m.confirm--
		}
	case "right", "l":
		if m.confirm < 2 {
			m.confirm++
		}
	case "tab":
		m.confirm = (m.confirm + 1) % 3
	case "y":
		m.selection.Confirmed = true
		return m, tea.Quit
	case "n", "esc":
		return m, tea.Quit
	case "enter":
		switch m.confirm {
		case 0:
			m.selection.Confirmed = true
			return m, tea.Quit
		case 1:
			m.reset()
			return m, nil
		case 2:
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *model) View() string {
	var b strings.Builder

	switch m.step {
	case stepMode:
		b.WriteString(titleStyle.Render("What should happen to orphaned installer files?"))
		b.WriteString("\n")
		for i, choice := range modeChoices {
			cursor := "  "
			label := choice.label
			if i == m.cursor {
				cursor = "> "
				label = selectedStyle.Render(label)
			}
			fmt.Fprintf(&b, "%s%s\n", cursor, label)
		}
		b.WriteString("\n" + helpStyle.Render("up/down: select • enter: continue • q: quit"))

	case stepVendors:
		b.WriteString(titleStyle.Render("Additional vendor exclusions"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "Defaults: %s\n\n", strings.Join(m.base.VendorFilters, ", "))
		b.WriteString(m.vendors.View())
		b.WriteString("\n\n" + helpStyle.Render("enter: continue • esc: back"))

	case stepConfirm:
		b.WriteString(titleStyle.Render("Ready to run"))
		b.WriteString("\n")
		action := "preview (no changes)"
		if !m.selection.DryRun {
			action = m.selection.Mode.String()
		}
		fmt.Fprintf(&b, "Action:  %s\n", action)
		fmt.Fprintf(&b, "Vendors: %s\n\n", strings.Join(m.selection.Vendors, ", "))
		if !m.selection.DryRun && m.selection.Mode == config.ModeDelete {
			b.WriteString(warnStyle.Render("Deletion is permanent.") + "\n\n")
		}
		options := []string{"Yes", "Start over", "Cancel"}
		for i, opt := range options {
			if i == m.confirm {
				opt = selectedStyle.Render("[" + opt + "]")
			} else {
				opt = " " + opt + " "
			}
			b.WriteString(opt + "  ")
		}
		b.WriteString("\n\n" + helpStyle.Render("left/right: select • enter: confirm • y/n: quick answer"))
	}

	return b.String()
}

// mergeVendors appends comma-separated user input to the defaults.
func mergeVendors(defaults []string, input string) []string {
	out := append([]string(nil), defaults...)
	for _, v := range strings.Split(input, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Run starts the interactive flow and builds a run configuration from the
// user's choices. It returns (nil, nil) when the user cancels.
func Run(base *config.File) (*config.Run, error) {
	m := newModel(base)

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("interactive mode failed: %w", err)
	}

	sel := final.(*model).selection
	if !sel.Confirmed {
		return nil, nil
	}

	quarantine := base.QuarantineDir
	if quarantine == "" {
		quarantine = config.DefaultQuarantineDir(base.CacheDir)
	}
	return config.NewRun(base.CacheDir, sel.DryRun, sel.Mode, quarantine,
		sel.Vendors, base.Workers, base.LogFile)
}
