package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

func (m *model) View() string {
	m.refreshViewportIfDirty()
	var body string
	switch {
	case m.stage == stagePalette:
		body = m.viewPalette()
	case m.helpVisible:
		body = lipgloss.JoinVertical(lipgloss.Left, m.keyLegendView(), m.helpView())
	default:
		body = m.viewport.View()
	}
	return joinNonEmpty([]string{m.headerView(), body, m.statusView(), m.footerView()})
}

func (m *model) headerView() string {
	label := m.config.Source.Label
	if label == "" {
		label = "untitled buffer"
	}
	if m.config.Source.ReadOnly {
		label += " (read-only)"
	}
	if m.buffer.Dirty() {
		label += " *"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		heroTitleStyle.Render("clipnote"),
		taglineStyle.Render("  "+label+" · "+heroTagline),
	)
}

func (m *model) statusView() string {
	width := m.layout.viewportWidth
	var parts []string
	if m.stage == stageSaving {
		parts = append(parts, m.spinner.View()+" "+helperStyle.Render(wordwrap.String(m.infoMessage, width)))
	} else if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(wordwrap.String(m.infoMessage, width)))
	}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(wordwrap.String(m.errorMessage, width)))
	}
	return strings.Join(parts, "\n")
}

func (m *model) footerView() string {
	cursor := m.buffer.Cursor()
	cfg := m.settings()
	stats := []string{
		fmt.Sprintf("Ln %d, Col %d", cursor.Line+1, cursor.Column+1),
		fmt.Sprintf("%d lines", m.buffer.LineCount()),
	}
	if m.buffer.HasSelection() {
		sel := m.buffer.Selection()
		stats = append(stats, fmt.Sprintf("Sel %d line(s)", sel.To.Line-sel.From.Line+1))
	}
	stats = append(stats, fmt.Sprintf("→ %s (%s)", cfg.Target.Path, cfg.Policy().Mode))
	if cfg.Filter.Pattern != "" {
		stats = append(stats, "filter /"+cfg.Filter.Pattern+"/")
	}
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) viewPalette() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Command Palette"))
	b.WriteRune('\n')
	b.WriteString(m.paletteInput.View())
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render("Enter to run, Esc to cancel."))
	b.WriteRune('\n')
	b.WriteRune('\n')
	if len(m.paletteMatches) == 0 {
		b.WriteString(helperStyle.Render("No commands match this filter."))
		return b.String()
	}
	for idx, cmd := range m.paletteMatches {
		label := fmt.Sprintf("  %s  [%s]", cmd.title, cmd.shortcut)
		if idx == m.paletteCursor {
			label = currentLineStyle.Render("▸ " + cmd.title + "  [" + cmd.shortcut + "]")
		}
		desc := cmd.description
		if !m.commandAvailable(cmd.action) {
			desc += " (unavailable)"
		}
		b.WriteString(label)
		b.WriteRune('\n')
		b.WriteString(helperStyle.Render("   " + desc))
		b.WriteRune('\n')
	}
	return b.String()
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	keys := m.settings().Keys
	hints := []keyHint{
		{keys.SelectAll, "Paragraph / all"},
		{keys.Extract, "Extract selection"},
		{keys.Palette, "Command palette"},
		{"shift+arrows", "Extend selection"},
		{keySaveSource, "Save source"},
		{keyReloadConfig, "Reload config"},
		{"esc", "Clear selection"},
		{keyToggleHelp, "Toggle cheatsheet"},
		{keyQuit, "Quit"},
	}
	rows := []string{sectionHeaderStyle.Render("Key Cheatsheet")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description + "  ")
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m *model) helpView() string {
	keys := m.settings().Keys
	lines := []string{
		sectionHeaderStyle.Render("How extraction works"),
		helperStyle.Render(fmt.Sprintf("• %s selects the paragraph under the cursor; press it again right away to select the whole document.", keys.SelectAll)),
		helperStyle.Render(fmt.Sprintf("• %s moves the selection into %s and removes it here once the write succeeds.", keys.Extract, m.settings().Target.Path)),
		helperStyle.Render("• entries are stamped with the source name plus the UTC date and time."),
		helperStyle.Render("• a filter pattern in the config rejects selections that do not match."),
	}
	return helpBoxStyle.Render(wordwrap.String(strings.Join(lines, "\n"), m.layout.viewportWidth))
}
