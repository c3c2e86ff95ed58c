package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// FooterModel renders the key hints and the final status line.
type FooterModel struct {
	help     help.Model
	keymap   KeyMap
	message  string
	failed   bool
	showFull bool
	width    int
}

// NewFooterModel creates a footer for keymap.
func NewFooterModel(keymap KeyMap) FooterModel {
	h := help.New()
	h.Styles.ShortKey = metricValueStyle
	h.Styles.ShortDesc = metricLabelStyle
	h.Styles.FullKey = metricValueStyle
	h.Styles.FullDesc = metricLabelStyle
	return FooterModel{help: h, keymap: keymap}
}

// SetWidth updates the available width.
func (f *FooterModel) SetWidth(w int) {
	f.width = w
	f.help.Width = w
}

// ToggleHelp switches between the short and the full key help.
func (f *FooterModel) ToggleHelp() {
	f.showFull = !f.showFull
	f.help.ShowAll = f.showFull
}

// SetMessage sets the status message shown before the key hints.
func (f *FooterModel) SetMessage(msg string, failed bool) {
	f.message = msg
	f.failed = failed
}

// View renders the footer.
func (f FooterModel) View() string {
	hints := f.help.View(f.keymap)
	if f.message == "" {
		return hints
	}
	style := successStyle
	if f.failed {
		style = errorStyle
	}
	return lipgloss.JoinVertical(lipgloss.Left, style.Render(f.message), hints)
}
