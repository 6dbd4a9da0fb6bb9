package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	keys  []helpKey
}

type helpKey struct {
	key  string
	desc string
}

var helpSections = []helpSection{
	{
		title: "Job",
		keys: []helpKey{
			{"c", "Cancelar job (pede confirmação)"},
			{"q / Esc", "Fechar monitor"},
			{"?", "Mostrar/ocultar ajuda"},
		},
	},
	{
		title: "Logs",
		keys: []helpKey{
			{"j/k ↑/↓", "Rolar uma linha"},
			{"PgUp/PgDn", "Rolar uma página"},
			{"g / G", "Início / fim"},
			{"x", "Limpar logs"},
			{"a", "Ligar/desligar auto-scroll"},
		},
	},
	{
		title: "Confirmação",
		keys: []helpKey{
			{"y", "Confirmar"},
			{"n / Esc", "Voltar"},
		},
	},
}

// renderHelp renders the help overlay content.
func renderHelp(width int) string {
	maxWidth := 60
	if width-4 < maxWidth {
		maxWidth = width - 4
	}
	if maxWidth < 30 {
		maxWidth = 30
	}

	title := overlayTitleStyle.Render("Atalhos de teclado")
	sections := make([]string, 0, len(helpSections)*4+3)
	sections = append(sections, title)

	for _, sec := range helpSections {
		header := lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Render(sec.title)
		sections = append(sections, "", header)

		for _, k := range sec.keys {
			keyCol := lipgloss.NewStyle().
				Width(14).
				Foreground(colorWhite).
				Bold(true).
				Render(k.key)
			descCol := lipgloss.NewStyle().
				Foreground(colorDim).
				Render(k.desc)
			sections = append(sections, "  "+keyCol+descCol)
		}
	}

	sections = append(sections, "", lipgloss.NewStyle().Foreground(colorDim).Render("Pressione Esc ou ? para fechar"))

	content := strings.Join(sections, "\n")
	return overlayStyle.Width(maxWidth).Render(content)
}
