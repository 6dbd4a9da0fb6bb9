package tui

import "github.com/charmbracelet/bubbles/key"

// MonitorKeys are active while no prompt is open.
type MonitorKeys struct {
	Cancel     key.Binding
	Clear      key.Binding
	Autoscroll key.Binding
	Close      key.Binding
	Help       key.Binding
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Top        key.Binding
	Bottom     key.Binding
}

var monitorKeys = MonitorKeys{
	Cancel: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "cancelar job"),
	),
	Clear: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "limpar logs"),
	),
	Autoscroll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "auto-scroll"),
	),
	Close: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "fechar"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "ajuda"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("j/k", "rolar"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j/k", "rolar"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("PgUp", "página acima"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("PgDn", "página abaixo"),
	),
	Top: key.NewBinding(
		key.WithKeys("home", "g"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("end", "G"),
	),
}

// ConfirmKeys for inline confirmation prompts.
type ConfirmKeys struct {
	Yes    key.Binding
	No     key.Binding
	Cancel key.Binding
}

var confirmKeys = ConfirmKeys{
	Yes: key.NewBinding(
		key.WithKeys("y", "s"),
		key.WithHelp("y", "confirmar"),
	),
	No: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "voltar"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "voltar"),
	),
}
