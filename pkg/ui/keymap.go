package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	TogglePlay   key.Binding
	Skip         key.Binding
	Next         key.Binding
	Restart      key.Binding
	FasterReveal key.Binding
	SlowerReveal key.Binding
	LongerDwell  key.Binding
	ShorterDwell key.Binding

	FocusComposer  key.Binding
	BlurComposer   key.Binding
	SubmitComposer key.Binding

	ScrollUp   key.Binding
	ScrollDown key.Binding

	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

var DefaultKeyMap = KeyMap{
	TogglePlay:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
	Skip:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip reveal")),
	Next:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next turn")),
	Restart:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
	FasterReveal: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
	SlowerReveal: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "slower")),
	LongerDwell:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "longer dwell")),
	ShorterDwell: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "shorter dwell")),

	FocusComposer:  key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i", "compose")),
	BlurComposer:   key.NewBinding(key.WithKeys("esc", "ctrl+g"), key.WithHelp("esc", "leave composer")),
	SubmitComposer: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "send")),

	ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
	ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdown", "scroll down")),

	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.TogglePlay, k.Skip, k.Next, k.Restart, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.TogglePlay, k.Skip, k.Next, k.Restart},
		{k.FasterReveal, k.SlowerReveal, k.LongerDwell, k.ShorterDwell},
		{k.FocusComposer, k.BlurComposer, k.SubmitComposer},
		{k.ScrollUp, k.ScrollDown, k.Help, k.Quit},
	}
}
