package ui

import (
	"github.com/charmbracelet/lipgloss"
)

type Style struct {
	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	SystemMessage    lipgloss.Style
	ToolMessage      lipgloss.Style
	PendingMessage   lipgloss.Style
	Composer         lipgloss.Style
	StatusBar        lipgloss.Style
	StatusHint       lipgloss.Style
}

type BorderColors struct {
	User      string
	Assistant string
	System    string
	Tool      string
	Pending   string
	Composer  string
}

func DefaultStyles() *Style {
	lightModeColors := BorderColors{
		User:      "#87CEEB", // Sky blue
		Assistant: "#90EE90", // Light green
		System:    "#CCCCCC",
		Tool:      "#DDA0DD", // Plum
		Pending:   "#FFFF99", // Light yellow
		Composer:  "#FFB6C1", // Light pink
	}

	darkModeColors := BorderColors{
		User:      "#5F87AF", // Desaturated blue for dark mode
		Assistant: "#5FAF5F", // Desaturated green for dark mode
		System:    "#444444",
		Tool:      "#AF87AF", // Desaturated plum for dark mode
		Pending:   "#DDDD77", // Desaturated yellow for dark mode
		Composer:  "#DD7090", // Desaturated pink for dark mode
	}

	return &Style{
		UserMessage: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.User,
				Dark:  darkModeColors.User,
			}),
		AssistantMessage: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.Assistant,
				Dark:  darkModeColors.Assistant,
			}),
		SystemMessage: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.System,
				Dark:  darkModeColors.System,
			}),
		ToolMessage: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.Tool,
				Dark:  darkModeColors.Tool,
			}),
		PendingMessage: lipgloss.NewStyle().Border(lipgloss.ThickBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.Pending,
				Dark:  darkModeColors.Pending,
			}),
		Composer: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.Composer,
				Dark:  darkModeColors.Composer,
			}),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}).
			Padding(0, 1),
		StatusHint: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"}).
			Padding(0, 1),
	}
}
