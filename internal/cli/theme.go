package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the color scheme for the chat screen.
type Theme struct {
	Name     string
	Question lipgloss.Color
	Answer   lipgloss.Color
	Accent   lipgloss.Color
	Success  lipgloss.Color
	Error    lipgloss.Color
	Hint     lipgloss.Color
	Border   lipgloss.Color
}

var lightTheme = Theme{
	Name:     "light",
	Question: lipgloss.Color("#005F87"), // dark blue
	Answer:   lipgloss.Color("#303030"), // near black
	Accent:   lipgloss.Color("#AF5F00"), // amber
	Success:  lipgloss.Color("#008700"), // green
	Error:    lipgloss.Color("#D70000"), // red
	Hint:     lipgloss.Color("#767676"), // gray
	Border:   lipgloss.Color("#BCBCBC"), // light gray
}

var darkTheme = Theme{
	Name:     "dark",
	Question: lipgloss.Color("#5FAFD7"), // light blue
	Answer:   lipgloss.Color("#E4E4E4"), // off white
	Accent:   lipgloss.Color("#FFD75F"), // yellow
	Success:  lipgloss.Color("#00D787"), // green
	Error:    lipgloss.Color("#FF005F"), // red
	Hint:     lipgloss.Color("#6C6C6C"), // dim gray
	Border:   lipgloss.Color("#3A3A3A"), // dark gray
}

// themeNamed returns the dark theme for "dark" and the light theme otherwise.
func themeNamed(name string) Theme {
	if name == darkTheme.Name {
		return darkTheme
	}
	return lightTheme
}

// toggled returns the other theme.
func (t Theme) toggled() Theme {
	if t.Name == darkTheme.Name {
		return lightTheme
	}
	return darkTheme
}

// Style functions for dynamic theming
func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

func (t Theme) questionStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Question).Bold(true)
}

func (t Theme) answerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Answer)
}

func (t Theme) selectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

func (t Theme) pendingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Italic(true)
}

func (t Theme) successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) paneStyle(focused bool) lipgloss.Style {
	border := t.Border
	if focused {
		border = t.Accent
	}
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border)
}
