package tui

import "github.com/charmbracelet/lipgloss"

var (
	AccentColor    = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"}
	SecondaryColor = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"}
	TextColor      = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"}
	MutedColor     = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	ErrorColor     = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}
	FavoriteColor  = lipgloss.AdaptiveColor{Light: "#CA8A04", Dark: "#FACC15"}
)

const cardWidth = 24

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(AccentColor).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(MutedColor).
			Padding(0, 1).
			Width(cardWidth)

	SelectedCardStyle = CardStyle.
				BorderForeground(AccentColor)

	CardNameStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	CardCategoryStyle = lipgloss.NewStyle().
				Foreground(MutedColor)

	FavoriteStyle = lipgloss.NewStyle().
			Foreground(FavoriteColor)

	DisabledStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Faint(true)

	ActiveToggleStyle = lipgloss.NewStyle().
				Foreground(FavoriteColor).
				Bold(true)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(AccentColor).
			Padding(1, 3)
)
