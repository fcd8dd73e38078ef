// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#CCCCCC"}
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#57606A", Dark: "#BBBBBB"}
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#696969"}
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}

	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#696969"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#54A0FF"}

	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#FF8787"}
	StatusInfoColor    = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#54A0FF"}

	SelectionBackgroundColor = lipgloss.AdaptiveColor{Light: "#DDF4FF", Dark: "#2D3A4A"}

	// Skeleton cells stand in for references that have not loaded.
	SkeletonColor = lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#3A3A3A"}

	ButtonTextColor          = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	ButtonSecondaryBgColor   = lipgloss.AdaptiveColor{Light: "#2D3436", Dark: "#2D3436"}
	ButtonSecondaryFocusBg   = lipgloss.AdaptiveColor{Light: "#636E72", Dark: "#636E72"}
	ButtonDangerBgColor      = lipgloss.AdaptiveColor{Light: "#922B21", Dark: "#922B21"}
	ButtonDangerFocusBgColor = lipgloss.AdaptiveColor{Light: "#E74C3C", Dark: "#E74C3C"}

	SpinnerColor = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#FFF"}

	baseButtonStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true)

	SecondaryButtonStyle        = baseButtonStyle.Foreground(ButtonTextColor).Background(ButtonSecondaryBgColor)
	SecondaryButtonFocusedStyle = baseButtonStyle.Foreground(ButtonTextColor).Background(ButtonSecondaryFocusBg).Underline(true)
	DangerButtonStyle           = baseButtonStyle.Foreground(ButtonTextColor).Background(ButtonDangerBgColor)
	DangerButtonFocusedStyle    = baseButtonStyle.Foreground(ButtonTextColor).Background(ButtonDangerFocusBgColor).Underline(true)

	MutedStyle   = lipgloss.NewStyle().Foreground(TextMutedColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(StatusErrorColor).Bold(true)
	TitleStyle   = lipgloss.NewStyle().Foreground(TextPrimaryColor).Bold(true)
	ActiveTab    = lipgloss.NewStyle().Foreground(BorderFocusColor).Bold(true).Underline(true)
	InactiveTab  = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	KeyHintStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor).Bold(true)
)
