package main

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			MarginBottom(1)

	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

	SubtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)
