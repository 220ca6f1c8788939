package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Description   lipgloss.Style
	Dim           lipgloss.Style
	Status        lipgloss.Style
	Kind          lipgloss.Style
	Section       lipgloss.Style
	Cursor        lipgloss.Style
	Checked       lipgloss.Style
	Main          lipgloss.Style
	Help          lipgloss.Style
	AlertBox      lipgloss.Style
	AlertTitle    lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusLoading lipgloss.Style
	StatusSuccess lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Description: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Dim:         lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		Kind:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Section: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Cursor:  lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Checked: lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true),
		Main:    lipgloss.NewStyle().Padding(1, 2),
		Help:    lipgloss.NewStyle().Faint(true).MarginTop(1),
		AlertBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("203")).
			Padding(1, 2).
			Width(64),
		AlertTitle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("241")), // gray
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
	}
}
