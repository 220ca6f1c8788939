package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StatusKind picks the color of the status line
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusLoading
	StatusSuccess
	StatusWarning
	StatusError
)

// Row is one line of the result list
type Row struct {
	Label    string
	Detail   string
	Selected bool
}

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width       int
	Height      int
	Title       string
	Description string
	SearchKind  string
	SearchInput string
	Heading     string
	Rows        []Row
	Cursor      int
	Page        int
	HasPrev     bool
	HasNext     bool
	Selected    []string
	MaxItems    int
	Status      string
	StatusKind  StatusKind
	Alert       string
	Help        string
	Loading     bool
}

// Renderer handles all view rendering
type Renderer struct {
	styles *Styles
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{styles: NewStyles()}
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	var b strings.Builder

	title := state.Title
	if title == "" {
		title = "fieldpicker"
	}
	b.WriteString(r.styles.Title.Render(title))
	b.WriteString("\n")
	if state.Description != "" {
		b.WriteString(r.styles.Description.Render(state.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(r.styles.Kind.Render(fmt.Sprintf("[%s]", state.SearchKind)))
	b.WriteString(" ")
	b.WriteString(state.SearchInput)
	b.WriteString("\n\n")

	b.WriteString(r.renderResults(state))
	b.WriteString("\n")
	b.WriteString(r.renderSelection(state))

	if state.Status != "" {
		b.WriteString(r.statusStyle(state.StatusKind).Render(state.Status))
		b.WriteString("\n")
	}
	if state.Help != "" {
		b.WriteString(r.styles.Help.Render(state.Help))
	}

	main := r.styles.Main.Render(b.String())
	if state.Alert == "" {
		return main
	}
	return r.renderAlert(state, main)
}

func (r *Renderer) renderResults(state ViewState) string {
	var b strings.Builder
	heading := state.Heading
	if heading == "" {
		heading = "Results"
	}
	if state.Page > 0 || state.HasNext {
		heading = fmt.Sprintf("%s (page %d)", heading, state.Page+1)
	}
	b.WriteString(r.styles.Section.Render(heading))
	b.WriteString("\n")

	if state.Loading {
		b.WriteString(r.styles.StatusLoading.Render("  Loading..."))
		b.WriteString("\n")
		return b.String()
	}
	if len(state.Rows) == 0 {
		b.WriteString(r.styles.Dim.Render("  No results"))
		b.WriteString("\n")
		return b.String()
	}

	for i, row := range state.Rows {
		mark := "[ ]"
		if row.Selected {
			mark = r.styles.Checked.Render("[x]")
		}
		line := fmt.Sprintf("%s %s", mark, row.Label)
		if row.Detail != "" {
			line += " " + r.styles.Dim.Render(row.Detail)
		}
		if i == state.Cursor {
			line = r.styles.Cursor.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	var nav []string
	if state.HasPrev {
		nav = append(nav, "p: previous page")
	}
	if state.HasNext {
		nav = append(nav, "n: next page")
	}
	if len(nav) > 0 {
		b.WriteString(r.styles.Dim.Render("  " + strings.Join(nav, "  ")))
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Renderer) renderSelection(state ViewState) string {
	var b strings.Builder
	heading := fmt.Sprintf("Selected (%d)", len(state.Selected))
	if state.MaxItems > 0 {
		heading = fmt.Sprintf("Selected (%d/%d)", len(state.Selected), state.MaxItems)
	}
	b.WriteString(r.styles.Section.Render(heading))
	b.WriteString("\n")
	if len(state.Selected) == 0 {
		b.WriteString(r.styles.Dim.Render("  Nothing selected"))
		b.WriteString("\n")
	}
	for i, label := range state.Selected {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, label))
	}
	return b.String()
}

func (r *Renderer) renderAlert(state ViewState, main string) string {
	box := r.styles.AlertBox.Render(
		r.styles.AlertTitle.Render("Error") + "\n\n" + state.Alert + "\n\n" + r.styles.Dim.Render("esc to dismiss"))
	if state.Width == 0 || state.Height == 0 {
		return main + "\n" + box
	}
	return lipgloss.Place(state.Width, state.Height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "))
}

func (r *Renderer) statusStyle(kind StatusKind) lipgloss.Style {
	switch kind {
	case StatusLoading:
		return r.styles.StatusLoading
	case StatusSuccess:
		return r.styles.StatusSuccess
	case StatusWarning:
		return r.styles.StatusWarning
	case StatusError:
		return r.styles.StatusError
	default:
		return r.styles.Status
	}
}
