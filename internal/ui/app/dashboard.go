// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parcbudget/parcbudget-tui/internal/budget"
	"github.com/parcbudget/parcbudget-tui/internal/ui/styles"
	"github.com/parcbudget/parcbudget-tui/internal/util"
)

// =============================================================================
// DASHBOARD
// =============================================================================

// refreshRequestedMsg asks the app to reload the project list.
type refreshRequestedMsg struct{}

// needsRequestedMsg asks the app to load the needs of a project.
type needsRequestedMsg struct {
	projectID int64
}

// dashboardView selects what the dashboard body shows.
type dashboardView int

const (
	viewProjects dashboardView = iota
	viewNeeds
)

// dashboard is the authenticated home screen: the project list with per-line
// budget totals, and a drill-down into a project's needs.
type dashboard struct {
	projects     table.Model
	needs        table.Model
	view         dashboardView
	projectRows  []budget.Project
	selectedID   int64
	selectedName string

	errText     string
	catalogNote string

	theme  *styles.Theme
	width  int
	height int
}

// newDashboard creates the dashboard with empty tables.
func newDashboard(theme *styles.Theme) dashboard {
	projectCols := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Project", Width: 28},
		{Title: "Status", Width: 12},
		{Title: "Progress", Width: 8},
		{Title: "Total EUR", Width: 16},
		{Title: "Total MAD", Width: 16},
	}
	needCols := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Material", Width: 30},
		{Title: "Qty", Width: 6},
		{Title: "Unit price", Width: 18},
		{Title: "Line total", Width: 18},
	}

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		Foreground(styles.Teal).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(styles.Overlay)
	ts.Selected = ts.Selected.
		Foreground(styles.TextInverse).
		Background(styles.Teal).
		Bold(true)

	projects := table.New(
		table.WithColumns(projectCols),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	projects.SetStyles(ts)

	needs := table.New(
		table.WithColumns(needCols),
		table.WithHeight(12),
	)
	needs.SetStyles(ts)

	return dashboard{
		projects: projects,
		needs:    needs,
		theme:    theme,
	}
}

// SetSize adjusts the tables to the terminal size.
func (d *dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height

	tableHeight := height - 6
	if tableHeight < 4 {
		tableHeight = 4
	}
	d.projects.SetHeight(tableHeight)
	d.needs.SetHeight(tableHeight)
}

// SetProjects replaces the project rows.
func (d *dashboard) SetProjects(projects []budget.Project) {
	d.projectRows = projects
	d.errText = ""

	rows := make([]table.Row, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, table.Row{
			strconv.FormatInt(p.ID, 10),
			util.TruncateWidth(p.Name, 28),
			string(p.Status),
			fmt.Sprintf("%d%%", p.Status.Progress()),
			budget.FormatAmount(p.TotalEUR, budget.EUR),
			budget.FormatAmount(p.TotalMAD, budget.MAD),
		})
	}
	d.projects.SetRows(rows)
}

// SetNeeds replaces the needs rows and switches to the drill-down view.
func (d *dashboard) SetNeeds(projectID int64, needs []budget.Need) {
	d.view = viewNeeds
	d.selectedID = projectID
	for _, p := range d.projectRows {
		if p.ID == projectID {
			d.selectedName = p.Name
			break
		}
	}

	rows := make([]table.Row, 0, len(needs))
	for _, n := range needs {
		rows = append(rows, table.Row{
			strconv.FormatInt(n.ID, 10),
			util.TruncateWidth(n.MaterialName, 30),
			strconv.Itoa(n.Quantity),
			budget.FormatAmount(n.UnitPrice, n.Currency),
			budget.FormatAmount(n.UnitPrice*float64(n.Quantity), n.Currency),
		})
	}
	d.needs.SetRows(rows)
	d.needs.Focus()
	d.projects.Blur()
}

// SetError shows a load failure above the table.
func (d *dashboard) SetError(text string) {
	d.errText = text
}

// SetCatalogNote shows the catalog cache status line.
func (d *dashboard) SetCatalogNote(text string) {
	d.catalogNote = text
}

// Update handles dashboard key input.
func (d dashboard) Update(msg tea.Msg) (dashboard, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "r":
			return d, func() tea.Msg { return refreshRequestedMsg{} }

		case "enter":
			if d.view == viewProjects {
				if row := d.projects.SelectedRow(); row != nil {
					if id, err := strconv.ParseInt(row[0], 10, 64); err == nil {
						return d, func() tea.Msg { return needsRequestedMsg{projectID: id} }
					}
				}
			}
			return d, nil

		case "esc":
			if d.view == viewNeeds {
				d.view = viewProjects
				d.needs.Blur()
				d.projects.Focus()
			}
			return d, nil
		}
	}

	var cmd tea.Cmd
	if d.view == viewNeeds {
		d.needs, cmd = d.needs.Update(msg)
	} else {
		d.projects, cmd = d.projects.Update(msg)
	}
	return d, cmd
}

// View renders the dashboard body.
func (d dashboard) View() string {
	var parts []string

	switch d.view {
	case viewNeeds:
		title := d.theme.HeaderTitle.Render("Needs")
		if d.selectedName != "" {
			title += " " + d.theme.HeaderSubtitle.Render("- "+d.selectedName)
		}
		parts = append(parts, title)
		parts = append(parts, d.needs.View())
		parts = append(parts, d.theme.FormHint.Render("esc back, r refresh"))

	default:
		parts = append(parts, d.theme.HeaderTitle.Render("Projects"))
		if d.errText != "" {
			parts = append(parts, styles.RenderError(d.errText))
		}
		parts = append(parts, d.projects.View())
		hint := "enter needs, r refresh"
		if d.catalogNote != "" {
			hint += "   " + d.catalogNote
		}
		parts = append(parts, d.theme.FormHint.Render(hint))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
