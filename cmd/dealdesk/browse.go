package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"dealdesk/internal/report"
	"dealdesk/internal/store"
	"dealdesk/internal/ui"
)

var historyBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse runs in an interactive table",
	Args:  cobra.NoArgs,
	RunE:  runHistoryBrowse,
}

func runHistoryBrowse(cmd *cobra.Command, args []string) error {
	kind, err := parseKindFlag()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(kind, 200)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	p := tea.NewProgram(newBrowseModel(runs), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// browseModel is the interactive history browser: a table of runs, with
// enter opening the replayed report in a viewport.
type browseModel struct {
	table    table.Model
	viewport viewport.Model
	runs     []*store.Run
	styles   ui.Styles
	showing  bool
	status   string
	width    int
	height   int
}

func newBrowseModel(runs []*store.Run) browseModel {
	columns := []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Kind", Width: 12},
		{Title: "When", Width: 17},
		{Title: "Summary", Width: 48},
	}
	rows := make([]table.Row, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, table.Row{
			shortID(r.ID),
			string(r.Kind),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Summary,
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	return browseModel{
		table:    t,
		viewport: viewport.New(0, 0),
		runs:     runs,
		styles:   ui.DefaultStyles(),
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width - 2)
		m.table.SetHeight(msg.Height - 5)
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = msg.Height - 3
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.showing {
				m.showing = false
				return m, nil
			}
			return m, tea.Quit
		case "esc":
			m.showing = false
			return m, nil
		case "enter":
			if !m.showing {
				m.openSelected()
				return m, nil
			}
		}
	}
	if m.showing {
		m.viewport, cmd = m.viewport.Update(msg)
	} else {
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

func (m *browseModel) openSelected() {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.runs) {
		return
	}
	m.status = ""
	md, err := replayReport(m.runs[idx])
	if err != nil {
		m.status = err.Error()
		return
	}
	rendered, err := report.Render(md, false)
	if err != nil {
		rendered = md
	}
	m.viewport.SetContent(rendered)
	m.viewport.GotoTop()
	m.showing = true
}

func (m browseModel) View() string {
	var sb strings.Builder
	if m.showing {
		sb.WriteString(m.viewport.View())
		sb.WriteString("\n")
		sb.WriteString(m.styles.Help.Render("esc back · q quit"))
		return sb.String()
	}
	sb.WriteString(m.styles.Title.Render("Run History"))
	sb.WriteString("\n")
	sb.WriteString(m.table.View())
	sb.WriteString("\n")
	if m.status != "" {
		sb.WriteString(m.styles.Error.Render(m.status))
		sb.WriteString("\n")
	}
	sb.WriteString(m.styles.Help.Render(fmt.Sprintf("%d runs · enter view · q quit", len(m.runs))))
	return sb.String()
}
