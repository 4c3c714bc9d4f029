package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"declmap/internal/core/app"
	"declmap/internal/engine/index"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	driftStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	healStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list         list.Model
	stats        index.Stats
	checkOutcome string
	lastUpdate   time.Time
}

type updateMsg struct {
	stats        index.Stats
	checkOutcome string
	packages     []packageSummary
}

type packageSummary struct {
	name    string
	files   int
	classes int
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.stats = msg.stats
		m.checkOutcome = msg.checkOutcome
		m.lastUpdate = time.Now()

		items := make([]list.Item, 0, len(msg.packages))
		for _, pkg := range msg.packages {
			items = append(items, item{
				title: pkg.name,
				desc:  fmt.Sprintf("%d files, %d classes", pkg.files, pkg.classes),
			})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | %d packages | %d callables",
		m.lastUpdate.Format("15:04:05"), m.stats.Files, m.stats.Packages, m.stats.Callables))

	var summary string
	switch m.checkOutcome {
	case "inconsistent":
		summary = driftStyle.Render("index drifted (strict)")
	case "healed":
		summary = healStyle.Render("index drifted, state healed")
	default:
		summary = successStyle.Render("index consistent")
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Declaration Index Monitor"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Packages"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		lastUpdate: time.Now(),
	}
}

func runUI(a *app.App) error {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())

	a.SetUpdateHandler(func(u app.Update) {
		p.Send(updateMsg{
			stats:        u.Stats,
			checkOutcome: u.CheckOutcome,
			packages:     packageSummaries(a),
		})
	})

	// Push the initial-scan state before the first watch event arrives. The
	// handler runs under the app's state lock, so reading the provider from
	// it cannot race a concurrent watch pass.
	go a.PublishCurrent()

	_, err := p.Run()
	return err
}

func packageSummaries(a *app.App) []packageSummary {
	qr, err := a.QueryService().Execute(context.Background(), "SELECT packages")
	if err != nil {
		return nil
	}
	summaries := make([]packageSummary, 0, len(qr.Packages))
	for _, row := range qr.Packages {
		summaries = append(summaries, packageSummary{
			name:    row.Name,
			files:   row.FileCount,
			classes: row.ClassCount,
		})
	}
	return summaries
}
