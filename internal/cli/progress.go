package cli

import (
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// progressMsg reports enrichment progress for one action.
type progressMsg struct {
	done  int
	total int
}

// finishedMsg signals the ingest goroutine returned.
type finishedMsg struct {
	err error
}

// trackModel is the bubbletea model for the ingest progress display.
type trackModel struct {
	externalID string
	progress   progress.Model
	theme      Theme
	done       int
	total      int
	finished   bool
	aborted    bool
	err        error
}

// newTrackModel creates a progress model for one ingest run.
func newTrackModel(externalID string) trackModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return trackModel{
		externalID: externalID,
		progress:   prog,
		theme:      defaultTheme,
	}
}

// Init returns the initial command.
func (m trackModel) Init() tea.Cmd {
	return m.progress.Init()
}

// Update handles messages and returns the updated model.
func (m trackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.aborted = true
			return m, tea.Quit
		}

	case progressMsg:
		m.done = msg.done
		m.total = msg.total
		return m, nil

	case finishedMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m trackModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m trackModel) renderContent() string {
	if m.finished {
		if m.err != nil {
			return m.theme.errorStyle().Render(fmt.Sprintf("✗ Ingest failed: %s\n", m.err))
		}
		return m.theme.completedStyle().Render("✓ Ingest completed\n")
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[tracking %s]", m.externalID))
	if m.total == 0 {
		return fmt.Sprintf("%s fetching process...\n", status)
	}

	var pct float64
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}
	bar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d actions", m.done, m.total)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to abort")

	return fmt.Sprintf("%s %s %s\n%s\n", status, bar, counts, hint)
}
