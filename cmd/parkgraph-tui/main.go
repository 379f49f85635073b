package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/campusworks/parkgraph/pkg/client"
)

// Config
const (
	pollRate       = 2 * time.Second
	queryTimeout   = 3 * time.Second
	viewportHeight = 14
)

// Styles
var (
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	matchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			Width(100)

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(100)
)

type tickMsg time.Time

type statsMsg struct {
	health client.Health
	err    error
}

type answerMsg struct {
	input string
	text  string
	isErr bool
}

type historyEntry struct {
	at    time.Time
	input string
	text  string
	isErr bool
}

type model struct {
	api      *client.Client
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	history   []historyEntry
	health    client.Health
	healthErr error
	ready     bool
	busy      bool
}

func initialModel(api *client.Client) model {
	ti := textinput.New()
	ti.Placeholder = "pass or lot id (e.g. C, LotA2)"
	ti.Prompt = "query> "
	ti.CharLimit = 80
	ti.Width = 60
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	vp := viewport.New(100, viewportHeight)
	vp.Style = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		PaddingRight(2)

	return model{api: api, input: ti, spinner: s, viewport: vp}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		fetchStats(m.api),
		tick(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			raw := strings.TrimSpace(m.input.Value())
			if raw == "" {
				return m, nil
			}
			m.input.Reset()
			m.busy = true
			return m, submitQuery(m.api, raw)
		case tea.KeyPgUp, tea.KeyPgDown:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tickMsg:
		cmds = append(cmds, fetchStats(m.api), tick())

	case statsMsg:
		m.health = msg.health
		m.healthErr = msg.err
		m.ready = true

	case answerMsg:
		m.busy = false
		m.history = append(m.history, historyEntry{
			at:    time.Now(),
			input: msg.input,
			text:  msg.text,
			isErr: msg.isErr,
		})
		m.updateViewportContent()

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = viewportHeight
	}

	return m, tea.Batch(cmds...)
}

func (m *model) updateViewportContent() {
	var sb strings.Builder
	for _, e := range m.history {
		sb.WriteString(subtleStyle.Render(e.at.Format("15:04:05")))
		sb.WriteString(" ")
		sb.WriteString(inputStyle.Render(e.input))
		sb.WriteString("\n  ")
		if e.isErr {
			sb.WriteString(errorStyle.Render(e.text))
		} else {
			sb.WriteString(matchStyle.Render(e.text))
		}
		sb.WriteString("\n")
	}
	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

func (m model) View() string {
	if !m.ready {
		return fmt.Sprintf("\n%s Connecting to parkgraph-d...", m.spinner.View())
	}

	header := headerStyle.Render(fmt.Sprintf("%s parkgraph", m.spinner.View()))

	var status string
	if m.healthErr != nil {
		status = errorStyle.Render(fmt.Sprintf("Offline: %v", m.healthErr))
	} else {
		status = okStyle.Render(fmt.Sprintf("Online • %d passes • %d lots • %d edges • graph v%d",
			m.health.Passes, m.health.Lots, m.health.Edges, m.health.Version))
	}

	prompt := m.input.View()
	if m.busy {
		prompt = fmt.Sprintf("%s %s", m.spinner.View(), prompt)
	}

	footer := subtleStyle.Render("Enter to query • 'id pass_to_lots' forces a direction • Esc to quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		paneStyle.Render(status),
		m.viewport.View(),
		prompt,
		footer,
	)
}

// Commands

func submitQuery(api *client.Client, raw string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		fields := strings.Fields(raw)
		var (
			result *client.Result
			err    error
		)
		if len(fields) > 1 {
			result, err = api.QueryAs(ctx, fields[0], fields[1])
		} else {
			result, err = api.Query(ctx, raw)
		}
		if err != nil {
			return answerMsg{input: raw, text: explain(err), isErr: true}
		}

		if result.Direction == client.DirectionPassToLots {
			if len(result.Matches) == 0 {
				return answerMsg{input: raw, text: fmt.Sprintf("pass %s has no lot access", result.Display)}
			}
			return answerMsg{input: raw, text: fmt.Sprintf("pass %s -> %s", result.Display, strings.Join(result.Matches, ", "))}
		}
		if len(result.Matches) == 0 {
			return answerMsg{input: raw, text: fmt.Sprintf("lot %s admits no passes", result.Display)}
		}
		return answerMsg{input: raw, text: fmt.Sprintf("lot %s <- %s", result.Display, strings.Join(result.Matches, ", "))}
	}
}

// explain maps SDK errors to one-line prompts the operator can act on.
func explain(err error) string {
	switch {
	case errors.Is(err, client.ErrUnknownNode):
		return "unknown identifier: not a pass or a lot in the loaded graph"
	case errors.Is(err, client.ErrAmbiguousIdentifier):
		return "ambiguous: exists as both a pass and a lot; submit 'id pass_to_lots' or 'id lot_to_passes'"
	case errors.Is(err, client.ErrInvalidIdentifier):
		return "invalid identifier: empty after trimming"
	default:
		return err.Error()
	}
}

func fetchStats(api *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		health, err := api.Ping(ctx)
		return statsMsg{health: health, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(pollRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func main() {
	url := os.Getenv("PARKGRAPH_URL")
	if url == "" {
		url = "http://127.0.0.1:8085"
	}

	p := tea.NewProgram(initialModel(client.NewClient(url)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
