package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/pokertable/internal/betting"
	"github.com/lox/pokertable/internal/deck"
	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/holdem"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	redCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	blackCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	activeSeatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	foldedSeatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	actionsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// model is the bubbletea model: the last received views plus the log
// viewport and the action input.
type model struct {
	client   *Client
	tableID  string
	playerID string

	logView viewport.Model
	input   textinput.Model

	public  *holdem.PublicView
	private *holdem.PlayerView
	status  string
	lastErr string

	width       int
	height      int
	initialized bool
	quitting    bool
}

func newModel(client *Client, tableID, playerID string) *model {
	vp := viewport.New(10, 5)

	ti := textinput.New()
	ti.Placeholder = "start | check | call | bet 40 | raise 120 | fold | allin | advance | quit"
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.CharLimit = 64
	ti.Focus()

	return &model{
		client:   client,
		tableID:  tableID,
		playerID: playerID,
		logView:  vp,
		input:    ti,
		status:   "connecting",
	}
}

// Init joins the configured table, or lists tables to pick one
func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg {
		var err error
		if m.tableID != "" {
			err = m.client.JoinTable(m.tableID, m.playerID)
		} else {
			err = m.client.ListTables()
		}
		if err != nil {
			return closedMsg{err: err}
		}
		return nil
	})
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logHeight := msg.Height - 12
		if m.public != nil {
			logHeight = msg.Height - lipgloss.Height(m.tableView()) - 3
		}
		if logHeight < 3 {
			logHeight = 3
		}
		m.logView.Width = msg.Width
		m.logView.Height = logHeight
		m.initialized = true
		m.refreshLog()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line != "" {
				return m, m.submit(line)
			}
			return m, nil
		}

	case tableListMsg:
		if len(msg.tables) == 0 {
			m.lastErr = "server has no tables"
			return m, nil
		}
		m.tableID = msg.tables[0].ID
		m.status = "joining " + m.tableID
		return m, m.send(func() error { return m.client.JoinTable(m.tableID, m.playerID) })

	case joinedMsg:
		m.tableID = msg.data.TableID
		if msg.data.Seated {
			m.status = fmt.Sprintf("seated as %s", msg.data.PlayerID)
		} else {
			m.status = "spectating"
		}
		m.lastErr = ""
		return m, nil

	case publicViewMsg:
		if msg.tableID == m.tableID {
			view := msg.view
			m.public = &view
			m.refreshLog()
		}
		return m, nil

	case playerViewMsg:
		if msg.tableID == m.tableID && msg.view.PlayerID == m.playerID {
			view := msg.view
			m.private = &view
		}
		return m, nil

	case serverErrMsg:
		m.lastErr = fmt.Sprintf("%s: %s", msg.data.Kind, msg.data.Message)
		return m, nil

	case closedMsg:
		m.status = "disconnected"
		m.lastErr = "connection closed"
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.logView, cmd = m.logView.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit parses one input line into a client request
func (m *model) submit(line string) tea.Cmd {
	fields := strings.Fields(strings.ToLower(line))
	verb := fields[0]

	switch verb {
	case "quit", "exit", "q":
		m.quitting = true
		return tea.Quit
	case "resync":
		return m.send(func() error { return m.client.Resync(m.tableID) })
	}

	var act game.Action
	switch verb {
	case "start":
		act = game.StartHand()
	case "advance":
		act = game.AdvancePhase()
	case "fold":
		act = game.Fold()
	case "check":
		act = game.Check()
	case "call":
		act = game.Call()
	case "allin", "all-in", "all_in":
		act = game.AllIn()
	case "bet", "raise":
		if len(fields) < 2 {
			m.lastErr = verb + " needs an amount"
			return nil
		}
		amount, err := strconv.Atoi(fields[1])
		if err != nil || amount <= 0 {
			m.lastErr = "bad amount: " + fields[1]
			return nil
		}
		if verb == "bet" {
			act = game.Bet(amount)
		} else {
			act = game.RaiseTo(amount)
		}
	default:
		m.lastErr = "unknown command: " + verb
		return nil
	}

	m.lastErr = ""
	return m.send(func() error { return m.client.Act(m.tableID, act) })
}

func (m *model) send(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return closedMsg{err: err}
		}
		return nil
	}
}

func (m *model) refreshLog() {
	if m.public == nil {
		return
	}
	m.logView.SetContent(strings.Join(m.public.Log, "\n"))
	m.logView.GotoBottom()
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	if !m.initialized || m.public == nil {
		return infoStyle.Render(fmt.Sprintf("pokertable - %s...", m.status))
	}

	var b strings.Builder
	b.WriteString(m.tableView())
	b.WriteString("\n")
	b.WriteString(m.logView.View())
	b.WriteString("\n")
	if m.lastErr != "" {
		b.WriteString(errorStyle.Render(m.lastErr))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	return b.String()
}

// tableView renders the table header, board, seats, pots and the
// player's private panel.
func (m *model) tableView() string {
	v := m.public

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Table %s · hand %d · %s · %s",
		m.tableID, v.HandNumber, v.Phase, m.status)))
	b.WriteString("\n")

	b.WriteString("Board: ")
	if len(v.Board) == 0 {
		b.WriteString(infoStyle.Render("(none)"))
	} else {
		b.WriteString(renderCards(v.Board))
	}
	b.WriteString("\n")

	for _, seat := range v.Seats {
		marks := ""
		if seat.IsDealer {
			marks += " Ⓓ"
		}
		if seat.AllIn {
			marks += " [all-in]"
		}
		if seat.Folded {
			marks += " [folded]"
		}
		line := fmt.Sprintf("  %d. %-12s %6d%s", seat.SeatIndex, seat.PlayerID, seat.Stack, marks)
		switch {
		case seat.PlayerID == v.ActivePlayerID:
			line = activeSeatStyle.Render(line + "  ← to act")
		case seat.Folded:
			line = foldedSeatStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	for i, pot := range v.Pots {
		b.WriteString(infoStyle.Render(fmt.Sprintf("  pot %d: %d (%s)",
			i+1, pot.Amount, strings.Join(pot.Eligible, ", "))))
		b.WriteString("\n")
	}

	if m.private != nil && len(m.private.HoleCards) > 0 {
		b.WriteString("Your cards: ")
		b.WriteString(renderCards(m.private.HoleCards))
		b.WriteString("\n")
	}
	if m.private != nil && m.private.AvailableActions != nil {
		b.WriteString(actionsStyle.Render("Actions: " + describeActions(m.private.AvailableActions)))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		if c.IsRed() {
			parts[i] = redCardStyle.Render(c.String())
		} else {
			parts[i] = blackCardStyle.Render(c.String())
		}
	}
	return strings.Join(parts, " ")
}

func describeActions(a *betting.Actions) string {
	var parts []string
	if a.CanFold {
		parts = append(parts, "fold")
	}
	if a.CanCheck {
		parts = append(parts, "check")
	}
	if a.CanCall {
		parts = append(parts, fmt.Sprintf("call %d", a.CallAmount))
	}
	if a.CanBet {
		parts = append(parts, fmt.Sprintf("bet ≥%d", a.MinBet))
	}
	if a.CanRaise {
		parts = append(parts, fmt.Sprintf("raise to ≥%d", a.MinRaiseTo))
	}
	if a.CanAllIn {
		parts = append(parts, "allin")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " · ")
}
