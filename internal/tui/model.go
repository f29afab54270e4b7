package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"portfolio_tracker/internal/view"
)

// PortfolioFetcher loads one portfolio. *view.Fetcher implements it.
type PortfolioFetcher interface {
	Fetch(ctx context.Context, req view.Request) (*view.Portfolio, error)
}

type portfolioMsg struct {
	generation uint64
	portfolio  *view.Portfolio
}

type fetchErrMsg struct {
	generation uint64
	err        error
}

// Model is the bubbletea program model.
type Model struct {
	state   *view.Model
	fetcher PortfolioFetcher
	chains  []string
	logger  *zap.Logger

	table   table.Model
	spinner spinner.Model
	input   textinput.Model
	editing bool
	cancel  context.CancelFunc
	width   int
}

// New creates the program model. chains is the list cycled with tab; address may be empty.
func New(fetcher PortfolioFetcher, address, chain string, chains []string, logger *zap.Logger) *Model {
	input := textinput.New()
	input.Placeholder = "0x…"
	input.CharLimit = 42
	input.Prompt = "Address: "

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	tbl := table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	tbl.SetStyles(styles)

	m := &Model{
		state:   view.NewModel(chain),
		fetcher: fetcher,
		chains:  chains,
		logger:  logger.Named("tui"),
		table:   tbl,
		spinner: sp,
		input:   input,
	}
	if strings.TrimSpace(address) == "" {
		m.editing = true
		m.input.Focus()
	} else {
		m.input.SetValue(address)
	}
	return m
}

func columns() []table.Column {
	return []table.Column{
		{Title: "Token", Width: 18},
		{Title: "Symbol", Width: 8},
		{Title: "Balance", Width: 16},
		{Title: "USD Price", Width: 12},
		{Title: "USD Value", Width: 14},
		{Title: "Address", Width: 42},
	}
}

// Init connects the initial address, if any.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.input.Focused() {
		cmds = append(cmds, textinput.Blink)
	}
	if addr := m.input.Value(); addr != "" && !m.editing {
		if req, ok := m.state.Connect(addr); ok {
			cmds = append(cmds, m.fetch(req))
		}
	}
	return tea.Batch(cmds...)
}

// Update handles key presses and fetch results.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case portfolioMsg:
		if m.state.Resolve(msg.generation, msg.portfolio.Tokens) {
			m.refreshTable()
		} else {
			m.logger.Debug("Dropped stale portfolio response", zap.Uint64("generation", msg.generation))
		}
		return m, nil

	case fetchErrMsg:
		if !m.state.Fail(msg.generation, msg.err) {
			m.logger.Debug("Dropped stale fetch error", zap.Uint64("generation", msg.generation), zap.Error(msg.err))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m *Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.cancelInFlight()
		return m, tea.Quit
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.editing = false
		m.input.Blur()
		req, ok := m.state.Connect(m.input.Value())
		if !m.state.IsConnected() {
			m.cancelInFlight()
			m.refreshTable()
		}
		if ok {
			return m, m.fetch(req)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.cancelInFlight()
		return m, tea.Quit
	case "a", "c":
		m.editing = true
		return m, m.input.Focus()
	case "d":
		m.cancelInFlight()
		m.state.Disconnect()
		m.input.SetValue("")
		m.refreshTable()
		return m, nil
	case "r":
		if req, ok := m.state.Retry(); ok {
			return m, m.fetch(req)
		}
		return m, nil
	case "tab":
		if req, ok := m.state.SetChain(m.nextChain()); ok {
			return m, m.fetch(req)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) nextChain() string {
	if len(m.chains) == 0 {
		return m.state.Chain()
	}
	for i, c := range m.chains {
		if c == m.state.Chain() {
			return m.chains[(i+1)%len(m.chains)]
		}
	}
	return m.chains[0]
}

// fetch cancels the previous request and starts req.
func (m *Model) fetch(req view.Request) tea.Cmd {
	m.cancelInFlight()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	fetcher := m.fetcher

	return func() tea.Msg {
		portfolio, err := fetcher.Fetch(ctx, req)
		if err != nil {
			return fetchErrMsg{generation: req.Generation, err: err}
		}
		return portfolioMsg{generation: req.Generation, portfolio: portfolio}
	}
}

func (m *Model) cancelInFlight() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) refreshTable() {
	rows := m.state.TableRows()
	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, table.Row{r.Token, r.Symbol, r.Balance, r.UsdPrice, r.UsdValue, r.Address})
	}
	m.table.SetRows(tableRows)
}

// View renders the screen.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("DeFi Portfolio Tracker"))
	b.WriteString("\n\n")

	if m.editing {
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter: connect • esc: cancel • empty address disconnects"))
		return b.String()
	}

	chain := m.state.Chain()
	if chain == "" {
		chain = "default"
	}

	if !m.state.IsConnected() {
		b.WriteString(mutedStyle.Render("Not connected. Press a to enter a wallet address."))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("a: address • tab: chain (" + chain + ") • q: quit"))
		return b.String()
	}

	b.WriteString(mutedStyle.Render("Connected: "))
	b.WriteString(addressStyle.Render(m.state.Address()))
	b.WriteString(mutedStyle.Render("  on " + chain))
	b.WriteString("\n\n")
	b.WriteString(totalStyle.Render("Total Portfolio Value: " + view.FormatUSD(m.state.TotalValue())))
	b.WriteString("\n\n")

	switch m.state.State() {
	case view.StateLoading:
		b.WriteString(m.spinner.View() + " Loading balances...")
		b.WriteString("\n")
	case view.StateError:
		b.WriteString(errorStyle.Render("Error: " + m.state.Err().Error()))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("press r to retry"))
		b.WriteString("\n")
	case view.StateLoaded:
		if m.state.ShowEmpty() {
			b.WriteString(mutedStyle.Render(view.NoTokensMessage))
			b.WriteString("\n")
			break
		}
		if m.state.ShowChart() {
			b.WriteString(renderChart(m.state.ChartSlices(), m.chartWidth()))
			b.WriteString("\n")
		}
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("a: address • d: disconnect • tab: chain • r: retry • q: quit"))
	return b.String()
}

func (m *Model) chartWidth() int {
	if m.width <= 0 {
		return 40
	}
	return max(10, min(60, m.width-30))
}
