// Package tui renders the governance dashboard: chain status, open
// proposals with their tallies, and the ranked council node grid.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

func padToWidth(s string, width int) string {
	current := runewidth.StringWidth(s)
	if current >= width {
		return s
	}
	return s + strings.Repeat(" ", width-current)
}

// truncateToWidth cuts s to the given display width, runewise.
func truncateToWidth(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	out := ""
	for _, r := range s {
		if runewidth.StringWidth(out+string(r)) > width {
			break
		}
		out += string(r)
	}
	return out
}

func separatorLine(width int) string {
	if width < 2 {
		return strings.Repeat("─", width)
	}
	return "├" + strings.Repeat("─", width-2) + "┤"
}

func formatInfoLine(text string, width int) string {
	if width < 2 {
		return padToWidth(text, width)
	}
	return "│" + padToWidth(truncateToWidth(text, width-2), width-2) + "│"
}

// ChainMsg updates the connection pane.
type ChainMsg struct {
	ChainID   string
	Height    int64
	BlockTime time.Duration
}

// ProposalRow is one proposal line in the proposals pane.
type ProposalRow struct {
	ID        string
	Title     string
	Status    string
	Yes       int64
	No        int64
	VotingEnd int64
}

// GovernanceMsg updates the governance totals and the proposals pane.
type GovernanceMsg struct {
	Proposals  int64
	Active     int64
	Voters     int64
	TotalPower int64
	QuorumBps  int64
	Rows       []ProposalRow
}

// CouncilRow is one node cell in the council grid.
type CouncilRow struct {
	NodeID  string
	Moniker string
	Overall float64
	Risk    string
}

// CouncilMsg updates the council grid.
type CouncilMsg struct {
	Rows []CouncilRow
}

// Model holds the dashboard state
type Model struct {
	chain   ChainMsg
	gov     GovernanceMsg
	council []CouncilRow
	width   int
	height  int
}

// NewModel creates an empty dashboard model
func NewModel() Model {
	return Model{}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ChainMsg:
		m.chain = msg
		return m, nil

	case GovernanceMsg:
		m.gov = msg
		return m, nil

	case CouncilMsg:
		m.council = msg.Rows
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the dashboard
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	proposals := m.renderProposals()
	council := m.renderCouncil()
	bottom := "└" + strings.Repeat("─", max(0, m.width-2)) + "┘"

	return lipgloss.JoinVertical(lipgloss.Left, header, proposals, council, bottom)
}

// renderHeader renders the three-column status box at the top.
func (m Model) renderHeader() string {
	colWidth := (m.width - 4) / 3
	rightColWidth := m.width - colWidth*2 - 4

	blockTimeStr := "n/a"
	if m.chain.BlockTime > 0 {
		blockTimeStr = fmt.Sprintf("%.3fs", m.chain.BlockTime.Seconds())
	}
	chainStr := m.chain.ChainID
	if chainStr == "" {
		chainStr = "connecting..."
	}

	leftLines := []string{
		fmt.Sprintf("chain: %s", chainStr),
		fmt.Sprintf("height: %d", m.chain.Height),
		fmt.Sprintf("block time: %s", blockTimeStr),
	}
	middleLines := []string{
		fmt.Sprintf("proposals: %d (%d open)", m.gov.Proposals, m.gov.Active),
		fmt.Sprintf("voters: %d", m.gov.Voters),
		fmt.Sprintf("total power: %d", m.gov.TotalPower),
	}
	rightLines := []string{
		fmt.Sprintf("quorum: %d bps", m.gov.QuorumBps),
		fmt.Sprintf("council nodes: %d", len(m.council)),
		"press q to quit",
	}

	var rows []string
	for i := 0; i < 3; i++ {
		left := truncateToWidth(leftLines[i], colWidth-2)
		middle := truncateToWidth(middleLines[i], colWidth-2)
		right := truncateToWidth(rightLines[i], rightColWidth-2)
		rows = append(rows, fmt.Sprintf("│ %s │ %s │ %s │",
			padToWidth(left, colWidth-2),
			padToWidth(middle, colWidth-2),
			padToWidth(right, rightColWidth-2)))
	}

	topBorder := fmt.Sprintf("┌%s┬%s┬%s┐",
		strings.Repeat("─", colWidth),
		strings.Repeat("─", colWidth),
		strings.Repeat("─", rightColWidth))
	separator := fmt.Sprintf("├%s┴%s┴%s┤",
		strings.Repeat("─", colWidth),
		strings.Repeat("─", colWidth),
		strings.Repeat("─", rightColWidth))

	return topBorder + "\n" + strings.Join(rows, "\n") + "\n" + separator
}

// renderProposals renders one line per proposal, newest last.
func (m Model) renderProposals() string {
	if len(m.gov.Rows) == 0 {
		return formatInfoLine(" no proposals yet", m.width)
	}

	// Leave room for the header box, council grid, and borders.
	maxRows := m.height/2 - 6
	if maxRows < 1 {
		maxRows = 1
	}
	rows := m.gov.Rows
	if len(rows) > maxRows {
		rows = rows[len(rows)-maxRows:]
	}

	now := time.Now().Unix()
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		line := fmt.Sprintf(" %-8s %-16s yes=%-10d no=%-10d %-9s %s",
			id, r.Status, r.Yes, r.No, fmtRemaining(r.VotingEnd-now), r.Title)
		lines = append(lines, formatInfoLine(line, m.width))
	}
	return strings.Join(lines, "\n")
}

// renderCouncil renders the ranked node grid, three columns wide.
func (m Model) renderCouncil() string {
	if len(m.council) == 0 {
		return separatorLine(m.width) + "\n" + formatInfoLine(" no council telemetry yet", m.width)
	}

	cols := 3
	separatorWidth := runewidth.StringWidth("│")
	colWidth := (m.width - separatorWidth*(cols+1)) / cols
	if colWidth < 20 {
		colWidth = 20
	}

	availableHeight := m.height/2 - 4
	if availableHeight < 1 {
		availableHeight = 1
	}
	totalRows := (len(m.council) + cols - 1) / cols
	rows := totalRows
	if rows > availableHeight {
		rows = availableHeight
	}

	var lines []string
	for row := 0; row < rows; row++ {
		cells := make([]string, 0, cols)
		for col := 0; col < cols; col++ {
			idx := row*cols + col
			if idx >= len(m.council) {
				cells = append(cells, strings.Repeat(" ", colWidth))
				continue
			}
			n := m.council[idx]
			name := n.Moniker
			if name == "" {
				name = n.NodeID
				if len(name) > 10 {
					name = name[:10]
				}
			}
			risk := "!"
			if n.Risk == "low" {
				risk = " "
			}
			prefix := fmt.Sprintf("%3d %5.1f %s ", idx+1, n.Overall, risk)
			cell := prefix + truncateToWidth(name, colWidth-runewidth.StringWidth(prefix))
			cells = append(cells, padToWidth(cell, colWidth))
		}
		line := "│" + strings.Join(cells, "│") + "│"
		// Pad or trim the assembled line to the full terminal width.
		lineWidth := runewidth.StringWidth(line)
		if lineWidth < m.width {
			line = line[:len(line)-len("│")] + strings.Repeat(" ", m.width-lineWidth) + "│"
		} else if lineWidth > m.width {
			line = truncateToWidth(line, m.width-1) + "│"
		}
		lines = append(lines, line)
	}

	legend := formatInfoLine(" rank, overall score, risk flag, name", m.width)
	return separatorLine(m.width) + "\n" + strings.Join(lines, "\n") + "\n" + separatorLine(m.width) + "\n" + legend
}

// fmtRemaining formats seconds until the voting window closes.
func fmtRemaining(secs int64) string {
	if secs <= 0 {
		return "closed"
	}
	d := time.Duration(secs) * time.Second
	if d >= 24*time.Hour {
		return fmt.Sprintf("%dd%dh", int(d.Hours())/24, int(d.Hours())%24)
	}
	if d >= time.Hour {
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}

// Run starts the dashboard and consumes updates until the channel closes.
func Run(updateCh <-chan interface{}) error {
	m := NewModel()
	p := tea.NewProgram(m, tea.WithAltScreen())

	go func() {
		for data := range updateCh {
			switch msg := data.(type) {
			case ChainMsg:
				p.Send(msg)
			case GovernanceMsg:
				p.Send(msg)
			case CouncilMsg:
				p.Send(msg)
			}
		}
		p.Quit()
	}()

	_, err := p.Run()
	return err
}
