package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/clickrush/internal/session"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	counterStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	timeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("178"))

	// Last seconds of a game
	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	flashStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("220")).
			Padding(0, 2)

	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	// Podium rows on the leaderboard
	rankStyles = map[int]lipgloss.Style{
		1: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		2: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250")),
		3: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("172")),
	}

	selfStyle = lipgloss.NewStyle().Underline(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

const leaderboardSize = 10

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  clickrush  " + m.playerLabel())

	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	var content string
	if m.activeTab == tabGame {
		content = m.renderGame()
	} else {
		content = m.viewports[m.activeTab].View()
	}

	hint := "  space click  enter start  u name  r refresh  tab switch  q quit"
	if m.mode != modePlay {
		hint = "  enter confirm  esc cancel"
	}
	statusBar := statusBarStyle.Width(m.width).Render(hint)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

func (m Model) playerLabel() string {
	if m.username == "" {
		return "(no player name)"
	}
	return "player: " + m.username
}

func (m Model) renderGame() string {
	var sb strings.Builder
	sb.WriteString("\n")

	if m.banner != nil {
		a := m.banner
		body := fmt.Sprintf("🏆 Achievement unlocked!\n%s %s\n%s", a.Icon, a.Name, dimStyle.Render(a.Description))
		sb.WriteString(bannerStyle.Render(body) + "\n\n")
	}

	sb.WriteString("  " + m.status + "\n\n")

	sb.WriteString(labelStyle.Render("  Clicks  ") + counterStyle.Render(fmt.Sprintf("%d", m.clicks)))
	if m.flash != "" {
		sb.WriteString("   " + flashStyle.Render(m.flash))
	}
	sb.WriteString("\n")

	ts := timeStyle
	if m.warning {
		ts = warnStyle
	}
	sb.WriteString(labelStyle.Render("  Time    ") + ts.Render(fmt.Sprintf("%ds", m.remaining)))
	frac := 0.0
	if m.duration > 0 {
		frac = float64(m.remaining) / float64(m.duration)
	}
	sb.WriteString("  " + m.bar.ViewAs(frac) + "\n")

	switch m.phase {
	case session.StatusCountingDown:
		sb.WriteString("\n" + flashStyle.Render("  GET READY…") + "\n")
	case session.StatusActive:
		sb.WriteString("\n" + dimStyle.Render("  hit space!") + "\n")
	}

	if m.mode != modePlay {
		prompt := "  Name: "
		if m.mode == modePrompt {
			prompt = "  Save score as: "
		}
		sb.WriteString("\n" + labelStyle.Render(prompt) + m.input.View() + "\n")
	}
	return sb.String()
}

func (m *Model) renderTab(t tabID) string {
	switch t {
	case tabLeaderboard:
		return m.renderLeaderboard()
	case tabAchievements:
		return m.renderAchievements()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func (m *Model) renderLeaderboard() string {
	var sb strings.Builder
	sb.WriteString(heading("🏆 Top Players"))

	if m.leaderboardErr != nil {
		sb.WriteString(errStyle.Render("  Failed to load leaderboard: "+m.leaderboardErr.Error()) + "\n")
	}
	if len(m.leaderboard) == 0 {
		sb.WriteString(dimStyle.Render("  No scores yet. Be the first to play!") + "\n")
		return sb.String()
	}

	for i, e := range m.leaderboard {
		if i == leaderboardSize {
			break
		}
		row := fmt.Sprintf("  %3d.  %-20s %5d clicks", e.Rank, e.Username, e.Clicks)
		if style, ok := rankStyles[e.Rank]; ok {
			row = style.Render(row)
		}
		if e.Username == m.username {
			row = selfStyle.Render(row)
		}
		sb.WriteString(row + "  " + dimStyle.Render(e.GameDate.Local().Format("Jan 2 15:04")) + "\n")
	}
	return sb.String()
}

func (m *Model) renderAchievements() string {
	var sb strings.Builder
	sb.WriteString(heading("🏅 Achievements"))

	if m.catalogErr != nil {
		sb.WriteString(errStyle.Render("  Failed to load achievements: "+m.catalogErr.Error()) + "\n")
	}
	if len(m.catalog) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}

	earned := map[string]bool{}
	for _, a := range m.unlocked {
		earned[a.Name] = true
	}
	for _, a := range m.catalog {
		mark := dimStyle.Render("○")
		if earned[a.Name] {
			mark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
		}
		color := lipgloss.Color(a.Color)
		if a.Color == "" {
			color = lipgloss.Color("15")
		}
		name := lipgloss.NewStyle().Bold(true).Foreground(color).Render(a.Icon + " " + a.Name)
		fmt.Fprintf(&sb, "  %s %s  %s\n", mark, name, dimStyle.Render(a.Range()))
		if a.Description != "" {
			sb.WriteString("      " + a.Description + "\n")
		}
	}
	if m.username != "" {
		fmt.Fprintf(&sb, "\n  %d of %d unlocked by %s\n", len(earned), len(m.catalog), m.username)
	}
	return sb.String()
}
