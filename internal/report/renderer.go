package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Renderer serializes a Report to bytes.
type Renderer interface {
	Render(r *Report) ([]byte, error)
}

// ForFormat returns the renderer for "plain", "markdown" or "json".
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "", "plain":
		return &PlainRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	}
	return nil, fmt.Errorf("unknown format %q: want plain, markdown or json", format)
}

// JSONRenderer renders a Report as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(rep *Report) ([]byte, error) {
	return json.MarshalIndent(rep, "", "  ")
}

const timeLayout = "2006-01-02 15:04:05"

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}

func cps(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func savedLabel(saved bool, rank int) string {
	switch {
	case !saved:
		return "not saved"
	case rank > 0:
		return "#" + strconv.Itoa(rank)
	}
	return "saved"
}

// PlainRenderer renders a Report as terminal tables.
type PlainRenderer struct{}

func (r *PlainRenderer) Render(rep *Report) ([]byte, error) {
	var sb strings.Builder
	title := lipgloss.NewStyle().Bold(true)

	switch rep.Kind {
	case KindLeaderboard:
		sb.WriteString(title.Render("🏆 Leaderboard") + "\n")
		if len(rep.Leaderboard) == 0 {
			sb.WriteString("No scores yet. Be the first to play!\n")
			break
		}
		t := newTable("RANK", "PLAYER", "CLICKS", "DATE")
		for _, e := range rep.Leaderboard {
			t.Row(strings.TrimSpace(medal(e.Rank)+" "+strconv.Itoa(e.Rank)), e.Username,
				strconv.Itoa(e.Clicks), e.GameDate.Local().Format(timeLayout))
		}
		sb.WriteString(t.String() + "\n")

	case KindCatalog:
		sb.WriteString(title.Render("🏅 Achievements") + "\n")
		if len(rep.Achievements) == 0 {
			sb.WriteString("No achievements defined.\n")
			break
		}
		t := newTable("", "NAME", "DESCRIPTION", "RANGE")
		for _, a := range rep.Achievements {
			t.Row(a.Icon, a.Name, a.Description, a.Range())
		}
		sb.WriteString(t.String() + "\n")

	case KindUnlocked:
		sb.WriteString(title.Render("🏅 Achievements of "+rep.Username) + "\n")
		if len(rep.Achievements) == 0 {
			sb.WriteString("None yet. Play a game to earn some!\n")
			break
		}
		t := newTable("", "NAME", "DESCRIPTION", "EARNED")
		for _, a := range rep.Achievements {
			earned := ""
			if a.EarnedAt != nil {
				earned = a.EarnedAt.Local().Format(timeLayout)
			}
			t.Row(a.Icon, a.Name, a.Description, earned)
		}
		sb.WriteString(t.String() + "\n")

	case KindHistory:
		sb.WriteString(title.Render("🕑 Local history") + "\n")
		if len(rep.History) == 0 {
			sb.WriteString("No games recorded yet.\n")
			break
		}
		t := newTable("ENDED", "PLAYER", "CLICKS", "CPS", "RESULT")
		for _, res := range rep.History {
			player := res.Username
			if player == "" {
				player = "-"
			}
			t.Row(res.EndedAt.Local().Format(timeLayout), player, strconv.Itoa(res.Clicks),
				cps(res.CPS()), savedLabel(res.Saved, res.Rank))
		}
		sb.WriteString(t.String() + "\n")

	default:
		return nil, fmt.Errorf("unknown report kind %q", rep.Kind)
	}
	return []byte(sb.String()), nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...)
}

// MarkdownRenderer renders a Report as Markdown, suitable for pasting into
// an issue or chat.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(rep *Report) ([]byte, error) {
	var sb strings.Builder

	switch rep.Kind {
	case KindLeaderboard:
		sb.WriteString("# Leaderboard\n\n")
		writeMeta(&sb, rep)
		if len(rep.Leaderboard) == 0 {
			sb.WriteString("_No scores yet._\n")
			break
		}
		sb.WriteString("| Rank | Player | Clicks | Date |\n")
		sb.WriteString("|------|--------|--------|------|\n")
		for _, e := range rep.Leaderboard {
			fmt.Fprintf(&sb, "| %s | %s | %d | %s |\n",
				strings.TrimSpace(medal(e.Rank)+" "+strconv.Itoa(e.Rank)),
				escapeCell(e.Username), e.Clicks, e.GameDate.UTC().Format(timeLayout))
		}

	case KindCatalog:
		sb.WriteString("# Achievements\n\n")
		writeMeta(&sb, rep)
		if len(rep.Achievements) == 0 {
			sb.WriteString("_No achievements defined._\n")
			break
		}
		sb.WriteString("| | Name | Description | Range |\n")
		sb.WriteString("|-|------|-------------|-------|\n")
		for _, a := range rep.Achievements {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
				a.Icon, escapeCell(a.Name), escapeCell(a.Description), a.Range())
		}

	case KindUnlocked:
		fmt.Fprintf(&sb, "# Achievements of %s\n\n", rep.Username)
		writeMeta(&sb, rep)
		if len(rep.Achievements) == 0 {
			sb.WriteString("_None yet._\n")
			break
		}
		for _, a := range rep.Achievements {
			line := strings.TrimSpace(a.Icon + " **" + a.Name + "**")
			if a.Description != "" {
				line += ": " + a.Description
			}
			if a.EarnedAt != nil {
				line += " (" + a.EarnedAt.UTC().Format(timeLayout) + ")"
			}
			sb.WriteString("- " + line + "\n")
		}

	case KindHistory:
		sb.WriteString("# Local history\n\n")
		writeMeta(&sb, rep)
		if len(rep.History) == 0 {
			sb.WriteString("_No games recorded yet._\n")
			break
		}
		sb.WriteString("| Ended | Player | Clicks | CPS | Result | Achievements |\n")
		sb.WriteString("|-------|--------|--------|-----|--------|--------------|\n")
		for _, res := range rep.History {
			fmt.Fprintf(&sb, "| %s | %s | %d | %s | %s | %s |\n",
				res.EndedAt.UTC().Format(timeLayout), escapeCell(res.Username), res.Clicks,
				cps(res.CPS()), savedLabel(res.Saved, res.Rank),
				escapeCell(strings.Join(res.Achievements, ", ")))
		}

	default:
		return nil, fmt.Errorf("unknown report kind %q", rep.Kind)
	}
	return []byte(sb.String()), nil
}

func writeMeta(sb *strings.Builder, rep *Report) {
	fmt.Fprintf(sb, "- Generated: %s\n", rep.GeneratedAt.UTC().Format(timeLayout+" MST"))
	if rep.BackendURL != "" {
		fmt.Fprintf(sb, "- Backend: %s\n", rep.BackendURL)
	}
	sb.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
