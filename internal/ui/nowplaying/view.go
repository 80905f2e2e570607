package nowplaying

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/novatone/internal/track"
)

const (
	headerHeight = 2
	barHeight    = 4 // two content rows + borders
	footerHeight = 2
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderList(max(m.height-headerHeight-barHeight-footerHeight, 1)))
	b.WriteString("\n")
	b.WriteString(m.renderPlayerBar())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("NovaTone")

	mode := "Trending"
	if m.query != "" {
		mode = fmt.Sprintf("Search %q", m.query)
	}
	if m.searching {
		mode = m.input.View()
	}

	count := mutedStyle.Render(humanize.Comma(int64(len(m.tracks))) + " tracks")
	if m.loading {
		count = m.spinner.View() + " " + mutedStyle.Render("loading")
	}
	return title + "  " + baseStyle.Render(mode) + "  " + count
}

func (m Model) renderList(rows int) string {
	if len(m.tracks) == 0 {
		return subtleStyle.Render("  nothing here yet")
	}

	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(start+rows, len(m.tracks))

	var currentID string
	if m.snap.Current != nil {
		currentID = m.snap.Current.ID
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(m.tracks[i], i == m.cursor, m.tracks[i].ID == currentID))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(t track.Track, selected, current bool) string {
	marker := "  "
	if current {
		marker = playSymbol + " "
	}
	fav := " "
	if m.favorites[t.ID] {
		fav = favoriteStyle.Render("♥")
	}

	right := formatDuration(time.Duration(t.Duration) * time.Second)
	if t.Mood != nil {
		right = *t.Mood + "  " + right
	}

	leftWidth := max(m.width-lipgloss.Width(right)-6, 10)
	left := truncate(t.String(), leftWidth)
	pad := max(leftWidth-lipgloss.Width(left), 0)
	line := marker + fav + " " + left + strings.Repeat(" ", pad) + "  " + mutedStyle.Render(right)

	switch {
	case selected:
		return cursorStyle.Render(line)
	case current:
		return playingStyle.Render(line)
	default:
		return line
	}
}

func (m Model) renderPlayerBar() string {
	innerWidth := max(m.width-6, 20)

	status := stopSymbol
	switch {
	case m.snap.Playing:
		status = playSymbol
	case m.snap.Current != nil:
		status = pauseSymbol
	}

	title := "Nothing playing"
	if m.snap.Current != nil {
		title = m.snap.Current.String()
	}

	timeStr := formatDuration(m.snap.Elapsed) + " / " + formatDuration(m.snap.Duration)
	barWidth := max(innerWidth-lipgloss.Width(status)-lipgloss.Width(timeStr)-4, 5)
	first := status + "  " + renderProgress(m.snap.Progress, barWidth) + "  " + timeStr

	second := truncate(title, innerWidth/2) + "  " + m.renderModes()

	return barStyle.Padding(0, 2).Width(max(m.width-2, 10)).Render(first + "\n" + second)
}

func (m Model) renderModes() string {
	parts := []string{
		fmt.Sprintf("vol %d%%", int(m.snap.Volume*100+0.5)),
		"repeat " + m.snap.Repeat.String(),
	}
	if m.snap.Shuffle {
		parts = append(parts, activeStyle.Render("shuffle"))
	}
	if m.fx.BassBoost > 0 {
		parts = append(parts, activeStyle.Render(fmt.Sprintf("bass +%gdB", m.fx.BassBoost)))
	}
	if m.fx.Nightcore {
		parts = append(parts, activeStyle.Render("nightcore"))
	}
	if m.fx.Spatial {
		parts = append(parts, activeStyle.Render("8D"))
	}
	return mutedStyle.Render(strings.Join(parts, " · "))
}

func (m Model) renderFooter() string {
	if m.status.Text != "" {
		style := mutedStyle
		if m.status.Error {
			style = errorStyle
		}
		return style.Render(m.status.Text)
	}
	return m.help.View(m.keys)
}

// renderProgress draws a bar for a percentage in 0..100.
func renderProgress(percent float64, width int) string {
	filled := min(int(float64(width)*percent/100), width)
	filled = max(filled, 0)
	return progressFilled.Render(strings.Repeat("━", filled)) +
		progressEmpty.Render(strings.Repeat("─", width-filled))
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

func truncate(s string, width int) string {
	return ansi.Truncate(s, width, "…")
}

