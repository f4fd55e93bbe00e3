package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/engram/internal/goal"
	"github.com/felixgeelhaar/engram/internal/memory"
	"github.com/felixgeelhaar/engram/internal/store"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	faintStyle = lipgloss.NewStyle().Faint(true)
)

const barWidth = 20

// Bar renders a fixed-width progress bar for a ratio in [0,1].
func Bar(ratio float64) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio*float64(barWidth) + 0.5)
	return labelStyle.Render(strings.Repeat("█", filled)) +
		faintStyle.Render(strings.Repeat("░", barWidth-filled))
}

// Status holds the display fields for the status panel.
type Status struct {
	MemorySize     int
	MemoryCapacity int
	ActiveGoals    int
	CompletedGoals int
	Mood           string
	Energy         float64
	Curiosity      float64
	Frustration    float64
	Embedder       string
	Tools          int
}

// RenderStatus formats the status panel.
func RenderStatus(s Status) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" engram ") + "\n")

	ratio := 0.0
	if s.MemoryCapacity > 0 {
		ratio = float64(s.MemorySize) / float64(s.MemoryCapacity)
	}
	fmt.Fprintf(&b, "  %s %s %d/%d\n", labelStyle.Render("memory "), Bar(ratio), s.MemorySize, s.MemoryCapacity)
	fmt.Fprintf(&b, "  %s %d active, %d done\n", labelStyle.Render("goals  "), s.ActiveGoals, s.CompletedGoals)
	fmt.Fprintf(&b, "  %s %s (energy %.0f, curiosity %.2f, frustration %.2f)\n",
		labelStyle.Render("mood   "), s.Mood, s.Energy, s.Curiosity, s.Frustration)
	fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("embeds "), s.Embedder)
	fmt.Fprintf(&b, "  %s %d registered\n", labelStyle.Render("tools  "), s.Tools)
	return b.String()
}

// RenderStats formats store occupancy.
func RenderStats(s memory.Stats) string {
	return fmt.Sprintf("%d of %d memories, dimension %d\n", s.Size, s.Capacity, s.Dimension)
}

// RenderItems formats recalled or listed memories, one per line with a
// faint detail line underneath.
func RenderItems(items []memory.Item) string {
	if len(items) == 0 {
		return faintStyle.Render("no memories") + "\n"
	}
	var b strings.Builder
	for i, it := range items {
		fmt.Fprintf(&b, "%2d. %s %s\n", i+1, labelStyle.Render(fmt.Sprintf("[%.2f]", it.Importance)), it.Content)
		b.WriteString(faintStyle.Render(fmt.Sprintf("    %s  accessed %d", ShortID(it.ID), it.AccessCount)))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderGoals formats active goals with progress bars and completed
// goals underneath.
func RenderGoals(active, completed []goal.Goal) string {
	if len(active) == 0 && len(completed) == 0 {
		return faintStyle.Render("no goals") + "\n"
	}
	var b strings.Builder
	for _, g := range active {
		fmt.Fprintf(&b, "%3d. %s %3.0f%% %s\n", g.ID, Bar(g.Progress), g.Progress*100, g.Text)
	}
	for _, g := range completed {
		b.WriteString(faintStyle.Render(fmt.Sprintf("%3d. done %s", g.ID, g.Text)))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSnapshots formats the snapshot index.
func RenderSnapshots(snaps []*store.Snapshot) string {
	if len(snaps) == 0 {
		return faintStyle.Render("no snapshots") + "\n"
	}
	var b strings.Builder
	for _, s := range snaps {
		fmt.Fprintf(&b, "%s  %s  %s\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04:05"), faintStyle.Render(s.Path))
	}
	return b.String()
}

// ShortID abbreviates a memory id for display.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
