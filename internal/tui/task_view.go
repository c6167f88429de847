package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mrz1836/scout/internal/activetask"
	"github.com/mrz1836/scout/internal/constants"
)

// DefaultLogLines is how many trailing log entries RenderTask shows.
const DefaultLogLines = 8

const progressBarWidth = 24

// RenderTask renders the active-task panel shown by 'scout task status' and
// 'scout watch': topic, stage pipeline, progress bar, elapsed time, counters and
// the last logLines log entries.
func RenderTask(st activetask.Status, logLines int) string {
	styles := NewOutputStyles()

	if st.Topic == "" {
		return styles.Dim.Render("No research task.")
	}

	var b strings.Builder

	state := styles.Info.Render("running")
	switch {
	case st.HasCompletedTask:
		state = styles.Success.Render("completed")
	case !st.IsRunning:
		state = styles.Dim.Render("stopped")
	}
	fmt.Fprintf(&b, "%s %s  %s\n", StyleBold.Render("Research:"), st.Topic, state)

	b.WriteString(renderStages(st.Stage, st.CompletedStages, styles))
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s %3d%%   %s %s\n",
		ProgressBar(st.Progress, progressBarWidth), st.Progress,
		styles.Dim.Render("elapsed"), FormatElapsed(st.ElapsedTime))

	fmt.Fprintf(&b, "%s notes · %s analyzed · %s insights\n",
		StyleBold.Render(fmt.Sprint(st.Stats.NotesFound)),
		StyleBold.Render(fmt.Sprint(st.Stats.ContentsAnalyzed)),
		StyleBold.Render(fmt.Sprint(st.Stats.InsightsExtracted)))

	if logLines <= 0 {
		logLines = DefaultLogLines
	}
	logs := st.Logs
	if len(logs) > logLines {
		logs = logs[len(logs)-logLines:]
	}
	if len(logs) > 0 {
		b.WriteString("\n")
	}
	for _, entry := range logs {
		b.WriteString(RenderLogEntry(entry))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorMuted).
		Padding(0, 1).
		Render(strings.TrimRight(b.String(), "\n"))
}

// RenderLogEntry renders one task log line: time, level icon, message.
func RenderLogEntry(e activetask.LogEntry) string {
	style := lipgloss.NewStyle().Foreground(LevelColor(e.Level))
	return fmt.Sprintf("%s %s %s", StyleDim.Render(e.Time), style.Render(LevelIcon(e.Level)), e.Message)
}

// renderStages renders the known stages in order, marking completed ones and
// the current one. An unknown current stage is appended at the end.
func renderStages(current string, completed []string, styles *OutputStyles) string {
	stages := constants.KnownStages()
	if current != "" && !slices.Contains(stages, current) {
		stages = append(stages, current)
	}

	parts := make([]string, 0, len(stages))
	for _, stage := range stages {
		label := StageLabel(stage)
		switch {
		case stage == current:
			parts = append(parts, styles.Info.Bold(true).Render("● "+label))
		case slices.Contains(completed, stage):
			parts = append(parts, styles.Success.UnsetBold().Render("✓ "+label))
		default:
			parts = append(parts, styles.Dim.Render("○ "+label))
		}
	}
	return strings.Join(parts, styles.Dim.Render(" → "))
}

// ProgressBar renders percent (clamped to 0..100) as a fixed-width bar.
func ProgressBar(percent, width int) string {
	percent = max(0, min(constants.MaxProgress, percent))
	filled := percent * width / constants.MaxProgress
	return lipgloss.NewStyle().Foreground(ColorSuccess).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Repeat("░", width-filled))
}
