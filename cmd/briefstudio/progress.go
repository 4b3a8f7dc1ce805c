package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	headStyle  = lipgloss.NewStyle().Bold(true)
	stageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Width(11)
	doneStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

var stageLabels = map[brief.Stage]string{
	brief.StageStrategy:  "Strategy",
	brief.StageThemes:    "Themes",
	brief.StageBriefs:    "Briefs",
	brief.StageVisuals:   "Visuals",
	brief.StageExecution: "Images",
}

// progress prints one line per stage update, skipping repeated percentages.
type progress struct {
	w    io.Writer
	last map[brief.Stage]int
}

func newProgress(w io.Writer) *progress {
	return &progress{w: w, last: map[brief.Stage]int{}}
}

func (p *progress) report(stage brief.Stage, percent int) {
	if prev, ok := p.last[stage]; ok && prev == percent {
		return
	}
	p.last[stage] = percent

	step := 0
	for i, s := range brief.Stages {
		if s == stage {
			step = i + 1
		}
	}
	fmt.Fprintf(p.w, "[%d/%d] %s %s %3d%%\n", step, len(brief.Stages), stageStyle.Render(stageLabels[stage]), bar(percent, 20), percent)
}

func bar(percent, width int) string {
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	out := make([]rune, width)
	for i := range out {
		if i < filled {
			out[i] = '█'
		} else {
			out[i] = '░'
		}
	}
	return doneStyle.Render(string(out[:filled])) + string(out[filled:])
}
