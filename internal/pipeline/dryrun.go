package pipeline

import (
	"context"
	"fmt"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
)

// StepResult describes one phase of a planned resume.
type StepResult struct {
	Name    string
	Summary string
}

// Plan is what Resume would do for a stored run.
type Plan struct {
	BriefID string
	Steps   []StepResult
}

// DryRun shows what a resume of briefID would do without executing.
func (p *Pipeline) DryRun(ctx context.Context, briefID string) (*Plan, error) {
	r, err := p.store.Get(ctx, briefID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("no stored run %s", briefID)
	}

	plan := &Plan{BriefID: briefID}
	add := func(name, format string, args ...any) {
		plan.Steps = append(plan.Steps, StepResult{Name: name, Summary: "[dry-run] " + fmt.Sprintf(format, args...)})
	}

	if r.Strategy == nil {
		add("Strategy", "Would generate the strategy")
	} else {
		add("Strategy", "Strategy already stored")
	}

	themeCount := 0
	if r.Strategy != nil {
		themeCount = len(r.Strategy.Themes)
	}
	if themeCount == 0 {
		add("Themes", "Would generate %d editorial themes", brief.ThemeCount)
		themeCount = brief.ThemeCount
	} else {
		add("Themes", "%d themes already stored", themeCount)
	}

	done := r.BriefCount()
	if done >= themeCount {
		add("Briefs", "%d briefs already stored", done)
	} else {
		add("Briefs", "Would generate %d of %d briefs", themeCount-done, themeCount)
	}

	if r.VisualAnalysis == nil {
		add("Visual analysis", "Would analyze the visual identity")
	} else {
		add("Visual analysis", "Visual analysis already stored")
	}

	var all []brief.CreativeBrief
	if r.Briefs != nil {
		all = r.Briefs.Briefs
	}
	pending := len(pendingBriefs(all, r.ExecutedBriefs))
	if done < themeCount {
		pending += themeCount - done
	}
	add("Images", "%d images executed, %d would be generated (%d previously failed)",
		len(r.ExecutedBriefs), pending, len(r.FailedBriefs))

	return plan, nil
}
