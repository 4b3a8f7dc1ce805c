package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
	"github.com/TobiSchelling/BriefStudio/internal/database"
	"github.com/TobiSchelling/BriefStudio/internal/gateway"
	"github.com/TobiSchelling/BriefStudio/internal/imagegen"
	"github.com/TobiSchelling/BriefStudio/internal/imageprompt"
	"github.com/TobiSchelling/BriefStudio/internal/llm"
	"github.com/TobiSchelling/BriefStudio/internal/pacing"
	"github.com/TobiSchelling/BriefStudio/internal/results"
	"github.com/TobiSchelling/BriefStudio/internal/retry"
)

const visualResponse = `Couleurs:
- Bleu nuit
- Or

Palette:
- Bleu, or, crème`

type fakeText struct {
	content string
	err     error
	calls   int
}

func (f *fakeText) IsConfigured() bool { return true }

func (f *fakeText) Generate(ctx context.Context, messages []llm.Message, maxTokens int) (string, error) {
	f.calls++
	return f.content, f.err
}

type fakeStrategy struct {
	err   error
	calls int
}

func (f *fakeStrategy) Generate(ctx context.Context, b *brief.BriefData, website string) (*brief.Strategy, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &brief.Strategy{Content: "Stratégie " + b.CompanyName + " / " + website}, nil
}

type fakeThemes struct {
	calls     int
	headlines []string
}

func (f *fakeThemes) Generate(ctx context.Context, b *brief.BriefData, s *brief.Strategy, headlines []string) ([]brief.Theme, error) {
	f.calls++
	f.headlines = headlines
	return []brief.Theme{{Name: "Savoir-faire"}, {Name: "Coulisses"}, {Name: "Saisons"}}, nil
}

type fakeBriefs struct {
	themes []string
}

func (f *fakeBriefs) Generate(ctx context.Context, briefID string, b *brief.BriefData, themes []brief.Theme, onBrief func(int)) ([]brief.CreativeBrief, error) {
	var out []brief.CreativeBrief
	for _, th := range themes {
		f.themes = append(f.themes, th.Name)
		out = append(out, brief.CreativeBrief{
			VisualPrompt: "Scène " + th.Name,
			Content:      brief.BriefContent{Main: "Texte " + th.Name},
			Specs:        brief.Specs{Format: "carré", Dimensions: "1080x1080px"},
		})
		onBrief(len(out))
	}
	return out, nil
}

type fakeImages struct {
	fail      map[string]bool
	resumable map[string]bool
	calls     []string
	resumed   []string
	opts      []imagegen.Options
}

func (f *fakeImages) ResumeFailedGeneration(ctx context.Context, generationID, description string, b *brief.BriefData, opts imagegen.Options) (*imagegen.Result, error) {
	if !f.resumable[generationID] {
		return nil, imagegen.ErrCannotResume
	}
	f.resumed = append(f.resumed, generationID)
	return &imagegen.Result{URL: "https://img/resumed", Quality: brief.QualityHigh, Score: 90, GenerationID: generationID}, nil
}

func (f *fakeImages) GenerateOptimizedImage(ctx context.Context, description string, b *brief.BriefData, opts imagegen.Options) (*imagegen.Result, error) {
	f.calls = append(f.calls, description)
	f.opts = append(f.opts, opts)
	if f.fail[description] {
		return nil, errors.New("provider down")
	}
	return &imagegen.Result{URL: "https://img/" + strings.ReplaceAll(description, " ", "-"), Quality: brief.QualityMedium, Score: 82}, nil
}

type fakeInspiration struct{}

func (fakeInspiration) Headlines(ctx context.Context, sector string) []string {
	return []string{"Tendance " + sector}
}

func (fakeInspiration) Website(ctx context.Context, site string) string {
	return "site " + site
}

type fixture struct {
	p        *Pipeline
	store    *results.Local
	text     *fakeText
	strategy *fakeStrategy
	themes   *fakeThemes
	briefs   *fakeBriefs
	images   *fakeImages
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		store:    results.NewLocal(db),
		text:     &fakeText{content: visualResponse},
		strategy: &fakeStrategy{},
		themes:   &fakeThemes{},
		briefs:   &fakeBriefs{},
		images:   &fakeImages{fail: map[string]bool{}, resumable: map[string]bool{}},
	}
	f.p = &Pipeline{
		store:           f.store,
		text:            f.text,
		strategy:        f.strategy,
		themes:          f.themes,
		briefs:          f.briefs,
		images:          f.images,
		inspiration:     fakeInspiration{},
		visualMaxTokens: 2000,
		visualPolicy:    retry.Phase("visual analysis", 0),
		imagePolicy:     retry.Policy{Name: "image generation", MaxAttempts: 2},
		purpose:         imageprompt.PurposeSocial,
		stagePacer:      pacing.New(0),
		imagePacer:      pacing.New(0),
		newID:           func() string { return "run-1" },
	}
	return f
}

func candleBrief() *brief.BriefData {
	return &brief.BriefData{
		CompanyName: "Maison Lune",
		Sector:      "Artisanat",
		Website:     "maisonlune.fr",
	}
}

var creds = gateway.Credentials{UserEmail: "ana@example.com"}

type progress struct {
	stage   brief.Stage
	percent int
}

func TestGenerateRunsAllPhases(t *testing.T) {
	f := newFixture(t)
	var events []progress

	resp := f.p.Generate(context.Background(), creds, candleBrief(), func(s brief.Stage, pct int) {
		events = append(events, progress{s, pct})
	})

	require.True(t, resp.Success, "error: %+v", resp.Error)
	r := resp.Data
	assert.Equal(t, "run-1", r.BriefID)
	assert.Equal(t, "Stratégie Maison Lune / site maisonlune.fr", r.Strategy.Content)
	assert.Len(t, r.Strategy.Themes, 3)
	assert.Equal(t, []string{"Tendance Artisanat"}, f.themes.headlines)
	assert.Equal(t, 3, r.BriefCount())
	require.NotNil(t, r.VisualAnalysis)
	assert.Equal(t, []string{"Bleu nuit", "Or"}, r.VisualAnalysis.Identity.Colors)
	assert.Empty(t, r.FailedBriefs)

	require.Len(t, r.ExecutedBriefs, 3)
	img := r.ExecutedBriefs[0].Image
	assert.Equal(t, "https://img/Scène-Savoir-faire", img.URL)
	assert.Equal(t, "Texte Savoir-faire", img.Alt)
	assert.Equal(t, "carré", img.Type)
	assert.Equal(t, "1080x1080px", img.Ratio)
	assert.Equal(t, brief.QualityMedium, img.Quality)
	assert.Equal(t, "run-1-image-1", f.images.opts[0].GenerationID)

	var stages []brief.Stage
	for _, e := range events {
		if len(stages) == 0 || stages[len(stages)-1] != e.stage {
			stages = append(stages, e.stage)
		}
	}
	assert.Equal(t, brief.Stages, stages)
	assert.Equal(t, progress{brief.StageExecution, 100}, events[len(events)-1])
	assert.Contains(t, events, progress{brief.StageBriefs, 66})
}

func TestGenerateRejectsIncompleteBrief(t *testing.T) {
	f := newFixture(t)

	resp := f.p.Generate(context.Background(), creds, &brief.BriefData{CompanyName: "Maison Lune"}, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, brief.CodeInvalidBrief, resp.Error.Code)
	assert.Zero(t, f.strategy.calls)
}

func TestFailedImageIsRecordedAndRunContinues(t *testing.T) {
	f := newFixture(t)
	f.images.fail["Scène Coulisses"] = true

	resp := f.p.Generate(context.Background(), creds, candleBrief(), nil)
	require.True(t, resp.Success)

	assert.Len(t, resp.Data.ExecutedBriefs, 2)
	require.Len(t, resp.Data.FailedBriefs, 1)
	assert.Equal(t, brief.FailedBrief{VisualPrompt: "Scène Coulisses", Error: "provider down"}, resp.Data.FailedBriefs[0])

	attempts := 0
	for _, c := range f.images.calls {
		if c == "Scène Coulisses" {
			attempts++
		}
	}
	assert.Equal(t, 2, attempts)
}

func TestVisualAnalysisExhaustionAbortsRun(t *testing.T) {
	f := newFixture(t)
	f.text.err = errors.New("503 from provider")

	resp := f.p.Generate(context.Background(), creds, candleBrief(), nil)
	require.False(t, resp.Success)
	assert.Equal(t, brief.CodeGeneration, resp.Error.Code)
	assert.Equal(t, "visual analysis", resp.Error.Service)
	assert.Equal(t, "503 from provider", resp.Error.Message)
	assert.Equal(t, 6, f.text.calls)
	assert.Empty(t, f.images.calls)

	stored, err := f.store.Get(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.BriefCount(), "earlier phases stay persisted")
	assert.Nil(t, stored.VisualAnalysis)
}

func TestUnparseableVisualAnalysisIsKeptEmpty(t *testing.T) {
	f := newFixture(t)
	f.text.content = "rien d'exploitable"

	resp := f.p.Generate(context.Background(), creds, candleBrief(), nil)
	require.True(t, resp.Success)
	require.NotNil(t, resp.Data.VisualAnalysis)
	assert.Empty(t, resp.Data.VisualAnalysis.Identity.Colors)
	assert.Equal(t, 1, f.text.calls)
}

func TestStrategyFailureReportsService(t *testing.T) {
	f := newFixture(t)
	f.strategy.err = context.DeadlineExceeded

	resp := f.p.Generate(context.Background(), creds, candleBrief(), nil)
	require.False(t, resp.Success)
	assert.Equal(t, "strategy", resp.Error.Service)
	assert.Zero(t, f.themes.calls)
}

func TestMissingTextProvider(t *testing.T) {
	f := newFixture(t)
	f.p.text = nil

	resp := f.p.Generate(context.Background(), creds, candleBrief(), nil)
	require.False(t, resp.Success)
	assert.Equal(t, "text provider", resp.Error.Service)
}

func storePartialRun(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	themes := []brief.Theme{{Name: "Savoir-faire"}, {Name: "Coulisses"}, {Name: "Saisons"}}
	done := []brief.CreativeBrief{
		{VisualPrompt: "Scène Savoir-faire", Content: brief.BriefContent{Main: "Texte Savoir-faire"}},
		{VisualPrompt: "Scène Coulisses", Content: brief.BriefContent{Main: "Texte Coulisses"}},
	}

	require.NoError(t, f.store.Save(ctx, &brief.Result{
		BriefID:        "run-0",
		BriefData:      candleBrief(),
		Strategy:       &brief.Strategy{Content: "stockée", Themes: themes},
		Briefs:         &brief.BriefList{Briefs: done},
		ExecutedBriefs: []brief.ExecutedBrief{{CreativeBrief: done[0], Image: brief.Image{URL: "https://img/old"}}},
		FailedBriefs:   []brief.FailedBrief{{VisualPrompt: "Scène Coulisses", Error: "timeout"}},
	}))
}

func TestResumeSkipsStoredPhases(t *testing.T) {
	f := newFixture(t)
	storePartialRun(t, f)

	resp := f.p.Resume(context.Background(), creds, "run-0", nil)
	require.True(t, resp.Success, "error: %+v", resp.Error)

	assert.Zero(t, f.strategy.calls)
	assert.Zero(t, f.themes.calls)
	assert.Equal(t, []string{"Saisons"}, f.briefs.themes)
	assert.Equal(t, 1, f.text.calls)
	assert.Equal(t, []string{"Scène Coulisses", "Scène Saisons"}, f.images.calls)

	r := resp.Data
	assert.Equal(t, "stockée", r.Strategy.Content)
	assert.Equal(t, 3, r.BriefCount())
	require.Len(t, r.ExecutedBriefs, 3)
	assert.Equal(t, "https://img/old", r.ExecutedBriefs[0].Image.URL)
	assert.Empty(t, r.FailedBriefs)
}

func TestResumeContinuesInterruptedImageSession(t *testing.T) {
	f := newFixture(t)
	storePartialRun(t, f)
	f.images.resumable["run-0-image-2"] = true

	resp := f.p.Resume(context.Background(), creds, "run-0", nil)
	require.True(t, resp.Success, "error: %+v", resp.Error)

	assert.Equal(t, []string{"run-0-image-2"}, f.images.resumed)
	assert.Equal(t, []string{"Scène Saisons"}, f.images.calls)
	require.Len(t, resp.Data.ExecutedBriefs, 3)
	assert.Equal(t, "https://img/resumed", resp.Data.ExecutedBriefs[1].Image.URL)
	assert.Equal(t, brief.QualityHigh, resp.Data.ExecutedBriefs[1].Image.Quality)
}

func TestResumeUnknownRun(t *testing.T) {
	f := newFixture(t)

	resp := f.p.Resume(context.Background(), creds, "nope", nil)
	require.False(t, resp.Success)
	assert.Equal(t, brief.CodeNotFound, resp.Error.Code)
}

func TestDryRun(t *testing.T) {
	f := newFixture(t)
	storePartialRun(t, f)

	plan, err := f.p.DryRun(context.Background(), "run-0")
	require.NoError(t, err)
	require.Len(t, plan.Steps, 5)
	assert.Equal(t, "[dry-run] Strategy already stored", plan.Steps[0].Summary)
	assert.Equal(t, "[dry-run] 3 themes already stored", plan.Steps[1].Summary)
	assert.Equal(t, "[dry-run] Would generate 1 of 3 briefs", plan.Steps[2].Summary)
	assert.Equal(t, "[dry-run] Would analyze the visual identity", plan.Steps[3].Summary)
	assert.Equal(t, "[dry-run] 1 images executed, 2 would be generated (1 previously failed)", plan.Steps[4].Summary)

	_, err = f.p.DryRun(context.Background(), "nope")
	assert.Error(t, err)
}

func TestPendingBriefsHandlesDuplicates(t *testing.T) {
	same := brief.CreativeBrief{VisualPrompt: "Scène", Content: brief.BriefContent{Main: "Texte"}}
	all := []brief.CreativeBrief{same, same, {VisualPrompt: "Autre"}}
	executed := []brief.ExecutedBrief{{CreativeBrief: same}}

	assert.Equal(t, []int{1, 2}, pendingBriefs(all, executed))
}

func TestDescriptionFallsBackToSectorScene(t *testing.T) {
	b := &brief.BriefData{CompanyName: "Crédit Azur", Sector: "Banque et Finance"}

	assert.Equal(t, "Scène", description(brief.CreativeBrief{VisualPrompt: "Scène"}, b))
	got := description(brief.CreativeBrief{Content: brief.BriefContent{Main: "Ouvrir un compte"}}, b)
	assert.Equal(t, "A professional service-oriented scene showing Ouvrir un compte for Crédit Azur", got)
}

func TestToAIError(t *testing.T) {
	e := toAIError(failed("results", errors.New("disk full")))
	assert.Equal(t, &brief.AIError{Code: brief.CodeGeneration, Message: "disk full", Service: "results"}, e)

	own := &brief.AIError{Code: brief.CodeNotFound, Message: "x"}
	assert.Same(t, own, toAIError(own))
}
