package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
	"github.com/TobiSchelling/BriefStudio/internal/briefs"
	"github.com/TobiSchelling/BriefStudio/internal/config"
	"github.com/TobiSchelling/BriefStudio/internal/gateway"
	"github.com/TobiSchelling/BriefStudio/internal/history"
	"github.com/TobiSchelling/BriefStudio/internal/imagecache"
	"github.com/TobiSchelling/BriefStudio/internal/imagegen"
	"github.com/TobiSchelling/BriefStudio/internal/imageprompt"
	"github.com/TobiSchelling/BriefStudio/internal/inspiration"
	"github.com/TobiSchelling/BriefStudio/internal/llm"
	"github.com/TobiSchelling/BriefStudio/internal/pacing"
	"github.com/TobiSchelling/BriefStudio/internal/parse"
	"github.com/TobiSchelling/BriefStudio/internal/prompts"
	"github.com/TobiSchelling/BriefStudio/internal/results"
	"github.com/TobiSchelling/BriefStudio/internal/retry"
	"github.com/TobiSchelling/BriefStudio/internal/strategy"
	"github.com/TobiSchelling/BriefStudio/internal/themes"
	"github.com/TobiSchelling/BriefStudio/internal/validation"
)

// ProgressFunc receives a stage and its completion percentage.
type ProgressFunc func(stage brief.Stage, percent int)

// Response is the outcome of a run: Data on success, Error otherwise.
type Response struct {
	Success bool           `json:"success"`
	Data    *brief.Result  `json:"data,omitempty"`
	Error   *brief.AIError `json:"error,omitempty"`
}

type strategyGenerator interface {
	Generate(ctx context.Context, b *brief.BriefData, website string) (*brief.Strategy, error)
}

type themeGenerator interface {
	Generate(ctx context.Context, b *brief.BriefData, s *brief.Strategy, headlines []string) ([]brief.Theme, error)
}

type briefGenerator interface {
	Generate(ctx context.Context, briefID string, b *brief.BriefData, themes []brief.Theme, onBrief func(int)) ([]brief.CreativeBrief, error)
}

type imageGenerator interface {
	GenerateOptimizedImage(ctx context.Context, description string, b *brief.BriefData, opts imagegen.Options) (*imagegen.Result, error)
	ResumeFailedGeneration(ctx context.Context, generationID, description string, b *brief.BriefData, opts imagegen.Options) (*imagegen.Result, error)
}

type inspirationSource interface {
	Headlines(ctx context.Context, sector string) []string
	Website(ctx context.Context, site string) string
}

// Pipeline runs the strategy, themes, briefs, visual analysis and image
// phases for one brief, persisting each phase before the next starts.
type Pipeline struct {
	store       results.Store
	text        llm.Provider
	strategy    strategyGenerator
	themes      themeGenerator
	briefs      briefGenerator
	images      imageGenerator
	inspiration inspirationSource

	visualMaxTokens int
	visualPolicy    retry.Policy
	imagePolicy     retry.Policy
	purpose         imageprompt.Purpose

	stagePacer *pacing.Pacer
	imagePacer *pacing.Pacer

	newID func() string
}

// New wires a pipeline from configuration. gw reaches the backend for the
// gateway providers and validation; store and cache persist results and images.
func New(cfg *config.Config, gw *gateway.Client, store results.Store, cache imagecache.Cache) *Pipeline {
	text := llm.CreateProvider(cfg.Text, gw)
	pc := cfg.Pipeline

	images := imagegen.New(
		imagegen.CreateProvider(cfg.Image, gw),
		validation.New(gw, pc.ValidationRetryDelay),
		cache,
		history.New(store),
	)

	return &Pipeline{
		store:       store,
		text:        text,
		strategy:    strategy.New(text, cfg.Text.StrategyMaxTokens, pc.StepRetryDelay),
		themes:      themes.New(text, cfg.Text.ThemeMaxTokens, pc.StepRetryDelay),
		briefs:      briefs.New(text, cfg.Text.BriefMaxTokens, pc.StepRetryDelay, store),
		images:      images,
		inspiration: inspiration.New(cfg.Inspiration),

		visualMaxTokens: cfg.Text.VisualMaxTokens,
		visualPolicy:    retry.Phase("visual analysis", pc.PhaseRetryDelay),
		imagePolicy: retry.Policy{
			Name:        "image generation",
			MaxAttempts: pc.ImageRetries + 1,
			Delay:       pc.PhaseRetryDelay,
			Backoff:     retry.Progressive,
		},
		purpose: imageprompt.ParsePurpose(cfg.Image.Purpose),

		stagePacer: pacing.New(pc.StageDelay),
		imagePacer: pacing.New(pc.ImageDelay),

		newID: uuid.NewString,
	}
}

// phaseError tags a failure with the collaborator it came from.
type phaseError struct {
	service string
	err     error
}

func (e *phaseError) Error() string { return fmt.Sprintf("%s: %v", e.service, e.err) }
func (e *phaseError) Unwrap() error { return e.err }

func failed(service string, err error) error {
	return &phaseError{service: service, err: err}
}

// Generate starts a new run for b on behalf of creds.
func (p *Pipeline) Generate(ctx context.Context, creds gateway.Credentials, b *brief.BriefData, onProgress ProgressFunc) Response {
	if err := b.Validate(); err != nil {
		return errorResponse(&brief.AIError{Code: brief.CodeInvalidBrief, Message: err.Error()})
	}
	ctx = gateway.WithCredentials(ctx, creds)

	r := &brief.Result{BriefID: p.newID(), BriefData: b}
	log.Printf("Starting content generation for %s (run %s)", b.CompanyName, r.BriefID)
	if err := p.store.Save(ctx, r); err != nil {
		return errorResponse(toAIError(failed("results", err)))
	}

	return p.run(ctx, r, onProgress)
}

// Resume continues a stored run, skipping every phase whose output is
// already persisted. Briefs with an image are kept; failed ones are retried.
func (p *Pipeline) Resume(ctx context.Context, creds gateway.Credentials, briefID string, onProgress ProgressFunc) Response {
	ctx = gateway.WithCredentials(ctx, creds)

	r, err := p.store.Get(ctx, briefID)
	if err != nil {
		return errorResponse(toAIError(failed("results", err)))
	}
	if r == nil {
		return errorResponse(&brief.AIError{Code: brief.CodeNotFound, Message: fmt.Sprintf("no stored run %s", briefID)})
	}
	if r.BriefData == nil {
		return errorResponse(&brief.AIError{Code: brief.CodeInvalidBrief, Message: fmt.Sprintf("run %s has no brief data", briefID)})
	}

	log.Printf("Resuming run %s for %s", briefID, r.BriefData.CompanyName)
	return p.run(ctx, r, onProgress)
}

func (p *Pipeline) run(ctx context.Context, r *brief.Result, onProgress ProgressFunc) Response {
	if onProgress == nil {
		onProgress = func(brief.Stage, int) {}
	}
	if p.text == nil {
		return errorResponse(&brief.AIError{Code: brief.CodeGeneration, Message: "no text provider configured", Service: "text provider"})
	}

	steps := []func(context.Context, *brief.Result, ProgressFunc) error{
		p.runStrategy,
		p.runThemes,
		p.runBriefs,
		p.runVisualAnalysis,
	}
	for _, step := range steps {
		if err := step(ctx, r, onProgress); err != nil {
			return p.fail(r, err)
		}
	}
	if err := p.runImages(ctx, r, onProgress); err != nil {
		return p.fail(r, err)
	}

	final, err := p.store.Get(ctx, r.BriefID)
	if err != nil {
		return p.fail(r, failed("results", err))
	}
	if final == nil {
		return p.fail(r, failed("results", fmt.Errorf("run %s missing after generation", r.BriefID)))
	}

	log.Printf("Run %s complete: %d briefs, %d images, %d failed",
		r.BriefID, final.BriefCount(), len(final.ExecutedBriefs), len(final.FailedBriefs))
	return Response{Success: true, Data: final}
}

func (p *Pipeline) fail(r *brief.Result, err error) Response {
	log.Printf("Run %s failed: %v", r.BriefID, err)
	return errorResponse(toAIError(err))
}

func (p *Pipeline) runStrategy(ctx context.Context, r *brief.Result, onProgress ProgressFunc) error {
	if r.Strategy != nil {
		log.Println("Strategy already stored, skipping")
		return nil
	}

	log.Println("Step 1/5: Generating strategy...")
	onProgress(brief.StageStrategy, 0)

	website := p.inspiration.Website(ctx, r.BriefData.Website)
	s, err := p.strategy.Generate(ctx, r.BriefData, website)
	if err != nil {
		return failed("strategy", err)
	}
	r.Strategy = s
	if err := p.store.Update(ctx, r.BriefID, brief.Patch{Strategy: s}); err != nil {
		return failed("results", err)
	}

	onProgress(brief.StageStrategy, 100)
	return p.pause(ctx)
}

func (p *Pipeline) runThemes(ctx context.Context, r *brief.Result, onProgress ProgressFunc) error {
	if len(r.Strategy.Themes) > 0 {
		log.Println("Themes already stored, skipping")
		return nil
	}

	log.Println("Step 2/5: Generating editorial themes...")
	onProgress(brief.StageThemes, 0)

	headlines := p.inspiration.Headlines(ctx, r.BriefData.Sector)
	list, err := p.themes.Generate(ctx, r.BriefData, r.Strategy, headlines)
	if err != nil {
		return failed("themes", err)
	}
	r.Strategy.Themes = list
	if err := p.store.Update(ctx, r.BriefID, brief.Patch{Strategy: r.Strategy}); err != nil {
		return failed("results", err)
	}

	onProgress(brief.StageThemes, 100)
	return p.pause(ctx)
}

func (p *Pipeline) runBriefs(ctx context.Context, r *brief.Result, onProgress ProgressFunc) error {
	all := r.Strategy.Themes
	done := r.BriefCount()
	if done >= len(all) {
		log.Println("Briefs already stored, skipping")
		return nil
	}

	log.Printf("Step 3/5: Generating briefs (%d of %d done)...", done, len(all))
	onProgress(brief.StageBriefs, percent(done, len(all)))

	var existing []brief.CreativeBrief
	if r.Briefs != nil {
		existing = r.Briefs.Briefs
	}
	written, err := p.briefs.Generate(ctx, r.BriefID, r.BriefData, all[done:], func(n int) {
		onProgress(brief.StageBriefs, percent(done+n, len(all)))
	})
	if err != nil {
		return failed("briefs", err)
	}

	list := &brief.BriefList{Briefs: append(append([]brief.CreativeBrief{}, existing...), written...)}
	r.Briefs = list
	if err := p.store.Update(ctx, r.BriefID, brief.Patch{Briefs: list}); err != nil {
		return failed("results", err)
	}

	onProgress(brief.StageBriefs, 100)
	return p.pause(ctx)
}

// runVisualAnalysis retries provider failures under the phase policy and
// aborts the run once it is exhausted. A response without any recognizable
// section is kept as an empty analysis.
func (p *Pipeline) runVisualAnalysis(ctx context.Context, r *brief.Result, onProgress ProgressFunc) error {
	if r.VisualAnalysis != nil {
		log.Println("Visual analysis already stored, skipping")
		return nil
	}

	log.Println("Step 4/5: Analyzing visual identity...")
	messages := llm.UserPrompt(prompts.VisualAnalysisPrompt(r.BriefData))
	content, err := retry.Do(ctx, p.visualPolicy, func(ctx context.Context) (string, error) {
		return p.text.Generate(ctx, messages, p.visualMaxTokens)
	})
	if err != nil {
		return failed("visual analysis", err)
	}

	va, err := parse.ParseVisualAnalysis(content)
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	r.VisualAnalysis = &va
	if err := p.store.Update(ctx, r.BriefID, brief.Patch{VisualAnalysis: &va}); err != nil {
		return failed("results", err)
	}

	onProgress(brief.StageVisuals, 100)
	return p.pause(ctx)
}

// runImages generates one image per brief not yet executed. A brief whose
// image keeps failing is recorded in failedBriefs and the loop moves on.
func (p *Pipeline) runImages(ctx context.Context, r *brief.Result, onProgress ProgressFunc) error {
	var all []brief.CreativeBrief
	if r.Briefs != nil {
		all = r.Briefs.Briefs
	}

	executed := append([]brief.ExecutedBrief{}, r.ExecutedBriefs...)
	failures := []brief.FailedBrief{}
	pending := pendingBriefs(all, executed)

	log.Printf("Step 5/5: Generating images (%d pending)...", len(pending))
	for n, i := range pending {
		if err := p.imagePacer.Wait(ctx); err != nil {
			return failed("image generation", err)
		}

		cb := all[i]
		log.Printf("Image %d/%d", i+1, len(all))
		img, err := p.imageFor(ctx, r, i, cb)
		if err != nil {
			if ctx.Err() != nil {
				return failed("image generation", ctx.Err())
			}
			log.Printf("Image %d failed: %v", i+1, err)
			failures = append(failures, brief.FailedBrief{VisualPrompt: cb.VisualPrompt, Error: err.Error()})
			patch := brief.Patch{ExecutedBriefs: &executed, FailedBriefs: &failures}
			if err := p.store.Update(ctx, r.BriefID, patch); err != nil {
				return failed("results", err)
			}
			continue
		}

		executed = append(executed, brief.ExecutedBrief{CreativeBrief: cb, Image: img})
		patch := brief.Patch{ExecutedBriefs: &executed, FailedBriefs: &failures}
		if err := p.store.Update(ctx, r.BriefID, patch); err != nil {
			return failed("results", err)
		}
		onProgress(brief.StageExecution, percent(n+1, len(pending)))
	}

	r.ExecutedBriefs = executed
	r.FailedBriefs = failures
	onProgress(brief.StageExecution, 100)
	return nil
}

func (p *Pipeline) imageFor(ctx context.Context, r *brief.Result, i int, cb brief.CreativeBrief) (brief.Image, error) {
	opts := imagegen.Options{
		Purpose:      p.purpose,
		TimeOfDay:    imageprompt.TimeOfDay(cb.Content.Main),
		GenerationID: fmt.Sprintf("%s-image-%d", r.BriefID, i+1),
	}

	desc := description(cb, r.BriefData)
	res, err := retry.Do(ctx, p.imagePolicy, func(ctx context.Context) (*imagegen.Result, error) {
		// A session left in progress by an interrupted run picks up at its
		// next attempt.
		res, err := p.images.ResumeFailedGeneration(ctx, opts.GenerationID, desc, r.BriefData, opts)
		if errors.Is(err, imagegen.ErrCannotResume) || errors.Is(err, imagegen.ErrMaxAttempts) {
			return p.images.GenerateOptimizedImage(ctx, desc, r.BriefData, opts)
		}
		return res, err
	})
	if err != nil {
		return brief.Image{}, err
	}

	alt := cb.Specs.AltText
	if alt == "" {
		alt = cb.Content.Main
	}
	return brief.Image{
		URL:     res.URL,
		Alt:     alt,
		Type:    cb.Specs.Format,
		Ratio:   cb.Specs.Dimensions,
		Quality: res.Quality,
	}, nil
}

// description is the brief's visual prompt, or a sector-appropriate scene
// built from its main copy.
func description(cb brief.CreativeBrief, b *brief.BriefData) string {
	if cb.VisualPrompt != "" {
		return cb.VisualPrompt
	}
	return fmt.Sprintf("%s %s for %s", imageprompt.ProductFocus(b.Sector), cb.Content.Main, b.CompanyName)
}

// pendingBriefs returns the indexes of briefs without an executed image.
func pendingBriefs(all []brief.CreativeBrief, executed []brief.ExecutedBrief) []int {
	done := make(map[string]int, len(executed))
	for _, e := range executed {
		done[briefKey(e.CreativeBrief)]++
	}

	var pending []int
	for i, cb := range all {
		k := briefKey(cb)
		if done[k] > 0 {
			done[k]--
			continue
		}
		pending = append(pending, i)
	}
	return pending
}

func briefKey(cb brief.CreativeBrief) string {
	return cb.VisualPrompt + "\x00" + cb.Content.Main
}

func (p *Pipeline) pause(ctx context.Context) error {
	if err := p.stagePacer.Wait(ctx); err != nil {
		return failed("pipeline", err)
	}
	return nil
}

func percent(n, total int) int {
	if total <= 0 {
		return 100
	}
	return n * 100 / total
}

func errorResponse(e *brief.AIError) Response {
	return Response{Success: false, Error: e}
}

// toAIError converts a run failure into the structured error callers see.
func toAIError(err error) *brief.AIError {
	var ae *brief.AIError
	if errors.As(err, &ae) {
		return ae
	}
	e := &brief.AIError{Code: brief.CodeGeneration, Message: err.Error()}
	var pe *phaseError
	if errors.As(err, &pe) {
		e.Service = pe.service
		e.Message = pe.err.Error()
	}
	return e
}
