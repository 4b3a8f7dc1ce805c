// Package imagegen generates a validated image for a creative brief: it
// assembles the prompt, consults the image cache, and regenerates until the
// validation score clears a threshold that relaxes with every attempt.
package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
	"github.com/TobiSchelling/BriefStudio/internal/history"
	"github.com/TobiSchelling/BriefStudio/internal/imagecache"
	"github.com/TobiSchelling/BriefStudio/internal/imageprompt"
	"github.com/TobiSchelling/BriefStudio/internal/retry"
)

const (
	MaxAttempts       = 3
	MinScore          = 85
	ScoreDecay        = 5
	ReferenceStrength = 0.35
)

var (
	// ErrMaxAttempts is returned when asked to start past the last attempt.
	ErrMaxAttempts = fmt.Errorf("imagegen: maximum of %d attempts reached", MaxAttempts)
	// ErrCannotResume is returned when a session is finished or used up.
	ErrCannotResume = errors.New("imagegen: generation cannot be resumed")
	ErrNoProvider   = errors.New("imagegen: no image provider configured")
)

// params are the provider parameters recorded and used in cache keys.
var params = brief.GenerationParams{Samples: 1}

// Threshold is the score an image needs on the given attempt (1-indexed).
func Threshold(attempt int) int {
	return MinScore - (attempt-1)*ScoreDecay
}

// Validator scores a generated image.
type Validator interface {
	Validate(ctx context.Context, imageURL string, b *brief.BriefData) (brief.Validation, error)
}

// Options tune one generation.
type Options struct {
	Purpose   imageprompt.Purpose
	TimeOfDay string
	// Attempt is the first attempt to make; zero means 1.
	Attempt int
	// GenerationID names the history session; a company slug and timestamp
	// is used when empty.
	GenerationID string
}

// Result is a generated or cached image.
type Result struct {
	URL          string            `json:"url"`
	Quality      brief.Quality     `json:"quality"`
	Score        int               `json:"score"`
	Validation   *brief.Validation `json:"validation,omitempty"`
	Cached       bool              `json:"cached"`
	GenerationID string            `json:"generationId,omitempty"`
}

// Service runs the generate-validate loop.
type Service struct {
	provider  Provider
	validator Validator
	cache     imagecache.Cache
	history   *history.Tracker

	readFile func(string) ([]byte, error)
	now      func() time.Time
}

// New creates a Service.
func New(provider Provider, validator Validator, cache imagecache.Cache, tracker *history.Tracker) *Service {
	return &Service{
		provider:  provider,
		validator: validator,
		cache:     cache,
		history:   tracker,
		readFile:  os.ReadFile,
		now:       time.Now,
	}
}

// GenerateOptimizedImage returns an image for description. A cached image for
// the same prompt, params and metadata is returned as is with quality high.
// Otherwise images are generated and validated until one reaches Threshold;
// when the last attempt still scores too low, that image is returned anyway.
// Provider errors fail the session and are returned.
func (s *Service) GenerateOptimizedImage(ctx context.Context, description string, b *brief.BriefData, opts Options) (*Result, error) {
	if opts.Purpose == "" {
		opts.Purpose = imageprompt.PurposeSocial
	}
	if opts.Attempt < 1 {
		opts.Attempt = 1
	}
	if opts.Attempt > MaxAttempts {
		return nil, ErrMaxAttempts
	}
	if opts.GenerationID == "" {
		opts.GenerationID = s.generationID(b.CompanyName)
	}

	p := imageprompt.Build(description, b, opts.Purpose, opts.TimeOfDay)
	meta := imagecache.Metadata{
		Purpose:   string(opts.Purpose),
		TimeOfDay: opts.TimeOfDay,
		Sector:    b.Sector,
		Style:     b.CommunicationStyle,
	}

	hit, err := s.cache.Find(ctx, p.Positive, params, meta)
	if err != nil {
		log.Printf("Warning: image cache lookup failed: %v", err)
	}
	if hit != nil {
		log.Printf("Using cached image (score %d)", hit.Score)
		return &Result{
			URL:          hit.ImageURL,
			Quality:      brief.QualityHigh,
			Score:        hit.Score,
			Validation:   hit.Validation,
			Cached:       true,
			GenerationID: opts.GenerationID,
		}, nil
	}

	if s.provider == nil {
		return nil, retry.Permanent(ErrNoProvider)
	}
	if err := s.openSession(ctx, opts); err != nil {
		return nil, err
	}

	req := Request{
		Prompt:         p.Positive,
		NegativePrompt: p.Negative,
		AspectRatio:    p.AspectRatio,
	}
	if ref := s.reference(description, b); ref != "" {
		req.Reference = ref
		req.Strength = ReferenceStrength
	}

	res, err := s.generate(ctx, req, b, p, meta, opts)
	if err != nil {
		if cerr := s.history.Complete(context.WithoutCancel(ctx), opts.GenerationID, false); cerr != nil {
			log.Printf("Warning: could not close generation session: %v", cerr)
		}
		return nil, err
	}
	return res, nil
}

func (s *Service) generate(ctx context.Context, req Request, b *brief.BriefData, p imageprompt.Prompt, meta imagecache.Metadata, opts Options) (*Result, error) {
	id := opts.GenerationID
	var last *Result

	for attempt := opts.Attempt; attempt <= MaxAttempts; attempt++ {
		url, err := s.provider.Generate(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("generating image (attempt %d): %w", attempt, err)
		}

		v, err := s.validator.Validate(ctx, url, b)
		if err != nil {
			return nil, fmt.Errorf("validating image: %w", err)
		}

		quality := brief.QualityFor(v.Score)
		err = s.history.RecordAttempt(ctx, id, brief.GenerationAttempt{
			BriefID:    id,
			Timestamp:  s.now(),
			ImageURL:   url,
			Prompt:     p.Positive,
			Params:     params,
			Score:      v.Score,
			Validation: &v,
			Metadata: brief.AttemptMetadata{
				Purpose:   string(opts.Purpose),
				TimeOfDay: opts.TimeOfDay,
				Attempt:   attempt,
				Quality:   quality,
			},
		})
		if err != nil {
			return nil, err
		}

		last = &Result{URL: url, Quality: quality, Score: v.Score, Validation: &v, GenerationID: id}

		if v.Score >= Threshold(attempt) {
			err := s.cache.Add(ctx, imagecache.Entry{
				Prompt:     p.Positive,
				BriefID:    id,
				Params:     params,
				Metadata:   meta,
				ImageURL:   url,
				Score:      v.Score,
				Validation: &v,
			})
			if err != nil {
				log.Printf("Warning: could not cache image: %v", err)
			}
			if err := s.history.Complete(ctx, id, true); err != nil {
				return nil, err
			}
			return last, nil
		}

		log.Printf("Image scored %d, below %d on attempt %d/%d", v.Score, Threshold(attempt), attempt, MaxAttempts)
	}

	if err := s.history.Complete(ctx, id, false); err != nil {
		return nil, err
	}
	return last, nil
}

// ResumeFailedGeneration continues an in-progress session from the attempt
// after its last recorded one.
func (s *Service) ResumeFailedGeneration(ctx context.Context, generationID, description string, b *brief.BriefData, opts Options) (*Result, error) {
	st, err := s.history.Resume(ctx, generationID)
	if err != nil {
		return nil, err
	}
	if !st.CanResume {
		return nil, fmt.Errorf("%w: %s", ErrCannotResume, generationID)
	}

	next := 1
	if st.LastAttempt != nil {
		next = st.LastAttempt.Metadata.Attempt + 1
	}
	if next > MaxAttempts {
		return nil, ErrMaxAttempts
	}

	opts.Attempt = next
	opts.GenerationID = generationID
	return s.GenerateOptimizedImage(ctx, description, b, opts)
}

// openSession starts a session for a first attempt, and keeps an existing
// one when continuing.
func (s *Service) openSession(ctx context.Context, opts Options) error {
	if opts.Attempt > 1 {
		existing, err := s.history.Session(ctx, opts.GenerationID)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
	}
	return s.history.Start(ctx, opts.GenerationID)
}

// reference returns the first product photo as base64 when the scene leaves
// room for the product.
func (s *Service) reference(description string, b *brief.BriefData) string {
	if len(b.ProductPhotos) == 0 || !imageprompt.SuggestsProduct(description) {
		return ""
	}
	data, err := s.readFile(b.ProductPhotos[0])
	if err != nil {
		log.Printf("Warning: could not read product photo %s: %v", b.ProductPhotos[0], err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

func (s *Service) generationID(company string) string {
	slug := strings.Join(strings.Fields(strings.ToLower(company)), "-")
	if slug == "" {
		slug = "image"
	}
	return fmt.Sprintf("%s-%d", slug, s.now().UnixMilli())
}
