// Package validation scores generated images through the backend's vision
// endpoint and turns the raw per-criterion scores into a weighted Validation.
package validation

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
	"github.com/TobiSchelling/BriefStudio/internal/gateway"
	"github.com/TobiSchelling/BriefStudio/internal/retry"
)

// DefaultScore is the score given when the validation endpoint is unavailable.
const DefaultScore = 70

type criterion struct {
	name     string
	weight   float64
	fallback float64
}

// criteria weights sum to 1.0.
var criteria = []criterion{
	{"composition", 0.30, 85},
	{"lighting", 0.20, 80},
	{"color", 0.20, 90},
	{"sharpness", 0.15, 85},
	{"style", 0.15, 85},
}

// Criteria returns the criterion names in weighting order.
func Criteria() []string {
	names := make([]string, len(criteria))
	for i, c := range criteria {
		names[i] = c.name
	}
	return names
}

// Raw is the validation endpoint's response.
type Raw struct {
	Composition     *Score   `json:"composition"`
	Lighting        *Score   `json:"lighting"`
	Color           *Score   `json:"color"`
	Sharpness       *Score   `json:"sharpness"`
	Style           *Score   `json:"style"`
	TechnicalIssues []string `json:"technicalIssues"`
	StyleIssues     []string `json:"styleIssues"`
	SectorIssues    []string `json:"sectorIssues"`
}

type Score struct {
	Score float64 `json:"score"`
}

func (r Raw) score(name string, fallback float64) float64 {
	var s *Score
	switch name {
	case "composition":
		s = r.Composition
	case "lighting":
		s = r.Lighting
	case "color":
		s = r.Color
	case "sharpness":
		s = r.Sharpness
	case "style":
		s = r.Style
	}
	if s == nil || s.Score == 0 {
		return fallback
	}
	return s.Score
}

// Evaluate computes the weighted validation for a raw response. Criteria the
// response omits get their neutral default.
func Evaluate(raw Raw) brief.Validation {
	var total float64
	details := make([]brief.ValidationDetail, 0, len(criteria))
	var suggestions []string

	for _, c := range criteria {
		s := raw.score(c.name, c.fallback)
		total += s * c.weight

		score := int(math.Round(s))
		d := brief.ValidationDetail{CriteriaName: c.name, Score: score, Feedback: Feedback(score)}
		details = append(details, d)
		if score < 70 {
			suggestions = append(suggestions, fmt.Sprintf("Améliorer %s: %s", d.CriteriaName, d.Feedback))
		}
	}

	final := int(math.Round(total))
	return brief.Validation{
		Score:           final,
		Quality:         brief.QualityFor(final),
		Details:         details,
		Suggestions:     suggestions,
		TechnicalIssues: raw.TechnicalIssues,
		StyleIssues:     raw.StyleIssues,
		SectorIssues:    raw.SectorIssues,
	}
}

// Feedback labels a criterion score.
func Feedback(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 80:
		return "Très bon"
	case score >= 70:
		return "Bon"
	case score >= 60:
		return "Acceptable"
	default:
		return "À améliorer"
	}
}

// Default is the validation used when the endpoint keeps failing.
func Default() brief.Validation {
	details := make([]brief.ValidationDetail, len(criteria))
	for i, c := range criteria {
		details[i] = brief.ValidationDetail{CriteriaName: c.name, Score: DefaultScore, Feedback: "Score par défaut"}
	}
	return brief.Validation{
		Score:       DefaultScore,
		Quality:     brief.QualityFor(DefaultScore),
		Details:     details,
		Suggestions: []string{"Validation automatique indisponible"},
	}
}

// Service calls the backend's /ai/validate-image endpoint.
type Service struct {
	client *gateway.Client
	policy retry.Policy
}

// New creates a validation service retrying every delay, three attempts in all.
func New(client *gateway.Client, delay time.Duration) *Service {
	return &Service{client: client, policy: retry.Step("image validation", delay)}
}

// Validate scores imageURL against b. Endpoint failures degrade to Default;
// only context cancellation is returned as an error.
func (s *Service) Validate(ctx context.Context, imageURL string, b *brief.BriefData) (brief.Validation, error) {
	body := map[string]any{
		"imageUrl":  imageURL,
		"briefData": b,
		"criteria":  Criteria(),
	}

	raw, err := retry.Do(ctx, s.policy, func(ctx context.Context) (Raw, error) {
		var raw Raw
		err := s.client.DoJSON(ctx, http.MethodPost, "/ai/validate-image", body, &raw)
		return raw, err
	})
	if err != nil {
		if ctx.Err() != nil {
			return brief.Validation{}, ctx.Err()
		}
		log.Printf("Image validation unavailable, using default score: %v", err)
		return Default(), nil
	}
	return Evaluate(raw), nil
}
