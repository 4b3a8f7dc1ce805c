package brief

import (
	"fmt"
	"time"
)

// Result is the persisted aggregate of a run, keyed by BriefID.
type Result struct {
	BriefID                string             `json:"briefId"`
	BriefData              *BriefData         `json:"briefData,omitempty"`
	Strategy               *Strategy          `json:"strategy,omitempty"`
	Briefs                 *BriefList         `json:"briefs,omitempty"`
	VisualAnalysis         *VisualAnalysis    `json:"visualAnalysis,omitempty"`
	ExecutedBriefs         []ExecutedBrief    `json:"executedBriefs,omitempty"`
	FailedBriefs           []FailedBrief      `json:"failedBriefs,omitempty"`
	ImageGenerationSession *GenerationSession `json:"imageGenerationSession,omitempty"`
	CreatedAt              time.Time          `json:"createdAt"`
	UpdatedAt              time.Time          `json:"updatedAt"`
}

// Patch is a partial Result update. Nil fields leave the stored value as is.
type Patch struct {
	BriefData              *BriefData         `json:"briefData,omitempty"`
	Strategy               *Strategy          `json:"strategy,omitempty"`
	Briefs                 *BriefList         `json:"briefs,omitempty"`
	VisualAnalysis         *VisualAnalysis    `json:"visualAnalysis,omitempty"`
	ExecutedBriefs         *[]ExecutedBrief   `json:"executedBriefs,omitempty"`
	FailedBriefs           *[]FailedBrief     `json:"failedBriefs,omitempty"`
	ImageGenerationSession *GenerationSession `json:"imageGenerationSession,omitempty"`
}

// Apply merges p into r at the top level.
func (r *Result) Apply(p Patch) {
	if p.BriefData != nil {
		r.BriefData = p.BriefData
	}
	if p.Strategy != nil {
		r.Strategy = p.Strategy
	}
	if p.Briefs != nil {
		r.Briefs = p.Briefs
	}
	if p.VisualAnalysis != nil {
		r.VisualAnalysis = p.VisualAnalysis
	}
	if p.ExecutedBriefs != nil {
		r.ExecutedBriefs = *p.ExecutedBriefs
	}
	if p.FailedBriefs != nil {
		r.FailedBriefs = *p.FailedBriefs
	}
	if p.ImageGenerationSession != nil {
		r.ImageGenerationSession = p.ImageGenerationSession
	}
}

// BriefCount returns the number of stored creative briefs.
func (r *Result) BriefCount() int {
	if r.Briefs == nil {
		return 0
	}
	return len(r.Briefs.Briefs)
}

// Stage names a pipeline checkpoint reported to progress callbacks.
type Stage string

const (
	StageStrategy  Stage = "strategy"
	StageThemes    Stage = "themes"
	StageBriefs    Stage = "briefs"
	StageVisuals   Stage = "visuals"
	StageExecution Stage = "execution"
)

// Stages lists the checkpoints in emission order.
var Stages = []Stage{StageStrategy, StageThemes, StageBriefs, StageVisuals, StageExecution}

const (
	// CodeGeneration is the error code for a run aborted by a collaborator failure.
	CodeGeneration   = "GENERATION_ERROR"
	CodeInvalidBrief = "INVALID_BRIEF"
	CodeNotFound     = "NOT_FOUND"
)

// AIError is the structured error returned when a run aborts.
type AIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Service string `json:"service,omitempty"`
}

func (e *AIError) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Service, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
