package brief

import "time"

// GenerationParams are the image provider parameters that take part in the
// cache key.
type GenerationParams struct {
	CfgScale int `json:"cfgScale,omitempty"`
	Steps    int `json:"steps,omitempty"`
	Samples  int `json:"samples,omitempty"`
	Width    int `json:"width,omitempty"`
	Height   int `json:"height,omitempty"`
}

type ValidationDetail struct {
	CriteriaName string `json:"criteriaName"`
	Score        int    `json:"score"`
	Feedback     string `json:"feedback"`
}

// Validation is the scored assessment of one generated image.
type Validation struct {
	Score           int                `json:"score"`
	Quality         Quality            `json:"quality"`
	Details         []ValidationDetail `json:"details"`
	Suggestions     []string           `json:"suggestions"`
	TechnicalIssues []string           `json:"technicalIssues"`
	StyleIssues     []string           `json:"styleIssues"`
	SectorIssues    []string           `json:"sectorIssues"`
}

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionFailed     SessionStatus = "failed"
)

type AttemptMetadata struct {
	Purpose   string  `json:"purpose"`
	TimeOfDay string  `json:"timeOfDay,omitempty"`
	Attempt   int     `json:"attempt"`
	Quality   Quality `json:"quality,omitempty"`
}

// GenerationAttempt is one image generation plus its validation.
type GenerationAttempt struct {
	BriefID    string           `json:"briefId"`
	Timestamp  time.Time        `json:"timestamp"`
	ImageURL   string           `json:"imageUrl"`
	Prompt     string           `json:"prompt"`
	Params     GenerationParams `json:"params"`
	Score      int              `json:"score"`
	Validation *Validation      `json:"validationDetails,omitempty"`
	Metadata   AttemptMetadata  `json:"metadata"`
}

// GenerationSession tracks every attempt made for one image.
type GenerationSession struct {
	BriefID       string              `json:"briefId"`
	StartTime     time.Time           `json:"startTime"`
	EndTime       *time.Time          `json:"endTime,omitempty"`
	TotalAttempts int                 `json:"totalAttempts"`
	BestScore     int                 `json:"bestScore"`
	BestImageURL  string              `json:"bestImageUrl"`
	History       []GenerationAttempt `json:"history"`
	Status        SessionStatus       `json:"status"`
}
