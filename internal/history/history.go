// Package history keeps the per-image generation session: every attempt,
// the best score so far and the final status. Sessions are stored in the
// result store under the session id.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
	"github.com/TobiSchelling/BriefStudio/internal/results"
)

// ErrNoSession is returned when no session is stored under an id.
var ErrNoSession = errors.New("history: generation session not found")

const (
	// SuccessScore is the score an attempt needs to count as a success.
	SuccessScore = 85
	// MaxResumeAttempts caps the attempts a resumable session may have made.
	MaxResumeAttempts = 10
)

// Tracker records generation sessions.
type Tracker struct {
	store results.Store
	now   func() time.Time
}

// New creates a Tracker persisting to store.
func New(store results.Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Start opens an in-progress session under id, replacing any previous one.
func (t *Tracker) Start(ctx context.Context, id string) error {
	s := &brief.GenerationSession{
		BriefID:   id,
		StartTime: t.now(),
		History:   []brief.GenerationAttempt{},
		Status:    brief.SessionInProgress,
	}
	return t.put(ctx, id, s)
}

// RecordAttempt appends a to the session and updates its best score.
func (t *Tracker) RecordAttempt(ctx context.Context, id string, a brief.GenerationAttempt) error {
	s, err := t.mustSession(ctx, id)
	if err != nil {
		return err
	}

	if a.BriefID == "" {
		a.BriefID = id
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = t.now()
	}
	s.TotalAttempts++
	if a.Score > s.BestScore {
		s.BestScore = a.Score
		s.BestImageURL = a.ImageURL
	}
	s.History = append(s.History, a)
	return t.put(ctx, id, s)
}

// Complete closes the session as completed or failed.
func (t *Tracker) Complete(ctx context.Context, id string, success bool) error {
	s, err := t.mustSession(ctx, id)
	if err != nil {
		return err
	}

	end := t.now()
	s.EndTime = &end
	s.Status = brief.SessionFailed
	if success {
		s.Status = brief.SessionCompleted
	}
	return t.put(ctx, id, s)
}

// Session returns the stored session, or nil when there is none.
func (t *Tracker) Session(ctx context.Context, id string) (*brief.GenerationSession, error) {
	r, err := t.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading generation session %s: %w", id, err)
	}
	if r == nil {
		return nil, nil
	}
	return r.ImageGenerationSession, nil
}

// Stats summarizes a session.
type Stats struct {
	TotalAttempts int           `json:"totalAttempts"`
	AverageScore  float64       `json:"averageScore"`
	BestScore     int           `json:"bestScore"`
	SuccessRate   float64       `json:"successRate"`
	TimeSpent     time.Duration `json:"timeSpent"`
}

// Stats computes the session's averages. Success rate is the percentage of
// attempts scoring at least SuccessScore; an open session's time runs to now.
func (t *Tracker) Stats(ctx context.Context, id string) (Stats, error) {
	s, err := t.mustSession(ctx, id)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{TotalAttempts: s.TotalAttempts, BestScore: s.BestScore}

	var sum, successes int
	for _, a := range s.History {
		sum += a.Score
		if a.Score >= SuccessScore {
			successes++
		}
	}
	if n := len(s.History); n > 0 {
		st.AverageScore = float64(sum) / float64(n)
	}
	if s.TotalAttempts > 0 {
		st.SuccessRate = float64(successes) / float64(s.TotalAttempts) * 100
	}

	end := t.now()
	if s.EndTime != nil {
		end = *s.EndTime
	}
	st.TimeSpent = end.Sub(s.StartTime)
	return st, nil
}

// LastSuccessful returns the best-scoring attempt made for purpose, or nil.
func (t *Tracker) LastSuccessful(ctx context.Context, id, purpose string) (*brief.GenerationAttempt, error) {
	s, err := t.Session(ctx, id)
	if err != nil || s == nil {
		return nil, err
	}

	var matching []brief.GenerationAttempt
	for _, a := range s.History {
		if a.Metadata.Purpose == purpose {
			matching = append(matching, a)
		}
	}
	if len(matching) == 0 {
		return nil, nil
	}
	sort.SliceStable(matching, func(i, j int) bool { return matching[i].Score > matching[j].Score })
	return &matching[0], nil
}

// ResumeState says whether an interrupted session can continue.
type ResumeState struct {
	CanResume         bool
	LastAttempt       *brief.GenerationAttempt
	RemainingAttempts int
}

// Resume reports whether the session is still in progress with attempts to
// spare, and returns its last attempt.
func (t *Tracker) Resume(ctx context.Context, id string) (ResumeState, error) {
	s, err := t.Session(ctx, id)
	if err != nil {
		return ResumeState{}, err
	}
	if s == nil {
		return ResumeState{}, nil
	}

	st := ResumeState{
		CanResume:         s.Status == brief.SessionInProgress && s.TotalAttempts < MaxResumeAttempts,
		RemainingAttempts: MaxResumeAttempts - s.TotalAttempts,
	}
	if n := len(s.History); n > 0 {
		last := s.History[n-1]
		st.LastAttempt = &last
	}
	return st, nil
}

func (t *Tracker) mustSession(ctx context.Context, id string) (*brief.GenerationSession, error) {
	s, err := t.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, id)
	}
	return s, nil
}

func (t *Tracker) put(ctx context.Context, id string, s *brief.GenerationSession) error {
	if err := t.store.Update(ctx, id, brief.Patch{ImageGenerationSession: s}); err != nil {
		return fmt.Errorf("saving generation session %s: %w", id, err)
	}
	return nil
}
