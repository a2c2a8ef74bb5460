// Package session drives the two-step lookup flow: collect a description,
// then show the matches for it.
//
//	AwaitingDescription --Submit--> Processing --Reset/Retry--> AwaitingDescription
//
// Sessions are plain values. Transition functions take a Session and return
// the next one; nothing is shared between sessions.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reelfinder/reelfinder/internal/clues"
	"github.com/reelfinder/reelfinder/internal/finder"
)

// Step is the state of a session.
type Step string

const (
	AwaitingDescription Step = "awaiting_description"
	Processing          Step = "processing"
)

// Session is the state of one user's lookup.
type Session struct {
	ID          string
	Step        Step
	Description string
	Clues       *clues.MediaClue

	// Outcome is set once the search for Description has run.
	Outcome *finder.Result
	// Err is the user-visible error of a failed run.
	Err string

	UpdatedAt time.Time
}

// New returns a fresh session waiting for a description.
func New() Session {
	return Session{
		ID:        uuid.NewString(),
		Step:      AwaitingDescription,
		UpdatedAt: time.Now(),
	}
}

// HasRun reports whether the search for the current description has finished,
// successfully or not.
func (s Session) HasRun() bool {
	return s.Outcome != nil || s.Err != ""
}

// Failed reports whether the last run ended in an error.
func (s Session) Failed() bool {
	return s.Err != ""
}

// Submit stores text and moves to Processing. It only applies while awaiting
// a description and when text is not blank; otherwise s is returned as is
// and ok is false.
func Submit(s Session, text string) (next Session, ok bool) {
	if s.Step != AwaitingDescription {
		return s, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return s, false
	}
	s.Description = text
	s.Step = Processing
	s.Clues = nil
	s.Outcome = nil
	s.Err = ""
	s.UpdatedAt = time.Now()
	return s, true
}

// Reset clears every field and returns to AwaitingDescription. The session ID
// is kept so the browser's cookie stays valid.
func Reset(s Session) Session {
	return Session{
		ID:        s.ID,
		Step:      AwaitingDescription,
		UpdatedAt: time.Now(),
	}
}

// Retry is the error-path reset.
func Retry(s Session) Session {
	return Reset(s)
}

// Matcher runs a search.
type Matcher interface {
	FindMatches(ctx context.Context, description string, sink finder.Sink) finder.Result
}

// Controller runs the Processing step.
type Controller struct {
	matcher Matcher
	logger  zerolog.Logger
}

// NewController creates a controller around matcher.
func NewController(matcher Matcher, logger zerolog.Logger) *Controller {
	return &Controller{
		matcher: matcher,
		logger:  logger.With().Str("component", "session").Logger(),
	}
}

// Process runs the search for a Processing session exactly once. Later calls
// for the same entry into Processing return the stored outcome unchanged, so
// re-rendering never searches again. A Processing session without a
// description falls back to AwaitingDescription. A panic inside the matcher
// is recovered and recorded as the session's error.
func (c *Controller) Process(ctx context.Context, s Session, sink finder.Sink) (next Session) {
	if s.Step != Processing || s.HasRun() {
		return s
	}
	if s.Description == "" {
		return Reset(s)
	}
	if sink == nil {
		sink = finder.NopSink{}
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().
				Str("session", s.ID).
				Interface("panic", r).
				Msg("search failed")
			next = s
			next.Outcome = nil
			next.Err = fmt.Sprintf("%v", r)
			next.UpdatedAt = time.Now()
		}
	}()

	result := c.matcher.FindMatches(ctx, s.Description, sink)

	s.Clues = &result.Clues
	s.Outcome = &result
	s.UpdatedAt = time.Now()

	c.logger.Debug().
		Str("session", s.ID).
		Int("matches", len(result.Matches)).
		Msg("processing complete")
	return s
}
