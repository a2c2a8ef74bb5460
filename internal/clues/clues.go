// Package clues turns a vague description of a movie or TV series into
// structured search hints with the help of a language model.
package clues

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ErrMalformedReply is returned by ParseReply when the model's reply does not
// hold the expected JSON object.
var ErrMalformedReply = errors.New("malformed language model reply")

// ContentType is the kind of media the description points at.
type ContentType string

const (
	Movie   ContentType = "movie"
	Series  ContentType = "series"
	Unknown ContentType = "unknown"
)

// ParseContentType normalizes s case-insensitively; anything other than
// "movie" or "series" is Unknown.
func ParseContentType(s string) ContentType {
	switch ContentType(strings.ToLower(strings.TrimSpace(s))) {
	case Movie:
		return Movie
	case Series:
		return Series
	default:
		return Unknown
	}
}

// MediaClue holds the hints inferred from one description.
type MediaClue struct {
	Titles []string    `json:"titles"`
	Actors []string    `json:"actors"`
	Genres []string    `json:"genres"`
	Type   ContentType `json:"type"`
}

// Empty returns the clue used when nothing could be inferred.
func Empty() MediaClue {
	return MediaClue{
		Titles: []string{},
		Actors: []string{},
		Genres: []string{},
		Type:   Unknown,
	}
}

// Completer sends a prompt to a language model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Extractor produces MediaClues from free text.
type Extractor struct {
	llm    Completer
	logger zerolog.Logger
}

// NewExtractor creates an extractor backed by llm.
func NewExtractor(llm Completer, logger zerolog.Logger) *Extractor {
	return &Extractor{
		llm:    llm,
		logger: logger.With().Str("component", "clues").Logger(),
	}
}

// Extract asks the model for clues about description. It never fails: when the
// model cannot be reached or its reply cannot be parsed, it returns Empty()
// together with diagnostic lines explaining why.
func (e *Extractor) Extract(ctx context.Context, description string) (MediaClue, []string) {
	reply, err := e.llm.Complete(ctx, BuildPrompt(description))
	if err != nil {
		e.logger.Error().Err(err).Msg("language model request failed")
		return Empty(), []string{fmt.Sprintf("Error contacting language model: %v", err)}
	}

	clue, err := ParseReply(reply)
	if err != nil {
		e.logger.Warn().Err(err).Str("reply", reply).Msg("could not parse language model reply")
		return Empty(), []string{"Error parsing JSON response. Raw response:", reply}
	}

	e.logger.Debug().
		Strs("titles", clue.Titles).
		Strs("actors", clue.Actors).
		Str("type", string(clue.Type)).
		Msg("extracted clues")
	return clue, nil
}

type rawClue struct {
	Titles json.RawMessage `json:"titles"`
	Actors json.RawMessage `json:"actors"`
	Genres json.RawMessage `json:"genres"`
	Type   json.RawMessage `json:"type"`
}

// ParseReply extracts a MediaClue from a model reply, stripping an optional
// fenced code block first. Fields of the wrong shape are treated as empty.
func ParseReply(reply string) (MediaClue, error) {
	payload := stripCodeFence(reply)

	var raw rawClue
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return Empty(), fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	clue := MediaClue{
		Titles: stringList(raw.Titles),
		Actors: stringList(raw.Actors),
		Genres: stringList(raw.Genres),
		Type:   Unknown,
	}
	var typ string
	if err := json.Unmarshal(raw.Type, &typ); err == nil {
		clue.Type = ParseContentType(typ)
	}
	return clue, nil
}

// stripCodeFence returns the body of a ```json block, else of the first ```
// block, else the reply unchanged.
func stripCodeFence(reply string) string {
	if _, rest, ok := strings.Cut(reply, "```json"); ok {
		body, _, _ := strings.Cut(rest, "```")
		return strings.TrimSpace(body)
	}
	if _, rest, ok := strings.Cut(reply, "```"); ok {
		body, _, _ := strings.Cut(rest, "```")
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(reply)
}

// stringList decodes a JSON array, keeping only non-blank string entries.
func stringList(data json.RawMessage) []string {
	out := []string{}
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return out
	}
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
