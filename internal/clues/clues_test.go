package clues

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	reply  string
	err    error
	prompt string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.reply, s.err
}

func TestParseContentType(t *testing.T) {
	tests := []struct {
		in   string
		want ContentType
	}{
		{"movie", Movie},
		{"MOVIE", Movie},
		{" Series ", Series},
		{"tv series", Unknown},
		{"episode", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseContentType(tt.in))
		})
	}
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  MediaClue
	}{
		{
			name:  "plain json",
			reply: `{"titles":["Game of Thrones"],"actors":["Emilia Clarke"],"genres":["Fantasy"],"type":"series"}`,
			want: MediaClue{
				Titles: []string{"Game of Thrones"},
				Actors: []string{"Emilia Clarke"},
				Genres: []string{"Fantasy"},
				Type:   Series,
			},
		},
		{
			name:  "json fence with prose",
			reply: "Sure! Here is what I found:\n```json\n{\"titles\":[\"Dune\"],\"actors\":[],\"genres\":[\"Sci-Fi\"],\"type\":\"Movie\"}\n```\nHope it helps.",
			want: MediaClue{
				Titles: []string{"Dune"},
				Actors: []string{},
				Genres: []string{"Sci-Fi"},
				Type:   Movie,
			},
		},
		{
			name:  "untagged fence",
			reply: "```\n{\"titles\":[\"Heat\"],\"type\":\"movie\"}\n```",
			want: MediaClue{
				Titles: []string{"Heat"},
				Actors: []string{},
				Genres: []string{},
				Type:   Movie,
			},
		},
		{
			name:  "unexpected type value",
			reply: `{"titles":["Sherlock"],"actors":["Benedict Cumberbatch"],"genres":[],"type":"miniseries"}`,
			want: MediaClue{
				Titles: []string{"Sherlock"},
				Actors: []string{"Benedict Cumberbatch"},
				Genres: []string{},
				Type:   Unknown,
			},
		},
		{
			name:  "wrong field shapes",
			reply: `{"titles":"Alien","actors":[1,"Sigourney Weaver","  "],"genres":null,"type":7}`,
			want: MediaClue{
				Titles: []string{},
				Actors: []string{"Sigourney Weaver"},
				Genres: []string{},
				Type:   Unknown,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReply(tt.reply)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReply_Malformed(t *testing.T) {
	for _, reply := range []string{"", "I am not sure what you mean.", "```json\n{\"titles\": [\n```", `["Dune"]`} {
		got, err := ParseReply(reply)
		assert.ErrorIs(t, err, ErrMalformedReply, "reply %q", reply)
		assert.Equal(t, Empty(), got)
	}
}

func TestExtractor_Extract(t *testing.T) {
	llm := &stubCompleter{reply: "```json\n{\"titles\":[\"Game of Thrones\"],\"actors\":[],\"genres\":[\"Fantasy\"],\"type\":\"series\"}\n```"}
	extractor := NewExtractor(llm, zerolog.Nop())

	clue, diags := extractor.Extract(context.Background(), "a show about dragons and kings fighting for a throne")

	assert.Empty(t, diags)
	assert.Equal(t, []string{"Game of Thrones"}, clue.Titles)
	assert.Equal(t, Series, clue.Type)
	assert.Contains(t, llm.prompt, `"a show about dragons and kings fighting for a throne"`)
	assert.Contains(t, llm.prompt, `"type": "movie" or "series"`)
}

func TestExtractor_Extract_MalformedReplyDegrades(t *testing.T) {
	llm := &stubCompleter{reply: "Sorry, I can't help with that."}
	extractor := NewExtractor(llm, zerolog.Nop())

	clue, diags := extractor.Extract(context.Background(), "something")

	assert.Equal(t, Empty(), clue)
	assert.NotNil(t, clue.Titles)
	require.Len(t, diags, 2)
	assert.Equal(t, "Error parsing JSON response. Raw response:", diags[0])
	assert.Equal(t, "Sorry, I can't help with that.", diags[1])
}

func TestExtractor_Extract_TransportErrorDegrades(t *testing.T) {
	llm := &stubCompleter{err: errors.New("connection refused")}
	extractor := NewExtractor(llm, zerolog.Nop())

	clue, diags := extractor.Extract(context.Background(), "something")

	assert.Equal(t, Empty(), clue)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0], "connection refused")
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("a heist movie with a crew in Las Vegas")

	assert.Contains(t, prompt, "Description:\n\"a heist movie with a crew in Las Vegas\"")
	assert.NotContains(t, prompt, "{description}")
}
