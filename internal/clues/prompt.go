package clues

import "strings"

const promptTemplate = `The user is describing a movie or a tv series they vaguely remember.

Description:
"{description}"

Analyze if they are describing a TV series or a movie.

Identify:
- Suggested Titles
- Probable Actors
- Probable Genres
- Content Type (movie or series)

Output:

Return it in JSON format like:
{
  "titles": [...],
  "actors": [...],
  "genres": [...],
  "type": "movie" or "series"
}
`

// BuildPrompt embeds the raw description into the instruction template.
func BuildPrompt(description string) string {
	return strings.Replace(promptTemplate, "{description}", description, 1)
}
