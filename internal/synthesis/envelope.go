package synthesis

import (
	"regexp"
	"strings"
)

var (
	titleRegex = regexp.MustCompile(`TITLE:\s*(.+)`)
	// Greedy: the body runs to the last delimiter in the reply
	bodyRegex = regexp.MustCompile(`(?s)BODY:\s*---(.*)---`)
)

// Envelope is a model reply split into title and body.
// Each part falls back on its own: a missing title becomes FallbackTitle and a
// missing body becomes the whole reply.
type Envelope struct {
	Title    string
	Body     string
	HasTitle bool
	HasBody  bool
}

// ParseEnvelope extracts the TITLE/BODY envelope from reply
func ParseEnvelope(reply string) Envelope {
	env := Envelope{Title: FallbackTitle, Body: reply}

	if m := titleRegex.FindStringSubmatch(reply); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			env.Title = title
			env.HasTitle = true
		}
	}
	if m := bodyRegex.FindStringSubmatch(reply); m != nil {
		env.Body = strings.TrimSpace(m[1])
		env.HasBody = true
	}

	return env
}
