package classifier

import (
	"regexp"
	"strings"
)

const (
	yesToken   = "YES"
	noneMarker = "NONE"

	mentionedHeader    = "MENTIONED:"
	suggestHeader      = "SUGGEST_ALTERNATIVES:"
	contextHeader      = "CONTEXT:"
	alternativesHeader = "ALTERNATIVES:"
)

var listNumberPrefix = regexp.MustCompile(`^\d+\.\s*`)

// containsYesToken implements the YES-token contract: affirmative iff the
// upper-cased reply contains the literal token anywhere.
func containsYesToken(reply string) bool {
	return strings.Contains(strings.ToUpper(strings.TrimSpace(reply)), yesToken)
}

// parseMentions walks the two-section reply line by line. Lines after the
// MENTIONED header accumulate as candidate names until the
// SUGGEST_ALTERNATIVES header flips the mode.
func parseMentions(reply string) ([]string, bool) {
	var (
		candidates  []string
		suggest     bool
		inMentioned bool
	)

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, mentionedHeader):
			inMentioned = true

			rest := strings.TrimSpace(strings.TrimPrefix(line, mentionedHeader))
			if rest != "" && rest != noneMarker {
				candidates = append(candidates, rest)
			}
		case strings.HasPrefix(line, suggestHeader):
			inMentioned = false
			suggest = strings.Contains(line, yesToken)
		case inMentioned && line != "" && line != noneMarker:
			candidates = append(candidates, line)
		}
	}

	return candidates, suggest
}

// parseAlternatives extracts the CONTEXT sentence and the ALTERNATIVES list,
// stripping numbered-list prefixes the model tends to add.
func parseAlternatives(reply string) (string, []string) {
	var (
		contextMessage string
		names          []string
		inAlternatives bool
	)

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, contextHeader):
			contextMessage = strings.TrimSpace(strings.TrimPrefix(line, contextHeader))
		case strings.HasPrefix(line, alternativesHeader):
			inAlternatives = true
		case inAlternatives && line != "":
			if name := strings.TrimSpace(listNumberPrefix.ReplaceAllString(line, "")); name != "" {
				names = append(names, name)
			}
		}
	}

	return contextMessage, names
}
