package verifier

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxCandidateChars = 4000

// Zero-width joiner breaks up handle-like tokens without changing how the
// text reads to the model.
const zwj = "‍"

var (
	fenceRe      = regexp.MustCompile("(?i)```+")
	scriptRe     = regexp.MustCompile(`(?i)</?script`)
	handleRe     = regexp.MustCompile(`(?i)@(assistant|system)`)
	manyNewlines = regexp.MustCompile(`\n{3,}`)
)

// SanitizeCandidateText defuses issue text before it is embedded in a prompt.
// Issue bodies are attacker-controlled, so anything that could break out of
// the quoted block or smuggle instructions gets neutralized: code fences,
// script tags, assistant/system handles, and bidirectional override
// characters. Long bodies are truncated.
func SanitizeCandidateText(text string) string {
	text = stripBidiOverrides(text)

	text = fenceRe.ReplaceAllStringFunc(text, func(m string) string {
		return strings.ReplaceAll(m, "`", "`"+zwj)
	})

	text = scriptRe.ReplaceAllStringFunc(text, func(m string) string {
		return strings.Replace(m, "script", "scr"+zwj+"ipt", 1)
	})

	text = handleRe.ReplaceAllStringFunc(text, func(m string) string {
		return "@" + zwj + m[1:]
	})

	text = manyNewlines.ReplaceAllString(text, "\n\n")

	return truncate(text, maxCandidateChars)
}

// truncate caps text at max bytes, backing up to a rune boundary so a
// multi-byte character is never split.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

// stripBidiOverrides removes Unicode bidirectional control characters that
// can make text render differently than it parses.
func stripBidiOverrides(text string) string {
	return strings.Map(func(r rune) rune {
		if r >= 0x202A && r <= 0x202E {
			return -1
		}
		if r >= 0x2066 && r <= 0x2069 {
			return -1
		}
		return r
	}, text)
}
