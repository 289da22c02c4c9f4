package domain

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrNoChoices is returned by providers when every choice was empty.
var ErrNoChoices = errors.New("completion service returned no usable choice")

// FirstChoice returns the first non-empty choice with trailing malformed
// multi-byte runes removed.
func FirstChoice(choices []string) (string, error) {
	for _, choice := range choices {
		text := StripReplacementChars(choice)
		if text != "" {
			return text, nil
		}
	}
	return "", ErrNoChoices
}

// StripReplacementChars trims U+FFFD runes (and raw invalid bytes) from the
// end of text. Models cut off mid-rune produce them.
func StripReplacementChars(text string) string {
	for text != "" {
		r, size := utf8.DecodeLastRuneInString(text)
		if r != utf8.RuneError {
			break
		}
		text = text[:len(text)-size]
	}
	return text
}

// CountLines returns the number of lines in text (newlines + 1).
func CountLines(text string) int {
	return strings.Count(text, "\n") + 1
}

// firstLine returns text up to the first newline.
func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}
