package utils

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var wordRun = regexp.MustCompile(`\w\S*`)

// TitleCase capitalizes the first letter of every word and lowercases the rest.
// A word starts at a letter, digit or underscore and runs until the next
// whitespace; surrounding whitespace is preserved as-is.
func TitleCase(s string) string {
	return wordRun.ReplaceAllStringFunc(s, func(word string) string {
		r, size := utf8.DecodeRuneInString(word)
		return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
	})
}

// SplitZIP splits a "ZIP5" or "ZIP5-ZIP4" code into its two parts.
// Missing parts are returned as empty strings and anything after a second
// dash is dropped.
func SplitZIP(zip string) (zip5, zip4 string) {
	parts := strings.Split(strings.TrimSpace(zip), "-")
	zip5 = parts[0]
	if len(parts) > 1 {
		zip4 = parts[1]
	}
	return zip5, zip4
}

// FormatZIP joins ZIP parts back together, omitting an empty ZIP+4.
func FormatZIP(zip5, zip4 string) string {
	if zip4 == "" {
		return zip5
	}
	return zip5 + "-" + zip4
}
