// Package sanitize cleans user supplied free text before it is stored or
// forwarded to the completion API.
package sanitize

import (
	"strings"
	"unicode/utf8"
)

// Per-field length budgets, counted in characters before escaping.
const (
	DefaultMaxLength = 2000

	MaxChatMessage  = 1500
	MaxPost         = 500
	MaxReply        = 300
	MaxPollQuestion = 400
	MaxOptionText   = 100
	MaxEmoji        = 10
	MaxNotes        = 1000
	MaxNickname     = 50
	MaxAvatar       = 10
	MaxScaleLabel   = 100
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Text trims, strips control and zero-width characters, truncates to
// maxLength characters and then HTML-escapes the result.
//
// Escaping happens last so entities never count toward the budget and are
// never split. The function is not idempotent: escaped output escapes again.
func Text(input string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	value := Strip(input)
	value = Truncate(value, maxLength)
	return EscapeHTML(value)
}

// Any applies Text to string values and returns every other value unchanged.
func Any(input any, maxLength int) any {
	s, ok := input.(string)
	if !ok {
		return input
	}
	return Text(s, maxLength)
}

// Strip trims surrounding whitespace and removes zero-width characters
// (U+200B..U+200D, U+FEFF) and C0 controls, newlines included.
func Strip(input string) string {
	value := strings.TrimSpace(input)
	if !utf8.ValidString(value) {
		value = strings.ToValidUTF8(value, "")
	}
	return strings.Map(func(r rune) rune {
		if isStripped(r) {
			return -1
		}
		return r
	}, value)
}

func isStripped(r rune) bool {
	switch {
	case r <= 0x1F:
		return true
	case r >= 0x200B && r <= 0x200D:
		return true
	case r == 0xFEFF:
		return true
	}
	return false
}

// Truncate cuts value to at most maxLength characters.
func Truncate(value string, maxLength int) string {
	if maxLength <= 0 || utf8.RuneCountInString(value) <= maxLength {
		return value
	}
	n := 0
	for i := range value {
		if n == maxLength {
			return value[:i]
		}
		n++
	}
	return value
}

// EscapeHTML escapes the five reserved HTML characters.
func EscapeHTML(value string) string {
	return htmlEscaper.Replace(value)
}
