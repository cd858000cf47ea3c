package bot

import (
	"strings"
	"unicode"
)

var escapeWords = map[string]bool{
	"выход":   true,
	"меню":    true,
	"назад":   true,
	"отмена":  true,
	"exit":    true,
	"menu":    true,
	"back":    true,
	"cancel":  true,
	"/cancel": true,
}

// words lowercases text and splits it on anything that is not a letter,
// a digit or a leading slash. Emoji and punctuation never survive.
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '/'
	})
}

// isEscape reports whether any word of text is an escape word.
func isEscape(text string) bool {
	for _, w := range words(text) {
		if escapeWords[w] {
			return true
		}
	}
	return false
}

// isOnlyEscape reports whether text has words and every one is an escape word.
func isOnlyEscape(text string) bool {
	ws := words(text)
	if len(ws) == 0 {
		return false
	}
	for _, w := range ws {
		if !escapeWords[w] {
			return false
		}
	}
	return true
}
