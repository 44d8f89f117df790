package i18n

import "strings"

// Supported maps ISO-639-1 codes to the English name of the language, used
// verbatim in prompt instructions ("Respond in Spanish.").
var Supported = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"hi": "Hindi",
	"ar": "Arabic",
}

// Resolve returns the canonical code and English name for a requested
// language. Unknown or empty codes fall back to English.
func Resolve(code string) (string, string) {
	c := strings.ToLower(strings.TrimSpace(code))
	// Tolerate region suffixes like "pt-BR".
	if i := strings.IndexAny(c, "-_"); i > 0 {
		c = c[:i]
	}
	if name, ok := Supported[c]; ok {
		return c, name
	}
	return "en", "English"
}
