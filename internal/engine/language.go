package engine

import (
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// NormalizeLanguage validates a language token and returns its normalized
// ISO 639-1 base code (e.g. "eng"→"en", "chi"→"zh"). Returns the token
// unchanged when it cannot be parsed, so an exotic engine code is never lost.
func NormalizeLanguage(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	tag, err := language.Parse(token)
	if err != nil {
		return token
	}
	base, conf := tag.Base()
	if conf == language.No {
		return token
	}
	return base.String()
}

// DetectLanguage guesses the ISO 639-1 language code of text. Used as a
// fallback when the engine does not report a detected language. Returns ""
// when detection is not reliable.
func DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
